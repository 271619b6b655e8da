// Package resources renders the application and tray icons.
package resources

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"sync"

	"fyne.io/fyne/v2"
)

// IconKind selects a tray icon variant.
type IconKind string

const (
	IconApp     IconKind = "app"
	IconWorking IconKind = "working"
	IconPaused  IconKind = "paused"
	IconBreak   IconKind = "break"
)

const iconSize = 64

var iconCache sync.Map

var irisColors = map[IconKind]color.NRGBA{
	IconApp:     {R: 76, G: 175, B: 80, A: 255},
	IconWorking: {R: 76, G: 175, B: 80, A: 255},
	IconPaused:  {R: 158, G: 158, B: 158, A: 255},
	IconBreak:   {R: 33, G: 150, B: 243, A: 255},
}

// Icon returns the PNG resource for kind.
func Icon(kind IconKind) (fyne.Resource, error) {
	if cached, ok := iconCache.Load(kind); ok {
		return cached.(fyne.Resource), nil
	}

	iris, ok := irisColors[kind]
	if !ok {
		return nil, fmt.Errorf("load icon %q: unknown kind", kind)
	}
	data, err := renderEye(iconSize, iris)
	if err != nil {
		return nil, fmt.Errorf("load icon %q: %w", kind, err)
	}

	resource := fyne.NewStaticResource("eyedoro-"+string(kind)+".png", data)
	iconCache.Store(kind, resource)
	return resource, nil
}

// MustIcon returns the icon or panics on error.
func MustIcon(kind IconKind) fyne.Resource {
	resource, err := Icon(kind)
	if err != nil {
		panic(err)
	}
	return resource
}

// renderEye draws an almond eye outline with a coloured iris and a pupil.
func renderEye(size int, iris color.NRGBA) ([]byte, error) {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	white := color.NRGBA{R: 250, G: 250, B: 250, A: 255}
	outline := color.NRGBA{R: 40, G: 40, B: 40, A: 255}
	pupil := color.NRGBA{R: 20, G: 20, B: 20, A: 255}

	center := float64(size-1) / 2
	halfWidth := float64(size) * 0.46
	halfHeight := float64(size) * 0.28
	irisRadius := float64(size) * 0.17
	pupilRadius := float64(size) * 0.07

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(x) - center
			dy := float64(y) - center
			if math.Abs(dx) > halfWidth {
				continue
			}
			// Lid height shrinks towards the corners.
			lid := halfHeight * (1 - (dx*dx)/(halfWidth*halfWidth))
			distance := math.Hypot(dx, dy)
			switch {
			case math.Abs(dy) > lid+1.5:
				continue
			case math.Abs(dy) > lid-1.5:
				img.SetNRGBA(x, y, outline)
			case distance <= pupilRadius:
				img.SetNRGBA(x, y, pupil)
			case distance <= irisRadius:
				img.SetNRGBA(x, y, iris)
			default:
				img.SetNRGBA(x, y, white)
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
