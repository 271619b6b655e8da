// Package overlay renders the full-screen break surface, one window per display.
package overlay

import (
	"fmt"
	"image/color"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"eyedoro/internal/core/broadcast"
	"eyedoro/internal/core/model"
	"eyedoro/internal/logger"
	"eyedoro/internal/ui/animation"
)

const (
	columnWidthFraction = float32(0.5)
	maxColumnWidth      = float32(560)
)

type splashWindowDriver interface {
	CreateSplashWindow() fyne.Window
}

// Factory creates break overlays on the fyne main thread.
type Factory struct {
	app        fyne.App
	log        *logger.Logger
	animation  animation.Config
	onEndEarly func()
}

// NewFactory returns a factory whose overlays call onEndEarly from the
// button and the Escape key.
func NewFactory(app fyne.App, log *logger.Logger, onEndEarly func()) *Factory {
	return &Factory{
		app:        app,
		log:        log.Named("overlay"),
		animation:  animation.DefaultConfig(),
		onEndEarly: onEndEarly,
	}
}

// CreateOverlay builds and shows an overlay covering display.
func (factory *Factory) CreateOverlay(display broadcast.Display, info broadcast.BreakInfo) (broadcast.Overlay, error) {
	var (
		overlay *Window
		err     error
	)
	fyne.DoAndWait(func() {
		defer func() {
			if recovered := recover(); recovered != nil {
				err = fmt.Errorf("create overlay on display %d: %v", display.ID, recovered)
			}
		}()
		overlay = factory.build(display, info)
	})
	if err != nil {
		return nil, err
	}
	factory.log.Debug("overlay shown on display %d (%s)", display.ID, display.Name)
	return overlay, nil
}

// Window is one break overlay.
type Window struct {
	window     fyne.Window
	display    broadcast.Display
	duration   time.Duration
	timerLabel *canvas.Text
	progress   *widget.ProgressBar
	tipTitle   *canvas.Text
	tipBody    *widget.Label
	engine     *animation.Engine

	mu     sync.Mutex
	closed bool
}

func (factory *Factory) build(display broadcast.Display, info broadcast.BreakInfo) *Window {
	var window fyne.Window
	if driver, ok := factory.app.Driver().(splashWindowDriver); ok {
		// Splash windows are undecorated and cannot be dragged or closed.
		window = driver.CreateSplashWindow()
	} else {
		window = factory.app.NewWindow("EyeDoro Break")
	}
	if factory.app.Icon() != nil {
		window.SetIcon(factory.app.Icon())
	}
	window.SetPadded(false)

	colors := paletteFor(info.Theme, factory.app.Settings().ThemeVariant() == theme.VariantDark)
	background := canvas.NewRectangle(colors.background)

	title := canvas.NewText("Time for an Eye Break!", colors.foreground)
	title.Alignment = fyne.TextAlignCenter
	title.TextStyle = fyne.TextStyle{Bold: true}
	title.TextSize = 32

	subtitle := canvas.NewText("Give your eyes some rest", colors.muted)
	subtitle.Alignment = fyne.TextAlignCenter
	subtitle.TextSize = 16

	timerLabel := canvas.NewText(formatClock(info.Remaining), colors.accent)
	timerLabel.Alignment = fyne.TextAlignCenter
	timerLabel.TextStyle = fyne.TextStyle{Bold: true, Monospace: true}
	timerLabel.TextSize = 56

	remainingLabel := canvas.NewText("remaining", colors.muted)
	remainingLabel.Alignment = fyne.TextAlignCenter
	remainingLabel.TextSize = 14

	progress := widget.NewProgressBar()
	progress.TextFormatter = func() string { return "" }
	progress.SetValue(progressOf(info.Duration, info.Remaining))

	tipTitle := canvas.NewText("", colors.foreground)
	tipTitle.Alignment = fyne.TextAlignCenter
	tipTitle.TextStyle = fyne.TextStyle{Bold: true}
	tipTitle.TextSize = 18

	tipBody := widget.NewLabel("")
	tipBody.Alignment = fyne.TextAlignCenter
	tipBody.Wrapping = fyne.TextWrapWord

	endButton := widget.NewButton("End Break Early", factory.endEarly)
	endButton.Importance = widget.HighImportance

	hint := canvas.NewText("Press ESC to end the break early", colors.muted)
	hint.Alignment = fyne.TextAlignCenter
	hint.TextSize = 12

	column := container.NewVBox(
		title,
		subtitle,
		timerLabel,
		remainingLabel,
		progress,
		tipTitle,
		tipBody,
		container.NewCenter(endButton),
		hint,
	)
	root := container.NewStack(background, container.New(&columnLayout{}, column))
	window.SetContent(root)

	overlay := &Window{
		window:     window,
		display:    display,
		duration:   info.Duration,
		timerLabel: timerLabel,
		progress:   progress,
		tipTitle:   tipTitle,
		tipBody:    tipBody,
	}
	overlay.engine = animation.New(factory.animation, nil, func(tip animation.Tip) {
		fyne.Do(func() { overlay.showTip(tip) })
	})

	window.SetCloseIntercept(func() {})
	window.Canvas().SetOnTypedKey(func(event *fyne.KeyEvent) {
		if event.Name == fyne.KeyEscape {
			factory.endEarly()
		}
	})

	window.Resize(fyne.NewSize(float32(display.Width), float32(display.Height)))
	window.SetFullScreen(true)
	window.Show()
	pinToDisplay(window, display)
	window.RequestFocus()
	overlay.engine.Start()
	return overlay
}

func (factory *Factory) endEarly() {
	if factory.onEndEarly != nil {
		go factory.onEndEarly()
	}
}

// SetRemaining updates the countdown and progress bar.
func (overlay *Window) SetRemaining(remaining time.Duration) {
	fyne.Do(func() {
		overlay.timerLabel.Text = formatClock(remaining)
		overlay.timerLabel.Refresh()
		overlay.progress.SetValue(progressOf(overlay.duration, remaining))
	})
}

// Destroy closes the window. Closing twice is a no-op.
func (overlay *Window) Destroy() (err error) {
	if !overlay.markClosed() {
		return nil
	}
	overlay.engine.Stop()
	fyne.DoAndWait(func() {
		defer func() {
			if recovered := recover(); recovered != nil {
				err = fmt.Errorf("destroy overlay on display %d: %v", overlay.display.ID, recovered)
			}
		}()
		overlay.window.Close()
	})
	return err
}

// ForceDestroy hides and closes the window regardless of earlier failures.
func (overlay *Window) ForceDestroy() (err error) {
	overlay.markClosed()
	overlay.engine.Stop()
	fyne.DoAndWait(func() {
		defer func() {
			if recovered := recover(); recovered != nil {
				err = fmt.Errorf("force destroy overlay on display %d: %v", overlay.display.ID, recovered)
			}
		}()
		overlay.window.SetFullScreen(false)
		overlay.window.Hide()
		overlay.window.Close()
	})
	return err
}

func (overlay *Window) markClosed() bool {
	overlay.mu.Lock()
	defer overlay.mu.Unlock()
	if overlay.closed {
		return false
	}
	overlay.closed = true
	return true
}

func (overlay *Window) showTip(tip animation.Tip) {
	overlay.tipTitle.Text = tip.Title
	overlay.tipTitle.Refresh()
	overlay.tipBody.SetText(tip.Description)
}

type palette struct {
	background color.Color
	foreground color.Color
	muted      color.Color
	accent     color.Color
}

func paletteFor(selected model.Theme, systemDark bool) palette {
	dark := selected == model.ThemeDark || (selected == model.ThemeAuto && systemDark)
	if dark {
		return palette{
			background: color.NRGBA{R: 18, G: 18, B: 24, A: 240},
			foreground: color.NRGBA{R: 240, G: 240, B: 240, A: 255},
			muted:      color.NRGBA{R: 170, G: 170, B: 180, A: 255},
			accent:     color.NRGBA{R: 102, G: 187, B: 106, A: 255},
		}
	}
	return palette{
		background: color.NRGBA{R: 245, G: 248, B: 250, A: 240},
		foreground: color.NRGBA{R: 33, G: 33, B: 33, A: 255},
		muted:      color.NRGBA{R: 96, G: 96, B: 110, A: 255},
		accent:     color.NRGBA{R: 76, G: 175, B: 80, A: 255},
	}
}

func formatClock(value time.Duration) string {
	if value < 0 {
		value = 0
	}
	seconds := int((value + time.Second - 1) / time.Second)
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func progressOf(total, remaining time.Duration) float64 {
	if total <= 0 {
		return 1
	}
	if remaining < 0 {
		remaining = 0
	}
	if remaining > total {
		remaining = total
	}
	return float64(total-remaining) / float64(total)
}

// columnLayout centres a single column whose width follows the screen.
type columnLayout struct{}

func (layout *columnLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	if len(objects) == 0 {
		return
	}
	column := objects[0]
	minSize := column.MinSize()

	width := size.Width * columnWidthFraction
	if width > maxColumnWidth {
		width = maxColumnWidth
	}
	if width < minSize.Width {
		width = minSize.Width
	}
	if width > size.Width {
		width = size.Width
	}
	height := minSize.Height
	if height > size.Height {
		height = size.Height
	}

	column.Move(fyne.NewPos((size.Width-width)/2, (size.Height-height)/2))
	column.Resize(fyne.NewSize(width, height))
}

func (layout *columnLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	if len(objects) == 0 {
		return fyne.NewSize(0, 0)
	}
	return objects[0].MinSize()
}
