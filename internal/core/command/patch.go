package command

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"eyedoro/internal/core/model"
)

// ConfigView is the wire form of SessionConfig.
type ConfigView struct {
	WorkDurationMs      uint64      `json:"workDurationMs"`
	BreakDurationMs     uint64      `json:"breakDurationMs"`
	NotifyBeforeBreakMs uint64      `json:"notifyBeforeBreakMs"`
	NotifyEnabled       bool        `json:"notifyEnabled"`
	SoundEnabled        bool        `json:"soundEnabled"`
	Theme               model.Theme `json:"theme"`
	AutoStart           bool        `json:"autoStart"`
}

// ViewOf converts a configuration to its wire form.
func ViewOf(config model.SessionConfig) ConfigView {
	return ConfigView{
		WorkDurationMs:      durationMs(config.WorkDuration),
		BreakDurationMs:     durationMs(config.BreakDuration),
		NotifyBeforeBreakMs: durationMs(config.NotifyBeforeBreak),
		NotifyEnabled:       config.NotifyEnabled,
		SoundEnabled:        config.SoundEnabled,
		Theme:               config.Theme,
		AutoStart:           config.AutoStart,
	}
}

// Config converts the wire form back.
func (view ConfigView) Config() model.SessionConfig {
	return model.SessionConfig{
		WorkDuration:      time.Duration(view.WorkDurationMs) * time.Millisecond,
		BreakDuration:     time.Duration(view.BreakDurationMs) * time.Millisecond,
		NotifyBeforeBreak: time.Duration(view.NotifyBeforeBreakMs) * time.Millisecond,
		NotifyEnabled:     view.NotifyEnabled,
		SoundEnabled:      view.SoundEnabled,
		Theme:             view.Theme,
		AutoStart:         view.AutoStart,
	}
}

func durationMs(d time.Duration) uint64 {
	if d <= 0 {
		return 0
	}
	return uint64(d / time.Millisecond)
}

// ErrNotObject rejects a config payload that is not a JSON object.
var ErrNotObject = errors.New("config must be a JSON object")

// DecodePatch reads a partial config object. Unknown keys are ignored; a key
// holding a value of the wrong type is set to that field's default.
func DecodePatch(raw []byte) (model.ConfigPatch, error) {
	var fields map[string]json.RawMessage
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return model.ConfigPatch{}, ErrNotObject
	}
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return model.ConfigPatch{}, fmt.Errorf("decode config: %w", err)
	}

	defaults := model.DefaultSessionConfig()
	var patch model.ConfigPatch
	for key, value := range fields {
		switch key {
		case "workDurationMs":
			patch.WorkDuration = durationField(value, defaults.WorkDuration)
		case "breakDurationMs":
			patch.BreakDuration = durationField(value, defaults.BreakDuration)
		case "notifyBeforeBreakMs":
			patch.NotifyBeforeBreak = durationField(value, defaults.NotifyBeforeBreak)
		case "notifyEnabled":
			patch.NotifyEnabled = boolField(value, defaults.NotifyEnabled)
		case "soundEnabled":
			patch.SoundEnabled = boolField(value, defaults.SoundEnabled)
		case "autoStart":
			patch.AutoStart = boolField(value, defaults.AutoStart)
		case "theme":
			theme := defaults.Theme
			var name string
			if err := json.Unmarshal(value, &name); err == nil {
				if parsed, err := model.ParseTheme(name); err == nil {
					theme = parsed
				}
			}
			patch.Theme = &theme
		}
	}
	return patch, nil
}

const maxDurationMs = float64(math.MaxInt64 / int64(time.Millisecond))

func durationField(value json.RawMessage, fallback time.Duration) *time.Duration {
	result := fallback
	var ms float64
	if err := json.Unmarshal(value, &ms); err == nil && ms > 0 && ms < maxDurationMs {
		result = time.Duration(ms) * time.Millisecond
	}
	return &result
}

func boolField(value json.RawMessage, fallback bool) *bool {
	result := fallback
	var flag bool
	if err := json.Unmarshal(value, &flag); err == nil {
		result = flag
	}
	return &result
}

// ParseSeconds accepts a positive whole number of seconds given as a JSON
// number or an int. Strings are rejected even when they hold digits.
func ParseSeconds(value any) (int, error) {
	switch v := value.(type) {
	case int:
		return positiveSeconds(int64(v))
	case int64:
		return positiveSeconds(v)
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("seconds must be a whole number, got %v", v)
		}
		return positiveSeconds(int64(v))
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("seconds must be a whole number, got %s", v)
		}
		return positiveSeconds(n)
	default:
		return 0, fmt.Errorf("seconds must be a number, got %T", value)
	}
}

func positiveSeconds(n int64) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("seconds must be positive, got %d", n)
	}
	if n > math.MaxInt32 {
		return 0, fmt.Errorf("seconds out of range: %d", n)
	}
	return int(n), nil
}
