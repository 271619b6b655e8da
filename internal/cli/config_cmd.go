package cli

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"eyedoro/internal/core/command"
	"eyedoro/internal/core/model"
	"eyedoro/internal/ipc"
)

var configKeys = map[string]string{
	"workDurationMs":      "number",
	"breakDurationMs":     "number",
	"notifyBeforeBreakMs": "number",
	"notifyEnabled":       "bool",
	"soundEnabled":        "bool",
	"autoStart":           "bool",
	"theme":               "light|dark|auto",
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read or change settings of the running instance",
	}
	cmd.AddCommand(
		newConfigGetCmd(app),
		newConfigSetCmd(app),
		newConfigEditCmd(app),
	)
	return cmd
}

func newConfigGetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Print the stored settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCaller(cmd, app, func(ctx context.Context, caller Caller) error {
				var view command.ConfigView
				if err := caller.Call(ctx, ipc.CommandGetConfig, nil, &view); err != nil {
					return err
				}
				return writeJSON(cmd, view)
			})
		},
	}
}

func newConfigSetCmd(app *App) *cobra.Command {
	keys := make([]string, 0, len(configKeys))
	for key, kind := range configKeys {
		keys = append(keys, key+" ("+kind+")")
	}
	sort.Strings(keys)

	return &cobra.Command{
		Use:   "set key=value...",
		Short: "Change one or more settings",
		Long:  "Change settings by key. Invalid values fall back to defaults.\n\nKeys:\n  " + strings.Join(keys, "\n  "),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := ParseAssignments(args)
			if err != nil {
				return err
			}
			return withCaller(cmd, app, func(ctx context.Context, caller Caller) error {
				return saveConfig(ctx, cmd, caller, patch)
			})
		},
	}
}

func newConfigEditCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Edit settings in an interactive form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.IsInteractive() {
				return errors.New("config edit needs an interactive terminal; use config set instead")
			}
			return withCaller(cmd, app, func(ctx context.Context, caller Caller) error {
				var view command.ConfigView
				if err := caller.Call(ctx, ipc.CommandGetConfig, nil, &view); err != nil {
					return err
				}
				values := editValuesOf(view)
				if err := configForm(&values).Run(); err != nil {
					return err
				}
				patch, err := values.patch()
				if err != nil {
					return err
				}
				// The form may take longer than a single call allows.
				fresh, cancel := context.WithTimeout(context.Background(), callTimeout)
				defer cancel()
				return saveConfig(fresh, cmd, caller, patch)
			})
		},
	}
}

func saveConfig(ctx context.Context, cmd *cobra.Command, caller Caller, patch map[string]any) error {
	var result command.SaveConfigResult
	if err := caller.Call(ctx, ipc.CommandSaveConfig, patch, &result); err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("save config: %s", result.Error)
	}
	if len(result.Corrected) > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "Reset to defaults: %s\n", strings.Join(result.Corrected, ", "))
	}
	return writeJSON(cmd, result.Config)
}

// ParseAssignments turns key=value arguments into a saveConfig patch.
func ParseAssignments(args []string) (map[string]any, error) {
	patch := make(map[string]any, len(args))
	for _, arg := range args {
		key, raw, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("expected key=value, got %q", arg)
		}
		kind, known := configKeys[key]
		if !known {
			return nil, fmt.Errorf("unknown setting %q", key)
		}
		raw = strings.TrimSpace(raw)
		switch kind {
		case "number":
			value, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%s: %q is not a whole number of milliseconds", key, raw)
			}
			patch[key] = value
		case "bool":
			value, err := strconv.ParseBool(raw)
			if err != nil {
				return nil, fmt.Errorf("%s: %q is not true or false", key, raw)
			}
			patch[key] = value
		default:
			patch[key] = raw
		}
	}
	return patch, nil
}

// editValues are the form fields of config edit. Durations are shown in
// fractional minutes or seconds so nothing is rounded on display, and only
// fields that differ from base are sent back.
type editValues struct {
	base          command.ConfigView
	workMinutes   string
	breakMinutes  string
	notifySeconds string
	notifyEnabled bool
	soundEnabled  bool
	autoStart     bool
	theme         model.Theme
}

func editValuesOf(view command.ConfigView) editValues {
	return editValues{
		base:          view,
		workMinutes:   unitsText(view.WorkDurationMs, 60000),
		breakMinutes:  unitsText(view.BreakDurationMs, 60000),
		notifySeconds: unitsText(view.NotifyBeforeBreakMs, 1000),
		notifyEnabled: view.NotifyEnabled,
		soundEnabled:  view.SoundEnabled,
		autoStart:     view.AutoStart,
		theme:         view.Theme,
	}
}

func (values editValues) patch() (map[string]any, error) {
	loaded := editValuesOf(values.base)
	patch := make(map[string]any)

	durations := []struct {
		key, label   string
		edited, orig string
		unitMs       float64
	}{
		{"workDurationMs", "work minutes", values.workMinutes, loaded.workMinutes, 60000},
		{"breakDurationMs", "break minutes", values.breakMinutes, loaded.breakMinutes, 60000},
		{"notifyBeforeBreakMs", "warning seconds", values.notifySeconds, loaded.notifySeconds, 1000},
	}
	for _, field := range durations {
		if strings.TrimSpace(field.edited) == field.orig {
			continue
		}
		amount, err := positiveNumber(field.edited)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", field.label, err)
		}
		ms := uint64(math.Round(amount * field.unitMs))
		if ms == 0 {
			return nil, fmt.Errorf("%s: %q is below one millisecond", field.label, field.edited)
		}
		patch[field.key] = ms
	}

	if values.notifyEnabled != loaded.notifyEnabled {
		patch["notifyEnabled"] = values.notifyEnabled
	}
	if values.soundEnabled != loaded.soundEnabled {
		patch["soundEnabled"] = values.soundEnabled
	}
	if values.autoStart != loaded.autoStart {
		patch["autoStart"] = values.autoStart
	}
	if values.theme != loaded.theme {
		patch["theme"] = string(values.theme)
	}
	return patch, nil
}

func unitsText(ms uint64, unitMs float64) string {
	return strconv.FormatFloat(float64(ms)/unitMs, 'f', -1, 64)
}

func configForm(values *editValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Work minutes").Value(&values.workMinutes).Validate(validatePositive),
			huh.NewInput().Title("Break minutes").Value(&values.breakMinutes).Validate(validatePositive),
			huh.NewInput().Title("Warn seconds before a break").Value(&values.notifySeconds).Validate(validatePositive),
		),
		huh.NewGroup(
			huh.NewConfirm().Title("Pre-break warning").Value(&values.notifyEnabled),
			huh.NewConfirm().Title("Sounds").Value(&values.soundEnabled),
			huh.NewConfirm().Title("Launch at login").Value(&values.autoStart),
			huh.NewSelect[model.Theme]().
				Title("Theme").
				Options(
					huh.NewOption("Light", model.ThemeLight),
					huh.NewOption("Dark", model.ThemeDark),
					huh.NewOption("System", model.ThemeAuto),
				).
				Value(&values.theme),
		),
	).WithShowHelp(false)
}

func validatePositive(value string) error {
	_, err := positiveNumber(value)
	return err
}

func positiveNumber(value string) (float64, error) {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || parsed <= 0 || math.IsInf(parsed, 0) || math.IsNaN(parsed) {
		return 0, fmt.Errorf("%q is not a positive number", value)
	}
	return parsed, nil
}
