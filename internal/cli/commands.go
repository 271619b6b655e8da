package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"eyedoro/internal/core/command"
	"eyedoro/internal/ipc"
)

func newStatusCmd(app *App) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current phase and remaining time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCaller(cmd, app, func(ctx context.Context, caller Caller) error {
				var status command.Status
				if err := caller.Call(ctx, ipc.CommandGetStatus, nil, &status); err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, status)
				}
				fmt.Fprintln(cmd.OutOrStdout(), FormatStatus(status))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw status object")
	return cmd
}

func newPauseCmd(app *App) *cobra.Command {
	return resultCmd(app, "pause", "Pause the work timer", ipc.CommandPause, "Paused.")
}

func newResumeCmd(app *App) *cobra.Command {
	return resultCmd(app, "resume", "Resume with a fresh work phase", ipc.CommandResume, "Resumed.")
}

func newBreakNowCmd(app *App) *cobra.Command {
	return resultCmd(app, "break-now", "Start a break immediately", ipc.CommandStartBreakNow, "Break started.")
}

func newSkipCmd(app *App) *cobra.Command {
	return resultCmd(app, "skip", "Skip the upcoming break and restart work", ipc.CommandSkipBreak, "Break skipped.")
}

func newToggleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle",
		Short: "Pause or resume",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCaller(cmd, app, func(ctx context.Context, caller Caller) error {
				var result command.PauseResult
				if err := caller.Call(ctx, ipc.CommandTogglePause, nil, &result); err != nil {
					return err
				}
				if !result.Success {
					return errors.New(result.Error)
				}
				if result.Paused {
					fmt.Fprintln(cmd.OutOrStdout(), "Paused.")
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "Resumed.")
				}
				return nil
			})
		},
	}
}

func newEndBreakCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "end-break",
		Short: "End the current break early",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCaller(cmd, app, func(ctx context.Context, caller Caller) error {
				var ended bool
				if err := caller.Call(ctx, ipc.CommandEndBreakEarly, nil, &ended); err != nil {
					return err
				}
				if !ended {
					fmt.Fprintln(cmd.OutOrStdout(), "No break is active.")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Break ended. Back to work!")
				return nil
			})
		},
	}
}

func newForceCloseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "force-close",
		Short: "Tear down every break surface and restart work",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCaller(cmd, app, func(ctx context.Context, caller Caller) error {
				if err := caller.Call(ctx, ipc.CommandForceCloseAll, nil, nil); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "All break windows closed.")
				return nil
			})
		},
	}
}

func newAddTimeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add-time <seconds>",
		Short: "Postpone the next break",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Range checks happen in the instance; it only accepts numbers.
			seconds, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
			if err != nil {
				return fmt.Errorf("add-time: %q is not a whole number of seconds", args[0])
			}
			return withCaller(cmd, app, func(ctx context.Context, caller Caller) error {
				if err := callResult(ctx, caller, ipc.CommandAddTime, seconds); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %d seconds.\n", seconds)
				return nil
			})
		},
	}
}

func resultCmd(app *App, use, short, name, done string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCaller(cmd, app, func(ctx context.Context, caller Caller) error {
				if err := callResult(ctx, caller, name, nil); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), done)
				return nil
			})
		},
	}
}

func callResult(ctx context.Context, caller Caller, name string, args any) error {
	var result command.Result
	if err := caller.Call(ctx, name, args, &result); err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("%s: %s", name, result.Error)
	}
	return nil
}

func writeJSON(cmd *cobra.Command, value any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
