// Package cli is the eyedoro command line: it starts the desktop app and
// drives a running instance over its command socket.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"eyedoro/internal/ipc"
	"eyedoro/internal/logger"
	"eyedoro/internal/platform"
)

// AppName names the desktop app, its config dir and its instance socket.
const AppName = "EyeDoro"

// Origin tags configuration saves made from the command line.
const Origin = "cli"

// EnvLogLevel overrides the default log level.
const EnvLogLevel = "EYEDORO_LOG_LEVEL"

const callTimeout = 5 * time.Second

// Caller is a connection to the running instance.
type Caller interface {
	Call(ctx context.Context, command string, args, out any) error
	Subscribe(ctx context.Context) (<-chan ipc.EventMessage, error)
	Close() error
}

// Options are the process-level settings shared by every command.
type Options struct {
	Verbose   bool
	Quiet     bool
	LogFile   string
	ConfigDir string
}

// Level resolves the log level: flags win over EYEDORO_LOG_LEVEL.
func (opts Options) Level() logger.Level {
	switch {
	case opts.Quiet:
		return logger.LevelOff
	case opts.Verbose:
		return logger.LevelVerbose
	}
	level, _ := logger.ParseLevel(os.Getenv(EnvLogLevel))
	return level
}

// OpenLogger builds the process logger. The returned closer releases the
// log file, if any.
func (opts Options) OpenLogger(stderr io.Writer) (*logger.Logger, io.Closer, error) {
	if opts.LogFile == "" {
		return logger.New(opts.Level(), stderr), io.NopCloser(nil), nil
	}
	file, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return logger.New(opts.Level(), io.MultiWriter(stderr, file)), file, nil
}

// App wires the CLI to the desktop runtime and the instance socket.
type App struct {
	RunDesktop    func(ctx context.Context, opts Options) error
	Connect       func(ctx context.Context) (Caller, error)
	IsInteractive func() bool
}

// DialInstance connects to the running desktop instance.
func DialInstance(ctx context.Context) (Caller, error) {
	return ipc.Dial(ctx, platform.InstanceAddress(AppName), Origin)
}

// NewRootCmd creates the top-level "eyedoro" command. Without a subcommand
// it runs the desktop app.
func NewRootCmd(app *App) *cobra.Command {
	opts := &Options{}
	if app.Connect == nil {
		app.Connect = DialInstance
	}
	if app.IsInteractive == nil {
		app.IsInteractive = func() bool { return false }
	}

	root := &cobra.Command{
		Use:           "eyedoro",
		Short:         "Eye break reminder",
		Long:          "EyeDoro reminds you to rest your eyes with timed full-screen breaks.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.RunDesktop == nil {
				return fmt.Errorf("desktop app is not available in this build")
			}
			return app.RunDesktop(cmd.Context(), *opts)
		},
	}

	flags := root.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "Log debug output")
	flags.BoolVarP(&opts.Quiet, "quiet", "q", false, "Disable logging")
	flags.StringVar(&opts.LogFile, "log-file", "", "Also write logs to this file")
	flags.StringVar(&opts.ConfigDir, "config-dir", "", "Directory holding settings.yaml")
	root.MarkFlagsMutuallyExclusive("verbose", "quiet")

	root.AddCommand(
		newStatusCmd(app),
		newPauseCmd(app),
		newResumeCmd(app),
		newToggleCmd(app),
		newBreakNowCmd(app),
		newEndBreakCmd(app),
		newAddTimeCmd(app),
		newSkipCmd(app),
		newForceCloseCmd(app),
		newConfigCmd(app),
		newWatchCmd(app),
	)

	return root
}

// withCaller connects, runs fn with a bounded context and disconnects.
func withCaller(cmd *cobra.Command, app *App, fn func(ctx context.Context, caller Caller) error) error {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, callTimeout)
	defer cancel()

	caller, err := app.Connect(ctx)
	if err != nil {
		return err
	}
	defer caller.Close()
	return fn(ctx, caller)
}
