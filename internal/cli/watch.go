package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"eyedoro/internal/core/command"
	"eyedoro/internal/ipc"
)

const watchLogSize = 6

type watchKeyMap struct {
	Quit   key.Binding
	Toggle key.Binding
	Break  key.Binding
	End    key.Binding
	Skip   key.Binding
	Add    key.Binding
}

var watchKeys = watchKeyMap{
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Toggle: key.NewBinding(key.WithKeys("p", " "), key.WithHelp("p", "pause/resume")),
	Break:  key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "break now")),
	End:    key.NewBinding(key.WithKeys("e", "esc"), key.WithHelp("e", "end break")),
	Skip:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "skip")),
	Add:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "+1 min")),
}

func (keys watchKeyMap) help() string {
	bindings := []key.Binding{keys.Toggle, keys.Break, keys.End, keys.Skip, keys.Add, keys.Quit}
	parts := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		parts = append(parts, binding.Help().Key+": "+binding.Help().Desc)
	}
	return strings.Join(parts, "  ")
}

func newWatchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow the session live",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parent := cmd.Context()
			if parent == nil {
				parent = context.Background()
			}
			ctx, stop := signal.NotifyContext(parent, os.Interrupt)
			defer stop()

			caller, err := app.Connect(ctx)
			if err != nil {
				return err
			}
			defer caller.Close()
			// A subscribed connection cannot serve calls.
			stream, err := app.Connect(ctx)
			if err != nil {
				return err
			}
			defer stream.Close()
			events, err := stream.Subscribe(ctx)
			if err != nil {
				return err
			}

			if !app.IsInteractive() {
				return followPlain(ctx, cmd, events)
			}
			model := newWatchModel(ctx, caller, events)
			_, err = tea.NewProgram(model, tea.WithContext(ctx), tea.WithOutput(cmd.OutOrStdout())).Run()
			if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}

// followPlain prints one line per event until ctx ends or the stream closes.
func followPlain(ctx context.Context, cmd *cobra.Command, events <-chan ipc.EventMessage) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return errors.New("instance disconnected")
			}
			fmt.Fprintln(cmd.OutOrStdout(), FormatEvent(event))
		}
	}
}

type (
	statusMsg       command.Status
	eventMsg        ipc.EventMessage
	noticeMsg       string
	errMsg          struct{ err error }
	tickMsg         time.Time
	streamClosedMsg struct{}
)

type watchModel struct {
	ctx    context.Context
	caller Caller
	events <-chan ipc.EventMessage

	status command.Status
	loaded bool
	log    []string
	notice string
	err    error
	width  int
}

func newWatchModel(ctx context.Context, caller Caller, events <-chan ipc.EventMessage) watchModel {
	return watchModel{ctx: ctx, caller: caller, events: events}
}

func (m watchModel) Init() tea.Cmd {
	return tea.Batch(m.fetchStatus(), m.waitEvent(), tick())
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tickMsg:
		return m, tea.Batch(m.fetchStatus(), tick())
	case statusMsg:
		m.status = command.Status(msg)
		m.loaded = true
		m.err = nil
		return m, nil
	case eventMsg:
		m.log = append(m.log, FormatEvent(ipc.EventMessage(msg)))
		if len(m.log) > watchLogSize {
			m.log = m.log[len(m.log)-watchLogSize:]
		}
		return m, tea.Batch(m.waitEvent(), m.fetchStatus())
	case noticeMsg:
		m.notice = string(msg)
		return m, m.fetchStatus()
	case errMsg:
		m.err = msg.err
		return m, nil
	case streamClosedMsg:
		m.err = errors.New("instance disconnected")
		return m, tea.Quit
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, watchKeys.Quit):
			return m, tea.Quit
		case key.Matches(msg, watchKeys.Toggle):
			return m, m.run(ipc.CommandTogglePause, nil, "Toggled pause.")
		case key.Matches(msg, watchKeys.Break):
			return m, m.run(ipc.CommandStartBreakNow, nil, "Break started.")
		case key.Matches(msg, watchKeys.End):
			return m, m.run(ipc.CommandEndBreakEarly, nil, "Break ended.")
		case key.Matches(msg, watchKeys.Skip):
			return m, m.run(ipc.CommandSkipBreak, nil, "Break skipped.")
		case key.Matches(msg, watchKeys.Add):
			return m, m.run(ipc.CommandAddTime, 60, "Added a minute.")
		}
	}
	return m, nil
}

func (m watchModel) View() string {
	if !m.loaded {
		if m.err != nil {
			return "Error: " + m.err.Error() + "\n"
		}
		return "Connecting...\n"
	}

	title := phaseStyle(m.status.Phase).Render(phaseTitle(m.status.Phase))
	var timer string
	switch {
	case m.status.IsBreakActive:
		timer = styleTimer.Render(clock(m.status.BreakTimeRemainingMs)) + styleDim.Render("remaining")
	case m.status.IsWorking:
		timer = styleTimer.Render(clock(m.status.WorkTimeRemainingMs)) + styleDim.Render("until break")
	default:
		timer = styleDim.Render("timer stopped")
	}

	lines := []string{title, "", timer}
	if m.status.IsPreBreakWarning {
		lines = append(lines, stylePaused.Render("Break coming up"))
	}
	if m.notice != "" {
		lines = append(lines, "", m.notice)
	}
	if m.err != nil {
		lines = append(lines, "", stylePaused.Render("Error: "+m.err.Error()))
	}
	if len(m.log) > 0 {
		lines = append(lines, "", joinLines(m.log...))
	}
	lines = append(lines, "", styleDim.Render(watchKeys.help()))

	return stylePanel.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)) + "\n"
}

func (m watchModel) fetchStatus() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, callTimeout)
		defer cancel()
		var status command.Status
		if err := m.caller.Call(ctx, ipc.CommandGetStatus, nil, &status); err != nil {
			return errMsg{err}
		}
		return statusMsg(status)
	}
}

func (m watchModel) waitEvent() tea.Cmd {
	return func() tea.Msg {
		event, ok := <-m.events
		if !ok {
			return streamClosedMsg{}
		}
		return eventMsg(event)
	}
}

func (m watchModel) run(name string, args any, done string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, callTimeout)
		defer cancel()
		var raw json.RawMessage
		if err := m.caller.Call(ctx, name, args, &raw); err != nil {
			return errMsg{err}
		}
		if string(raw) == "false" {
			return noticeMsg("Nothing to do.")
		}
		var result command.Result
		if json.Unmarshal(raw, &result) == nil && !result.Success && result.Error != "" {
			return noticeMsg(name + ": " + result.Error)
		}
		return noticeMsg(done)
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}
