package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"eyedoro/internal/core/command"
	"eyedoro/internal/core/timekeeper"
	"eyedoro/internal/ipc"
)

var (
	colorGreen  = lipgloss.Color("#66bb6a")
	colorBlue   = lipgloss.Color("#42a5f5")
	colorYellow = lipgloss.Color("#fbc02d")
	colorDim    = lipgloss.Color("#9e9e9e")
)

var (
	styleWorking = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	styleBreak   = lipgloss.NewStyle().Foreground(colorBlue).Bold(true)
	stylePaused  = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
	styleTimer   = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	stylePanel   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(1, 3)
)

// FormatStatus renders a one-line status summary.
func FormatStatus(status command.Status) string {
	switch {
	case status.IsBreakActive:
		return styleBreak.Render("On break") + " " + clock(status.BreakTimeRemainingMs) + " left"
	case status.IsPaused:
		return stylePaused.Render("Paused")
	case status.IsWorking:
		line := styleWorking.Render("Working") + " next break in " + clock(status.WorkTimeRemainingMs)
		if status.IsPreBreakWarning {
			line += " " + stylePaused.Render("(break soon)")
		}
		return line
	default:
		return styleDim.Render("Starting")
	}
}

// FormatEvent renders a pushed event as a log line.
func FormatEvent(event ipc.EventMessage) string {
	at := event.At
	if at.IsZero() {
		at = time.Now()
	}
	var detail string
	switch timekeeper.EventType(event.Type) {
	case timekeeper.EventPreBreakWarning:
		detail = fmt.Sprintf("break in %ds", event.CountdownSeconds)
	case timekeeper.EventBreakStarting:
		detail = fmt.Sprintf("%s break", clock(uint64(event.BreakDurationMs)))
	case timekeeper.EventBreakComplete:
		if event.Early {
			detail = "ended early"
		}
	case timekeeper.EventTimeExtended:
		detail = fmt.Sprintf("+%ds", event.AddedMs/1000)
	}
	if event.Type == ipc.EventThemeChanged {
		detail = fmt.Sprintf("%s (from %s)", event.Theme, event.Origin)
	}

	line := styleDim.Render(at.Format("15:04:05")) + " " + event.Type
	if detail != "" {
		line += " " + detail
	}
	return line
}

func clock(ms uint64) string {
	total := time.Duration(ms) * time.Millisecond
	seconds := int((total + time.Second - 1) / time.Second)
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func phaseStyle(phase timekeeper.Phase) lipgloss.Style {
	switch phase {
	case timekeeper.PhaseOnBreak:
		return styleBreak
	case timekeeper.PhasePaused:
		return stylePaused
	case timekeeper.PhaseWorking:
		return styleWorking
	default:
		return styleDim
	}
}

func phaseTitle(phase timekeeper.Phase) string {
	switch phase {
	case timekeeper.PhaseOnBreak:
		return "ON BREAK"
	case timekeeper.PhasePaused:
		return "PAUSED"
	case timekeeper.PhaseWorking:
		return "WORKING"
	default:
		return "IDLE"
	}
}

func joinLines(lines ...string) string {
	return strings.Join(lines, "\n")
}
