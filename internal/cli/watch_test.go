package cli

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eyedoro/internal/core/command"
	"eyedoro/internal/core/timekeeper"
	"eyedoro/internal/ipc"
)

func keyMsg(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestWatchModelShowsStatus(t *testing.T) {
	model := newWatchModel(context.Background(), newFakeCaller(), nil)
	assert.Contains(t, model.View(), "Connecting")

	updated, _ := model.Update(statusMsg(command.Status{
		IsWorking:           true,
		IsPreBreakWarning:   true,
		Phase:               timekeeper.PhaseWorking,
		WorkTimeRemainingMs: 30000,
	}))
	view := updated.View()
	assert.Contains(t, view, "WORKING")
	assert.Contains(t, view, "0:30")
	assert.Contains(t, view, "Break coming up")
}

func TestWatchModelKeepsRecentEvents(t *testing.T) {
	var model tea.Model = newWatchModel(context.Background(), newFakeCaller(), nil)
	model, _ = model.Update(statusMsg(command.Status{Phase: timekeeper.PhaseOnBreak, IsBreakActive: true}))
	for i := 0; i < watchLogSize+2; i++ {
		model, _ = model.Update(eventMsg(ipc.EventMessage{Type: "break-starting"}))
	}
	assert.Len(t, model.(watchModel).log, watchLogSize)
	assert.Contains(t, model.View(), "break-starting")
}

func TestWatchModelKeysRunCommands(t *testing.T) {
	caller := newFakeCaller()
	caller.results[ipc.CommandTogglePause] = `{"success":true,"paused":true}`
	caller.results[ipc.CommandSkipBreak] = `{"success":false,"error":"session is not working"}`
	caller.results[ipc.CommandEndBreakEarly] = `false`
	model := newWatchModel(context.Background(), caller, nil)

	_, cmd := model.Update(keyMsg('p'))
	require.NotNil(t, cmd)
	assert.Equal(t, noticeMsg("Toggled pause."), cmd())

	_, cmd = model.Update(keyMsg('s'))
	assert.Equal(t, noticeMsg("skipBreak: session is not working"), cmd())

	_, cmd = model.Update(keyMsg('e'))
	assert.Equal(t, noticeMsg("Nothing to do."), cmd())

	_, cmd = model.Update(keyMsg('b'))
	msg := cmd()
	require.IsType(t, errMsg{}, msg)

	_, cmd = model.Update(keyMsg('q'))
	assert.Equal(t, tea.Quit(), cmd())
}

func TestWatchModelStreamClosedQuits(t *testing.T) {
	events := make(chan ipc.EventMessage)
	close(events)
	model := newWatchModel(context.Background(), newFakeCaller(), events)

	msg := model.waitEvent()()
	assert.Equal(t, streamClosedMsg{}, msg)

	updated, cmd := model.Update(msg)
	assert.Equal(t, tea.Quit(), cmd())
	assert.EqualError(t, updated.(watchModel).err, "instance disconnected")
}

func TestWatchModelRecordsErrors(t *testing.T) {
	model := newWatchModel(context.Background(), newFakeCaller(), nil)
	updated, _ := model.Update(errMsg{errors.New("boom")})
	assert.Contains(t, updated.View(), "boom")
}

func TestFormatEvent(t *testing.T) {
	assert.Contains(t, FormatEvent(ipc.EventMessage{Type: "time-extended", AddedMs: 300000}), "time-extended +300s")
	assert.Contains(t, FormatEvent(ipc.EventMessage{Type: "break-complete", Early: true}), "ended early")
	assert.Contains(t, FormatEvent(ipc.EventMessage{Type: ipc.EventThemeChanged, Theme: "dark", Origin: "settings"}), "dark (from settings)")
}
