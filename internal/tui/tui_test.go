package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/hud"
)

type fakeCtl struct {
	resets  int
	enabled bool
	err     error
}

func (c *fakeCtl) Reset()          { c.resets++ }
func (c *fakeCtl) IsEnabled() bool { return c.enabled }
func (c *fakeCtl) SetEnabled(enabled bool) error {
	if c.err != nil {
		return c.err
	}
	c.enabled = enabled
	return nil
}

type fixedState hud.State

func (s fixedState) Snapshot(time.Time) hud.State { return hud.State(s) }

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m model, msg tea.Msg) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(model)
	require.True(t, ok)
	return out, cmd
}

func TestModel_Keys(t *testing.T) {
	ctl := &fakeCtl{enabled: true}
	m := newModel(ctl, fixedState{}, nil)

	m, _ = update(t, m, key("r"))
	assert.Equal(t, 1, ctl.resets)
	assert.Equal(t, "recognizer reset", m.flashMsg)

	m, _ = update(t, m, key("p"))
	assert.False(t, ctl.enabled)
	assert.Equal(t, "recognition paused", m.flashMsg)

	ctl.err = errors.New("read-only")
	m, _ = update(t, m, key("p"))
	assert.False(t, ctl.enabled)
	assert.Contains(t, m.flashMsg, "read-only")

	_, cmd := update(t, m, key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_EventLog(t *testing.T) {
	events := make(chan gesture.Event, 1)
	m := newModel(&fakeCtl{}, fixedState{}, events)

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < logSize+3; i++ {
		var cmd tea.Cmd
		m, cmd = update(t, m, eventMsg(gesture.Event{Type: gesture.Tap, Value: float64(i), Timestamp: base}))
		require.NotNil(t, cmd, "event must re-arm the wait")
	}

	assert.Len(t, m.log, logSize)
	assert.Equal(t, logSize+3, m.total)
	assert.Equal(t, float64(logSize+2), m.log[len(m.log)-1].Value)

	m, _ = update(t, m, key("c"))
	assert.Empty(t, m.log)
	assert.Equal(t, logSize+3, m.total)
}

func TestModel_WaitEvent(t *testing.T) {
	events := make(chan gesture.Event, 1)
	events <- gesture.Event{Type: gesture.SwipeUp}

	msg := waitEvent(events)()
	assert.Equal(t, eventMsg(gesture.Event{Type: gesture.SwipeUp}), msg)

	close(events)
	assert.Equal(t, eventsClosedMsg{}, waitEvent(events)())

	m := newModel(&fakeCtl{}, fixedState{}, events)
	_, cmd := update(t, m, eventsClosedMsg{})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_TickRefreshesState(t *testing.T) {
	state := fixedState{
		Last:    gesture.Event{Type: gesture.RotateCW, X: 160, Y: 120, Value: 20, FingerCount: 2},
		FPS:     59,
		Fingers: []hud.Finger{{Slot: 0, Point: gesture.Point{X: 140, Y: 120}}, {Slot: 1, Point: gesture.Point{X: 180, Y: 120}}},
		Enabled: true,
	}
	m := newModel(&fakeCtl{}, state, nil)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	m, cmd := update(t, m, tickMsg(now))
	require.NotNil(t, cmd)
	assert.Equal(t, hud.State(state).Last, m.state.Last)

	view := m.View()
	assert.Contains(t, view, "RotateCW")
	assert.Contains(t, view, "#1 180,120")
	assert.Contains(t, view, "(no gestures yet)")
}

func TestModel_FlashExpires(t *testing.T) {
	m := newModel(&fakeCtl{}, fixedState{Enabled: true}, nil)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	m, _ = update(t, m, tickMsg(now))
	m, _ = update(t, m, key("r"))
	m, _ = update(t, m, tickMsg(now.Add(time.Second)))
	assert.Equal(t, "recognizer reset", m.flashMsg)

	m, _ = update(t, m, tickMsg(now.Add(3*time.Second)))
	assert.Empty(t, m.flashMsg)
}

func TestView_Paused(t *testing.T) {
	m := newModel(&fakeCtl{}, fixedState{}, nil)
	m, _ = update(t, m, tickMsg(time.Now()))

	view := m.View()
	assert.True(t, strings.Contains(view, "paused"))
	assert.Contains(t, view, "no contact")
}
