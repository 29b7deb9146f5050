// Package tui is a terminal HUD for headless consoles.
//
// bubbletea model: Update is a pure state transition, side effects run in
// tea.Cmd functions (waitEvent, tickCmd).
package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/hud"
)

const (
	refreshInterval = 100 * time.Millisecond
	logSize         = 10
	flashDuration   = 2 * time.Second
)

// Controller is the recognition loop as seen from the terminal.
type Controller interface {
	Reset()
	IsEnabled() bool
	SetEnabled(enabled bool) error
}

// StateSource supplies the HUD state shown in the header.
type StateSource interface {
	Snapshot(now time.Time) hud.State
}

// -- messages --

type eventMsg gesture.Event
type eventsClosedMsg struct{}
type tickMsg time.Time

// -- model --

type model struct {
	ctl    Controller
	source StateSource
	events <-chan gesture.Event

	width int
	state hud.State
	log   []gesture.Event
	total int

	flashMsg  string
	flashTime time.Time
	now       time.Time
}

func newModel(ctl Controller, source StateSource, events <-chan gesture.Event) model {
	return model{ctl: ctl, source: source, events: events, width: 60}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(waitEvent(m.events), tickCmd())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case eventMsg:
		m.log = append(m.log, gesture.Event(msg))
		if len(m.log) > logSize {
			m.log = m.log[len(m.log)-logSize:]
		}
		m.total++
		return m, waitEvent(m.events)
	case eventsClosedMsg:
		return m, tea.Quit
	case tickMsg:
		m.now = time.Time(msg)
		m.state = m.source.Snapshot(m.now)
		if !m.flashTime.IsZero() && m.now.Sub(m.flashTime) > flashDuration {
			m.flashMsg = ""
		}
		return m, tickCmd()
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.ctl.Reset()
		m.flash("recognizer reset")
	case "p":
		enabled := !m.ctl.IsEnabled()
		if err := m.ctl.SetEnabled(enabled); err != nil {
			m.flash("error: " + err.Error())
			break
		}
		if enabled {
			m.flash("recognition resumed")
		} else {
			m.flash("recognition paused")
		}
	case "c":
		m.log = nil
	}
	return m, nil
}

func (m *model) flash(text string) {
	m.flashMsg = text
	m.flashTime = m.now
	if m.flashTime.IsZero() {
		m.flashTime = time.Now()
	}
}

// -- commands --

func waitEvent(events <-chan gesture.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg(ev)
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Run shows the terminal HUD until the user quits, events closes or ctx is
// canceled.
func Run(ctx context.Context, ctl Controller, source StateSource, events <-chan gesture.Event) error {
	p := tea.NewProgram(newModel(ctl, source, events), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
