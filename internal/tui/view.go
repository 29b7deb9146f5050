package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/hud"
)

var (
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	gestureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	pausedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	flashStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func (m model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("mudra") + "  " + m.renderStatus())
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(strings.Repeat("─", max(10, m.width))))
	b.WriteString("\n")

	b.WriteString(m.renderLast())
	b.WriteString("\n")
	b.WriteString(renderFingers(m.state.Fingers))
	b.WriteString("\n\n")

	b.WriteString(dimStyle.Render(fmt.Sprintf("recent (%d total)", m.total)))
	b.WriteString("\n")
	if len(m.log) == 0 {
		b.WriteString(dimStyle.Render("  (no gestures yet)"))
		b.WriteString("\n")
	}
	for i := len(m.log) - 1; i >= 0; i-- {
		b.WriteString("  " + formatEvent(m.log[i]))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.flashMsg != "" {
		b.WriteString(flashStyle.Render(m.flashMsg))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("q quit  r reset  p pause  c clear log"))
	return b.String()
}

func (m model) renderStatus() string {
	if !m.state.Enabled {
		return pausedStyle.Render("paused")
	}
	return dimStyle.Render(fmt.Sprintf("%.0f fps  %d fingers", m.state.FPS, len(m.state.Fingers)))
}

func (m model) renderLast() string {
	if m.state.Last.IsNone() {
		return "Gesture: " + dimStyle.Render("-")
	}
	return "Gesture: " + gestureStyle.Render(m.state.Last.Type.String()) +
		dimStyle.Render(fmt.Sprintf("  (%d) val=%.1f @%d,%d",
			m.state.Last.FingerCount, m.state.Last.Value, m.state.Last.X, m.state.Last.Y))
}

func renderFingers(fingers []hud.Finger) string {
	if len(fingers) == 0 {
		return dimStyle.Render("no contact")
	}
	parts := make([]string, 0, len(fingers))
	for _, f := range fingers {
		parts = append(parts, fmt.Sprintf("#%d %d,%d", f.Slot, f.X, f.Y))
	}
	return strings.Join(parts, "  ")
}

func formatEvent(ev gesture.Event) string {
	return fmt.Sprintf("%s  %-14s %6.1f  @%d,%d",
		ev.Timestamp.Format("15:04:05.000"), ev.Type, ev.Value, ev.X, ev.Y)
}
