package tui

import (
	"context"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/indirex/touchmeter/internal/keyboard"
	"github.com/indirex/touchmeter/internal/tui/theme"
)

// Screen renders one wizard step.
type Screen interface {
	// Enter is called when the step becomes current.
	Enter() tea.Cmd
	// Leave is called when the step stops being current.
	Leave()
	Update(msg tea.Msg) tea.Cmd
	Draw(scr uv.Screen, area uv.Rectangle)
	HandleClick(x, y int) tea.Cmd
}

// env is shared by every screen of one wizard run.
type env struct {
	ctx           context.Context
	svc           Collaborators
	relay         *keyboard.Relay
	probeInterval time.Duration
	facts         *setupFacts
	// emit queues a command from inside a relay callback. The app batches
	// queued commands after each update.
	emit func(tea.Cmd)
}

// setupFacts collects what earlier steps learned for the summary.
type setupFacts struct {
	Network     string
	HouseholdID string
	Verified    bool
}

// statusGood reports whether a collaborator status reads as success.
func statusGood(status string) bool {
	lower := strings.ToLower(status)
	for _, word := range []string{"success", "sent", "verified", "assigned", "network connected"} {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

// renderStatus styles a status line by its wording.
func renderStatus(status string) string {
	s := theme.Current().S()
	switch {
	case status == "":
		return ""
	case strings.HasSuffix(status, "..."):
		return s.StatusWait.Render(status)
	case statusGood(status):
		return s.StatusOK.Render(status)
	default:
		return s.StatusBad.Render(status)
	}
}

// badge renders an on/off pill.
func badge(on bool, onText, offText string) string {
	s := theme.Current().S()
	if on {
		return s.StatusOK.Render("● " + onText)
	}
	return s.Muted.Render("○ " + offText)
}

// panel renders a bordered box with the given inner width.
func panel(content string, width int, highlight bool) string {
	t := theme.Current()
	border := t.BgSurface1
	if highlight {
		border = t.Tertiary
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(border)).
		Padding(0, 1).
		Render(padRight(content, width))
}

// probeCmd checks one marker through the collaborators.
func probeCmd(p MarkerProber, name string) tea.Cmd {
	return func() tea.Msg {
		present, err := p.ProbeMarker(name)
		return markerProbedMsg{Name: name, Present: present, Err: err}
	}
}

// probeAll batches probes for names.
func probeAll(p MarkerProber, names ...string) tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(names))
	for _, n := range names {
		cmds = append(cmds, probeCmd(p, n))
	}
	return tea.Batch(cmds...)
}

func loadDeviceID(id Identity) tea.Cmd {
	return func() tea.Msg {
		v, err := id.DeviceID()
		return deviceIDMsg{ID: v, Err: err}
	}
}

func loadHouseholdID(id Identity) tea.Cmd {
	return func() tea.Msg {
		v, err := id.HouseholdID()
		return householdIDMsg{ID: v, Err: err}
	}
}

func cmdOf(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}
