package tui

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/indirex/touchmeter/internal/device"
	"github.com/indirex/touchmeter/internal/logger"
	"github.com/indirex/touchmeter/internal/tui/theme"
)

const summaryNote = "Review the configuration. Press **Finish** to register this meter and open the members panel."

// SummaryScreen reviews the configuration before processing.
type SummaryScreen struct {
	env *env

	deviceID string
	hhid     string
	present  map[string]bool

	noteWidth int
	note      string
}

func newSummaryScreen(e *env) *SummaryScreen {
	return &SummaryScreen{env: e, present: make(map[string]bool)}
}

var summaryMarkers = []string{
	device.MarkerTVOn,
	device.MarkerObjectDetection,
	device.MarkerAudioFingerprint,
}

func (m *SummaryScreen) Enter() tea.Cmd {
	return tea.Batch(
		loadDeviceID(m.env.svc),
		loadHouseholdID(m.env.svc),
		probeAll(m.env.svc, summaryMarkers...),
	)
}

func (m *SummaryScreen) Leave() {}

func (m *SummaryScreen) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case deviceIDMsg:
		if msg.Err != nil {
			logger.Warn("summary: %v", msg.Err)
			return nil
		}
		m.deviceID = msg.ID
	case householdIDMsg:
		if msg.Err != nil {
			logger.Debug("summary: %v", msg.Err)
			return nil
		}
		m.hhid = msg.ID
	case markerProbedMsg:
		if msg.Err == nil {
			m.present[msg.Name] = msg.Present
		}
	case probeTickMsg:
		return probeAll(m.env.svc, summaryMarkers...)
	}
	return nil
}

// Rows returns the label/value pairs in display order.
func (m *SummaryScreen) Rows() [][2]string {
	facts := m.env.facts

	hhid := m.hhid
	if hhid == "" {
		hhid = facts.HouseholdID
	}

	verification := "Pending"
	if facts.Verified {
		verification = "Completed"
	}
	tv := "Powered Off"
	if m.present[device.MarkerTVOn] {
		tv = "Powered On"
	}
	detection := "Inactive"
	if m.present[device.MarkerObjectDetection] && m.present[device.MarkerAudioFingerprint] {
		detection = "Active"
	}

	return [][2]string{
		{"Network Type", orDash(facts.Network)},
		{"Device ID", orDash(m.deviceID)},
		{"Household ID", orDash(hhid)},
		{"Verification", verification},
		{"TV Status", tv},
		{"Detection Systems", detection},
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func (m *SummaryScreen) Draw(scr uv.Screen, area uv.Rectangle) {
	s := theme.Current().S()
	rows := m.Rows()

	colWidth := (area.Dx() - 4) / 2
	y := area.Min.Y
	half := (len(rows) + 1) / 2
	for i, row := range rows {
		x := area.Min.X
		line := i
		if i >= half {
			x += colWidth + 4
			line = i - half
		}
		Place(scr, x, y+line, spaceBetween(s.Body.Render(row[0]+":"), s.Emphasis.Render(row[1]), colWidth))
	}

	y += half + 1
	if area.Dx() != m.noteWidth {
		m.note = renderMarkdown(summaryNote, area.Dx())
		m.noteWidth = area.Dx()
	}
	for i, line := range strings.Split(m.note, "\n") {
		Place(scr, area.Min.X, y+i, line)
	}
}

func (m *SummaryScreen) HandleClick(x, y int) tea.Cmd { return nil }
