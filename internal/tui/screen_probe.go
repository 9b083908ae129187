package tui

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/indirex/touchmeter/internal/device"
	"github.com/indirex/touchmeter/internal/logger"
	"github.com/indirex/touchmeter/internal/tui/theme"
)

// probeItem is one marker shown as a status card.
type probeItem struct {
	Marker string
	Title  string
	Desc   string
	On     string
	Off    string
}

// ProbeScreen shows the state of one or more status markers and re-checks
// them on every probe tick and on watcher events.
type ProbeScreen struct {
	env   *env
	items []probeItem
	note  string
	// summary renders an extra line from the probe results, if set.
	summary func(present map[string]bool) string

	present map[string]bool
	checked map[string]bool
}

func newProbeScreen(e *env, note string, items ...probeItem) *ProbeScreen {
	return &ProbeScreen{
		env:     e,
		items:   items,
		note:    note,
		present: make(map[string]bool),
		checked: make(map[string]bool),
	}
}

func newTVStatusScreen(e *env) *ProbeScreen {
	return newProbeScreen(e, "The TV status updates every %s.", probeItem{
		Marker: device.MarkerTVOn,
		Title:  "TV Status",
		Desc:   "The TV must be powered on for the meter to operate.",
		On:     "TV is ON",
		Off:    "TV is OFF",
	})
}

func newInputSourceScreen(e *env) *ProbeScreen {
	p := newProbeScreen(e, "Current input source is detected automatically and refreshed every %s.",
		probeItem{
			Marker: device.MarkerHDMIInput,
			Title:  "HDMI Input",
			Desc:   "Primary video and audio input from TV",
			On:     "Active",
			Off:    "Inactive",
		},
		probeItem{
			Marker: device.MarkerLineInInput,
			Title:  "Line In Input",
			Desc:   "External audio input through 3.5mm jack",
			On:     "Active",
			Off:    "Inactive",
		},
	)
	p.summary = func(present map[string]bool) string {
		s := theme.Current().S()
		switch {
		case present[device.MarkerHDMIInput]:
			return s.StatusOK.Render("HDMI Input is currently active")
		case present[device.MarkerLineInInput]:
			return s.StatusOK.Render("Line In Input is currently active")
		default:
			return s.StatusWait.Render("No active input detected")
		}
	}
	return p
}

func newObjectDetectionScreen(e *env) *ProbeScreen {
	return newProbeScreen(e, "Object detection status updates every %s.", probeItem{
		Marker: device.MarkerObjectDetection,
		Title:  "Object Detection",
		Desc:   "Detects presence and movement in the device area.",
		On:     "Running",
		Off:    "Stopped",
	})
}

func newAudioFingerprintScreen(e *env) *ProbeScreen {
	return newProbeScreen(e, "Fingerprint service updates every %s.", probeItem{
		Marker: device.MarkerAudioFingerprint,
		Title:  "Audio Fingerprinting",
		Desc:   "Recognizes TV content using audio comparison.",
		On:     "Active",
		Off:    "Inactive",
	})
}

// Present reports the last probe result for marker.
func (p *ProbeScreen) Present(marker string) bool { return p.present[marker] }

func (p *ProbeScreen) markers() []string {
	names := make([]string, len(p.items))
	for i, it := range p.items {
		names[i] = it.Marker
	}
	return names
}

func (p *ProbeScreen) watches(marker string) bool {
	for _, it := range p.items {
		if it.Marker == marker {
			return true
		}
	}
	return false
}

func (p *ProbeScreen) Enter() tea.Cmd {
	return probeAll(p.env.svc, p.markers()...)
}

func (p *ProbeScreen) Leave() {}

func (p *ProbeScreen) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case probeTickMsg:
		return probeAll(p.env.svc, p.markers()...)
	case markerChangedMsg:
		if p.watches(msg.Name) {
			return probeCmd(p.env.svc, msg.Name)
		}
	case markerProbedMsg:
		if !p.watches(msg.Name) {
			return nil
		}
		if msg.Err != nil {
			logger.Warn("%s check failed: %v", msg.Name, msg.Err)
			return nil
		}
		p.present[msg.Name] = msg.Present
		p.checked[msg.Name] = true
	}
	return nil
}

func (p *ProbeScreen) Draw(scr uv.Screen, area uv.Rectangle) {
	s := theme.Current().S()
	width := area.Dx() - 4
	y := area.Min.Y

	for _, it := range p.items {
		state := badge(p.present[it.Marker], it.On, it.Off)
		if !p.checked[it.Marker] {
			state = s.Muted.Render("Checking...")
		}
		content := spaceBetween(s.Emphasis.Render(it.Title), state, width) + "\n" + s.Muted.Render(it.Desc)
		r := Place(scr, area.Min.X, y, panel(content, width, p.present[it.Marker]))
		y += r.Dy()
	}

	if p.summary != nil {
		y++
		PlaceCentered(scr, area, y, p.summary(p.present))
		y++
	}

	y++
	PlaceCentered(scr, area, y, s.Muted.Render(fmt.Sprintf(p.note, p.env.probeInterval)))
}

func (p *ProbeScreen) HandleClick(x, y int) tea.Cmd { return nil }
