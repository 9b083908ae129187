package tui

import (
	tea "charm.land/bubbletea/v2"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/indirex/touchmeter/internal/logger"
	"github.com/indirex/touchmeter/internal/tui/theme"
)

// Device ID placeholders.
const (
	deviceIDLoading = "Loading..."
	deviceIDFailed  = "Error reading device ID"
)

// DeviceIDScreen shows the meter identifier.
type DeviceIDScreen struct {
	env *env
	id  string
}

func newDeviceIDScreen(e *env) *DeviceIDScreen {
	return &DeviceIDScreen{env: e, id: deviceIDLoading}
}

// DeviceID returns the displayed identifier or placeholder.
func (d *DeviceIDScreen) DeviceID() string { return d.id }

func (d *DeviceIDScreen) Enter() tea.Cmd {
	d.id = deviceIDLoading
	return loadDeviceID(d.env.svc)
}

func (d *DeviceIDScreen) Leave() {}

func (d *DeviceIDScreen) Update(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(deviceIDMsg); ok {
		if msg.Err != nil {
			logger.Warn("device id: %v", msg.Err)
			d.id = deviceIDFailed
			return nil
		}
		d.id = msg.ID
	}
	return nil
}

func (d *DeviceIDScreen) Draw(scr uv.Screen, area uv.Rectangle) {
	s := theme.Current().S()
	y := area.Min.Y + 1

	value := s.Emphasis.Render(d.id)
	if d.id == deviceIDFailed {
		value = s.Error.Render(d.id)
	}
	PlaceCentered(scr, area, y, panel(s.Body.Render("Device ID: ")+value, 40, true))
	y += 4
	PlaceCentered(scr, area, y, s.Muted.Render("This is the unique identifier for this device."))
	PlaceCentered(scr, area, y+1, s.Muted.Render("It is assigned at manufacture and cannot be changed."))
}

func (d *DeviceIDScreen) HandleClick(x, y int) tea.Cmd { return nil }
