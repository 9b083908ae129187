package tui

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/indirex/touchmeter/internal/keyboard"
	"github.com/indirex/touchmeter/internal/logger"
	"github.com/indirex/touchmeter/internal/tui/theme"
)

// HouseholdIDLength is the number of digits of a household id.
const HouseholdIDLength = 4

// HouseholdScreen registers the meter against a household id.
type HouseholdScreen struct {
	env *env

	field    *TextField
	deviceID string
	sending  bool
	status   string
	submit   uv.Rectangle
}

func newHouseholdScreen(e *env) *HouseholdScreen {
	h := &HouseholdScreen{env: e}
	h.field = NewTextField(keyboard.FieldBinding{
		Name:        "hhid",
		Label:       "Enter your Household ID",
		Placeholder: "0000",
		Prefix:      "HH",
		MaxLength:   HouseholdIDLength,
		NumericOnly: true,
	}, 12)
	h.field.OnSubmit(func(string) { e.emit(h.send()) })
	return h
}

// Status returns the status line.
func (h *HouseholdScreen) Status() string { return h.status }

func (h *HouseholdScreen) Enter() tea.Cmd {
	return loadDeviceID(h.env.svc)
}

func (h *HouseholdScreen) Leave() {}

// send starts registration. It returns nil when the id is incomplete or a
// request is already running.
func (h *HouseholdScreen) send() tea.Cmd {
	if h.sending || !h.field.Completed() || h.deviceID == "" {
		return nil
	}
	h.sending = true
	h.status = "Sending..."

	ctx, svc, deviceID, hhid := h.env.ctx, h.env.svc, h.deviceID, h.field.Value()
	return func() tea.Msg {
		status, err := svc.SubmitHouseholdID(ctx, deviceID, hhid)
		return householdSubmittedMsg{HHID: hhid, Status: status, Err: err}
	}
}

func (h *HouseholdScreen) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case deviceIDMsg:
		if msg.Err != nil {
			logger.Warn("household: %v", msg.Err)
			h.status = "Failed to load device ID"
			return nil
		}
		h.deviceID = msg.ID
	case householdSubmittedMsg:
		h.sending = false
		if msg.Err != nil {
			h.status = fmt.Sprintf("Failed: %v", msg.Err)
			return nil
		}
		h.status = msg.Status
		h.env.facts.HouseholdID = msg.HHID
	case tea.KeyPressMsg:
		if msg.String() == "enter" {
			h.field.Focus(h.env.relay)
		}
	}
	return nil
}

func (h *HouseholdScreen) Draw(scr uv.Screen, area uv.Rectangle) {
	s := theme.Current().S()
	x, y := area.Min.X, area.Min.Y

	Place(scr, x, y, s.Body.Render("Enter your Household ID"))
	h.field.Draw(scr, x, y+1, h.env.relay)
	Place(scr, x, y+4, s.Muted.Render(fmt.Sprintf("Enter the %d-digit household identifier assigned to you.", HouseholdIDLength)))

	label := "Submit Household ID"
	state := ButtonFocused
	if h.sending {
		label = "Sending..."
	}
	if h.sending || !h.field.Completed() || h.deviceID == "" {
		state = ButtonDisabled
	}
	h.submit = Place(scr, x, y+6, renderButton(Button{Label: label, State: state}))

	if h.status != "" {
		Place(scr, x, y+8, renderStatus(h.status))
	}
}

func (h *HouseholdScreen) HandleClick(x, y int) tea.Cmd {
	switch {
	case h.field.Contains(x, y):
		h.field.Focus(h.env.relay)
	case inside(h.submit, x, y):
		return h.send()
	}
	return nil
}
