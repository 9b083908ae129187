package tui

import (
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/indirex/touchmeter/internal/tui/theme"
)

// ButtonState represents the visual state of a button.
type ButtonState int

const (
	ButtonNormal   ButtonState = iota // Normal state (enabled)
	ButtonDisabled                    // Disabled state (grayed out)
	ButtonFocused                     // Focused/highlighted state
)

// Button represents a single button in the button bar.
type Button struct {
	Label string
	State ButtonState
}

// buttonGap is the number of columns between two buttons.
const buttonGap = 2

// ButtonBar lays out a row of buttons and resolves clicks on them.
type ButtonBar struct {
	buttons []Button
	rects   []uv.Rectangle
	// spread pushes the first and last button to the edges instead of
	// centering the row.
	spread bool
}

// NewButtonBar creates a new button bar with the given buttons.
func NewButtonBar(buttons ...Button) *ButtonBar {
	return &ButtonBar{buttons: buttons}
}

// SetButtons replaces the buttons.
func (b *ButtonBar) SetButtons(buttons ...Button) {
	b.buttons = buttons
	b.rects = nil
}

// SetSpread toggles edge alignment.
func (b *ButtonBar) SetSpread(spread bool) {
	b.spread = spread
}

// Buttons returns the current buttons.
func (b *ButtonBar) Buttons() []Button {
	return b.buttons
}

func renderButton(btn Button) string {
	s := theme.Current().S()
	switch btn.State {
	case ButtonDisabled:
		return s.ButtonDisabled.Render(btn.Label)
	case ButtonFocused:
		return s.ButtonFocused.Render(btn.Label)
	default:
		return s.ButtonNormal.Render(btn.Label)
	}
}

// Draw renders the buttons on the first row of area and records their hit areas.
func (b *ButtonBar) Draw(scr uv.Screen, area uv.Rectangle) {
	b.rects = make([]uv.Rectangle, len(b.buttons))
	if len(b.buttons) == 0 {
		return
	}

	rendered := make([]string, len(b.buttons))
	total := 0
	for i, btn := range b.buttons {
		rendered[i] = renderButton(btn)
		total += lipgloss.Width(rendered[i])
	}
	total += buttonGap * (len(b.buttons) - 1)

	if b.spread && len(b.buttons) > 1 {
		b.rects[0] = Place(scr, area.Min.X, area.Min.Y, rendered[0])
		last := len(b.buttons) - 1
		x := area.Max.X - lipgloss.Width(rendered[last])
		for i := last; i > 0; i-- {
			b.rects[i] = Place(scr, x, area.Min.Y, rendered[i])
			if i > 1 {
				x -= buttonGap + lipgloss.Width(rendered[i-1])
			}
		}
		return
	}

	x := area.Min.X + (area.Dx()-total)/2
	if x < area.Min.X {
		x = area.Min.X
	}
	for i, r := range rendered {
		b.rects[i] = Place(scr, x, area.Min.Y, r)
		x += lipgloss.Width(r) + buttonGap
	}
}

// HandleClick returns the index of the enabled button under (x, y).
func (b *ButtonBar) HandleClick(x, y int) (int, bool) {
	for i, r := range b.rects {
		if i >= len(b.buttons) {
			break
		}
		if inside(r, x, y) && b.buttons[i].State != ButtonDisabled {
			return i, true
		}
	}
	return -1, false
}

// CreatePrevNextButtons creates the Previous/Next pair of the stepper footer.
// nextLabel is "Next" or "Finish".
func CreatePrevNextButtons(prevEnabled, nextEnabled bool, nextLabel string) []Button {
	prevState := ButtonNormal
	if !prevEnabled {
		prevState = ButtonDisabled
	}
	nextState := ButtonFocused
	if !nextEnabled {
		nextState = ButtonDisabled
	}
	return []Button{
		{Label: "← Previous", State: prevState},
		{Label: nextLabel + " →", State: nextState},
	}
}
