package tui

import (
	"strings"
	"unicode/utf8"

	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/indirex/touchmeter/internal/keyboard"
	"github.com/indirex/touchmeter/internal/tui/theme"
)

// TextField is an on-screen input that owns its value and hands the relay a
// binding to it when tapped.
type TextField struct {
	binding keyboard.FieldBinding
	value   string
	width   int
	rect    uv.Rectangle
}

// NewTextField creates a field from a binding template. The value accessors
// of b are replaced by the field's own.
func NewTextField(b keyboard.FieldBinding, width int) *TextField {
	f := &TextField{width: width}
	b.Value = func() string { return f.value }
	b.SetValue = func(v string) { f.value = v }
	f.binding = b
	return f
}

// Name returns the binding name.
func (f *TextField) Name() string { return f.binding.Name }

// Value returns the current text.
func (f *TextField) Value() string { return f.value }

// SetValue replaces the text.
func (f *TextField) SetValue(v string) { f.value = v }

// Completed reports whether the value satisfies the field's length rule.
func (f *TextField) Completed() bool { return f.binding.Completed(f.value) }

// OnSubmit sets the callback run when Enter submits the field.
func (f *TextField) OnSubmit(fn func(string)) { f.binding.Submit = fn }

// Focus binds the field to relay.
func (f *TextField) Focus(relay *keyboard.Relay) { relay.Bind(f.binding) }

// Contains reports whether (x, y) is on the field as last drawn.
func (f *TextField) Contains(x, y int) bool { return inside(f.rect, x, y) }

// Draw renders the boxed field with its top-left corner at (x, y).
func (f *TextField) Draw(scr uv.Screen, x, y int, relay *keyboard.Relay) uv.Rectangle {
	s := theme.Current().S()
	focused := relay.IsBound(f.binding.Name)

	var text string
	switch {
	case f.value == "":
		text = s.Placeholder.Render(f.binding.Placeholder)
	case focused:
		text = s.Body.Render(relay.VisibleValue())
	case f.binding.Masked:
		text = s.Body.Render(strings.Repeat(string(keyboard.MaskRune), utf8.RuneCountInString(f.value)))
	default:
		text = s.Body.Render(f.value)
	}
	if f.binding.Prefix != "" {
		text = s.Muted.Render(f.binding.Prefix) + " " + text
	}
	text = padRight(text, f.width)

	box := s.Field
	if focused {
		box = s.FieldActive
	}
	f.rect = Place(scr, x, y, box.Render(text))
	return f.rect
}

// padRight pads styled text with spaces to width columns.
func padRight(s string, width int) string {
	if n := lipgloss.Width(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// spaceBetween puts left and right at the two ends of width columns.
func spaceBetween(left, right string, width int) string {
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}
