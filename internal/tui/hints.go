package tui

import (
	"github.com/indirex/touchmeter/internal/tui/theme"
)

// Standard key representations for consistent hints across the wizard.
const (
	KeyLeftRight = "←/→"
	KeyEnter     = "enter"
	KeySpace     = "space"
	KeyEsc       = "esc"
	KeyCtrlC     = "ctrl+c"
	KeyCtrlP     = "ctrl+p"
	KeyDigits    = "0-9"
	KeyClick     = "tap"
)

// RenderHint renders a single key-description pair.
// Example: RenderHint("enter", "select") -> "enter select"
func RenderHint(key, desc string) string {
	s := theme.Current().S()
	return s.HintKey.Render(key) + " " + s.HintDesc.Render(desc)
}

// RenderHintBar renders a hint bar with multiple key-description pairs.
// Pairs are separated by " . ".
// Example: RenderHintBar("←/→", "navigate", "ctrl+c", "quit")
// Returns: "←/→ navigate . ctrl+c quit"
func RenderHintBar(pairs ...string) string {
	if len(pairs) == 0 || len(pairs)%2 != 0 {
		return ""
	}

	s := theme.Current().S()
	var result string

	for i := 0; i < len(pairs); i += 2 {
		if i > 0 {
			result += " " + s.HintSeparator.Render(".") + " "
		}
		result += RenderHint(pairs[i], pairs[i+1])
	}

	return result
}

// HintKeyboard returns hints shown while the keyboard drawer is open.
func HintKeyboard(masked bool) string {
	if masked {
		return RenderHintBar(KeyEnter, "submit", KeyCtrlP, "show/hide", KeyEsc, "close keyboard")
	}
	return RenderHintBar(KeyEnter, "submit", KeyEsc, "close keyboard")
}

// HintStepper returns the hints of the framed steps.
func HintStepper() string {
	return RenderHintBar(KeyLeftRight, "navigate", KeyClick, "select", KeyCtrlC, "quit")
}
