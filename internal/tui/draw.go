package tui

import (
	"strings"

	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"
)

// DrawText renders plain text at a position
func DrawText(scr uv.Screen, area uv.Rectangle, text string) {
	uv.NewStyledString(text).Draw(scr, area)
}

// DrawStyled renders lipgloss-styled content sized to area.
func DrawStyled(scr uv.Screen, area uv.Rectangle, style lipgloss.Style, text string) {
	content := style.Width(area.Dx()).Height(area.Dy()).Render(text)
	uv.NewStyledString(content).Draw(scr, area)
}

// FillArea clears an area with a styled background
func FillArea(scr uv.Screen, area uv.Rectangle, style lipgloss.Style) {
	fill := style.Width(area.Dx()).Height(area.Dy()).Render("")
	uv.NewStyledString(fill).Draw(scr, area)
}

// Place draws pre-rendered content with its top-left corner at (x, y) and
// returns the rectangle it covers. Hit areas are recorded from that rectangle.
func Place(scr uv.Screen, x, y int, content string) uv.Rectangle {
	r := uv.Rect(x, y, lipgloss.Width(content), lipgloss.Height(content))
	uv.NewStyledString(content).Draw(scr, r)
	return r
}

// PlaceCentered draws content horizontally centered in area at row y.
func PlaceCentered(scr uv.Screen, area uv.Rectangle, y int, content string) uv.Rectangle {
	x := area.Min.X + (area.Dx()-lipgloss.Width(content))/2
	if x < area.Min.X {
		x = area.Min.X
	}
	return Place(scr, x, y, content)
}

// DrawRule renders a horizontal separator across area's first row.
func DrawRule(scr uv.Screen, area uv.Rectangle, style lipgloss.Style) {
	if area.Dx() <= 0 {
		return
	}
	Place(scr, area.Min.X, area.Min.Y, style.Render(strings.Repeat("─", area.Dx())))
}

// inside reports whether the cell (x, y) lies in r.
func inside(r uv.Rectangle, x, y int) bool {
	return uv.Position{X: x, Y: y}.In(r)
}

// hitMap records clickable regions by name during Draw.
type hitMap map[string]uv.Rectangle

func (h *hitMap) reset() {
	*h = make(hitMap)
}

func (h *hitMap) set(name string, r uv.Rectangle) {
	if *h == nil {
		*h = make(hitMap)
	}
	(*h)[name] = r
}

// at returns the name of the region containing (x, y), or "".
func (h hitMap) at(x, y int) string {
	for name, r := range h {
		if inside(r, x, y) {
			return name
		}
	}
	return ""
}
