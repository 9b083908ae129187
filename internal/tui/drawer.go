package tui

import (
	"strings"

	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/indirex/touchmeter/internal/keyboard"
	"github.com/indirex/touchmeter/internal/tui/theme"
)

// Rows above and below the key rows of the drawer.
const (
	drawerHeader = 3
	drawerFooter = 1
)

type keyHit struct {
	rect uv.Rectangle
	tok  keyboard.Token
}

// KeyboardDrawer renders the virtual keyboard for the bound field and turns
// taps on it into relay presses.
type KeyboardDrawer struct {
	relay *keyboard.Relay

	area   uv.Rectangle
	keys   []keyHit
	toggle uv.Rectangle
	close  uv.Rectangle
}

// NewKeyboardDrawer creates a drawer over relay.
func NewKeyboardDrawer(relay *keyboard.Relay) *KeyboardDrawer {
	return &KeyboardDrawer{relay: relay}
}

// Visible reports whether a field is bound.
func (d *KeyboardDrawer) Visible() bool {
	return d.relay.Bound()
}

// Height returns the rows the drawer needs, 0 when hidden.
func (d *KeyboardDrawer) Height() int {
	if !d.Visible() {
		return 0
	}
	return drawerHeader + len(d.relay.Layout().Rows) + drawerFooter
}

// Draw renders the drawer into area.
func (d *KeyboardDrawer) Draw(scr uv.Screen, area uv.Rectangle) {
	d.area = area
	d.keys = d.keys[:0]
	d.toggle = uv.Rectangle{}
	d.close = uv.Rectangle{}

	b, ok := d.relay.Binding()
	if !ok {
		d.area = uv.Rectangle{}
		return
	}

	s := theme.Current().S()
	FillArea(scr, area, s.Drawer)

	left := area.Min.X + 2
	right := area.Max.X - 2

	label := b.Label
	if label == "" {
		label = b.Name
	}
	Place(scr, left, area.Min.Y, s.Emphasis.Render(label))
	if counter := d.relay.Counter(); counter != "" {
		Place(scr, right-lipgloss.Width(counter), area.Min.Y, s.Muted.Render(counter))
	}

	// Field line: prefix, value or placeholder, then the drawer controls.
	line := ""
	if b.Prefix != "" {
		line += s.Muted.Render(b.Prefix + " ")
	}
	if v := d.relay.VisibleValue(); v != "" {
		line += s.Body.Render(v) + s.Emphasis.Render("▏")
	} else {
		line += s.Placeholder.Render(b.Placeholder)
	}
	Place(scr, left, area.Min.Y+1, line)

	closeBtn := renderButton(Button{Label: "Close", State: ButtonNormal})
	x := right - lipgloss.Width(closeBtn)
	d.close = Place(scr, x, area.Min.Y+1, closeBtn)
	if b.Masked {
		eye := "Show"
		if d.relay.State().ShowPassword {
			eye = "Hide"
		}
		eyeBtn := renderButton(Button{Label: eye, State: ButtonNormal})
		x -= buttonGap + lipgloss.Width(eyeBtn)
		d.toggle = Place(scr, x, area.Min.Y+1, eyeBtn)
	}

	d.drawKeys(scr, area)
}

func (d *KeyboardDrawer) drawKeys(scr uv.Screen, area uv.Rectangle) {
	layout := d.relay.Layout()
	st := d.relay.State()
	s := theme.Current().S()

	widest := 0
	for _, row := range layout.Rows {
		if w := rowWidth(row); w > widest {
			widest = w
		}
	}
	x0 := area.Min.X + (area.Dx()-widest)/2
	if x0 < area.Min.X {
		x0 = area.Min.X
	}

	for i, row := range layout.Rows {
		y := area.Min.Y + drawerHeader + i
		x := x0
		for _, k := range row {
			style := s.Key
			switch {
			case k.Token.Kind == keyboard.KindCapsLock && st.CapsLock,
				k.Token.Kind == keyboard.KindShift && st.Shift:
				style = s.KeyActive
			case k.Token.Kind != keyboard.KindLiteral:
				style = s.KeyControl
			}
			cell := style.Render(padCenter(layout.Label(k, st), k.Width))
			d.keys = append(d.keys, keyHit{rect: Place(scr, x, y, cell), tok: k.Token})
			x += k.Width + 1
		}
	}
}

func rowWidth(row []keyboard.Key) int {
	w := 0
	for _, k := range row {
		w += k.Width
	}
	if len(row) > 1 {
		w += len(row) - 1
	}
	return w
}

// padCenter centers s in a field of width columns.
func padCenter(s string, width int) string {
	n := lipgloss.Width(s)
	if n >= width {
		return s
	}
	left := (width - n) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-n-left)
}

// HandleClick presses the key under (x, y). It reports whether the click
// landed on the drawer at all; clicks on the drawer background are swallowed.
func (d *KeyboardDrawer) HandleClick(x, y int) bool {
	if !d.Visible() || !inside(d.area, x, y) {
		return false
	}
	switch {
	case inside(d.close, x, y):
		d.relay.Unbind()
	case inside(d.toggle, x, y):
		d.relay.TogglePasswordVisibility()
	default:
		if tok, ok := d.KeyAt(x, y); ok {
			d.relay.Press(tok)
		}
	}
	return true
}

// KeyAt returns the key token drawn at (x, y).
func (d *KeyboardDrawer) KeyAt(x, y int) (keyboard.Token, bool) {
	for _, k := range d.keys {
		if inside(k.rect, x, y) {
			return k.tok, true
		}
	}
	return keyboard.Token{}, false
}
