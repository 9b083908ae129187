package keyboard

import "unicode"

// Key is one on-screen key.
type Key struct {
	Token Token
	Label string // Label for control keys; literal keys derive theirs from state
	Width int    // Cell width in terminal columns
}

// Layout is the on-screen key table.
type Layout struct {
	Rows [][]Key
	// shifted maps an unshifted character to its shift-layer symbol.
	shifted map[rune]rune
}

const literalWidth = 5

func literalRow(chars string) []Key {
	row := make([]Key, 0, len(chars))
	for _, r := range chars {
		row = append(row, Key{Token: Literal(r), Width: literalWidth})
	}
	return row
}

// QWERTY returns the full layout: number row, three letter rows and space bar.
func QWERTY() *Layout {
	numberRow := append(literalRow("`1234567890-="), Key{Token: Backspace, Label: "Del", Width: 9})

	top := append([]Key{{Token: Tab, Label: "Tab", Width: 7}}, literalRow("qwertyuiop[]\\")...)

	home := append([]Key{{Token: CapsLock, Label: "Caps", Width: 8}}, literalRow("asdfghjkl;'")...)
	home = append(home, Key{Token: Enter, Label: "Enter", Width: 9})

	bottom := append([]Key{{Token: Shift, Label: "Shift", Width: 9}}, literalRow("zxcvbnm,./")...)
	bottom = append(bottom, Key{Token: Shift, Label: "Shift", Width: 9})

	space := []Key{{Token: Space, Label: "Space", Width: 47}}

	return &Layout{
		Rows: [][]Key{numberRow, top, home, bottom, space},
		shifted: map[rune]rune{
			'`': '~', '1': '!', '2': '@', '3': '#', '4': '$', '5': '%',
			'6': '^', '7': '&', '8': '*', '9': '(', '0': ')', '-': '_',
			'=': '+', '[': '{', ']': '}', '\\': '|', ';': ':', '\'': '"',
			',': '<', '.': '>', '/': '?',
		},
	}
}

// Numeric returns a keypad layout for digit-only fields.
func Numeric() *Layout {
	return &Layout{
		Rows: [][]Key{
			literalRow("123"),
			literalRow("456"),
			literalRow("789"),
			{
				{Token: Backspace, Label: "Del", Width: literalWidth},
				{Token: Literal('0'), Width: literalWidth},
				{Token: Enter, Label: "OK", Width: literalWidth},
			},
		},
	}
}

// Shifted returns the shift-layer symbol for r, or r itself.
func (l *Layout) Shifted(r rune) rune {
	if s, ok := l.shifted[r]; ok {
		return s
	}
	return r
}

// Resolve returns the character a literal key produces under st.
// Symbols follow shift only; letters follow shift or caps lock.
func (l *Layout) Resolve(r rune, st KeyState) rune {
	if st.Shift {
		r = l.Shifted(r)
	}
	if st.upper() {
		return unicode.ToUpper(r)
	}
	return r
}

// Label returns the text shown on k under st.
func (l *Layout) Label(k Key, st KeyState) string {
	if k.Token.Kind != KindLiteral {
		return k.Label
	}
	return string(l.Resolve(k.Token.Char, st))
}
