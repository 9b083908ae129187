package keyboard

import (
	"strings"
	"unicode/utf8"
)

// Kind classifies a key token.
type Kind int

const (
	KindLiteral Kind = iota
	KindBackspace
	KindEnter
	KindTab
	KindCapsLock
	KindShift
	KindSpace
)

// Token is a single key event fed to the relay.
type Token struct {
	Kind Kind
	Char rune // Set for KindLiteral only
}

// Named control tokens.
var (
	Backspace = Token{Kind: KindBackspace}
	Enter     = Token{Kind: KindEnter}
	Tab       = Token{Kind: KindTab}
	CapsLock  = Token{Kind: KindCapsLock}
	Shift     = Token{Kind: KindShift}
	Space     = Token{Kind: KindSpace}
)

// Literal returns a literal character token.
func Literal(r rune) Token {
	return Token{Kind: KindLiteral, Char: r}
}

// String returns the key name used by on-screen keys.
func (t Token) String() string {
	switch t.Kind {
	case KindBackspace:
		return "Backspace"
	case KindEnter:
		return "Enter"
	case KindTab:
		return "Tab"
	case KindCapsLock:
		return "CapsLock"
	case KindShift:
		return "Shift"
	case KindSpace:
		return "Space"
	default:
		return string(t.Char)
	}
}

// ParseToken maps a key name to a token. It accepts the on-screen key names
// ("Backspace", "CapsLock", ...), the lower-case names terminals report
// ("backspace", "enter", "space", "caps_lock"), a literal " " and any single
// character. ok is false for everything else (e.g. "ctrl+a", "f5").
func ParseToken(s string) (tok Token, ok bool) {
	if s == " " {
		return Space, true
	}
	if utf8.RuneCountInString(s) == 1 {
		r, _ := utf8.DecodeRuneInString(s)
		return Literal(r), true
	}

	switch strings.ToLower(s) {
	case "backspace", "del", "delete":
		return Backspace, true
	case "enter", "return":
		return Enter, true
	case "tab":
		return Tab, true
	case "capslock", "caps_lock", "caps":
		return CapsLock, true
	case "shift":
		return Shift, true
	case "space":
		return Space, true
	}
	return Token{}, false
}
