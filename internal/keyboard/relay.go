// Package keyboard implements the virtual keyboard relay: one shared on-screen
// input device that feeds whichever text field currently owns it.
package keyboard

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/indirex/touchmeter/internal/logger"
)

// MaskRune replaces each character of a hidden value.
const MaskRune = '•'

// KeyState holds the modifier and visibility flags of the keyboard.
type KeyState struct {
	CapsLock     bool
	Shift        bool
	ShowPassword bool
}

func (s KeyState) upper() bool { return s.CapsLock || s.Shift }

// FieldBinding describes the field that receives keystrokes.
// Value and SetValue are required; Submit is optional.
type FieldBinding struct {
	Name        string // Field identifier, for logs
	Label       string
	Placeholder string
	Prefix      string
	MaxLength   int // 0 means unlimited
	NumericOnly bool
	Masked      bool

	Value    func() string
	SetValue func(string)
	Submit   func(value string)
}

// Completed reports whether value satisfies the field's completion rule:
// exactly MaxLength characters when a limit is set, non-empty otherwise.
func (b FieldBinding) Completed(value string) bool {
	n := utf8.RuneCountInString(value)
	if b.MaxLength > 0 {
		return n == b.MaxLength
	}
	return n > 0
}

// Outcome reports what a key press did.
type Outcome int

const (
	Dropped   Outcome = iota // No binding, or key is not relayed
	Rejected                 // Validation refused the key
	Edited                   // Buffer changed
	Toggled                  // A modifier changed
	Submitted                // Field submitted and unbound
)

// String returns the outcome name.
func (o Outcome) String() string {
	return [...]string{"dropped", "rejected", "edited", "toggled", "submitted"}[o]
}

// Relay routes key tokens to at most one bound field.
type Relay struct {
	state   KeyState
	binding *FieldBinding
	qwerty  *Layout
	numpad  *Layout
}

// NewRelay creates an unbound relay.
func NewRelay() *Relay {
	return &Relay{
		qwerty: QWERTY(),
		numpad: Numeric(),
	}
}

// Bind makes b the live field, replacing any previous binding.
// Password visibility is reset for the new field. A binding without value
// accessors is refused, and the previous field is released all the same.
func (r *Relay) Bind(b FieldBinding) {
	r.state.ShowPassword = false
	if b.Value == nil || b.SetValue == nil {
		logger.Warn("keyboard: refusing binding %q without value accessors", b.Name)
		r.Unbind()
		return
	}
	if r.binding != nil {
		logger.Debug("keyboard: rebinding %q -> %q", r.binding.Name, b.Name)
	}
	r.binding = &b
	r.state.ShowPassword = false
}

// Unbind releases the current field. Later presses are dropped.
func (r *Relay) Unbind() {
	r.binding = nil
}

// Bound reports whether a field is bound.
func (r *Relay) Bound() bool { return r.binding != nil }

// Binding returns the current binding.
func (r *Relay) Binding() (FieldBinding, bool) {
	if r.binding == nil {
		return FieldBinding{}, false
	}
	return *r.binding, true
}

// IsBound reports whether the field called name is the live one.
func (r *Relay) IsBound(name string) bool {
	return r.binding != nil && r.binding.Name == name
}

// State returns the modifier snapshot.
func (r *Relay) State() KeyState { return r.state }

// Layout returns the key table for the bound field.
func (r *Relay) Layout() *Layout {
	if r.binding != nil && r.binding.NumericOnly {
		return r.numpad
	}
	return r.qwerty
}

// Press relays one token to the bound field.
func (r *Relay) Press(tok Token) Outcome {
	if r.binding == nil {
		return Dropped
	}
	b := r.binding

	switch tok.Kind {
	case KindTab:
		return Dropped

	case KindCapsLock:
		r.state.CapsLock = !r.state.CapsLock
		return Toggled

	case KindShift:
		r.state.Shift = !r.state.Shift
		return Toggled

	case KindBackspace:
		v := b.Value()
		if v == "" {
			return Rejected
		}
		_, size := utf8.DecodeLastRuneInString(v)
		b.SetValue(v[:len(v)-size])
		return Edited

	case KindEnter:
		v := b.Value()
		if !b.Completed(v) {
			return Rejected
		}
		logger.Debug("keyboard: submitting %q", b.Name)
		if b.Submit != nil {
			b.Submit(v)
		}
		// Submit may have bound the next field.
		if r.binding == b {
			r.Unbind()
		}
		return Submitted

	case KindSpace:
		return r.typeRune(' ')

	default:
		return r.typeRune(tok.Char)
	}
}

func (r *Relay) typeRune(ch rune) Outcome {
	b := r.binding
	ch = r.Layout().Resolve(ch, r.state)

	// Shift is one-shot unless caps lock holds it.
	if r.state.Shift && !r.state.CapsLock {
		r.state.Shift = false
	}

	if b.NumericOnly && !unicode.IsDigit(ch) {
		return Rejected
	}
	v := b.Value()
	if b.MaxLength > 0 && utf8.RuneCountInString(v) >= b.MaxLength {
		return Rejected
	}
	b.SetValue(v + string(ch))
	return Edited
}

// VisibleValue returns the bound value for display, masked when the field is
// a password and visibility is off. It is empty when nothing is bound.
func (r *Relay) VisibleValue() string {
	if r.binding == nil {
		return ""
	}
	v := r.binding.Value()
	if r.binding.Masked && !r.state.ShowPassword {
		return strings.Repeat(string(MaskRune), utf8.RuneCountInString(v))
	}
	return v
}

// TogglePasswordVisibility flips visibility for a masked field and returns the
// new setting.
func (r *Relay) TogglePasswordVisibility() bool {
	if r.binding != nil && r.binding.Masked {
		r.state.ShowPassword = !r.state.ShowPassword
	}
	return r.state.ShowPassword
}

// Completed reports whether the bound value would be accepted by Enter.
func (r *Relay) Completed() bool {
	return r.binding != nil && r.binding.Completed(r.binding.Value())
}

// Counter returns "len / max" for limited fields, or "".
func (r *Relay) Counter() string {
	if r.binding == nil || r.binding.MaxLength == 0 {
		return ""
	}
	return fmt.Sprintf("%d / %d", utf8.RuneCountInString(r.binding.Value()), r.binding.MaxLength)
}
