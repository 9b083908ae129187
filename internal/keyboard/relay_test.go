package keyboard

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// field is a test double for a text field.
type field struct {
	value     string
	submitted []string
}

func (f *field) binding(name string) FieldBinding {
	return FieldBinding{
		Name:     name,
		Value:    func() string { return f.value },
		SetValue: func(v string) { f.value = v },
		Submit:   func(v string) { f.submitted = append(f.submitted, v) },
	}
}

func pressAll(r *Relay, keys ...string) {
	for _, k := range keys {
		tok, ok := ParseToken(k)
		if ok {
			r.Press(tok)
		}
	}
}

func TestRelay_UnboundDropsEverything(t *testing.T) {
	r := NewRelay()
	for _, tok := range []Token{Literal('a'), Backspace, Enter, Shift, CapsLock, Space} {
		assert.Equal(t, Dropped, r.Press(tok))
	}
	assert.Equal(t, KeyState{}, r.State())
	assert.Equal(t, "", r.VisibleValue())
}

func TestRelay_RebindDropsPreviousField(t *testing.T) {
	r := NewRelay()
	a, b := &field{}, &field{}

	r.Bind(a.binding("a"))
	pressAll(r, "x")
	r.Bind(b.binding("b"))
	pressAll(r, "y", "z")

	assert.Equal(t, "x", a.value)
	assert.Equal(t, "yz", b.value)
	assert.True(t, r.IsBound("b"))
	assert.False(t, r.IsBound("a"))
}

func TestRelay_NumericField(t *testing.T) {
	r := NewRelay()
	f := &field{}
	b := f.binding("hhid")
	b.NumericOnly = true
	b.MaxLength = 4
	r.Bind(b)

	assert.Equal(t, Rejected, r.Press(Literal('a')))
	assert.Equal(t, Rejected, r.Press(Space))
	assert.Equal(t, "", f.value)

	pressAll(r, "1", "2", "3", "4")
	assert.Equal(t, Rejected, r.Press(Literal('5')))
	assert.Equal(t, "1234", f.value)
	assert.Equal(t, "4 / 4", r.Counter())
	assert.True(t, r.Completed())
}

func TestRelay_NumericSubmitScenario(t *testing.T) {
	r := NewRelay()
	f := &field{}
	b := f.binding("otp")
	b.NumericOnly = true
	b.MaxLength = 4
	r.Bind(b)

	pressAll(r, "1", "2", "3", "4", "5")
	require.Equal(t, "1234", f.value)

	assert.Equal(t, Submitted, r.Press(Enter))
	assert.Equal(t, []string{"1234"}, f.submitted)
	assert.False(t, r.Bound())

	assert.Equal(t, Dropped, r.Press(Literal('6')))
	assert.Equal(t, "1234", f.value)
}

func TestRelay_SubmitMayBindNextField(t *testing.T) {
	r := NewRelay()
	ssid, password := &field{}, &field{}
	first := ssid.binding("ssid")
	first.Submit = func(string) { r.Bind(password.binding("password")) }
	r.Bind(first)

	pressAll(r, "h", "o", "m", "e")
	assert.Equal(t, Submitted, r.Press(Enter))
	assert.True(t, r.IsBound("password"))

	pressAll(r, "x")
	assert.Equal(t, "x", password.value)
}

func TestRelay_EnterRequiresCompletion(t *testing.T) {
	r := NewRelay()
	f := &field{}
	b := f.binding("otp")
	b.MaxLength = 4
	r.Bind(b)

	assert.Equal(t, Rejected, r.Press(Enter))
	pressAll(r, "1", "2", "3")
	assert.Equal(t, Rejected, r.Press(Enter))
	assert.Empty(t, f.submitted)
	assert.True(t, r.Bound())

	// Without a limit any non-empty value completes.
	g := &field{}
	r.Bind(g.binding("ssid"))
	assert.Equal(t, Rejected, r.Press(Enter))
	pressAll(r, "w")
	assert.Equal(t, Submitted, r.Press(Enter))
	assert.Equal(t, []string{"w"}, g.submitted)
}

func TestRelay_Backspace(t *testing.T) {
	r := NewRelay()
	f := &field{value: "añ"}
	r.Bind(f.binding("name"))

	assert.Equal(t, Edited, r.Press(Backspace))
	assert.Equal(t, "a", f.value)
	assert.Equal(t, Edited, r.Press(Backspace))
	assert.Equal(t, Rejected, r.Press(Backspace))
	assert.Equal(t, "", f.value)
}

func TestRelay_TabIgnored(t *testing.T) {
	r := NewRelay()
	f := &field{}
	r.Bind(f.binding("name"))
	r.Press(Shift)

	assert.Equal(t, Dropped, r.Press(Tab))
	assert.Equal(t, "", f.value)
	assert.True(t, r.State().Shift, "tab must not consume shift")
}

func TestRelay_ShiftIsOneShot(t *testing.T) {
	r := NewRelay()
	f := &field{}
	r.Bind(f.binding("name"))

	assert.Equal(t, Toggled, r.Press(Shift))
	require.True(t, r.State().Shift)

	r.Press(Literal('a'))
	assert.Equal(t, "A", f.value)
	assert.False(t, r.State().Shift)

	r.Press(Literal('a'))
	assert.Equal(t, "Aa", f.value)
}

func TestRelay_ShiftMapsSymbols(t *testing.T) {
	r := NewRelay()
	f := &field{}
	r.Bind(f.binding("password"))

	pressAll(r, "Shift", "1", "1")
	assert.Equal(t, "!1", f.value)
}

func TestRelay_CapsLockPersists(t *testing.T) {
	r := NewRelay()
	f := &field{}
	r.Bind(f.binding("name"))

	r.Press(CapsLock)
	pressAll(r, "a", "b")
	assert.Equal(t, "AB", f.value)

	// Shift with caps lock stays engaged.
	r.Press(Shift)
	pressAll(r, "c")
	assert.True(t, r.State().Shift)
	assert.True(t, r.State().CapsLock)

	r.Press(CapsLock)
	r.Press(Shift)
	pressAll(r, "d")
	assert.Equal(t, "ABCd", f.value)
}

func TestRelay_RejectedLiteralStillUnshifts(t *testing.T) {
	r := NewRelay()
	f := &field{}
	b := f.binding("hhid")
	b.NumericOnly = true
	r.Bind(b)

	r.Press(Shift)
	assert.Equal(t, Rejected, r.Press(Literal('x')))
	assert.False(t, r.State().Shift)
}

func TestRelay_SpaceRespectsMaxLength(t *testing.T) {
	r := NewRelay()
	f := &field{value: "ab"}
	b := f.binding("short")
	b.MaxLength = 3
	r.Bind(b)

	assert.Equal(t, Edited, r.Press(Space))
	assert.Equal(t, Rejected, r.Press(Space))
	assert.Equal(t, "ab ", f.value)
}

func TestRelay_MaskedField(t *testing.T) {
	r := NewRelay()
	f := &field{}
	b := f.binding("wifi-password")
	b.Masked = true
	r.Bind(b)

	pressAll(r, "s", "e", "c", "r", "e", "t")
	assert.Equal(t, strings.Repeat("•", 6), r.VisibleValue())
	assert.Equal(t, "secret", f.value, "mask is display only")

	assert.True(t, r.TogglePasswordVisibility())
	assert.Equal(t, "secret", r.VisibleValue())

	// Visibility never leaks into the next binding.
	r.Bind(b)
	assert.False(t, r.State().ShowPassword)
	assert.Equal(t, strings.Repeat("•", 6), r.VisibleValue())
}

func TestRelay_ToggleVisibilityIgnoredForPlainField(t *testing.T) {
	r := NewRelay()
	f := &field{value: "plain"}
	r.Bind(f.binding("ssid"))

	assert.False(t, r.TogglePasswordVisibility())
	assert.Equal(t, "plain", r.VisibleValue())
}

func TestRelay_BindWithoutAccessorsIsRefused(t *testing.T) {
	r := NewRelay()
	r.Bind(FieldBinding{Name: "broken"})
	assert.False(t, r.Bound())

	// A refused binding still releases the field that was live before.
	a := &field{}
	pw := a.binding("password")
	pw.Masked = true
	r.Bind(pw)
	r.TogglePasswordVisibility()
	require.True(t, r.State().ShowPassword)

	r.Bind(FieldBinding{Name: "broken"})
	assert.False(t, r.Bound())
	assert.False(t, r.State().ShowPassword)
	assert.Equal(t, Dropped, r.Press(Literal('x')))
	assert.Empty(t, a.value)
}

func TestRelay_Unbind(t *testing.T) {
	r := NewRelay()
	f := &field{}
	r.Bind(f.binding("name"))
	r.Unbind()

	assert.Equal(t, Dropped, r.Press(Literal('q')))
	assert.Equal(t, "", f.value)
	_, ok := r.Binding()
	assert.False(t, ok)
}

func TestRelay_LayoutFollowsBinding(t *testing.T) {
	r := NewRelay()
	assert.Len(t, r.Layout().Rows, 5)

	f := &field{}
	b := f.binding("otp")
	b.NumericOnly = true
	r.Bind(b)
	assert.Len(t, r.Layout().Rows, 4)
}

func TestParseToken(t *testing.T) {
	tests := []struct {
		in   string
		want Token
		ok   bool
	}{
		{"a", Literal('a'), true},
		{"7", Literal('7'), true},
		{" ", Space, true},
		{"space", Space, true},
		{"Backspace", Backspace, true},
		{"enter", Enter, true},
		{"tab", Tab, true},
		{"caps_lock", CapsLock, true},
		{"CapsLock", CapsLock, true},
		{"Shift", Shift, true},
		{"ctrl+a", Token{}, false},
		{"f5", Token{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseToken(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLayout_Label(t *testing.T) {
	l := QWERTY()
	key := Key{Token: Literal('q')}
	assert.Equal(t, "q", l.Label(key, KeyState{}))
	assert.Equal(t, "Q", l.Label(key, KeyState{CapsLock: true}))
	assert.Equal(t, "!", l.Label(Key{Token: Literal('1')}, KeyState{Shift: true}))
	assert.Equal(t, "1", l.Label(Key{Token: Literal('1')}, KeyState{CapsLock: true}))
	assert.Equal(t, "Enter", l.Label(Key{Token: Enter, Label: "Enter"}, KeyState{}))
}
