package tui

import (
	"context"
	"errors"
	"sync"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/colorprofile"
	"github.com/indirex/touchmeter/internal/device"
)

func init() {
	// Plain output keeps rendered frames comparable.
	lipgloss.Writer.Profile = colorprofile.Ascii
}

// fakeCollaborators records calls and returns canned answers.
type fakeCollaborators struct {
	mu sync.Mutex

	markers  map[string]bool
	deviceID string
	hhid     string
	members  []device.Member

	submitErr   error
	verifyErr   error
	toggleErr   error
	finalizeErr error

	submitted []string
	verified  []string
	retries   int
	toggled   []string
	finalized int
}

func newFake() *fakeCollaborators {
	return &fakeCollaborators{
		markers:  map[string]bool{},
		deviceID: "IM000123",
	}
}

func (f *fakeCollaborators) ProbeMarker(name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.markers[name], nil
}

func (f *fakeCollaborators) DeviceID() (string, error) {
	if f.deviceID == "" {
		return "", device.ErrLookup
	}
	return f.deviceID, nil
}

func (f *fakeCollaborators) HouseholdID() (string, error) {
	if f.hhid == "" {
		return "", device.ErrLookup
	}
	return f.hhid, nil
}

func (f *fakeCollaborators) SubmitHouseholdID(_ context.Context, deviceID, hhid string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, deviceID+"/"+hhid)
	if f.submitErr != nil {
		return "", f.submitErr
	}
	f.hhid = hhid
	return "OTP sent successfully", nil
}

func (f *fakeCollaborators) VerifyOTP(_ context.Context, deviceID, hhid, otp string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verified = append(f.verified, deviceID+"/"+hhid+"/"+otp)
	if f.verifyErr != nil {
		return "", f.verifyErr
	}
	return "OTP verified, members fetched", nil
}

func (f *fakeCollaborators) RetryOTP(context.Context, string, string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.retries++
	return "OTP sent successfully", nil
}

func (f *fakeCollaborators) ListMembers() ([]device.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]device.Member, len(f.members))
	copy(out, f.members)
	return out, nil
}

func (f *fakeCollaborators) ToggleMember(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.toggled = append(f.toggled, id)
	if f.toggleErr != nil {
		return f.toggleErr
	}
	for i := range f.members {
		if f.members[i].ID == id {
			f.members[i].Active = !f.members[i].Active
			return nil
		}
	}
	return errors.New("unknown member")
}

func (f *fakeCollaborators) Finalize(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finalized++
	return f.finalizeErr
}

// runCmd executes cmd and any batched commands, returning the messages.
// Only use it on commands known not to contain ticks.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func keyPress(s string) tea.KeyPressMsg {
	switch s {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case "left":
		return tea.KeyPressMsg{Code: tea.KeyLeft}
	case "right":
		return tea.KeyPressMsg{Code: tea.KeyRight}
	case "backspace":
		return tea.KeyPressMsg{Code: tea.KeyBackspace}
	case "ctrl+c":
		return tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl}
	case "ctrl+p":
		return tea.KeyPressMsg{Code: 'p', Mod: tea.ModCtrl}
	}
	r := []rune(s)[0]
	return tea.KeyPressMsg{Code: r, Text: s}
}
