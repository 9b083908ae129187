package tui

import (
	"context"

	"github.com/indirex/touchmeter/internal/device"
)

// MarkerProber reports whether a status marker is present.
type MarkerProber interface {
	ProbeMarker(name string) (bool, error)
}

// Identity reads the meter and household identifiers.
type Identity interface {
	DeviceID() (string, error)
	HouseholdID() (string, error)
}

// Registration drives household assignment and OTP verification.
type Registration interface {
	SubmitHouseholdID(ctx context.Context, deviceID, hhid string) (string, error)
	VerifyOTP(ctx context.Context, deviceID, hhid, otp string) (string, error)
	RetryOTP(ctx context.Context, deviceID, hhid string) (string, error)
}

// Roster lists and toggles household members.
type Roster interface {
	ListMembers() ([]device.Member, error)
	ToggleMember(ctx context.Context, id string) error
}

// Finalizer completes setup once the stepper is done.
type Finalizer interface {
	Finalize(ctx context.Context) error
}

// Collaborators is everything the screens call out to.
type Collaborators interface {
	MarkerProber
	Identity
	Registration
	Roster
	Finalizer
}
