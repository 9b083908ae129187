package tui

import (
	"time"

	"github.com/indirex/touchmeter/internal/device"
)

// probeTickMsg asks probing screens to re-check their markers.
type probeTickMsg struct{}

// markerChangedMsg is sent when the data directory watcher sees a marker
// appear or disappear.
type markerChangedMsg struct {
	Name string
}

// markerProbedMsg carries one probe result.
type markerProbedMsg struct {
	Name    string
	Present bool
	Err     error
}

// deviceIDMsg carries the meter id lookup.
type deviceIDMsg struct {
	ID  string
	Err error
}

// householdIDMsg carries the stored household id lookup.
type householdIDMsg struct {
	ID  string
	Err error
}

// householdSubmittedMsg is the backend answer to a household id.
type householdSubmittedMsg struct {
	HHID   string
	Status string
	Err    error
}

// otpResultMsg is the backend answer to a verify or resend.
type otpResultMsg struct {
	Resend bool
	Status string
	Err    error
}

// membersLoadedMsg carries the local roster.
type membersLoadedMsg struct {
	Members []device.Member
	Err     error
}

// memberToggledMsg reports a toggle and publish.
type memberToggledMsg struct {
	ID  string
	Err error
}

// clearStatusMsg clears a transient status line.
type clearStatusMsg struct {
	gen int
}

// processingTickMsg advances the processing message rotation.
type processingTickMsg struct {
	gen int
}

// processingDoneMsg reports that the configured processing time elapsed.
type processingDoneMsg struct {
	gen int
}

// finalizedMsg carries the result of Finalize for a processing run.
type finalizedMsg struct {
	gen int
	Err error
}

// idleCheckMsg fires when the idle timer may have elapsed.
type idleCheckMsg struct {
	at time.Time
}

// clockTickMsg refreshes the screen saver clock.
type clockTickMsg time.Time

// NextMsg and PrevMsg are emitted by screens that drive navigation.
type (
	NextMsg struct{}
	PrevMsg struct{}
)
