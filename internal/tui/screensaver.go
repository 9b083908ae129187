package tui

import (
	"time"

	tea "charm.land/bubbletea/v2"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/indirex/touchmeter/internal/tui/theme"
)

// ScreenSaver blanks the kiosk to a clock after a period without input.
type ScreenSaver struct {
	timeout   time.Duration
	lastInput time.Time
	active    bool
	now       time.Time
}

// NewScreenSaver creates a saver that activates after timeout of inactivity.
func NewScreenSaver(timeout time.Duration, now time.Time) *ScreenSaver {
	return &ScreenSaver{timeout: timeout, lastInput: now, now: now}
}

// Active reports whether the clock is showing.
func (s *ScreenSaver) Active() bool { return s.active }

// Check schedules the next idle check.
func (s *ScreenSaver) Check() tea.Cmd {
	if s.timeout <= 0 {
		return nil
	}
	wait := s.timeout - s.now.Sub(s.lastInput)
	if wait <= 0 {
		wait = s.timeout
	}
	return tea.Tick(wait, func(t time.Time) tea.Msg { return idleCheckMsg{at: t} })
}

// Touch records input. It returns true when the input woke the saver, in
// which case the input must not reach the screen below and the caller
// restarts the idle check.
func (s *ScreenSaver) Touch(now time.Time) bool {
	s.lastInput = now
	s.now = now
	if s.active {
		s.active = false
		return true
	}
	return false
}

func clockTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return clockTickMsg(t) })
}

// Update handles idle checks and clock ticks.
func (s *ScreenSaver) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case idleCheckMsg:
		s.now = msg.at
		if s.active {
			return nil
		}
		if msg.at.Sub(s.lastInput) >= s.timeout {
			s.active = true
			return clockTick()
		}
		return s.Check()
	case clockTickMsg:
		s.now = time.Time(msg)
		if s.active {
			return clockTick()
		}
	}
	return nil
}

// Draw renders the clock.
func (s *ScreenSaver) Draw(scr uv.Screen, area uv.Rectangle) {
	st := theme.Current().S()
	y := area.Min.Y + area.Dy()/2 - 2

	PlaceCentered(scr, area, y, st.Clock.Render(s.now.Format("15:04")))
	PlaceCentered(scr, area, y+2, st.Muted.Render(s.now.Format("Mon, 2 January 2006")))
	PlaceCentered(scr, area, area.Max.Y-2, st.Muted.Render("Tap anywhere to exit"))
}
