// Package wizard implements the step-sequencing engine behind the setup wizard.
//
// The engine owns the ordered step list, the current index, the transition
// direction and the processing sub-phase. It performs no I/O and never blocks;
// renderers read its snapshots and call the navigation operations from the UI loop.
package wizard

import (
	"errors"
	"fmt"

	"github.com/gosimple/slug"
	"github.com/indirex/touchmeter/internal/logger"
)

// ErrConfiguration is returned when the step sequence cannot form a valid wizard.
var ErrConfiguration = errors.New("invalid wizard configuration")

// minSteps is Intro + one stepper step + Outro.
const minSteps = 3

// Phase is the presentation mode derived from the navigation state.
type Phase int

const (
	PhaseIntro Phase = iota
	PhaseStepper
	PhaseProcessing
	PhaseOutro
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIntro:
		return "intro"
	case PhaseStepper:
		return "stepper"
	case PhaseProcessing:
		return "processing"
	case PhaseOutro:
		return "outro"
	default:
		return "unknown"
	}
}

// Direction tells the renderer which way to animate a transition.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// String returns the direction name.
func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// Step is one screen in the fixed sequence.
type Step struct {
	Index int    // Position in the sequence, assigned by NewEngine
	ID    string // Slug of the title (or the render key when untitled)
	Title string // Chrome title, may be empty
	Key   string // Identifies the component that renders this step
	// InProgress reports whether the step is counted by the progress indicator.
	InProgress bool
}

// State is a read-only snapshot of the navigation state.
type State struct {
	Index     int
	Direction Direction
	Phase     Phase
	// LastAbort holds the reason of the most recent AbortProcessing, cleared by
	// any later navigation.
	LastAbort string
}

// Progress is the stepper view of the current index.
type Progress struct {
	Visible int // 1-based visible step number
	Total   int // Number of stepper steps
}

// Option configures an Engine at construction.
type Option func(*Engine)

// StartAt positions the engine at index (clamped to the valid range).
func StartAt(index int) Option {
	return func(e *Engine) {
		e.index = e.clamp(index)
	}
}

// Engine drives the linear wizard.
type Engine struct {
	steps      []Step
	index      int
	direction  Direction
	processing bool
	lastAbort  string
}

// NewEngine builds an engine over steps. The first step is the Intro, the last
// the Outro; everything in between is a stepper step.
func NewEngine(steps []Step, opts ...Option) (*Engine, error) {
	if len(steps) < minSteps {
		return nil, fmt.Errorf("%w: need at least %d steps, got %d", ErrConfiguration, minSteps, len(steps))
	}

	seq := make([]Step, len(steps))
	seen := make(map[string]bool, len(steps))
	for i, s := range steps {
		s.Index = i
		if s.ID == "" {
			s.ID = stepID(s)
		}
		if seen[s.ID] {
			return nil, fmt.Errorf("%w: duplicate step id %q", ErrConfiguration, s.ID)
		}
		seen[s.ID] = true
		seq[i] = s
	}

	e := &Engine{steps: seq, direction: Forward}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func stepID(s Step) string {
	if s.Title != "" {
		return slug.Make(s.Title)
	}
	if s.Key != "" {
		return slug.Make(s.Key)
	}
	return fmt.Sprintf("step-%d", s.Index)
}

// Len returns the number of steps.
func (e *Engine) Len() int { return len(e.steps) }

// FirstStepperIndex is the index of the first framed step.
func (e *Engine) FirstStepperIndex() int { return 1 }

// LastStepperIndex is the index of the step that triggers processing.
func (e *Engine) LastStepperIndex() int { return len(e.steps) - 2 }

func (e *Engine) outroIndex() int { return len(e.steps) - 1 }

func (e *Engine) clamp(i int) int {
	if i < 0 {
		return 0
	}
	if i > e.outroIndex() {
		return e.outroIndex()
	}
	return i
}

// Steps returns a copy of the step sequence.
func (e *Engine) Steps() []Step {
	out := make([]Step, len(e.steps))
	copy(out, e.steps)
	return out
}

// Current returns the step at the current index. During processing this is
// still the last stepper step.
func (e *Engine) Current() Step {
	return e.steps[e.index]
}

// Phase returns the active phase.
func (e *Engine) Phase() Phase {
	switch {
	case e.processing:
		return PhaseProcessing
	case e.index == 0:
		return PhaseIntro
	case e.index == e.outroIndex():
		return PhaseOutro
	default:
		return PhaseStepper
	}
}

// State returns a snapshot of the navigation state.
func (e *Engine) State() State {
	return State{
		Index:     e.index,
		Direction: e.direction,
		Phase:     e.Phase(),
		LastAbort: e.lastAbort,
	}
}

// Progress maps the current index onto the stepper range.
func (e *Engine) Progress() Progress {
	first, last := e.FirstStepperIndex(), e.LastStepperIndex()
	total := last - first + 1

	visible := 1
	if e.index > first {
		visible = e.index - first + 1
	}
	if visible > total {
		visible = total
	}
	return Progress{Visible: visible, Total: total}
}

// CanGoPrevious reports whether GoPrevious would move.
func (e *Engine) CanGoPrevious() bool {
	switch e.Phase() {
	case PhaseIntro, PhaseProcessing:
		return false
	}
	return true
}

// CanGoNext reports whether GoNext would change anything.
func (e *Engine) CanGoNext() bool {
	switch e.Phase() {
	case PhaseProcessing, PhaseOutro:
		return false
	}
	return true
}

// GoNext advances one step. From the last stepper step it enters the
// processing phase without moving the index.
func (e *Engine) GoNext() {
	if e.processing {
		return
	}
	e.lastAbort = ""

	if e.Phase() == PhaseStepper && e.index == e.LastStepperIndex() {
		e.processing = true
		logger.Debug("wizard: entering processing from %s", e.steps[e.index].ID)
		return
	}

	e.direction = Forward
	e.index = e.clamp(e.index + 1)
	logger.Debug("wizard: next -> %d (%s)", e.index, e.steps[e.index].ID)
}

// GoPrevious moves back one step. It does nothing in the intro or while processing.
func (e *Engine) GoPrevious() {
	if !e.CanGoPrevious() {
		return
	}
	e.lastAbort = ""
	e.direction = Backward
	e.index = e.clamp(e.index - 1)
	logger.Debug("wizard: previous -> %d (%s)", e.index, e.steps[e.index].ID)
}

// CompleteProcessing leaves the processing phase and jumps to the outro.
func (e *Engine) CompleteProcessing() {
	if !e.processing {
		return
	}
	e.processing = false
	e.direction = Forward
	e.index = e.outroIndex()
	logger.Debug("wizard: processing complete -> %d (%s)", e.index, e.steps[e.index].ID)
}

// AbortProcessing leaves the processing phase without advancing. The index
// stays on the last stepper step and reason is kept in State.LastAbort.
func (e *Engine) AbortProcessing(reason string) {
	if !e.processing {
		return
	}
	e.processing = false
	e.direction = Backward
	e.lastAbort = reason
	logger.Warn("wizard: processing aborted: %s", reason)
}

// Reset returns to the intro.
func (e *Engine) Reset() {
	e.processing = false
	e.lastAbort = ""
	e.direction = Forward
	e.index = 0
}
