package theme

import "charm.land/lipgloss/v2"

// Styles contains all pre-built lipgloss styles for the TUI.
type Styles struct {
	AppTitle   lipgloss.Style
	StatusBar  lipgloss.Style
	StatusOK   lipgloss.Style
	StatusBad  lipgloss.Style
	StatusWait lipgloss.Style

	Card      lipgloss.Style
	CardTitle lipgloss.Style
	Body      lipgloss.Style
	Muted     lipgloss.Style
	Emphasis  lipgloss.Style
	Error     lipgloss.Style

	// Stepper dots
	StepDone    lipgloss.Style
	StepCurrent lipgloss.Style
	StepTodo    lipgloss.Style

	ButtonNormal   lipgloss.Style
	ButtonDisabled lipgloss.Style
	ButtonFocused  lipgloss.Style

	// Text fields
	Field       lipgloss.Style
	FieldActive lipgloss.Style
	Placeholder lipgloss.Style

	// Virtual keyboard
	Key        lipgloss.Style
	KeyControl lipgloss.Style
	KeyActive  lipgloss.Style
	Drawer     lipgloss.Style

	MemberActive lipgloss.Style
	MemberIdle   lipgloss.Style

	HintKey       lipgloss.Style
	HintDesc      lipgloss.Style
	HintSeparator lipgloss.Style

	Clock lipgloss.Style
}
