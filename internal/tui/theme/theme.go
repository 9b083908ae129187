// Package theme holds the kiosk color palette and the styles built from it.
package theme

import (
	"sync"

	"charm.land/lipgloss/v2"
)

// Theme defines the color palette for the TUI.
type Theme struct {
	Name   string
	IsDark bool

	// Semantic colors
	Primary   string // lipgloss.Color takes a hex string
	Secondary string
	Tertiary  string

	// Background hierarchy (dark→light)
	BgCrust    string
	BgMantle   string
	BgBase     string
	BgSurface0 string
	BgSurface1 string
	BgSurface2 string
	BgOverlay  string

	// Foreground hierarchy (dim→bright)
	FgMuted  string
	FgSubtle string
	FgBase   string
	FgBright string

	// Status colors
	Success string
	Warning string
	Error   string
	Info    string

	// Lazy-built styles
	styles     *Styles
	stylesOnce sync.Once
}

var (
	current   = NewCatppuccinMocha()
	currentMu sync.RWMutex
)

// Current returns the active theme.
func Current() *Theme {
	currentMu.RLock()
	defer currentMu.RUnlock()
	return current
}

// SetCurrent replaces the active theme.
func SetCurrent(t *Theme) {
	currentMu.Lock()
	defer currentMu.Unlock()
	current = t
}

// S returns the pre-built styles for this theme.
// Styles are lazily initialized on first call.
func (t *Theme) S() *Styles {
	t.stylesOnce.Do(func() {
		t.styles = t.buildStyles()
	})
	return t.styles
}

func (t *Theme) c(hex string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex))
}

func (t *Theme) buildStyles() *Styles {
	button := lipgloss.NewStyle().Padding(0, 2)

	return &Styles{
		AppTitle: t.c(t.Primary).Bold(true),
		StatusBar: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.FgSubtle)).
			Background(lipgloss.Color(t.BgMantle)),
		StatusOK:   t.c(t.Success),
		StatusBad:  t.c(t.Error),
		StatusWait: t.c(t.Warning),

		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Tertiary)).
			Padding(0, 2),
		CardTitle: t.c(t.Primary).Bold(true),
		Body:      t.c(t.FgBase),
		Muted:     t.c(t.FgMuted),
		Emphasis:  t.c(t.FgBright).Bold(true),
		Error:     t.c(t.Error),

		StepDone:    t.c(t.Success),
		StepCurrent: t.c(t.Primary).Bold(true),
		StepTodo:    t.c(t.BgSurface2),

		ButtonNormal: button.
			Foreground(lipgloss.Color(t.FgBase)).
			Background(lipgloss.Color(t.BgSurface0)),
		ButtonDisabled: button.
			Foreground(lipgloss.Color(t.FgMuted)).
			Background(lipgloss.Color(t.BgMantle)),
		ButtonFocused: button.
			Foreground(lipgloss.Color(t.BgBase)).
			Background(lipgloss.Color(t.Tertiary)).
			Bold(true),

		Field: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color(t.BgSurface2)).
			Padding(0, 1),
		FieldActive: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color(t.Primary)).
			Padding(0, 1),
		Placeholder: t.c(t.FgMuted).Italic(true),

		Key: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.FgBase)).
			Background(lipgloss.Color(t.BgSurface0)),
		KeyControl: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.FgSubtle)).
			Background(lipgloss.Color(t.BgSurface1)),
		KeyActive: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.BgBase)).
			Background(lipgloss.Color(t.Primary)).
			Bold(true),
		Drawer: lipgloss.NewStyle().
			Background(lipgloss.Color(t.BgCrust)),

		MemberActive: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Success)).
			Foreground(lipgloss.Color(t.FgBright)).
			Align(lipgloss.Center),
		MemberIdle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.BgSurface1)).
			Foreground(lipgloss.Color(t.FgMuted)).
			Align(lipgloss.Center),

		HintKey:       t.c(t.FgSubtle).Bold(true),
		HintDesc:      t.c(t.FgMuted),
		HintSeparator: t.c(t.BgSurface2),

		Clock: t.c(t.FgBright).Bold(true),
	}
}
