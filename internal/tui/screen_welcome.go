package tui

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/indirex/touchmeter/internal/tui/theme"
)

const welcomeText = `Welcome to the guided installation wizard. We'll help you **configure your device**, connect to the network, and complete activation in just a few steps.

Before you begin, make sure that:

- the meter is connected to power
- the meter is connected to the TV via HDMI or Line-In
- WiFi credentials or a SIM card are available
- you have the Household ID from registration`

// WelcomeScreen is the intro: product title, instructions and a start button.
type WelcomeScreen struct {
	start uv.Rectangle

	introWidth int
	intro      string
}

// NewWelcomeScreen creates the intro screen.
func NewWelcomeScreen() *WelcomeScreen {
	return &WelcomeScreen{}
}

func (w *WelcomeScreen) Enter() tea.Cmd { return nil }
func (w *WelcomeScreen) Leave()         {}

func (w *WelcomeScreen) Update(msg tea.Msg) tea.Cmd {
	if k, ok := msg.(tea.KeyPressMsg); ok {
		switch k.String() {
		case "enter", "space":
			return cmdOf(NextMsg{})
		}
	}
	return nil
}

func (w *WelcomeScreen) Draw(scr uv.Screen, area uv.Rectangle) {
	s := theme.Current().S()

	width := area.Dx() - 4
	if width != w.introWidth {
		w.intro = renderMarkdown(welcomeText, width)
		w.introWidth = width
	}

	title := s.AppTitle.Render("Indi Touch Meter Setup")
	button := renderButton(Button{Label: padCenter("Start Installation", 30), State: ButtonFocused})
	footer := s.Muted.Render("You can't exit the setup until all steps are completed.")

	height := 1 + 1 + lipgloss.Height(w.intro) + 1 + 1 + 1 + 1
	y := area.Min.Y + (area.Dy()-height)/2
	if y < area.Min.Y {
		y = area.Min.Y
	}

	PlaceCentered(scr, area, y, title)
	y += 2
	for _, line := range strings.Split(w.intro, "\n") {
		PlaceCentered(scr, area, y, line)
		y++
	}
	y++
	w.start = PlaceCentered(scr, area, y, button)
	y += 2
	PlaceCentered(scr, area, y, footer)
}

func (w *WelcomeScreen) HandleClick(x, y int) tea.Cmd {
	if inside(w.start, x, y) {
		return cmdOf(NextMsg{})
	}
	return nil
}
