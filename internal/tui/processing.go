package tui

import (
	"strings"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/indirex/touchmeter/internal/tui/theme"
)

// processingMessages rotate while the meter finishes setup.
var processingMessages = []string{
	"Verifying device configuration...",
	"Syncing time and firmware versions...",
	"Calibrating sensors and input sources...",
	"Validating network and server connection...",
	"Initializing AI models and detection modules...",
	"Checking audio fingerprinting engine...",
	"Registering device with cloud services...",
	"Applying final security checks...",
	"Preparing dashboard and user interface...",
	"Setup complete. Launching application...",
}

const progressWidth = 40

// ProcessingView is the fullscreen progress display shown between the last
// stepper step and the outro.
type ProcessingView struct {
	spinner  spinner.Model
	interval time.Duration
	duration time.Duration

	message int
	started time.Time
	now     time.Time
	// gen tags ticks so a restarted run ignores ticks of the previous one.
	gen int
}

// NewProcessingView creates a view that rotates messages every interval and
// fills its progress bar over duration.
func NewProcessingView(interval, duration time.Duration) *ProcessingView {
	t := theme.Current()
	return &ProcessingView{
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Points),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(t.Primary))),
		),
		interval: interval,
		duration: duration,
	}
}

// Start resets the view and returns its tick commands.
func (p *ProcessingView) Start(now time.Time) tea.Cmd {
	p.gen++
	p.message = 0
	p.started = now
	p.now = now
	return tea.Batch(p.spinner.Tick, p.tick())
}

// Gen returns the current run generation.
func (p *ProcessingView) Gen() int { return p.gen }

// Message returns the message on display.
func (p *ProcessingView) Message() string {
	return processingMessages[p.message]
}

func (p *ProcessingView) tick() tea.Cmd {
	gen := p.gen
	return tea.Tick(p.interval, func(time.Time) tea.Msg { return processingTickMsg{gen: gen} })
}

// Update advances the rotation and the spinner. It keeps ticking while the
// app stays in the processing phase.
func (p *ProcessingView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case processingTickMsg:
		if msg.gen != p.gen {
			return nil
		}
		p.message = (p.message + 1) % len(processingMessages)
		p.now = p.now.Add(p.interval)
		return p.tick()
	case spinner.TickMsg:
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return cmd
	}
	return nil
}

// Progress returns the elapsed fraction in [0, 1].
func (p *ProcessingView) Progress() float64 {
	if p.duration <= 0 {
		return 1
	}
	f := float64(p.now.Sub(p.started)) / float64(p.duration)
	return min(max(f, 0), 1)
}

func (p *ProcessingView) renderBar() string {
	t := theme.Current()
	filled := int(p.Progress() * progressWidth)

	var b strings.Builder
	for i := 0; i < progressWidth; i++ {
		if i >= filled {
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(t.BgSurface1)).Render("─"))
			continue
		}
		c := theme.InterpolateColor(t.Primary, t.Success, float64(i)/progressWidth)
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(c)).Render("━"))
	}
	return b.String()
}

// Draw renders the spinner, message and bar centered in area.
func (p *ProcessingView) Draw(scr uv.Screen, area uv.Rectangle) {
	s := theme.Current().S()
	y := area.Min.Y + area.Dy()/2 - 2

	PlaceCentered(scr, area, y, p.spinner.View())
	PlaceCentered(scr, area, y+2, s.Emphasis.Render(p.Message()))
	PlaceCentered(scr, area, y+4, p.renderBar())
}
