// Package tui renders the setup wizard in the terminal. The App owns the
// wizard engine and the keyboard relay and hands both to the step screens.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/indirex/touchmeter/internal/config"
	"github.com/indirex/touchmeter/internal/keyboard"
	"github.com/indirex/touchmeter/internal/logger"
	"github.com/indirex/touchmeter/internal/tui/theme"
	"github.com/indirex/touchmeter/internal/wizard"
)

// Step render keys.
const (
	StepWelcome          = "welcome"
	StepNetwork          = "network"
	StepDeviceID         = "device-id"
	StepHouseholdID      = "household-id"
	StepOTP              = "otp"
	StepTVStatus         = "tv-status"
	StepInputSource      = "input-source"
	StepObjectDetection  = "object-detection"
	StepAudioFingerprint = "audio-fingerprint"
	StepSummary          = "summary"
	StepMembers          = "members"
)

// Steps returns the kiosk setup sequence: the welcome intro, the framed
// configuration steps and the members outro.
func Steps() []wizard.Step {
	framed := func(title, k string) wizard.Step {
		return wizard.Step{Title: title, Key: k, InProgress: true}
	}
	return []wizard.Step{
		{Key: StepWelcome},
		framed("Network", StepNetwork),
		framed("Device ID", StepDeviceID),
		framed("Household ID", StepHouseholdID),
		framed("OTP Verification", StepOTP),
		framed("TV Status", StepTVStatus),
		framed("Input Source", StepInputSource),
		framed("Object Detection", StepObjectDetection),
		framed("Audio Fingerprint", StepAudioFingerprint),
		framed("Summary", StepSummary),
		{Key: StepMembers},
	}
}

// Options configures the App.
type Options struct {
	ProbeInterval   time.Duration
	IdleTimeout     time.Duration
	ProcessingMode  string
	ProcessingTime  time.Duration
	MessageInterval time.Duration
	// StartComplete opens the wizard on the outro.
	StartComplete bool
	// Markers delivers base names of files created or removed in the data
	// directory. May be nil.
	Markers <-chan string
	// Now defaults to time.Now.
	Now func() time.Time
}

// OptionsFromConfig maps the loaded configuration onto Options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		ProbeInterval:   cfg.ProbeInterval,
		IdleTimeout:     cfg.IdleTimeout,
		ProcessingMode:  cfg.Processing.Mode,
		ProcessingTime:  cfg.Processing.Duration,
		MessageInterval: cfg.Processing.MessageInterval,
	}
}

type keyMap struct {
	Quit   key.Binding
	Prev   key.Binding
	Next   key.Binding
	Close  key.Binding
	Reveal key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp(KeyCtrlC, "quit")),
		Prev:   key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "previous")),
		Next:   key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "next")),
		Close:  key.NewBinding(key.WithKeys("esc"), key.WithHelp(KeyEsc, "close keyboard")),
		Reveal: key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp(KeyCtrlP, "show/hide")),
	}
}

// App is the main Bubbletea model for the setup wizard.
type App struct {
	ctx    context.Context
	opts   Options
	keys   keyMap
	engine *wizard.Engine
	relay  *keyboard.Relay
	env    *env

	screens    map[string]Screen
	active     string
	drawer     *KeyboardDrawer
	buttons    *ButtonBar
	processing *ProcessingView
	saver      *ScreenSaver

	// pending holds commands queued by relay callbacks.
	pending []tea.Cmd

	// Completion state of the current processing run.
	elapsed   bool
	finalized bool
	finalErr  error

	width    int
	height   int
	quitting bool
}

// NewApp creates the wizard over svc.
func NewApp(ctx context.Context, svc Collaborators, opts Options) (*App, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ProcessingMode == "" {
		opts.ProcessingMode = config.ModeTimer
	}
	defaults := config.Default()
	if opts.ProbeInterval <= 0 {
		opts.ProbeInterval = defaults.ProbeInterval
	}
	if opts.ProcessingTime <= 0 {
		opts.ProcessingTime = defaults.Processing.Duration
	}
	if opts.MessageInterval <= 0 {
		opts.MessageInterval = defaults.Processing.MessageInterval
	}

	steps := Steps()
	var engineOpts []wizard.Option
	if opts.StartComplete {
		engineOpts = append(engineOpts, wizard.StartAt(len(steps)-1))
	}
	engine, err := wizard.NewEngine(steps, engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("building wizard: %w", err)
	}

	a := &App{
		ctx:        ctx,
		opts:       opts,
		keys:       defaultKeyMap(),
		engine:     engine,
		relay:      keyboard.NewRelay(),
		buttons:    NewButtonBar(),
		processing: NewProcessingView(opts.MessageInterval, opts.ProcessingTime),
		saver:      NewScreenSaver(opts.IdleTimeout, opts.Now()),
	}
	a.buttons.SetSpread(true)
	a.drawer = NewKeyboardDrawer(a.relay)
	a.env = &env{
		ctx:           ctx,
		svc:           svc,
		relay:         a.relay,
		probeInterval: opts.ProbeInterval,
		facts:         &setupFacts{},
		emit: func(cmd tea.Cmd) {
			if cmd != nil {
				a.pending = append(a.pending, cmd)
			}
		},
	}

	e := a.env
	a.screens = map[string]Screen{
		StepWelcome:          NewWelcomeScreen(),
		StepNetwork:          newNetworkScreen(e),
		StepDeviceID:         newDeviceIDScreen(e),
		StepHouseholdID:      newHouseholdScreen(e),
		StepOTP:              newOTPScreen(e),
		StepTVStatus:         newTVStatusScreen(e),
		StepInputSource:      newInputSourceScreen(e),
		StepObjectDetection:  newObjectDetectionScreen(e),
		StepAudioFingerprint: newAudioFingerprintScreen(e),
		StepSummary:          newSummaryScreen(e),
		StepMembers:          newMembersScreen(e),
	}
	for _, s := range steps {
		if _, ok := a.screens[s.Key]; !ok {
			return nil, fmt.Errorf("%w: no screen for step %q", wizard.ErrConfiguration, s.Key)
		}
	}
	return a, nil
}

// Engine returns the wizard engine.
func (a *App) Engine() *wizard.Engine { return a.engine }

// Relay returns the keyboard relay.
func (a *App) Relay() *keyboard.Relay { return a.relay }

// Screen returns the screen rendering the step with render key k.
func (a *App) Screen(k string) Screen { return a.screens[k] }

func (a *App) screen() Screen {
	return a.screens[a.engine.Current().Key]
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.syncScreen(),
		a.probeTick(),
		a.saver.Check(),
		a.waitForMarker(),
	)
}

// syncScreen enters the screen of the current step if it changed.
func (a *App) syncScreen() tea.Cmd {
	k := a.engine.Current().Key
	if k == a.active {
		return nil
	}
	if prev, ok := a.screens[a.active]; ok {
		prev.Leave()
	}
	a.relay.Unbind()
	a.active = k
	logger.Debug("tui: entering %s", k)
	return a.screens[k].Enter()
}

func (a *App) probeTick() tea.Cmd {
	return tea.Tick(a.opts.ProbeInterval, func(time.Time) tea.Msg { return probeTickMsg{} })
}

func (a *App) waitForMarker() tea.Cmd {
	ch := a.opts.Markers
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		name, ok := <-ch
		if !ok {
			return nil
		}
		return markerChangedMsg{Name: name}
	}
}

// flush batches cmds with the commands queued by relay callbacks.
func (a *App) flush(cmds ...tea.Cmd) tea.Cmd {
	cmds = append(cmds, a.pending...)
	a.pending = nil
	return tea.Batch(cmds...)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		return a, nil

	case tea.KeyPressMsg:
		return a.handleKeyPress(msg)

	case tea.MouseClickMsg:
		return a.handleMouse(msg)

	case NextMsg:
		return a, a.next()

	case PrevMsg:
		return a, a.prev()

	case probeTickMsg:
		var cmd tea.Cmd
		if a.engine.Phase() != wizard.PhaseProcessing {
			cmd = a.screen().Update(msg)
		}
		return a, a.flush(cmd, a.probeTick())

	case markerChangedMsg:
		logger.Debug("tui: marker %s changed", msg.Name)
		return a, a.flush(a.screen().Update(msg), a.waitForMarker())

	case processingTickMsg, spinner.TickMsg:
		if a.engine.Phase() != wizard.PhaseProcessing {
			return a, nil
		}
		return a, a.processing.Update(msg)

	case processingDoneMsg:
		if msg.gen != a.processing.Gen() {
			return a, nil
		}
		a.elapsed = true
		return a, a.settleProcessing()

	case finalizedMsg:
		if msg.gen != a.processing.Gen() {
			return a, nil
		}
		if msg.Err != nil && a.opts.ProcessingMode != config.ModeVerify {
			logger.Error("finalize setup: %v", msg.Err)
		}
		a.finalized, a.finalErr = true, msg.Err
		return a, a.settleProcessing()

	case idleCheckMsg, clockTickMsg:
		return a, a.saver.Update(msg)
	}

	return a, a.flush(a.screen().Update(msg))
}

func (a *App) handleKeyPress(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, a.keys.Quit) {
		a.quitting = true
		return a, tea.Quit
	}
	if a.saver.Touch(a.opts.Now()) {
		return a, a.saver.Check()
	}
	if a.engine.Phase() == wizard.PhaseProcessing {
		return a, nil
	}

	if a.relay.Bound() {
		switch {
		case key.Matches(msg, a.keys.Close):
			a.relay.Unbind()
		case key.Matches(msg, a.keys.Reveal):
			a.relay.TogglePasswordVisibility()
		default:
			if tok, ok := keyboard.ParseToken(msg.String()); ok {
				a.relay.Press(tok)
			}
		}
		return a, a.flush()
	}

	if a.engine.Phase() == wizard.PhaseStepper {
		switch {
		case key.Matches(msg, a.keys.Prev):
			return a, a.prev()
		case key.Matches(msg, a.keys.Next):
			return a, a.next()
		}
	}
	return a, a.flush(a.screen().Update(msg))
}

func (a *App) handleMouse(msg tea.MouseClickMsg) (tea.Model, tea.Cmd) {
	mouse := msg.Mouse()

	// Only handle left mouse button
	if mouse.Button != tea.MouseLeft {
		return a, nil
	}
	if a.saver.Touch(a.opts.Now()) {
		return a, a.saver.Check()
	}
	if a.engine.Phase() == wizard.PhaseProcessing {
		return a, nil
	}

	// The drawer overlays the bottom of the screen and takes priority.
	if a.drawer.HandleClick(mouse.X, mouse.Y) {
		return a, a.flush()
	}

	if a.engine.Phase() == wizard.PhaseStepper {
		if i, ok := a.buttons.HandleClick(mouse.X, mouse.Y); ok {
			if i == 0 {
				return a, a.prev()
			}
			return a, a.next()
		}
	}
	return a, a.flush(a.screen().HandleClick(mouse.X, mouse.Y))
}

func (a *App) next() tea.Cmd {
	if !a.engine.CanGoNext() {
		return nil
	}
	a.engine.GoNext()
	if a.engine.Phase() == wizard.PhaseProcessing {
		a.relay.Unbind()
		a.elapsed, a.finalized, a.finalErr = false, false, nil
		start := a.processing.Start(a.opts.Now())
		gen := a.processing.Gen()
		return tea.Batch(start, a.elapsedCmd(gen), a.finalizeCmd(gen))
	}
	return a.syncScreen()
}

func (a *App) prev() tea.Cmd {
	if !a.engine.CanGoPrevious() {
		return nil
	}
	a.engine.GoPrevious()
	return a.syncScreen()
}

// elapsedCmd fires once the configured processing time has passed.
func (a *App) elapsedCmd(gen int) tea.Cmd {
	return tea.Tick(a.opts.ProcessingTime, func(time.Time) tea.Msg {
		return processingDoneMsg{gen: gen}
	})
}

// finalizeCmd runs Finalize alongside the processing display.
func (a *App) finalizeCmd(gen int) tea.Cmd {
	ctx, svc := a.ctx, a.env.svc
	return func() tea.Msg {
		return finalizedMsg{gen: gen, Err: svc.Finalize(ctx)}
	}
}

// settleProcessing leaves the processing phase when the run is over. Timer
// mode ends once the time elapsed. Verify mode also waits for Finalize and
// aborts back to the last stepper step if it failed.
func (a *App) settleProcessing() tea.Cmd {
	if a.engine.Phase() != wizard.PhaseProcessing || !a.elapsed {
		return nil
	}
	if a.opts.ProcessingMode == config.ModeVerify {
		if !a.finalized {
			return nil
		}
		if a.finalErr != nil {
			a.engine.AbortProcessing(a.finalErr.Error())
			return nil
		}
	}
	a.engine.CompleteProcessing()
	return a.syncScreen()
}

// View renders the current view. In Bubbletea v2, this returns tea.View
// with display options like AltScreen and MouseMode.
func (a *App) View() tea.View {
	var view tea.View
	view.AltScreen = true
	view.MouseMode = tea.MouseModeCellMotion

	if a.quitting {
		view.AltScreen = false
		view.MouseMode = 0
		view.Content = lipgloss.NewLayer("")
		return view
	}
	if a.width == 0 || a.height == 0 {
		view.Content = lipgloss.NewLayer("Loading...")
		return view
	}

	canvas := uv.NewScreenBuffer(a.width, a.height)
	a.Draw(canvas, canvas.Bounds())
	view.Content = lipgloss.NewLayer(canvas.Render())
	view.BackgroundColor = lipgloss.Color(theme.Current().BgCrust)
	return view
}

// Draw renders all components to the screen buffer.
func (a *App) Draw(scr uv.Screen, area uv.Rectangle) {
	if a.saver.Active() {
		a.saver.Draw(scr, area)
		return
	}
	if area.Dy() < 3 {
		return
	}

	a.drawStatusBar(scr, uv.Rect(area.Min.X, area.Min.Y, area.Dx(), 1))
	body := uv.Rect(area.Min.X, area.Min.Y+1, area.Dx(), area.Dy()-2)

	var drawerArea uv.Rectangle
	if h := a.drawer.Height(); h > 0 && h < body.Dy() {
		drawerArea = uv.Rect(body.Min.X, body.Max.Y-h, body.Dx(), h)
		body.Max.Y -= h
	}

	switch a.engine.Phase() {
	case wizard.PhaseProcessing:
		a.processing.Draw(scr, body)
	case wizard.PhaseStepper:
		a.drawCard(scr, body)
	default:
		a.screen().Draw(scr, body)
	}

	if !drawerArea.Empty() {
		a.drawer.Draw(scr, drawerArea)
	}
	DrawText(scr, uv.Rect(area.Min.X+1, area.Max.Y-1, area.Dx()-1, 1), a.hints())
}

func (a *App) drawStatusBar(scr uv.Screen, area uv.Rectangle) {
	s := theme.Current().S()
	left := s.AppTitle.Render(" touchmeter")
	right := s.Clock.Render(a.opts.Now().Format("15:04") + " ")
	DrawStyled(scr, area, s.StatusBar, spaceBetween(left, right, area.Dx()))
}

// Card geometry: border plus horizontal padding.
const (
	cardInsetX   = 3
	cardInsetY   = 1
	cardMaxWidth = 96
	cardMaxInner = 24
)

// drawCard renders the framed stepper step: title, progress dots, the step
// screen and the Previous/Next footer.
func (a *App) drawCard(scr uv.Screen, area uv.Rectangle) {
	s := theme.Current().S()

	width := min(area.Dx()-2, cardMaxWidth)
	innerW := width - 2*cardInsetX
	innerH := min(area.Dy()-2, cardMaxInner)
	if innerW < 10 || innerH < 6 {
		a.screen().Draw(scr, area)
		return
	}

	blank := strings.Repeat(strings.Repeat(" ", innerW)+"\n", innerH-1) + strings.Repeat(" ", innerW)
	x := area.Min.X + (area.Dx()-width)/2
	y := area.Min.Y + (area.Dy()-innerH-2)/2
	Place(scr, x, y, s.Card.Render(blank))

	inner := uv.Rect(x+cardInsetX, y+cardInsetY, innerW, innerH)
	step := a.engine.Current()
	dots := a.renderProgress()
	Place(scr, inner.Min.X, inner.Min.Y, s.CardTitle.Render(step.Title))
	Place(scr, inner.Max.X-lipgloss.Width(dots), inner.Min.Y, dots)
	DrawRule(scr, uv.Rect(inner.Min.X, inner.Min.Y+1, innerW, 1), s.Muted)

	content := uv.Rect(inner.Min.X, inner.Min.Y+3, innerW, innerH-6)
	a.screen().Draw(scr, content)

	if reason := a.engine.State().LastAbort; reason != "" {
		Place(scr, inner.Min.X, inner.Max.Y-3, s.Error.Render("Setup failed: "+reason))
	}
	DrawRule(scr, uv.Rect(inner.Min.X, inner.Max.Y-2, innerW, 1), s.Muted)

	nextLabel := "Next"
	if step.Index == a.engine.LastStepperIndex() {
		nextLabel = "Finish"
	}
	a.buttons.SetButtons(CreatePrevNextButtons(a.engine.CanGoPrevious(), a.engine.CanGoNext(), nextLabel)...)
	a.buttons.Draw(scr, uv.Rect(inner.Min.X, inner.Max.Y-1, innerW, 1))
}

// renderProgress draws one dot per stepper step, with an arrow for the
// direction of the last move.
func (a *App) renderProgress() string {
	s := theme.Current().S()
	p := a.engine.Progress()

	parts := make([]string, 0, p.Total)
	for i := 1; i <= p.Total; i++ {
		switch {
		case i < p.Visible:
			parts = append(parts, s.StepDone.Render("●"))
		case i == p.Visible:
			parts = append(parts, s.StepCurrent.Render("◉"))
		default:
			parts = append(parts, s.StepTodo.Render("○"))
		}
	}
	arrow := "▶"
	if a.engine.State().Direction == wizard.Backward {
		arrow = "◀"
	}
	return strings.Join(parts, s.StepTodo.Render("─")) +
		s.Muted.Render(fmt.Sprintf(" %d/%d %s", p.Visible, p.Total, arrow))
}

func (a *App) hints() string {
	if b, ok := a.relay.Binding(); ok {
		return HintKeyboard(b.Masked)
	}
	switch a.engine.Phase() {
	case wizard.PhaseIntro:
		return RenderHintBar(KeyEnter, "start", KeyCtrlC, "quit")
	case wizard.PhaseStepper:
		return HintStepper()
	case wizard.PhaseOutro:
		return RenderHintBar("arrows", "select", KeyEnter, "toggle", KeyClick, "toggle", KeyCtrlC, "quit")
	default:
		return ""
	}
}

// Run starts the wizard program and blocks until it exits or ctx is done.
func Run(ctx context.Context, app *App) error {
	p := tea.NewProgram(app)
	stop := context.AfterFunc(ctx, p.Quit)
	defer stop()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running wizard: %w", err)
	}
	return nil
}
