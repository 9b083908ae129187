package tui

import (
	"testing"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/charmbracelet/x/ansi"
	"github.com/indirex/touchmeter/internal/keyboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestButtonBar_SkipsDisabled(t *testing.T) {
	bar := NewButtonBar(CreatePrevNextButtons(false, true, "Next")...)
	bar.SetSpread(true)

	scr := uv.NewScreenBuffer(60, 1)
	bar.Draw(scr, scr.Bounds())
	require.Len(t, bar.rects, 2)

	_, ok := bar.HandleClick(bar.rects[0].Min.X, 0)
	assert.False(t, ok, "disabled previous button must not click")

	i, ok := bar.HandleClick(bar.rects[1].Min.X, 0)
	assert.True(t, ok)
	assert.Equal(t, 1, i)
	assert.Equal(t, 60, bar.rects[1].Max.X, "spread places the last button on the right edge")

	frame := ansi.Strip(scr.Render())
	assert.Contains(t, frame, "← Previous")
	assert.Contains(t, frame, "Next →")
}

func TestKeyboardDrawer_HiddenWhenUnbound(t *testing.T) {
	relay := keyboard.NewRelay()
	d := NewKeyboardDrawer(relay)
	assert.False(t, d.Visible())
	assert.Zero(t, d.Height())
	assert.False(t, d.HandleClick(0, 0))

	var value string
	relay.Bind(keyboard.FieldBinding{
		Name:        "pin",
		MaxLength:   4,
		NumericOnly: true,
		Value:       func() string { return value },
		SetValue:    func(v string) { value = v },
	})
	assert.Equal(t, drawerHeader+len(relay.Layout().Rows)+drawerFooter, d.Height())

	scr := uv.NewScreenBuffer(80, d.Height())
	d.Draw(scr, scr.Bounds())

	// The background of the drawer swallows clicks without pressing anything.
	assert.True(t, d.HandleClick(0, 1))
	assert.Empty(t, value)
}

func TestProcessingView_Rotates(t *testing.T) {
	p := NewProcessingView(time.Second, 4*time.Second)
	p.Start(fixedNow)
	gen := p.Gen()
	assert.Equal(t, processingMessages[0], p.Message())
	assert.Zero(t, p.Progress())

	p.Update(processingTickMsg{gen: gen - 1})
	assert.Equal(t, processingMessages[0], p.Message(), "stale ticks are ignored")

	p.Update(processingTickMsg{gen: gen})
	p.Update(processingTickMsg{gen: gen})
	assert.Equal(t, processingMessages[2], p.Message())
	assert.InDelta(t, 0.5, p.Progress(), 1e-9)

	for range 10 {
		p.Update(processingTickMsg{gen: gen})
	}
	assert.Equal(t, 1.0, p.Progress())

	p.Start(fixedNow)
	assert.Equal(t, gen+1, p.Gen())
	assert.Equal(t, processingMessages[0], p.Message())
}
