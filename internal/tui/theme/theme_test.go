package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentDefaultsToMocha(t *testing.T) {
	th := Current()
	require.NotNil(t, th)
	assert.Equal(t, "catppuccin-mocha", th.Name)
	assert.NotNil(t, th.S())
	assert.Same(t, th.S(), th.S(), "styles are built once")
}

func TestSetCurrent(t *testing.T) {
	orig := Current()
	defer SetCurrent(orig)

	custom := &Theme{Name: "custom", Primary: "#ffffff"}
	SetCurrent(custom)
	assert.Same(t, custom, Current())
}

func TestInterpolateColor(t *testing.T) {
	assert.Equal(t, "#000000", InterpolateColor("#000000", "#ffffff", 0))
	assert.Equal(t, "#ffffff", InterpolateColor("#000000", "#ffffff", 1))
	assert.Equal(t, "#7f7f7f", InterpolateColor("#000000", "#ffffff", 0.5))
}

func TestParseHexColor(t *testing.T) {
	r, g, b := ParseHexColor("#cba6f7")
	assert.Equal(t, [3]uint8{0xcb, 0xa6, 0xf7}, [3]uint8{r, g, b})

	r, g, b = ParseHexColor("bad")
	assert.Equal(t, [3]uint8{0, 0, 0}, [3]uint8{r, g, b})
}
