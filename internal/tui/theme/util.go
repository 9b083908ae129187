package theme

import "fmt"

// InterpolateColor blends hex colors a and b; pos 0 yields a, 1 yields b.
func InterpolateColor(a, b string, pos float64) string {
	if pos < 0 {
		pos = 0
	} else if pos > 1 {
		pos = 1
	}
	r1, g1, b1 := ParseHexColor(a)
	r2, g2, b2 := ParseHexColor(b)

	mix := func(x, y uint8) uint8 {
		return uint8(float64(x)*(1-pos) + float64(y)*pos)
	}
	return FormatHexColor(mix(r1, r2), mix(g1, g2), mix(b1, b2))
}

// ParseHexColor extracts RGB values from "#RRGGBB". Malformed input is black.
func ParseHexColor(hex string) (r, g, b uint8) {
	if len(hex) > 0 && hex[0] == '#' {
		hex = hex[1:]
	}
	if len(hex) != 6 {
		return 0, 0, 0
	}
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		return 0, 0, 0
	}
	return r, g, b
}

// FormatHexColor formats RGB values as "#rrggbb".
func FormatHexColor(r, g, b uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}
