package imaging

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// ParseColor parses a CSS-style hex color ("#RRGGBB" or "#RGB").
func ParseColor(hex string) (color.Color, error) {
	if hex == "" {
		return nil, fmt.Errorf("empty color string")
	}
	if hex[0] != '#' {
		hex = "#" + hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return nil, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

// HexColor formats c as "#rrggbb", ignoring alpha.
func HexColor(c color.Color) string {
	cf, _ := colorful.MakeColor(c)
	return cf.Hex()
}
