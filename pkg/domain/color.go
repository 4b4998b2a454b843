package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is an opaque RGB display color. It implements image/color.Color.
type Color struct {
	R, G, B uint8
}

var (
	Red     = Color{255, 0, 0}
	Green   = Color{0, 255, 0}
	Blue    = Color{0, 0, 255}
	Yellow  = Color{255, 255, 0}
	Cyan    = Color{0, 255, 255}
	Magenta = Color{255, 0, 255}
	White   = Color{255, 255, 255}
	Black   = Color{0, 0, 0}
)

var namedColors = map[string]Color{
	"red":     Red,
	"green":   Green,
	"blue":    Blue,
	"yellow":  Yellow,
	"cyan":    Cyan,
	"magenta": Magenta,
	"white":   White,
	"black":   Black,
}

// Palette is the sequence used for plots that were not given a color.
var Palette = []Color{
	{0x4e, 0x79, 0xa7},
	{0xf2, 0x8e, 0x2b},
	{0xe1, 0x57, 0x59},
	{0x76, 0xb7, 0xb2},
	{0x59, 0xa1, 0x4f},
	{0xed, 0xc9, 0x48},
	{0xb0, 0x7a, 0xa1},
	{0xff, 0x9d, 0xa7},
}

// PaletteColor returns the i-th palette color, cycling.
func PaletteColor(i int) Color {
	if i < 0 {
		i = -i
	}
	return Palette[i%len(Palette)]
}

// ParseColor accepts a color name (red, green, blue, yellow, cyan, magenta,
// white, black) or a hex code in #rgb or #rrggbb form.
func ParseColor(s string) (Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c, nil
	}

	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		if v, err := strconv.ParseUint(hex, 16, 32); err == nil {
			return Color{uint8(v >> 16), uint8(v >> 8), uint8(v)}, nil
		}
	}
	return Color{}, fmt.Errorf("%w: %q", ErrUnknownColor, s)
}

// ColorFromName is the lenient form of ParseColor: unknown input yields white.
func ColorFromName(name string) Color {
	c, err := ParseColor(name)
	if err != nil {
		return White
	}
	return c
}

// RGBA implements image/color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R) * 0x101
	g = uint32(c.G) * 0x101
	b = uint32(c.B) * 0x101
	return r, g, b, 0xffff
}

// Floats returns the components scaled to [0, 1].
func (c Color) Floats() (r, g, b float64) {
	return float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255
}

// Hex returns the color as #rrggbb.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// String returns the color name when it has one, and the hex code otherwise.
func (c Color) String() string {
	for name, named := range namedColors {
		if named == c {
			return name
		}
	}
	return c.Hex()
}
