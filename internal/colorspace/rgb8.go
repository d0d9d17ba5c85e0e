package colorspace

import (
	"errors"
	"fmt"
	"image/color"
	"strings"
)

// ErrInvalidHex is returned by ParseHex for malformed color strings
var ErrInvalidHex = errors.New("invalid hex color")

// RGB8 is an 8-bit gamma-encoded sRGB triple. It implements color.Color
// with full opacity.
type RGB8 struct {
	R, G, B uint8
}

// RGBA implements color.Color
func (c RGB8) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R)
	r |= r << 8
	g = uint32(c.G)
	g |= g << 8
	b = uint32(c.B)
	b |= b << 8
	return r, g, b, 0xffff
}

// Color returns c as an SRGB Color with components in [0,1]
func (c RGB8) Color() Color {
	return NewSRGB(float32(c.R)/255, float32(c.G)/255, float32(c.B)/255)
}

// Hex formats c as "#rrggbb"
func (c RGB8) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// FromColor converts any color.Color to RGB8, ignoring alpha after
// un-premultiplying
func FromColor(c color.Color) RGB8 {
	if v, ok := c.(RGB8); ok {
		return v
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGB8{R: n.R, G: n.G, B: n.B}
}

// Quantize converts c to 8-bit sRGB. Channels are clamped to [0,1] and then
// truncated, never rounded.
func Quantize(c Color) RGB8 {
	s := c.SRGB()
	return RGB8{R: truncate8(s.V[0]), G: truncate8(s.V[1]), B: truncate8(s.V[2])}
}

func truncate8(v float32) uint8 {
	return uint8(clamp01(v) * 255)
}

// ParseHex parses "#rrggbb", "rrggbb", "#rgb" or "rgb"
func ParseHex(s string) (RGB8, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")

	var digits [6]uint8
	switch len(hex) {
	case 3:
		for i := 0; i < 3; i++ {
			d, ok := hexDigit(hex[i])
			if !ok {
				return RGB8{}, fmt.Errorf("%w: %q", ErrInvalidHex, s)
			}
			digits[2*i], digits[2*i+1] = d, d
		}
	case 6:
		for i := 0; i < 6; i++ {
			d, ok := hexDigit(hex[i])
			if !ok {
				return RGB8{}, fmt.Errorf("%w: %q", ErrInvalidHex, s)
			}
			digits[i] = d
		}
	default:
		return RGB8{}, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}

	return RGB8{
		R: digits[0]<<4 | digits[1],
		G: digits[2]<<4 | digits[3],
		B: digits[4]<<4 | digits[5],
	}, nil
}

func hexDigit(c byte) (uint8, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
