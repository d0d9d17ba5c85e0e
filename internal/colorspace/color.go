package colorspace

import (
	"fmt"
	"math"
)

// Space identifies which representation a Color's components are in
type Space uint8

const (
	SRGB Space = iota
	XYZ
	LAB
	OKLAB
)

func (s Space) String() string {
	switch s {
	case SRGB:
		return "srgb"
	case XYZ:
		return "xyz"
	case LAB:
		return "lab"
	case OKLAB:
		return "oklab"
	default:
		return fmt.Sprintf("space(%d)", uint8(s))
	}
}

// Color is an immutable three-component color tagged with its representation.
// The zero value is sRGB black.
type Color struct {
	Space Space
	V     [3]float32
}

// NewSRGB returns a gamma-encoded sRGB color with components in [0,1]
func NewSRGB(r, g, b float32) Color { return Color{Space: SRGB, V: [3]float32{r, g, b}} }

// NewXYZ returns a CIE 1931 XYZ color scaled so that Y of the D65 white is 100
func NewXYZ(x, y, z float32) Color { return Color{Space: XYZ, V: [3]float32{x, y, z}} }

// NewLAB returns a CIELAB color relative to the D65 white point
func NewLAB(l, a, b float32) Color { return Color{Space: LAB, V: [3]float32{l, a, b}} }

// NewOKLAB returns an OKLab color
func NewOKLAB(l, a, b float32) Color { return Color{Space: OKLAB, V: [3]float32{l, a, b}} }

// To converts c into the requested representation. Converting into the
// color's own space returns it unchanged.
func (c Color) To(s Space) Color {
	switch s {
	case SRGB:
		return c.SRGB()
	case XYZ:
		return c.XYZ()
	case LAB:
		return c.LAB()
	case OKLAB:
		return c.OKLAB()
	default:
		panic(fmt.Sprintf("colorspace: unknown target %v", s))
	}
}

// SRGB returns c as gamma-encoded sRGB
func (c Color) SRGB() Color {
	switch c.Space {
	case SRGB:
		return c
	default:
		return xyzToSRGB(c.XYZ())
	}
}

// XYZ returns c as CIE XYZ. XYZ is the hub every other conversion goes through.
func (c Color) XYZ() Color {
	switch c.Space {
	case SRGB:
		return srgbToXYZ(c)
	case XYZ:
		return c
	case LAB:
		return labToXYZ(c)
	case OKLAB:
		return oklabToXYZ(c)
	default:
		panic(fmt.Sprintf("colorspace: unknown source %v", c.Space))
	}
}

// LAB returns c as CIELAB
func (c Color) LAB() Color {
	if c.Space == LAB {
		return c
	}
	return xyzToLAB(c.XYZ())
}

// OKLAB returns c as OKLab
func (c Color) OKLAB() Color {
	if c.Space == OKLAB {
		return c
	}
	return xyzToOKLAB(c.XYZ())
}

// Finite reports whether every component of c is a finite number
func (c Color) Finite() bool {
	for _, v := range c.V {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

func (c Color) String() string {
	return fmt.Sprintf("%v(%g, %g, %g)", c.Space, c.V[0], c.V[1], c.V[2])
}

// mul applies a row-major 3x3 matrix to v
func mul(m *[3][3]float32, v [3]float32) [3]float32 {
	return [3]float32{
		m[0][0]*v[0] + m[0][1]*v[1] + m[0][2]*v[2],
		m[1][0]*v[0] + m[1][1]*v[1] + m[1][2]*v[2],
		m[2][0]*v[0] + m[2][1]*v[1] + m[2][2]*v[2],
	}
}

func pow32(x, y float32) float32 { return float32(math.Pow(float64(x), float64(y))) }

func cbrt32(x float32) float32 { return float32(math.Cbrt(float64(x))) }

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
