package dither

import (
	"fmt"

	"github.com/rmitchellscott/palettedither/internal/colorspace"
)

// Grid is a dense row-major pixel buffer. Dithering rewrites Pix in place.
type Grid struct {
	Width  int
	Height int
	Pix    []colorspace.RGB8
}

// NewGrid allocates a black grid
func NewGrid(width, height int) *Grid {
	return &Grid{Width: width, Height: height, Pix: make([]colorspace.RGB8, width*height)}
}

// At returns the pixel at (x, y)
func (g *Grid) At(x, y int) colorspace.RGB8 { return g.Pix[y*g.Width+x] }

// Set writes the pixel at (x, y)
func (g *Grid) Set(x, y int, c colorspace.RGB8) { g.Pix[y*g.Width+x] = c }

// Row returns the slice backing row y
func (g *Grid) Row(y int) []colorspace.RGB8 { return g.Pix[y*g.Width : (y+1)*g.Width] }

// Clone returns a deep copy
func (g *Grid) Clone() *Grid {
	return &Grid{Width: g.Width, Height: g.Height, Pix: append([]colorspace.RGB8(nil), g.Pix...)}
}

func (g *Grid) validate() error {
	if g == nil {
		return fmt.Errorf("%w: grid is nil", ErrInvalidGrid)
	}
	if g.Width < 0 || g.Height < 0 {
		return fmt.Errorf("%w: negative size %dx%d", ErrInvalidGrid, g.Width, g.Height)
	}
	if len(g.Pix) != g.Width*g.Height {
		return fmt.Errorf("%w: %d pixels for %dx%d", ErrInvalidGrid, len(g.Pix), g.Width, g.Height)
	}
	return nil
}
