package palette

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/rmitchellscott/palettedither/internal/colorspace"
)

// MaxColors bounds palette size. Indexed PNG and image.Paletted address at
// most 256 entries, and the pair search is quadratic in the palette size.
const MaxColors = 256

var (
	// ErrTooFewColors is returned when a palette has fewer than two colors
	ErrTooFewColors = errors.New("palette needs at least two colors")
	// ErrTooManyColors is returned when a palette exceeds MaxColors
	ErrTooManyColors = errors.New("palette has too many colors")
)

// Entry is one palette color in both its 8-bit and LAB forms
type Entry struct {
	RGB colorspace.RGB8
	Lab colorspace.Color
}

// Palette is an ordered, immutable list of output colors. LAB values are
// computed once at construction so the pair search never converts palette
// colors again.
type Palette struct {
	entries []Entry
}

// New builds a palette from 8-bit colors. Order is kept; duplicates are
// allowed but every duplicate adds pairs to the search.
func New(colors []colorspace.RGB8) (*Palette, error) {
	if err := checkSize(len(colors)); err != nil {
		return nil, err
	}

	entries := make([]Entry, len(colors))
	for i, c := range colors {
		lab := c.Color().LAB()
		if !lab.Finite() {
			return nil, newInvariantError("palette color %s converted to non-finite %v", c.Hex(), lab)
		}
		// truncating LAB back to 8 bits may lose at most one step per channel
		if back := colorspace.Quantize(lab); !withinOneStep(back, c) {
			return nil, newInvariantError("palette color %s quantizes back to %s", c.Hex(), back.Hex())
		}
		entries[i] = Entry{RGB: c, Lab: lab}
	}
	return FromEntries(entries)
}

// FromEntries builds a palette from precomputed entries. LAB values are used
// as given and are not checked against the 8-bit colors.
func FromEntries(entries []Entry) (*Palette, error) {
	if err := checkSize(len(entries)); err != nil {
		return nil, err
	}
	return &Palette{entries: append([]Entry(nil), entries...)}, nil
}

func checkSize(n int) error {
	switch {
	case n < 2:
		return fmt.Errorf("%w: got %d", ErrTooFewColors, n)
	case n > MaxColors:
		return fmt.Errorf("%w: got %d, limit %d", ErrTooManyColors, n, MaxColors)
	}
	return nil
}

func withinOneStep(a, b colorspace.RGB8) bool {
	near := func(x, y uint8) bool { return x == y || x+1 == y || y+1 == x }
	return near(a.R, b.R) && near(a.G, b.G) && near(a.B, b.B)
}

// FromHex builds a palette from hex strings such as "#ff0000"
func FromHex(hexes ...string) (*Palette, error) {
	colors := make([]colorspace.RGB8, 0, len(hexes))
	for _, h := range hexes {
		c, err := colorspace.ParseHex(h)
		if err != nil {
			return nil, err
		}
		colors = append(colors, c)
	}
	return New(colors)
}

// Len returns the number of entries
func (p *Palette) Len() int { return len(p.entries) }

// At returns entry i
func (p *Palette) At(i int) Entry { return p.entries[i] }

// Colors returns a copy of the 8-bit colors in palette order
func (p *Palette) Colors() []colorspace.RGB8 {
	out := make([]colorspace.RGB8, len(p.entries))
	for i, e := range p.entries {
		out[i] = e.RGB
	}
	return out
}

// Color returns the palette as a color.Palette for image.Paletted and
// third-party ditherers
func (p *Palette) Color() color.Palette {
	out := make(color.Palette, len(p.entries))
	for i, e := range p.entries {
		out[i] = e.RGB
	}
	return out
}

// Index returns the position of c in the palette, or -1
func (p *Palette) Index(c colorspace.RGB8) int {
	for i, e := range p.entries {
		if e.RGB == c {
			return i
		}
	}
	return -1
}

// Dedup removes repeated colors, keeping the first occurrence of each
func Dedup(colors []colorspace.RGB8) []colorspace.RGB8 {
	seen := make(map[colorspace.RGB8]struct{}, len(colors))
	out := make([]colorspace.RGB8, 0, len(colors))
	for _, c := range colors {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
