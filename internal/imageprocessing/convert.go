package imageprocessing

import (
	"fmt"
	"image"
	"image/color"

	"github.com/rmitchellscott/palettedither/internal/colorspace"
	"github.com/rmitchellscott/palettedither/internal/dither"
	"github.com/rmitchellscott/palettedither/internal/palette"
)

// MaxPaletteColors bounds palettes read from images and written as PNG
const MaxPaletteColors = palette.MaxColors

// ErrPaletteTooLarge is returned for palettes over MaxPaletteColors, whether
// read from an image or built any other way
var ErrPaletteTooLarge = palette.ErrTooManyColors

// GridFromImage copies any image into a pixel grid anchored at the origin.
// Alpha is dropped after un-premultiplying.
func GridFromImage(img image.Image) *dither.Grid {
	bounds := img.Bounds()
	g := dither.NewGrid(bounds.Dx(), bounds.Dy())

	if rgba, ok := img.(*image.RGBA); ok {
		for y := 0; y < g.Height; y++ {
			row := g.Row(y)
			off := rgba.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			for x := range row {
				p := rgba.Pix[off+x*4 : off+x*4+4 : off+x*4+4]
				row[x] = colorspace.FromColor(color.RGBA{R: p[0], G: p[1], B: p[2], A: p[3]})
			}
		}
		return g
	}

	for y := 0; y < g.Height; y++ {
		row := g.Row(y)
		for x := range row {
			row[x] = colorspace.FromColor(img.At(bounds.Min.X+x, bounds.Min.Y+y))
		}
	}
	return g
}

// ToRGBA converts a grid to an opaque RGBA image
func ToRGBA(g *dither.Grid) *image.RGBA {
	rgba := image.NewRGBA(image.Rect(0, 0, g.Width, g.Height))
	for i, c := range g.Pix {
		rgba.Pix[i*4+0] = c.R
		rgba.Pix[i*4+1] = c.G
		rgba.Pix[i*4+2] = c.B
		rgba.Pix[i*4+3] = 0xff
	}
	return rgba
}

// ToPaletted converts a dithered grid into a paletted image. Every grid
// pixel must already be a palette color.
func ToPaletted(g *dither.Grid, p *palette.Palette) (*image.Paletted, error) {
	if p.Len() > MaxPaletteColors {
		return nil, fmt.Errorf("%w: got %d", ErrPaletteTooLarge, p.Len())
	}
	index := make(map[colorspace.RGB8]uint8, p.Len())
	for i := p.Len() - 1; i >= 0; i-- {
		index[p.At(i).RGB] = uint8(i)
	}

	paletted := image.NewPaletted(image.Rect(0, 0, g.Width, g.Height), p.Color())
	for i, c := range g.Pix {
		idx, ok := index[c]
		if !ok {
			return nil, fmt.Errorf("pixel %d color %s is not in the palette", i, c.Hex())
		}
		paletted.Pix[i] = idx
	}
	return paletted, nil
}

// ExtractPalette lists the distinct colors of img in row-major first-seen
// order. Transparent pixels are skipped.
func ExtractPalette(img image.Image) ([]colorspace.RGB8, error) {
	bounds := img.Bounds()
	seen := make(map[colorspace.RGB8]struct{})
	var colors []colorspace.RGB8

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			px := img.At(x, y)
			if _, _, _, a := px.RGBA(); a == 0 {
				continue
			}
			c := colorspace.FromColor(px)
			if _, ok := seen[c]; ok {
				continue
			}
			if len(colors) == MaxPaletteColors {
				return nil, fmt.Errorf("%w: more than %d", ErrPaletteTooLarge, MaxPaletteColors)
			}
			seen[c] = struct{}{}
			colors = append(colors, c)
		}
	}

	return colors, nil
}

// PaletteFromImage extracts and validates a palette from a palette image
func PaletteFromImage(img image.Image) (*palette.Palette, error) {
	colors, err := ExtractPalette(img)
	if err != nil {
		return nil, err
	}
	return palette.New(colors)
}
