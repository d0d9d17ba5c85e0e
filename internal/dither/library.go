package dither

import (
	"image"

	"github.com/makeworld-the-better-one/dither/v2"
)

// ditherLibrary runs the Bayer or Floyd-Steinberg ditherer from the dither
// library over the same palette and copies the result back into g
func (e *Engine) ditherLibrary(g *Grid) error {
	if len(g.Pix) == 0 {
		return nil
	}
	d := dither.NewDitherer(e.palette.Color())

	switch e.opts.Mode {
	case ModeBayer:
		size := uint(e.matrix.Size())
		if size < 2 {
			size = 2
		}
		d.Mapper = dither.Bayer(size, size, e.opts.Strength)
	case ModeFloydSteinberg:
		d.Matrix = dither.ErrorDiffusionStrength(dither.FloydSteinberg, e.opts.Strength)
	default:
		return ErrUnknownMode
	}

	out := d.DitherPaletted(gridImage(g))
	for y := 0; y < g.Height; y++ {
		row := g.Row(y)
		for x := range row {
			row[x] = e.palette.At(int(out.ColorIndexAt(x, y))).RGB
		}
	}

	e.rows.Add(int64(g.Height))
	e.pixels.Add(int64(len(g.Pix)))
	return nil
}

// gridImage copies g into an opaque RGBA image anchored at the origin
func gridImage(g *Grid) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, g.Width, g.Height))
	for i, c := range g.Pix {
		img.Pix[i*4+0] = c.R
		img.Pix[i*4+1] = c.G
		img.Pix[i*4+2] = c.B
		img.Pix[i*4+3] = 0xff
	}
	return img
}
