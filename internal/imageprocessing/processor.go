package imageprocessing

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/rmitchellscott/palettedither/internal/dither"
	"github.com/rmitchellscott/palettedither/internal/logging"
	"github.com/rmitchellscott/palettedither/internal/palette"
	"github.com/rmitchellscott/palettedither/internal/threshold"
)

// ProcessingOptions allows customization of the image processing pipeline
type ProcessingOptions struct {
	Width  int
	Height int
	Resize ResizeMode

	// Order is the threshold matrix order; the matrix side is 2^Order
	Order int

	Dither dither.Options

	// Timeout applies to URL downloads
	Timeout time.Duration
}

// DefaultProcessingOptions returns sensible defaults for image processing
func DefaultProcessingOptions() ProcessingOptions {
	return ProcessingOptions{
		Resize:  ResizeNone,
		Order:   threshold.DefaultOrder,
		Dither:  dither.DefaultOptions(),
		Timeout: 30 * time.Second,
	}
}

// Process resizes img, dithers it onto p and returns the paletted result
func Process(ctx context.Context, img image.Image, p *palette.Palette, options ProcessingOptions) (*image.Paletted, error) {
	if img == nil {
		return nil, fmt.Errorf("input image is nil")
	}
	if p == nil {
		return nil, fmt.Errorf("%w: palette is nil", dither.ErrInvalidPalette)
	}
	if p.Len() > MaxPaletteColors {
		return nil, fmt.Errorf("%w: %w: got %d", dither.ErrInvalidPalette, ErrPaletteTooLarge, p.Len())
	}

	matrix, err := threshold.New(options.Order)
	if err != nil {
		return nil, err
	}
	engine, err := dither.NewEngine(p, matrix, options.Dither)
	if err != nil {
		return nil, err
	}

	// Letterbox bars take the first palette color
	resized := Resize(img, options.Width, options.Height, options.Resize, p.At(0).RGB)
	grid := GridFromImage(resized)

	logging.DebugWithComponent(logging.ComponentImageProcessing, "Prepared pixel grid",
		"source", img.Bounds().String(),
		"width", grid.Width,
		"height", grid.Height,
		"resize", options.Resize)

	if err := engine.Dither(ctx, grid); err != nil {
		return nil, err
	}

	return ToPaletted(grid, p)
}
