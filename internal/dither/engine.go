package dither

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/rmitchellscott/palettedither/internal/colorspace"
	"github.com/rmitchellscott/palettedither/internal/logging"
	"github.com/rmitchellscott/palettedither/internal/palette"
	"github.com/rmitchellscott/palettedither/internal/threshold"
)

// Mode selects the dithering algorithm
type Mode string

const (
	// ModePair is the ordered pair-blend dither: every pixel snaps to one
	// endpoint of its best palette pair, chosen by the threshold matrix
	ModePair Mode = "pair"
	// ModeBayer maps each pixel to the nearest palette color after a Bayer offset
	ModeBayer Mode = "bayer"
	// ModeFloydSteinberg is error diffusion, not ordered
	ModeFloydSteinberg Mode = "floyd-steinberg"
)

// Modes lists every supported mode
var Modes = []Mode{ModePair, ModeBayer, ModeFloydSteinberg}

// ParseMode resolves a mode name; the empty string means ModePair
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModePair:
		return ModePair, nil
	case ModeBayer:
		return ModeBayer, nil
	case ModeFloydSteinberg, "floydsteinberg", "fs":
		return ModeFloydSteinberg, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Options tunes an Engine
type Options struct {
	Mode Mode
	// Workers is the number of row workers; 0 uses GOMAXPROCS
	Workers int
	// CacheSize bounds each worker's color→pair memo; 0 disables it
	CacheSize int
	// Strength scales the library modes' dithering; 0 means 1
	Strength float32
	Logger   *slog.Logger
}

// DefaultOptions returns sensible defaults
func DefaultOptions() Options {
	return Options{
		Mode:      ModePair,
		Workers:   runtime.GOMAXPROCS(0),
		CacheSize: 4096,
		Strength:  1,
	}
}

// Stats counts work done by an engine over its lifetime
type Stats struct {
	Rows      int64
	Pixels    int64
	CacheHits int64
}

// Engine dithers grids onto a fixed palette. The palette and matrix are only
// read, so one engine may run several passes concurrently.
type Engine struct {
	palette *palette.Palette
	matrix  *threshold.Matrix
	opts    Options
	logger  *slog.Logger

	rows      atomic.Int64
	pixels    atomic.Int64
	cacheHits atomic.Int64
}

// NewEngine validates its inputs before any pixel is processed
func NewEngine(p *palette.Palette, m *threshold.Matrix, opts Options) (*Engine, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: palette is nil", ErrInvalidPalette)
	}
	if p.Len() < 2 {
		return nil, fmt.Errorf("%w: %w: got %d", ErrInvalidPalette, palette.ErrTooFewColors, p.Len())
	}
	if m == nil {
		return nil, ErrNilMatrix
	}

	mode, err := ParseMode(string(opts.Mode))
	if err != nil {
		return nil, err
	}
	opts.Mode = mode
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.CacheSize < 0 {
		opts.CacheSize = 0
	}
	if opts.Strength == 0 {
		opts.Strength = 1
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.ForComponent(logging.ComponentDither)
	}

	return &Engine{palette: p, matrix: m, opts: opts, logger: logger}, nil
}

// Palette returns the engine's palette
func (e *Engine) Palette() *palette.Palette { return e.palette }

// Mode returns the resolved mode
func (e *Engine) Mode() Mode { return e.opts.Mode }

// Stats returns cumulative counters
func (e *Engine) Stats() Stats {
	return Stats{Rows: e.rows.Load(), Pixels: e.pixels.Load(), CacheHits: e.cacheHits.Load()}
}

// choose picks color1 when the threshold is above the blend ratio and color2
// otherwise
func (e *Engine) choose(x, y int, pair palette.Pair) int {
	if e.matrix.Get(x, y) > pair.Ratio {
		return pair.I
	}
	return pair.J
}

// Pixel dithers a single pixel with the pair algorithm
func (e *Engine) Pixel(x, y int, c colorspace.RGB8) (out colorspace.RGB8, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recoverInvariant(r, x, y)
		}
	}()
	pair := e.palette.Best(c.Color())
	return e.palette.At(e.choose(x, y, pair)).RGB, nil
}

// Dither rewrites every pixel of g with a palette color. Rows are spread
// over a bounded pool of workers; each row is written by one worker only.
// An invariant failure in any row stops the pass and is returned as an
// *AbortError.
func (e *Engine) Dither(ctx context.Context, g *Grid) error {
	if err := g.validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	var err error
	if e.opts.Mode == ModePair {
		err = e.ditherPairs(ctx, g)
	} else {
		err = e.ditherLibrary(g)
	}
	if err != nil {
		e.logger.Error("Dithering aborted", "mode", e.opts.Mode, "error", err)
		return err
	}

	e.logger.Info("Dithering finished",
		"mode", e.opts.Mode,
		"width", g.Width,
		"height", g.Height,
		"colors", e.palette.Len(),
		"duration", time.Since(start))
	return nil
}

func (e *Engine) ditherPairs(ctx context.Context, g *Grid) error {
	workers := e.opts.Workers
	if workers > g.Height {
		workers = g.Height
	}
	if workers == 0 {
		return nil
	}

	rows := make(chan int)
	eg, egctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		defer close(rows)
		for y := 0; y < g.Height; y++ {
			select {
			case rows <- y:
			case <-egctx.Done():
				return egctx.Err()
			}
		}
		return nil
	})

	var done atomic.Int64
	progress := rate.Sometimes{Interval: time.Second}
	for i := 0; i < workers; i++ {
		w := newWorker(e, i)
		eg.Go(func() error {
			for y := range rows {
				if err := egctx.Err(); err != nil {
					return err
				}
				if err := w.row(g, y); err != nil {
					return err
				}
				n := done.Add(1)
				progress.Do(func() {
					e.logger.Debug("Dithering progress", "rows_done", n, "rows", g.Height, "worker", w.id)
				})
			}
			return nil
		})
	}

	return eg.Wait()
}

// worker owns a private pair cache so no lookups are shared between goroutines
type worker struct {
	id     int
	engine *Engine
	cache  map[colorspace.RGB8]palette.Pair
	hits   int64
}

func newWorker(e *Engine, id int) *worker {
	w := &worker{id: id, engine: e}
	if e.opts.CacheSize > 0 {
		w.cache = make(map[colorspace.RGB8]palette.Pair)
	}
	return w
}

func (w *worker) row(g *Grid, y int) (err error) {
	x := 0
	defer func() {
		if r := recover(); r != nil {
			err = recoverInvariant(r, x, y)
		}
	}()

	row := g.Row(y)
	for x = 0; x < len(row); x++ {
		pair := w.pair(row[x])
		row[x] = w.engine.palette.At(w.engine.choose(x, y, pair)).RGB
	}

	w.engine.rows.Add(1)
	w.engine.pixels.Add(int64(len(row)))
	w.engine.cacheHits.Add(w.hits)
	w.hits = 0
	return nil
}

// pair returns the best pair for c, which depends on the color alone
func (w *worker) pair(c colorspace.RGB8) palette.Pair {
	if w.cache == nil {
		return w.engine.palette.Best(c.Color())
	}
	if p, ok := w.cache[c]; ok {
		w.hits++
		return p
	}
	if len(w.cache) >= w.engine.opts.CacheSize {
		clear(w.cache)
	}
	p := w.engine.palette.Best(c.Color())
	w.cache[c] = p
	return p
}
