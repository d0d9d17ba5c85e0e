package dither

import (
	"errors"
	"fmt"

	"github.com/rmitchellscott/palettedither/internal/palette"
)

var (
	// ErrInvalidPalette is returned before any pixel is touched
	ErrInvalidPalette = errors.New("invalid palette")
	// ErrNilMatrix is returned when the engine has no threshold matrix
	ErrNilMatrix = errors.New("threshold matrix is nil")
	// ErrInvalidGrid is returned when the grid's buffer does not match its size
	ErrInvalidGrid = errors.New("invalid pixel grid")
	// ErrInvariantViolation marks a pass aborted by an internal consistency failure
	ErrInvariantViolation = errors.New("invariant violation")
	// ErrUnknownMode is returned for a mode name that is not recognised
	ErrUnknownMode = errors.New("unknown dither mode")
)

// AbortError is returned when a pass stops part way. The grid contents are
// undefined afterwards and must not be used.
type AbortError struct {
	X, Y int
	Err  error
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("dithering aborted at pixel (%d,%d): %v", e.X, e.Y, e.Err)
}

func (e *AbortError) Unwrap() []error {
	return []error{ErrInvariantViolation, e.Err}
}

// recoverInvariant turns an invariant panic from the optimizer into an
// AbortError. Any other panic is re-raised.
func recoverInvariant(r any, x, y int) error {
	if inv, ok := r.(*palette.InvariantError); ok {
		return &AbortError{X: x, Y: y, Err: inv}
	}
	panic(r)
}
