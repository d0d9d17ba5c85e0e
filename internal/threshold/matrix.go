package threshold

import (
	"errors"
	"fmt"
)

const (
	// DefaultOrder produces a 32x32 matrix
	DefaultOrder = 5
	// MaxOrder bounds the matrix to 256x256 cells
	MaxOrder = 8
)

// ErrInvalidOrder is returned for orders outside [0, MaxOrder]
var ErrInvalidOrder = errors.New("invalid threshold matrix order")

// Matrix is a square Bayer threshold matrix of side 2^order. Every cell holds
// a distinct value k/S² with k in [0, S²). It is immutable and safe for
// concurrent reads.
type Matrix struct {
	order int
	size  int
	mask  int
	raw   []int
	cells []float32
}

// New builds the matrix of the given order by interleaving the bits of y and
// x^y, most significant pair first.
func New(order int) (*Matrix, error) {
	if order < 0 || order > MaxOrder {
		return nil, fmt.Errorf("%w: %d (want 0..%d)", ErrInvalidOrder, order, MaxOrder)
	}

	size := 1 << order
	area := float32(size * size)
	m := &Matrix{
		order: order,
		size:  size,
		mask:  size - 1,
		raw:   make([]int, size*size),
		cells: make([]float32, size*size),
	}

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			xor := x ^ y
			v := 0
			for p := 0; p < order; p++ {
				shift := 2 * (order - p - 1)
				v |= (y >> p & 1) << shift
				v |= (xor >> p & 1) << (shift + 1)
			}
			m.raw[y*size+x] = v
			m.cells[y*size+x] = float32(v) / area
		}
	}

	return m, nil
}

// Order returns N for a matrix of side 2^N
func (m *Matrix) Order() int { return m.order }

// Size returns the side length
func (m *Matrix) Size() int { return m.size }

// Get returns the threshold for pixel (x, y), tiling the matrix infinitely.
// Rows are selected by y and columns by x.
func (m *Matrix) Get(x, y int) float32 {
	return m.cells[(y&m.mask)*m.size+(x&m.mask)]
}

// rank returns the unnormalized value at (x, y)
func (m *Matrix) rank(x, y int) int {
	return m.raw[(y&m.mask)*m.size+(x&m.mask)]
}

// rows returns a copy of the normalized matrix, row-major
func (m *Matrix) rows() [][]float32 {
	rows := make([][]float32, m.size)
	for y := range rows {
		rows[y] = append([]float32(nil), m.cells[y*m.size:(y+1)*m.size]...)
	}
	return rows
}
