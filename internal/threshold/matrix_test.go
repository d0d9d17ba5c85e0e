package threshold

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestOrderOneMatrix(t *testing.T) {
	m, err := New(1)
	if err != nil {
		t.Fatalf("New(1): %v", err)
	}

	tests := []struct {
		x, y int
		raw  int
		want float32
	}{
		{0, 0, 0, 0.0},
		{1, 0, 2, 0.5},
		{0, 1, 3, 0.75},
		{1, 1, 1, 0.25},
	}
	for _, tt := range tests {
		if got := m.rank(tt.x, tt.y); got != tt.raw {
			t.Errorf("rank(%d,%d) = %d, want %d", tt.x, tt.y, got, tt.raw)
		}
		if got := m.Get(tt.x, tt.y); got != tt.want {
			t.Errorf("Get(%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}

	want := [][]float32{{0, 0.5}, {0.75, 0.25}}
	if diff := cmp.Diff(want, m.rows()); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestMatrixIsPermutation(t *testing.T) {
	for order := 0; order <= 6; order++ {
		m, err := New(order)
		if err != nil {
			t.Fatalf("New(%d): %v", order, err)
		}
		size := 1 << order
		if m.Size() != size || m.Order() != order {
			t.Fatalf("order %d: size %d order %d", order, m.Size(), m.Order())
		}

		area := size * size
		seen := make([]bool, area)
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				k := m.rank(x, y)
				if k < 0 || k >= area {
					t.Fatalf("order %d: rank %d at (%d,%d) out of range", order, k, x, y)
				}
				if seen[k] {
					t.Fatalf("order %d: rank %d repeated at (%d,%d)", order, k, x, y)
				}
				seen[k] = true
				if got, want := m.Get(x, y), float32(k)/float32(area); got != want {
					t.Fatalf("order %d: Get(%d,%d) = %v, want %v", order, x, y, got, want)
				}
			}
		}
	}
}

func TestMatrixTiles(t *testing.T) {
	m, err := New(DefaultOrder)
	if err != nil {
		t.Fatal(err)
	}
	s := m.Size()
	for _, p := range [][2]int{{0, 0}, {3, 17}, {31, 31}} {
		x, y := p[0], p[1]
		want := m.Get(x, y)
		for _, off := range [][2]int{{s, 0}, {0, s}, {5 * s, 3 * s}, {-s, -2 * s}} {
			if got := m.Get(x+off[0], y+off[1]); got != want {
				t.Errorf("Get(%d,%d) = %v, want %v", x+off[0], y+off[1], got, want)
			}
		}
	}
}

func TestMatrixRowColumnOrientation(t *testing.T) {
	m, _ := New(2)
	// x selects the column: (1,0) and (0,1) differ for any Bayer matrix
	if m.Get(1, 0) == m.Get(0, 1) {
		t.Fatal("expected transposed cells to differ")
	}
	rows := m.rows()
	if rows[0][1] != m.Get(1, 0) {
		t.Errorf("row 0 col 1 = %v, want Get(1,0) = %v", rows[0][1], m.Get(1, 0))
	}
}

func TestInvalidOrder(t *testing.T) {
	for _, order := range []int{-1, MaxOrder + 1} {
		if _, err := New(order); !errors.Is(err, ErrInvalidOrder) {
			t.Errorf("New(%d) error = %v, want ErrInvalidOrder", order, err)
		}
	}
}
