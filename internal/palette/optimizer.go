package palette

import (
	"fmt"
	"math"

	"github.com/rmitchellscott/palettedither/internal/colorspace"
)

const (
	// DegenerateEpsilon is the squared LAB distance under which two palette
	// colors are treated as the same point
	DegenerateEpsilon float32 = 1e-6
	// PairPenalty weights the squared distance between the two colors of a
	// pair, so a close pair beats a wide one that explains the target equally
	PairPenalty float32 = 0.05
)

// InvariantError reports an internal consistency failure in the color math.
// The optimizer panics with it; it never describes bad input.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string {
	return "invariant violated: " + e.Msg
}

func newInvariantError(format string, args ...any) *InvariantError {
	return &InvariantError{Msg: fmt.Sprintf(format, args...)}
}

// Pair is the result of a pair search: the palette indices of color1 (I) and
// color2 (J), the blend ratio from I towards J, and the pair's error
type Pair struct {
	I, J  int
	Ratio float32
	Error float32
}

// Evaluate scores the segment c1→c2 against target, all in LAB. ratio is the
// clamped projection of target onto the segment.
func Evaluate(target, c1, c2 [3]float32) (ratio, err float32) {
	var segment, offset [3]float32
	var dot, magSq float32
	for k := 0; k < 3; k++ {
		segment[k] = c2[k] - c1[k]
		offset[k] = target[k] - c1[k]
		dot += segment[k] * offset[k]
		magSq += segment[k] * segment[k]
	}

	if magSq < DegenerateEpsilon {
		err = offset[0]*offset[0] + offset[1]*offset[1] + offset[2]*offset[2]
		// Both endpoints are the same color, so the ratio cannot change the
		// outcome. The squared distance is reused and clamped into range.
		return clamp01(err), err
	}

	ratio = clamp01(dot / magSq)
	for k := 0; k < 3; k++ {
		d := ratio*segment[k] - offset[k]
		err += d * d
	}
	err += PairPenalty * magSq
	return ratio, err
}

// Best searches every unordered pair i<j and returns the one with the lowest
// error. Ties keep the pair found first. The target is converted to LAB.
//
// Best panics with *InvariantError when the result is outside its contract;
// that only happens for non-finite input or broken conversion math.
func (p *Palette) Best(target colorspace.Color) Pair {
	lab := target.LAB()
	if !lab.Finite() {
		panic(newInvariantError("target %v has non-finite LAB value %v", target, lab))
	}

	best := Pair{I: 0, J: 1, Ratio: 0.5, Error: float32(math.Inf(1))}
	for i := 0; i < len(p.entries); i++ {
		for j := i + 1; j < len(p.entries); j++ {
			ratio, err := Evaluate(lab.V, p.entries[i].Lab.V, p.entries[j].Lab.V)
			if err < best.Error {
				best = Pair{I: i, J: j, Ratio: ratio, Error: err}
			}
		}
	}

	if best.Ratio < 0 || best.Ratio > 1 || math.IsNaN(float64(best.Ratio)) {
		panic(newInvariantError("ratio %v outside [0,1] for pair (%d,%d)", best.Ratio, best.I, best.J))
	}
	if !(best.Error >= 0) || math.IsInf(float64(best.Error), 0) {
		panic(newInvariantError("error %v for pair (%d,%d) is negative or not finite", best.Error, best.I, best.J))
	}
	return best
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
