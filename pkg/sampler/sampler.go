// Package sampler reduces a dense thermistor response curve to a small lookup
// table. The selection is a variant of Ramer-Douglas-Peucker driven by point
// count: starting from the two curve extremes, the point worst approximated by
// linear interpolation between the already chosen points is added until the
// requested number of points is reached.
package sampler

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrSampleCount is returned when fewer than two samples are requested
	ErrSampleCount = errors.New("sampler: at least 2 samples required")
	// ErrTooFewPoints is returned when the curve has fewer than two points
	ErrTooFewPoints = errors.New("sampler: curve has fewer than 2 points")
	// ErrNotOnCurve is returned when a sample code is not part of the curve
	ErrNotOnCurve = errors.New("sampler: sample not on curve")
)

// Sample selects n ADC codes from c, returned in ascending order. The first and
// last curve codes are always included. When several candidates share the
// largest error the lowest ADC code wins, so results are reproducible. If n
// exceeds the number of curve points the whole curve is returned.
func Sample(c Curve, n int) ([]int, error) {
	if n < 2 {
		return nil, fmt.Errorf("%w: requested %d", ErrSampleCount, n)
	}
	if len(c) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewPoints, len(c))
	}
	n = min(n, len(c))

	s := newSelection(c)
	for s.count < n {
		s.add(s.worst())
	}
	return s.codes(), nil
}

// selection tracks chosen points and the interpolation error of the rest,
// indexed by curve position
type selection struct {
	curve    Curve
	selected []bool
	errs     []float64
	count    int
}

func newSelection(c Curve) *selection {
	s := &selection{
		curve:    c,
		selected: make([]bool, len(c)),
		errs:     make([]float64, len(c)),
	}
	last := len(c) - 1
	s.selected[0], s.selected[last] = true, true
	s.errs[0], s.errs[last] = -1, -1
	s.count = 2
	s.refresh(0, last)
	return s
}

// refresh recomputes the error of every point strictly between the selected
// positions lo and hi
func (s *selection) refresh(lo, hi int) {
	a, b := s.curve[lo], s.curve[hi]
	for i := lo + 1; i < hi; i++ {
		p := s.curve[i]
		s.errs[i] = math.Abs(p.Temp - Estimate(a, b, float64(p.ADC)))
	}
}

// worst returns the unselected position with the largest error, lowest first
func (s *selection) worst() int {
	best, pick := -1.0, -1
	for i, e := range s.errs {
		if s.selected[i] {
			continue
		}
		if e > best {
			best, pick = e, i
		}
	}
	return pick
}

func (s *selection) add(i int) {
	s.selected[i] = true
	s.errs[i] = -1
	s.count++

	lo := i - 1
	for !s.selected[lo] {
		lo--
	}
	hi := i + 1
	for !s.selected[hi] {
		hi++
	}
	// Only the two intervals next to the new point changed
	s.refresh(lo, i)
	s.refresh(i, hi)
}

func (s *selection) codes() []int {
	out := make([]int, 0, s.count)
	for i, ok := range s.selected {
		if ok {
			out = append(out, s.curve[i].ADC)
		}
	}
	return out
}

// Points returns the curve points matching samples
func Points(c Curve, samples []int) ([]Point, error) {
	out := make([]Point, 0, len(samples))
	for _, adc := range samples {
		t, ok := c.Lookup(adc)
		if !ok {
			return nil, fmt.Errorf("%w: ADC %d", ErrNotOnCurve, adc)
		}
		out = append(out, Point{ADC: adc, Temp: t})
	}
	return out, nil
}

// MaxError returns the worst absolute difference between c and the linear
// interpolation of samples (ascending) over the curve range they span.
func MaxError(c Curve, samples []int) (float64, error) {
	table, err := Points(c, samples)
	if err != nil {
		return 0, err
	}
	if len(table) == 0 {
		return 0, fmt.Errorf("%w: got 0", ErrTooFewPoints)
	}

	worst := 0.0
	for _, p := range c {
		if p.ADC < table[0].ADC || p.ADC > table[len(table)-1].ADC {
			continue
		}
		worst = max(worst, math.Abs(p.Temp-Interpolate(table, float64(p.ADC))))
	}
	return worst, nil
}
