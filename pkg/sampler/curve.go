package sampler

import (
	"math"
	"sort"
)

// Temperature window kept from the full model evaluation, in °C
const (
	MinTemp = 0.0
	MaxTemp = 500.0
)

// Point is one evaluated sample of the response curve
type Point struct {
	ADC  int
	Temp float64
}

// Curve is a response curve ordered by ascending ADC code
type Curve []Point

// Evaluator is the part of a thermistor model the sampler needs
type Evaluator interface {
	TemperatureAt(adc float64) (float64, error)
	DomainUpperBound() int
}

// FromModel evaluates m at every code in 1..DomainUpperBound and keeps the
// solvable points inside [MinTemp, MaxTemp].
func FromModel(m Evaluator) Curve {
	hi := m.DomainUpperBound()
	c := make(Curve, 0, max(hi, 0))
	for adc := 1; adc <= hi; adc++ {
		t, err := m.TemperatureAt(float64(adc))
		if err != nil {
			continue
		}
		c = append(c, Point{ADC: adc, Temp: t})
	}
	return c.Window(MinTemp, MaxTemp)
}

// FromFunc builds a curve from f over the inclusive code range lo..hi
func FromFunc(lo, hi int, f func(adc int) float64) Curve {
	c := make(Curve, 0, max(hi-lo+1, 0))
	for adc := lo; adc <= hi; adc++ {
		c = append(c, Point{ADC: adc, Temp: f(adc)})
	}
	return c
}

// Window returns the points whose temperature lies within [lo, hi]
func (c Curve) Window(lo, hi float64) Curve {
	out := make(Curve, 0, len(c))
	for _, p := range c {
		if math.IsNaN(p.Temp) || p.Temp < lo || p.Temp > hi {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Codes returns the ADC codes of the curve
func (c Curve) Codes() []int {
	codes := make([]int, len(c))
	for i, p := range c {
		codes[i] = p.ADC
	}
	return codes
}

// index returns the position of adc in c, or -1
func (c Curve) index(adc int) int {
	i := sort.Search(len(c), func(i int) bool { return c[i].ADC >= adc })
	if i < len(c) && c[i].ADC == adc {
		return i
	}
	return -1
}

// Lookup returns the temperature at an ADC code on the curve
func (c Curve) Lookup(adc int) (float64, bool) {
	i := c.index(adc)
	if i < 0 {
		return 0, false
	}
	return c[i].Temp, true
}

// Estimate interpolates linearly between a and b at adc
func Estimate(a, b Point, adc float64) float64 {
	x0, x1 := float64(a.ADC), float64(b.ADC)
	return ((adc-x0)*b.Temp + (x1-adc)*a.Temp) / (x1 - x0)
}

// Interpolate evaluates a lookup table (ascending ADC) the way firmware does:
// linearly between neighbours, clamped to the first and last entries.
func Interpolate(table []Point, adc float64) float64 {
	switch {
	case len(table) == 0:
		return math.NaN()
	case adc <= float64(table[0].ADC):
		return table[0].Temp
	case adc >= float64(table[len(table)-1].ADC):
		return table[len(table)-1].Temp
	}

	i := sort.Search(len(table), func(i int) bool { return float64(table[i].ADC) >= adc })
	if float64(table[i].ADC) == adc {
		return table[i].Temp
	}
	return Estimate(table[i-1], table[i], adc)
}
