package thermistor

import (
	"fmt"
	"math"
)

// SteinhartHartConfig holds a pull-up and three calibration points (temperatures in °C)
type SteinhartHartConfig struct {
	Rp     float64
	T0, R0 float64
	T1, R1 float64
	T2, R2 float64
	Vref   float64
	MaxADC int
}

// SteinhartHart implements 1/T = A + B·ln(R) + C·ln(R)³ fitted through three points
type SteinhartHart struct {
	cfg     SteinhartHartConfig
	a, b, c float64
}

// NewSteinhartHart solves the coefficients for the three calibration points
func NewSteinhartHart(cfg SteinhartHartConfig) (*SteinhartHart, error) {
	if cfg.Rp <= 0 || cfg.R0 <= 0 || cfg.R1 <= 0 || cfg.R2 <= 0 {
		return nil, fmt.Errorf("%w: resistances must be positive", ErrParams)
	}

	t0 := cfg.T0 + kelvin
	t1 := cfg.T1 + kelvin
	t2 := cfg.T2 + kelvin
	a0 := math.Log(cfg.R0)
	a1 := math.Log(cfg.R1)
	a2 := math.Log(cfg.R2)

	z := a0 - a1
	y := a0 - a2
	x := 1/t0 - 1/t1
	w := 1/t0 - 1/t2
	v := a0*a0*a0 - a1*a1*a1
	u := a0*a0*a0 - a2*a2*a2

	sh := &SteinhartHart{cfg: cfg}
	sh.c = (x - z*w/y) / (v - z*u/y)
	sh.b = (x - sh.c*v) / z
	sh.a = 1/t0 - sh.c*a0*a0*a0 - sh.b*a0

	if !finite(sh.a) || !finite(sh.b) || !finite(sh.c) || sh.c == 0 {
		return nil, fmt.Errorf("%w: calibration points (%g°C, %g), (%g°C, %g), (%g°C, %g) are degenerate",
			ErrParams, cfg.T0, cfg.R0, cfg.T1, cfg.R1, cfg.T2, cfg.R2)
	}
	return sh, nil
}

func (s *SteinhartHart) Kind() Kind { return KindSteinhartHart }

// Config returns the parameters the model was built from
func (s *SteinhartHart) Config() SteinhartHartConfig { return s.cfg }

// Coefficients returns A, B and C
func (s *SteinhartHart) Coefficients() (a, b, c float64) { return s.a, s.b, s.c }

func (s *SteinhartHart) TemperatureAt(adc float64) (float64, error) {
	r := s.adcInv(adc)
	if r <= 0 || !finite(r) {
		return 0, fmt.Errorf("%w: ADC %g gives resistance %g", ErrUnsolvable, adc, r)
	}

	ln := math.Log(r)
	den := s.a + s.b*ln + s.c*ln*ln*ln
	if den == 0 {
		return 0, fmt.Errorf("%w: ADC %g", ErrUnsolvable, adc)
	}
	t := 1/den - kelvin
	if !finite(t) {
		return 0, fmt.Errorf("%w: ADC %g", ErrUnsolvable, adc)
	}
	return t, nil
}

// Setting inverts the model: it returns the ADC code and resistance at a temperature in °C
func (s *SteinhartHart) Setting(celsius float64) (float64, float64, error) {
	t := celsius + kelvin
	y := (s.a - 1/t) / s.c
	disc := math.Pow(s.b/(3*s.c), 3) + y*y/4
	if disc < 0 {
		return 0, 0, fmt.Errorf("%w: no real resistance at %g°C", ErrUnsolvable, celsius)
	}
	x := math.Sqrt(disc)
	r := math.Exp(math.Cbrt(x-y/2) - math.Cbrt(x+y/2))
	if !finite(r) {
		return 0, 0, fmt.Errorf("%w: no real resistance at %g°C", ErrUnsolvable, celsius)
	}
	return s.adc(r), r, nil
}

func (s *SteinhartHart) DomainUpperBound() int {
	adc, _, err := s.Setting(0)
	if err != nil {
		return s.cfg.MaxADC
	}
	return int(adc)
}

func (s *SteinhartHart) ResistanceAt(adc, _ float64) float64 {
	return s.adcInv(adc)
}

func (s *SteinhartHart) ReferenceVoltage() float64 {
	if s.cfg.Vref <= 0 {
		return DefaultVref
	}
	return s.cfg.Vref
}

func (s *SteinhartHart) Describe() string {
	return fmt.Sprintf("Rp = %g, T0 = %g, R0 = %g, T1 = %g, R1 = %g, T2 = %g, R2 = %g, maxadc = %d",
		s.cfg.Rp, s.cfg.T0, s.cfg.R0, s.cfg.T1, s.cfg.R1, s.cfg.T2, s.cfg.R2, s.cfg.MaxADC)
}

// adc is the divider reading for a thermistor resistance
func (s *SteinhartHart) adc(r float64) float64 {
	return float64(s.cfg.MaxADC+1) * r / (r + s.cfg.Rp)
}

func (s *SteinhartHart) adcInv(adc float64) float64 {
	return s.cfg.Rp * adc / (float64(s.cfg.MaxADC+1) - adc)
}
