package thermistor

import (
	"fmt"
	"math"
)

// BetaConfig describes a thermistor on the low side of a divider with pull-up R2
type BetaConfig struct {
	R0     float64 // resistance at T0
	Beta   float64
	R2     float64 // pull-up resistor
	Vadc   float64 // ADC reference voltage
	T0     float64 // °C
	R1     float64 // parallel resistor, 0 if absent
	MaxADC int
}

// Beta implements the simplified exponential model R = R0·exp(beta·(1/T - 1/T0))
type Beta struct {
	cfg BetaConfig
	t0  float64 // Kelvin
	k   float64 // R0·exp(-beta/T0)
	vs  float64 // divider source voltage
	rs  float64 // divider source resistance
}

// NewBeta builds a Beta model. With R1 set, the R1/R2 pair is reduced to its Thevenin equivalent.
func NewBeta(cfg BetaConfig) (*Beta, error) {
	if cfg.R0 <= 0 || cfg.Beta <= 0 || cfg.R2 <= 0 || cfg.Vadc <= 0 || cfg.R1 < 0 {
		return nil, fmt.Errorf("%w: R0=%g beta=%g R2=%g Vadc=%g R1=%g",
			ErrParams, cfg.R0, cfg.Beta, cfg.R2, cfg.Vadc, cfg.R1)
	}

	b := &Beta{cfg: cfg, t0: cfg.T0 + kelvin}
	b.k = cfg.R0 * math.Exp(-cfg.Beta/b.t0)
	if cfg.R1 > 0 {
		b.vs = cfg.R1 * cfg.Vadc / (cfg.R1 + cfg.R2)
		b.rs = cfg.R1 * cfg.R2 / (cfg.R1 + cfg.R2)
	} else {
		b.vs = cfg.Vadc
		b.rs = cfg.R2
	}
	return b, nil
}

func (b *Beta) Kind() Kind { return KindBeta }

// Config returns the parameters the model was built from
func (b *Beta) Config() BetaConfig { return b.cfg }

func (b *Beta) TemperatureAt(adc float64) (float64, error) {
	v := adc * b.cfg.Vadc / float64(b.cfg.MaxADC+1)

	var r float64
	if b.vs-v != 0 {
		r = b.rs * v / (b.vs - v)
	} else {
		r = b.cfg.R0 * 10
	}
	if r <= 0 {
		return 0, fmt.Errorf("%w: ADC %g gives resistance %g", ErrUnsolvable, adc, r)
	}

	ln := math.Log(r / b.k)
	if ln == 0 {
		return 0, fmt.Errorf("%w: ADC %g", ErrUnsolvable, adc)
	}
	t := b.cfg.Beta/ln - kelvin
	if !finite(t) {
		return 0, fmt.Errorf("%w: ADC %g", ErrUnsolvable, adc)
	}
	return t, nil
}

// Resistance returns the thermistor resistance at a temperature in °C
func (b *Beta) Resistance(celsius float64) float64 {
	return b.cfg.R0 * math.Exp(b.cfg.Beta*(1/(celsius+kelvin)-1/b.t0))
}

func (b *Beta) ResistanceAt(_, celsius float64) float64 {
	return b.Resistance(celsius)
}

// Setting returns the ADC code and resistance at a temperature in °C
func (b *Beta) Setting(celsius float64) (int, float64) {
	r := b.Resistance(celsius)
	v := b.vs * r / (b.rs + r)
	return int(math.Round(v / b.cfg.Vadc * float64(b.cfg.MaxADC+1))), r
}

func (b *Beta) DomainUpperBound() int {
	adc, _ := b.Setting(0)
	return adc
}

func (b *Beta) ReferenceVoltage() float64 { return b.cfg.Vadc }

func (b *Beta) Describe() string {
	return fmt.Sprintf("R0 = %g, T0 = %g, R1 = %g, R2 = %g, beta = %g, maxadc = %d",
		b.cfg.R0, b.cfg.T0, b.cfg.R1, b.cfg.R2, b.cfg.Beta, b.cfg.MaxADC)
}
