package thermistor

import (
	"errors"
	"fmt"
	"math"
)

// Absolute zero offset between Celsius and Kelvin
const kelvin = 273.15

var (
	// ErrUnsolvable is returned when no real temperature exists for an ADC code
	ErrUnsolvable = errors.New("thermistor: temperature cannot be solved")
	// ErrArity is returned when a parameter tuple matches neither model
	ErrArity = errors.New("thermistor: unsupported parameter count")
	// ErrParams is returned when parameters cannot describe a physical thermistor
	ErrParams = errors.New("thermistor: invalid parameters")
)

// Kind identifies one of the supported thermistor models
type Kind int

const (
	KindBeta Kind = iota
	KindSteinhartHart
)

func (k Kind) String() string {
	switch k {
	case KindBeta:
		return "Beta"
	case KindSteinhartHart:
		return "Steinhart-Hart"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Parameter counts that select a model
const (
	BetaParams          = 4
	SteinhartHartParams = 7
)

// Model evaluates the response curve of a thermistor behind an ADC
type Model interface {
	Kind() Kind
	// TemperatureAt returns the temperature in °C for an ADC reading or ErrUnsolvable.
	TemperatureAt(adc float64) (float64, error)
	// DomainUpperBound is the highest ADC code the model is evaluated at (the 0 °C reading).
	DomainUpperBound() int
	// ResistanceAt returns the thermistor resistance in ohms for a sample. The Beta model
	// derives it from the temperature, Steinhart-Hart from the divider at the ADC code.
	ResistanceAt(adc, celsius float64) float64
	// ReferenceVoltage is the ADC reference used for voltage annotations.
	ReferenceVoltage() float64
	// Describe renders the parameters for generated-file comments.
	Describe() string
}

// Environment holds the board-wide settings the models depend on
type Environment struct {
	MaxADC int     // highest ADC code, 1023 for a 10-bit converter
	T0     float64 // reference temperature of Beta thermistors in °C
	R1     float64 // optional resistor parallel to the thermistor, 0 if absent
	Vref   float64 // ADC reference for models without their own, DefaultVref if unset
}

// DefaultVref is the ADC reference assumed for Steinhart-Hart thermistors
const DefaultVref = 5.0

// New selects a model by the length of params: 4 values build a Beta model
// (R0, beta, R2, Vadc), 7 values a Steinhart-Hart model (Rp, T0, R0, T1, R1, T2, R2).
func New(params []float64, env Environment) (Model, error) {
	if env.MaxADC <= 0 {
		return nil, fmt.Errorf("%w: max ADC %d", ErrParams, env.MaxADC)
	}

	switch len(params) {
	case BetaParams:
		return NewBeta(BetaConfig{
			R0:     params[0],
			Beta:   params[1],
			R2:     params[2],
			Vadc:   params[3],
			T0:     env.T0,
			R1:     env.R1,
			MaxADC: env.MaxADC,
		})
	case SteinhartHartParams:
		vref := env.Vref
		if vref <= 0 {
			vref = DefaultVref
		}
		return NewSteinhartHart(SteinhartHartConfig{
			Rp:     params[0],
			T0:     params[1],
			R0:     params[2],
			T1:     params[3],
			R1:     params[4],
			T2:     params[5],
			R2:     params[6],
			Vref:   vref,
			MaxADC: env.MaxADC,
		})
	default:
		return nil, fmt.Errorf("%w: got %d, want %d (Beta) or %d (Steinhart-Hart)",
			ErrArity, len(params), BetaParams, SteinhartHartParams)
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
