package thermistor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var env = Environment{MaxADC: 1023, T0: 25}

// EPCOS B57540G0104F000 style 100k thermistor with a 4k7 pull-up
var (
	betaParams = []float64{100000, 4092, 4700, 5.0}
	shParams   = []float64{4700, 25, 100000, 150, 1641.9, 250, 226.15}
)

func TestNewSelectsModelByArity(t *testing.T) {
	tests := []struct {
		name    string
		params  []float64
		kind    Kind
		wantErr error
	}{
		{"Beta", betaParams, KindBeta, nil},
		{"SteinhartHart", shParams, KindSteinhartHart, nil},
		{"Empty", nil, 0, ErrArity},
		{"FiveParams", []float64{1, 2, 3, 4, 5}, 0, ErrArity},
		{"BadBeta", []float64{0, 4092, 4700, 5}, 0, ErrParams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(tt.params, env)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, m)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.kind, m.Kind())
		})
	}
}

func TestNewRejectsMissingMaxADC(t *testing.T) {
	_, err := New(betaParams, Environment{T0: 25})
	assert.ErrorIs(t, err, ErrParams)
}

func TestBetaReferencePoint(t *testing.T) {
	b, err := NewBeta(BetaConfig{R0: 100000, Beta: 4092, R2: 4700, Vadc: 5, T0: 25, MaxADC: 1023})
	require.NoError(t, err)

	// Reading at which the thermistor equals R0
	adc := 1024 * 100000.0 / (100000 + 4700)
	temp, err := b.TemperatureAt(adc)
	require.NoError(t, err)
	assert.InDelta(t, 25.0, temp, 1e-6)
	assert.InDelta(t, 100000.0, b.Resistance(25), 1e-6)
	assert.InDelta(t, 100000.0, b.ResistanceAt(adc, temp), 1e-3)
}

func TestBetaDomainUpperBound(t *testing.T) {
	m, err := New(betaParams, env)
	require.NoError(t, err)

	hi := m.DomainUpperBound()
	assert.Greater(t, hi, 900)
	assert.LessOrEqual(t, hi, 1024)

	temp, err := m.TemperatureAt(float64(hi))
	require.NoError(t, err)
	assert.InDelta(t, 0.0, temp, 1.0)
}

func TestBetaMonotonic(t *testing.T) {
	m, err := New(betaParams, env)
	require.NoError(t, err)

	prev, err := m.TemperatureAt(1)
	require.NoError(t, err)
	for adc := 2; adc <= m.DomainUpperBound(); adc++ {
		temp, err := m.TemperatureAt(float64(adc))
		require.NoError(t, err)
		assert.Less(t, temp, prev, "ADC %d", adc)
		prev = temp
	}
}

func TestBetaParallelResistor(t *testing.T) {
	plain, err := New(betaParams, env)
	require.NoError(t, err)
	withR1, err := New(betaParams, Environment{MaxADC: 1023, T0: 25, R1: 10000})
	require.NoError(t, err)

	// The Thevenin source voltage is lower, so 0 °C reads lower too
	assert.Less(t, withR1.DomainUpperBound(), plain.DomainUpperBound())
}

func TestBetaUnsolvableAboveSource(t *testing.T) {
	m, err := New(betaParams, Environment{MaxADC: 1023, T0: 25, R1: 1000})
	require.NoError(t, err)

	// Above the divider source voltage the resistance goes negative
	_, err = m.TemperatureAt(1000)
	assert.True(t, errors.Is(err, ErrUnsolvable))
}

func TestSteinhartHartCalibrationPoints(t *testing.T) {
	sh, err := NewSteinhartHart(SteinhartHartConfig{
		Rp: 4700, T0: 25, R0: 100000, T1: 150, R1: 1641.9, T2: 250, R2: 226.15, MaxADC: 1023,
	})
	require.NoError(t, err)

	points := []struct {
		celsius, ohms float64
	}{
		{25, 100000},
		{150, 1641.9},
		{250, 226.15},
	}
	for _, p := range points {
		adc := 1024 * p.ohms / (p.ohms + 4700)
		temp, err := sh.TemperatureAt(adc)
		require.NoError(t, err)
		assert.InDelta(t, p.celsius, temp, 1e-4)
		assert.InDelta(t, p.ohms, sh.ResistanceAt(adc, temp), 1e-6)

		gotADC, gotOhms, err := sh.Setting(p.celsius)
		require.NoError(t, err)
		assert.InDelta(t, adc, gotADC, 1e-3)
		assert.InDelta(t, p.ohms, gotOhms, p.ohms*1e-6)
	}
}

func TestSteinhartHartUnsolvable(t *testing.T) {
	m, err := New(shParams, env)
	require.NoError(t, err)

	for _, adc := range []float64{0, 1024, 2000} {
		_, err := m.TemperatureAt(adc)
		assert.ErrorIs(t, err, ErrUnsolvable, "ADC %g", adc)
	}
}

func TestSteinhartHartDegenerate(t *testing.T) {
	_, err := New([]float64{4700, 25, 100000, 25, 100000, 25, 100000}, env)
	assert.ErrorIs(t, err, ErrParams)
}

func TestDescribe(t *testing.T) {
	m, err := New(betaParams, env)
	require.NoError(t, err)
	assert.Equal(t, "R0 = 100000, T0 = 25, R1 = 0, R2 = 4700, beta = 4092, maxadc = 1023", m.Describe())
	assert.Equal(t, "Beta", m.Kind().String())
}
