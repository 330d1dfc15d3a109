package table

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tosih/thermtable/pkg/thermistor"
)

// fakeModel is linear in ADC and fails on the codes in unsolvable
type fakeModel struct {
	unsolvable map[int]bool
	hi         int
}

func (f *fakeModel) Kind() thermistor.Kind { return thermistor.KindBeta }

func (f *fakeModel) TemperatureAt(adc float64) (float64, error) {
	if f.unsolvable[int(adc)] {
		return 0, fmt.Errorf("%w: ADC %g", thermistor.ErrUnsolvable, adc)
	}
	return 500 - adc, nil
}

func (f *fakeModel) DomainUpperBound() int { return f.hi }

func (f *fakeModel) ResistanceAt(adc, _ float64) float64 { return 10 * adc }

func (f *fakeModel) ReferenceVoltage() float64 { return 5 }

func (f *fakeModel) Describe() string { return "fake" }

func TestComputeRow(t *testing.T) {
	m, err := thermistor.New([]float64{100000, 4092, 4700, 5.0}, thermistor.Environment{MaxADC: 1023, T0: 25})
	require.NoError(t, err)

	row := ComputeRow(m, 500, 5.0, 1023)
	require.True(t, row.Valid())

	temp, err := m.TemperatureAt(500)
	require.NoError(t, err)
	assert.Equal(t, 500, row.ADC)
	assert.InDelta(t, temp, row.Temp, 1e-12)
	assert.Equal(t, TempCode(temp), row.TempCode)
	assert.InDelta(t, 500*5.0/1024, row.Voltage, 1e-12)
	assert.InDelta(t, m.ResistanceAt(500, temp), row.Resistance, 1e-9)
	assert.InDelta(t, row.Voltage*row.Voltage/row.Resistance, row.Power, 1e-12)
}

func TestComputeRowPowerNonNegative(t *testing.T) {
	m, err := thermistor.New([]float64{4700, 25, 100000, 150, 1641.9, 250, 226.15}, thermistor.Environment{MaxADC: 1023})
	require.NoError(t, err)

	for adc := 1; adc <= m.DomainUpperBound(); adc += 7 {
		row := ComputeRow(m, adc, m.ReferenceVoltage(), 1023)
		require.True(t, row.Valid(), "ADC %d", adc)
		assert.Greater(t, row.Resistance, 0.0, "ADC %d", adc)
		assert.GreaterOrEqual(t, row.Power, 0.0, "ADC %d", adc)
	}
}

func TestComputeRowSolverFailure(t *testing.T) {
	m := &fakeModel{unsolvable: map[int]bool{42: true}, hi: 100}

	row := ComputeRow(m, 42, 5, 1023)
	assert.False(t, row.Valid())
	assert.ErrorIs(t, row.Err, thermistor.ErrUnsolvable)
	assert.Equal(t, 42, row.ADC)
	assert.Zero(t, row.TempCode)
	assert.Zero(t, row.Voltage)
}

func TestVoltageFullScale(t *testing.T) {
	for _, maxADC := range []int{255, 1023, 4095} {
		assert.InDelta(t, 3.3, Voltage(maxADC+1, 3.3, maxADC), 1e-12)
		assert.Zero(t, Voltage(0, 3.3, maxADC))
	}
}

func TestTempCode(t *testing.T) {
	tests := []struct {
		celsius float64
		want    int
	}{
		{0, 0},
		{25, 100},
		{25.1, 100},
		{25.13, 101},
		{299.99, 1200},
		{500, 2000},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TempCode(tt.celsius), "%g", tt.celsius)
	}
}
