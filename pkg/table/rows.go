package table

import (
	"math"

	"github.com/tosih/thermtable/pkg/models"
	"github.com/tosih/thermtable/pkg/thermistor"
)

// ComputeRow evaluates m at one sampled ADC code. A solver failure is returned
// in Row.Err so the table can annotate the entry instead of aborting.
func ComputeRow(m thermistor.Model, adc int, vref float64, maxADC int) models.Row {
	t, err := m.TemperatureAt(float64(adc))
	if err != nil {
		return models.Row{ADC: adc, Err: err}
	}

	r := m.ResistanceAt(float64(adc), t)
	v := Voltage(adc, vref, maxADC)

	row := models.Row{
		ADC:        adc,
		TempCode:   TempCode(t),
		Temp:       t,
		Resistance: r,
		Voltage:    v,
	}
	if r > 0 {
		row.Power = v * v / r
	}
	return row
}

// TempCode encodes a temperature in quarter degrees
func TempCode(celsius float64) int {
	return int(math.Round(4 * celsius))
}

// Voltage is the divider voltage at an ADC code; code maxADC+1 is full scale
func Voltage(adc int, vref float64, maxADC int) float64 {
	return float64(adc) * vref / float64(maxADC+1)
}
