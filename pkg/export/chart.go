package export

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/tosih/thermtable/pkg/models"
	"github.com/tosih/thermtable/pkg/sampler"
)

// ChartData holds the series plotted for one table over the model curve
type ChartData struct {
	ADC      []int
	Model    []float64
	Table    []float64
	AbsError []float64
}

// NewChartData evaluates the firmware interpolation of t at every curve code
func NewChartData(t *models.Table, curve sampler.Curve) ChartData {
	var table []sampler.Point
	for _, r := range t.NumericRows() {
		table = append(table, sampler.Point{ADC: r.ADC, Temp: r.Temp})
	}

	d := ChartData{
		ADC:      make([]int, len(curve)),
		Model:    make([]float64, len(curve)),
		Table:    make([]float64, len(curve)),
		AbsError: make([]float64, len(curve)),
	}
	for i, p := range curve {
		est := sampler.Interpolate(table, float64(p.ADC))
		d.ADC[i] = p.ADC
		d.Model[i] = p.Temp
		d.Table[i] = est
		d.AbsError[i] = math.Abs(p.Temp - est)
	}
	return d
}

// BuildChart plots the model curve, the table interpolation and their difference
func BuildChart(t *models.Table, curve sampler.Curve) *charts.Line {
	d := NewChartData(t, curve)

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "thermtable",
			Width:     "1000px",
			Height:    "600px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    strings.Join(t.Names, ", "),
			Subtitle: fmt.Sprintf("%s, %d entries, max error %.2f °C", t.Model, len(t.NumericRows()), t.MaxError),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "ADC"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "°C"}),
		charts.WithLegendOpts(opts.Legend{}),
	)
	line.ExtendYAxis(opts.YAxis{Name: "error °C"})

	line.SetXAxis(d.ADC).
		AddSeries("model", lineData(d.Model)).
		AddSeries("table", lineData(d.Table)).
		AddSeries("error", lineData(d.AbsError), charts.WithLineChartOpts(opts.LineChart{YAxisIndex: 1}))
	return line
}

// WriteChart renders the chart of t as a standalone HTML page
func WriteChart(w io.Writer, t *models.Table, curve sampler.Curve) error {
	return BuildChart(t, curve).Render(w)
}

func lineData(values []float64) []opts.LineData {
	items := make([]opts.LineData, len(values))
	for i, v := range values {
		items[i] = opts.LineData{Value: v}
	}
	return items
}

// ChartFilename names the HTML chart of a table after its first sensor
func ChartFilename(t *models.Table) string {
	return fmt.Sprintf("chart_%d_%s.html", t.Index, strings.ToLower(t.Names[0]))
}

// ExportCharts writes one HTML chart per generated table. curveOf supplies the
// dense model curve the table was sampled from.
func ExportCharts(set *models.TableSet, dir string, curveOf func(*models.Table) (sampler.Curve, error)) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}

	var files []string
	for _, t := range set.Valid() {
		curve, err := curveOf(t)
		if err != nil {
			return files, err
		}

		name := filepath.Join(dir, ChartFilename(t))
		f, err := os.Create(name)
		if err != nil {
			return files, err
		}
		if err := WriteChart(f, t, curve); err != nil {
			f.Close()
			return files, fmt.Errorf("render chart %s: %w", name, err)
		}
		if err := f.Close(); err != nil {
			return files, err
		}
		files = append(files, name)
	}
	return files, nil
}
