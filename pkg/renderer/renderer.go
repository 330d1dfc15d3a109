package renderer

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/pterm/pterm"

	"github.com/tosih/thermtable/pkg/models"
)

// RenderTable displays one generated table in a titled box
func RenderTable(t *models.Table) {
	title := fmt.Sprintf("%s | #%d | %s | %d entries | max error %.2f C",
		strings.Join(t.Names, ", "), t.Index, t.Model, len(t.NumericRows()), t.MaxError)

	pterm.Info.Println(t.Describe)
	pterm.DefaultBox.WithTitle(title).WithTitleTopLeft().Println(BuildTableString(t))
}

// BuildTableString formats the rows of t, coloring temperatures by range
func BuildTableString(t *models.Table) string {
	var result strings.Builder

	lo, hi := findMinMax(t.NumericRows())

	// Header
	result.WriteString(fmt.Sprintf("%5s | %6s | %8s | %9s | %7s | %s\n", "ADC", "code", "°C", "ohms", "V", "range"))
	result.WriteString(strings.Repeat("-", 58) + "\n")

	for _, r := range t.Rows {
		if !r.Valid() {
			result.WriteString(fmt.Sprintf("%5d | %s\n", r.ADC, pterm.FgRed.Sprint("cannot solve: "+r.Err.Error())))
			continue
		}
		color := getColorStyle(r.Temp, lo, hi)
		result.WriteString(fmt.Sprintf("%5d | %6d | %s | %9.0f | %7.3f | %s\n",
			r.ADC, r.TempCode, color.Sprintf("%8.2f", r.Temp), r.Resistance, r.Voltage, getHeatmapBlock(r.Temp, lo, hi)))
	}

	result.WriteString("\n" + getHeatmapLegend())
	return result.String()
}

func getHeatmapBlock(value, min, max float64) string {
	if max == min {
		return pterm.BgGray.Sprint("  ")
	}

	normalized := (value - min) / (max - min)

	switch {
	case normalized < 0.2:
		return pterm.NewStyle(pterm.BgBlue, pterm.FgWhite).Sprint("▄▄")
	case normalized < 0.4:
		return pterm.NewStyle(pterm.BgCyan, pterm.FgBlack).Sprint("▄▄")
	case normalized < 0.6:
		return pterm.NewStyle(pterm.BgGreen, pterm.FgBlack).Sprint("▄▄")
	case normalized < 0.8:
		return pterm.NewStyle(pterm.BgYellow, pterm.FgBlack).Sprint("▄▄")
	default:
		return pterm.NewStyle(pterm.BgRed, pterm.FgWhite).Sprint("▄▄")
	}
}

func getHeatmapLegend() string {
	var result strings.Builder
	result.WriteString("Range: ")
	result.WriteString(pterm.NewStyle(pterm.BgBlue, pterm.FgWhite).Sprint("▄▄") + " Cold  ")
	result.WriteString(pterm.NewStyle(pterm.BgCyan, pterm.FgBlack).Sprint("▄▄") + " Cool  ")
	result.WriteString(pterm.NewStyle(pterm.BgGreen, pterm.FgBlack).Sprint("▄▄") + " Warm  ")
	result.WriteString(pterm.NewStyle(pterm.BgYellow, pterm.FgBlack).Sprint("▄▄") + " Hot  ")
	result.WriteString(pterm.NewStyle(pterm.BgRed, pterm.FgWhite).Sprint("▄▄") + " Very Hot")
	return result.String()
}

func getColorStyle(value, min, max float64) *pterm.Style {
	if max == min {
		return pterm.NewStyle(pterm.FgGray)
	}

	normalized := (value - min) / (max - min)

	switch {
	case normalized < 0.25:
		return pterm.NewStyle(pterm.FgCyan)
	case normalized < 0.5:
		return pterm.NewStyle(pterm.FgGreen)
	case normalized < 0.75:
		return pterm.NewStyle(pterm.FgYellow)
	default:
		return pterm.NewStyle(pterm.FgRed)
	}
}

// SensorRows builds the sensor overview shown by the list command. The
// table column is "-" for sensors without parameters and "failed" for
// sensors whose group could not be generated.
func SensorRows(board *models.Board, set *models.TableSet) pterm.TableData {
	data := pterm.TableData{
		{"Name", "Type", "Pin", "Params", "Model", "Table"},
	}

	for _, s := range board.Sensors {
		model, index := "-", "-"
		if len(s.Params) > 0 && set != nil {
			if t, ok := set.Lookup(s.Name); ok {
				model = t.Model
				index = fmt.Sprintf("%d", t.Index)
				if !t.Valid() {
					model, index = "-", "failed"
				}
			}
		}
		data = append(data, []string{
			s.Name,
			s.Type,
			s.Pin,
			formatParams(s.Params),
			model,
			index,
		})
	}
	return data
}

// ListSensors displays every sensor of the board and the table serving it
func ListSensors(board *models.Board, set *models.TableSet) {
	pterm.DefaultHeader.WithFullWidth().Println("Board Sensors")
	pterm.Info.Printf("Source: %s\n", board.Source)

	pterm.DefaultTable.WithHasHeader().WithData(SensorRows(board, set)).Render()

	if set != nil {
		pterm.Info.Printf("%d table(s), %d entries each\n", len(set.Valid()), set.Settings.NumTemps)
		ReportFailures(set)
	}
}

// ReportFailures prints one error line per group without a table
func ReportFailures(set *models.TableSet) {
	for _, t := range set.Failed() {
		pterm.Error.Printf("No table generated for %v\n", t.Err)
	}
}

// DisplayTables previews the tables of the named sensors, or all tables when
// names is empty. Unknown names print the closest sensor names instead.
func DisplayTables(set *models.TableSet, names []string, known []string) {
	pterm.DefaultHeader.WithFullWidth().
		WithBackgroundStyle(pterm.NewStyle(pterm.BgDarkGray)).
		WithTextStyle(pterm.NewStyle(pterm.FgLightWhite)).
		Println("Thermistor Tables")

	pterm.Println()

	var selected []*models.Table
	if len(names) == 0 {
		selected = set.Valid()
	}
	for _, name := range names {
		t, ok := set.Lookup(name)
		if !ok {
			pterm.Error.Printf("Unknown sensor: %s\n", name)
			if hints := Suggest(name, known); len(hints) > 0 {
				pterm.Info.Printf("Did you mean: %s\n", strings.Join(hints, ", "))
			}
			continue
		}
		selected = append(selected, t)
	}

	for i, t := range selected {
		if i > 0 {
			pterm.Println()
		}
		if !t.Valid() {
			pterm.Error.Printf("No table generated for %v\n", t.Err)
			continue
		}
		RenderTable(t)
	}
}

// Suggest returns the known names closest to name, best match first
func Suggest(name string, known []string) []string {
	ranks := fuzzy.RankFindFold(name, known)
	if len(ranks) == 0 {
		// Fall back to the reverse direction for typos longer than the target
		for _, k := range known {
			if fuzzy.MatchFold(k, name) {
				ranks = append(ranks, fuzzy.Rank{Source: k, Target: k, Distance: len(name) - len(k)})
			}
		}
	}
	sort.Sort(ranks)

	out := make([]string, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, r.Target)
	}
	return out
}

func formatParams(params []float64) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = fmt.Sprintf("%g", p)
	}
	return strings.Join(parts, ", ")
}

func findMinMax(rows []models.Row) (float64, float64) {
	if len(rows) == 0 {
		return 0, 0
	}

	min, max := math.Inf(1), math.Inf(-1)
	for _, r := range rows {
		if r.Temp < min {
			min = r.Temp
		}
		if r.Temp > max {
			max = r.Temp
		}
	}

	return min, max
}
