package compare

import (
	"math"
	"sort"
	"strings"

	"github.com/pterm/pterm"

	"github.com/tosih/thermtable/pkg/models"
	"github.com/tosih/thermtable/pkg/sampler"
)

// Buckets is the number of ADC ranges shown in the difference strip
const Buckets = 32

// Diff describes how the table of one sensor changed between two runs
type Diff struct {
	Sensor      string
	Old, New    *models.Table
	Added       []int
	Removed     []int
	MaxIncrease float64
	MaxDecrease float64
	MeanAbs     float64
	// Delta is new minus old interpolated temperature per ADC code bucket
	Delta []float64
}

// Changed reports whether the two tables differ at all
func (d Diff) Changed() bool {
	return len(d.Added) > 0 || len(d.Removed) > 0 || d.MaxIncrease != 0 || d.MaxDecrease != 0
}

// Tables compares the interpolated curves of two generated tables over the
// ADC codes both of them cover.
func Tables(sensor string, before, after *models.Table) Diff {
	d := Diff{Sensor: sensor, Old: before, New: after}

	oldCodes := codes(before)
	newCodes := codes(after)
	d.Added = missing(newCodes, oldCodes)
	d.Removed = missing(oldCodes, newCodes)

	a, b := points(before), points(after)
	if len(a) == 0 || len(b) == 0 {
		return d
	}
	lo := max(a[0].ADC, b[0].ADC)
	hi := min(a[len(a)-1].ADC, b[len(b)-1].ADC)
	if lo > hi {
		return d
	}

	d.Delta = make([]float64, Buckets)
	width := float64(hi-lo+1) / Buckets
	var total float64
	for adc := lo; adc <= hi; adc++ {
		delta := sampler.Interpolate(b, float64(adc)) - sampler.Interpolate(a, float64(adc))
		total += math.Abs(delta)
		d.MaxIncrease = max(d.MaxIncrease, delta)
		d.MaxDecrease = min(d.MaxDecrease, delta)

		bucket := min(int(float64(adc-lo)/width), Buckets-1)
		if math.Abs(delta) > math.Abs(d.Delta[bucket]) {
			d.Delta[bucket] = delta
		}
	}
	d.MeanAbs = total / float64(hi-lo+1)
	return d
}

// Sets pairs the tables of two runs by sensor name. Sensors present in only
// one set, or without a valid table in either, are returned by name in
// unmatched.
func Sets(before, after *models.TableSet) (diffs []Diff, unmatched []string) {
	seen := make(map[string]bool)
	for _, t := range before.Tables {
		for _, name := range t.Names {
			seen[name] = true
			n, ok := after.Lookup(name)
			if !ok || !t.Valid() || !n.Valid() {
				unmatched = append(unmatched, name)
				continue
			}
			diffs = append(diffs, Tables(name, t, n))
		}
	}
	for _, t := range after.Tables {
		for _, name := range t.Names {
			if !seen[name] {
				unmatched = append(unmatched, name)
			}
		}
	}
	sort.Strings(unmatched)
	return diffs, unmatched
}

// CompareSets displays the differences between two generation runs
func CompareSets(label1, label2 string, before, after *models.TableSet) {
	pterm.DefaultHeader.WithFullWidth().Println("Thermistor Table Comparison")
	pterm.Info.Printf("%s -> %s\n", label1, label2)

	diffs, unmatched := Sets(before, after)
	for _, d := range diffs {
		pterm.Println()
		pterm.DefaultSection.Printf("Comparing: %s\n", d.Sensor)
		displayComparison(d)
	}

	if len(unmatched) > 0 {
		pterm.Println()
		pterm.Warning.Printf("Not in both runs: %s\n", strings.Join(unmatched, ", "))
	}
}

func displayComparison(d Diff) {
	if !d.Changed() {
		pterm.Success.Println("Tables are identical")
		return
	}

	pterm.Info.Printf("Entries: %d -> %d (max error %.3f -> %.3f C)\n",
		len(d.Old.NumericRows()), len(d.New.NumericRows()), d.Old.MaxError, d.New.MaxError)
	if len(d.Added) > 0 {
		pterm.Info.Printf("Added codes: %v\n", d.Added)
	}
	if len(d.Removed) > 0 {
		pterm.Info.Printf("Removed codes: %v\n", d.Removed)
	}
	pterm.Info.Printf("Average change: %.3f C\n", d.MeanAbs)
	pterm.Info.Printf("Max increase: %.3f C\n", d.MaxIncrease)
	pterm.Info.Printf("Max decrease: %.3f C\n", d.MaxDecrease)

	if len(d.Delta) > 0 {
		pterm.Println("\nDifference Strip (new - old, low ADC to high ADC):")
		visualizeDifferences(d.Delta)
	}
}

func visualizeDifferences(delta []float64) {
	var result strings.Builder

	// Find max absolute difference for scaling
	maxAbs := 0.0
	for _, v := range delta {
		maxAbs = max(maxAbs, math.Abs(v))
	}

	for _, v := range delta {
		result.WriteString(getDiffSymbol(v, maxAbs))
	}
	result.WriteString("\n")

	// Legend
	result.WriteString("\nLegend: ")
	result.WriteString(pterm.FgBlue.Sprint("▼▼") + " Large Decrease  ")
	result.WriteString(pterm.FgCyan.Sprint("▼ ") + " Small Decrease  ")
	result.WriteString(pterm.FgGray.Sprint("··") + " No Change  ")
	result.WriteString(pterm.FgYellow.Sprint("▲ ") + " Small Increase  ")
	result.WriteString(pterm.FgRed.Sprint("▲▲") + " Large Increase")

	pterm.DefaultBox.Println(result.String())
}

func getDiffSymbol(val, maxAbs float64) string {
	if val == 0 {
		return pterm.FgGray.Sprint("··")
	}

	normalized := val / maxAbs

	if normalized < -0.5 {
		return pterm.FgBlue.Sprint("▼▼")
	} else if normalized < -0.1 {
		return pterm.FgCyan.Sprint("▼ ")
	} else if normalized > 0.5 {
		return pterm.FgRed.Sprint("▲▲")
	} else if normalized > 0.1 {
		return pterm.FgYellow.Sprint("▲ ")
	}

	return pterm.FgGray.Sprint("· ")
}

func points(t *models.Table) []sampler.Point {
	rows := t.NumericRows()
	out := make([]sampler.Point, len(rows))
	for i, r := range rows {
		out[i] = sampler.Point{ADC: r.ADC, Temp: r.Temp}
	}
	return out
}

func codes(t *models.Table) []int {
	var out []int
	for _, r := range t.NumericRows() {
		out = append(out, r.ADC)
	}
	return out
}

// missing returns the codes of a that are not in b
func missing(a, b []int) []int {
	in := make(map[int]bool, len(b))
	for _, c := range b {
		in[c] = true
	}
	var out []int
	for _, c := range a {
		if !in[c] {
			out = append(out, c)
		}
	}
	return out
}
