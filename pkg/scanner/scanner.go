package scanner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	"github.com/tosih/thermtable/pkg/sampler"
	"github.com/tosih/thermtable/pkg/table"
)

// ScanResult holds the interpolation quality of one table size
type ScanResult struct {
	Entries  int
	MaxError float64
	MinADC   int
	MaxADC   int
	Preview  string
}

// ErrRange is returned for an empty or inverted size range
var ErrRange = errors.New("scanner: invalid table size range")

// ScanSizes samples curve with every table size in [from, to] and reports the
// worst interpolation error of each. Sizes beyond the curve length are skipped.
func ScanSizes(ctx context.Context, curve sampler.Curve, from, to int) ([]ScanResult, error) {
	if from < 2 || to < from {
		return nil, fmt.Errorf("%w: %d..%d", ErrRange, from, to)
	}
	to = min(to, len(curve))

	var results []ScanResult
	for n := from; n <= to; n++ {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		samples, err := sampler.Sample(curve, n)
		if err != nil {
			return results, err
		}
		worst, err := sampler.MaxError(curve, samples)
		if err != nil {
			return results, err
		}

		// Create preview
		var preview []string
		for i := 0; i < 4 && i < len(samples); i++ {
			preview = append(preview, fmt.Sprintf("%d", samples[i]))
		}

		results = append(results, ScanResult{
			Entries:  n,
			MaxError: worst,
			MinADC:   samples[0],
			MaxADC:   samples[len(samples)-1],
			Preview:  strings.Join(preview, " ") + " ...",
		})
	}
	return results, nil
}

// Smallest returns the smallest scanned size whose error is within limit
func Smallest(results []ScanResult, limit float64) (ScanResult, bool) {
	for _, r := range results {
		if r.MaxError <= limit {
			return r, true
		}
	}
	return ScanResult{}, false
}

// AnalyzeSizes scans the table sizes of one parameter tuple and displays the
// results. limit highlights the first size meeting the error bound.
func AnalyzeSizes(ctx context.Context, g *table.Generator, name string, params []float64, from, to int, limit float64) error {
	spinner, _ := pterm.DefaultSpinner.Start(fmt.Sprintf("Sampling %s...", name))

	curve, err := g.Curve(params)
	if err != nil {
		spinner.Fail("Error building curve")
		return err
	}

	results, err := ScanSizes(ctx, curve, from, to)
	if err != nil {
		spinner.Fail("Error scanning table sizes")
		return err
	}

	spinner.Success(fmt.Sprintf("Curve loaded: %d ADC codes (%d..%d)", len(curve), curve[0].ADC, curve[len(curve)-1].ADC))

	pterm.Println()
	pterm.DefaultSection.Printf("Table sizes for %s\n", name)

	displayResults(results, limit)
	return nil
}

func displayResults(results []ScanResult, limit float64) {
	if len(results) == 0 {
		pterm.Info.Println("No table sizes scanned")
		return
	}

	best, found := Smallest(results, limit)

	tableData := pterm.TableData{
		{"Entries", "Max error C", "ADC range", "Preview"},
	}

	for _, result := range results {
		errText := fmt.Sprintf("%.3f", result.MaxError)
		if found && result.Entries == best.Entries {
			errText = pterm.FgGreen.Sprint(errText)
		}
		tableData = append(tableData, []string{
			fmt.Sprintf("%d", result.Entries),
			errText,
			fmt.Sprintf("%d-%d", result.MinADC, result.MaxADC),
			result.Preview,
		})
	}

	pterm.DefaultTable.WithHasHeader().WithData(tableData).Render()
	if found {
		pterm.Info.Printf("\n%d entries keep the error within %.2f C\n", best.Entries, limit)
	} else {
		pterm.Warning.Printf("\nNo scanned size keeps the error within %.2f C\n", limit)
	}
}
