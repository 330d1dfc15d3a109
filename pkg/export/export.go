package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pterm/pterm"

	"github.com/tosih/thermtable/pkg/models"
)

// ExportTablesToCSV exports every generated table to dir, reporting progress on a spinner
func ExportTablesToCSV(set *models.TableSet, dir string) ([]string, error) {
	spinner, _ := pterm.DefaultSpinner.Start("Exporting tables to CSV...")

	files, err := ExportCSV(set, dir)
	if err != nil {
		spinner.Fail(fmt.Sprintf("Export failed: %v", err))
		return files, err
	}

	spinner.Success(fmt.Sprintf("%d table(s) exported to %s", len(files), dir))
	return files, nil
}

// ExportCSV writes one CSV file per generated table and returns the file names
func ExportCSV(set *models.TableSet, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}

	var files []string
	for _, t := range set.Valid() {
		name := filepath.Join(dir, CSVFilename(t))
		if err := exportTableToCSV(t, set.Settings, name); err != nil {
			return files, fmt.Errorf("export %s: %w", strings.Join(t.Names, ", "), err)
		}
		files = append(files, name)
	}
	return files, nil
}

// CSVFilename names the CSV file of a table after its first sensor
func CSVFilename(t *models.Table) string {
	return fmt.Sprintf("table_%d_%s.csv", t.Index, strings.ToLower(t.Names[0]))
}

func exportTableToCSV(t *models.Table, s models.Settings, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	// Metadata as comments
	writer.Write([]string{fmt.Sprintf("# %s (%s)", strings.Join(t.Names, ", "), t.Model)})
	writer.Write([]string{fmt.Sprintf("# %s", t.Describe)})
	writer.Write([]string{fmt.Sprintf("# Entries: %d of %d", len(t.NumericRows()), s.NumTemps)})
	writer.Write([]string{fmt.Sprintf("# Max interpolation error: %.3f C", t.MaxError)})
	writer.Write([]string{""})

	writer.Write([]string{"adc", "temp_code", "celsius", "ohms", "volts", "milliwatts", "note"})
	for _, r := range t.Rows {
		if !r.Valid() {
			writer.Write([]string{fmt.Sprintf("%d", r.ADC), "", "", "", "", "", r.Err.Error()})
			continue
		}
		writer.Write([]string{
			fmt.Sprintf("%d", r.ADC),
			fmt.Sprintf("%d", r.TempCode),
			fmt.Sprintf("%.2f", r.Temp),
			fmt.Sprintf("%.0f", r.Resistance),
			fmt.Sprintf("%.3f", r.Voltage),
			fmt.Sprintf("%.2f", r.Power*1000),
			"",
		})
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return file.Close()
}
