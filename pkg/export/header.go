package export

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/tosih/thermtable/pkg/models"
	"github.com/tosih/thermtable/pkg/thermistor"
)

const boilerplate = `
/**
  This file was autogenerated by thermtable. You can edit it, but the next
  generate run will overwrite it without asking.
*/
`

// RenderHeader formats a table set as the thermistortable.h C header
func RenderHeader(set *models.TableSet) []byte {
	var buf bytes.Buffer
	writeHeader(&buf, set)
	return buf.Bytes()
}

func writeHeader(w io.Writer, set *models.TableSet) {
	valid := set.Valid()
	n := set.Settings.NumTemps

	fmt.Fprint(w, boilerplate+"\n")
	fmt.Fprintf(w, "#define NUMTABLES %d\n", len(valid))
	fmt.Fprintf(w, "#define NUMTEMPS %d\n", n)
	fmt.Fprintln(w)

	for _, t := range valid {
		for _, name := range t.Names {
			fmt.Fprintf(w, "#define THERMISTOR_%s %d\n", name, t.Index)
		}
	}
	fmt.Fprintln(w)

	if failed := set.Failed(); len(failed) > 0 {
		for _, t := range failed {
			fmt.Fprintf(w, "// ERROR: no table generated for %v\n", t.Err)
		}
		fmt.Fprintln(w)
	}

	if len(valid) == 0 || n == 0 {
		return
	}

	fmt.Fprintln(w, "const uint16_t PROGMEM temptable[NUMTABLES][NUMTEMPS][2] = {")
	for i, t := range valid {
		writeTable(w, t, i == len(valid)-1)
	}
	fmt.Fprintln(w, "};")
}

func writeTable(w io.Writer, t *models.Table, final bool) {
	fmt.Fprintf(w, "  // %s temp table using %s algorithm with parameters:\n", strings.Join(t.Names, ", "), t.Model)
	fmt.Fprintf(w, "  // %s\n", t.Describe)
	fmt.Fprintln(w, "  {")

	last := 0
	for _, r := range t.Rows {
		last = max(last, r.ADC)
	}

	for _, r := range t.Rows {
		if !r.Valid() {
			fmt.Fprintf(w, "// ERROR CALCULATING THERMISTOR VALUES AT ADC %d\n", r.ADC)
			continue
		}
		fmt.Fprintln(w, FormatRow(t.Model, r, r.ADC == last))
	}

	if final {
		fmt.Fprintln(w, "  }")
	} else {
		fmt.Fprintln(w, "  },")
	}
}

// FormatRow renders one table entry with its annotation comment
func FormatRow(model string, r models.Row, last bool) string {
	sep := ","
	if last {
		sep = " "
	}

	if model == thermistor.KindSteinhartHart.String() {
		return fmt.Sprintf("    {%4d, %5d}%s // %4d C, %6d ohms",
			r.ADC, r.TempCode, sep, int(r.Temp), int(math.Round(r.Resistance)))
	}
	return fmt.Sprintf("    {%4d, %5d}%s // %4d C, %6.0f ohms, %0.3f V, %0.2f mW",
		r.ADC, r.TempCode, sep, int(r.Temp), math.Round(r.Resistance), r.Voltage, r.Power*1000)
}

// WriteHeader renders the header into dir. The file is written to a temporary
// name first, so a failed write leaves any existing header untouched.
func WriteHeader(set *models.TableSet, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	path := filepath.Join(dir, models.HeaderFilename)
	tmp, err := os.CreateTemp(dir, "."+models.HeaderFilename+".*")
	if err != nil {
		return "", fmt.Errorf("create header: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(RenderHeader(set)); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write header: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}
	return path, nil
}
