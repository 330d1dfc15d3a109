package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tosih/thermtable/pkg/models"
)

const boardYAML = `settings:
  num_temps: 8
  folder: out
sensors:
  - name: extruder
    params: [100000, 4092, 4700, 5.0]
  - name: extruder2
    params: ["100000", "4092", "4700", "5.0"]
  - name: bed
    params: [4700, 25, 100000, 150, 1641.9, 250, 226.15]
  - name: tc
    type: thermocouple
`

func writeBoard(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "board.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--no-color"))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestGenerate(t *testing.T) {
	path := writeBoard(t, boardYAML)

	_, err := run(t, "generate", "--config", path, "--backup")
	require.NoError(t, err)

	header, err := os.ReadFile(filepath.Join(filepath.Dir(path), "out", models.HeaderFilename))
	require.NoError(t, err)
	assert.Contains(t, string(header), "#define NUMTABLES 2\n#define NUMTEMPS 8\n")
	assert.Contains(t, string(header), "#define THERMISTOR_EXTRUDER 0\n#define THERMISTOR_EXTRUDER2 0\n#define THERMISTOR_BED 1\n")
	assert.NotContains(t, string(header), "THERMISTOR_TC")

	// A second run keeps the previous header
	_, err = run(t, "generate", "--config", path, "--backup", "-n", "10")
	require.NoError(t, err)
	entries, err := os.ReadDir(filepath.Join(filepath.Dir(path), "out"))
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestGenerateStdout(t *testing.T) {
	path := writeBoard(t, boardYAML)

	out, err := run(t, "generate", "-c", path, "--stdout", "--num-temps", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "#define NUMTEMPS 5\n")

	_, err = os.Stat(filepath.Join(filepath.Dir(path), "out"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestGenerateFailedGroup(t *testing.T) {
	path := writeBoard(t, boardYAML+"  - name: odd\n    params: [1, 2, 3]\n")
	dir := t.TempDir()

	_, err := run(t, "generate", "-c", path, "-o", dir)
	assert.ErrorIs(t, err, errFailedGroups)

	header, err := os.ReadFile(filepath.Join(dir, models.HeaderFilename))
	require.NoError(t, err, "header is written before failing")
	assert.Contains(t, string(header), "// ERROR: no table generated for ODD")
	assert.Contains(t, string(header), "#define NUMTABLES 2\n")
}

func TestGenerateErrors(t *testing.T) {
	_, err := run(t, "generate", "-c", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := writeBoard(t, boardYAML)
	_, err = run(t, "generate", "-c", path, "--max-adc", "0")
	assert.Error(t, err)

	_, err = run(t, "export", "-c", path, "--format", "xml")
	assert.ErrorContains(t, err, "unknown export format")

	_, err = run(t, "analyze", "-c", path, "extrudr")
	assert.ErrorContains(t, err, "did you mean extruder")

	_, err = run(t, "compare", "-c", path)
	assert.Error(t, err)
}

func TestExport(t *testing.T) {
	path := writeBoard(t, boardYAML)
	dir := t.TempDir()

	_, err := run(t, "export", "-c", path, "-d", dir)
	require.NoError(t, err)
	_, err = run(t, "export", "-c", path, "-d", dir, "-f", "chart")
	require.NoError(t, err)

	for _, name := range []string{"table_0_extruder.csv", "table_1_bed.csv", "chart_0_extruder.html", "chart_1_bed.html"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
}

func TestReadOnlyCommands(t *testing.T) {
	path := writeBoard(t, boardYAML)

	for _, args := range [][]string{
		{"list"},
		{"preview"},
		{"preview", "bed", "nozzle"},
		{"analyze", "bed", "--from", "2", "--to", "12"},
		{"compare", "--with-num-temps", "12"},
		{"compare", path},
	} {
		_, err := run(t, append(args, "-c", path)...)
		assert.NoError(t, err, "%v", args)
	}
}

func TestApplySettingsFlags(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	addSettingsFlags(fs)
	require.NoError(t, fs.Parse([]string{"--num-temps", "40", "--r1", "1000"}))

	s := models.Settings{NumTemps: 8, MaxADC: 4095, T0: 20, Workers: 2}
	require.NoError(t, applySettingsFlags(fs, &s))
	assert.Equal(t, models.Settings{NumTemps: 40, MaxADC: 4095, T0: 20, R1: 1000, Workers: 2}, s)
}

func TestOutputDir(t *testing.T) {
	b := &models.Board{Source: filepath.Join("boards", "mega.yaml")}

	b.Settings.Folder = "include"
	assert.Equal(t, filepath.Join("boards", "include"), outputDir(b, ""))
	assert.Equal(t, "elsewhere", outputDir(b, "elsewhere"))

	b.Settings.Folder = ""
	assert.Equal(t, "boards", outputDir(b, ""))

	abs := filepath.Join(t.TempDir(), "abs")
	b.Settings.Folder = abs
	assert.Equal(t, abs, outputDir(b, ""))
}
