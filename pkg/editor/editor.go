package editor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"github.com/tosih/thermtable/pkg/models"
	"github.com/tosih/thermtable/pkg/reader"
	"github.com/tosih/thermtable/pkg/thermistor"
)

// ErrCancelled is returned when the user declines to save
var ErrCancelled = errors.New("editor: cancelled")

// Sensor kinds offered by the interactive editor
const (
	KindBeta           = "Beta (R0, beta, R2, Vadc)"
	KindSteinhartHart  = "Steinhart-Hart (Rp, T0, R0, T1, R1, T2, R2)"
	KindNoTable        = "No table (thermocouple, digital)"
	typeThermistor     = "thermistor"
	defaultNoTableType = "thermocouple"
)

var paramPrompts = map[string][]string{
	KindBeta: {
		"R0: resistance at T0 (ohms)",
		"beta",
		"R2: pull-up resistor (ohms)",
		"Vadc: ADC reference voltage (V)",
	},
	KindSteinhartHart: {
		"Rp: pull-up resistor (ohms)",
		"T0 (C)", "R0 at T0 (ohms)",
		"T1 (C)", "R1 at T1 (ohms)",
		"T2 (C)", "R2 at T2 (ohms)",
	},
}

// CreateBackup creates a timestamped backup of the file
func CreateBackup(filename string) (string, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", err
	}

	timestamp := time.Now().Format("20060102_150405")
	backupName := filename + ".backup_" + timestamp
	err = os.WriteFile(backupName, data, 0644)
	if err != nil {
		return "", err
	}

	return backupName, nil
}

// BuildSensor turns the answers of the add-sensor prompts into a sensor. The
// parameter tuple is checked against the model it claims to be.
func BuildSensor(name, kind, pin string, params []string) (models.Sensor, error) {
	sensor := models.Sensor{Name: strings.TrimSpace(name), Pin: strings.TrimSpace(pin)}

	switch kind {
	case KindBeta, KindSteinhartHart:
		values := make([]any, len(params))
		for i, p := range params {
			values[i] = strings.TrimSpace(p)
		}
		parsed, err := reader.ParseParams(values)
		if err != nil {
			return sensor, err
		}
		if want := len(paramPrompts[kind]); len(parsed) != want {
			return sensor, fmt.Errorf("%w: %s needs %d parameters, got %d", thermistor.ErrArity, kind, want, len(parsed))
		}
		sensor.Type = typeThermistor
		sensor.Params = parsed
	case KindNoTable:
		sensor.Type = defaultNoTableType
	default:
		return sensor, fmt.Errorf("editor: unknown sensor kind %q", kind)
	}
	return sensor, nil
}

// AddSensor appends sensor to the board after checking that the result is a
// valid board and that the parameters describe a solvable model.
func AddSensor(board *models.Board, sensor models.Sensor) error {
	if len(sensor.Params) > 0 {
		env := thermistor.Environment{
			MaxADC: board.Settings.MaxADC,
			T0:     board.Settings.T0,
			R1:     board.Settings.R1,
			Vref:   board.Settings.Vref,
		}
		if _, err := thermistor.New(sensor.Params, env); err != nil {
			return err
		}
	}

	next := *board
	next.Sensors = append(append([]models.Sensor(nil), board.Sensors...), sensor)
	if err := reader.Validate(&next); err != nil {
		return err
	}
	board.Sensors = next.Sensors
	return nil
}

// WriteBoard saves the board to its source file in the format implied by the
// extension, optionally keeping a timestamped backup of the previous file.
func WriteBoard(board *models.Board, backup bool) (string, error) {
	format, err := reader.FormatOf(board.Source)
	if err != nil {
		return "", err
	}
	data, err := reader.MarshalBoard(board, format)
	if err != nil {
		return "", err
	}

	var backupName string
	if backup {
		backupName, err = CreateBackup(board.Source)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("create backup: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(board.Source), 0755); err != nil {
		return backupName, err
	}
	return backupName, os.WriteFile(board.Source, data, 0644)
}

// InteractiveAddSensor prompts for a new sensor and saves it to the board file
func InteractiveAddSensor(board *models.Board, backup bool) error {
	pterm.DefaultHeader.WithFullWidth().
		WithBackgroundStyle(pterm.NewStyle(pterm.BgCyan)).
		WithTextStyle(pterm.NewStyle(pterm.FgBlack)).
		Println("Add Sensor")

	pterm.Info.Printf("Board: %s (%d sensors)\n", board.Source, len(board.Sensors))

	name, _ := pterm.DefaultInteractiveTextInput.Show("Sensor name (C identifier, e.g. extruder)")
	kind, _ := pterm.DefaultInteractiveSelect.
		WithOptions([]string{KindBeta, KindSteinhartHart, KindNoTable}).
		Show("Select sensor kind:")
	pin, _ := pterm.DefaultInteractiveTextInput.Show("Pin (optional)")

	var params []string
	for _, prompt := range paramPrompts[kind] {
		value, _ := pterm.DefaultInteractiveTextInput.Show(prompt)
		params = append(params, value)
	}

	sensor, err := BuildSensor(name, kind, pin, params)
	if err != nil {
		return err
	}
	if err := AddSensor(board, sensor); err != nil {
		return err
	}

	pterm.Info.Printf("New sensor: %s %s %v\n", sensor.Name, sensor.Type, sensor.Params)
	result, _ := pterm.DefaultInteractiveConfirm.Show("Write this change to file?")
	if !result {
		pterm.Info.Println("Cancelled.")
		return ErrCancelled
	}

	backupName, err := WriteBoard(board, backup)
	if err != nil {
		return err
	}
	if backupName != "" {
		pterm.Success.Printf("Backup created: %s\n", backupName)
	}

	pterm.Success.Printf("Sensor %s added to %s\n", sensor.Name, board.Source)
	return nil
}
