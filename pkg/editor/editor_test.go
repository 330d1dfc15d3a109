package editor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tosih/thermtable/pkg/models"
	"github.com/tosih/thermtable/pkg/reader"
	"github.com/tosih/thermtable/pkg/thermistor"
)

func TestBuildSensor(t *testing.T) {
	s, err := BuildSensor(" extruder ", KindBeta, "PA0", []string{"100000", " 4092", "4700", "5.0"})
	require.NoError(t, err)
	assert.Equal(t, models.Sensor{
		Name:   "extruder",
		Type:   "thermistor",
		Pin:    "PA0",
		Params: []float64{100000, 4092, 4700, 5},
	}, s)

	s, err = BuildSensor("tc", KindNoTable, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "thermocouple", s.Type)
	assert.Empty(t, s.Params)
}

func TestBuildSensorErrors(t *testing.T) {
	_, err := BuildSensor("e", KindBeta, "", []string{"100000", "4092", "4700"})
	assert.ErrorIs(t, err, thermistor.ErrArity)

	_, err = BuildSensor("e", KindSteinhartHart, "", []string{"4700", "25", "x", "150", "1770", "250", "230"})
	assert.ErrorIs(t, err, reader.ErrInvalid)

	_, err = BuildSensor("e", "Other", "", nil)
	assert.Error(t, err)
}

func TestAddSensor(t *testing.T) {
	board := &models.Board{
		Settings: models.DefaultSettings(),
		Sensors:  []models.Sensor{{Name: "extruder", Params: []float64{100000, 4092, 4700, 5}}},
	}

	require.NoError(t, AddSensor(board, models.Sensor{Name: "bed", Params: []float64{100000, 4267, 4700, 5}}))
	assert.Equal(t, []string{"extruder", "bed"}, board.SensorNames())

	err := AddSensor(board, models.Sensor{Name: "EXTRUDER"})
	assert.ErrorIs(t, err, reader.ErrInvalid)

	err = AddSensor(board, models.Sensor{Name: "chamber", Params: []float64{-1, 4092, 4700, 5}})
	assert.ErrorIs(t, err, thermistor.ErrParams)

	assert.Len(t, board.Sensors, 2, "failed additions leave the board unchanged")
}

func TestWriteBoard(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "board.yaml")
	board := &models.Board{
		Settings: models.DefaultSettings(),
		Sensors:  []models.Sensor{{Name: "extruder", Params: []float64{100000, 4092, 4700, 5}}},
		Source:   path,
	}

	backup, err := WriteBoard(board, true)
	require.NoError(t, err)
	assert.Empty(t, backup, "nothing to back up yet")

	require.NoError(t, AddSensor(board, models.Sensor{Name: "bed", Pin: "PA1"}))
	backup, err = WriteBoard(board, true)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(backup, path+".backup_"))

	old, err := os.ReadFile(backup)
	require.NoError(t, err)
	assert.NotContains(t, string(old), "bed")

	saved, err := reader.ReadBoard(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"extruder", "bed"}, saved.SensorNames())
	assert.Equal(t, board.Sensors, saved.Sensors)
}

func TestCreateBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.toml")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	backup, err := CreateBackup(path)
	require.NoError(t, err)
	data, err := os.ReadFile(backup)
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))

	_, err = CreateBackup(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
