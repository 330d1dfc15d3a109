package reader

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"github.com/tosih/thermtable/pkg/models"
)

// Format is a board file encoding
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

var (
	// ErrFormat is returned for files that are neither YAML nor TOML
	ErrFormat = errors.New("unsupported board file format")
	// ErrInvalid is returned when a board file parses but cannot be used
	ErrInvalid = errors.New("invalid board configuration")
)

// Sensor names become part of C identifiers
var validName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type rawSensor struct {
	Name   string `yaml:"name" toml:"name"`
	Type   string `yaml:"type,omitempty" toml:"type,omitempty"`
	Pin    string `yaml:"pin,omitempty" toml:"pin,omitempty"`
	Params []any  `yaml:"params,omitempty" toml:"params,omitempty"`
}

type rawBoard struct {
	Settings models.Settings `yaml:"settings" toml:"settings"`
	Sensors  []rawSensor     `yaml:"sensors" toml:"sensors"`
}

// FormatOf picks the encoding from the file extension
func FormatOf(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrFormat, filename)
	}
}

// ReadBoard reads and validates a board configuration file
func ReadBoard(filename string) (*models.Board, error) {
	format, err := FormatOf(filename)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	board, err := ParseBoard(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	board.Source = filename
	return board, nil
}

// ParseBoard decodes a board configuration. Missing settings take their defaults.
func ParseBoard(data []byte, format Format) (*models.Board, error) {
	raw := rawBoard{Settings: models.DefaultSettings()}

	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	case FormatTOML:
		if _, err := toml.Decode(string(data), &raw); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrFormat, format)
	}

	board := &models.Board{Settings: raw.Settings}
	for i, rs := range raw.Sensors {
		params, err := ParseParams(rs.Params)
		if err != nil {
			return nil, fmt.Errorf("sensor %d (%s): %w", i, rs.Name, err)
		}
		board.Sensors = append(board.Sensors, models.Sensor{
			Name:   rs.Name,
			Type:   rs.Type,
			Pin:    rs.Pin,
			Params: params,
		})
	}

	if err := Validate(board); err != nil {
		return nil, err
	}
	return board, nil
}

// ParseParams converts numbers and numeric strings into a parameter tuple
func ParseParams(values []any) ([]float64, error) {
	if len(values) == 0 {
		return nil, nil
	}

	params := make([]float64, len(values))
	for i, v := range values {
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return nil, fmt.Errorf("%w: parameter %d: %v", ErrInvalid, i, err)
		}
		params[i] = f
	}
	return params, nil
}

// Validate checks settings and sensor names
func Validate(b *models.Board) error {
	s := b.Settings
	if s.MaxADC <= 0 {
		return fmt.Errorf("%w: max_adc must be positive, got %d", ErrInvalid, s.MaxADC)
	}
	if s.NumTemps < 0 {
		return fmt.Errorf("%w: num_temps must not be negative, got %d", ErrInvalid, s.NumTemps)
	}
	if s.R1 < 0 {
		return fmt.Errorf("%w: r1 must not be negative, got %g", ErrInvalid, s.R1)
	}

	seen := make(map[string]bool)
	for _, sensor := range b.Sensors {
		if !validName.MatchString(sensor.Name) {
			return fmt.Errorf("%w: sensor name %q is not a C identifier", ErrInvalid, sensor.Name)
		}
		key := strings.ToUpper(sensor.Name)
		if seen[key] {
			return fmt.Errorf("%w: duplicate sensor %q", ErrInvalid, sensor.Name)
		}
		seen[key] = true
	}
	return nil
}

// MarshalBoard encodes a board in the given format
func MarshalBoard(b *models.Board, format Format) ([]byte, error) {
	raw := rawBoard{Settings: b.Settings}
	for _, s := range b.Sensors {
		rs := rawSensor{Name: s.Name, Type: s.Type, Pin: s.Pin}
		for _, p := range s.Params {
			rs.Params = append(rs.Params, p)
		}
		raw.Sensors = append(raw.Sensors, rs)
	}

	switch format {
	case FormatYAML:
		return yaml.Marshal(&raw)
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(raw); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrFormat, format)
	}
}
