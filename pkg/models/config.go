package models

// Settings holds the board-wide table generation parameters
type Settings struct {
	NumTemps int     `yaml:"num_temps" toml:"num_temps" json:"num_temps"`
	MaxADC   int     `yaml:"max_adc" toml:"max_adc" json:"max_adc"`
	T0       float64 `yaml:"t0" toml:"t0" json:"t0"`
	R1       float64 `yaml:"r1" toml:"r1" json:"r1"`
	Vref     float64 `yaml:"vref,omitempty" toml:"vref,omitempty" json:"vref,omitempty"`
	Folder   string  `yaml:"folder" toml:"folder" json:"folder"`
	Workers  int     `yaml:"workers,omitempty" toml:"workers,omitempty" json:"workers,omitempty"`
}

// Defaults for a 10-bit AVR board with 100k thermistors
const (
	DefaultNumTemps = 25
	DefaultMaxADC   = 1023
	DefaultT0       = 25.0
	DefaultVref     = 5.0
	DefaultFolder   = "."
	DefaultWorkers  = 4
	HeaderFilename  = "thermistortable.h"
)

// DefaultSettings returns the settings used when the board file omits them
func DefaultSettings() Settings {
	return Settings{
		NumTemps: DefaultNumTemps,
		MaxADC:   DefaultMaxADC,
		T0:       DefaultT0,
		Vref:     DefaultVref,
		Folder:   DefaultFolder,
		Workers:  DefaultWorkers,
	}
}

// Sensor is one temperature input of a board. Params is empty for inputs that
// do not need a lookup table (thermocouples, digital sensors).
type Sensor struct {
	Name   string    `yaml:"name" toml:"name" json:"name"`
	Type   string    `yaml:"type,omitempty" toml:"type,omitempty" json:"type,omitempty"`
	Pin    string    `yaml:"pin,omitempty" toml:"pin,omitempty" json:"pin,omitempty"`
	Params []float64 `yaml:"-" toml:"-" json:"params,omitempty"`
}

// Board is a parsed board configuration
type Board struct {
	Settings Settings
	Sensors  []Sensor
	Source   string
}

// Thermistors returns the sensors that carry thermistor parameters
func (b *Board) Thermistors() []Sensor {
	var out []Sensor
	for _, s := range b.Sensors {
		if len(s.Params) > 0 {
			out = append(out, s)
		}
	}
	return out
}

// Sensor returns the sensor with the given name
func (b *Board) Sensor(name string) (Sensor, bool) {
	for _, s := range b.Sensors {
		if s.Name == name {
			return s, true
		}
	}
	return Sensor{}, false
}

// SensorNames lists all sensor names in file order
func (b *Board) SensorNames() []string {
	names := make([]string, len(b.Sensors))
	for i, s := range b.Sensors {
		names[i] = s.Name
	}
	return names
}
