package models

import "strings"

// Row is one lookup table entry. When Err is set only ADC is meaningful and the
// entry is left out of the numeric table.
type Row struct {
	ADC        int     `json:"adc"`
	TempCode   int     `json:"temp_code"`
	Temp       float64 `json:"temp"`
	Resistance float64 `json:"resistance"`
	Voltage    float64 `json:"voltage"`
	Power      float64 `json:"power"`
	Err        error   `json:"-"`
}

// Valid reports whether the row has numeric values
func (r Row) Valid() bool {
	return r.Err == nil
}

// Table is the generated lookup table for one group of identical sensors
type Table struct {
	Index    int       `json:"index"`
	Names    []string  `json:"names"`
	Params   []float64 `json:"params"`
	Model    string    `json:"model"`
	Describe string    `json:"describe"`
	Rows     []Row     `json:"rows"`
	MaxError float64   `json:"max_error"`
	Err      error     `json:"-"`
}

// Valid reports whether the table was generated
func (t *Table) Valid() bool {
	return t.Err == nil
}

// NumericRows returns the rows that go into the firmware table
func (t *Table) NumericRows() []Row {
	out := make([]Row, 0, len(t.Rows))
	for _, r := range t.Rows {
		if r.Valid() {
			out = append(out, r)
		}
	}
	return out
}

// TableSet is the result of one generation run. Tables keeps group order;
// failed groups carry Err and Index -1.
type TableSet struct {
	Settings Settings `json:"settings"`
	Tables   []*Table `json:"tables"`
}

// Valid returns the generated tables in index order
func (s *TableSet) Valid() []*Table {
	var out []*Table
	for _, t := range s.Tables {
		if t.Valid() {
			out = append(out, t)
		}
	}
	return out
}

// Failed returns the tables that could not be generated
func (s *TableSet) Failed() []*Table {
	var out []*Table
	for _, t := range s.Tables {
		if !t.Valid() {
			out = append(out, t)
		}
	}
	return out
}

// Lookup returns the generated table serving the named sensor
func (s *TableSet) Lookup(name string) (*Table, bool) {
	for _, t := range s.Tables {
		for _, n := range t.Names {
			if strings.EqualFold(n, name) {
				return t, true
			}
		}
	}
	return nil, false
}
