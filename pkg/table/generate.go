package table

import (
	"context"
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"golang.org/x/sync/errgroup"

	"github.com/tosih/thermtable/pkg/models"
	"github.com/tosih/thermtable/pkg/sampler"
	"github.com/tosih/thermtable/pkg/thermistor"
)

// GroupError reports a table that could not be generated
type GroupError struct {
	Names []string
	Err   error
}

func (e *GroupError) Error() string {
	return fmt.Sprintf("%s: %v", strings.Join(e.Names, ", "), e.Err)
}

func (e *GroupError) Unwrap() error {
	return e.Err
}

// Generator turns board sensors into lookup tables
type Generator struct {
	settings models.Settings
	logger   *pterm.Logger
}

// NewGenerator creates a generator. A nil logger discards diagnostics.
func NewGenerator(settings models.Settings, logger *pterm.Logger) *Generator {
	if logger == nil {
		logger = pterm.DefaultLogger.WithLevel(pterm.LogLevelDisabled)
	}
	return &Generator{settings: settings, logger: logger}
}

// Environment returns the model settings derived from the board settings
func (g *Generator) Environment() thermistor.Environment {
	return thermistor.Environment{
		MaxADC: g.settings.MaxADC,
		T0:     g.settings.T0,
		R1:     g.settings.R1,
		Vref:   g.settings.Vref,
	}
}

// Curve evaluates the dense model curve for a parameter tuple
func (g *Generator) Curve(params []float64) (sampler.Curve, error) {
	model, err := thermistor.New(params, g.Environment())
	if err != nil {
		return nil, err
	}
	return sampler.FromModel(model), nil
}

// Generate builds one table per sensor group. Groups are independent and run
// concurrently; a failing group is reported in its Table.Err and does not
// receive an index. The returned error is only set when ctx is cancelled.
func (g *Generator) Generate(ctx context.Context, sensors []models.Sensor) (*models.TableSet, error) {
	groups := GroupSensors(sensors)
	tables := make([]*models.Table, len(groups))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(max(g.settings.Workers, 1))
	for i, group := range groups {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			tables[i] = g.Table(group)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	index := 0
	for _, t := range tables {
		if !t.Valid() {
			t.Index = -1
			g.logger.Warn("table skipped", g.logger.Args("sensors", strings.Join(t.Names, ","), "error", t.Err))
			continue
		}
		t.Index = index
		index++
	}

	return &models.TableSet{Settings: g.settings, Tables: tables}, nil
}

// Table samples the curve of one group and computes its rows
func (g *Generator) Table(group Group) *models.Table {
	t := &models.Table{
		Names:  group.Names,
		Params: group.Params,
	}
	fail := func(err error) *models.Table {
		t.Err = &GroupError{Names: group.Names, Err: err}
		return t
	}

	model, err := thermistor.New(group.Params, g.Environment())
	if err != nil {
		return fail(err)
	}
	t.Model = model.Kind().String()
	t.Describe = model.Describe()

	curve := sampler.FromModel(model)
	samples, err := sampler.Sample(curve, g.settings.NumTemps)
	if err != nil {
		return fail(err)
	}
	if t.MaxError, err = sampler.MaxError(curve, samples); err != nil {
		return fail(err)
	}

	vref := model.ReferenceVoltage()
	t.Rows = make([]models.Row, 0, len(samples))
	for _, adc := range samples {
		row := ComputeRow(model, adc, vref, g.settings.MaxADC)
		if !row.Valid() {
			g.logger.Warn("row not solvable", g.logger.Args("sensors", strings.Join(group.Names, ","), "adc", adc, "error", row.Err))
		}
		t.Rows = append(t.Rows, row)
	}

	g.logger.Debug("table generated", g.logger.Args(
		"sensors", strings.Join(group.Names, ","),
		"model", t.Model,
		"curve_points", len(curve),
		"rows", len(t.Rows),
		"max_error", fmt.Sprintf("%.3f", t.MaxError),
	))
	return t
}
