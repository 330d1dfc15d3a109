package compare

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tosih/thermtable/pkg/models"
	"github.com/tosih/thermtable/pkg/table"
)

func generate(t *testing.T, numTemps int, sensors ...models.Sensor) *models.TableSet {
	t.Helper()
	settings := models.DefaultSettings()
	settings.NumTemps = numTemps
	set, err := table.NewGenerator(settings, nil).Generate(context.Background(), sensors)
	require.NoError(t, err)
	return set
}

var (
	extruder = models.Sensor{Name: "extruder", Params: []float64{100000, 4092, 4700, 5.0}}
	bed      = models.Sensor{Name: "bed", Params: []float64{100000, 4267, 4700, 5.0}}
	chamber  = models.Sensor{Name: "chamber", Params: []float64{100000, 3950, 4700, 5.0}}
)

func TestTablesIdentical(t *testing.T) {
	set := generate(t, 16, extruder)
	d := Tables("EXTRUDER", set.Tables[0], set.Tables[0])

	assert.False(t, d.Changed())
	assert.Zero(t, d.MeanAbs)
	assert.Len(t, d.Delta, Buckets)
}

func TestTablesGrowingSize(t *testing.T) {
	small := generate(t, 10, extruder)
	large := generate(t, 20, extruder)

	d := Tables("EXTRUDER", small.Tables[0], large.Tables[0])
	assert.True(t, d.Changed())
	// Greedy selection only ever adds codes
	assert.Empty(t, d.Removed)
	assert.Len(t, d.Added, 10)
	assert.Positive(t, d.MeanAbs)
	assert.GreaterOrEqual(t, d.MaxIncrease, 0.0)
	assert.LessOrEqual(t, d.MaxDecrease, 0.0)

	back := Tables("EXTRUDER", large.Tables[0], small.Tables[0])
	assert.Equal(t, d.Added, back.Removed)
	assert.InDelta(t, d.MaxIncrease, -back.MaxDecrease, 1e-9)
}

func TestSets(t *testing.T) {
	before := generate(t, 12, extruder, bed)
	after := generate(t, 12, extruder, chamber, models.Sensor{Name: "broken", Params: []float64{1, 2}})

	diffs, unmatched := Sets(before, after)
	require.Len(t, diffs, 1)
	assert.Equal(t, "EXTRUDER", diffs[0].Sensor)
	assert.False(t, diffs[0].Changed())
	assert.Equal(t, []string{"BED", "BROKEN", "CHAMBER"}, unmatched)
}
