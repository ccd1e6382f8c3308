package loader

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mak8427/Benchmarking-suite-backend/internal/jobingester/frame"
)

func TestCastDatasetName(t *testing.T) {
	assert.Equal(t, "Energy__NodePower", DatasetName("Energy/NodePower"))
	assert.Equal(t, "NodePower", DatasetName("NodePower"))
}

func TestCastElapsedTimeIsInteger(t *testing.T) {
	ds := Cast(&RawDataset{
		Path:    "Energy/ElapsedTime",
		Columns: []RawColumn{{Name: "ElapsedTime", Ints: []int64{0, 10, 20}}},
	})

	require.Len(t, ds.Columns, 1)
	col := ds.Columns[0]
	assert.Equal(t, frame.KindInt, col.Kind)
	v, ok := col.Value(1)
	require.True(t, ok)
	assert.Equal(t, int64(10), v)
}

func TestCastNegativeElapsedTimeIsNull(t *testing.T) {
	ds := Cast(&RawDataset{
		Path:    "Energy/ElapsedTime",
		Columns: []RawColumn{{Name: "ElapsedTime", Ints: []int64{-5, 10}}},
	})

	_, ok := ds.Columns[0].Value(0)
	assert.False(t, ok, "out-of-range values must be nulled")
	_, ok = ds.Columns[0].Value(1)
	assert.True(t, ok)
}

func TestCastEpochTimeBecomesTimestamp(t *testing.T) {
	ds := Cast(&RawDataset{
		Path:    "Energy/EpochTime",
		Columns: []RawColumn{{Name: "EpochTime", Ints: []int64{1700000000, 9999999999999}}},
	})

	col := ds.Columns[0]
	require.Equal(t, frame.KindTime, col.Kind)
	v, ok := col.Value(0)
	require.True(t, ok)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), v)
	_, ok = col.Value(1)
	assert.False(t, ok, "implausible epoch values must be nulled")
}

func TestCastPowerRange(t *testing.T) {
	ds := Cast(&RawDataset{
		Path:    "Energy/NodePower",
		Columns: []RawColumn{{Name: "NodePower", Floats: []float64{250, -1, 20000}}},
	})

	col := ds.Columns[0]
	require.Equal(t, frame.KindFloat, col.Kind)
	_, ok := col.Value(0)
	assert.True(t, ok)
	_, ok = col.Value(1)
	assert.False(t, ok)
	_, ok = col.Value(2)
	assert.False(t, ok)
}

func TestCastNonFinitePassesThrough(t *testing.T) {
	ds := Cast(&RawDataset{
		Path:    "Energy/NodePower",
		Columns: []RawColumn{{Name: "NodePower", Floats: []float64{math.NaN(), math.Inf(1), 100}}},
	})

	col := ds.Columns[0]
	v, ok := col.Value(0)
	require.True(t, ok, "NaN must pass through, not be coerced or nulled")
	assert.True(t, math.IsNaN(v.(float64)))
	v, ok = col.Value(1)
	require.True(t, ok)
	assert.True(t, math.IsInf(v.(float64), 1))
}

func TestCastUnknownColumnDefaults(t *testing.T) {
	ds := Cast(&RawDataset{
		Path: "Misc/Custom",
		Columns: []RawColumn{
			{Name: "Custom", Floats: []float64{1.5}},
			{Name: "Label", Strings: []string{"a"}},
			{Name: "Count", Ints: []int64{7}},
		},
	})

	assert.Equal(t, frame.KindFloat, ds.Columns[0].Kind)
	assert.Equal(t, frame.KindString, ds.Columns[1].Kind)
	assert.Equal(t, frame.KindInt, ds.Columns[2].Kind)
}

func TestCastEmptyDataset(t *testing.T) {
	ds := Cast(&RawDataset{
		Path:    "Energy/NodePower",
		Columns: []RawColumn{{Name: "NodePower", Floats: []float64{}}},
	})
	assert.Equal(t, 0, ds.Rows())
}
