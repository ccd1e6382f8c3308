package energy

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mak8427/Benchmarking-suite-backend/internal/jobingester/frame"
)

func buildFrame(t *testing.T, columns ...frame.Column) *frame.Frame {
	t.Helper()
	require.NotEmpty(t, columns)
	f := frame.New(columns[0].Len())
	for _, col := range columns {
		require.NoError(t, f.AddColumn(col))
	}
	return f
}

func TestComputeConstantPower(t *testing.T) {
	// 100 W held for 60 s must integrate to exactly 6000 J under the
	// trapezoidal rule.
	f := buildFrame(t,
		frame.NewIntColumn("ElapsedTime", []int64{0, 15, 30, 45, 60}, nil),
		frame.NewFloatColumn("NodePower", []float64{100, 100, 100, 100, 100}, nil),
	)

	summary := NewEngine(nil).Compute(context.Background(), f)
	assert.InDelta(t, 6000, summary.EnergyJoules, 1e-9)
	assert.InDelta(t, 60, summary.DurationSeconds, 1e-9)
	require.True(t, summary.MeanPowerDefined)
	assert.InDelta(t, 100, summary.MeanPowerWatts, 1e-9)
	assert.Equal(t, 5, summary.SampleCount)
	assert.InDelta(t, 6000*60, summary.EnergyDelayProduct, 1e-6)
	assert.Nil(t, summary.CostEUR, "cost must be absent without a pricer, not zero")

	col, ok := f.Column("energy_used_j")
	require.True(t, ok, "cumulative energy series must be attached")
	v, valid := col.Value(4)
	require.True(t, valid)
	assert.InDelta(t, 6000, v.(float64), 1e-9)
}

func TestComputeZeroDurationMeanPowerUndefined(t *testing.T) {
	f := buildFrame(t,
		frame.NewIntColumn("ElapsedTime", []int64{10}, nil),
		frame.NewFloatColumn("NodePower", []float64{250}, nil),
	)

	summary := NewEngine(nil).Compute(context.Background(), f)
	assert.False(t, summary.MeanPowerDefined)
	assert.Zero(t, summary.MeanPowerWatts)
	assert.Equal(t, 1, summary.SampleCount)
}

func TestComputePeakPower(t *testing.T) {
	f := buildFrame(t,
		frame.NewIntColumn("ElapsedTime", []int64{0, 10, 20}, nil),
		frame.NewFloatColumn("NodePower", []float64{100, 300, 200}, nil),
	)

	summary := NewEngine(nil).Compute(context.Background(), f)
	assert.InDelta(t, 300, summary.PeakPowerWatts, 1e-9)
	assert.InDelta(t, 10, summary.PeakPowerAtSeconds, 1e-9)
}

func TestComputePrefixedColumns(t *testing.T) {
	f := buildFrame(t,
		frame.NewIntColumn("Energy__ElapsedTime", []int64{0, 60}, nil),
		frame.NewFloatColumn("Energy__NodePower", []float64{100, 100}, nil),
	)

	summary := NewEngine(nil).Compute(context.Background(), f)
	assert.InDelta(t, 6000, summary.EnergyJoules, 1e-9)
}

func TestComputeCumulativeEnergyFallback(t *testing.T) {
	// No instantaneous power, only a cumulative meter: power comes from the
	// increments.
	f := buildFrame(t,
		frame.NewIntColumn("ElapsedTime", []int64{0, 1, 2}, nil),
		frame.NewFloatColumn("Energy", []float64{0, 100, 300}, nil),
	)

	summary := NewEngine(nil).Compute(context.Background(), f)
	// Derived power is 100 W then 200 W; the first row has no increment and
	// does not contribute.
	assert.InDelta(t, 150, summary.EnergyJoules, 1e-9)
	assert.InDelta(t, 200, summary.PeakPowerWatts, 1e-9)
}

func TestComputeDegenerateFrames(t *testing.T) {
	engine := NewEngine(nil)

	summary := engine.Compute(context.Background(), nil)
	assert.Zero(t, summary.SampleCount)

	noPower := buildFrame(t, frame.NewIntColumn("ElapsedTime", []int64{0, 10}, nil))
	summary = engine.Compute(context.Background(), noPower)
	assert.Zero(t, summary.SampleCount)
	assert.False(t, summary.MeanPowerDefined)

	noTime := buildFrame(t, frame.NewFloatColumn("NodePower", []float64{100}, nil))
	summary = engine.Compute(context.Background(), noTime)
	assert.Zero(t, summary.SampleCount)
}

func TestComputeFlatPricing(t *testing.T) {
	base := time.Unix(1700000000, 0).UTC()
	f := buildFrame(t,
		frame.NewIntColumn("ElapsedTime", []int64{0, 30, 60}, nil),
		frame.NewFloatColumn("NodePower", []float64{100, 100, 100}, nil),
		frame.NewTimeColumn("EpochTime", []time.Time{base, base.Add(30 * time.Second), base.Add(60 * time.Second)}, nil),
	)

	summary := NewEngine(&FlatPricer{RateEURPerKWh: 0.36}).Compute(context.Background(), f)
	require.NotNil(t, summary.CostEUR)
	assert.InDelta(t, 6000.0/3.6e6*0.36, *summary.CostEUR, 1e-12)

	_, ok := f.Column("cumulative_cost_eur")
	assert.True(t, ok)
}

func TestComputePricingWithoutEpochTimeDegrades(t *testing.T) {
	f := buildFrame(t,
		frame.NewIntColumn("ElapsedTime", []int64{0, 60}, nil),
		frame.NewFloatColumn("NodePower", []float64{100, 100}, nil),
	)

	summary := NewEngine(&FlatPricer{RateEURPerKWh: 0.36}).Compute(context.Background(), f)
	assert.Nil(t, summary.CostEUR)
	assert.InDelta(t, 6000, summary.EnergyJoules, 1e-9, "metrics survive a pricing failure")
}

func TestClosestAppliance(t *testing.T) {
	assert.Empty(t, closestAppliance(0))
	// 600 kJ runs a 1000 W microwave for exactly 10 minutes.
	assert.Equal(t, "microwave oven for 10.0 min", closestAppliance(600000))
}
