package energy

import (
	"context"
	"math"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/mak8427/Benchmarking-suite-backend/internal/jobingester/frame"
	"github.com/mak8427/Benchmarking-suite-backend/internal/jobingester/model"
)

const joulesPerKWh = 3.6e6

// Engine derives energy metrics from a combined frame and optionally prices
// them. A nil pricer leaves cost absent.
type Engine struct {
	pricer Pricer
}

func NewEngine(pricer Pricer) *Engine {
	return &Engine{pricer: pricer}
}

// Compute derives the scalar energy summary for one frame and attaches the
// per-row derived series (energy_increment_j, energy_used_j and, when priced,
// cumulative_cost_eur) to it.
//
// Integration rule: trapezoidal over rows in frame order. Rows missing either
// the time or the power sample, and rows with a non-finite power sample, do
// not contribute; a negative time step contributes zero. Duration is
// max(time)-min(time). Mean power is energy/duration and is reported as
// undefined when the duration is zero, never as NaN.
//
// Degenerate frames (no time column, no power signal, zero rows) produce a
// summary with undefined metrics; they are never an error so that a partial
// file still reaches the store.
func (e *Engine) Compute(ctx context.Context, f *frame.Frame) *model.EnergySummary {
	summary := &model.EnergySummary{}
	if f == nil || f.Rows() == 0 {
		return summary
	}

	times, haveTimes := timeSeconds(f)
	if !haveTimes {
		log.Warn("Frame has no elapsed-time column, energy metrics are undefined")
		return summary
	}
	power, havePower := powerSeries(f, times)
	if !havePower {
		log.Warn("Frame has no power signal, energy metrics are undefined")
		return summary
	}

	rows := f.Rows()
	increments := make([]float64, rows)
	incValid := make([]bool, rows)
	cumulative := make([]float64, rows)

	var (
		total      float64
		minT, maxT float64
		first      = true
		prev       = -1
	)
	for i := 0; i < rows; i++ {
		t, tok := times[i].value()
		p, pok := power[i].value()
		if !tok || !pok || !isFinite(p) {
			continue
		}
		if first {
			minT, maxT = t, t
			first = false
		} else {
			minT = math.Min(minT, t)
			maxT = math.Max(maxT, t)
		}
		increments[i] = 0
		if prev >= 0 {
			tPrev, _ := times[prev].value()
			pPrev, _ := power[prev].value()
			if dt := t - tPrev; dt > 0 {
				increments[i] = (p + pPrev) / 2 * dt
			}
		}
		total += increments[i]
		cumulative[i] = total
		incValid[i] = true

		summary.SampleCount++
		if p > summary.PeakPowerWatts || summary.SampleCount == 1 {
			summary.PeakPowerWatts = p
			summary.PeakPowerAtSeconds = t
		}
		prev = i
	}

	if summary.SampleCount == 0 {
		return summary
	}

	summary.EnergyJoules = total
	summary.DurationSeconds = maxT - minT
	if summary.DurationSeconds > 0 {
		summary.MeanPowerWatts = total / summary.DurationSeconds
		summary.MeanPowerDefined = true
	}
	summary.EnergyDelayProduct = total * summary.DurationSeconds
	summary.Appliance = closestAppliance(total)

	attach(f, "energy_increment_j", increments, incValid)
	attach(f, "energy_used_j", cumulative, incValid)

	if e.pricer != nil {
		e.price(ctx, f, cumulative, incValid, summary)
	}
	return summary
}

// price attaches the cumulative cost series and the total cost. Pricing
// failures degrade to an unpriced summary.
func (e *Engine) price(ctx context.Context, f *frame.Frame, cumulative []float64, valid []bool, summary *model.EnergySummary) {
	epochs, ok := epochTimes(f)
	if !ok {
		log.Warn("Frame has no epoch-time column, energy cost is undefined")
		return
	}
	from, to, ok := epochWindow(epochs, valid)
	if !ok {
		log.Warn("Frame has no usable epoch timestamps, energy cost is undefined")
		return
	}
	series, err := e.pricer.Series(ctx, from, to)
	if err != nil {
		log.WithError(err).Warn("Price series unavailable, energy cost is undefined")
		return
	}

	rows := f.Rows()
	costs := make([]float64, rows)
	costValid := make([]bool, rows)
	var lastCost float64
	var priced bool
	for i := 0; i < rows; i++ {
		if !valid[i] {
			continue
		}
		at, ok := epochs[i]
		if !ok {
			continue
		}
		costs[i] = cumulative[i] / joulesPerKWh * series.RateAt(at)
		costValid[i] = true
		lastCost = costs[i]
		priced = true
	}
	if !priced {
		return
	}
	attach(f, "cumulative_cost_eur", costs, costValid)
	summary.CostEUR = &lastCost
}

type sample struct {
	v  float64
	ok bool
}

func (s sample) value() (float64, bool) {
	return s.v, s.ok
}

// timeSeconds extracts the elapsed-time column as seconds per row.
func timeSeconds(f *frame.Frame) ([]sample, bool) {
	col, ok := findColumn(f, "ElapsedTime")
	if !ok {
		return nil, false
	}
	out := make([]sample, f.Rows())
	for i := range out {
		v, valid := col.Value(i)
		if !valid {
			continue
		}
		switch col.Kind {
		case frame.KindInt:
			out[i] = sample{float64(v.(int64)), true}
		case frame.KindFloat:
			out[i] = sample{v.(float64), true}
		}
	}
	return out, true
}

// powerSeries extracts the power column in watts. When no instantaneous power
// column exists a cumulative energy column is differentiated instead.
func powerSeries(f *frame.Frame, times []sample) ([]sample, bool) {
	for _, name := range []string{"NodePower", "CurrPower"} {
		if col, ok := findColumn(f, name); ok && col.Kind == frame.KindFloat {
			out := make([]sample, f.Rows())
			for i := range out {
				if v, valid := col.Value(i); valid {
					out[i] = sample{v.(float64), true}
				}
			}
			return out, true
		}
	}
	col, ok := findColumn(f, "Energy")
	if !ok || col.Kind != frame.KindFloat {
		return nil, false
	}
	// Power from a cumulative meter: increment over time step. Undefined when
	// the step is not positive.
	out := make([]sample, f.Rows())
	prev := -1
	for i := range out {
		v, valid := col.Value(i)
		if !valid {
			continue
		}
		e := v.(float64)
		if prev >= 0 {
			ePrev, _ := col.Value(prev)
			t, tok := times[i].value()
			tPrev, pok := times[prev].value()
			if tok && pok && t > tPrev {
				out[i] = sample{(e - ePrev.(float64)) / (t - tPrev), true}
			}
		}
		prev = i
	}
	return out, true
}

// epochTimes maps each row to its wallclock timestamp, preferring the energy
// group's epoch column.
func epochTimes(f *frame.Frame) (map[int]time.Time, bool) {
	col, ok := f.Column("Energy__EpochTime")
	if !ok {
		col, ok = findColumn(f, "EpochTime")
	}
	if !ok || col.Kind != frame.KindTime {
		return nil, false
	}
	out := map[int]time.Time{}
	for i := 0; i < f.Rows(); i++ {
		if v, valid := col.Value(i); valid {
			out[i] = v.(time.Time)
		}
	}
	return out, true
}

func epochWindow(epochs map[int]time.Time, valid []bool) (time.Time, time.Time, bool) {
	var from, to time.Time
	found := false
	for i, t := range epochs {
		if i < len(valid) && !valid[i] {
			continue
		}
		if !found || t.Before(from) {
			from = t
		}
		if !found || t.After(to) {
			to = t
		}
		found = true
	}
	return from, to, found
}

// findColumn returns the column named exactly name, or the first one carrying
// it as a dataset-prefixed suffix.
func findColumn(f *frame.Frame, name string) (*frame.Column, bool) {
	if col, ok := f.Column(name); ok {
		return col, true
	}
	for _, col := range f.Columns() {
		if strings.HasSuffix(col.Name, "__"+name) {
			c := col
			return &c, true
		}
	}
	return nil, false
}

func attach(f *frame.Frame, name string, values []float64, valid []bool) {
	if err := f.AddColumn(frame.NewFloatColumn(name, values, valid)); err != nil {
		log.WithError(err).Warnf("Could not attach derived column %s", name)
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
