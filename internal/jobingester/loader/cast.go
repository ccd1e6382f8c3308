package loader

import (
	"math"
	"strings"
	"time"

	"github.com/mak8427/Benchmarking-suite-backend/internal/jobingester/frame"
)

// castRule decides the canonical kind of a column and the range of plausible
// values for it. Finite values outside the range are nulled rather than
// clamped; non-finite samples pass through untouched so bad sensor readings
// stay visible downstream.
type castRule struct {
	kind     frame.Kind
	min, max float64
	hasRange bool
}

const maxEpochSeconds = 4102444800 // 2100-01-01

// Rules keyed by column name suffix, mirroring the SLURM energy accounting
// field names.
var castRules = []struct {
	suffix string
	rule   castRule
}{
	{"ElapsedTime", castRule{kind: frame.KindInt, min: 0, max: float64(int64(1) << 62), hasRange: true}},
	{"EpochTime", castRule{kind: frame.KindTime, min: 0, max: maxEpochSeconds, hasRange: true}},
	{"CPUFrequency", castRule{kind: frame.KindInt, min: 0, max: 10000, hasRange: true}},
	{"CPUUtilization", castRule{kind: frame.KindFloat, min: 0, max: 100, hasRange: true}},
	{"CPUTime", castRule{kind: frame.KindFloat, min: 0, max: math.MaxFloat64, hasRange: true}},
	{"NodePower", castRule{kind: frame.KindFloat, min: 0, max: 10000, hasRange: true}},
	{"CurrPower", castRule{kind: frame.KindFloat, min: 0, max: 10000, hasRange: true}},
	{"RSS", castRule{kind: frame.KindInt, min: 0, max: math.MaxFloat64, hasRange: true}},
	{"VMSize", castRule{kind: frame.KindInt, min: 0, max: math.MaxFloat64, hasRange: true}},
	{"Pages", castRule{kind: frame.KindInt, min: 0, max: math.MaxFloat64, hasRange: true}},
	{"ReadMB", castRule{kind: frame.KindFloat, min: 0, max: math.MaxFloat64, hasRange: true}},
	{"WriteMB", castRule{kind: frame.KindFloat, min: 0, max: math.MaxFloat64, hasRange: true}},
}

func findRule(name string) (castRule, bool) {
	for _, r := range castRules {
		if strings.HasSuffix(name, r.suffix) {
			return r.rule, true
		}
	}
	if strings.HasPrefix(name, "Energy") {
		return castRule{kind: frame.KindFloat, min: 0, max: math.MaxFloat64, hasRange: true}, true
	}
	return castRule{}, false
}

// Cast converts one raw dataset into canonically typed columns. The dataset
// name is its in-file path flattened with "__" so it survives as a column
// prefix after combining.
func Cast(raw *RawDataset) frame.Dataset {
	ds := frame.Dataset{Name: DatasetName(raw.Path)}
	for _, col := range raw.Columns {
		ds.Columns = append(ds.Columns, castColumn(col))
	}
	return ds
}

func DatasetName(path string) string {
	return strings.ReplaceAll(path, "/", "__")
}

func castColumn(col RawColumn) frame.Column {
	rule, ok := findRule(col.Name)

	switch {
	case col.Strings != nil:
		return frame.NewStringColumn(col.Name, col.Strings, nil)

	case col.Ints != nil:
		if !ok {
			return frame.NewIntColumn(col.Name, col.Ints, nil)
		}
		switch rule.kind {
		case frame.KindTime:
			return intsToTimes(col.Name, col.Ints, rule)
		case frame.KindFloat:
			floats := make([]float64, len(col.Ints))
			for i, v := range col.Ints {
				floats[i] = float64(v)
			}
			return floatsToFloats(col.Name, floats, rule)
		default:
			valid := make([]bool, len(col.Ints))
			for i, v := range col.Ints {
				valid[i] = !rule.hasRange || (float64(v) >= rule.min && float64(v) <= rule.max)
			}
			return frame.NewIntColumn(col.Name, col.Ints, valid)
		}

	default:
		if ok && rule.kind == frame.KindTime {
			return floatsToTimes(col.Name, col.Floats, rule)
		}
		// Float storage stays float regardless of the rule's kind so that
		// non-finite samples are preserved rather than coerced.
		if !ok {
			rule = castRule{kind: frame.KindFloat}
		}
		return floatsToFloats(col.Name, col.Floats, rule)
	}
}

func floatsToFloats(name string, values []float64, rule castRule) frame.Column {
	valid := make([]bool, len(values))
	for i, v := range values {
		if !isFinite(v) {
			valid[i] = true
			continue
		}
		valid[i] = !rule.hasRange || (v >= rule.min && v <= rule.max)
	}
	return frame.NewFloatColumn(name, values, valid)
}

func intsToTimes(name string, values []int64, rule castRule) frame.Column {
	times := make([]time.Time, len(values))
	valid := make([]bool, len(values))
	for i, v := range values {
		if rule.hasRange && (float64(v) < rule.min || float64(v) > rule.max) {
			continue
		}
		times[i] = time.Unix(v, 0).UTC()
		valid[i] = true
	}
	return frame.NewTimeColumn(name, times, valid)
}

func floatsToTimes(name string, values []float64, rule castRule) frame.Column {
	times := make([]time.Time, len(values))
	valid := make([]bool, len(values))
	for i, v := range values {
		if !isFinite(v) || (rule.hasRange && (v < rule.min || v > rule.max)) {
			continue
		}
		sec, frac := math.Modf(v)
		times[i] = time.Unix(int64(sec), int64(frac*float64(time.Second))).UTC()
		valid[i] = true
	}
	return frame.NewTimeColumn(name, times, valid)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
