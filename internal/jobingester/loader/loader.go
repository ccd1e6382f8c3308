package loader

import (
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/mak8427/Benchmarking-suite-backend/internal/jobingester/frame"
)

// Result holds the datasets of one file that cast successfully, together with
// the skip reason of every dataset that did not.
type Result struct {
	Datasets []frame.Dataset
	Skipped  map[string]string
}

type Loader struct {
	opener Opener
}

func New(opener Opener) *Loader {
	return &Loader{opener: opener}
}

// Load opens one telemetry file and casts its datasets. A dataset that cannot
// be read or that carries no usable signal is skipped with a reason; only a
// file that cannot be opened at all, or one containing no datasets, is an
// error.
func (l *Loader) Load(path string) (*Result, error) {
	container, err := l.opener.Open(path)
	if err != nil {
		return nil, errors.WithMessagef(err, "cannot open %s", path)
	}
	defer func() {
		if err := container.Close(); err != nil {
			log.WithError(err).Warnf("Error closing %s", path)
		}
	}()

	paths, err := container.DatasetPaths()
	if err != nil {
		return nil, errors.WithMessagef(err, "cannot enumerate datasets in %s", path)
	}
	if len(paths) == 0 {
		return nil, errors.Errorf("%s contains no datasets", path)
	}

	result := &Result{Skipped: map[string]string{}}
	for _, dsPath := range paths {
		raw, err := container.ReadDataset(dsPath)
		if err != nil {
			log.WithError(err).WithField("dataset", dsPath).Debug("Skipping unreadable dataset")
			result.Skipped[DatasetName(dsPath)] = "read: " + err.Error()
			continue
		}
		ds := Cast(raw)
		if reason := skipReason(&ds); reason != "" {
			result.Skipped[ds.Name] = reason
			continue
		}
		result.Datasets = append(result.Datasets, ds)
	}
	return result, nil
}

// skipReason inspects a cast dataset for signals that make it useless: a power
// series that is identically zero carries no energy information.
func skipReason(ds *frame.Dataset) string {
	for i := range ds.Columns {
		col := &ds.Columns[i]
		if col.Kind != frame.KindFloat || !isPowerColumn(col.Name) || col.Len() == 0 {
			continue
		}
		allZero := true
		for r := 0; r < col.Len(); r++ {
			if v, ok := col.Value(r); ok && v.(float64) != 0 {
				allZero = false
				break
			}
		}
		if allZero {
			return "zero-power"
		}
	}
	return ""
}

func isPowerColumn(name string) bool {
	return strings.HasSuffix(name, "NodePower") || strings.HasSuffix(name, "CurrPower")
}
