package frame

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// ErrNoData is returned by Combine when no dataset parsed successfully. The
// file is then treated as processed-empty, not as a failure.
var ErrNoData = errors.New("no datasets to combine")

// Combine merges the parsed datasets of one file into a single frame aligned on
// a common row index.
//
// The reference dataset is the one named primaryName when present, otherwise
// the dataset with the most rows. The frame has exactly as many rows as the
// reference dataset: shorter datasets are padded with nulls and longer ones
// truncated. Column names colliding across datasets are prefixed with the
// source dataset name, and columns that end up entirely null are dropped.
func Combine(datasets []Dataset, primaryName string) (*Frame, error) {
	if len(datasets) == 0 {
		return nil, ErrNoData
	}

	// Stable order regardless of how the source file enumerated its datasets.
	ordered := make([]Dataset, len(datasets))
	copy(ordered, datasets)
	slices.SortStableFunc(ordered, func(a, b Dataset) bool { return a.Name < b.Name })

	primary := 0
	found := false
	for i := range ordered {
		if primaryName != "" && ordered[i].Name == primaryName {
			primary = i
			found = true
			break
		}
	}
	if !found {
		for i := range ordered {
			if ordered[i].Rows() > ordered[primary].Rows() {
				primary = i
			}
		}
	}
	rows := ordered[primary].Rows()

	// Names appearing in more than one dataset get dataset-prefixed.
	nameCount := map[string]int{}
	for _, d := range ordered {
		seen := map[string]bool{}
		for _, c := range d.Columns {
			if !seen[c.Name] {
				nameCount[c.Name]++
				seen[c.Name] = true
			}
		}
	}

	combined := New(rows)
	appendDataset := func(d Dataset) error {
		for _, c := range d.Columns {
			col := c.resized(rows)
			if nameCount[c.Name] > 1 {
				col.Name = d.Name + "__" + c.Name
			}
			if rows > 0 && col.allNull() {
				continue
			}
			if err := combined.AddColumn(col); err != nil {
				return err
			}
		}
		return nil
	}

	if err := appendDataset(ordered[primary]); err != nil {
		return nil, err
	}
	for i := range ordered {
		if i == primary {
			continue
		}
		if err := appendDataset(ordered[i]); err != nil {
			return nil, err
		}
	}
	return combined, nil
}
