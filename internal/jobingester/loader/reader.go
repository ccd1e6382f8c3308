package loader

// RawColumn is one column of a dataset as stored in the source file, before any
// casting. Exactly one of the value slices is populated.
type RawColumn struct {
	Name    string
	Ints    []int64
	Floats  []float64
	Strings []string
}

func (c *RawColumn) Len() int {
	if c.Ints != nil {
		return len(c.Ints)
	}
	if c.Floats != nil {
		return len(c.Floats)
	}
	return len(c.Strings)
}

// RawDataset is one named dataset read from a source file.
type RawDataset struct {
	// Path of the dataset within the file, e.g. "Energy/NodePower".
	Path string
	// Columns derived from the stored shape: one column for 1-D data, one
	// column per trailing index for N-D data, a single one-row column for
	// scalars.
	Columns []RawColumn
}

// Container is an opened source file.
type Container interface {
	// DatasetPaths enumerates all datasets in the file, depth first.
	DatasetPaths() ([]string, error)
	// ReadDataset reads one dataset by path.
	ReadDataset(path string) (*RawDataset, error)
	Close() error
}

// Opener opens telemetry containers from local paths. The HDF5 implementation
// is the production one; tests substitute in-memory containers.
type Opener interface {
	Open(path string) (Container, error)
}
