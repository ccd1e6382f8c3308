package loader

import (
	"fmt"
	"path"

	"github.com/pkg/errors"
	"gonum.org/v1/hdf5"
)

// H5Opener opens HDF5 telemetry containers.
type H5Opener struct{}

func NewH5Opener() *H5Opener {
	return &H5Opener{}
}

func (o *H5Opener) Open(filePath string) (Container, error) {
	f, err := hdf5.OpenFile(filePath, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", filePath)
	}
	return &h5Container{file: f}, nil
}

type h5Container struct {
	file *hdf5.File
}

func (c *h5Container) DatasetPaths() ([]string, error) {
	var paths []string
	if err := collectDatasets(&c.file.CommonFG, "", &paths); err != nil {
		return nil, err
	}
	return paths, nil
}

// collectDatasets walks groups depth first. Objects that cannot be opened as a
// group are taken to be datasets.
func collectDatasets(fg *hdf5.CommonFG, prefix string, out *[]string) error {
	n, err := fg.NumObjects()
	if err != nil {
		return errors.Wrap(err, "enumerating objects")
	}
	for i := uint(0); i < n; i++ {
		name, err := fg.ObjectNameByIndex(i)
		if err != nil {
			return errors.Wrap(err, "reading object name")
		}
		full := name
		if prefix != "" {
			full = prefix + "/" + name
		}
		if sub, err := fg.OpenGroup(name); err == nil {
			err = collectDatasets(&sub.CommonFG, full, out)
			_ = sub.Close()
			if err != nil {
				return err
			}
			continue
		}
		*out = append(*out, full)
	}
	return nil
}

func (c *h5Container) ReadDataset(dsPath string) (*RawDataset, error) {
	ds, err := c.file.OpenDataset(dsPath)
	if err != nil {
		return nil, errors.Wrapf(err, "opening dataset %s", dsPath)
	}
	defer ds.Close()

	space := ds.Space()
	defer space.Close()
	dims, _, err := space.SimpleExtentDims()
	if err != nil {
		return nil, errors.Wrapf(err, "reading extent of %s", dsPath)
	}

	dtype, err := ds.Datatype()
	if err != nil {
		return nil, errors.Wrapf(err, "reading datatype of %s", dsPath)
	}
	defer dtype.Close()

	rows, width := shape(dims)
	n := rows * width
	base := path.Base(dsPath)

	var columns []RawColumn
	switch dtype.Class() {
	case hdf5.T_INTEGER:
		buf := make([]int64, n)
		if n > 0 {
			if err := ds.Read(&buf); err != nil {
				return nil, errors.Wrapf(err, "reading %s", dsPath)
			}
		}
		for w := 0; w < width; w++ {
			col := RawColumn{Name: columnName(base, width, w), Ints: make([]int64, rows)}
			for r := 0; r < rows; r++ {
				col.Ints[r] = buf[r*width+w]
			}
			columns = append(columns, col)
		}
	case hdf5.T_FLOAT:
		buf := make([]float64, n)
		if n > 0 {
			if err := ds.Read(&buf); err != nil {
				return nil, errors.Wrapf(err, "reading %s", dsPath)
			}
		}
		for w := 0; w < width; w++ {
			col := RawColumn{Name: columnName(base, width, w), Floats: make([]float64, rows)}
			for r := 0; r < rows; r++ {
				col.Floats[r] = buf[r*width+w]
			}
			columns = append(columns, col)
		}
	case hdf5.T_STRING:
		if width != 1 {
			return nil, errors.Errorf("dataset %s: multi-dimensional string data is not supported", dsPath)
		}
		buf := make([]string, n)
		if n > 0 {
			if err := ds.Read(&buf); err != nil {
				return nil, errors.Wrapf(err, "reading %s", dsPath)
			}
		}
		columns = append(columns, RawColumn{Name: base, Strings: buf})
	default:
		return nil, errors.Errorf("dataset %s: unsupported datatype class %v", dsPath, dtype.Class())
	}

	return &RawDataset{Path: dsPath, Columns: columns}, nil
}

func (c *h5Container) Close() error {
	return c.file.Close()
}

// shape collapses an HDF5 extent into rows and a flattened trailing width.
// A scalar extent is one row of one value.
func shape(dims []uint) (rows, width int) {
	if len(dims) == 0 {
		return 1, 1
	}
	rows = int(dims[0])
	width = 1
	for _, d := range dims[1:] {
		width *= int(d)
	}
	return rows, width
}

func columnName(base string, width, w int) string {
	if width == 1 {
		return base
	}
	return fmt.Sprintf("%s_%d", base, w)
}
