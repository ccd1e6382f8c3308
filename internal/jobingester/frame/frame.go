package frame

import (
	"time"

	"github.com/pkg/errors"
)

// Kind identifies the canonical type of a column. It is decided once when the
// source dataset is cast and downstream stages dispatch on it rather than
// coercing values implicitly.
type Kind int

const (
	KindInt Kind = iota
	KindFloat
	KindTime
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindTime:
		return "timestamp"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// Column is one named, typed column. Exactly one of the value slices is
// populated, selected by Kind, and Valid marks which rows hold a value.
type Column struct {
	Name    string
	Kind    Kind
	Ints    []int64
	Floats  []float64
	Times   []time.Time
	Strings []string
	Valid   []bool
}

func NewIntColumn(name string, values []int64, valid []bool) Column {
	return Column{Name: name, Kind: KindInt, Ints: values, Valid: validMask(len(values), valid)}
}

func NewFloatColumn(name string, values []float64, valid []bool) Column {
	return Column{Name: name, Kind: KindFloat, Floats: values, Valid: validMask(len(values), valid)}
}

func NewTimeColumn(name string, values []time.Time, valid []bool) Column {
	return Column{Name: name, Kind: KindTime, Times: values, Valid: validMask(len(values), valid)}
}

func NewStringColumn(name string, values []string, valid []bool) Column {
	return Column{Name: name, Kind: KindString, Strings: values, Valid: validMask(len(values), valid)}
}

func validMask(n int, valid []bool) []bool {
	if valid != nil {
		return valid
	}
	mask := make([]bool, n)
	for i := range mask {
		mask[i] = true
	}
	return mask
}

func (c *Column) Len() int {
	return len(c.Valid)
}

// Value returns the value at row i, or (nil, false) for a null row.
func (c *Column) Value(i int) (interface{}, bool) {
	if i >= c.Len() || !c.Valid[i] {
		return nil, false
	}
	switch c.Kind {
	case KindInt:
		return c.Ints[i], true
	case KindFloat:
		return c.Floats[i], true
	case KindTime:
		return c.Times[i], true
	default:
		return c.Strings[i], true
	}
}

// allNull reports whether no row of the column holds a value.
func (c *Column) allNull() bool {
	for _, v := range c.Valid {
		if v {
			return false
		}
	}
	return true
}

// resized returns a copy of the column with exactly n rows. Missing rows are
// null; surplus rows are dropped.
func (c Column) resized(n int) Column {
	out := Column{Name: c.Name, Kind: c.Kind, Valid: make([]bool, n)}
	copy(out.Valid, c.Valid)
	switch c.Kind {
	case KindInt:
		out.Ints = make([]int64, n)
		copy(out.Ints, c.Ints)
	case KindFloat:
		out.Floats = make([]float64, n)
		copy(out.Floats, c.Floats)
	case KindTime:
		out.Times = make([]time.Time, n)
		copy(out.Times, c.Times)
	default:
		out.Strings = make([]string, n)
		copy(out.Strings, c.Strings)
	}
	return out
}

// Dataset is one named dataset from a source file, cast into typed columns.
// All columns share the same length.
type Dataset struct {
	Name    string
	Columns []Column
}

func (d *Dataset) Rows() int {
	rows := 0
	for i := range d.Columns {
		if n := d.Columns[i].Len(); n > rows {
			rows = n
		}
	}
	return rows
}

// Frame is the single row-aligned table built from the datasets of one file.
type Frame struct {
	columns []Column
	rows    int
}

func New(rows int) *Frame {
	return &Frame{rows: rows}
}

func (f *Frame) Rows() int {
	return f.rows
}

func (f *Frame) Columns() []Column {
	return f.columns
}

func (f *Frame) Column(name string) (*Column, bool) {
	for i := range f.columns {
		if f.columns[i].Name == name {
			return &f.columns[i], true
		}
	}
	return nil, false
}

// AddColumn appends a column to the frame. The column length must match the
// frame's row count.
func (f *Frame) AddColumn(c Column) error {
	if c.Len() != f.rows {
		return errors.Errorf("column %s has %d rows, frame has %d", c.Name, c.Len(), f.rows)
	}
	if _, ok := f.Column(c.Name); ok {
		return errors.Errorf("column %s already present", c.Name)
	}
	f.columns = append(f.columns, c)
	return nil
}
