package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floats(name string, values ...float64) Column {
	return NewFloatColumn(name, values, nil)
}

func TestCombineNoData(t *testing.T) {
	_, err := Combine(nil, "")
	assert.ErrorIs(t, err, ErrNoData)

	_, err = Combine([]Dataset{}, "")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestCombineSingleDataset(t *testing.T) {
	combined, err := Combine([]Dataset{
		{Name: "Energy", Columns: []Column{floats("NodePower", 100, 110, 120)}},
	}, "")
	require.NoError(t, err)

	assert.Equal(t, 3, combined.Rows())
	col, ok := combined.Column("NodePower")
	require.True(t, ok)
	assert.Equal(t, 3, col.Len())
}

func TestCombinePadsShorterDatasets(t *testing.T) {
	combined, err := Combine([]Dataset{
		{Name: "Energy", Columns: []Column{floats("NodePower", 100, 110, 120, 130)}},
		{Name: "Tasks", Columns: []Column{floats("CPUUtilization", 50, 60)}},
	}, "")
	require.NoError(t, err)

	// The longest dataset is the reference.
	assert.Equal(t, 4, combined.Rows())

	col, ok := combined.Column("CPUUtilization")
	require.True(t, ok)
	require.Equal(t, 4, col.Len())
	_, valid := col.Value(1)
	assert.True(t, valid)
	_, valid = col.Value(2)
	assert.False(t, valid, "padded rows must be null")
	_, valid = col.Value(3)
	assert.False(t, valid)
}

func TestCombineConfiguredPrimaryTruncates(t *testing.T) {
	combined, err := Combine([]Dataset{
		{Name: "Energy", Columns: []Column{floats("NodePower", 100, 110)}},
		{Name: "Tasks", Columns: []Column{floats("CPUUtilization", 50, 60, 70)}},
	}, "Energy")
	require.NoError(t, err)

	// The configured primary wins over the longer dataset.
	assert.Equal(t, 2, combined.Rows())
	col, ok := combined.Column("CPUUtilization")
	require.True(t, ok)
	assert.Equal(t, 2, col.Len())
}

func TestCombineRowCountNeverBelowPrimary(t *testing.T) {
	datasets := []Dataset{
		{Name: "A", Columns: []Column{floats("x", 1)}},
		{Name: "B", Columns: []Column{floats("y", 1, 2, 3, 4, 5)}},
		{Name: "C", Columns: []Column{floats("z")}},
	}
	combined, err := Combine(datasets, "B")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, combined.Rows(), 5)
}

func TestCombinePrefixesCollidingNames(t *testing.T) {
	combined, err := Combine([]Dataset{
		{Name: "Node0", Columns: []Column{floats("NodePower", 100, 110)}},
		{Name: "Node1", Columns: []Column{floats("NodePower", 200, 210)}},
	}, "")
	require.NoError(t, err)

	_, ok := combined.Column("NodePower")
	assert.False(t, ok, "colliding names must be dataset-prefixed")
	_, ok = combined.Column("Node0__NodePower")
	assert.True(t, ok)
	_, ok = combined.Column("Node1__NodePower")
	assert.True(t, ok)
}

func TestCombineDropsAllNullColumns(t *testing.T) {
	empty := NewFloatColumn("Broken", []float64{0, 0}, []bool{false, false})
	combined, err := Combine([]Dataset{
		{Name: "Energy", Columns: []Column{floats("NodePower", 100, 110), empty}},
	}, "")
	require.NoError(t, err)

	_, ok := combined.Column("Broken")
	assert.False(t, ok)
	_, ok = combined.Column("NodePower")
	assert.True(t, ok)
}

func TestCombineIsOrderStable(t *testing.T) {
	a := []Dataset{
		{Name: "B", Columns: []Column{floats("y", 1, 2)}},
		{Name: "A", Columns: []Column{floats("x", 1, 2)}},
	}
	b := []Dataset{a[1], a[0]}

	first, err := Combine(a, "")
	require.NoError(t, err)
	second, err := Combine(b, "")
	require.NoError(t, err)

	require.Equal(t, len(first.Columns()), len(second.Columns()))
	for i := range first.Columns() {
		assert.Equal(t, first.Columns()[i].Name, second.Columns()[i].Name)
	}
}

func TestCombineZeroRowDatasets(t *testing.T) {
	combined, err := Combine([]Dataset{
		{Name: "Energy", Columns: []Column{floats("NodePower")}},
	}, "")
	require.NoError(t, err)
	assert.Equal(t, 0, combined.Rows())
}
