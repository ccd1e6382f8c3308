package loader

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeContainer struct {
	datasets map[string]*RawDataset
	readErrs map[string]error
	paths    []string
}

func (c *fakeContainer) DatasetPaths() ([]string, error) {
	return c.paths, nil
}

func (c *fakeContainer) ReadDataset(path string) (*RawDataset, error) {
	if err, ok := c.readErrs[path]; ok {
		return nil, err
	}
	return c.datasets[path], nil
}

func (c *fakeContainer) Close() error {
	return nil
}

type fakeOpener struct {
	containers map[string]*fakeContainer
}

func (o *fakeOpener) Open(path string) (Container, error) {
	container, ok := o.containers[path]
	if !ok {
		return nil, errors.Errorf("corrupt container %s", path)
	}
	return container, nil
}

func TestLoadUnopenableFileFails(t *testing.T) {
	l := New(&fakeOpener{containers: map[string]*fakeContainer{}})
	_, err := l.Load("broken.h5")
	assert.Error(t, err)
}

func TestLoadFileWithoutDatasetsFails(t *testing.T) {
	l := New(&fakeOpener{containers: map[string]*fakeContainer{
		"empty.h5": {},
	}})
	_, err := l.Load("empty.h5")
	assert.Error(t, err)
}

func TestLoadSkipsUnreadableDatasetAndContinues(t *testing.T) {
	l := New(&fakeOpener{containers: map[string]*fakeContainer{
		"job.h5": {
			paths: []string{"Energy/NodePower", "Tasks/Broken"},
			datasets: map[string]*RawDataset{
				"Energy/NodePower": {
					Path:    "Energy/NodePower",
					Columns: []RawColumn{{Name: "NodePower", Floats: []float64{100, 110}}},
				},
			},
			readErrs: map[string]error{
				"Tasks/Broken": errors.New("unsupported datatype class"),
			},
		},
	}})

	result, err := l.Load("job.h5")
	require.NoError(t, err)
	require.Len(t, result.Datasets, 1)
	assert.Equal(t, "Energy__NodePower", result.Datasets[0].Name)
	assert.Contains(t, result.Skipped, "Tasks__Broken")
}

func TestLoadSkipsZeroPowerDataset(t *testing.T) {
	l := New(&fakeOpener{containers: map[string]*fakeContainer{
		"job.h5": {
			paths: []string{"Energy/NodePower"},
			datasets: map[string]*RawDataset{
				"Energy/NodePower": {
					Path:    "Energy/NodePower",
					Columns: []RawColumn{{Name: "NodePower", Floats: []float64{0, 0, 0}}},
				},
			},
		},
	}})

	result, err := l.Load("job.h5")
	require.NoError(t, err)
	assert.Empty(t, result.Datasets)
	assert.Equal(t, "zero-power", result.Skipped["Energy__NodePower"])
}

func TestLoadKeepsEmptyDataset(t *testing.T) {
	l := New(&fakeOpener{containers: map[string]*fakeContainer{
		"job.h5": {
			paths: []string{"Energy/NodePower"},
			datasets: map[string]*RawDataset{
				"Energy/NodePower": {
					Path:    "Energy/NodePower",
					Columns: []RawColumn{{Name: "NodePower", Floats: []float64{}}},
				},
			},
		},
	}})

	result, err := l.Load("job.h5")
	require.NoError(t, err)
	require.Len(t, result.Datasets, 1, "an empty dataset is a zero-row column set, not an error")
	assert.Equal(t, 0, result.Datasets[0].Rows())
}
