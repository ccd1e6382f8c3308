package ingestdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableName(t *testing.T) {
	tests := map[string]struct {
		key  string
		want string
	}{
		"plain":           {"jobA.h5", "job_jobA"},
		"object key":      {"data/run42.h5", "job_run42"},
		"nested path":     {"/srv/telemetry/2024/run42.h5", "job_run42"},
		"windows path":    {`C:\telemetry\run42.h5`, "job_run42"},
		"odd characters":  {"run 42(final).h5", "job_run_42_final_"},
		"kept characters": {"run_42-b.h5", "job_run_42-b"},
		"no suffix match": {"run42.csv", "job_run42_csv"},
		"empty stem":      {".h5", "job_unnamed"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, TableName(tc.key, ".h5"))
		})
	}
}

func TestTableNameIsDeterministic(t *testing.T) {
	first := TableName("data/run42.h5", ".h5")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, TableName("data/run42.h5", ".h5"))
	}
}
