package ingestdb

import (
	"path"
	"strings"
)

// TableName derives the job table name for a source file key. The stem is the
// base name without the telemetry suffix, with every character outside
// [A-Za-z0-9_-] replaced by an underscore. The mapping is deterministic so
// re-processing a file always targets the same table; two distinct files
// sanitizing to the same stem share a table, last writer wins.
func TableName(key, suffix string) string {
	base := path.Base(strings.ReplaceAll(key, "\\", "/"))
	stem := strings.TrimSuffix(base, suffix)
	stem = sanitizeStem(stem)
	if stem == "" {
		stem = "unnamed"
	}
	return "job_" + stem
}

func sanitizeStem(stem string) string {
	var b strings.Builder
	for _, r := range stem {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
