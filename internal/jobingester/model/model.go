package model

// Origin records where a source file was discovered.
type Origin string

const (
	OriginLocal  Origin = "local"
	OriginRemote Origin = "remote"
)

// SourceFile is one telemetry file to be processed, identified by its logical key.
type SourceFile struct {
	// Path for local files, object key for remote ones.
	Key string
	// Where the file was discovered.
	Origin Origin
	// Path of an already-downloaded copy. Empty for remote files that have not
	// been synced yet.
	LocalPath string
}

// Status is the terminal state of one processed file.
type Status string

const (
	// StatusDone means the job table was written.
	StatusDone Status = "done"
	// StatusSkipped means the file contained no usable data. Skips are terminal
	// and not retried automatically.
	StatusSkipped Status = "skipped"
	// StatusFailed means processing aborted for this file. Failures may succeed
	// on a later re-scan or redelivered event.
	StatusFailed Status = "failed"
)

// Outcome is the result of running the pipeline over one source file.
type Outcome struct {
	File      SourceFile
	Status    Status
	TableName string
	// Populated when Status != StatusDone.
	Reason string
	// Datasets within the file that were skipped, keyed by dataset name.
	DatasetsSkipped map[string]string
	RowsWritten     int
	// Scalar energy summary, nil when no frame was produced.
	Metrics *EnergySummary
}

// EnergySummary is the fixed-shape scalar summary computed for one job.
type EnergySummary struct {
	EnergyJoules       float64
	DurationSeconds    float64
	MeanPowerWatts     float64
	MeanPowerDefined   bool
	PeakPowerWatts     float64
	PeakPowerAtSeconds float64
	SampleCount        int
	EnergyDelayProduct float64
	// nil when pricing is disabled or unavailable, never zero-by-default.
	CostEUR *float64
	// Closest household appliance by energy over a ten minute window.
	Appliance string
}

// RunSummary accumulates per-file outcomes over one batch run.
type RunSummary struct {
	Processed int
	Skipped   int
	Failed    int
	Outcomes  []Outcome
}

func (s *RunSummary) Add(outcome Outcome) {
	switch outcome.Status {
	case StatusDone:
		s.Processed++
	case StatusSkipped:
		s.Skipped++
	case StatusFailed:
		s.Failed++
	}
	s.Outcomes = append(s.Outcomes, outcome)
}
