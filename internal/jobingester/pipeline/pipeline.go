package pipeline

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/mak8427/Benchmarking-suite-backend/internal/jobingester/configuration"
	"github.com/mak8427/Benchmarking-suite-backend/internal/jobingester/energy"
	"github.com/mak8427/Benchmarking-suite-backend/internal/jobingester/frame"
	"github.com/mak8427/Benchmarking-suite-backend/internal/jobingester/ingestdb"
	"github.com/mak8427/Benchmarking-suite-backend/internal/jobingester/loader"
	"github.com/mak8427/Benchmarking-suite-backend/internal/jobingester/metrics"
	"github.com/mak8427/Benchmarking-suite-backend/internal/jobingester/model"
	"github.com/mak8427/Benchmarking-suite-backend/internal/jobingester/objectstore"
)

// Sink persists one combined frame as a named table.
type Sink interface {
	Store(ctx context.Context, tableName string, f *frame.Frame) (int, error)
}

// Pipeline turns one source file into one job table. Both trigger paths share
// it; they only differ in how they produce SourceFile values and interpret
// Outcomes. All per-file errors are converted into a terminal status and a
// reason, never propagated.
type Pipeline struct {
	loader      *loader.Loader
	engine      *energy.Engine
	sink        Sink
	store       objectstore.ObjectStore
	metrics     *metrics.Metrics
	config      configuration.PipelineConfig
	fileSuffix  string
	cacheDir    string
	maxAttempts int
	maxBackoff  int
}

func New(
	l *loader.Loader,
	engine *energy.Engine,
	sink Sink,
	store objectstore.ObjectStore,
	m *metrics.Metrics,
	config *configuration.JobIngesterConfiguration,
) *Pipeline {
	return &Pipeline{
		loader:      l,
		engine:      engine,
		sink:        sink,
		store:       store,
		metrics:     m,
		config:      config.Pipeline,
		fileSuffix:  config.Discovery.FileSuffix,
		cacheDir:    config.Discovery.CacheDir,
		maxAttempts: config.MaxAttempts,
		maxBackoff:  config.MaxBackoff,
	}
}

// Process runs the pipeline for one file:
// download if remote, load and cast, combine, compute, write.
func (p *Pipeline) Process(ctx context.Context, file model.SourceFile) model.Outcome {
	outcome := model.Outcome{
		File:      file,
		TableName: ingestdb.TableName(file.Key, p.fileSuffix),
	}
	logger := log.WithField("file", file.Key).WithField("table", outcome.TableName)
	defer func() {
		p.metrics.RecordFileProcessed(string(outcome.Status))
	}()

	localPath, err := p.localize(ctx, file)
	if err != nil {
		return failed(&outcome, logger, "download", err)
	}

	logger.Debug("Loading datasets")
	result, err := p.loader.Load(localPath)
	if err != nil {
		return failed(&outcome, logger, "parse", err)
	}
	outcome.DatasetsSkipped = result.Skipped
	if len(result.Skipped) > 0 {
		p.metrics.RecordDatasetsSkipped(len(result.Skipped))
		logger.WithField("skipped", result.Skipped).Info("Some datasets were skipped")
	}

	combined, err := frame.Combine(result.Datasets, p.config.PrimaryDataset)
	if errors.Is(err, frame.ErrNoData) {
		outcome.Status = model.StatusSkipped
		outcome.Reason = "no usable datasets"
		logger.Info("No usable datasets, nothing to write")
		return outcome
	}
	if err != nil {
		return failed(&outcome, logger, "combine", err)
	}

	summary := p.engine.Compute(ctx, combined)
	outcome.Metrics = summary
	attachSummary(combined, summary)

	writeCtx := ctx
	if p.config.WriteTimeout > 0 {
		var cancel context.CancelFunc
		writeCtx, cancel = context.WithTimeout(ctx, p.config.WriteTimeout)
		defer cancel()
	}
	written, err := p.sink.Store(writeCtx, outcome.TableName, combined)
	if err != nil {
		return failed(&outcome, logger, "write", err)
	}

	outcome.Status = model.StatusDone
	outcome.RowsWritten = written
	logger.WithField("rows", written).WithField("energy_j", summary.EnergyJoules).Info("Job table written")
	return outcome
}

// localize returns a local path for the file, downloading it first when only a
// remote copy exists.
func (p *Pipeline) localize(ctx context.Context, file model.SourceFile) (string, error) {
	if file.LocalPath != "" {
		return file.LocalPath, nil
	}
	if p.store == nil {
		return "", errors.Errorf("%s is remote but no object store is configured", file.Key)
	}

	cacheDir := p.cacheDir
	if cacheDir == "" {
		cacheDir = os.TempDir()
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return "", err
	}
	dest := filepath.Join(cacheDir, path.Base(strings.ReplaceAll(file.Key, "\\", "/")))

	downloadCtx := ctx
	if p.config.DownloadTimeout > 0 {
		var cancel context.CancelFunc
		downloadCtx, cancel = context.WithTimeout(ctx, p.config.DownloadTimeout)
		defer cancel()
	}
	if err := objectstore.DownloadWithRetry(downloadCtx, p.store, file.Key, dest, p.maxAttempts, p.maxBackoff); err != nil {
		p.metrics.RecordDownloadError()
		return "", err
	}
	return dest, nil
}

func failed(outcome *model.Outcome, logger *log.Entry, stage string, err error) model.Outcome {
	outcome.Status = model.StatusFailed
	outcome.Reason = stage + ": " + err.Error()
	logger.WithError(err).Warnf("Processing failed during %s", stage)
	return *outcome
}

// attachSummary adds the scalar summary as constant columns so the persisted
// table is self contained. Undefined metrics stay null rather than zero.
func attachSummary(f *frame.Frame, summary *model.EnergySummary) {
	rows := f.Rows()
	if rows == 0 {
		return
	}

	addFloat := func(name string, value float64, defined bool) {
		values := make([]float64, rows)
		valid := make([]bool, rows)
		for i := range values {
			values[i] = value
			valid[i] = defined
		}
		if err := f.AddColumn(frame.NewFloatColumn(name, values, valid)); err != nil {
			log.WithError(err).Warnf("Could not attach %s", name)
		}
	}

	addFloat("summary_energy_j", summary.EnergyJoules, summary.SampleCount > 0)
	addFloat("summary_duration_s", summary.DurationSeconds, summary.SampleCount > 0)
	addFloat("summary_mean_power_w", summary.MeanPowerWatts, summary.MeanPowerDefined)
	addFloat("summary_peak_power_w", summary.PeakPowerWatts, summary.SampleCount > 0)
	if summary.CostEUR != nil {
		addFloat("summary_cost_eur", *summary.CostEUR, true)
	} else {
		addFloat("summary_cost_eur", 0, false)
	}
}
