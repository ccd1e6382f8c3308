package jobingester

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/mak8427/Benchmarking-suite-backend/internal/common/database"
	"github.com/mak8427/Benchmarking-suite-backend/internal/jobingester/configuration"
	"github.com/mak8427/Benchmarking-suite-backend/internal/jobingester/discovery"
	"github.com/mak8427/Benchmarking-suite-backend/internal/jobingester/energy"
	"github.com/mak8427/Benchmarking-suite-backend/internal/jobingester/ingestdb"
	"github.com/mak8427/Benchmarking-suite-backend/internal/jobingester/loader"
	"github.com/mak8427/Benchmarking-suite-backend/internal/jobingester/metrics"
	"github.com/mak8427/Benchmarking-suite-backend/internal/jobingester/model"
	"github.com/mak8427/Benchmarking-suite-backend/internal/jobingester/objectstore"
	"github.com/mak8427/Benchmarking-suite-backend/internal/jobingester/pipeline"
)

// NewPipeline wires the shared per-file pipeline from config. Both the batch
// runner and the event listener build their pipeline through here.
func NewPipeline(ctx context.Context, config *configuration.JobIngesterConfiguration) (*pipeline.Pipeline, objectstore.ObjectStore, error) {
	m := metrics.Get()

	log.Info("Opening connection pool to the analytical store")
	db, err := database.OpenPgxPool(ctx, config.Postgres)
	if err != nil {
		return nil, nil, errors.WithMessage(err, "error opening connection to the analytical store")
	}
	jobDb := ingestdb.NewJobDb(db, m, config.MaxAttempts, config.MaxBackoff)

	pricer, err := energy.NewPricer(config.Pricing)
	if err != nil {
		return nil, nil, err
	}

	var store objectstore.ObjectStore
	if config.ObjectStore.Endpoint != "" {
		minioStore, err := objectstore.NewMinioStore(config.ObjectStore)
		if err != nil {
			return nil, nil, err
		}
		store = minioStore
	}

	p := pipeline.New(
		loader.New(loader.NewH5Opener()),
		energy.NewEngine(pricer),
		jobDb,
		store,
		m,
		config,
	)
	return p, store, nil
}

// Run executes one batch run: discover candidate files, process each through
// the shared pipeline with bounded concurrency, and report a per-file summary.
// Only discovery failures are returned as errors; per-file failures are part
// of the summary and do not fail the run.
func Run(ctx context.Context, config *configuration.JobIngesterConfiguration) (*model.RunSummary, error) {
	runLog := log.WithField("run_id", uuid.NewString())

	p, store, err := NewPipeline(ctx, config)
	if err != nil {
		return nil, err
	}

	m := metrics.Get()
	disco := discovery.New(config.Discovery, store, m, config.MaxAttempts, config.MaxBackoff)
	files, err := disco.Discover(ctx)
	if err != nil {
		return nil, errors.WithMessage(err, "discovery failed")
	}
	if len(files) == 0 {
		runLog.Warn("Discovery found no telemetry files, nothing to do")
		return &model.RunSummary{}, nil
	}
	runLog.Infof("Discovered %d telemetry files", len(files))

	summary := &model.RunSummary{}
	var mu sync.Mutex

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(config.Parallelism)
	for _, file := range files {
		file := file
		g.Go(func() error {
			outcome := p.Process(groupCtx, file)
			mu.Lock()
			summary.Add(outcome)
			mu.Unlock()
			return nil
		})
	}
	// Workers never return errors; failures are recorded per file.
	_ = g.Wait()

	logSummary(runLog, summary)
	return summary, nil
}

func logSummary(runLog *log.Entry, summary *model.RunSummary) {
	var failures *multierror.Error
	for _, outcome := range summary.Outcomes {
		if outcome.Status == model.StatusFailed {
			failures = multierror.Append(failures, errors.Errorf("%s: %s", outcome.File.Key, outcome.Reason))
		}
	}
	runLog.WithField("processed", summary.Processed).
		WithField("skipped", summary.Skipped).
		WithField("failed", summary.Failed).
		Info("Batch run finished")
	if err := failures.ErrorOrNil(); err != nil {
		runLog.Warnf("Some files failed:\n%v", err)
	}
}
