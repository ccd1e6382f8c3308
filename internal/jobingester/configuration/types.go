package configuration

import (
	"time"

	"github.com/mak8427/Benchmarking-suite-backend/internal/common/database"
)

type DiscoveryConfig struct {
	// Local directory scanned for telemetry files. May be empty if a remote
	// prefix is configured.
	LocalRoot string
	// Object store prefix listed for telemetry files. May be empty if a local
	// root is configured.
	RemotePrefix string
	// When true, remote objects are downloaded into CacheDir before the run
	// processes them.
	SyncRemote bool
	// Directory remote objects are downloaded into. Defaults to the OS temp dir.
	CacheDir string
	// Suffix identifying telemetry files, e.g. ".h5".
	FileSuffix string
}

type ObjectStoreConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Secure          bool
	Bucket          string
}

type PricingConfig struct {
	// One of "", "flat" or "market". Empty disables pricing: cost is reported
	// as absent, not zero.
	Mode string
	// EUR per kWh, used in flat mode.
	FlatRateEURPerKWh float64
	// Market mode settings (SMARD day-ahead feed).
	Market MarketPricingConfig
}

type MarketPricingConfig struct {
	BaseURL    string
	FilterID   string
	Region     string
	Resolution string
	Timeout    time.Duration
}

type PipelineConfig struct {
	// Dataset used as the row index reference when combining. When empty the
	// dataset with the most rows is used.
	PrimaryDataset string
	// Bound on a single remote download.
	DownloadTimeout time.Duration
	// Bound on a single table write.
	WriteTimeout time.Duration
}

type JobIngesterConfiguration struct {
	// Target analytical store, reached over the Postgres wire protocol.
	Postgres database.PostgresConfig
	// Source file discovery.
	Discovery DiscoveryConfig
	// Object store the remote prefix and event notifications refer to.
	ObjectStore ObjectStoreConfig
	// Per-file pipeline settings.
	Pipeline PipelineConfig
	// Optional energy pricing.
	Pricing PricingConfig
	// Number of files processed concurrently by a batch run.
	Parallelism int
	// Maximum number of attempts for retryable store operations.
	MaxAttempts int
	// Maximum backoff between attempts, in seconds.
	MaxBackoff int
}

type JobListenerConfiguration struct {
	JobIngesterConfiguration `mapstructure:",squash"`

	// Address the notification endpoint listens on, e.g. ":8085".
	ListenAddress string
}
