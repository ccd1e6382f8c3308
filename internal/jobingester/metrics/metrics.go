package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type DBOperation string

const (
	DBOperationDropTable   DBOperation = "drop_table"
	DBOperationCreateTable DBOperation = "create_table"
	DBOperationCopy        DBOperation = "copy"
	DBOperationInsert      DBOperation = "insert"
)

const prefix = "job_ingester_"

type Metrics struct {
	filesProcessed  *prometheus.CounterVec
	datasetsSkipped prometheus.Counter
	rowsWritten     prometheus.Counter
	dbErrors        *prometheus.CounterVec
	downloadErrors  prometheus.Counter
	eventsDropped   prometheus.Counter
}

var (
	m    *Metrics
	once sync.Once
)

func Get() *Metrics {
	once.Do(func() {
		m = newMetrics()
	})
	return m
}

func newMetrics() *Metrics {
	return &Metrics{
		filesProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "files_processed",
			Help: "Number of source files processed, grouped by terminal status",
		}, []string{"status"}),
		datasetsSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Name: prefix + "datasets_skipped",
			Help: "Number of datasets skipped during casting",
		}),
		rowsWritten: promauto.NewCounter(prometheus.CounterOpts{
			Name: prefix + "rows_written",
			Help: "Number of rows written to job tables",
		}),
		dbErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "db_errors",
			Help: "Number of database errors grouped by operation",
		}, []string{"operation"}),
		downloadErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: prefix + "download_errors",
			Help: "Number of errors downloading objects from the object store",
		}),
		eventsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: prefix + "events_dropped",
			Help: "Number of notification records ignored as not relevant",
		}),
	}
}

func (m *Metrics) RecordFileProcessed(status string) {
	m.filesProcessed.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordDatasetsSkipped(count int) {
	m.datasetsSkipped.Add(float64(count))
}

func (m *Metrics) RecordRowsWritten(count int) {
	m.rowsWritten.Add(float64(count))
}

func (m *Metrics) RecordDBError(operation DBOperation) {
	m.dbErrors.WithLabelValues(string(operation)).Inc()
}

func (m *Metrics) RecordDownloadError() {
	m.downloadErrors.Inc()
}

func (m *Metrics) RecordEventDropped() {
	m.eventsDropped.Inc()
}
