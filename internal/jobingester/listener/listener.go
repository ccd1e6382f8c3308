package listener

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/mak8427/Benchmarking-suite-backend/internal/common/health"
	"github.com/mak8427/Benchmarking-suite-backend/internal/common/serve"
	"github.com/mak8427/Benchmarking-suite-backend/internal/jobingester"
	"github.com/mak8427/Benchmarking-suite-backend/internal/jobingester/configuration"
	"github.com/mak8427/Benchmarking-suite-backend/internal/jobingester/metrics"
	"github.com/mak8427/Benchmarking-suite-backend/internal/jobingester/model"
	"github.com/mak8427/Benchmarking-suite-backend/internal/jobingester/pipeline"
)

// Run starts the notification listener and serves until ctx is cancelled.
func Run(ctx context.Context, config *configuration.JobListenerConfiguration) error {
	p, _, err := jobingester.NewPipeline(ctx, &config.JobIngesterConfiguration)
	if err != nil {
		return err
	}

	startupChecker := health.NewStartupCompleteChecker()
	mux := http.NewServeMux()
	health.SetupHttpMux(mux, health.NewMultiChecker(startupChecker))
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/api/v1/events", NewEventHandler(p, config.Discovery.FileSuffix, metrics.Get()))

	startupChecker.MarkComplete()
	log.Infof("Listening for bucket notifications on %s", config.ListenAddress)
	return serve.ListenAndServe(ctx, &http.Server{Addr: config.ListenAddress, Handler: mux})
}

// Notification is the S3-style bucket event payload posted by the object store.
type Notification struct {
	Records []Record `json:"Records"`
}

type Record struct {
	EventName string `json:"eventName"`
	S3        struct {
		Bucket struct {
			Name string `json:"name"`
		} `json:"bucket"`
		Object struct {
			Key string `json:"key"`
		} `json:"object"`
	} `json:"s3"`
}

// RecordOutcome is the per-record result returned to the notification source.
type RecordOutcome struct {
	Key    string `json:"key"`
	Status string `json:"status"`
	Table  string `json:"table,omitempty"`
	Reason string `json:"reason,omitempty"`
}

type Response struct {
	Results []RecordOutcome `json:"results"`
}

// EventHandler accepts bucket notifications and runs the pipeline for every
// record describing the creation of a telemetry file. Irrelevant records are
// acknowledged and dropped. Per-file failures are reported in the response
// summary with HTTP success, so the notification source does not endlessly
// redeliver a file that will never parse.
type EventHandler struct {
	pipeline   *pipeline.Pipeline
	fileSuffix string
	metrics    *metrics.Metrics
}

func NewEventHandler(p *pipeline.Pipeline, fileSuffix string, m *metrics.Metrics) *EventHandler {
	return &EventHandler{pipeline: p, fileSuffix: fileSuffix, metrics: m}
}

func (h *EventHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "only POST is supported", http.StatusMethodNotAllowed)
		return
	}

	var notification Notification
	if err := json.NewDecoder(r.Body).Decode(&notification); err != nil {
		http.Error(w, "malformed notification payload", http.StatusBadRequest)
		return
	}

	response := Response{Results: []RecordOutcome{}}
	for _, record := range notification.Records {
		response.Results = append(response.Results, h.handleRecord(r.Context(), record))
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.WithError(err).Error("Failed to write notification response")
	}
}

func (h *EventHandler) handleRecord(ctx context.Context, record Record) RecordOutcome {
	key := record.S3.Object.Key
	if unescaped, err := url.QueryUnescape(key); err == nil {
		key = unescaped
	}

	if !isCreationEvent(record.EventName) || !strings.HasSuffix(key, h.fileSuffix) {
		log.WithField("event", record.EventName).WithField("key", key).Debug("Ignoring notification record")
		h.metrics.RecordEventDropped()
		return RecordOutcome{Key: key, Status: "ignored"}
	}

	outcome := h.pipeline.Process(ctx, model.SourceFile{Key: key, Origin: model.OriginRemote})
	result := RecordOutcome{
		Key:    key,
		Status: string(outcome.Status),
		Table:  outcome.TableName,
		Reason: outcome.Reason,
	}
	if outcome.Status != model.StatusDone {
		result.Table = ""
	}
	return result
}

func isCreationEvent(eventName string) bool {
	return strings.HasPrefix(eventName, "s3:ObjectCreated:")
}
