package metering

import (
	"context"

	"go.uber.org/zap"
)

// Billable event names. Each run charges resume_parse and results_summary
// once and job_score once per scoring attempt.
const (
	EventResumeParse    = "resume_parse"
	EventJobScore       = "job_score"
	EventResultsSummary = "results_summary"
)

// Meter records billable events. Implementations are fire-and-forget: a
// metering failure must never block or fail the run.
type Meter interface {
	Emit(ctx context.Context, event string)
}

// ItemPusher appends records to a dataset. Satisfied by the apify client.
type ItemPusher interface {
	PushItems(ctx context.Context, datasetID string, items any) error
}

// DatasetMeter pushes charge records to an Apify dataset.
type DatasetMeter struct {
	pusher    ItemPusher
	datasetID string
	logger    *zap.Logger
}

func NewDatasetMeter(pusher ItemPusher, datasetID string, logger *zap.Logger) *DatasetMeter {
	return &DatasetMeter{
		pusher:    pusher,
		datasetID: datasetID,
		logger:    logger,
	}
}

func (m *DatasetMeter) Emit(ctx context.Context, event string) {
	record := []map[string]any{{
		"type":      "charge",
		"eventName": event,
		"count":     1,
	}}

	if err := m.pusher.PushItems(ctx, m.datasetID, record); err != nil {
		m.logger.Warn("recording billable event failed",
			zap.String("event", event),
			zap.Error(err),
		)
		return
	}

	m.logger.Debug("billable event recorded", zap.String("event", event))
}

// LogMeter records billable events in the log only. Used when no metering
// dataset is configured.
type LogMeter struct {
	logger *zap.Logger
}

func NewLogMeter(logger *zap.Logger) *LogMeter {
	return &LogMeter{logger: logger}
}

func (m *LogMeter) Emit(_ context.Context, event string) {
	m.logger.Info("billable event", zap.String("event", event))
}

// Nop discards all events.
type Nop struct{}

func (Nop) Emit(context.Context, string) {}
