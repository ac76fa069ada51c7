package telemetry

import (
	"context"

	"github.com/wolfman30/revsnap-web/internal/observability/metrics"
	"github.com/wolfman30/revsnap-web/pkg/logging"
)

// LogSink writes each event as a structured log line.
type LogSink struct {
	logger *logging.Logger
}

// NewLogSink creates a log sink.
func NewLogSink(logger *logging.Logger) *LogSink {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Report(ctx context.Context, evt Event) error {
	s.logger.InfoContext(ctx, "track event",
		"event", evt.Name,
		"session_id", evt.SessionID,
		"page_url", evt.PageURL,
		"properties", evt.Properties,
	)
	return nil
}

// MetricsSink counts events by name.
type MetricsSink struct {
	metrics *metrics.TelemetryMetrics
}

// NewMetricsSink creates a metrics sink.
func NewMetricsSink(m *metrics.TelemetryMetrics) *MetricsSink {
	return &MetricsSink{metrics: m}
}

func (s *MetricsSink) Report(_ context.Context, evt Event) error {
	s.metrics.ObserveEvent(evt.Name)
	return nil
}

var (
	_ Sink = (*LogSink)(nil)
	_ Sink = (*MetricsSink)(nil)
)
