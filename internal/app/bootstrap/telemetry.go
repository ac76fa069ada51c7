package bootstrap

import (
	appconfig "github.com/wolfman30/revsnap-web/internal/config"
	"github.com/wolfman30/revsnap-web/internal/observability/metrics"
	"github.com/wolfman30/revsnap-web/internal/telemetry"
	"github.com/wolfman30/revsnap-web/pkg/logging"
)

// BuildTelemetrySinks returns the log and metrics sinks plus GA4 and Meta
// forwarding when their credentials are set.
func BuildTelemetrySinks(cfg *appconfig.Config, m *metrics.TelemetryMetrics, logger *logging.Logger) []telemetry.Sink {
	if logger == nil {
		logger = logging.Default()
	}
	sinks := []telemetry.Sink{telemetry.NewLogSink(logger)}
	if m != nil {
		sinks = append(sinks, telemetry.NewMetricsSink(m))
	}
	if cfg == nil {
		return sinks
	}
	if ga4 := telemetry.NewGA4Sink(cfg.GA4MeasurementID, cfg.GA4APISecret); ga4 != nil {
		sinks = append(sinks, ga4)
		logger.Info("telemetry forwarding enabled", "sink", "ga4")
	}
	if pixel := telemetry.NewPixelSink(cfg.MetaPixelID, cfg.MetaAccessToken); pixel != nil {
		sinks = append(sinks, pixel)
		logger.Info("telemetry forwarding enabled", "sink", "meta_pixel")
	}
	return sinks
}

// BuildTelemetry starts the event tracker and the session registry on top of it.
func BuildTelemetry(cfg *appconfig.Config, m *metrics.TelemetryMetrics, logger *logging.Logger) (*telemetry.Tracker, *telemetry.Registry) {
	if cfg == nil {
		cfg = &appconfig.Config{}
	}
	tracker := telemetry.NewTracker(logger, BuildTelemetrySinks(cfg, m, logger),
		telemetry.WithBuffer(cfg.TelemetryBuffer),
		telemetry.WithTrackerMetrics(m),
	)
	registry := telemetry.NewRegistry(tracker, logger, telemetry.RegistryConfig{
		Idle:    cfg.TelemetrySessionIdle,
		Metrics: m,
	})
	return tracker, registry
}
