package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/revsnap-web/cmd/mainconfig"
	"github.com/wolfman30/revsnap-web/internal/api/router"
	"github.com/wolfman30/revsnap-web/internal/app/bootstrap"
	appconfig "github.com/wolfman30/revsnap-web/internal/config"
	httpmiddleware "github.com/wolfman30/revsnap-web/internal/http/middleware"
	"github.com/wolfman30/revsnap-web/internal/leads"
	"github.com/wolfman30/revsnap-web/internal/notify"
	"github.com/wolfman30/revsnap-web/internal/observability/metrics"
	"github.com/wolfman30/revsnap-web/internal/telemetry"
	"github.com/wolfman30/revsnap-web/pkg/logging"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting revsnap web API",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to start", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      app.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	app.close(shutdownCtx)
	logger.Info("server stopped")
}

type app struct {
	handler  http.Handler
	registry *telemetry.Registry
	closers  []func(context.Context)
}

func (a *app) close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i](ctx)
	}
}

// newApp wires every backend the config enables and returns the HTTP
// handler. Background loops stop when ctx is cancelled.
func newApp(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*app, error) {
	a := &app{}
	checks := map[string]router.Check{}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	leadMetrics := metrics.NewLeadMetrics(reg)
	telemetryMetrics := metrics.NewTelemetryMetrics(reg)

	db, err := bootstrap.BuildDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	backends := bootstrap.LeadBackends{Metrics: leadMetrics}
	if db != nil {
		backends.Pool, backends.SQL = db.Pool, db.SQL
		checks["postgres"] = db.Ping
		a.closers = append(a.closers, func(context.Context) { db.Close() })
	}

	if redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true); redisClient != nil {
		backends.Redis = redisClient
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
		a.closers = append(a.closers, func(context.Context) { _ = redisClient.Close() })
	}

	var ses notify.SESAPI
	if needsAWS(cfg) {
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, err
		}
		clients := mainconfig.BuildAWSClients(awsCfg, cfg)
		if clients.S3 != nil {
			backends.S3 = clients.S3
		}
		if clients.SQS != nil {
			backends.SQS = clients.SQS
		}
		if clients.Dynamo != nil {
			backends.Dynamo = clients.Dynamo
		}
		if clients.SES != nil {
			ses = clients.SES
		}
	}

	email, provider := bootstrap.BuildEmailSender(cfg, ses, logger)
	logger.Info("email provider selected", "provider", provider)
	backends.Email = email

	leadService := bootstrap.BuildLeadService(cfg, backends, logger)

	tracker, registry := bootstrap.BuildTelemetry(cfg, telemetryMetrics, logger)
	a.registry = registry
	go registry.Run(ctx)
	a.closers = append(a.closers, func(ctx context.Context) {
		if err := tracker.Close(ctx); err != nil {
			logger.Warn("telemetry drain incomplete", "error", err)
		}
	})
	a.closers = append(a.closers, func(context.Context) { registry.Shutdown() })

	var limiter *httpmiddleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = httpmiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, logger)
		go limiter.Run(ctx.Done())
	}

	a.handler = router.New(&router.Config{
		Logger:             logger,
		LeadsHandler:       leads.NewHandler(leadService, leadMetrics, logger),
		TelemetryHandler:   telemetry.NewHandler(registry, logger),
		MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		RateLimiter:        limiter,
		Checks:             checks,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})
	return a, nil
}

func needsAWS(cfg *appconfig.Config) bool {
	return cfg.LeadArchiveBucket != "" || cfg.LeadQueueURL != "" || cfg.LeadTable != "" || cfg.SESFromEmail != ""
}
