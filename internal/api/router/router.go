package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	httpmiddleware "github.com/wolfman30/revsnap-web/internal/http/middleware"
	"github.com/wolfman30/revsnap-web/internal/leads"
	"github.com/wolfman30/revsnap-web/internal/telemetry"
	"github.com/wolfman30/revsnap-web/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger           *logging.Logger
	LeadsHandler     *leads.Handler
	TelemetryHandler *telemetry.Handler
	MetricsHandler   http.Handler
	RateLimiter      *httpmiddleware.RateLimiter
	Checks           map[string]Check

	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", healthHandler)
	r.Get("/ready", readyHandler(cfg.Checks, cfg.Logger))
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		if cfg.RateLimiter != nil {
			api.Use(cfg.RateLimiter.Middleware)
		}
		// Lead and beacon handlers answer every method themselves so that
		// non-POST requests get the JSON 405 with an Allow header.
		if cfg.LeadsHandler != nil {
			api.Handle("/lead", cfg.LeadsHandler)
		}
		if cfg.TelemetryHandler != nil {
			api.Handle("/events", cfg.TelemetryHandler)
		}
	})

	return r
}
