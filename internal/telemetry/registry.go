package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/wolfman30/revsnap-web/internal/observability/metrics"
	"github.com/wolfman30/revsnap-web/pkg/logging"
)

const defaultSessionIdle = 30 * time.Minute

// Registry holds the open page-view sessions keyed by session id.
type Registry struct {
	emitter Emitter
	logger  *logging.Logger
	metrics *metrics.TelemetryMetrics
	idle    time.Duration
	opts    []SessionOption
	now     func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	sessions map[string]*Session
}

// RegistryConfig configures a Registry.
type RegistryConfig struct {
	Idle           time.Duration
	Metrics        *metrics.TelemetryMetrics
	SessionOptions []SessionOption
	Now            func() time.Time
}

// NewRegistry creates a registry whose sessions emit through emitter.
func NewRegistry(emitter Emitter, logger *logging.Logger, cfg RegistryConfig) *Registry {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Idle <= 0 {
		cfg.Idle = defaultSessionIdle
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	ctx, cancel := context.WithCancel(context.Background())
	opts := append([]SessionOption{WithSessionLogger(logger), WithSessionClock(cfg.Now)}, cfg.SessionOptions...)
	return &Registry{
		emitter:  emitter,
		logger:   logger,
		metrics:  cfg.Metrics,
		idle:     cfg.Idle,
		opts:     opts,
		now:      cfg.Now,
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[string]*Session),
	}
}

// Open starts a page view. An existing session with the same id is torn
// down first.
func (r *Registry) Open(id, pageURL, userAgent, clientIP string) *Session {
	s := NewSession(id, pageURL, r.emitter, r.opts...)
	s.UserAgent = userAgent
	s.ClientIP = clientIP

	r.mu.Lock()
	prev := r.sessions[id]
	r.sessions[id] = s
	n := len(r.sessions)
	r.mu.Unlock()

	if prev != nil {
		prev.Teardown()
	}
	s.Start(r.ctx)
	r.metrics.SetActiveSessions(n)
	return s
}

// Get returns the session for id and marks it active.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()
	if ok {
		s.Touch()
	}
	return s, ok
}

// Ensure returns the session for id, opening one if needed.
func (r *Registry) Ensure(id, pageURL, userAgent, clientIP string) *Session {
	if s, ok := r.Get(id); ok {
		return s
	}
	return r.Open(id, pageURL, userAgent, clientIP)
}

// Close tears down and forgets the session for id.
func (r *Registry) Close(id string) bool {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	n := len(r.sessions)
	r.mu.Unlock()

	if !ok {
		return false
	}
	s.Teardown()
	r.metrics.SetActiveSessions(n)
	return true
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Reap tears down sessions with no beacon for the idle window.
func (r *Registry) Reap() int {
	cutoff := r.now().Add(-r.idle)
	var stale []*Session

	r.mu.Lock()
	for id, s := range r.sessions {
		if s.LastSeen().Before(cutoff) {
			stale = append(stale, s)
			delete(r.sessions, id)
		}
	}
	n := len(r.sessions)
	r.mu.Unlock()

	for _, s := range stale {
		s.Teardown()
	}
	if len(stale) > 0 {
		r.logger.Debug("telemetry: reaped idle sessions", "count", len(stale))
		r.metrics.SetActiveSessions(n)
	}
	return len(stale)
}

// Run reaps idle sessions until ctx is done.
func (r *Registry) Run(ctx context.Context) {
	interval := r.idle / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Reap()
		}
	}
}

// Shutdown tears down every session.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	all := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range all {
		s.Teardown()
	}
	r.cancel()
	r.metrics.SetActiveSessions(0)
}
