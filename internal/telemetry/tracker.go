package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wolfman30/revsnap-web/internal/observability/metrics"
	"github.com/wolfman30/revsnap-web/pkg/logging"
)

const (
	defaultBuffer      = 256
	defaultSinkTimeout = 10 * time.Second
)

// Tracker forwards events to sinks from a single worker goroutine. Emit
// never blocks; when the buffer is full the event is dropped.
type Tracker struct {
	sinks   []Sink
	queue   chan Event
	logger  *logging.Logger
	metrics *metrics.TelemetryMetrics
	timeout time.Duration
	now     func() time.Time

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithBuffer sets the queue capacity.
func WithBuffer(n int) TrackerOption {
	return func(t *Tracker) {
		if n > 0 {
			t.queue = make(chan Event, n)
		}
	}
}

// WithTrackerMetrics records delivered and dropped events.
func WithTrackerMetrics(m *metrics.TelemetryMetrics) TrackerOption {
	return func(t *Tracker) { t.metrics = m }
}

// WithSinkTimeout bounds each sink call.
func WithSinkTimeout(d time.Duration) TrackerOption {
	return func(t *Tracker) {
		if d > 0 {
			t.timeout = d
		}
	}
}

// NewTracker starts the delivery worker. With no sinks every event is discarded.
func NewTracker(logger *logging.Logger, sinks []Sink, opts ...TrackerOption) *Tracker {
	if logger == nil {
		logger = logging.Default()
	}
	t := &Tracker{
		logger:  logger,
		queue:   make(chan Event, defaultBuffer),
		timeout: defaultSinkTimeout,
		now:     time.Now,
		done:    make(chan struct{}),
	}
	for _, s := range sinks {
		if s != nil {
			t.sinks = append(t.sinks, s)
		}
	}
	for _, opt := range opts {
		opt(t)
	}
	go t.run()
	return t
}

// Emit enqueues evt. It reports false when the event was dropped.
func (t *Tracker) Emit(evt Event) bool {
	if evt.Time.IsZero() {
		evt.Time = t.now()
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.closed {
		return false
	}
	select {
	case t.queue <- evt:
		return true
	default:
		t.logger.Warn("telemetry: buffer full, dropping event", "event", evt.Name, "session_id", evt.SessionID)
		t.metrics.ObserveDropped()
		return false
	}
}

// Track emits a bare event with properties.
func (t *Tracker) Track(name string, props map[string]any) bool {
	return t.Emit(Event{Name: name, Properties: props})
}

func (t *Tracker) run() {
	defer close(t.done)
	for evt := range t.queue {
		t.deliver(evt)
	}
}

// deliver reports evt to every sink concurrently and waits for all of them,
// so each sink still sees events in order.
func (t *Tracker) deliver(evt Event) {
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	var g errgroup.Group
	for _, sink := range t.sinks {
		g.Go(func() error {
			if err := sink.Report(ctx, evt); err != nil {
				t.logger.Error("telemetry: sink failed", "error", err, "event", evt.Name, "sink", fmt.Sprintf("%T", sink))
			}
			return nil
		})
	}
	_ = g.Wait()
}

// Close stops accepting events and waits for queued ones to be delivered.
func (t *Tracker) Close(ctx context.Context) error {
	t.mu.Lock()
	if !t.closed {
		t.closed = true
		close(t.queue)
	}
	t.mu.Unlock()

	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("telemetry: drain interrupted: %w", ctx.Err())
	}
}

var _ Emitter = (*Tracker)(nil)
