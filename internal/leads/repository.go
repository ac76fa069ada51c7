package leads

import (
	"context"
	"sync"

	"github.com/wolfman30/revsnap-web/pkg/logging"
)

// Recorder receives accepted submissions. Implementations store them or hand
// them to downstream systems (database, CRM, notifications).
type Recorder interface {
	Record(ctx context.Context, sub *Submission) error
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(ctx context.Context, sub *Submission) error

func (f RecorderFunc) Record(ctx context.Context, sub *Submission) error {
	return f(ctx, sub)
}

// LogRecorder writes one diagnostic line per submission and stores nothing.
type LogRecorder struct {
	logger *logging.Logger
}

// NewLogRecorder creates the default placeholder recorder.
func NewLogRecorder(logger *logging.Logger) *LogRecorder {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogRecorder{logger: logger}
}

func (r *LogRecorder) Record(ctx context.Context, sub *Submission) error {
	r.logger.InfoContext(ctx, "New "+string(sub.Type)+" submission",
		"lead_id", sub.ID,
		"lead_type", string(sub.Type),
		"fields", sub.Fields,
	)
	return nil
}

// InMemoryRepository keeps submissions in memory. Useful for local runs and tests.
type InMemoryRepository struct {
	mu    sync.RWMutex
	order []string
	leads map[string]*Submission
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		leads: make(map[string]*Submission),
	}
}

// Record stores the submission.
func (r *InMemoryRepository) Record(ctx context.Context, sub *Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.leads[sub.ID]; !ok {
		r.order = append(r.order, sub.ID)
	}
	r.leads[sub.ID] = sub
	return nil
}

// GetByID retrieves a submission by ID
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sub, ok := r.leads[id]
	if !ok {
		return nil, ErrLeadNotFound
	}
	return sub, nil
}

// All returns every stored submission in arrival order.
func (r *InMemoryRepository) All() []*Submission {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Submission, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.leads[id])
	}
	return out
}

var (
	_ Recorder = (*LogRecorder)(nil)
	_ Recorder = (*InMemoryRepository)(nil)
)
