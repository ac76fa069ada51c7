package leads

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wolfman30/revsnap-web/internal/observability/metrics"
	"github.com/wolfman30/revsnap-web/pkg/logging"
)

const followUpConcurrency = 4

// DuplicateChecker suppresses repeated submissions of the same lead.
type DuplicateChecker interface {
	// Claim returns false when an identical submission was seen recently.
	Claim(ctx context.Context, sub *Submission) (bool, error)
	// Release forgets a claim so a failed submission can be retried.
	Release(ctx context.Context, sub *Submission) error
}

// FollowUp is a best-effort recorder; its failures are logged, never surfaced.
type FollowUp struct {
	Name     string
	Recorder Recorder
}

// Result describes what happened to an accepted submission.
type Result struct {
	Duplicate bool
}

// Service validates submissions and fans them out to recorders.
type Service struct {
	recorders []Recorder
	followUps []FollowUp
	guard     DuplicateChecker
	metrics   *metrics.LeadMetrics
	logger    *logging.Logger
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithFollowUps adds best-effort recorders.
func WithFollowUps(followUps ...FollowUp) Option {
	return func(s *Service) {
		for _, f := range followUps {
			if f.Recorder != nil {
				s.followUps = append(s.followUps, f)
			}
		}
	}
}

// WithDuplicateGuard enables duplicate suppression.
func WithDuplicateGuard(guard DuplicateChecker) Option {
	return func(s *Service) { s.guard = guard }
}

// WithMetrics attaches lead metrics.
func WithMetrics(m *metrics.LeadMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a lead service. recorders must all succeed for a
// submission to be accepted; with none given the LogRecorder is used.
func NewService(logger *logging.Logger, recorders []Recorder, opts ...Option) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	s := &Service{logger: logger, now: time.Now}
	for _, r := range recorders {
		if r != nil {
			s.recorders = append(s.recorders, r)
		}
	}
	if len(s.recorders) == 0 {
		s.recorders = []Recorder{NewLogRecorder(logger)}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates sub, stamps it, and records it.
func (s *Service) Submit(ctx context.Context, sub *Submission) (Result, error) {
	if err := sub.Validate(); err != nil {
		return Result{}, err
	}
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if sub.ReceivedAt.IsZero() {
		sub.ReceivedAt = s.now().UTC()
	}
	if phone := sub.Phone(); phone != "" {
		sub.Fields.Set(FieldPhone, Single(NormalizePhone(phone)))
	}
	if email := sub.Email(); email != strings.TrimSpace(email) {
		sub.Fields.Set(FieldEmail, Single(strings.TrimSpace(email)))
	}

	if s.guard != nil {
		fresh, err := s.guard.Claim(ctx, sub)
		if err != nil {
			s.logger.Warn("leads: duplicate check failed, continuing", "error", err, "lead_type", string(sub.Type))
		} else if !fresh {
			s.logger.Info("leads: duplicate submission suppressed", "lead_type", string(sub.Type))
			return Result{Duplicate: true}, nil
		}
	}

	for _, r := range s.recorders {
		if err := r.Record(ctx, sub); err != nil {
			if s.guard != nil {
				if relErr := s.guard.Release(ctx, sub); relErr != nil {
					s.logger.Warn("leads: failed to release duplicate claim", "error", relErr)
				}
			}
			return Result{}, fmt.Errorf("leads: record %T: %w", r, err)
		}
	}

	s.runFollowUps(ctx, sub)
	return Result{}, nil
}

func (s *Service) runFollowUps(ctx context.Context, sub *Submission) {
	if len(s.followUps) == 0 {
		return
	}
	var g errgroup.Group
	g.SetLimit(followUpConcurrency)
	for _, f := range s.followUps {
		g.Go(func() error {
			if err := f.Recorder.Record(ctx, sub); err != nil {
				s.logger.Error("leads: follow-up failed", "error", err, "follow_up", f.Name, "lead_id", sub.ID)
				s.metrics.ObserveFollowUpFailure(f.Name)
			}
			return nil
		})
	}
	_ = g.Wait()
}
