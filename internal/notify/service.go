package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wolfman30/revsnap-web/internal/leads"
	"github.com/wolfman30/revsnap-web/pkg/logging"
)

// Service sends sales notifications for new leads.
type Service struct {
	email      EmailSender
	recipients []string
	product    string
	logger     *logging.Logger
	now        func() time.Time
}

// Config configures who gets notified.
type Config struct {
	Recipients []string
	Product    string
}

// NewService creates a notification service. Blank recipients are dropped.
func NewService(email EmailSender, cfg Config, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	recipients := make([]string, 0, len(cfg.Recipients))
	for _, r := range cfg.Recipients {
		if r = strings.TrimSpace(r); r != "" {
			recipients = append(recipients, r)
		}
	}
	return &Service{
		email:      email,
		recipients: recipients,
		product:    cfg.Product,
		logger:     logger,
		now:        time.Now,
	}
}

// NotifyNewLead emails every sales recipient a summary of sub.
// Each recipient is attempted; the joined error reports all failures.
func (s *Service) NotifyNewLead(ctx context.Context, sub *leads.Submission) error {
	if s.email == nil || len(s.recipients) == 0 {
		s.logger.Debug("notify: email not configured, skipping lead notification", "lead_id", sub.ID)
		return nil
	}

	submitted := sub.ReceivedAt
	if submitted.IsZero() {
		submitted = s.now()
	}
	msg := EmailMessage{
		ReplyTo: sub.Email(),
		Subject: sub.Subject(s.product),
		Body:    sub.Summary(s.product, submitted),
	}

	var errs []error
	for _, to := range s.recipients {
		msg.To = to
		if err := s.email.Send(ctx, msg); err != nil {
			s.logger.Error("notify: failed to send lead email", "error", err, "to", to, "lead_id", sub.ID)
			errs = append(errs, fmt.Errorf("notify %s: %w", to, err))
			continue
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	s.logger.Info("notify: lead notification sent", "lead_id", sub.ID, "lead_type", string(sub.Type), "recipients", len(s.recipients))
	return nil
}

// Record lets the service run as a follow-up in the lead pipeline.
func (s *Service) Record(ctx context.Context, sub *leads.Submission) error {
	return s.NotifyNewLead(ctx, sub)
}

var _ leads.Recorder = (*Service)(nil)
