// Package compliance records marketing-consent decisions made on lead forms.
package compliance

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wolfman30/revsnap-web/internal/leads"
)

// ConsentEventType represents the outcome captured on the form.
type ConsentEventType string

const (
	// EventConsentGranted is logged when the consent checkbox was ticked.
	EventConsentGranted ConsentEventType = "consent.granted"
	// EventConsentDeclined is logged when the form was submitted without consent.
	EventConsentDeclined ConsentEventType = "consent.declined"
)

// ConsentEvent is an immutable consent record.
type ConsentEvent struct {
	ID        string           `json:"id"`
	EventType ConsentEventType `json:"event_type"`
	LeadID    string           `json:"lead_id"`
	LeadType  string           `json:"lead_type"`
	Email     string           `json:"email"`
	RemoteIP  string           `json:"remote_ip,omitempty"`
	UserAgent string           `json:"user_agent,omitempty"`
	Details   json.RawMessage  `json:"details,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// ConsentDetails holds the raw form value that was interpreted.
type ConsentDetails struct {
	RawValue string `json:"raw_value,omitempty"`
	FormType string `json:"form_type"`
}

// ConsentLog writes consent events to lead_consent_events.
type ConsentLog struct {
	db *sql.DB
}

// NewConsentLog creates a consent log.
func NewConsentLog(db *sql.DB) *ConsentLog {
	return &ConsentLog{db: db}
}

// LogEvent records a consent event.
func (s *ConsentLog) LogEvent(ctx context.Context, event ConsentEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO lead_consent_events (
			id, event_type, lead_id, lead_type, email,
			remote_ip, user_agent, details, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		string(event.EventType),
		event.LeadID,
		event.LeadType,
		strings.ToLower(event.Email),
		nullString(event.RemoteIP),
		nullString(event.UserAgent),
		[]byte(event.Details),
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("compliance: failed to log consent event: %w", err)
	}
	return nil
}

// Record logs the consent decision carried by sub.
func (s *ConsentLog) Record(ctx context.Context, sub *leads.Submission) error {
	eventType := EventConsentDeclined
	if sub.Consent() {
		eventType = EventConsentGranted
	}
	details, _ := json.Marshal(ConsentDetails{
		RawValue: sub.Fields.String(leads.FieldConsent),
		FormType: string(sub.Type),
	})
	return s.LogEvent(ctx, ConsentEvent{
		EventType: eventType,
		LeadID:    sub.ID,
		LeadType:  string(sub.Type),
		Email:     sub.Email(),
		RemoteIP:  sub.RemoteIP,
		UserAgent: sub.UserAgent,
		Details:   details,
		CreatedAt: sub.ReceivedAt,
	})
}

// HasConsent reports whether the most recent event for email granted consent.
func (s *ConsentLog) HasConsent(ctx context.Context, email string) (bool, error) {
	query := `
		SELECT event_type
		FROM lead_consent_events
		WHERE email = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	var eventType string
	err := s.db.QueryRowContext(ctx, query, strings.ToLower(strings.TrimSpace(email))).Scan(&eventType)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("compliance: failed to query consent: %w", err)
	}
	return ConsentEventType(eventType) == EventConsentGranted, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

var _ leads.Recorder = (*ConsentLog)(nil)
