package leads

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Type identifies which marketing form produced a submission.
type Type string

const (
	TypeDemo    Type = "demo"
	TypePilot   Type = "pilot"
	TypeContact Type = "contact"
)

// Valid reports whether t is one of the known form types.
func (t Type) Valid() bool {
	switch t {
	case TypeDemo, TypePilot, TypeContact:
		return true
	}
	return false
}

// MetricLabel bounds label cardinality for unknown types.
func (t Type) MetricLabel() string {
	if t.Valid() {
		return string(t)
	}
	return "other"
}

// Well-known form field names.
const (
	FieldFirstName    = "firstName"
	FieldLastName     = "lastName"
	FieldEmail        = "email"
	FieldCompany      = "company"
	FieldWebsite      = "website"
	FieldPhone        = "phone"
	FieldRevenue      = "revenue"
	FieldUseCase      = "useCase"
	FieldIntegrations = "integrations"
	FieldEstimates    = "estimates"
	FieldStartDate    = "startDate"
	FieldConsent      = "consent"

	fieldType = "type"
)

// Submission is one lead form submission. It only lives for the duration of
// a request unless a recorder persists it.
type Submission struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	Fields     Values    `json:"fields"`
	ReceivedAt time.Time `json:"received_at"`
	RemoteIP   string    `json:"remote_ip,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
}

// DecodeSubmission reads a JSON body of the form {type, ...fields}.
func DecodeSubmission(r io.Reader) (*Submission, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	var fields Values
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	sub := &Submission{Fields: fields}
	if t, ok := sub.Fields.Get(fieldType); ok {
		sub.Type = Type(t.String())
		sub.Fields.Delete(fieldType)
	}
	return sub, nil
}

func (s *Submission) FirstName() string { return s.Fields.String(FieldFirstName) }
func (s *Submission) LastName() string  { return s.Fields.String(FieldLastName) }
func (s *Submission) Email() string     { return s.Fields.String(FieldEmail) }
func (s *Submission) Company() string   { return s.Fields.String(FieldCompany) }
func (s *Submission) Website() string   { return s.Fields.String(FieldWebsite) }
func (s *Submission) Phone() string     { return s.Fields.String(FieldPhone) }
func (s *Submission) Revenue() string   { return s.Fields.String(FieldRevenue) }
func (s *Submission) UseCase() string   { return s.Fields.String(FieldUseCase) }
func (s *Submission) Estimates() string { return s.Fields.String(FieldEstimates) }
func (s *Submission) StartDate() string { return s.Fields.String(FieldStartDate) }

// Integrations returns every selected integration.
func (s *Submission) Integrations() []string {
	v, _ := s.Fields.Get(FieldIntegrations)
	return v.Strings()
}

// FullName joins first and last name.
func (s *Submission) FullName() string {
	return strings.TrimSpace(s.FirstName() + " " + s.LastName())
}

// Consent reports whether the consent checkbox was ticked.
func (s *Submission) Consent() bool {
	v, ok := s.Fields.Get(FieldConsent)
	if !ok || !v.Truthy() {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(v.String())) {
	case "false", "0", "off", "no":
		return false
	}
	return true
}

type requiredFields struct {
	FirstName string `validate:"required"`
	LastName  string `validate:"required"`
	Email     string `validate:"required"`
}

var validate = validator.New()

// Validate checks that the required fields are present.
func (s *Submission) Validate() error {
	req := requiredFields{
		FirstName: s.FirstName(),
		LastName:  s.LastName(),
		Email:     s.Email(),
	}
	if err := validate.Struct(req); err != nil {
		return ErrMissingRequiredFields
	}
	return nil
}
