package leads

import (
	"fmt"
	"strings"
	"time"
)

// DefaultProduct names the site in lead summaries.
const DefaultProduct = "RevSnap"

const notProvided = "Not provided"

// Subject is the email subject used for a lead, e.g. "RevSnap demo Request - Acme".
func (s *Submission) Subject(product string) string {
	if product == "" {
		product = DefaultProduct
	}
	company := s.Company()
	if company == "" {
		company = "New Lead"
	}
	return fmt.Sprintf("%s %s Request - %s", product, s.Type, company)
}

// Summary renders the plain-text lead summary shared by sales notifications
// and the mailto fallback. Optional lines are omitted when empty.
func (s *Submission) Summary(product string, submitted time.Time) string {
	if product == "" {
		product = DefaultProduct
	}
	orDefault := func(v string) string {
		if v == "" {
			return notProvided
		}
		return v
	}

	var b strings.Builder
	fmt.Fprintf(&b, "New %s request from %s website:\n\n", s.Type, product)
	fmt.Fprintf(&b, "Name: %s %s\n", s.FirstName(), s.LastName())
	fmt.Fprintf(&b, "Email: %s\n", s.Email())
	fmt.Fprintf(&b, "Company: %s\n", orDefault(s.Company()))
	fmt.Fprintf(&b, "Website: %s\n", orDefault(s.Website()))
	fmt.Fprintf(&b, "Phone: %s\n", orDefault(s.Phone()))
	fmt.Fprintf(&b, "Monthly Revenue: %s\n", orDefault(s.Revenue()))
	fmt.Fprintf(&b, "Use Case: %s\n", orDefault(s.UseCase()))
	if integrations := nonEmpty(s.Integrations()); len(integrations) > 0 {
		fmt.Fprintf(&b, "Integrations: %s\n", strings.Join(integrations, ", "))
	}
	if v := s.Estimates(); v != "" {
		fmt.Fprintf(&b, "Estimates: %s\n", v)
	}
	if v := s.StartDate(); v != "" {
		fmt.Fprintf(&b, "Preferred Start Date: %s\n", v)
	}
	consent := "No"
	if s.Consent() {
		consent = "Yes"
	}
	fmt.Fprintf(&b, "\nConsent: %s\n\n", consent)
	fmt.Fprintf(&b, "Submitted: %s\n", submitted.UTC().Format("2006-01-02T15:04:05.000Z"))
	return b.String()
}

func nonEmpty(items []string) []string {
	out := items[:0:0]
	for _, it := range items {
		if strings.TrimSpace(it) != "" {
			out = append(out, it)
		}
	}
	return out
}
