package leads

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSubmission_Subject(t *testing.T) {
	sub := newSubmission(t, `{"type":"pilot","firstName":"Ada","lastName":"Lovelace","email":"ada@example.com","company":"Analytical"}`)
	assert.Equal(t, "RevSnap pilot Request - Analytical", sub.Subject(""))

	sub.Fields.Delete(FieldCompany)
	assert.Equal(t, "Acme pilot Request - New Lead", sub.Subject("Acme"))
}

func TestSubmission_SummaryMinimal(t *testing.T) {
	sub := newSubmission(t, `{"type":"demo","firstName":"A","lastName":"B","email":"a@b.com"}`)
	at := time.Date(2026, 2, 3, 4, 5, 6, 789000000, time.UTC)

	want := "New demo request from RevSnap website:\n\n" +
		"Name: A B\n" +
		"Email: a@b.com\n" +
		"Company: Not provided\n" +
		"Website: Not provided\n" +
		"Phone: Not provided\n" +
		"Monthly Revenue: Not provided\n" +
		"Use Case: Not provided\n" +
		"\nConsent: No\n\n" +
		"Submitted: 2026-02-03T04:05:06.789Z\n"
	assert.Equal(t, want, sub.Summary("", at))
}

func TestSubmission_SummaryOptionalLines(t *testing.T) {
	sub := newSubmission(t, `{"type":"pilot","firstName":"Ada","lastName":"Lovelace","email":"ada@example.com",
		"integrations":["HubSpot","Slack"],"estimates":"500 calls","startDate":"2026-04-01","consent":"on"}`)
	body := sub.Summary("RevSnap", time.Now())

	assert.Contains(t, body, "Integrations: HubSpot, Slack\n")
	assert.Contains(t, body, "Estimates: 500 calls\n")
	assert.Contains(t, body, "Preferred Start Date: 2026-04-01\n")
	assert.Contains(t, body, "Consent: Yes")
	assert.False(t, strings.Contains(body, "\n\n\n"))
}
