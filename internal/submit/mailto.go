package submit

import (
	"net/url"
	"strings"
	"time"

	"github.com/wolfman30/revsnap-web/internal/leads"
)

// DefaultLeadsInbox receives fallback emails.
const DefaultLeadsInbox = "leads@revsnap.ai"

// MailtoConfig sets the fallback recipient and the product named in the subject.
type MailtoConfig struct {
	Recipient string
	Product   string
}

// Mailto builds a mailto URI carrying the lead summary. Subject and body are
// percent-encoded with %20 for spaces so mail clients do not show '+'.
func Mailto(cfg MailtoConfig, sub *leads.Submission, at time.Time) string {
	recipient := cfg.Recipient
	if recipient == "" {
		recipient = DefaultLeadsInbox
	}
	return "mailto:" + recipient +
		"?subject=" + encodeComponent(sub.Subject(cfg.Product)) +
		"&body=" + encodeComponent(sub.Summary(cfg.Product, at))
}

func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
