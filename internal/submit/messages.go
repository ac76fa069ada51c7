package submit

import "github.com/wolfman30/revsnap-web/internal/leads"

// Success messages shown after a submission, keyed by form type.
var Messages = map[leads.Type]string{
	leads.TypeDemo:    "Thanks! Your demo is booked. We've emailed details and a calendar invite.",
	leads.TypePilot:   "You're on the list—our team will activate your pilot within 48 hours.",
	leads.TypeContact: "Thank you for your message. We'll get back to you within 24 hours.",
}

// SuccessMessage returns the message for t, falling back to the contact message.
func SuccessMessage(t leads.Type) string {
	if msg, ok := Messages[t]; ok {
		return msg
	}
	return Messages[leads.TypeContact]
}
