package telemetry

import "regexp"

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`\+?1?[-.\s]?\(?[0-9]{3}\)?[-.\s]?[0-9]{3}[-.\s]?[0-9]{4}`)
)

// ScrubPII replaces email addresses with [EMAIL] and phone numbers with
// [PHONE]. Analytics vendors reject events that carry either.
func ScrubPII(text string) string {
	text = emailPattern.ReplaceAllString(text, "[EMAIL]")
	return phonePattern.ReplaceAllString(text, "[PHONE]")
}

// scrubProperties returns a copy of props with every string value scrubbed.
func scrubProperties(props map[string]any) map[string]any {
	if props == nil {
		return nil
	}
	out := make(map[string]any, len(props))
	for k, v := range props {
		if s, ok := v.(string); ok {
			v = ScrubPII(s)
		}
		out[k] = v
	}
	return out
}
