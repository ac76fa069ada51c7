// Package telemetry relays marketing-site analytics events (scroll depth,
// time on page, clicks, form submits, client errors) to analytics sinks.
package telemetry

import (
	"context"
	"time"
)

// Event names forwarded to sinks.
const (
	EventScrollDepth     = "scroll_depth"
	EventTimeOnPage      = "time_on_page"
	EventPageExit        = "page_exit"
	EventPageLoadTime    = "page_load_time"
	EventJavaScriptError = "javascript_error"
	EventButtonClick     = "button_click"
	EventFormSubmit      = "form_submit"
)

// Event is one analytics event.
type Event struct {
	Name       string         `json:"name"`
	Properties map[string]any `json:"properties,omitempty"`
	SessionID  string         `json:"session_id,omitempty"`
	PageURL    string         `json:"page_url,omitempty"`
	UserAgent  string         `json:"user_agent,omitempty"`
	ClientIP   string         `json:"client_ip,omitempty"`
	Time       time.Time      `json:"time"`
}

// Sink receives events. Implementations must be safe for concurrent use.
type Sink interface {
	Report(ctx context.Context, evt Event) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, evt Event) error

func (f SinkFunc) Report(ctx context.Context, evt Event) error {
	return f(ctx, evt)
}

// Emitter accepts events without blocking the caller.
type Emitter interface {
	Emit(evt Event) bool
}
