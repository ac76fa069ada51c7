package telemetry

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/revsnap-web/pkg/logging"
)

const (
	maxBeaconBytes = 16 << 10

	beaconPageView = "page_view"
	beaconScroll   = "scroll"
)

var beaconTracer = otel.Tracer("revsnap.internal.telemetry")

// Beacon is one client report posted to /api/events.
type Beacon struct {
	SessionID  string         `json:"session_id"`
	Event      string         `json:"event"`
	PageURL    string         `json:"page_url"`
	Properties map[string]any `json:"properties"`
}

// Handler accepts page beacons and drives the matching session.
type Handler struct {
	registry *Registry
	logger   *logging.Logger
}

// NewHandler creates a beacon handler.
func NewHandler(registry *Registry, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{registry: registry, logger: logger}
}

type beaconError struct {
	Error string `json:"error"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, beaconError{Error: "Method not allowed"})
		return
	}

	_, span := beaconTracer.Start(r.Context(), "telemetry.beacon", trace.WithSpanKind(trace.SpanKindServer))
	defer span.End()

	var b Beacon
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBeaconBytes)).Decode(&b); err != nil {
		span.RecordError(err)
		writeJSON(w, http.StatusBadRequest, beaconError{Error: "Invalid request body"})
		return
	}
	b.SessionID = strings.TrimSpace(b.SessionID)
	b.Event = strings.TrimSpace(b.Event)
	if b.SessionID == "" || b.Event == "" {
		writeJSON(w, http.StatusBadRequest, beaconError{Error: "session_id and event are required"})
		return
	}
	span.SetAttributes(attribute.String("revsnap.beacon_event", b.Event))

	h.Dispatch(b, r.UserAgent(), r.RemoteAddr)
	w.WriteHeader(http.StatusAccepted)
}

// Dispatch applies a beacon to its session.
func (h *Handler) Dispatch(b Beacon, userAgent, clientIP string) {
	switch b.Event {
	case beaconPageView:
		h.registry.Open(b.SessionID, b.PageURL, userAgent, clientIP)
		return
	case EventPageExit:
		if !h.registry.Close(b.SessionID) {
			h.logger.Debug("telemetry: exit for unknown session", "session_id", b.SessionID)
		}
		return
	}

	s := h.registry.Ensure(b.SessionID, b.PageURL, userAgent, clientIP)
	p := b.Properties
	switch b.Event {
	case beaconScroll:
		s.Scroll(numberProp(p, "scroll_top"), numberProp(p, "doc_height"), numberProp(p, "win_height"))
	case EventPageLoadTime:
		s.PageLoad(numberProp(p, "load_time"))
	case EventButtonClick:
		s.ButtonClick(stringProp(p, "button_text"), stringProp(p, "button_type"), stringProp(p, "page_section"))
	case EventFormSubmit:
		s.FormSubmit(stringProp(p, "form_id"))
	case EventJavaScriptError:
		s.Error(stringProp(p, "message"), stringProp(p, "filename"), int(numberProp(p, "lineno")))
	default:
		s.Track(b.Event, p)
	}
}

func numberProp(props map[string]any, key string) float64 {
	switch v := props[key].(type) {
	case float64:
		return v
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f
	}
	return 0
}

func stringProp(props map[string]any, key string) string {
	switch v := props[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
