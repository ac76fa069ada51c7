package leads

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/revsnap-web/internal/observability/metrics"
	"github.com/wolfman30/revsnap-web/pkg/logging"
)

const maxBodyBytes = 64 << 10

var intakeTracer = otel.Tracer("revsnap.internal.leads")

// Submitter accepts validated submissions.
type Submitter interface {
	Submit(ctx context.Context, sub *Submission) (Result, error)
}

// Handler handles HTTP requests for lead intake
type Handler struct {
	svc     Submitter
	metrics *metrics.LeadMetrics
	logger  *logging.Logger
}

// NewHandler creates a new leads handler
func NewHandler(svc Submitter, m *metrics.LeadMetrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		svc:     svc,
		metrics: m,
		logger:  logger,
	}
}

// SubmitResponse acknowledges an accepted submission.
type SubmitResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Type    Type   `json:"type,omitempty"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ServeHTTP handles /api/lead for every method; only POST is accepted.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed"})
		return
	}

	ctx, span := intakeTracer.Start(r.Context(), "leads.intake", trace.WithSpanKind(trace.SpanKindServer))
	defer span.End()
	start := time.Now()
	leadType := "unknown"

	defer func() {
		if rec := recover(); rec != nil {
			err := fmt.Errorf("panic: %v", rec)
			span.RecordError(err)
			span.SetStatus(codes.Error, "panic")
			h.logger.Error("form submission error", "error", err)
			h.metrics.ObserveSubmission(leadType, "error")
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		}
	}()

	sub, err := DecodeSubmission(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		span.RecordError(err)
		h.logger.Warn("failed to decode lead submission", "error", err)
		h.metrics.ObserveSubmission(leadType, "bad_body")
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}
	leadType = sub.Type.MetricLabel()
	sub.RemoteIP = remoteIP(r.RemoteAddr)
	sub.UserAgent = r.UserAgent()
	span.SetAttributes(attribute.String("revsnap.lead_type", string(sub.Type)))

	result, err := h.svc.Submit(ctx, sub)
	h.metrics.ObserveLatency(leadType, time.Since(start).Seconds())
	switch {
	case errors.Is(err, ErrMissingRequiredFields):
		h.metrics.ObserveSubmission(leadType, "invalid")
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Missing required fields"})
		return
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission failed")
		h.logger.Error("form submission error", "error", err, "lead_type", string(sub.Type))
		h.metrics.ObserveSubmission(leadType, "error")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		return
	}

	status := "accepted"
	if result.Duplicate {
		status = "duplicate"
	}
	span.SetAttributes(attribute.String("revsnap.lead_id", sub.ID), attribute.Bool("revsnap.duplicate", result.Duplicate))
	h.metrics.ObserveSubmission(leadType, status)
	writeJSON(w, http.StatusOK, SubmitResponse{
		Success: true,
		Message: "Form submitted successfully",
		Type:    sub.Type,
	})
}

// remoteIP strips the port from addr when it has one.
func remoteIP(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
