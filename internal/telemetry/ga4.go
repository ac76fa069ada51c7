package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultGA4Base     = "https://www.google-analytics.com"
	defaultHTTPTimeout = 10 * time.Second
)

// GA4Sink forwards events to Google Analytics 4 via the Measurement Protocol.
type GA4Sink struct {
	measurementID string
	apiSecret     string
	baseURL       string
	httpClient    *http.Client
}

// NewGA4Sink returns nil when the measurement id or api secret is missing.
func NewGA4Sink(measurementID, apiSecret string) *GA4Sink {
	if measurementID == "" || apiSecret == "" {
		return nil
	}
	return &GA4Sink{
		measurementID: measurementID,
		apiSecret:     apiSecret,
		baseURL:       defaultGA4Base,
		httpClient:    &http.Client{Timeout: defaultHTTPTimeout},
	}
}

// SetBaseURL overrides the collection host (useful for testing).
func (s *GA4Sink) SetBaseURL(base string) {
	s.baseURL = base
}

type ga4Payload struct {
	ClientID        string     `json:"client_id"`
	TimestampMicros int64      `json:"timestamp_micros,omitempty"`
	Events          []ga4Event `json:"events"`
}

type ga4Event struct {
	Name   string         `json:"name"`
	Params map[string]any `json:"params,omitempty"`
}

func (s *GA4Sink) Report(ctx context.Context, evt Event) error {
	params := scrubProperties(evt.Properties)
	if params == nil {
		params = make(map[string]any, 1)
	}
	if evt.PageURL != "" {
		if _, ok := params["page_location"]; !ok {
			params["page_location"] = evt.PageURL
		}
	}
	clientID := evt.SessionID
	if clientID == "" {
		clientID = "anonymous"
	}
	payload := ga4Payload{
		ClientID: clientID,
		Events:   []ga4Event{{Name: evt.Name, Params: params}},
	}
	if !evt.Time.IsZero() {
		payload.TimestampMicros = evt.Time.UnixMicro()
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("ga4: marshal payload: %w", err)
	}

	q := url.Values{}
	q.Set("measurement_id", s.measurementID)
	q.Set("api_secret", s.apiSecret)
	endpoint := s.baseURL + "/mp/collect?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("ga4: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ga4: send event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("ga4: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

var _ Sink = (*GA4Sink)(nil)
