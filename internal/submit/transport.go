package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wolfman30/revsnap-web/internal/leads"
)

const (
	defaultHTTPTimeout = 15 * time.Second
	leadPath           = "/api/lead"
)

// ErrBadStatus is returned when the intake endpoint answers with a non-2xx status.
var ErrBadStatus = errors.New("submit: unexpected status")

// Transport delivers one submission to the intake endpoint.
type Transport interface {
	Send(ctx context.Context, leadType leads.Type, values leads.Values) error
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, leadType leads.Type, values leads.Values) error

func (f TransportFunc) Send(ctx context.Context, leadType leads.Type, values leads.Values) error {
	return f(ctx, leadType, values)
}

// HTTPTransport posts submissions as JSON to <base>/api/lead. It never retries.
type HTTPTransport struct {
	endpoint   string
	httpClient *http.Client
}

// NewHTTPTransport creates a transport for the site at baseURL. A zero
// timeout uses the default.
func NewHTTPTransport(baseURL string, timeout time.Duration) *HTTPTransport {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &HTTPTransport{
		endpoint:   strings.TrimRight(baseURL, "/") + leadPath,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Endpoint returns the URL submissions are posted to.
func (t *HTTPTransport) Endpoint() string {
	return t.endpoint
}

// RequestBody renders {type, ...values}; a "type" field in values overrides
// the tag while keeping its leading position.
func RequestBody(leadType leads.Type, values leads.Values) ([]byte, error) {
	var body leads.Values
	body.Set("type", leads.Single(string(leadType)))
	for _, key := range values.Keys() {
		v, _ := values.Get(key)
		body.Set(key, v)
	}
	return json.Marshal(body)
}

func (t *HTTPTransport) Send(ctx context.Context, leadType leads.Type, values leads.Values) error {
	body, err := RequestBody(leadType, values)
	if err != nil {
		return fmt.Errorf("submit: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("submit: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("submit: post lead: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w %d", ErrBadStatus, resp.StatusCode)
	}
	return nil
}

var _ Transport = (*HTTPTransport)(nil)
