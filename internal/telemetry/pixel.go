package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const defaultGraphAPIBase = "https://graph.facebook.com/v18.0"

// PixelSink forwards events to the Meta Conversions API for the site pixel.
type PixelSink struct {
	pixelID     string
	accessToken string
	baseURL     string
	httpClient  *http.Client
}

// NewPixelSink returns nil when the pixel id or access token is missing.
func NewPixelSink(pixelID, accessToken string) *PixelSink {
	if pixelID == "" || accessToken == "" {
		return nil
	}
	return &PixelSink{
		pixelID:     pixelID,
		accessToken: accessToken,
		baseURL:     defaultGraphAPIBase,
		httpClient:  &http.Client{Timeout: defaultHTTPTimeout},
	}
}

// SetBaseURL overrides the Graph API base URL (useful for testing).
func (s *PixelSink) SetBaseURL(base string) {
	s.baseURL = base
}

type pixelPayload struct {
	Data []pixelEvent `json:"data"`
}

type pixelEvent struct {
	EventName      string         `json:"event_name"`
	EventTime      int64          `json:"event_time"`
	ActionSource   string         `json:"action_source"`
	EventSourceURL string         `json:"event_source_url,omitempty"`
	UserData       pixelUserData  `json:"user_data"`
	CustomData     map[string]any `json:"custom_data,omitempty"`
}

type pixelUserData struct {
	ClientIPAddress string `json:"client_ip_address,omitempty"`
	ClientUserAgent string `json:"client_user_agent,omitempty"`
	ExternalID      string `json:"external_id,omitempty"`
}

type pixelResponse struct {
	EventsReceived int `json:"events_received"`
	Error          *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error,omitempty"`
}

func (s *PixelSink) Report(ctx context.Context, evt Event) error {
	payload := pixelPayload{Data: []pixelEvent{{
		EventName:      evt.Name,
		EventTime:      evt.Time.Unix(),
		ActionSource:   "website",
		EventSourceURL: evt.PageURL,
		UserData: pixelUserData{
			ClientIPAddress: evt.ClientIP,
			ClientUserAgent: evt.UserAgent,
			ExternalID:      evt.SessionID,
		},
		CustomData: scrubProperties(evt.Properties),
	}}}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("pixel: marshal payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/events?access_token=%s", s.baseURL, url.PathEscape(s.pixelID), url.QueryEscape(s.accessToken))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("pixel: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("pixel: send event: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return fmt.Errorf("pixel: read response: %w", err)
	}
	var out pixelResponse
	if len(respBody) > 0 {
		_ = json.Unmarshal(respBody, &out)
	}
	if out.Error != nil {
		return fmt.Errorf("pixel: API error %d: %s", out.Error.Code, out.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pixel: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

var _ Sink = (*PixelSink)(nil)
