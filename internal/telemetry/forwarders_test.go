package telemetry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForwardersDisabledWithoutCredentials(t *testing.T) {
	assert.Nil(t, NewGA4Sink("", "secret"))
	assert.Nil(t, NewGA4Sink("G-123", ""))
	assert.Nil(t, NewPixelSink("", "token"))
	assert.Nil(t, NewPixelSink("42", ""))
}

func TestGA4Sink_PostsMeasurementProtocol(t *testing.T) {
	var (
		gotQuery map[string]string
		gotBody  ga4Payload
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/mp/collect", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		gotQuery = map[string]string{
			"measurement_id": r.URL.Query().Get("measurement_id"),
			"api_secret":     r.URL.Query().Get("api_secret"),
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewGA4Sink("G-TEST", "s3cret")
	sink.SetBaseURL(srv.URL)

	err := sink.Report(context.Background(), Event{
		Name:       EventScrollDepth,
		SessionID:  "sess-9",
		PageURL:    "https://revsnap.ai/",
		Properties: map[string]any{"depth_percentage": 50},
		Time:       time.Unix(1700000000, 0),
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"measurement_id": "G-TEST", "api_secret": "s3cret"}, gotQuery)
	assert.Equal(t, "sess-9", gotBody.ClientID)
	assert.Equal(t, int64(1700000000000000), gotBody.TimestampMicros)
	require.Len(t, gotBody.Events, 1)
	assert.Equal(t, EventScrollDepth, gotBody.Events[0].Name)
	assert.Equal(t, float64(50), gotBody.Events[0].Params["depth_percentage"])
	assert.Equal(t, "https://revsnap.ai/", gotBody.Events[0].Params["page_location"])
}

func TestGA4Sink_ReportsBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	sink := NewGA4Sink("G-TEST", "s3cret")
	sink.SetBaseURL(srv.URL)

	err := sink.Report(context.Background(), Event{Name: EventPageExit})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestPixelSink_PostsConversionsEvent(t *testing.T) {
	var (
		gotPath  string
		gotToken string
		gotBody  pixelPayload
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.URL.Query().Get("access_token")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"events_received":1}`))
	}))
	defer srv.Close()

	sink := NewPixelSink("123456", "tok en")
	sink.SetBaseURL(srv.URL)

	err := sink.Report(context.Background(), Event{
		Name:       EventFormSubmit,
		SessionID:  "sess-1",
		PageURL:    "https://revsnap.ai/#pilot",
		UserAgent:  "Mozilla/5.0",
		ClientIP:   "203.0.113.5",
		Properties: map[string]any{"form_type": "pilot"},
		Time:       time.Unix(1700000100, 0),
	})
	require.NoError(t, err)

	assert.Equal(t, "/123456/events", gotPath)
	assert.Equal(t, "tok en", gotToken)
	require.Len(t, gotBody.Data, 1)
	evt := gotBody.Data[0]
	assert.Equal(t, EventFormSubmit, evt.EventName)
	assert.Equal(t, int64(1700000100), evt.EventTime)
	assert.Equal(t, "website", evt.ActionSource)
	assert.Equal(t, "https://revsnap.ai/#pilot", evt.EventSourceURL)
	assert.Equal(t, "203.0.113.5", evt.UserData.ClientIPAddress)
	assert.Equal(t, "Mozilla/5.0", evt.UserData.ClientUserAgent)
	assert.Equal(t, "pilot", evt.CustomData["form_type"])
}

func TestPixelSink_SurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid OAuth access token","code":190}}`))
	}))
	defer srv.Close()

	sink := NewPixelSink("123456", "bad")
	sink.SetBaseURL(srv.URL)

	err := sink.Report(context.Background(), Event{Name: EventPageExit, Time: time.Now()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "190")
	assert.Contains(t, err.Error(), "Invalid OAuth access token")
}

func TestScrubPII(t *testing.T) {
	got := ScrubPII("contact ada@example.com phone:555-123-4567 about order 42")
	if got != "contact [EMAIL] phone:[PHONE] about order 42" {
		t.Fatalf("unexpected scrub result %q", got)
	}
	props := scrubProperties(map[string]any{"message": "bad input a@b.io", "lineno": 3})
	if props["message"] != "bad input [EMAIL]" || props["lineno"] != 3 {
		t.Fatalf("unexpected scrubbed properties %v", props)
	}
	if scrubProperties(nil) != nil {
		t.Fatalf("expected nil for nil properties")
	}
}
