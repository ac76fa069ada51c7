package telemetry

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/revsnap-web/internal/observability/metrics"
	"github.com/wolfman30/revsnap-web/pkg/logging"
)

type collectSink struct {
	mu     sync.Mutex
	events []Event
}

func (c *collectSink) Report(_ context.Context, evt Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, evt)
	return nil
}

func (c *collectSink) names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.events))
	for _, evt := range c.events {
		out = append(out, evt.Name)
	}
	return out
}

func TestTracker_DeliversInOrderAndDrainsOnClose(t *testing.T) {
	sink := &collectSink{}
	tracker := NewTracker(logging.NewWithWriter("error", &bytes.Buffer{}), []Sink{sink, nil})

	for _, name := range []string{"a", "b", "c"} {
		require.True(t, tracker.Track(name, nil))
	}
	require.NoError(t, tracker.Close(context.Background()))

	assert.Equal(t, []string{"a", "b", "c"}, sink.names())
	assert.False(t, tracker.Track("late", nil))
	require.NoError(t, tracker.Close(context.Background()))
}

func TestTracker_StampsTime(t *testing.T) {
	sink := &collectSink{}
	tracker := NewTracker(nil, []Sink{sink})
	tracker.Emit(Event{Name: "stamped"})
	require.NoError(t, tracker.Close(context.Background()))

	require.Len(t, sink.events, 1)
	assert.False(t, sink.events[0].Time.IsZero())
}

func TestTracker_DropsWhenBufferFull(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	blocking := SinkFunc(func(ctx context.Context, evt Event) error {
		once.Do(func() { close(started) })
		<-release
		return nil
	})

	reg := prometheus.NewRegistry()
	m := metrics.NewTelemetryMetrics(reg)
	var logs bytes.Buffer
	tracker := NewTracker(logging.NewWithWriter("warn", &logs), []Sink{blocking}, WithBuffer(1), WithTrackerMetrics(m))

	require.True(t, tracker.Track("first", nil))
	<-started
	require.True(t, tracker.Track("second", nil))
	assert.False(t, tracker.Track("third", nil))

	close(release)
	require.NoError(t, tracker.Close(context.Background()))

	expected := `
# HELP revsnap_telemetry_events_dropped_total Telemetry events dropped because the buffer was full
# TYPE revsnap_telemetry_events_dropped_total counter
revsnap_telemetry_events_dropped_total 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "revsnap_telemetry_events_dropped_total"))
	assert.Contains(t, logs.String(), "buffer full")
}

func TestTracker_SinkErrorsAreLogged(t *testing.T) {
	var logs bytes.Buffer
	failing := SinkFunc(func(context.Context, Event) error { return errors.New("upstream down") })
	ok := &collectSink{}
	tracker := NewTracker(logging.NewWithWriter("error", &logs), []Sink{failing, ok})

	tracker.Track("page_exit", nil)
	require.NoError(t, tracker.Close(context.Background()))

	assert.Contains(t, logs.String(), "upstream down")
	assert.Equal(t, []string{"page_exit"}, ok.names())
}

func TestTracker_CloseHonorsContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	blocking := SinkFunc(func(context.Context, Event) error {
		<-release
		return nil
	})
	tracker := NewTracker(nil, []Sink{blocking})
	tracker.Track("stuck", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := tracker.Close(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMetricsSinkCountsEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink := NewMetricsSink(metrics.NewTelemetryMetrics(reg))

	require.NoError(t, sink.Report(context.Background(), Event{Name: EventScrollDepth}))
	require.NoError(t, sink.Report(context.Background(), Event{Name: EventScrollDepth}))
	require.NoError(t, sink.Report(context.Background(), Event{Name: EventPageExit}))

	count, err := testutil.GatherAndCount(reg, "revsnap_telemetry_events_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestLogSinkWritesEvent(t *testing.T) {
	var logs bytes.Buffer
	sink := NewLogSink(logging.NewWithWriter("info", &logs))

	require.NoError(t, sink.Report(context.Background(), Event{Name: EventButtonClick, SessionID: "s1"}))

	assert.Contains(t, logs.String(), `"msg":"track event"`)
	assert.Contains(t, logs.String(), `"event":"button_click"`)
}
