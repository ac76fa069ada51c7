package telemetry

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/wolfman30/revsnap-web/pkg/logging"
)

const (
	tickInterval    = 10 * time.Second
	tickSeconds     = 10
	scrollThrottle  = 250 * time.Millisecond
	unknownSection  = "unknown"
	formIDSuffix    = "-form"
	buttonPrimary   = "primary"
	buttonSecondary = "secondary"
)

var (
	scrollThresholds  = []int{25, 50, 75, 90, 100}
	timeOnPageMarkers = map[int]bool{30: true, 60: true, 120: true, 300: true}
)

// Session tracks one page view: scroll depth, time on page and the events
// derived from them.
type Session struct {
	ID        string
	PageURL   string
	UserAgent string
	ClientIP  string

	emitter Emitter
	logger  *logging.Logger
	now     func() time.Time
	scroll  *rate.Sometimes
	// settle re-evaluates the last scroll position once scrolling stops, so
	// a position dropped by the throttle still counts.
	settle     func()
	stopSettle func()
	scrollWait time.Duration

	mu            sync.Mutex
	pendingScroll int
	maxScroll     int
	fired         map[int]bool
	timeOnPage    int
	lastSeen      time.Time
	stop          context.CancelFunc
	ended         bool
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithScrollThrottle sets the minimum spacing of scroll evaluations. Zero
// evaluates every call.
func WithScrollThrottle(d time.Duration) SessionOption {
	return func(s *Session) {
		if d <= 0 {
			s.scroll = &rate.Sometimes{Every: 1}
			s.scrollWait = 0
			return
		}
		s.scroll = &rate.Sometimes{Interval: d}
		s.scrollWait = d
	}
}

// WithSessionClock overrides the time source.
func WithSessionClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// WithSessionLogger sets the logger.
func WithSessionLogger(logger *logging.Logger) SessionOption {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSession creates a session for one page view.
func NewSession(id, pageURL string, emitter Emitter, opts ...SessionOption) *Session {
	s := &Session{
		ID:      id,
		PageURL: pageURL,
		emitter: emitter,
		logger:  logging.Default(),
		now:     time.Now,
		scroll:     &rate.Sometimes{Interval: scrollThrottle},
		scrollWait: scrollThrottle,
		fired:      make(map[int]bool, len(scrollThresholds)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.scrollWait > 0 {
		s.settle, s.stopSettle = Debounce(s.settleScroll, s.scrollWait)
	}
	s.lastSeen = s.now()
	return s
}

// Track emits a named event for this page view.
func (s *Session) Track(name string, props map[string]any) {
	if props == nil {
		props = map[string]any{}
	}
	s.emitter.Emit(Event{
		Name:       name,
		Properties: props,
		SessionID:  s.ID,
		PageURL:    s.PageURL,
		UserAgent:  s.UserAgent,
		ClientIP:   s.ClientIP,
		Time:       s.now(),
	})
}

// Touch records beacon activity for idle reaping.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastSeen = s.now()
	s.mu.Unlock()
}

// LastSeen returns the time of the last beacon.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// ScrollPercent converts a scroll position to a percentage in [0,100]. A
// page that cannot scroll counts as fully read.
func ScrollPercent(scrollTop, docHeight, winHeight float64) int {
	scrollable := docHeight - winHeight
	if scrollable <= 0 {
		return 100
	}
	pct := int(math.Round(scrollTop / scrollable * 100))
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	}
	return pct
}

// Scroll evaluates a scroll position. On a new maximum, scroll_depth fires
// once for each threshold reached this page view.
func (s *Session) Scroll(scrollTop, docHeight, winHeight float64) {
	pct := ScrollPercent(scrollTop, docHeight, winHeight)
	s.mu.Lock()
	s.pendingScroll = pct
	s.mu.Unlock()

	s.scroll.Do(func() { s.recordScroll(pct) })
	if s.settle != nil {
		s.settle()
	}
}

func (s *Session) settleScroll() {
	s.mu.Lock()
	pct := s.pendingScroll
	s.mu.Unlock()
	s.recordScroll(pct)
}

func (s *Session) recordScroll(pct int) {
	s.mu.Lock()
	if s.ended || pct <= s.maxScroll {
		s.mu.Unlock()
		return
	}
	s.maxScroll = pct
	var reached []int
	for _, th := range scrollThresholds {
		if pct >= th && !s.fired[th] {
			s.fired[th] = true
			reached = append(reached, th)
		}
	}
	pageURL := s.PageURL
	s.mu.Unlock()

	for _, th := range reached {
		s.Track(EventScrollDepth, map[string]any{
			"depth_percentage": th,
			"page_url":         pageURL,
		})
	}
}

// MaxScroll returns the deepest scroll percentage seen.
func (s *Session) MaxScroll() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxScroll
}

// Tick advances time on page by one interval and fires milestones.
func (s *Session) Tick() {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return
	}
	s.timeOnPage += tickSeconds
	seconds := s.timeOnPage
	s.mu.Unlock()

	if timeOnPageMarkers[seconds] {
		s.Track(EventTimeOnPage, map[string]any{
			"seconds":  seconds,
			"page_url": s.PageURL,
		})
	}
}

// TimeOnPage returns the elapsed seconds counted by Tick.
func (s *Session) TimeOnPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeOnPage
}

// Start runs the time-on-page ticker until ctx is done or Teardown is called.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	if s.stop != nil || s.ended {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	s.stop = cancel
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(tickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Tick()
			}
		}
	}()
}

// PageLoad reports the page load time in milliseconds.
func (s *Session) PageLoad(ms float64) {
	s.Track(EventPageLoadTime, map[string]any{"load_time": ms})
}

// ButtonClick reports a CTA click. kind is "primary" or "secondary".
func (s *Session) ButtonClick(text, kind, section string) {
	if kind != buttonPrimary {
		kind = buttonSecondary
	}
	if strings.TrimSpace(section) == "" {
		section = unknownSection
	}
	s.Track(EventButtonClick, map[string]any{
		"button_text":  strings.TrimSpace(text),
		"button_type":  kind,
		"page_section": section,
	})
}

// FormSubmit reports a submit attempt on the form with the given id.
func (s *Session) FormSubmit(formID string) {
	s.Track(EventFormSubmit, map[string]any{
		"form_type": strings.Replace(formID, formIDSuffix, "", 1),
		"form_id":   formID,
	})
}

// Error reports an uncaught client error.
func (s *Session) Error(message, filename string, line int) {
	s.logger.Error("javascript error", "message", message, "filename", filename, "lineno", line, "session_id", s.ID)
	s.Track(EventJavaScriptError, map[string]any{
		"message":  message,
		"filename": filename,
		"lineno":   line,
	})
}

// Teardown stops the ticker and fires page_exit. Later calls do nothing.
func (s *Session) Teardown() {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return
	}
	s.ended = true
	if s.stop != nil {
		s.stop()
		s.stop = nil
	}
	if s.stopSettle != nil {
		s.stopSettle()
	}
	timeOnPage, maxScroll := s.timeOnPage, s.maxScroll
	s.mu.Unlock()

	s.Track(EventPageExit, map[string]any{
		"time_on_page":     timeOnPage,
		"max_scroll_depth": maxScroll,
	})
}

// Ended reports whether Teardown has run.
func (s *Session) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

// Reset prepares the session for a new page view. The ticker is stopped.
func (s *Session) Reset(pageURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		s.stop()
		s.stop = nil
	}
	if s.stopSettle != nil {
		s.stopSettle()
	}
	if pageURL != "" {
		s.PageURL = pageURL
	}
	s.pendingScroll = 0
	s.maxScroll = 0
	s.timeOnPage = 0
	s.fired = make(map[int]bool, len(scrollThresholds))
	s.ended = false
	s.lastSeen = s.now()
}
