// Package submit drives a lead form from validation through delivery, with a
// mailto fallback when the intake endpoint cannot be reached.
package submit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/wolfman30/revsnap-web/internal/form"
	"github.com/wolfman30/revsnap-web/internal/leads"
	"github.com/wolfman30/revsnap-web/pkg/logging"
)

// SubmittingLabel is shown on the submit control while a request is in flight.
const SubmittingLabel = "Submitting..."

// ErrBusy is returned when Submit is called while another submission is running.
var ErrBusy = errors.New("submit: submission already in progress")

// State is the controller's position in the submission lifecycle.
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateSubmitting State = "submitting"
	StateSuccess    State = "success"
	StateFallback   State = "fallback"
)

// Status is how a submission ended.
type Status string

const (
	StatusInvalid  Status = "invalid"
	StatusSent     Status = "sent"
	StatusFallback Status = "fallback"
)

// Outcome describes a finished submission. Cause holds the transport error
// that triggered the fallback.
type Outcome struct {
	Status  Status
	Message string
	Mailto  string
	Cause   error
}

// Presenter renders the page-level effects of a submission.
type Presenter interface {
	ShowSuccess(ctx context.Context, message string) error
	CloseModal(ctx context.Context, modalID string) error
	OpenMailto(ctx context.Context, uri string) error
}

// Controller runs the submit lifecycle for forms on one page.
type Controller struct {
	transport Transport
	presenter Presenter
	mailto    MailtoConfig
	logger    *logging.Logger
	now       func() time.Time
	onSubmit  func(ctx context.Context, f *form.Form)
	observe   func(State)

	mu    sync.Mutex
	state State
}

// Option configures a Controller.
type Option func(*Controller)

// WithMailto overrides the fallback recipient and product name.
func WithMailto(cfg MailtoConfig) Option {
	return func(c *Controller) { c.mailto = cfg }
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock overrides the time source used for the Submitted line.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithSubmitHook runs fn when a submit is attempted, before validation.
func WithSubmitHook(fn func(ctx context.Context, f *form.Form)) Option {
	return func(c *Controller) { c.onSubmit = fn }
}

// WithStateObserver receives every state transition.
func WithStateObserver(fn func(State)) Option {
	return func(c *Controller) { c.observe = fn }
}

// NewController creates a controller.
func NewController(transport Transport, presenter Presenter, opts ...Option) *Controller {
	c := &Controller{
		transport: transport,
		presenter: presenter,
		logger:    logging.Default(),
		now:       time.Now,
		state:     StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
	if c.observe != nil {
		c.observe(s)
	}
}

func (c *Controller) begin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateIdle {
		return false
	}
	c.state = StateValidating
	return true
}

// Submit validates f and delivers it as a leadType lead. The returned error
// reports presenter failures only; a transport failure produces a fallback
// outcome instead.
func (c *Controller) Submit(ctx context.Context, f *form.Form, leadType leads.Type) (out Outcome, err error) {
	if c.onSubmit != nil {
		c.onSubmit(ctx, f)
	}
	if !c.begin() {
		return Outcome{}, ErrBusy
	}
	if c.observe != nil {
		c.observe(StateValidating)
	}
	defer c.setState(StateIdle)

	if !f.ValidateAll() {
		return Outcome{Status: StatusInvalid}, nil
	}

	sub := &leads.Submission{Type: leadType, Fields: f.Values()}

	c.setState(StateSubmitting)
	restore := f.Submit
	f.Submit = form.SubmitButton{Label: SubmittingLabel, Disabled: true, Loading: true}
	defer func() { f.Submit = restore }()

	out.Message = SuccessMessage(leadType)
	var errs []error

	if sendErr := c.transport.Send(ctx, leadType, sub.Fields); sendErr != nil {
		c.logger.Warn("submit: API submission failed, using mailto fallback", "error", sendErr, "form_id", f.ID)
		c.setState(StateFallback)
		out.Status = StatusFallback
		out.Cause = sendErr
		out.Mailto = Mailto(c.mailto, sub, c.now())
		if perr := c.presenter.OpenMailto(ctx, out.Mailto); perr != nil {
			errs = append(errs, fmt.Errorf("open mailto: %w", perr))
		}
	} else {
		c.setState(StateSuccess)
		out.Status = StatusSent
	}

	if perr := c.presenter.ShowSuccess(ctx, out.Message); perr != nil {
		errs = append(errs, fmt.Errorf("show success: %w", perr))
	}
	f.Reset()
	if f.ModalID != "" {
		if perr := c.presenter.CloseModal(ctx, f.ModalID); perr != nil {
			errs = append(errs, fmt.Errorf("close modal: %w", perr))
		}
	}
	return out, errors.Join(errs...)
}
