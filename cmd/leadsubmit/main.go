// Command leadsubmit fills in one of the site's lead forms from flags and
// submits it through the same controller the pages use. When the API is
// unreachable it prints the mailto link a visitor would have been handed.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	appconfig "github.com/wolfman30/revsnap-web/internal/config"
	"github.com/wolfman30/revsnap-web/internal/form"
	"github.com/wolfman30/revsnap-web/internal/leads"
	"github.com/wolfman30/revsnap-web/internal/submit"
	"github.com/wolfman30/revsnap-web/internal/telemetry"
	"github.com/wolfman30/revsnap-web/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	endpoint     string
	leadType     string
	recipient    string
	product      string
	logLevel     string
	timeout      time.Duration
	consent      bool
	values       map[string]string
	integrations []string
}

// textFlags maps flag names to form field names.
var textFlags = []struct{ flag, field, usage string }{
	{"first-name", leads.FieldFirstName, "first name"},
	{"last-name", leads.FieldLastName, "last name"},
	{"email", leads.FieldEmail, "work email"},
	{"company", leads.FieldCompany, "company name"},
	{"phone", leads.FieldPhone, "phone number"},
	{"website", leads.FieldWebsite, "company website"},
	{"revenue", leads.FieldRevenue, "monthly revenue band"},
	{"use-case", leads.FieldUseCase, "what you want to use RevSnap for"},
	{"estimates", leads.FieldEstimates, "estimates sent per month (pilot)"},
	{"start-date", leads.FieldStartDate, "preferred start date, YYYY-MM-DD (pilot)"},
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	cfg := appconfig.Load()
	opts := &options{values: make(map[string]string)}

	fs := flag.NewFlagSet("leadsubmit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	endpoint := cfg.PublicBaseURL
	if endpoint == "" {
		endpoint = "http://localhost:" + cfg.Port
	}
	fs.StringVar(&opts.endpoint, "endpoint", endpoint, "site base URL")
	fs.StringVar(&opts.leadType, "type", string(leads.TypeContact), "lead type: demo, pilot or contact")
	fs.StringVar(&opts.recipient, "mailto", cfg.LeadsInbox, "fallback mailto recipient")
	fs.StringVar(&opts.product, "product", cfg.ProductName, "product name used in the fallback subject")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "log level")
	fs.DurationVar(&opts.timeout, "timeout", 10*time.Second, "API request timeout")
	fs.BoolVar(&opts.consent, "consent", false, "tick the consent checkbox")
	fs.Func("integration", "integration to request (pilot, repeatable)", func(v string) error {
		if v = strings.TrimSpace(v); v != "" {
			opts.integrations = append(opts.integrations, v)
		}
		return nil
	})
	ptrs := make(map[string]*string, len(textFlags))
	for _, tf := range textFlags {
		ptrs[tf.field] = fs.String(tf.flag, "", tf.usage)
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	for field, p := range ptrs {
		if v := strings.TrimSpace(*p); v != "" {
			opts.values[field] = v
		}
	}
	return opts, nil
}

// buildForm returns the form for opts.leadType with every flag value filled in.
// Values for fields the form does not have are ignored.
func buildForm(opts *options) *form.Form {
	leadType := leads.Type(strings.ToLower(strings.TrimSpace(opts.leadType)))
	var f *form.Form
	if leadType == leads.TypePilot {
		f = form.PilotForm(opts.integrations...)
		for _, integration := range opts.integrations {
			f.Check(leads.FieldIntegrations, integration)
		}
	} else {
		f = form.ForType(leadType)
	}
	for name, value := range opts.values {
		if field := f.Field(name); field != nil && field.Type != form.Checkbox {
			field.Input(value)
		}
	}
	if opts.consent {
		f.Check(leads.FieldConsent, "")
	}
	return f
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return 2
	}
	logger := logging.NewWithWriter(opts.logLevel, stderr)

	tracker := telemetry.NewTracker(logger, []telemetry.Sink{telemetry.NewLogSink(logger)})
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = tracker.Close(closeCtx)
	}()
	session := telemetry.NewSession(uuid.NewString(), opts.endpoint, tracker, telemetry.WithSessionLogger(logger))
	defer session.Teardown()

	leadType := leads.Type(strings.ToLower(strings.TrimSpace(opts.leadType)))
	f := buildForm(opts)
	controller := submit.NewController(
		submit.NewHTTPTransport(opts.endpoint, opts.timeout),
		&terminalPresenter{out: stdout},
		submit.WithMailto(submit.MailtoConfig{Recipient: opts.recipient, Product: opts.product}),
		submit.WithLogger(logger),
		submit.WithSubmitHook(func(_ context.Context, f *form.Form) { session.FormSubmit(f.ID) }),
	)

	out, err := controller.Submit(ctx, f, leadType)
	if err != nil {
		fmt.Fprintf(stderr, "submit: %v\n", err)
		return 1
	}
	if out.Status == submit.StatusInvalid {
		printErrors(stderr, f.Errors())
		return 1
	}
	return 0
}

func printErrors(w io.Writer, errs map[string]string) {
	names := make([]string, 0, len(errs))
	for name := range errs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "%s: %s\n", name, errs[name])
	}
}

// terminalPresenter renders submission effects as lines of text.
type terminalPresenter struct {
	out io.Writer
}

func (p *terminalPresenter) ShowSuccess(_ context.Context, message string) error {
	_, err := fmt.Fprintln(p.out, message)
	return err
}

func (p *terminalPresenter) CloseModal(context.Context, string) error { return nil }

func (p *terminalPresenter) OpenMailto(_ context.Context, uri string) error {
	_, err := fmt.Fprintf(p.out, "Could not reach the API. Send your request by email:\n%s\n", uri)
	return err
}
