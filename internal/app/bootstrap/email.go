package bootstrap

import (
	appconfig "github.com/wolfman30/revsnap-web/internal/config"
	"github.com/wolfman30/revsnap-web/internal/notify"
	"github.com/wolfman30/revsnap-web/pkg/logging"
)

const (
	emailProviderAuto     = "auto"
	emailProviderSES      = "ses"
	emailProviderSendGrid = "sendgrid"
	emailProviderSMTP     = "smtp"
	emailProviderStub     = "stub"
)

// BuildEmailSender picks the outbound mail provider. "auto" prefers SES,
// then SendGrid, then SMTP. A provider missing its settings falls back to
// the stub sender, which only logs.
func BuildEmailSender(cfg *appconfig.Config, ses notify.SESAPI, logger *logging.Logger) (notify.EmailSender, string) {
	if logger == nil {
		logger = logging.Default()
	}
	stub := func(reason string) (notify.EmailSender, string) {
		if reason != "" {
			logger.Warn("email provider not configured; using stub sender", "reason", reason)
		}
		return notify.NewStubEmailSender(logger), emailProviderStub
	}
	if cfg == nil {
		return stub("missing config")
	}

	buildSES := func() notify.EmailSender {
		if s := notify.NewSESSender(ses, notify.SESConfig{FromEmail: cfg.SESFromEmail, FromName: cfg.EmailFromName}, logger); s != nil {
			return s
		}
		return nil
	}
	buildSendGrid := func() notify.EmailSender {
		if s := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.EmailFromName,
		}, logger); s != nil {
			return s
		}
		return nil
	}
	buildSMTP := func() notify.EmailSender {
		if s := notify.NewSMTPSender(notify.SMTPConfig{
			Host:      cfg.SMTPHost,
			Port:      cfg.SMTPPort,
			Username:  cfg.SMTPUsername,
			Password:  cfg.SMTPPassword,
			FromEmail: cfg.SMTPFromEmail,
			FromName:  cfg.EmailFromName,
		}, logger); s != nil {
			return s
		}
		return nil
	}

	builders := map[string]func() notify.EmailSender{
		emailProviderSES:      buildSES,
		emailProviderSendGrid: buildSendGrid,
		emailProviderSMTP:     buildSMTP,
	}

	switch cfg.EmailProvider {
	case emailProviderStub:
		return stub("")
	case emailProviderSES, emailProviderSendGrid, emailProviderSMTP:
		if sender := builders[cfg.EmailProvider](); sender != nil {
			return sender, cfg.EmailProvider
		}
		return stub(cfg.EmailProvider + " settings incomplete")
	case "", emailProviderAuto:
		for _, name := range []string{emailProviderSES, emailProviderSendGrid, emailProviderSMTP} {
			if sender := builders[name](); sender != nil {
				return sender, name
			}
		}
		return stub("no provider credentials found")
	default:
		return stub("unknown provider " + cfg.EmailProvider)
	}
}
