package bootstrap

import (
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/revsnap-web/internal/compliance"
	appconfig "github.com/wolfman30/revsnap-web/internal/config"
	"github.com/wolfman30/revsnap-web/internal/leads"
	"github.com/wolfman30/revsnap-web/internal/notify"
	"github.com/wolfman30/revsnap-web/internal/observability/metrics"
	"github.com/wolfman30/revsnap-web/pkg/logging"
)

// LeadBackends are the optional stores and clients behind lead intake. Leave
// a field nil to skip it.
type LeadBackends struct {
	Pool    *pgxpool.Pool
	SQL     *sql.DB
	Redis   *redis.Client
	Dynamo  leads.DynamoAPI
	S3      leads.S3API
	SQS     leads.SQSAPI
	Email   notify.EmailSender
	Metrics *metrics.LeadMetrics
}

// BuildLeadService wires the primary recorders, best-effort follow-ups and
// duplicate guard from config. With no durable store the submission is only
// logged.
func BuildLeadService(cfg *appconfig.Config, b LeadBackends, logger *logging.Logger) *leads.Service {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg == nil {
		cfg = &appconfig.Config{}
	}

	recorders := []leads.Recorder{leads.NewLogRecorder(logger)}
	if b.Pool != nil {
		recorders = append(recorders, leads.NewPostgresRepository(b.Pool))
		logger.Info("lead store enabled", "backend", "postgres")
	}
	if b.Dynamo != nil && cfg.LeadTable != "" {
		recorders = append(recorders, leads.NewDynamoRepository(b.Dynamo, cfg.LeadTable, cfg.LeadTableTTL))
		logger.Info("lead store enabled", "backend", "dynamodb", "table", cfg.LeadTable)
	}

	var followUps []leads.FollowUp
	if b.S3 != nil && cfg.LeadArchiveBucket != "" {
		followUps = append(followUps, leads.FollowUp{Name: "archive", Recorder: leads.NewArchive(b.S3, cfg.LeadArchiveBucket, logger)})
	}
	if b.SQS != nil && cfg.LeadQueueURL != "" {
		followUps = append(followUps, leads.FollowUp{Name: "queue", Recorder: leads.NewQueuePublisher(b.SQS, cfg.LeadQueueURL)})
	}
	if b.Email != nil && len(cfg.SalesNotifyEmails) > 0 {
		notifier := notify.NewService(b.Email, notify.Config{Recipients: cfg.SalesNotifyEmails, Product: cfg.ProductName}, logger)
		followUps = append(followUps, leads.FollowUp{Name: "notify", Recorder: notifier})
	}
	if b.SQL != nil {
		followUps = append(followUps, leads.FollowUp{Name: "consent", Recorder: compliance.NewConsentLog(b.SQL)})
	}
	for _, f := range followUps {
		logger.Info("lead follow-up enabled", "name", f.Name)
	}

	opts := []leads.Option{leads.WithFollowUps(followUps...), leads.WithMetrics(b.Metrics)}
	if guard := leads.NewRedisDuplicateGuard(b.Redis, cfg.LeadDedupeWindow); guard != nil {
		opts = append(opts, leads.WithDuplicateGuard(guard))
		logger.Info("lead duplicate suppression enabled", "window", cfg.LeadDedupeWindow.String())
	}
	return leads.NewService(logger, recorders, opts...)
}
