package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	LogLevel      string

	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int

	DatabaseURL      string
	RedisAddr        string
	RedisPassword    string
	RedisTLS         bool
	LeadDedupeWindow time.Duration

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
	LeadQueueURL        string
	LeadArchiveBucket   string
	LeadTable           string
	LeadTableTTL        time.Duration

	// Lead routing
	ProductName       string
	LeadsInbox        string
	SalesNotifyEmails []string

	// Outbound email
	EmailProvider     string
	EmailFromName     string
	SESFromEmail      string
	SendGridAPIKey    string
	SendGridFromEmail string
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string
	SMTPFromEmail     string

	// Telemetry sinks
	GA4MeasurementID     string
	GA4APISecret         string
	MetaPixelID          string
	MetaAccessToken      string
	TelemetrySessionIdle time.Duration
	TelemetryBuffer      int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", nil),
		RateLimitRPS:       getEnvAsFloat("RATE_LIMIT_RPS", 2),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 10),

		DatabaseURL:      getEnv("DATABASE_URL", ""),
		RedisAddr:        getEnv("REDIS_ADDR", ""),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisTLS:         getEnvAsBool("REDIS_TLS", false),
		LeadDedupeWindow: getEnvAsDuration("LEAD_DEDUPE_WINDOW", 10*time.Minute),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		LeadQueueURL:        getEnv("LEAD_QUEUE_URL", ""),
		LeadArchiveBucket:   getEnv("LEAD_ARCHIVE_BUCKET", ""),
		LeadTable:           getEnv("LEAD_TABLE", ""),
		LeadTableTTL:        getEnvAsDuration("LEAD_TABLE_TTL", 90*24*time.Hour),

		ProductName:       getEnv("PRODUCT_NAME", "RevSnap"),
		LeadsInbox:        getEnv("LEADS_INBOX", "leads@revsnap.ai"),
		SalesNotifyEmails: getEnvAsList("SALES_NOTIFY_EMAILS", nil),

		EmailProvider:     strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "auto"))),
		EmailFromName:     getEnv("EMAIL_FROM_NAME", "RevSnap"),
		SESFromEmail:      getEnv("SES_FROM_EMAIL", ""),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getEnvAsInt("SMTP_PORT", 587),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),
		SMTPFromEmail:     getEnv("SMTP_FROM_EMAIL", ""),

		GA4MeasurementID:     getEnv("GA4_MEASUREMENT_ID", ""),
		GA4APISecret:         getEnv("GA4_API_SECRET", ""),
		MetaPixelID:          getEnv("META_PIXEL_ID", ""),
		MetaAccessToken:      getEnv("META_ACCESS_TOKEN", ""),
		TelemetrySessionIdle: getEnvAsDuration("TELEMETRY_SESSION_IDLE", 30*time.Minute),
		TelemetryBuffer:      getEnvAsInt("TELEMETRY_BUFFER", 256),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated variable, dropping blanks.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
