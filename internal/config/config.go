package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	PhoneMatchExact = "exact"
	PhoneMatchE164  = "e164"

	minBatchSize = 50
	maxBatchSize = 100
)

// Config holds all application configuration
type Config struct {
	Port        string
	DatabaseURL string
	LogLevel    string

	CORSAllowedOrigins []string
	MaxUploadBytes     int64

	// Calling workflow
	CallWebhookURL  string
	WebhookTimeout  time.Duration
	DispatchWorkers int

	// Import
	ImportBatchSize       int
	ListReconcileInterval time.Duration

	PhoneMatchMode     string
	PhoneDefaultRegion string

	RabbitMQURL string

	// Mail
	MailHost         string
	MailPort         int
	MailUser         string
	MailPassword     string
	MailFrom         string
	DispatchReportTo string
}

// Load reads .env (when present) and then the process environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		MaxUploadBytes:     int64(getEnvInt("MAX_UPLOAD_MB", 10)) << 20,

		CallWebhookURL:  strings.TrimSpace(os.Getenv("CALL_WEBHOOK_URL")),
		WebhookTimeout:  getEnvDuration("WEBHOOK_TIMEOUT", 30*time.Second),
		DispatchWorkers: max(getEnvInt("DISPATCH_WORKERS", 1), 1),

		ImportBatchSize:       clampBatchSize(getEnvInt("IMPORT_BATCH_SIZE", maxBatchSize)),
		ListReconcileInterval: getEnvDuration("LIST_RECONCILE_INTERVAL", 15*time.Minute),

		PhoneMatchMode:     phoneMatchMode(getEnv("PHONE_MATCH_MODE", PhoneMatchExact)),
		PhoneDefaultRegion: strings.ToUpper(getEnv("PHONE_DEFAULT_REGION", "US")),

		RabbitMQURL: getEnv("RABBITMQ_URL", ""),

		MailHost:         getEnv("MAIL_HOST", ""),
		MailPort:         getEnvInt("MAIL_PORT", 587),
		MailUser:         getEnv("MAIL_USER", ""),
		MailPassword:     getEnv("MAIL_PASS", ""),
		MailFrom:         getEnv("MAIL_FROM", "no-reply@localhost"),
		DispatchReportTo: getEnv("DISPATCH_REPORT_TO", ""),
	}
}

func (c *Config) MailConfigured() bool {
	return c.MailHost != "" && c.DispatchReportTo != ""
}

func clampBatchSize(n int) int {
	if n < minBatchSize {
		return minBatchSize
	}
	if n > maxBatchSize {
		return maxBatchSize
	}
	return n
}

func phoneMatchMode(v string) string {
	if strings.EqualFold(v, PhoneMatchE164) {
		return PhoneMatchE164
	}
	return PhoneMatchExact
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func getEnvList(key string, fallback []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
