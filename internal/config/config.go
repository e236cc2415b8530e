package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"mathblog/internal/newsletter"
	"mathblog/pkg/db"
)

// Config is the full application configuration, assembled once at startup.
// Components receive the sections they need; nothing reads the environment
// after Load returns.
type Config struct {
	HTTP       HTTP
	Database   db.Config
	Redis      Redis
	Resend     Resend
	Newsletter Newsletter
	Sentry     Sentry
	Storage    Storage
}

type HTTP struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type Redis struct {
	// URL is optional; without it the subscribe rate limiter is disabled.
	URL string
}

type Resend struct {
	APIKey      string
	SenderEmail string
	SenderName  string
}

type Newsletter struct {
	Pipeline newsletter.Config

	// AdminToken authenticates the admin API. Empty disables admin routes.
	AdminToken string

	// CronSecret authenticates the scheduled-send trigger endpoint.
	CronSecret string

	// DoubleOptIn requires email confirmation before a subscriber receives
	// sends. Off by default to match single-opt-in deployments.
	DoubleOptIn bool

	// PollInterval is how often the in-process scheduler looks for due
	// scheduled sends.
	PollInterval time.Duration
}

type Sentry struct {
	DSN         string
	Environment string
}

type Storage struct {
	// S3-compatible object storage for uploaded images. Empty bucket
	// disables the upload endpoint.
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	// PublicBaseURL is prepended to object keys in upload responses.
	PublicBaseURL string
}

// Load reads configuration from the environment. Only DATABASE_URL and the
// Resend section are required for a functional deployment; everything else
// has a workable default or degrades a single feature.
func Load() (*Config, error) {
	dbCfg := db.DefaultConfig()
	dbCfg.ConnectionString = os.Getenv("DATABASE_URL")
	if dbCfg.ConnectionString == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	siteURL := getEnv("SITE_URL", "http://localhost:8080")

	cfg := &Config{
		HTTP: HTTP{
			Port:            getEnv("HTTP_PORT", "8080"),
			ReadTimeout:     getDuration("HTTP_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getDuration("HTTP_SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		Database: dbCfg,
		Redis: Redis{
			URL: os.Getenv("REDIS_URL"),
		},
		Resend: Resend{
			APIKey:      os.Getenv("RESEND_API_KEY"),
			SenderEmail: getEnv("RESEND_SENDER_EMAIL", "onboarding@resend.dev"),
			SenderName:  getEnv("RESEND_SENDER_NAME", "Newsletter"),
		},
		Newsletter: Newsletter{
			Pipeline: newsletter.Config{
				SiteURL:       siteURL,
				From:          "", // assembled below from the Resend section
				TestRecipient: os.Getenv("RESEND_TEST_TO"),
				BatchSize:     getInt("NEWSLETTER_BATCH_SIZE", 0),
				BatchTimeout:  getDuration("NEWSLETTER_BATCH_TIMEOUT", 0),
				MaxAttempts:   getInt("NEWSLETTER_MAX_ATTEMPTS", 0),
			},
			AdminToken:   os.Getenv("ADMIN_TOKEN"),
			CronSecret:   os.Getenv("CRON_SECRET"),
			DoubleOptIn:  getBool("NEWSLETTER_DOUBLE_OPT_IN", false),
			PollInterval: getDuration("NEWSLETTER_POLL_INTERVAL", time.Minute),
		},
		Sentry: Sentry{
			DSN:         os.Getenv("SENTRY_DSN"),
			Environment: getEnv("SENTRY_ENVIRONMENT", "production"),
		},
		Storage: Storage{
			Bucket:        os.Getenv("S3_BUCKET"),
			Region:        getEnv("S3_REGION", "auto"),
			Endpoint:      os.Getenv("S3_ENDPOINT"),
			AccessKey:     os.Getenv("S3_ACCESS_KEY"),
			SecretKey:     os.Getenv("S3_SECRET_KEY"),
			PublicBaseURL: os.Getenv("S3_PUBLIC_BASE_URL"),
		},
	}

	cfg.Newsletter.Pipeline.From = cfg.Resend.From()
	return cfg, nil
}

// From returns the sender in RFC 5322 form.
func (r Resend) From() string {
	if r.SenderName == "" {
		return r.SenderEmail
	}
	return fmt.Sprintf("%s <%s>", r.SenderName, r.SenderEmail)
}

// Enabled reports whether object storage is configured.
func (s Storage) Enabled() bool {
	return s.Bucket != ""
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return b
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
