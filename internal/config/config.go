package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Notifier modes.
const (
	NotifierLog   = "log"
	NotifierSMTP  = "smtp"
	NotifierQueue = "queue"
)

// MinBcryptCost mirrors the lowest work factor the service accepts.
const MinBcryptCost = 10

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port      string `envconfig:"PORT" default:"8080"`
	AppEnv    string `envconfig:"APP_ENV" default:"development"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	StorageDriver string `envconfig:"STORAGE_DRIVER" default:"postgres"`
	DatabaseURL   string `envconfig:"DATABASE_URL"`

	JWTSecret  string        `envconfig:"JWT_SECRET"`
	JWTIssuer  string        `envconfig:"JWT_ISSUER" default:"feedbackhub"`
	JWTTTL     time.Duration `envconfig:"JWT_TTL" default:"1h"`
	BcryptCost int           `envconfig:"BCRYPT_COST" default:"10"`

	CORSOrigins       []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"100"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"15m"`

	// TrustProxyHeaders takes the client address from X-Forwarded-For and
	// friends. Enable only behind a proxy that overwrites them.
	TrustProxyHeaders bool `envconfig:"TRUST_PROXY_HEADERS" default:"false"`

	Notifier          string `envconfig:"NOTIFIER" default:"log"`
	RedisAddr         string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	WorkerConcurrency int    `envconfig:"WORKER_CONCURRENCY" default:"5"`

	SMTPHost    string        `envconfig:"SMTP_HOST" default:"smtp.gmail.com"`
	SMTPPort    int           `envconfig:"SMTP_PORT" default:"465"`
	SMTPTimeout time.Duration `envconfig:"SMTP_TIMEOUT" default:"30s"`
	EmailUser   string        `envconfig:"EMAIL_USER"`
	EmailPass   string        `envconfig:"EMAIL_PASS"`
	EmailFrom   string        `envconfig:"EMAIL_FROM"`
}

// Load reads configuration from the environment and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadWorker reads configuration for the mail worker, which only needs
// Redis and SMTP settings.
func LoadWorker() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}
	cfg.normalize()
	if err := cfg.ValidateWorker(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.DatabaseURL = strings.TrimSpace(c.DatabaseURL)
	c.JWTSecret = strings.TrimSpace(c.JWTSecret)
	c.StorageDriver = strings.ToLower(strings.TrimSpace(c.StorageDriver))
	c.Notifier = strings.ToLower(strings.TrimSpace(c.Notifier))
	if c.EmailFrom == "" {
		c.EmailFrom = c.EmailUser
	}
	c.CORSOrigins = parseOrigins(c.CORSOrigins)
}

// Validate reports the first configuration problem found.
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.JWTTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	if c.BcryptCost < MinBcryptCost {
		return fmt.Errorf("BCRYPT_COST must be at least %d", MinBcryptCost)
	}
	switch c.StorageDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.StorageDriver)
	}
	switch c.Notifier {
	case NotifierLog:
	case NotifierSMTP, NotifierQueue:
		if c.EmailUser == "" || c.EmailPass == "" {
			return fmt.Errorf("EMAIL_USER and EMAIL_PASS are required for NOTIFIER=%s", c.Notifier)
		}
	default:
		return fmt.Errorf("unsupported NOTIFIER %q", c.Notifier)
	}
	if c.RateLimitRequests <= 0 || c.RateLimitWindow <= 0 {
		return errors.New("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

// ValidateWorker checks the subset of settings used by the mail worker.
func (c Config) ValidateWorker() error {
	if c.EmailUser == "" || c.EmailPass == "" {
		return errors.New("EMAIL_USER and EMAIL_PASS are required for the mail worker")
	}
	if c.RedisAddr == "" {
		return errors.New("REDIS_ADDR is required for the mail worker")
	}
	if c.WorkerConcurrency <= 0 {
		return errors.New("WORKER_CONCURRENCY must be positive")
	}
	return nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

// IsProduction reports whether APP_ENV is production.
func (c Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func parseOrigins(in []string) []string {
	var out []string
	for _, part := range in {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
