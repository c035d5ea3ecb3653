package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/dmitrymomot/oauthgate/pkg/db"
	"github.com/dmitrymomot/oauthgate/pkg/logger"
	"github.com/dmitrymomot/oauthgate/pkg/oauth"
	"github.com/dmitrymomot/oauthgate/pkg/redis"
)

const minSessionSecretLength = 32

// Session store backends.
const (
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// Config is the service configuration, read from the environment.
type Config struct {
	HTTP     HTTPConfig
	Session  SessionConfig
	Jobs     JobsConfig
	OAuth    oauth.GoogleConfig
	Database db.Config
	Redis    redis.Config
	Log      logger.Config
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Address         string        `env:"HTTP_ADDR" envDefault:":8080"`
	AllowedOrigins  []string      `env:"HTTP_CORS_ALLOWED_ORIGINS" envSeparator:","`
	RequestTimeout  time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	CallTimeout     time.Duration `env:"OAUTH_CALL_TIMEOUT" envDefault:"10s"`
}

// SessionConfig configures the session cookie and store.
type SessionConfig struct {
	Secret       string        `env:"SESSION_SECRET,required"`
	Store        string        `env:"SESSION_STORE" envDefault:"redis"`
	CookieName   string        `env:"SESSION_COOKIE_NAME" envDefault:"__sid"`
	CookieDomain string        `env:"SESSION_COOKIE_DOMAIN"`
	RedisPrefix  string        `env:"SESSION_REDIS_PREFIX" envDefault:"session"`
	MaxAge       time.Duration `env:"SESSION_MAX_AGE" envDefault:"24h"`
	Secure       bool          `env:"SESSION_COOKIE_SECURE" envDefault:"true"`
}

// JobsConfig configures the background job queue.
type JobsConfig struct {
	// Enabled moves token revocation on logout to a retried background job.
	// When disabled, logout revokes inline.
	Enabled           bool `env:"JOBS_ENABLED" envDefault:"true"`
	MaxWorkers        int  `env:"JOBS_MAX_WORKERS" envDefault:"10"`
	RevokeMaxAttempts int  `env:"JOBS_REVOKE_MAX_ATTEMPTS" envDefault:"5"`
}

// Load reads the given dotenv files, then parses and validates the
// environment. Missing files are skipped; variables already set in the
// environment win over file values. With no files, ".env" is tried.
func Load(files ...string) (*Config, error) {
	if err := loadDotEnv(files); err != nil {
		return nil, err
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, errors.Join(ErrLoad, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDatabase reads only the database settings, for commands that need
// nothing else.
func LoadDatabase(files ...string) (db.Config, error) {
	if err := loadDotEnv(files); err != nil {
		return db.Config{}, err
	}
	cfg, err := env.ParseAs[db.Config]()
	if err != nil {
		return db.Config{}, errors.Join(ErrLoad, err)
	}
	return cfg, nil
}

func loadDotEnv(files []string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return errors.Join(ErrLoad, fmt.Errorf("read %s: %w", f, err))
		}
	}
	return nil
}

// Validate checks constraints env tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	if len(c.Session.Secret) < minSessionSecretLength {
		errs = append(errs, fmt.Errorf("SESSION_SECRET must be at least %d bytes", minSessionSecretLength))
	}
	switch c.Session.Store {
	case StoreRedis, StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("SESSION_STORE must be %q or %q, got %q", StoreRedis, StoreMemory, c.Session.Store))
	}

	for name, raw := range map[string]string{
		"OAUTH_REDIRECT_URL":   c.OAuth.RedirectURL,
		"OAUTH_AUTH_URL":       c.OAuth.AuthURL,
		"OAUTH_TOKEN_URL":      c.OAuth.TokenURL,
		"OAUTH_REVOCATION_URL": c.OAuth.RevocationURL,
		"OAUTH_USERINFO_URL":   c.OAuth.UserInfoURL,
	} {
		if raw == "" {
			continue
		}
		if u, err := url.Parse(raw); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("%s must be an absolute URL, got %q", name, raw))
		}
	}

	if c.Jobs.Enabled && c.Jobs.MaxWorkers <= 0 {
		errs = append(errs, errors.New("JOBS_MAX_WORKERS must be positive"))
	}

	if c.HTTP.RequestTimeout <= 0 {
		errs = append(errs, errors.New("HTTP_REQUEST_TIMEOUT must be positive"))
	}

	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalid}, errs...)...)
	}
	return nil
}
