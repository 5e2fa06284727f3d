package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Fallback secrets mirror the values the service historically shipped with.
// They keep local runs working and must never reach production.
const (
	FallbackAccessSecret  = "secret-key"
	FallbackRefreshSecret = "THIS_IS_MY_REFRESH_TOKEN_KEY"
)

type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"maumeum"`
	ServerPort  int    `env:"SERVER_PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	DatabaseURL string `env:"DATABASE_URL"`

	AccessSecret  string        `env:"ACCESS_SECRET"`
	RefreshSecret string        `env:"REFRESH_SECRET"`
	AccessTTL     time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"1h"`
	RefreshTTL    time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"336h"`
	BcryptCost    int           `env:"BCRYPT_COST" envDefault:"10"`

	JobSchedule string `env:"JOB_SCHEDULE" envDefault:"0 0 * * *"`
	JobTimezone string `env:"JOB_TIMEZONE" envDefault:"Local"`

	CookieSecure   bool   `env:"COOKIE_SECURE" envDefault:"false"`
	RevokeOnLogout bool   `env:"SESSION_REVOKE_ON_LOGOUT" envDefault:"false"`
	CSRFEnabled    bool   `env:"CSRF_ENABLED" envDefault:"false"`
	FrontServer    string `env:"FRONT_SERVER"`

	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`

	ESURL      string `env:"ES_URL"`
	ESUser     string `env:"ES_USER"`
	ESPassword string `env:"ES_PASSWORD"`
	ESIndex    string `env:"ES_INDEX" envDefault:"volunteers"`

	fallbackSecrets bool
}

// Load reads an optional .env file and then the process environment.
// It is called once from main; nothing else should touch the environment.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	if err := godotenv.Load(files...); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.applySecretFallbacks()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applySecretFallbacks() {
	if strings.TrimSpace(c.AccessSecret) == "" {
		c.AccessSecret = FallbackAccessSecret
		c.fallbackSecrets = true
	}
	if strings.TrimSpace(c.RefreshSecret) == "" {
		c.RefreshSecret = FallbackRefreshSecret
		c.fallbackSecrets = true
	}
}

// UsingFallbackSecrets reports whether at least one signing secret came from
// the built-in defaults.
func (c Config) UsingFallbackSecrets() bool {
	return c.fallbackSecrets
}

func (c Config) Validate() error {
	var errs []error
	if c.AccessTTL <= 0 {
		errs = append(errs, fmt.Errorf("ACCESS_TOKEN_TTL must be positive, got %s", c.AccessTTL))
	}
	if c.RefreshTTL <= 0 {
		errs = append(errs, fmt.Errorf("REFRESH_TOKEN_TTL must be positive, got %s", c.RefreshTTL))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be in [%d, %d], got %d", bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost))
	}
	if c.AccessSecret == c.RefreshSecret {
		errs = append(errs, errors.New("ACCESS_SECRET and REFRESH_SECRET must differ"))
	}
	if strings.TrimSpace(c.JobSchedule) == "" {
		errs = append(errs, errors.New("JOB_SCHEDULE is empty"))
	}
	return errors.Join(errs...)
}

// Location resolves JOB_TIMEZONE, falling back to the local zone.
func (c Config) Location() *time.Location {
	if c.JobTimezone == "" || strings.EqualFold(c.JobTimezone, "local") {
		return time.Local
	}
	loc, err := time.LoadLocation(c.JobTimezone)
	if err != nil {
		log.Printf("Notice: unknown JOB_TIMEZONE %q, using local time", c.JobTimezone)
		return time.Local
	}
	return loc
}

func (c Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}
