package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Client holds configuration for the edustocks CLI
type Client struct {
	APIURL          string        `env:"EDUSTOCKS_API_URL" envDefault:"http://localhost:8080/api"`
	Token           string        `env:"EDUSTOCKS_TOKEN"`
	User            string        `env:"EDUSTOCKS_USER"`
	HTTPTimeout     time.Duration `env:"EDUSTOCKS_HTTP_TIMEOUT" envDefault:"10s"`
	RefreshInterval time.Duration `env:"EDUSTOCKS_REFRESH_INTERVAL" envDefault:"30s"`
	QuotesURL       string        `env:"EDUSTOCKS_QUOTES_URL"`
	RateLimit       float64       `env:"EDUSTOCKS_RATE_LIMIT" envDefault:"10"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"warn"`
	LogPretty       bool          `env:"LOG_PRETTY" envDefault:"true"`
}

// Sandbox holds configuration for the sandbox backend
type Sandbox struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	GinMode         string        `env:"GIN_MODE" envDefault:"debug"`
	DatabaseURL     string        `env:"DATABASE_URL"`
	NumWorkers      int           `env:"NUM_WORKERS" envDefault:"5"`
	StartingBalance float64       `env:"STARTING_BALANCE" envDefault:"10000"`
	QuoteTick       time.Duration `env:"QUOTE_TICK" envDefault:"1s"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty       bool          `env:"LOG_PRETTY" envDefault:"false"`
}

// LoadClient reads the client configuration from the environment,
// after loading a .env file if one exists.
func LoadClient() (*Client, error) {
	_ = godotenv.Load()

	cfg := &Client{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse client config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the client configuration
func (c *Client) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("EDUSTOCKS_API_URL is required")
	}
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("EDUSTOCKS_REFRESH_INTERVAL must be positive, got %s", c.RefreshInterval)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("EDUSTOCKS_HTTP_TIMEOUT must be positive, got %s", c.HTTPTimeout)
	}
	return nil
}

// LoadSandbox reads the sandbox backend configuration from the environment
func LoadSandbox() (*Sandbox, error) {
	_ = godotenv.Load()

	cfg := &Sandbox{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse sandbox config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the sandbox configuration
func (s *Sandbox) Validate() error {
	if s.NumWorkers <= 0 {
		return fmt.Errorf("NUM_WORKERS must be positive, got %d", s.NumWorkers)
	}
	if s.StartingBalance < 0 {
		return fmt.Errorf("STARTING_BALANCE must not be negative")
	}
	if s.QuoteTick <= 0 {
		return fmt.Errorf("QUOTE_TICK must be positive, got %s", s.QuoteTick)
	}
	return nil
}
