package infra

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application settings. Secrets may be overridden through
// environment variables after the file is loaded.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Venue struct {
		BaseURL string `yaml:"base_url"`
		WSURL   string `yaml:"ws_url"`
		APIKey  string `yaml:"api_key"`
		Account string `yaml:"account"`
		Venue   string `yaml:"venue"`
		Stock   string `yaml:"stock"`
	} `yaml:"venue"`

	GM struct {
		BaseURL    string `yaml:"base_url"`
		InstanceID int64  `yaml:"instance_id"` // 0 disables GM polling
	} `yaml:"gm"`

	Trading struct {
		Mode             string `yaml:"mode"` // PAPER or LIVE
		SharesToBuy      int64  `yaml:"shares_to_buy"`
		Threshold        string `yaml:"threshold"`  // ceiling bias, e.g. "0.95"
		RaiseStep        string `yaml:"raise_step"` // stall raise, e.g. "1.01"
		QuietIntervalSec int    `yaml:"quiet_interval_sec"`
		OrderGraceMS     int    `yaml:"order_grace_ms"`
		TickIntervalMS   int    `yaml:"tick_interval_ms"`
		QuoteSource      string `yaml:"quote_source"` // stream or poll
		PollIntervalMS   int    `yaml:"poll_interval_ms"`
	} `yaml:"trading"`

	Storage struct {
		Checkpoints bool `yaml:"checkpoints"`
	} `yaml:"storage"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

const (
	ModePaper = "PAPER"
	ModeLive  = "LIVE"

	QuoteSourceStream = "stream"
	QuoteSourcePoll   = "poll"
)

// LoadConfig reads and parses the config file, applies env overrides, fills
// defaults, and validates. Any failure here aborts startup before a single
// task is launched.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	overrideWithEnv(&cfg)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Trading.Mode == "" {
		c.Trading.Mode = ModePaper
	}
	c.Trading.Mode = strings.ToUpper(c.Trading.Mode)
	if c.Trading.Threshold == "" {
		c.Trading.Threshold = "0.95"
	}
	if c.Trading.RaiseStep == "" {
		c.Trading.RaiseStep = "1.01"
	}
	if c.Trading.QuietIntervalSec == 0 {
		c.Trading.QuietIntervalSec = 10
	}
	if c.Trading.OrderGraceMS == 0 {
		c.Trading.OrderGraceMS = 500
	}
	if c.Trading.TickIntervalMS == 0 {
		c.Trading.TickIntervalMS = 1000
	}
	if c.Trading.QuoteSource == "" {
		c.Trading.QuoteSource = QuoteSourceStream
	}
	if c.Trading.PollIntervalMS == 0 {
		c.Trading.PollIntervalMS = 1200
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate checks configuration validity. Fail fast: a run with a broken
// venue triple or missing credentials must never start.
func (c *Config) Validate() error {
	if c.Venue.BaseURL == "" || !strings.HasPrefix(c.Venue.BaseURL, "http") {
		return fmt.Errorf("invalid venue base URL: %q", c.Venue.BaseURL)
	}
	if c.Venue.Account == "" || c.Venue.Venue == "" || c.Venue.Stock == "" {
		return fmt.Errorf("venue account, venue, and stock are all required")
	}

	switch c.Trading.Mode {
	case ModePaper, ModeLive:
	default:
		return fmt.Errorf("unknown trading mode: %q", c.Trading.Mode)
	}

	if c.Trading.Mode == ModeLive && c.Venue.APIKey == "" {
		return fmt.Errorf("no API key set (config venue.api_key or env STOCKFIGHTER_API_KEY)")
	}

	switch c.Trading.QuoteSource {
	case QuoteSourceStream:
		if c.Venue.WSURL == "" || !strings.HasPrefix(c.Venue.WSURL, "ws") {
			return fmt.Errorf("invalid venue WS URL: %q", c.Venue.WSURL)
		}
	case QuoteSourcePoll:
	default:
		return fmt.Errorf("unknown quote source: %q", c.Trading.QuoteSource)
	}

	if c.Trading.SharesToBuy < 0 {
		return fmt.Errorf("shares_to_buy must be non-negative")
	}
	return nil
}

// Env overrides take precedence over file values so API keys can stay out
// of config files entirely.
func overrideWithEnv(cfg *Config) {
	if key := os.Getenv("STOCKFIGHTER_API_KEY"); key != "" {
		cfg.Venue.APIKey = key
	}
	if acct := os.Getenv("STOCKFIGHTER_ACCOUNT"); acct != "" {
		cfg.Venue.Account = acct
	}
}

func (c *Config) QuietInterval() time.Duration {
	return time.Duration(c.Trading.QuietIntervalSec) * time.Second
}

func (c *Config) OrderGrace() time.Duration {
	return time.Duration(c.Trading.OrderGraceMS) * time.Millisecond
}

func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Trading.TickIntervalMS) * time.Millisecond
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Trading.PollIntervalMS) * time.Millisecond
}
