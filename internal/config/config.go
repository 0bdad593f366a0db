package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/clinic/records/internal/domain/clinical"
)

// Critical rule names accepted in CRITICAL_RULE.
const (
	RuleRemote = "remote"
	RuleBands  = "bands"
	RuleAny    = "any"
)

type Config struct {
	APIBaseURL     string        `mapstructure:"API_BASE_URL"`
	Env            string        `mapstructure:"ENV"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
	LogFormat      string        `mapstructure:"LOG_FORMAT"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	CriticalRule   string        `mapstructure:"CRITICAL_RULE"`
	CriticalBands  string        `mapstructure:"CRITICAL_BANDS"`
	RateLimit      float64       `mapstructure:"RATE_LIMIT"`
	RateBurst      int           `mapstructure:"RATE_BURST"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("API_BASE_URL", "http://localhost:3000")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "") // auto-detect: "" -> inferred from ENV
	v.SetDefault("REQUEST_TIMEOUT", "0s")
	v.SetDefault("CRITICAL_RULE", RuleRemote)
	v.SetDefault("CRITICAL_BANDS", "")
	v.SetDefault("RATE_LIMIT", 0) // requests per second, 0 = unlimited
	v.SetDefault("RATE_BURST", 1)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("API_BASE_URL")
	v.BindEnv("ENV")
	v.BindEnv("LOG_LEVEL")
	v.BindEnv("LOG_FORMAT")
	v.BindEnv("REQUEST_TIMEOUT")
	v.BindEnv("CRITICAL_RULE")
	v.BindEnv("CRITICAL_BANDS")
	v.BindEnv("RATE_LIMIT")
	v.BindEnv("RATE_BURST")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// ResolvedLogFormat returns the effective log format. If LOG_FORMAT is set it
// is returned; otherwise development gets "console" and everything else
// "json".
func (c *Config) ResolvedLogFormat() string {
	if c.LogFormat != "" {
		return c.LogFormat
	}
	if c.IsDev() {
		return "console"
	}
	return "json"
}

// Level parses LOG_LEVEL, treating an empty value as info.
func (c *Config) Level() (zerolog.Level, error) {
	if strings.TrimSpace(c.LogLevel) == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return lvl, nil
}

// Rule builds the critical-condition rule named by CRITICAL_RULE.
func (c *Config) Rule() (clinical.CriticalRule, error) {
	switch c.CriticalRule {
	case "", RuleRemote:
		return clinical.RemoteFlag{}, nil
	case RuleBands, RuleAny:
		bands, err := clinical.ParseBands(c.CriticalBands)
		if err != nil {
			return nil, fmt.Errorf("CRITICAL_BANDS: %w", err)
		}
		if len(bands) == 0 {
			return nil, fmt.Errorf("CRITICAL_BANDS is required when CRITICAL_RULE is %q", c.CriticalRule)
		}
		if c.CriticalRule == RuleBands {
			return bands, nil
		}
		return clinical.AnyRule{clinical.RemoteFlag{}, bands}, nil
	default:
		return nil, fmt.Errorf("CRITICAL_RULE must be %q, %q, or %q, got %q", RuleRemote, RuleBands, RuleAny, c.CriticalRule)
	}
}

// Validate checks that the configuration can be used to reach the API.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil {
		return fmt.Errorf("API_BASE_URL is not a valid URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("API_BASE_URL must be an absolute http(s) URL, got %q", c.APIBaseURL)
	}

	if c.RequestTimeout < 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must not be negative, got %s", c.RequestTimeout)
	}

	if c.RateLimit < 0 {
		return fmt.Errorf("RATE_LIMIT must not be negative, got %v", c.RateLimit)
	}
	if c.RateLimit > 0 && c.RateBurst < 1 {
		return fmt.Errorf("RATE_BURST must be at least 1, got %d", c.RateBurst)
	}

	if f := c.ResolvedLogFormat(); f != "json" && f != "console" {
		return fmt.Errorf("LOG_FORMAT must be \"json\" or \"console\", got %q", f)
	}
	if _, err := c.Level(); err != nil {
		return err
	}

	if _, err := c.Rule(); err != nil {
		return err
	}
	return nil
}
