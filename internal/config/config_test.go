package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinic/records/internal/domain/clinical"
)

func validConfig() *Config {
	return &Config{
		APIBaseURL:   "http://localhost:3000",
		Env:          "development",
		LogLevel:     "info",
		CriticalRule: RuleRemote,
	}
}

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"API_BASE_URL", "ENV", "LOG_LEVEL", "LOG_FORMAT", "REQUEST_TIMEOUT", "CRITICAL_RULE", "CRITICAL_BANDS", "RATE_LIMIT", "RATE_BURST"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIBaseURL != "http://localhost:3000" {
		t.Errorf("expected default API_BASE_URL, got %s", cfg.APIBaseURL)
	}
	if cfg.Env != "development" {
		t.Errorf("expected default ENV development, got %s", cfg.Env)
	}
	if cfg.RequestTimeout != 0 {
		t.Errorf("expected no default timeout, got %s", cfg.RequestTimeout)
	}
	if cfg.CriticalRule != RuleRemote {
		t.Errorf("expected default rule remote, got %s", cfg.CriticalRule)
	}
	if cfg.RateLimit != 0 || cfg.RateBurst != 1 {
		t.Errorf("expected unlimited rate with burst 1, got %v/%d", cfg.RateLimit, cfg.RateBurst)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://records.example.com/api")
	t.Setenv("ENV", "production")
	t.Setenv("REQUEST_TIMEOUT", "15s")
	t.Setenv("CRITICAL_RULE", "bands")
	t.Setenv("CRITICAL_BANDS", "pulse_rate=50:110")
	t.Setenv("RATE_LIMIT", "2.5")
	t.Setenv("RATE_BURST", "4")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIBaseURL != "https://records.example.com/api" {
		t.Errorf("API_BASE_URL = %s", cfg.APIBaseURL)
	}
	if cfg.RequestTimeout != 15*time.Second {
		t.Errorf("REQUEST_TIMEOUT = %s", cfg.RequestTimeout)
	}
	if cfg.RateLimit != 2.5 || cfg.RateBurst != 4 {
		t.Errorf("rate = %v/%d", cfg.RateLimit, cfg.RateBurst)
	}
	if cfg.ResolvedLogFormat() != "json" {
		t.Errorf("expected json logs in production, got %s", cfg.ResolvedLogFormat())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
}

func TestConfig_IsDev(t *testing.T) {
	c := &Config{Env: "development"}
	if !c.IsDev() {
		t.Error("expected IsDev() to return true for development")
	}

	c.Env = "production"
	if c.IsDev() {
		t.Error("expected IsDev() to return false for production")
	}
}

func TestConfig_ResolvedLogFormat(t *testing.T) {
	tests := []struct {
		env, format, want string
	}{
		{"development", "", "console"},
		{"production", "", "json"},
		{"development", "json", "json"},
		{"production", "console", "console"},
	}
	for _, tt := range tests {
		c := &Config{Env: tt.env, LogFormat: tt.format}
		if got := c.ResolvedLogFormat(); got != tt.want {
			t.Errorf("ResolvedLogFormat(%q, %q) = %q, want %q", tt.env, tt.format, got, tt.want)
		}
	}
}

func TestConfig_Level(t *testing.T) {
	c := validConfig()
	c.LogLevel = "DEBUG"
	lvl, err := c.Level()
	if err != nil || lvl != zerolog.DebugLevel {
		t.Errorf("Level = %v, %v", lvl, err)
	}

	c.LogLevel = ""
	if lvl, _ := c.Level(); lvl != zerolog.InfoLevel {
		t.Errorf("empty level = %v, want info", lvl)
	}
}

func TestConfig_Rule(t *testing.T) {
	c := validConfig()
	rule, err := c.Rule()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := rule.(clinical.RemoteFlag); !ok {
		t.Errorf("remote rule = %T", rule)
	}

	c.CriticalRule = RuleBands
	c.CriticalBands = "reference"
	rule, err = c.Rule()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := rule.(clinical.VitalBands); !ok {
		t.Errorf("bands rule = %T", rule)
	}

	c.CriticalRule = RuleAny
	rule, err = c.Rule()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := rule.(clinical.AnyRule); !ok {
		t.Errorf("any rule = %T", rule)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"https with path", func(c *Config) { c.APIBaseURL = "https://api.example.com/v1" }, false},
		{"no scheme", func(c *Config) { c.APIBaseURL = "localhost:3000" }, true},
		{"ftp scheme", func(c *Config) { c.APIBaseURL = "ftp://example.com" }, true},
		{"no host", func(c *Config) { c.APIBaseURL = "http://" }, true},
		{"negative timeout", func(c *Config) { c.RequestTimeout = -time.Second }, true},
		{"negative rate", func(c *Config) { c.RateLimit = -1 }, true},
		{"rate without burst", func(c *Config) { c.RateLimit = 5 }, true},
		{"rate with burst", func(c *Config) {
			c.RateLimit = 5
			c.RateBurst = 2
		}, false},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, true},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, true},
		{"unknown rule", func(c *Config) { c.CriticalRule = "magic" }, true},
		{"bands without bands", func(c *Config) { c.CriticalRule = RuleBands }, true},
		{"any without bands", func(c *Config) { c.CriticalRule = RuleAny }, true},
		{"unparseable bands", func(c *Config) {
			c.CriticalRule = RuleBands
			c.CriticalBands = "pulse_rate=fast"
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
