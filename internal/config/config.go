package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Source is one institution whose balances are fetched.
type Source struct {
	Institution string `mapstructure:"institution"`
	AccessToken string `mapstructure:"access_token"`
}

// Config holds all configuration for financehub.
type Config struct {
	// Plaid credentials and endpoint
	PlaidClientID       string        `mapstructure:"plaid_client_id"`
	PlaidSecret         string        `mapstructure:"plaid_secret"`
	PlaidBaseURL        string        `mapstructure:"plaid_base_url"`
	PlaidTimeout        time.Duration `mapstructure:"plaid_timeout"`
	PlaidMinLastUpdated string        `mapstructure:"plaid_min_last_updated"`
	PlaidRateLimit      float64       `mapstructure:"plaid_rate_limit"`

	// Institutions to fetch, in order
	Sources []Source `mapstructure:"sources"`

	// Account name patterns summed as checking; everything else is credit
	CheckingAccounts []string `mapstructure:"checking_accounts"`

	// Current date lookup
	TimeAPIBaseURL string        `mapstructure:"time_api_base_url"`
	TimeZone       string        `mapstructure:"time_zone"`
	TimeTimeout    time.Duration `mapstructure:"time_timeout"`
	TimeRateLimit  float64       `mapstructure:"time_rate_limit"`

	// Response handling
	MaxResponseBytes int `mapstructure:"max_response_bytes"`
	TimeBufferBytes  int `mapstructure:"time_buffer_bytes"`
	ChunkSize        int `mapstructure:"chunk_size"`
	RetryCount       int `mapstructure:"retry_count"`

	// Prometheus textfile written after each run; empty disables metrics
	MetricsFile string `mapstructure:"metrics_file"`
}

var defaults = map[string]any{
	"plaid_base_url":         "https://production.plaid.com",
	"plaid_timeout":          8 * time.Second,
	"plaid_min_last_updated": "2025-01-09T00:00:00Z",
	"plaid_rate_limit":       2.0,
	"checking_accounts":      []string{"Plaid Checking", "Plaid Saving"},
	"time_api_base_url":      "https://www.timeapi.io",
	"time_zone":              "America/New_York",
	"time_timeout":           2 * time.Second,
	"time_rate_limit":        1.0,
	"max_response_bytes":     64 * 1024,
	"time_buffer_bytes":      1024,
	"chunk_size":             512,
	"retry_count":            0,
	"metrics_file":           "",
}

// Load reads configuration from an optional config.yaml, a .env file and
// environment variables. Environment variables take precedence over the
// config file.
//
// Expected environment variables:
//   - PLAID_CLIENT_ID
//   - PLAID_SECRET
//   - PLAID_SOURCES as "Institution=access-token" pairs separated by ';'
//     (optional when the config file lists sources)
//
// Every other key may be set through its upper-case name, e.g. PLAID_BASE_URL
// or CHECKING_ACCOUNTS="Plaid Checking,Plaid Saving".
func Load() (*Config, error) {
	// .env is optional and never overrides variables already set
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.financehub")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.BindEnv("plaid_client_id", "PLAID_CLIENT_ID")
	v.BindEnv("plaid_secret", "PLAID_SECRET")

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if raw, ok := os.LookupEnv("PLAID_SOURCES"); ok {
		sources, err := ParseSources(raw)
		if err != nil {
			return nil, err
		}
		config.Sources = sources
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// ParseSources parses "Institution=token;Other Bank=token2".
func ParseSources(raw string) ([]Source, error) {
	var sources []Source
	for _, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		institution, token, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("invalid source %q: want Institution=access-token", part)
		}
		sources = append(sources, Source{
			Institution: strings.TrimSpace(institution),
			AccessToken: strings.TrimSpace(token),
		})
	}
	return sources, nil
}

// Validate reports every missing or invalid setting at once.
func (c *Config) Validate() error {
	var missing []string
	if c.PlaidClientID == "" {
		missing = append(missing, "PLAID_CLIENT_ID")
	}
	if c.PlaidSecret == "" {
		missing = append(missing, "PLAID_SECRET")
	}
	if len(c.Sources) == 0 {
		missing = append(missing, "PLAID_SOURCES")
	}
	for i, s := range c.Sources {
		if s.Institution == "" {
			missing = append(missing, fmt.Sprintf("sources[%d].institution", i))
		}
		if s.AccessToken == "" {
			missing = append(missing, fmt.Sprintf("sources[%d].access_token", i))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	var invalid []string
	if c.MaxResponseBytes <= 0 {
		invalid = append(invalid, "MAX_RESPONSE_BYTES must be positive")
	}
	if c.TimeBufferBytes <= 1 {
		invalid = append(invalid, "TIME_BUFFER_BYTES must be greater than 1")
	}
	if c.ChunkSize <= 0 {
		invalid = append(invalid, "CHUNK_SIZE must be positive")
	}
	if c.RetryCount < 0 {
		invalid = append(invalid, "RETRY_COUNT must not be negative")
	}
	if c.PlaidTimeout <= 0 || c.TimeTimeout <= 0 {
		invalid = append(invalid, "timeouts must be positive")
	}
	if len(invalid) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(invalid, ", "))
	}

	return nil
}
