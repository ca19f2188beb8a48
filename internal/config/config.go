// ABOUTME: Configuration loading and parsing for studybuddy
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete studybuddy configuration
type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	GigaChat GigaChatConfig `yaml:"gigachat"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// TelegramConfig holds the bot transport configuration
type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	// PollTimeoutSeconds is the long-poll timeout passed to getUpdates
	PollTimeoutSeconds int `yaml:"poll_timeout_seconds"`
}

// GigaChatConfig holds the LLM gateway configuration
type GigaChatConfig struct {
	// AuthKey is the base64 client_id:client_secret pair sent as Basic auth
	// to the OAuth token endpoint
	AuthKey  string `yaml:"auth_key"`
	Scope    string `yaml:"scope"`
	Model    string `yaml:"model"`
	OAuthURL string `yaml:"oauth_url"`
	BaseURL  string `yaml:"base_url"`

	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"-"`

	RequestTimeout time.Duration `yaml:"-"`

	// Raw values for YAML unmarshaling. Temperature decodes through a
	// pointer so an explicit 0 is distinguishable from an unset field.
	RequestTimeoutRaw string   `yaml:"request_timeout"`
	TemperatureRaw    *float64 `yaml:"temperature"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Defaults applied by Load when the config file leaves fields unset.
const (
	DefaultScope          = "GIGACHAT_API_PERS"
	DefaultModel          = "GigaChat"
	DefaultOAuthURL       = "https://ngw.devices.sberbank.ru:9443/api/v2/oauth"
	DefaultBaseURL        = "https://gigachat.devices.sberbank.ru/api/v1"
	DefaultMaxTokens      = 500
	DefaultTemperature    = 0.7
	DefaultRequestTimeout = 30 * time.Second
	DefaultPollTimeout    = 30
)

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyDefaults fills in unset optional fields
func (c *Config) applyDefaults() {
	if c.GigaChat.Scope == "" {
		c.GigaChat.Scope = DefaultScope
	}
	if c.GigaChat.Model == "" {
		c.GigaChat.Model = DefaultModel
	}
	if c.GigaChat.OAuthURL == "" {
		c.GigaChat.OAuthURL = DefaultOAuthURL
	}
	if c.GigaChat.BaseURL == "" {
		c.GigaChat.BaseURL = DefaultBaseURL
	}
	if c.GigaChat.MaxTokens == 0 {
		c.GigaChat.MaxTokens = DefaultMaxTokens
	}
	if c.GigaChat.TemperatureRaw != nil {
		c.GigaChat.Temperature = *c.GigaChat.TemperatureRaw
	} else {
		c.GigaChat.Temperature = DefaultTemperature
	}
	if c.Telegram.PollTimeoutSeconds == 0 {
		c.Telegram.PollTimeoutSeconds = DefaultPollTimeout
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}

	if c.GigaChat.AuthKey == "" {
		return fmt.Errorf("gigachat.auth_key is required")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if c.GigaChat.Temperature < 0 || c.GigaChat.Temperature > 2 {
		return fmt.Errorf("gigachat.temperature must be in [0, 2], got %v", c.GigaChat.Temperature)
	}

	if c.GigaChat.MaxTokens < 1 {
		return fmt.Errorf("gigachat.max_tokens must be positive, got %d", c.GigaChat.MaxTokens)
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	if cfg.GigaChat.RequestTimeoutRaw == "" {
		cfg.GigaChat.RequestTimeout = DefaultRequestTimeout
		return nil
	}

	d, err := time.ParseDuration(cfg.GigaChat.RequestTimeoutRaw)
	if err != nil {
		return fmt.Errorf("parsing request_timeout %q: %w", cfg.GigaChat.RequestTimeoutRaw, err)
	}
	cfg.GigaChat.RequestTimeout = d

	return nil
}
