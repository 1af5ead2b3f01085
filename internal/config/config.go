// Package config provides application configuration management with
// multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (~/.scout/config.yaml)
//  3. Default values
//
// Error Handling:
//   - Sentinel errors for Go-idiomatic checking with errors.Is()
//   - Wrapped with context using fmt.Errorf("%w: details", ErrXxx)
//
// Security: credentials (Google API key) are never logged; String() and
// MarshalJSON mask sensitive fields.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

var (
	// ErrInvalidModelName indicates the model name is empty.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidOllamaHost indicates the generation backend URL is malformed.
	ErrInvalidOllamaHost = errors.New("invalid ollama host")

	// ErrInvalidMaxToolRounds indicates the tool-call iteration bound is out of range.
	ErrInvalidMaxToolRounds = errors.New("invalid max tool rounds")

	// ErrInvalidFetchParallelism indicates the fetch worker cap is out of range.
	ErrInvalidFetchParallelism = errors.New("invalid fetch parallelism")

	// ErrInvalidSearchPages indicates the search pagination depth is out of range.
	ErrInvalidSearchPages = errors.New("invalid search pages")
)

const (
	// DefaultMaxToolRounds bounds generate/execute-tool round trips per turn.
	DefaultMaxToolRounds = 5

	// MaxAllowedToolRounds is the absolute ceiling for the iteration bound.
	MaxAllowedToolRounds = 20

	// DefaultFetchParallelism matches the extraction link cap so the whole
	// candidate set can be in flight at once.
	DefaultFetchParallelism = 12
)

// SearchConfig holds web-search provider configuration.
//
// APIKey and EngineID come from GOOGLE_API_KEY and GOOGLE_CSE_ID. Their
// absence is a configuration error surfaced by the resolver at query time,
// not at startup: the agent remains usable without web search.
type SearchConfig struct {
	APIKey   string `mapstructure:"api_key" json:"api_key"` // SENSITIVE: masked in MarshalJSON
	EngineID string `mapstructure:"engine_id" json:"engine_id"`
	Pages    int    `mapstructure:"pages" json:"pages"`         // result pages per query
	PerPage  int    `mapstructure:"per_page" json:"per_page"`   // results per page (Google caps at 10)
}

// MarshalJSON masks the API key.
func (s SearchConfig) MarshalJSON() ([]byte, error) {
	type alias SearchConfig
	a := alias(s)
	a.APIKey = maskSecret(a.APIKey)
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal search config: %w", err)
	}
	return data, nil
}

// FetcherConfig holds page fetch/extraction fan-out configuration.
type FetcherConfig struct {
	// Parallelism is the max concurrent page fetches (default: 12).
	Parallelism int `mapstructure:"parallelism" json:"parallelism"`
	// TimeoutMs is the per-page request timeout in milliseconds (default: 8000).
	TimeoutMs int `mapstructure:"timeout_ms" json:"timeout_ms"`
}

// TracingConfig holds the optional OTLP trace exporter configuration.
// An empty endpoint disables tracing entirely.
type TracingConfig struct {
	Endpoint    string `mapstructure:"endpoint" json:"endpoint"`
	Environment string `mapstructure:"environment" json:"environment"`
	ServiceName string `mapstructure:"service_name" json:"service_name"`
}

// Config stores application configuration.
// SECURITY: sensitive fields are explicitly masked in MarshalJSON().
type Config struct {
	// Generation backend (OpenAI-compatible chat endpoint, e.g. Ollama)
	OllamaHost string `mapstructure:"ollama_host" json:"ollama_host"`
	ModelName  string `mapstructure:"model_name" json:"model_name"`

	// Turn state machine
	MaxToolRounds int `mapstructure:"max_tool_rounds" json:"max_tool_rounds"`

	// Conversation history store
	RedisAddr string `mapstructure:"redis_addr" json:"redis_addr"`
	RedisDB   int    `mapstructure:"redis_db" json:"redis_db"`

	// HTTP API
	Addr string `mapstructure:"addr" json:"addr"`

	// Knowledge resolver
	Search  SearchConfig  `mapstructure:"search" json:"search"`
	Fetcher FetcherConfig `mapstructure:"fetcher" json:"fetcher"`

	// Observability
	Tracing TracingConfig `mapstructure:"tracing" json:"tracing"`
}

// Load loads configuration.
// Priority: environment variables > configuration file > default values.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".scout")
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)
	viper.AddConfigPath(".")

	setDefaults()
	bindEnvVariables()

	if err := viper.ReadInConfig(); err != nil {
		// A missing config file is not an error; defaults apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using defaults",
			"search_paths", []string{configDir, "."})
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("ollama_host", "http://localhost:11434")
	viper.SetDefault("model_name", "qwen3:1.7b")

	viper.SetDefault("max_tool_rounds", DefaultMaxToolRounds)

	viper.SetDefault("redis_addr", "localhost:6379")
	viper.SetDefault("redis_db", 0)

	viper.SetDefault("addr", "127.0.0.1:5050")

	viper.SetDefault("search.pages", 2)
	viper.SetDefault("search.per_page", 10)

	viper.SetDefault("fetcher.parallelism", DefaultFetchParallelism)
	viper.SetDefault("fetcher.timeout_ms", 8000)

	viper.SetDefault("tracing.endpoint", "")
	viper.SetDefault("tracing.environment", "dev")
	viper.SetDefault("tracing.service_name", "scout")
}

// bindEnvVariables binds environment variables explicitly. Hardcoded keys
// cannot fail to bind; a bind error here is a bug, hence the panic.
func bindEnvVariables() {
	mustBind := func(key, envVar string) {
		if err := viper.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("search.api_key", "GOOGLE_API_KEY")
	mustBind("search.engine_id", "GOOGLE_CSE_ID")

	mustBind("ollama_host", "OLLAMA_API_URL")
	mustBind("model_name", "OLLAMA_MODEL")

	mustBind("redis_addr", "SCOUT_REDIS_ADDR")
	mustBind("addr", "SCOUT_ADDR")

	mustBind("tracing.endpoint", "SCOUT_OTLP_ENDPOINT")
}

// Validate performs fail-fast range checks on the loaded configuration.
func (c *Config) Validate() error {
	if c.ModelName == "" {
		return fmt.Errorf("%w: model name must not be empty", ErrInvalidModelName)
	}

	u, err := url.Parse(c.OllamaHost)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %q is not an http(s) URL", ErrInvalidOllamaHost, c.OllamaHost)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q not supported", ErrInvalidOllamaHost, u.Scheme)
	}

	if c.MaxToolRounds < 1 || c.MaxToolRounds > MaxAllowedToolRounds {
		return fmt.Errorf("%w: %d (must be 1..%d)",
			ErrInvalidMaxToolRounds, c.MaxToolRounds, MaxAllowedToolRounds)
	}

	if c.Fetcher.Parallelism < 1 || c.Fetcher.Parallelism > 64 {
		return fmt.Errorf("%w: %d (must be 1..64)",
			ErrInvalidFetchParallelism, c.Fetcher.Parallelism)
	}

	if c.Search.Pages < 1 || c.Search.Pages > 10 {
		return fmt.Errorf("%w: %d (must be 1..10)", ErrInvalidSearchPages, c.Search.Pages)
	}
	if c.Search.PerPage < 1 || c.Search.PerPage > 10 {
		return fmt.Errorf("%w: per_page %d (Google caps at 10)", ErrInvalidSearchPages, c.Search.PerPage)
	}

	return nil
}

// maskedValue is the placeholder for masked sensitive data.
const maskedValue = "████████"

// maskSecret masks a secret for safe logging. Short secrets are fully
// masked to prevent substring matching; longer ones keep the first and
// last two characters for debug utility.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return maskedValue
	}
	return s[:2] + "<" + maskedValue + ">" + s[len(s)-2:]
}

// MarshalJSON implements json.Marshaler with sensitive field masking.
func (c Config) MarshalJSON() ([]byte, error) {
	type alias Config
	a := alias(c)
	// Search.APIKey is masked by SearchConfig.MarshalJSON.
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// String implements Stringer to prevent accidental printing of secrets.
func (c Config) String() string {
	data, err := c.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("Config{error: %v}", err)
	}
	return string(data)
}
