// Package config loads boardgen.yaml, overlays BOARDGEN_* environment
// variables and validates the result.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/boardgen/pkg/retry"
	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "boardgen.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "BOARDGEN_"

// Config is the full runtime configuration.
type Config struct {
	Board     BoardConfig    `yaml:"board" json:"board" envPrefix:"BOARD_"`
	Provider  ProviderConfig `yaml:"provider" json:"provider" envPrefix:"PROVIDER_"`
	Retry     RetryConfig    `yaml:"retry" json:"retry" envPrefix:"RETRY_"`
	Store     StoreConfig    `yaml:"store" json:"store" envPrefix:"STORE_"`
	Server    ServerConfig   `yaml:"server" json:"server" envPrefix:"SERVER_"`
	LogLevel  string         `yaml:"logLevel" json:"logLevel" env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	LogFormat string         `yaml:"logFormat" json:"logFormat" env:"LOG_FORMAT" validate:"oneof=text json"`
}

// BoardConfig is the shape used for new boards.
type BoardConfig struct {
	Topic           string `yaml:"topic" json:"topic" env:"TOPIC"`
	Sections        int    `yaml:"sections" json:"sections" env:"SECTIONS" validate:"min=1,max=20"`
	CellsPerSection int    `yaml:"cellsPerSection" json:"cellsPerSection" env:"CELLS" validate:"min=1,max=20"`
	Scale           int    `yaml:"scale" json:"scale" env:"SCALE" validate:"min=1"`
}

// ProviderConfig selects the content provider.
type ProviderConfig struct {
	Kind              string        `yaml:"kind" json:"kind" env:"KIND" validate:"oneof=static openai"`
	Model             string        `yaml:"model" json:"model" env:"MODEL"`
	BaseURL           string        `yaml:"baseURL,omitempty" json:"baseURL,omitempty" env:"BASE_URL" validate:"omitempty,url"`
	APIKey            string        `yaml:"apiKey,omitempty" json:"apiKey,omitempty" env:"API_KEY" validate:"required_if=Kind openai"`
	RequestsPerMinute int           `yaml:"requestsPerMinute" json:"requestsPerMinute" env:"RPM" validate:"min=0"`
	Timeout           time.Duration `yaml:"timeout" json:"timeout" env:"TIMEOUT" validate:"min=0"`
}

// RetryConfig maps onto retry.Policy.
type RetryConfig struct {
	MaxAttempts    int           `yaml:"maxAttempts" json:"maxAttempts" env:"MAX_ATTEMPTS" validate:"min=1"`
	InitialBackoff time.Duration `yaml:"initialBackoff" json:"initialBackoff" env:"INITIAL_BACKOFF" validate:"min=0"`
	MaxBackoff     time.Duration `yaml:"maxBackoff" json:"maxBackoff" env:"MAX_BACKOFF" validate:"gtefield=InitialBackoff"`
}

// StoreConfig selects where boards are persisted.
type StoreConfig struct {
	Kind        string        `yaml:"kind" json:"kind" env:"KIND" validate:"oneof=file memory redis"`
	Path        string        `yaml:"path" json:"path" env:"PATH" validate:"required_if=Kind file"`
	RedisAddr   string        `yaml:"redisAddr,omitempty" json:"redisAddr,omitempty" env:"REDIS_ADDR" validate:"required_if=Kind redis"`
	RedisPrefix string        `yaml:"redisPrefix,omitempty" json:"redisPrefix,omitempty" env:"REDIS_PREFIX"`
	RedisPass   string        `yaml:"redisPassword,omitempty" json:"redisPassword,omitempty" env:"REDIS_PASSWORD"`
	TTL         time.Duration `yaml:"ttl,omitempty" json:"ttl,omitempty" env:"TTL" validate:"min=0"`
	// SealKey enables at-rest encryption of cell text (32 bytes, base64).
	SealKey string `yaml:"sealKey,omitempty" json:"sealKey,omitempty" env:"SEAL_KEY" validate:"omitempty,base64"`
}

// ServerConfig configures `boardgen serve`.
type ServerConfig struct {
	Addr    string `yaml:"addr" json:"addr" env:"ADDR" validate:"required"`
	Metrics bool   `yaml:"metrics" json:"metrics" env:"METRICS"`
}

// Default returns the built-in configuration.
func Default() *Config {
	p := retry.DefaultPolicy()
	return &Config{
		Board: BoardConfig{
			Sections:        5,
			CellsPerSection: 5,
			Scale:           100,
		},
		Provider: ProviderConfig{
			Kind:    "static",
			Model:   "gpt-4o-mini",
			Timeout: 60 * time.Second,
		},
		Retry: RetryConfig{
			MaxAttempts:    p.MaxAttempts,
			InitialBackoff: p.InitialBackoff,
			MaxBackoff:     p.MaxBackoff,
		},
		Store: StoreConfig{
			Kind: "file",
			Path: ".boardgen/boards",
		},
		Server: ServerConfig{
			Addr:    ":8080",
			Metrics: true,
		},
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load reads path (YAML or JSON by extension) over the defaults, applies
// environment overrides and validates. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(path, data, cfg); err != nil {
			return nil, err
		}
	case errors.Is(err, os.ErrNotExist):
		// defaults only
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Provider.APIKey == "" {
		cfg.Provider.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return nil
	}
	// Default to YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Validate checks field constraints.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag())
			}
			return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// RetryPolicy converts the retry section, keeping the default factor and jitter.
func (c *Config) RetryPolicy() retry.Policy {
	p := retry.DefaultPolicy()
	p.MaxAttempts = c.Retry.MaxAttempts
	p.InitialBackoff = c.Retry.InitialBackoff
	p.MaxBackoff = c.Retry.MaxBackoff
	return p
}

// Write saves c as YAML, without secrets.
func (c *Config) Write(path string) error {
	out := *c
	out.Provider.APIKey = ""
	out.Store.SealKey = ""
	out.Store.RedisPass = ""
	data, err := yaml.Marshal(&out)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
