package turniti

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds configuration for the Relay.
type Config struct {
	// Ceiling is the maximum number of jobs processed concurrently
	// across all users.
	Ceiling int `yaml:"ceiling"`

	// ProcessTimeout bounds a single processing attempt.
	ProcessTimeout time.Duration `yaml:"process_timeout"`

	// ShutdownTimeout is the maximum time to wait for in-flight jobs
	// during graceful shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// SubmitRate limits how many submissions per second one user may
	// make, with SubmitBurst as the burst allowance. Zero disables
	// the limiter.
	SubmitRate  float64 `yaml:"submit_rate"`
	SubmitBurst int     `yaml:"submit_burst"`

	// WorkDir is where downloaded artifacts are staged before delivery.
	WorkDir string `yaml:"work_dir"`

	// Store selects and configures the persistence backend.
	Store StoreConfig `yaml:"store"`

	// Processor configures the remote document-processing service.
	Processor ProcessorConfig `yaml:"processor"`

	// Telegram configures delivery over the Telegram Bot API. An empty
	// token selects log-only delivery.
	Telegram TelegramConfig `yaml:"telegram"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	// Driver is one of "memory", "postgres", "redis".
	Driver string `yaml:"driver"`

	// DSN is the PostgreSQL connection string (postgres driver).
	DSN string `yaml:"dsn"`

	// Addr is the Redis address (redis driver).
	Addr string `yaml:"addr"`
}

// ProcessorConfig configures the remote processing service client.
type ProcessorConfig struct {
	BaseURL    string        `yaml:"base_url"`
	UploadPath string        `yaml:"upload_path"`
	Attempts   int           `yaml:"attempts"`
	Timeout    time.Duration `yaml:"timeout"`
}

// TelegramConfig configures Bot API delivery.
type TelegramConfig struct {
	Token string `yaml:"token"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Ceiling:         2,
		ProcessTimeout:  2 * time.Minute,
		ShutdownTimeout: 30 * time.Second,
		SubmitRate:      1,
		SubmitBurst:     3,
		WorkDir:         os.TempDir(),
		Store:           StoreConfig{Driver: "memory"},
		Processor:       ProcessorConfig{Attempts: 3},
	}
}

// LoadConfig reads a YAML config file, expanding ${ENV} references.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("turniti: read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, fmt.Errorf("turniti: parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the config for required fields and consistency.
func (c Config) Validate() error {
	if c.Ceiling < 1 {
		return fmt.Errorf("turniti: config: ceiling must be at least 1")
	}
	switch c.Store.Driver {
	case "memory":
	case "postgres":
		if c.Store.DSN == "" {
			return fmt.Errorf("turniti: config: postgres driver requires dsn")
		}
	case "redis":
		if c.Store.Addr == "" {
			return fmt.Errorf("turniti: config: redis driver requires addr")
		}
	default:
		return fmt.Errorf("turniti: config: unknown store driver %q", c.Store.Driver)
	}
	if c.Processor.BaseURL == "" {
		return fmt.Errorf("turniti: config: processor base_url is required")
	}
	return nil
}
