package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix namespaces environment overrides, e.g. RELAY_SERVER_PORT.
const EnvPrefix = "RELAY"

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

type Config struct {
	ServiceName string         `yaml:"service_name" split_words:"true"`
	Server      ServerConfig   `yaml:"server"`
	Database    DatabaseConfig `yaml:"database"`
	Bridge      BridgeConfig   `yaml:"bridge"`
	Logging     LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout" split_words:"true"`
	WriteTimeout    time.Duration `yaml:"write_timeout" split_words:"true"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" split_words:"true"`
	// PublicBaseURL overrides the base address derived from request headers
	// when building viewer URLs.
	PublicBaseURL string `yaml:"public_base_url" split_words:"true"`
	MaxBodyBytes  int64  `yaml:"max_body_bytes" split_words:"true"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
	DSN    string `yaml:"dsn"`
}

// BridgeConfig describes how the viewing page (and the printrelay CLI)
// reach the local print agent.
type BridgeConfig struct {
	AgentURL       string        `yaml:"agent_url" split_words:"true"`
	MaxAttempts    int           `yaml:"max_attempts" split_words:"true"`
	InitialBackoff time.Duration `yaml:"initial_backoff" split_words:"true"`
	MaxBackoff     time.Duration `yaml:"max_backoff" split_words:"true"`
	AckTimeout     time.Duration `yaml:"ack_timeout" split_words:"true"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func defaults() *Config {
	return &Config{
		ServiceName: "local-print-bridge",
		Server: ServerConfig{
			Port:            8000,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    1 << 20,
		},
		Database: DatabaseConfig{
			Driver: DriverSQLite,
			Path:   "./data/printjobs.db",
		},
		Bridge: BridgeConfig{
			AgentURL:       "ws://localhost:8765",
			MaxAttempts:    5,
			InitialBackoff: 500 * time.Millisecond,
			MaxBackoff:     8 * time.Second,
			AckTimeout:     30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file,
// an optional .env file and RELAY_* environment variables, in that order.
func Load(configPath string) (*Config, error) {
	cfg := defaults()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// A missing .env is normal; variables may come from the shell.
	_ = godotenv.Load()

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("service name is required")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Server.ReadTimeout < 0 {
		return fmt.Errorf("server read timeout must be non-negative")
	}

	if c.Server.WriteTimeout < 0 {
		return fmt.Errorf("server write timeout must be non-negative")
	}

	if c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("server shutdown timeout must be non-negative")
	}

	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server max body bytes must be positive")
	}

	if c.Server.PublicBaseURL != "" {
		u, err := url.Parse(c.Server.PublicBaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("public base url must be an absolute http(s) url, got %q", c.Server.PublicBaseURL)
		}
	}

	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database path is required for %s", DriverSQLite)
		}
	case DriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("database dsn is required for %s", DriverPostgres)
		}
	default:
		return fmt.Errorf("invalid database driver: %s (valid: %s, %s)", c.Database.Driver, DriverSQLite, DriverPostgres)
	}

	u, err := url.Parse(c.Bridge.AgentURL)
	if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") || u.Host == "" {
		return fmt.Errorf("bridge agent url must be a ws:// or wss:// url, got %q", c.Bridge.AgentURL)
	}

	if c.Bridge.MaxAttempts < 1 {
		return fmt.Errorf("bridge max attempts must be at least 1")
	}

	if c.Bridge.InitialBackoff <= 0 || c.Bridge.MaxBackoff <= 0 {
		return fmt.Errorf("bridge backoff durations must be positive")
	}

	if c.Bridge.MaxBackoff < c.Bridge.InitialBackoff {
		return fmt.Errorf("bridge max backoff must not be shorter than initial backoff")
	}

	if c.Bridge.AckTimeout <= 0 {
		return fmt.Errorf("bridge ack timeout must be positive")
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", c.Logging.Level)
	}

	validFormats := map[string]bool{
		"json":    true,
		"console": true,
	}

	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("invalid log format: %s (valid: json, console)", c.Logging.Format)
	}

	return nil
}
