// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full wardkeeper service configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Dispatch DispatchConfig `yaml:"dispatch"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Ledger   LedgerConfig   `yaml:"ledger"`
	Audit    AuditConfig    `yaml:"audit"`
	Archive  ArchiveConfig  `yaml:"archive"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Port     int    `yaml:"port"`
	LogLevel string `yaml:"log_level"`
}

// DispatchConfig tunes the dispatcher.
type DispatchConfig struct {
	GateTimeout time.Duration `yaml:"gate_timeout"`
	// StormRate is the sustained per-category reports/second above which a
	// fault storm is flagged. Zero disables storm detection.
	StormRate  float64 `yaml:"storm_rate"`
	StormBurst int     `yaml:"storm_burst"`
}

// CatalogConfig points at an authored strategy catalog. An empty path means
// the built-in defaults.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// LedgerConfig selects the resource ledger backing the gate.
type LedgerConfig struct {
	Mode string `yaml:"mode"` // "memory" or "postgres"
	DSN  string `yaml:"dsn"`
}

// AuditConfig configures the durable history sink and snapshot exports.
type AuditConfig struct {
	SinkMode  string `yaml:"sink_mode"` // "none" or "postgres"
	DSN       string `yaml:"dsn"`
	ExportDir string `yaml:"export_dir"`
	Compress  bool   `yaml:"compress"`
}

// ArchiveConfig configures snapshot shipping to S3-compatible storage.
type ArchiveConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// Load reads a YAML config file, applies defaults, then environment
// overrides, and validates the result. An empty path skips the file and
// builds the configuration from defaults and environment alone.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // operator-supplied path
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg.ApplyDefaults()
	LoadFromEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyDefaults fills zero-valued fields with production defaults.
func (c *Config) ApplyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8600
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Dispatch.GateTimeout == 0 {
		c.Dispatch.GateTimeout = 2 * time.Second
	}
	if c.Dispatch.StormBurst == 0 {
		c.Dispatch.StormBurst = 10
	}
	if c.Ledger.Mode == "" {
		c.Ledger.Mode = "memory"
	}
	if c.Audit.SinkMode == "" {
		c.Audit.SinkMode = "none"
	}
	if c.Audit.ExportDir == "" {
		c.Audit.ExportDir = os.TempDir()
	}
	if c.Archive.Region == "" {
		c.Archive.Region = "us-east-1"
	}
}

// Validate rejects configurations the binary cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: invalid server port %d", c.Server.Port)
	}
	switch c.Ledger.Mode {
	case "memory":
	case "postgres":
		if c.Ledger.DSN == "" {
			return fmt.Errorf("config: ledger mode postgres requires a dsn")
		}
	default:
		return fmt.Errorf("config: unknown ledger mode %q", c.Ledger.Mode)
	}
	switch c.Audit.SinkMode {
	case "none":
	case "postgres":
		if c.Audit.DSN == "" {
			return fmt.Errorf("config: audit sink mode postgres requires a dsn")
		}
	default:
		return fmt.Errorf("config: unknown audit sink mode %q", c.Audit.SinkMode)
	}
	if c.Archive.Enabled {
		if c.Archive.Endpoint == "" || c.Archive.Bucket == "" {
			return fmt.Errorf("config: archive requires an endpoint and a bucket")
		}
		if c.Archive.AccessKey == "" || c.Archive.SecretKey == "" {
			return fmt.Errorf("config: archive requires credentials")
		}
	}
	if c.Dispatch.StormRate < 0 {
		return fmt.Errorf("config: storm rate must not be negative")
	}
	return nil
}
