// internal/config/env.go
package config

import (
	"os"
	"strconv"
	"time"
)

// LoadFromEnv overlays WARDKEEPER_* environment variables onto cfg.
// Environment wins over the config file for deployment overrides.
func LoadFromEnv(cfg *Config) {
	if port := os.Getenv("WARDKEEPER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if level := os.Getenv("WARDKEEPER_LOG_LEVEL"); level != "" {
		cfg.Server.LogLevel = level
	}
	if timeout := os.Getenv("WARDKEEPER_GATE_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			cfg.Dispatch.GateTimeout = d
		}
	}
	if rate := os.Getenv("WARDKEEPER_STORM_RATE"); rate != "" {
		if r, err := strconv.ParseFloat(rate, 64); err == nil {
			cfg.Dispatch.StormRate = r
		}
	}
	if path := os.Getenv("WARDKEEPER_CATALOG_PATH"); path != "" {
		cfg.Catalog.Path = path
	}
	if mode := os.Getenv("WARDKEEPER_LEDGER_MODE"); mode != "" {
		cfg.Ledger.Mode = mode
	}
	if dsn := os.Getenv("WARDKEEPER_LEDGER_DSN"); dsn != "" {
		cfg.Ledger.DSN = dsn
	}
	if mode := os.Getenv("WARDKEEPER_AUDIT_SINK"); mode != "" {
		cfg.Audit.SinkMode = mode
	}
	if dsn := os.Getenv("WARDKEEPER_AUDIT_DSN"); dsn != "" {
		cfg.Audit.DSN = dsn
	}
	if dir := os.Getenv("WARDKEEPER_EXPORT_DIR"); dir != "" {
		cfg.Audit.ExportDir = dir
	}
}
