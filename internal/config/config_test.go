// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	t.Run("empty config gets production defaults", func(t *testing.T) {
		cfg := &Config{}
		cfg.ApplyDefaults()

		assert.Equal(t, 8600, cfg.Server.Port)
		assert.Equal(t, "info", cfg.Server.LogLevel)
		assert.Equal(t, 2*time.Second, cfg.Dispatch.GateTimeout)
		assert.Equal(t, "memory", cfg.Ledger.Mode)
		assert.Equal(t, "none", cfg.Audit.SinkMode)
		assert.NotEmpty(t, cfg.Audit.ExportDir)
	})

	t.Run("defaults do not clobber explicit values", func(t *testing.T) {
		cfg := &Config{}
		cfg.Server.Port = 9001
		cfg.Ledger.Mode = "postgres"
		cfg.ApplyDefaults()

		assert.Equal(t, 9001, cfg.Server.Port)
		assert.Equal(t, "postgres", cfg.Ledger.Mode)
	})
}

func TestConfig_Load(t *testing.T) {
	t.Run("loads a yaml file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "wardkeeper.yaml")
		doc := `
server:
  port: 9100
dispatch:
  gate_timeout: 500ms
  storm_rate: 25
ledger:
  mode: memory
audit:
  compress: true
`
		require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 9100, cfg.Server.Port)
		assert.Equal(t, 500*time.Millisecond, cfg.Dispatch.GateTimeout)
		assert.Equal(t, 25.0, cfg.Dispatch.StormRate)
		assert.True(t, cfg.Audit.Compress)
	})

	t.Run("empty path yields defaults", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, 8600, cfg.Server.Port)
	})

	t.Run("missing file errors", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed yaml errors", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o600))
		_, err := Load(path)
		assert.Error(t, err)
	})
}

func TestConfig_EnvOverrides(t *testing.T) {
	t.Run("environment wins over file values", func(t *testing.T) {
		t.Setenv("WARDKEEPER_PORT", "9555")
		t.Setenv("WARDKEEPER_LEDGER_MODE", "memory")
		t.Setenv("WARDKEEPER_GATE_TIMEOUT", "250ms")

		cfg := &Config{}
		cfg.Server.Port = 8600
		cfg.ApplyDefaults()
		LoadFromEnv(cfg)

		assert.Equal(t, 9555, cfg.Server.Port)
		assert.Equal(t, 250*time.Millisecond, cfg.Dispatch.GateTimeout)
	})

	t.Run("garbage numeric values are ignored", func(t *testing.T) {
		t.Setenv("WARDKEEPER_PORT", "not-a-port")

		cfg := &Config{}
		cfg.ApplyDefaults()
		LoadFromEnv(cfg)

		assert.Equal(t, 8600, cfg.Server.Port)
	})
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		cfg.ApplyDefaults()
		return cfg
	}

	t.Run("default config is valid", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("postgres ledger requires dsn", func(t *testing.T) {
		cfg := valid()
		cfg.Ledger.Mode = "postgres"
		assert.Error(t, cfg.Validate())

		cfg.Ledger.DSN = "postgres://localhost/wardkeeper"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("unknown ledger mode rejected", func(t *testing.T) {
		cfg := valid()
		cfg.Ledger.Mode = "etcd"
		assert.Error(t, cfg.Validate())
	})

	t.Run("archive requires endpoint bucket and credentials", func(t *testing.T) {
		cfg := valid()
		cfg.Archive.Enabled = true
		assert.Error(t, cfg.Validate())

		cfg.Archive.Endpoint = "https://s3.example.com"
		cfg.Archive.Bucket = "wardkeeper-audit"
		assert.Error(t, cfg.Validate())

		cfg.Archive.AccessKey = "key"
		cfg.Archive.SecretKey = "secret"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("negative storm rate rejected", func(t *testing.T) {
		cfg := valid()
		cfg.Dispatch.StormRate = -1
		assert.Error(t, cfg.Validate())
	})
}
