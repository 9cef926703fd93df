package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "file", cfg.Storage.Driver)
	assert.Equal(t, ".eventstorming_workshops", filepath.Base(cfg.Storage.Dir))
	assert.Equal(t, 5, cfg.Flow.MaxDepth)
	assert.Equal(t, 100, cfg.Flow.MaxElements)
	assert.Equal(t, 50, cfg.Query.PageSize)
	assert.Equal(t, 2.0, cfg.Query.BalanceFactor)
	assert.Equal(t, 25000, cfg.Output.CharacterLimit)
	assert.Equal(t, "stdio", cfg.MCP.Transport)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eventstorm.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
storage:
  driver: sqlite
  sqlite_path: /tmp/es.db
log:
  level: debug
  format: json
flow:
  max_depth: 8
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "/tmp/es.db", cfg.Storage.SQLitePath)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8, cfg.Flow.MaxDepth)
	// Untouched keys keep their defaults.
	assert.Equal(t, 100, cfg.Flow.MaxElements)
}

func TestLoad_JSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eventstorm.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"redis": {"addr": "cache:6379", "lock": true}, "storage": {"driver": "redis"}}`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "redis", cfg.Storage.Driver)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.True(t, cfg.Redis.Lock)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eventstorm.yaml")
	require.NoError(t, os.WriteFile(path, []byte("query:\n  page_size: 20\n"), 0644))

	t.Setenv("EVENTSTORM_QUERY_PAGE_SIZE", "30")
	t.Setenv("EVENTSTORM_STORAGE_DRIVER", "memory")
	t.Setenv("EVENTSTORM_QUERY_BALANCE_FACTOR", "3.5")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Query.PageSize)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, 3.5, cfg.Query.BalanceFactor)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed env", func(t *testing.T) {
		t.Setenv("EVENTSTORM_FLOW_MAX_DEPTH", "deep")
		_, err := Load("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "EVENTSTORM_FLOW_MAX_DEPTH")
	})

	t.Run("out of range", func(t *testing.T) {
		t.Setenv("EVENTSTORM_FLOW_MAX_DEPTH", "50")
		_, err := Load("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "MaxDepth")
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("EVENTSTORM_STORAGE_DRIVER", "postgres")
		_, err := Load("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Driver")
	})
}
