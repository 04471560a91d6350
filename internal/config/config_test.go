package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 8090, cfg.Server.Port)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, 5*time.Minute, cfg.Agent.CacheTTLDuration())
	assert.Equal(t, 7*24*time.Hour, cfg.Agent.ContextWindow())
	assert.Equal(t, 24*time.Hour, cfg.Agent.SessionTTLDuration())
	assert.Equal(t, 20, cfg.Agent.HistoryWindow)
	require.NoError(t, cfg.Validate())
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Server.Port, cfg.Server.Port)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "healthd.yaml")
	data := []byte(`
server:
  port: 9999
  turn_timeout: 30s
llm:
  provider: mock
agent:
  cache_ttl: 2m
  history_window: 10
`)
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.TurnTimeoutDuration())
	assert.Equal(t, "mock", cfg.LLM.Provider)
	assert.Equal(t, 2*time.Minute, cfg.Agent.CacheTTLDuration())
	assert.Equal(t, 10, cfg.Agent.HistoryWindow)
	// Unset fields keep defaults.
	assert.Equal(t, "data/healthd.db", cfg.Storage.DatabasePath)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("HEALTHD_PORT", "7070")
	t.Setenv("HEALTHD_LLM_PROVIDER", "anthropic")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	t.Setenv("HEALTHD_DB", "/tmp/other.db")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, "/tmp/other.db", cfg.Storage.DatabasePath)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.Port = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.LLM.Provider = "clippy"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Storage.DatabasePath = ""
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Agent.HistoryWindow = 1
	assert.Error(t, cfg.Validate())
}

func TestMalformedDurationFallsBack(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Agent.CacheTTL = "not-a-duration"
	assert.Equal(t, 5*time.Minute, cfg.Agent.CacheTTLDuration())

	cfg.Server.TurnTimeout = "-3s"
	assert.Equal(t, 60*time.Second, cfg.Server.TurnTimeoutDuration())
}

func TestWatchReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "healthd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 8090\n"), 0644))

	changed := make(chan *Config, 1)
	stop, err := Watch(path, func(c *Config) {
		select {
		case changed <- c:
		default:
		}
	})
	require.NoError(t, err)
	defer stop()

	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 8181\n"), 0644))

	select {
	case cfg := <-changed:
		assert.Equal(t, 8181, cfg.Server.Port)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not observe the config change")
	}
}
