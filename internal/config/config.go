// Package config loads the healthd configuration from YAML with environment
// variable overrides. Durations are stored as strings in the file and parsed
// through the accessor methods so a malformed value falls back to a sane
// default instead of failing startup.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all healthd configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	Server  ServerConfig  `yaml:"server"`
	LLM     LLMConfig     `yaml:"llm"`
	Storage StorageConfig `yaml:"storage"`
	Agent   AgentConfig   `yaml:"agent"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Port        int    `yaml:"port"`
	TurnTimeout string `yaml:"turn_timeout"` // Deadline applied around a whole turn
}

// LLMConfig configures the language model client.
type LLMConfig struct {
	Provider string `yaml:"provider"` // openai, anthropic
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
	Timeout  string `yaml:"timeout"`
}

// StorageConfig configures the SQLite store.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
	DataDir      string `yaml:"data_dir"`
}

// AgentConfig configures the turn orchestration engine.
type AgentConfig struct {
	// CacheTTL is the window within which cached checkins are considered
	// fresh without re-querying storage.
	CacheTTL string `yaml:"cache_ttl"`

	// ContextWindowDays is the trailing window queried on a cache refresh.
	ContextWindowDays int `yaml:"context_window_days"`

	// HistoryWindow bounds the sliding conversation history per session
	// (entries, oldest evicted first).
	HistoryWindow int `yaml:"history_window"`

	// RecentCheckinLimit bounds the checkin digest embedded in the prompt.
	RecentCheckinLimit int `yaml:"recent_checkin_limit"`

	// SessionTTL is how long an idle session survives before eviction.
	SessionTTL string `yaml:"session_ttl"`
}

// LoggingConfig configures the categorized debug logging.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"` // debug, info, warn, error
	JSONFormat bool            `yaml:"json_format"`
	Categories map[string]bool `yaml:"categories"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "healthd",
		Version: "1.0.0",

		Server: ServerConfig{
			Port:        8090,
			TurnTimeout: "60s",
		},

		LLM: LLMConfig{
			Provider: "openai",
			Model:    "gpt-4o-mini",
			BaseURL:  "https://api.openai.com/v1",
			Timeout:  "120s",
		},

		Storage: StorageConfig{
			DatabasePath: "data/healthd.db",
			DataDir:      "data",
		},

		Agent: AgentConfig{
			CacheTTL:           "5m",
			ContextWindowDays:  7,
			HistoryWindow:      20,
			RecentCheckinLimit: 10,
			SessionTTL:         "24h",
		},

		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// applyEnvOverrides lets environment variables win over file values.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" && c.LLM.Provider == "openai" {
		c.LLM.APIKey = key
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" && c.LLM.Provider == "anthropic" {
		c.LLM.APIKey = key
	}
	if key := os.Getenv("HEALTHD_API_KEY"); key != "" {
		c.LLM.APIKey = key
	}
	if provider := os.Getenv("HEALTHD_LLM_PROVIDER"); provider != "" {
		c.LLM.Provider = provider
	}
	if model := os.Getenv("HEALTHD_LLM_MODEL"); model != "" {
		c.LLM.Model = model
	}
	if url := os.Getenv("HEALTHD_LLM_BASE_URL"); url != "" {
		c.LLM.BaseURL = url
	}
	if path := os.Getenv("HEALTHD_DB"); path != "" {
		c.Storage.DatabasePath = path
	}
	if dir := os.Getenv("HEALTHD_DATA_DIR"); dir != "" {
		c.Storage.DataDir = dir
	}
	if port := os.Getenv("HEALTHD_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil && p > 0 {
			c.Server.Port = p
		}
	}
	if debug := os.Getenv("HEALTHD_DEBUG"); debug != "" {
		c.Logging.DebugMode = debug == "1" || debug == "true"
	}
}

// Validate checks the configuration for fatal problems.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Storage.DatabasePath == "" {
		return fmt.Errorf("storage.database_path is required")
	}
	switch c.LLM.Provider {
	case "openai", "anthropic", "mock":
	default:
		return fmt.Errorf("unknown llm provider: %q", c.LLM.Provider)
	}
	if c.Agent.HistoryWindow < 2 {
		return fmt.Errorf("agent.history_window must be at least 2")
	}
	return nil
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// TurnTimeout returns the parsed turn deadline.
func (c *ServerConfig) TurnTimeoutDuration() time.Duration {
	return parseDuration(c.TurnTimeout, 60*time.Second)
}

// TimeoutDuration returns the parsed LLM request timeout.
func (c *LLMConfig) TimeoutDuration() time.Duration {
	return parseDuration(c.Timeout, 120*time.Second)
}

// CacheTTLDuration returns the parsed cache freshness window.
func (c *AgentConfig) CacheTTLDuration() time.Duration {
	return parseDuration(c.CacheTTL, 5*time.Minute)
}

// SessionTTLDuration returns the parsed idle session lifetime.
func (c *AgentConfig) SessionTTLDuration() time.Duration {
	return parseDuration(c.SessionTTL, 24*time.Hour)
}

// ContextWindow returns the trailing checkin window as a duration.
func (c *AgentConfig) ContextWindow() time.Duration {
	days := c.ContextWindowDays
	if days <= 0 {
		days = 7
	}
	return time.Duration(days) * 24 * time.Hour
}
