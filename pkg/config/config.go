package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/odvcencio/loom/pkg/paths"
)

// Default configuration values exported for documentation and validation
const (
	DefaultOllamaHost         = "http://localhost:11434"
	DefaultOllamaModel        = "llama3"
	DefaultDailySummaryHour   = 17
	DefaultDailySummaryMinute = 0
)

// Config represents the complete Loom configuration
type Config struct {
	BaseDir string        `yaml:"base_dir"`
	Ollama  OllamaConfig  `yaml:"ollama"`
	Summary SummaryConfig `yaml:"summary"`
	Notify  NotifyConfig  `yaml:"notify"`
	Logging LoggingConfig `yaml:"logging"`

	mu   sync.Mutex
	path string
}

// OllamaConfig points at the local inference endpoint
type OllamaConfig struct {
	Host  string `yaml:"host"`
	Model string `yaml:"model"`
}

// SummaryConfig controls the daily summarization job
type SummaryConfig struct {
	Enabled bool `yaml:"enabled"`
	Hour    int  `yaml:"hour"`
	Minute  int  `yaml:"minute"`
}

// NotifyConfig controls desktop notifications
type NotifyConfig struct {
	Enabled bool `yaml:"enabled"`
	// Command overrides the platform default notifier binary. The title and
	// message are passed as the final two arguments.
	Command string `yaml:"command,omitempty"`
}

// LoggingConfig controls the structured engine log
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		BaseDir: paths.BaseDir(),
		Ollama: OllamaConfig{
			Host:  DefaultOllamaHost,
			Model: DefaultOllamaModel,
		},
		Summary: SummaryConfig{
			Enabled: true,
			Hour:    DefaultDailySummaryHour,
			Minute:  DefaultDailySummaryMinute,
		},
		Notify: NotifyConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration: defaults, then the config file when present,
// then LOOM_* environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if strings.TrimSpace(path) == "" {
		path = paths.ConfigFile(cfg.BaseDir)
	}
	cfg.path = path

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("LOOM_OLLAMA_HOST")); v != "" {
		cfg.Ollama.Host = v
	}
	if v := strings.TrimSpace(os.Getenv("LOOM_OLLAMA_MODEL")); v != "" {
		cfg.Ollama.Model = v
	}
	if v, ok := parseBoolEnv("LOOM_SUMMARY_ENABLED"); ok {
		cfg.Summary.Enabled = v
	}
	if v, ok := parseIntEnv("LOOM_SUMMARY_HOUR"); ok {
		cfg.Summary.Hour = v
	}
	if v, ok := parseIntEnv("LOOM_SUMMARY_MINUTE"); ok {
		cfg.Summary.Minute = v
	}
	if v := strings.TrimSpace(os.Getenv("LOOM_LOG_LEVEL")); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BaseDir) == "" {
		return fmt.Errorf("base_dir must not be empty")
	}
	if strings.TrimSpace(c.Ollama.Host) == "" {
		return fmt.Errorf("ollama.host must not be empty")
	}
	if strings.TrimSpace(c.Ollama.Model) == "" {
		return fmt.Errorf("ollama.model must not be empty")
	}
	if c.Summary.Hour < 0 || c.Summary.Hour > 23 {
		return fmt.Errorf("summary.hour must be 0-23, got %d", c.Summary.Hour)
	}
	if c.Summary.Minute < 0 || c.Summary.Minute > 59 {
		return fmt.Errorf("summary.minute must be 0-59, got %d", c.Summary.Minute)
	}
	return nil
}

// Path returns the file this config was loaded from (or will save to)
func (c *Config) Path() string {
	if strings.TrimSpace(c.path) == "" {
		return paths.ConfigFile(c.BaseDir)
	}
	return c.path
}

// Save writes the configuration back to its file
func (c *Config) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saveLocked()
}

func (c *Config) saveLocked() error {
	path := c.Path()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}

// SetSummaryEnabled toggles the daily summary job and persists the change.
// The tray/UI collaborator flips this at runtime.
func (c *Config) SetSummaryEnabled(enabled bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Summary.Enabled = enabled
	return c.saveLocked()
}

// SetSummaryTime updates the daily summary trigger time and persists it
func (c *Config) SetSummaryTime(hour, minute int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	prevHour, prevMinute := c.Summary.Hour, c.Summary.Minute
	c.Summary.Hour = hour
	c.Summary.Minute = minute
	if err := c.Validate(); err != nil {
		c.Summary.Hour, c.Summary.Minute = prevHour, prevMinute
		return err
	}
	return c.saveLocked()
}

func parseBoolEnv(key string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return false, false
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return val, true
}

func parseIntEnv(key string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0, false
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return val, true
}
