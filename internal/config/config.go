package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/l3aro/go-sdg/internal/log"
)

// Config holds all configuration for sdg
type Config struct {
	// Logging
	LogLevel string `yaml:"log_level" env:"SDG_LOG_LEVEL"`
	LogJSON  bool   `yaml:"log_json" env:"SDG_LOG_JSON"`

	// Reaching definitions
	MaxIterations int  `yaml:"max_iterations" env:"SDG_MAX_ITERATIONS"`
	Workers       int  `yaml:"workers" env:"SDG_WORKERS"`
	InitialState  bool `yaml:"initial_state" env:"SDG_INITIAL_STATE"`

	// Graph cache. An empty path keeps the cache in memory.
	CacheSize int    `yaml:"cache_size" env:"SDG_CACHE_SIZE"`
	CachePath string `yaml:"cache_path" env:"SDG_CACHE_PATH"`

	// Exclude lists extra gitignore-style patterns skipped when scanning
	// directories.
	Exclude []string `yaml:"exclude" env:"SDG_EXCLUDE"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:      "info",
		LogJSON:       false,
		MaxIterations: 1000,
		Workers:       4,
		InitialState:  false,
		CacheSize:     128,
		CachePath:     defaultCachePath(),
		Exclude:       nil,
	}
}

func defaultCachePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".sdg", "graphs.cache")
}

// globalConfigFilePath returns the global config file path (~/.sdg/config.yaml)
func globalConfigFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".sdg/config.yaml"
	}
	return filepath.Join(home, ".sdg", "config.yaml")
}

// ProjectConfigFilePath returns the project-level config file path (./.sdg/config.yaml)
func ProjectConfigFilePath() string {
	return filepath.Join(".sdg", "config.yaml")
}

// Load reads configuration with the following priority (highest to lowest):
// 1. Environment variables
// 2. Project-level config (./.sdg/config.yaml)
// 3. Global config (~/.sdg/config.yaml)
// 4. Defaults
func Load() (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range []string{globalConfigFilePath(), ProjectConfigFilePath()} {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile reads configuration from a specific YAML file path
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	if data, err := os.ReadFile(path); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the specified YAML file path.
// It creates parent directories if they don't exist.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to the config
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SDG_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("SDG_LOG_JSON"); v != "" {
		cfg.LogJSON = parseBool(v)
	}
	if v := os.Getenv("SDG_MAX_ITERATIONS"); v != "" {
		if i := parseInt(v); i > 0 {
			cfg.MaxIterations = i
		}
	}
	if v := os.Getenv("SDG_WORKERS"); v != "" {
		if i := parseInt(v); i > 0 {
			cfg.Workers = i
		}
	}
	if v := os.Getenv("SDG_INITIAL_STATE"); v != "" {
		cfg.InitialState = parseBool(v)
	}
	if v := os.Getenv("SDG_CACHE_SIZE"); v != "" {
		if i := parseInt(v); i >= 0 {
			cfg.CacheSize = i
		}
	}
	if v, ok := os.LookupEnv("SDG_CACHE_PATH"); ok {
		cfg.CachePath = v
	}
	if v := os.Getenv("SDG_EXCLUDE"); v != "" {
		cfg.Exclude = nil
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				cfg.Exclude = append(cfg.Exclude, p)
			}
		}
	}
}

// Validate checks that the configuration has valid fields
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}
	if c.MaxIterations <= 0 {
		return fmt.Errorf("max_iterations must be positive")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cache_size must be non-negative")
	}
	return nil
}

// Logger builds a logger configured by the log settings.
func (c *Config) Logger() *log.ZapLogger {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	return log.New(log.LoggerConfig{Level: level, JSONOutput: c.LogJSON})
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "1", "yes":
		return true
	}
	return false
}

// parseInt attempts to parse a string as int, returning -1 on failure
func parseInt(s string) int {
	var i int
	if _, err := fmt.Sscanf(s, "%d", &i); err != nil {
		return -1
	}
	return i
}
