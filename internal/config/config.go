// Package config loads the site configuration (unify.yaml) with environment
// expansion and normalized enum-ish fields.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Source  string        `yaml:"source"`
	Output  OutputConfig  `yaml:"output"`
	Build   BuildConfig   `yaml:"build"`
	Serve   ServeConfig   `yaml:"serve"`
	Logging LoggingConfig `yaml:"logging"`
}

// OutputConfig represents output configuration
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Clean     bool   `yaml:"clean"` // Clean output directory before build
}

// BuildConfig controls composition behavior
type BuildConfig struct {
	FailFast    bool   `yaml:"fail_fast"`
	Concurrency int    `yaml:"concurrency"`
	Cache       *bool  `yaml:"cache,omitempty"`
	CachePath   string `yaml:"cache_path"`
}

// ServeConfig controls the development server
type ServeConfig struct {
	Port       int   `yaml:"port"`
	LiveReload *bool `yaml:"live_reload,omitempty"`
	Metrics    bool  `yaml:"metrics"`
}

// LoggingConfig controls log output
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// CacheEnabled reports whether the content-hash cache should be used.
// Absent means enabled; the build stays correct either way.
func (b BuildConfig) CacheEnabled() bool {
	return b.Cache == nil || *b.Cache
}

// LiveReloadEnabled reports whether the serve mode injects live reload.
func (s ServeConfig) LiveReloadEnabled() bool {
	return s.LiveReload == nil || *s.LiveReload
}

// Load loads configuration from the specified file. A missing file yields
// defaults rather than an error so `unify build` works in a bare directory.
func Load(configPath string) (*Config, error) {
	// Load .env if present so ${VAR} expansion in the YAML sees it.
	_ = godotenv.Load()

	cfg := Default()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Source == "" {
		c.Source = "."
	}
	if c.Output.Directory == "" {
		c.Output.Directory = "dist"
	}
	if c.Build.Concurrency <= 0 {
		c.Build.Concurrency = 4
	}
	if c.Build.CachePath == "" {
		c.Build.CachePath = ".unify/cache.db"
	}
	if c.Serve.Port == 0 {
		c.Serve.Port = 3000
	}
	if c.Logging.Level == "" {
		c.Logging.Level = LogLevelInfo
	}
	if c.Logging.Format == "" {
		c.Logging.Format = LogFormatText
	}
}

func (c *Config) validate() error {
	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		return fmt.Errorf("invalid serve port: %d", c.Serve.Port)
	}
	return nil
}
