// Package config loads the server's YAML configuration file, grounded on
// domwatch/internal/config/file.go's LoadFile + applyDefaults shape:
// os.ReadFile, yaml.Unmarshal into a typed struct, then fill in any
// zero-valued field. CONFIG_FILE (an env var the entrypoint reads) is
// optional — every field here except Browser.ResourceBlocking also has an
// environment-variable override at the call site (LOG_LEVEL, HEALTH_PORT,
// CHROME_REMOTE_URL, STEALTH_LEVEL), so a deployment can mix a checked-in
// YAML baseline with per-instance env overrides.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level server configuration.
type Config struct {
	LogLevel   string        `yaml:"log_level"`
	HealthPort string        `yaml:"health_port"`
	Browser    BrowserConfig `yaml:"browser"`
}

// BrowserConfig controls the single Chrome instance the server drives
// (internal/session.Manager).
type BrowserConfig struct {
	RemoteURL        string   `yaml:"remote_url"`
	Stealth          string   `yaml:"stealth"` // headless | headful
	ResourceBlocking []string `yaml:"resource_blocking"`
}

// New returns a Config with every default applied and no file read — the
// baseline used when CONFIG_FILE is unset.
func New() *Config {
	var c Config
	c.applyDefaults()
	return &c
}

// LoadFile reads and parses a YAML configuration file, applying the same
// defaults New does to any field the file left unset.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.HealthPort == "" {
		c.HealthPort = "8090"
	}
	if c.Browser.Stealth == "" {
		c.Browser.Stealth = "headless"
	}
	if len(c.Browser.ResourceBlocking) == 0 {
		c.Browser.ResourceBlocking = []string{"images", "fonts", "media"}
	}
}
