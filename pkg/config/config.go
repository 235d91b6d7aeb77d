// Package config loads the settings needed to run the proxy as a
// standalone process: the YAML file shape, merged with flag overrides,
// that cmd/assetproxy exposes. Callers embedding pkg/supervisor directly
// construct supervisor.Options themselves and never touch this package.
package config

import (
	"fmt"
	"net/url"
	"os"

	"go.yaml.in/yaml/v3"
)

const (
	defaultPort             = 18080
	defaultLogLevel         = "info"
	defaultIndexConcurrency = 8
)

// Config is the file-backed configuration for cmd/assetproxy.
type Config struct {
	Port             int    `yaml:"port"`
	ClientFolder     string `yaml:"clientFolder"`
	OriginURL        string `yaml:"originURL"`
	LogLevel         string `yaml:"logLevel"`
	IndexConcurrency int    `yaml:"indexConcurrency"`
}

// New returns a Config populated with built-in defaults.
func New() *Config {
	return &Config{
		Port:             defaultPort,
		LogLevel:         defaultLogLevel,
		IndexConcurrency: defaultIndexConcurrency,
	}
}

// Load reads path as YAML over top of the built-in defaults. A missing
// file is not an error: it returns the defaults, over which flag
// overrides can then be applied.
func Load(path string) (*Config, error) {
	cfg := New()

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks that the fields required to start the proxy are
// present and well-formed.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: invalid port %d", c.Port)
	}
	if c.ClientFolder == "" {
		return fmt.Errorf("config: clientFolder is required")
	}
	if c.OriginURL == "" {
		return fmt.Errorf("config: originURL is required")
	}
	if c.IndexConcurrency <= 0 {
		return fmt.Errorf("config: indexConcurrency must be positive")
	}
	return nil
}

// Origin parses OriginURL.
func (c *Config) Origin() (*url.URL, error) {
	u, err := url.Parse(c.OriginURL)
	if err != nil {
		return nil, fmt.Errorf("config: parse originURL: %w", err)
	}
	return u, nil
}
