// Package config provides configuration management for nearlight.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/mrz1836/nearlight/internal/fileutil"
	nlerr "github.com/mrz1836/nearlight/pkg/errors"
)

// Config represents the client configuration.
type Config struct {
	Version int           `yaml:"version" json:"version"`
	Home    string        `yaml:"home" json:"home"`
	Network NetworkConfig `yaml:"network" json:"network"`
	Wallet  WalletConfig  `yaml:"wallet" json:"wallet"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// NetworkConfig selects the chain network and node endpoint.
type NetworkConfig struct {
	NetworkID string  `yaml:"network_id" json:"network_id"`
	NodeURL   string  `yaml:"node_url" json:"node_url"`
	RateLimit float64 `yaml:"rate_limit" json:"rate_limit"` // requests per second, 0 for default
}

// WalletConfig configures the external wallet bridge.
type WalletConfig struct {
	// BaseURL is the web wallet endpoint used for redirect flows.
	BaseURL string `yaml:"base_url" json:"base_url"`

	// CallbackURL is where the wallet returns the user after signing.
	CallbackURL string `yaml:"callback_url" json:"callback_url"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// Load reads configuration from the specified file, applies defaults for
// missing fields, and then environment overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- config file path is from validated user input
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nlerr.WithDetails(nlerr.ErrConfigNotFound, map[string]string{
				"path": path,
			})
		}
		return nil, err
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, nlerr.Wrap(nlerr.ErrConfigInvalid, "parsing %s", path)
	}

	cfg.applyNetwork()
	ApplyEnvironment(cfg)
	return cfg, nil
}

// LoadOrDefault loads the config file when present and falls back to the
// defaults (plus environment overrides) when it is not.
func LoadOrDefault(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		cfg = Defaults()
		cfg.applyNetwork()
		ApplyEnvironment(cfg)
	}
	return cfg
}

// Save writes the configuration to the specified file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return fileutil.WriteAtomic(path, data, 0o600)
}

// StorePath returns the path of the persisted store file under Home.
func (c *Config) StorePath() string {
	return filepath.Join(c.Home, c.Network.NetworkID+".store.json")
}

// DefaultConfigPath returns the default config file location.
func DefaultConfigPath(home string) string {
	return filepath.Join(home, "config.yaml")
}

// applyNetwork fills the node URL from the named network when the config
// names a known network but no explicit endpoint.
func (c *Config) applyNetwork() {
	if c.Network.NodeURL != "" {
		return
	}
	if n, ok := Networks[c.Network.NetworkID]; ok {
		c.Network.NodeURL = n.NodeURL
	}
}
