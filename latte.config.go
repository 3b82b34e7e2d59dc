package latte

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the optional file-based configuration consumed by the CLI and
// available to programmatic callers. All fields have working defaults, so an
// absent file is not an error for callers that use LoadConfigIfPresent.
type Config struct {
	// ComponentsDir is a directory of .tex component files loaded at startup.
	ComponentsDir string `yaml:"components_dir"`

	// Strict makes undefined variables in output positions fatal.
	Strict bool `yaml:"strict"`

	// MaxDepth overrides the nesting ceiling. Zero keeps the default.
	MaxDepth int `yaml:"max_depth"`

	// Store selects the component store backend.
	Store StoreConfig `yaml:"store"`
}

// StoreConfig selects and configures a component store driver.
type StoreConfig struct {
	// Driver is the store driver name: memory, dir, or postgres.
	Driver string `yaml:"driver"`

	// DSN is the driver-specific connection string: a directory path for
	// dir, a PostgreSQL DSN for postgres, ignored for memory.
	DSN string `yaml:"dsn"`
}

// DefaultConfigFile is the config file name looked up in the working
// directory.
const DefaultConfigFile = "latte.yaml"

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		MaxDepth: DefaultMaxDepth,
		Store: StoreConfig{
			Driver: DriverNameMemory,
		},
	}
}

// LoadConfig reads and parses a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewConfigError(path, err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, NewConfigError(path, err)
	}

	if config.MaxDepth == 0 {
		config.MaxDepth = DefaultMaxDepth
	}
	if config.Store.Driver == "" {
		config.Store.Driver = DriverNameMemory
	}

	return config, nil
}

// LoadConfigIfPresent loads a config file if it exists, or returns defaults.
func LoadConfigIfPresent(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}

// EngineOptions converts the configuration into engine options. The caller
// owns the returned store (if any) and must Close it.
func (c *Config) EngineOptions() ([]Option, ComponentStore, error) {
	store, err := OpenStore(c.Store.Driver, c.Store.DSN)
	if err != nil {
		return nil, nil, err
	}

	opts := []Option{
		WithStore(store),
		WithStrictMode(c.Strict),
		WithMaxDepth(c.MaxDepth),
	}
	return opts, store, nil
}
