// config.go - Environment and file configuration
//
// Values come from three layers: built-in defaults, an optional YAML file named by
// TABMUX_CONFIG, and environment variables. Environment variables win over the file,
// except SHELL.

package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Default sizes
const (
	DefaultCols          = 80
	DefaultRows          = 24
	DefaultBufferCeiling = 50_000
	DefaultBufferFloor   = 40_000
)

// Config holds all application configuration.
type Config struct {
	// Shell overrides the platform default shell
	Shell string `envconfig:"SHELL"`
	// File is an optional YAML file layered under the environment
	File string `envconfig:"TABMUX_CONFIG"`

	Terminal TerminalConfig
	Buffer   BufferConfig
	Logging  LogConfig
	Metrics  MetricsConfig
	Keys     KeyConfig `ignored:"true"`
}

// TerminalConfig holds the fallback size used when the host size is unknown.
type TerminalConfig struct {
	Cols int `envconfig:"TABMUX_COLS" default:"80"`
	Rows int `envconfig:"TABMUX_ROWS" default:"24"`
}

// BufferConfig holds the per-session output retention policy.
type BufferConfig struct {
	Ceiling int `envconfig:"TABMUX_BUFFER_CEILING" default:"50000"`
	Floor   int `envconfig:"TABMUX_BUFFER_FLOOR" default:"40000"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"TABMUX_LOG_LEVEL" default:"info"`
	File        string `envconfig:"TABMUX_LOG_FILE"`
	Development bool   `envconfig:"TABMUX_LOG_DEV" default:"false"`
}

// MetricsConfig holds the optional metrics endpoint address.
type MetricsConfig struct {
	Addr string `envconfig:"TABMUX_METRICS_ADDR"`
}

// KeyConfig maps multiplexer commands to key names as reported by Bubble Tea.
type KeyConfig struct {
	Quit     []string `yaml:"quit"`
	NewTab   []string `yaml:"new_tab"`
	CloseTab []string `yaml:"close_tab"`
	NextTab  []string `yaml:"next_tab"`
	PrevTab  []string `yaml:"prev_tab"`
}

// DefaultKeys returns the built-in key bindings.
func DefaultKeys() KeyConfig {
	return KeyConfig{
		Quit:     []string{"ctrl+q"},
		NewTab:   []string{"ctrl+t"},
		CloseTab: []string{"ctrl+w"},
		NextTab:  []string{"ctrl+right"},
		PrevTab:  []string{"ctrl+left"},
	}
}

// fileConfig is the YAML layout. Pointers distinguish absent keys from zero values.
type fileConfig struct {
	Shell  *string `yaml:"shell"`
	Buffer *struct {
		Ceiling *int `yaml:"ceiling"`
		Floor   *int `yaml:"floor"`
	} `yaml:"buffer"`
	Logging *struct {
		Level       *string `yaml:"level"`
		File        *string `yaml:"file"`
		Development *bool   `yaml:"development"`
	} `yaml:"logging"`
	Metrics *struct {
		Addr *string `yaml:"addr"`
	} `yaml:"metrics"`
	Keys KeyConfig `yaml:"keys"`
}

// Load loads configuration from environment variables and the optional file.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file that takes the place of TABMUX_CONFIG.
func LoadFile(path string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Keys = DefaultKeys()
	if path != "" {
		cfg.File = path
	}

	if cfg.File != "" {
		if err := cfg.applyFile(cfg.File); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Terminal: TerminalConfig{Cols: DefaultCols, Rows: DefaultRows},
		Buffer:   BufferConfig{Ceiling: DefaultBufferCeiling, Floor: DefaultBufferFloor},
		Logging:  LogConfig{Level: "info"},
		Keys:     DefaultKeys(),
	}
}

// Validate rejects unusable buffer and terminal sizes.
func (c *Config) Validate() error {
	var errs []error
	if c.Buffer.Ceiling <= 0 {
		errs = append(errs, fmt.Errorf("buffer ceiling must be positive, got %d", c.Buffer.Ceiling))
	}
	if c.Buffer.Floor <= 0 {
		errs = append(errs, fmt.Errorf("buffer floor must be positive, got %d", c.Buffer.Floor))
	}
	if c.Buffer.Floor > c.Buffer.Ceiling {
		errs = append(errs, fmt.Errorf("buffer floor %d exceeds ceiling %d", c.Buffer.Floor, c.Buffer.Ceiling))
	}
	if c.Terminal.Cols <= 0 || c.Terminal.Rows <= 0 {
		errs = append(errs, fmt.Errorf("terminal size must be positive, got %dx%d", c.Terminal.Cols, c.Terminal.Rows))
	}
	return errors.Join(errs...)
}

// applyFile layers the YAML file under values explicitly set in the environment.
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	// SHELL is set by the login environment, so a shell named in the file is the
	// more deliberate choice and takes precedence.
	if fc.Shell != nil {
		c.Shell = *fc.Shell
	}
	if b := fc.Buffer; b != nil {
		if b.Ceiling != nil && !envSet("TABMUX_BUFFER_CEILING") {
			c.Buffer.Ceiling = *b.Ceiling
		}
		if b.Floor != nil && !envSet("TABMUX_BUFFER_FLOOR") {
			c.Buffer.Floor = *b.Floor
		}
	}
	if l := fc.Logging; l != nil {
		if l.Level != nil && !envSet("TABMUX_LOG_LEVEL") {
			c.Logging.Level = *l.Level
		}
		if l.File != nil && !envSet("TABMUX_LOG_FILE") {
			c.Logging.File = *l.File
		}
		if l.Development != nil && !envSet("TABMUX_LOG_DEV") {
			c.Logging.Development = *l.Development
		}
	}
	if m := fc.Metrics; m != nil && m.Addr != nil && !envSet("TABMUX_METRICS_ADDR") {
		c.Metrics.Addr = *m.Addr
	}

	c.Keys.merge(fc.Keys)
	return nil
}

// merge replaces every binding the override names.
func (k *KeyConfig) merge(override KeyConfig) {
	if len(override.Quit) > 0 {
		k.Quit = override.Quit
	}
	if len(override.NewTab) > 0 {
		k.NewTab = override.NewTab
	}
	if len(override.CloseTab) > 0 {
		k.CloseTab = override.CloseTab
	}
	if len(override.NextTab) > 0 {
		k.NextTab = override.NextTab
	}
	if len(override.PrevTab) > 0 {
		k.PrevTab = override.PrevTab
	}
}

func envSet(key string) bool {
	_, ok := os.LookupEnv(key)
	return ok
}
