// Package config loads basketmine settings.
//
// Values are layered: built-in defaults, then the YAML file at
// $XDG_CONFIG_HOME/basketmine/config.yaml, then BASKETMINE_* environment
// variables. Command-line flags are applied last by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/blackwell-systems/basketmine/internal/dataset"
	"github.com/blackwell-systems/basketmine/internal/export"
	"github.com/blackwell-systems/basketmine/internal/mining"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "BASKETMINE"

// FileName is the config file looked up in Dir().
const FileName = "config.yaml"

// Config holds every tunable setting.
type Config struct {
	DataDir       string        `yaml:"data_dir" envconfig:"DATA_DIR"`
	DBPath        string        `yaml:"db" envconfig:"DB"`
	OutputDir     string        `yaml:"output_dir" envconfig:"OUTPUT_DIR"`
	Format        string        `yaml:"format" envconfig:"FORMAT"`
	MinSupport    float64       `yaml:"min_support" envconfig:"MIN_SUPPORT"`
	MinConfidence float64       `yaml:"min_confidence" envconfig:"MIN_CONFIDENCE"`
	Strategies    []string      `yaml:"strategies" envconfig:"STRATEGIES"`
	Parallel      bool          `yaml:"parallel" envconfig:"PARALLEL"`
	Timeout       time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
	ItemPrefix    string        `yaml:"item_prefix" envconfig:"ITEM_PREFIX"`
	ItemColumns   int           `yaml:"item_columns" envconfig:"ITEM_COLUMNS"`
	LogLevel      string        `yaml:"log_level" envconfig:"LOG_LEVEL"`
	Addr          string        `yaml:"addr" envconfig:"ADDR"`
	CacheSize     int           `yaml:"cache_size" envconfig:"CACHE_SIZE"`

	// Datasets maps a short name to a CSV path. Relative paths resolve
	// against DataDir.
	Datasets map[string]string `yaml:"datasets" ignored:"true"`
}

// Default returns the built-in settings: 20% support, 60% confidence and
// every strategy.
func Default() *Config {
	return &Config{
		DataDir:       ".",
		OutputDir:     ".",
		Format:        string(export.FormatXLSX),
		MinSupport:    0.2,
		MinConfidence: 0.6,
		Strategies:    []string{mining.StrategyAll},
		ItemPrefix:    dataset.DefaultItemPrefix,
		ItemColumns:   dataset.DefaultItemColumns,
		LogLevel:      "info",
		Addr:          "127.0.0.1:8080",
		CacheSize:     128,
		Datasets:      BuiltinDatasets(),
	}
}

// Dir returns the basketmine config directory, respecting XDG_CONFIG_HOME.
// Defaults to ~/.config/basketmine if XDG_CONFIG_HOME is not set.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "basketmine"), nil
}

// Load builds the effective configuration. An empty path means the default
// file in Dir(), which may be absent; an explicit path must exist. The
// datasets registry file next to the config file is merged in as well.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		dir, err := Dir()
		if err != nil {
			return nil, fmt.Errorf("failed to locate config directory: %w", err)
		}
		path = filepath.Join(dir, FileName)
	}

	registry, err := LoadDatasetFile(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read datasets file: %w", err)
	}
	for name, p := range registry {
		cfg.Datasets[name] = p
	}

	if err := cfg.readFile(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		log.WithField("path", path).Debug("no config file, using defaults")
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to read %s_* environment: %w", EnvPrefix, err)
	}

	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// readFile overlays the YAML file onto cfg. Keys absent from the file keep
// their current values; datasets are merged rather than replaced.
func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}

	datasets := c.Datasets
	c.Datasets = nil
	if err := yaml.Unmarshal(data, c); err != nil {
		c.Datasets = datasets
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	for name, p := range c.Datasets {
		datasets[strings.ToLower(strings.TrimSpace(name))] = p
	}
	c.Datasets = datasets
	return nil
}

// Normalize converts percentage thresholds to fractions, lower-cases
// strategy names and checks the remaining fields.
func (c *Config) Normalize() error {
	var err error
	if c.MinSupport, err = mining.NormalizeThreshold(c.MinSupport); err != nil {
		return fmt.Errorf("invalid min_support: %w", err)
	}
	if c.MinConfidence, err = mining.NormalizeThreshold(c.MinConfidence); err != nil {
		return fmt.Errorf("invalid min_confidence: %w", err)
	}

	strategies := make([]string, 0, len(c.Strategies))
	for _, s := range c.Strategies {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			strategies = append(strategies, s)
		}
	}
	if len(strategies) == 0 {
		strategies = []string{mining.StrategyAll}
	}
	c.Strategies = strategies

	if _, err := export.ParseFormat(c.Format); err != nil {
		return fmt.Errorf("invalid format: %w", err)
	}
	if c.ItemColumns <= 0 {
		return fmt.Errorf("item_columns must be positive, got %d", c.ItemColumns)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cache_size must not be negative, got %d", c.CacheSize)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel for logrus.
func (c *Config) Level() (log.Level, error) {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel, fmt.Errorf("invalid log_level: %w", err)
	}
	return lvl, nil
}

// DatasetOptions returns the CSV layout for a dataset of the given name.
func (c *Config) DatasetOptions(name string) dataset.Options {
	return dataset.Options{
		Name:        name,
		ItemPrefix:  c.ItemPrefix,
		ItemColumns: c.ItemColumns,
	}
}

// DefaultDBPath returns ~/.basketmine/basketmine.db, creating the directory.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	dir := filepath.Join(home, ".basketmine")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create basketmine directory: %w", err)
	}
	return filepath.Join(dir, "basketmine.db"), nil
}

// ResolveDBPath returns DBPath, falling back to DefaultDBPath.
func (c *Config) ResolveDBPath() (string, error) {
	if c.DBPath != "" {
		return c.DBPath, nil
	}
	return DefaultDBPath()
}
