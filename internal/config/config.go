// Package config loads settings for the batch tool: built-in defaults,
// then an optional YAML file, then POPART_* environment variables.
// Command-line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/viper"
)

// DefaultFile is the config file picked up from the current directory
// when no -config flag is given.
const DefaultFile = "popart.yaml"

type Config struct {
	WorkDir        string        `mapstructure:"work_folder"`
	OutputDir      string        `mapstructure:"output_folder"`
	RemoverURL     string        `mapstructure:"remover_url"`
	RemoverTimeout time.Duration `mapstructure:"remover_timeout"`
	Jobs           int           `mapstructure:"jobs"`
	Force          bool          `mapstructure:"force"`
	Preset         string        `mapstructure:"preset"`
	Palette        string        `mapstructure:"palette"`
	LogLevel       string        `mapstructure:"log_level"`
}

// Load reads the configuration. A missing file at the default path just
// means defaults apply; a file named explicitly must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("POPART")
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("work_folder", "work_folder")
	v.SetDefault("output_folder", "")
	v.SetDefault("remover_url", "")
	v.SetDefault("remover_timeout", 2*time.Minute)
	v.SetDefault("jobs", 0)
	v.SetDefault("force", false)
	v.SetDefault("preset", "")
	v.SetDefault("palette", "original")
	v.SetDefault("log_level", "info")
}

// Validate checks the values a run cannot proceed without.
func (c *Config) Validate() error {
	if c.WorkDir == "" {
		return fmt.Errorf("work folder cannot be empty")
	}
	if c.Jobs < 0 {
		return fmt.Errorf("jobs cannot be negative, got %d", c.Jobs)
	}
	if c.RemoverTimeout <= 0 {
		return fmt.Errorf("remover timeout must be positive, got %v", c.RemoverTimeout)
	}
	return nil
}

// ResolvedOutputDir returns the output folder, defaulting to
// "<work>/output" when none is configured.
func (c *Config) ResolvedOutputDir() string {
	if c.OutputDir != "" {
		return c.OutputDir
	}
	return filepath.Join(c.WorkDir, "output")
}

// ResolvedJobs returns the worker count, defaulting to the CPU count.
func (c *Config) ResolvedJobs() int {
	if c.Jobs > 0 {
		return c.Jobs
	}
	return runtime.NumCPU()
}
