package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config represents the annotate CLI configuration
type Config struct {
	Output   OutputConfig   `mapstructure:"output"`
	Log      LogConfig      `mapstructure:"log"`
	Snapshot SnapshotConfig `mapstructure:"snapshot"`
}

// OutputConfig controls how results are rendered
type OutputConfig struct {
	Format  string `mapstructure:"format"`
	NoColor bool   `mapstructure:"no_color"`
}

// LogConfig controls the zap logger
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// SnapshotConfig locates the default snapshot file
type SnapshotConfig struct {
	Path string `mapstructure:"path"`
}

// Load loads the configuration from annotate.yml or annotate.yaml in the
// current directory. Environment variables prefixed with ANNOTATE_ override
// file values (ANNOTATE_OUTPUT_FORMAT, ANNOTATE_LOG_LEVEL, ...).
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("output.format", "table")
	v.SetDefault("output.no_color", false)
	v.SetDefault("log.level", "warn")
	v.SetDefault("snapshot.path", "annotations.json")

	v.SetConfigName("annotate")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("annotate")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// InProject checks if the current directory has an annotate config file
func InProject() bool {
	for _, name := range []string{"annotate.yml", "annotate.yaml"} {
		if _, err := os.Stat(name); err == nil {
			return true
		}
	}
	return false
}

// SnapshotPath resolves the configured snapshot path against dir when it
// is relative.
func (c *Config) SnapshotPath(dir string) string {
	if filepath.IsAbs(c.Snapshot.Path) {
		return c.Snapshot.Path
	}
	return filepath.Join(dir, c.Snapshot.Path)
}

// ZapLevel returns the configured log level
func (c *Config) ZapLevel() zapcore.Level {
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return zapcore.WarnLevel
	}
	return level
}

// NewLogger builds a development logger at the configured level
func (c *Config) NewLogger() (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(c.ZapLevel())
	zc.DisableStacktrace = true
	return zc.Build()
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	switch cfg.Output.Format {
	case "table", "json":
	default:
		return fmt.Errorf("output.format must be 'table' or 'json', got: %s", cfg.Output.Format)
	}

	if _, err := zapcore.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log.level is not a valid level: %s", cfg.Log.Level)
	}

	if cfg.Snapshot.Path == "" {
		return fmt.Errorf("snapshot.path must not be empty")
	}
	return nil
}
