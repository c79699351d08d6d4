package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/blackwell-systems/combatlens/internal/suggest"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. COMBATLENS_LOG_LEVEL.
const EnvPrefix = "COMBATLENS"

// Config is the top-level combatlens configuration.
type Config struct {
	ProfileDirs    []string   `mapstructure:"profile_dirs"`
	DefaultProfile string     `mapstructure:"default_profile"`
	Thresholds     Thresholds `mapstructure:"thresholds"`
	Output         Output     `mapstructure:"output"`
	Log            Log        `mapstructure:"log"`
	NATS           NATS       `mapstructure:"nats"`
}

// Thresholds sets the default severity offsets for profiles that do not
// set their own.
type Thresholds struct {
	RegularOffset float64 `mapstructure:"regular_offset"`
	MajorOffset   float64 `mapstructure:"major_offset"`
}

// Offsets converts the thresholds for the suggestion engine.
func (t Thresholds) Offsets() suggest.Offsets {
	return suggest.Offsets{Regular: t.RegularOffset, Major: t.MajorOffset}
}

// Output defines output preferences.
type Output struct {
	Color bool `mapstructure:"color"`
	Width int  `mapstructure:"width"`
}

// Log defines logger settings.
type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// NATS defines the live event source.
type NATS struct {
	URL     string        `mapstructure:"url"`
	Subject string        `mapstructure:"subject"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Load reads configuration from the given path (or the default location)
// and returns a Config with all defaults applied.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("profile_dirs", DefaultProfileDirs)
	v.SetDefault("default_profile", DefaultProfile)
	v.SetDefault("thresholds.regular_offset", DefaultThresholds.RegularOffset)
	v.SetDefault("thresholds.major_offset", DefaultThresholds.MajorOffset)
	v.SetDefault("output.color", DefaultOutput.Color)
	v.SetDefault("output.width", DefaultOutput.Width)
	v.SetDefault("log.level", DefaultLog.Level)
	v.SetDefault("log.format", DefaultLog.Format)
	v.SetDefault("nats.url", DefaultNATS.URL)
	v.SetDefault("nats.subject", DefaultNATS.Subject)
	v.SetDefault("nats.timeout", DefaultNATS.Timeout)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(expandPath(cfgFile))
	} else {
		v.AddConfigPath(expandPath(DefaultConfigDir))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Missing file is not an error.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Thresholds.Offsets().Validate(); err != nil {
		return nil, fmt.Errorf("config thresholds: %w", err)
	}

	for i, p := range cfg.ProfileDirs {
		cfg.ProfileDirs[i] = expandPath(p)
	}

	return &cfg, nil
}

// DBPath returns the full path to the SQLite report archive.
func DBPath() string {
	return filepath.Join(expandPath(DefaultConfigDir), DefaultDBName)
}

// ConfigDir returns the expanded configuration directory.
func ConfigDir() string {
	return expandPath(DefaultConfigDir)
}
