// Package config loads dbnav settings from YAML with environment overrides.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/roach88/dbnav/internal/querysql"
	"github.com/roach88/dbnav/internal/scale"
)

type Config struct {
	Store     string          `mapstructure:"store" yaml:"store"`
	Specs     string          `mapstructure:"specs" yaml:"specs"`
	Backend   BackendConfig   `mapstructure:"backend" yaml:"backend"`
	DateScale DateScaleConfig `mapstructure:"date_scale" yaml:"date_scale"`
	CacheSize int             `mapstructure:"cache_size" yaml:"cache_size"`
	LogLevel  string          `mapstructure:"log_level" yaml:"log_level"`
}

type BackendConfig struct {
	Dialect  string `mapstructure:"dialect" yaml:"dialect"` // mysql, sqlite
	DSN      string `mapstructure:"dsn" yaml:"dsn"`
	Database string `mapstructure:"database" yaml:"database"`
}

type DateScaleConfig struct {
	Min  int `mapstructure:"min" yaml:"min"`
	Max  int `mapstructure:"max" yaml:"max"`
	Step int `mapstructure:"step" yaml:"step"`
}

func Load(path string) (*Config, error) {
	_, err := os.Stat(path)
	if os.IsNotExist(err) {
		return defaults(), nil
	}
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.fill()
	return cfg, nil
}

func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func defaults() *Config {
	return &Config{
		Store: defaultStorePath(),
		Backend: BackendConfig{
			Dialect: string(querysql.SQLite),
		},
		DateScale: DateScaleConfig{
			Min:  1900,
			Max:  2030,
			Step: 10,
		},
		CacheSize: 256,
		LogLevel:  "info",
	}
}

// fill applies defaults to unset fields.
func (c *Config) fill() {
	d := defaults()
	if c.Store == "" {
		c.Store = d.Store
	}
	if c.Backend.Dialect == "" {
		c.Backend.Dialect = d.Backend.Dialect
	}
	if c.DateScale.Step == 0 {
		c.DateScale = d.DateScale
	}
	if c.CacheSize == 0 {
		c.CacheSize = d.CacheSize
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
}

func defaultStorePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".dbnav", "dbnav.db")
	}
	return filepath.Join(homeDir, ".dbnav", "dbnav.db")
}

func DiscoverPath(flagPath string) string {
	if flagPath != "" {
		if _, err := os.Stat(flagPath); err == nil {
			return flagPath
		}
	}

	if envPath := os.Getenv("DBNAV_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".dbnav/config.yaml"
	}
	return filepath.Join(homeDir, ".dbnav", "config.yaml")
}

func LoadWithEnv(path string) (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix("DBNAV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, key := range []string{
		"store",
		"specs",
		"backend.dialect",
		"backend.dsn",
		"backend.database",
		"date_scale.min",
		"date_scale.max",
		"date_scale.step",
		"cache_size",
		"log_level",
	} {
		_ = v.BindEnv(key)
	}

	_, err := os.Stat(path)
	if err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	cfg.fill()
	return cfg, nil
}

// Dialect parses the configured backend dialect.
func (c *Config) Dialect() (querysql.Dialect, error) {
	return querysql.ParseDialect(c.Backend.Dialect)
}

// DateInterval builds the default date scale.
func (c *Config) DateInterval() (scale.DateInterval, error) {
	return scale.NewDateInterval(c.DateScale.Min, c.DateScale.Max, c.DateScale.Step)
}

// SlogLevel maps log_level onto a slog level. Unknown names mean info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
