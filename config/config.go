package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/jsphweid/midi2text/match"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// ServeConfig configures the HTTP conversion endpoint
type ServeConfig struct {
	Addr           string   `yaml:"addr"`
	MaxBodyBytes   int64    `yaml:"maxBodyBytes"`
	AllowedOrigins []string `yaml:"allowedOrigins,omitempty"`
}

type Config struct {
	Unmatched string      `yaml:"unmatched"`
	Workers   int         `yaml:"workers"`
	LogLevel  string      `yaml:"logLevel"`
	Serve     ServeConfig `yaml:"serve"`
}

func DefaultConfig() *Config {
	return &Config{
		Unmatched: string(match.PolicyDrop),
		Workers:   1,
		LogLevel:  "info",
		Serve: ServeConfig{
			Addr:           ":8080",
			MaxBodyBytes:   16 * 1024 * 1024,
			AllowedOrigins: []string{"*"},
		},
	}
}

// Load reads path over the defaults and then applies environment overrides.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("Could not read config %v: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("Could not parse config %v: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("MIDI2TEXT_UNMATCHED"); v != "" {
		c.Unmatched = v
	}
	if v := os.Getenv("MIDI2TEXT_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("MIDI2TEXT_ADDR"); v != "" {
		c.Serve.Addr = v
	}
	if v := os.Getenv("MIDI2TEXT_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MIDI2TEXT_WORKERS: %w", err)
		}
		c.Workers = n
	}
	return nil
}

func (c *Config) Validate() error {
	if _, err := match.ParsePolicy(c.Unmatched); err != nil {
		return err
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("bad log level: %w", err)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.Serve.MaxBodyBytes <= 0 {
		return fmt.Errorf("serve.maxBodyBytes must be positive, got %d", c.Serve.MaxBodyBytes)
	}
	return nil
}

// Policy is the parsed unmatched policy. Only valid after Validate.
func (c *Config) Policy() match.Policy {
	p, _ := match.ParsePolicy(c.Unmatched)
	return p
}
