package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

const (
	FileName = "config.yaml"

	DefaultTimeout   = 15 * time.Second
	DefaultLogLevel  = log.WarnLevel
	DefaultCollation = "en"
)

type Config struct {
	APIURL      string `yaml:"api_url,omitempty"`
	APIKey      string `yaml:"api_key,omitempty"`
	Timeout     string `yaml:"timeout,omitempty"`
	LogLevel    string `yaml:"log_level,omitempty"`
	Collation   string `yaml:"collation,omitempty"`
	DefaultSort string `yaml:"default_sort,omitempty"`
}

func Load(dataDir string) (*Config, error) {
	path := filepath.Join(dataDir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func Save(dataDir string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	path := filepath.Join(dataDir, FileName)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

// Validate checks the fields that have a syntax of their own.
func (c *Config) Validate() error {
	if c.Timeout != "" {
		if d, err := time.ParseDuration(c.Timeout); err != nil || d <= 0 {
			return fmt.Errorf("invalid timeout %q: must be a positive duration like 15s", c.Timeout)
		}
	}
	if c.LogLevel != "" {
		if _, err := log.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("invalid log_level: %w", err)
		}
	}
	if c.Collation != "" {
		if _, err := language.Parse(c.Collation); err != nil {
			return fmt.Errorf("invalid collation %q: %w", c.Collation, err)
		}
	}
	return nil
}

func (c *Config) TimeoutDuration() time.Duration {
	if d, err := time.ParseDuration(c.Timeout); err == nil && d > 0 {
		return d
	}
	return DefaultTimeout
}

func (c *Config) Level() log.Level {
	if lvl, err := log.ParseLevel(c.LogLevel); err == nil {
		return lvl
	}
	return DefaultLogLevel
}

func (c *Config) Language() language.Tag {
	if tag, err := language.Parse(c.Collation); err == nil {
		return tag
	}
	return language.Make(DefaultCollation)
}
