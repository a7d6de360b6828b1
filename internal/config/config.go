// Package config loads the optional logsift configuration file and
// validates its contents. CLI flags override anything loaded here.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ErrNoConfig is returned when no config file is found.
var ErrNoConfig = errors.New("no logsift config file found")

// Config is the parsed logsift configuration.
type Config struct {
	// LogDirs are the root directories searched for log files.
	LogDirs []string `yaml:"log_dirs" toml:"log_dirs" json:"log_dirs"`

	// LogPatterns are globs matched against log file base names.
	LogPatterns []string `yaml:"log_patterns" toml:"log_patterns" json:"log_patterns"`

	// StartDate and EndDate bound the audit period (YYYY-MM-DD).
	StartDate string `yaml:"start_date" toml:"start_date" json:"start_date"`
	EndDate   string `yaml:"end_date" toml:"end_date" json:"end_date"`

	// OutputDir receives the compressed artifact and summary report.
	OutputDir string `yaml:"output_dir" toml:"output_dir" json:"output_dir"`

	// RetentionDays is the age threshold for sweeping prior artifacts.
	RetentionDays int `yaml:"retention_days" toml:"retention_days" json:"retention_days"`

	// Upload, when present, pushes finished artifacts to S3-compatible
	// storage after each run.
	Upload *Upload `yaml:"upload" toml:"upload" json:"upload"`
}

// Upload configures the optional artifact upload target.
type Upload struct {
	Endpoint        string `yaml:"endpoint" toml:"endpoint" json:"endpoint"`
	Region          string `yaml:"region" toml:"region" json:"region"`
	Bucket          string `yaml:"bucket" toml:"bucket" json:"bucket"`
	AccessKeyID     string `yaml:"access_key_id" toml:"access_key_id" json:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key" toml:"secret_access_key" json:"secret_access_key"`
}

// Load finds and parses a logsift config file from the given directory.
func Load(dir string) (*Config, string, error) {
	candidates := []struct {
		name   string
		parser func([]byte, *Config) error
	}{
		{".logsift.yaml", parseYAML},
		{".logsift.yml", parseYAML},
		{".logsift.toml", parseTOML},
		{".logsift.json", parseJSON},
		{"logsift.yaml", parseYAML},
		{"logsift.yml", parseYAML},
		{"logsift.toml", parseTOML},
		{"logsift.json", parseJSON},
	}

	for _, c := range candidates {
		path := filepath.Join(dir, c.name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue // File doesn't exist, try next
		}

		var cfg Config
		if err := c.parser(data, &cfg); err != nil {
			return nil, c.name, fmt.Errorf("parse %s: %w", c.name, err)
		}

		if err := cfg.Validate(); err != nil {
			return nil, c.name, fmt.Errorf("validate %s: %w", c.name, err)
		}

		cfg.applyDefaults()

		return &cfg, path, nil
	}

	return nil, "", ErrNoConfig
}

// LoadFile parses one explicit config file, with the format chosen by its
// extension (yaml unless .toml or .json).
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	parser := parseYAML
	switch filepath.Ext(path) {
	case ".toml":
		parser = parseTOML
	case ".json":
		parser = parseJSON
	}

	var cfg Config
	if err := parser(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate %s: %w", path, err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// LoadDefault searches the standard locations: the user's home directory,
// then /etc/logsift. A missing config is not an error; defaults apply.
func LoadDefault() (*Config, string, error) {
	var dirs []string
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, home)
	}
	dirs = append(dirs, "/etc/logsift")

	for _, dir := range dirs {
		cfg, path, err := Load(dir)
		if err == nil {
			return cfg, path, nil
		}
		if !errors.Is(err, ErrNoConfig) {
			return nil, path, err
		}
	}

	cfg := &Config{}
	cfg.applyDefaults()
	return cfg, "", nil
}

func parseYAML(data []byte, cfg *Config) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Strict: error on unknown fields
	return decoder.Decode(cfg)
}

func parseTOML(data []byte, cfg *Config) error {
	_, err := toml.Decode(string(data), cfg)
	return err
}

func parseJSON(data []byte, cfg *Config) error {
	return json.Unmarshal(data, cfg)
}

// Validate checks the config for errors.
func (c *Config) Validate() error {
	if c.RetentionDays < 0 {
		return fmt.Errorf("retention_days must not be negative, got %d", c.RetentionDays)
	}

	if c.Upload != nil {
		if c.Upload.Bucket == "" {
			return errors.New("upload: bucket is required")
		}
		if c.Upload.AccessKeyID == "" || c.Upload.SecretAccessKey == "" {
			return errors.New("upload: access_key_id and secret_access_key are required")
		}
	}

	return nil
}

func (c *Config) applyDefaults() {
	if len(c.LogDirs) == 0 {
		c.LogDirs = []string{"/var/log"}
	}
	if len(c.LogPatterns) == 0 {
		c.LogPatterns = []string{"*.log", "*.log.*"}
	}
	if c.OutputDir == "" {
		c.OutputDir = "/var/log/audit"
	}
	if c.RetentionDays == 0 {
		c.RetentionDays = 30
	}
}
