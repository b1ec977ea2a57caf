package platform

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/mdwiki/pkg/core"
)

// Config is the on-disk client configuration (.mdwiki.yaml).
//
//	url: https://wiki.example.com/api
//	token: ...
//	timeout: 30s
//	workspace: 3
//	history: ~/.mdwiki_history
//	drafts: ~/.cache/mdwiki/drafts
//	export:
//	  font: arial
//	  font_size: 12
type Config struct {
	URL       string        `yaml:"url"`
	Token     string        `yaml:"token,omitempty"`
	UserAgent string        `yaml:"user_agent,omitempty"`
	Timeout   time.Duration `yaml:"timeout,omitempty"`
	Workspace int           `yaml:"workspace,omitempty"`
	History   string        `yaml:"history,omitempty"`
	Drafts    string        `yaml:"drafts,omitempty"`
	Export    ExportConfig  `yaml:"export,omitempty"`
}

// ExportConfig holds the defaults of the PDF export.
type ExportConfig struct {
	Font     string `yaml:"font,omitempty"`
	FontSize int    `yaml:"font_size,omitempty"`
	Tree     bool   `yaml:"tree,omitempty"`
}

// Environment overrides.
const (
	EnvURL       = "MDWIKI_URL"
	EnvToken     = "MDWIKI_TOKEN"
	EnvWorkspace = "MDWIKI_WORKSPACE"
)

// DefaultConfig is used when no file is found.
func DefaultConfig() Config {
	d := core.DefaultExportOptions()
	return Config{
		URL:     "http://localhost:8080",
		Timeout: 30 * time.Second,
		Export:  ExportConfig{Font: d.Font, FontSize: d.FontSize},
	}
}

// LoadConfig reads path, or the nearest ConfigFileName above the working
// directory when path is empty. A missing file is not an error. Environment
// variables override file values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		wd, err := os.Getwd()
		if err == nil {
			path, _ = FindConfig(wd)
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := decodeConfig(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	cfg.URL = getenv(EnvURL, cfg.URL)
	cfg.Token = getenv(EnvToken, cfg.Token)
	cfg.Workspace = getenvInt(EnvWorkspace, cfg.Workspace)
	return cfg, nil
}

func decodeConfig(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Save writes the configuration as YAML.
func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// ExportOptions merges the configured defaults over the built-in ones.
func (c Config) ExportOptions() core.ExportOptions {
	opts := core.DefaultExportOptions()
	if c.Export.Font != "" {
		opts.Font = c.Export.Font
	}
	if c.Export.FontSize != 0 {
		opts.FontSize = c.Export.FontSize
	}
	opts.Tree = c.Export.Tree
	return opts
}

// Options translates the configuration into factory options.
func (c Config) Options() []Option {
	var opts []Option
	if c.Token != "" {
		opts = append(opts, WithToken(c.Token))
	}
	if c.UserAgent != "" {
		opts = append(opts, WithUserAgent(c.UserAgent))
	}
	if c.Timeout > 0 {
		opts = append(opts, WithTimeout(c.Timeout))
	}
	if c.Workspace != 0 {
		opts = append(opts, WithInitialWorkspace(c.Workspace))
	}
	return opts
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
