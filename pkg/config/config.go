package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"
)

//go:generate go run ../../cmd/schema feedrank.schema.json

const (
	// DefaultFeedURL is hnrss query for the newest AI stories with at least 100 points
	DefaultFeedURL = "https://hnrss.org/newest?q=ai&points=100&count=25"
	// DefaultStyleScript loads tailwind css used by the page markup
	DefaultStyleScript = `<script src="https://cdn.tailwindcss.com"></script>`
)

// Config holds the application configuration
type Config struct {
	Server ServerConfig `yaml:"server" json:"server" jsonschema:"description=Server configuration"`
	Feed   FeedConfig   `yaml:"feed" json:"feed" jsonschema:"description=Feed source configuration"`
	Page   PageConfig   `yaml:"page" json:"page" jsonschema:"description=Page rendering configuration"`
}

// ServerConfig holds http server settings
type ServerConfig struct {
	Listen   string        `yaml:"listen" json:"listen" jsonschema:"default=127.0.0.1:8080,description=HTTP server listen address"`
	Timeout  time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=60s,description=HTTP server write timeout"`
	Throttle int64         `yaml:"throttle" json:"throttle" jsonschema:"default=100,minimum=0,description=Maximum concurrent requests (unset or 0 gives the default)"`
}

// FeedConfig holds feed fetching settings
type FeedConfig struct {
	URL       string        `yaml:"url" json:"url" jsonschema:"description=RSS feed URL"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=10s,description=Feed request timeout"`
	UserAgent string        `yaml:"user_agent" json:"user_agent" jsonschema:"default=feedrank/1.0,description=User agent for feed requests"`
	MaxSize   int64         `yaml:"max_size" json:"max_size" jsonschema:"default=5242880,description=Maximum feed size in bytes"`
	Workers   int           `yaml:"workers" json:"workers" jsonschema:"default=4,minimum=1,description=Concurrent description extractions"`
}

// PageConfig holds page shell and view settings
type PageConfig struct {
	Dir           string `yaml:"dir" json:"dir" jsonschema:"description=Assets directory with index.html"`
	StyleScript   string `yaml:"style_script" json:"style_script" jsonschema:"description=Markup injected before </head>"`
	LoadingText   string `yaml:"loading_text" json:"loading_text" jsonschema:"default=Loading feed...,description=Placeholder shown while feed is loading"`
	CommentsLabel string `yaml:"comments_label" json:"comments_label" jsonschema:"default=Check out the comments,description=Label of the discussion link"`
}

// New makes config with all defaults set
func New() *Config {
	res := &Config{}
	res.setDefaults()
	return res
}

// Load reads configuration from a YAML file, environment variables in the file are expanded
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Server.Listen == "" {
		c.Server.Listen = "127.0.0.1:8080"
	}
	if c.Server.Timeout == 0 {
		c.Server.Timeout = 60 * time.Second
	}
	if c.Server.Throttle == 0 {
		c.Server.Throttle = 100
	}

	if c.Feed.URL == "" {
		c.Feed.URL = DefaultFeedURL
	}
	if c.Feed.Timeout == 0 {
		c.Feed.Timeout = 10 * time.Second
	}
	if c.Feed.UserAgent == "" {
		c.Feed.UserAgent = "feedrank/1.0"
	}
	if c.Feed.MaxSize == 0 {
		c.Feed.MaxSize = 5 * 1024 * 1024
	}
	if c.Feed.Workers == 0 {
		c.Feed.Workers = 4
	}

	if c.Page.StyleScript == "" {
		c.Page.StyleScript = DefaultStyleScript
	}
}

// Validate checks configuration for correctness. Page.Dir is not checked, it is usually set from the CLI.
func (c *Config) Validate() error {
	if c.Server.Timeout < time.Second {
		return fmt.Errorf("server timeout must be at least 1 second")
	}
	if c.Server.Throttle < 0 {
		return fmt.Errorf("server throttle must be non-negative")
	}

	u, err := url.Parse(c.Feed.URL)
	if err != nil {
		return fmt.Errorf("invalid feed url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("feed url must be absolute http(s) url, got %q", c.Feed.URL)
	}
	if c.Feed.Timeout <= 0 {
		return fmt.Errorf("feed timeout must be positive")
	}
	if c.Feed.Timeout >= c.Server.Timeout {
		return fmt.Errorf("feed timeout %v must be less than server timeout %v", c.Feed.Timeout, c.Server.Timeout)
	}
	if c.Feed.MaxSize < 0 {
		return fmt.Errorf("feed max_size must be non-negative")
	}
	if c.Feed.Workers < 1 {
		return fmt.Errorf("feed workers must be at least 1")
	}
	return nil
}

// GenerateSchema generates a JSON schema for the Config struct
func GenerateSchema() *jsonschema.Schema {
	return jsonschema.Reflect(&Config{})
}
