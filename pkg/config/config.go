// Package config owns the feed list and reader settings, stored as a single
// YAML file. The sync engine treats the loaded feed list as immutable input,
// add and remove go through here and persist immediately.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/umputun/junefeed/pkg/domain"
)

// Config holds the application configuration. Feeds keep the file's order.
type Config struct {
	Feeds []domain.FeedConfig `yaml:"feeds"`

	Settings struct {
		UpdateInterval time.Duration `yaml:"update_interval"`
		FetchTimeout   time.Duration `yaml:"fetch_timeout"`
		Concurrent     int           `yaml:"concurrent"`
		UserAgent      string        `yaml:"user_agent"`
	} `yaml:"settings"`

	Keybindings Keybindings `yaml:"keybindings"`

	path string
}

// Load reads configuration from a YAML file, creating a default one when
// the file does not exist yet. Environment variables in the file are
// expanded.
func Load(path string) (*Config, error) {
	cfg := &Config{path: path}
	cfg.setDefaults()

	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if os.IsNotExist(err) {
		if e := cfg.Save(); e != nil {
			return nil, fmt.Errorf("write initial config: %w", e)
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg.setDefaults() // fill anything the file left at zero
	return cfg, nil
}

// Save writes the configuration back to its file
func (c *Config) Save() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return fmt.Errorf("make config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(c.path, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// AddFeed appends a feed and persists the config. Duplicate names are
// rejected, the name is the feed's unique key. Slashes are rejected too,
// the name prefixes item ids and "a/b"+"x" would collide with "a"+"b/x".
func (c *Config) AddFeed(name, url string) error {
	if name == "" {
		return fmt.Errorf("feed name must not be empty")
	}
	if strings.Contains(name, "/") {
		return fmt.Errorf("feed name %q must not contain a slash", name)
	}
	for _, f := range c.Feeds {
		if f.Name == name {
			return fmt.Errorf("feed %q already exists", name)
		}
	}
	c.Feeds = append(c.Feeds, domain.FeedConfig{Name: name, URL: url})
	return c.Save()
}

// RemoveFeed drops a feed by name and persists the config
func (c *Config) RemoveFeed(name string) error {
	for i, f := range c.Feeds {
		if f.Name == name {
			c.Feeds = append(c.Feeds[:i], c.Feeds[i+1:]...)
			return c.Save()
		}
	}
	return fmt.Errorf("feed %q not found", name)
}

func (c *Config) setDefaults() {
	if c.Settings.UpdateInterval == 0 {
		c.Settings.UpdateInterval = 15 * time.Minute
	}
	if c.Settings.FetchTimeout == 0 {
		c.Settings.FetchTimeout = 30 * time.Second
	}
	if c.Settings.Concurrent == 0 {
		c.Settings.Concurrent = 5
	}
	if c.Settings.UserAgent == "" {
		c.Settings.UserAgent = "junefeed/1.0 (+https://github.com/umputun/junefeed)"
	}
	c.Keybindings.setDefaults()
}

// DefaultLocation returns the config file path under the user config dir
func DefaultLocation() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "junefeed", "config.yml")
}

// DefaultStoreLocation returns the history store path under the user's
// local state dir, the same place the original junefeed kept its history
func DefaultStoreLocation() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".local", "state", "junefeed", "history.db")
}
