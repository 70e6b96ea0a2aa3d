package config

import (
	"fmt"
	"strconv"
)

// Config represents the persistent vecpeek configuration stored as
// config.toml in the .vecpeek/ directory. The TOML layout uses sections for
// logical grouping.
type Config struct {
	Version    int              `toml:"version"`
	Connection ConnectionConfig `toml:"connection"`
	Display    DisplayConfig    `toml:"display"`
	Search     SearchConfig     `toml:"search"`
}

// ConnectionConfig holds defaults for opening the database file.
type ConnectionConfig struct {
	URI      string `toml:"uri,omitempty"`
	Token    string `toml:"token,omitempty"`
	Database string `toml:"db,omitempty"`
}

// DisplayConfig holds defaults for the paged read surface.
type DisplayConfig struct {
	Limit         int `toml:"limit,omitempty"`
	VectorPreview int `toml:"vector_preview,omitempty"`
}

// SearchConfig holds defaults for the search surface.
type SearchConfig struct {
	TopK int `toml:"top_k,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"connection.uri": {
		get: func(c *Config) string { return c.Connection.URI },
		set: func(c *Config, v string) error { c.Connection.URI = v; return nil },
	},
	"connection.token": {
		get: func(c *Config) string { return c.Connection.Token },
		set: func(c *Config, v string) error { c.Connection.Token = v; return nil },
	},
	"connection.db": {
		get: func(c *Config) string { return c.Connection.Database },
		set: func(c *Config, v string) error { c.Connection.Database = v; return nil },
	},
	"display.limit": {
		get: func(c *Config) string { return formatInt(c.Display.Limit) },
		set: func(c *Config, v string) error {
			n, err := parseInt("display.limit", v)
			if err != nil {
				return err
			}
			c.Display.Limit = n
			return nil
		},
	},
	"display.vector_preview": {
		get: func(c *Config) string { return formatInt(c.Display.VectorPreview) },
		set: func(c *Config, v string) error {
			n, err := parseInt("display.vector_preview", v)
			if err != nil {
				return err
			}
			c.Display.VectorPreview = n
			return nil
		},
	},
	"search.top_k": {
		get: func(c *Config) string { return formatInt(c.Search.TopK) },
		set: func(c *Config, v string) error {
			n, err := parseInt("search.top_k", v)
			if err != nil {
				return err
			}
			c.Search.TopK = n
			return nil
		},
	},
}

func formatInt(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func parseInt(key, v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid value for %s: must not be negative", key)
	}
	return n, nil
}
