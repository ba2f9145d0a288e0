package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate performs rule validation on the loaded configuration.
// Load calls it automatically.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Remote.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("remote.url must be an http(s) URL (got %q)", c.Remote.URL)
	}
	if c.Remote.Timeout <= 0 {
		return fmt.Errorf("remote.timeout must be > 0 (got %s)", c.Remote.Timeout)
	}

	if err := c.Cache.validate(); err != nil {
		return fmt.Errorf("cache: %w", err)
	}

	if c.Delete.ConfirmTimeout <= 0 || c.Delete.UndoWindow <= 0 {
		return fmt.Errorf("delete timings must be > 0 (got confirm=%s undo=%s)", c.Delete.ConfirmTimeout, c.Delete.UndoWindow)
	}

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json (got %q)", c.Log.Format)
	}
	return nil
}

func (c *CacheConfig) validate() error {
	switch c.Driver {
	case DriverFS:
		if c.Dir == "" {
			return fmt.Errorf("dir is required for the fs driver")
		}
	case DriverRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("redis_url is required for the redis driver")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("sqlite_path is required for the sqlite driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown driver %q", c.Driver)
	}
	return nil
}
