package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Marshal renders the configuration as YAML with human-readable durations.
func (c Config) Marshal() ([]byte, error) {
	doc := map[string]any{
		"remote": map[string]any{
			"url":     c.Remote.URL,
			"token":   c.Remote.Token,
			"timeout": c.Remote.Timeout.String(),
		},
		"cache": map[string]any{
			"driver":      c.Cache.Driver,
			"dir":         c.Cache.Dir,
			"redis_url":   c.Cache.RedisURL,
			"sqlite_path": c.Cache.SQLitePath,
		},
		"delete": map[string]any{
			"confirm_timeout": c.Delete.ConfirmTimeout.String(),
			"undo_window":     c.Delete.UndoWindow.String(),
		},
		"log": map[string]any{
			"level":       c.Log.Level,
			"format":      c.Log.Format,
			"file":        c.Log.File,
			"max_size_mb": c.Log.MaxSizeMB,
			"max_backups": c.Log.MaxBackups,
		},
	}
	return yaml.Marshal(doc)
}

// WriteDefault writes the default configuration to path. It refuses to
// overwrite an existing file unless force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config: %s already exists", path)
		}
	}
	data, err := Default().Marshal()
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("config: create dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
