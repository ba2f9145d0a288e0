// Package config loads notesync settings from a YAML file and the environment.
package config

import "time"

// Config is the root configuration.
type Config struct {
	Remote RemoteConfig `yaml:"remote"`
	Cache  CacheConfig  `yaml:"cache"`
	Delete DeleteConfig `yaml:"delete"`
	Log    LogConfig    `yaml:"log"`
}

// RemoteConfig points at the remote note collection.
type RemoteConfig struct {
	URL     string        `yaml:"url"     env:"NOTESYNC_REMOTE_URL"     env-default:"http://localhost:3000"`
	Token   string        `yaml:"token"   env:"NOTESYNC_REMOTE_TOKEN"`
	Timeout time.Duration `yaml:"timeout" env:"NOTESYNC_REMOTE_TIMEOUT" env-default:"10s"`
}

// CacheConfig selects the local cache backend.
type CacheConfig struct {
	Driver     string `yaml:"driver"      env:"NOTESYNC_CACHE_DRIVER"      env-default:"fs"`
	Dir        string `yaml:"dir"         env:"NOTESYNC_CACHE_DIR"         env-default:".notesync"`
	RedisURL   string `yaml:"redis_url"   env:"NOTESYNC_CACHE_REDIS_URL"`
	SQLitePath string `yaml:"sqlite_path" env:"NOTESYNC_CACHE_SQLITE_PATH"`
}

// DeleteConfig holds the deferred-delete timings.
type DeleteConfig struct {
	ConfirmTimeout time.Duration `yaml:"confirm_timeout" env:"NOTESYNC_CONFIRM_TIMEOUT" env-default:"5s"`
	UndoWindow     time.Duration `yaml:"undo_window"     env:"NOTESYNC_UNDO_WINDOW"     env-default:"5s"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"NOTESYNC_LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"NOTESYNC_LOG_FORMAT" env-default:"text"`
	// File, when set, receives a rotated copy of the log.
	File       string `yaml:"file"        env:"NOTESYNC_LOG_FILE"`
	MaxSizeMB  int    `yaml:"max_size_mb" env:"NOTESYNC_LOG_MAX_SIZE_MB" env-default:"10"`
	MaxBackups int    `yaml:"max_backups" env:"NOTESYNC_LOG_MAX_BACKUPS" env-default:"3"`
}

// Cache drivers.
const (
	DriverFS     = "fs"
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)
