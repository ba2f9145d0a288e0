package notesync

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/aretw0/notesync/internal/config"
	"github.com/aretw0/notesync/internal/platform"
	"github.com/aretw0/notesync/pkg/core"
)

// --- Types ---

// Client is a wired engine and delete coordinator over a cache backend.
type Client = platform.Client

// Config is the file and environment configuration.
type Config = config.Config

// Note is a single note of the collection.
type Note = core.Note

// Draft is a note without an identity, as submitted for creation.
type Draft = core.Draft

// Patch is a partial update of a note.
type Patch = core.Patch

// --- Configuration ---

// Option defines a functional option for configuring a Client.
type Option = platform.Option

// WithRemoteURL sets the base URL of the remote collection.
func WithRemoteURL(url string) Option {
	return platform.WithRemoteURL(url)
}

// WithToken sends a bearer token to the remote.
func WithToken(token string) Option {
	return platform.WithToken(token)
}

// WithTimeout bounds every remote request.
func WithTimeout(d time.Duration) Option {
	return platform.WithTimeout(d)
}

// WithRemote allows injecting a custom remote collection.
func WithRemote(r core.Remote) Option {
	return platform.WithRemote(r)
}

// WithSlots allows injecting a custom cache backend.
func WithSlots(s core.Slots) Option {
	return platform.WithSlots(s)
}

// WithCacheDir stores the cache as files under dir.
func WithCacheDir(dir string) Option {
	return platform.WithCacheDir(dir)
}

// WithRedis stores the cache in Redis.
func WithRedis(url string) Option {
	return platform.WithRedis(url)
}

// WithSQLite stores the cache in a SQLite database file.
func WithSQLite(path string) Option {
	return platform.WithSQLite(path)
}

// WithMemoryCache keeps the cache in memory only.
func WithMemoryCache() Option {
	return platform.WithMemoryCache()
}

// WithDevSafety controls the cache sandbox used under `go run` and `go test`.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// WithLogger sets the logger for every component.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithNotifier sets the sink for status messages and prompts.
func WithNotifier(n core.Notifier) Option {
	return platform.WithNotifier(n)
}

// WithClock replaces the clock, mainly for tests.
func WithClock(c clockwork.Clock) Option {
	return platform.WithClock(c)
}

// WithConfirmTimeout sets how long a delete confirmation stays open.
func WithConfirmTimeout(d time.Duration) Option {
	return platform.WithConfirmTimeout(d)
}

// WithUndoWindow sets how long a confirmed delete can be undone.
func WithUndoWindow(d time.Duration) Option {
	return platform.WithUndoWindow(d)
}

// WithWatcherErrorHandler receives errors of the cache watcher.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// --- Factory ---

// New creates a Client. Call Client.Engine.Start to load the collection.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	return platform.New(ctx, opts...)
}

// LoadConfig reads the configuration file at path (or NOTESYNC_CONFIG, or
// notesync.yaml) overlaid with the environment.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// NewFromConfig creates a Client from a loaded configuration.
func NewFromConfig(ctx context.Context, cfg *Config, opts ...Option) (*Client, error) {
	return platform.NewFromConfig(ctx, cfg, opts...)
}

// --- Safety & Utils ---

// IsDevRun checks if the current process is running via `go run` or `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}

// ResolveCacheDir determines the actual cache directory based on safety rules.
func ResolveCacheDir(dir string, sandbox bool) string {
	return platform.ResolveCacheDir(dir, sandbox)
}

// FindRoot recursively looks upwards for a notesync project root.
func FindRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}
