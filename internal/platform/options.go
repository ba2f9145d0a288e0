package platform

import (
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/aretw0/notesync/internal/config"
	"github.com/aretw0/notesync/pkg/core"
)

// options holds the internal configuration for a notesync client.
type options struct {
	remote    core.Remote
	remoteURL string
	token     string
	timeout   time.Duration

	slots      core.Slots
	driver     string
	cacheDir   string
	redisURL   string
	sqlitePath string
	devSafety  bool

	logger       *slog.Logger
	notifier     core.Notifier
	clock        clockwork.Clock
	errorHandler func(error)

	confirmTimeout time.Duration
	undoWindow     time.Duration
}

// Option defines a functional option for configuring the client.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		driver:         config.DriverFS,
		cacheDir:       ".notesync",
		devSafety:      true,
		confirmTimeout: core.DefaultConfirmTimeout,
		undoWindow:     core.DefaultUndoWindow,
	}
}

// WithRemoteURL sets the base URL of the remote collection.
func WithRemoteURL(url string) Option {
	return func(o *options) {
		o.remoteURL = url
	}
}

// WithToken sets a bearer token for the remote.
func WithToken(token string) Option {
	return func(o *options) {
		o.token = token
	}
}

// WithTimeout bounds every remote request.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithRemote allows injecting a custom remote (e.g. a fake in tests).
// If provided, the HTTP client is skipped.
func WithRemote(r core.Remote) Option {
	return func(o *options) {
		o.remote = r
	}
}

// WithSlots allows injecting a custom cache backend.
// If provided, the driver options are ignored.
func WithSlots(s core.Slots) Option {
	return func(o *options) {
		o.slots = s
	}
}

// WithCacheDir selects the filesystem cache rooted at dir.
func WithCacheDir(dir string) Option {
	return func(o *options) {
		o.driver = config.DriverFS
		o.cacheDir = dir
	}
}

// WithRedis selects the Redis cache at url (redis://host:port/db).
func WithRedis(url string) Option {
	return func(o *options) {
		o.driver = config.DriverRedis
		o.redisURL = url
	}
}

// WithSQLite selects the SQLite cache at path.
func WithSQLite(path string) Option {
	return func(o *options) {
		o.driver = config.DriverSQLite
		o.sqlitePath = path
	}
}

// WithMemoryCache keeps the cache in process memory only.
func WithMemoryCache() Option {
	return func(o *options) {
		o.driver = config.DriverMemory
	}
}

// WithDevSafety controls the sandbox used when running via `go run` or `go test`.
// By default (true) the filesystem cache is redirected to a temporary directory
// so development runs never touch a real cache.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.devSafety = enabled
	}
}

// WithLogger sets the logger for every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithNotifier sets the sink for status messages and prompts.
func WithNotifier(n core.Notifier) Option {
	return func(o *options) {
		o.notifier = n
	}
}

// WithClock replaces the clock driving ids' dates and delete timers.
func WithClock(c clockwork.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithWatcherErrorHandler registers a callback for errors of the cache watcher,
// which are otherwise only logged.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.errorHandler = fn
	}
}

// WithConfirmTimeout sets how long a delete confirmation stays open.
func WithConfirmTimeout(d time.Duration) Option {
	return func(o *options) {
		o.confirmTimeout = d
	}
}

// WithUndoWindow sets how long a confirmed delete can be undone.
func WithUndoWindow(d time.Duration) Option {
	return func(o *options) {
		o.undoWindow = d
	}
}

// FromConfig maps a loaded configuration onto options.
func FromConfig(cfg *config.Config) []Option {
	opts := []Option{
		WithRemoteURL(cfg.Remote.URL),
		WithToken(cfg.Remote.Token),
		WithTimeout(cfg.Remote.Timeout),
		WithConfirmTimeout(cfg.Delete.ConfirmTimeout),
		WithUndoWindow(cfg.Delete.UndoWindow),
	}
	switch cfg.Cache.Driver {
	case config.DriverRedis:
		opts = append(opts, WithRedis(cfg.Cache.RedisURL))
	case config.DriverSQLite:
		opts = append(opts, WithSQLite(cfg.Cache.SQLitePath))
	case config.DriverMemory:
		opts = append(opts, WithMemoryCache())
	case config.DriverFS, "":
		opts = append(opts, WithCacheDir(cfg.Cache.Dir))
	default:
		driver := cfg.Cache.Driver
		opts = append(opts, func(o *options) { o.driver = driver })
	}
	return opts
}
