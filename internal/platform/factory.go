package platform

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/notesync/internal/config"
	"github.com/aretw0/notesync/pkg/adapters/fs"
	"github.com/aretw0/notesync/pkg/adapters/memory"
	"github.com/aretw0/notesync/pkg/adapters/redis"
	"github.com/aretw0/notesync/pkg/adapters/rest"
	"github.com/aretw0/notesync/pkg/adapters/sqlite"
	"github.com/aretw0/notesync/pkg/core"
)

// ErrWatchUnsupported is returned by WatchCache for backends other than fs.
var ErrWatchUnsupported = errors.New("cache backend does not support watching")

// Client bundles the wired engine, delete coordinator and cache backend.
type Client struct {
	Engine  *core.Engine
	Deleter *core.Deleter
	Slots   core.Slots

	logger       *slog.Logger
	errorHandler func(error)
	closers      []io.Closer
}

// New wires a client from options. It does not contact the remote;
// call Engine.Start to load the collection.
//
//	c, err := platform.New(ctx, platform.WithRemoteURL("http://localhost:3000"))
func New(ctx context.Context, opts ...Option) (*Client, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	c := &Client{logger: o.logger, errorHandler: o.errorHandler}

	slots, err := c.openSlots(ctx, o)
	if err != nil {
		return nil, err
	}
	c.Slots = slots

	remote := o.remote
	if remote == nil {
		restOpts := []rest.Option{rest.WithToken(o.token), rest.WithLogger(o.logger)}
		if o.timeout > 0 {
			restOpts = append(restOpts, rest.WithTimeout(o.timeout))
		}
		remote = rest.New(o.remoteURL, restOpts...)
	}

	engineOpts := []core.EngineOption{core.WithLogger(o.logger), core.WithNotifier(o.notifier)}
	if o.clock != nil {
		engineOpts = append(engineOpts, core.WithClock(o.clock))
	}
	c.Engine = core.NewEngine(remote, slots, engineOpts...)
	c.Deleter = core.NewDeleter(c.Engine,
		core.WithConfirmTimeout(o.confirmTimeout),
		core.WithUndoWindow(o.undoWindow),
	)
	return c, nil
}

// NewFromConfig wires a client from a loaded configuration. Extra options
// are applied after the configuration.
func NewFromConfig(ctx context.Context, cfg *config.Config, extra ...Option) (*Client, error) {
	return New(ctx, append(FromConfig(cfg), extra...)...)
}

func (c *Client) openSlots(ctx context.Context, o *options) (core.Slots, error) {
	if o.slots != nil {
		return o.slots, nil
	}

	switch o.driver {
	case config.DriverFS, "":
		dir := ResolveCacheDir(o.cacheDir, o.devSafety && IsDevRun())
		if dir != o.cacheDir {
			o.logger.Debug("dev run detected, sandboxing cache", "dir", dir)
		}
		return fs.New(fs.Config{Dir: dir, Logger: o.logger, ErrorHandler: o.errorHandler}), nil
	case config.DriverRedis:
		s, err := redis.Open(ctx, o.redisURL, redis.DefaultPrefix)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, s)
		return s, nil
	case config.DriverSQLite:
		s, err := sqlite.Open(o.sqlitePath)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, s)
		return s, nil
	case config.DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported cache driver: %s", o.driver)
	}
}

// WatchCache refreshes the collection whenever another process rewrites the
// notes snapshot, forwarding the slot events. Only the fs backend is
// watchable. The channel is closed when ctx is cancelled.
func (c *Client) WatchCache(ctx context.Context) (<-chan core.Event, error) {
	watchable, ok := c.Slots.(*fs.Slots)
	if !ok {
		return nil, ErrWatchUnsupported
	}
	changes, err := watchable.Watch(ctx, core.NotesKey)
	if err != nil {
		return nil, err
	}

	out := make(chan core.Event)
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(out)
		for ev := range changes {
			c.logger.Info("cache changed by another process", "key", ev.Key)
			c.Engine.Refresh(ctx)
			select {
			case out <- ev:
			case <-ctx.Done():
				return nil
			}
		}
		return nil
	}, lifecycle.WithErrorHandler(c.handleError))
	return out, nil
}

func (c *Client) handleError(err error) {
	if c.errorHandler != nil {
		c.errorHandler(err)
		return
	}
	c.logger.Error("cache watch failed", "error", err)
}

// Close waits for any in-flight delete, then releases the cache backend.
func (c *Client) Close(ctx context.Context) error {
	var errs []error
	if err := c.Deleter.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	for _, cl := range c.closers {
		if err := cl.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
