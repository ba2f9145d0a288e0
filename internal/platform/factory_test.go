package platform

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/notesync/internal/config"
	"github.com/aretw0/notesync/internal/devserver"
	"github.com/aretw0/notesync/pkg/adapters/fs"
	"github.com/aretw0/notesync/pkg/adapters/memory"
	"github.com/aretw0/notesync/pkg/core"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newDevServer(t *testing.T, seed ...core.Note) (*devserver.Server, string) {
	t.Helper()
	srv := devserver.New(devserver.NewStore(seed...), discardLogger())
	ts := httptest.NewServer(srv.Echo)
	t.Cleanup(ts.Close)
	return srv, ts.URL
}

func TestNew_EndToEndWithMemoryCache(t *testing.T) {
	ctx := context.Background()
	srv, url := newDevServer(t, core.Note{ID: "1", Title: "seed"})

	c, err := New(ctx, WithRemoteURL(url), WithMemoryCache(), WithLogger(discardLogger()))
	require.NoError(t, err)
	defer c.Close(ctx)

	assert.IsType(t, &memory.Slots{}, c.Slots)
	assert.Equal(t, core.Synced, c.Engine.Start(ctx))
	require.Len(t, c.Engine.Notes(), 1)

	n, outcome := c.Engine.Create(ctx, core.Draft{Title: "second"})
	assert.Equal(t, core.Synced, outcome)
	assert.Equal(t, core.ID("2"), n.ID)

	srv.SetOffline(true)
	assert.Equal(t, core.Offline, c.Engine.Refresh(ctx))
	assert.Len(t, c.Engine.Notes(), 2, "offline refresh serves the cached snapshot")
}

func TestNew_InjectedSlots(t *testing.T) {
	ctx := context.Background()
	slots := memory.New()
	_, url := newDevServer(t)

	c, err := New(ctx, WithRemoteURL(url), WithSlots(slots), WithCacheDir("ignored"))
	require.NoError(t, err)
	assert.Same(t, slots, c.Slots)
}

func TestNew_SQLiteCache(t *testing.T) {
	ctx := context.Background()
	_, url := newDevServer(t, core.Note{ID: "1", Title: "seed"})
	path := filepath.Join(t.TempDir(), "cache.db")

	c, err := New(ctx, WithRemoteURL(url), WithSQLite(path))
	require.NoError(t, err)
	c.Engine.Start(ctx)
	require.NoError(t, c.Close(ctx))

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestNew_RedisCache(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	_, url := newDevServer(t, core.Note{ID: "1", Title: "seed"})

	c, err := New(ctx, WithRemoteURL(url), WithRedis("redis://"+mr.Addr()))
	require.NoError(t, err)
	defer c.Close(ctx)

	c.Engine.Start(ctx)
	assert.True(t, mr.Exists("notesync:"+core.NotesKey))
}

func TestNew_RedisUnreachable(t *testing.T) {
	_, err := New(context.Background(), WithRedis("redis://127.0.0.1:1"))
	assert.Error(t, err)
}

func TestNew_UnknownDriver(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Driver = "tape"
	_, err := NewFromConfig(context.Background(), &cfg)
	assert.ErrorContains(t, err, "unsupported cache driver: tape")
}

func TestNewFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Driver = config.DriverMemory
	cfg.Delete.UndoWindow = 2 * time.Second

	c, err := NewFromConfig(context.Background(), &cfg)
	require.NoError(t, err)

	st, ok := c.Deleter.State().(core.DeleterState)
	require.True(t, ok)
	assert.Equal(t, "2s", st.UndoWindow)
}

func TestWatchCache_Unsupported(t *testing.T) {
	c, err := New(context.Background(), WithMemoryCache())
	require.NoError(t, err)

	_, err = c.WatchCache(context.Background())
	assert.True(t, errors.Is(err, ErrWatchUnsupported))
}

func TestWatchCache_RefreshesOnForeignWrite(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv, url := newDevServer(t, core.Note{ID: "1", Title: "seed"})
	dir := t.TempDir()

	c, err := New(ctx, WithRemoteURL(url), WithCacheDir(dir), WithLogger(discardLogger()))
	require.NoError(t, err)
	assert.Equal(t, dir, c.Slots.(*fs.Slots).Dir, "temp dirs are not sandboxed again")

	events, err := c.WatchCache(ctx)
	require.NoError(t, err)

	// Another process holding the same cache dir writes a snapshot.
	srv.SetOffline(true)
	other := core.NewLocalStore(fs.New(fs.Config{Dir: dir}), discardLogger())
	require.NoError(t, other.SaveNotes(ctx, []core.Note{{ID: "9", Title: "from elsewhere"}}))

	select {
	case ev := <-events:
		assert.Equal(t, core.EventSlot, ev.Type)
		assert.Equal(t, core.NotesKey, ev.Key)
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for cache event")
	}

	n, ok := c.Engine.Find("9")
	require.True(t, ok, "offline refresh loaded the foreign snapshot")
	assert.Equal(t, "from elsewhere", n.Title)
}
