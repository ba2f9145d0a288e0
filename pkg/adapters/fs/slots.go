// Package fs stores cache slots as files, one per key, written atomically.
package fs

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/notesync/pkg/core"
)

// SlotExt is the extension of slot files.
const SlotExt = ".slot"

// Config holds the configuration for the filesystem slots.
type Config struct {
	Dir    string
	Logger *slog.Logger
	// ErrorHandler receives watcher errors. Nil logs them instead.
	ErrorHandler func(error)
}

// Slots implements core.Slots on a directory.
type Slots struct {
	Dir    string
	config Config
	sweep  sync.Once

	mu            sync.RWMutex
	written       map[string][sha256.Size]byte
	writes        int
	lastWrite     *time.Time
	watcherActive bool
}

// New creates a filesystem slot store rooted at cfg.Dir. The directory is
// created on first write.
func New(cfg Config) *Slots {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Slots{
		Dir:     cfg.Dir,
		config:  cfg,
		written: make(map[string][sha256.Size]byte),
	}
}

// Get reads a slot. Missing files are reported as core.ErrSlotEmpty.
func (s *Slots) Get(ctx context.Context, key string) ([]byte, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, core.ErrSlotEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read slot %s: %w", key, err)
	}
	return data, nil
}

// Put overwrites a slot atomically (temp file + rename).
func (s *Slots) Put(ctx context.Context, key string, value []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache dir: %w", err)
	}
	s.sweep.Do(func() {
		if n, err := sweepTemp(s.Dir); err != nil {
			s.config.Logger.Warn("failed to sweep temp files", "dir", s.Dir, "error", err)
		} else if n > 0 {
			s.config.Logger.Debug("removed stale temp files", "dir", s.Dir, "count", n)
		}
	})

	// Record before writing so the watcher recognizes our own change.
	s.mu.Lock()
	prev, hadPrev := s.written[key]
	s.written[key] = sha256.Sum256(value)
	s.mu.Unlock()

	if err := replaceFile(path, value, 0644); err != nil {
		s.mu.Lock()
		if hadPrev {
			s.written[key] = prev
		} else {
			delete(s.written, key)
		}
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	now := time.Now()
	s.lastWrite = &now
	s.writes++
	s.mu.Unlock()
	return nil
}

func (s *Slots) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("invalid slot key %q", key)
	}
	return filepath.Join(s.Dir, key+SlotExt), nil
}

// keyOf maps a slot file path back to its key.
func keyOf(path string) (string, bool) {
	base := filepath.Base(path)
	if strings.HasPrefix(base, TempFilePrefix) || !strings.HasSuffix(base, SlotExt) {
		return "", false
	}
	return strings.TrimSuffix(base, SlotExt), true
}

// ownWrite reports whether data is what this process last wrote to key.
func (s *Slots) ownWrite(key string, data []byte) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sum, ok := s.written[key]
	return ok && sum == sha256.Sum256(data)
}

var _ core.Slots = (*Slots)(nil)
