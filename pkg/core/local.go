package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

// Slot keys used by the local cache.
const (
	NotesKey    = "localNotes"
	DarkModeKey = "darkMode"
)

const (
	darkEnabled  = "enabled"
	darkDisabled = "disabled"
)

// LocalStore persists the last known-good collection snapshot and the
// display preference on top of a Slots backend.
type LocalStore struct {
	slots  Slots
	logger *slog.Logger
}

// NewLocalStore wraps slots. A nil logger falls back to slog.Default().
func NewLocalStore(slots Slots, logger *slog.Logger) *LocalStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalStore{slots: slots, logger: logger}
}

// SaveNotes overwrites the snapshot.
func (s *LocalStore) SaveNotes(ctx context.Context, notes []Note) error {
	if notes == nil {
		notes = []Note{}
	}
	data, err := json.Marshal(notes)
	if err != nil {
		return fmt.Errorf("failed to encode notes: %w", err)
	}
	if err := s.slots.Put(ctx, NotesKey, data); err != nil {
		return fmt.Errorf("failed to save notes: %w", err)
	}
	return nil
}

// LoadNotes returns the last saved snapshot. A missing or corrupted snapshot
// yields an empty collection so the cache heals itself on the next save.
func (s *LocalStore) LoadNotes(ctx context.Context) ([]Note, error) {
	data, err := s.slots.Get(ctx, NotesKey)
	if errors.Is(err, ErrSlotEmpty) {
		return []Note{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load notes: %w", err)
	}

	var notes []Note
	if err := json.Unmarshal(data, &notes); err != nil {
		s.logger.Warn("discarding corrupted notes snapshot", "error", err)
		return []Note{}, nil
	}
	if notes == nil {
		notes = []Note{}
	}
	return dedupe(notes), nil
}

// DarkMode reports the stored preference; unset means light mode.
func (s *LocalStore) DarkMode(ctx context.Context) (bool, error) {
	data, err := s.slots.Get(ctx, DarkModeKey)
	if errors.Is(err, ErrSlotEmpty) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load preference: %w", err)
	}
	return string(data) == darkEnabled, nil
}

func (s *LocalStore) SetDarkMode(ctx context.Context, enabled bool) error {
	v := darkDisabled
	if enabled {
		v = darkEnabled
	}
	if err := s.slots.Put(ctx, DarkModeKey, []byte(v)); err != nil {
		return fmt.Errorf("failed to save preference: %w", err)
	}
	return nil
}
