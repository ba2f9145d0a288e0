package fs

import (
	"slices"
	"time"

	"github.com/aretw0/introspection"
)

// SlotsState exposes internal state for observability.
type SlotsState struct {
	Dir           string     `json:"dir"`
	Keys          []string   `json:"keys"`
	Writes        int        `json:"writes"`
	LastWrite     *time.Time `json:"last_write,omitempty"`
	WatcherActive bool       `json:"watcher_active"`
}

// State implements introspection.Introspectable.
func (s *Slots) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.written))
	for k := range s.written {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	return SlotsState{
		Dir:           s.Dir,
		Keys:          keys,
		Writes:        s.writes,
		LastWrite:     s.lastWrite,
		WatcherActive: s.watcherActive,
	}
}

// ComponentType implements introspection.Component.
func (s *Slots) ComponentType() string {
	return "fs"
}

var _ introspection.Introspectable = (*Slots)(nil)
var _ introspection.Component = (*Slots)(nil)

func (s *Slots) setWatcherActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watcherActive = active
}
