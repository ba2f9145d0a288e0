// Package memory provides an in-process Slots backend for tests and
// ephemeral sessions.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/notesync/pkg/core"
)

// Slots keeps values in a map. Values are copied on the way in and out.
type Slots struct {
	mu     sync.RWMutex
	values map[string][]byte
	puts   int
}

// New creates an empty store.
func New() *Slots {
	return &Slots{values: make(map[string][]byte)}
}

func (s *Slots) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return nil, core.ErrSlotEmpty
	}
	return slices.Clone(v), nil
}

func (s *Slots) Put(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = slices.Clone(value)
	s.puts++
	return nil
}

// Puts returns how many writes the store received.
func (s *Slots) Puts() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.puts
}

// ComponentType implements introspection.Component.
func (s *Slots) ComponentType() string {
	return "memory"
}

var _ core.Slots = (*Slots)(nil)
