// Package lifecycle exposes note collection events as a lifecycle.Source.
package lifecycle

import (
	"context"
	"slices"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/notesync/pkg/core"
)

// collectionSource relays core events, optionally restricted to some types.
type collectionSource struct {
	in    <-chan core.Event
	out   chan lifecycle.Event
	types []core.EventType
}

// NewSource creates a lifecycle.Source from a core event channel, such as
// one returned by Engine.Subscribe or fs.Slots.Watch. With types given, only
// events of those types are relayed.
func NewSource(events <-chan core.Event, types ...core.EventType) lifecycle.Source {
	return &collectionSource{
		in:    events,
		out:   make(chan lifecycle.Event),
		types: types,
	}
}

func (s *collectionSource) Events() <-chan lifecycle.Event {
	return s.out
}

// Start relays on a tracked goroutine until ctx is done or the input closes,
// then closes Events.
func (s *collectionSource) Start(ctx context.Context) error {
	lifecycle.Go(ctx, s.relay)
	return nil
}

func (s *collectionSource) relay(ctx context.Context) error {
	defer close(s.out)
	for {
		var e core.Event
		var ok bool
		select {
		case <-ctx.Done():
			return nil
		case e, ok = <-s.in:
		}
		if !ok {
			return nil
		}
		if !s.wants(e.Type) {
			continue
		}
		select {
		case s.out <- e:
		case <-ctx.Done():
			return nil
		}
	}
}

func (s *collectionSource) wants(t core.EventType) bool {
	return len(s.types) == 0 || slices.Contains(s.types, t)
}
