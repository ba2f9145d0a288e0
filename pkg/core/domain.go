// Package core holds the note collection domain: the reconciliation engine,
// the deferred-delete coordinator and the ports their adapters implement.
package core

import "fmt"

// EventType represents the kind of change applied to the collection.
type EventType string

const (
	EventRefresh EventType = "REFRESH"
	EventCreate  EventType = "CREATE"
	EventModify  EventType = "MODIFY"
	EventRemove  EventType = "REMOVE"
	EventRestore EventType = "RESTORE"
	// EventSlot reports a cache slot changed by another process.
	EventSlot EventType = "SLOT"
)

// Event represents a change in the canonical collection.
type Event struct {
	Type      EventType
	ID        ID
	Key       string // slot key, for EventSlot
	Outcome   Outcome
	Timestamp int64 // Unix timestamp
}

// String implements lifecycle.Event.
func (e Event) String() string {
	if e.Type == EventSlot {
		return fmt.Sprintf("%s %s", e.Type, e.Key)
	}
	if e.ID == "" {
		return fmt.Sprintf("%s (%s)", e.Type, e.Outcome)
	}
	return fmt.Sprintf("%s %s (%s)", e.Type, e.ID, e.Outcome)
}

// Outcome is the result of an operation that degrades instead of failing.
type Outcome int

const (
	// Synced means the remote confirmed the operation.
	Synced Outcome = iota
	// Offline means the remote was unreachable and the change lives only locally.
	Offline
)

func (o Outcome) String() string {
	switch o {
	case Synced:
		return "synced"
	case Offline:
		return "offline"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}
