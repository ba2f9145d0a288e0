package core

import (
	"context"
	"time"
)

// Remote is the contract of the remote note collection.
// Every call is a single round trip. Any failure must satisfy
// errors.Is(err, ErrRemoteUnavailable); implementations never retry.
type Remote interface {
	// List returns the full remote collection.
	List(ctx context.Context) ([]Note, error)

	// Create stores a draft; the remote assigns the id.
	Create(ctx context.Context, d Draft) (Note, error)

	// Update sends only the fields set in the patch.
	Update(ctx context.Context, id ID, p Patch) error

	Delete(ctx context.Context, id ID) error
}

// Slots is a durable key-value store of single-value slots.
// Adhering to this interface keeps the cache independent of the storage
// mechanism (filesystem, Redis, SQLite, memory).
type Slots interface {
	// Get returns the slot's value, or ErrSlotEmpty if it was never written.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put overwrites the slot.
	Put(ctx context.Context, key string, value []byte) error
}

// PromptKind distinguishes the two timed prompts of a deletion.
type PromptKind string

const (
	PromptConfirm PromptKind = "confirm"
	PromptUndo    PromptKind = "undo"
)

// Prompt is a timed question surfaced to the user.
type Prompt struct {
	Kind    PromptKind
	NoteID  ID
	Title   string
	Message string
	Timeout time.Duration
}

// Notifier surfaces status messages and prompts. It is purely presentational:
// the Deleter owns the timeouts and the sink forwards user answers back to it.
type Notifier interface {
	Notify(msg string)
	RequestConfirmation(p Prompt)
	OfferUndo(p Prompt)
	// Withdraw tells the sink a prompt is no longer actionable.
	Withdraw(kind PromptKind)
}

type nopNotifier struct{}

func (nopNotifier) Notify(string)              {}
func (nopNotifier) RequestConfirmation(Prompt) {}
func (nopNotifier) OfferUndo(Prompt)           {}
func (nopNotifier) Withdraw(PromptKind)        {}

// NopNotifier discards everything.
func NopNotifier() Notifier { return nopNotifier{} }
