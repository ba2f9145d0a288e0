package core

import "errors"

// Common errors.
var (
	// ErrRemoteUnavailable is the single failure kind of the remote collection.
	// Adapters wrap their transport or status details around it.
	ErrRemoteUnavailable = errors.New("remote collection unavailable")

	// ErrSlotEmpty is returned by Slots.Get for a key that was never written.
	ErrSlotEmpty = errors.New("cache slot is empty")

	ErrInvalidTransition = errors.New("invalid delete transition")
	ErrInvalidID         = errors.New("note ID cannot be empty")
)
