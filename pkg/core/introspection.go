package core

import (
	"time"

	"github.com/aretw0/introspection"
)

// EngineState exposes internal state for observability.
type EngineState struct {
	Notes       int        `json:"notes"`
	Subscribers int        `json:"subscribers"`
	LastOutcome string     `json:"last_outcome"`
	LastRefresh *time.Time `json:"last_refresh,omitempty"`
	SlotsType   string     `json:"slots_type"`
}

// State implements introspection.Introspectable.
func (e *Engine) State() any {
	e.mu.RLock()
	defer e.mu.RUnlock()

	slotsType := "slots"
	// Try to get component type if the backend implements introspection.Component
	if comp, ok := e.local.slots.(introspection.Component); ok {
		slotsType = comp.ComponentType()
	}

	st := EngineState{
		Notes:       len(e.notes),
		Subscribers: len(e.subscribers),
		LastOutcome: e.lastOutcome.String(),
		SlotsType:   slotsType,
	}
	if !e.lastRefresh.IsZero() {
		t := e.lastRefresh
		st.LastRefresh = &t
	}
	return st
}

// ComponentType implements introspection.Component.
func (e *Engine) ComponentType() string {
	return "engine"
}

// DeleterState exposes the deferred-delete state machine.
type DeleterState struct {
	State          string `json:"state"`
	PendingID      string `json:"pending_id,omitempty"`
	ConfirmTimeout string `json:"confirm_timeout"`
	UndoWindow     string `json:"undo_window"`
}

// State implements introspection.Introspectable.
func (d *Deleter) State() any {
	d.mu.Lock()
	defer d.mu.Unlock()
	return DeleterState{
		State:          d.state.String(),
		PendingID:      string(d.pending.ID),
		ConfirmTimeout: d.confirmTimeout.String(),
		UndoWindow:     d.undoWindow.String(),
	}
}

// ComponentType implements introspection.Component.
func (d *Deleter) ComponentType() string {
	return "deleter"
}

var _ introspection.Introspectable = (*Engine)(nil)
var _ introspection.Component = (*Engine)(nil)
var _ introspection.Introspectable = (*Deleter)(nil)
var _ introspection.Component = (*Deleter)(nil)
