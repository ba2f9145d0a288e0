package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DeleteState is a state of the deferred-delete lifecycle.
type DeleteState int

const (
	Idle DeleteState = iota
	PendingConfirmation
	PendingUndo
	Finalizing
)

func (s DeleteState) String() string {
	switch s {
	case Idle:
		return "idle"
	case PendingConfirmation:
		return "pending_confirmation"
	case PendingUndo:
		return "pending_undo"
	case Finalizing:
		return "finalizing"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Default durations of the two prompts.
const (
	DefaultConfirmTimeout = 5 * time.Second
	DefaultUndoWindow     = 5 * time.Second
)

// Deleter drives the soft delete -> undo window -> hard delete lifecycle of
// one note at a time.
//
// A request while another delete is pending supersedes it: a pending undo
// window is finalized first, a pending confirmation is cancelled first.
// Cancelling a confirmation (or letting it time out) restores the note at
// its former position with its original id.
type Deleter struct {
	engine         *Engine
	notifier       Notifier
	logger         *slog.Logger
	clock          clockwork.Clock
	confirmTimeout time.Duration
	undoWindow     time.Duration

	// opMu serializes transitions, mu guards the fields below for readers.
	opMu sync.Mutex

	mu         sync.Mutex
	state      DeleteState
	pending    Note
	position   int
	generation uint64
	timer      clockwork.Timer
}

// DeleterOption configures a Deleter.
type DeleterOption func(*Deleter)

// WithConfirmTimeout sets how long the confirmation prompt stays open.
func WithConfirmTimeout(d time.Duration) DeleterOption {
	return func(c *Deleter) {
		if d > 0 {
			c.confirmTimeout = d
		}
	}
}

// WithUndoWindow sets how long a confirmed delete can be undone.
func WithUndoWindow(d time.Duration) DeleterOption {
	return func(c *Deleter) {
		if d > 0 {
			c.undoWindow = d
		}
	}
}

// NewDeleter creates a coordinator sharing the engine's notifier, logger and clock.
func NewDeleter(engine *Engine, opts ...DeleterOption) *Deleter {
	d := &Deleter{
		engine:         engine,
		notifier:       engine.notifier,
		logger:         engine.logger.With("component", "deleter"),
		clock:          engine.clock,
		confirmTimeout: DefaultConfirmTimeout,
		undoWindow:     DefaultUndoWindow,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Request removes the note from the collection and asks for confirmation.
// An unknown id is a no-op.
func (d *Deleter) Request(ctx context.Context, id ID) error {
	if id == "" {
		return ErrInvalidID
	}

	d.opMu.Lock()
	defer d.opMu.Unlock()

	switch d.Status() {
	case PendingUndo:
		d.logger.Debug("superseding pending undo window", "id", d.pendingID())
		d.finalize(ctx)
	case PendingConfirmation:
		d.logger.Debug("superseding pending confirmation", "id", d.pendingID())
		d.notifier.Withdraw(PromptConfirm)
		d.cancel(ctx)
	}

	n, at, ok := d.engine.detach(ctx, id)
	if !ok {
		d.logger.Debug("delete requested for unknown note", "id", id)
		return nil
	}

	d.mu.Lock()
	d.state = PendingConfirmation
	d.pending = n
	d.position = at
	d.armLocked(d.confirmTimeout, PendingConfirmation)
	d.mu.Unlock()

	d.notifier.RequestConfirmation(Prompt{
		Kind:    PromptConfirm,
		NoteID:  n.ID,
		Title:   n.Title,
		Message: MsgConfirmDelete,
		Timeout: d.confirmTimeout,
	})
	return nil
}

// Confirm accepts the pending deletion and opens the undo window.
func (d *Deleter) Confirm(ctx context.Context) error {
	d.opMu.Lock()
	defer d.opMu.Unlock()

	d.mu.Lock()
	if d.state != PendingConfirmation {
		defer d.mu.Unlock()
		return d.invalidLocked("confirm")
	}
	d.state = PendingUndo
	d.armLocked(d.undoWindow, PendingUndo)
	n := d.pending
	d.mu.Unlock()

	d.notifier.Withdraw(PromptConfirm)
	d.notifier.OfferUndo(Prompt{
		Kind:    PromptUndo,
		NoteID:  n.ID,
		Title:   n.Title,
		Message: MsgUndo,
		Timeout: d.undoWindow,
	})
	return nil
}

// Cancel rejects the pending deletion and restores the note.
func (d *Deleter) Cancel(ctx context.Context) error {
	d.opMu.Lock()
	defer d.opMu.Unlock()

	if s := d.Status(); s != PendingConfirmation {
		return fmt.Errorf("%w: cancel in state %s", ErrInvalidTransition, s)
	}
	d.notifier.Withdraw(PromptConfirm)
	d.cancel(ctx)
	return nil
}

// Undo puts the pending note back. The remote has not seen a delete yet, so
// the note is reinstated locally and the collection re-converged with a
// refresh; only a note the remote never held is created again.
func (d *Deleter) Undo(ctx context.Context) error {
	d.opMu.Lock()
	defer d.opMu.Unlock()

	d.mu.Lock()
	if d.state != PendingUndo {
		defer d.mu.Unlock()
		return d.invalidLocked("undo")
	}
	d.stopLocked()
	n, at := d.pending, d.position
	d.clearLocked()
	d.mu.Unlock()

	d.notifier.Withdraw(PromptUndo)
	outcome := d.engine.restore(ctx, n, at)
	d.logger.Info("delete undone", "id", n.ID, "outcome", outcome.String())
	return nil
}

// Dismiss closes the undo window early and finalizes the delete.
func (d *Deleter) Dismiss(ctx context.Context) error {
	d.opMu.Lock()
	defer d.opMu.Unlock()

	if s := d.Status(); s != PendingUndo {
		return fmt.Errorf("%w: dismiss in state %s", ErrInvalidTransition, s)
	}
	d.notifier.Withdraw(PromptUndo)
	d.finalize(ctx)
	return nil
}

// Close settles any pending delete: an open undo window is finalized and an
// open confirmation is cancelled.
func (d *Deleter) Close(ctx context.Context) error {
	d.opMu.Lock()
	defer d.opMu.Unlock()

	switch d.Status() {
	case PendingUndo:
		d.notifier.Withdraw(PromptUndo)
		d.finalize(ctx)
	case PendingConfirmation:
		d.notifier.Withdraw(PromptConfirm)
		d.cancel(ctx)
	}
	return nil
}

// Status returns the current lifecycle state.
func (d *Deleter) Status() DeleteState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Pending returns the note occupying the pending slot.
func (d *Deleter) Pending() (Note, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == Idle {
		return Note{}, false
	}
	return d.pending, true
}

// cancel restores the pending note. Callers hold opMu.
func (d *Deleter) cancel(ctx context.Context) {
	d.mu.Lock()
	d.stopLocked()
	n, at := d.pending, d.position
	d.clearLocked()
	d.mu.Unlock()

	d.engine.reattach(ctx, n, at)
	d.logger.Info("delete cancelled, note restored", "id", n.ID)
}

// finalize runs the hard delete. Callers hold opMu.
func (d *Deleter) finalize(ctx context.Context) {
	d.mu.Lock()
	d.stopLocked()
	d.state = Finalizing
	n := d.pending
	d.mu.Unlock()

	outcome := d.engine.finalizeDelete(ctx, n.ID)
	d.logger.Info("delete finalized", "id", n.ID, "outcome", outcome.String())

	d.mu.Lock()
	d.clearLocked()
	d.mu.Unlock()
}

// armLocked replaces the running timer. The callback only acts if nothing
// else happened since it was armed.
func (d *Deleter) armLocked(after time.Duration, state DeleteState) {
	d.stopLocked()
	gen := d.generation
	d.timer = d.clock.AfterFunc(after, func() {
		d.expire(gen, state)
	})
}

func (d *Deleter) expire(gen uint64, state DeleteState) {
	d.opMu.Lock()
	defer d.opMu.Unlock()

	d.mu.Lock()
	stale := d.generation != gen || d.state != state
	d.mu.Unlock()
	if stale {
		return
	}

	ctx := context.Background()
	switch state {
	case PendingConfirmation:
		d.logger.Debug("confirmation timed out", "id", d.pendingID())
		d.notifier.Withdraw(PromptConfirm)
		d.cancel(ctx)
	case PendingUndo:
		d.logger.Debug("undo window expired", "id", d.pendingID())
		d.notifier.Withdraw(PromptUndo)
		d.finalize(ctx)
	}
}

func (d *Deleter) stopLocked() {
	d.generation++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Deleter) clearLocked() {
	d.state = Idle
	d.pending = Note{}
	d.position = -1
}

func (d *Deleter) pendingID() ID {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending.ID
}

func (d *Deleter) invalidLocked(op string) error {
	return fmt.Errorf("%w: %s in state %s", ErrInvalidTransition, op, d.state)
}
