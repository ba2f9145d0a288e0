package core

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Status messages surfaced through the Notifier.
const (
	MsgSaved         = "Note saved"
	MsgSaveOffline   = "Save failed. Using offline storage."
	MsgUpdated       = "Note updated"
	MsgUpdateOffline = "Update failed. Saved offline."
	MsgDeleted       = "Note deleted"
	MsgDeleteOffline = "Deleted offline"
	MsgConfirmDelete = "Delete this note?"
	MsgUndo          = "Note deleted. Undo?"
)

// Engine owns the canonical note collection and reconciles it with the
// remote collection and the local cache.
//
// Operations are serialized by opMu (single writer). The collection itself is
// guarded by mu, which is never held across a network call, so readers see
// optimistic changes while the remote round trip is in flight.
type Engine struct {
	remote   Remote
	local    *LocalStore
	notifier Notifier
	logger   *slog.Logger
	clock    clockwork.Clock
	newID    func() ID

	opMu sync.Mutex

	mu          sync.RWMutex
	notes       []Note
	lastRefresh time.Time
	lastOutcome Outcome
	subscribers []chan Event

	// hidden holds ids detached for a pending delete. Refreshes skip them so
	// the occupant never reappears while its window is open.
	hidden map[ID]struct{}

	// localOnly holds provisional ids of creates the remote never accepted.
	localOnly map[ID]struct{}
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger. Nil keeps slog.Default().
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithNotifier sets the sink for status messages and prompts.
func WithNotifier(n Notifier) EngineOption {
	return func(e *Engine) {
		if n != nil {
			e.notifier = n
		}
	}
}

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c clockwork.Clock) EngineOption {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithIDGenerator replaces the generator of locally assigned ids.
func WithIDGenerator(gen func() ID) EngineOption {
	return func(e *Engine) {
		if gen != nil {
			e.newID = gen
		}
	}
}

// NewEngine creates an engine with an empty collection.
func NewEngine(remote Remote, slots Slots, opts ...EngineOption) *Engine {
	e := &Engine{
		remote:   remote,
		notifier: NopNotifier(),
		logger:   slog.Default(),
		clock:    clockwork.NewRealClock(),
		newID:    func() ID { return ID(uuid.NewString()) },
		notes:    []Note{},
		hidden:   make(map[ID]struct{}),

		localOnly: make(map[ID]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.local = NewLocalStore(slots, e.logger)
	return e
}

// Start loads the initial collection.
func (e *Engine) Start(ctx context.Context) Outcome {
	return e.Refresh(ctx)
}

// Refresh replaces the collection with the remote one, or with the local
// snapshot when the remote is unavailable. It never merges.
func (e *Engine) Refresh(ctx context.Context) Outcome {
	e.opMu.Lock()
	defer e.opMu.Unlock()
	return e.refresh(ctx)
}

func (e *Engine) refresh(ctx context.Context) Outcome {
	remote, err := e.remote.List(ctx)
	if err == nil {
		snapshot := e.replace(dedupe(remote), Synced)
		e.persist(ctx, snapshot)
		e.publish(Event{Type: EventRefresh, Outcome: Synced})
		return Synced
	}

	e.logger.Warn("remote list failed, using local cache", "error", err)
	local, lerr := e.local.LoadNotes(ctx)
	if lerr != nil {
		e.logger.Error("failed to load local cache, keeping current collection", "error", lerr)
		e.mu.Lock()
		e.lastOutcome = Offline
		e.mu.Unlock()
	} else {
		e.replace(local, Offline)
	}
	e.publish(Event{Type: EventRefresh, Outcome: Offline})
	return Offline
}

// Create makes the draft visible under a provisional local id, then submits
// it. Remote failure keeps the provisional note; Create never fails.
func (e *Engine) Create(ctx context.Context, d Draft) (Note, Outcome) {
	e.opMu.Lock()
	defer e.opMu.Unlock()
	return e.create(ctx, d)
}

func (e *Engine) create(ctx context.Context, d Draft) (Note, Outcome) {
	if d.Date.IsZero() {
		d.Date = NewDate(e.clock.Now())
	}
	provisional := d.Note(e.newID())

	e.mu.Lock()
	e.notes = append(e.notes, provisional)
	snapshot := slices.Clone(e.notes)
	e.mu.Unlock()
	e.persist(ctx, snapshot)

	created, err := e.remote.Create(ctx, d)
	if err != nil {
		e.logger.Warn("remote create failed, kept offline", "id", provisional.ID, "error", err)
		e.mu.Lock()
		e.localOnly[provisional.ID] = struct{}{}
		e.mu.Unlock()
		e.notifier.Notify(MsgSaveOffline)
		e.persist(ctx, e.Notes())
		e.publish(Event{Type: EventCreate, ID: provisional.ID, Outcome: Offline})
		return provisional, Offline
	}

	// Adopt the server id so a failing follow-up refresh still leaves one copy.
	e.mu.Lock()
	if i := e.indexLocked(provisional.ID); i >= 0 {
		e.notes[i] = created
	}
	snapshot = slices.Clone(e.notes)
	e.mu.Unlock()
	e.persist(ctx, snapshot)

	e.logger.Info("note created", "id", created.ID)
	e.notifier.Notify(MsgSaved)
	e.publish(Event{Type: EventCreate, ID: created.ID, Outcome: Synced})
	e.refresh(ctx)
	return created, Synced
}

// Update merges the patch into the matching note immediately, then sends it.
// A patch for an unknown id is dropped locally but still sent.
func (e *Engine) Update(ctx context.Context, id ID, p Patch) Outcome {
	e.opMu.Lock()
	defer e.opMu.Unlock()

	e.mu.Lock()
	if i := e.indexLocked(id); i >= 0 {
		e.notes[i] = p.Apply(e.notes[i])
	}
	snapshot := slices.Clone(e.notes)
	e.mu.Unlock()
	e.persist(ctx, snapshot)

	if err := e.remote.Update(ctx, id, p); err != nil {
		e.logger.Warn("remote update failed, kept offline", "id", id, "error", err)
		e.notifier.Notify(MsgUpdateOffline)
		e.persist(ctx, e.Notes())
		e.publish(Event{Type: EventModify, ID: id, Outcome: Offline})
		return Offline
	}

	e.logger.Info("note updated", "id", id)
	e.notifier.Notify(MsgUpdated)
	e.publish(Event{Type: EventModify, ID: id, Outcome: Synced})
	e.refresh(ctx)
	return Synced
}

// detach removes the note from the collection and persists the result.
func (e *Engine) detach(ctx context.Context, id ID) (Note, int, bool) {
	e.opMu.Lock()
	defer e.opMu.Unlock()

	e.mu.Lock()
	i := e.indexLocked(id)
	if i < 0 {
		e.mu.Unlock()
		return Note{}, -1, false
	}
	n := e.notes[i]
	e.notes = slices.Delete(e.notes, i, i+1)
	e.hidden[id] = struct{}{}
	snapshot := slices.Clone(e.notes)
	e.mu.Unlock()

	e.persist(ctx, snapshot)
	e.publish(Event{Type: EventRemove, ID: id, Outcome: Offline})
	return n, i, true
}

// reattach puts a detached note back at its former position.
func (e *Engine) reattach(ctx context.Context, n Note, at int) {
	e.opMu.Lock()
	defer e.opMu.Unlock()
	e.reattachOp(ctx, n, at)
}

// restore reinstates a detached note and re-converges with the remote. A
// note the remote does not hold (it was only ever saved offline) is then
// submitted again through the create path so it survives the refresh.
func (e *Engine) restore(ctx context.Context, n Note, at int) Outcome {
	e.opMu.Lock()
	defer e.opMu.Unlock()

	e.reattachOp(ctx, n, at)
	if e.refresh(ctx) != Synced {
		return Offline
	}
	if _, ok := e.Find(n.ID); ok {
		return Synced
	}
	e.logger.Info("restored note unknown to remote, creating it again", "id", n.ID)
	_, outcome := e.create(ctx, n.Draft())
	return outcome
}

// reattachOp does the work of reattach. Callers hold opMu.
func (e *Engine) reattachOp(ctx context.Context, n Note, at int) {
	e.mu.Lock()
	delete(e.hidden, n.ID)
	if e.indexLocked(n.ID) >= 0 {
		e.mu.Unlock()
		return
	}
	at = min(max(at, 0), len(e.notes))
	e.notes = slices.Insert(e.notes, at, n)
	snapshot := slices.Clone(e.notes)
	e.mu.Unlock()

	e.persist(ctx, snapshot)
	e.publish(Event{Type: EventRestore, ID: n.ID, Outcome: Offline})
}

// finalizeDelete issues the remote delete. The note stays removed locally
// whatever the outcome.
func (e *Engine) finalizeDelete(ctx context.Context, id ID) Outcome {
	e.opMu.Lock()
	defer e.opMu.Unlock()

	e.mu.Lock()
	_, neverSent := e.localOnly[id]
	delete(e.localOnly, id)
	e.mu.Unlock()

	outcome := Synced
	if neverSent {
		e.logger.Info("note deleted, remote never held it", "id", id)
		e.notifier.Notify(MsgDeleted)
	} else if err := e.remote.Delete(ctx, id); err != nil {
		e.logger.Warn("remote delete failed, deleted offline", "id", id, "error", err)
		e.notifier.Notify(MsgDeleteOffline)
		outcome = Offline
	} else {
		e.logger.Info("note deleted", "id", id)
		e.notifier.Notify(MsgDeleted)
	}

	e.mu.Lock()
	delete(e.hidden, id)
	if i := e.indexLocked(id); i >= 0 {
		e.notes = slices.Delete(e.notes, i, i+1)
	}
	snapshot := slices.Clone(e.notes)
	e.mu.Unlock()
	e.persist(ctx, snapshot)

	e.refresh(ctx)
	return outcome
}

// Notes returns a copy of the canonical collection.
func (e *Engine) Notes() []Note {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.notes)
}

// Find returns the note with the given id.
func (e *Engine) Find(id ID) (Note, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if i := e.indexLocked(id); i >= 0 {
		return e.notes[i], true
	}
	return Note{}, false
}

// Search returns the notes matching f, in collection order.
func (e *Engine) Search(f Filter) []Note {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Note, 0, len(e.notes))
	for _, n := range e.notes {
		if f.Match(n) {
			out = append(out, n)
		}
	}
	return out
}

// DarkMode returns the stored display preference.
func (e *Engine) DarkMode(ctx context.Context) (bool, error) {
	return e.local.DarkMode(ctx)
}

// SetDarkMode stores the display preference.
func (e *Engine) SetDarkMode(ctx context.Context, enabled bool) error {
	return e.local.SetDarkMode(ctx, enabled)
}

// Subscribe returns a channel receiving collection events. Events are
// dropped when the buffer is full. The returned func unsubscribes and
// closes the channel.
func (e *Engine) Subscribe(buffer int) (<-chan Event, func()) {
	ch := make(chan Event, buffer)
	e.mu.Lock()
	e.subscribers = append(e.subscribers, ch)
	e.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			if i := slices.Index(e.subscribers, ch); i >= 0 {
				e.subscribers = slices.Delete(e.subscribers, i, i+1)
			}
			close(ch)
		})
	}
}

func (e *Engine) publish(ev Event) {
	ev.Timestamp = e.clock.Now().Unix()
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, ch := range e.subscribers {
		select {
		case ch <- ev:
		default:
			e.logger.Debug("dropping event for slow subscriber", "event", ev.String())
		}
	}
}

func (e *Engine) replace(notes []Note, outcome Outcome) []Note {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.notes = make([]Note, 0, len(notes))
	for _, n := range notes {
		if _, ok := e.hidden[n.ID]; !ok {
			e.notes = append(e.notes, n)
		}
	}
	e.lastOutcome = outcome
	if outcome == Synced {
		e.lastRefresh = e.clock.Now()
		// The remote is authoritative now; local-only notes are gone except
		// one detached for a pending delete.
		for id := range e.localOnly {
			if _, pending := e.hidden[id]; !pending {
				delete(e.localOnly, id)
			}
		}
	}
	return slices.Clone(e.notes)
}

// persist writes the snapshot. Failures are logged and otherwise ignored.
func (e *Engine) persist(ctx context.Context, notes []Note) {
	if err := e.local.SaveNotes(ctx, notes); err != nil {
		e.logger.Warn("failed to persist local cache", "error", err)
	}
}

func (e *Engine) indexLocked(id ID) int {
	return slices.IndexFunc(e.notes, func(n Note) bool { return n.ID == id })
}
