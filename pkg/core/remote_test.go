package core_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/aretw0/notesync/pkg/adapters/memory"
	"github.com/aretw0/notesync/pkg/core"
)

// fakeRemote is an in-memory remote collection that can be taken offline.
type fakeRemote struct {
	mu      sync.Mutex
	notes   []core.Note
	nextID  int
	down    bool
	calls   []string
	patches []core.Patch

	// onCall runs before every call, outside the lock.
	onCall func(op string)
}

func newFakeRemote(notes ...core.Note) *fakeRemote {
	return &fakeRemote{notes: notes, nextID: 100}
}

func (f *fakeRemote) setDown(down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.down = down
}

func (f *fakeRemote) enter(op string) error {
	if f.onCall != nil {
		f.onCall(op)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, op)
	if f.down {
		return fmt.Errorf("%s: %w", op, core.ErrRemoteUnavailable)
	}
	return nil
}

func (f *fakeRemote) List(ctx context.Context) ([]core.Note, error) {
	if err := f.enter("list"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.notes), nil
}

func (f *fakeRemote) Create(ctx context.Context, d core.Draft) (core.Note, error) {
	if err := f.enter("create"); err != nil {
		return core.Note{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	n := d.Note(core.ID(strconv.Itoa(f.nextID)))
	f.notes = append(f.notes, n)
	return n, nil
}

func (f *fakeRemote) Update(ctx context.Context, id core.ID, p core.Patch) error {
	if err := f.enter("update"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patches = append(f.patches, p)
	for i, n := range f.notes {
		if n.ID == id {
			f.notes[i] = p.Apply(n)
		}
	}
	return nil
}

func (f *fakeRemote) Delete(ctx context.Context, id core.ID) error {
	if err := f.enter("delete"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notes = slices.DeleteFunc(f.notes, func(n core.Note) bool { return n.ID == id })
	return nil
}

func (f *fakeRemote) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

func (f *fakeRemote) count(op string) int {
	n := 0
	for _, c := range f.callLog() {
		if c == op {
			n++
		}
	}
	return n
}

// recordingNotifier keeps everything the core surfaced.
type recordingNotifier struct {
	mu        sync.Mutex
	messages  []string
	prompts   []core.Prompt
	withdrawn []core.PromptKind
}

func (r *recordingNotifier) Notify(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
}

func (r *recordingNotifier) RequestConfirmation(p core.Prompt) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prompts = append(r.prompts, p)
}

func (r *recordingNotifier) OfferUndo(p core.Prompt) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prompts = append(r.prompts, p)
}

func (r *recordingNotifier) Withdraw(kind core.PromptKind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.withdrawn = append(r.withdrawn, kind)
}

func (r *recordingNotifier) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.messages)
}

func (r *recordingNotifier) Prompts() []core.Prompt {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.prompts)
}

type harness struct {
	remote   *fakeRemote
	slots    *memory.Slots
	notifier *recordingNotifier
	clock    *clockwork.FakeClock
	engine   *core.Engine
}

func newHarness(t *testing.T, remote *fakeRemote) *harness {
	t.Helper()
	h := &harness{
		remote:   remote,
		slots:    memory.New(),
		notifier: &recordingNotifier{},
		clock:    clockwork.NewFakeClock(),
	}
	h.engine = core.NewEngine(remote, h.slots,
		core.WithNotifier(h.notifier),
		core.WithClock(h.clock),
		core.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	return h
}

// cached decodes the snapshot currently in the local cache.
func (h *harness) cached(t *testing.T) []core.Note {
	t.Helper()
	notes, err := core.NewLocalStore(h.slots, nil).LoadNotes(context.Background())
	if err != nil {
		t.Fatalf("LoadNotes failed: %v", err)
	}
	return notes
}

var fixedDay = time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC)

func note(id, title string) core.Note {
	return core.Note{ID: core.ID(id), Title: title, Date: core.NewDate(fixedDay)}
}

func titles(notes []core.Note) []string {
	out := make([]string, 0, len(notes))
	for _, n := range notes {
		out = append(out, n.Title)
	}
	return out
}
