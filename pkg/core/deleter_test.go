package core_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/notesync/pkg/core"
)

const eventually = 2 * time.Second

func newDeleter(t *testing.T, h *harness) *core.Deleter {
	t.Helper()
	return core.NewDeleter(h.engine,
		core.WithConfirmTimeout(5*time.Second),
		core.WithUndoWindow(6*time.Second),
	)
}

func hasTitle(notes []core.Note, title string) int {
	n := 0
	for _, note := range notes {
		if note.Title == title {
			n++
		}
	}
	return n
}

func TestDeleter_Request(t *testing.T) {
	ctx := context.Background()

	t.Run("Removes Optimistically And Prompts", func(t *testing.T) {
		h := newHarness(t, newFakeRemote(note("5", "Y"), note("6", "Z")))
		h.engine.Start(ctx)
		d := newDeleter(t, h)

		require.NoError(t, d.Request(ctx, "5"))

		assert.Equal(t, core.PendingConfirmation, d.Status())
		assert.Equal(t, []string{"Z"}, titles(h.engine.Notes()))
		assert.Equal(t, []string{"Z"}, titles(h.cached(t)))
		assert.Equal(t, 0, h.remote.count("delete"), "nothing is sent before the window closes")

		prompts := h.notifier.Prompts()
		require.Len(t, prompts, 1)
		assert.Equal(t, core.PromptConfirm, prompts[0].Kind)
		assert.Equal(t, core.MsgConfirmDelete, prompts[0].Message)
		assert.Equal(t, 5*time.Second, prompts[0].Timeout)
	})

	t.Run("Unknown ID Is A No-op", func(t *testing.T) {
		h := newHarness(t, newFakeRemote(note("5", "Y")))
		h.engine.Start(ctx)
		d := newDeleter(t, h)

		require.NoError(t, d.Request(ctx, "404"))
		assert.Equal(t, core.Idle, d.Status())
		assert.Len(t, h.engine.Notes(), 1)
	})

	t.Run("Empty ID", func(t *testing.T) {
		h := newHarness(t, newFakeRemote())
		d := newDeleter(t, h)
		assert.ErrorIs(t, d.Request(ctx, ""), core.ErrInvalidID)
	})
}

func TestDeleter_UndoRestoresContent(t *testing.T) {
	ctx := context.Background()

	t.Run("Online", func(t *testing.T) {
		// Scenario: delete(5) confirmed, undo before timeout.
		h := newHarness(t, newFakeRemote(note("5", "Y")))
		h.engine.Start(ctx)
		d := newDeleter(t, h)

		require.NoError(t, d.Request(ctx, "5"))
		require.NoError(t, d.Confirm(ctx))
		assert.Equal(t, core.PendingUndo, d.Status())

		pending, ok := d.Pending()
		require.True(t, ok)
		assert.Equal(t, core.ID("5"), pending.ID)
		_, present := h.engine.Find("5")
		assert.False(t, present, "pending occupant is absent from the collection")

		require.NoError(t, d.Undo(ctx))

		assert.Equal(t, core.Idle, d.Status())
		notes := h.engine.Notes()
		assert.Equal(t, 1, hasTitle(notes, "Y"))
		assert.Equal(t, note("5", "Y").Draft(), notes[0].Draft())
		assert.Zero(t, h.remote.count("delete"))
		assert.Zero(t, h.remote.count("create"))
	})

	t.Run("Offline", func(t *testing.T) {
		h := newHarness(t, newFakeRemote(note("4", "X"), note("5", "Y")))
		h.engine.Start(ctx)
		d := newDeleter(t, h)
		h.remote.setDown(true)

		require.NoError(t, d.Request(ctx, "5"))
		require.NoError(t, d.Confirm(ctx))
		require.NoError(t, d.Undo(ctx))

		notes := h.engine.Notes()
		assert.Equal(t, []string{"X", "Y"}, titles(notes))
		assert.Equal(t, notes, h.cached(t))
		assert.Zero(t, h.remote.count("create"), "undo never duplicates the note remotely")
	})

	t.Run("Offline Created Note", func(t *testing.T) {
		h := newHarness(t, newFakeRemote())
		h.remote.setDown(true)
		d := newDeleter(t, h)
		n, _ := h.engine.Create(ctx, core.Draft{Title: "draft"})

		require.NoError(t, d.Request(ctx, n.ID))
		require.NoError(t, d.Confirm(ctx))
		require.NoError(t, d.Undo(ctx))

		notes := h.engine.Notes()
		require.Len(t, notes, 1)
		assert.Equal(t, n.Draft(), notes[0].Draft())
	})

	t.Run("Offline Created Note After Reconnect", func(t *testing.T) {
		// Created while the remote was down, deleted and undone once it is back.
		h := newHarness(t, newFakeRemote())
		h.remote.setDown(true)
		d := newDeleter(t, h)
		n, outcome := h.engine.Create(ctx, core.Draft{Title: "draft"})
		require.Equal(t, core.Offline, outcome)
		h.remote.setDown(false)

		require.NoError(t, d.Request(ctx, n.ID))
		require.NoError(t, d.Confirm(ctx))
		require.NoError(t, d.Undo(ctx))

		notes := h.engine.Notes()
		assert.Equal(t, 1, hasTitle(notes, "draft"))
		assert.Equal(t, n.Draft(), notes[0].Draft())
		assert.Equal(t, 2, h.remote.count("create"), "one failed attempt, then the re-create on undo")
		assert.Zero(t, h.remote.count("delete"))
		assert.Equal(t, notes, h.cached(t))

		remote, err := h.remote.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, hasTitle(remote, "draft"))
		assert.Equal(t, core.Synced, h.engine.Refresh(ctx))
		assert.Equal(t, 1, hasTitle(h.engine.Notes(), "draft"), "a later refresh keeps it")
	})

	t.Run("Late Timer Does Nothing", func(t *testing.T) {
		h := newHarness(t, newFakeRemote(note("5", "Y")))
		h.engine.Start(ctx)
		d := newDeleter(t, h)

		require.NoError(t, d.Request(ctx, "5"))
		require.NoError(t, d.Confirm(ctx))
		require.NoError(t, d.Undo(ctx))

		h.clock.Advance(time.Minute)
		time.Sleep(20 * time.Millisecond)
		assert.Equal(t, 0, h.remote.count("delete"))
		assert.Equal(t, 1, hasTitle(h.engine.Notes(), "Y"))
	})
}

func TestDeleter_ExpiryFinalizes(t *testing.T) {
	ctx := context.Background()

	t.Run("Online", func(t *testing.T) {
		// Scenario: same as undo, but the window expires.
		h := newHarness(t, newFakeRemote(note("5", "Y")))
		h.engine.Start(ctx)
		d := newDeleter(t, h)

		require.NoError(t, d.Request(ctx, "5"))
		require.NoError(t, d.Confirm(ctx))

		h.clock.Advance(5 * time.Second)
		assert.Equal(t, core.PendingUndo, d.Status(), "undo window is still open")

		h.clock.Advance(time.Second)
		require.Eventually(t, func() bool { return d.Status() == core.Idle }, eventually, time.Millisecond)

		assert.Equal(t, 1, h.remote.count("delete"))
		assert.Equal(t, core.Synced, h.engine.Refresh(ctx))
		assert.Zero(t, hasTitle(h.engine.Notes(), "Y"))
		assert.Contains(t, h.notifier.Messages(), core.MsgDeleted)
	})

	t.Run("Offline Keeps Note Removed", func(t *testing.T) {
		h := newHarness(t, newFakeRemote(note("5", "Y")))
		h.engine.Start(ctx)
		d := newDeleter(t, h)
		h.remote.setDown(true)

		require.NoError(t, d.Request(ctx, "5"))
		require.NoError(t, d.Confirm(ctx))
		h.clock.Advance(6 * time.Second)
		require.Eventually(t, func() bool { return d.Status() == core.Idle }, eventually, time.Millisecond)

		assert.Empty(t, h.engine.Notes())
		assert.Empty(t, h.cached(t))
		assert.Contains(t, h.notifier.Messages(), core.MsgDeleteOffline)
	})

	t.Run("Dismiss Finalizes Immediately", func(t *testing.T) {
		h := newHarness(t, newFakeRemote(note("5", "Y")))
		h.engine.Start(ctx)
		d := newDeleter(t, h)

		require.NoError(t, d.Request(ctx, "5"))
		require.NoError(t, d.Confirm(ctx))
		require.NoError(t, d.Dismiss(ctx))

		assert.Equal(t, core.Idle, d.Status())
		assert.Equal(t, 1, h.remote.count("delete"))
		assert.Empty(t, h.engine.Notes())

		h.clock.Advance(time.Minute)
		time.Sleep(20 * time.Millisecond)
		assert.Equal(t, 1, h.remote.count("delete"), "the cancelled timer must not fire again")
	})
}

func TestDeleter_LocalOnlyNote(t *testing.T) {
	ctx := context.Background()

	t.Run("Finalize Skips Remote", func(t *testing.T) {
		h := newHarness(t, newFakeRemote())
		h.remote.setDown(true)
		d := newDeleter(t, h)
		n, _ := h.engine.Create(ctx, core.Draft{Title: "draft"})
		h.remote.setDown(false)

		require.NoError(t, d.Request(ctx, n.ID))
		require.NoError(t, d.Confirm(ctx))
		require.NoError(t, d.Dismiss(ctx))

		assert.Zero(t, h.remote.count("delete"), "the remote never issued this id")
		assert.Empty(t, h.engine.Notes())
		assert.Empty(t, h.cached(t))
		assert.Contains(t, h.notifier.Messages(), core.MsgDeleted)
		assert.NotContains(t, h.notifier.Messages(), core.MsgDeleteOffline)
	})

	t.Run("Synced Note Still Deleted Remotely", func(t *testing.T) {
		h := newHarness(t, newFakeRemote())
		d := newDeleter(t, h)
		n, outcome := h.engine.Create(ctx, core.Draft{Title: "kept"})
		require.Equal(t, core.Synced, outcome)

		require.NoError(t, d.Request(ctx, n.ID))
		require.NoError(t, d.Confirm(ctx))
		require.NoError(t, d.Dismiss(ctx))

		assert.Equal(t, 1, h.remote.count("delete"))
	})
}

// Cancelling or ignoring the confirmation restores the note with its
// original id. The removal is not left in place.
func TestDeleter_CancelRestoresNote(t *testing.T) {
	ctx := context.Background()

	t.Run("Explicit Cancel", func(t *testing.T) {
		h := newHarness(t, newFakeRemote(note("4", "X"), note("5", "Y"), note("6", "Z")))
		h.engine.Start(ctx)
		d := newDeleter(t, h)

		require.NoError(t, d.Request(ctx, "5"))
		require.NoError(t, d.Cancel(ctx))

		assert.Equal(t, core.Idle, d.Status())
		assert.Equal(t, []core.Note{note("4", "X"), note("5", "Y"), note("6", "Z")}, h.engine.Notes())
		assert.Equal(t, h.engine.Notes(), h.cached(t))
		assert.Zero(t, h.remote.count("delete"))
		assert.Zero(t, h.remote.count("create"))
	})

	t.Run("Confirmation Timeout", func(t *testing.T) {
		h := newHarness(t, newFakeRemote(note("5", "Y")))
		h.engine.Start(ctx)
		d := newDeleter(t, h)

		require.NoError(t, d.Request(ctx, "5"))
		h.clock.Advance(5 * time.Second)
		require.Eventually(t, func() bool { return d.Status() == core.Idle }, eventually, time.Millisecond)

		n, ok := h.engine.Find("5")
		assert.True(t, ok)
		assert.Equal(t, "Y", n.Title)
	})
}

// A second request supersedes the pending one instead of being rejected.
func TestDeleter_SecondRequestSupersedes(t *testing.T) {
	ctx := context.Background()

	t.Run("Pending Undo Is Finalized", func(t *testing.T) {
		h := newHarness(t, newFakeRemote(note("1", "A"), note("2", "B")))
		h.engine.Start(ctx)
		d := newDeleter(t, h)

		require.NoError(t, d.Request(ctx, "1"))
		require.NoError(t, d.Confirm(ctx))
		require.NoError(t, d.Request(ctx, "2"))

		assert.Equal(t, 1, h.remote.count("delete"))
		pending, ok := d.Pending()
		require.True(t, ok)
		assert.Equal(t, core.ID("2"), pending.ID)
		assert.Empty(t, h.engine.Notes())
	})

	t.Run("Pending Confirmation Is Cancelled", func(t *testing.T) {
		h := newHarness(t, newFakeRemote(note("1", "A"), note("2", "B")))
		h.engine.Start(ctx)
		d := newDeleter(t, h)

		require.NoError(t, d.Request(ctx, "1"))
		require.NoError(t, d.Request(ctx, "2"))

		assert.Zero(t, h.remote.count("delete"))
		assert.Equal(t, []string{"A"}, titles(h.engine.Notes()))
		pending, _ := d.Pending()
		assert.Equal(t, core.ID("2"), pending.ID)

		// The first confirmation timer is gone; only the second one fires.
		h.clock.Advance(5 * time.Second)
		require.Eventually(t, func() bool { return d.Status() == core.Idle }, eventually, time.Millisecond)
		assert.Equal(t, []string{"A", "B"}, titles(h.engine.Notes()))
	})
}

func TestDeleter_InvalidTransitions(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, newFakeRemote(note("5", "Y")))
	h.engine.Start(ctx)
	d := newDeleter(t, h)

	for name, fn := range map[string]func(context.Context) error{
		"Confirm": d.Confirm,
		"Cancel":  d.Cancel,
		"Undo":    d.Undo,
		"Dismiss": d.Dismiss,
	} {
		t.Run(name, func(t *testing.T) {
			err := fn(ctx)
			assert.True(t, errors.Is(err, core.ErrInvalidTransition), "got %v", err)
		})
	}

	require.NoError(t, d.Request(ctx, "5"))
	assert.ErrorIs(t, d.Undo(ctx), core.ErrInvalidTransition)
	assert.ErrorIs(t, d.Dismiss(ctx), core.ErrInvalidTransition)
	assert.Equal(t, core.PendingConfirmation, d.Status())
}

func TestDeleter_Close(t *testing.T) {
	ctx := context.Background()

	t.Run("Finalizes Undo Window", func(t *testing.T) {
		h := newHarness(t, newFakeRemote(note("5", "Y")))
		h.engine.Start(ctx)
		d := newDeleter(t, h)
		require.NoError(t, d.Request(ctx, "5"))
		require.NoError(t, d.Confirm(ctx))

		require.NoError(t, d.Close(ctx))
		assert.Equal(t, 1, h.remote.count("delete"))
		assert.Equal(t, core.Idle, d.Status())
	})

	t.Run("Cancels Confirmation", func(t *testing.T) {
		h := newHarness(t, newFakeRemote(note("5", "Y")))
		h.engine.Start(ctx)
		d := newDeleter(t, h)
		require.NoError(t, d.Request(ctx, "5"))

		require.NoError(t, d.Close(ctx))
		assert.Zero(t, h.remote.count("delete"))
		assert.Len(t, h.engine.Notes(), 1)
	})

	t.Run("Idle", func(t *testing.T) {
		h := newHarness(t, newFakeRemote())
		assert.NoError(t, newDeleter(t, h).Close(ctx))
	})
}

func TestDeleter_State(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, newFakeRemote(note("5", "Y")))
	h.engine.Start(ctx)
	d := newDeleter(t, h)
	require.NoError(t, d.Request(ctx, "5"))

	st, ok := d.State().(core.DeleterState)
	require.True(t, ok)
	assert.Equal(t, "pending_confirmation", st.State)
	assert.Equal(t, "5", st.PendingID)
	assert.Equal(t, "6s", st.UndoWindow)
}

func TestDeleter_PendingNoteStaysHidden(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, newFakeRemote(note("5", "Y"), note("6", "Z")))
	h.engine.Start(ctx)
	d := newDeleter(t, h)

	require.NoError(t, d.Request(ctx, "5"))
	require.NoError(t, d.Confirm(ctx))

	// Refreshes triggered by unrelated mutations must not bring it back.
	h.engine.Create(ctx, core.Draft{Title: "other"})
	assert.Equal(t, core.Synced, h.engine.Refresh(ctx))
	_, present := h.engine.Find("5")
	assert.False(t, present)

	require.NoError(t, d.Undo(ctx))
	_, present = h.engine.Find("5")
	assert.True(t, present)
}
