package term_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/notesync/pkg/adapters/term"
	"github.com/aretw0/notesync/pkg/core"
)

func TestNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := term.NewNotifier(&buf)

	n.Notify(core.MsgSaved)
	n.RequestConfirmation(core.Prompt{Kind: core.PromptConfirm, NoteID: "5", Title: "Y", Message: core.MsgConfirmDelete, Timeout: 5 * time.Second})

	p, ok := n.Active(core.PromptConfirm)
	require.True(t, ok)
	assert.Equal(t, core.ID("5"), p.NoteID)

	n.Withdraw(core.PromptConfirm)
	n.Withdraw(core.PromptConfirm) // already closed, not reported twice
	_, ok = n.Active(core.PromptConfirm)
	assert.False(t, ok)

	assert.Equal(t, core.PromptConfirm, <-n.Withdrawn())
	select {
	case k := <-n.Withdrawn():
		t.Fatalf("unexpected second withdrawal %s", k)
	default:
	}

	assert.Contains(t, buf.String(), "» Note saved\n")
	assert.Contains(t, buf.String(), `Delete this note? "Y" [y/N] (closes in 5s)`)
}
