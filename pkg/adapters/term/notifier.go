// Package term renders notifications and prompts on a terminal.
package term

import (
	"fmt"
	"io"
	"sync"

	"github.com/aretw0/notesync/pkg/core"
)

// Notifier writes status lines to out and tracks the open prompts so an
// interactive caller knows what the user is answering.
type Notifier struct {
	mu        sync.Mutex
	out       io.Writer
	active    map[core.PromptKind]core.Prompt
	withdrawn chan core.PromptKind
}

// NewNotifier creates a notifier writing to out.
func NewNotifier(out io.Writer) *Notifier {
	return &Notifier{
		out:       out,
		active:    make(map[core.PromptKind]core.Prompt),
		withdrawn: make(chan core.PromptKind, 8),
	}
}

func (n *Notifier) Notify(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.out, "» %s\n", msg)
}

func (n *Notifier) RequestConfirmation(p core.Prompt) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.active[p.Kind] = p
	fmt.Fprintf(n.out, "? %s %q [y/N] (closes in %s)\n", p.Message, p.Title, p.Timeout)
}

func (n *Notifier) OfferUndo(p core.Prompt) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.active[p.Kind] = p
	fmt.Fprintf(n.out, "? %s Type u to undo, Enter to dismiss (%s)\n", p.Message, p.Timeout)
}

func (n *Notifier) Withdraw(kind core.PromptKind) {
	n.mu.Lock()
	_, open := n.active[kind]
	delete(n.active, kind)
	n.mu.Unlock()
	if !open {
		return
	}
	select {
	case n.withdrawn <- kind:
	default:
	}
}

// Active returns the open prompt of the given kind.
func (n *Notifier) Active(kind core.PromptKind) (core.Prompt, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	p, ok := n.active[kind]
	return p, ok
}

// Withdrawn receives the kind of every prompt that stopped being actionable.
func (n *Notifier) Withdrawn() <-chan core.PromptKind {
	return n.withdrawn
}

var _ core.Notifier = (*Notifier)(nil)
