package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/notesync/pkg/adapters/term"
	"github.com/aretw0/notesync/pkg/core"
)

var deleteYes bool

var deleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a note, with confirmation and undo",
	Long: `Delete hides the note and asks for confirmation. Once confirmed, the
delete can still be undone until the undo window closes; only then is it sent
to the remote. An unanswered confirmation restores the note.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		client, notifier := openClient(ctx)
		defer func() {
			if err := client.Close(ctx); err != nil {
				fatal("Error closing client", err)
			}
		}()

		client.Engine.Start(ctx)
		id := core.ID(args[0])
		if err := client.Deleter.Request(ctx, id); err != nil {
			fatal("Error requesting delete", err)
		}
		if _, ok := notifier.Active(core.PromptConfirm); !ok {
			fmt.Printf("No note with id %s\n", id)
			return
		}

		lineCtx, stopLines := context.WithCancel(ctx)
		defer stopLines()
		answers := readLines(lineCtx, os.Stdin)
		if !deleteYes {
			if !awaitConfirmation(ctx, client.Deleter, notifier, answers) {
				return
			}
		} else if err := client.Deleter.Confirm(ctx); err != nil {
			fatal("Error confirming delete", err)
		}
		awaitUndo(ctx, client.Deleter, notifier, answers)
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Skip the confirmation prompt")
}

// awaitConfirmation reports whether the delete moved on to the undo window.
func awaitConfirmation(ctx context.Context, d *core.Deleter, n *term.Notifier, answers <-chan string) bool {
	select {
	case line, ok := <-answers:
		if ok && isYes(line) {
			if err := d.Confirm(ctx); err != nil {
				fmt.Println("Confirmation closed before the answer arrived; note kept")
				return false
			}
			return true
		}
		if err := d.Cancel(ctx); err != nil {
			fmt.Println("Confirmation already closed; note kept")
		}
		return false
	case <-n.Withdrawn():
		fmt.Println("No answer; note kept")
		return false
	}
}

func awaitUndo(ctx context.Context, d *core.Deleter, n *term.Notifier, answers <-chan string) {
	for {
		select {
		case line, ok := <-answers:
			var err error
			if ok && strings.EqualFold(strings.TrimSpace(line), "u") {
				err = d.Undo(ctx)
			} else {
				err = d.Dismiss(ctx)
			}
			if err != nil {
				// The window expired while the answer was typed.
				fmt.Println("Undo window already closed")
			}
			return
		case kind := <-n.Withdrawn():
			// Confirm withdraws its own prompt; only the undo prompt ends the wait.
			if kind == core.PromptUndo {
				return
			}
		}
	}
}

func isYes(line string) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// readLines streams lines from r. The channel is closed at EOF or once ctx is
// done. A read already blocked on r is not interrupted; for stdin it ends with
// the process.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case out <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
