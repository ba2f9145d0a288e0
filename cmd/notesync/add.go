package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/notesync/pkg/core"
)

var (
	addBody      string
	addDate      string
	addImportant bool
)

var addCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Create a note",
	Long:  `Add creates a note. It is shown and cached immediately; if the remote is unreachable it stays offline.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		draft := core.Draft{Title: args[0], Body: addBody, Important: addImportant}
		if addDate != "" {
			d, err := core.ParseDate(addDate)
			if err != nil {
				fatal("Invalid date", err)
			}
			draft.Date = d
		}

		ctx := context.Background()
		client, _ := openClient(ctx)
		defer client.Close(ctx)

		client.Engine.Start(ctx)
		note, outcome := client.Engine.Create(ctx, draft)
		fmt.Printf("%s %s (%s)\n", note.ID, note.Title, outcome)
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringVarP(&addBody, "body", "b", "", "Note body")
	addCmd.Flags().StringVar(&addDate, "date", "", "Note date (YYYY-MM-DD, default today)")
	addCmd.Flags().BoolVar(&addImportant, "important", false, "Mark the note important")
}
