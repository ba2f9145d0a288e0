package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/notesync/pkg/core"
)

var (
	editTitle     string
	editBody      string
	editDate      string
	editImportant bool
)

var editCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Change fields of a note",
	Long:  `Edit sends only the fields given as flags. The change is applied locally even when the remote is unreachable.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var patch core.Patch
		flags := cmd.Flags()
		if flags.Changed("title") {
			patch.Title = &editTitle
		}
		if flags.Changed("body") {
			patch.Body = &editBody
		}
		if flags.Changed("date") {
			d, err := core.ParseDate(editDate)
			if err != nil {
				fatal("Invalid date", err)
			}
			patch.Date = &d
		}
		if flags.Changed("important") {
			patch.Important = &editImportant
		}
		if patch.IsEmpty() {
			fatal("Nothing to change", errors.New("pass at least one of --title, --body, --date, --important"))
		}

		ctx := context.Background()
		client, _ := openClient(ctx)
		defer client.Close(ctx)

		client.Engine.Start(ctx)
		id := core.ID(args[0])
		if _, ok := client.Engine.Find(id); !ok {
			fmt.Printf("Note %s is not in the collection; sending the change anyway\n", id)
		}
		outcome := client.Engine.Update(ctx, id, patch)
		fmt.Printf("%s updated (%s)\n", id, outcome)
	},
}

func init() {
	rootCmd.AddCommand(editCmd)
	editCmd.Flags().StringVar(&editTitle, "title", "", "New title")
	editCmd.Flags().StringVarP(&editBody, "body", "b", "", "New body")
	editCmd.Flags().StringVar(&editDate, "date", "", "New date (YYYY-MM-DD)")
	editCmd.Flags().BoolVar(&editImportant, "important", false, "Mark important (--important=false to clear)")
}
