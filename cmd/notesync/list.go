package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/notesync/pkg/core"
)

var (
	listJSON      bool
	listSearch    string
	listImportant bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Refresh and list the notes",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		client, _ := openClient(ctx)
		defer client.Close(ctx)

		outcome := client.Engine.Start(ctx)
		notes := client.Engine.Search(core.Filter{Query: listSearch, ImportantOnly: listImportant})

		if listJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(notes); err != nil {
				fatal("Error encoding JSON", err)
			}
			return
		}

		if outcome == core.Offline {
			fmt.Println("(offline: showing cached notes)")
		}
		for _, n := range notes {
			mark := " "
			if n.Important {
				mark = "!"
			}
			fmt.Printf("%s %-8s %s  %s\n", mark, n.ID, n.Date, n.Title)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "Only notes whose title or body contains this text")
	listCmd.Flags().BoolVar(&listImportant, "important", false, "Only important notes")
}
