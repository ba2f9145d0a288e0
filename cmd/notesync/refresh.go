package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Replace the cached collection with the remote one",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		client, _ := openClient(ctx)
		defer client.Close(ctx)

		outcome := client.Engine.Refresh(ctx)
		fmt.Printf("%d notes (%s)\n", len(client.Engine.Notes()), outcome)
	},
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}
