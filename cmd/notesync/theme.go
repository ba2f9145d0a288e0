package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var themeCmd = &cobra.Command{
	Use:       "theme [dark|light]",
	Short:     "Show or set the display theme",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"dark", "light"},
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		client, _ := openClient(ctx)
		defer client.Close(ctx)

		if len(args) == 1 {
			if err := client.Engine.SetDarkMode(ctx, args[0] == "dark"); err != nil {
				fatal("Error saving theme", err)
			}
		}

		dark, err := client.Engine.DarkMode(ctx)
		if err != nil {
			fatal("Error reading theme", err)
		}
		if dark {
			fmt.Println("dark")
		} else {
			fmt.Println("light")
		}
	},
}

func init() {
	rootCmd.AddCommand(themeCmd)
}
