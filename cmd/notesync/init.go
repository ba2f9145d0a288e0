package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/notesync/internal/config"
)

var initForce bool

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default notesync.yaml",
	Long:  `Init writes the default configuration, marking the directory as a notesync project root.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := config.DefaultPath
		if len(args) == 1 {
			path = args[0]
		}
		if err := config.WriteDefault(path, initForce); err != nil {
			fatal("Failed to write config", err)
		}
		fmt.Println("Wrote", path)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing file")
}
