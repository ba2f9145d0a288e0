package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/notesync/internal/devserver"
	"github.com/aretw0/notesync/pkg/core"
)

var (
	serveAddr string
	serveSeed string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a development note server",
	Long: `Serve runs an in-memory remote collection speaking the same HTTP API the
client uses (GET/POST /notes, PATCH/DELETE /notes/:id).`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		var seed []core.Note
		if serveSeed != "" {
			data, err := os.ReadFile(serveSeed)
			if err != nil {
				fatal("Failed to read seed", err)
			}
			if err := json.Unmarshal(data, &seed); err != nil {
				fatal("Failed to parse seed", err)
			}
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := devserver.New(devserver.NewStore(seed...), slog.Default())
		fmt.Printf("Serving %d notes on %s\n", len(seed), serveAddr)
		if err := srv.ListenAndServe(ctx, serveAddr); err != nil {
			fatal("Server failed", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":3000", "Listen address")
	serveCmd.Flags().StringVar(&serveSeed, "seed", "", "JSON file with initial notes")
}
