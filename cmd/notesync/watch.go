package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/aretw0/lifecycle"
	"github.com/spf13/cobra"

	"github.com/aretw0/notesync/internal/platform"
	lsource "github.com/aretw0/notesync/pkg/adapters/lifecycle"
	"github.com/aretw0/notesync/pkg/core"
)

var watchTypes []string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow collection changes",
	Long: `Watch prints collection events as they happen. With the file cache it
also refreshes whenever another notesync process rewrites the cache.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		types := make([]core.EventType, 0, len(watchTypes))
		for _, t := range watchTypes {
			types = append(types, core.EventType(strings.ToUpper(strings.TrimSpace(t))))
		}

		client, _ := openClient(ctx)
		defer client.Close(context.Background())

		events, unsubscribe := client.Engine.Subscribe(16)
		defer unsubscribe()
		sources := []lifecycle.Source{lsource.NewSource(events, types...)}

		slotEvents, err := client.WatchCache(ctx)
		switch {
		case errors.Is(err, platform.ErrWatchUnsupported):
			fmt.Println("(cache backend is not watchable; showing local events only)")
		case err != nil:
			fatal("Failed to watch cache", err)
		default:
			sources = append(sources, lsource.NewSource(slotEvents, types...))
		}

		for _, src := range sources {
			if err := src.Start(ctx); err != nil {
				fatal("Failed to start event source", err)
			}
		}

		outcome := client.Engine.Start(ctx)
		fmt.Printf("%d notes (%s). Watching, Ctrl+C to stop.\n", len(client.Engine.Notes()), outcome)

		collection := sources[0].Events()
		var slots <-chan lifecycle.Event
		if len(sources) > 1 {
			slots = sources[1].Events()
		}
		for collection != nil || slots != nil {
			select {
			case ev, ok := <-collection:
				if !ok {
					collection = nil
					continue
				}
				fmt.Println(ev)
			case ev, ok := <-slots:
				if !ok {
					slots = nil
					continue
				}
				fmt.Println(ev)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringSliceVarP(&watchTypes, "type", "t", nil, "Only these event types (refresh, create, modify, remove, restore, slot)")
}
