package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aretw0/notesync"
	"github.com/aretw0/notesync/internal/config"
	"github.com/aretw0/notesync/internal/platform"
	"github.com/aretw0/notesync/pkg/adapters/term"
)

var (
	verbose    bool
	configPath string
	logFile    string

	cfg       *config.Config
	logCloser io.Closer = io.NopCloser(nil)
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "notesync",
	Short: "A local-first note client that keeps working offline",
	Long: `notesync keeps a note collection in sync with a remote HTTP service.
Every change is applied locally first and cached, so the collection stays
usable when the remote is unreachable. Deletes are confirmed and can be undone.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		path, err := resolveConfigPath(configPath)
		if err != nil {
			fatal("Failed to locate config", err)
		}
		loaded, err := config.Load(path)
		if err != nil {
			fatal("Failed to load config", err)
		}
		cfg = loaded

		logCfg := cfg.Log
		if verbose {
			logCfg.Level = "debug"
		}
		if logFile != "" {
			logCfg.File = logFile
		}
		var logger *slog.Logger
		logger, logCloser = platform.NewLogger(logCfg, os.Stderr)
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	err := rootCmd.Execute()
	_ = logCloser.Close()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: notesync.yaml in the project root)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write logs to a rotated file")
}

// resolveConfigPath returns explicit when set. Otherwise it looks for a
// project root above the working directory and uses its notesync.yaml, if any.
func resolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if os.Getenv("NOTESYNC_CONFIG") != "" {
		return "", nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	root, err := notesync.FindRoot(wd)
	if err != nil {
		return "", nil
	}
	path := filepath.Join(root, config.DefaultPath)
	if _, err := os.Stat(path); err != nil {
		return "", nil
	}
	return path, nil
}

// openClient wires a client from the loaded config, printing notifications
// and prompts to stdout.
func openClient(ctx context.Context) (*notesync.Client, *term.Notifier) {
	notifier := term.NewNotifier(os.Stdout)
	client, err := notesync.NewFromConfig(ctx, cfg,
		notesync.WithLogger(slog.Default()),
		notesync.WithNotifier(notifier),
	)
	if err != nil {
		fatal("Failed to initialize notesync", err)
	}
	return client, notifier
}
