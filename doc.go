// Package notesync is the composition root of a local-first note client.
//
// It connects the reconciliation engine (pkg/core) with a remote note
// collection spoken to over HTTP and a local cache backend, following the
// hexagonal layout: the core knows only the Remote, Slots and Notifier ports.
//
// Behavior:
//
//   - Refresh replaces the collection with the remote one, or with the last
//     cached snapshot when the remote is unreachable. It never merges.
//   - Create and Update apply locally first and never fail: a remote error
//     degrades to an offline outcome and the change stays cached.
//   - Deletes are deferred: a confirmation prompt, then an undo window, and
//     only then the remote delete.
//   - The cache is pluggable: files (default, watchable), Redis, SQLite or memory.
//
// Usage:
//
//	client, err := notesync.New(ctx,
//		notesync.WithRemoteURL("http://localhost:3000"),
//		notesync.WithCacheDir(".notesync"),
//		notesync.WithLogger(logger),
//	)
//	defer client.Close(ctx)
//
//	client.Engine.Start(ctx)
//	note, outcome := client.Engine.Create(ctx, notesync.Draft{Title: "groceries"})
package notesync
