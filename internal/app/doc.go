// Package app provides the orchestration layer for crownwatch.
//
// # Overview
//
// This package wires configuration, logging, metrics, the live syncs and the
// UI together. It is the composition root: every shared dependency is built
// here and handed down.
//
// # Startup
//
//  1. Load ~/.config/crownwatch/config.toml and apply command-line overrides
//  2. Open the JSON log file and read preferences
//  3. Build the DeltaCrown client, event bus, notification center and bell
//  4. Build one livesync.Client per runnable sync and mount its targets
//  5. Serve /metrics (when configured) and start the syncs
//  6. Run the TUI and block until the user quits or the context is cancelled
//
// # Syncs
//
// The notification sync needs a session cookie. It connects over the event
// stream and falls back to polling the two counter endpoints. The tournament
// sync needs a slug and only polls. A configuration with neither returns
// ErrNothingToWatch.
//
//	Run()
//	  ├─> buildSyncs()   livesync.Client per sync, targets mounted on state.Store
//	  ├─> Metrics.Serve  errgroup member, stops with the context
//	  ├─> startSyncs()   transport goroutines begin delivering payloads
//	  └─> ui.Run()       blocks; leaving it cancels the group
//
// # Shutdown
//
// Leaving the UI cancels the shared context. Syncs are stopped concurrently
// and Run waits until each has released its connection.
package app
