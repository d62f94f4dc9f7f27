// Package state holds the render targets the sync dispatchers write into and
// the per-sync connection summary, shared between sync goroutines and the UI.
//
// # Render targets
//
// Targets are addressed by the selector strings the DeltaCrown templates use
// (for example "[data-tournament-slots]" or "#notification-bell-badge"). A
// view mounts only the targets it renders. Update on a selector that is not
// mounted is a silent no-op that returns false, so one dispatcher can serve
// views that render any subset of the targets.
//
// # Concurrency Model
//
// The Store uses a readers-writer lock:
//
//   - Update/Record*: acquire the write lock
//   - Snapshot: acquires the read lock and returns deep copies
//
// Writers are the sync dispatchers (one cycle at a time per sync); the
// reader is the UI refresh tick. The lock is never held during network I/O
// or rendering.
//
// # Failure Semantics
//
// RecordFailure never touches element content. The last applied state stays
// on screen until the next successful cycle replaces it.
package state
