// Package transport owns the delivery channel of one state-sync instance.
//
// A Transport knows nothing about payload contents. It delivers raw bytes to
// a Sink, one payload at a time, from its own goroutine.
//
// # Channel policy
//
// When a PushSource is configured the transport tries it first:
//
//	Start ──▶ push-pending ──open──▶ push-active
//	             │  ▲                    │
//	  grace/err  │  │ backoff            │ error/close
//	             ▼  │                    ▼
//	        RetryCount++ ◀───────────────┘
//	             │
//	             └── RetryCount ≥ MaxRetries ──▶ pull-active (for good)
//
// A push attempt that does not report open within the grace period counts as
// a failure. RetryCount resets on every message received. Once the budget is
// exhausted the transport polls for the rest of its life.
//
// Pull mode fetches immediately and then on a fixed interval. A failed fetch
// is logged and the next tick runs as scheduled.
//
// # Lifecycle
//
//   - Start: begins delivery; a second Start is a logged no-op.
//   - Suspend/Resume: visibility hooks. The mode survives a suspension.
//   - Stop: terminal. No transition leaves the disconnected state.
//
// Every payload carries a monotonic sequence number so consumers can discard
// responses that complete out of order.
package transport
