// Package livesync wires a transport, a reconciler and a dispatcher into one
// sync client.
//
// Each payload the transport delivers is parsed, compared with the last
// applied snapshot and, when it differs, handed to the dispatcher. Cycles
// are serialized by the client so the dispatcher never runs concurrently
// with itself. Malformed payloads are logged and skipped; the previous
// snapshot stays in place.
//
// Payloads carry a per-transport sequence number. By default a payload whose
// sequence is not newer than the last one applied is dropped, so a slow
// poll response cannot overwrite a fresher push message. Options.AllowStale
// switches back to applying whatever arrives last.
//
// Clients are plain values. The application builds one per sync and passes
// it to whatever needs to query or stop it.
package livesync
