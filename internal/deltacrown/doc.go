// Package deltacrown provides an HTTP client for the DeltaCrown site API.
//
// # Overview
//
// The client reads the endpoints the live sync layer depends on. It never
// writes: nothing in crownwatch mutates server state.
//
//   - GET /notifications/stream/                  server-sent events
//   - GET /notifications/unread_count/            {count}
//   - GET /me/follow-requests/?status=PENDING     {count}
//   - GET /tournaments/api/{slug}/state/          tournament state
//
// # Request Handling
//
// All requests:
//   - Use context for cancellation and timeout control
//   - Send the Django session cookie when one is configured
//   - Include User-Agent: crownwatch/0.1 and a fresh X-Request-ID
//   - Treat any non-2xx status as an error
//
// JSON requests time out after 10 seconds. The event stream has no client
// timeout; it ends when its context is cancelled or the server closes it.
//
// # Sources
//
// NotificationPull, NotificationPush and TournamentPull adapt the client to
// the transport package. NotificationPull fetches both counters concurrently
// and encodes them in the exact shape the stream pushes, so the reconciler
// sees one snapshot format regardless of channel. NotificationPush remembers
// the last event id and sends it as Last-Event-ID when the transport
// reconnects.
//
// # Event Stream
//
// EventStream implements the text/event-stream framing: data lines are
// joined with newlines, a blank line dispatches, comment lines are ignored,
// and an event cut off by connection close is dropped. The push source only
// surfaces unnamed (or "message") events.
package deltacrown
