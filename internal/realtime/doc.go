// Package realtime implements the websocket fanout subsystem that pushes
// task-mutation events to connected clients, grouped by company.
//
// The package is built from a small set of cooperating pieces:
//   - TokenValidator authenticates a bearer token out-of-band from the
//     normal HTTP session and resolves it to a company-scoped Identity.
//   - Registry tracks live connections per company.
//   - Conn owns one websocket for its lifetime: a read pump answering
//     keepalive pings and a write pump draining a bounded outbound buffer.
//   - Broadcaster delivers an Event to every connection of one company
//     without blocking on any individual socket.
//   - Publisher is the single entry point from the task write path into
//     the fanout layer; its failures are logged, never propagated.
//
// Delivery is best-effort: a connection that is slow or disconnecting
// simply misses the event. Nothing in this package is persisted.
package realtime
