// Package relay fans chat-triggered overlay events out to connected browser
// overlays over WebSocket.
//
// The Hub is a single-goroutine actor: all state lives inside its run loop and
// callers interact through commands on a channel, so no locks are needed. Each
// client gets its own writer goroutine with a small send buffer; a client that
// cannot keep up is disconnected rather than allowed to stall the hub.
package relay
