// Package bot owns the persistent Twitch chat connection and the routing of
// parsed messages and webhook-derived commands to their effects.
//
// The Client holds exactly one live IRC-over-WebSocket connection at a time,
// performs the login handshake, splits inbound frames into lines for the
// parser, and writes outbound lines from a bounded FIFO queue. PONG replies
// bypass the queue so keepalive latency is independent of queue depth. The
// Router decides what each parsed message or internal command does: canned
// chat replies, overlay events, stream-online announcements, moderation
// commands.
package bot
