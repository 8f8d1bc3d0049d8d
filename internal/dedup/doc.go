// Package dedup suppresses redelivered webhook notifications by message ID.
//
// Twitch retries EventSub deliveries and may replay a message for up to ten
// minutes, so admitted IDs only need to be remembered a little longer than
// that. Two stores are provided: an in-memory set with TTL eviction for
// single-instance deployments, and a Redis-backed set for multi-instance ones.
package dedup
