// Package webhook ingests Twitch EventSub callbacks.
//
// Every request runs the same ordered pipeline: signature verification,
// timestamp freshness, duplicate suppression, then dispatch by message type.
// Bad signatures and unparseable timestamps are client errors; stale and
// duplicate deliveries are acknowledged with success so Twitch stops
// retrying them.
package webhook
