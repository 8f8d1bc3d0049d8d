// Package server implements the HTTP server using Echo framework.
//
// Routes: overlay WebSocket (/ws), EventSub webhook callback
// (/twitch/webhooks/callback), health probes, Prometheus metrics, and
// version info.
package server
