// Package redis provides the shared Redis client used for webhook
// duplicate suppression. All commands flow through MetricsHook.
package redis
