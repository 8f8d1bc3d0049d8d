// Package metrics defines the Prometheus instruments exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Chat Connection Metrics
var (
	// ChatLinesReceivedTotal tracks raw IRC lines read from the chat connection
	ChatLinesReceivedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_lines_received_total",
			Help: "Total raw IRC lines read from the chat connection",
		},
	)

	// ChatUnsupportedCommandsTotal tracks IRC lines parsed into an unsupported command
	ChatUnsupportedCommandsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_unsupported_commands_total",
			Help: "Total IRC lines whose command verb is not recognized",
		},
	)

	// ChatReconnectsTotal tracks chat connection reconnect attempts
	ChatReconnectsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_reconnects_total",
			Help: "Total chat connection reconnect attempts",
		},
	)

	// ChatMessagesSentTotal tracks messages written to chat by kind
	ChatMessagesSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_sent_total",
			Help: "Total messages written to the chat connection by kind",
		},
		[]string{"kind"},
	)

	// ChatSendQueueDepth tracks the current depth of the outbound message queue
	ChatSendQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_send_queue_depth",
			Help: "Current depth of the outbound chat message queue",
		},
	)

	// ChatSendQueueDroppedTotal tracks outbound messages dropped because the queue was full
	ChatSendQueueDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_send_queue_dropped_total",
			Help: "Total outbound chat messages dropped due to a full queue",
		},
	)
)

// Webhook Metrics
var (
	// WebhookRequestsTotal tracks webhook deliveries by outcome
	WebhookRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_requests_total",
			Help: "Total EventSub webhook deliveries by outcome (accepted/rejected/stale/duplicate/challenge)",
		},
		[]string{"outcome"},
	)

	// WebhookDuplicatesSuppressedTotal tracks redeliveries suppressed by message ID
	WebhookDuplicatesSuppressedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "webhook_duplicates_suppressed_total",
			Help: "Total webhook redeliveries suppressed by message ID",
		},
	)

	// WebhookHandleDuration tracks webhook handler latency in seconds
	WebhookHandleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "webhook_handle_duration_seconds",
			Help:    "Webhook handler duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)
)

// Relay Metrics
var (
	// RelayConnectedClients tracks the number of connected overlay clients
	RelayConnectedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_connected_clients",
			Help: "Number of connected overlay WebSocket clients",
		},
	)

	// RelayPublishedEventsTotal tracks events published to overlay clients
	RelayPublishedEventsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_published_events_total",
			Help: "Total events published to overlay clients",
		},
	)

	// RelaySlowClientsEvictedTotal tracks overlay clients disconnected for falling behind
	RelaySlowClientsEvictedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_slow_clients_evicted_total",
			Help: "Total overlay clients disconnected because their send buffer filled",
		},
	)

	// RelayPingFailuresTotal tracks failed pings to overlay clients
	RelayPingFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_ping_failures_total",
			Help: "Total failed WebSocket pings to overlay clients",
		},
	)
)

// Redis Metrics
var (
	// RedisOpsTotal tracks Redis operations by command and status
	RedisOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_ops_total",
			Help: "Total Redis operations by command and status",
		},
		[]string{"operation", "status"},
	)

	// RedisOpDuration tracks Redis operation duration by command
	RedisOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redis_op_duration_seconds",
			Help:    "Redis operation duration in seconds by command",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		},
		[]string{"operation"},
	)

	// RedisConnectionErrors tracks failed Redis connection attempts
	RedisConnectionErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "redis_connection_errors_total",
			Help: "Total failed Redis connection attempts",
		},
	)
)

// Database Metrics
var (
	// DBQueryDuration tracks database query duration by query name
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds by query name",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"query"},
	)

	// DBErrorsTotal tracks database errors by query name
	DBErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_errors_total",
			Help: "Total database errors by query name",
		},
		[]string{"query"},
	)
)

// Command Metrics
var (
	// CommandsHandledTotal tracks bot commands handled by kind
	CommandsHandledTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commands_handled_total",
			Help: "Total bot commands handled by kind",
		},
		[]string{"kind"},
	)

	// StreamOnlineNotificationsTotal tracks stream-online announcements by status
	StreamOnlineNotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stream_online_notifications_total",
			Help: "Total stream-online announcements by status (sent/metadata_fallback/failed)",
		},
		[]string{"status"},
	)
)
