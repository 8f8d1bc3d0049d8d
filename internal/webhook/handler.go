package webhook

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"

	"github.com/Joxtacy/joxtabot/internal/command"
	"github.com/Joxtacy/joxtabot/internal/dedup"
	joxerrors "github.com/Joxtacy/joxtabot/internal/errors"
	"github.com/Joxtacy/joxtabot/internal/metrics"
)

// Dispatcher receives the internal command mapped from a verified, fresh,
// first-time notification.
type Dispatcher interface {
	Dispatch(cmd command.Command)
}

// DispatcherFunc adapts a func to the Dispatcher interface.
type DispatcherFunc func(cmd command.Command)

func (f DispatcherFunc) Dispatch(cmd command.Command) { f(cmd) }

// Handler serves the EventSub callback endpoint.
type Handler struct {
	secret     string
	seen       dedup.SeenStore
	dispatcher Dispatcher
	clock      clockwork.Clock
}

func NewHandler(secret string, seen dedup.SeenStore, dispatcher Dispatcher, clock clockwork.Clock) *Handler {
	return &Handler{
		secret:     secret,
		seen:       seen,
		dispatcher: dispatcher,
		clock:      clock,
	}
}

// Handle runs the ingestion pipeline for one delivery. The order is fixed:
// signature, freshness, duplicate suppression, dispatch. Each step
// short-circuits on failure, returning a structured error for the error
// middleware to map to a response.
func (h *Handler) Handle(c echo.Context) error {
	start := h.clock.Now()
	defer func() {
		metrics.WebhookHandleDuration.Observe(h.clock.Since(start).Seconds())
	}()

	req := c.Request()
	body, err := io.ReadAll(req.Body)
	if err != nil {
		metrics.WebhookRequestsTotal.WithLabelValues("rejected").Inc()
		return joxerrors.ValidationError("failed to read body")
	}

	messageID := req.Header.Get(HeaderMessageID)
	timestamp := req.Header.Get(HeaderMessageTimestamp)
	signature := req.Header.Get(HeaderMessageSignature)
	messageType := req.Header.Get(HeaderMessageType)

	if err := VerifySignature(h.secret, messageID, timestamp, body, signature); err != nil {
		metrics.WebhookRequestsTotal.WithLabelValues("rejected").Inc()
		return joxerrors.ForbiddenError("signature verification failed").
			WithContext("message_id", messageID)
	}

	if err := CheckFreshness(timestamp, h.clock.Now()); err != nil {
		if errors.Is(err, ErrUnparseableTimestamp) {
			metrics.WebhookRequestsTotal.WithLabelValues("rejected").Inc()
			return joxerrors.ValidationError("invalid timestamp").
				WithContext("message_id", messageID).
				WithContext("timestamp", timestamp)
		}
		// Stale deliveries are acknowledged so Twitch stops retrying.
		slog.Info("Ignoring stale webhook", "message_id", messageID, "timestamp", timestamp)
		metrics.WebhookRequestsTotal.WithLabelValues("stale").Inc()
		return c.String(http.StatusOK, "OK")
	}

	added, err := h.seen.CheckAndAdd(req.Context(), messageID)
	if err != nil {
		return joxerrors.InternalError("duplicate check failed", err).
			WithContext("message_id", messageID)
	}
	if !added {
		slog.Info("Ignoring duplicate webhook", "message_id", messageID)
		metrics.WebhookRequestsTotal.WithLabelValues("duplicate").Inc()
		metrics.WebhookDuplicatesSuppressedTotal.Inc()
		return c.String(http.StatusOK, "OK")
	}

	switch messageType {
	case messageTypeNotification:
		return h.handleNotification(c, messageID, body)
	case messageTypeVerification:
		return h.handleVerification(c, body)
	case messageTypeRevocation:
		return h.handleRevocation(c, body)
	default:
		// Compatibility fallback: acknowledge unknown types with their own body.
		slog.Warn("Unknown webhook message type", "message_type", messageType, "message_id", messageID)
		metrics.WebhookRequestsTotal.WithLabelValues("accepted").Inc()
		return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, body)
	}
}

func (h *Handler) handleNotification(c echo.Context, messageID string, body []byte) error {
	var n notification
	if err := json.Unmarshal(body, &n); err != nil {
		metrics.WebhookRequestsTotal.WithLabelValues("rejected").Inc()
		return joxerrors.ValidationError("invalid notification payload").
			WithContext("message_id", messageID)
	}

	cmd := mapNotification(n)
	h.dispatcher.Dispatch(cmd)

	metrics.WebhookRequestsTotal.WithLabelValues("accepted").Inc()
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) handleVerification(c echo.Context, body []byte) error {
	var v verificationChallenge
	if err := json.Unmarshal(body, &v); err != nil {
		metrics.WebhookRequestsTotal.WithLabelValues("rejected").Inc()
		return joxerrors.ValidationError("invalid challenge payload")
	}

	slog.Info("Answering subscription challenge", "subscription_id", v.Subscription.ID, "subscription_type", v.Subscription.Type)
	metrics.WebhookRequestsTotal.WithLabelValues("challenge").Inc()
	return c.String(http.StatusOK, v.Challenge)
}

func (h *Handler) handleRevocation(c echo.Context, body []byte) error {
	var r revokedSubscription
	if err := json.Unmarshal(body, &r); err != nil {
		metrics.WebhookRequestsTotal.WithLabelValues("rejected").Inc()
		return joxerrors.ValidationError("invalid revocation payload")
	}

	slog.Warn("Subscription revoked",
		"subscription_id", r.Subscription.ID,
		"subscription_type", r.Subscription.Type,
		"status", r.Subscription.Status,
	)
	metrics.WebhookRequestsTotal.WithLabelValues("accepted").Inc()
	return c.NoContent(http.StatusNoContent)
}
