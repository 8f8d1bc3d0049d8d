package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/Joxtacy/joxtabot/internal/irc"
	"github.com/Joxtacy/joxtabot/internal/metrics"
)

const (
	// DefaultGatewayURL is Twitch's IRC-over-WebSocket endpoint.
	DefaultGatewayURL = "wss://irc-ws.chat.twitch.tv:443"

	reconnectDelay    = 5 * time.Second
	chatWriteDeadline = 10 * time.Second
	sendQueueSize     = 64

	greetingMessage = "I am online, peeps! widepeepoHappy"
	farewellMessage = "I am going offline, peeps! widepeepoHappy"
)

// MessageHandler consumes every parsed line read from the chat connection.
type MessageHandler interface {
	HandleMessage(msg irc.ParsedMessage)
}

// MessageHandlerFunc adapts a func to the MessageHandler interface.
type MessageHandlerFunc func(msg irc.ParsedMessage)

func (f MessageHandlerFunc) HandleMessage(msg irc.ParsedMessage) { f(msg) }

// ClientConfig carries the connection identity.
type ClientConfig struct {
	GatewayURL string
	Token      string
	Nick       string
	Channel    string
}

// Client manages the chat connection lifecycle: dial, handshake, read loop,
// bounded outbound queue, and fixed-delay reconnect.
type Client struct {
	config  ClientConfig
	handler MessageHandler
	clock   clockwork.Clock
	dialer  *websocket.Dialer

	sendCh chan string

	// writeMu serializes all writes to the current connection: the queue
	// drainer, direct PONG replies, and the handshake.
	writeMu sync.Mutex
}

func NewClient(config ClientConfig, handler MessageHandler, clock clockwork.Clock) *Client {
	if config.GatewayURL == "" {
		config.GatewayURL = DefaultGatewayURL
	}
	return &Client{
		config:  config,
		handler: handler,
		clock:   clock,
		dialer:  websocket.DefaultDialer,
		sendCh:  make(chan string, sendQueueSize),
	}
}

// SendMessage enqueues a PRIVMSG to the channel. It blocks while the queue is
// full, propagating connection backpressure to the caller; a cancelled
// context abandons the message.
func (c *Client) SendMessage(ctx context.Context, text string) error {
	return c.sendRaw(ctx, fmt.Sprintf("PRIVMSG #%s :%s", c.config.Channel, text))
}

func (c *Client) sendRaw(ctx context.Context, line string) error {
	select {
	case c.sendCh <- line:
		metrics.ChatSendQueueDepth.Set(float64(len(c.sendCh)))
		return nil
	case <-ctx.Done():
		metrics.ChatSendQueueDroppedTotal.Inc()
		return fmt.Errorf("message dropped, shutting down: %w", ctx.Err())
	}
}

// Run connects and serves until ctx is cancelled. Connection failures are
// never fatal: after each failure Run waits a fixed delay and redials.
func (c *Client) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		conn, _, err := c.dialer.DialContext(ctx, c.config.GatewayURL, nil)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Error("Chat connect failed", "url", c.config.GatewayURL, "error", err)
			metrics.ChatReconnectsTotal.Inc()
			c.waitForRetry(ctx)
			continue
		}

		slog.Info("Chat connected", "url", c.config.GatewayURL, "channel", c.config.Channel)
		err = c.serve(ctx, conn)

		if ctx.Err() != nil {
			c.sayFarewell(conn)
			_ = conn.Close()
			return
		}

		slog.Warn("Chat connection lost, reconnecting", "error", err, "delay", reconnectDelay)
		_ = conn.Close()
		metrics.ChatReconnectsTotal.Inc()
		c.waitForRetry(ctx)
	}
}

// serve runs one connection until it fails or ctx is cancelled.
func (c *Client) serve(ctx context.Context, conn *websocket.Conn) error {
	if err := c.handshake(conn); err != nil {
		return fmt.Errorf("handshake failed: %w", err)
	}

	if err := c.writeLine(conn, fmt.Sprintf("PRIVMSG #%s :%s", c.config.Channel, greetingMessage)); err != nil {
		return fmt.Errorf("greeting failed: %w", err)
	}

	// The drainer and the ctx watcher both end when serve returns.
	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		<-connCtx.Done()
		// Unblocks a pending ReadMessage.
		_ = conn.SetReadDeadline(time.Now())
	}()

	go c.drainSendQueue(connCtx, conn)

	return c.readLoop(ctx, conn)
}

// handshake authenticates and joins the channel. Order is fixed: credentials,
// nick, join, then the capability requests for membership and tags+commands.
func (c *Client) handshake(conn *websocket.Conn) error {
	lines := []string{
		"PASS " + c.config.Token,
		"NICK " + c.config.Nick,
		"JOIN #" + c.config.Channel,
		"CAP REQ :twitch.tv/membership",
		"CAP REQ :twitch.tv/tags twitch.tv/commands",
	}
	for _, line := range lines {
		if err := c.writeLine(conn, line); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) error {
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		for _, line := range strings.Split(string(payload), "\r\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			metrics.ChatLinesReceivedTotal.Inc()

			parsed := irc.Parse(line)
			switch parsed.Command.(type) {
			case irc.Ping:
				// Answered directly so keepalive does not queue behind chat.
				if err := c.writeLine(conn, "PONG :tmi.twitch.tv"); err != nil {
					return fmt.Errorf("failed to send PONG: %w", err)
				}
				metrics.ChatMessagesSentTotal.WithLabelValues("pong").Inc()
			case irc.Reconnect:
				slog.Info("Server requested reconnect")
				return fmt.Errorf("server requested reconnect")
			case irc.Unsupported:
				metrics.ChatUnsupportedCommandsTotal.Inc()
				c.handler.HandleMessage(parsed)
			default:
				c.handler.HandleMessage(parsed)
			}

			if ctx.Err() != nil {
				return ctx.Err()
			}
		}
	}
}

func (c *Client) drainSendQueue(ctx context.Context, conn *websocket.Conn) {
	for {
		select {
		case line := <-c.sendCh:
			metrics.ChatSendQueueDepth.Set(float64(len(c.sendCh)))
			if err := c.writeLine(conn, line); err != nil {
				slog.Error("Failed to write outbound line", "error", err)
				return
			}
			metrics.ChatMessagesSentTotal.WithLabelValues("queued").Inc()
		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) writeLine(conn *websocket.Conn, line string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = conn.SetWriteDeadline(c.clock.Now().Add(chatWriteDeadline))
	return conn.WriteMessage(websocket.TextMessage, []byte(line))
}

// sayFarewell makes one best-effort announcement before closing. Failure is
// logged, never propagated.
func (c *Client) sayFarewell(conn *websocket.Conn) {
	line := fmt.Sprintf("PRIVMSG #%s :%s", c.config.Channel, farewellMessage)
	if err := c.writeLine(conn, line); err != nil {
		slog.Warn("Failed to send farewell", "error", err)
		return
	}
	metrics.ChatMessagesSentTotal.WithLabelValues("farewell").Inc()
}

func (c *Client) waitForRetry(ctx context.Context) {
	timer := c.clock.NewTimer(reconnectDelay)
	defer timer.Stop()

	select {
	case <-timer.Chan():
	case <-ctx.Done():
	}
}
