package relay

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/Joxtacy/joxtabot/internal/metrics"
)

const (
	commandTimeout = 5 * time.Second
	stopTimeout    = 10 * time.Second
)

// hubCmd is the command interface for the Hub actor.
type hubCmd interface{ isHubCmd() }

type baseHubCmd struct{}

func (baseHubCmd) isHubCmd() {}

type registerCmd struct {
	baseHubCmd
	connection   *websocket.Conn
	errorChannel chan error
}

type unregisterCmd struct {
	baseHubCmd
	connection *websocket.Conn
}

type publishCmd struct {
	baseHubCmd
	payload []byte
}

type clientCountCmd struct {
	baseHubCmd
	replyChannel chan int
}

type stopCmd struct {
	baseHubCmd
}

// Hub fans published events out to every connected overlay client.
type Hub struct {
	cmdCh      chan hubCmd
	clock      clockwork.Clock
	clients    map[*websocket.Conn]*clientWriter
	maxClients int
	done       chan struct{}
}

// NewHub starts the hub actor. maxClients caps concurrent overlay connections
// to prevent resource exhaustion.
func NewHub(clock clockwork.Clock, maxClients int) *Hub {
	h := &Hub{
		cmdCh:      make(chan hubCmd, 256),
		clock:      clock,
		clients:    make(map[*websocket.Conn]*clientWriter),
		maxClients: maxClients,
		done:       make(chan struct{}),
	}
	go h.run()
	return h
}

// Register adds an overlay connection. Returns an error if the client cap is
// reached, in which case the connection has already been closed.
func (h *Hub) Register(conn *websocket.Conn) error {
	errCh := make(chan error, 1)
	select {
	case h.cmdCh <- registerCmd{connection: conn, errorChannel: errCh}:
	case <-h.done:
		conn.Close()
		return fmt.Errorf("hub is stopped")
	}

	timer := h.clock.NewTimer(commandTimeout)
	defer timer.Stop()

	select {
	case err := <-errCh:
		return err
	case <-timer.Chan():
		return fmt.Errorf("register command timed out after %v", commandTimeout)
	}
}

// Unregister removes an overlay connection.
func (h *Hub) Unregister(conn *websocket.Conn) {
	select {
	case h.cmdCh <- unregisterCmd{connection: conn}:
	case <-h.done:
	}
}

// Publish delivers payload to every connected client. It never blocks on a
// slow client; such clients are disconnected instead. After Stop the payload
// is dropped: a late publisher must not hang on the dead actor.
func (h *Hub) Publish(payload []byte) {
	select {
	case h.cmdCh <- publishCmd{payload: payload}:
	case <-h.done:
	}
}

// ClientCount returns the number of connected clients, or -1 on timeout.
func (h *Hub) ClientCount() int {
	replyCh := make(chan int, 1)
	select {
	case h.cmdCh <- clientCountCmd{replyChannel: replyCh}:
	case <-h.done:
		return 0
	}

	timer := h.clock.NewTimer(commandTimeout)
	defer timer.Stop()

	select {
	case count := <-replyCh:
		return count
	case <-timer.Chan():
		slog.Warn("ClientCount timed out", "timeout", commandTimeout)
		return -1
	}
}

// Stop disconnects all clients and shuts the actor down. Blocks until the hub
// goroutine has exited or the timeout trips. Safe to call more than once.
func (h *Hub) Stop() {
	select {
	case h.cmdCh <- stopCmd{}:
	case <-h.done:
		return
	}

	timeout := h.clock.NewTimer(stopTimeout)
	defer timeout.Stop()

	select {
	case <-h.done:
		slog.Info("Relay hub stopped gracefully")
	case <-timeout.Chan():
		slog.Warn("Relay hub stop timeout exceeded", "timeout", stopTimeout)
	}
}

func (h *Hub) run() {
	defer close(h.done)

	for cmd := range h.cmdCh {
		switch c := cmd.(type) {
		case registerCmd:
			h.handleRegister(c)
		case unregisterCmd:
			h.handleUnregister(c.connection)
		case publishCmd:
			h.handlePublish(c.payload)
		case clientCountCmd:
			c.replyChannel <- len(h.clients)
		case stopCmd:
			h.handleStop()
			return
		default:
			slog.Warn("Relay hub received unknown command type", "command_type", fmt.Sprintf("%T", cmd))
		}
	}
}

func (h *Hub) handleRegister(c registerCmd) {
	if len(h.clients) >= h.maxClients {
		slog.Warn("Rejecting overlay client: max clients reached", "max_clients", h.maxClients)
		c.connection.Close()
		c.errorChannel <- fmt.Errorf("max overlay clients (%d) reached", h.maxClients)
		return
	}

	cw := newClientWriter(c.connection, h.clock)
	h.clients[c.connection] = cw
	metrics.RelayConnectedClients.Set(float64(len(h.clients)))

	slog.Debug("Overlay client registered", "client_id", cw.id, "total_clients", len(h.clients))
	c.errorChannel <- nil
}

func (h *Hub) handleUnregister(conn *websocket.Conn) {
	cw, exists := h.clients[conn]
	if !exists {
		return
	}

	cw.stop()
	delete(h.clients, conn)
	metrics.RelayConnectedClients.Set(float64(len(h.clients)))

	slog.Debug("Overlay client unregistered", "client_id", cw.id, "remaining_clients", len(h.clients))
}

func (h *Hub) handlePublish(payload []byte) {
	metrics.RelayPublishedEventsTotal.Inc()

	var slow []*websocket.Conn
	for conn, writer := range h.clients {
		select {
		case writer.sendChannel <- payload:
		default:
			slow = append(slow, conn)
		}
	}

	for _, conn := range slow {
		slog.Warn("Disconnecting slow overlay client", "client_id", h.clients[conn].id)
		metrics.RelaySlowClientsEvictedTotal.Inc()
		h.handleUnregister(conn)
	}
}

func (h *Hub) handleStop() {
	slog.Info("Relay hub shutting down", "clients", len(h.clients))

	for conn, cw := range h.clients {
		cw.stopGraceful("Server shutting down")
		delete(h.clients, conn)
	}
	metrics.RelayConnectedClients.Set(0)
}
