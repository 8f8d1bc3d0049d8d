package bot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Joxtacy/joxtabot/internal/irc"
)

type recordingHandler struct {
	mu       sync.Mutex
	messages []irc.ParsedMessage
}

func (h *recordingHandler) HandleMessage(msg irc.ParsedMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, msg)
}

func (h *recordingHandler) received() []irc.ParsedMessage {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]irc.ParsedMessage(nil), h.messages...)
}

// fakeGateway plays the part of the chat server: it records every line the
// client sends and lets tests push frames back.
type fakeGateway struct {
	url     string
	inbound chan string
	conns   chan *ws.Conn
}

func startFakeGateway(t *testing.T) *fakeGateway {
	t.Helper()

	g := &fakeGateway{
		inbound: make(chan string, 64),
		conns:   make(chan *ws.Conn, 4),
	}

	upgrader := ws.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		g.conns <- conn

		go func() {
			for {
				_, payload, err := conn.ReadMessage()
				if err != nil {
					return
				}
				g.inbound <- string(payload)
			}
		}()
	}))
	t.Cleanup(func() { server.Close() })

	g.url = "ws" + strings.TrimPrefix(server.URL, "http")
	return g
}

func (g *fakeGateway) nextLine(t *testing.T) string {
	t.Helper()
	select {
	case line := <-g.inbound:
		return line
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for line from client")
		return ""
	}
}

func (g *fakeGateway) acceptConn(t *testing.T) *ws.Conn {
	t.Helper()
	select {
	case conn := <-g.conns:
		t.Cleanup(func() { conn.Close() })
		return conn
	// Generous deadline: a redial only happens after the fixed reconnect delay.
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for client connection")
		return nil
	}
}

func startTestClient(t *testing.T, g *fakeGateway, handler MessageHandler) (*Client, context.CancelFunc) {
	t.Helper()

	client := NewClient(ClientConfig{
		GatewayURL: g.url,
		Token:      "oauth:secret",
		Nick:       "joxtabot",
		Channel:    "joxtacy",
	}, handler, clockwork.NewRealClock())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		client.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("client did not stop")
		}
	})

	return client, cancel
}

func drainHandshake(t *testing.T, g *fakeGateway) {
	t.Helper()
	want := []string{
		"PASS oauth:secret",
		"NICK joxtabot",
		"JOIN #joxtacy",
		"CAP REQ :twitch.tv/membership",
		"CAP REQ :twitch.tv/tags twitch.tv/commands",
		"PRIVMSG #joxtacy :" + greetingMessage,
	}
	for _, expected := range want {
		assert.Equal(t, expected, g.nextLine(t))
	}
}

func TestClientHandshakeOrder(t *testing.T) {
	g := startFakeGateway(t)
	startTestClient(t, g, &recordingHandler{})
	g.acceptConn(t)

	drainHandshake(t, g)
}

func TestClientAnswersPingWithPong(t *testing.T) {
	g := startFakeGateway(t)
	startTestClient(t, g, &recordingHandler{})
	conn := g.acceptConn(t)
	drainHandshake(t, g)

	require.NoError(t, conn.WriteMessage(ws.TextMessage, []byte("PING :tmi.twitch.tv")))

	assert.Equal(t, "PONG :tmi.twitch.tv", g.nextLine(t))
}

func TestClientSplitsMultiLineFrames(t *testing.T) {
	g := startFakeGateway(t)
	handler := &recordingHandler{}
	startTestClient(t, g, handler)
	conn := g.acceptConn(t)
	drainHandshake(t, g)

	frame := "PING :tmi.twitch.tv\r\n:viewer!viewer@viewer.tmi.twitch.tv PRIVMSG #joxtacy :hello\r\n"
	require.NoError(t, conn.WriteMessage(ws.TextMessage, []byte(frame)))

	// PONG is answered internally, the PRIVMSG reaches the handler.
	assert.Equal(t, "PONG :tmi.twitch.tv", g.nextLine(t))
	assert.Eventually(t, func() bool {
		msgs := handler.received()
		if len(msgs) != 1 {
			return false
		}
		privmsg, ok := msgs[0].Command.(irc.Privmsg)
		return ok && privmsg.Message == "hello"
	}, time.Second, 5*time.Millisecond)
}

func TestClientSendMessageFlowsThroughQueue(t *testing.T) {
	g := startFakeGateway(t)
	client, _ := startTestClient(t, g, &recordingHandler{})
	g.acceptConn(t)
	drainHandshake(t, g)

	require.NoError(t, client.SendMessage(context.Background(), "queued hello"))

	assert.Equal(t, "PRIVMSG #joxtacy :queued hello", g.nextLine(t))
}

func TestClientSendOrderIsFIFO(t *testing.T) {
	g := startFakeGateway(t)
	client, _ := startTestClient(t, g, &recordingHandler{})
	g.acceptConn(t)
	drainHandshake(t, g)

	for _, text := range []string{"one", "two", "three"} {
		require.NoError(t, client.SendMessage(context.Background(), text))
	}

	assert.Equal(t, "PRIVMSG #joxtacy :one", g.nextLine(t))
	assert.Equal(t, "PRIVMSG #joxtacy :two", g.nextLine(t))
	assert.Equal(t, "PRIVMSG #joxtacy :three", g.nextLine(t))
}

func TestClientSaysFarewellOnShutdown(t *testing.T) {
	g := startFakeGateway(t)
	_, cancel := startTestClient(t, g, &recordingHandler{})
	g.acceptConn(t)
	drainHandshake(t, g)

	cancel()

	assert.Equal(t, "PRIVMSG #joxtacy :"+farewellMessage, g.nextLine(t))
}

func TestClientReconnectsAfterConnectionLoss(t *testing.T) {
	g := startFakeGateway(t)
	startTestClient(t, g, &recordingHandler{})
	conn := g.acceptConn(t)
	drainHandshake(t, g)

	// Kill the connection; the client should redial after the fixed delay.
	conn.Close()

	g.acceptConn(t)
	// Generous deadline: reconnect waits 5 seconds before redialing.
	select {
	case line := <-g.inbound:
		assert.Equal(t, "PASS oauth:secret", line)
	case <-time.After(10 * time.Second):
		t.Fatal("client did not re-handshake after reconnect")
	}
}

func TestClientReconnectsOnServerReconnectCommand(t *testing.T) {
	g := startFakeGateway(t)
	startTestClient(t, g, &recordingHandler{})
	conn := g.acceptConn(t)
	drainHandshake(t, g)

	require.NoError(t, conn.WriteMessage(ws.TextMessage, []byte(":tmi.twitch.tv RECONNECT")))

	g.acceptConn(t)
	select {
	case line := <-g.inbound:
		assert.Equal(t, "PASS oauth:secret", line)
	case <-time.After(10 * time.Second):
		t.Fatal("client did not reconnect after RECONNECT")
	}
}
