package server

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const indexPage = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Joxtabot</title>
</head>
<body>
    <h1>Hello, I am Joxtabot!</h1>
</body>
</html>
`

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for OBS browser source
	},
}

func (s *Server) handleIndex(c echo.Context) error {
	return c.HTML(http.StatusOK, indexPage)
}

// handleWebSocket upgrades an overlay connection and hands it to the relay
// hub. The read pump blocks until the client goes away; inbound frames are
// ignored since the overlay protocol is one-way.
func (s *Server) handleWebSocket(c echo.Context) error {
	if !s.limiter.Acquire() {
		return c.String(http.StatusServiceUnavailable, "Too many overlay connections")
	}
	defer s.limiter.Release()

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	if err := s.hub.Register(conn); err != nil {
		slog.Error("Failed to register overlay client", "error", err)
		return nil
	}

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	s.hub.Unregister(conn)

	return nil //nolint:nilerr // ReadMessage err just means the client left
}
