package api

import (
	"context"
	"net/http"
	"time"

	"CoinBoard/internal/usecase/refresh"
	xlogger "CoinBoard/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// StreamHandler pushes every published snapshot to WebSocket clients.
type StreamHandler struct {
	logger   *xlogger.Logger
	mailbox  *refresh.Mailbox
	upgrader websocket.Upgrader
}

func NewStreamHandler(logger *xlogger.Logger, mb *refresh.Mailbox) *StreamHandler {
	return &StreamHandler{
		logger:  logger,
		mailbox: mb,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Serve upgrades the connection, sends the latest snapshot and then every
// newer one. Slow clients skip intermediate snapshots.
func (h *StreamHandler) Serve(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", xlogger.Error(err))
		return nil
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()
	go h.readPump(conn, cancel)

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	var seq uint64
	for {
		changed := h.mailbox.Changed()
		if s, ok := h.mailbox.Latest(); ok && s.Seq > seq {
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(s); err != nil {
				h.logger.Debug("ws write failed", xlogger.Error(err))
				return nil
			}
			seq = s.Seq
		}

		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return nil
		case <-changed:
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		}
	}
}

// readPump drains client frames so pongs and close frames are processed.
func (h *StreamHandler) readPump(conn *websocket.Conn, done context.CancelFunc) {
	defer done()
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
