package api

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	models "ChainSight/internal/domain/models"
	xlogger "ChainSight/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// liveEvent is the frame pushed to /api/live subscribers.
type liveEvent struct {
	Symbol   string           `json:"symbol"`
	At       time.Time        `json:"at"`
	Analysis *models.Analysis `json:"analysis"`
}

// LiveHandler fans completed analyses out to WebSocket subscribers. It
// doubles as a SignalPublisher so the analyzer can push to it directly.
type LiveHandler struct {
	logger   *xlogger.Logger
	upgrader websocket.Upgrader

	mu    sync.RWMutex
	conns map[*websocket.Conn]chan []byte
}

func NewLiveHandler(logger *xlogger.Logger) *LiveHandler {
	return &LiveHandler{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		conns: map[*websocket.Conn]chan []byte{},
	}
}

func (h *LiveHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/live", h.Live)
}

// Live upgrades the connection and streams analyses until the client goes
// away. Slow clients drop frames rather than stalling the hub.
func (h *LiveHandler) Live(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	out := make(chan []byte, 64)
	h.mu.Lock()
	h.conns[conn] = out
	h.mu.Unlock()

	h.logger.Info("live subscriber connected", xlogger.String("remote", conn.RemoteAddr().String()))

	go h.writeLoop(conn, out)
	h.readLoop(conn)
	return nil
}

func (h *LiveHandler) writeLoop(conn *websocket.Conn, out chan []byte) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-out:
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.drop(conn)
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.drop(conn)
				return
			}
		}
	}
}

// readLoop exists to notice the peer closing; inbound frames are discarded.
func (h *LiveHandler) readLoop(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.drop(conn)
			return
		}
	}
}

func (h *LiveHandler) drop(conn *websocket.Conn) {
	h.mu.Lock()
	if out, ok := h.conns[conn]; ok {
		delete(h.conns, conn)
		close(out)
	}
	h.mu.Unlock()
	_ = conn.Close()
}

// Publish satisfies repository.SignalPublisher: every completed analysis is
// broadcast to the connected subscribers.
func (h *LiveHandler) Publish(ctx context.Context, symbol string, analysis *models.Analysis) error {
	msg, err := json.Marshal(liveEvent{Symbol: symbol, At: time.Now().UTC(), Analysis: analysis})
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, out := range h.conns {
		select {
		case out <- msg:
		default:
			// backpressure: drop the frame for this subscriber
		}
	}
	return nil
}

// Close disconnects every subscriber.
func (h *LiveHandler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, out := range h.conns {
		close(out)
		_ = conn.Close()
		delete(h.conns, conn)
	}
	return nil
}
