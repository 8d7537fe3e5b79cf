// Package ws carries bridge messages over WebSocket connections. Each
// connection stands in for one tool window.
package ws

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"nhooyr.io/websocket"

	"github.com/ericfisherdev/careerhub/internal/bridge"
)

const (
	// readLimit caps a single inbound frame. Requests carry a token and a
	// few fields; anything near this size is not a bridge message.
	readLimit = 64 << 10

	writeTimeout = 5 * time.Second
)

// Compile-time interface satisfaction check.
var _ bridge.Window = (*Window)(nil)

// Handler upgrades requests to WebSocket connections and feeds every text
// frame into the bridge.
//
// Each frame is tagged with the Origin header of the handshake. Browsers set
// that header themselves, so the bridge's origin allow-list only binds
// browser pages; any other client can claim any origin. The context token
// carried in each request is what grants access to data.
type Handler struct {
	bridge *bridge.Bridge
	logger *slog.Logger
}

// NewHandler creates a Handler dispatching into b.
func NewHandler(b *bridge.Bridge, logger *slog.Logger) *Handler {
	return &Handler{bridge: b, logger: logger}
}

// ServeHTTP accepts the connection and reads until the peer goes away.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Server-wide read and write timeouts would otherwise cut long-lived
	// connections; frames get their own write deadline below.
	rc := http.NewResponseController(w)
	_ = rc.SetReadDeadline(time.Time{})
	_ = rc.SetWriteDeadline(time.Time{})

	// The handshake accepts any origin; the bridge filters each message by
	// origin so that rejected senders get no signal at all.
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		h.logger.Info("bridge websocket upgrade failed", "error", err)
		return
	}
	conn.SetReadLimit(readLimit)

	origin := r.Header.Get("Origin")
	window := &Window{conn: conn, origin: origin}
	h.logger.Debug("bridge window connected", "origin", origin)

	h.readLoop(r.Context(), window)
}

func (h *Handler) readLoop(ctx context.Context, window *Window) {
	defer func() {
		if err := window.conn.Close(websocket.StatusNormalClosure, ""); err != nil && !isClosed(err) {
			h.logger.Debug("closing bridge websocket failed", "error", err)
		}
	}()

	for {
		typ, data, err := window.conn.Read(ctx)
		if err != nil {
			if !isClosed(err) {
				h.logger.Info("reading from bridge websocket failed", "origin", window.origin, "error", err)
			}
			return
		}
		if typ != websocket.MessageText {
			continue
		}

		h.bridge.Dispatch(ctx, bridge.Event{Origin: window.origin, Data: data, Source: window})
	}
}

func isClosed(err error) bool {
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, net.ErrClosed)
}

// Window is the host-side handle of one connected tool.
type Window struct {
	conn   *websocket.Conn
	origin string
}

// PostMessage writes payload to the tool unless targetOrigin excludes it.
// Writes are safe for concurrent use.
func (w *Window) PostMessage(ctx context.Context, payload []byte, targetOrigin string) error {
	if targetOrigin != bridge.AnyOrigin && !bridge.SameOrigin(targetOrigin, w.origin) {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	return w.conn.Write(ctx, websocket.MessageText, payload)
}
