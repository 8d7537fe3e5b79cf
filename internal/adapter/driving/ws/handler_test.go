package ws

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"

	"github.com/ericfisherdev/careerhub/internal/bridge"
	"github.com/ericfisherdev/careerhub/internal/domain/model"
)

const toolOrigin = "https://tools.example.com"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newEchoServer starts a bridge endpoint that answers every READY with a
// TOOL_LOADED reply carrying the same request id.
func newEchoServer(t *testing.T, allowedOrigin string) *httptest.Server {
	t.Helper()

	b := bridge.New(allowedOrigin, discardLogger())
	b.Listen(func(ctx context.Context, msg model.Message, source bridge.Window) {
		if msg.Type != model.MessageReady {
			return
		}
		_ = b.Reply(ctx, source, model.MessageToolLoaded, model.ToolLoadedPayload{Host: "career-hub"}, msg.RequestID)
	})

	srv := httptest.NewServer(NewHandler(b, discardLogger()))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, origin string) *websocket.Conn {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{
		HTTPHeader: http.Header{"Origin": []string{origin}},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func writeReady(t *testing.T, conn *websocket.Conn, requestID string) {
	t.Helper()

	raw, err := json.Marshal(model.Message{
		Type:      model.MessageReady,
		Data:      json.RawMessage(`{"tool":"resume-tailor","version":"1.0"}`),
		RequestID: requestID,
	})
	require.NoError(t, err)
	require.NoError(t, conn.Write(context.Background(), websocket.MessageText, raw))
}

func TestHandler_AllowedOriginGetsReply(t *testing.T) {
	srv := newEchoServer(t, toolOrigin)
	conn := dial(t, srv, toolOrigin)

	writeReady(t, conn, "1700000000000-abc")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	typ, data, err := conn.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, websocket.MessageText, typ)

	var msg model.Message
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, model.MessageToolLoaded, msg.Type)
	assert.Equal(t, "1700000000000-abc", msg.RequestID)
}

func TestHandler_DisallowedOriginGetsNothing(t *testing.T) {
	srv := newEchoServer(t, toolOrigin)
	conn := dial(t, srv, "https://evil.example.com")

	writeReady(t, conn, "1700000000000-def")

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	_, _, err := conn.Read(ctx)
	assert.Error(t, err, "no frame may reach a sender from another origin")
}

func TestHandler_WildcardBridgeAnswersAnyOrigin(t *testing.T) {
	srv := newEchoServer(t, "")
	conn := dial(t, srv, "https://anything.example.org")

	writeReady(t, conn, "1700000000000-fff")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"TOOL_LOADED"`)
}

func TestWindow_PostMessageRespectsTargetOrigin(t *testing.T) {
	received := make(chan []byte, 2)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
		if err != nil {
			return
		}
		window := &Window{conn: conn, origin: r.Header.Get("Origin")}

		ctx := r.Context()
		_ = window.PostMessage(ctx, []byte(`"wrong"`), "https://other.example.com")
		_ = window.PostMessage(ctx, []byte(`"right"`), toolOrigin+"/")
		_ = conn.Close(websocket.StatusNormalClosure, "")
	}))
	defer srv.Close()

	conn := dial(t, srv, toolOrigin)

	go func() {
		for {
			_, data, err := conn.Read(context.Background())
			if err != nil {
				close(received)
				return
			}
			received <- data
		}
	}()

	var got []string
	for data := range received {
		got = append(got, string(data))
	}
	assert.Equal(t, []string{`"right"`}, got)
}
