// Package bridge implements the message channel between the host and
// external tool windows once a tool has loaded.
//
// A Bridge owns the one inbound subscription of the process. Every inbound
// event goes through Dispatch, which drops traffic from origins other than
// the configured tool origin and anything that is not a well-formed Message.
// Nothing is ever sent back for a dropped event.
package bridge

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ericfisherdev/careerhub/internal/domain/model"
)

// AnyOrigin is the wildcard target origin used when no tool origin is configured.
const AnyOrigin = "*"

// Window is a handle to another browsing context.
type Window interface {
	// PostMessage delivers payload when targetOrigin is AnyOrigin or matches
	// the window's origin. A mismatch discards the payload without error.
	PostMessage(ctx context.Context, payload []byte, targetOrigin string) error
}

// Event is one inbound message as delivered by a transport.
type Event struct {
	Origin string
	Data   []byte
	Source Window
}

// Handler receives validated messages. source is the window that sent msg
// and the only window a reply should go to.
type Handler func(ctx context.Context, msg model.Message, source Window)

// Bridge validates inbound events and fans them out to listeners.
type Bridge struct {
	allowedOrigin string
	logger        *slog.Logger

	mu       sync.RWMutex
	handlers map[uint64]Handler
	nextID   uint64
}

// New creates a Bridge. An empty allowedOrigin accepts every origin and
// targets AnyOrigin when sending.
func New(allowedOrigin string, logger *slog.Logger) *Bridge {
	return &Bridge{
		allowedOrigin: strings.TrimSuffix(allowedOrigin, "/"),
		logger:        logger,
		handlers:      make(map[uint64]Handler),
	}
}

// TargetOrigin returns the origin outbound messages are addressed to.
func (b *Bridge) TargetOrigin() string {
	if b.allowedOrigin == "" {
		return AnyOrigin
	}
	return b.allowedOrigin
}

// Send posts a new request to target and returns its request id.
func (b *Bridge) Send(ctx context.Context, target Window, kind model.MessageType, data any) (string, error) {
	requestID := NewRequestID()
	if err := b.post(ctx, target, kind, data, requestID); err != nil {
		return "", err
	}
	return requestID, nil
}

// Reply posts a response correlated with requestID to target.
func (b *Bridge) Reply(ctx context.Context, target Window, kind model.MessageType, data any, requestID string) error {
	return b.post(ctx, target, kind, data, requestID)
}

func (b *Bridge) post(ctx context.Context, target Window, kind model.MessageType, data any, requestID string) error {
	msg := model.Message{Type: kind, RequestID: requestID}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("marshal %s data: %w", kind, err)
		}
		msg.Data = raw
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal %s message: %w", kind, err)
	}

	if err := target.PostMessage(ctx, payload, b.TargetOrigin()); err != nil {
		return fmt.Errorf("post %s message: %w", kind, err)
	}
	return nil
}

// Subscription is a registered listener. The view that created it owns it
// and must call Unsubscribe on teardown.
type Subscription struct {
	bridge *Bridge
	id     uint64
	once   sync.Once
}

// Unsubscribe removes the listener. Calling it more than once is a no-op.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.bridge.mu.Lock()
		delete(s.bridge.handlers, s.id)
		s.bridge.mu.Unlock()
	})
}

// Listen registers h for every accepted inbound message.
func (b *Bridge) Listen(h Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.handlers[b.nextID] = h
	return &Subscription{bridge: b, id: b.nextID}
}

// Listeners returns the number of registered listeners.
func (b *Bridge) Listeners() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers)
}

// Dispatch validates ev and delivers it to every listener. Events from other
// origins and malformed payloads are dropped silently.
func (b *Bridge) Dispatch(ctx context.Context, ev Event) {
	if !b.OriginAllowed(ev.Origin) {
		b.logger.Warn("bridge dropped message from disallowed origin", "origin", ev.Origin)
		return
	}

	var msg model.Message
	if err := json.Unmarshal(ev.Data, &msg); err != nil {
		b.logger.Debug("bridge dropped non-message payload", "origin", ev.Origin, "error", err)
		return
	}
	if !msg.Type.Known() {
		b.logger.Debug("bridge dropped message without a known type", "origin", ev.Origin, "type", msg.Type)
		return
	}

	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.handlers))
	for _, h := range b.handlers {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(ctx, msg, ev.Source)
	}
}

// OriginAllowed reports whether messages from origin are accepted.
func (b *Bridge) OriginAllowed(origin string) bool {
	if b.allowedOrigin == "" {
		return true
	}
	return SameOrigin(origin, b.allowedOrigin)
}

// SameOrigin compares two serialized origins. Scheme and host are case
// insensitive; a trailing slash is ignored.
func SameOrigin(a, b string) bool {
	a = strings.TrimSuffix(a, "/")
	b = strings.TrimSuffix(b, "/")
	return a != "" && strings.EqualFold(a, b)
}

// NewRequestID returns "<unix millis>-<random hex>". Ids are unique with
// high probability; they correlate replies and carry no security weight.
func NewRequestID() string {
	var suffix [6]byte
	if _, err := rand.Read(suffix[:]); err != nil {
		panic("bridge: failed to generate request id: " + err.Error())
	}
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), hex.EncodeToString(suffix[:]))
}
