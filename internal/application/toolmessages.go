package application

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/ericfisherdev/careerhub/internal/bridge"
	"github.com/ericfisherdev/careerhub/internal/domain/model"
	"github.com/ericfisherdev/careerhub/internal/domain/port/driven"
)

// Error codes carried by ERROR replies.
const (
	ErrorCodeUnauthorized = "unauthorized"
	ErrorCodeNotFound     = "not_found"
	ErrorCodeReadOnly     = "read_only"
	ErrorCodeBadRequest   = "bad_request"
	ErrorCodeInternal     = "internal"
)

// HostVersion is reported to tools in TOOL_LOADED acknowledgements.
const HostVersion = model.EnvelopeVersion

// ToolMessageService answers requests tools send over the bridge. Every
// request carries its own context token; nothing is trusted per connection.
type ToolMessageService struct {
	bridge   *bridge.Bridge
	contexts *ContextService
	logger   *slog.Logger

	mu  sync.Mutex
	sub *bridge.Subscription
}

// NewToolMessageService creates a ToolMessageService. Call Start to begin
// answering messages.
func NewToolMessageService(b *bridge.Bridge, contexts *ContextService, logger *slog.Logger) *ToolMessageService {
	return &ToolMessageService{bridge: b, contexts: contexts, logger: logger}
}

// Start subscribes to the bridge. Calling Start twice has no effect.
func (s *ToolMessageService) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sub != nil {
		return
	}
	s.sub = s.bridge.Listen(s.handle)
}

// Stop removes the subscription.
func (s *ToolMessageService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sub != nil {
		s.sub.Unsubscribe()
		s.sub = nil
	}
}

func (s *ToolMessageService) handle(ctx context.Context, msg model.Message, source bridge.Window) {
	if source == nil {
		return
	}

	payload, err := model.DecodePayload(msg)
	if err != nil {
		s.replyError(ctx, source, msg.RequestID, ErrorCodeBadRequest, "malformed message data")
		return
	}

	switch p := payload.(type) {
	case model.ReadyPayload:
		s.logger.Info("tool ready", "tool", p.Tool, "version", p.Version)
		s.reply(ctx, source, model.MessageToolLoaded,
			model.ToolLoadedPayload{Host: model.EnvelopeSource, Version: HostVersion}, msg.RequestID)

	case model.FullDataRequest:
		shared, err := s.contexts.LoadSharedApplication(ctx, p.Token, p.ApplicationID)
		if err != nil {
			s.replyFailure(ctx, source, msg.RequestID, err)
			return
		}
		s.reply(ctx, source, model.MessageFullData, NewSharedApplicationView(shared), msg.RequestID)

	case model.DocumentsRequest:
		docs, err := s.contexts.LoadSharedDocuments(ctx, p.Token, p.ApplicationID)
		if err != nil {
			s.replyFailure(ctx, source, msg.RequestID, err)
			return
		}
		s.reply(ctx, source, model.MessageDocuments, DocumentsView{
			ApplicationID: p.ApplicationID,
			Documents:     NewDocumentViews(docs),
		}, msg.RequestID)

	case model.SaveNotesRequest, model.SaveActivityRequest, model.StatusUpdateRequest:
		s.logger.Info("tool attempted a write", "type", msg.Type)
		s.replyError(ctx, source, msg.RequestID, ErrorCodeReadOnly, "context tokens grant read access only")

	case model.ToolLoadedPayload:
		s.logger.Info("tool loaded", "host", p.Host, "version", p.Version)

	case model.ResponsePayload, model.ErrorPayload:
		// Host-originated types echoed back by a tool carry no request.
		s.logger.Debug("ignoring host message type from tool", "type", msg.Type)

	default:
		s.logger.Debug("ignoring unhandled payload", "type", msg.Type)
	}
}

func (s *ToolMessageService) replyFailure(ctx context.Context, source bridge.Window, requestID string, err error) {
	switch {
	case errors.Is(err, ErrContextUnauthorized), errors.Is(err, ErrContextForbidden):
		s.replyError(ctx, source, requestID, ErrorCodeUnauthorized, "context token rejected")
	case errors.Is(err, driven.ErrApplicationNotFound):
		s.replyError(ctx, source, requestID, ErrorCodeNotFound, "application not found")
	default:
		s.logger.Error("bridge request failed", "request_id", requestID, "error", err)
		s.replyError(ctx, source, requestID, ErrorCodeInternal, "internal error")
	}
}

func (s *ToolMessageService) replyError(ctx context.Context, source bridge.Window, requestID, code, message string) {
	s.reply(ctx, source, model.MessageError, model.ErrorPayload{Code: code, Message: message}, requestID)
}

func (s *ToolMessageService) reply(ctx context.Context, source bridge.Window, kind model.MessageType, data any, requestID string) {
	if err := s.bridge.Reply(ctx, source, kind, data, requestID); err != nil {
		s.logger.Warn("bridge reply failed", "type", kind, "request_id", requestID, "error", err)
	}
}
