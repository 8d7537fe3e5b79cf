package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MessageType discriminates the payload carried by a Message.
type MessageType string

// Messages sent by a tool to the host.
const (
	MessageReady            MessageType = "READY"
	MessageRequestFullData  MessageType = "REQUEST_FULL_DATA"
	MessageRequestDocuments MessageType = "REQUEST_DOCUMENTS"
	MessageSaveNotes        MessageType = "SAVE_NOTES"
	MessageSaveActivity     MessageType = "SAVE_ACTIVITY"
	MessageStatusUpdate     MessageType = "STATUS_UPDATE"
)

// Messages sent by the host to a tool.
const (
	MessageToolLoaded MessageType = "TOOL_LOADED"
	MessageFullData   MessageType = "FULL_DATA"
	MessageDocuments  MessageType = "DOCUMENTS"
	MessageError      MessageType = "ERROR"
)

// ErrUnknownMessageType is returned by DecodePayload for a type it does not model.
var ErrUnknownMessageType = errors.New("unknown message type")

// Message is the envelope exchanged between host and tool after load.
// RequestID correlates a request with its response and carries no ordering.
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	RequestID string          `json:"requestId"`
}

// Payload is the typed form of Message.Data. The concrete type is fixed by
// the message type.
type Payload interface {
	MessageType() MessageType
}

// ContextRequest carries the credential a tool presents with every request.
type ContextRequest struct {
	Token         string `json:"token"`
	ApplicationID string `json:"applicationId"`
}

// ReadyPayload announces that a tool finished loading.
type ReadyPayload struct {
	Tool    string `json:"tool,omitempty"`
	Version string `json:"version,omitempty"`
}

// FullDataRequest asks for the full shared application.
type FullDataRequest struct {
	ContextRequest
}

// DocumentsRequest asks for the documents attached to the shared application.
type DocumentsRequest struct {
	ContextRequest
}

// SaveNotesRequest asks the host to store notes on the application.
type SaveNotesRequest struct {
	ContextRequest
	Notes string `json:"notes"`
}

// SaveActivityRequest asks the host to log an activity on the application.
type SaveActivityRequest struct {
	ContextRequest
	Kind    string `json:"kind"`
	Summary string `json:"summary"`
}

// StatusUpdateRequest asks the host to move the application to another stage.
type StatusUpdateRequest struct {
	ContextRequest
	Status ApplicationStatus `json:"status"`
}

// ToolLoadedPayload acknowledges a READY message.
type ToolLoadedPayload struct {
	Host    string `json:"host"`
	Version string `json:"version"`
}

// ResponsePayload is the body of a FULL_DATA or DOCUMENTS reply. Body is
// left encoded; its shape is owned by the host's read model.
type ResponsePayload struct {
	Type MessageType     `json:"-"`
	Body json.RawMessage `json:"-"`
}

// ErrorPayload reports why a request was refused.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (ReadyPayload) MessageType() MessageType        { return MessageReady }
func (FullDataRequest) MessageType() MessageType     { return MessageRequestFullData }
func (DocumentsRequest) MessageType() MessageType    { return MessageRequestDocuments }
func (SaveNotesRequest) MessageType() MessageType    { return MessageSaveNotes }
func (SaveActivityRequest) MessageType() MessageType { return MessageSaveActivity }
func (StatusUpdateRequest) MessageType() MessageType { return MessageStatusUpdate }
func (ToolLoadedPayload) MessageType() MessageType   { return MessageToolLoaded }
func (p ResponsePayload) MessageType() MessageType   { return p.Type }
func (ErrorPayload) MessageType() MessageType        { return MessageError }

// Known reports whether t is one of the message types of the protocol.
func (t MessageType) Known() bool {
	switch t {
	case MessageReady, MessageRequestFullData, MessageRequestDocuments,
		MessageSaveNotes, MessageSaveActivity, MessageStatusUpdate,
		MessageToolLoaded, MessageFullData, MessageDocuments, MessageError:
		return true
	}
	return false
}

// DecodePayload resolves msg.Data into the payload type selected by msg.Type.
// A missing data field decodes to the zero payload.
func DecodePayload(msg Message) (Payload, error) {
	switch msg.Type {
	case MessageReady:
		return decodeInto[ReadyPayload](msg)
	case MessageRequestFullData:
		return decodeInto[FullDataRequest](msg)
	case MessageRequestDocuments:
		return decodeInto[DocumentsRequest](msg)
	case MessageSaveNotes:
		return decodeInto[SaveNotesRequest](msg)
	case MessageSaveActivity:
		return decodeInto[SaveActivityRequest](msg)
	case MessageStatusUpdate:
		return decodeInto[StatusUpdateRequest](msg)
	case MessageToolLoaded:
		return decodeInto[ToolLoadedPayload](msg)
	case MessageFullData, MessageDocuments:
		return ResponsePayload{Type: msg.Type, Body: msg.Data}, nil
	case MessageError:
		return decodeInto[ErrorPayload](msg)
	default:
		return nil, fmt.Errorf("decode %q: %w", msg.Type, ErrUnknownMessageType)
	}
}

func decodeInto[T Payload](msg Message) (Payload, error) {
	var p T
	if len(msg.Data) == 0 || string(msg.Data) == "null" {
		return p, nil
	}
	if err := json.Unmarshal(msg.Data, &p); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", msg.Type, err)
	}
	return p, nil
}
