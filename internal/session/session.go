package session

import (
	"context"
	"encoding/json"
	"fmt"

	"chatnotify/internal/domain"
	"chatnotify/internal/model"
)

// Handler receives the lifecycle and message events of one live session.
// Nil callbacks are tolerated; Normalized fills them with no-ops.
type Handler struct {
	OnConnect    func()
	OnDisconnect func()
	OnReconnect  func()
	OnMessage    func(model.MessageEvent)
}

// Normalized returns a copy with every nil callback replaced by a no-op so
// transports can invoke hooks unconditionally.
func (h Handler) Normalized() Handler {
	if h.OnConnect == nil {
		h.OnConnect = func() {}
	}
	if h.OnDisconnect == nil {
		h.OnDisconnect = func() {}
	}
	if h.OnReconnect == nil {
		h.OnReconnect = func() {}
	}
	if h.OnMessage == nil {
		h.OnMessage = func(model.MessageEvent) {}
	}
	return h
}

// Session is one live connection bound to one authenticated user. Connected
// is a read-only flag for UI banners and carries no other behavior.
type Session interface {
	Connected() bool
	Close() error
}

// Factory opens sessions. Implementations dial in the background and report
// progress through the handler, so Open never blocks on the network.
type Factory interface {
	Open(ctx context.Context, userID int64, h Handler) (Session, error)
}

// DecodeMessage parses and validates the wire shape of a message:received
// payload. The shape is owned by the backend; it is only validated here.
func DecodeMessage(data []byte) (model.MessageEvent, error) {
	var ev model.MessageEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return model.MessageEvent{}, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}
	if err := domain.ValidateMessage(ev); err != nil {
		return model.MessageEvent{}, err
	}
	return ev, nil
}
