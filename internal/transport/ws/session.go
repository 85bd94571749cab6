package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"chatnotify/internal/config"
	"chatnotify/internal/metrics"
	"chatnotify/internal/session"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	eventMessageReceived = "message:received"
)

// frame is the websocket envelope: an event name plus its payload.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type Factory struct {
	baseURL string
	min     time.Duration
	max     time.Duration
	met     *metrics.Metrics
	log     *zap.Logger
}

func NewFactory(cfg *config.Config, met *metrics.Metrics, logger *zap.Logger) *Factory {
	return &Factory{
		baseURL: cfg.WSURL,
		min:     cfg.ReconnectMin,
		max:     cfg.ReconnectMax,
		met:     met,
		log:     logger,
	}
}

// Open starts the dial/read/redial loop for one user and returns
// immediately; connection progress arrives through the handler.
func (f *Factory) Open(ctx context.Context, userID int64, h session.Handler) (session.Session, error) {
	runCtx, cancel := context.WithCancel(ctx)
	s := &Session{
		url:    fmt.Sprintf("%s?user_id=%d", f.baseURL, userID),
		userID: userID,
		h:      h.Normalized(),
		min:    f.min,
		max:    f.max,
		met:    f.met,
		log:    f.log,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go s.run(runCtx)
	return s, nil
}

type Session struct {
	url       string
	userID    int64
	h         session.Handler
	min, max  time.Duration
	met       *metrics.Metrics
	log       *zap.Logger
	cancel    context.CancelFunc
	done      chan struct{}
	connected atomic.Bool
}

func (s *Session) Connected() bool {
	return s.connected.Load()
}

// Close detaches the session; no events are delivered after it returns.
func (s *Session) Close() error {
	s.cancel()
	<-s.done
	return nil
}

func (s *Session) run(ctx context.Context) {
	defer close(s.done)

	backoff := s.min
	connections := 0
	for {
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.log.Warn("websocket dial failed",
				zap.Int64("user_id", s.userID),
				zap.Duration("retry_in", backoff),
				zap.Error(err),
			)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff *= 2; backoff > s.max {
				backoff = s.max
			}
			continue
		}

		backoff = s.min
		s.connected.Store(true)
		if connections == 0 {
			s.h.OnConnect()
		} else {
			s.h.OnReconnect()
		}
		connections++
		s.log.Info("websocket connected", zap.Int64("user_id", s.userID), zap.Int("connection", connections))

		s.readLoop(ctx, conn)

		s.connected.Store(false)
		_ = conn.Close()
		if ctx.Err() != nil {
			return
		}
		s.h.OnDisconnect()
	}
}

func (s *Session) readLoop(ctx context.Context, conn *websocket.Conn) {
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	pingDone := make(chan struct{})
	defer close(pingDone)
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				_ = conn.Close()
				return
			case <-pingDone:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					return
				}
			}
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				s.log.Warn("websocket read failed", zap.Int64("user_id", s.userID), zap.Error(err))
			}
			return
		}
		s.handleFrame(ctx, data)
	}
}

func (s *Session) handleFrame(ctx context.Context, data []byte) {
	_, span := otel.Tracer("ws").Start(ctx, "ws.handle_frame")
	span.SetAttributes(
		attribute.String("messaging.system", "websocket"),
		attribute.Int64("user.id", s.userID),
	)
	defer span.End()

	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid frame")
		s.met.Suppressed.WithLabelValues(metrics.ReasonInvalidPayload).Inc()
		s.log.Warn("websocket invalid frame", zap.Int64("user_id", s.userID), zap.Error(err))
		return
	}
	if f.Event != eventMessageReceived {
		// Presence, typing and other events are outside this core's scope.
		return
	}

	ev, err := session.DecodeMessage(f.Data)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid payload")
		s.met.Suppressed.WithLabelValues(metrics.ReasonInvalidPayload).Inc()
		s.log.Warn("websocket invalid message payload", zap.Int64("user_id", s.userID), zap.Error(err))
		return
	}
	s.h.OnMessage(ev)
}
