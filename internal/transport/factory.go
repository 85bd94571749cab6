package transport

import (
	"context"

	"go.uber.org/zap"

	"chatnotify/internal/config"
	"chatnotify/internal/metrics"
	"chatnotify/internal/session"
	"chatnotify/internal/transport/amqp"
	"chatnotify/internal/transport/ws"
)

// NewFactory picks the session transport from configuration: websocket when
// a CHAT_WS_URL is set, the broker when only AMQP_URL is, and a noop session
// otherwise so the core still runs without a backend.
func NewFactory(cfg *config.Config, met *metrics.Metrics, logger *zap.Logger) session.Factory {
	switch {
	case cfg.WSURL != "":
		return ws.NewFactory(cfg, met, logger)
	case cfg.AMQPURL != "":
		return amqp.NewFactory(cfg, met, logger)
	default:
		logger.Warn("no session transport configured, notifications disabled")
		return noopFactory{}
	}
}

type noopFactory struct{}

func (noopFactory) Open(_ context.Context, _ int64, _ session.Handler) (session.Session, error) {
	return noopSession{}, nil
}

type noopSession struct{}

func (noopSession) Connected() bool { return false }
func (noopSession) Close() error    { return nil }
