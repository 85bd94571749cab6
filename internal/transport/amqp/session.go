package amqp

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"

	"chatnotify/internal/config"
	"chatnotify/internal/metrics"
	"chatnotify/internal/session"
)

type Factory struct {
	url         string
	exchange    string
	queuePrefix string
	consumerTag string
	min, max    time.Duration
	met         *metrics.Metrics
	log         *zap.Logger
}

func NewFactory(cfg *config.Config, met *metrics.Metrics, logger *zap.Logger) *Factory {
	return &Factory{
		url:         cfg.AMQPURL,
		exchange:    cfg.AMQPExchange,
		queuePrefix: cfg.AMQPQueuePrefix,
		consumerTag: cfg.AMQPConsumerTag,
		min:         cfg.ReconnectMin,
		max:         cfg.ReconnectMax,
		met:         met,
		log:         logger,
	}
}

// Open starts a broker-backed session consuming the user's queue. Dialing
// happens in the background; progress arrives through the handler.
func (f *Factory) Open(ctx context.Context, userID int64, h session.Handler) (session.Session, error) {
	runCtx, cancel := context.WithCancel(ctx)
	s := &Session{
		url:         f.url,
		exchange:    f.exchange,
		queue:       fmt.Sprintf("%s.%d", f.queuePrefix, userID),
		routingKey:  fmt.Sprintf("user.%d", userID),
		consumerTag: f.consumerTag,
		userID:      userID,
		h:           h.Normalized(),
		min:         f.min,
		max:         f.max,
		met:         f.met,
		log:         f.log,
		cancel:      cancel,
		done:        make(chan struct{}),
	}
	go s.run(runCtx)
	return s, nil
}

type Session struct {
	url         string
	exchange    string
	queue       string
	routingKey  string
	consumerTag string
	userID      int64
	h           session.Handler
	min, max    time.Duration
	met         *metrics.Metrics
	log         *zap.Logger
	cancel      context.CancelFunc
	done        chan struct{}
	connected   atomic.Bool
}

func (s *Session) Connected() bool {
	return s.connected.Load()
}

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
		err := s.consume(ctx, &connections)
		if ctx.Err() != nil {
			return
		}
		if s.connected.Swap(false) {
			s.h.OnDisconnect()
		}
		s.log.Warn("amqp session dropped",
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
	}
}

func (s *Session) consume(ctx context.Context, connections *int) error {
	ctx, span := otel.Tracer("amqp").Start(ctx, "amqp.consume_loop")
	span.SetAttributes(
		attribute.String("messaging.system", "rabbitmq"),
		attribute.String("messaging.destination", s.exchange),
		attribute.String("messaging.rabbitmq.routing_key", s.routingKey),
	)
	defer span.End()

	conn, err := amqp.Dial(s.url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "dial failed")
		return fmt.Errorf("amqp dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "channel failed")
		return fmt.Errorf("amqp channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(10, 0, false); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "qos failed")
		return fmt.Errorf("amqp qos: %w", err)
	}

	if err := ch.ExchangeDeclare(s.exchange, "topic", true, false, false, false, nil); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "exchange declare failed")
		return fmt.Errorf("amqp exchange declare: %w", err)
	}

	queueInfo, err := ch.QueueDeclare(s.queue, true, false, false, false, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "queue declare failed")
		return fmt.Errorf("amqp queue declare: %w", err)
	}

	if err := ch.QueueBind(queueInfo.Name, s.routingKey, s.exchange, false, nil); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "queue bind failed")
		return fmt.Errorf("amqp queue bind: %w", err)
	}

	deliveries, err := ch.Consume(queueInfo.Name, s.consumerTag, false, false, false, false, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "consume failed")
		return fmt.Errorf("amqp consume: %w", err)
	}

	s.connected.Store(true)
	if *connections == 0 {
		s.h.OnConnect()
	} else {
		s.h.OnReconnect()
	}
	*connections++
	s.log.Info("amqp session consuming",
		zap.String("queue", queueInfo.Name),
		zap.String("routing_key", s.routingKey),
		zap.Int64("user_id", s.userID),
	)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-deliveries:
			if !ok {
				span.SetStatus(codes.Error, "deliveries closed")
				return fmt.Errorf("amqp deliveries closed")
			}
			s.handleDelivery(ctx, msg)
		}
	}
}

func (s *Session) handleDelivery(ctx context.Context, msg amqp.Delivery) {
	ctx = otel.GetTextMapPropagator().Extract(ctx, propagation.MapCarrier(toStringMap(msg.Headers)))
	_, span := otel.Tracer("amqp").Start(ctx, "amqp.handle_message")
	span.SetAttributes(
		attribute.String("messaging.system", "rabbitmq"),
		attribute.String("messaging.rabbitmq.routing_key", msg.RoutingKey),
	)
	defer span.End()

	ev, err := session.DecodeMessage(msg.Body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid payload")
		s.met.Suppressed.WithLabelValues(metrics.ReasonInvalidPayload).Inc()
		s.log.Warn("amqp invalid message payload", zap.Int64("user_id", s.userID), zap.Error(err))
		_ = msg.Ack(false)
		return
	}

	s.h.OnMessage(ev)
	if err := msg.Ack(false); err != nil {
		s.log.Error("amqp ack failed", zap.Error(err))
	}
}

func toStringMap(headers amqp.Table) map[string]string {
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		out[k] = fmt.Sprintf("%v", v)
	}
	return out
}
