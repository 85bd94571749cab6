//go:build integration

package amqp

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"chatnotify/internal/config"
	"chatnotify/internal/metrics"
	"chatnotify/internal/model"
	"chatnotify/internal/session"
)

func publish(t *testing.T, url, exchange, routingKey string, body []byte) {
	t.Helper()
	conn, err := amqp.Dial(url)
	require.NoError(t, err)
	defer conn.Close()

	ch, err := conn.Channel()
	require.NoError(t, err)
	defer ch.Close()

	err = ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil)
	require.NoError(t, err)

	err = ch.PublishWithContext(context.Background(), exchange, routingKey, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	require.NoError(t, err)
}

func TestSessionConsume(t *testing.T) {
	ctx := context.Background()
	url, cleanup := setupRabbitMQContainer(t, ctx)
	defer cleanup()

	cfg := &config.Config{
		AMQPURL:         url,
		AMQPExchange:    "chat",
		AMQPQueuePrefix: "chat.user",
		AMQPConsumerTag: "chatnotify-test",
		ReconnectMin:    100 * time.Millisecond,
		ReconnectMax:    time.Second,
	}

	connected := make(chan struct{}, 1)
	messages := make(chan model.MessageEvent, 4)
	h := session.Handler{
		OnConnect: func() { connected <- struct{}{} },
		OnMessage: func(ev model.MessageEvent) { messages <- ev },
	}

	sess, err := NewFactory(cfg, metrics.New(prometheus.NewRegistry()), zap.NewNop()).Open(ctx, 42, h)
	require.NoError(t, err)
	defer sess.Close()

	select {
	case <-connected:
	case <-time.After(30 * time.Second):
		t.Fatal("session never connected")
	}

	publish(t, url, "chat", "user.42", []byte(`{"conversation_id":7,"sender_id":9,"content":"hello"}`))

	select {
	case ev := <-messages:
		require.Equal(t, int64(7), ev.ConversationID)
		require.Equal(t, int64(9), ev.SenderID)
		require.Equal(t, "hello", ev.Content)
	case <-time.After(10 * time.Second):
		t.Fatal("message never delivered")
	}
}

func TestSessionDropsMalformedPayload(t *testing.T) {
	ctx := context.Background()
	url, cleanup := setupRabbitMQContainer(t, ctx)
	defer cleanup()

	cfg := &config.Config{
		AMQPURL:         url,
		AMQPExchange:    "chat",
		AMQPQueuePrefix: "chat.user",
		AMQPConsumerTag: "chatnotify-test",
		ReconnectMin:    100 * time.Millisecond,
		ReconnectMax:    time.Second,
	}

	connected := make(chan struct{}, 1)
	messages := make(chan model.MessageEvent, 4)
	h := session.Handler{
		OnConnect: func() { connected <- struct{}{} },
		OnMessage: func(ev model.MessageEvent) { messages <- ev },
	}

	sess, err := NewFactory(cfg, metrics.New(prometheus.NewRegistry()), zap.NewNop()).Open(ctx, 42, h)
	require.NoError(t, err)
	defer sess.Close()

	select {
	case <-connected:
	case <-time.After(30 * time.Second):
		t.Fatal("session never connected")
	}

	publish(t, url, "chat", "user.42", []byte(`{"garbage":`))
	publish(t, url, "chat", "user.42", []byte(`{"conversation_id":7,"sender_id":9,"content":"after"}`))

	select {
	case ev := <-messages:
		// The malformed payload was acked and skipped; only the valid one lands.
		require.Equal(t, "after", ev.Content)
	case <-time.After(10 * time.Second):
		t.Fatal("message never delivered")
	}
}
