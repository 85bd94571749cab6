// Package toast is the presentation-side subscriber: it renders one
// notification at a time from a bounded display queue. Notifications are
// transient UX, not guaranteed delivery, so overflow drops with a warning.
package toast

import (
	"context"
	"time"

	"go.uber.org/zap"

	"chatnotify/internal/config"
	"chatnotify/internal/metrics"
	"chatnotify/internal/model"
)

// Display renders one toast. Show blocks for the display duration.
type Display interface {
	Show(ctx context.Context, n model.Notification)
}

type Manager struct {
	queue   chan model.Notification
	display Display
	met     *metrics.Metrics
	log     *zap.Logger
}

func NewManager(cfg *config.Config, display Display, met *metrics.Metrics, logger *zap.Logger) *Manager {
	return &Manager{
		queue:   make(chan model.Notification, cfg.ToastQueueCap),
		display: display,
		met:     met,
		log:     logger,
	}
}

// Notify is the subscriber callback. It never blocks the broadcast: a full
// queue drops the notification.
func (m *Manager) Notify(n model.Notification) {
	select {
	case m.queue <- n:
	default:
		m.met.ToastDropped.Inc()
		m.log.Warn("toast queue full, dropping notification",
			zap.Int64("conversation_id", n.ConversationID),
			zap.String("sender", n.SenderName),
		)
	}
}

// Pending reports the queued, not yet displayed notifications.
func (m *Manager) Pending() int {
	return len(m.queue)
}

// Run drains the queue, one toast at a time, until the context ends.
func (m *Manager) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-m.queue:
			m.display.Show(ctx, n)
		}
	}
}

// LogDisplay renders toasts to the log; the demo client's presentation sink.
type LogDisplay struct {
	dur time.Duration
	log *zap.Logger
}

func NewLogDisplay(cfg *config.Config, logger *zap.Logger) *LogDisplay {
	return &LogDisplay{dur: cfg.ToastDisplay, log: logger}
}

func (d *LogDisplay) Show(ctx context.Context, n model.Notification) {
	d.log.Info("toast",
		zap.String("sender", n.SenderName),
		zap.String("preview", n.MessagePreview),
		zap.Int64("conversation_id", n.ConversationID),
	)
	select {
	case <-ctx.Done():
	case <-time.After(d.dur):
	}
}
