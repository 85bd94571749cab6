// Package core orchestrates the chat notification pipeline: it owns the
// per-session transport, the unread total, the active-conversation marker
// and the subscriber fan-out, and applies the suppression rules that decide
// whether an incoming message interrupts the user.
package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"chatnotify/internal/broadcast"
	"chatnotify/internal/domain"
	"chatnotify/internal/metrics"
	"chatnotify/internal/model"
	"chatnotify/internal/names"
	"chatnotify/internal/session"
	"chatnotify/internal/unread"
)

// Core is one instance per process. All session state is guarded by mu;
// broadcasts run outside the lock so subscribers may call back in.
type Core struct {
	factory session.Factory
	fetcher unread.Fetcher
	bus     *broadcast.Broadcaster
	names   *names.Cache
	met     *metrics.Metrics
	log     *zap.Logger

	mu                 sync.Mutex
	userID             int64
	generation         uint64
	sess               session.Session
	connected          bool
	activeConversation int64
	total              int
	refreshing         bool
}

func New(
	factory session.Factory,
	fetcher unread.Fetcher,
	bus *broadcast.Broadcaster,
	cache *names.Cache,
	met *metrics.Metrics,
	logger *zap.Logger,
) *Core {
	return &Core{
		factory: factory,
		fetcher: fetcher,
		bus:     bus,
		names:   cache,
		met:     met,
		log:     logger,
	}
}

// Initialize binds the core to one authenticated user. Calling it again with
// the same id is a no-op; any other id tears the previous session fully down
// before a new one is opened, and an id of zero or less is a logout. Events
// from a torn-down session are discarded by generation.
func (c *Core) Initialize(ctx context.Context, userID int64) error {
	c.mu.Lock()
	if userID > 0 && userID == c.userID && c.sess != nil {
		c.mu.Unlock()
		return nil
	}
	old := c.sess
	c.sess = nil
	c.generation++
	gen := c.generation
	c.connected = false
	c.total = 0
	c.activeConversation = 0
	if userID > 0 {
		c.userID = userID
	} else {
		c.userID = 0
	}
	c.mu.Unlock()

	c.met.UnreadTotal.Set(0)
	c.names.Clear()
	if old != nil {
		_ = old.Close()
	}

	if userID <= 0 {
		c.log.Info("session torn down")
		return nil
	}

	h := session.Handler{
		OnConnect:    func() { c.onConnect(gen) },
		OnDisconnect: func() { c.onDisconnect(gen) },
		OnReconnect:  func() { c.onReconnect(gen) },
		OnMessage:    func(ev model.MessageEvent) { c.onMessage(gen, ev) },
	}
	sess, err := c.factory.Open(ctx, userID, h)
	if err != nil {
		c.log.Error("session open failed", zap.Int64("user_id", userID), zap.Error(err))
		return fmt.Errorf("open session: %w", err)
	}

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		_ = sess.Close()
		return nil
	}
	c.sess = sess
	c.mu.Unlock()

	c.log.Info("session initialized", zap.Int64("user_id", userID))
	go c.RefreshUnreadTotal(ctx)
	return nil
}

// Shutdown is logout: full teardown of the current session.
func (c *Core) Shutdown(ctx context.Context) {
	_ = c.Initialize(ctx, 0)
}

// SetActiveConversation updates the marker; zero clears it. Safe to call
// from screen mount/unmount, never blocks.
func (c *Core) SetActiveConversation(conversationID int64) {
	c.mu.Lock()
	c.activeConversation = conversationID
	c.mu.Unlock()
}

// ActiveConversation returns the marker, zero when none.
func (c *Core) ActiveConversation() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeConversation
}

// UnreadTotal returns the last known aggregate. Never blocks; may be stale
// between refreshes by design.
func (c *Core) UnreadTotal() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// Connected reports the transport state for UI banners.
func (c *Core) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// CurrentUserID returns the bound user, zero when logged out.
func (c *Core) CurrentUserID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID
}

// Subscribe registers a notification listener and returns its disposer.
func (c *Core) Subscribe(fn broadcast.Subscriber) func() {
	return c.bus.Subscribe(fn)
}

// UpdateParticipantName records a display name for notification text.
// Fire-and-forget, no failure mode.
func (c *Core) UpdateParticipantName(userID int64, name string) {
	c.names.Set(userID, name)
}

// RefreshUnreadTotal re-pulls the per-conversation counts and replaces the
// cached total. Failures are swallowed and the prior value kept: unread
// counts are best-effort. Concurrent calls coalesce into the one in-flight
// pull, so a reconnect storm produces a single API call.
func (c *Core) RefreshUnreadTotal(ctx context.Context) {
	c.mu.Lock()
	if c.refreshing || c.userID <= 0 {
		coalesced := c.refreshing
		c.mu.Unlock()
		if coalesced {
			c.met.Refreshes.WithLabelValues(metrics.OutcomeCoalesced).Inc()
		}
		return
	}
	c.refreshing = true
	userID := c.userID
	gen := c.generation
	c.mu.Unlock()

	ctx, span := otel.Tracer("core").Start(ctx, "core.refresh_unread")
	span.SetAttributes(attribute.Int64("user.id", userID))
	defer span.End()

	counts, err := c.fetcher.FetchUnread(ctx, userID)

	c.mu.Lock()
	c.refreshing = false
	if err != nil {
		c.mu.Unlock()
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "fetch failed")
		c.met.Refreshes.WithLabelValues(metrics.OutcomeFailure).Inc()
		c.log.Warn("unread refresh failed, keeping last known total",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return
	}
	if gen != c.generation {
		c.mu.Unlock()
		c.met.Refreshes.WithLabelValues(metrics.OutcomeStale).Inc()
		return
	}
	// Last completed refresh wins. Local increments racing the pull may be
	// absorbed or double-counted until the next refresh; the total is an
	// approximation, never a delivery gate.
	total := unread.Total(counts)
	c.total = total
	c.mu.Unlock()

	c.met.UnreadTotal.Set(float64(total))
	c.met.Refreshes.WithLabelValues(metrics.OutcomeSuccess).Inc()
	c.log.Debug("unread total refreshed", zap.Int64("user_id", userID), zap.Int("total", total))
}

func (c *Core) onConnect(gen uint64) {
	c.mu.Lock()
	if gen == c.generation {
		c.connected = true
	}
	c.mu.Unlock()
}

func (c *Core) onDisconnect(gen uint64) {
	c.mu.Lock()
	if gen == c.generation {
		c.connected = false
	}
	c.mu.Unlock()
}

func (c *Core) onReconnect(gen uint64) {
	c.mu.Lock()
	current := gen == c.generation
	if current {
		c.connected = true
	}
	c.mu.Unlock()
	if !current {
		return
	}
	c.met.Reconnects.Inc()
	// A reconnect implies an unknown number of missed events; a full resync
	// is the correctness mechanism, not incremental replay.
	go c.RefreshUnreadTotal(context.Background())
}

// onMessage runs the qualification algorithm. Suppression happens before any
// state mutation so an own or visible message never perturbs the total.
func (c *Core) onMessage(gen uint64, ev model.MessageEvent) {
	c.mu.Lock()
	switch {
	case gen != c.generation:
		c.mu.Unlock()
		c.met.Suppressed.WithLabelValues(metrics.ReasonStaleSession).Inc()
		c.log.Debug("stale session event discarded", zap.Int64("conversation_id", ev.ConversationID))
		return
	case ev.SenderID == c.userID:
		c.mu.Unlock()
		c.met.Suppressed.WithLabelValues(metrics.ReasonOwnEcho).Inc()
		return
	case c.activeConversation != 0 && ev.ConversationID == c.activeConversation:
		c.mu.Unlock()
		c.met.Suppressed.WithLabelValues(metrics.ReasonActiveConversation).Inc()
		return
	}

	senderName := c.names.Resolve(ev.SenderID)
	c.total++
	total := c.total
	c.mu.Unlock()

	c.met.UnreadTotal.Set(float64(total))
	c.met.Emitted.Inc()

	c.bus.Publish(model.Notification{
		ConversationID: ev.ConversationID,
		SenderID:       ev.SenderID,
		SenderName:     senderName,
		MessagePreview: domain.Preview(ev.Content),
		CreatedAt:      time.Now(),
	})
}
