package broadcast

import (
	"sync"

	"go.uber.org/zap"

	"chatnotify/internal/model"
)

// Subscriber receives one notification. It must not be retained by callers
// after unsubscribing; the broadcaster gives no ordering guarantee between
// subscribers.
type Subscriber func(model.Notification)

// Broadcaster fans notifications out to the current subscriber set.
// Delivery is synchronous, in-process and best-effort: there is no buffering
// for late joiners and no delivery confirmation.
type Broadcaster struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]Subscriber
	log    *zap.Logger
}

func New(logger *zap.Logger) *Broadcaster {
	return &Broadcaster{
		subs: make(map[uint64]Subscriber),
		log:  logger,
	}
}

// Subscribe registers fn and returns its disposer. Registering the same
// function twice creates two independent subscriptions. The disposer removes
// exactly that registration and is a no-op when called again.
func (b *Broadcaster) Subscribe(fn Subscriber) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// Len reports the current number of registrations.
func (b *Broadcaster) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Publish delivers the notification to every current subscriber. A panicking
// subscriber is recovered and logged so the remaining subscribers still get
// the event.
func (b *Broadcaster) Publish(n model.Notification) {
	b.mu.Lock()
	targets := make([]Subscriber, 0, len(b.subs))
	for _, fn := range b.subs {
		targets = append(targets, fn)
	}
	b.mu.Unlock()

	for _, fn := range targets {
		b.deliver(fn, n)
	}
}

func (b *Broadcaster) deliver(fn Subscriber, n model.Notification) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("subscriber panicked",
				zap.Any("panic", r),
				zap.Int64("conversation_id", n.ConversationID),
			)
		}
	}()
	fn(n)
}
