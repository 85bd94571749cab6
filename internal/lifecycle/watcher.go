// Package lifecycle turns host foreground/background transitions into
// unread resyncs. The event source is an injected dependency so the watcher
// is testable without a real host runtime.
package lifecycle

import (
	"context"

	"go.uber.org/zap"
)

type State int

const (
	Background State = iota
	Foreground
)

func (s State) String() string {
	if s == Foreground {
		return "foreground"
	}
	return "background"
}

// Source emits app lifecycle states. Implementations must close or park the
// channel only when their context ends.
type Source interface {
	States() <-chan State
}

// Watcher fires the refresh hook exactly once per background-to-foreground
// transition. Repeated foreground events and background events do nothing:
// a resume after background time is the one moment state is most likely
// stale with no live socket guarantee.
type Watcher struct {
	src     Source
	refresh func(context.Context)
	log     *zap.Logger
}

func NewWatcher(src Source, refresh func(context.Context), logger *zap.Logger) *Watcher {
	return &Watcher{src: src, refresh: refresh, log: logger}
}

func (w *Watcher) Run(ctx context.Context) {
	// The app starts foregrounded; the initial refresh belongs to Initialize.
	last := Foreground
	for {
		select {
		case <-ctx.Done():
			return
		case state, ok := <-w.src.States():
			if !ok {
				return
			}
			if last == Background && state == Foreground {
				w.log.Info("app resumed, resyncing unread total")
				w.refresh(ctx)
			}
			last = state
		}
	}
}
