package lifecycle

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWatcher(t *testing.T) {
	newWatcher := func(feed *Feed, calls *atomic.Int32) *Watcher {
		return NewWatcher(feed, func(context.Context) { calls.Add(1) }, zap.NewNop())
	}

	t.Run("fires once per background to foreground edge", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		feed := NewFeed()
		var calls atomic.Int32
		go newWatcher(feed, &calls).Run(ctx)

		feed.Push(Background)
		feed.Push(Foreground)

		require.Eventually(t, func() bool { return calls.Load() == 1 },
			time.Second, 10*time.Millisecond)
	})

	t.Run("repeated foreground events do not fire", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		feed := NewFeed()
		var calls atomic.Int32
		go newWatcher(feed, &calls).Run(ctx)

		feed.Push(Foreground)
		feed.Push(Foreground)
		feed.Push(Background)
		feed.Push(Background)

		time.Sleep(50 * time.Millisecond)
		require.Equal(t, int32(0), calls.Load())
	})

	t.Run("each full cycle fires exactly once", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		feed := NewFeed()
		var calls atomic.Int32
		go newWatcher(feed, &calls).Run(ctx)

		for i := 0; i < 3; i++ {
			feed.Push(Background)
			feed.Push(Foreground)
		}

		require.Eventually(t, func() bool { return calls.Load() == 3 },
			time.Second, 10*time.Millisecond)
		time.Sleep(20 * time.Millisecond)
		require.Equal(t, int32(3), calls.Load())
	})
}
