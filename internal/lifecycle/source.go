package lifecycle

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// Feed is a programmatic Source for tests and embedding hosts.
type Feed struct {
	ch chan State
}

func NewFeed() *Feed {
	return &Feed{ch: make(chan State, 8)}
}

func (f *Feed) States() <-chan State { return f.ch }

// Push delivers one state transition; drops when nobody is draining.
func (f *Feed) Push(s State) {
	select {
	case f.ch <- s:
	default:
	}
}

// SignalSource maps process signals to lifecycle states for the demo client:
// SIGUSR1 backgrounds the app, SIGUSR2 foregrounds it.
type SignalSource struct {
	ch chan State
}

func NewSignalSource() *SignalSource {
	return &SignalSource{ch: make(chan State, 8)}
}

func (s *SignalSource) States() <-chan State { return s.ch }

func (s *SignalSource) Run(ctx context.Context) {
	signals := make(chan os.Signal, 2)
	signal.Notify(signals, syscall.SIGUSR1, syscall.SIGUSR2)
	defer signal.Stop(signals)

	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-signals:
			state := Background
			if sig == syscall.SIGUSR2 {
				state = Foreground
			}
			select {
			case s.ch <- state:
			default:
			}
		}
	}
}
