package streamparse

import (
	"context"
	"time"
)

// Generator returns a channel fed with the given items, closed once they are
// all sent. It is a convenient producer for Channel sources in tests and
// examples.
func Generator[P any](items ...P) <-chan P {
	out := make(chan P)
	go func() {
		defer close(out)
		for _, item := range items {
			out <- item
		}
	}()
	return out
}

// TimedGenerator is like Generator but waits interval between sends, to
// simulate chunks arriving over time. It stops early when ctx is canceled.
func TimedGenerator[P any](ctx context.Context, interval time.Duration, items ...P) <-chan P {
	if interval <= 0 {
		return Generator(items...)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	out := make(chan P)
	go func() {
		defer close(out)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for _, item := range items {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			select {
			case <-ctx.Done():
				return
			case out <- item:
			}
		}
	}()
	return out
}
