// Copyright 2026 Benoit Pereira da Silva
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package streamparse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
)

// Option configures one engine invocation.
type Option func(*config)

type config struct {
	policy    Policy
	logger    *slog.Logger
	buffering Buffering
}

func newConfig(opts []Option) config {
	cfg := config{policy: Lazy, buffering: Unbounded()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithPolicy selects the consumption policy. The default is Lazy.
func WithPolicy(p Policy) Option {
	return func(cfg *config) { cfg.policy = p }
}

// WithLogger attaches a structured logger. Each confirmed delivery is logged
// at Info, dropped offers at Warn, failures at Error. A nil logger disables
// logging (the default).
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) { cfg.logger = logger }
}

// WithBuffering selects the queueing policy of the Stream returned by
// Values. The default is Unbounded. Run and Collect ignore it.
func WithBuffering(b Buffering) Option {
	return func(cfg *config) { cfg.buffering = b }
}

// Run drives one engine invocation to completion: it pulls chunks from src,
// accumulates them, runs the single-shot attempt after each arrival and
// delivers confirmed values to sink, in confirmation order.
//
// -----------------------------------------------------------------------------
// Scheduling model
//
// Run is the single logical driver of the invocation. It owns the buffer and
// the pending-result slot exclusively, performs no internal parallelism and
// needs no locking. It only ever suspends while pulling from an asynchronous
// source, while awaiting a sink's feedback, and at one cooperative yield
// point right after a successful delivery (so a hot producer cannot starve
// concurrently scheduled work).
//
// -----------------------------------------------------------------------------
// Termination
//
//   - Source exhaustion, a Finish feedback from the sink and context
//     cancellation all lead to the same drain protocol: a still-pending Lazy
//     value is flushed to the sink exactly once (its feedback is ignored),
//     then the sink is closed exactly once. Run returns nil on all three
//     paths: cancellation is cooperative, not an error.
//   - Cancellation is checked once per iteration, before pulling the next
//     chunk. It never aborts an in-flight parse attempt or delivery.
//   - A source retrieval failure or a sink delivery failure aborts the run
//     immediately and is returned wrapped. On these paths the drain protocol
//     does not run, so the sink is NOT guaranteed to have been closed.
//   - A panic inside the attempt is recovered into a *PanicError and aborts
//     the run the same way.
//
// Timeouts are not handled here; wrap the source or the sink with your own
// deadline logic.
func Run[T, V any](ctx context.Context, src Source[T], attempt Attempt[T, V], sink Sink[V], opts ...Option) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := newConfig(opts)

	d := decider[T, V]{attempt: attempt, policy: cfg.policy}
	delivered := 0

	for {
		// Cancellation is observed here and nowhere else: it prevents the
		// next pull, never an in-flight step.
		if ctx.Err() != nil {
			break
		}

		chunk, ok, err := src.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				// Cancellation landed while the retrieval was in flight.
				// Drain as usual.
				break
			}
			if cfg.logger != nil {
				cfg.logger.Error("streamparse: source failed", "err", err)
			}
			return fmt.Errorf("streamparse: pulling chunk: %w", err)
		}
		if !ok {
			break
		}

		// One chunk may complete several values. Re-run the attempt on the
		// grown buffer (without appending) until it stops confirming, so
		// every value is delivered in order before the next pull. Under
		// Lazy the final whole-buffer match parks in the pending slot
		// instead of confirming, which ends the drain.
		appended := chunk
		finished := false
		for {
			v, confirmed, err := d.feed(appended)
			appended = nil
			if err != nil {
				if cfg.logger != nil {
					cfg.logger.Error("streamparse: attempt failed", "err", err)
				}
				return err
			}
			if !confirmed {
				break
			}

			feedback, err := sink.Deliver(ctx, v)
			if err != nil {
				if cfg.logger != nil {
					cfg.logger.Error("streamparse: sink failed", "err", err)
				}
				return fmt.Errorf("streamparse: delivering value: %w", err)
			}
			if cfg.logger != nil {
				cfg.logger.Info("streamparse: delivered", "index", delivered, "policy", cfg.policy.String())
			}
			delivered++
			if feedback == Finish {
				finished = true
				break
			}

			// Cooperative yield after each delivery. Goroutines are
			// preemptively scheduled, so this is nearly a no-op here, but
			// it keeps the suspension point explicit.
			runtime.Gosched()
		}
		if finished {
			break
		}
	}

	// Draining: flush a pending Lazy value whose match the stream ended on,
	// ignoring its feedback. The close protocol must survive an already
	// canceled ctx, hence the detached context.
	closeCtx := context.WithoutCancel(ctx)
	if v, ok := d.flush(); ok {
		if _, err := sink.Deliver(closeCtx, v); err != nil {
			if cfg.logger != nil {
				cfg.logger.Error("streamparse: sink failed during flush", "err", err)
			}
			return fmt.Errorf("streamparse: flushing pending value: %w", err)
		}
		if cfg.logger != nil {
			cfg.logger.Info("streamparse: flushed pending value", "index", delivered, "policy", cfg.policy.String())
		}
	}

	// Closed: the termination signal, exactly once, always last.
	if err := sink.Close(closeCtx); err != nil {
		return fmt.Errorf("streamparse: closing sink: %w", err)
	}
	return nil
}

// Collect runs the engine with an accumulating sink and returns every
// confirmed value (including a final flushed pending value) in delivery
// order.
func Collect[T, V any](ctx context.Context, src Source[T], attempt Attempt[T, V], opts ...Option) ([]V, error) {
	out := make([]V, 0, 8)
	sink := SinkFunc[V](func(v V) Feedback {
		out = append(out, v)
		return Continue
	})
	if err := Run(ctx, src, attempt, sink, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Values runs the engine in its own goroutine and exposes the output as a
// push stream with backpressure.
//
// Consume Stream.C until it is closed, then check Stream.Err: a driver
// failure terminates the stream abruptly (no explicit value) and is
// observable there. Use WithBuffering to bound the queue; a full bounded
// queue Drops values rather than blocking the driver.
func Values[T, V any](ctx context.Context, src Source[T], attempt Attempt[T, V], opts ...Option) *Stream[V] {
	cfg := newConfig(opts)
	s := newStream[V](cfg.buffering)
	go func() {
		err := Run(ctx, src, attempt, &streamSink[V]{stream: s, logger: cfg.logger}, opts...)
		if err != nil {
			var panicErr *PanicError
			if errors.As(err, &panicErr) {
				s.finish(err, panicErr.Stack)
				return
			}
			s.finish(err, nil)
		}
	}()
	return s
}

// streamSink adapts a Stream to the Sink contract: Accepted and Dropped both
// map to Continue, Terminated maps to Finish.
type streamSink[V any] struct {
	stream *Stream[V]
	logger *slog.Logger
}

func (s *streamSink[V]) Deliver(_ context.Context, v V) (Feedback, error) {
	switch s.stream.Offer(v) {
	case Terminated:
		return Finish, nil
	case Dropped:
		if s.logger != nil {
			s.logger.Warn("streamparse: value dropped under backpressure")
		}
		return Continue, nil
	default:
		return Continue, nil
	}
}

func (s *streamSink[V]) Close(context.Context) error {
	s.stream.finish(nil, nil)
	return nil
}
