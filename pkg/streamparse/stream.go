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

import "sync"

// Outcome reports what happened to a value offered to a Stream.
//
// It is a three-way tagged variant rather than a boolean: Accepted and
// Dropped both permit the driver to continue, but they are operationally
// distinct and may need separate observability (a Dropped value is lost to
// backpressure).
type Outcome int

const (
	// Accepted means the value was queued for the consumer.
	Accepted Outcome = iota
	// Dropped means the value was discarded because the bounded queue was
	// full. The driver still continues.
	Dropped
	// Terminated means the consumer stopped the stream; the driver maps it
	// to Finish.
	Terminated
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case Dropped:
		return "dropped"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Buffering selects the queueing policy of a Stream.
type Buffering struct {
	capacity int
	bounded  bool
}

// Unbounded buffering accepts every offer; the internal queue grows as
// needed. This is the default.
func Unbounded() Buffering {
	return Buffering{}
}

// Bounded buffering holds at most capacity undelivered values; further
// offers are Dropped until the consumer catches up. capacity is clamped to a
// minimum of 1.
func Bounded(capacity int) Buffering {
	if capacity < 1 {
		capacity = 1
	}
	return Buffering{capacity: capacity, bounded: true}
}

// Stream is the push-style output of Values: confirmed values are offered to
// its internal queue by the driver and consumed from C by the caller.
//
// Streaming contract:
//
//   - C is closed exactly once, after the last value, whatever caused
//     termination. The closed channel is the termination marker.
//   - After C is closed, Err reports whether the driver aborted on a source
//     or sink failure. A nil Err means a clean close (including consumer
//     Stop and cancellation).
//   - Stop is the consumer's Finish signal: subsequent offers report
//     Terminated and the driver winds down through its usual close protocol.
//     Values still queued when Stop is called are discarded.
//
// A Stream is produced by one driver and consumed by one caller; Offer, Stop
// and the C receive side are safe to use from those two goroutines.
type Stream[V any] struct {
	mu        sync.Mutex
	queue     []V
	buffering Buffering
	stopped   bool
	closed    bool

	stopOnce sync.Once
	stopc    chan struct{}
	wake     chan struct{}
	out      chan V

	faults FaultStore
}

func newStream[V any](b Buffering) *Stream[V] {
	s := &Stream[V]{
		buffering: b,
		stopc:     make(chan struct{}),
		wake:      make(chan struct{}, 1),
		out:       make(chan V),
	}
	go s.forward()
	return s
}

// C returns the consumer side of the stream. Range over it; it is closed
// when no further values will ever arrive.
func (s *Stream[V]) C() <-chan V {
	return s.out
}

// Err reports the driver failure that terminated the stream abruptly, if
// any. It is meaningful once C has been closed.
func (s *Stream[V]) Err() error {
	fault, ok := s.faults.Load()
	if !ok {
		return nil
	}
	return fault.Err
}

// Fault is like Err but also exposes the stack trace recorded for recovered
// Attempt panics.
func (s *Stream[V]) Fault() (Fault, bool) {
	return s.faults.Load()
}

// Stop terminates the stream from the consumer side. It is safe to call more
// than once and safe to call while the driver is still offering values.
func (s *Stream[V]) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
	s.stopOnce.Do(func() { close(s.stopc) })
	s.signal()
}

// Offer hands a value to the stream and reports the three-way outcome. It is
// called by the driver for each confirmed value.
func (s *Stream[V]) Offer(v V) Outcome {
	s.mu.Lock()
	if s.stopped || s.closed {
		s.mu.Unlock()
		return Terminated
	}
	if s.buffering.bounded && len(s.queue) >= s.buffering.capacity {
		s.mu.Unlock()
		return Dropped
	}
	s.queue = append(s.queue, v)
	s.mu.Unlock()
	s.signal()
	return Accepted
}

// finish marks the producer side done. Queued values are still forwarded
// before C is closed. A non-nil err is recorded in the fault store (first
// one wins).
func (s *Stream[V]) finish(err error, stack []byte) {
	s.faults.Store(err, stack)
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.signal()
}

func (s *Stream[V]) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// forward owns the out channel: it drains the queue toward the consumer and
// closes out exactly once when the stream is done or stopped.
func (s *Stream[V]) forward() {
	defer close(s.out)
	for {
		s.mu.Lock()
		if s.stopped {
			s.mu.Unlock()
			return
		}
		if len(s.queue) > 0 {
			v := s.queue[0]
			s.queue = s.queue[1:]
			s.mu.Unlock()
			select {
			case s.out <- v:
			case <-s.stopc:
				return
			}
			continue
		}
		closed := s.closed
		s.mu.Unlock()
		if closed {
			return
		}
		// Sleep until the next offer / finish / stop. The wake channel is
		// buffered so a signal sent between the unlock above and this
		// receive is never lost.
		select {
		case <-s.wake:
		case <-s.stopc:
			return
		}
	}
}
