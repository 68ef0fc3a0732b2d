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

import "context"

// Feedback is a sink's instruction after receiving a value.
type Feedback int

const (
	// Continue lets the driver keep pulling chunks.
	Continue Feedback = iota
	// Finish asks the driver to stop pulling and move to its close protocol.
	Finish
)

func (f Feedback) String() string {
	switch f {
	case Continue:
		return "continue"
	case Finish:
		return "finish"
	default:
		return "unknown"
	}
}

// Sink receives the engine's confirmed values.
//
// Whatever termination path is taken (source exhaustion, sink-requested
// Finish, cancellation), a sink always observes, in order: zero or more
// confirmed values via Deliver, optionally one final flushed pending value,
// then exactly one Close. Close is the termination signal: no further values
// will ever arrive.
//
// A non-nil error from Deliver aborts the run immediately; in that case the
// draining flush does not happen and Close is not guaranteed to be called.
type Sink[V any] interface {
	Deliver(ctx context.Context, v V) (Feedback, error)
	Close(ctx context.Context) error
}

// SinkFunc adapts a synchronous callback into a Sink. The callback is invoked
// in-line on the driver goroutine and cannot fail; its Close is a no-op.
type SinkFunc[V any] func(v V) Feedback

func (f SinkFunc[V]) Deliver(_ context.Context, v V) (Feedback, error) {
	return f(v), nil
}

func (f SinkFunc[V]) Close(context.Context) error {
	return nil
}

// AsyncSinkFunc adapts a context-aware callback into a Sink. Its feedback is
// awaited before the driver proceeds, which is how a consumer exerts flow
// control over the source. Returning an error aborts the run.
type AsyncSinkFunc[V any] func(ctx context.Context, v V) (Feedback, error)

func (f AsyncSinkFunc[V]) Deliver(ctx context.Context, v V) (Feedback, error) {
	return f(ctx, v)
}

func (f AsyncSinkFunc[V]) Close(context.Context) error {
	return nil
}

// SinkFuncs bundles a delivery callback with an optional close hook for
// consumers that need to observe the termination signal explicitly.
//
// A nil OnValue accepts every value with Continue; a nil OnClose is a no-op.
type SinkFuncs[V any] struct {
	OnValue func(ctx context.Context, v V) (Feedback, error)
	OnClose func(ctx context.Context) error
}

func (s SinkFuncs[V]) Deliver(ctx context.Context, v V) (Feedback, error) {
	if s.OnValue == nil {
		return Continue, nil
	}
	return s.OnValue(ctx, v)
}

func (s SinkFuncs[V]) Close(ctx context.Context) error {
	if s.OnClose == nil {
		return nil
	}
	return s.OnClose(ctx)
}
