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
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSink keeps a trace of every sink interaction so ordering and
// exactly-once guarantees can be asserted.
type recordingSink struct {
	events   []string
	feedback Feedback
}

func (r *recordingSink) Deliver(_ context.Context, v int) (Feedback, error) {
	r.events = append(r.events, "deliver:"+strconv.Itoa(v))
	return r.feedback, nil
}

func (r *recordingSink) Close(context.Context) error {
	r.events = append(r.events, "close")
	return nil
}

func TestRun_LazySuppressesEarlyDeliveryOnGreedyGrammar(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	values, err := Collect(ctx, Chunks(byteChunks("1", "2", "3")...), readInt)
	require.NoError(t, err)
	assert.Equal(t, []int{123}, values)
}

func TestRun_EagerDeliversEveryMatchImmediately(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	values, err := Collect(ctx, Chunks(byteChunks("1", "2", "3")...), readInt, WithPolicy(Eager))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, values)
}

func TestRun_LazyConfirmsOnUnconsumedBoundary(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// The trailing non-digit proves the boundary without being consumed.
	lazy, err := Collect(ctx, Chunks(byteChunks("1", "2", "a")...), readInt)
	require.NoError(t, err)
	assert.Equal(t, []int{12}, lazy)

	eager, err := Collect(ctx, Chunks(byteChunks("1", "2", "a")...), readInt, WithPolicy(Eager))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, eager)
}

func TestRun_NoMatchAccumulatesAcrossChunks(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	values, err := Collect(ctx, Chunks(byteChunks("1", "2", "a34", "56b")...), skipReadInt)
	require.NoError(t, err)
	assert.Equal(t, []int{12, 3456}, values)
}

func TestRun_DrainsEveryValueFromASingleChunk(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// One chunk completing four values: all of them must come out, in
	// order, not just the first.
	lazy, err := Collect(ctx, Chunks(byteChunks("1 2 3 4")...), skipReadInt)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, lazy)

	eager, err := Collect(ctx, Chunks(byteChunks("1 2 3 4")...), skipReadInt, WithPolicy(Eager))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, eager)
}

func TestRun_MultiValueChunksPreserveOrderAcrossPulls(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	chunks := byteChunks("1 2", " 3 ")

	lazy, err := Collect(ctx, Chunks(chunks...), skipReadInt)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, lazy)

	eager, err := Collect(ctx, Chunks(chunks...), skipReadInt, WithPolicy(Eager))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, eager)
}

func TestRun_EagerAndLazyAgreeOnNonGreedyGrammar(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// terminatedInt never leaves an empty leftover on success, so the policy
	// cannot make a difference.
	chunks := byteChunks("12a", "34b", "5")

	lazy, err := Collect(ctx, Chunks(chunks...), terminatedInt)
	require.NoError(t, err)

	eager, err := Collect(ctx, Chunks(chunks...), terminatedInt, WithPolicy(Eager))
	require.NoError(t, err)

	assert.Equal(t, lazy, eager)
	assert.Equal(t, []int{12, 34}, lazy)
}

func TestRun_TerminationSignalIsAlwaysLastAndExactlyOnce(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	sink := &recordingSink{feedback: Continue}
	err := Run(ctx, Chunks(byteChunks("1", "2", "a")...), readInt, sink)
	require.NoError(t, err)

	assert.Equal(t, []string{"deliver:12", "close"}, sink.events)
}

func TestRun_EarlyFinishStopsConsumption(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	chunks := byteChunks("1a", "2b", "3c")
	pulls := 0
	src := Pull(func() ([]byte, bool) {
		if pulls >= len(chunks) {
			return nil, false
		}
		chunk := chunks[pulls]
		pulls++
		return chunk, true
	})

	sink := &recordingSink{feedback: Finish}
	err := Run(ctx, src, readInt, sink)
	require.NoError(t, err)

	assert.Equal(t, []string{"deliver:1", "close"}, sink.events)
	assert.Equal(t, 1, pulls, "no further chunks may be pulled after Finish")
}

func TestRun_CancellationMidStreamStillFlushesAndCloses(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The source cancels the invocation while the third retrieval is in
	// flight. The pending Lazy value must still be flushed and the sink
	// closed.
	pulls := 0
	src := PullContext(func(ctx context.Context) ([]byte, bool, error) {
		pulls++
		switch pulls {
		case 1:
			return []byte("1"), true, nil
		case 2:
			return []byte("2"), true, nil
		default:
			cancel()
			return nil, false, ctx.Err()
		}
	})

	sink := &recordingSink{feedback: Continue}
	err := Run(ctx, src, readInt, sink)
	require.NoError(t, err, "cancellation is cooperative, not an error")

	assert.Equal(t, []string{"deliver:12", "close"}, sink.events)
}

func TestRun_CancellationBeforeFirstPullStillCloses(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pulls := 0
	src := Pull(func() ([]byte, bool) {
		pulls++
		return []byte("1"), true
	})

	sink := &recordingSink{feedback: Continue}
	err := Run(ctx, src, readInt, sink)
	require.NoError(t, err)

	assert.Zero(t, pulls)
	assert.Equal(t, []string{"close"}, sink.events)
}

func TestRun_PendingValueSurvivesLaterNoMatch(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// Matches only when the whole buffer is a run of 'a'; any intruder makes
	// the attempt fail outright. The pending value parked by the first chunk
	// is neither cleared nor re-validated by the later no-match and is
	// flushed at exhaustion.
	aRun := func(buf *Buffer[byte]) (int, bool) {
		data := buf.Elems()
		if len(data) == 0 {
			return 0, false
		}
		for _, b := range data {
			if b != 'a' {
				return 0, false
			}
		}
		n := len(data)
		buf.Consume(n)
		return n, true
	}

	values, err := Collect(ctx, Chunks(byteChunks("aa", "!")...), aRun)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, values)
}

func TestRun_SourceFailurePropagatesWithoutClose(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	errBoom := errors.New("boom")
	src := PullContext(func(context.Context) ([]byte, bool, error) {
		return nil, false, errBoom
	})

	sink := &recordingSink{feedback: Continue}
	err := Run(ctx, src, readInt, sink)
	require.ErrorIs(t, err, errBoom)

	assert.Empty(t, sink.events, "neither flush nor close may run after a source failure")
}

func TestRun_SinkFailureAbortsWithoutDraining(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	errSink := errors.New("consumer broke")
	sink := AsyncSinkFunc[int](func(context.Context, int) (Feedback, error) {
		return Continue, errSink
	})

	err := Run(ctx, Chunks(byteChunks("1", "2", "3")...), readInt, sink, WithPolicy(Eager))
	require.ErrorIs(t, err, errSink)
}

func TestRun_AttemptPanicIsRecoveredIntoError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	attempt := func(*Buffer[byte]) (int, bool) {
		panic("bad grammar")
	}

	err := Run(ctx, Chunks(byteChunks("x")...), attempt, SinkFunc[int](func(int) Feedback { return Continue }))
	require.Error(t, err)

	var panicErr *PanicError
	require.ErrorAs(t, err, &panicErr)
	assert.Equal(t, "bad grammar", panicErr.Value)
	assert.NotEmpty(t, panicErr.Stack)
}

func TestRun_SinkFuncsCloseHookObservesTermination(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var values []int
	closes := 0
	sink := SinkFuncs[int]{
		OnValue: func(_ context.Context, v int) (Feedback, error) {
			values = append(values, v)
			return Continue, nil
		},
		OnClose: func(context.Context) error {
			closes++
			return nil
		},
	}

	require.NoError(t, Run(ctx, Chunks(byteChunks("7", "8")...), readInt, sink))
	assert.Equal(t, []int{78}, values)
	assert.Equal(t, 1, closes)
}
