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

import "runtime/debug"

// decider owns the committed buffer and the pending-result slot, and runs the
// attempt-and-decide step. The driver feeds it once per chunk arrival and
// then with no chunk at all while draining the remaining values a single
// chunk may have completed.
//
// A match is classified as:
//
//   - confirmed: Eager policy, or Lazy with a non-empty leftover (the
//     leftover proves the match could not have grown further by consuming
//     more of the current buffer). The leftover is committed and the value
//     is returned for delivery.
//   - ambiguous: Lazy with an empty leftover. The value is parked in the
//     pending slot, overwriting any previous one, and the buffer stays
//     uncommitted so the next round re-parses from the confirmed boundary.
//   - not yet: the attempt recognized nothing. The buffer stays uncommitted
//     and an existing pending value is left untouched.
//
// At most one pending value is held; later ambiguous matches supersede it.
type decider[T, V any] struct {
	attempt    Attempt[T, V]
	policy     Policy
	buf        Buffer[T]
	pending    V
	hasPending bool
}

// feed appends a chunk (nil when re-attempting after a confirmed match),
// runs the attempt on a snapshot and classifies the outcome. confirmed is
// true when v must be delivered now. A panic inside the attempt is recovered
// into a *PanicError.
func (d *decider[T, V]) feed(chunk []T) (v V, confirmed bool, err error) {
	d.buf.Append(chunk)

	snap := d.buf.Snapshot()
	value, ok, err := d.run(&snap)
	if err != nil || !ok {
		return v, false, err
	}

	if d.policy == Lazy && snap.Len() == 0 {
		d.pending = value
		d.hasPending = true
		return v, false, nil
	}

	d.buf.Commit(snap)
	d.clearPending()
	return value, true, nil
}

// flush hands out the pending value, if any, and clears the slot. It is
// called exactly once, while draining.
func (d *decider[T, V]) flush() (V, bool) {
	v, ok := d.pending, d.hasPending
	d.clearPending()
	return v, ok
}

func (d *decider[T, V]) clearPending() {
	var zero V
	d.pending = zero
	d.hasPending = false
}

// run invokes the attempt on the snapshot, containing panics so that a
// faulty grammar cannot crash the driver goroutine.
func (d *decider[T, V]) run(snap *Buffer[T]) (v V, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	v, ok = d.attempt(snap)
	return v, ok, nil
}
