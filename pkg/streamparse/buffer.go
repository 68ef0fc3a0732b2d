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

// Buffer holds the accumulated, not-yet-consumed input of one engine
// invocation. It is a plain growable sequence of the element type the
// Attempt consumes (bytes, runes, tokens, ...).
//
// The engine never hands its committed Buffer to an Attempt directly.
// Attempts are allowed to mutate their input destructively, so every parse
// attempt runs on an independent Snapshot; only when a match is confirmed is
// the snapshot's leftover committed back. An Attempt that fails must leave
// its buffer unchanged.
//
// Buffer is not safe for concurrent use; it is owned exclusively by one
// driver loop.
type Buffer[T any] struct {
	elems []T
}

// NewBuffer returns a Buffer seeded with the given elements.
func NewBuffer[T any](elems ...T) Buffer[T] {
	return Buffer[T]{elems: elems}
}

// Append extends the buffer with a chunk. It never blocks and performs no I/O.
func (b *Buffer[T]) Append(chunk []T) {
	b.elems = append(b.elems, chunk...)
}

// Snapshot returns an independent copy of the buffer. Mutating the snapshot
// (or the buffer) afterwards does not affect the other.
func (b *Buffer[T]) Snapshot() Buffer[T] {
	if len(b.elems) == 0 {
		return Buffer[T]{}
	}
	elems := make([]T, len(b.elems))
	copy(elems, b.elems)
	return Buffer[T]{elems: elems}
}

// Commit replaces the buffer's contents with the leftover tail of a confirmed
// match.
func (b *Buffer[T]) Commit(leftover Buffer[T]) {
	b.elems = leftover.elems
}

// Len returns the number of buffered elements.
func (b *Buffer[T]) Len() int {
	return len(b.elems)
}

// Elems exposes the buffered elements. The returned slice aliases the
// buffer's storage; Attempts may read it freely but should use Consume or Set
// to record what they recognized.
func (b *Buffer[T]) Elems() []T {
	return b.elems
}

// Consume drops the first n elements, typically the prefix an Attempt just
// recognized. n is clamped to the buffer length.
func (b *Buffer[T]) Consume(n int) {
	if n <= 0 {
		return
	}
	if n >= len(b.elems) {
		b.elems = b.elems[:0]
		return
	}
	b.elems = b.elems[n:]
}

// Set replaces the buffered elements in place, for Attempts that compute an
// arbitrary remainder rather than a simple prefix cut.
func (b *Buffer[T]) Set(elems []T) {
	b.elems = elems
}
