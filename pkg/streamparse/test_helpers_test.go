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
	"strconv"
)

// collectWithContext drains a channel until it is closed or ctx is done.
// It keeps tests from hanging when a stage forgets to close its output.
func collectWithContext[T any](ctx context.Context, ch <-chan T) ([]T, error) {
	items := make([]T, 0, 8)
	for {
		select {
		case <-ctx.Done():
			return items, ctx.Err()
		case v, ok := <-ch:
			if !ok {
				return items, nil
			}
			items = append(items, v)
		}
	}
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// readInt greedily consumes a leading run of digits as one integer.
// It is the canonical greedy grammar of the Lazy/Eager tests.
func readInt(buf *Buffer[byte]) (int, bool) {
	data := buf.Elems()
	i := 0
	for i < len(data) && isDigit(data[i]) {
		i++
	}
	if i == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(string(data[:i]))
	if err != nil {
		return 0, false
	}
	buf.Consume(i)
	return n, true
}

// skipReadInt skips leading non-digits, then greedily reads an integer.
func skipReadInt(buf *Buffer[byte]) (int, bool) {
	data := buf.Elems()
	start := 0
	for start < len(data) && !isDigit(data[start]) {
		start++
	}
	end := start
	for end < len(data) && isDigit(data[end]) {
		end++
	}
	if end == start {
		return 0, false
	}
	n, err := strconv.Atoi(string(data[start:end]))
	if err != nil {
		return 0, false
	}
	buf.Consume(end)
	return n, true
}

// terminatedInt skips non-digits, reads an integer and succeeds only when a
// non-digit terminator follows, which it does not consume. On success the
// leftover is therefore never empty: a non-greedy grammar in the policy
// sense.
func terminatedInt(buf *Buffer[byte]) (int, bool) {
	data := buf.Elems()
	start := 0
	for start < len(data) && !isDigit(data[start]) {
		start++
	}
	end := start
	for end < len(data) && isDigit(data[end]) {
		end++
	}
	if end == start || end == len(data) {
		return 0, false
	}
	n, err := strconv.Atoi(string(data[start:end]))
	if err != nil {
		return 0, false
	}
	buf.Consume(end)
	return n, true
}

func byteChunks(chunks ...string) [][]byte {
	out := make([][]byte, len(chunks))
	for i, c := range chunks {
		out[i] = []byte(c)
	}
	return out
}
