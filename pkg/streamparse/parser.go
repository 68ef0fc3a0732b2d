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

import "bufio"

// Attempt is the single-shot parser contract the engine wraps.
//
// Given a buffer of accumulated input, an Attempt either:
//
//   - recognizes one value at the front of the buffer, consumes the
//     recognized prefix in place (via Consume or Set) and returns
//     (value, true), or
//   - recognizes nothing, leaves the buffer unchanged, and returns
//     (zero, false).
//
// Returning no value is not an error; it is the normal "not enough input
// yet" signal and the engine simply keeps accumulating chunks.
//
// Attempts must be pure functions of their input: no hidden state, and safe
// to invoke repeatedly on growing prefixes of the same logical stream. The
// engine re-parses from the last confirmed boundary on every chunk arrival,
// so a stateful Attempt would observe the same prefix more than once.
// Attempts may mutate the buffer destructively on success; the engine always
// calls them on a disposable Snapshot.
type Attempt[T, V any] func(buf *Buffer[T]) (V, bool)

// AttemptFromSplitFunc bridges a bufio.SplitFunc into the Attempt contract.
//
// The split function is always called with atEOF=false: a SplitFunc that
// requests more data (advance=0, nil token) is a no-match, and the engine's
// own Lazy policy plus end-of-source flush replace the SplitFunc's atEOF
// final-token behavior. Skip-only steps (advance>0, nil token) are followed
// until a token or a request for more data is produced; the buffer is only
// consumed when a token is recognized.
//
// The returned token is copied, so it remains valid after the snapshot it
// was cut from is discarded.
//
// This makes every line/word/expression scanner written for bufio.Scanner a
// ready-made single-shot parser:
//
//	attempt := streamparse.AttemptFromSplitFunc(bufio.ScanWords)
//	words, err := streamparse.Collect(ctx, src, attempt)
func AttemptFromSplitFunc(split bufio.SplitFunc) Attempt[byte, []byte] {
	return func(buf *Buffer[byte]) ([]byte, bool) {
		data := buf.Elems()
		off := 0
		for {
			advance, token, err := split(data[off:], false)
			if err != nil {
				// Intra-attempt recovery is out of scope: a failing split is
				// treated as "recognized nothing".
				return nil, false
			}
			if token != nil {
				out := make([]byte, len(token))
				copy(out, token)
				buf.Consume(off + advance)
				return out, true
			}
			if advance == 0 {
				return nil, false
			}
			off += advance
		}
	}
}
