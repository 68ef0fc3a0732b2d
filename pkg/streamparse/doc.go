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

// Package streamparse feeds incrementally arriving chunks of input into a
// single-shot parser and coalesces the outcomes into a stream of confirmed
// values.
//
// The single-shot parser — the Attempt — only knows how to recognize one value
// at the front of a complete buffer. streamparse supplies everything around
// it: the accumulation buffer, the "has this match stabilized yet?" decision
// (Lazy vs Eager policy), the delivery and backpressure protocol toward the
// consumer, and a uniform treatment of pull, asynchronous-pull and push chunk
// producers.
//
// A minimal invocation looks like:
//
//	src := streamparse.Chunks([]byte("1"), []byte("2"), []byte("3"))
//	values, err := streamparse.Collect(ctx, src, readInt)
//
// where readInt is an Attempt[byte, int64]. With the default Lazy policy the
// greedy integer above is delivered once, as 123, when the source is
// exhausted; with Eager it is delivered three times, as 1, 2 and 3.
//
// One engine invocation owns its buffer exclusively and runs as a single
// logical driver; to parse several independent chunk streams concurrently,
// start one invocation per stream. Invocations share nothing.
//
// The grammar side is deliberately out of scope. Attempts must stay stateless
// so they can be re-run on growing prefixes of the same logical stream; see
// the Attempt documentation for the exact contract.
package streamparse
