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
	"io"
)

// Source is the single chunk-producer shape the driver loop consumes: an
// asynchronous pull. Pull iterators, context-aware pull iterators and push
// sequences are all normalized to it by the adapters below, so the driver
// never branches on the producer kind.
//
// Next returns the next chunk, ok=false once the supply is exhausted, or a
// non-nil error when retrieval failed. Chunks are concatenable fragments of
// the element type the Attempt consumes. Next is only ever called from the
// driver goroutine, and never again after it reported ok=false or an error.
type Source[T any] interface {
	Next(ctx context.Context) (chunk []T, ok bool, err error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc[T any] func(ctx context.Context) ([]T, bool, error)

func (f SourceFunc[T]) Next(ctx context.Context) ([]T, bool, error) {
	return f(ctx)
}

// Pull adapts a synchronous pull iterator. The iterator signals exhaustion by
// returning ok=false; retrieval never fails.
func Pull[T any](next func() ([]T, bool)) Source[T] {
	return SourceFunc[T](func(context.Context) ([]T, bool, error) {
		chunk, ok := next()
		return chunk, ok, nil
	})
}

// PullContext adapts an asynchronous pull iterator whose retrieval may
// suspend and may fail.
func PullContext[T any](next func(ctx context.Context) ([]T, bool, error)) Source[T] {
	return SourceFunc[T](next)
}

// Chunks returns a Source with a fixed, finite supply of chunks.
func Chunks[T any](chunks ...[]T) Source[T] {
	i := 0
	return SourceFunc[T](func(context.Context) ([]T, bool, error) {
		if i >= len(chunks) {
			return nil, false, nil
		}
		chunk := chunks[i]
		i++
		return chunk, true, nil
	})
}

// Channel adapts an asynchronous push sequence: the producer drives delivery
// by sending on ch, and the adapter converts it to pull by receiving. The
// channel being closed signals exhaustion.
//
// If the context is canceled while a receive is in flight, Next returns
// ctx.Err(); the driver treats that as the cooperative stop signal, not as a
// retrieval failure, and still runs its flush-and-close protocol.
func Channel[T any](ch <-chan []T) Source[T] {
	return SourceFunc[T](func(ctx context.Context) ([]T, bool, error) {
		select {
		case <-ctx.Done():
			return nil, false, ctx.Err()
		case chunk, ok := <-ch:
			if !ok {
				return nil, false, nil
			}
			return chunk, true, nil
		}
	})
}

// Reader adapts an io.Reader into a byte-chunk Source, reading at most
// chunkSize bytes per pull (4096 when chunkSize <= 0). Each chunk is copied
// out of the read buffer so it stays valid once appended.
//
// Framing is the reader's business: streamparse only cares that consecutive
// reads concatenate to the logical input stream.
func Reader(r io.Reader, chunkSize int) Source[byte] {
	if chunkSize <= 0 {
		chunkSize = 4096
	}
	buf := make([]byte, chunkSize)
	return SourceFunc[byte](func(context.Context) ([]byte, bool, error) {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			return chunk, true, nil
		}
		if err == io.EOF {
			return nil, false, nil
		}
		if err != nil {
			return nil, false, err
		}
		// A zero-byte read with no error: report an empty chunk and let the
		// driver pull again.
		return nil, true, nil
	})
}
