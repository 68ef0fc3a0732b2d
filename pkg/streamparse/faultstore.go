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
	"fmt"
	"sync"
)

// PanicError reports a panic recovered from a single-shot Attempt.
//
// Panics are treated as fatal grammar faults (invariant violations, nil
// deref, out-of-bounds, ...). The driver recovers them so that a faulty
// Attempt cannot crash a goroutine, and surfaces them as a regular error
// from Run, or through Stream.Err for the push-stream API.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("streamparse: attempt panicked: %v", e.Value)
}

// Fault holds a failure recorded by a FaultStore. Stack is non-empty only
// when the failure originated in a recovered panic.
type Fault struct {
	Err   error
	Stack []byte
}

// FaultStore is a write-once failure holder.
//
// The push-stream API has no natural "return error" path: the driver runs in
// its own goroutine and the consumer only sees a channel. FaultStore is the
// out-of-band error channel for that shape.
//
// Concurrency contract:
//
//   - Store is write-once: the first call wins, subsequent calls are ignored.
//   - Load is safe to call concurrently with Store.
//   - Load returns a COPY of the recorded stack trace so callers can keep or
//     modify it without affecting the store.
type FaultStore struct {
	once  sync.Once
	mu    sync.Mutex
	fault Fault
	set   bool
}

// Store records the first failure. A nil err is ignored. The stack is
// defensively copied so callers can pass transient slices safely.
func (fs *FaultStore) Store(err error, stack []byte) {
	if fs == nil || err == nil {
		return
	}
	fs.once.Do(func() {
		var stackCopy []byte
		if len(stack) > 0 {
			stackCopy = make([]byte, len(stack))
			copy(stackCopy, stack)
		}

		fs.mu.Lock()
		fs.fault = Fault{Err: err, Stack: stackCopy}
		fs.set = true
		fs.mu.Unlock()
	})
}

// Load retrieves the recorded failure, if any.
func (fs *FaultStore) Load() (Fault, bool) {
	if fs == nil {
		return Fault{}, false
	}

	fs.mu.Lock()
	fault := fs.fault
	ok := fs.set
	fs.mu.Unlock()

	if !ok {
		return Fault{}, false
	}

	if len(fault.Stack) > 0 {
		stackCopy := make([]byte, len(fault.Stack))
		copy(stackCopy, fault.Stack)
		fault.Stack = stackCopy
	}

	return fault, true
}
