// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package reassemble restores index order for chunk results that complete in
// any order.
package reassemble

import (
	"iter"
	"sync"

	"gitlab.com/tozd/go/errors"
)

// 🧩 Reassembler is the per-file store of transformed chunks.
//
// Slots are a dense slice indexed by chunk number, so Drain can emit the
// contents in ascending order without sorting. Put is safe for concurrent
// use; Seal and Drain are called by the single goroutine that owns the run.
type Reassembler struct {
	mu      sync.Mutex
	slots   []string
	filled  []bool
	count   int
	sealed  bool
	drained bool
}

// 🏭 New creates a reassembler; sizeHint pre-sizes the slot slice
func New(sizeHint int) *Reassembler {
	if sizeHint < 0 {
		sizeHint = 0
	}
	return &Reassembler{
		slots:  make([]string, 0, sizeHint),
		filled: make([]bool, 0, sizeHint),
	}
}

// 📥 Put stores the transformed content of chunk index
func (r *Reassembler) Put(index int, content string) error {
	if index < 1 {
		return errors.Errorf("chunk index %d out of range", index)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed && index > r.count {
		return errors.Errorf("chunk index %d beyond sealed count %d", index, r.count)
	}
	if index > len(r.slots) {
		r.grow(index)
	}
	if r.filled[index-1] {
		return errors.Errorf("chunk index %d received twice", index)
	}
	r.slots[index-1] = content
	r.filled[index-1] = true
	return nil
}

func (r *Reassembler) grow(n int) {
	for len(r.slots) < n {
		r.slots = append(r.slots, "")
		r.filled = append(r.filled, false)
	}
}

// 🔒 Seal fixes the number of chunks the file produced
func (r *Reassembler) Seal(count int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return errors.Errorf("already sealed with %d chunks", r.count)
	}
	if count < 0 || count < len(r.slots) {
		return errors.Errorf("sealed count %d below highest received index %d", count, len(r.slots))
	}
	r.grow(count)
	r.count = count
	r.sealed = true
	return nil
}

// 🔢 Received returns how many distinct chunks have been stored
func (r *Reassembler) Received() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, ok := range r.filled {
		if ok {
			n++
		}
	}
	return n
}

// 📤 Drain verifies that every index in 1..count arrived and returns the
// contents in ascending index order. It succeeds once per reassembler.
func (r *Reassembler) Drain() (iter.Seq[string], error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.sealed {
		return nil, errors.New("drain before seal")
	}
	if r.drained {
		return nil, errors.New("already drained")
	}
	for i, ok := range r.filled {
		if !ok {
			return nil, errors.Errorf("chunk index %d missing", i+1)
		}
	}

	r.drained = true
	slots := r.slots
	r.slots, r.filled = nil, nil

	return func(yield func(string) bool) {
		for i := range slots {
			if !yield(slots[i]) {
				return
			}
		}
	}, nil
}
