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

package status

import (
	"math"
	"sync"
)

// 📈 Tracker counts finished file jobs and reports the batch percentage.
//
// Complete increments the counter and invokes the callback while holding the
// same lock, so reports are never delivered out of order.
type Tracker struct {
	mu        sync.Mutex
	total     int
	completed int
	cb        func(percent int)
}

// 🏭 NewTracker creates a tracker for total jobs. A nil callback is a no-op.
func NewTracker(total int, cb func(percent int)) *Tracker {
	return &Tracker{total: total, cb: cb}
}

// Complete records one finished job and returns the new percentage
func (t *Tracker) Complete() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.completed < t.total {
		t.completed++
	}
	pct := percent(t.completed, t.total)
	if t.cb != nil {
		t.cb(pct)
	}
	return pct
}

// Percent returns the current percentage without recording anything
func (t *Tracker) Percent() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return percent(t.completed, t.total)
}

// Completed returns the number of finished jobs
func (t *Tracker) Completed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.completed
}

// Total returns the number of jobs the tracker was created for
func (t *Tracker) Total() int {
	return t.total
}

func percent(completed, total int) int {
	if total <= 0 {
		return 100
	}
	return int(math.Round(float64(completed) * 100 / float64(total)))
}
