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
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerComplete(t *testing.T) {
	tests := []struct {
		name  string
		total int
		want  []int
	}{
		{name: "single_job", total: 1, want: []int{100}},
		{name: "two_jobs", total: 2, want: []int{50, 100}},
		{name: "three_jobs_rounding", total: 3, want: []int{33, 67, 100}},
		{name: "seven_jobs", total: 7, want: []int{14, 29, 43, 57, 71, 86, 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []int
			tr := NewTracker(tt.total, func(pct int) {
				got = append(got, pct)
			})

			for range tt.total {
				tr.Complete()
			}

			assert.Equal(t, tt.want, got, "reported percentages should match")
			assert.Equal(t, tt.total, tr.Completed())
			assert.Equal(t, 100, tr.Percent())
		})
	}
}

func TestTrackerNilCallback(t *testing.T) {
	tr := NewTracker(4, nil)
	assert.Equal(t, 25, tr.Complete())
	assert.Equal(t, 50, tr.Complete())
	assert.Equal(t, 2, tr.Completed())
	assert.Equal(t, 4, tr.Total())
}

func TestTrackerDoesNotOvershoot(t *testing.T) {
	tr := NewTracker(1, nil)
	assert.Equal(t, 100, tr.Complete())
	assert.Equal(t, 100, tr.Complete())
	assert.Equal(t, 1, tr.Completed())
}

func TestTrackerConcurrentReportsAreMonotonic(t *testing.T) {
	const total = 200

	var (
		mu  sync.Mutex
		got []int
	)
	tr := NewTracker(total, func(pct int) {
		mu.Lock()
		got = append(got, pct)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for range total {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.Complete()
		}()
	}
	wg.Wait()

	require.Len(t, got, total)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i], got[i-1], "progress went backwards at report %d", i)
	}
	assert.Equal(t, 100, got[len(got)-1])
}
