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

package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/chunkrc/pkg/errdefs"
)

func TestParseFailurePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    FailurePolicy
		wantErr bool
	}{
		{in: "", want: PolicySubstitute},
		{in: "substitute", want: PolicySubstitute},
		{in: " Abort ", want: PolicyAbort},
		{in: "retry", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFailurePolicy(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, errdefs.ErrInvalidConfiguration)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, mustParse(t, got.String()))
		})
	}
}

func mustParse(t *testing.T, s string) FailurePolicy {
	t.Helper()
	p, err := ParseFailurePolicy(s)
	require.NoError(t, err)
	return p
}

func TestStateString(t *testing.T) {
	tests := map[State]string{
		StateIdle:       "idle",
		StateValidating: "validating",
		StateRunning:    "running",
		StateCompleted:  "completed",
		StateFailed:     "failed",
		StateCancelled:  "cancelled",
		State(42):       "unknown",
	}
	for st, want := range tests {
		assert.Equal(t, want, st.String())
	}

	assert.False(t, StateRunning.Terminal())
	assert.True(t, StateCancelled.Terminal())
}

func TestOptionsDefaults(t *testing.T) {
	o := newOptions(nil)
	require.NoError(t, o.validate())

	assert.Equal(t, 8192, o.ChunkSize)
	assert.Equal(t, PolicySubstitute, o.Policy)
	assert.NotNil(t, o.Opener)
	assert.IsType(t, NopObserver{}, o.Observer)
	assert.Equal(t, "boom", o.Placeholder(3, assertErr("boom")))
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
