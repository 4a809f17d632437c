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

package log

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/chunkrc/pkg/errdefs"
	"github.com/walteh/chunkrc/pkg/pipeline"
	"github.com/walteh/chunkrc/pkg/status"
	"gitlab.com/tozd/go/errors"
)

func TestLogger(t *testing.T) {
	// Disable color for testing
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name     string
		op       func(t *testing.T, logger *Logger)
		wantLogs []string
	}{
		{
			name: "log_batch",
			op: func(t *testing.T, logger *Logger) {
				logger.StartBatch(BatchOperation{
					Source: "chunkrc.yaml",
					Files:  3,
				})
			},
			wantLogs: []string{
				"[processing chunkrc.yaml]",
				"◆ 3 files •",
			},
		},
		{
			name: "log_messages",
			op: func(t *testing.T, logger *Logger) {
				logger.Info("info message")
				logger.Warning("warning message")
				logger.Error("error message")
				logger.Success("success message")
			},
			wantLogs: []string{
				"ℹ️  info message",
				"⚠️  warning message",
				"❌ error message",
				"✅ success message",
			},
		},
		{
			name: "log_formatted_messages",
			op: func(t *testing.T, logger *Logger) {
				logger.Infof("info %s", "test")
				logger.Warningf("warning %s", "test")
				logger.Errorf("error %s", "test")
				logger.Successf("success %s", "test")
			},
			wantLogs: []string{
				"ℹ️  info test",
				"⚠️  warning test",
				"❌ error test",
				"✅ success test",
			},
		},
		{
			name: "log_header",
			op: func(t *testing.T, logger *Logger) {
				logger.Header("filtering files")
			},
			wantLogs: []string{
				"chunkrc • filtering files",
			},
		},
		{
			name: "log_newline",
			op: func(t *testing.T, logger *Logger) {
				logger.Info("first")
				logger.LogNewline()
				logger.Info("second")
			},
			wantLogs: []string{
				"ℹ️  first",
				"",
				"ℹ️  second",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := New(buf, zerolog.Disabled)

			tt.op(t, logger)

			output := strings.TrimSpace(buf.String())
			lines := strings.Split(output, "\n")

			require.Equal(t, len(tt.wantLogs), len(lines), "number of log lines should match")
			for i, want := range tt.wantLogs {
				assert.Equal(t, want, strings.TrimSpace(lines[i]), "log line %d should match", i)
			}
		})
	}
}

func TestFileJobFormatting(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name     string
		job      FileJob
		contains []string
	}{
		{
			name:     "committed",
			job:      FileJob{Input: "a.txt", Output: "out/a.txt", Chunks: 2, Bytes: 42, Outcome: status.OutcomeCommitted},
			contains: []string{"✓", "a.txt", "2 chunks", "committed", "42 B → out/a.txt"},
		},
		{
			name:     "degraded",
			job:      FileJob{Input: "b.txt", Output: "out/b.txt", Chunks: 5, Failures: 2, Outcome: status.OutcomeDegraded},
			contains: []string{"⟳", "degraded", "2 failed chunks → out/b.txt"},
		},
		{
			name:     "failed",
			job:      FileJob{Input: "c.txt", Outcome: status.OutcomeFailed, Err: errors.New("opening input: not found")},
			contains: []string{"✗", "failed", "opening input: not found"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := New(buf, zerolog.Disabled)

			logger.LogFileJob(tt.job)

			output := buf.String()
			assert.True(t, strings.HasPrefix(output, "    "), "job lines should be indented")
			for _, s := range tt.contains {
				assert.Contains(t, output, s)
			}
		})
	}
}

func TestLoggerObserver(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	buf := &bytes.Buffer{}
	logger := New(buf, zerolog.Disabled)

	logger.StartBatch(BatchOperation{Source: "flags", Files: 3})
	logger.FileStarted(pipeline.FileJob{Input: "a.txt", Output: "a.out"})
	logger.FileFinished(&pipeline.FileResult{
		Job:       pipeline.FileJob{Input: "a.txt", Output: "a.out"},
		Chunks:    1,
		Bytes:     4,
		Committed: true,
		Duration:  time.Millisecond,
	})
	logger.FileFinished(&pipeline.FileResult{
		Job:       pipeline.FileJob{Input: "b.txt", Output: "b.out"},
		Chunks:    2,
		Committed: true,
		Failures:  []pipeline.ChunkFailure{{Index: 2, Err: errors.New("x")}},
	})
	logger.FileFinished(&pipeline.FileResult{
		Job: pipeline.FileJob{Input: "c.txt", Output: "c.out"},
		Err: errors.Errorf("opening input: %w", errdefs.ErrNotFound),
	})
	logger.FileFinished(nil)

	counts := logger.EndBatch()
	assert.Equal(t, 1, counts[status.OutcomeCommitted])
	assert.Equal(t, 1, counts[status.OutcomeDegraded])
	assert.Equal(t, 1, counts[status.OutcomeFailed])
	assert.Nil(t, logger.EndBatch(), "second end should be a no-op")

	out := buf.String()
	assert.Contains(t, out, "a.txt")
	assert.Contains(t, out, "1 failed chunks → b.out")
	assert.Contains(t, out, "not found")
}
