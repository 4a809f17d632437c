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
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/walteh/chunkrc/pkg/pipeline"
	"github.com/walteh/chunkrc/pkg/status"
)

// 🎯 FileJob is one finished file job as shown on the console
type FileJob struct {
	Input    string         // Input location
	Output   string         // Output path
	Chunks   int            // Number of chunks split from the input
	Bytes    int64          // Bytes committed
	Failures int            // Chunks that failed their transform
	Outcome  status.Outcome // How the job ended
	Err      error          // Failure cause, if any
}

// FileJobFromResult converts a pipeline result for display
func FileJobFromResult(res *pipeline.FileResult) FileJob {
	return FileJob{
		Input:    res.Job.Input,
		Output:   res.Job.Output,
		Chunks:   res.Chunks,
		Bytes:    res.Bytes,
		Failures: len(res.Failures),
		Outcome:  res.Outcome(),
		Err:      res.Err,
	}
}

// 📦 BatchOperation describes a batch run for logging
type BatchOperation struct {
	Source string // Where the jobs came from (config path or flags)
	Files  int    // Number of file jobs
}

// 🎯 Logger handles structured logging with console output.
//
// Logger is a pipeline.Observer: finished files are printed as they land.
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
	batch   *BatchOperation
	jobs    []FileJob
}

var _ pipeline.Observer = (*Logger)(nil)

// 🏭 New creates a new logger
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

// 📝 formatFileJob formats a file job for display
func (l *Logger) formatFileJob(job FileJob) string {
	line := status.FormatJobLine(job.Input, job.Chunks, job.Outcome)

	var detail string
	switch {
	case job.Err != nil:
		detail = color.New(color.FgRed).Sprint(job.Err.Error())
	case job.Failures > 0:
		detail = color.New(color.FgYellow).Sprintf("%d failed chunks → %s", job.Failures, job.Output)
	default:
		detail = color.New(color.Faint).Sprintf("%d B → %s", job.Bytes, job.Output)
	}
	return line + " " + detail
}

// 📝 LogFileJob logs a finished file job
func (l *Logger) LogFileJob(job FileJob) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.jobs = append(l.jobs, job)

	fmt.Fprintln(l.console, l.formatFileJob(job))

	ev := l.zlog.Info()
	if job.Err != nil {
		ev = l.zlog.Error().Err(job.Err)
	}
	ev.Str("input", job.Input).
		Str("output", job.Output).
		Int("chunks", job.Chunks).
		Int64("bytes", job.Bytes).
		Int("failures", job.Failures).
		Str("outcome", job.Outcome.String()).
		Msg("file job")
}

// FileStarted implements pipeline.Observer
func (l *Logger) FileStarted(job pipeline.FileJob) {
	l.zlog.Debug().Str("input", job.Input).Str("output", job.Output).Msg("file job started")
}

// FileFinished implements pipeline.Observer
func (l *Logger) FileFinished(res *pipeline.FileResult) {
	if res == nil {
		return
	}
	l.LogFileJob(FileJobFromResult(res))
}

// 📝 StartBatch starts a new batch
func (l *Logger) StartBatch(op BatchOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.batch = &op
	l.jobs = nil

	fmt.Fprintf(l.console, "[processing %s]\n",
		color.New(color.FgCyan).Sprint(op.Source))

	fmt.Fprintf(l.console, "%s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprintf("%d files", op.Files),
		color.New(color.Faint).Sprint("•"))

	l.zlog.Info().
		Str("source", op.Source).
		Int("files", op.Files).
		Msg("starting batch")
}

// 📝 EndBatch ends the current batch and returns the per-outcome counts
func (l *Logger) EndBatch() map[status.Outcome]int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.batch == nil {
		return nil
	}

	counts := map[status.Outcome]int{}
	for _, j := range l.jobs {
		counts[j.Outcome]++
	}

	l.zlog.Info().
		Str("source", l.batch.Source).
		Int("files", len(l.jobs)).
		Int("committed", counts[status.OutcomeCommitted]+counts[status.OutcomeDegraded]).
		Int("failed", counts[status.OutcomeFailed]).
		Msg("batch complete")

	l.batch = nil
	l.jobs = nil
	return counts
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("chunkrc")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
