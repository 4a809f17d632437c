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
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/chunkrc/pkg/atomicfile"
	"github.com/walteh/chunkrc/pkg/chunk"
	"github.com/walteh/chunkrc/pkg/errdefs"
	"github.com/walteh/chunkrc/pkg/pool"
	"github.com/walteh/chunkrc/pkg/reassemble"
	"github.com/walteh/chunkrc/pkg/status"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/atomic"
)

// 📄 FileJob pairs one input location with its output path
type FileJob struct {
	Input  string
	Output string
}

// ❌ ChunkFailure records a chunk whose transform failed
type ChunkFailure struct {
	Index int
	Err   error
}

func (f ChunkFailure) Error() string {
	return fmt.Sprintf("chunk %d: %v", f.Index, f.Err)
}

func (f ChunkFailure) Unwrap() error {
	return f.Err
}

// 📊 FileResult summarizes one file job
type FileResult struct {
	Job       FileJob
	Chunks    int
	Bytes     int64
	Failures  []ChunkFailure
	Duration  time.Duration
	Committed bool
	Err       error
}

// Outcome classifies the result for display
func (r *FileResult) Outcome() status.Outcome {
	switch {
	case r.Committed && len(r.Failures) > 0:
		return status.OutcomeDegraded
	case r.Committed:
		return status.OutcomeCommitted
	case errdefs.IsCancelled(r.Err):
		return status.OutcomeCancelled
	case r.Err != nil:
		return status.OutcomeFailed
	default:
		return status.OutcomePending
	}
}

// 🚀 ProcessFile transforms a single input into output
func ProcessFile(ctx context.Context, input, output string, t Transform, opts ...Option) (*FileResult, error) {
	o := newOptions(opts)
	if err := o.validate(); err != nil {
		return nil, err
	}
	if t == nil {
		return nil, errors.Errorf("%w: transform is required", errdefs.ErrInvalidConfiguration)
	}
	if input == "" || output == "" {
		return nil, errors.Errorf("%w: input and output paths are required", errdefs.ErrInvalidConfiguration)
	}

	job := FileJob{Input: input, Output: output}
	o.Observer.FileStarted(job)
	res, err := runFile(ctx, job, t, &o)
	o.Observer.FileFinished(res)
	return res, err
}

// runFile drives one file through split, transform, reassemble and write.
// The returned result is never nil; its Err mirrors the returned error.
func runFile(ctx context.Context, job FileJob, t Transform, o *Options) (res *FileResult, err error) {
	start := time.Now()
	res = &FileResult{Job: job}
	defer func() {
		res.Duration = time.Since(start)
		res.Err = err
	}()

	logger := zerolog.Ctx(ctx).With().Str("input", job.Input).Str("output", job.Output).Logger()
	ctx = logger.WithContext(ctx)

	if ctx.Err() != nil {
		return res, errdefs.Cancelled(ctx)
	}

	rc, err := o.Opener.Open(ctx, job.Input)
	if err != nil {
		return res, errors.Errorf("opening input: %w", err)
	}
	defer rc.Close()

	logger.Debug().Int("chunk_size", o.ChunkSize).Msg("processing file")

	var (
		sp = chunk.NewSplitter(rc, job.Input, o.ChunkSize)
		p  = pool.New(o.MaxParallelChunks)
		ra = reassemble.New(0)

		mu       sync.Mutex
		failures []ChunkFailure
		abortErr error
		aborted  atomic.Bool
		putErr   error
	)

	work := func(c chunk.Chunk) func() (string, error) {
		return func() (string, error) {
			out, terr := callTransform(ctx, t, c)
			if terr != nil {
				if ctx.Err() != nil {
					return "", errdefs.Cancelled(ctx)
				}

				mu.Lock()
				failures = append(failures, ChunkFailure{Index: c.Index, Err: terr})
				if o.Policy == PolicyAbort {
					aborted.Store(true)
					if abortErr == nil {
						abortErr = errors.Errorf("%w: chunk %d: %s", errdefs.ErrTransformFailure, c.Index, terr)
					}
					mu.Unlock()
					logger.Debug().Err(terr).Int("chunk", c.Index).Msg("chunk transform failed, aborting file")
					return "", terr
				}
				mu.Unlock()

				logger.Warn().Err(terr).Int("chunk", c.Index).Msg("chunk transform failed, substituting placeholder")
				out = o.Placeholder(c.Index, terr)
			}

			if err := ra.Put(c.Index, out); err != nil {
				mu.Lock()
				if putErr == nil {
					putErr = err
				}
				mu.Unlock()
				return "", err
			}
			return out, nil
		}
	}

	var submitErr error
	// An abort recorded while Submit waits for a slot is seen on the next
	// iteration, so one more chunk may still be admitted and run.
	for sp.Scan() {
		if aborted.Load() {
			break
		}
		if _, serr := p.Submit(ctx, work(sp.Chunk())); serr != nil {
			submitErr = serr
			break
		}
	}
	p.Wait()

	sort.Slice(failures, func(i, j int) bool { return failures[i].Index < failures[j].Index })
	res.Failures = failures
	res.Chunks = sp.Count()

	logger.Debug().
		Int("chunks", sp.Count()).
		Int("admitted", p.Submitted()).
		Int("peak_in_flight", p.Peak()).
		Int("failures", len(failures)).
		Msg("chunks drained")

	switch {
	case submitErr != nil:
		return res, submitErr
	case ctx.Err() != nil:
		return res, errdefs.Cancelled(ctx)
	case abortErr != nil:
		return res, abortErr
	case putErr != nil:
		return res, errors.Errorf("%w: storing chunk: %w", errdefs.ErrIOFailure, putErr)
	}
	if err := sp.Err(); err != nil {
		return res, errors.Errorf("%w: %w", errdefs.ErrIOFailure, err)
	}

	if err := ra.Seal(sp.Count()); err != nil {
		return res, errors.Errorf("%w: sealing chunks: %w", errdefs.ErrIOFailure, err)
	}
	fragments, err := ra.Drain()
	if err != nil {
		return res, errors.Errorf("%w: reassembling chunks: %w", errdefs.ErrIOFailure, err)
	}

	wr, err := atomicfile.Write(ctx, job.Output, fragments, atomicfile.Options{KeepTempOnFailure: o.KeepTemp})
	if err != nil {
		return res, errors.Errorf("writing output: %w", err)
	}

	res.Bytes = wr.Bytes
	res.Committed = true
	logger.Debug().Int64("bytes", wr.Bytes).Msg("output committed")
	return res, nil
}

// callTransform runs t and turns a panic into a transform error
func callTransform(ctx context.Context, t Transform, c chunk.Chunk) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("%w: panic: %v", errdefs.ErrTransformFailure, r)
		}
	}()
	return t.Transform(ctx, c)
}
