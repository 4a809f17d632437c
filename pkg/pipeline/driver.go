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
	"path/filepath"
	"runtime"
	"sync"

	"github.com/rs/zerolog"
	"github.com/walteh/chunkrc/pkg/errdefs"
	"github.com/walteh/chunkrc/pkg/status"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// 🚦 State is the lifecycle position of a Driver
type State int

const (
	StateIdle State = iota
	StateValidating
	StateRunning
	StateCompleted
	StateFailed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition can happen
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}

// 👀 Observer receives file lifecycle events. Calls arrive from many
// goroutines at once.
type Observer interface {
	FileStarted(job FileJob)
	FileFinished(res *FileResult)
}

// NopObserver ignores every event
type NopObserver struct{}

func (NopObserver) FileStarted(FileJob) {}
func (NopObserver) FileFinished(*FileResult) {}

// 📊 BatchResult summarizes a batch; Files follows the job order and holds
// nil for jobs that never started.
type BatchResult struct {
	State State
	Files []*FileResult
}

// Failures returns every chunk failure across the batch
func (b *BatchResult) Failures() []ChunkFailure {
	var out []ChunkFailure
	for _, f := range b.Files {
		if f != nil {
			out = append(out, f.Failures...)
		}
	}
	return out
}

// 🎛️ Driver runs one batch of file jobs
type Driver struct {
	opts Options

	mu    sync.Mutex
	state State
}

// 🏭 NewDriver creates an idle driver
func NewDriver(opts ...Option) *Driver {
	return &Driver{opts: newOptions(opts)}
}

// State returns the current lifecycle state
func (d *Driver) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *Driver) transition(ctx context.Context, to State) {
	d.mu.Lock()
	from := d.state
	d.state = to
	d.mu.Unlock()

	zerolog.Ctx(ctx).Debug().Str("from", from.String()).Str("to", to.String()).Msg("driver state")
}

// 🔗 Zip pairs inputs with outputs by position
func Zip(inputs, outputs []string) ([]FileJob, error) {
	if inputs == nil || outputs == nil {
		return nil, errors.Errorf("%w: inputs and outputs are required", errdefs.ErrInvalidConfiguration)
	}
	if len(inputs) != len(outputs) {
		return nil, errors.Errorf("%w: %d inputs but %d outputs", errdefs.ErrInvalidConfiguration, len(inputs), len(outputs))
	}
	if len(inputs) == 0 {
		return nil, errors.Errorf("%w: no files to process", errdefs.ErrInvalidConfiguration)
	}

	jobs := make([]FileJob, len(inputs))
	seen := make(map[string]int, len(outputs))
	for i := range inputs {
		if inputs[i] == "" || outputs[i] == "" {
			return nil, errors.Errorf("%w: job %d has an empty path", errdefs.ErrInvalidConfiguration, i+1)
		}
		key := filepath.Clean(outputs[i])
		if prev, ok := seen[key]; ok {
			return nil, errors.Errorf("%w: jobs %d and %d both write %s", errdefs.ErrInvalidConfiguration, prev+1, i+1, key)
		}
		seen[key] = i
		jobs[i] = FileJob{Input: inputs[i], Output: outputs[i]}
	}
	return jobs, nil
}

// 🚀 ProcessFiles transforms inputs[i] into outputs[i] for every i.
//
// progress is called once per committed file with the rounded batch
// percentage; nil disables it. Validation errors are reported before any file
// is opened.
func ProcessFiles(ctx context.Context, inputs, outputs []string, t Transform, progress func(percent int), opts ...Option) (*BatchResult, error) {
	return NewDriver(opts...).Process(ctx, inputs, outputs, t, progress)
}

// Process validates the path lists and runs them
func (d *Driver) Process(ctx context.Context, inputs, outputs []string, t Transform, progress func(percent int)) (*BatchResult, error) {
	if err := d.begin(ctx); err != nil {
		return nil, err
	}

	jobs, err := Zip(inputs, outputs)
	if err != nil {
		d.transition(ctx, StateFailed)
		return &BatchResult{State: StateFailed}, err
	}
	return d.run(ctx, jobs, t, progress)
}

// Run runs prepared jobs
func (d *Driver) Run(ctx context.Context, jobs []FileJob, t Transform, progress func(percent int)) (*BatchResult, error) {
	if err := d.begin(ctx); err != nil {
		return nil, err
	}

	inputs := make([]string, len(jobs))
	outputs := make([]string, len(jobs))
	for i, j := range jobs {
		inputs[i], outputs[i] = j.Input, j.Output
	}
	jobs, err := Zip(inputs, outputs)
	if err != nil {
		d.transition(ctx, StateFailed)
		return &BatchResult{State: StateFailed}, err
	}
	return d.run(ctx, jobs, t, progress)
}

func (d *Driver) begin(ctx context.Context) error {
	d.mu.Lock()
	if d.state != StateIdle {
		st := d.state
		d.mu.Unlock()
		return errors.Errorf("%w: driver already used, state %s", errdefs.ErrInvalidConfiguration, st)
	}
	d.state = StateValidating
	d.mu.Unlock()

	zerolog.Ctx(ctx).Debug().Str("from", StateIdle.String()).Str("to", StateValidating.String()).Msg("driver state")
	return nil
}

func (d *Driver) run(ctx context.Context, jobs []FileJob, t Transform, progress func(percent int)) (*BatchResult, error) {
	logger := zerolog.Ctx(ctx)
	res := &BatchResult{Files: make([]*FileResult, len(jobs))}

	fail := func(st State, err error) (*BatchResult, error) {
		d.transition(ctx, st)
		res.State = st
		return res, err
	}

	o := d.opts
	if err := o.validate(); err != nil {
		return fail(StateFailed, err)
	}
	if t == nil {
		return fail(StateFailed, errors.Errorf("%w: transform is required", errdefs.ErrInvalidConfiguration))
	}
	if ctx.Err() != nil {
		return fail(StateCancelled, errdefs.Cancelled(ctx))
	}

	limit := o.MaxParallelFiles
	if limit < 1 {
		limit = runtime.GOMAXPROCS(0)
	}

	d.transition(ctx, StateRunning)
	logger.Debug().Int("files", len(jobs)).Int("parallel_files", limit).Msg("starting batch")

	tracker := status.NewTracker(len(jobs), progress)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, job := range jobs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return errdefs.Cancelled(gctx)
			}

			o.Observer.FileStarted(job)
			fr, err := runFile(gctx, job, t, &o)
			res.Files[i] = fr
			o.Observer.FileFinished(fr)

			if err != nil {
				return errors.Errorf("processing %s: %w", job.Input, err)
			}
			pct := tracker.Complete()
			logger.Debug().Str("input", job.Input).Int("percent", pct).Msg("file committed")
			return nil
		})
	}

	err := g.Wait()
	switch {
	case ctx.Err() != nil:
		return fail(StateCancelled, errdefs.Cancelled(ctx))
	case err != nil:
		return fail(StateFailed, err)
	}

	d.transition(ctx, StateCompleted)
	res.State = StateCompleted
	return res, nil
}
