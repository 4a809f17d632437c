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

// Package pool provides a bounded worker pool whose Submit blocks while the
// bound is saturated.
package pool

import (
	"context"
	"runtime"
	"sync"

	"github.com/walteh/chunkrc/pkg/errdefs"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/atomic"
	"golang.org/x/sync/semaphore"
)

// 🏊 Pool admits at most bound concurrent invocations.
//
// The pool bounds count only, never order: invocations finish in whatever
// order the scheduler picks. A failing invocation does not affect siblings.
type Pool struct {
	bound int64
	sem   *semaphore.Weighted
	wg    sync.WaitGroup

	inFlight  atomic.Int64
	peak      atomic.Int64
	submitted atomic.Int64
}

// 🔮 Future is the pending result of one submitted invocation
type Future struct {
	done  chan struct{}
	value string
	err   error
}

// 🏭 New creates a pool; bound < 1 selects the host parallelism
func New(bound int) *Pool {
	if bound < 1 {
		bound = runtime.GOMAXPROCS(0)
	}
	return &Pool{
		bound: int64(bound),
		sem:   semaphore.NewWeighted(int64(bound)),
	}
}

// Bound returns the configured concurrency bound
func (p *Pool) Bound() int {
	return int(p.bound)
}

// 🚀 Submit blocks until a slot is free, then runs fn on its own goroutine.
//
// If ctx is done before a slot frees, nothing runs and the error wraps
// errdefs.ErrCancelled. A panic inside fn is recovered and reported by the
// future as an errdefs.ErrTransformFailure.
func (p *Pool) Submit(ctx context.Context, fn func() (string, error)) (*Future, error) {
	if err := ctx.Err(); err != nil {
		return nil, errdefs.Cancelled(ctx)
	}
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, errdefs.Cancelled(ctx)
	}

	f := &Future{done: make(chan struct{})}
	p.wg.Add(1)
	p.submitted.Inc()
	p.track(p.inFlight.Inc())

	go func() {
		defer func() {
			if r := recover(); r != nil {
				f.err = errors.Errorf("%w: panic: %v", errdefs.ErrTransformFailure, r)
			}
			p.inFlight.Dec()
			p.sem.Release(1)
			close(f.done)
			p.wg.Done()
		}()
		f.value, f.err = fn()
	}()

	return f, nil
}

// track records the highest in-flight count seen so far.
func (p *Pool) track(n int64) {
	for {
		cur := p.peak.Load()
		if n <= cur || p.peak.CompareAndSwap(cur, n) {
			return
		}
	}
}

// ⏳ Wait blocks until every admitted invocation has returned
func (p *Pool) Wait() {
	p.wg.Wait()
}

// 📊 InFlight returns the number of invocations currently running
func (p *Pool) InFlight() int {
	return int(p.inFlight.Load())
}

// 📊 Peak returns the highest number of simultaneous invocations observed
func (p *Pool) Peak() int {
	return int(p.peak.Load())
}

// 📊 Submitted returns the number of admitted invocations
func (p *Pool) Submitted() int {
	return int(p.submitted.Load())
}

// ⏳ Wait blocks until the invocation returns and yields its result
func (f *Future) Wait() (string, error) {
	<-f.done
	return f.value, f.err
}
