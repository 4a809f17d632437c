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
	"strings"

	"github.com/walteh/chunkrc/pkg/chunk"
	"github.com/walteh/chunkrc/pkg/errdefs"
	"github.com/walteh/chunkrc/pkg/source"
	"gitlab.com/tozd/go/errors"
)

// ⚠️ FailurePolicy decides what a failed chunk transform does to its file
type FailurePolicy int

const (
	// PolicySubstitute stores a placeholder in the failed slot and keeps going.
	PolicySubstitute FailurePolicy = iota
	// PolicyAbort stops admitting chunks and fails the file.
	PolicyAbort
)

func (p FailurePolicy) String() string {
	switch p {
	case PolicySubstitute:
		return "substitute"
	case PolicyAbort:
		return "abort"
	default:
		return "unknown"
	}
}

// ParseFailurePolicy parses "substitute" or "abort". Empty selects substitute.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "substitute":
		return PolicySubstitute, nil
	case "abort":
		return PolicyAbort, nil
	default:
		return 0, errors.Errorf("%w: unknown failure policy %q", errdefs.ErrInvalidConfiguration, s)
	}
}

// DefaultPlaceholder stores the error text in place of the chunk output
func DefaultPlaceholder(_ int, err error) string {
	return err.Error()
}

// 🔧 Options holds the tunables shared by ProcessFile and ProcessFiles
type Options struct {
	ChunkSize         int
	MaxParallelChunks int
	MaxParallelFiles  int
	Policy            FailurePolicy
	Placeholder       func(index int, err error) string
	Observer          Observer
	Opener            source.Opener
	KeepTemp          bool
}

// Option configures Options
type Option func(*Options)

// WithChunkSize sets the chunk size in characters; zero selects chunk.DefaultSize
func WithChunkSize(n int) Option {
	return func(o *Options) { o.ChunkSize = n }
}

// WithMaxParallelChunks bounds concurrent transforms per file; zero selects the host parallelism
func WithMaxParallelChunks(n int) Option {
	return func(o *Options) { o.MaxParallelChunks = n }
}

// WithMaxParallelFiles bounds concurrent file jobs; zero selects the host parallelism
func WithMaxParallelFiles(n int) Option {
	return func(o *Options) { o.MaxParallelFiles = n }
}

// WithFailurePolicy selects how failed chunk transforms are handled
func WithFailurePolicy(p FailurePolicy) Option {
	return func(o *Options) { o.Policy = p }
}

// WithPlaceholder replaces the text stored for failed chunks under PolicySubstitute
func WithPlaceholder(fn func(index int, err error) string) Option {
	return func(o *Options) { o.Placeholder = fn }
}

// WithObserver receives file lifecycle events
func WithObserver(obs Observer) Option {
	return func(o *Options) { o.Observer = obs }
}

// WithOpener replaces the input opener; the default dispatches by location scheme
func WithOpener(op source.Opener) Option {
	return func(o *Options) { o.Opener = op }
}

// WithKeepTemp leaves the .tmp staging file behind when a write fails
func WithKeepTemp(keep bool) Option {
	return func(o *Options) { o.KeepTemp = keep }
}

func newOptions(opts []Option) Options {
	o := Options{}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ✅ validate rejects bad values and fills defaults
func (o *Options) validate() error {
	if o.ChunkSize < 0 {
		return errors.Errorf("%w: chunk size must not be negative, got %d", errdefs.ErrInvalidConfiguration, o.ChunkSize)
	}
	if o.MaxParallelChunks < 0 {
		return errors.Errorf("%w: max parallel chunks must not be negative, got %d", errdefs.ErrInvalidConfiguration, o.MaxParallelChunks)
	}
	if o.MaxParallelFiles < 0 {
		return errors.Errorf("%w: max parallel files must not be negative, got %d", errdefs.ErrInvalidConfiguration, o.MaxParallelFiles)
	}
	if o.Policy != PolicySubstitute && o.Policy != PolicyAbort {
		return errors.Errorf("%w: unknown failure policy %d", errdefs.ErrInvalidConfiguration, int(o.Policy))
	}

	if o.ChunkSize == 0 {
		o.ChunkSize = chunk.DefaultSize
	}
	if o.Placeholder == nil {
		o.Placeholder = DefaultPlaceholder
	}
	if o.Observer == nil {
		o.Observer = NopObserver{}
	}
	if o.Opener == nil {
		o.Opener = source.NewMux()
	}
	return nil
}
