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

// Package errdefs defines the error kinds surfaced by the chunk pipeline.
//
// Errors returned by the pipeline, the sources, the config loader and the CLI
// wrap one of the sentinels below, so callers classify failures with errors.Is
// instead of matching strings. Internal helpers such as the reassembler return
// plain errors that those callers classify.
package errdefs

import (
	"context"

	"gitlab.com/tozd/go/errors"
)

var (
	// ErrNotFound means an input path did not exist when it was opened.
	ErrNotFound = errors.New("not found")
	// ErrInvalidConfiguration means the job description was rejected before any I/O.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrCancelled means cooperative cancellation was observed.
	ErrCancelled = errors.New("cancelled")
	// ErrTransformFailure means a chunk transform returned an error or panicked.
	ErrTransformFailure = errors.New("transform failure")
	// ErrIOFailure means a filesystem write, create or rename failed.
	ErrIOFailure = errors.New("io failure")
)

// 🏷️ Kind returns the sentinel wrapped by err, or nil if err carries none
func Kind(err error) error {
	for _, k := range []error{ErrCancelled, ErrInvalidConfiguration, ErrNotFound, ErrTransformFailure, ErrIOFailure} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// 🏷️ KindName returns a short name for the kind of err, used in logs and reports
func KindName(err error) string {
	switch Kind(err) {
	case nil:
		if err == nil {
			return "ok"
		}
		return "unknown"
	case ErrNotFound:
		return "not_found"
	case ErrInvalidConfiguration:
		return "invalid_configuration"
	case ErrCancelled:
		return "cancelled"
	case ErrTransformFailure:
		return "transform_failure"
	default:
		return "io_failure"
	}
}

// 🛑 Cancelled wraps the context error in ErrCancelled
func Cancelled(ctx context.Context) error {
	return errors.Errorf("%w: %s", ErrCancelled, context.Cause(ctx))
}

// 🛑 IsCancelled reports whether err is a cancellation, including a bare context error
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
