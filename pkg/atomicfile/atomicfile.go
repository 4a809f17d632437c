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

// Package atomicfile commits ordered content fragments to a destination path
// through a sibling temporary file.
package atomicfile

import (
	"bufio"
	"context"
	"iter"
	"os"
	"path/filepath"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/walteh/chunkrc/pkg/errdefs"
	"gitlab.com/tozd/go/errors"
)

// TempSuffix is appended to the destination path for the staging file.
const TempSuffix = ".tmp"

// swapped in tests to simulate rename failures
var renameFunc = os.Rename

// 🔧 Options controls a single write
type Options struct {
	// KeepTempOnFailure leaves the staging file in place after a failed write.
	KeepTempOnFailure bool
	// Perm is the mode of the committed file, 0644 when zero.
	Perm os.FileMode
	// BufferSize is the write buffer size, 64KiB when zero.
	BufferSize int
}

// 📊 Result describes a committed write
type Result struct {
	Path  string
	Bytes int64
}

// TempPath returns the staging path used for dest
func TempPath(dest string) string {
	return dest + TempSuffix
}

// 💾 Write stages every fragment in TempPath(dest), flushes and syncs it, and
// only then renames it over dest.
//
// dest is never observed half written: on any error it keeps its previous
// content, or stays absent. Filesystem errors wrap errdefs.ErrIOFailure and
// cancellation between fragments wraps errdefs.ErrCancelled. Unless
// KeepTempOnFailure is set the staging file is removed on failure.
func Write(ctx context.Context, dest string, fragments iter.Seq[string], opts Options) (*Result, error) {
	logger := zerolog.Ctx(ctx)

	if opts.Perm == 0 {
		opts.Perm = 0o644
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = 64 * 1024
	}

	if err := ctx.Err(); err != nil {
		return nil, errdefs.Cancelled(ctx)
	}

	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Errorf("%w: creating parent directory: %w", errdefs.ErrIOFailure, err)
	}

	tmpPath := TempPath(dest)
	tmp, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, opts.Perm)
	if err != nil {
		return nil, errors.Errorf("%w: creating temp file: %w", errdefs.ErrIOFailure, err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		_ = tmp.Close()
		if opts.KeepTempOnFailure {
			logger.Debug().Str("temp", tmpPath).Msg("keeping temp file after failed write")
			return
		}
		if rmErr := os.Remove(tmpPath); rmErr != nil && !os.IsNotExist(rmErr) {
			logger.Warn().Err(rmErr).Str("temp", tmpPath).Msg("removing temp file")
		}
	}()

	w := bufio.NewWriterSize(tmp, opts.BufferSize)
	var written int64
	for frag := range fragments {
		if ctx.Err() != nil {
			return nil, errdefs.Cancelled(ctx)
		}
		n, err := w.WriteString(frag)
		written += int64(n)
		if err != nil {
			return nil, errors.Errorf("%w: writing temp file: %w", errdefs.ErrIOFailure, err)
		}
	}

	if err := w.Flush(); err != nil {
		return nil, errors.Errorf("%w: flushing temp file: %w", errdefs.ErrIOFailure, err)
	}
	if err := tmp.Sync(); err != nil {
		return nil, errors.Errorf("%w: syncing temp file: %w", errdefs.ErrIOFailure, err)
	}
	if err := tmp.Close(); err != nil {
		return nil, errors.Errorf("%w: closing temp file: %w", errdefs.ErrIOFailure, err)
	}
	if ctx.Err() != nil {
		return nil, errdefs.Cancelled(ctx)
	}

	if err := renameFunc(tmpPath, dest); err != nil {
		return nil, errors.Errorf("%w: replacing %s: %w", errdefs.ErrIOFailure, dest, err)
	}
	committed = true

	_ = syncDir(dir)

	logger.Debug().Str("path", dest).Int64("bytes", written).Msg("committed file")
	return &Result{Path: dest, Bytes: written}, nil
}

// syncDir makes the rename durable where the platform supports it.
func syncDir(dir string) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}

// 🧹 RemoveTemp deletes a staging file left behind for dest, reporting
// whether one existed.
func RemoveTemp(ctx context.Context, dest string) (bool, error) {
	tmpPath := TempPath(dest)
	err := os.Remove(tmpPath)
	switch {
	case err == nil:
		zerolog.Ctx(ctx).Debug().Str("temp", tmpPath).Msg("removed temp file")
		return true, nil
	case os.IsNotExist(err):
		return false, nil
	default:
		return false, errors.Errorf("%w: removing %s: %w", errdefs.ErrIOFailure, tmpPath, err)
	}
}
