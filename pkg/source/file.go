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

package source

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/walteh/chunkrc/pkg/errdefs"
	"gitlab.com/tozd/go/errors"
)

// 📂 FileOpener reads local files, decoding .gz and .zst by extension
type FileOpener struct{}

// 🏭 NewFileOpener creates a new local file opener
func NewFileOpener() *FileOpener {
	return &FileOpener{}
}

// Open implements Opener
func (o *FileOpener) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, errdefs.Cancelled(ctx)
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Errorf("%w: %s", errdefs.ErrNotFound, path)
		}
		return nil, errors.Errorf("%w: stat input: %w", errdefs.ErrIOFailure, err)
	}
	if info.IsDir() {
		return nil, errors.Errorf("%w: input is a directory: %s", errdefs.ErrIOFailure, path)
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Errorf("%w: %s", errdefs.ErrNotFound, path)
		}
		return nil, errors.Errorf("%w: opening input: %w", errdefs.ErrIOFailure, err)
	}

	rc, err := decompress(f, path)
	if err != nil {
		f.Close()
		return nil, errors.Errorf("%w: decoding %s: %w", errdefs.ErrIOFailure, path, err)
	}
	return rc, nil
}

func decompress(f *os.File, path string) (io.ReadCloser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".gzip":
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		return &stacked{Reader: zr, closers: []io.Closer{zr, f}}, nil
	case ".zst", ".zstd":
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, err
		}
		dc := zr.IOReadCloser()
		return &stacked{Reader: dc, closers: []io.Closer{dc, f}}, nil
	default:
		return f, nil
	}
}

// stacked closes a decoder and the file beneath it
type stacked struct {
	io.Reader
	closers []io.Closer
}

func (s *stacked) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
