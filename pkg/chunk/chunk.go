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

// Package chunk splits a character stream into fixed-size, 1-based numbered chunks.
package chunk

import (
	"bufio"
	"io"
	"iter"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// DefaultSize is the chunk size, in characters, used when none is configured.
const DefaultSize = 8192

// 📦 Chunk is a contiguous slice of one input, numbered in read order
type Chunk struct {
	Job     string // Input path the chunk was read from
	Index   int    // 1-based position in the input
	Content string // Raw characters
}

// ✂️ Splitter reads a stream and yields chunks of at most size characters.
//
// Iteration is lazy and cannot be restarted. The last chunk may be shorter
// than size and an empty stream yields no chunks at all. Chunk boundaries
// are not aware of words or lines.
type Splitter struct {
	r    *bufio.Reader
	job  string
	size int

	buf   strings.Builder
	cur   Chunk
	index int
	err   error
	done  bool
}

// 🏭 NewSplitter creates a splitter over r; size < 1 selects DefaultSize
func NewSplitter(r io.Reader, job string, size int) *Splitter {
	if size < 1 {
		size = DefaultSize
	}
	return &Splitter{
		r:    bufio.NewReaderSize(r, bufferSize(size)),
		job:  job,
		size: size,
	}
}

// bufferSize keeps the read buffer at least one chunk of ASCII wide without
// growing unbounded for huge chunk sizes.
func bufferSize(size int) int {
	const maxBuf = 1 << 20
	if size < 4096 {
		return 4096
	}
	if size > maxBuf {
		return maxBuf
	}
	return size
}

// 🔄 Scan advances to the next chunk. It returns false at the end of the
// stream or on the first read error, which Err reports.
func (s *Splitter) Scan() bool {
	if s.done {
		return false
	}

	s.buf.Reset()
	for n := 0; n < s.size; n++ {
		r, _, err := s.r.ReadRune()
		if err != nil {
			s.done = true
			if !errors.Is(err, io.EOF) {
				s.err = errors.Errorf("reading chunk %d: %w", s.index+1, err)
				return false
			}
			break
		}
		s.buf.WriteRune(r)
	}

	if s.buf.Len() == 0 {
		s.done = true
		return false
	}

	s.index++
	s.cur = Chunk{Job: s.job, Index: s.index, Content: s.buf.String()}
	return true
}

// 📄 Chunk returns the chunk produced by the last successful Scan
func (s *Splitter) Chunk() Chunk {
	return s.cur
}

// 🔢 Count returns the number of chunks produced so far
func (s *Splitter) Count() int {
	return s.index
}

// ❌ Err returns the first non-EOF read error
func (s *Splitter) Err() error {
	return s.err
}

// 🔁 All exposes the splitter as a range-over-func sequence. A read error is
// yielded once, with a zero Chunk, and ends the sequence.
func All(s *Splitter) iter.Seq2[Chunk, error] {
	return func(yield func(Chunk, error) bool) {
		for s.Scan() {
			if !yield(s.Chunk(), nil) {
				return
			}
		}
		if err := s.Err(); err != nil {
			yield(Chunk{}, err)
		}
	}
}
