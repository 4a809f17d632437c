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

// Package text holds the shipped chunk transform: punctuation stripping and
// short-token filtering.
package text

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/walteh/chunkrc/pkg/chunk"
	"gitlab.com/tozd/go/errors"
)

// 🧹 Filter drops tokens shorter than MinTokenLength.
//
// A Filter is a plain value with no shared state, so one instance may be
// used from any number of workers at once.
type Filter struct {
	// MinTokenLength is the minimum token length in characters. Zero keeps every token.
	MinTokenLength int
	// StripPunctuation removes Unicode punctuation before tokenizing.
	StripPunctuation bool
	// Delimiters lists the token separator characters. Empty means any Unicode whitespace.
	Delimiters string
	// PreserveLines filters each line on its own and keeps the line breaks.
	PreserveLines bool
}

// 📊 Result reports what a filter run did
type Result struct {
	Output     string
	TokensSeen int
	TokensKept int
}

// ✅ Validate checks the filter options
func (f Filter) Validate() error {
	if f.MinTokenLength < 0 {
		return errors.Errorf("min token length must not be negative, got %d", f.MinTokenLength)
	}
	if f.PreserveLines && strings.ContainsAny(f.Delimiters, "\n") {
		return errors.New("delimiters must not contain a newline when preserving lines")
	}
	return nil
}

// 🔄 Apply filters content and returns the surviving tokens joined by single spaces
func (f Filter) Apply(content string) string {
	return f.Run(content).Output
}

// 🔄 Run filters content and counts tokens
func (f Filter) Run(content string) Result {
	if !f.PreserveLines {
		if isBlank(content) {
			return Result{}
		}
		return f.line(content)
	}

	var (
		res   Result
		sb    strings.Builder
		lines = strings.Split(content, "\n")
	)
	for i, l := range lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		lr := f.line(strings.TrimSuffix(l, "\r"))
		sb.WriteString(lr.Output)
		res.TokensSeen += lr.TokensSeen
		res.TokensKept += lr.TokensKept
	}
	res.Output = sb.String()
	return res
}

func (f Filter) line(s string) Result {
	if f.StripPunctuation {
		s = strings.Map(func(r rune) rune {
			if unicode.IsPunct(r) {
				return -1
			}
			return r
		}, s)
	}

	tokens := strings.FieldsFunc(s, f.isDelimiter)
	kept := tokens[:0]
	for _, tok := range tokens {
		if utf8.RuneCountInString(tok) >= f.MinTokenLength {
			kept = append(kept, tok)
		}
	}

	return Result{
		Output:     strings.Join(kept, " "),
		TokensSeen: len(tokens),
		TokensKept: len(kept),
	}
}

func (f Filter) isDelimiter(r rune) bool {
	if f.Delimiters == "" {
		return unicode.IsSpace(r)
	}
	return strings.ContainsRune(f.Delimiters, r)
}

func isBlank(s string) bool {
	return strings.TrimFunc(s, unicode.IsSpace) == ""
}

// 🔌 Transform adapts the filter to the chunk pipeline
func (f Filter) Transform(ctx context.Context, c chunk.Chunk) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return f.Apply(c.Content), nil
}
