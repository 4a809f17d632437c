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

package github

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/go-github/v60/github"
	"github.com/rs/zerolog"
	"github.com/walteh/chunkrc/pkg/errdefs"
	"github.com/walteh/chunkrc/pkg/source"
	"gitlab.com/tozd/go/errors"
)

// Scheme is the location scheme served by this opener
const Scheme = "github"

const maxRetries = 3

func init() {
	source.Register(Scheme, New)
}

// 🎯 Location is a single file inside a GitHub repository
type Location struct {
	Owner string
	Repo  string
	Path  string
	Ref   string
}

func (l Location) String() string {
	s := l.Owner + "/" + l.Repo + "/" + l.Path
	if l.Ref != "" {
		s += "@" + l.Ref
	}
	return s
}

// 🔍 ParseLocation parses "owner/repo/path/to/file[@ref]"
func ParseLocation(s string) (Location, error) {
	var loc Location
	if i := strings.LastIndex(s, "@"); i >= 0 {
		loc.Ref = s[i+1:]
		s = s[:i]
		if loc.Ref == "" {
			return Location{}, errors.Errorf("%w: empty ref in github location", errdefs.ErrInvalidConfiguration)
		}
	}

	parts := strings.SplitN(strings.Trim(s, "/"), "/", 3)
	if len(parts) < 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return Location{}, errors.Errorf("%w: invalid github location %q, want owner/repo/path[@ref]", errdefs.ErrInvalidConfiguration, s)
	}

	loc.Owner, loc.Repo, loc.Path = parts[0], parts[1], parts[2]
	return loc, nil
}

// 📡 Opener fetches file contents through the GitHub API
type Opener struct {
	client     *github.Client
	newBackOff func() backoff.BackOff
}

// Option configures an Opener
type Option func(*Opener)

// WithBackOff replaces the retry schedule used for transient failures
func WithBackOff(fn func() backoff.BackOff) Option {
	return func(o *Opener) {
		o.newBackOff = fn
	}
}

// 🏭 New creates an opener authenticated with GITHUB_TOKEN when it is set
func New(ctx context.Context) (source.Opener, error) {
	client := github.NewClient(nil)
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		client = client.WithAuthToken(token)
	} else {
		zerolog.Ctx(ctx).Debug().Msg("GITHUB_TOKEN not set, using unauthenticated github client")
	}
	return NewWithClient(client), nil
}

// 🏭 NewWithClient creates an opener around an existing client
func NewWithClient(client *github.Client, opts ...Option) *Opener {
	o := &Opener{
		client: client,
		newBackOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Open implements source.Opener
func (o *Opener) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	loc, err := ParseLocation(location)
	if err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx).With().Str("location", loc.String()).Logger()

	var data string
	attempt := 0
	op := func() error {
		attempt++
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(errdefs.Cancelled(ctx))
		}

		fc, _, resp, err := o.client.Repositories.GetContents(ctx, loc.Owner, loc.Repo, loc.Path, &github.RepositoryContentGetOptions{
			Ref: loc.Ref,
		})
		if err != nil {
			if resp != nil && resp.StatusCode == http.StatusNotFound {
				return backoff.Permanent(errors.Errorf("%w: %s", errdefs.ErrNotFound, loc))
			}
			if resp != nil && resp.StatusCode < http.StatusInternalServerError && resp.StatusCode != http.StatusTooManyRequests {
				return backoff.Permanent(errors.Errorf("%w: getting file content: %w", errdefs.ErrIOFailure, err))
			}
			logger.Debug().Err(err).Int("attempt", attempt).Msg("retrying github fetch")
			return errors.Errorf("%w: getting file content: %w", errdefs.ErrIOFailure, err)
		}
		if fc == nil {
			return backoff.Permanent(errors.Errorf("%w: %s is a directory", errdefs.ErrInvalidConfiguration, loc))
		}

		content, err := fc.GetContent()
		if err != nil {
			return backoff.Permanent(errors.Errorf("%w: decoding content: %w", errdefs.ErrIOFailure, err))
		}
		data = content
		return nil
	}

	b := backoff.WithContext(backoff.WithMaxRetries(o.newBackOff(), maxRetries), ctx)
	if err := backoff.Retry(op, b); err != nil {
		if ctx.Err() != nil && !errdefs.IsCancelled(err) {
			return nil, errdefs.Cancelled(ctx)
		}
		return nil, err
	}

	logger.Debug().Int("bytes", len(data)).Msg("fetched github file")
	return io.NopCloser(strings.NewReader(data)), nil
}
