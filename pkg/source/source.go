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

// Package source opens job inputs by location scheme.
//
// Plain paths and file:// locations are read from the local disk, and
// compressed files are decoded by extension. Other schemes are served by
// openers registered with Register, for example the github opener:
//
//	import _ "github.com/walteh/chunkrc/pkg/source/github"
//
//	rc, err := source.NewMux().Open(ctx, "github://walteh/chunkrc/README.md@main")
package source

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/walteh/chunkrc/pkg/errdefs"
	"gitlab.com/tozd/go/errors"
)

// FileScheme is the scheme used for locations without one
const FileScheme = "file"

// 🔌 Opener opens one input location for reading
type Opener interface {
	Open(ctx context.Context, location string) (io.ReadCloser, error)
}

// OpenerFunc adapts a function to Opener
type OpenerFunc func(ctx context.Context, location string) (io.ReadCloser, error)

func (f OpenerFunc) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	return f(ctx, location)
}

// 🏭 Factory creates a new opener
type Factory func(ctx context.Context) (Opener, error)

var (
	mu sync.RWMutex
	// 🗺️ factories is a map of schemes to opener factories
	factories = map[string]Factory{
		FileScheme: func(context.Context) (Opener, error) { return NewFileOpener(), nil },
	}
)

// 📝 Register registers an opener factory for a scheme
func Register(scheme string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[scheme] = factory
}

// 🎯 Get returns the factory for a scheme, or nil
func Get(scheme string) Factory {
	mu.RLock()
	defer mu.RUnlock()
	return factories[scheme]
}

// Schemes lists the registered schemes in sorted order
func Schemes() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// 🔍 Split separates "scheme://rest". Locations without a scheme are files.
func Split(location string) (scheme, rest string) {
	scheme, rest, ok := strings.Cut(location, "://")
	if !ok || scheme == "" || strings.ContainsAny(scheme, `/\`) {
		return FileScheme, location
	}
	return strings.ToLower(scheme), rest
}

// 🔀 Mux dispatches each location to the opener registered for its scheme.
// Openers are created on first use and reused afterwards.
type Mux struct {
	mu      sync.Mutex
	openers map[string]Opener
}

// 🏭 NewMux creates a mux over the registered factories
func NewMux() *Mux {
	return &Mux{openers: make(map[string]Opener)}
}

// Open implements Opener
func (m *Mux) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	scheme, rest := Split(location)

	o, err := m.opener(ctx, scheme)
	if err != nil {
		return nil, err
	}
	return o.Open(ctx, rest)
}

func (m *Mux) opener(ctx context.Context, scheme string) (Opener, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if o, ok := m.openers[scheme]; ok {
		return o, nil
	}

	factory := Get(scheme)
	if factory == nil {
		return nil, errors.Errorf("%w: no opener registered for scheme %q", errdefs.ErrInvalidConfiguration, scheme)
	}

	o, err := factory(ctx)
	if err != nil {
		return nil, errors.Errorf("%w: creating %s opener: %w", errdefs.ErrInvalidConfiguration, scheme, err)
	}
	m.openers[scheme] = o
	return o, nil
}
