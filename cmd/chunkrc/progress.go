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

package main

import (
	"io"
	"sync"

	"github.com/pterm/pterm"
)

// progress renders batch percentages on a pterm progress bar
type progress struct {
	mu   sync.Mutex
	bar  *pterm.ProgressbarPrinter
	last int
}

func newProgress(w io.Writer, enabled bool) *progress {
	p := &progress{}
	if !enabled {
		return p
	}

	bar, err := pterm.DefaultProgressbar.
		WithTotal(100).
		WithTitle("chunkrc").
		WithWriter(w).
		Start()
	if err != nil {
		pterm.Warning.WithPrefix(pterm.Prefix{Text: "⚠️"}).Printf("progress bar unavailable: %v\n", err)
		return p
	}
	p.bar = bar
	return p
}

// Update moves the bar to percent; reports never move it backwards
func (p *progress) Update(percent int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if percent <= p.last {
		return
	}
	if p.bar != nil {
		p.bar.Add(percent - p.last)
	}
	p.last = percent
}

// Percent returns the last rendered percentage
func (p *progress) Percent() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// Stop finalizes the bar
func (p *progress) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar != nil {
		_, _ = p.bar.Stop()
		p.bar = nil
	}
}
