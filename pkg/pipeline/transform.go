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
	"context"

	"github.com/walteh/chunkrc/pkg/chunk"
)

// 🔄 Transform turns one chunk into its output text.
//
// Implementations are called from many goroutines at once and must not rely
// on call order. ctx is cancelled when the batch is cancelled.
type Transform interface {
	Transform(ctx context.Context, c chunk.Chunk) (string, error)
}

// TransformFunc adapts a function to Transform
type TransformFunc func(ctx context.Context, c chunk.Chunk) (string, error)

func (f TransformFunc) Transform(ctx context.Context, c chunk.Chunk) (string, error) {
	return f(ctx, c)
}

// Pure lifts a plain string mapping into a Transform
func Pure(fn func(string) string) Transform {
	return TransformFunc(func(_ context.Context, c chunk.Chunk) (string, error) {
		return fn(c.Content), nil
	})
}
