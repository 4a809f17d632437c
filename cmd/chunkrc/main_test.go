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
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/chunkrc/pkg/errdefs"
	"gitlab.com/tozd/go/errors"
)

func execute(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestRunWithFlags(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	out := filepath.Join(dir, "out", "in.txt")
	writeFile(t, in, "a ab abc abcd abcde")

	stdout, err := execute(t, context.Background(), "run", "--no-progress",
		"-i", in, "-o", out, "--min-length", "4")
	require.NoError(t, err)

	assert.Equal(t, "abcd abcde", readFile(t, out))
	assert.Contains(t, stdout, "1 files written")
	assert.Contains(t, stdout, "Progress: 1/1 (100%)")
}

func TestRunWithConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "docs", "a.txt"), "Hello, big world!")
	writeFile(t, filepath.Join(dir, "docs", "b.txt"), "to be or not")
	writeFile(t, filepath.Join(dir, "chunkrc.yaml"), `
chunk_size: 64
filter:
  min_token_length: 3
  strip_punctuation: true
globs:
  - pattern: docs/*.txt
    output_dir: out
`)

	_, err := execute(t, context.Background(), "run", "--no-progress", "-c", filepath.Join(dir, "chunkrc.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "Hello big world", readFile(t, filepath.Join(dir, "out", "a.txt")))
	assert.Equal(t, "not", readFile(t, filepath.Join(dir, "out", "b.txt")))
}

func TestRunFlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	writeFile(t, in, "aa bbb cccc")
	writeFile(t, filepath.Join(dir, "chunkrc.hcl"), `
filter {
  min_token_length = 4
}
`)

	out := filepath.Join(dir, "out.txt")
	_, err := execute(t, context.Background(), "run", "--no-progress",
		"--config", filepath.Join(dir, "chunkrc.hcl"),
		"-i", in, "-o", out, "--min-length", "3")
	require.NoError(t, err)
	assert.Equal(t, "bbb cccc", readFile(t, out))
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	writeFile(t, in, "text")

	tests := []struct {
		name     string
		args     []string
		wantKind error
		wantCode int
	}{
		{
			name:     "mismatched_pairs",
			args:     []string{"run", "--no-progress", "-i", in, "-i", in, "-o", filepath.Join(dir, "x")},
			wantKind: errdefs.ErrInvalidConfiguration,
			wantCode: 2,
		},
		{
			name:     "no_jobs",
			args:     []string{"run", "--no-progress"},
			wantKind: errdefs.ErrInvalidConfiguration,
			wantCode: 2,
		},
		{
			name:     "missing_input",
			args:     []string{"run", "--no-progress", "-i", filepath.Join(dir, "nope.txt"), "-o", filepath.Join(dir, "y")},
			wantKind: errdefs.ErrNotFound,
			wantCode: 1,
		},
		{
			name:     "bad_policy",
			args:     []string{"run", "--no-progress", "-i", in, "-o", filepath.Join(dir, "z"), "--policy", "retry"},
			wantKind: errdefs.ErrInvalidConfiguration,
			wantCode: 2,
		},
		{
			name:     "missing_config",
			args:     []string{"run", "--no-progress", "-c", filepath.Join(dir, "none.yaml")},
			wantKind: errdefs.ErrNotFound,
			wantCode: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, context.Background(), tt.args...)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantKind)
			assert.Equal(t, tt.wantCode, exitCode(err))
		})
	}
}

func TestRunCancelled(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	out := filepath.Join(dir, "out.txt")
	writeFile(t, in, "text")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := execute(t, ctx, "run", "--no-progress", "-i", in, "-o", out)
	require.Error(t, err)
	assert.ErrorIs(t, err, errdefs.ErrCancelled)
	assert.Equal(t, 130, exitCode(err))
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 1, exitCode(errors.New("plain")))
	assert.Equal(t, 1, exitCode(errdefs.ErrIOFailure))
	assert.Equal(t, 2, exitCode(errors.Errorf("wrapped: %w", errdefs.ErrInvalidConfiguration)))
	assert.Equal(t, 130, exitCode(errdefs.ErrCancelled))
}

func TestVersion(t *testing.T) {
	stdout, err := execute(t, context.Background(), "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "chunkrc version info")

	stdout, err = execute(t, context.Background(), "version", "--json")
	require.NoError(t, err)

	var info VersionInfo
	require.NoError(t, json.Unmarshal([]byte(stdout), &info))
	assert.NotEmpty(t, info.GoVersion)
	assert.NotEmpty(t, info.Platform)
}

func TestFormatVersion(t *testing.T) {
	got := FormatVersion(&VersionInfo{Version: "v1.0.0", Revision: "abc123", Modified: true, GoVersion: "go1.23", Platform: "linux/amd64"})
	assert.Contains(t, got, "Version:   v1.0.0")
	assert.Contains(t, got, "Revision:  abc123 (modified)")
	assert.Contains(t, got, "Platform:  linux/amd64")
}

func TestProgressDisabled(t *testing.T) {
	p := newProgress(&bytes.Buffer{}, false)
	p.Update(50)
	p.Update(25)
	assert.Equal(t, 50, p.Percent(), "progress should never move backwards")
	p.Update(100)
	assert.Equal(t, 100, p.Percent())
	p.Stop()
}

func TestClean(t *testing.T) {
	dir := t.TempDir()
	kept := filepath.Join(dir, "a.txt")
	stale := filepath.Join(dir, "b.txt")
	writeFile(t, stale+".tmp", "partial")

	stdout, err := execute(t, context.Background(), "clean", "--dry-run", "-o", kept, "-o", stale)
	require.NoError(t, err)
	assert.Contains(t, stdout, "would remove "+stale+".tmp")
	assert.FileExists(t, stale+".tmp")

	stdout, err = execute(t, context.Background(), "clean", "-o", kept, "-o", stale)
	require.NoError(t, err)
	assert.Contains(t, stdout, "1 staging files cleaned")
	assert.NoFileExists(t, stale+".tmp")
}
