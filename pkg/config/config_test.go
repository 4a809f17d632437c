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

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/chunkrc/pkg/errdefs"
	"github.com/walteh/chunkrc/pkg/pipeline"
	"github.com/walteh/chunkrc/pkg/text"
)

func testContext(t *testing.T) context.Context {
	return zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
}

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		config      string
		wantErr     bool
		errContains string
		check       func(t *testing.T, cfg *Config, dir string)
	}{
		{
			name:     "full_yaml",
			filename: "chunkrc.yaml",
			config: `
chunk_size: 4096
max_parallel_chunks: 8
max_parallel_files: 2
failure_policy: abort
keep_temp_on_failure: true
filter:
  min_token_length: 4
  strip_punctuation: true
  delimiters: " \t"
  preserve_lines: true
jobs:
  - input: in/a.txt
    output: out/a.txt
  - input: /abs/b.txt
    output: /abs/out/b.txt
`,
			check: func(t *testing.T, cfg *Config, dir string) {
				assert.Equal(t, 4096, cfg.ChunkSize)
				assert.Equal(t, 8, cfg.MaxParallelChunks)
				assert.Equal(t, 2, cfg.MaxParallelFiles)
				assert.Equal(t, "abort", cfg.FailurePolicy)
				assert.True(t, cfg.KeepTempOnFailure)
				assert.Equal(t, text.Filter{MinTokenLength: 4, StripPunctuation: true, Delimiters: " \t", PreserveLines: true}, cfg.TextFilter())
				require.Len(t, cfg.JobList, 2)

				inputs, outputs, err := cfg.Jobs(testContext(t))
				require.NoError(t, err)
				assert.Equal(t, []string{filepath.Join(dir, "in/a.txt"), "/abs/b.txt"}, inputs)
				assert.Equal(t, []string{filepath.Join(dir, "out/a.txt"), "/abs/out/b.txt"}, outputs)
			},
		},
		{
			name:     "minimal_yaml_defaults",
			filename: "chunkrc.yml",
			config: `
jobs:
  - input: a.txt
    output: b.txt
`,
			check: func(t *testing.T, cfg *Config, dir string) {
				assert.Equal(t, 8192, cfg.ChunkSize, "chunk size should default")
				assert.Equal(t, "substitute", cfg.FailurePolicy, "policy should default")
				assert.Equal(t, 0, cfg.MaxParallelChunks)
				assert.NotNil(t, cfg.Filter)
				assert.Equal(t, text.Filter{}, cfg.TextFilter())
			},
		},
		{
			name:     "full_hcl",
			filename: "chunkrc.hcl",
			config: `
chunk_size     = 128
failure_policy = "substitute"

filter {
  min_token_length  = 3
  strip_punctuation = true
}

job {
  input  = "a.txt"
  output = "out/a.txt"
}

job {
  input  = "github://walteh/chunkrc/README.md@main"
  output = "out/readme.txt"
}
`,
			check: func(t *testing.T, cfg *Config, dir string) {
				assert.Equal(t, 128, cfg.ChunkSize)
				assert.Equal(t, text.Filter{MinTokenLength: 3, StripPunctuation: true}, cfg.TextFilter())

				inputs, outputs, err := cfg.Jobs(testContext(t))
				require.NoError(t, err)
				assert.Equal(t, []string{filepath.Join(dir, "a.txt"), "github://walteh/chunkrc/README.md@main"}, inputs)
				assert.Equal(t, []string{filepath.Join(dir, "out/a.txt"), filepath.Join(dir, "out/readme.txt")}, outputs)
			},
		},
		{
			name:     "hcl_env_interpolation",
			filename: "env.hcl",
			config: `
job {
  input  = "${env.CHUNKRC_TEST_ROOT}/in.txt"
  output = "${env.CHUNKRC_TEST_ROOT}/out.txt"
}
`,
			check: func(t *testing.T, cfg *Config, dir string) {
				require.Len(t, cfg.JobList, 1)
				assert.Equal(t, "/srv/data/in.txt", cfg.JobList[0].Input)
			},
		},
		{
			name:     "json",
			filename: "chunkrc.json",
			config: `{
				"chunk_size": 10,
				"filter": {"min_token_length": 2},
				"jobs": [{"input": "x.txt", "output": "y.txt"}]
			}`,
			check: func(t *testing.T, cfg *Config, dir string) {
				assert.Equal(t, 10, cfg.ChunkSize)
				assert.Equal(t, 2, cfg.Filter.MinTokenLength)
			},
		},
		{
			name:        "unknown_yaml_field",
			filename:    "bad.yaml",
			config:      "chunk_sise: 10\n",
			wantErr:     true,
			errContains: "chunk_sise",
		},
		{
			name:        "unknown_json_field",
			filename:    "bad.json",
			config:      `{"provider": {}}`,
			wantErr:     true,
			errContains: "unknown field",
		},
		{
			name:        "invalid_hcl",
			filename:    "bad.hcl",
			config:      "job {",
			wantErr:     true,
			errContains: "parsing HCL",
		},
		{
			name:        "unsupported_extension",
			filename:    "chunkrc.toml",
			config:      "chunk_size = 1",
			wantErr:     true,
			errContains: "no parser found",
		},
		{
			name:        "bad_policy",
			filename:    "policy.yaml",
			config:      "failure_policy: retry\n",
			wantErr:     true,
			errContains: "unknown failure policy",
		},
	}

	t.Setenv("CHUNKRC_TEST_ROOT", "/srv/data")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeConfig(t, dir, tt.filename, tt.config)

			cfg, err := Load(testContext(t), path)
			if tt.wantErr {
				require.Error(t, err, "loading config should fail")
				assert.ErrorIs(t, err, errdefs.ErrInvalidConfiguration)
				assert.Contains(t, err.Error(), tt.errContains, "error should contain expected message")
				return
			}

			require.NoError(t, err, "loading config should succeed")
			require.NotNil(t, cfg)
			tt.check(t, cfg, dir)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(testContext(t), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errdefs.ErrNotFound)
}

func TestLoadUnreadableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chunkrc.yaml")
	require.NoError(t, os.Mkdir(path, 0o755))

	_, err := Load(testContext(t), path)
	require.Error(t, err)
	assert.Equal(t, errdefs.ErrIOFailure, errdefs.Kind(err))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		cfg         Config
		errContains string
	}{
		{name: "empty_is_valid", cfg: Config{}},
		{name: "negative_chunk_size", cfg: Config{ChunkSize: -1}, errContains: "chunk_size"},
		{name: "negative_chunks", cfg: Config{MaxParallelChunks: -2}, errContains: "max_parallel_chunks"},
		{name: "negative_files", cfg: Config{MaxParallelFiles: -3}, errContains: "max_parallel_files"},
		{name: "negative_min_length", cfg: Config{Filter: &FilterConfig{MinTokenLength: -1}}, errContains: "filter"},
		{name: "job_without_input", cfg: Config{JobList: []JobConfig{{Output: "o"}}}, errContains: "jobs[0].input"},
		{name: "job_without_output", cfg: Config{JobList: []JobConfig{{Input: "i"}}}, errContains: "jobs[0].output"},
		{name: "glob_without_pattern", cfg: Config{Globs: []GlobConfig{{OutputDir: "o"}}}, errContains: "globs[0].pattern"},
		{name: "glob_without_output_dir", cfg: Config{Globs: []GlobConfig{{Pattern: "*.txt"}}}, errContains: "globs[0].output_dir"},
		{name: "bad_glob", cfg: Config{Globs: []GlobConfig{{Pattern: "[", OutputDir: "o"}}}, errContains: "not a valid glob"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.errContains == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, errdefs.ErrInvalidConfiguration)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestJobsGlobs(t *testing.T) {
	dir := t.TempDir()
	for _, p := range []string{"docs/b.md", "docs/a.md", "docs/nested/c.md", "docs/skip.txt"} {
		full := filepath.Join(dir, p)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(p), 0o644))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "docs", "dir.md"), 0o755))

	path := writeConfig(t, dir, "chunkrc.yaml", `
jobs:
  - input: first.txt
    output: out/first.txt
globs:
  - pattern: "docs/**/*.md"
    output_dir: out/docs
    suffix: .filtered
  - pattern: "nothing/*.md"
    output_dir: out/none
`)

	cfg, err := Load(testContext(t), path)
	require.NoError(t, err)

	inputs, outputs, err := cfg.Jobs(testContext(t))
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "first.txt"),
		filepath.Join(dir, "docs/a.md"),
		filepath.Join(dir, "docs/b.md"),
		filepath.Join(dir, "docs/nested/c.md"),
	}, inputs)
	assert.Equal(t, []string{
		filepath.Join(dir, "out/first.txt"),
		filepath.Join(dir, "out/docs/a.md.filtered"),
		filepath.Join(dir, "out/docs/b.md.filtered"),
		filepath.Join(dir, "out/docs/nested/c.md.filtered"),
	}, outputs)
}

func TestOptions(t *testing.T) {
	cfg := &Config{ChunkSize: 7, MaxParallelChunks: 3, MaxParallelFiles: 2, FailurePolicy: "abort", KeepTempOnFailure: true}
	require.NoError(t, cfg.Validate())

	var o pipeline.Options
	for _, opt := range cfg.Options() {
		opt(&o)
	}
	assert.Equal(t, 7, o.ChunkSize)
	assert.Equal(t, 3, o.MaxParallelChunks)
	assert.Equal(t, 2, o.MaxParallelFiles)
	assert.Equal(t, pipeline.PolicyAbort, o.Policy)
	assert.True(t, o.KeepTemp)
	assert.Contains(t, cfg.String(), "policy=abort")
}
