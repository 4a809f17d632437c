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
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/chunkrc/pkg/chunk"
	"github.com/walteh/chunkrc/pkg/errdefs"
	"github.com/walteh/chunkrc/pkg/pipeline"
	"github.com/walteh/chunkrc/pkg/source"
	"github.com/walteh/chunkrc/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 🧹 FilterConfig configures the token filter transform
type FilterConfig struct {
	MinTokenLength   int    `json:"min_token_length,omitempty" yaml:"min_token_length,omitempty" hcl:"min_token_length,optional"`
	StripPunctuation bool   `json:"strip_punctuation,omitempty" yaml:"strip_punctuation,omitempty" hcl:"strip_punctuation,optional"`
	Delimiters       string `json:"delimiters,omitempty" yaml:"delimiters,omitempty" hcl:"delimiters,optional"`
	PreserveLines    bool   `json:"preserve_lines,omitempty" yaml:"preserve_lines,omitempty" hcl:"preserve_lines,optional"`
}

// 📄 JobConfig is one explicit input/output pair
type JobConfig struct {
	Input  string `json:"input" yaml:"input" hcl:"input"`
	Output string `json:"output" yaml:"output" hcl:"output"`
}

// 🌐 GlobConfig maps every file matching Pattern into OutputDir
type GlobConfig struct {
	Pattern   string `json:"pattern" yaml:"pattern" hcl:"pattern"`
	OutputDir string `json:"output_dir" yaml:"output_dir" hcl:"output_dir"`
	Suffix    string `json:"suffix,omitempty" yaml:"suffix,omitempty" hcl:"suffix,optional"`
}

// 📚 Config represents the complete configuration
type Config struct {
	ChunkSize         int           `json:"chunk_size,omitempty" yaml:"chunk_size,omitempty" hcl:"chunk_size,optional"`
	MaxParallelChunks int           `json:"max_parallel_chunks,omitempty" yaml:"max_parallel_chunks,omitempty" hcl:"max_parallel_chunks,optional"`
	MaxParallelFiles  int           `json:"max_parallel_files,omitempty" yaml:"max_parallel_files,omitempty" hcl:"max_parallel_files,optional"`
	FailurePolicy     string        `json:"failure_policy,omitempty" yaml:"failure_policy,omitempty" hcl:"failure_policy,optional"`
	KeepTempOnFailure bool          `json:"keep_temp_on_failure,omitempty" yaml:"keep_temp_on_failure,omitempty" hcl:"keep_temp_on_failure,optional"`
	Filter            *FilterConfig `json:"filter,omitempty" yaml:"filter,omitempty" hcl:"filter,block"`
	JobList           []JobConfig   `json:"jobs,omitempty" yaml:"jobs,omitempty" hcl:"job,block"`
	Globs             []GlobConfig  `json:"globs,omitempty" yaml:"globs,omitempty" hcl:"glob,block"`

	// directory relative paths resolve against, set by Load
	location string
}

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Errorf("%w: config file %s", errdefs.ErrNotFound, path)
		}
		return nil, errors.Errorf("%w: reading config file: %w", errdefs.ErrIOFailure, err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("%w: no parser found for file: %s", errdefs.ErrInvalidConfiguration, path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("%w: parsing config: %w", errdefs.ErrInvalidConfiguration, err)
	}

	cfg.location = filepath.Dir(path)

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// 🔍 Validate checks the configuration and fills in defaults
func (cfg *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return errors.Errorf("%w: %s", errdefs.ErrInvalidConfiguration, fmt.Sprintf(format, args...))
	}

	if cfg.ChunkSize < 0 {
		return invalid("chunk_size must not be negative")
	}
	if cfg.MaxParallelChunks < 0 {
		return invalid("max_parallel_chunks must not be negative")
	}
	if cfg.MaxParallelFiles < 0 {
		return invalid("max_parallel_files must not be negative")
	}
	if _, err := pipeline.ParseFailurePolicy(cfg.FailurePolicy); err != nil {
		return err
	}

	if cfg.Filter == nil {
		cfg.Filter = &FilterConfig{}
	}
	if err := cfg.TextFilter().Validate(); err != nil {
		return invalid("filter: %s", err)
	}

	for i, j := range cfg.JobList {
		if j.Input == "" {
			return invalid("jobs[%d].input is required", i)
		}
		if j.Output == "" {
			return invalid("jobs[%d].output is required", i)
		}
	}
	for i, g := range cfg.Globs {
		if g.Pattern == "" {
			return invalid("globs[%d].pattern is required", i)
		}
		if g.OutputDir == "" {
			return invalid("globs[%d].output_dir is required", i)
		}
		if !doublestar.ValidatePattern(filepath.ToSlash(g.Pattern)) {
			return invalid("globs[%d].pattern %q is not a valid glob", i, g.Pattern)
		}
	}

	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = chunk.DefaultSize
	}
	if cfg.FailurePolicy == "" {
		cfg.FailurePolicy = pipeline.PolicySubstitute.String()
	}

	return nil
}

// 🧹 TextFilter returns the filter transform described by the config
func (cfg *Config) TextFilter() text.Filter {
	if cfg.Filter == nil {
		return text.Filter{}
	}
	return text.Filter{
		MinTokenLength:   cfg.Filter.MinTokenLength,
		StripPunctuation: cfg.Filter.StripPunctuation,
		Delimiters:       cfg.Filter.Delimiters,
		PreserveLines:    cfg.Filter.PreserveLines,
	}
}

// 🔧 Options translates the tunables into pipeline options
func (cfg *Config) Options() []pipeline.Option {
	policy, _ := pipeline.ParseFailurePolicy(cfg.FailurePolicy)
	return []pipeline.Option{
		pipeline.WithChunkSize(cfg.ChunkSize),
		pipeline.WithMaxParallelChunks(cfg.MaxParallelChunks),
		pipeline.WithMaxParallelFiles(cfg.MaxParallelFiles),
		pipeline.WithFailurePolicy(policy),
		pipeline.WithKeepTemp(cfg.KeepTempOnFailure),
	}
}

// 📋 Jobs returns the ordered input and output lists: explicit jobs first,
// then the matches of every glob in lexical order.
func (cfg *Config) Jobs(ctx context.Context) (inputs, outputs []string, err error) {
	logger := zerolog.Ctx(ctx)

	inputs, outputs = []string{}, []string{}
	for _, j := range cfg.JobList {
		inputs = append(inputs, cfg.resolve(j.Input))
		outputs = append(outputs, cfg.resolve(j.Output))
	}

	for _, g := range cfg.Globs {
		pattern := cfg.resolve(g.Pattern)
		base, _ := doublestar.SplitPattern(filepath.ToSlash(pattern))

		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, nil, errors.Errorf("%w: expanding %s: %w", errdefs.ErrInvalidConfiguration, g.Pattern, err)
		}
		sort.Strings(matches)

		if len(matches) == 0 {
			logger.Warn().Str("pattern", g.Pattern).Msg("glob matched no files")
		}

		for _, m := range matches {
			rel, err := filepath.Rel(filepath.FromSlash(base), m)
			if err != nil {
				return nil, nil, errors.Errorf("%w: relativizing %s: %w", errdefs.ErrInvalidConfiguration, m, err)
			}
			inputs = append(inputs, m)
			outputs = append(outputs, filepath.Join(cfg.resolve(g.OutputDir), rel)+g.Suffix)
		}
	}

	logger.Debug().Int("jobs", len(inputs)).Msg("resolved jobs")
	return inputs, outputs, nil
}

// resolve anchors relative local paths at the config directory
func (cfg *Config) resolve(p string) string {
	if cfg.location == "" || filepath.IsAbs(p) {
		return p
	}
	if scheme, rest := source.Split(p); scheme != source.FileScheme || rest != p {
		return p
	}
	return filepath.Join(cfg.location, p)
}

// 📝 String returns a short summary of the config
func (cfg *Config) String() string {
	return fmt.Sprintf("chunk_size=%d policy=%s jobs=%d globs=%d",
		cfg.ChunkSize, cfg.FailurePolicy, len(cfg.JobList), len(cfg.Globs))
}
