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
	"github.com/spf13/cobra"
	"github.com/walteh/chunkrc/pkg/config"
	"github.com/walteh/chunkrc/pkg/errdefs"
	"github.com/walteh/chunkrc/pkg/log"
	"github.com/walteh/chunkrc/pkg/pipeline"
	"github.com/walteh/chunkrc/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// runOpts holds the flags of the run command
type runOpts struct {
	inputs  []string
	outputs []string

	minLength        int
	stripPunctuation bool
	delimiters       string
	preserveLines    bool

	chunkSize      int
	parallelChunks int
	parallelFiles  int
	policy         string
	keepTemp       bool
	noProgress     bool
}

func newRunCmd(root *rootOpts) *cobra.Command {
	opts := &runOpts{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Filter every configured file",
		Long: `Run processes the jobs from --config plus every --input/--output pair given
on the command line. Flags override the config file.

Each --input is paired with the --output at the same position.`,
		Example: `  chunkrc run -i notes.txt -o out/notes.txt --min-length 4 --strip-punctuation
  chunkrc run -c chunkrc.yaml --parallel-files 2
  chunkrc run -i github://walteh/chunkrc/README.md@main -o readme.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, root)
		},
	}

	f := cmd.Flags()
	f.StringArrayVarP(&opts.inputs, "input", "i", nil, "input location, repeatable")
	f.StringArrayVarP(&opts.outputs, "output", "o", nil, "output path, repeatable, paired with --input by position")
	f.IntVar(&opts.minLength, "min-length", 0, "drop tokens shorter than this many characters")
	f.BoolVar(&opts.stripPunctuation, "strip-punctuation", false, "remove punctuation before filtering")
	f.StringVar(&opts.delimiters, "delimiters", "", "token separator characters (default: any whitespace)")
	f.BoolVar(&opts.preserveLines, "preserve-lines", false, "filter each line separately and keep line breaks")
	f.IntVar(&opts.chunkSize, "chunk-size", 0, "chunk size in characters (default 8192)")
	f.IntVar(&opts.parallelChunks, "parallel-chunks", 0, "max concurrent chunk transforms per file (default: CPU count)")
	f.IntVar(&opts.parallelFiles, "parallel-files", 0, "max concurrent files (default: CPU count)")
	f.StringVar(&opts.policy, "policy", "", "chunk failure policy: substitute or abort")
	f.BoolVar(&opts.keepTemp, "keep-temp", false, "keep .tmp files when a write fails")
	f.BoolVar(&opts.noProgress, "no-progress", false, "disable the progress bar")

	return cmd
}

// loadConfig reads --config when given and applies flag overrides
func (o *runOpts) loadConfig(cmd *cobra.Command, root *rootOpts) (*config.Config, string, error) {
	ctx := cmd.Context()

	cfg := &config.Config{}
	src := "command line"
	if root.configFile != "" {
		loaded, err := config.Load(ctx, root.configFile)
		if err != nil {
			return nil, "", errors.Errorf("loading config: %w", err)
		}
		cfg, src = loaded, root.configFile
	}
	if cfg.Filter == nil {
		cfg.Filter = &config.FilterConfig{}
	}

	f := cmd.Flags()
	if f.Changed("min-length") {
		cfg.Filter.MinTokenLength = o.minLength
	}
	if f.Changed("strip-punctuation") {
		cfg.Filter.StripPunctuation = o.stripPunctuation
	}
	if f.Changed("delimiters") {
		cfg.Filter.Delimiters = o.delimiters
	}
	if f.Changed("preserve-lines") {
		cfg.Filter.PreserveLines = o.preserveLines
	}
	if f.Changed("chunk-size") {
		cfg.ChunkSize = o.chunkSize
	}
	if f.Changed("parallel-chunks") {
		cfg.MaxParallelChunks = o.parallelChunks
	}
	if f.Changed("parallel-files") {
		cfg.MaxParallelFiles = o.parallelFiles
	}
	if f.Changed("policy") {
		cfg.FailurePolicy = o.policy
	}
	if f.Changed("keep-temp") {
		cfg.KeepTempOnFailure = o.keepTemp
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, src, nil
}

func (o *runOpts) run(cmd *cobra.Command, root *rootOpts) error {
	ctx := cmd.Context()

	cfg, src, err := o.loadConfig(cmd, root)
	if err != nil {
		return err
	}

	if len(o.inputs) != len(o.outputs) {
		return errors.Errorf("%w: %d --input flags but %d --output flags", errdefs.ErrInvalidConfiguration, len(o.inputs), len(o.outputs))
	}

	inputs, outputs, err := cfg.Jobs(ctx)
	if err != nil {
		return err
	}
	inputs = append(inputs, o.inputs...)
	outputs = append(outputs, o.outputs...)

	console := log.New(cmd.OutOrStdout(), levelFor(root.debug))
	console.Header("filtering files")
	console.StartBatch(log.BatchOperation{Source: src, Files: len(inputs)})

	bar := newProgress(cmd.ErrOrStderr(), !o.noProgress && len(inputs) > 0)

	opts := append(cfg.Options(), pipeline.WithObserver(console))
	res, err := pipeline.ProcessFiles(ctx, inputs, outputs, cfg.TextFilter(), bar.Update, opts...)
	bar.Stop()

	counts := console.EndBatch()
	console.LogNewline()
	console.Info(status.FormatProgress(counts[status.OutcomeCommitted]+counts[status.OutcomeDegraded], len(inputs)))

	if err != nil {
		console.Errorf("batch %s: %s", stateOf(res), errdefs.KindName(err))
		return err
	}

	if failed := res.Failures(); len(failed) > 0 {
		console.Warningf("%d chunks failed their transform and hold placeholders", len(failed))
	}
	console.Successf("%d files written", len(inputs))
	return nil
}

func stateOf(res *pipeline.BatchResult) string {
	if res == nil {
		return pipeline.StateFailed.String()
	}
	return res.State.String()
}
