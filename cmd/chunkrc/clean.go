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
	"github.com/walteh/chunkrc/pkg/atomicfile"
	"github.com/walteh/chunkrc/pkg/config"
	"github.com/walteh/chunkrc/pkg/log"
	"gitlab.com/tozd/go/errors"
)

type cleanOpts struct {
	outputs []string
	dryRun  bool
}

func newCleanCmd(root *rootOpts) *cobra.Command {
	opts := &cleanOpts{}

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove staging files left by failed runs",
		Long: `Clean removes the .tmp staging file next to every output named by --config
or --output. Staging files only survive a failed write when keep_temp_on_failure
is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, root)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.outputs, "output", "o", nil, "output path, repeatable")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "list staging files without removing them")

	return cmd
}

func (o *cleanOpts) run(cmd *cobra.Command, root *rootOpts) error {
	ctx := cmd.Context()

	outputs := []string{}
	if root.configFile != "" {
		cfg, err := config.Load(ctx, root.configFile)
		if err != nil {
			return errors.Errorf("loading config: %w", err)
		}
		_, outputs, err = cfg.Jobs(ctx)
		if err != nil {
			return err
		}
	}
	outputs = append(outputs, o.outputs...)

	console := log.New(cmd.OutOrStdout(), levelFor(root.debug))

	removed := 0
	for _, out := range outputs {
		if o.dryRun {
			if fileExists(atomicfile.TempPath(out)) {
				console.Infof("would remove %s", atomicfile.TempPath(out))
				removed++
			}
			continue
		}
		ok, err := atomicfile.RemoveTemp(ctx, out)
		if err != nil {
			return err
		}
		if ok {
			console.Infof("removed %s", atomicfile.TempPath(out))
			removed++
		}
	}

	console.Successf("%d staging files cleaned", removed)
	return nil
}
