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

package commands

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/rewriterc/cmd/rewriterc/opts"
	"github.com/walteh/rewriterc/pkg/log"
	"github.com/walteh/rewriterc/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// NewApplyCmd creates a new apply command
func NewApplyCmd(o *opts.RootOpts) *cobra.Command {
	var (
		workers   int
		verify    bool
		unchanged bool
	)

	cmd := &cobra.Command{
		Use:   "apply [roots...]",
		Short: "Rewrite files in place",
		Long: `Apply folds every rule, in order, over each selected file and writes the
files that changed. Roots default to target.roots from the rule file.

A file that cannot be read or written is reported and skipped. The command
exits non-zero when any file failed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "apply").Logger().WithContext(cmd.Context())
			logger := o.NewLogger(ctx, cmd.OutOrStdout(), log.WithUnchanged(unchanged))
			ctx = log.NewContext(ctx, logger)

			summary, err := run(ctx, o, runOptions{
				roots:   args,
				workers: workers,
				verify:  verify,
				writer:  status.NewFileWriter(),
			})
			if err != nil {
				return err
			}

			if summary.Unstable > 0 {
				logger.Warningf("%d files would change again on a second run", summary.Unstable)
			}
			if summary.Failed > 0 {
				return errors.Errorf("%d of %d files failed", summary.Failed, summary.Total)
			}

			logger.Successf("%d files rewritten", summary.Changed)
			return nil
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "files processed in parallel (default target.workers)")
	cmd.Flags().BoolVar(&verify, "verify", false, "flag files the rules would change again")
	cmd.Flags().BoolVar(&unchanged, "unchanged", false, "also list files no rule touched")

	return cmd
}
