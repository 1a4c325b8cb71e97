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

// ErrChangesPending is returned by check when some file would change
var ErrChangesPending = errors.Base("changes pending")

// NewCheckCmd creates a new check command
func NewCheckCmd(o *opts.RootOpts) *cobra.Command {
	var (
		workers int
		quiet   bool
	)

	cmd := &cobra.Command{
		Use:   "check [roots...]",
		Short: "Show what apply would change without writing",
		Long: `Check runs the same fold as apply but writes nothing. It prints a diff for
every file that would change and exits non-zero when there is one.

Run it after a migration to confirm the rules have nothing left to do.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "check").Logger().WithContext(cmd.Context())
			logger := o.NewLogger(ctx, cmd.OutOrStdout(), log.WithDiffs(!quiet))
			ctx = log.NewContext(ctx, logger)

			summary, err := run(ctx, o, runOptions{
				roots:   args,
				workers: workers,
				verify:  true,
				writer:  status.NewDiffWriter(),
			})
			if err != nil {
				return err
			}

			if summary.Failed > 0 {
				return errors.Errorf("%d of %d files failed", summary.Failed, summary.Total)
			}
			if summary.Changed > 0 {
				return errors.Errorf("%d files would change: %w", summary.Changed, ErrChangesPending)
			}

			logger.Success("nothing to rewrite")
			return nil
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "files processed in parallel (default target.workers)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "list files without their diffs")

	return cmd
}
