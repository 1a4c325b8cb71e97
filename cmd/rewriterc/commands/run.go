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
	"context"
	"fmt"

	"github.com/walteh/rewriterc/cmd/rewriterc/opts"
	"github.com/walteh/rewriterc/pkg/log"
	"github.com/walteh/rewriterc/pkg/operation"
	"github.com/walteh/rewriterc/pkg/selector"
	"github.com/walteh/rewriterc/pkg/status"
	"gitlab.com/tozd/go/errors"
)

type runOptions struct {
	roots   []string
	workers int
	verify  bool
	writer  status.Writer
}

// run selects files, rewrites them and prints the summary through the logger
// carried by ctx
func run(ctx context.Context, o *opts.RootOpts, ro runOptions) (status.Summary, error) {
	logger := log.FromContext(ctx)
	target := o.Config.Target

	roots := ro.roots
	if len(roots) == 0 {
		roots = target.Roots
	}
	workers := ro.workers
	if workers == 0 {
		workers = target.Workers
	}

	sel, err := selector.New(target.SelectorOptions())
	if err != nil {
		return status.Summary{}, errors.Errorf("creating selector: %w", err)
	}

	collector := status.NewCollector(logger)
	applier := operation.NewApplier(o.RuleSet, operation.WithVerify(ro.verify))
	runner := operation.NewRunner(applier, ro.writer, collector, workers)

	logger.Header(fmt.Sprintf("%d rules over %d roots", o.RuleSet.Len(), len(roots)))

	logger.Infof("%d workers, verify %t", workers, ro.verify)

	runErr := runner.Run(ctx, sel.Select(ctx, roots...).Paths())

	summary := collector.Summary()
	logger.Summary(summary)
	logger.Failure(runErr)

	return summary, runErr
}
