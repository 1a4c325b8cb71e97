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

package operation

import (
	"context"
	"iter"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/walteh/rewriterc/pkg/status"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// 📥 Sink receives one record per file
type Sink interface {
	Record(ctx context.Context, rec status.ChangeRecord)
}

// 🏃 Runner processes selected files on a bounded pool of workers
type Runner struct {
	applier *Applier
	writer  status.Writer
	sink    Sink
	workers int
}

// 🏗️ NewRunner creates a new runner. Fewer than one worker means one.
func NewRunner(applier *Applier, writer status.Writer, sink Sink, workers int) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		applier: applier,
		writer:  writer,
		sink:    sink,
		workers: workers,
	}
}

// 🏃 Run processes every path. A file is processed at most once no matter how
// often, or under how many spellings and symlinks, it is yielded. Errors from
// paths become failed records; they never stop other files. Once ctx is done no
// new file is started, files in flight finish, and Run returns the context's
// error.
func (r *Runner) Run(ctx context.Context, paths iter.Seq2[string, error]) error {
	logger := zerolog.Ctx(ctx)

	// a plain group, a failed file must not cancel its siblings
	var g errgroup.Group
	g.SetLimit(r.workers)

	seen := make(map[string]struct{})
	dispatched := 0

	for path, err := range paths {
		if ctx.Err() != nil {
			break
		}

		if err != nil {
			r.sink.Record(ctx, status.ChangeRecord{Path: path, Err: err})
			continue
		}

		key := canonicalPath(path)
		if _, dup := seen[key]; dup {
			logger.Debug().Str("path", path).Str("file", key).Msg("skipping duplicate path")
			continue
		}
		seen[key] = struct{}{}

		// blocks while every worker is busy
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			r.sink.Record(ctx, r.applier.Process(ctx, path, r.writer))
			return nil
		})
		dispatched++
	}

	_ = g.Wait()

	logger.Debug().Int("dispatched", dispatched).Int("workers", r.workers).Msg("run finished")

	if err := ctx.Err(); err != nil {
		return errors.Errorf("run interrupted: %w", err)
	}
	return nil
}

// canonicalPath names the file a path refers to: absolute, with symlinks
// resolved when the file exists
func canonicalPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}
