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

// Package selector enumerates candidate files under one or more roots.
//
// Walks are depth first with directory entries visited in name order, so the
// same tree always yields the same sequence. Excluded directories are pruned
// before descent: nothing beneath them is listed or stat-ed. File contents are
// never read.
package selector

import (
	"context"
	"io/fs"
	"iter"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// ErrSelectionConsumed is yielded when a Selection is iterated a second time
var ErrSelectionConsumed = errors.New("selection already consumed")

// 🔧 Options controls which files are selected
type Options struct {
	Extensions  []string // file extensions, with or without the leading dot
	ExcludeDirs []string // directory names pruned wherever they appear
	Include     []string // doublestar globs, relative to the root, selecting extra files
	Exclude     []string // doublestar globs, relative to the root, rejecting files and directories
}

// 🔍 Selector enumerates files matching Options
type Selector struct {
	extensions  map[string]struct{}
	excludeDirs map[string]struct{}
	include     []string
	exclude     []string

	// fsFor opens a root for walking, stat describes the root itself
	fsFor func(root string) fs.FS
	stat  func(root string) (fs.FileInfo, error)
}

// 🏭 New creates a selector, validating glob syntax up front
func New(opts Options) (*Selector, error) {
	s := &Selector{
		extensions:  make(map[string]struct{}, len(opts.Extensions)),
		excludeDirs: make(map[string]struct{}, len(opts.ExcludeDirs)),
		include:     opts.Include,
		exclude:     opts.Exclude,
		fsFor:       os.DirFS,
		stat:        os.Stat,
	}

	for _, ext := range opts.Extensions {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		s.extensions[ext] = struct{}{}
	}

	for _, dir := range opts.ExcludeDirs {
		s.excludeDirs[dir] = struct{}{}
	}

	for _, pattern := range append(append([]string{}, opts.Include...), opts.Exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.Errorf("invalid glob pattern %q", pattern)
		}
	}

	return s, nil
}

// 📦 Selection is a lazy, single-use sequence of selected paths
type Selection struct {
	ctx      context.Context
	selector *Selector
	roots    []string
	used     atomic.Bool
}

// Select prepares a walk over roots. Nothing is touched until Paths is iterated.
func (s *Selector) Select(ctx context.Context, roots ...string) *Selection {
	return &Selection{
		ctx:      ctx,
		selector: s,
		roots:    roots,
	}
}

// Paths yields each selected file path, or an error for a root or directory
// that could not be walked. Iteration stops early when the context is done.
func (sel *Selection) Paths() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if sel.used.Swap(true) {
			yield("", ErrSelectionConsumed)
			return
		}

		for _, root := range sel.roots {
			if !sel.selector.walkRoot(sel.ctx, root, yield) {
				return
			}
		}
	}
}

// walkRoot returns false when the consumer stopped iterating
func (s *Selector) walkRoot(ctx context.Context, root string, yield func(string, error) bool) bool {
	logger := zerolog.Ctx(ctx)

	info, err := s.stat(root)
	if err != nil {
		return yield(root, errors.Errorf("root %s: %w", root, err))
	}

	// a root naming a file is always selected
	if !info.IsDir() {
		return yield(root, nil)
	}

	logger.Debug().Str("root", root).Msg("walking root")
	return s.walkDir(ctx, s.fsFor(root), root, ".", yield)
}

func (s *Selector) walkDir(ctx context.Context, fsys fs.FS, root, dir string, yield func(string, error) bool) bool {
	if ctx.Err() != nil {
		return false
	}

	// fs.ReadDir returns entries sorted by name
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return yield(filepath.Join(root, filepath.FromSlash(dir)), errors.Errorf("reading directory: %w", err))
	}

	for _, entry := range entries {
		rel := path.Join(dir, entry.Name())

		if entry.IsDir() {
			if s.prunes(entry.Name(), rel) {
				zerolog.Ctx(ctx).Trace().Str("dir", rel).Msg("pruned directory")
				continue
			}
			if !s.walkDir(ctx, fsys, root, rel, yield) {
				return false
			}
			continue
		}

		if !entry.Type().IsRegular() {
			continue
		}

		if s.selects(rel) {
			if !yield(filepath.Join(root, filepath.FromSlash(rel)), nil) {
				return false
			}
		}
	}

	return true
}

// prunes reports whether a directory is excluded by name or glob
func (s *Selector) prunes(name, rel string) bool {
	if _, ok := s.excludeDirs[name]; ok {
		return true
	}
	return matchAny(s.exclude, rel)
}

// selects reports whether a file passes the extension and glob filters
func (s *Selector) selects(rel string) bool {
	if matchAny(s.exclude, rel) {
		return false
	}
	if _, ok := s.extensions[path.Ext(rel)]; ok {
		return true
	}
	return matchAny(s.include, rel)
}

func matchAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		// patterns were validated in New
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
