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
	"io"
	"io/fs"
	"os"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/walteh/rewriterc/pkg/status"
	"github.com/walteh/rewriterc/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// 📄 FileTarget is one file's content for the duration of a single pass
type FileTarget struct {
	Path     string
	Original string
	Current  string
	Mode     fs.FileMode
	Hits     []text.Hit
	Unstable bool // set only when verification is enabled
}

// Changed reports whether the current content differs from what was loaded
func (t *FileTarget) Changed() bool {
	return t.Current != t.Original
}

// Replacements is the number of occurrences replaced so far
func (t *FileTarget) Replacements() int {
	n := 0
	for _, h := range t.Hits {
		n += h.Count
	}
	return n
}

// Change describes the target for a status.Writer
func (t *FileTarget) Change() status.Change {
	return status.Change{
		Path:         t.Path,
		Original:     t.Original,
		Updated:      t.Current,
		Changed:      t.Changed(),
		Mode:         t.Mode,
		Replacements: t.Replacements(),
		Unstable:     t.Unstable,
	}
}

// ApplierOption configures an Applier
type ApplierOption func(*Applier)

// WithVerify folds the rules a second time over every changed file and flags
// files the second fold would change again
func WithVerify(verify bool) ApplierOption {
	return func(a *Applier) {
		a.verify = verify
	}
}

// 🔧 Applier folds a RuleSet over single files
type Applier struct {
	rules  *text.RuleSet
	verify bool
}

// 🏭 NewApplier creates an applier for rules
func NewApplier(rules *text.RuleSet, opts ...ApplierOption) *Applier {
	a := &Applier{rules: rules}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Load reads path into a FileTarget. The file is closed before Load returns.
func (a *Applier) Load(ctx context.Context, path string) (*FileTarget, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &FileReadError{Path: path, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, &FileReadError{Path: path, Err: err}
	}
	if info.IsDir() {
		return nil, &FileReadError{Path: path, Err: errors.New("is a directory")}
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, &FileReadError{Path: path, Err: err}
	}
	if !utf8.Valid(data) {
		return nil, &FileReadError{Path: path, Err: ErrInvalidUTF8}
	}

	zerolog.Ctx(ctx).Trace().Str("path", path).Int("bytes", len(data)).Msg("file loaded")

	content := string(data)
	return &FileTarget{
		Path:     path,
		Original: content,
		Current:  content,
		Mode:     info.Mode().Perm(),
	}, nil
}

// Apply folds every rule over the target's current content
func (a *Applier) Apply(ctx context.Context, target *FileTarget) {
	result := a.rules.Apply(target.Current)
	target.Current = result.Text
	target.Hits = append(target.Hits, result.Hits...)

	if a.verify && target.Changed() {
		target.Unstable = a.rules.Apply(target.Current).Changed
	}

	if target.Unstable {
		zerolog.Ctx(ctx).Warn().Str("path", target.Path).Msg("rules are not idempotent on this file")
	}
}

// Process loads, rewrites and commits one file. Failures are carried in the
// returned record.
func (a *Applier) Process(ctx context.Context, path string, writer status.Writer) status.ChangeRecord {
	logger := zerolog.Ctx(ctx)

	target, err := a.Load(ctx, path)
	if err != nil {
		logger.Debug().Err(err).Str("path", path).Msg("skipping unreadable file")
		return status.ChangeRecord{Path: path, Err: err}
	}

	a.Apply(ctx, target)

	rec, err := writer.Commit(ctx, target.Change())
	if rec.Path == "" {
		rec.Path = path
	}
	if err != nil && rec.Err == nil {
		rec.Err = err
	}
	return rec
}
