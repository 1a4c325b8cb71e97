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

package status

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sergi/go-diff/diffmatchpatch"
	"gitlab.com/tozd/go/errors"
)

// 📝 Change is the outcome of folding the rules over one file
type Change struct {
	Path         string
	Original     string
	Updated      string
	Changed      bool
	Mode         fs.FileMode // permissions to restore, zero means stat the target
	Replacements int
	Unstable     bool
}

func (c Change) record() ChangeRecord {
	return ChangeRecord{
		Path:         c.Path,
		Changed:      c.Changed,
		Replacements: c.Replacements,
		Unstable:     c.Unstable,
	}
}

// 💾 Writer persists a Change. The returned record is complete even when err
// is non-nil.
type Writer interface {
	Commit(ctx context.Context, change Change) (ChangeRecord, error)
}

// ❌ FileWriteError reports a failed replacement of a file's content. The
// original file is left as it was.
type FileWriteError struct {
	Path string
	Op   string
	Err  error
}

func (e *FileWriteError) Error() string {
	return fmt.Sprintf("writing %s: %s: %v", e.Path, e.Op, e.Err)
}

func (e *FileWriteError) Unwrap() error {
	return e.Err
}

// 🔒 FileWriter replaces changed files atomically and never touches
// unchanged ones
type FileWriter struct {
	rename func(oldpath, newpath string) error
}

// 🏭 NewFileWriter creates a writer backed by the local filesystem
func NewFileWriter() *FileWriter {
	return &FileWriter{rename: os.Rename}
}

func (w *FileWriter) Commit(ctx context.Context, change Change) (ChangeRecord, error) {
	rec := change.record()
	if !change.Changed {
		return rec, nil
	}

	if err := w.writeFileAtomic(ctx, change.Path, []byte(change.Updated), change.Mode); err != nil {
		rec.Err = err
		return rec, err
	}

	return rec, nil
}

// writeFileAtomic writes content to a temp file next to the file path resolves
// to and renames it over that file, so readers see either the old or the new
// content
func (w *FileWriter) writeFileAtomic(ctx context.Context, path string, content []byte, mode fs.FileMode) (err error) {
	logger := zerolog.Ctx(ctx)

	// a symlink is kept; the file it points at is replaced
	target, err := filepath.EvalSymlinks(path)
	if err != nil {
		return &FileWriteError{Path: path, Op: "resolving path", Err: err}
	}

	if mode == 0 {
		info, statErr := os.Stat(target)
		if statErr != nil {
			return &FileWriteError{Path: path, Op: "stat", Err: statErr}
		}
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".*.tmp")
	if err != nil {
		return &FileWriteError{Path: path, Op: "creating temp file", Err: err}
	}
	tmpPath := tmp.Name()

	committed := false
	defer func() {
		// closing twice only returns an error, which is ignored here
		_ = tmp.Close()
		if !committed {
			if rmErr := os.Remove(tmpPath); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
				logger.Warn().Err(rmErr).Str("temp", tmpPath).Msg("leaving temp file behind")
			}
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return &FileWriteError{Path: path, Op: "writing temp file", Err: err}
	}
	if err := tmp.Sync(); err != nil {
		return &FileWriteError{Path: path, Op: "syncing temp file", Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &FileWriteError{Path: path, Op: "closing temp file", Err: err}
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		return &FileWriteError{Path: path, Op: "setting mode", Err: err}
	}
	if err := w.rename(tmpPath, target); err != nil {
		return &FileWriteError{Path: path, Op: "renaming temp file", Err: err}
	}
	committed = true

	logger.Debug().Str("path", path).Str("target", target).Int("bytes", len(content)).Msg("file written")
	return nil
}

// 👀 DiffWriter never writes. It renders the line diff of each change instead.
type DiffWriter struct {
	dmp *diffmatchpatch.DiffMatchPatch
}

// 🏭 NewDiffWriter creates a dry run writer
func NewDiffWriter() *DiffWriter {
	return &DiffWriter{dmp: diffmatchpatch.New()}
}

func (w *DiffWriter) Commit(_ context.Context, change Change) (ChangeRecord, error) {
	rec := change.record()
	if change.Changed {
		rec.Diff = w.render(change.Path, change.Original, change.Updated)
	}
	return rec, nil
}

// render produces removed and added lines, unchanged lines omitted
func (w *DiffWriter) render(path, original, updated string) string {
	a, b, lines := w.dmp.DiffLinesToChars(original, updated)
	diffs := w.dmp.DiffCharsToLines(w.dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- %s\n+++ %s\n", path, path)
	for _, d := range diffs {
		var prefix string
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		default:
			continue
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			sb.WriteString(prefix)
			sb.WriteString(line)
			if !strings.HasSuffix(line, "\n") {
				sb.WriteString("\n\\ no newline at end of file\n")
			}
		}
	}
	return sb.String()
}
