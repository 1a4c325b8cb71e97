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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func testContext() context.Context {
	return zerolog.New(os.Stderr).Level(zerolog.WarnLevel).WithContext(context.Background())
}

func writeFile(t *testing.T, dir, name, content string, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), mode))
	require.NoError(t, os.Chmod(path, mode))
	return path
}

func TestFileWriter_Commit(t *testing.T) {
	tests := []struct {
		name    string
		mode    os.FileMode
		changed bool
		want    string
	}{
		{
			name:    "changed_file_is_replaced",
			mode:    0644,
			changed: true,
			want:    "kplat::mem\n",
		},
		{
			name:    "executable_mode_survives",
			mode:    0755,
			changed: true,
			want:    "kplat::mem\n",
		},
		{
			name:    "unchanged_file_is_left_alone",
			mode:    0600,
			changed: false,
			want:    "axplat::mem\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeFile(t, dir, "lib.rs", "axplat::mem\n", tt.mode)

			rec, err := NewFileWriter().Commit(testContext(), Change{
				Path:         path,
				Original:     "axplat::mem\n",
				Updated:      "kplat::mem\n",
				Changed:      tt.changed,
				Replacements: 1,
			})
			require.NoError(t, err)
			assert.Equal(t, path, rec.Path)
			assert.Equal(t, tt.changed, rec.Changed)
			assert.Equal(t, 1, rec.Replacements)
			assert.Empty(t, rec.Diff, "file writer never renders diffs")

			got, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))

			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Equal(t, tt.mode, info.Mode().Perm(), "mode should be preserved")

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Len(t, entries, 1, "no temp files should remain")
		})
	}
}

func TestFileWriter_NoOpDoesNotTouchFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "lib.rs", "same\n", 0644)

	past := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, os.Chtimes(path, past, past))

	_, err := NewFileWriter().Commit(testContext(), Change{
		Path:     path,
		Original: "same\n",
		Updated:  "same\n",
	})
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(past), "mtime should be unchanged")
}

func TestFileWriter_NoOpOnMissingFile(t *testing.T) {
	// an unchanged commit must not even stat the target
	missing := filepath.Join(t.TempDir(), "gone.rs")
	rec, err := NewFileWriter().Commit(testContext(), Change{Path: missing})
	require.NoError(t, err)
	assert.NoError(t, rec.Err)
}

func TestFileWriter_FailedRenameLeavesOriginal(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "Cargo.toml", "kplat-x86-pc = 1\n", 0644)

	w := NewFileWriter()
	w.rename = func(string, string) error { return errors.New("disk on fire") }

	rec, err := w.Commit(testContext(), Change{
		Path:     path,
		Original: "kplat-x86-pc = 1\n",
		Updated:  "x86-pc = 1\n",
		Changed:  true,
	})
	require.Error(t, err)

	var writeErr *FileWriteError
	require.True(t, errors.As(err, &writeErr))
	assert.Equal(t, path, writeErr.Path)
	assert.Equal(t, "renaming temp file", writeErr.Op)
	assert.Contains(t, err.Error(), "disk on fire")
	assert.Equal(t, err, rec.Err, "record should carry the error")

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "kplat-x86-pc = 1\n", string(got), "original should be intact")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file should be removed")
}

func TestFileWriter_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "lib.rs")

	_, err := NewFileWriter().Commit(testContext(), Change{
		Path:    path,
		Updated: "x",
		Changed: true,
		Mode:    0644,
	})
	require.Error(t, err)

	var writeErr *FileWriteError
	require.True(t, errors.As(err, &writeErr))
	assert.Equal(t, "resolving path", writeErr.Op)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestFileWriter_SymlinkRewritesTarget(t *testing.T) {
	dir := t.TempDir()
	target := writeFile(t, dir, "real.rs", "use axplat::mem;\n", 0640)
	link := filepath.Join(dir, "link.rs")
	require.NoError(t, os.Symlink("real.rs", link))

	rec, err := NewFileWriter().Commit(testContext(), Change{
		Path:     link,
		Original: "use axplat::mem;\n",
		Updated:  "use kplat::mem;\n",
		Changed:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, link, rec.Path, "the record keeps the selected path")

	info, err := os.Lstat(link)
	require.NoError(t, err)
	assert.Equal(t, os.ModeSymlink, info.Mode()&os.ModeSymlink, "link should still be a symlink")

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "use kplat::mem;\n", string(got), "the link target gets the new content")

	info, err = os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0640), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temp files should remain")
}

func TestDiffWriter_Commit(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "lib.rs", "use axplat::mem;\nfn main() {}\n", 0644)

	rec, err := NewDiffWriter().Commit(testContext(), Change{
		Path:         path,
		Original:     "use axplat::mem;\nfn main() {}\n",
		Updated:      "use kplat::memory;\nfn main() {}\n",
		Changed:      true,
		Replacements: 2,
	})
	require.NoError(t, err)

	assert.True(t, rec.Changed)
	assert.Equal(t, 2, rec.Replacements)
	assert.Contains(t, rec.Diff, "--- "+path+"\n+++ "+path+"\n")
	assert.Contains(t, rec.Diff, "-use axplat::mem;\n")
	assert.Contains(t, rec.Diff, "+use kplat::memory;\n")
	assert.NotContains(t, rec.Diff, "fn main", "unchanged lines are omitted")

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "use axplat::mem;\nfn main() {}\n", string(got), "dry run never writes")
}

func TestDiffWriter_MissingTrailingNewline(t *testing.T) {
	rec, err := NewDiffWriter().Commit(testContext(), Change{
		Path:     "a.rs",
		Original: "RawRange",
		Updated:  "MemRange",
		Changed:  true,
	})
	require.NoError(t, err)
	assert.Contains(t, rec.Diff, "-RawRange\n\\ no newline at end of file\n")
	assert.Contains(t, rec.Diff, "+MemRange\n\\ no newline at end of file\n")
}

func TestDiffWriter_UnchangedHasNoDiff(t *testing.T) {
	rec, err := NewDiffWriter().Commit(testContext(), Change{Path: "a.rs", Original: "x", Updated: "x"})
	require.NoError(t, err)
	assert.Empty(t, rec.Diff)
	assert.False(t, rec.Changed)
}
