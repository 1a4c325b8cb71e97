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
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/rewriterc/cmd/rewriterc/commands"
	"github.com/walteh/rewriterc/pkg/text"
	"gitlab.com/tozd/go/errors"
)

const testRules = `
target:
  extensions: [.rs]
  exclude_dirs: [.git, target]
  include: ["**/Cargo.toml"]
  workers: 2
sets:
  - name: platforms
    values: [aarch64-raspi, x86-pc]
rules:
  - name: crate
    literal: axplat
    replace: kplat
  - name: platform-keys
    pattern: '^kplat-([\w-]+)(\s*=)'
    replace: '${1}${2}'
    when: { group: "1", in: platforms }
`

func setupTree(t *testing.T) (string, string) {
	t.Helper()
	color.NoColor = true
	pterm.DisableStyling()
	t.Cleanup(func() {
		color.NoColor = false
		pterm.EnableStyling()
	})

	dir := t.TempDir()
	files := map[string]string{
		"src/lib.rs":                          "use axplat::mem;\n",
		"src/main.rs":                         "fn main() {}\n",
		"platforms/aarch64-raspi/Cargo.toml":  "kplat-aarch64-raspi = { path = \".\" }\n",
		"target/debug/build.rs":               "use axplat::mem;\n",
		"platforms/aarch64-raspi/src/boot.rs": "impl axplat::InitIf for P {}\n",
	}
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}

	cfg := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte(testRules), 0644))
	return dir, cfg
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeContext(t, context.Background(), args...)
}

func executeContext(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func read(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
	require.NoError(t, err)
	return string(data)
}

func TestCheckThenApply(t *testing.T) {
	dir, cfg := setupTree(t)

	out, err := execute(t, "-c", cfg, "check", dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, commands.ErrChangesPending))
	assert.Contains(t, out, "-use axplat::mem;")
	assert.Contains(t, out, "+use kplat::mem;")
	assert.Equal(t, "use axplat::mem;\n", read(t, dir, "src/lib.rs"), "check must not write")

	out, err = execute(t, "-c", cfg, "apply", "--verify", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "3 files rewritten")

	assert.Equal(t, "use kplat::mem;\n", read(t, dir, "src/lib.rs"))
	assert.Equal(t, "aarch64-raspi = { path = \".\" }\n", read(t, dir, "platforms/aarch64-raspi/Cargo.toml"))
	assert.Equal(t, "impl kplat::InitIf for P {}\n", read(t, dir, "platforms/aarch64-raspi/src/boot.rs"))
	assert.Equal(t, "use axplat::mem;\n", read(t, dir, "target/debug/build.rs"), "excluded directory must be untouched")

	out, err = execute(t, "-c", cfg, "check", dir)
	require.NoError(t, err, "a migrated tree should have nothing left to rewrite: %s", out)
	assert.Contains(t, out, "nothing to rewrite")
}

func TestApply_ReportsFailures(t *testing.T) {
	dir, cfg := setupTree(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "blob.rs"), []byte{0xff, 0xfe}, 0644))

	out, err := execute(t, "-c", cfg, "apply", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 5 files failed")
	assert.Contains(t, out, "blob.rs")
	assert.Equal(t, "use kplat::mem;\n", read(t, dir, "src/lib.rs"), "other files are still rewritten")
}

func TestApply_Interrupted(t *testing.T) {
	dir, cfg := setupTree(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := executeContext(t, ctx, "-c", cfg, "apply", dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Contains(t, out, "❌ Error: run interrupted")
	assert.Equal(t, "use axplat::mem;\n", read(t, dir, "src/lib.rs"), "nothing starts after cancellation")
}

func TestRulesCmd(t *testing.T) {
	_, cfg := setupTree(t)

	out, err := execute(t, "-c", cfg, "rules")
	require.NoError(t, err)
	assert.Contains(t, out, "crate")
	assert.Contains(t, out, "platform-keys")
	assert.Contains(t, out, text.KindPattern.String())
	assert.Contains(t, out, "when")
}

func TestInvalidRuleFile(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte(`
target:
  extensions: [.rs]
rules:
  - name: broken
    pattern: 'kplat-('
    replace: x
`), 0644))

	_, err := execute(t, "-c", cfg, "apply", t.TempDir())
	require.Error(t, err)

	var invalid *text.InvalidRuleError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "broken", invalid.Name)
}

func TestVersionCmd(t *testing.T) {
	// version must work without a rule file
	out, err := execute(t, "-c", filepath.Join(t.TempDir(), "missing.yaml"), "version", "--json")
	require.NoError(t, err)

	var info VersionInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.NotEmpty(t, info.GoVersion)
	assert.NotEmpty(t, info.Platform)

	out, err = execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "rewriterc version info")
}
