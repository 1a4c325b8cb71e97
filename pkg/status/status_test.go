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
	"sync"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

type recordingReporter struct {
	mu   sync.Mutex
	seen []string
}

func (r *recordingReporter) LogChange(_ context.Context, rec ChangeRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, rec.Path)
}

func TestChangeRecord_Status(t *testing.T) {
	tests := []struct {
		name string
		rec  ChangeRecord
		want FileStatus
	}{
		{name: "unchanged", rec: ChangeRecord{Path: "a"}, want: StatusUnchanged},
		{name: "modified", rec: ChangeRecord{Path: "a", Changed: true}, want: StatusModified},
		{name: "failure_wins", rec: ChangeRecord{Path: "a", Changed: true, Err: errors.New("boom")}, want: StatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rec.Status())
		})
	}

	assert.Equal(t, "unknown", StatusUnknown.String())
}

func TestCollector_ConcurrentRecords(t *testing.T) {
	reporter := &recordingReporter{}
	c := NewCollector(reporter)
	ctx := testContext()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Record(ctx, ChangeRecord{Path: fmt.Sprintf("f%02d.rs", i), Changed: i%2 == 0})
		}(i)
	}
	wg.Wait()

	records := c.Records()
	require.Len(t, records, 50)
	for i, rec := range records {
		assert.Equal(t, fmt.Sprintf("f%02d.rs", i), rec.Path, "records should be sorted by path")
	}
	assert.Len(t, reporter.seen, 50, "every record should be forwarded")
}

func TestCollector_Summary(t *testing.T) {
	c := NewCollector(nil)
	ctx := testContext()

	failure := errors.New("permission denied")
	c.Record(ctx, ChangeRecord{Path: "b.rs", Changed: true, Replacements: 3})
	c.Record(ctx, ChangeRecord{Path: "a.rs"})
	c.Record(ctx, ChangeRecord{Path: "c.rs", Changed: true, Unstable: true})
	c.Record(ctx, ChangeRecord{Path: "d.rs", Err: failure})

	s := c.Summary()
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.Changed)
	assert.Equal(t, 1, s.Unchanged)
	assert.Equal(t, 1, s.Unstable)
	assert.Equal(t, 1, s.Failed)
	require.Len(t, s.Failures, 1)
	assert.Equal(t, "d.rs", s.Failures[0].Path)
	assert.Equal(t, failure, s.Failures[0].Err)
}

func TestDefaultFileFormatter(t *testing.T) {
	f := NewDefaultFileFormatter()

	tests := []struct {
		name string
		rec  ChangeRecord
		want string
	}{
		{
			name: "modified",
			rec:  ChangeRecord{Path: "src/lib.rs", Changed: true, Replacements: 4},
			want: "📝 Modified src/lib.rs (4 replacements)",
		},
		{
			name: "unstable",
			rec:  ChangeRecord{Path: "src/lib.rs", Changed: true, Replacements: 1, Unstable: true},
			want: "⚠️  Modified src/lib.rs (1 replacements, not idempotent)",
		},
		{
			name: "unchanged",
			rec:  ChangeRecord{Path: "README.md"},
			want: "👍 Unchanged README.md",
		},
		{
			name: "failed",
			rec:  ChangeRecord{Path: "bin.rs", Err: errors.New("invalid UTF-8")},
			want: "❌ Failed bin.rs: invalid UTF-8",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.FormatRecord(tt.rec))
		})
	}

	assert.Equal(t, "✅ 3 files: 2 changed, 1 unchanged, 0 unstable, 0 failed",
		f.FormatSummary(Summary{Total: 3, Changed: 2, Unchanged: 1}))
	assert.Equal(t, "❌ 1 files: 0 changed, 0 unchanged, 0 unstable, 1 failed",
		f.FormatSummary(Summary{Total: 1, Failed: 1}))
	assert.Empty(t, f.FormatError(nil))
	assert.Equal(t, "❌ Error: boom", f.FormatError(errors.New("boom")))
}

func TestFormatRecordLine(t *testing.T) {
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })

	line := FormatRecordLine(ChangeRecord{Path: "src/lib.rs", Changed: true, Replacements: 2})
	assert.Contains(t, line, "✓ src/lib.rs")
	assert.Contains(t, line, "modified")

	line = FormatRecordLine(ChangeRecord{Path: "x.rs", Err: errors.New("boom")})
	assert.Contains(t, line, "✗ x.rs")
	assert.Contains(t, line, "failed")
	assert.Contains(t, line, "boom")

	line = FormatRecordLine(ChangeRecord{Path: "y.rs", Changed: true, Unstable: true})
	assert.Contains(t, line, "⟳ y.rs")
	assert.Contains(t, line, "unstable")
}
