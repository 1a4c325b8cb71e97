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
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// 📊 FileStatus is the outcome of processing one file
type FileStatus int

const (
	StatusUnknown   FileStatus = iota
	StatusUnchanged            // no rule changed the content
	StatusModified             // content changed (written, or would be in a dry run)
	StatusFailed               // file could not be read or written
)

// String returns a string representation of FileStatus
func (s FileStatus) String() string {
	switch s {
	case StatusUnchanged:
		return "unchanged"
	case StatusModified:
		return "modified"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// 📄 ChangeRecord is emitted once per processed file
type ChangeRecord struct {
	Path         string // file path as selected
	Changed      bool   // content differs from the original
	Replacements int    // occurrences replaced across all rules
	Unstable     bool   // one more fold would change the file again
	Diff         string // patch text, dry runs only
	Err          error  // read or write failure
}

// Status derives the outcome of the record
func (r ChangeRecord) Status() FileStatus {
	switch {
	case r.Err != nil:
		return StatusFailed
	case r.Changed:
		return StatusModified
	default:
		return StatusUnchanged
	}
}

// 📢 Reporter presents records as they arrive
type Reporter interface {
	LogChange(ctx context.Context, rec ChangeRecord)
}

// 📈 Summary aggregates a run
type Summary struct {
	Total     int
	Changed   int
	Unchanged int
	Unstable  int
	Failed    int
	Failures  []ChangeRecord
}

// 🧺 Collector is the thread-safe sink for ChangeRecords
type Collector struct {
	mu       sync.Mutex
	records  []ChangeRecord
	reporter Reporter
}

// 🏭 NewCollector creates a collector forwarding each record to reporter,
// which may be nil
func NewCollector(reporter Reporter) *Collector {
	return &Collector{reporter: reporter}
}

// Record stores rec and forwards it to the reporter. Concurrent calls are
// serialized so reporter output never interleaves.
func (c *Collector) Record(ctx context.Context, rec ChangeRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.records = append(c.records, rec)

	logger := zerolog.Ctx(ctx)
	event := logger.Debug()
	if rec.Err != nil {
		event = logger.Warn().Err(rec.Err)
	}
	event.Str("path", rec.Path).
		Str("status", rec.Status().String()).
		Int("replacements", rec.Replacements).
		Bool("unstable", rec.Unstable).
		Msg("file processed")

	if c.reporter != nil {
		c.reporter.LogChange(ctx, rec)
	}
}

// Records returns every record sorted by path
func (c *Collector) Records() []ChangeRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]ChangeRecord, len(c.records))
	copy(out, c.records)
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Summary counts the records by outcome
func (c *Collector) Summary() Summary {
	var s Summary
	for _, rec := range c.Records() {
		s.Total++
		switch rec.Status() {
		case StatusFailed:
			s.Failed++
			s.Failures = append(s.Failures, rec)
		case StatusModified:
			s.Changed++
		default:
			s.Unchanged++
		}
		if rec.Unstable {
			s.Unstable++
		}
	}
	return s
}
