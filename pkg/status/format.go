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
	"fmt"
)

// FileFormatter defines how records and summaries are rendered as plain text
type FileFormatter interface {
	// FormatRecord formats the outcome of one file
	FormatRecord(rec ChangeRecord) string

	// FormatSummary formats the totals of a run
	FormatSummary(s Summary) string

	// FormatError formats an error message
	FormatError(err error) string
}

// DefaultFileFormatter provides a default implementation of FileFormatter
type DefaultFileFormatter struct{}

// NewDefaultFileFormatter creates a new DefaultFileFormatter
func NewDefaultFileFormatter() *DefaultFileFormatter {
	return &DefaultFileFormatter{}
}

// FormatRecord formats a record with emojis
func (f *DefaultFileFormatter) FormatRecord(rec ChangeRecord) string {
	switch rec.Status() {
	case StatusFailed:
		return fmt.Sprintf("❌ Failed %s: %v", rec.Path, rec.Err)
	case StatusModified:
		if rec.Unstable {
			return fmt.Sprintf("⚠️  Modified %s (%d replacements, not idempotent)", rec.Path, rec.Replacements)
		}
		return fmt.Sprintf("📝 Modified %s (%d replacements)", rec.Path, rec.Replacements)
	default:
		return fmt.Sprintf("👍 Unchanged %s", rec.Path)
	}
}

// FormatSummary formats the totals on a single line
func (f *DefaultFileFormatter) FormatSummary(s Summary) string {
	prefix := "✅"
	if s.Failed > 0 {
		prefix = "❌"
	} else if s.Unstable > 0 {
		prefix = "⚠️ "
	}
	return fmt.Sprintf("%s %d files: %d changed, %d unchanged, %d unstable, %d failed",
		prefix, s.Total, s.Changed, s.Unchanged, s.Unstable, s.Failed)
}

// FormatError formats an error message with emoji
func (f *DefaultFileFormatter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("❌ Error: %v", err)
}
