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
	"strings"

	"github.com/fatih/color"
)

// 🎨 Display configuration
const (
	fileIndent  = 4  // spaces to indent file entries
	nameWidth   = 45 // Base width for the path
	countWidth  = 8  // Width for the replacement count
	statusWidth = 12 // Width for status text
)

// 🎯 FormatRecordLine formats a record as one aligned console line
func FormatRecordLine(rec ChangeRecord) string {
	var prefix string
	switch {
	case rec.Err != nil:
		prefix = color.RedString("✗")
	case rec.Unstable:
		prefix = color.YellowString("⟳")
	case rec.Changed:
		prefix = color.GreenString("✓")
	default:
		prefix = color.HiBlackString("-")
	}

	statusText := rec.Status().String()
	if rec.Unstable {
		statusText = "unstable"
	}

	line := fmt.Sprintf("%s%s %-*s %*d %-*s",
		strings.Repeat(" ", fileIndent),
		prefix,
		nameWidth, rec.Path,
		countWidth, rec.Replacements,
		statusWidth, statusText,
	)

	if rec.Err != nil {
		line += " " + color.RedString("%v", rec.Err)
	}

	return strings.TrimRight(line, " ")
}
