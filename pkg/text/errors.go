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

package text

import (
	"fmt"
)

// ❌ InvalidRuleError reports a rule that cannot be used. It is raised while a
// RuleSet is built, before any file is touched.
type InvalidRuleError struct {
	Index  int    // position of the rule in declaration order
	Name   string // rule name, if any
	Reason string
	Err    error
}

func (e *InvalidRuleError) Error() string {
	id := fmt.Sprintf("rule %d", e.Index)
	if e.Name != "" {
		id = fmt.Sprintf("rule %d (%s)", e.Index, e.Name)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", id, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", id, e.Reason)
}

func (e *InvalidRuleError) Unwrap() error {
	return e.Err
}
