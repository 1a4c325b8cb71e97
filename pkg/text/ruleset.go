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

// 📊 Hit counts the occurrences one rule replaced during a fold
type Hit struct {
	Rule  string
	Count int
}

// 📦 Result is the outcome of folding a RuleSet over some text
type Result struct {
	Text    string // final text
	Changed bool   // Text differs from the input
	Hits    []Hit  // rules that replaced at least one occurrence, in order
}

// Replacements is the total number of occurrences replaced
func (r Result) Replacements() int {
	n := 0
	for _, h := range r.Hits {
		n += h.Count
	}
	return n
}

// 📚 RuleSet is an ordered, immutable sequence of rules applied as a fold:
// every rule sees the output of the rules before it. A later rule can
// therefore fire again on text an earlier rule produced. Guard rules that
// undo such double application are ordinary rules placed after the risky one.
type RuleSet struct {
	rules []Rule
}

// NewRuleSet validates and compiles rules. The first unusable rule aborts
// construction with an *InvalidRuleError.
func NewRuleSet(rules ...Rule) (*RuleSet, error) {
	compiled := make([]Rule, len(rules))
	for i, r := range rules {
		c, err := r.compile(i)
		if err != nil {
			return nil, err
		}
		compiled[i] = c
	}
	return &RuleSet{rules: compiled}, nil
}

// MustRuleSet is like NewRuleSet but panics on error
func MustRuleSet(rules ...Rule) *RuleSet {
	rs, err := NewRuleSet(rules...)
	if err != nil {
		panic(err)
	}
	return rs
}

// Len returns the number of rules
func (rs *RuleSet) Len() int {
	return len(rs.rules)
}

// Rules returns the rules in fold order
func (rs *RuleSet) Rules() []Rule {
	out := make([]Rule, len(rs.rules))
	copy(out, rs.rules)
	return out
}

// Apply folds every rule over s in declaration order
func (rs *RuleSet) Apply(s string) Result {
	current := s
	var hits []Hit
	for _, r := range rs.rules {
		next, n := r.apply(current)
		if n > 0 {
			hits = append(hits, Hit{Rule: r.Label(), Count: n})
		}
		current = next
	}
	return Result{
		Text:    current,
		Changed: current != s,
		Hits:    hits,
	}
}

// Stable reports whether one more fold over the output of Apply(s) would
// change it. A false result means the rule set is not idempotent on s.
func (rs *RuleSet) Stable(s string) bool {
	return !rs.Apply(rs.Apply(s).Text).Changed
}
