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
	"regexp"
	"strconv"
)

// 🔤 Kind selects how a rule finds its occurrences
type Kind int

const (
	KindLiteral Kind = iota // exact substring
	KindPattern             // RE2 regular expression with capture groups
)

// String returns a string representation of Kind
func (k Kind) String() string {
	switch k {
	case KindLiteral:
		return "literal"
	case KindPattern:
		return "pattern"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// 🎯 Match is the context handed to a Condition for a single occurrence
type Match struct {
	Text   string   // the matched substring
	Groups []string // capture groups, Groups[0] == Text
	Line   string   // the logical line(s) the occurrence sits on, without terminator
	names  []string
}

// Group returns a capture group by name or by decimal index.
// Unknown groups return the empty string.
func (m Match) Group(key string) string {
	if key == "" {
		return m.Text
	}
	if i, err := strconv.Atoi(key); err == nil {
		if i >= 0 && i < len(m.Groups) {
			return m.Groups[i]
		}
		return ""
	}
	for i, name := range m.names {
		if name == key && i < len(m.Groups) {
			return m.Groups[i]
		}
	}
	return ""
}

// 🚦 Condition approves or rejects a single occurrence
type Condition func(m Match) bool

// 🔄 Rule is one find/replace unit. The zero value is not usable; build rules
// with Literal or Pattern.
type Rule struct {
	Name      string    // optional, used in logs and errors
	Kind      Kind      // literal or pattern
	Find      string    // substring or regular expression
	Replace   string    // replacement; patterns may reference $1 or ${name}
	Multiline bool      // patterns only: match across line boundaries
	Requires  string    // skip the rule unless the current text contains this
	Condition Condition // optional per-occurrence gate

	re *regexp.Regexp
}

// Literal creates a rule replacing every occurrence of find with replace
func Literal(find, replace string) Rule {
	return Rule{Kind: KindLiteral, Find: find, Replace: replace}
}

// Pattern creates a rule replacing every match of the regular expression find.
// Matching is confined to single lines unless the rule is made multiline.
func Pattern(find, replace string) Rule {
	return Rule{Kind: KindPattern, Find: find, Replace: replace}
}

// Named returns a copy of the rule with the given name
func (r Rule) Named(name string) Rule {
	r.Name = name
	return r
}

// When returns a copy of the rule gated by cond
func (r Rule) When(cond Condition) Rule {
	r.Condition = cond
	return r
}

// Requiring returns a copy of the rule that only runs on text containing s
func (r Rule) Requiring(s string) Rule {
	r.Requires = s
	return r
}

// AcrossLines returns a copy of the rule allowed to match across line
// boundaries. Files with \r\n endings throughout are matched as if they used
// \n; in files mixing both endings the \r stays visible to the pattern.
func (r Rule) AcrossLines() Rule {
	r.Multiline = true
	return r
}

// Label is the name of the rule, or its find text when unnamed
func (r Rule) Label() string {
	if r.Name != "" {
		return r.Name
	}
	return r.Find
}

// compile validates the rule and prepares its matcher
func (r Rule) compile(index int) (Rule, error) {
	if r.Find == "" {
		return r, &InvalidRuleError{Index: index, Name: r.Name, Reason: "find text is required"}
	}

	switch r.Kind {
	case KindLiteral:
		if r.Multiline {
			return r, &InvalidRuleError{Index: index, Name: r.Name, Reason: "multiline applies to pattern rules only"}
		}
		return r, nil
	case KindPattern:
		expr := r.Find
		if r.Multiline {
			expr = "(?m)" + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return r, &InvalidRuleError{Index: index, Name: r.Name, Reason: "invalid pattern", Err: err}
		}
		r.re = re
		return r, nil
	default:
		return r, &InvalidRuleError{Index: index, Name: r.Name, Reason: fmt.Sprintf("unknown rule kind %s", r.Kind)}
	}
}
