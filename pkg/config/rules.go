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

package config

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/walteh/rewriterc/pkg/text"
)

// 🏗️ RuleSet builds the engine rules in declaration order. Any unusable rule
// yields a *text.InvalidRuleError.
func (cfg *Config) RuleSet() (*text.RuleSet, error) {
	sets := make(map[string]map[string]struct{}, len(cfg.Sets))
	for _, s := range cfg.Sets {
		values := make(map[string]struct{}, len(s.Values))
		for _, v := range s.Values {
			values[v] = struct{}{}
		}
		sets[s.Name] = values
	}

	rules := make([]text.Rule, 0, len(cfg.Rules))
	for i, spec := range cfg.Rules {
		r, err := spec.rule(i, sets)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}

	return text.NewRuleSet(rules...)
}

func (s RuleSpec) rule(index int, sets map[string]map[string]struct{}) (text.Rule, error) {
	invalid := func(reason string, err error) error {
		return &text.InvalidRuleError{Index: index, Name: s.Name, Reason: reason, Err: err}
	}

	var r text.Rule
	switch {
	case s.Literal != "" && s.Pattern != "":
		return r, invalid("literal and pattern are mutually exclusive", nil)
	case s.Literal != "":
		r = text.Literal(s.Literal, s.Replace)
	case s.Pattern != "":
		r = text.Pattern(s.Pattern, s.Replace)
	default:
		return r, invalid("one of literal or pattern is required", nil)
	}

	r = r.Named(s.Name)
	if s.Multiline {
		r = r.AcrossLines()
	}
	if s.Requires != "" {
		r = r.Requiring(s.Requires)
	}

	if s.When == nil {
		return r, nil
	}

	if err := s.checkGroup(); err != nil {
		return r, invalid(err.reason, err.err)
	}

	cond, reason := s.When.condition(sets)
	if reason != "" {
		return r, invalid(reason, nil)
	}
	return r.When(cond), nil
}

type ruleProblem struct {
	reason string
	err    error
}

// checkGroup makes sure the condition names a group the rule can capture
func (s RuleSpec) checkGroup() *ruleProblem {
	group := s.When.Group
	if group == "" || group == "0" {
		return nil
	}
	if s.Literal != "" {
		return &ruleProblem{reason: "literal rules only have the whole match, group " + strconv.Quote(group) + " does not exist"}
	}

	re, err := regexp.Compile(s.Pattern)
	if err != nil {
		return &ruleProblem{reason: "invalid pattern", err: err}
	}

	if i, err := strconv.Atoi(group); err == nil {
		if i < 0 || i > re.NumSubexp() {
			return &ruleProblem{reason: "unknown group " + strconv.Quote(group)}
		}
		return nil
	}
	if re.SubexpIndex(group) < 0 {
		return &ruleProblem{reason: "unknown group " + strconv.Quote(group)}
	}
	return nil
}

// condition compiles the tags into a text.Condition. A non-empty reason
// means the condition is unusable.
func (c *Condition) condition(sets map[string]map[string]struct{}) (text.Condition, string) {
	if c.In == "" && c.NotIn == "" && c.LineContains == "" && c.LineNotContains == "" {
		return nil, "when needs at least one of in, not_in, line_contains or line_not_contains"
	}

	var in, notIn map[string]struct{}
	if c.In != "" {
		var ok bool
		if in, ok = sets[c.In]; !ok {
			return nil, "unknown set " + strconv.Quote(c.In)
		}
	}
	if c.NotIn != "" {
		var ok bool
		if notIn, ok = sets[c.NotIn]; !ok {
			return nil, "unknown set " + strconv.Quote(c.NotIn)
		}
	}

	group := c.Group
	lineContains := c.LineContains
	lineNotContains := c.LineNotContains

	return func(m text.Match) bool {
		value := m.Group(group)
		if in != nil {
			if _, ok := in[value]; !ok {
				return false
			}
		}
		if notIn != nil {
			if _, ok := notIn[value]; ok {
				return false
			}
		}
		if lineContains != "" && !strings.Contains(m.Line, lineContains) {
			return false
		}
		if lineNotContains != "" && strings.Contains(m.Line, lineNotContains) {
			return false
		}
		return true
	}, ""
}
