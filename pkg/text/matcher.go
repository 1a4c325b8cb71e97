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
	"strings"
)

// apply runs a compiled rule once over s and returns the new text and the
// number of occurrences replaced
func (r Rule) apply(s string) (string, int) {
	if r.Requires != "" && !strings.Contains(s, r.Requires) {
		return s, 0
	}

	switch r.Kind {
	case KindLiteral:
		return r.applyLiteral(s)
	case KindPattern:
		if r.Multiline {
			return r.applyAcrossLines(s)
		}
		return r.applyLines(s)
	default:
		return s, 0
	}
}

// applyLiteral replaces non-overlapping occurrences left to right. A rejected
// occurrence is skipped as a whole; scanning resumes after it.
func (r Rule) applyLiteral(s string) (string, int) {
	if r.Condition == nil {
		n := strings.Count(s, r.Find)
		if n == 0 {
			return s, 0
		}
		return strings.ReplaceAll(s, r.Find, r.Replace), n
	}

	var b strings.Builder
	count, last, pos := 0, 0, 0
	for {
		i := strings.Index(s[pos:], r.Find)
		if i < 0 {
			break
		}
		start := pos + i
		end := start + len(r.Find)
		pos = end

		m := Match{Text: r.Find, Groups: []string{r.Find}, Line: lineAround(s, start, end)}
		if !r.Condition(m) {
			continue
		}

		b.WriteString(s[last:start])
		b.WriteString(r.Replace)
		last = end
		count++
	}

	if count == 0 {
		return s, 0
	}
	b.WriteString(s[last:])
	return b.String(), count
}

// applyLines runs a pattern rule on each logical line separately. Line
// terminators (\n and \r\n) are never visible to the pattern and are kept.
func (r Rule) applyLines(s string) (string, int) {
	var b strings.Builder
	total := 0
	rest := s
	for len(rest) > 0 {
		line, tail, found := strings.Cut(rest, "\n")
		term := ""
		if found {
			term = "\n"
		}
		if strings.HasSuffix(line, "\r") {
			line = line[:len(line)-1]
			term = "\r" + term
		}

		out, n := r.replaceMatches(line, func(int, int) string { return line })
		total += n
		b.WriteString(out)
		b.WriteString(term)
		rest = tail
	}

	if total == 0 {
		return s, 0
	}
	return b.String(), total
}

// applyAcrossLines matches the pattern against the whole text. When every line
// ends in \r\n the text is matched with \n endings, so $ and \n mean the same
// as in per-line rules, and \r\n is restored in the result.
func (r Rule) applyAcrossLines(s string) (string, int) {
	crlf := strings.Contains(s, "\r\n") && strings.Count(s, "\n") == strings.Count(s, "\r\n")

	src := s
	if crlf {
		src = strings.ReplaceAll(s, "\r\n", "\n")
	}

	out, n := r.replaceMatches(src, func(start, end int) string {
		return lineAround(src, start, end)
	})
	if n == 0 {
		return s, 0
	}

	if crlf {
		out = strings.ReplaceAll(strings.ReplaceAll(out, "\r\n", "\n"), "\n", "\r\n")
	}
	return out, n
}

// replaceMatches expands every approved match of the rule's pattern in seg
func (r Rule) replaceMatches(seg string, lineOf func(start, end int) string) (string, int) {
	locs := r.re.FindAllStringSubmatchIndex(seg, -1)
	if len(locs) == 0 {
		return seg, 0
	}

	var b []byte
	count, last := 0, 0
	for _, loc := range locs {
		if r.Condition != nil && !r.Condition(r.matchAt(seg, loc, lineOf)) {
			continue
		}
		b = append(b, seg[last:loc[0]]...)
		b = r.re.ExpandString(b, r.Replace, seg, loc)
		last = loc[1]
		count++
	}

	if count == 0 {
		return seg, 0
	}
	b = append(b, seg[last:]...)
	return string(b), count
}

func (r Rule) matchAt(seg string, loc []int, lineOf func(start, end int) string) Match {
	groups := make([]string, len(loc)/2)
	for i := range groups {
		if loc[2*i] >= 0 {
			groups[i] = seg[loc[2*i]:loc[2*i+1]]
		}
	}
	return Match{
		Text:   groups[0],
		Groups: groups,
		Line:   lineOf(loc[0], loc[1]),
		names:  r.re.SubexpNames(),
	}
}

// lineAround returns the full line(s) covering s[start:end]
func lineAround(s string, start, end int) string {
	from := strings.LastIndexByte(s[:start], '\n') + 1
	to := strings.IndexByte(s[end:], '\n')
	if to < 0 {
		to = len(s)
	} else {
		to += end
	}
	return strings.TrimSuffix(s[from:to], "\r")
}
