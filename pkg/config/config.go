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
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/walteh/rewriterc/pkg/selector"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 🎯 Target selects the files rules are applied to
type Target struct {
	Roots       []string `json:"roots,omitempty" yaml:"roots,omitempty"`               // directories or files to walk
	Extensions  []string `json:"extensions,omitempty" yaml:"extensions,omitempty"`     // e.g. .rs, .toml
	ExcludeDirs []string `json:"exclude_dirs,omitempty" yaml:"exclude_dirs,omitempty"` // directory names never entered
	Include     []string `json:"include,omitempty" yaml:"include,omitempty"`           // extra files by glob
	Exclude     []string `json:"exclude,omitempty" yaml:"exclude,omitempty"`           // files and directories rejected by glob
	Workers     int      `json:"workers,omitempty" yaml:"workers,omitempty"`           // parallel files, defaults to the CPU count
}

// SelectorOptions converts the target for the selector package
func (t Target) SelectorOptions() selector.Options {
	return selector.Options{
		Extensions:  t.Extensions,
		ExcludeDirs: t.ExcludeDirs,
		Include:     t.Include,
		Exclude:     t.Exclude,
	}
}

// 📦 Set is a named list of values conditions can test captures against
type Set struct {
	Name   string   `json:"name" yaml:"name"`
	Values []string `json:"values" yaml:"values"`
}

// 🚦 Condition gates each occurrence of a rule. Every tag that is set must hold.
type Condition struct {
	Group           string `json:"group,omitempty" yaml:"group,omitempty"` // capture name or index, empty means the whole match
	In              string `json:"in,omitempty" yaml:"in,omitempty"`         // set the group must belong to
	NotIn           string `json:"not_in,omitempty" yaml:"not_in,omitempty"` // set the group must not belong to
	LineContains    string `json:"line_contains,omitempty" yaml:"line_contains,omitempty"`
	LineNotContains string `json:"line_not_contains,omitempty" yaml:"line_not_contains,omitempty"`
}

// 🔄 RuleSpec declares one rule. Exactly one of Literal and Pattern is set.
type RuleSpec struct {
	Name      string     `json:"name,omitempty" yaml:"name,omitempty"`
	Literal   string     `json:"literal,omitempty" yaml:"literal,omitempty"`
	Pattern   string     `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Replace   string     `json:"replace" yaml:"replace"`
	Multiline bool       `json:"multiline,omitempty" yaml:"multiline,omitempty"`
	Requires  string     `json:"requires,omitempty" yaml:"requires,omitempty"`
	When      *Condition `json:"when,omitempty" yaml:"when,omitempty"`
}

// 📚 Config represents a complete rule file
type Config struct {
	Target Target     `json:"target" yaml:"target"`
	Sets   []Set      `json:"sets,omitempty" yaml:"sets,omitempty"`
	Rules  []RuleSpec `json:"rules" yaml:"rules"`

	location string
}

// Location is the file the config was loaded from, if any
func (cfg *Config) Location() string {
	return cfg.location
}

// 🔍 Validate applies defaults and checks the parts that do not depend on rule
// compilation. Rules themselves are checked by RuleSet.
func (cfg *Config) Validate() error {
	if len(cfg.Target.Extensions) == 0 && len(cfg.Target.Include) == 0 {
		return errors.Errorf("target needs at least one extension or include glob")
	}
	if cfg.Target.Workers < 0 {
		return errors.Errorf("target.workers must not be negative, got %d", cfg.Target.Workers)
	}
	if len(cfg.Rules) == 0 {
		return errors.Errorf("at least one rule is required")
	}

	seen := make(map[string]struct{}, len(cfg.Sets))
	for i, set := range cfg.Sets {
		if set.Name == "" {
			return errors.Errorf("set %d has no name", i)
		}
		if _, dup := seen[set.Name]; dup {
			return errors.Errorf("set %q is declared twice", set.Name)
		}
		seen[set.Name] = struct{}{}
	}

	// Set defaults
	if len(cfg.Target.Roots) == 0 {
		cfg.Target.Roots = []string{"."}
	}
	if len(cfg.Target.ExcludeDirs) == 0 {
		cfg.Target.ExcludeDirs = []string{".git"}
	}
	if cfg.Target.Workers == 0 {
		cfg.Target.Workers = runtime.NumCPU()
	}

	// Clean up paths
	for i, root := range cfg.Target.Roots {
		cfg.Target.Roots[i] = filepath.Clean(root)
	}

	return nil
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	return fmt.Sprintf("%d rules over %s (%s)",
		len(cfg.Rules),
		strings.Join(cfg.Target.Roots, ", "),
		strings.Join(append(append([]string{}, cfg.Target.Extensions...), cfg.Target.Include...), ", "))
}
