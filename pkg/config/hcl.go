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
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files.
//
// Expressions may read the environment through env, e.g. env.HOME. A literal
// "${" in a replacement is written "$${".
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".hcl")
}

type hclCondition struct {
	Group           string `hcl:"group,optional"`
	In              string `hcl:"in,optional"`
	NotIn           string `hcl:"not_in,optional"`
	LineContains    string `hcl:"line_contains,optional"`
	LineNotContains string `hcl:"line_not_contains,optional"`
}

type hclConfig struct {
	Target *struct {
		Roots       []string `hcl:"roots,optional"`
		Extensions  []string `hcl:"extensions,optional"`
		ExcludeDirs []string `hcl:"exclude_dirs,optional"`
		Include     []string `hcl:"include,optional"`
		Exclude     []string `hcl:"exclude,optional"`
		Workers     int      `hcl:"workers,optional"`
	} `hcl:"target,block"`
	Sets []struct {
		Name   string   `hcl:"name,label"`
		Values []string `hcl:"values"`
	} `hcl:"set,block"`
	Rules []struct {
		Name      string        `hcl:"name,label"`
		Literal   string        `hcl:"literal,optional"`
		Pattern   string        `hcl:"pattern,optional"`
		Replace   string        `hcl:"replace"`
		Multiline bool          `hcl:"multiline,optional"`
		Requires  string        `hcl:"requires,optional"`
		When      *hclCondition `hcl:"when,block"`
	} `hcl:"rule,block"`
}

// 📝 Parse parses the config from HCL
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "rewriterc.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	// Create evaluation context
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": environment(),
		},
	}

	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	// Convert to model
	cfg := &Config{}
	if t := hclCfg.Target; t != nil {
		cfg.Target = Target{
			Roots:       t.Roots,
			Extensions:  t.Extensions,
			ExcludeDirs: t.ExcludeDirs,
			Include:     t.Include,
			Exclude:     t.Exclude,
			Workers:     t.Workers,
		}
	}
	for _, s := range hclCfg.Sets {
		cfg.Sets = append(cfg.Sets, Set{Name: s.Name, Values: s.Values})
	}
	for _, r := range hclCfg.Rules {
		spec := RuleSpec{
			Name:      r.Name,
			Literal:   r.Literal,
			Pattern:   r.Pattern,
			Replace:   r.Replace,
			Multiline: r.Multiline,
			Requires:  r.Requires,
		}
		if r.When != nil {
			spec.When = &Condition{
				Group:           r.When.Group,
				In:              r.When.In,
				NotIn:           r.When.NotIn,
				LineContains:    r.When.LineContains,
				LineNotContains: r.When.LineNotContains,
			}
		}
		cfg.Rules = append(cfg.Rules, spec)
	}

	return cfg, nil
}

// environment exposes the process environment as an HCL object
func environment() cty.Value {
	vars := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !hclsyntax.ValidIdentifier(name) {
			continue
		}
		vars[name] = cty.StringVal(value)
	}
	if len(vars) == 0 {
		return cty.EmptyObjectVal
	}
	return cty.ObjectVal(vars)
}
