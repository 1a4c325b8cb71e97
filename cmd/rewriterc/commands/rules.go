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

package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/walteh/rewriterc/cmd/rewriterc/opts"
	"github.com/walteh/rewriterc/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// NewRulesCmd creates a new rules command
func NewRulesCmd(o *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the rules in the order they are applied",
		RunE: func(cmd *cobra.Command, args []string) error {
			data := pterm.TableData{{"#", "Name", "Kind", "Find", "Replace", "Gates"}}
			for i, r := range o.RuleSet.Rules() {
				data = append(data, []string{
					strconv.Itoa(i),
					r.Name,
					r.Kind.String(),
					r.Find,
					r.Replace,
					gates(r),
				})
			}

			table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
			if err != nil {
				return errors.Errorf("rendering rules: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), table)
			return nil
		},
	}

	return cmd
}

// gates describes what restricts where a rule fires
func gates(r text.Rule) string {
	var parts []string
	if r.Multiline {
		parts = append(parts, "multiline")
	}
	if r.Requires != "" {
		parts = append(parts, "requires "+strconv.Quote(r.Requires))
	}
	if r.Condition != nil {
		parts = append(parts, "when")
	}
	return strings.Join(parts, ", ")
}
