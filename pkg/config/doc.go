// Package config loads rule files and turns them into a text.RuleSet.
//
//	            +-------------+
//	            |   Config    |
//	            | (rule file) |
//	            +------+------+
//	                   |
//	     +-------------+-------------+
//	     |             |             |
//	+----+----+   +----+----+   +----+----+
//	|  YAML   |   |   HCL   |   |  JSON   |
//	| Parser  |   | Parser  |   | Parser  |
//	+---------+   +---------+   +---------+
//
// 🎯 Purpose:
// - Parse a rule file in the format its extension names
// - Apply defaults and reject incomplete targets
// - Build engine rules, failing before any file is touched
//
// 📄 Shape (YAML):
//
//	target:
//	  roots: [.]
//	  extensions: [.rs]
//	  exclude_dirs: [.git, target]
//	  include: ["platforms/**/Cargo.toml"]
//	sets:
//	  - name: platforms
//	    values: [aarch64-raspi, x86-pc]
//	rules:
//	  - literal: axplat
//	    replace: kplat
//	  - name: platform-keys
//	    pattern: '^(\s*)kplat-([\w-]+)(\s*=)'
//	    replace: '${1}${2}${3}'
//	    when: { group: "2", in: platforms }
//
// HCL uses target, set "name" and rule "name" blocks with a nested when block.
// The variable env exposes the process environment, and a literal "${" is
// written "$${".
//
// Rules are applied in the order they are declared. Every rule sees the output
// of the rules before it.
package config
