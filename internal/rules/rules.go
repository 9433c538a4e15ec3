// Package rules loads the declarative test rules document and resolves the
// test directives that apply to each discovered column.
//
// The document has a single top-level "tests" key holding entries of the form
//
//	tests:
//	  - column: customer_id
//	    tests:
//	      - not_null
//	      - relationships:
//	          to: ref('customers')
//	          field: id
//
// Column names match case-insensitively and exactly. Entries naming the same
// column are concatenated in file order and de-duplicated by directive
// identity. Directive payloads are carried through without interpretation.
package rules

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/schemadoc/pkg/core"
)

// DefaultPath is the rules file used when none is configured.
const DefaultPath = "tests_config.yaml"

// RootKey is the single top-level key of a rules document.
const RootKey = "tests"

// Rule is the merged directive list for one column name.
type Rule struct {
	// Column is the name as first spelled in the document.
	Column string
	// Line is the line of the first entry naming the column.
	Line       int
	Directives []core.Directive

	lines []int // source line of each directive
}

// RuleSet is a loaded rules document. It is read-only once built and safe
// to share between goroutines.
type RuleSet struct {
	Path string
	// Warnings holds non-fatal load conditions, such as a missing file.
	Warnings []string

	rules []*Rule
	index map[string]*Rule
}

// Empty returns a rule set that matches nothing.
func Empty(path string) *RuleSet {
	return &RuleSet{Path: path, index: make(map[string]*Rule)}
}

// Load reads a rules document from a .yaml, .yml or .json file. A missing file
// is not an error: it yields an empty rule set carrying a warning.
func Load(path string) (*RuleSet, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
	default:
		return nil, &InputError{Path: path, Msg: "unsupported rules file format (want .yaml, .yml or .json)"}
	}

	data, err := os.ReadFile(path) //nolint:gosec // path comes from user config
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			rs := Empty(path)
			rs.Warnings = append(rs.Warnings, fmt.Sprintf("rules file %s not found; no tests will be assigned", path))
			return rs, nil
		}
		return nil, fmt.Errorf("failed to read rules file %s: %w", path, err)
	}

	return Parse(data, path)
}

// Resolve returns the directives for a column, in rule-file order. Columns
// with no rule resolve to nil. The returned slice is a copy.
func (rs *RuleSet) Resolve(column string) []core.Directive {
	if rs == nil {
		return nil
	}
	r, ok := rs.index[strings.ToLower(column)]
	if !ok {
		return nil
	}
	out := make([]core.Directive, len(r.Directives))
	copy(out, r.Directives)
	return out
}

// Rules returns the merged rules in order of first appearance.
func (rs *RuleSet) Rules() []Rule {
	if rs == nil {
		return nil
	}
	out := make([]Rule, len(rs.rules))
	for i, r := range rs.rules {
		out[i] = *r
	}
	return out
}

// Len returns the number of distinct columns named by the document.
func (rs *RuleSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.rules)
}

// Unused returns the rules whose column matches none of the discovered
// column names, in document order.
func (rs *RuleSet) Unused(discovered []string) []Rule {
	if rs == nil {
		return nil
	}
	seen := make(map[string]bool, len(discovered))
	for _, name := range discovered {
		seen[strings.ToLower(name)] = true
	}
	var unused []Rule
	for _, r := range rs.rules {
		if !seen[strings.ToLower(r.Column)] {
			unused = append(unused, *r)
		}
	}
	return unused
}

// add merges directives for column into the set, de-duplicating by identity
// and rejecting a second, different parameter payload for the same name.
func (rs *RuleSet) add(column string, line int, directives []core.Directive, lines []int) error {
	key := strings.ToLower(column)
	r, ok := rs.index[key]
	if !ok {
		r = &Rule{Column: column, Line: line}
		rs.index[key] = r
		rs.rules = append(rs.rules, r)
	}

	for i, d := range directives {
		duplicate := false
		for j, existing := range r.Directives {
			if existing.Name != d.Name {
				continue
			}
			if existing.Identity() != d.Identity() {
				return &InputError{
					Path: rs.Path,
					Line: lines[i],
					Msg: fmt.Sprintf("column %q: conflicting parameters for directive %q (first declared on line %d)",
						column, d.Name, r.lines[j]),
				}
			}
			duplicate = true
			break
		}
		if !duplicate {
			r.Directives = append(r.Directives, d)
			r.lines = append(r.lines, lines[i])
		}
	}
	return nil
}
