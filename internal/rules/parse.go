package rules

import (
	"fmt"

	"github.com/leapstack-labs/schemadoc/pkg/core"
	"gopkg.in/yaml.v3"
)

// Parse builds a RuleSet from document bytes. JSON documents parse as YAML.
// path is used only in error messages.
func Parse(data []byte, path string) (*RuleSet, error) {
	rs := Empty(path)

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &InputError{Path: path, Msg: err.Error()}
	}
	if len(doc.Content) == 0 {
		return rs, nil
	}

	p := parser{path: path}
	root := resolve(doc.Content[0])
	if root.Kind != yaml.MappingNode {
		return nil, p.errorf(root, "rules document must be a mapping with a single %q key", RootKey)
	}
	if len(root.Content) == 0 {
		return rs, nil
	}
	if len(root.Content) != 2 || root.Content[0].Value != RootKey {
		return nil, p.errorf(root.Content[0], "rules document must have exactly one top-level key %q", RootKey)
	}

	entries := resolve(root.Content[1])
	if isNull(entries) {
		return rs, nil
	}
	if entries.Kind != yaml.SequenceNode {
		return nil, p.errorf(entries, "%q must be a sequence of {column, tests} entries", RootKey)
	}

	for _, entry := range entries.Content {
		column, line, directives, lines, err := p.entry(resolve(entry))
		if err != nil {
			return nil, err
		}
		if err := rs.add(column, line, directives, lines); err != nil {
			return nil, err
		}
	}
	return rs, nil
}

type parser struct {
	path string
}

func (p parser) errorf(n *yaml.Node, format string, args ...any) *InputError {
	return &InputError{Path: p.path, Line: n.Line, Column: n.Column, Msg: fmt.Sprintf(format, args...)}
}

func (p parser) entry(n *yaml.Node) (column string, line int, directives []core.Directive, lines []int, err error) {
	if n.Kind != yaml.MappingNode {
		return "", 0, nil, nil, p.errorf(n, "rule entry must be a mapping with \"column\" and \"tests\" keys")
	}

	var tests *yaml.Node
	for i := 0; i < len(n.Content); i += 2 {
		key, value := n.Content[i], resolve(n.Content[i+1])
		switch key.Value {
		case "column":
			if value.Kind != yaml.ScalarNode || isNull(value) || value.Value == "" {
				return "", 0, nil, nil, p.errorf(value, "\"column\" must be a non-empty name")
			}
			column = value.Value
		case "tests":
			tests = value
		default:
			return "", 0, nil, nil, p.errorf(key, "unknown rule entry key %q", key.Value)
		}
	}
	if column == "" {
		return "", 0, nil, nil, p.errorf(n, "rule entry is missing \"column\"")
	}
	if tests == nil || isNull(tests) {
		return column, n.Line, nil, nil, nil
	}
	if tests.Kind != yaml.SequenceNode {
		return "", 0, nil, nil, p.errorf(tests, "column %q: \"tests\" must be a sequence", column)
	}

	for _, item := range tests.Content {
		d, err := p.directive(resolve(item), column)
		if err != nil {
			return "", 0, nil, nil, err
		}
		directives = append(directives, d)
		lines = append(lines, item.Line)
	}
	return column, n.Line, directives, lines, nil
}

func (p parser) directive(n *yaml.Node, column string) (core.Directive, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		if isNull(n) || n.Value == "" {
			return core.Directive{}, p.errorf(n, "column %q: empty test directive", column)
		}
		return core.Bare(n.Value), nil
	case yaml.MappingNode:
		if len(n.Content) != 2 {
			return core.Directive{}, p.errorf(n, "column %q: a parameterized directive must have exactly one key", column)
		}
		name, params := n.Content[0], resolve(n.Content[1])
		if name.Kind != yaml.ScalarNode || name.Value == "" {
			return core.Directive{}, p.errorf(name, "column %q: directive name must be a scalar", column)
		}
		if isNull(params) {
			return core.Bare(name.Value), nil
		}
		if params.Kind != yaml.MappingNode {
			return core.Directive{}, p.errorf(params, "column %q: parameters of %q must be a mapping", column, name.Value)
		}
		v, err := p.value(params)
		if err != nil {
			return core.Directive{}, err
		}
		return core.Directive{Name: name.Value, Params: &v}, nil
	default:
		return core.Directive{}, p.errorf(n, "column %q: test directive must be a name or a single-key mapping", column)
	}
}

// value converts a parameter node into a core.Value, keeping scalar text
// and resolved tags so the payload can be re-emitted unchanged.
func (p parser) value(n *yaml.Node) (core.Value, error) {
	n = resolve(n)
	switch n.Kind {
	case yaml.ScalarNode:
		return core.Value{Kind: core.ScalarValue, Text: n.Value, Tag: n.ShortTag()}, nil
	case yaml.SequenceNode:
		items := make([]core.Value, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := p.value(c)
			if err != nil {
				return core.Value{}, err
			}
			items = append(items, v)
		}
		return core.ListOf(items...), nil
	case yaml.MappingNode:
		fields := make([]core.Field, 0, len(n.Content)/2)
		seen := make(map[string]bool)
		for i := 0; i < len(n.Content); i += 2 {
			key := resolve(n.Content[i])
			if key.Kind != yaml.ScalarNode {
				return core.Value{}, p.errorf(key, "parameter keys must be scalars")
			}
			if seen[key.Value] {
				return core.Value{}, p.errorf(key, "duplicate parameter key %q", key.Value)
			}
			seen[key.Value] = true
			v, err := p.value(n.Content[i+1])
			if err != nil {
				return core.Value{}, err
			}
			fields = append(fields, core.Field{Key: key.Value, Value: v})
		}
		return core.MapOf(fields...), nil
	default:
		return core.Value{}, p.errorf(n, "unsupported parameter value")
	}
}

func resolve(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null"
}
