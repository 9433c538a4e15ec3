// Package writer renders a manifest document as YAML and writes it to disk.
//
// Rendering goes through yaml.Node so field order, indentation and scalar
// styles are fixed: identical documents always produce identical bytes.
package writer

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/leapstack-labs/schemadoc/pkg/core"
	"gopkg.in/yaml.v3"
)

// Indent is the number of spaces per nesting level.
const Indent = 2

// Render serializes doc. Tables and columns keep their order; empty test
// lists are omitted from a column.
func Render(doc core.Document) ([]byte, error) {
	version := doc.Version
	if version == 0 {
		version = core.ManifestVersion
	}

	models := &yaml.Node{Kind: yaml.SequenceNode}
	for _, t := range doc.Tables {
		models.Content = append(models.Content, tableNode(t))
	}

	root := mapping(
		"version", &yaml.Node{Kind: yaml.ScalarNode, Tag: core.TagInt, Value: strconv.Itoa(version)},
		"models", models,
	)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(Indent)
	if err := enc.Encode(&yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}); err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}
	return buf.Bytes(), nil
}

func tableNode(t core.TableManifest) *yaml.Node {
	columns := &yaml.Node{Kind: yaml.SequenceNode}
	for _, c := range t.Columns {
		columns.Content = append(columns.Content, columnNode(c))
	}
	return mapping(
		"name", str(t.Name),
		"description", str(t.Description.Text),
		"columns", columns,
	)
}

func columnNode(c core.ColumnManifest) *yaml.Node {
	n := mapping(
		"name", str(c.Name),
		"description", str(c.Description.Text),
	)
	if len(c.Tests) == 0 {
		return n
	}

	tests := &yaml.Node{Kind: yaml.SequenceNode}
	for _, d := range c.Tests {
		tests.Content = append(tests.Content, directiveNode(d))
	}
	n.Content = append(n.Content, str("tests"), tests)
	return n
}

func directiveNode(d core.Directive) *yaml.Node {
	if d.IsBare() {
		return str(d.Name)
	}
	return mapping(d.Name, valueNode(*d.Params))
}

// valueNode rebuilds a parameter payload. Scalars keep their original tag, so
// a string "10" stays quoted and an integer 10 stays plain.
func valueNode(v core.Value) *yaml.Node {
	switch v.Kind {
	case core.ListValue:
		n := &yaml.Node{Kind: yaml.SequenceNode}
		for _, item := range v.Items {
			n.Content = append(n.Content, valueNode(item))
		}
		return n
	case core.MapValue:
		n := &yaml.Node{Kind: yaml.MappingNode}
		for _, f := range v.Fields {
			n.Content = append(n.Content, str(f.Key), valueNode(f.Value))
		}
		return n
	default:
		tag := v.Tag
		if tag == "" {
			tag = core.TagString
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: v.Text}
	}
}

func str(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: core.TagString, Value: s}
}

func mapping(kv ...any) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for i := 0; i < len(kv); i += 2 {
		n.Content = append(n.Content, str(kv[i].(string)), kv[i+1].(*yaml.Node))
	}
	return n
}

// WriteFile writes data to path atomically: it writes a temporary file in
// the same directory and renames it into place. Missing parent directories
// are created.
func WriteFile(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil { //nolint:gosec // generated docs are meant to be readable
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move output into place at %s: %w", path, err)
	}
	return nil
}
