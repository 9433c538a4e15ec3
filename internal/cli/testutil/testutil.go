// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/leapstack-labs/schemadoc/internal/cli/output"
)

// SnapshotYAML is a two-table metadata snapshot used by CLI tests.
const SnapshotYAML = `tables:
  - name: orders
    columns:
      - name: order_id
        type: INTEGER
        nullable: false
        samples: [1, 2, 3]
      - name: customer_sk
        type: INTEGER
        samples: [10, 11]
      - name: order_status
        type: VARCHAR
        samples: [open, shipped, open, closed, shipped]
      - name: order_total
        type: DECIMAL(10,2)
        samples: [12.5, 99.0]
  - name: customer
    columns:
      - name: customer_sk
        type: INTEGER
        samples: [10, 11]
      - name: customer_name
        type: VARCHAR
`

// RulesYAML declares tests for two columns of SnapshotYAML.
const RulesYAML = `tests:
  - column: order_id
    tests: [not_null, unique]
  - column: order_status
    tests:
      - accepted_values:
          values: [open, shipped, closed]
`

// SetupTestProject creates a temporary project with a schemadoc.yaml that
// points a snapshot target at SnapshotYAML and uses RulesYAML.
// It returns the project directory.
func SetupTestProject(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()

	files := map[string]string{
		"schemadoc.yaml":    "target:\n  type: snapshot\n  database: snapshot.yaml\nrules: tests_config.yaml\noutput: models/schema.yml\n",
		"snapshot.yaml":     SnapshotYAML,
		"tests_config.yaml": RulesYAML,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(tmpDir, name), []byte(content), 0o600); err != nil {
			t.Fatalf("failed to create %s: %v", name, err)
		}
	}

	return tmpDir
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
// Output is captured in buffers for inspection.
func NewTestRenderer(mode output.OutputMode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// NewTestRendererMarkdown creates a new test renderer in markdown mode.
func NewTestRendererMarkdown() *TestRenderer {
	return NewTestRenderer(output.ModeMarkdown, false)
}

// NewTestRendererJSON creates a new test renderer in JSON mode.
func NewTestRendererJSON() *TestRenderer {
	return NewTestRenderer(output.ModeJSON, false)
}

// Output returns the stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdown performs basic markdown validation.
// It checks for unclosed code fences and empty headers.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	if n := strings.Count(md, "```"); n%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", n)
	}

	for i, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
	}
}
