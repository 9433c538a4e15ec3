// Package describe synthesizes natural-language descriptions for tables and
// columns.
//
// Each subject is run through an ordered chain of sources: the engine's
// native description, then the stored comment, then a name and category
// based heuristic. The first source that yields a non-placeholder text wins.
// The heuristic always yields text, so a description is never empty.
package describe

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/leapstack-labs/schemadoc/pkg/core"
)

// ColumnSubject is a classified column plus the table it belongs to.
type ColumnSubject struct {
	Table  string
	Column core.ClassifiedColumn
}

// TableSubject is a table plus its classified columns in ordinal order.
type TableSubject struct {
	Table   core.TableMetadata
	Columns []core.ClassifiedColumn
}

// Source is one link of a fallback chain. Produce returns "" when the
// source has nothing to say about the subject.
type Source[S any] struct {
	Provenance core.Provenance
	Produce    func(S) string
}

// Synthesizer holds the column and table chains. It is read-only after
// construction and safe for concurrent use.
type Synthesizer struct {
	columns []Source[ColumnSubject]
	tables  []Source[TableSubject]
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithColumnSource adds a column source ahead of the heuristic.
func WithColumnSource(src Source[ColumnSubject]) Option {
	return func(s *Synthesizer) {
		s.columns = append(s.columns, src)
	}
}

// WithTableSource adds a table source ahead of the heuristic.
func WithTableSource(src Source[TableSubject]) Option {
	return func(s *Synthesizer) {
		s.tables = append(s.tables, src)
	}
}

// New creates a Synthesizer with the native and comment sources, any
// extra sources from opts, and the heuristic last.
func New(opts ...Option) *Synthesizer {
	s := &Synthesizer{
		columns: []Source[ColumnSubject]{
			{Provenance: core.ProvenanceNative, Produce: func(c ColumnSubject) string { return c.Column.Column.NativeDescription }},
			{Provenance: core.ProvenanceComment, Produce: func(c ColumnSubject) string { return c.Column.Column.Comment }},
		},
		tables: []Source[TableSubject]{
			{Provenance: core.ProvenanceNative, Produce: func(t TableSubject) string { return t.Table.NativeDescription }},
			{Provenance: core.ProvenanceComment, Produce: func(t TableSubject) string { return t.Table.Comment }},
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DescribeColumn returns the first usable description for a column.
func (s *Synthesizer) DescribeColumn(subject ColumnSubject) core.Description {
	if d, ok := first(subject, s.columns); ok {
		return d
	}
	return core.Description{Text: columnHeuristic(subject), Source: core.ProvenanceHeuristic}
}

// DescribeTable returns the first usable description for a table.
func (s *Synthesizer) DescribeTable(subject TableSubject) core.Description {
	if d, ok := first(subject, s.tables); ok {
		return d
	}
	return core.Description{Text: tableHeuristic(subject), Source: core.ProvenanceHeuristic}
}

func first[S any](subject S, sources []Source[S]) (core.Description, bool) {
	for _, src := range sources {
		text := strings.TrimSpace(src.Produce(subject))
		if core.IsPlaceholder(text) {
			continue
		}
		return core.Description{Text: text, Source: src.Provenance}, true
	}
	return core.Description{}, false
}

// sentence capitalizes the first letter and terminates with a period.
func sentence(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	s = string(unicode.ToUpper(r)) + s[size:]
	if !strings.HasSuffix(s, ".") {
		s += "."
	}
	return s
}

// joinList renders "a", "a and b" or "a, b and c".
func joinList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}
