package core

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxSampleSize is the upper bound on sampled non-null values per column.
const MaxSampleSize = 100

// DeclaredType is the normalized family of a column's database type.
type DeclaredType int

// Declared type families.
const (
	TypeOther DeclaredType = iota
	TypeNumeric
	TypeText
	TypeDateTime
	TypeBoolean
)

// String returns the string representation of the declared type.
func (t DeclaredType) String() string {
	switch t {
	case TypeNumeric:
		return "numeric"
	case TypeText:
		return "text"
	case TypeDateTime:
		return "datetime"
	case TypeBoolean:
		return "boolean"
	default:
		return "other"
	}
}

// NormalizeType maps a raw database type (e.g. "VARCHAR(255)", "NUMBER(38,0)",
// "timestamp with time zone") onto a DeclaredType family.
func NormalizeType(raw string) DeclaredType {
	name := strings.ToLower(strings.TrimSpace(raw))
	if i := strings.IndexByte(name, '('); i >= 0 {
		name = name[:i]
	}
	name = strings.TrimSpace(name)

	switch {
	case name == "":
		return TypeOther
	case strings.Contains(name, "bool"), name == "bit":
		return TypeBoolean
	case strings.Contains(name, "date"), strings.Contains(name, "time"), name == "interval":
		return TypeDateTime
	case strings.Contains(name, "char"), strings.Contains(name, "text"),
		strings.Contains(name, "string"), name == "uuid", name == "enum", name == "citext":
		return TypeText
	case strings.Contains(name, "int"), strings.Contains(name, "number"),
		strings.Contains(name, "numeric"), strings.Contains(name, "decimal"),
		strings.Contains(name, "float"), strings.Contains(name, "double"),
		strings.Contains(name, "real"), strings.Contains(name, "money"):
		return TypeNumeric
	default:
		return TypeOther
	}
}

// ColumnMetadata describes one discovered column.
// Samples holds up to MaxSampleSize non-null raw values as returned by the driver.
type ColumnMetadata struct {
	Name     string
	RawType  string
	Type     DeclaredType
	Nullable bool
	Position int
	Samples  []any

	// NativeDescription is filled by providers whose engine can describe
	// objects itself. Comment is the stored comment on the column, if any.
	NativeDescription string
	Comment           string
}

// SampleStrings returns the usable samples rendered as strings.
// Values that are nil, not valid UTF-8, or contain NUL bytes are skipped.
func (c ColumnMetadata) SampleStrings() []string {
	out := make([]string, 0, len(c.Samples))
	for _, s := range c.Samples {
		var str string
		switch v := s.(type) {
		case nil:
			continue
		case string:
			str = v
		case []byte:
			str = string(v)
		case fmt.Stringer:
			str = v.String()
		default:
			str = fmt.Sprint(v)
		}
		if !utf8.ValidString(str) || strings.ContainsRune(str, 0) {
			continue
		}
		out = append(out, str)
	}
	return out
}

// TableMetadata holds metadata about one table and its columns in ordinal order.
type TableMetadata struct {
	Schema            string
	Name              string
	Columns           []ColumnMetadata
	NativeDescription string
	Comment           string
}

// ColumnNames returns the column names in ordinal order.
func (t *TableMetadata) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}
