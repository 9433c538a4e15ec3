package core

import (
	"sort"
	"strconv"
	"strings"
)

// ValueKind discriminates the shape of a directive parameter value.
type ValueKind int

// Parameter value kinds.
const (
	ScalarValue ValueKind = iota
	ListValue
	MapValue
)

// Scalar tags as resolved from the rules document.
const (
	TagString = "!!str"
	TagInt    = "!!int"
	TagFloat  = "!!float"
	TagBool   = "!!bool"
	TagNull   = "!!null"
)

// Value is a directive parameter: a tagged scalar, a list, or an ordered mapping.
// Directives are opaque to everything except the matcher, so values are kept
// exactly as written (text plus resolved tag) for faithful re-emission.
type Value struct {
	Kind   ValueKind
	Text   string
	Tag    string
	Items  []Value
	Fields []Field
}

// Field is one key of an ordered parameter mapping.
type Field struct {
	Key   string
	Value Value
}

// StringValue returns a string scalar.
func StringValue(s string) Value {
	return Value{Kind: ScalarValue, Text: s, Tag: TagString}
}

// IntValue returns an integer scalar.
func IntValue(n int64) Value {
	return Value{Kind: ScalarValue, Text: strconv.FormatInt(n, 10), Tag: TagInt}
}

// ListOf returns a list value.
func ListOf(items ...Value) Value {
	return Value{Kind: ListValue, Items: items}
}

// MapOf returns an ordered mapping value.
func MapOf(fields ...Field) Value {
	return Value{Kind: MapValue, Fields: fields}
}

// Lookup returns the value stored under key in a mapping value.
func (v Value) Lookup(key string) (Value, bool) {
	for _, f := range v.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return Value{}, false
}

// canonical writes an order-insensitive encoding for mappings and an
// order-sensitive one for lists, so equal payloads share one identity.
func (v Value) canonical(b *strings.Builder) {
	switch v.Kind {
	case ScalarValue:
		b.WriteString(v.Tag)
		b.WriteByte(':')
		b.WriteString(strconv.Quote(v.Text))
	case ListValue:
		b.WriteByte('[')
		for i, item := range v.Items {
			if i > 0 {
				b.WriteByte(',')
			}
			item.canonical(b)
		}
		b.WriteByte(']')
	case MapValue:
		fields := make([]Field, len(v.Fields))
		copy(fields, v.Fields)
		sort.SliceStable(fields, func(i, j int) bool { return fields[i].Key < fields[j].Key })
		b.WriteByte('{')
		for i, f := range fields {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Quote(f.Key))
			b.WriteByte('=')
			f.Value.canonical(b)
		}
		b.WriteByte('}')
	}
}

// Directive is one declared data-quality test: a bare name such as "not_null",
// or a name carrying a parameter mapping such as accepted_values: {values: [...]}.
type Directive struct {
	Name string
	// Params is nil for bare directives; otherwise a MapValue.
	Params *Value
}

// Bare returns a directive without parameters.
func Bare(name string) Directive {
	return Directive{Name: name}
}

// WithParams returns a parameterized directive.
func WithParams(name string, fields ...Field) Directive {
	p := MapOf(fields...)
	return Directive{Name: name, Params: &p}
}

// IsBare reports whether the directive carries no parameters.
func (d Directive) IsBare() bool {
	return d.Params == nil
}

// Identity returns the de-duplication key: the name plus the canonical
// parameter mapping. Two directives with the same identity are the same test.
func (d Directive) Identity() string {
	var b strings.Builder
	b.WriteString(d.Name)
	if d.Params != nil {
		b.WriteByte(' ')
		d.Params.canonical(&b)
	}
	return b.String()
}
