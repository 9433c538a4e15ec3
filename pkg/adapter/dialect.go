package adapter

import (
	"strconv"
	"strings"
)

// Dialect holds the few SQL dialect settings metadata queries depend on.
type Dialect struct {
	Name          string
	DefaultSchema string
	// Numbered placeholders ($1, $2) instead of "?".
	NumberedPlaceholders bool
}

// FormatPlaceholder returns the bind placeholder for the n-th (1-based) argument.
func (d *Dialect) FormatPlaceholder(n int) string {
	if d.NumberedPlaceholders {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// QuoteIdent quotes an identifier with double quotes, escaping embedded quotes.
func (d *Dialect) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QualifiedName returns the quoted schema.table reference.
func (d *Dialect) QualifiedName(schema, table string) string {
	if schema == "" {
		return d.QuoteIdent(table)
	}
	return d.QuoteIdent(schema) + "." + d.QuoteIdent(table)
}

// ResolveSchema returns schema, or the dialect default when schema is empty.
func (d *Dialect) ResolveSchema(schema string) string {
	if schema != "" {
		return schema
	}
	return d.DefaultSchema
}

// ParseQualifiedName splits a table reference into schema and name.
// Uses the dialect's default schema if not specified.
func ParseQualifiedName(table string, d *Dialect) (schema, name string) {
	if parts := strings.Split(table, "."); len(parts) == 2 {
		return parts[0], parts[1]
	}
	return d.DefaultSchema, table
}
