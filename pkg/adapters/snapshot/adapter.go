// Package snapshot provides an offline adapter that reads table metadata from a
// YAML snapshot file instead of a live database.
//
// A snapshot looks like:
//
//	tables:
//	  - schema: main
//	    name: orders
//	    description: Native engine description
//	    comment: Stored table comment
//	    columns:
//	      - name: order_id
//	        type: INTEGER
//	        nullable: false
//	        samples: [1, 2, 3]
//
// It is the only adapter that carries native-engine descriptions.
package snapshot

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/leapstack-labs/schemadoc/pkg/adapter"
	"github.com/leapstack-labs/schemadoc/pkg/core"
	"gopkg.in/yaml.v3"
)

var dialect = &adapter.Dialect{Name: "snapshot", DefaultSchema: "main"}

// File is the on-disk snapshot document.
type File struct {
	Tables []Table `yaml:"tables"`
}

// Table is one table entry of a snapshot.
type Table struct {
	Schema      string   `yaml:"schema,omitempty"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	Comment     string   `yaml:"comment,omitempty"`
	Columns     []Column `yaml:"columns"`
}

// Column is one column entry of a snapshot table.
type Column struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type,omitempty"`
	Nullable    *bool  `yaml:"nullable,omitempty"`
	Description string `yaml:"description,omitempty"`
	Comment     string `yaml:"comment,omitempty"`
	Samples     []any  `yaml:"samples,omitempty"`
}

// Adapter serves metadata from a snapshot file.
type Adapter struct {
	logger *slog.Logger
	tables map[string][]Table // by schema, in file order
}

// New creates a new snapshot adapter instance.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{logger: logger}
}

// Dialect returns the dialect settings; snapshots default to schema "main".
func (a *Adapter) Dialect() *adapter.Dialect {
	return dialect
}

// Connect reads and validates the snapshot at cfg.Path (or cfg.Database).
func (a *Adapter) Connect(_ context.Context, cfg adapter.Config) error {
	path := cfg.Path
	if path == "" {
		path = cfg.Database
	}
	if path == "" {
		return fmt.Errorf("snapshot path not specified")
	}

	data, err := os.ReadFile(path) //nolint:gosec // path comes from user config
	if err != nil {
		return fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}

	tables, err := Parse(data)
	if err != nil {
		return fmt.Errorf("failed to parse snapshot %s: %w", path, err)
	}

	a.tables = tables
	a.logger.Debug("loaded snapshot", slog.String("path", path), slog.Int("schemas", len(tables)))
	return nil
}

// Parse decodes a snapshot document and groups its tables by schema.
func Parse(data []byte) (map[string][]Table, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	tables := make(map[string][]Table)
	seen := make(map[string]bool)
	for i, t := range f.Tables {
		if t.Name == "" {
			return nil, fmt.Errorf("table %d has no name", i+1)
		}
		if t.Schema == "" {
			t.Schema = dialect.DefaultSchema
		}
		key := t.Schema + "." + t.Name
		if seen[key] {
			return nil, fmt.Errorf("duplicate table %s", key)
		}
		seen[key] = true
		tables[t.Schema] = append(tables[t.Schema], t)
	}
	return tables, nil
}

// Close releases the loaded snapshot.
func (a *Adapter) Close() error {
	a.tables = nil
	return nil
}

// ListTables returns the snapshot's tables in a schema, in name order.
func (a *Adapter) ListTables(_ context.Context, schema string) ([]string, error) {
	if a.tables == nil {
		return nil, fmt.Errorf("snapshot not loaded")
	}
	var names []string
	for _, t := range a.tables[dialect.ResolveSchema(schema)] {
		names = append(names, t.Name)
	}
	sort.Strings(names)
	return names, nil
}

// GetTableMetadata returns the snapshot entry for a table, with samples
// truncated to sampleSize.
func (a *Adapter) GetTableMetadata(_ context.Context, schema, table string, sampleSize int) (*adapter.Metadata, error) {
	if a.tables == nil {
		return nil, fmt.Errorf("snapshot not loaded")
	}
	schema = dialect.ResolveSchema(schema)
	if sampleSize > core.MaxSampleSize {
		sampleSize = core.MaxSampleSize
	}

	for _, t := range a.tables[schema] {
		if t.Name != table {
			continue
		}
		md := &adapter.Metadata{
			Schema:            schema,
			Name:              t.Name,
			NativeDescription: t.Description,
			Comment:           t.Comment,
		}
		for i, c := range t.Columns {
			col := core.ColumnMetadata{
				Name:              c.Name,
				RawType:           c.Type,
				Type:              core.NormalizeType(c.Type),
				Nullable:          c.Nullable == nil || *c.Nullable,
				Position:          i + 1,
				NativeDescription: c.Description,
				Comment:           c.Comment,
			}
			for _, s := range c.Samples {
				if len(col.Samples) >= sampleSize {
					break
				}
				if s != nil {
					col.Samples = append(col.Samples, s)
				}
			}
			md.Columns = append(md.Columns, col)
		}
		return md, nil
	}
	return nil, fmt.Errorf("table %s.%s not found", schema, table)
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
