// Package sqlite provides a SQLite metadata adapter for schemadoc.
//
// SQLite has no information_schema and no COMMENT statement, so columns come
// from pragma_table_info and descriptions always fall through to heuristics.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/schemadoc/pkg/adapter"
	"github.com/leapstack-labs/schemadoc/pkg/core"

	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

var dialect = &adapter.Dialect{Name: "sqlite", DefaultSchema: "main"}

// Adapter implements the adapter.Adapter interface for SQLite.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new SQLite adapter instance.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger},
	}
}

// Dialect returns the SQL dialect settings for SQLite.
func (a *Adapter) Dialect() *adapter.Dialect {
	return dialect
}

// Connect opens the database file at cfg.Path (or cfg.Database).
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	path := cfg.Path
	if path == "" {
		path = cfg.Database
	}
	if path == "" {
		path = ":memory:"
	}

	a.Logger.Debug("connecting to sqlite", slog.String("path", path))

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// Every connection to :memory: is a separate database.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	a.DB = db
	a.Cfg = cfg
	return nil
}

// ListTables returns the tables and views of a schema in name order.
func (a *Adapter) ListTables(ctx context.Context, schema string) ([]string, error) {
	if !a.IsConnected() {
		return nil, fmt.Errorf("database connection not established")
	}
	schema = dialect.ResolveSchema(schema)

	//nolint:gosec // Schema is quoted
	query := fmt.Sprintf(`
		SELECT name FROM %s.sqlite_master
		WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%%'
		ORDER BY name
	`, dialect.QuoteIdent(schema))

	rows, err := a.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables in schema %s: %w", schema, err)
	}
	defer func() { _ = rows.Close() }()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tables: %w", err)
	}
	return tables, nil
}

// GetTableMetadata retrieves columns and samples for a table.
func (a *Adapter) GetTableMetadata(ctx context.Context, schema, table string, sampleSize int) (*adapter.Metadata, error) {
	if !a.IsConnected() {
		return nil, fmt.Errorf("database connection not established")
	}
	schema = dialect.ResolveSchema(schema)

	rows, err := a.DB.QueryContext(ctx,
		`SELECT cid, name, type, "notnull", pk FROM pragma_table_info(?, ?) ORDER BY cid`,
		table, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []core.ColumnMetadata
	for rows.Next() {
		var (
			cid, notNull, pk int
			col              core.ColumnMetadata
		)
		if err := rows.Scan(&cid, &col.Name, &col.RawType, &notNull, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}
		col.Position = cid + 1
		col.Nullable = notNull == 0 && pk == 0
		col.Type = core.NormalizeType(col.RawType)
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column metadata: %w", err)
	}
	_ = rows.Close()

	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s.%s not found", schema, table)
	}

	for i := range columns {
		columns[i].Samples = a.SampleColumn(ctx, schema, table, columns[i].Name, sampleSize, dialect)
	}

	return &adapter.Metadata{
		Schema:  schema,
		Name:    table,
		Columns: columns,
	}, nil
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
