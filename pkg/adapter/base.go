package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/schemadoc/pkg/core"
)

// BaseSQLAdapter provides common database/sql functionality for adapters.
// Embed this struct in concrete adapter implementations to get standard
// Close, Exec and information_schema based introspection.
type BaseSQLAdapter struct {
	DB     *sql.DB
	Cfg    core.AdapterConfig
	Logger *slog.Logger
}

// Close closes the database connection.
func (b *BaseSQLAdapter) Close() error {
	if !b.IsConnected() {
		return nil
	}
	b.logger().Debug("closing database connection")
	err := b.DB.Close()
	b.DB = nil
	return err
}

// Exec executes a SQL statement that doesn't return rows.
func (b *BaseSQLAdapter) Exec(ctx context.Context, sqlStr string) error {
	if !b.IsConnected() {
		return fmt.Errorf("database connection not established")
	}
	_, err := b.DB.ExecContext(ctx, sqlStr)
	if err != nil {
		return fmt.Errorf("failed to execute SQL: %w", err)
	}
	return nil
}

// IsConnected returns true if the database connection is established.
func (b *BaseSQLAdapter) IsConnected() bool {
	return b.DB != nil
}

func (b *BaseSQLAdapter) logger() *slog.Logger {
	if b.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return b.Logger
}

// ListTablesCommon lists base tables and views from information_schema.tables,
// ordered by name.
func (b *BaseSQLAdapter) ListTablesCommon(ctx context.Context, schema string, d *Dialect) ([]string, error) {
	if !b.IsConnected() {
		return nil, fmt.Errorf("database connection not established")
	}
	schema = d.ResolveSchema(schema)

	//nolint:gosec // Placeholders are safe - they come from Dialect.FormatPlaceholder
	query := fmt.Sprintf(`
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = %s AND table_type IN ('BASE TABLE', 'VIEW')
		ORDER BY table_name
	`, d.FormatPlaceholder(1))

	rows, err := b.DB.QueryContext(ctx, query, schema)
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

// ColumnsCommon reads the ordered columns of a table from information_schema.columns.
func (b *BaseSQLAdapter) ColumnsCommon(ctx context.Context, schema, table string, d *Dialect) ([]core.ColumnMetadata, error) {
	if !b.IsConnected() {
		return nil, fmt.Errorf("database connection not established")
	}

	//nolint:gosec // Placeholders are safe - they come from Dialect.FormatPlaceholder
	query := fmt.Sprintf(`
		SELECT
			column_name,
			data_type,
			is_nullable,
			ordinal_position
		FROM information_schema.columns
		WHERE table_schema = %s AND table_name = %s
		ORDER BY ordinal_position
	`, d.FormatPlaceholder(1), d.FormatPlaceholder(2))

	rows, err := b.DB.QueryContext(ctx, query, schema, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []core.ColumnMetadata
	for rows.Next() {
		var col core.ColumnMetadata
		var nullable string
		if err := rows.Scan(&col.Name, &col.RawType, &nullable, &col.Position); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}
		col.Nullable = nullable == "YES"
		col.Type = core.NormalizeType(col.RawType)
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column metadata: %w", err)
	}
	return columns, nil
}

// SampleColumn returns up to limit non-null values of one column.
// Failures are logged and yield no samples: classification degrades to
// name-only heuristics rather than failing the run.
func (b *BaseSQLAdapter) SampleColumn(ctx context.Context, schema, table, column string, limit int, d *Dialect) []any {
	if !b.IsConnected() || limit <= 0 {
		return nil
	}
	if limit > core.MaxSampleSize {
		limit = core.MaxSampleSize
	}

	col := d.QuoteIdent(column)
	//nolint:gosec // Identifiers are quoted and come from information_schema
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s IS NOT NULL LIMIT %d",
		col, d.QualifiedName(schema, table), col, limit)

	rows, err := b.DB.QueryContext(ctx, query)
	if err != nil {
		b.logger().Warn("failed to sample column",
			slog.String("table", schema+"."+table),
			slog.String("column", column),
			slog.String("error", err.Error()))
		return nil
	}
	defer func() { _ = rows.Close() }()

	var samples []any
	for rows.Next() {
		var v any
		if err := rows.Scan(&v); err != nil {
			b.logger().Warn("failed to scan sample", slog.String("column", column), slog.String("error", err.Error()))
			return samples
		}
		if v != nil {
			samples = append(samples, v)
		}
	}
	if err := rows.Err(); err != nil {
		b.logger().Warn("error iterating samples", slog.String("column", column), slog.String("error", err.Error()))
	}
	return samples
}

// GetTableMetadataCommon provides a shared implementation of GetTableMetadata:
// columns from information_schema plus per-column samples. Comments are left
// to the concrete adapter since every engine stores them differently.
func (b *BaseSQLAdapter) GetTableMetadataCommon(ctx context.Context, schema, table string, sampleSize int, d *Dialect) (*core.TableMetadata, error) {
	if !b.IsConnected() {
		return nil, fmt.Errorf("database connection not established")
	}
	schema = d.ResolveSchema(schema)

	columns, err := b.ColumnsCommon(ctx, schema, table, d)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s.%s not found", schema, table)
	}

	for i := range columns {
		columns[i].Samples = b.SampleColumn(ctx, schema, table, columns[i].Name, sampleSize, d)
	}

	return &core.TableMetadata{
		Schema:  schema,
		Name:    table,
		Columns: columns,
	}, nil
}

// ApplyColumnComments copies stored comments onto matching columns.
func ApplyColumnComments(md *core.TableMetadata, comments map[string]string) {
	for i := range md.Columns {
		if c, ok := comments[md.Columns[i].Name]; ok {
			md.Columns[i].Comment = c
		}
	}
}
