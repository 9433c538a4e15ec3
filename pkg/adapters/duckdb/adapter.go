// Package duckdb provides a DuckDB metadata adapter for schemadoc.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/schemadoc/pkg/adapter"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

var dialect = &adapter.Dialect{Name: "duckdb", DefaultSchema: "main"}

// Adapter implements the adapter.Adapter interface for DuckDB.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new DuckDB adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger},
	}
}

// Dialect returns the SQL dialect settings for DuckDB.
func (a *Adapter) Dialect() *adapter.Dialect {
	return dialect
}

// Connect establishes a connection to DuckDB.
// Use ":memory:" as the path for an in-memory database.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	path := cfg.Path
	if path == "" {
		path = cfg.Database
	}
	if path == "" {
		path = ":memory:"
	}

	params, err := parseParams(cfg.Params)
	if err != nil {
		return fmt.Errorf("invalid duckdb params: %w", err)
	}

	a.Logger.Debug("connecting to duckdb", slog.String("path", path))

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return fmt.Errorf("failed to open duckdb connection: %w", err)
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping duckdb: %w", err)
	}

	a.DB = db
	a.Cfg = cfg

	if err := a.applyParams(ctx, params); err != nil {
		_ = db.Close()
		a.DB = nil
		return err
	}

	return nil
}

// applyParams installs extensions, creates secrets and applies settings.
func (a *Adapter) applyParams(ctx context.Context, params *Params) error {
	for _, ext := range params.Extensions {
		a.Logger.Debug("loading extension", slog.String("extension", ext))
		if err := a.Exec(ctx, "INSTALL "+ext); err != nil {
			return fmt.Errorf("failed to install extension %s: %w", ext, err)
		}
		if err := a.Exec(ctx, "LOAD "+ext); err != nil {
			return fmt.Errorf("failed to load extension %s: %w", ext, err)
		}
	}

	for _, secret := range params.Secrets {
		if err := a.Exec(ctx, buildCreateSecretSQL(secret)); err != nil {
			return fmt.Errorf("failed to create %s secret: %w", secret.Type, err)
		}
	}

	for key, value := range params.Settings {
		if err := a.Exec(ctx, fmt.Sprintf("SET %s = '%s'", key, escapeString(value))); err != nil {
			return fmt.Errorf("failed to apply setting %s: %w", key, err)
		}
	}

	return nil
}

// ListTables returns the tables and views of a schema in name order.
func (a *Adapter) ListTables(ctx context.Context, schema string) ([]string, error) {
	return a.ListTablesCommon(ctx, schema, dialect)
}

// GetTableMetadata retrieves columns, samples and stored comments for a table.
func (a *Adapter) GetTableMetadata(ctx context.Context, schema, table string, sampleSize int) (*adapter.Metadata, error) {
	md, err := a.GetTableMetadataCommon(ctx, schema, table, sampleSize, dialect)
	if err != nil {
		return nil, err
	}

	comment, err := a.tableComment(ctx, md.Schema, md.Name)
	if err != nil {
		return nil, err
	}
	md.Comment = comment

	comments, err := a.columnComments(ctx, md.Schema, md.Name)
	if err != nil {
		return nil, err
	}
	adapter.ApplyColumnComments(md, comments)

	return md, nil
}

func (a *Adapter) tableComment(ctx context.Context, schema, table string) (string, error) {
	query := `
		SELECT comment FROM duckdb_tables() WHERE schema_name = ? AND table_name = ?
		UNION ALL
		SELECT comment FROM duckdb_views() WHERE schema_name = ? AND view_name = ?
	`
	rows, err := a.DB.QueryContext(ctx, query, schema, table, schema, table)
	if err != nil {
		return "", fmt.Errorf("failed to query table comment: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var comment sql.NullString
	if rows.Next() {
		if err := rows.Scan(&comment); err != nil {
			return "", fmt.Errorf("failed to scan table comment: %w", err)
		}
	}
	return comment.String, rows.Err()
}

func (a *Adapter) columnComments(ctx context.Context, schema, table string) (map[string]string, error) {
	query := `
		SELECT column_name, comment
		FROM duckdb_columns()
		WHERE schema_name = ? AND table_name = ? AND comment IS NOT NULL
	`
	rows, err := a.DB.QueryContext(ctx, query, schema, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query column comments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	comments := make(map[string]string)
	for rows.Next() {
		var name, comment string
		if err := rows.Scan(&name, &comment); err != nil {
			return nil, fmt.Errorf("failed to scan column comment: %w", err)
		}
		comments[name] = comment
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column comments: %w", err)
	}
	return comments, nil
}

func escapeString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
