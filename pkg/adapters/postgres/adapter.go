// Package postgres provides a PostgreSQL metadata adapter for schemadoc.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/leapstack-labs/schemadoc/pkg/adapter"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
)

var dialect = &adapter.Dialect{Name: "postgres", DefaultSchema: "public", NumberedPlaceholders: true}

// Adapter implements the adapter.Adapter interface for PostgreSQL.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new PostgreSQL adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger},
	}
}

// Dialect returns the SQL dialect settings for PostgreSQL.
func (a *Adapter) Dialect() *adapter.Dialect {
	return dialect
}

// Connect establishes a connection to PostgreSQL.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	dsn := buildPostgresDSN(cfg)

	a.Logger.Debug("connecting to postgres", slog.String("host", cfg.Host), slog.String("database", cfg.Database))

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("failed to open postgres connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping postgres: %w", err)
	}

	a.DB = db
	a.Cfg = cfg
	return nil
}

// buildPostgresDSN constructs a PostgreSQL connection string.
// Options other than sslmode are appended in key order.
func buildPostgresDSN(cfg adapter.Config) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}

	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	sslmode := "disable"
	if mode, ok := cfg.Options["sslmode"]; ok {
		sslmode = mode
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s",
		host, port, cfg.Database, sslmode)

	if cfg.Username != "" {
		dsn += fmt.Sprintf(" user=%s", cfg.Username)
	}
	if cfg.Password != "" {
		dsn += fmt.Sprintf(" password=%s", cfg.Password)
	}

	keys := make([]string, 0, len(cfg.Options))
	for k := range cfg.Options {
		if k != "sslmode" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		dsn += fmt.Sprintf(" %s=%s", k, cfg.Options[k])
	}

	return dsn
}

// ListTables returns the tables and views of a schema in name order.
func (a *Adapter) ListTables(ctx context.Context, schema string) ([]string, error) {
	return a.ListTablesCommon(ctx, schema, dialect)
}

// GetTableMetadata retrieves columns, samples and COMMENT ON text for a table.
func (a *Adapter) GetTableMetadata(ctx context.Context, schema, table string, sampleSize int) (*adapter.Metadata, error) {
	md, err := a.GetTableMetadataCommon(ctx, schema, table, sampleSize, dialect)
	if err != nil {
		return nil, err
	}

	var comment sql.NullString
	err = a.DB.QueryRowContext(ctx, `
		SELECT obj_description(c.oid, 'pg_class')
		FROM pg_catalog.pg_class c
		JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
		WHERE n.nspname = $1 AND c.relname = $2
	`, md.Schema, md.Name).Scan(&comment)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to query table comment: %w", err)
	}
	md.Comment = comment.String

	comments, err := a.columnComments(ctx, md.Schema, md.Name)
	if err != nil {
		return nil, err
	}
	adapter.ApplyColumnComments(md, comments)

	return md, nil
}

func (a *Adapter) columnComments(ctx context.Context, schema, table string) (map[string]string, error) {
	rows, err := a.DB.QueryContext(ctx, `
		SELECT a.attname, col_description(c.oid, a.attnum)
		FROM pg_catalog.pg_attribute a
		JOIN pg_catalog.pg_class c ON c.oid = a.attrelid
		JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
		WHERE n.nspname = $1 AND c.relname = $2
			AND a.attnum > 0 AND NOT a.attisdropped
			AND col_description(c.oid, a.attnum) IS NOT NULL
	`, schema, table)
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

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
