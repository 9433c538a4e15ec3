// Package adapter provides the metadata provider contract for schemadoc.
//
// An adapter connects to a database and returns, per table, the ordered
// columns with their declared type, nullability, a bounded sample of
// non-null values and any stored or engine-native descriptions.
// Concrete adapter implementations are in pkg/adapters/ subdirectories.
package adapter

import (
	"context"

	"github.com/leapstack-labs/schemadoc/pkg/core"
)

// Type aliases so adapter implementations can stay within this package's vocabulary.
type (
	// Config is an alias for core.AdapterConfig.
	Config = core.AdapterConfig

	// Column is an alias for core.ColumnMetadata.
	Column = core.ColumnMetadata

	// Metadata is an alias for core.TableMetadata.
	Metadata = core.TableMetadata
)

// Adapter defines the interface that all metadata providers must implement.
type Adapter interface {
	// Connect establishes a connection to the database using the provided config.
	Connect(ctx context.Context, cfg Config) error

	// Close closes the database connection and releases resources.
	Close() error

	// ListTables returns the tables of a schema in the provider's order.
	// An empty schema selects the dialect's default schema.
	ListTables(ctx context.Context, schema string) ([]string, error)

	// GetTableMetadata returns the ordered columns of a table with up to
	// sampleSize non-null sampled values per column.
	GetTableMetadata(ctx context.Context, schema, table string, sampleSize int) (*Metadata, error)

	// Dialect returns the SQL dialect settings for this adapter.
	Dialect() *Dialect
}
