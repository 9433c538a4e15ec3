package adapter

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/leapstack-labs/schemadoc/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseSQLAdapter_Close(t *testing.T) {
	tests := []struct {
		name      string
		setupDB   bool
		expectErr bool
	}{
		{
			name:      "close with nil DB",
			setupDB:   false,
			expectErr: false,
		},
		{
			name:      "close with open DB",
			setupDB:   true,
			expectErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := &BaseSQLAdapter{}

			if tt.setupDB {
				db, mock, err := sqlmock.New()
				require.NoError(t, err)
				mock.ExpectClose()
				base.DB = db
			}

			err := base.Close()
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBaseSQLAdapter_Exec(t *testing.T) {
	tests := []struct {
		name      string
		setupDB   bool
		setupMock func(mock sqlmock.Sqlmock)
		sql       string
		expectErr bool
		errMsg    string
	}{
		{
			name:      "exec without connection",
			setupDB:   false,
			sql:       "SELECT 1",
			expectErr: true,
			errMsg:    "database connection not established",
		},
		{
			name:    "exec success",
			setupDB: true,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("CREATE TABLE users").WillReturnResult(sqlmock.NewResult(0, 0))
			},
			sql:       "CREATE TABLE users (id INT)",
			expectErr: false,
		},
		{
			name:    "exec with error",
			setupDB: true,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("INVALID SQL").WillReturnError(assert.AnError)
			},
			sql:       "INVALID SQL",
			expectErr: true,
			errMsg:    "failed to execute SQL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			base := &BaseSQLAdapter{}

			if tt.setupDB {
				db, mock, err := sqlmock.New()
				require.NoError(t, err)
				defer func() { _ = db.Close() }()

				if tt.setupMock != nil {
					tt.setupMock(mock)
				}
				base.DB = db
			}

			err := base.Exec(ctx, tt.sql)
			if tt.expectErr {
				require.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBaseSQLAdapter_IsConnected(t *testing.T) {
	tests := []struct {
		name     string
		setupDB  bool
		expected bool
	}{
		{
			name:     "not connected",
			setupDB:  false,
			expected: false,
		},
		{
			name:     "connected",
			setupDB:  true,
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := &BaseSQLAdapter{}

			if tt.setupDB {
				db, _, err := sqlmock.New()
				require.NoError(t, err)
				defer func() { _ = db.Close() }()
				base.DB = db
			}

			assert.Equal(t, tt.expected, base.IsConnected())
		})
	}
}

var testDialect = &Dialect{Name: "test", DefaultSchema: "main"}

func TestBaseSQLAdapter_UnusableAfterClose(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()

	base := &BaseSQLAdapter{DB: db}
	require.True(t, base.IsConnected())
	require.NoError(t, base.Close())

	assert.False(t, base.IsConnected())
	assert.NoError(t, base.Close(), "second close is a no-op")

	_, err = base.ListTablesCommon(context.Background(), "main", testDialect)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database connection not established")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBaseSQLAdapter_ListTablesCommon(t *testing.T) {
	tests := []struct {
		name      string
		setupDB   bool
		setupMock func(mock sqlmock.Sqlmock)
		schema    string
		expected  []string
		errMsg    string
	}{
		{
			name:    "without connection",
			setupDB: false,
			errMsg:  "database connection not established",
		},
		{
			name:    "default schema keeps provider order",
			setupDB: true,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("FROM information_schema.tables").
					WithArgs("main").
					WillReturnRows(sqlmock.NewRows([]string{"table_name"}).
						AddRow("customers").
						AddRow("orders"))
			},
			expected: []string{"customers", "orders"},
		},
		{
			name:    "explicit schema",
			setupDB: true,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("FROM information_schema.tables").
					WithArgs("sales").
					WillReturnRows(sqlmock.NewRows([]string{"table_name"}))
			},
			schema:   "sales",
			expected: nil,
		},
		{
			name:    "query error",
			setupDB: true,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("FROM information_schema.tables").WillReturnError(assert.AnError)
			},
			errMsg: "failed to list tables in schema main",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			base := &BaseSQLAdapter{}

			if tt.setupDB {
				db, mock, err := sqlmock.New()
				require.NoError(t, err)
				defer func() { _ = db.Close() }()
				tt.setupMock(mock)
				base.DB = db
			}

			tables, err := base.ListTablesCommon(ctx, tt.schema, testDialect)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, tables)
		})
	}
}

func TestBaseSQLAdapter_GetTableMetadataCommon(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("FROM information_schema.columns").
		WithArgs("main", "orders").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "data_type", "is_nullable", "ordinal_position"}).
			AddRow("order_id", "INTEGER", "NO", 1).
			AddRow("status", "VARCHAR", "YES", 2))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "order_id" FROM "main"."orders" WHERE "order_id" IS NOT NULL LIMIT 3`)).
		WillReturnRows(sqlmock.NewRows([]string{"order_id"}).AddRow(1).AddRow(2).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "status" FROM "main"."orders"`)).
		WillReturnError(assert.AnError)

	base := &BaseSQLAdapter{DB: db}
	md, err := base.GetTableMetadataCommon(ctx, "", "orders", 3, testDialect)
	require.NoError(t, err)

	assert.Equal(t, "main", md.Schema)
	assert.Equal(t, "orders", md.Name)
	require.Len(t, md.Columns, 2)

	assert.Equal(t, "order_id", md.Columns[0].Name)
	assert.Equal(t, core.TypeNumeric, md.Columns[0].Type)
	assert.False(t, md.Columns[0].Nullable)
	assert.Len(t, md.Columns[0].Samples, 3)

	// A failed sample query degrades to an empty sample set.
	assert.Equal(t, "status", md.Columns[1].Name)
	assert.Equal(t, core.TypeText, md.Columns[1].Type)
	assert.True(t, md.Columns[1].Nullable)
	assert.Empty(t, md.Columns[1].Samples)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBaseSQLAdapter_GetTableMetadataCommon_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("FROM information_schema.columns").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "data_type", "is_nullable", "ordinal_position"}))

	base := &BaseSQLAdapter{DB: db}
	_, err = base.GetTableMetadataCommon(context.Background(), "main", "missing", 10, testDialect)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table main.missing not found")
}

func TestBaseSQLAdapter_SampleColumn_CapsLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("LIMIT 100")).
		WillReturnRows(sqlmock.NewRows([]string{"v"}).AddRow("a"))

	base := &BaseSQLAdapter{DB: db}
	samples := base.SampleColumn(context.Background(), "main", "t", "v", 5000, testDialect)
	assert.Equal(t, []any{"a"}, samples)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyColumnComments(t *testing.T) {
	md := &core.TableMetadata{Columns: []core.ColumnMetadata{{Name: "a"}, {Name: "b"}}}
	ApplyColumnComments(md, map[string]string{"b": "the b column"})
	assert.Empty(t, md.Columns[0].Comment)
	assert.Equal(t, "the b column", md.Columns[1].Comment)
}

func TestDialect(t *testing.T) {
	pg := &Dialect{Name: "postgres", DefaultSchema: "public", NumberedPlaceholders: true}
	assert.Equal(t, "$2", pg.FormatPlaceholder(2))
	assert.Equal(t, "?", testDialect.FormatPlaceholder(2))
	assert.Equal(t, `"my ""odd"" col"`, pg.QuoteIdent(`my "odd" col`))
	assert.Equal(t, `"public"."users"`, pg.QualifiedName("public", "users"))
	assert.Equal(t, "public", pg.ResolveSchema(""))

	schema, name := ParseQualifiedName("sales.orders", pg)
	assert.Equal(t, "sales", schema)
	assert.Equal(t, "orders", name)
	schema, name = ParseQualifiedName("orders", pg)
	assert.Equal(t, "public", schema)
	assert.Equal(t, "orders", name)
}
