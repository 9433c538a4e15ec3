package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/schemadoc/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = `
tables:
  - name: orders
    description: Orders placed online
    columns:
      - name: order_id
        type: INTEGER
        nullable: false
        samples: [3, 1, 2]
      - name: status
        type: VARCHAR
        comment: Fulfilment state
        samples: [open, null, shipped]
  - name: customers
    columns:
      - name: id
  - schema: staging
    name: raw_orders
    columns:
      - name: payload
        type: JSON
`

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func connect(t *testing.T) *Adapter {
	t.Helper()
	adp := New(nil)
	require.NoError(t, adp.Connect(context.Background(), core.AdapterConfig{Path: writeFixture(t, fixture)}))
	return adp
}

func TestAdapter_ListTables(t *testing.T) {
	adp := connect(t)
	ctx := context.Background()

	tables, err := adp.ListTables(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"customers", "orders"}, tables)

	tables, err = adp.ListTables(ctx, "staging")
	require.NoError(t, err)
	assert.Equal(t, []string{"raw_orders"}, tables)

	tables, err = adp.ListTables(ctx, "nope")
	require.NoError(t, err)
	assert.Empty(t, tables)
}

func TestAdapter_GetTableMetadata(t *testing.T) {
	adp := connect(t)

	md, err := adp.GetTableMetadata(context.Background(), "main", "orders", 2)
	require.NoError(t, err)

	assert.Equal(t, "Orders placed online", md.NativeDescription)
	require.Len(t, md.Columns, 2)

	id := md.Columns[0]
	assert.Equal(t, 1, id.Position)
	assert.False(t, id.Nullable)
	assert.Equal(t, core.TypeNumeric, id.Type)
	assert.Equal(t, []any{3, 1}, id.Samples)

	status := md.Columns[1]
	assert.True(t, status.Nullable, "nullable defaults to true")
	assert.Equal(t, "Fulfilment state", status.Comment)
	assert.Equal(t, []string{"open", "shipped"}, status.SampleStrings())
}

func TestAdapter_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{"malformed yaml", "tables: [", "failed to parse snapshot"},
		{"nameless table", "tables:\n  - columns: []\n", "table 1 has no name"},
		{"duplicate table", "tables:\n  - name: a\n  - name: a\n    schema: main\n", "duplicate table main.a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(nil).Connect(context.Background(), core.AdapterConfig{Path: writeFixture(t, tt.content)})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestAdapter_NotLoaded(t *testing.T) {
	adp := New(nil)

	_, err := adp.ListTables(context.Background(), "")
	require.Error(t, err)

	require.NoError(t, connect(t).Close())

	err = adp.Connect(context.Background(), core.AdapterConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path not specified")
}

func TestAdapter_TableNotFound(t *testing.T) {
	_, err := connect(t).GetTableMetadata(context.Background(), "", "missing", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "main.missing not found")
}
