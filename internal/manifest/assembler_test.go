package manifest

import (
	"context"
	"fmt"
	"testing"

	"github.com/leapstack-labs/schemadoc/internal/classify"
	"github.com/leapstack-labs/schemadoc/internal/rules"
	"github.com/leapstack-labs/schemadoc/internal/testutil"
	"github.com/leapstack-labs/schemadoc/internal/writer"
	"github.com/leapstack-labs/schemadoc/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRules(t *testing.T, doc string) *rules.RuleSet {
	t.Helper()
	rs, err := rules.Parse([]byte(doc), "tests_config.yaml")
	require.NoError(t, err)
	return rs
}

func testNames(ds []core.Directive) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Name
	}
	return out
}

func TestAssemble_IdentifierScenario(t *testing.T) {
	a := New(Config{
		Rules:  mustRules(t, "tests:\n  - column: id\n    tests: [not_null, unique]\n"),
		Logger: testutil.NewTestLogger(t),
	})

	res, err := a.Assemble(context.Background(), []core.TableMetadata{{
		Name: "customers",
		Columns: []core.ColumnMetadata{
			{Name: "id", Type: core.TypeNumeric, Samples: []any{1, 2, 3}},
		},
	}})
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)

	require.Len(t, res.Document.Tables, 1)
	col := res.Document.Tables[0].Columns[0]
	assert.Equal(t, core.Categories{core.CategoryIdentifier}, col.Categories)
	assert.Contains(t, col.Description.Text, "identifier")
	assert.Equal(t, []string{"not_null", "unique"}, testNames(col.Tests))
}

func TestAssemble_SurrogateKeyPassThrough(t *testing.T) {
	a := New(Config{
		Rules: mustRules(t, `
tests:
  - column: c_current_cdemo_sk
    tests:
      - accepted_values:
          values: ['active', 'inactive', 'pending']
`),
	})

	res, err := a.Assemble(context.Background(), []core.TableMetadata{{
		Name:    "customer",
		Columns: []core.ColumnMetadata{{Name: "C_CURRENT_CDEMO_SK", RawType: "NUMBER(38,0)", Type: core.TypeNumeric}},
	}})
	require.NoError(t, err)

	col := res.Document.Tables[0].Columns[0]
	assert.Equal(t, core.Categories{core.CategoryIdentifier, core.CategoryReference}, col.Categories)
	assert.Equal(t, "C_CURRENT_CDEMO_SK", col.Name)

	require.Len(t, col.Tests, 1)
	values, ok := col.Tests[0].Params.Lookup("values")
	require.True(t, ok)
	assert.Equal(t, core.ListOf(
		core.StringValue("active"),
		core.StringValue("inactive"),
		core.StringValue("pending"),
	), values)
}

func TestAssemble_StaleRule(t *testing.T) {
	a := New(Config{
		Rules: mustRules(t, `
tests:
  - column: id
    tests: [unique]
  - column: retired_column
    tests: [not_null]
`),
	})

	tables := []core.TableMetadata{
		{Name: "a", Columns: []core.ColumnMetadata{{Name: "id"}}},
		{Name: "b", Columns: []core.ColumnMetadata{{Name: "ID"}, {Name: "name"}}},
	}
	res, err := a.Assemble(context.Background(), tables)
	require.NoError(t, err)

	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], `"retired_column"`)
	assert.Contains(t, res.Warnings[0], "line 5")

	for _, tm := range res.Document.Tables {
		for _, c := range tm.Columns {
			assert.NotEqual(t, "retired_column", c.Name)
		}
	}
	assert.Equal(t, []string{"unique"}, testNames(res.Document.Tables[1].Columns[0].Tests))
	assert.Empty(t, res.Document.Tables[1].Columns[1].Tests)
}

func TestAssemble_PreservesOrder(t *testing.T) {
	var columns []core.ColumnMetadata
	var want []string
	for i := 40; i > 0; i-- {
		name := fmt.Sprintf("col_%02d", i)
		if i%7 == 0 {
			name = fmt.Sprintf("amount_%02d", i)
		}
		columns = append(columns, core.ColumnMetadata{Name: name, Type: core.TypeNumeric, Position: 41 - i})
		want = append(want, name)
	}
	tables := []core.TableMetadata{
		{Name: "zz_last_alphabetically", Columns: columns},
		{Name: "aa_first", Columns: []core.ColumnMetadata{{Name: "b"}, {Name: "a"}}},
	}

	res, err := New(Config{Workers: 3}).Assemble(context.Background(), tables)
	require.NoError(t, err)

	require.Len(t, res.Document.Tables, 2)
	assert.Equal(t, "zz_last_alphabetically", res.Document.Tables[0].Name)
	assert.Equal(t, "aa_first", res.Document.Tables[1].Name)

	var got []string
	for _, c := range res.Document.Tables[0].Columns {
		got = append(got, c.Name)
	}
	assert.Equal(t, want, got)
	assert.Equal(t, "b", res.Document.Tables[1].Columns[0].Name)
}

func TestAssemble_Idempotent(t *testing.T) {
	rs := mustRules(t, `
tests:
  - column: ss_net_amount
    tests:
      - accepted_range: {min_value: 0, max_value: 10000}
  - column: ss_customer_sk
    tests: [not_null, {relationships: {to: "ref('customer')", field: c_customer_sk}}]
`)
	tables := []core.TableMetadata{{
		Name: "store_sales",
		Columns: []core.ColumnMetadata{
			{Name: "ss_customer_sk", Type: core.TypeNumeric, Samples: []any{1, 2}},
			{Name: "ss_sold_date", Type: core.TypeDateTime},
			{Name: "ss_net_amount", Type: core.TypeNumeric, Samples: []any{1.25, 80.5}},
			{Name: "ss_channel", Type: core.TypeText, Samples: []any{"web", "store", "web"}},
		},
	}}

	render := func() []byte {
		res, err := New(Config{Rules: rs, Workers: 2}).Assemble(context.Background(), tables)
		require.NoError(t, err)
		out, err := writer.Render(res.Document)
		require.NoError(t, err)
		return out
	}

	first := render()
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, render())
	}
}

func TestAssemble_TableDescription(t *testing.T) {
	tables := []core.TableMetadata{
		{
			Name: "store_sales",
			Columns: []core.ColumnMetadata{
				{Name: "ss_customer_sk", Type: core.TypeNumeric},
				{Name: "ss_sold_at", Type: core.TypeDateTime},
				{Name: "ss_net_amount", Type: core.TypeNumeric},
			},
		},
		{Name: "customers", Comment: "People who buy things", Columns: []core.ColumnMetadata{{Name: "id"}}},
	}

	res, err := New(Config{}).Assemble(context.Background(), tables)
	require.NoError(t, err)

	sales := res.Document.Tables[0]
	assert.Equal(t, core.ProvenanceHeuristic, sales.Description.Source)
	assert.Contains(t, sales.Description.Text, "Records transactional events associated with customers")
	assert.Equal(t, "customers", sales.Columns[0].Related, "references resolve against the tables in the run")

	customers := res.Document.Tables[1]
	assert.Equal(t, core.ProvenanceComment, customers.Description.Source)
	assert.Equal(t, "People who buy things", customers.Description.Text)
}

func TestAssemble_ExplicitClassifier(t *testing.T) {
	c := classify.New(core.ClassifierConfig{StatusMaxDistinct: 1})
	res, err := New(Config{Classifier: c}).Assemble(context.Background(), []core.TableMetadata{{
		Name:    "t",
		Columns: []core.ColumnMetadata{{Name: "tier", Type: core.TypeText, Samples: []any{"a", "b", "a"}}},
	}})
	require.NoError(t, err)
	assert.Equal(t, core.Categories{core.CategoryGeneric}, res.Document.Tables[0].Columns[0].Categories)
}

func TestAssemble_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Config{}).Assemble(ctx, []core.TableMetadata{{Name: "t", Columns: []core.ColumnMetadata{{Name: "a"}}}})
	require.ErrorIs(t, err, context.Canceled)
}

func TestAssemble_NoTables(t *testing.T) {
	res, err := New(Config{Rules: mustRules(t, "tests:\n  - column: id\n")}).Assemble(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, res.Document.Tables)
	assert.Equal(t, core.ManifestVersion, res.Document.Version)
	assert.Len(t, res.Warnings, 1)
}
