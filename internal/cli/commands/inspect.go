package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/leapstack-labs/schemadoc/internal/cli/output"
	"github.com/leapstack-labs/schemadoc/internal/engine"
	"github.com/leapstack-labs/schemadoc/pkg/core"
	"github.com/spf13/cobra"
)

// NewInspectCommand creates the inspect command.
func NewInspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show how columns are classified and described",
		Long: `Run the classification and description pipeline without writing any file
and show, per column, the detected categories, the referenced entity, the
description and where that description came from.

Output adapts to environment:
  - Terminal: Styled tables
  - Piped/Scripted: Markdown tables
  - JSON: Machine-readable format`,
		Example: `  # Inspect every table of the target schema
  schemadoc inspect

  # Inspect a single table as JSON
  schemadoc inspect --tables orders --format json`,
		RunE: runInspect,
	}

	cmd.Flags().String("rules", "", "Rules file declaring column tests")
	cmd.Flags().String("schema", "", "Schema to inspect (default: adapter default)")
	cmd.Flags().StringSlice("tables", nil, "Only inspect these tables (comma-separated)")
	cmd.Flags().Int("sample-size", 0, "Sampled values per column (max 100)")

	return cmd
}

// columnView is the JSON shape of one inspected column.
type columnView struct {
	Table       string   `json:"table"`
	Column      string   `json:"column"`
	Categories  []string `json:"categories"`
	Related     string   `json:"related,omitempty"`
	Description string   `json:"description"`
	Source      string   `json:"source"`
	Tests       []string `json:"tests,omitempty"`
}

func runInspect(cmd *cobra.Command, _ []string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := cmdCtx.Engine.Inspect(cmd.Context())
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(inspectViews(res))
	}

	for _, w := range res.Warnings {
		r.Warning(w)
	}
	for _, table := range res.Document.Tables {
		r.Header(fmt.Sprintf("%s.%s", res.Schema, table.Name))
		r.Println(table.Description.Text)
		r.Println(r.Styles().Muted.Render("source: " + table.Description.Source.String()))
		r.Println("")

		rows := make([][]string, 0, len(table.Columns))
		for _, c := range table.Columns {
			rows = append(rows, []string{
				c.Name,
				c.Categories.String(),
				c.Related,
				c.Description.Source.String(),
				strconv.Itoa(len(c.Tests)),
				c.Description.Text,
			})
		}
		r.Table([]string{"Column", "Categories", "Related", "Source", "Tests", "Description"}, rows)
		r.Println("")
	}
	return nil
}

func inspectViews(res *engine.Result) []columnView {
	views := []columnView{}
	for _, table := range res.Document.Tables {
		for _, c := range table.Columns {
			views = append(views, columnView{
				Table:       table.Name,
				Column:      c.Name,
				Categories:  categoryNames(c.Categories),
				Related:     c.Related,
				Description: c.Description.Text,
				Source:      c.Description.Source.String(),
				Tests:       directiveNames(c.Tests),
			})
		}
	}
	return views
}

func categoryNames(cs core.Categories) []string {
	if len(cs) == 0 {
		return []string{}
	}
	return strings.Split(cs.String(), ",")
}

func directiveNames(ds []core.Directive) []string {
	names := make([]string, len(ds))
	for i, d := range ds {
		names[i] = d.Name
	}
	return names
}
