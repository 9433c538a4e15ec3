package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/leapstack-labs/schemadoc/internal/cli/output"
	"github.com/leapstack-labs/schemadoc/internal/rules"
	"github.com/spf13/cobra"
)

// NewRulesCommand creates the rules command group.
func NewRulesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Work with the column tests rules file",
	}
	cmd.AddCommand(newRulesValidateCommand())
	return cmd
}

func newRulesValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [path]",
		Short: "Validate a rules file and list its entries",
		Long: `Parse the rules file and report the first structural problem with its
line and column, or list the merged tests per column when it is valid.
No database connection is made.`,
		Example: `  # Validate the configured rules file
  schemadoc rules validate

  # Validate another file
  schemadoc rules validate config/tests.yml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContextWithoutEngine(cmd)
			path := cmdCtx.Cfg.Rules
			if len(args) == 1 {
				path = args[0]
			}
			return validateRules(cmdCtx.Renderer, path)
		},
	}
}

func validateRules(r *output.Renderer, path string) error {
	rs, err := rules.Load(path)
	if err != nil {
		r.Error(err.Error())
		return fmt.Errorf("rules file %s is invalid: %w", path, err)
	}

	if r.EffectiveMode() == output.ModeJSON {
		type entry struct {
			Column string   `json:"column"`
			Line   int      `json:"line"`
			Tests  []string `json:"tests"`
		}
		entries := []entry{}
		for _, rule := range rs.Rules() {
			entries = append(entries, entry{Column: rule.Column, Line: rule.Line, Tests: directiveNames(rule.Directives)})
		}
		return r.JSON(map[string]any{"path": path, "warnings": rs.Warnings, "rules": entries})
	}

	for _, w := range rs.Warnings {
		r.Warning(w)
	}
	if rs.Len() > 0 {
		rows := make([][]string, 0, rs.Len())
		for _, rule := range rs.Rules() {
			rows = append(rows, []string{rule.Column, strconv.Itoa(rule.Line), strings.Join(directiveNames(rule.Directives), ", ")})
		}
		r.Table([]string{"Column", "Line", "Tests"}, rows)
	}
	r.Success(fmt.Sprintf("%s is valid (%d columns)", path, rs.Len()))
	return nil
}
