package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/leapstack-labs/schemadoc/internal/cli/output"
	intconfig "github.com/leapstack-labs/schemadoc/internal/config"
	"github.com/leapstack-labs/schemadoc/internal/engine"
	"github.com/spf13/cobra"
)

// watchDebounce coalesces bursts of file events from editors into one run.
const watchDebounce = 200 * time.Millisecond

// GenerateOptions holds options for the generate command.
type GenerateOptions struct {
	DryRun bool
	Watch  bool
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand() *cobra.Command {
	opts := &GenerateOptions{}

	cmd := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"gen"},
		Short:   "Generate the schema documentation file",
		Long: `Inspect every table of the target schema, describe tables and columns,
attach the data tests declared in the rules file and write a dbt-style
schema.yml document.

The rules file is validated before the database is queried. A malformed
rules file or a failed metadata query leaves the output file untouched.`,
		Example: `  # Generate models/schema.yml for the configured target
  schemadoc generate

  # Only some tables, written to stdout
  schemadoc generate --tables orders,customer --out -

  # Preview without writing
  schemadoc generate --dry-run

  # Regenerate whenever the rules file changes
  schemadoc generate --watch`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, opts)
		},
	}

	cmd.Flags().StringP("out", "o", "", `Output file ("-" for stdout)`)
	cmd.Flags().String("rules", "", "Rules file declaring column tests")
	cmd.Flags().String("schema", "", "Schema to document (default: adapter default)")
	cmd.Flags().StringSlice("tables", nil, "Only document these tables (comma-separated)")
	cmd.Flags().Int("sample-size", 0, "Sampled values per column (max 100)")
	cmd.Flags().Int("workers", 0, "Columns processed in parallel per table")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Print the document instead of writing it")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Regenerate when the rules file changes")

	return cmd
}

func runGenerate(cmd *cobra.Command, opts *GenerateOptions) error {
	if err := generateOnce(cmd, opts); err != nil {
		return err
	}
	if !opts.Watch {
		return nil
	}
	return watch(cmd, opts)
}

func generateOnce(cmd *cobra.Command, opts *GenerateOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := cmdCtx.Engine.Run(cmd.Context(), engine.RunOptions{DryRun: opts.DryRun})
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	if opts.DryRun {
		_, _ = r.Writer().Write(res.Output)
	}
	return reportGenerate(r, res)
}

func reportGenerate(r *output.Renderer, res *engine.Result) error {
	for _, w := range res.Warnings {
		r.Warning(w)
	}

	if r.EffectiveMode() == output.ModeJSON {
		// Keep stdout parseable when the document itself went there.
		if res.OutputPath == intconfig.StdoutPath || res.OutputPath == "" {
			return nil
		}
		return r.JSON(map[string]any{
			"run_id":   res.RunID,
			"schema":   res.Schema,
			"tables":   res.Tables,
			"columns":  res.Columns,
			"output":   res.OutputPath,
			"warnings": res.Warnings,
		})
	}

	dest := res.OutputPath
	switch dest {
	case "":
		dest = "nowhere (dry run)"
	case intconfig.StdoutPath:
		dest = "stdout"
	}
	r.Success(fmt.Sprintf("Documented %d tables (%d columns) from schema %s to %s",
		res.Tables, res.Columns, res.Schema, dest))
	r.Muted(fmt.Sprintf("run %s in %s", res.RunID, res.Duration.Round(time.Millisecond)))
	return nil
}

// watch regenerates whenever one of the watched input files changes, until
// the command context is canceled. Failed runs are reported and watching continues.
func watch(cmd *cobra.Command, opts *GenerateOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmdCtx := NewCommandContextWithoutEngine(cmd)
	r := cmdCtx.Renderer

	files := watchedFiles(cmdCtx)
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Editors often replace files, so watch the parent directories.
	dirs := map[string]bool{}
	for f := range files {
		dirs[filepath.Dir(f)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	names := make([]string, 0, len(files))
	for f := range files {
		names = append(names, filepath.Base(f))
	}
	r.Muted("Watching " + strings.Join(names, ", ") + " for changes (Ctrl+C to stop)")

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !files[filepath.Clean(event.Name)] {
				continue
			}
			cmdCtx.Logger.Debug("input changed", "file", event.Name, "op", event.Op.String())
			debounce = time.After(watchDebounce)

		case <-debounce:
			debounce = nil
			if err := generateOnce(cmd, opts); err != nil {
				r.Error(err.Error())
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			cmdCtx.Logger.Warn("watcher error", "error", err)
		}
	}
}

// watchedFiles returns the absolute paths of the run's file inputs: the
// rules file, plus the snapshot when the target is a snapshot.
func watchedFiles(cmdCtx *CommandContext) map[string]bool {
	files := map[string]bool{}
	add := func(p string) {
		if p == "" {
			return
		}
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		files[filepath.Clean(p)] = true
	}
	add(cmdCtx.Cfg.Rules)
	if t := cmdCtx.Cfg.Target; t != nil && strings.EqualFold(t.Type, "snapshot") {
		add(t.Database)
	}
	return files
}
