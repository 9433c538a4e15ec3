package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/leapstack-labs/schemadoc/internal/classify"
	"github.com/leapstack-labs/schemadoc/internal/config"
	"github.com/leapstack-labs/schemadoc/internal/manifest"
	"github.com/leapstack-labs/schemadoc/internal/rules"
	"github.com/leapstack-labs/schemadoc/internal/writer"
	"github.com/leapstack-labs/schemadoc/pkg/core"
)

// Result summarizes one run.
type Result struct {
	RunID    string
	Schema   string
	Document core.Document
	Tables   int
	Columns  int
	Warnings []string

	// Output is the rendered document. Run fills it; Inspect leaves it nil.
	Output []byte
	// OutputPath is where Output was written, empty for dry runs.
	OutputPath string
	Duration   time.Duration
}

// RunOptions controls what Run does with the rendered document.
type RunOptions struct {
	// DryRun renders the document without writing it anywhere.
	DryRun bool
}

// Run fetches metadata for the selected tables, assembles the manifest,
// renders it and writes it to the configured output path.
//
// The rules document is loaded before the adapter is touched. Any error
// aborts the run before the output path is written.
func (e *Engine) Run(ctx context.Context, opts RunOptions) (*Result, error) {
	start := time.Now()

	res, err := e.Inspect(ctx)
	if err != nil {
		return nil, err
	}

	out, err := writer.Render(res.Document)
	if err != nil {
		return nil, fmt.Errorf("failed to render document: %w", err)
	}
	res.Output = out

	switch {
	case opts.DryRun:
		e.logger.Info("dry run, document not written", "bytes", len(out))
	case e.outputPath == config.StdoutPath:
		if _, err := e.stdout.Write(out); err != nil {
			return nil, fmt.Errorf("failed to write document to stdout: %w", err)
		}
		res.OutputPath = config.StdoutPath
	default:
		if err := writer.WriteFile(e.outputPath, out); err != nil {
			return nil, err
		}
		res.OutputPath = e.outputPath
	}

	res.Duration = time.Since(start)
	e.logger.Info("generated schema documentation",
		"tables", res.Tables,
		"columns", res.Columns,
		"warnings", len(res.Warnings),
		"output", res.OutputPath,
		"duration", res.Duration)

	return res, nil
}

// Inspect fetches metadata and assembles the manifest without rendering or
// writing it. Categories and description provenance stay on the document.
func (e *Engine) Inspect(ctx context.Context) (*Result, error) {
	start := time.Now()

	rs, err := rules.Load(e.rulesPath)
	if err != nil {
		return nil, err
	}
	res := &Result{RunID: e.runID, Schema: e.schema}
	for _, w := range rs.Warnings {
		e.logger.Warn(w)
		res.Warnings = append(res.Warnings, w)
	}
	e.logger.Debug("loaded rules", "path", e.rulesPath, "entries", rs.Len())

	if err := e.ensureDBConnected(ctx); err != nil {
		return nil, err
	}

	all, err := e.db.ListTables(ctx, e.schema)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables in schema %s: %w", e.schema, err)
	}

	selected, warnings := selectTables(all, e.tables)
	for _, w := range warnings {
		e.logger.Warn(w)
	}
	res.Warnings = append(res.Warnings, warnings...)
	if len(e.tables) > 0 && len(selected) == 0 {
		return nil, fmt.Errorf("none of the requested tables %v exist in schema %s", e.tables, e.schema)
	}

	metadata := make([]core.TableMetadata, 0, len(selected))
	for _, name := range selected {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		md, err := e.db.GetTableMetadata(ctx, e.schema, name, e.sampleSize)
		if err != nil {
			return nil, fmt.Errorf("table %s: failed to fetch metadata: %w", name, err)
		}
		if n := unsampledColumns(md); n > 0 {
			e.logger.Debug("columns without samples, describing by name only",
				"table", name, "columns", n)
		}
		metadata = append(metadata, *md)
		res.Columns += len(md.Columns)
	}
	res.Tables = len(metadata)

	asm := manifest.New(manifest.Config{
		Classifier: classify.New(e.classifier, classify.WithKnownTables(all)),
		Rules:      rs,
		Workers:    e.workers,
		Logger:     e.logger,
	})
	assembled, err := asm.Assemble(ctx, metadata)
	if err != nil {
		return nil, err
	}
	res.Document = assembled.Document
	res.Warnings = append(res.Warnings, assembled.Warnings...)
	res.Duration = time.Since(start)

	e.logger.Debug("assembled manifest",
		slog.Int("tables", res.Tables),
		slog.Int("columns", res.Columns))

	return res, nil
}

// selectTables filters all by include, case-insensitively, keeping the
// provider's order. Include names that match nothing come back as warnings.
func selectTables(all, include []string) ([]string, []string) {
	if len(include) == 0 {
		return all, nil
	}

	found := make(map[string]bool, len(include))
	var selected []string
	for _, table := range all {
		matched := false
		for _, name := range include {
			if strings.EqualFold(name, table) {
				found[name] = true
				matched = true
			}
		}
		if matched {
			selected = append(selected, table)
		}
	}

	var warnings []string
	for _, name := range include {
		if !found[name] {
			warnings = append(warnings, fmt.Sprintf("requested table %q was not found", name))
			found[name] = true
		}
	}
	return selected, warnings
}

func unsampledColumns(md *core.TableMetadata) int {
	n := 0
	for _, c := range md.Columns {
		if len(c.Samples) == 0 {
			n++
		}
	}
	return n
}
