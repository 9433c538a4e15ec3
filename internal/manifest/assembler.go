// Package manifest assembles classified, described and tested columns into
// the ordered documentation manifest.
package manifest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/schemadoc/internal/classify"
	"github.com/leapstack-labs/schemadoc/internal/describe"
	"github.com/leapstack-labs/schemadoc/internal/rules"
	"github.com/leapstack-labs/schemadoc/pkg/core"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers bounds per-table column parallelism when none is configured.
const DefaultWorkers = 4

// Config wires the collaborators of an Assembler. Nil fields get defaults.
type Config struct {
	Classifier  *classify.Classifier
	Synthesizer *describe.Synthesizer
	Rules       *rules.RuleSet
	Workers     int
	Logger      *slog.Logger
}

// Assembler builds a core.Document from table metadata.
type Assembler struct {
	classifier  *classify.Classifier
	synthesizer *describe.Synthesizer
	rules       *rules.RuleSet
	workers     int
	logger      *slog.Logger
}

// Result is the assembled document plus non-fatal warnings.
type Result struct {
	Document core.Document
	Warnings []string
}

// New creates an Assembler.
func New(cfg Config) *Assembler {
	a := &Assembler{
		classifier:  cfg.Classifier,
		synthesizer: cfg.Synthesizer,
		rules:       cfg.Rules,
		workers:     cfg.Workers,
		logger:      cfg.Logger,
	}
	if a.synthesizer == nil {
		a.synthesizer = describe.New()
	}
	if a.workers <= 0 {
		a.workers = DefaultWorkers
	}
	if a.logger == nil {
		a.logger = slog.New(slog.DiscardHandler)
	}
	return a
}

// Assemble builds one TableManifest per input table, in input order. Columns
// of a table are processed in parallel and written back in ordinal order;
// the table description is synthesized once all of them are done.
func (a *Assembler) Assemble(ctx context.Context, tables []core.TableMetadata) (*Result, error) {
	classifier := a.classifier
	if classifier == nil {
		names := make([]string, len(tables))
		for i, t := range tables {
			names[i] = t.Name
		}
		classifier = classify.New(core.ClassifierConfig{}, classify.WithKnownTables(names))
	}

	result := &Result{Document: core.Document{Version: core.ManifestVersion}}
	var discovered []string

	for _, table := range tables {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		tm, err := a.assembleTable(ctx, classifier, table)
		if err != nil {
			return nil, fmt.Errorf("failed to assemble table %s: %w", table.Name, err)
		}
		result.Document.Tables = append(result.Document.Tables, *tm)
		discovered = append(discovered, table.ColumnNames()...)

		a.logger.Debug("assembled table",
			slog.String("table", table.Name),
			slog.Int("columns", len(tm.Columns)),
			slog.String("description_source", tm.Description.Source.String()))
	}

	for _, r := range a.rules.Unused(discovered) {
		msg := fmt.Sprintf("rules entry for column %q (line %d) matches no discovered column", r.Column, r.Line)
		a.logger.Warn("stale rules entry", slog.String("column", r.Column), slog.Int("line", r.Line))
		result.Warnings = append(result.Warnings, msg)
	}

	return result, nil
}

func (a *Assembler) assembleTable(ctx context.Context, classifier *classify.Classifier, table core.TableMetadata) (*core.TableManifest, error) {
	classified := make([]core.ClassifiedColumn, len(table.Columns))
	columns := make([]core.ColumnManifest, len(table.Columns))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i := range table.Columns {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			cc := classifier.Classify(table.Columns[i])
			desc := a.synthesizer.DescribeColumn(describe.ColumnSubject{Table: table.Name, Column: cc})

			classified[i] = cc
			columns[i] = core.ColumnManifest{
				Name:        cc.Column.Name,
				Description: desc,
				Tests:       a.rules.Resolve(cc.Column.Name),
				Categories:  cc.Categories,
				Related:     cc.Related,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &core.TableManifest{
		Name:        table.Name,
		Description: a.synthesizer.DescribeTable(describe.TableSubject{Table: table, Columns: classified}),
		Columns:     columns,
	}, nil
}
