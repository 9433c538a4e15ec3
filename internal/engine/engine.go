// Package engine runs one documentation pass: it pulls table metadata from
// the configured adapter, assembles the manifest and writes the document.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/leapstack-labs/schemadoc/internal/config"
	"github.com/leapstack-labs/schemadoc/pkg/adapter"
	"github.com/leapstack-labs/schemadoc/pkg/core"
)

// Engine orchestrates a schemadoc run against one target.
type Engine struct {
	// Database adapter (lazy initialized)
	db          adapter.Adapter
	dbConfig    adapter.Config
	dbConnected bool
	dbMu        sync.Mutex

	logger *slog.Logger
	runID  string

	schema     string
	tables     []string
	rulesPath  string
	outputPath string
	sampleSize int
	workers    int
	classifier core.ClassifierConfig
	stdout     io.Writer
}

// Config holds engine configuration.
type Config struct {
	// Target is the database target to document.
	Target core.TargetConfig
	// Tables restricts the run to these tables. Empty means all tables.
	Tables []string
	// RulesPath is the rules document. Empty uses config.DefaultRulesPath.
	RulesPath string
	// OutputPath is the destination document; config.StdoutPath writes to Stdout.
	OutputPath string
	// SampleSize caps the sampled values per column.
	SampleSize int
	// Workers bounds per-table column parallelism.
	Workers int
	// Classifier holds the heuristic thresholds.
	Classifier core.ClassifierConfig
	// Stdout receives the document when OutputPath is config.StdoutPath.
	Stdout io.Writer
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger

	// Adapter replaces the registry lookup for Target.Type. It is connected
	// lazily like a registry adapter and closed by Close.
	Adapter adapter.Adapter
}

// New creates a new engine with lazy database connection.
// The adapter is only connected when Run or Inspect is called.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	target := cfg.Target
	config.ApplyTargetDefaults(&target)
	if cfg.Adapter == nil {
		if err := config.ValidateTarget(&target); err != nil {
			return nil, fmt.Errorf("invalid target configuration: %w", err)
		}
	}

	runID := uuid.NewString()
	logger = logger.With(slog.String("run_id", runID))

	classifier := cfg.Classifier
	config.ApplyClassifierDefaults(&classifier)

	e := &Engine{
		db:         cfg.Adapter,
		dbConfig:   target.AdapterConfig(),
		logger:     logger,
		runID:      runID,
		schema:     target.Schema,
		tables:     cfg.Tables,
		rulesPath:  cfg.RulesPath,
		outputPath: cfg.OutputPath,
		sampleSize: config.ClampSampleSize(cfg.SampleSize),
		workers:    cfg.Workers,
		classifier: classifier,
		stdout:     cfg.Stdout,
	}
	if e.rulesPath == "" {
		e.rulesPath = config.DefaultRulesPath
	}
	if e.outputPath == "" {
		e.outputPath = config.DefaultOutputPath
	}
	if e.workers <= 0 {
		e.workers = config.DefaultWorkers
	}
	if e.stdout == nil {
		e.stdout = os.Stdout
	}

	logger.Debug("initializing engine",
		"adapter_type", target.Type,
		"schema", e.schema,
		"rules", e.rulesPath,
		"output", e.outputPath)

	return e, nil
}

// RunID returns the identifier attached to every log line of this engine.
func (e *Engine) RunID() string {
	return e.runID
}

// ensureDBConnected lazily connects to the database.
func (e *Engine) ensureDBConnected(ctx context.Context) error {
	e.dbMu.Lock()
	defer e.dbMu.Unlock()

	if e.dbConnected {
		return nil
	}

	e.logger.Debug("connecting to database", "adapter_type", e.dbConfig.Type)

	db := e.db
	if db == nil {
		var err error
		db, err = adapter.NewAdapter(e.dbConfig, e.logger)
		if err != nil {
			return fmt.Errorf("failed to create database adapter: %w", err)
		}
	}

	if err := db.Connect(ctx, e.dbConfig); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	e.db = db
	e.dbConnected = true
	return nil
}

// Close releases the adapter connection, if one was opened.
func (e *Engine) Close() error {
	e.dbMu.Lock()
	defer e.dbMu.Unlock()

	var errs []error
	if e.db != nil && e.dbConnected {
		if err := e.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
		e.dbConnected = false
	}
	return errors.Join(errs...)
}
