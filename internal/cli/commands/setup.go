package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/leapstack-labs/schemadoc/internal/cli/config"
	"github.com/leapstack-labs/schemadoc/internal/cli/output"
	intconfig "github.com/leapstack-labs/schemadoc/internal/config"
	"github.com/leapstack-labs/schemadoc/internal/engine"
	"github.com/leapstack-labs/schemadoc/pkg/core"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Engine   *engine.Engine
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with engine and renderer.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cmdCtx := NewCommandContextWithoutEngine(cmd)

	eng, err := createEngine(cmdCtx.Cfg, cmdCtx.Logger, cmd.OutOrStdout())
	if err != nil {
		return nil, nil, err
	}
	cmdCtx.Engine = eng

	cleanup := func() {
		_ = eng.Close()
	}
	return cmdCtx, cleanup, nil
}

// NewCommandContextWithoutEngine creates a CommandContext without an engine.
// Useful for commands that don't need database access.
func NewCommandContextWithoutEngine(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.Format))

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to defaults.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	target := &core.TargetConfig{}
	intconfig.ApplyTargetDefaults(target)
	return &config.Config{
		Target:     target,
		Rules:      config.DefaultRulesPath,
		Output:     config.DefaultOutputPath,
		SampleSize: config.DefaultSampleSize,
		Workers:    config.DefaultWorkers,
		Format:     getEnvOrDefault(config.EnvPrefix+"FORMAT", config.DefaultFormat),
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func createEngine(cfg *config.Config, logger *slog.Logger, stdout io.Writer) (*engine.Engine, error) {
	var target core.TargetConfig
	if cfg.Target != nil {
		target = *cfg.Target
	}

	return engine.New(engine.Config{
		Target:     target,
		Tables:     cfg.Tables,
		RulesPath:  cfg.Rules,
		OutputPath: cfg.Output,
		SampleSize: cfg.SampleSize,
		Workers:    cfg.Workers,
		Classifier: cfg.Classifier,
		Stdout:     stdout,
		Logger:     logger,
	})
}
