package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	// Import adapter packages to ensure adapters are registered via init()
	_ "github.com/leapstack-labs/schemadoc/pkg/adapters/duckdb"
	_ "github.com/leapstack-labs/schemadoc/pkg/adapters/postgres"
	_ "github.com/leapstack-labs/schemadoc/pkg/adapters/snapshot"
	_ "github.com/leapstack-labs/schemadoc/pkg/adapters/sqlite"
)

// newFlags mirrors the flags the CLI registers for config keys.
func newFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("adapter", "", "")
	flags.String("database", "", "")
	flags.String("schema", "", "")
	flags.String("rules", "", "")
	flags.String("out", "", "")
	flags.Int("sample-size", 0, "")
	flags.Int("workers", 0, "")
	flags.StringSlice("tables", nil, "")
	flags.BoolP("verbose", "v", false, "")
	flags.String("format", "", "")
	flags.Bool("dry-run", false, "")
	return flags
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "schemadoc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_VAR_ONE", "value_one")
	t.Setenv("TEST_VAR_TWO", "value_two")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "single variable", input: "${TEST_VAR_ONE}", expected: "value_one"},
		{name: "multiple variables", input: "${TEST_VAR_ONE}/${TEST_VAR_TWO}", expected: "value_one/value_two"},
		{name: "variable in path", input: "/path/to/${TEST_VAR_ONE}/file", expected: "/path/to/value_one/file"},
		{name: "unset variable stays as-is", input: "${UNSET_VARIABLE}", expected: "${UNSET_VARIABLE}"},
		{name: "no variables", input: "plain string", expected: "plain string"},
		{name: "empty string", input: "", expected: ""},
		{name: "mixed set and unset", input: "${TEST_VAR_ONE}:${UNSET_VAR}", expected: "value_one:${UNSET_VAR}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, expandEnvVars(tt.input))
		})
	}
}

func TestMergeTargetConfig(t *testing.T) {
	t.Run("nil base returns override", func(t *testing.T) {
		override := &TargetConfig{Type: "sqlite"}
		assert.Same(t, override, MergeTargetConfig(nil, override))
	})

	t.Run("nil override returns base", func(t *testing.T) {
		base := &TargetConfig{Type: "sqlite"}
		assert.Same(t, base, MergeTargetConfig(base, nil))
	})

	t.Run("override wins and maps merge", func(t *testing.T) {
		base := &TargetConfig{
			Type:    "postgres",
			Host:    "localhost",
			Port:    5432,
			User:    "base",
			Schema:  "public",
			Options: map[string]string{"sslmode": "disable", "application_name": "schemadoc"},
			Params:  map[string]any{"a": 1},
		}
		override := &TargetConfig{
			Host:    "prod.internal",
			Schema:  "analytics",
			Options: map[string]string{"sslmode": "require"},
			Params:  map[string]any{"b": 2},
		}

		merged := MergeTargetConfig(base, override)

		assert.Equal(t, "postgres", merged.Type)
		assert.Equal(t, "prod.internal", merged.Host)
		assert.Equal(t, 5432, merged.Port)
		assert.Equal(t, "base", merged.User)
		assert.Equal(t, "analytics", merged.Schema)
		assert.Equal(t, map[string]string{"sslmode": "require", "application_name": "schemadoc"}, merged.Options)
		assert.Equal(t, map[string]any{"a": 1, "b": 2}, merged.Params)

		assert.Equal(t, "disable", base.Options["sslmode"], "base is not mutated")
	})
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Empty(t, GetConfigFileUsed())
	assert.Equal(t, dir, cfg.ProjectRoot)
	assert.Equal(t, "duckdb", cfg.Target.Type)
	assert.Equal(t, "main", cfg.Target.Schema)
	assert.Equal(t, filepath.Join(dir, DefaultRulesPath), cfg.Rules)
	assert.Equal(t, filepath.Join(dir, DefaultOutputPath), cfg.Output)
	assert.Equal(t, DefaultSampleSize, cfg.SampleSize)
	assert.Equal(t, DefaultWorkers, cfg.Workers)
	assert.Equal(t, DefaultFormat, cfg.Format)
	assert.Same(t, cfg, GetCurrentConfig())
}

func TestLoadConfigWithTarget_File(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, `target:
  type: sqlite
  database: data/app.db
rules: config/tests.yml
output: "-"
tables: [orders, customer]
classifier:
  status_max_distinct: 5
  free_text_min_length: 60
environments:
  prod:
    target:
      database: prod.db
      schema: analytics
`)
	t.Chdir(t.TempDir())

	t.Run("base target", func(t *testing.T) {
		ResetConfig()
		cfg, err := LoadConfigWithTarget(cfgPath, "", nil)
		require.NoError(t, err)

		assert.Equal(t, cfgPath, GetConfigFileUsed())
		assert.Equal(t, "sqlite", cfg.Target.Type)
		assert.Equal(t, filepath.Join(dir, "data", "app.db"), cfg.Target.Database)
		assert.Equal(t, "main", cfg.Target.Schema)
		assert.Equal(t, filepath.Join(dir, "config", "tests.yml"), cfg.Rules)
		assert.Equal(t, "-", cfg.Output, "stdout marker is not a path")
		assert.Equal(t, []string{"orders", "customer"}, cfg.Tables)
		assert.Equal(t, ClassifierConfig{StatusMaxDistinct: 5, FreeTextMinLength: 60}, cfg.Classifier)
	})

	t.Run("environment override", func(t *testing.T) {
		ResetConfig()
		cfg, err := LoadConfigWithTarget(cfgPath, "prod", nil)
		require.NoError(t, err)

		assert.Equal(t, "sqlite", cfg.Target.Type)
		assert.Equal(t, filepath.Join(dir, "prod.db"), cfg.Target.Database)
		assert.Equal(t, "analytics", cfg.Target.Schema)
	})

	t.Run("nonexistent environment keeps base target", func(t *testing.T) {
		ResetConfig()
		cfg, err := LoadConfigWithTarget(cfgPath, "nonexistent", nil)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "data", "app.db"), cfg.Target.Database)
	})
}

func TestLoadConfig_SearchesUpward(t *testing.T) {
	ResetConfig()
	root := t.TempDir()
	cfgPath := writeConfig(t, root, "target:\n  type: sqlite\n")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o750))
	t.Chdir(nested)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, cfgPath, GetConfigFileUsed())
	assert.Equal(t, root, cfg.ProjectRoot)
	assert.Equal(t, filepath.Join(root, DefaultRulesPath), cfg.Rules)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	ResetConfig()
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoadConfig_InvalidTarget(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr []string
	}{
		{name: "unknown type", content: "target:\n  type: mysql\n", wantErr: []string{"invalid configuration", "mysql"}},
		{name: "postgres without host", content: "target:\n  type: postgres\n  database: app\n", wantErr: []string{"requires host"}},
		{name: "negative workers", content: "workers: -1\n", wantErr: []string{"workers must not be negative"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ResetConfig()
			cfgPath := writeConfig(t, t.TempDir(), tt.content)
			_, err := LoadConfig(cfgPath, nil)
			require.Error(t, err)
			for _, want := range tt.wantErr {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}

func TestLoadConfig_FlagPrecedence(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, "rules: from_file.yaml\nsample_size: 10\ntarget:\n  type: sqlite\n")
	cwd := t.TempDir()
	t.Chdir(cwd)

	t.Setenv("SCHEMADOC_RULES", "from_env.yaml")
	t.Setenv("SCHEMADOC_SAMPLE_SIZE", "20")

	flags := newFlags()
	require.NoError(t, flags.Set("rules", "from_flag.yaml"))

	cfg, err := LoadConfig(cfgPath, flags)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(cwd, "from_flag.yaml"), cfg.Rules, "flag paths resolve against the working directory")
	assert.Equal(t, 20, cfg.SampleSize, "env var should override config file")
}

func TestLoadConfig_EnvNestedKeys(t *testing.T) {
	ResetConfig()
	cfgPath := writeConfig(t, t.TempDir(), "target:\n  type: postgres\n  host: localhost\n  database: app\n  password: ${TEST_DB_PASSWORD}\n")

	t.Setenv("SCHEMADOC_TARGET__SCHEMA", "staging")
	t.Setenv("SCHEMADOC_TARGET__USER", "svc")
	t.Setenv("TEST_DB_PASSWORD", "secret123")

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Target.Schema)
	assert.Equal(t, "svc", cfg.Target.User)
	assert.Equal(t, "secret123", cfg.Target.Password)
	assert.Equal(t, 5432, cfg.Target.Port)
	assert.Equal(t, "app", cfg.Target.Database, "network database names are not paths")
}

func TestLoadConfigWithTarget_FlagsBeatEnvironmentTarget(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, `target:
  type: sqlite
environments:
  prod:
    target:
      database: prod.db
      schema: prod
`)
	cwd := t.TempDir()
	t.Chdir(cwd)

	flags := newFlags()
	require.NoError(t, flags.Set("database", "cli.db"))
	require.NoError(t, flags.Set("tables", "orders,customer"))
	require.NoError(t, flags.Set("dry-run", "true"))

	cfg, err := LoadConfigWithTarget(cfgPath, "prod", flags)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(cwd, "cli.db"), cfg.Target.Database)
	assert.Equal(t, "prod", cfg.Target.Schema)
	assert.Equal(t, []string{"orders", "customer"}, cfg.Tables)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Target:     &TargetConfig{Type: "sqlite"},
			Rules:      "tests_config.yaml",
			Output:     "-",
			SampleSize: 100,
			Workers:    4,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "empty rules", mutate: func(c *Config) { c.Rules = "" }, wantErr: "rules path is required"},
		{name: "empty output", mutate: func(c *Config) { c.Output = "" }, wantErr: "output path is required"},
		{name: "negative sample size", mutate: func(c *Config) { c.SampleSize = -1 }, wantErr: "sample_size"},
		{name: "negative threshold", mutate: func(c *Config) { c.Classifier.FreeTextMinLength = -1 }, wantErr: "thresholds"},
		{name: "missing target", mutate: func(c *Config) { c.Target = nil }, wantErr: "target configuration is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetLogger(t *testing.T) {
	assert.NotNil(t, GetLogger(context.Background()))

	logger := slog.New(slog.DiscardHandler)
	ctx := context.WithValue(context.Background(), LoggerKey(), logger)
	assert.Same(t, logger, GetLogger(ctx))
}
