package config

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	intconfig "github.com/leapstack-labs/schemadoc/internal/config"
	"github.com/leapstack-labs/schemadoc/pkg/core"
	"github.com/spf13/pflag"
)

// loggerKey is used to store logger in context.
type loggerKey struct{}

// flagKeys maps command-line flag names onto config keys. Flags not listed
// here (--config, --target, --dry-run, ...) are not config values.
var flagKeys = map[string]string{
	"adapter":     "target.type",
	"database":    "target.database",
	"schema":      "target.schema",
	"rules":       "rules",
	"out":         "output",
	"sample-size": "sample_size",
	"workers":     "workers",
	"tables":      "tables",
	"verbose":     "verbose",
	"format":      "format",
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Package-level koanf instance and config file tracking
var (
	k              = koanf.New(".")
	configFileUsed string
	currentConfig  *Config
)

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
	currentConfig = nil
}

// LoadConfig loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	return LoadConfigWithTarget(cfgFile, "", flags)
}

// LoadConfigWithTarget loads configuration and merges the target of the
// named environment over the base target. An empty targetOverride uses the
// config's own environment key.
func LoadConfigWithTarget(cfgFile string, targetOverride string, flags *pflag.FlagSet) (*Config, error) {
	k = koanf.New(".")

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	// 1. Load defaults
	if err := k.Load(confmap.Provider(map[string]any{
		"rules":       DefaultRulesPath,
		"output":      DefaultOutputPath,
		"sample_size": DefaultSampleSize,
		"workers":     DefaultWorkers,
		"format":      DefaultFormat,
		"verbose":     false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Find and load config file
	projectRoot := cwd
	if cfgFile != "" {
		configFileUsed = cfgFile
	} else if root := intconfig.FindProjectRoot(cwd); root != "" {
		configFileUsed = intconfig.FindConfigFile(root)
	} else {
		configFileUsed = ""
	}
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
		if abs, err := filepath.Abs(configFileUsed); err == nil {
			projectRoot = filepath.Dir(abs)
		}
	}

	// 3. Load environment variables (SCHEMADOC_ prefix)
	// Transform: SCHEMADOC_SAMPLE_SIZE -> sample_size, SCHEMADOC_TARGET__USER -> target.user
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Load flags (highest priority - overrides env vars and config file)
	changed := map[string]bool{}
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			changed[key] = true
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.ProjectRoot = projectRoot

	// Apply environment-specific target overrides
	envName := cfg.Environment
	if targetOverride != "" {
		envName = targetOverride
	}
	if envName != "" && cfg.Environments != nil {
		if envCfg, ok := cfg.Environments[envName]; ok && envCfg.Target != nil {
			cfg.Target = MergeTargetConfig(cfg.Target, envCfg.Target)
			// Flags still win over the environment's target.
			for key := range changed {
				if strings.HasPrefix(key, "target.") {
					applyTargetKey(cfg.Target, key, k.String(key))
				}
			}
		}
	}

	if cfg.Target == nil {
		cfg.Target = &core.TargetConfig{}
	}
	intconfig.ApplyTargetDefaults(cfg.Target)
	expandTargetEnvVars(cfg.Target)

	// Paths from flags are relative to the working directory, everything
	// else is relative to the project root.
	cfg.Rules = resolvePath(cfg.Rules, cwd, projectRoot, changed["rules"])
	if cfg.Output != intconfig.StdoutPath {
		cfg.Output = resolvePath(cfg.Output, cwd, projectRoot, changed["output"])
	}
	if isFileTarget(cfg.Target) {
		cfg.Target.Database = resolvePath(cfg.Target.Database, cwd, projectRoot, changed["target.database"])
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	currentConfig = &cfg
	return &cfg, nil
}

func applyTargetKey(t *core.TargetConfig, key, value string) {
	switch key {
	case "target.type":
		t.Type = value
	case "target.database":
		t.Database = value
	case "target.schema":
		t.Schema = value
	}
}

func isFileTarget(t *core.TargetConfig) bool {
	switch strings.ToLower(t.Type) {
	case "duckdb", "sqlite", "snapshot":
		return t.Database != "" && t.Database != ":memory:"
	default:
		return false
	}
}

// resolvePath makes a relative path absolute against cwd when it came from a
// flag and against the project root otherwise.
func resolvePath(path, cwd, projectRoot string, fromFlag bool) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if fromFlag {
		return filepath.Join(cwd, path)
	}
	return filepath.Join(projectRoot, path)
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetCurrentConfig returns the currently loaded configuration.
func GetCurrentConfig() *Config {
	return currentConfig
}

// LoggerKey returns the context key used for storing the logger.
func LoggerKey() any {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
			return l
		}
	}
	return slog.New(slog.DiscardHandler)
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})
}

// expandTargetEnvVars expands environment variables in sensitive target fields.
func expandTargetEnvVars(t *core.TargetConfig) {
	if t == nil {
		return
	}
	t.Password = expandEnvVars(t.Password)
	t.User = expandEnvVars(t.User)
	t.Host = expandEnvVars(t.Host)
	t.Database = expandEnvVars(t.Database)
	t.Account = expandEnvVars(t.Account)
	for key, v := range t.Options {
		t.Options[key] = expandEnvVars(v)
	}
}

// MergeTargetConfig merges two target configs, with override taking precedence.
func MergeTargetConfig(base, override *core.TargetConfig) *core.TargetConfig {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	merged := *base
	merged.Options = make(map[string]string, len(base.Options)+len(override.Options))
	merged.Params = make(map[string]any, len(base.Params)+len(override.Params))
	maps.Copy(merged.Options, base.Options)
	maps.Copy(merged.Params, base.Params)

	if override.Type != "" {
		merged.Type = override.Type
	}
	if override.Database != "" {
		merged.Database = override.Database
	}
	if override.Host != "" {
		merged.Host = override.Host
	}
	if override.Port != 0 {
		merged.Port = override.Port
	}
	if override.User != "" {
		merged.User = override.User
	}
	if override.Password != "" {
		merged.Password = override.Password
	}
	if override.Schema != "" {
		merged.Schema = override.Schema
	}
	if override.Account != "" {
		merged.Account = override.Account
	}
	if override.Warehouse != "" {
		merged.Warehouse = override.Warehouse
	}
	if override.Role != "" {
		merged.Role = override.Role
	}

	maps.Copy(merged.Options, override.Options)
	maps.Copy(merged.Params, override.Params)

	return &merged
}
