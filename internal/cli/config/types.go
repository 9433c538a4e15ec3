// Package config provides configuration management for the schemadoc CLI.
//
// Configuration is layered with koanf: built-in defaults, then
// schemadoc.yaml, then SCHEMADOC_* environment variables, then flags that
// were explicitly set on the command line.
package config

import (
	sharedcfg "github.com/leapstack-labs/schemadoc/internal/config"
	"github.com/leapstack-labs/schemadoc/pkg/core"
)

// TargetConfig is an alias for the shared target configuration.
type TargetConfig = core.TargetConfig

// ClassifierConfig is an alias for the shared classifier thresholds.
type ClassifierConfig = core.ClassifierConfig

// Config holds all CLI configuration options.
type Config struct {
	Target       *TargetConfig        `koanf:"target"`
	Environment  string               `koanf:"environment"`
	Environments map[string]EnvConfig `koanf:"environments"`

	Rules      string           `koanf:"rules"`
	Output     string           `koanf:"output"`
	SampleSize int              `koanf:"sample_size"`
	Workers    int              `koanf:"workers"`
	Tables     []string         `koanf:"tables"`
	Classifier ClassifierConfig `koanf:"classifier"`

	Verbose bool   `koanf:"verbose"`
	Format  string `koanf:"format"`

	// ProjectRoot is the directory relative paths in the config file resolve against.
	ProjectRoot string `koanf:"-"`
}

// EnvConfig holds environment-specific configuration overrides.
type EnvConfig struct {
	Target *TargetConfig `koanf:"target"`
}

// Default configuration values - uses shared defaults from internal/config
const (
	DefaultRulesPath  = sharedcfg.DefaultRulesPath
	DefaultOutputPath = sharedcfg.DefaultOutputPath
	DefaultSampleSize = sharedcfg.DefaultSampleSize
	DefaultWorkers    = sharedcfg.DefaultWorkers
	DefaultFormat     = sharedcfg.DefaultFormat
)

// EnvPrefix is the prefix of environment variables read into the config.
// Nested keys are separated by a double underscore:
// SCHEMADOC_TARGET__PASSWORD sets target.password.
const EnvPrefix = "SCHEMADOC_"
