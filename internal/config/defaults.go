package config

import (
	"github.com/leapstack-labs/schemadoc/internal/classify"
	"github.com/leapstack-labs/schemadoc/pkg/core"
)

// Default configuration values.
const (
	DefaultRulesPath  = "tests_config.yaml"
	DefaultOutputPath = "models/schema.yml"
	DefaultSampleSize = core.MaxSampleSize
	DefaultWorkers    = 4
	DefaultFormat     = "auto"
	DefaultTargetType = "duckdb"

	// StdoutPath as an output path writes the document to standard output.
	StdoutPath = "-"
)

// ApplyTargetDefaults applies default values to a TargetConfig based on the target type.
func ApplyTargetDefaults(t *core.TargetConfig) {
	if t == nil {
		return
	}

	if t.Type == "" {
		t.Type = DefaultTargetType
	}

	if t.Schema == "" {
		t.Schema = DefaultSchemaForType(t.Type)
	}

	if t.Type == "postgres" {
		if t.Port == 0 {
			t.Port = 5432
		}
	}
}

// ApplyClassifierDefaults fills unset classifier thresholds.
func ApplyClassifierDefaults(c *core.ClassifierConfig) {
	if c == nil {
		return
	}
	if c.StatusMaxDistinct <= 0 {
		c.StatusMaxDistinct = classify.DefaultStatusMaxDistinct
	}
	if c.FreeTextMinLength <= 0 {
		c.FreeTextMinLength = classify.DefaultFreeTextMinLength
	}
}

// ClampSampleSize keeps a configured sample size within (0, core.MaxSampleSize].
func ClampSampleSize(n int) int {
	if n <= 0 || n > core.MaxSampleSize {
		return DefaultSampleSize
	}
	return n
}
