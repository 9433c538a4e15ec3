package config

import (
	"fmt"

	sharedcfg "github.com/leapstack-labs/schemadoc/internal/config"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Rules == "" {
		return fmt.Errorf("rules path is required")
	}
	if c.Output == "" {
		return fmt.Errorf("output path is required")
	}
	if c.SampleSize < 0 {
		return fmt.Errorf("sample_size must not be negative, got %d", c.SampleSize)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.Classifier.StatusMaxDistinct < 0 || c.Classifier.FreeTextMinLength < 0 {
		return fmt.Errorf("classifier thresholds must not be negative")
	}
	return sharedcfg.ValidateTarget(c.Target)
}
