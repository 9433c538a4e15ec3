// Package config provides shared configuration defaults and validation for
// schemadoc. It is decoupled from CLI concerns so the engine and tests can
// use it without pulling in cobra or koanf.
package config

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/schemadoc/pkg/adapter"
	"github.com/leapstack-labs/schemadoc/pkg/core"
)

// DefaultSchemaForType returns the default schema for a database type.
// It asks the adapter registry; unknown types fall back to "main".
func DefaultSchemaForType(dbType string) string {
	return adapter.DefaultSchema(strings.ToLower(dbType))
}

// ValidateTarget checks that the target names a registered adapter and
// carries the fields that adapter needs to connect.
func ValidateTarget(t *core.TargetConfig) error {
	if t == nil {
		return fmt.Errorf("target configuration is required")
	}
	if t.Type == "" {
		return fmt.Errorf("target type is required")
	}

	typ := strings.ToLower(t.Type)
	if !adapter.IsRegistered(typ) {
		return &adapter.UnknownAdapterError{
			Type:      t.Type,
			Available: adapter.ListAdapters(),
		}
	}

	switch typ {
	case "postgres":
		if t.Host == "" {
			return fmt.Errorf("postgres target requires host")
		}
		if t.Database == "" {
			return fmt.Errorf("postgres target requires database")
		}
	case "snapshot":
		if t.Database == "" {
			return fmt.Errorf("snapshot target requires database (path to the snapshot file)")
		}
	}

	return nil
}
