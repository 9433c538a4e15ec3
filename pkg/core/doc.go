// Package core defines the shared language of schemadoc.
//
// This package contains:
//   - Metadata entities (TableMetadata, ColumnMetadata, DeclaredType)
//   - Classification and description types (Category, Description)
//   - Test directives and the assembled manifest (Directive, TableManifest)
//   - Configuration types (TargetConfig, AdapterConfig)
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
