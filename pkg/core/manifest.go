package core

// ManifestVersion is the format-version marker written at the top of the document.
const ManifestVersion = 2

// ColumnManifest is the documentation and tests for one column.
// Categories are kept for table-level synthesis and inspection; they are not emitted.
type ColumnManifest struct {
	Name        string
	Description Description
	Tests       []Directive
	Categories  Categories
	Related     string
}

// TableManifest is the assembled documentation for one table.
// Columns are in the provider's column order.
type TableManifest struct {
	Name        string
	Description Description
	Columns     []ColumnManifest
}

// Document is the complete pre-serialization output of one run.
type Document struct {
	Version int
	Tables  []TableManifest
}
