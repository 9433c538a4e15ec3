package core

import "strings"

// Provenance records which source produced a description.
// It drives fallback control and is never emitted.
type Provenance int

// Description sources, highest priority first.
const (
	ProvenanceNative Provenance = iota
	ProvenanceComment
	ProvenanceHeuristic
)

// String returns the string representation of the provenance.
func (p Provenance) String() string {
	switch p {
	case ProvenanceNative:
		return "native-engine"
	case ProvenanceComment:
		return "db-comment"
	case ProvenanceHeuristic:
		return "heuristic"
	default:
		return "unknown"
	}
}

// Description is the trimmed, non-empty text describing one table or column.
type Description struct {
	Text   string
	Source Provenance
}

var placeholders = map[string]bool{
	"null": true, "none": true, "nil": true, "n/a": true, "na": true,
	"tbd": true, "todo": true, "-": true, "--": true, "?": true,
	"no description": true, "description": true,
}

// IsPlaceholder reports whether s carries no information: empty after
// trimming or a known placeholder token such as "N/A" or "TBD".
func IsPlaceholder(s string) bool {
	t := strings.ToLower(strings.TrimSpace(s))
	return t == "" || placeholders[t]
}
