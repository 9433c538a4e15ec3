package describe

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/schemadoc/internal/classify"
	"github.com/leapstack-labs/schemadoc/pkg/core"
)

const maxListedEntities = 3

// tableSignals summarizes which categories appear across a table's columns.
type tableSignals struct {
	identifiers int
	references  []string
	has         map[core.Category]bool
}

func collectSignals(cols []core.ClassifiedColumn) tableSignals {
	sig := tableSignals{has: make(map[core.Category]bool)}
	seen := make(map[string]bool)
	for _, c := range cols {
		for _, cat := range c.Categories {
			sig.has[cat] = true
		}
		if c.Categories.Has(core.CategoryIdentifier) {
			sig.identifiers++
		}
		if c.Categories.Has(core.CategoryReference) && c.Related != "" {
			entity := strings.ReplaceAll(c.Related, "_", " ")
			if !seen[entity] {
				seen[entity] = true
				sig.references = append(sig.references, entity)
			}
		}
	}
	return sig
}

func (s tableSignals) entities() string {
	if len(s.references) > maxListedEntities {
		return "multiple related entities"
	}
	return joinList(s.references)
}

// details lists the kinds of data present, for the description suffix.
func (s tableSignals) details() string {
	var kinds []string
	if s.has[core.CategoryIdentifier] {
		kinds = append(kinds, "identifiers")
	}
	if s.has[core.CategoryTimestamp] {
		kinds = append(kinds, "dates")
	}
	if s.has[core.CategoryAmount] {
		kinds = append(kinds, "amounts")
	}
	if s.has[core.CategoryFlag] {
		kinds = append(kinds, "flags")
	}
	if s.has[core.CategoryStatus] {
		kinds = append(kinds, "status information")
	}

	switch {
	case len(kinds) == 0:
		return ""
	case len(kinds) > 3:
		return " including various attributes and metrics"
	default:
		return " including " + joinList(kinds)
	}
}

func tableHeuristic(subject TableSubject) string {
	name := classify.Readable(subject.Table.Name)
	if name == "" {
		name = "this table"
	}

	sig := collectSignals(subject.Columns)
	amount := sig.has[core.CategoryAmount]
	timestamp := sig.has[core.CategoryTimestamp]
	status := sig.has[core.CategoryStatus]
	reference := len(sig.references) > 0

	var purpose string
	switch {
	case amount && timestamp && reference:
		purpose = "Records transactional events associated with " + sig.entities()
	case amount && timestamp:
		purpose = "Records dated monetary activity for " + name
	case status && timestamp:
		purpose = "Tracks the lifecycle and status of " + name
	case reference:
		purpose = fmt.Sprintf("Contains %s records associated with %s", name, sig.entities())
	case sig.identifiers == 1 && !amount:
		purpose = fmt.Sprintf("Describes each %s record", name)
	default:
		return sentence("Contains records related to " + name)
	}

	return sentence(purpose + sig.details())
}
