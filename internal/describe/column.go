package describe

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/leapstack-labs/schemadoc/internal/classify"
	"github.com/leapstack-labs/schemadoc/pkg/core"
)

const maxObservedValues = 5

// wellKnown holds fixed texts for snapshot and audit columns.
var wellKnown = map[string]string{
	"dbt_scd_id":      "SCD type 2 identifier, used for tracking different versions of each record.",
	"dbt_updated_at":  "SCD type 2 updated timestamp, indicating when the record was last modified.",
	"dbt_valid_from":  "SCD type 2 validity start timestamp, indicating since when the record is valid.",
	"dbt_valid_to":    "SCD type 2 validity end timestamp, indicating until when the record is valid.",
	"adt_load_date":   "Audit load date used for record identification across the data pipeline.",
	"adt_file_source": "Audit file source used for record identification across the data pipeline.",
	"adt_hash_key":    "Hash key used for record identification across the data pipeline.",
	"record_sk":       "Unique key identifier for each record.",
}

var temporalNoise = map[string]bool{
	"date": true, "time": true, "datetime": true, "timestamp": true, "ts": true, "dt": true, "at": true,
}

func columnHeuristic(subject ColumnSubject) string {
	col := subject.Column
	name := col.Column.Name
	if text, ok := wellKnown[strings.ToLower(name)]; ok {
		return text
	}

	readable := classify.Readable(name)
	subjectName := readable
	if subjectName == "" {
		subjectName = "this column"
	}

	clauses := []string{categoryClause(subject, col.Categories.Primary(), subjectName)}
	if col.Categories.Has(core.CategoryReference) && col.Related != "" {
		clauses = append(clauses, fmt.Sprintf("References %s via matching identifier", col.Related))
	}

	parts := make([]string, 0, len(clauses)+1)
	if readable != "" {
		parts = append(parts, sentence(classify.Title(readable)))
	}
	for _, c := range clauses {
		parts = append(parts, sentence(c))
	}
	return strings.Join(parts, " ")
}

func categoryClause(subject ColumnSubject, cat core.Category, subjectName string) string {
	col := subject.Column
	switch cat {
	case core.CategoryIdentifier:
		return "Unique identifier for " + identifiedEntity(subject)
	case core.CategoryReference:
		return fmt.Sprintf("References %s via matching identifier", col.Related)
	case core.CategoryTimestamp:
		return timestampClause(col.Column.Name)
	case core.CategoryAmount:
		clause := "Monetary amount representing " + subjectName
		if lo, hi, ok := numericRange(col.Column.SampleStrings()); ok {
			clause += fmt.Sprintf(" (ranges from %.2f to %.2f)", lo, hi)
		}
		return clause
	case core.CategoryFlag:
		return flagClause(col.Column.Name, subjectName)
	case core.CategoryStatus:
		values := observedValues(col.Column.SampleStrings())
		if len(values) == 0 {
			return "Current status/category of " + subjectName
		}
		return fmt.Sprintf("Current status/category of %s, one of the observed values (%s)",
			subjectName, strings.Join(values, ", "))
	case core.CategoryFreeText:
		return "Free-form text describing " + subjectName
	default:
		return "Value representing " + subjectName
	}
}

// identifiedEntity names what an identifier column identifies: the
// referenced entity, else the owning table.
func identifiedEntity(subject ColumnSubject) string {
	if related := subject.Column.Related; related != "" {
		return strings.ReplaceAll(related, "_", " ")
	}
	if t := classify.Readable(subject.Table); t != "" {
		return t
	}
	return "each record"
}

func timestampClause(name string) string {
	words := classify.Expand(classify.Words(name))
	has := func(w string) bool {
		for _, x := range words {
			if x == w {
				return true
			}
		}
		return false
	}

	switch {
	case has("created") || has("create") || has("inserted") || has("insert"):
		return "Date/time when the record was created"
	case has("updated") || has("update") || has("modified") || has("modify"):
		return "Date/time when the record was last updated"
	case has("valid") && has("from"):
		return "Date/time from which the record is valid"
	case has("valid") && has("to"):
		return "Date/time until which the record is valid"
	case has("birth"):
		return "Date of birth"
	}

	var event []string
	for _, w := range words {
		if !temporalNoise[w] {
			event = append(event, w)
		}
	}
	if len(event) == 0 {
		return "Date/time when the event occurred"
	}
	return fmt.Sprintf("Date/time when %s occurred", strings.Join(event, " "))
}

func flagClause(name, subjectName string) string {
	words := classify.Expand(classify.Words(name))
	if len(words) > 1 {
		switch words[0] {
		case "is", "has":
			return fmt.Sprintf("Indicates whether the record %s %s", words[0], strings.Join(words[1:], " "))
		}
		if last := words[len(words)-1]; last == "flag" || last == "flg" {
			return "Indicates whether " + strings.Join(words[:len(words)-1], " ")
		}
	}
	return "Indicates whether " + subjectName
}

func numericRange(samples []string) (lo, hi float64, ok bool) {
	for _, s := range samples {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			continue
		}
		if !ok {
			lo, hi, ok = v, v, true
			continue
		}
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return lo, hi, ok
}

// observedValues returns up to maxObservedValues most frequent samples;
// ties keep first-seen order.
func observedValues(samples []string) []string {
	counts := make(map[string]int)
	var order []string
	for _, s := range samples {
		if counts[s] == 0 {
			order = append(order, s)
		}
		counts[s]++
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > maxObservedValues {
		order = order[:maxObservedValues]
	}
	return order
}
