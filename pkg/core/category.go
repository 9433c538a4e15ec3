package core

import "strings"

// Category is a semantic classification bucket assigned to a column.
// The declaration order is the specificity order used when listing categories.
type Category int

// Column categories.
const (
	CategoryIdentifier Category = iota
	CategoryReference
	CategoryTimestamp
	CategoryAmount
	CategoryFlag
	CategoryStatus
	CategoryFreeText
	CategoryGeneric
)

var categoryNames = [...]string{
	CategoryIdentifier: "identifier",
	CategoryReference:  "reference",
	CategoryTimestamp:  "timestamp",
	CategoryAmount:     "amount",
	CategoryFlag:       "flag",
	CategoryStatus:     "status",
	CategoryFreeText:   "free_text",
	CategoryGeneric:    "generic",
}

// String returns the string representation of the category.
func (c Category) String() string {
	if c >= 0 && int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "unknown"
}

// Categories is an ordered set of categories, most specific first.
type Categories []Category

// Has reports whether c is in the set.
func (cs Categories) Has(c Category) bool {
	for _, x := range cs {
		if x == c {
			return true
		}
	}
	return false
}

// Primary returns the most specific category, or CategoryGeneric for an empty set.
func (cs Categories) Primary() Category {
	if len(cs) == 0 {
		return CategoryGeneric
	}
	return cs[0]
}

// String joins the category names with commas.
func (cs Categories) String() string {
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = c.String()
	}
	return strings.Join(names, ",")
}

// ClassifiedColumn pairs a column with its categories and, for reference
// columns, the entity it points at.
type ClassifiedColumn struct {
	Column     ColumnMetadata
	Categories Categories
	// Related is the referenced table or entity name for reference columns.
	Related string
}
