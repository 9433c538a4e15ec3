// Package classify assigns semantic categories to columns from their names,
// declared types and sampled values.
//
// A Classifier is read-only after construction and safe for concurrent use.
package classify

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/leapstack-labs/schemadoc/pkg/core"
)

// Default thresholds.
const (
	DefaultStatusMaxDistinct = 10
	DefaultFreeTextMinLength = 40
)

var (
	identifierWords = map[string]bool{"id": true, "sk": true, "pk": true, "fk": true, "key": true, "uuid": true, "guid": true}
	temporalWords   = map[string]bool{"date": true, "time": true, "datetime": true, "timestamp": true, "ts": true, "dt": true}
	monetaryWords   = map[string]bool{"amount": true, "amt": true, "price": true, "cost": true, "total": true, "revenue": true, "fee": true, "tax": true}
	statusWords     = map[string]bool{"status": true, "state": true}

	// Tokens also recognized inside a single unseparated word, as in
	// "userid", "birthdate" or "totalamount".
	identifierSuffixes = []string{"id", "key"}
	temporalInfixes    = []string{"date", "time"}
	monetaryInfixes    = []string{"amount", "price", "cost", "total", "revenue"}

	// Ordinary words that end in an identifier suffix.
	notIdentifierWords = map[string]bool{
		"paid": true, "unpaid": true, "prepaid": true, "valid": true, "invalid": true,
		"void": true, "fluid": true, "liquid": true, "rapid": true, "hybrid": true,
		"grid": true, "android": true, "turkey": true, "monkey": true, "hockey": true,
	}

	booleanPairs = [][2]string{
		{"false", "true"},
		{"0", "1"},
		{"n", "y"},
		{"no", "yes"},
		{"f", "t"},
	}
)

// Classifier classifies columns. Construct with New.
type Classifier struct {
	statusMaxDistinct int
	freeTextMinLength int
	tables            []string
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithKnownTables sets the table names reference columns are matched against.
func WithKnownTables(tables []string) Option {
	return func(c *Classifier) {
		c.tables = make([]string, len(tables))
		for i, t := range tables {
			c.tables[i] = strings.ToLower(t)
		}
	}
}

// New creates a Classifier. Zero thresholds in cfg fall back to the defaults.
func New(cfg core.ClassifierConfig, opts ...Option) *Classifier {
	c := &Classifier{
		statusMaxDistinct: cfg.StatusMaxDistinct,
		freeTextMinLength: cfg.FreeTextMinLength,
	}
	if c.statusMaxDistinct <= 0 {
		c.statusMaxDistinct = DefaultStatusMaxDistinct
	}
	if c.freeTextMinLength <= 0 {
		c.freeTextMinLength = DefaultFreeTextMinLength
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify returns the column's categories, most specific first. It never
// fails: without samples only the name and type based rules apply.
func (c *Classifier) Classify(col core.ColumnMetadata) core.ClassifiedColumn {
	words := Words(col.Name)
	expanded := Expand(words)
	samples := col.SampleStrings()

	result := core.ClassifiedColumn{Column: col}
	add := func(cat core.Category) {
		if !result.Categories.Has(cat) {
			result.Categories = append(result.Categories, cat)
		}
	}

	if stem, ok := identifierStem(words); ok {
		add(core.CategoryIdentifier)
		if len(stem) > 0 {
			add(core.CategoryReference)
			result.Related = c.resolveRelated(stem)
		}
	}

	if col.Type == core.TypeDateTime || isTemporal(words) || isTemporal(expanded) {
		add(core.CategoryTimestamp)
	}

	if col.Type == core.TypeNumeric && (containsAny(words, monetaryWords) || containsInfix(words, monetaryInfixes)) {
		add(core.CategoryAmount)
	}

	isFlag := col.Type == core.TypeBoolean || isBooleanLike(samples) || hasFlagCue(words)
	if isFlag {
		add(core.CategoryFlag)
	}

	if !isFlag && !result.Categories.Has(core.CategoryTimestamp) && c.isStatus(col, words, samples, result.Categories) {
		add(core.CategoryStatus)
	}

	if col.Type == core.TypeText && len(result.Categories) == 0 && c.isFreeText(samples) {
		add(core.CategoryFreeText)
	}

	if len(result.Categories) == 0 {
		add(core.CategoryGeneric)
	}

	slices.Sort(result.Categories)
	return result
}

// identifierStem reports whether the name ends with an identifier token and
// returns the words before it. A last word such as "userid" that merely ends
// in "id" or "key" counts when at least three letters precede the suffix.
func identifierStem(words []string) ([]string, bool) {
	if len(words) == 0 {
		return nil, false
	}
	head, last := words[:len(words)-1], words[len(words)-1]
	if identifierWords[last] {
		return head, true
	}
	if notIdentifierWords[last] {
		return nil, false
	}
	for _, suffix := range identifierSuffixes {
		if stem, ok := strings.CutSuffix(last, suffix); ok && len(stem) >= 3 {
			return append(slices.Clip(head), stem), true
		}
	}
	return nil, false
}

// resolveRelated maps an identifier stem onto a known table by name
// similarity, or returns the readable stem when no table matches.
func (c *Classifier) resolveRelated(stem []string) string {
	candidates := [][]string{stem}
	// Drop short column prefixes such as "c_" or "ss_".
	if len(stem) > 1 && len(stem[0]) <= 2 {
		candidates = append(candidates, stem[1:])
	}

	for _, cand := range candidates {
		for _, form := range [][]string{cand, Expand(cand)} {
			joined := strings.Join(form, "_")
			for _, t := range c.tables {
				if tableMatches(joined, t) {
					return t
				}
			}
		}
	}

	return strings.Join(Expand(candidates[len(candidates)-1]), " ")
}

func tableMatches(stem, table string) bool {
	switch {
	case stem == table, stem+"s" == table, stem+"es" == table, stem == table+"s":
		return true
	case strings.HasSuffix(stem, "_"+table), strings.HasSuffix(stem, "_"+strings.TrimSuffix(table, "s")):
		return true
	}
	return false
}

func isTemporal(words []string) bool {
	if containsInfix(words, temporalInfixes) {
		return true
	}
	for i, w := range words {
		if temporalWords[w] {
			return true
		}
		if w == "at" && i == len(words)-1 && i > 0 {
			return true
		}
	}
	return false
}

func isBooleanLike(samples []string) bool {
	distinct := make(map[string]bool)
	for _, s := range samples {
		distinct[strings.ToLower(strings.TrimSpace(s))] = true
		if len(distinct) > 2 {
			return false
		}
	}
	if len(distinct) != 2 {
		return false
	}
	for _, pair := range booleanPairs {
		if distinct[pair[0]] && distinct[pair[1]] {
			return true
		}
	}
	return false
}

func hasFlagCue(words []string) bool {
	if len(words) < 2 {
		return false
	}
	first, last := words[0], words[len(words)-1]
	return first == "is" || first == "has" || last == "flag" || last == "flg"
}

func (c *Classifier) isStatus(col core.ColumnMetadata, words, samples []string, cats core.Categories) bool {
	if containsAny(words, statusWords) && !cats.Has(core.CategoryIdentifier) {
		return true
	}
	if col.Type != core.TypeText || len(samples) == 0 {
		return false
	}
	distinct := make(map[string]bool)
	for _, s := range samples {
		distinct[s] = true
	}
	return len(distinct) <= c.statusMaxDistinct && len(distinct) < len(samples)
}

func (c *Classifier) isFreeText(samples []string) bool {
	if len(samples) == 0 {
		return false
	}
	total := 0
	for _, s := range samples {
		total += utf8.RuneCountInString(s)
	}
	return total > c.freeTextMinLength*len(samples)
}

func containsInfix(words, infixes []string) bool {
	for _, w := range words {
		for _, in := range infixes {
			if strings.Contains(w, in) {
				return true
			}
		}
	}
	return false
}

func containsAny(words []string, set map[string]bool) bool {
	for _, w := range words {
		if set[w] {
			return true
		}
	}
	return false
}
