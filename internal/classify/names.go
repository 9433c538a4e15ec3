package classify

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var abbreviations = map[string]string{
	"sk":    "surrogate key",
	"pk":    "primary key",
	"fk":    "foreign key",
	"id":    "identifier",
	"amt":   "amount",
	"qty":   "quantity",
	"num":   "number",
	"addr":  "address",
	"tel":   "telephone",
	"dob":   "date of birth",
	"ssn":   "social security number",
	"adt":   "audit",
	"scd":   "slowly changing dimension",
	"cdemo": "customer demographics",
	"hdemo": "household demographics",
}

// Words splits an identifier into lowercase words on separators and case
// boundaries: "orderID", "order_id" and "Order-Id" all yield [order id].
func Words(name string) []string {
	var words []string
	var cur []rune
	runes := []rune(name)

	flush := func() {
		if len(cur) > 0 {
			words = append(words, strings.ToLower(string(cur)))
			cur = cur[:0]
		}
	}

	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if unicode.IsUpper(r) && len(cur) > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return words
}

// Expand replaces known abbreviations with their long form, splitting
// multi-word expansions so the result stays a flat word list.
func Expand(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if long, ok := abbreviations[w]; ok {
			out = append(out, strings.Fields(long)...)
			continue
		}
		out = append(out, w)
	}
	return out
}

// Readable returns the lowercase, abbreviation-expanded phrase for a name.
func Readable(name string) string {
	return strings.Join(Expand(Words(name)), " ")
}

// Title title-cases a phrase. A Caser holds state, so each call builds its own.
func Title(phrase string) string {
	return cases.Title(language.English).String(phrase)
}
