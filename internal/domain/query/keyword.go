package query

import (
	"strings"
	"unicode"
)

// stopwords are common English function words that never make useful title
// filters. Small on purpose: furniture queries are short noun phrases and the
// head noun almost always sits last ("oak dining table" -> "table").
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"but": {}, "by": {}, "for": {}, "from": {}, "if": {}, "in": {}, "into": {},
	"is": {}, "it": {}, "my": {}, "no": {}, "not": {}, "of": {}, "on": {},
	"or": {}, "our": {}, "so": {}, "some": {}, "such": {}, "that": {},
	"the": {}, "their": {}, "then": {}, "there": {}, "these": {}, "this": {},
	"to": {}, "up": {}, "very": {}, "want": {}, "was": {}, "we": {},
	"what": {}, "which": {}, "will": {}, "with": {}, "would": {}, "you": {},
	"cheap": {}, "nice": {}, "good": {}, "best": {}, "new": {}, "me": {},
	"need": {}, "looking": {}, "find": {}, "show": {}, "buy": {},
}

// ExtractKeyword picks the rightmost alphabetic non-stopword token of a query,
// lowercased. Queries like "oak dining table" are head-final noun phrases, so
// the last content word is the product category the user cares about.
// Returns "" when nothing qualifies (filtering is then skipped).
func ExtractKeyword(q string) string {
	tokens := strings.FieldsFunc(strings.ToLower(q), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for i := len(tokens) - 1; i >= 0; i-- {
		if _, skip := stopwords[tokens[i]]; !skip {
			return tokens[i]
		}
	}
	return ""
}
