package utils

import (
	"strings"
	"unicode"
)

// NormalizeQuery trims leading whitespace and uppercases the query.
// Trailing whitespace is kept: "CS1200 " and "CS1200" match different entries.
func NormalizeQuery(query string) string {
	return strings.ToUpper(strings.TrimLeftFunc(query, unicode.IsSpace))
}
