package schema

import (
	"regexp"
	"strings"
)

var (
	capitalizedWordRe = regexp.MustCompile(`(.)([A-Z][a-z]+)`)
	lowerUpperRe      = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	nonWordRe         = regexp.MustCompile(`[^\p{L}\p{N}]+`)
)

// Canonical converts a column name to its field key: camel-case boundaries become
// underscores, the result is lowercased and any run of characters that are neither
// letters nor digits collapses to a single underscore. Non-ASCII letters are kept. Canonical(Canonical(x)) == Canonical(x).
func Canonical(name string) string {
	s := capitalizedWordRe.ReplaceAllString(name, "${1}_${2}")
	s = lowerUpperRe.ReplaceAllString(s, "${1}_${2}")
	s = strings.ToLower(s)
	s = nonWordRe.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}
