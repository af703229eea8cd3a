// internal/app/system/search/search.go
package search

import (
	"strings"

	"github.com/dalemusser/waffle/pantry/text"
)

// Normalize folds a raw user query the same way the stores fold names
// (lowercase, diacritics stripped), so matching is accent- and
// case-insensitive.
func Normalize(q string) string {
	return text.Fold(strings.TrimSpace(q))
}

// MatchesName reports whether a folded name contains the normalized
// query. An empty query matches everything.
func MatchesName(nameCI, normalized string) bool {
	if normalized == "" {
		return true
	}
	return strings.Contains(nameCI, normalized)
}
