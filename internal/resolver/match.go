// Package resolver resolves reference pointers against versioned resource
// pools and answers producer/consumer queries for messages.
package resolver

import (
	"strings"

	"github.com/eventcatalog/catalog-engine/internal/catalog"
	"github.com/eventcatalog/catalog-engine/internal/semver"
)

// Matches reports whether candidate satisfies ptr.
//
// Latest pointers track the current release only: they match iff candidate
// equals latest. Exact and range pointers use semver satisfaction; when the
// candidate version itself is malformed the comparison falls back to string
// equality with the pointer text. Invalid pointers only ever match by string
// equality. Matches never fails.
func Matches(candidate string, ptr catalog.Pointer, latest string) bool {
	candidate = strings.TrimSpace(candidate)

	switch ptr.Kind() {
	case catalog.PointerLatest:
		return candidate == latest
	case catalog.PointerExact, catalog.PointerRange:
		c, _ := ptr.Constraint()
		v, err := semver.ParseVersion(candidate)
		if err != nil {
			return candidate == ptr.Raw
		}
		return semver.Satisfies(v, c)
	default:
		return candidate == ptr.Raw
	}
}
