package semver

import (
	"fmt"
	"sort"
	"strings"

	mm "github.com/Masterminds/semver/v3"
)

// Version is a semantic version.
//
// This is a thin wrapper around github.com/Masterminds/semver/v3. Parsing is
// lenient: "1", "1.2" and "v1.2.3" are all accepted and coerced.
type Version struct {
	v *mm.Version
}

// Constraint is a semantic version constraint.
//
// Examples:
// - "1.2.0" (exact)
// - ">=1.2.0 <2.0.0"
// - "^1.0.0"
// - "~1.4"
// - "1.x"
type Constraint struct {
	raw string
	c   *mm.Constraints
}

func ParseVersion(raw string) (Version, error) {
	v, err := mm.NewVersion(strings.TrimSpace(raw))
	if err != nil {
		return Version{}, fmt.Errorf("semver: parse version %q: %w", raw, err)
	}
	return Version{v: v}, nil
}

func MustParseVersion(raw string) Version {
	v, err := ParseVersion(raw)
	if err != nil {
		panic(err)
	}
	return v
}

func ParseConstraint(raw string) (Constraint, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Constraint{}, fmt.Errorf("semver: parse constraint %q: empty", raw)
	}
	c, err := mm.NewConstraint(trimmed)
	if err != nil {
		return Constraint{}, fmt.Errorf("semver: parse constraint %q: %w", raw, err)
	}
	return Constraint{raw: trimmed, c: c}, nil
}

func MustParseConstraint(raw string) Constraint {
	c, err := ParseConstraint(raw)
	if err != nil {
		panic(err)
	}
	return c
}

// IsValid reports whether v holds a parsed version.
func (v Version) IsValid() bool { return v.v != nil }

func (v Version) String() string {
	if v.v == nil {
		return ""
	}
	return v.v.Original()
}

// IsValid reports whether c holds a parsed constraint.
func (c Constraint) IsValid() bool { return c.c != nil }

func (c Constraint) String() string { return c.raw }

func Satisfies(v Version, c Constraint) bool {
	if v.v == nil || c.c == nil {
		return false
	}
	return c.c.Check(v.v)
}

// Compare compares a and b, returning:
// -1 if a < b
//
//	0 if a == b
//	1 if a > b
func Compare(a, b Version) int {
	if a.v == nil && b.v == nil {
		return 0
	}
	if a.v == nil {
		return -1
	}
	if b.v == nil {
		return 1
	}
	return a.v.Compare(b.v)
}

// MaxSatisfying returns the highest version in candidates that satisfies c.
//
// If multiple versions are equal, the first encountered wins.
func MaxSatisfying(c Constraint, candidates []Version) (Version, bool) {
	var best Version
	found := false
	for _, candidate := range candidates {
		if !Satisfies(candidate, c) {
			continue
		}
		if !found || Compare(candidate, best) > 0 {
			best = candidate
			found = true
		}
	}
	return best, found
}

// SortDescending sorts items newest first.
//
// When every version parses, semantic ordering is used. Otherwise the whole
// set falls back to reverse string ordering so that a single malformed
// version never breaks the comparison.
func SortDescending[T any](items []T, version func(T) string) {
	parsed := make([]Version, len(items))
	allValid := true
	for i, item := range items {
		v, err := ParseVersion(version(item))
		if err != nil {
			allValid = false
			break
		}
		parsed[i] = v
	}

	if !allValid {
		sort.SliceStable(items, func(i, j int) bool {
			return version(items[i]) > version(items[j])
		})
		return
	}

	idx := make([]int, len(items))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return Compare(parsed[idx[i]], parsed[idx[j]]) > 0
	})
	sorted := make([]T, len(items))
	for i, k := range idx {
		sorted[i] = items[k]
	}
	copy(items, sorted)
}

// SortStrings returns versions newest first, without duplicates.
func SortStrings(versions []string) []string {
	seen := make(map[string]struct{}, len(versions))
	out := make([]string, 0, len(versions))
	for _, v := range versions {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	SortDescending(out, func(s string) string { return s })
	return out
}

// CompareStrings compares two version strings semantically when both parse,
// and lexically otherwise.
func CompareStrings(a, b string) int {
	va, errA := ParseVersion(a)
	vb, errB := ParseVersion(b)
	if errA == nil && errB == nil {
		return Compare(va, vb)
	}
	return strings.Compare(a, b)
}
