// Package version orders semantic versions and resolves npm-style version
// specifiers against a list of published versions.
//
// Precedence follows SemVer 2.0 as implemented by
// [github.com/Masterminds/semver/v3]: major.minor.patch, with pre-releases
// ordering below the corresponding release. Strings that do not parse as a
// version order before every valid version.
//
// # Specifiers
//
// A specifier is whatever a package.json declares for a dependency: an exact
// version ("1.2.3", "v1.2.3", "=1.2.3"), a range ("^1.2.0", "~1.2",
// ">=1.0.0 <2.0.0", "1.x || 2.x", "1.0.0 - 1.4.0"), or a tag such as
// "latest". [Resolve] maps a specifier to one concrete version, picking the
// lowest published version that satisfies it. Resolution that cannot produce
// a version yields [Sentinel].
package version

import (
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Sentinel is the placeholder for "no real version available": returned for
// unresolvable specifiers and for packages the registry does not know.
const Sentinel = "0.0.0"

// Compare returns -1, 0, or +1 depending on whether a orders before, equal
// to, or after b. Invalid versions order before valid ones and compare among
// themselves lexically.
func Compare(a, b string) int {
	va, errA := parse(a)
	vb, errB := parse(b)
	switch {
	case errA != nil && errB != nil:
		return strings.Compare(a, b)
	case errA != nil:
		return -1
	case errB != nil:
		return 1
	}
	return va.Compare(vb)
}

// Valid reports whether s parses as a single concrete version.
func Valid(s string) bool {
	_, err := parse(s)
	return err == nil
}

// ValidSpec reports whether spec is a concrete version or a range the
// resolver understands.
func ValidSpec(spec string) bool {
	if Valid(spec) {
		return true
	}
	_, err := constraint(spec)
	return err == nil
}

// Sort returns a new slice holding versions in ascending precedence with
// duplicates (equal precedence) removed. The input is not modified.
func Sort(versions []string) []string {
	out := slices.Clone(versions)
	slices.SortStableFunc(out, Compare)
	return slices.CompactFunc(out, func(a, b string) bool { return Compare(a, b) == 0 })
}

// Satisfies reports whether v is allowed by spec. Unparsable input never
// satisfies.
func Satisfies(v, spec string) bool {
	c, err := constraint(spec)
	if err != nil {
		return false
	}
	sv, err := parse(v)
	if err != nil {
		return false
	}
	return c.Check(sv)
}

// Filter returns the members of versions that satisfy spec, keeping order.
func Filter(spec string, versions []string) []string {
	c, err := constraint(spec)
	if err != nil {
		return nil
	}
	var out []string
	for _, v := range versions {
		if sv, err := parse(v); err == nil && c.Check(sv) {
			out = append(out, v)
		}
	}
	return out
}

// Resolve pins spec to a concrete version. An exact version pins to itself
// (with any "v" or "=" prefix removed); a range pins to the lowest member of
// available that satisfies it. When nothing matches, Resolve returns
// [Sentinel].
func Resolve(spec string, available []string) string {
	s := trim(spec)
	if v, err := semver.StrictNewVersion(s); err == nil {
		return v.Original()
	}
	c, err := constraint(s)
	if err != nil {
		return Sentinel
	}
	best := ""
	for _, v := range available {
		sv, err := parse(v)
		if err != nil || !c.Check(sv) {
			continue
		}
		if best == "" || Compare(v, best) < 0 {
			best = v
		}
	}
	if best == "" {
		return Sentinel
	}
	return best
}

func parse(s string) (*semver.Version, error) {
	return semver.NewVersion(trim(s))
}

func constraint(spec string) (*semver.Constraints, error) {
	s := strings.TrimSpace(spec)
	if s == "" || s == "latest" || s == "x" {
		s = "*"
	}
	return semver.NewConstraint(s)
}

// trim strips whitespace and the "=" / "v" prefixes npm tolerates on exact
// versions.
func trim(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "=")
	if len(s) > 1 && (s[0] == 'v' || s[0] == 'V') && s[1] >= '0' && s[1] <= '9' {
		s = s[1:]
	}
	return s
}
