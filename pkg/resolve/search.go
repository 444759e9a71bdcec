package resolve

import (
	"context"
	"fmt"
	"math/bits"
	"time"

	"github.com/matzehuels/minbump/pkg/observability"
	"github.com/matzehuels/minbump/pkg/version"
)

// Outcome is the answer for one root package.
type Outcome struct {
	Root         string `json:"root"`
	Version      string `json:"version,omitempty"`   // Minimal satisfying version of Root
	Effective    string `json:"effective,omitempty"` // Effective dependency version at Version ("" if absent)
	NoFavourable bool   `json:"no_favourable,omitempty"`
	Probes       int    `json:"probes"`
}

// String returns the resolved version, or a message naming the root when no
// version satisfies the requirement.
func (o Outcome) String() string {
	if o.NoFavourable {
		return fmt.Sprintf("no favourable outcome because of %s", o.Root)
	}
	return o.Version
}

// MinNecessaryUpdate finds the lowest published version of root, not below
// the version rootSpec pins to, whose closure only carries dep at required
// or higher. A closure without dep satisfies the requirement vacuously.
//
// The search walks down from the newest version with steps that halve from
// the smallest power of two covering the version list, finishing with a
// zero-width probe. It assumes the effective version of dep never decreases
// as the root version increases; on histories that break this the answer may
// be too high or too low.
func (s *Session) MinNecessaryUpdate(ctx context.Context, root, rootSpec, dep, required string, expand bool) (Outcome, error) {
	out := Outcome{Root: root, NoFavourable: true}

	floor, err := s.Pin(ctx, root, rootSpec)
	if err != nil {
		return out, err
	}
	versions, err := s.Versions(ctx, root)
	if err != nil {
		return out, err
	}

	n := len(versions)
	index, found := n-1, false
	for step := stepBound(n); n > 0; step /= 2 {
		candidate := index - step
		// A zero-width probe re-checks index, which is already known to
		// hold once anything was accepted.
		if candidate >= 0 && !(step == 0 && found) && version.Compare(floor, versions[candidate]) <= 0 {
			ok, effective, err := s.probe(ctx, root, versions[candidate], dep, required, expand)
			if err != nil {
				return out, err
			}
			out.Probes++
			if ok {
				index, found = candidate, true
				out.Effective = effective
			}
		}
		if step == 0 {
			break
		}
	}

	s.opts.Progress.Increment()
	if !found {
		s.opts.Logger("%s: no favourable outcome after %d probes", root, out.Probes)
		return out, nil
	}
	out.Version, out.NoFavourable = versions[index], false
	s.opts.Logger("%s: resolved %s after %d probes", root, out.Version, out.Probes)
	return out, nil
}

// probe reports whether the closure of root@candidate satisfies the
// requirement, along with the effective version of dep it found.
func (s *Session) probe(ctx context.Context, root, candidate, dep, required string, expand bool) (bool, string, error) {
	start := time.Now()
	c, err := s.Closure(ctx, root, candidate, expand)
	if err != nil {
		return false, "", err
	}

	// Occurrences are capped at the newest published release of dep.
	effective := ""
	if occ := c.Occurrences(dep); len(occ) > 0 {
		published, err := s.Versions(ctx, dep)
		if err != nil {
			return false, "", err
		}
		if n := len(published); n > 0 {
			effective = published[n-1]
		}
		for _, p := range occ {
			v, err := s.Pin(ctx, dep, p.Version)
			if err != nil {
				return false, "", err
			}
			if effective == "" || version.Compare(v, effective) < 0 {
				effective = v
			}
		}
	}
	ok := effective == "" || version.Compare(effective, required) >= 0

	s.opts.Logger("probe %s@%s: %s=%q accepted=%v (%d packages)", root, candidate, dep, effective, ok, c.Len())
	observability.Resolve().OnProbe(ctx, root, candidate, ok, c.Len(), time.Since(start))
	return ok, effective, nil
}

// stepBound returns the smallest power of two that is at least n.
func stepBound(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}
