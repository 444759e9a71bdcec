package resolve

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/minbump/pkg/observability"
	"github.com/matzehuels/minbump/pkg/registry"
	"github.com/matzehuels/minbump/pkg/version"
)

// Package is a package name paired with a version specifier. Inside a
// closure the specifier is the one the package was reached under: exact for
// the root and for range-expanded siblings, possibly a range otherwise.
type Package struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// String formats the package as name@version.
func (p Package) String() string { return p.Name + "@" + p.Version }

// Options configures a Session.
type Options struct {
	MaxConcurrency int                  // Roots resolved in parallel by ListUpdate (0: unbounded)
	Progress       Progress             // Completed-task counter (optional)
	Logger         func(string, ...any) // Debug trace callback (optional)

	// KeepErrors remembers a failed fetch for the session lifetime, so a
	// package is requested at most once even when the registry fails.
	// Leave it off for long-lived sessions that should recover.
	KeepErrors bool
}

// WithDefaults returns a copy of Options with nil fields replaced by no-ops.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.MaxConcurrency < 0 {
		opts.MaxConcurrency = 0
	}
	if opts.Progress == nil {
		opts.Progress = noopProgress{}
	}
	if opts.Logger == nil {
		opts.Logger = func(string, ...any) {}
	}
	return opts
}

// Stats summarizes what a Session has loaded.
type Stats struct {
	Fetches     int64 `json:"fetches"`      // Registry round-trips issued
	Packages    int   `json:"packages"`     // Packages with a cached version list
	BadPackages int   `json:"bad_packages"` // Packages marked unresolvable
}

// Session owns the metadata caches shared by every resolution it runs.
type Session struct {
	fetcher registry.Fetcher
	opts    Options
	flights singleflight.Group
	fetches atomic.Int64

	mu       sync.RWMutex
	versions map[string][]string
	deps     map[Package][]registry.DependencySpec
	bad      map[string]struct{}
	failed   map[string]error
}

// NewSession creates an empty Session that loads metadata through fetcher.
func NewSession(fetcher registry.Fetcher, opts Options) *Session {
	return &Session{
		fetcher:  fetcher,
		opts:     opts.WithDefaults(),
		versions: make(map[string][]string),
		deps:     make(map[Package][]registry.DependencySpec),
		bad:      make(map[string]struct{}),
		failed:   make(map[string]error),
	}
}

// Versions returns the published versions of name in ascending order. The
// first call for a name fetches it; concurrent first calls share one fetch.
// Unresolvable packages yield an empty list.
func (s *Session) Versions(ctx context.Context, name string) ([]string, error) {
	if err := s.load(ctx, name); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.versions[name]), nil
}

// IsBad reports whether name is known to be unresolvable.
func (s *Session) IsBad(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.bad[name]
	return ok
}

// Pin resolves spec to a concrete published version of name, or
// [version.Sentinel] if name is unresolvable or nothing matches.
func (s *Session) Pin(ctx context.Context, name, spec string) (string, error) {
	versions, err := s.Versions(ctx, name)
	if err != nil {
		return "", err
	}
	if s.IsBad(name) {
		return version.Sentinel, nil
	}
	return version.Resolve(spec, versions), nil
}

// Dependencies returns the dependencies declared by name at the version spec
// pins to. The list is empty when name is unresolvable or the pinned version
// was never published.
func (s *Session) Dependencies(ctx context.Context, name, spec string) ([]registry.DependencySpec, error) {
	deps, _, err := s.lookup(ctx, name, spec)
	return deps, err
}

// Stats reports cache sizes and the number of registry fetches so far.
func (s *Session) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{
		Fetches:     s.fetches.Load(),
		Packages:    len(s.versions),
		BadPackages: len(s.bad),
	}
}

func (s *Session) lookup(ctx context.Context, name, spec string) ([]registry.DependencySpec, bool, error) {
	pinned, err := s.Pin(ctx, name, spec)
	if err != nil {
		return nil, false, err
	}
	if s.IsBad(name) {
		return nil, false, nil
	}

	s.mu.RLock()
	deps, ok := s.deps[Package{Name: name, Version: pinned}]
	s.mu.RUnlock()
	if !ok {
		s.opts.Logger("no release %s@%s (from %q)", name, pinned, spec)
		return nil, false, nil
	}
	return slices.Clone(deps), true, nil
}

func (s *Session) loaded(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.bad[name]; ok {
		return true
	}
	_, ok := s.versions[name]
	return ok
}

// load fills the caches for name. The second loaded check runs inside the
// flight: a caller that missed the first check after another flight already
// landed must not fetch again. The flight outlives any single caller; each
// caller stops waiting when its own ctx is done.
func (s *Session) load(ctx context.Context, name string) error {
	if s.loaded(name) {
		return nil
	}
	if err := s.failure(name); err != nil {
		return err
	}
	flight := context.WithoutCancel(ctx)
	ch := s.flights.DoChan(name, func() (any, error) {
		if s.loaded(name) {
			return nil, nil
		}
		if err := s.failure(name); err != nil {
			return nil, err
		}
		return nil, s.fetch(flight, name)
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// failure returns the remembered fetch error for name, if any.
func (s *Session) failure(name string) error {
	if !s.opts.KeepErrors {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.failed[name]
}

func (s *Session) fetch(ctx context.Context, name string) error {
	start := time.Now()
	releases, err := s.fetcher.Fetch(ctx, name)
	s.fetches.Add(1)
	observability.Resolve().OnFetch(ctx, name, len(releases), time.Since(start), err)
	if err != nil {
		err = fmt.Errorf("fetch %s: %w", name, err)
		if s.opts.KeepErrors {
			s.mu.Lock()
			s.failed[name] = err
			s.mu.Unlock()
		}
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(releases) == 0 {
		s.bad[name] = struct{}{}
		s.opts.Logger("marking %s unresolvable: registry has no versions", name)
		observability.Resolve().OnBadPackage(ctx, name)
		return nil
	}

	versions := make([]string, 0, len(releases))
	for _, r := range releases {
		versions = append(versions, r.Version)
		key := Package{Name: name, Version: r.Version}
		if _, ok := s.deps[key]; !ok {
			s.deps[key] = slices.Clone(r.Dependencies)
		}
	}
	s.versions[name] = version.Sort(versions)
	s.opts.Logger("loaded %s: %d versions", name, len(versions))
	return nil
}
