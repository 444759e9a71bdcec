// Package registry defines the contract between the resolver and a package
// registry, plus an in-memory registry for tests and offline use.
//
// A [Fetcher] returns every published release of a package together with the
// dependencies each release declares. Unknown packages are reported as an
// empty release list, not as an error; errors are reserved for transport
// failures.
package registry

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"
)

// DependencySpec is a dependency as declared by a dependent: a package name
// and the specifier (exact version or range) it asks for.
type DependencySpec struct {
	Name string `json:"name"`
	Spec string `json:"spec"`
}

// Dep is shorthand for constructing a DependencySpec.
func Dep(name, spec string) DependencySpec {
	return DependencySpec{Name: name, Spec: spec}
}

// Release is one published version of a package.
type Release struct {
	Version      string           `json:"version"`
	Dependencies []DependencySpec `json:"dependencies,omitempty"`
}

// Fetcher retrieves raw package metadata from a registry.
type Fetcher interface {
	// Fetch returns all releases of name in no particular order. An unknown
	// package yields an empty slice and a nil error.
	Fetch(ctx context.Context, name string) ([]Release, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, name string) ([]Release, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, name string) ([]Release, error) {
	return f(ctx, name)
}

// Static is an in-memory Fetcher. It records how often each package was
// fetched and can simulate slow or failing lookups. Safe for concurrent use.
type Static struct {
	mu       sync.Mutex
	packages map[string][]Release
	errs     map[string]error
	delays   map[string]time.Duration
	calls    map[string]int
}

// NewStatic creates an empty Static registry.
func NewStatic() *Static {
	return &Static{
		packages: make(map[string][]Release),
		errs:     make(map[string]error),
		delays:   make(map[string]time.Duration),
		calls:    make(map[string]int),
	}
}

// Add publishes version of name with the given dependencies and returns s
// so calls can be chained.
func (s *Static) Add(name, version string, deps ...DependencySpec) *Static {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.packages[name] = append(s.packages[name], Release{Version: version, Dependencies: deps})
	return s
}

// Fail makes every fetch of name return err.
func (s *Static) Fail(name string, err error) *Static {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[name] = err
	return s
}

// Delay makes every fetch of name block for d (or until ctx is done).
func (s *Static) Delay(name string, d time.Duration) *Static {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays[name] = d
	return s
}

// Calls returns the number of times name has been fetched.
func (s *Static) Calls(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[name]
}

// Names returns every published package name, sorted.
func (s *Static) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Sorted(maps.Keys(s.packages))
}

// Fetch implements Fetcher.
func (s *Static) Fetch(ctx context.Context, name string) ([]Release, error) {
	s.mu.Lock()
	s.calls[name]++
	delay, err := s.delays[name], s.errs[name]
	releases := slices.Clone(s.packages[name])
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	if err != nil {
		return nil, err
	}
	return releases, nil
}

var _ Fetcher = (*Static)(nil)
