package resolve

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/minbump/pkg/version"
)

// Edge connects a dependent to a package it reached, either as a declared
// dependency or as a range-expanded sibling version of itself.
type Edge struct {
	From Package `json:"from"`
	To   Package `json:"to"`
}

// Closure is the set of packages transitively reachable from a root.
// Members holds each pair once, root first, in discovery order.
type Closure struct {
	Root    Package   `json:"root"`
	Members []Package `json:"members"`
	Edges   []Edge    `json:"edges,omitempty"`

	index map[Package]struct{}
	edges map[Edge]struct{}
}

func newClosure(root Package) *Closure {
	return &Closure{
		Root:  root,
		index: make(map[Package]struct{}),
		edges: make(map[Edge]struct{}),
	}
}

// Contains reports whether p is a member.
func (c *Closure) Contains(p Package) bool {
	_, ok := c.index[p]
	return ok
}

// Len returns the number of members.
func (c *Closure) Len() int { return len(c.Members) }

// Occurrences returns every member named name.
func (c *Closure) Occurrences(name string) []Package {
	var out []Package
	for _, p := range c.Members {
		if p.Name == name {
			out = append(out, p)
		}
	}
	return out
}

func (c *Closure) add(p Package) {
	if _, ok := c.index[p]; ok {
		return
	}
	c.index[p] = struct{}{}
	c.Members = append(c.Members, p)
}

func (c *Closure) link(from, to Package) {
	e := Edge{From: from, To: to}
	if from == to {
		return
	}
	if _, ok := c.edges[e]; ok {
		return
	}
	c.edges[e] = struct{}{}
	c.Edges = append(c.Edges, e)
}

// Closure computes every package reachable from name@version. Each frontier
// is expanded concurrently. When expand is set, a package reached under a
// specifier also reaches every published version of itself that satisfies
// that specifier.
//
// Packages that are unresolvable, or whose pinned version was never
// published, are members but contribute no dependencies. A registry failure
// aborts the walk.
func (s *Session) Closure(ctx context.Context, name, ver string, expand bool) (*Closure, error) {
	c := newClosure(Package{Name: name, Version: ver})
	frontier := []Package{c.Root}

	for len(frontier) > 0 {
		for _, p := range frontier {
			c.add(p)
		}

		reached := make([][]Package, len(frontier))
		g, gctx := errgroup.WithContext(ctx)
		for i, p := range frontier {
			g.Go(func() error {
				next, err := s.expand(gctx, p, expand)
				if err != nil {
					return err
				}
				reached[i] = next
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		var next []Package
		queued := make(map[Package]struct{})
		for i, from := range frontier {
			for _, to := range reached[i] {
				c.link(from, to)
				if c.Contains(to) {
					continue
				}
				if _, ok := queued[to]; ok {
					continue
				}
				queued[to] = struct{}{}
				next = append(next, to)
			}
		}
		frontier = next
	}
	return c, nil
}

// expand returns the packages p reaches in one hop.
func (s *Session) expand(ctx context.Context, p Package, expandRanges bool) ([]Package, error) {
	deps, found, err := s.lookup(ctx, p.Name, p.Version)
	if err != nil || !found {
		return nil, err
	}

	out := make([]Package, 0, len(deps))
	for _, d := range deps {
		out = append(out, Package{Name: d.Name, Version: d.Spec})
	}
	if !expandRanges {
		return out, nil
	}

	versions, err := s.Versions(ctx, p.Name)
	if err != nil {
		return nil, err
	}
	for _, v := range version.Filter(p.Version, versions) {
		out = append(out, Package{Name: p.Name, Version: v})
	}
	return out, nil
}
