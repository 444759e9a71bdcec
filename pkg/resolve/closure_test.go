package resolve

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/minbump/pkg/registry"
)

func members(c *Closure) []string {
	out := make([]string, 0, c.Len())
	for _, p := range c.Members {
		out = append(out, p.String())
	}
	slices.Sort(out)
	return out
}

func TestClosureTransitive(t *testing.T) {
	reg := registry.NewStatic().
		Add("app", "1.0.0", registry.Dep("web", "^2.0.0"), registry.Dep("log", "1.0.0")).
		Add("web", "2.1.0", registry.Dep("log", "^1.0.0"), registry.Dep("qs", "~6.5.0")).
		Add("log", "1.0.0").
		Add("log", "1.3.0").
		Add("qs", "6.5.2")
	s := NewSession(reg, Options{})

	c, err := s.Closure(context.Background(), "app", "1.0.0", false)
	if err != nil {
		t.Fatalf("Closure() error: %v", err)
	}

	want := []string{"app@1.0.0", "log@1.0.0", "log@^1.0.0", "qs@~6.5.0", "web@^2.0.0"}
	if got := members(c); !slices.Equal(got, want) {
		t.Errorf("Closure() members = %v, want %v", got, want)
	}
	if c.Members[0] != (Package{Name: "app", Version: "1.0.0"}) {
		t.Errorf("first member = %v, want the root", c.Members[0])
	}
	if !c.Contains(c.Root) {
		t.Error("closure does not contain its root")
	}
	if got := len(c.Occurrences("log")); got != 2 {
		t.Errorf("Occurrences(log) = %d, want 2", got)
	}
}

func TestClosureIdempotent(t *testing.T) {
	s := NewSession(libRegistry(), Options{})
	ctx := context.Background()

	a, err := s.Closure(ctx, "lib", "1.1.0", true)
	if err != nil {
		t.Fatalf("Closure() error: %v", err)
	}
	b, err := s.Closure(ctx, "lib", "1.1.0", true)
	if err != nil {
		t.Fatalf("Closure() error: %v", err)
	}
	if !slices.Equal(members(a), members(b)) {
		t.Errorf("Closure() not idempotent: %v vs %v", members(a), members(b))
	}
}

func TestClosureNoDuplicates(t *testing.T) {
	reg := registry.NewStatic().
		Add("root", "1.0.0", registry.Dep("a", "1.0.0"), registry.Dep("b", "1.0.0")).
		Add("a", "1.0.0", registry.Dep("shared", "^1.0.0")).
		Add("b", "1.0.0", registry.Dep("shared", "^1.0.0")).
		Add("shared", "1.0.0")
	s := NewSession(reg, Options{})

	c, err := s.Closure(context.Background(), "root", "1.0.0", false)
	if err != nil {
		t.Fatalf("Closure() error: %v", err)
	}
	seen := make(map[Package]bool)
	for _, p := range c.Members {
		if seen[p] {
			t.Errorf("duplicate member %s", p)
		}
		seen[p] = true
	}
	if c.Len() != 4 {
		t.Errorf("Len() = %d, want 4", c.Len())
	}
}

func TestClosureCycle(t *testing.T) {
	reg := registry.NewStatic().
		Add("a", "1.0.0", registry.Dep("b", "1.0.0")).
		Add("b", "1.0.0", registry.Dep("c", "1.0.0")).
		Add("c", "1.0.0", registry.Dep("a", "1.0.0"))
	s := NewSession(reg, Options{})

	c, err := s.Closure(context.Background(), "a", "1.0.0", true)
	if err != nil {
		t.Fatalf("Closure() error: %v", err)
	}
	want := []string{"a@1.0.0", "b@1.0.0", "c@1.0.0"}
	if got := members(c); !slices.Equal(got, want) {
		t.Errorf("Closure() members = %v, want %v", got, want)
	}
}

func TestClosureBadAndMissingPackages(t *testing.T) {
	reg := registry.NewStatic().
		Add("root", "1.0.0", registry.Dep("ghost", "^1.0.0"), registry.Dep("gap", "3.0.0")).
		Add("gap", "1.0.0", registry.Dep("never", "1.0.0"))
	s := NewSession(reg, Options{})

	c, err := s.Closure(context.Background(), "root", "1.0.0", true)
	if err != nil {
		t.Fatalf("Closure() error: %v", err)
	}
	want := []string{"gap@3.0.0", "ghost@^1.0.0", "root@1.0.0"}
	if got := members(c); !slices.Equal(got, want) {
		t.Errorf("Closure() members = %v, want %v", got, want)
	}
	if !s.IsBad("ghost") {
		t.Error("ghost should be marked bad")
	}
	if reg.Calls("never") != 0 {
		t.Error("dependencies of an unpublished version must not be followed")
	}
}

func TestClosureRangeExpansion(t *testing.T) {
	reg := registry.NewStatic().
		Add("app", "1.0.0", registry.Dep("mid", "^1.0.0")).
		Add("mid", "1.0.0", registry.Dep("leaf", "1.0.0")).
		Add("mid", "1.5.0", registry.Dep("leaf", "2.0.0")).
		Add("mid", "2.0.0", registry.Dep("leaf", "3.0.0")).
		Add("leaf", "1.0.0").
		Add("leaf", "2.0.0").
		Add("leaf", "3.0.0")
	s := NewSession(reg, Options{})
	ctx := context.Background()

	plain, err := s.Closure(ctx, "app", "1.0.0", false)
	if err != nil {
		t.Fatalf("Closure() error: %v", err)
	}
	if got, want := members(plain), []string{"app@1.0.0", "leaf@1.0.0", "mid@^1.0.0"}; !slices.Equal(got, want) {
		t.Errorf("plain members = %v, want %v", got, want)
	}

	expanded, err := s.Closure(ctx, "app", "1.0.0", true)
	if err != nil {
		t.Fatalf("Closure() error: %v", err)
	}
	want := []string{
		"app@1.0.0",
		"leaf@1.0.0", "leaf@2.0.0",
		"mid@1.0.0", "mid@1.5.0", "mid@^1.0.0",
	}
	if got := members(expanded); !slices.Equal(got, want) {
		t.Errorf("expanded members = %v, want %v", got, want)
	}
	for _, p := range expanded.Members {
		if p.Name == "mid" && p.Version == "2.0.0" {
			t.Error("expansion must stay within the specifier's range")
		}
	}
}

func TestClosureEdges(t *testing.T) {
	s := NewSession(libRegistry(), Options{})

	c, err := s.Closure(context.Background(), "lib", "1.0.0", false)
	if err != nil {
		t.Fatalf("Closure() error: %v", err)
	}
	if len(c.Edges) != 1 {
		t.Fatalf("Edges = %v, want one edge", c.Edges)
	}
	e := c.Edges[0]
	if e.From.String() != "lib@1.0.0" || e.To.String() != "core@^1.0.0" {
		t.Errorf("edge = %s -> %s", e.From, e.To)
	}
}

func TestClosureFetchError(t *testing.T) {
	boom := errors.New("registry unavailable")
	reg := libRegistry().Fail("core", boom)
	s := NewSession(reg, Options{})

	_, err := s.Closure(context.Background(), "lib", "1.0.0", false)
	if !errors.Is(err, boom) {
		t.Fatalf("Closure() error = %v, want %v", err, boom)
	}
	if !strings.Contains(err.Error(), "fetch core") {
		t.Errorf("error %q should name the package", err)
	}
}
