package lockfile

import (
	"bufio"
	"cmp"
	"io"
	"slices"
	"strings"

	"github.com/matzehuels/minbump/pkg/errors"
)

// Entry is one resolved package in a lockfile.
type Entry struct {
	Name         string
	Version      string
	Patterns     []string          // header patterns, e.g. "qs@~6.5.0"
	Dependencies map[string]string // name -> range, including optionalDependencies
}

// Ref returns "name@version".
func (e *Entry) Ref() string { return e.Name + "@" + e.Version }

// Lockfile is a parsed yarn.lock.
type Lockfile struct {
	Entries  []*Entry
	patterns map[string]*Entry
}

// Parse reads a yarn.lock v1 file.
func Parse(r io.Reader) (*Lockfile, error) {
	lf := &Lockfile{patterns: make(map[string]*Entry)}

	var (
		cur     *Entry
		section string
		lineNo  int
	)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lineNo++
		raw := strings.TrimRight(sc.Text(), " \t\r")
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		switch indent := len(raw) - len(strings.TrimLeft(raw, " ")); {
		case indent == 0:
			if !strings.HasSuffix(trimmed, ":") {
				return nil, errors.New(errors.ErrCodeInvalidLockfile, "line %d: expected entry header, got %q", lineNo, trimmed)
			}
			cur = &Entry{Dependencies: map[string]string{}}
			section = ""
			for _, p := range strings.Split(strings.TrimSuffix(trimmed, ":"), ",") {
				p = unquote(strings.TrimSpace(p))
				if p == "" {
					continue
				}
				name, ok := patternName(p)
				if !ok {
					return nil, errors.New(errors.ErrCodeInvalidLockfile, "line %d: invalid pattern %q", lineNo, p)
				}
				if cur.Name == "" {
					cur.Name = name
				}
				cur.Patterns = append(cur.Patterns, p)
				lf.patterns[p] = cur
			}
			if cur.Name == "" {
				return nil, errors.New(errors.ErrCodeInvalidLockfile, "line %d: empty entry header", lineNo)
			}
			lf.Entries = append(lf.Entries, cur)

		case cur == nil:
			return nil, errors.New(errors.ErrCodeInvalidLockfile, "line %d: field outside of an entry", lineNo)

		case indent <= 2:
			key, value := splitField(trimmed)
			section = ""
			switch {
			case strings.HasSuffix(key, ":") && value == "":
				section = strings.TrimSuffix(key, ":")
			case key == "version":
				cur.Version = value
			}

		default:
			if section != "dependencies" && section != "optionalDependencies" {
				continue
			}
			name, spec := splitField(trimmed)
			cur.Dependencies[name] = spec
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidLockfile, err, "read lockfile")
	}

	for _, e := range lf.Entries {
		if e.Version == "" {
			return nil, errors.New(errors.ErrCodeInvalidLockfile, "entry %s has no version", e.Patterns[0])
		}
	}
	return lf, nil
}

// Lookup returns the entry satisfying pattern ("name@range").
func (lf *Lockfile) Lookup(pattern string) (*Entry, bool) {
	e, ok := lf.patterns[pattern]
	return e, ok
}

// Dependents returns "name@version" for every root whose locked dependency
// closure contains target, sorted by name. A root is either "name@range"
// (as read from package.json) or a bare name matching every entry of that
// name. With no roots, every entry that no other entry depends on is a root.
// The target itself is never reported.
func (lf *Lockfile) Dependents(target string, roots []string) []string {
	var starts []*Entry
	if len(roots) == 0 {
		starts = lf.topLevel()
	} else {
		for _, r := range roots {
			starts = append(starts, lf.resolveRoot(r)...)
		}
	}

	seen := make(map[*Entry]bool)
	var out []*Entry
	for _, e := range starts {
		if e.Name == target || seen[e] {
			continue
		}
		seen[e] = true
		if lf.reaches(e, target) {
			out = append(out, e)
		}
	}

	slices.SortFunc(out, func(a, b *Entry) int {
		return cmp.Or(strings.Compare(a.Name, b.Name), strings.Compare(a.Version, b.Version))
	})
	refs := make([]string, len(out))
	for i, e := range out {
		refs[i] = e.Ref()
	}
	return refs
}

func (lf *Lockfile) resolveRoot(root string) []*Entry {
	if e, ok := lf.patterns[root]; ok {
		return []*Entry{e}
	}
	var out []*Entry
	for _, e := range lf.Entries {
		if e.Name == root {
			out = append(out, e)
		}
	}
	return out
}

// topLevel returns entries no other entry depends on, in file order.
func (lf *Lockfile) topLevel() []*Entry {
	depended := make(map[*Entry]bool)
	for _, e := range lf.Entries {
		for name, spec := range e.Dependencies {
			if d, ok := lf.patterns[name+"@"+spec]; ok && d != e {
				depended[d] = true
			}
		}
	}
	var out []*Entry
	for _, e := range lf.Entries {
		if !depended[e] {
			out = append(out, e)
		}
	}
	return out
}

// reaches reports whether target is a transitive dependency of from.
func (lf *Lockfile) reaches(from *Entry, target string) bool {
	visited := map[*Entry]bool{from: true}
	stack := []*Entry{from}
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for name, spec := range e.Dependencies {
			if name == target {
				return true
			}
			d, ok := lf.patterns[name+"@"+spec]
			if !ok || visited[d] {
				continue
			}
			visited[d] = true
			stack = append(stack, d)
		}
	}
	return false
}

// ParseRef splits "name@version" at the last '@', so scoped names such as
// "@babel/core@7.0.0" keep their leading '@'.
func ParseRef(ref string) (name, version string, err error) {
	ref = strings.TrimSpace(ref)
	i := strings.LastIndex(ref, "@")
	if i <= 0 || i == len(ref)-1 {
		return "", "", errors.New(errors.ErrCodeInvalidInput, "invalid package reference %q (want name@version)", ref)
	}
	return ref[:i], ref[i+1:], nil
}

// patternName returns the package name of a header pattern. Ranges may
// contain '@' themselves (git URLs, npm: aliases), so the name ends at the
// first '@' after an optional scope prefix.
func patternName(p string) (string, bool) {
	if len(p) < 2 {
		return "", false
	}
	i := strings.Index(p[1:], "@")
	if i < 0 {
		return "", false
	}
	return p[:i+1], true
}

// splitField splits `key "value"` or `key value`, unquoting both parts.
func splitField(s string) (key, value string) {
	if strings.HasPrefix(s, `"`) {
		if end := strings.Index(s[1:], `"`); end >= 0 {
			return s[1 : end+1], unquote(strings.TrimSpace(s[end+2:]))
		}
	}
	key, value, _ = strings.Cut(s, " ")
	return unquote(key), unquote(strings.TrimSpace(value))
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
