package lockfile

import (
	"encoding/json"
	"os"
	"slices"

	"github.com/matzehuels/minbump/pkg/errors"
)

type manifest struct {
	Dependencies         map[string]string `json:"dependencies"`
	DevDependencies      map[string]string `json:"devDependencies"`
	OptionalDependencies map[string]string `json:"optionalDependencies"`
}

// ReadManifestRoots returns the project's direct dependencies from a
// package.json as "name@range" patterns, sorted. Patterns match yarn.lock
// headers, so they can be passed straight to [Lockfile.Dependents].
func ReadManifestRoots(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", path)
		}
		return nil, err
	}
	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse %s", path)
	}

	var roots []string
	for _, deps := range []map[string]string{m.Dependencies, m.DevDependencies, m.OptionalDependencies} {
		for name, spec := range deps {
			roots = append(roots, name+"@"+spec)
		}
	}
	slices.Sort(roots)
	return slices.Compact(roots), nil
}

// ReadFile parses the yarn.lock at path.
func ReadFile(path string) (*Lockfile, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}
