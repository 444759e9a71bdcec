// Package buildinfo holds version data stamped in at link time:
//
//	go build -ldflags "-X github.com/matzehuels/minbump/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/minbump/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/minbump/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package buildinfo

import "fmt"

// Unstamped builds report these defaults.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Template is the cobra version template used by `minbump --version`.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s (commit %s, built %s)\n", Version, Commit, Date)
}

// UserAgent identifies minbump to package registries and is sent on every
// packument request.
func UserAgent() string {
	return "minbump/" + Version + " (+https://github.com/matzehuels/minbump)"
}
