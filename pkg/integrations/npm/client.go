package npm

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/minbump/pkg/buildinfo"
	"github.com/matzehuels/minbump/pkg/cache"
	"github.com/matzehuels/minbump/pkg/integrations"
	"github.com/matzehuels/minbump/pkg/registry"
	"github.com/matzehuels/minbump/pkg/version"
)

// DefaultBaseURL is the public npm registry.
const DefaultBaseURL = "https://registry.npmjs.org"

// Client fetches package documents from an npm-compatible registry.
// It implements [registry.Fetcher].
type Client struct {
	*integrations.Client
	baseURL string

	// Refresh makes Fetch bypass the response cache.
	Refresh bool
}

// NewClient creates a client for the public registry that caches responses
// in c for ttl. A nil cache disables caching.
func NewClient(c cache.Cache, ttl time.Duration) *Client {
	headers := map[string]string{
		"Accept":     "application/json",
		"User-Agent": buildinfo.UserAgent(),
	}
	return &Client{
		Client:  integrations.NewClient(c, "npm", ttl, headers),
		baseURL: DefaultBaseURL,
	}
}

// WithBaseURL points the client at another registry (a mirror or a test server).
func (c *Client) WithBaseURL(base string) *Client {
	if base != "" {
		c.baseURL = strings.TrimRight(base, "/")
	}
	return c
}

// BaseURL returns the registry the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// Fetch returns every published release of name with its runtime
// dependencies. An unknown package yields an empty slice.
func (c *Client) Fetch(ctx context.Context, name string) ([]registry.Release, error) {
	return c.FetchReleases(ctx, name, c.Refresh)
}

// FetchReleases is Fetch with an explicit cache bypass.
func (c *Client) FetchReleases(ctx context.Context, name string, refresh bool) ([]registry.Release, error) {
	name = strings.TrimSpace(name)
	releases := []registry.Release{}
	err := c.Cached(ctx, name, refresh, &releases, func() error {
		var doc packument
		if err := c.Get(ctx, c.packageURL(name), &doc); err != nil {
			if errors.Is(err, integrations.ErrNotFound) {
				releases = []registry.Release{}
				return nil
			}
			return err
		}
		releases = doc.releases()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return releases, nil
}

// packageURL escapes the scope separator so "@babel/core" becomes "@babel%2Fcore".
func (c *Client) packageURL(name string) string {
	return c.baseURL + "/" + url.PathEscape(name)
}

// packument is the subset of an npm package document the resolver needs.
type packument struct {
	Name     string                    `json:"name"`
	Versions map[string]versionDetails `json:"versions"`
}

type versionDetails struct {
	// Some very old documents carry an array or string here, so decoding is deferred.
	Dependencies json.RawMessage `json:"dependencies"`
}

func (p packument) releases() []registry.Release {
	out := make([]registry.Release, 0, len(p.Versions))
	for v, details := range p.Versions {
		out = append(out, registry.Release{
			Version:      v,
			Dependencies: details.dependencies(),
		})
	}
	slices.SortFunc(out, func(a, b registry.Release) int {
		return version.Compare(a.Version, b.Version)
	})
	return out
}

func (d versionDetails) dependencies() []registry.DependencySpec {
	var m map[string]string
	if len(d.Dependencies) == 0 || json.Unmarshal(d.Dependencies, &m) != nil {
		return nil
	}
	deps := make([]registry.DependencySpec, 0, len(m))
	for name, spec := range m {
		deps = append(deps, registry.Dep(name, spec))
	}
	slices.SortFunc(deps, func(a, b registry.DependencySpec) int {
		return strings.Compare(a.Name, b.Name)
	})
	return deps
}

var _ registry.Fetcher = (*Client)(nil)
