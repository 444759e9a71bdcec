// Package npm provides an HTTP client for the npm registry API.
//
// # Overview
//
// [Client] fetches full package documents ("packuments") from
// https://registry.npmjs.org, or any compatible mirror set with
// [Client.WithBaseURL], and turns them into [registry.Release] values: one
// per published version, each carrying its runtime "dependencies".
// devDependencies, peerDependencies and optionalDependencies are ignored.
//
// # Usage
//
//	client := npm.NewClient(fileCache, 24*time.Hour)
//	releases, err := client.Fetch(ctx, "@babel/core")
//
// # Missing packages
//
// A 404 is not an error: the package simply has no releases, which the
// resolver treats as an unresolvable package.
//
// # Caching
//
// Decoded releases are cached under http:npm:<name> for the TTL given to
// [NewClient]. Set [Client.Refresh] or call [Client.FetchReleases] with
// refresh=true to bypass the cache.
//
// [registry.Release]: github.com/matzehuels/minbump/pkg/registry.Release
package npm
