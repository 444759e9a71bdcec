// Package pkg provides the libraries behind minbump.
//
// # Overview
//
// minbump answers a single question for npm projects: when a transitive
// dependency must reach a required version, what is the lowest version of
// each dependent that pulls it in at or above that version? The pkg
// directory is organized into three areas:
//
//  1. [resolve] - Core search (metadata cache, closure, version search, batches)
//  2. [registry], [integrations/npm] - Package metadata sources
//  3. [cache], [httputil] - Infrastructure (persistent response cache, retry)
//
// # Architecture
//
// The typical data flow through minbump:
//
//	yarn.lock / name@version arguments
//	         ↓
//	    [lockfile] package (find dependents of the target)
//	         ↓
//	    [resolve] package (ListUpdate → MinNecessaryUpdate → Closure)
//	         ↓
//	    [integrations/npm] package (registry documents, cached)
//	         ↓
//	    per-dependent minimal version, or "no favourable outcome"
//
// # Quick Start
//
//	import (
//	    "context"
//	    "github.com/matzehuels/minbump/pkg/cache"
//	    "github.com/matzehuels/minbump/pkg/integrations/npm"
//	    "github.com/matzehuels/minbump/pkg/resolve"
//	)
//
//	client := npm.NewClient(cache.NewNullCache(), 0)
//	session := resolve.NewSession(client, resolve.Options{MaxConcurrency: 16})
//	results, err := session.ListUpdate(ctx, false, []resolve.Package{
//	    {Name: "mkdirp", Version: "0.5.1"},
//	}, "minimist", "1.2.6")
//
// # Supporting Packages
//
// [version] implements npm version precedence and range pinning. [lockfile]
// reads yarn.lock v1 files and package.json manifests. [render] draws a
// closure as Graphviz DOT or SVG. [errors] carries machine-readable error
// codes to the CLI and API. [observability] exposes hooks for registry
// fetches, search probes and cache access. [buildinfo] holds version data
// set at link time.
//
// [resolve]: https://pkg.go.dev/github.com/matzehuels/minbump/pkg/resolve
// [registry]: https://pkg.go.dev/github.com/matzehuels/minbump/pkg/registry
// [integrations/npm]: https://pkg.go.dev/github.com/matzehuels/minbump/pkg/integrations/npm
// [cache]: https://pkg.go.dev/github.com/matzehuels/minbump/pkg/cache
// [httputil]: https://pkg.go.dev/github.com/matzehuels/minbump/pkg/httputil
// [version]: https://pkg.go.dev/github.com/matzehuels/minbump/pkg/version
// [lockfile]: https://pkg.go.dev/github.com/matzehuels/minbump/pkg/lockfile
// [render]: https://pkg.go.dev/github.com/matzehuels/minbump/pkg/render
// [errors]: https://pkg.go.dev/github.com/matzehuels/minbump/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/minbump/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/minbump/pkg/buildinfo
package pkg
