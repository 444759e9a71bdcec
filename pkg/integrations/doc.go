// Package integrations provides the shared HTTP client for package registry APIs.
//
// Registry-specific clients live in subpackages ([npm]) and embed [Client],
// which handles:
//   - JSON GET requests with default and per-request headers
//   - response caching through a [cache.Cache] with a TTL
//   - optional retries of transient failures via [httputil.Retry]
//   - request and cache events reported to [observability] hooks
//
// Status codes are classified once here: 404 becomes [ErrNotFound], 429 and
// 5xx become retryable [ErrNetwork] errors, anything else is a permanent
// [ErrNetwork].
//
// [npm]: github.com/matzehuels/minbump/pkg/integrations/npm
// [cache.Cache]: github.com/matzehuels/minbump/pkg/cache.Cache
// [httputil.Retry]: github.com/matzehuels/minbump/pkg/httputil.Retry
// [observability]: github.com/matzehuels/minbump/pkg/observability
package integrations
