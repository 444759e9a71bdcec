// Package observability carries resolver, cache and registry-transport
// events to whatever the binary registers: the API's counters, the CLI's
// debug log, or nothing. The defaults are no-ops.
//
// Binaries register a [Hooks] set at startup, optionally chained with the
// one already in place:
//
//	observability.Register(observability.Chain(observability.Current(), metrics.Hooks()))
//
// Libraries emit through the accessors:
//
//	start := time.Now()
//	releases, err := fetcher.Fetch(ctx, name)
//	observability.Resolve().OnFetch(ctx, name, len(releases), time.Since(start), err)
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// ResolveHooks receives events from the minimal-update resolver.
type ResolveHooks interface {
	// OnFetch records one registry round-trip for a package.
	OnFetch(ctx context.Context, pkg string, releases int, duration time.Duration, err error)
	// OnBadPackage records a package being marked unresolvable.
	OnBadPackage(ctx context.Context, pkg string)
	// OnProbe records one candidate evaluation during the version search.
	OnProbe(ctx context.Context, root, version string, accepted bool, closureSize int, duration time.Duration)
	// OnBatch records a finished batch of root resolutions.
	OnBatch(ctx context.Context, roots int, duration time.Duration, err error)
}

// CacheHooks receives persistent-cache lookups, keyed by namespace ("npm").
type CacheHooks interface {
	OnCacheHit(ctx context.Context, namespace string)
	OnCacheMiss(ctx context.Context, namespace string)
	OnCacheSet(ctx context.Context, namespace string, size int)
}

// HTTPHooks receives registry requests.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	// OnError records a transport failure; error statuses go to OnResponse.
	OnError(ctx context.Context, method, host, path string, err error)
}

type NoopResolveHooks struct{}

func (NoopResolveHooks) OnFetch(context.Context, string, int, time.Duration, error)        {}
func (NoopResolveHooks) OnBadPackage(context.Context, string)                              {}
func (NoopResolveHooks) OnProbe(context.Context, string, string, bool, int, time.Duration) {}
func (NoopResolveHooks) OnBatch(context.Context, int, time.Duration, error)                {}

type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// Hooks is one registered set. Nil fields mean "keep what is registered".
type Hooks struct {
	Resolve ResolveHooks
	Cache   CacheHooks
	HTTP    HTTPHooks
}

func noop() *Hooks {
	return &Hooks{Resolve: NoopResolveHooks{}, Cache: NoopCacheHooks{}, HTTP: NoopHTTPHooks{}}
}

var current atomic.Pointer[Hooks]

func init() { current.Store(noop()) }

// Register installs h. Call it at startup, before resolution begins.
func Register(h Hooks) {
	next := *current.Load()
	if h.Resolve != nil {
		next.Resolve = h.Resolve
	}
	if h.Cache != nil {
		next.Cache = h.Cache
	}
	if h.HTTP != nil {
		next.HTTP = h.HTTP
	}
	current.Store(&next)
}

// Current returns the registered set with every field filled.
func Current() Hooks { return *current.Load() }

// Reset restores the no-op defaults.
func Reset() { current.Store(noop()) }

func Resolve() ResolveHooks { return current.Load().Resolve }
func Cache() CacheHooks     { return current.Load().Cache }
func HTTP() HTTPHooks       { return current.Load().HTTP }

// Chain returns a set that delivers every event to each of sets in order.
// Nil fields are skipped.
func Chain(sets ...Hooks) Hooks {
	var (
		r resolveChain
		c cacheChain
		h httpChain
	)
	for _, s := range sets {
		if s.Resolve != nil {
			r = append(r, s.Resolve)
		}
		if s.Cache != nil {
			c = append(c, s.Cache)
		}
		if s.HTTP != nil {
			h = append(h, s.HTTP)
		}
	}
	return Hooks{Resolve: r, Cache: c, HTTP: h}
}

type resolveChain []ResolveHooks

func (ch resolveChain) OnFetch(ctx context.Context, pkg string, releases int, d time.Duration, err error) {
	for _, h := range ch {
		h.OnFetch(ctx, pkg, releases, d, err)
	}
}

func (ch resolveChain) OnBadPackage(ctx context.Context, pkg string) {
	for _, h := range ch {
		h.OnBadPackage(ctx, pkg)
	}
}

func (ch resolveChain) OnProbe(ctx context.Context, root, version string, accepted bool, size int, d time.Duration) {
	for _, h := range ch {
		h.OnProbe(ctx, root, version, accepted, size, d)
	}
}

func (ch resolveChain) OnBatch(ctx context.Context, roots int, d time.Duration, err error) {
	for _, h := range ch {
		h.OnBatch(ctx, roots, d, err)
	}
}

type cacheChain []CacheHooks

func (ch cacheChain) OnCacheHit(ctx context.Context, ns string) {
	for _, h := range ch {
		h.OnCacheHit(ctx, ns)
	}
}

func (ch cacheChain) OnCacheMiss(ctx context.Context, ns string) {
	for _, h := range ch {
		h.OnCacheMiss(ctx, ns)
	}
}

func (ch cacheChain) OnCacheSet(ctx context.Context, ns string, size int) {
	for _, h := range ch {
		h.OnCacheSet(ctx, ns, size)
	}
}

type httpChain []HTTPHooks

func (ch httpChain) OnRequest(ctx context.Context, method, host, path string) {
	for _, h := range ch {
		h.OnRequest(ctx, method, host, path)
	}
}

func (ch httpChain) OnResponse(ctx context.Context, method, host, path string, status int, d time.Duration) {
	for _, h := range ch {
		h.OnResponse(ctx, method, host, path, status, d)
	}
}

func (ch httpChain) OnError(ctx context.Context, method, host, path string, err error) {
	for _, h := range ch {
		h.OnError(ctx, method, host, path, err)
	}
}
