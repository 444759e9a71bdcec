package api

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/matzehuels/minbump/pkg/observability"
)

// Metrics counts resolver, cache and registry events. It implements the
// observability hook interfaces; register it with [Metrics.Register].
type Metrics struct {
	fetches     atomic.Int64
	fetchErrors atomic.Int64
	badPackages atomic.Int64
	probes      atomic.Int64
	batches     atomic.Int64

	cacheHits   atomic.Int64
	cacheMisses atomic.Int64
	cacheSets   atomic.Int64

	requests      atomic.Int64
	requestErrors atomic.Int64
}

// MetricsSnapshot is the JSON form of Metrics.
type MetricsSnapshot struct {
	Fetches       int64 `json:"fetches"`
	FetchErrors   int64 `json:"fetch_errors"`
	BadPackages   int64 `json:"bad_packages"`
	Probes        int64 `json:"probes"`
	Batches       int64 `json:"batches"`
	CacheHits     int64 `json:"cache_hits"`
	CacheMisses   int64 `json:"cache_misses"`
	CacheSets     int64 `json:"cache_sets"`
	Requests      int64 `json:"registry_requests"`
	RequestErrors int64 `json:"registry_errors"`
}

// Hooks returns m as a full hook set.
func (m *Metrics) Hooks() observability.Hooks {
	return observability.Hooks{Resolve: m, Cache: m, HTTP: m}
}

// Register adds m to the process-wide hooks, after any already registered.
func (m *Metrics) Register() {
	observability.Register(observability.Chain(observability.Current(), m.Hooks()))
}

// Snapshot returns the current counts.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Fetches:       m.fetches.Load(),
		FetchErrors:   m.fetchErrors.Load(),
		BadPackages:   m.badPackages.Load(),
		Probes:        m.probes.Load(),
		Batches:       m.batches.Load(),
		CacheHits:     m.cacheHits.Load(),
		CacheMisses:   m.cacheMisses.Load(),
		CacheSets:     m.cacheSets.Load(),
		Requests:      m.requests.Load(),
		RequestErrors: m.requestErrors.Load(),
	}
}

func (m *Metrics) OnFetch(_ context.Context, _ string, _ int, _ time.Duration, err error) {
	m.fetches.Add(1)
	if err != nil {
		m.fetchErrors.Add(1)
	}
}

func (m *Metrics) OnBadPackage(context.Context, string) { m.badPackages.Add(1) }

func (m *Metrics) OnProbe(context.Context, string, string, bool, int, time.Duration) {
	m.probes.Add(1)
}

func (m *Metrics) OnBatch(context.Context, int, time.Duration, error) { m.batches.Add(1) }

func (m *Metrics) OnCacheHit(context.Context, string)      { m.cacheHits.Add(1) }
func (m *Metrics) OnCacheMiss(context.Context, string)     { m.cacheMisses.Add(1) }
func (m *Metrics) OnCacheSet(context.Context, string, int) { m.cacheSets.Add(1) }

func (m *Metrics) OnRequest(context.Context, string, string, string) { m.requests.Add(1) }

func (m *Metrics) OnResponse(context.Context, string, string, string, int, time.Duration) {}

func (m *Metrics) OnError(context.Context, string, string, string, error) {
	m.requestErrors.Add(1)
}

var (
	_ observability.ResolveHooks = (*Metrics)(nil)
	_ observability.CacheHooks   = (*Metrics)(nil)
	_ observability.HTTPHooks    = (*Metrics)(nil)
)
