package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/minbump/pkg/observability"
)

// traceHooks logs registry traffic and cache lookups at debug level.
// Probes are already traced through resolve.Options.Logger.
type traceHooks struct {
	observability.NoopResolveHooks
	logger *log.Logger
}

func (h traceHooks) OnFetch(_ context.Context, pkg string, releases int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("fetch failed", "package", pkg, "err", err)
		return
	}
	h.logger.Debug("fetched", "package", pkg, "releases", releases, "took", d.Round(time.Millisecond))
}

func (h traceHooks) OnCacheHit(_ context.Context, ns string) {
	h.logger.Debug("cache hit", "ns", ns)
}

func (h traceHooks) OnCacheMiss(_ context.Context, ns string) {
	h.logger.Debug("cache miss", "ns", ns)
}

func (h traceHooks) OnCacheSet(context.Context, string, int) {}

func (h traceHooks) OnRequest(context.Context, string, string, string) {}

func (h traceHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("registry", "method", method, "url", host+path, "status", status, "took", d.Round(time.Millisecond))
}

func (h traceHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("registry", "method", method, "url", host+path, "err", err)
}

// registerTraceHooks installs traceHooks when debug logging is on.
func (c *CLI) registerTraceHooks() {
	if c.Logger.GetLevel() > log.DebugLevel {
		return
	}
	h := traceHooks{logger: c.Logger}
	observability.Register(observability.Hooks{Resolve: h, Cache: h, HTTP: h})
}
