// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about facet layout, linkage computation, rendering, and
// cache operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPlotHooks(&myPlotHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Plot().OnLinkageStart(ctx, axis, n)
//	// ... compute linkage ...
//	observability.Plot().OnLinkageComplete(ctx, axis, n, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Plot Hooks
// =============================================================================

// PlotHooks receives events from the plotting pipeline.
type PlotHooks interface {
	// Facet events
	OnFacetStart(ctx context.Context, rows, cols, hues int)
	OnFacetComplete(ctx context.Context, subsets int, duration time.Duration, err error)

	// Linkage events
	OnLinkageStart(ctx context.Context, axis string, items int)
	OnLinkageComplete(ctx context.Context, axis string, items int, duration time.Duration, err error)

	// Render events
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPlotHooks is a no-op implementation of PlotHooks.
type NoopPlotHooks struct{}

func (NoopPlotHooks) OnFacetStart(context.Context, int, int, int)                        {}
func (NoopPlotHooks) OnFacetComplete(context.Context, int, time.Duration, error)         {}
func (NoopPlotHooks) OnLinkageStart(context.Context, string, int)                        {}
func (NoopPlotHooks) OnLinkageComplete(context.Context, string, int, time.Duration, error) {
}
func (NoopPlotHooks) OnRenderStart(context.Context, []string)                          {}
func (NoopPlotHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	plotHooks  PlotHooks  = NoopPlotHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	hooksMu    sync.RWMutex
)

// SetPlotHooks registers custom plot hooks.
// This should be called once at application startup before any plotting operations.
func SetPlotHooks(h PlotHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		plotHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Plot returns the registered plot hooks.
func Plot() PlotHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return plotHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	plotHooks = NoopPlotHooks{}
	cacheHooks = NoopCacheHooks{}
}
