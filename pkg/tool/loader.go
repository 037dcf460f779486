package tool

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/choreolab/choreo/pkg/telemetry"
)

const defaultCacheTTL = 300 * time.Second

// Discoverer produces tool descriptors from one external source, typically
// a set of MCP servers. A failing discoverer is skipped; it never blocks
// tools contributed by the others.
type Discoverer interface {
	Discover(ctx context.Context) ([]Descriptor, error)
}

// BuiltinSource supplies the builtin tool IDs to expose. The source decides
// where they come from (registry, config, fixed default).
type BuiltinSource func(ctx context.Context) []string

// LoaderOption customizes the Loader.
type LoaderOption func(*Loader)

// WithTTL sets the cache TTL. Use 0 to disable caching.
func WithTTL(ttl time.Duration) LoaderOption {
	return func(l *Loader) {
		if ttl >= 0 {
			l.ttl = ttl
		}
	}
}

// WithClock injects the clock used for TTL decisions.
func WithClock(now func() time.Time) LoaderOption {
	return func(l *Loader) {
		if now != nil {
			l.now = now
		}
	}
}

// WithBuiltinSource sets the builtin tool ID supplier.
func WithBuiltinSource(source BuiltinSource) LoaderOption {
	return func(l *Loader) {
		l.builtins = source
	}
}

// WithMetrics attaches orchestration metrics to cache lookups.
func WithMetrics(m *telemetry.OrchestrationMetrics) LoaderOption {
	return func(l *Loader) {
		l.metrics = m
	}
}

// Loader discovers tools and caches the merged result process-wide. The
// cache entry is replaced atomically and guarded by a mutex on the refresh
// path only: fresh reads never contend, and concurrent cache-miss callers
// collapse into a single discovery run.
type Loader struct {
	ttl         time.Duration
	now         func() time.Time
	builtins    BuiltinSource
	discoverers []Discoverer
	metrics     *telemetry.OrchestrationMetrics

	mu    sync.Mutex
	cache atomic.Pointer[cacheEntry]
}

type cacheEntry struct {
	tools     []Descriptor
	fetchedAt time.Time
}

// NewLoader creates a Loader over the given discoverers.
func NewLoader(discoverers []Discoverer, opts ...LoaderOption) *Loader {
	l := &Loader{
		ttl:         defaultCacheTTL,
		now:         time.Now,
		discoverers: discoverers,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadTools returns the cached descriptor set, refreshing it when stale.
// It never fails: total discovery failure degrades to an empty list.
func (l *Loader) LoadTools(ctx context.Context) []Descriptor {
	if entry := l.fresh(); entry != nil {
		l.metrics.RecordCacheLookup(ctx, true)
		return copyDescriptors(entry.tools)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Re-check after acquiring the lock: another caller may have refreshed
	// while this one waited.
	if entry := l.fresh(); entry != nil {
		l.metrics.RecordCacheLookup(ctx, true)
		return copyDescriptors(entry.tools)
	}

	l.metrics.RecordCacheLookup(ctx, false)
	tools := l.discover(ctx)
	l.cache.Store(&cacheEntry{tools: tools, fetchedAt: l.now()})
	return copyDescriptors(tools)
}

// Invalidate drops the cache entry, forcing discovery on the next load.
func (l *Loader) Invalidate() {
	l.cache.Store(nil)
}

func (l *Loader) fresh() *cacheEntry {
	if l.ttl <= 0 {
		return nil
	}
	entry := l.cache.Load()
	if entry == nil || l.now().Sub(entry.fetchedAt) >= l.ttl {
		return nil
	}
	return entry
}

func (l *Loader) discover(ctx context.Context) []Descriptor {
	all := []Descriptor{}
	if l.builtins != nil {
		all = append(all, Builtins(l.builtins(ctx))...)
	}
	for _, d := range l.discoverers {
		tools, err := d.Discover(ctx)
		if err != nil {
			slog.WarnContext(ctx, "tool discovery source failed, skipping", "error", err)
			continue
		}
		all = append(all, tools...)
	}
	slog.InfoContext(ctx, "tool discovery complete", "count", len(all))
	return all
}

func copyDescriptors(in []Descriptor) []Descriptor {
	out := make([]Descriptor, len(in))
	copy(out, in)
	return out
}
