// Package queries caches the results of remote booking-service calls and
// keeps dependent views consistent across mutations. Results are addressed
// by structured keys, reused within a staleness window, coalesced while in
// flight and invalidated by prefix when a mutation succeeds.
package queries

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// FetchFunc performs the remote call backing one cache key.
type FetchFunc func(ctx context.Context) (any, error)

type entry struct {
	key       Key
	value     any
	err       error
	fetchedAt time.Time
	stale     bool
}

// fresh reports whether the entry may be served without a remote call.
// A zero staleTime means the entry stays fresh until invalidated.
func (e *entry) fresh(now time.Time, staleTime time.Duration) bool {
	if e.err != nil || e.stale {
		return false
	}
	if staleTime > 0 && now.Sub(e.fetchedAt) >= staleTime {
		return false
	}
	return true
}

// Engine is the process-wide query cache. Every entry is replaced
// atomically on settlement of exactly one call; per-key generations
// detect results that settle after an invalidation superseded them.
type Engine struct {
	mu      sync.Mutex
	entries map[string]*entry
	keys    map[string]Key
	gens    map[string]uint64
	subs    map[*Subscription]struct{}
	flight  singleflight.Group
	now     func() time.Time
}

type EngineOption func(*Engine)

// WithClock overrides the staleness clock, for tests.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		entries: make(map[string]*entry),
		keys:    make(map[string]Key),
		gens:    make(map[string]uint64),
		subs:    make(map[*Subscription]struct{}),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Fetch returns the cached value for key when fresh, otherwise issues fn
// once and stores its result. Concurrent fetches for the same key coalesce
// onto a single in-flight call. Failures are cached as the key's state but
// never served as fresh, so the next access retries; nothing retries in
// the background.
func (e *Engine) Fetch(ctx context.Context, key Key, staleTime time.Duration, fn FetchFunc) (any, error) {
	return e.fetch(ctx, key, staleTime, fn, nil)
}

func (e *Engine) fetch(ctx context.Context, key Key, staleTime time.Duration, fn FetchFunc, guard func() bool) (any, error) {
	id := key.id()

	e.mu.Lock()
	if ent, ok := e.entries[id]; ok && ent.fresh(e.now(), staleTime) {
		value := ent.value
		e.mu.Unlock()
		return value, nil
	}
	// Register the key before the call goes out, so an invalidation that
	// lands while the very first fetch is in flight still moves its
	// generation and the settled result cannot be applied as fresh.
	e.keys[id] = key
	gen := e.gens[id]
	e.mu.Unlock()

	// The call outlives any single waiter: coalesced callers may still
	// want the result after the first caller's context is canceled.
	callCtx := context.WithoutCancel(ctx)
	ch := e.flight.DoChan(id, func() (any, error) {
		value, err := fn(callCtx)
		e.apply(key, gen, guard, value, err)
		return value, err
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}

// apply stores a settled result. Results whose key generation moved on
// (invalidated or written through while in flight) keep their data but
// stay stale; results whose guard no longer holds are dropped entirely.
func (e *Engine) apply(key Key, gen uint64, guard func() bool, value any, err error) {
	id := key.id()

	e.mu.Lock()
	if guard != nil && !guard() {
		e.mu.Unlock()
		return
	}
	ent := &entry{key: key, value: value, err: err, fetchedAt: e.now()}
	if e.gens[id] != gen {
		if err != nil {
			e.mu.Unlock()
			return
		}
		ent.stale = true
	}
	e.entries[id] = ent
	e.mu.Unlock()

	e.notify(key)
}

// SetData writes a value straight into the cache, superseding any call
// still in flight for the key. Used by mutations that already hold the
// authoritative result.
func (e *Engine) SetData(key Key, value any) {
	id := key.id()

	e.mu.Lock()
	e.keys[id] = key
	e.gens[id]++
	e.entries[id] = &entry{key: key, value: value, fetchedAt: e.now()}
	e.mu.Unlock()

	e.notify(key)
}

// InvalidatePrefix marks every entry whose key begins with prefix as
// stale and supersedes any matching call still in flight. Cached data
// remains visible until the refetch settles.
func (e *Engine) InvalidatePrefix(prefix Key) {
	e.mu.Lock()
	var affected []Key
	for id, key := range e.keys {
		if key.HasPrefix(prefix) {
			e.gens[id]++
			if ent, ok := e.entries[id]; ok {
				ent.stale = true
			}
			affected = append(affected, key)
		}
	}
	e.mu.Unlock()

	for _, key := range affected {
		e.notify(key)
	}
}

// Refetch bypasses the cache for key: the entry is invalidated and a new
// call issued. This is the manual-refresh affordance; it is the only way
// a failed or fresh entry gets re-requested ahead of its window.
func (e *Engine) Refetch(ctx context.Context, key Key, fn FetchFunc) (any, error) {
	e.mu.Lock()
	id := key.id()
	e.gens[id]++
	if ent, ok := e.entries[id]; ok {
		ent.stale = true
	}
	e.mu.Unlock()

	return e.fetch(ctx, key, 0, fn, nil)
}

// needsRefresh reports whether an enabled subscription should trigger a
// fetch: the key has never settled or was invalidated. A settled failure
// does not qualify; failed queries are only retried explicitly.
func (e *Engine) needsRefresh(key Key) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	ent, ok := e.entries[key.id()]
	return !ok || ent.stale
}

func (e *Engine) freshFor(key Key, staleTime time.Duration) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	ent, ok := e.entries[key.id()]
	return ok && ent.fresh(e.now(), staleTime)
}

// notify signals every subscription registered on key. Subscriptions are
// poked outside the engine lock; a poke re-evaluates the enabled predicate
// and refetches stale entries.
func (e *Engine) notify(key Key) {
	e.mu.Lock()
	matched := make([]*Subscription, 0, len(e.subs))
	for s := range e.subs {
		if s.key.id() == key.id() {
			matched = append(matched, s)
		}
	}
	e.mu.Unlock()

	for _, s := range matched {
		s.poke()
	}
}
