package queries

import (
	"context"
	"sync"
	"time"
)

// Subscription is a registered interest in one cache key. The engine
// re-evaluates the enabled predicate on every relevant state change and
// triggers a fetch only on a false-to-true transition or when the entry
// goes stale underneath an enabled subscriber. A result that settles after
// the subscription is closed or disabled is not applied to the cache.
type Subscription struct {
	engine    *Engine
	key       Key
	staleTime time.Duration
	enabled   func() bool
	fetchFn   FetchFunc
	updates   chan struct{}

	mu         sync.Mutex
	active     bool
	wasEnabled bool
}

// Subscribe registers interest in key. A nil enabled predicate means
// always enabled. The initial reconcile runs before Subscribe returns, so
// an enabled subscription has its first fetch in flight immediately.
func (e *Engine) Subscribe(key Key, staleTime time.Duration, enabled func() bool, fetch FetchFunc) *Subscription {
	s := &Subscription{
		engine:    e,
		key:       key,
		staleTime: staleTime,
		enabled:   enabled,
		fetchFn:   fetch,
		updates:   make(chan struct{}, 1),
		active:    true,
	}

	e.mu.Lock()
	e.subs[s] = struct{}{}
	e.mu.Unlock()

	s.Reconcile()
	return s
}

// Updates signals whenever the subscribed entry changes state. The channel
// carries at most one pending signal; consumers that fall behind see a
// single coalesced notification.
func (s *Subscription) Updates() <-chan struct{} {
	return s.updates
}

// Reconcile re-evaluates the enabled predicate. Callers invoke it after a
// condition feeding the predicate changes (e.g. a search input gained a
// value); the engine invokes it on every entry state change.
func (s *Subscription) Reconcile() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	on := s.enabled == nil || s.enabled()
	rising := on && !s.wasEnabled
	s.wasEnabled = on
	s.mu.Unlock()

	if !on {
		return
	}
	if rising {
		if !s.engine.freshFor(s.key, s.staleTime) {
			go s.refresh()
		}
		return
	}
	if s.engine.needsRefresh(s.key) {
		go s.refresh()
	}
}

// Close disposes the subscription. Any call still in flight on its behalf
// settles without touching the cache.
func (s *Subscription) Close() {
	s.mu.Lock()
	s.active = false
	s.mu.Unlock()

	s.engine.mu.Lock()
	delete(s.engine.subs, s)
	s.engine.mu.Unlock()
}

func (s *Subscription) refresh() {
	_, _ = s.engine.fetch(context.Background(), s.key, s.staleTime, s.fetchFn, s.alive)
}

// alive guards result application: the originating subscription must still
// be open and enabled for its fetch to be written into the cache.
func (s *Subscription) alive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active && s.wasEnabled
}

func (s *Subscription) poke() {
	select {
	case s.updates <- struct{}{}:
	default:
	}
	s.Reconcile()
}
