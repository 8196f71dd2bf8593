// Package live re-runs registered queries whenever the record store commits
// a mutation and hands each subscriber the fresh result.
package live

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dukerupert/goshop/internal/model"
)

// Registry holds the active subscriptions and change listeners. It satisfies
// store.Notifier.
type Registry struct {
	mu        sync.RWMutex
	subs      map[string]*Subscription
	listeners map[string]func(model.Change)
	logger    *slog.Logger
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		subs:      make(map[string]*Subscription),
		listeners: make(map[string]func(model.Change)),
		logger:    logger,
	}
}

// Subscription is a registered live query.
type Subscription struct {
	id       string
	registry *Registry
	refresh  func()
	closed   atomic.Bool
}

// ID returns the subscription's unique identifier.
func (s *Subscription) ID() string { return s.id }

// Unsubscribe stops further deliveries. Calling it more than once is safe.
func (s *Subscription) Unsubscribe() {
	if s.closed.Swap(true) {
		return
	}
	s.registry.mu.Lock()
	delete(s.registry.subs, s.id)
	s.registry.mu.Unlock()
}

// Subscribe registers query and delivers its result to fn once immediately and
// again after every change the registry is notified of. Results are computed
// eagerly; nothing is diffed or retained.
func Subscribe[T any](r *Registry, query func() (T, error), fn func(T)) *Subscription {
	sub := &Subscription{id: uuid.NewString(), registry: r}
	sub.refresh = func() {
		if sub.closed.Load() {
			return
		}
		result, err := query()
		if err != nil {
			r.logger.Warn("live query failed", "subscription", sub.id, "error", err)
			return
		}
		if sub.closed.Load() {
			return
		}
		fn(result)
	}

	r.mu.Lock()
	r.subs[sub.id] = sub
	r.mu.Unlock()

	sub.refresh()
	return sub
}

// Listen registers fn to receive every change as it is committed. The
// returned function removes the listener.
func (r *Registry) Listen(fn func(model.Change)) (cancel func()) {
	id := uuid.NewString()
	r.mu.Lock()
	r.listeners[id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.listeners, id)
		r.mu.Unlock()
	}
}

// Notify re-runs every subscription and then informs listeners. The lock is
// released before any query runs, so queries and callbacks may use the store
// and may subscribe or unsubscribe.
func (r *Registry) Notify(change model.Change) {
	r.mu.RLock()
	subs := make([]*Subscription, 0, len(r.subs))
	for _, s := range r.subs {
		subs = append(subs, s)
	}
	listeners := make([]func(model.Change), 0, len(r.listeners))
	for _, l := range r.listeners {
		listeners = append(listeners, l)
	}
	r.mu.RUnlock()

	r.logger.Debug("store changed", "entity", change.Entity, "action", change.Action, "subscriptions", len(subs))

	for _, s := range subs {
		s.refresh()
	}
	for _, l := range listeners {
		l(change)
	}
}

// SubscriptionCount returns the number of active subscriptions.
func (r *Registry) SubscriptionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}
