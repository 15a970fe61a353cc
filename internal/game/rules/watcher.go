package rules

import (
	"sync"
)

// WatcherScope decides how long a watcher accumulates.
type WatcherScope int

const (
	// WatcherScopeGame accumulates over the whole match.
	WatcherScopeGame WatcherScope = iota
	// WatcherScopeTurn accumulates over a single turn.
	WatcherScopeTurn
)

func (ws WatcherScope) String() string {
	switch ws {
	case WatcherScopeGame:
		return "GAME"
	case WatcherScopeTurn:
		return "TURN"
	default:
		return "UNKNOWN"
	}
}

// Watcher derives state from the event log of a match.
type Watcher interface {
	Watch(event Event)
	Reset()
	ConditionMet() bool
	GetScope() WatcherScope
	// GetKey identifies the watcher within its registry.
	GetKey() string
}

// BaseWatcher carries the bookkeeping shared by watchers. Embed it and
// implement Watch.
type BaseWatcher struct {
	scope     WatcherScope
	condition bool
	key       string
}

// NewBaseWatcher creates a base watcher with the given scope.
func NewBaseWatcher(scope WatcherScope) *BaseWatcher {
	return &BaseWatcher{scope: scope}
}

func (bw *BaseWatcher) GetScope() WatcherScope { return bw.scope }

func (bw *BaseWatcher) ConditionMet() bool { return bw.condition }

func (bw *BaseWatcher) SetCondition(condition bool) { bw.condition = condition }

// Reset clears the condition.
func (bw *BaseWatcher) Reset() { bw.condition = false }

func (bw *BaseWatcher) GetKey() string { return bw.key }

func (bw *BaseWatcher) SetKey(key string) { bw.key = key }

// WatcherRegistry feeds events to the watchers of one match in
// registration order.
type WatcherRegistry struct {
	mu       sync.RWMutex
	watchers map[string]Watcher
	order    []string
}

func NewWatcherRegistry() *WatcherRegistry {
	return &WatcherRegistry{watchers: make(map[string]Watcher)}
}

// AddWatcher registers a watcher under its key, replacing any previous one.
func (wr *WatcherRegistry) AddWatcher(watcher Watcher) {
	if watcher == nil {
		return
	}
	wr.mu.Lock()
	defer wr.mu.Unlock()

	key := watcher.GetKey()
	if _, exists := wr.watchers[key]; !exists {
		wr.order = append(wr.order, key)
	}
	wr.watchers[key] = watcher
}

// ResetWatchers resets the watchers of the given scope.
func (wr *WatcherRegistry) ResetWatchers(scope WatcherScope) {
	wr.mu.RLock()
	defer wr.mu.RUnlock()
	for _, watcher := range wr.watchers {
		if watcher.GetScope() == scope {
			watcher.Reset()
		}
	}
}

// NotifyWatchers hands an event to every watcher.
func (wr *WatcherRegistry) NotifyWatchers(event Event) {
	wr.mu.RLock()
	defer wr.mu.RUnlock()
	for _, key := range wr.order {
		wr.watchers[key].Watch(event)
	}
}
