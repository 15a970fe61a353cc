package match

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fourfront/fourfront-server/internal/game/rules"
	"github.com/fourfront/fourfront-server/internal/game/templates"
)

// Router delivers the events of any match to the seat's connection.
// Forget is called once a match is dropped; its seats are gone for good.
type Router interface {
	Route(matchID string, p rules.PlayerID, events []rules.Event)
	Forget(matchID string)
}

// Manager owns all matches of the process and fills tables in arrival
// order.
type Manager struct {
	mu      sync.RWMutex
	matches map[string]*Match
	open    *Match

	catalog *templates.Catalog
	opts    Options
	router  Router
	onEnd   EndFunc
	logger  *zap.Logger
}

// NewManager creates a manager. router receives the events of every
// match; onEnd, when set, is told about finished matches.
func NewManager(catalog *templates.Catalog, opts Options, router Router, onEnd EndFunc, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		matches: make(map[string]*Match),
		catalog: catalog,
		opts:    opts,
		router:  router,
		onEnd:   onEnd,
		logger:  logger,
	}
}

// SetRouter replaces the router. Matches created earlier keep routing
// through the router they were created with.
func (m *Manager) SetRouter(router Router) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.router = router
}

func (m *Manager) relayFor(id string) Relay {
	router := m.router
	if router == nil {
		return nil
	}
	return RelayFunc(func(p rules.PlayerID, events []rules.Event) {
		router.Route(id, p, events)
	})
}

// Join seats a player at the open table, creating one when needed. The
// match starts as soon as its fourth seat is taken.
func (m *Manager) Join(ctx context.Context, name string, faction templates.Faction) (*Match, rules.PlayerID, error) {
	m.mu.Lock()
	if m.open == nil {
		id := uuid.New().String()
		m.open = New(id, m.catalog, m.opts, m.relayFor(id), m.matchEnded, m.logger)
		m.matches[id] = m.open
		m.logger.Info("match created", zap.String("match_id", id))
	}
	match := m.open
	seat, full, err := match.Seat(name, faction)
	if err != nil {
		m.mu.Unlock()
		return nil, rules.PlayerID{}, err
	}
	if full {
		m.open = nil
	}
	m.mu.Unlock()

	if full {
		if err := match.Start(ctx); err != nil {
			m.logger.Error("failed to start match", zap.String("match_id", match.ID), zap.Error(err))
			return nil, rules.PlayerID{}, err
		}
	}
	return match, seat, nil
}

// Get returns a match by ID.
func (m *Manager) Get(id string) (*Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	match, ok := m.matches[id]
	if !ok {
		return nil, ErrMatchNotFound
	}
	return match, nil
}

// List returns summaries of every match, oldest first.
func (m *Manager) List() []Summary {
	m.mu.RLock()
	matches := make([]*Match, 0, len(m.matches))
	for _, match := range m.matches {
		matches = append(matches, match)
	}
	m.mu.RUnlock()

	out := make([]Summary, 0, len(matches))
	for _, match := range matches {
		out = append(out, match.Summary())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Remove aborts and forgets a match.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	match, ok := m.matches[id]
	if !ok {
		m.mu.Unlock()
		return ErrMatchNotFound
	}
	delete(m.matches, id)
	if m.open == match {
		m.open = nil
	}
	router := m.router
	m.mu.Unlock()

	match.Abort("removed")
	if router != nil {
		router.Forget(id)
	}
	m.logger.Info("match removed", zap.String("match_id", id))
	return nil
}

// CleanupFinished drops matches that finished more than the retention
// period before now and returns their IDs.
func (m *Manager) CleanupFinished(now time.Time) []string {
	cutoff := now.Add(-m.opts.Retention)
	m.mu.RLock()
	var stale []*Match
	for _, match := range m.matches {
		if match.finishedBefore(cutoff) {
			stale = append(stale, match)
		}
	}
	m.mu.RUnlock()
	if len(stale) == 0 {
		return nil
	}

	ids := make([]string, 0, len(stale))
	m.mu.Lock()
	for _, match := range stale {
		if m.matches[match.ID] == match {
			delete(m.matches, match.ID)
			ids = append(ids, match.ID)
		}
	}
	router := m.router
	m.mu.Unlock()

	sort.Strings(ids)
	for _, id := range ids {
		if router != nil {
			router.Forget(id)
		}
		m.logger.Debug("finished match dropped", zap.String("match_id", id))
	}
	return ids
}

// StartCleanup runs CleanupFinished every interval until ctx is done.
func (m *Manager) StartCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				m.CleanupFinished(now)
			}
		}
	}()
}

// ActiveCount returns the number of matches that have not finished.
func (m *Manager) ActiveCount() int {
	m.mu.RLock()
	matches := make([]*Match, 0, len(m.matches))
	for _, match := range m.matches {
		matches = append(matches, match)
	}
	m.mu.RUnlock()

	count := 0
	for _, match := range matches {
		if match.Status() != StatusFinished {
			count++
		}
	}
	return count
}

func (m *Manager) matchEnded(id string, winner *rules.Team) {
	fields := []zap.Field{zap.String("match_id", id)}
	if winner != nil {
		fields = append(fields, zap.String("winner", winner.String()))
	}
	m.logger.Info("match ended", fields...)
	if m.onEnd != nil {
		m.onEnd(id, winner)
	}
}
