// Package match runs games: it serializes player intents per match, drives
// the turn timer and relays each seat's events.
package match

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fourfront/fourfront-server/internal/game"
	"github.com/fourfront/fourfront-server/internal/game/grid"
	"github.com/fourfront/fourfront-server/internal/game/rules"
	"github.com/fourfront/fourfront-server/internal/game/targeting"
	"github.com/fourfront/fourfront-server/internal/game/templates"
	"github.com/fourfront/fourfront-server/internal/game/watchers"
)

var (
	// ErrMatchNotFound is returned for unknown match IDs.
	ErrMatchNotFound = errors.New("match not found")
	// ErrSeatTaken is returned when a seat is already occupied.
	ErrSeatTaken = errors.New("seat already taken")
	// ErrMatchEnded is returned for intents sent to a finished match.
	ErrMatchEnded = errors.New("match has ended")
	// ErrMatchNotStarted is returned for intents sent before all seats fill.
	ErrMatchNotStarted = errors.New("match has not started")
)

const tracerName = "github.com/fourfront/fourfront-server/internal/match"

// Status is the lifecycle stage of a match.
type Status int

const (
	StatusWaiting Status = iota
	StatusRunning
	StatusFinished
)

func (s Status) String() string {
	switch s {
	case StatusWaiting:
		return "WAITING"
	case StatusRunning:
		return "RUNNING"
	case StatusFinished:
		return "FINISHED"
	default:
		return "UNKNOWN"
	}
}

// Relay delivers a seat's events to its connection. Deliver is called with
// the match lock held; it must not block or call back into the match.
type Relay interface {
	Deliver(p rules.PlayerID, events []rules.Event)
}

// RelayFunc adapts a function to Relay.
type RelayFunc func(p rules.PlayerID, events []rules.Event)

// Deliver calls f.
func (f RelayFunc) Deliver(p rules.PlayerID, events []rules.Event) {
	f(p, events)
}

// EndFunc is told when a match finishes. winner is nil for an aborted match.
type EndFunc func(id string, winner *rules.Team)

// Options configures a match.
type Options struct {
	Game       game.Options
	TurnLength time.Duration
	// Retention is how long the manager keeps a finished match.
	Retention time.Duration
}

// Summary is a read-only view of a match for listings.
type Summary struct {
	ID         string                `json:"id"`
	Status     string                `json:"status"`
	Players    []string              `json:"players"`
	Turn       int                   `json:"turn"`
	TurnNumber int                   `json:"turn_number"`
	Winner     *rules.Team           `json:"winner,omitempty"`
	CreatedAt  time.Time             `json:"created_at"`
	StartedAt  *time.Time            `json:"started_at,omitempty"`
	EndedAt    *time.Time            `json:"ended_at,omitempty"`
	Stats      watchers.Summary      `json:"stats"`
	ThisTurn   watchers.TurnActivity `json:"this_turn"`
}

// Match is one game and its runtime.
type Match struct {
	ID string

	mu      sync.Mutex
	status  Status
	seats   [2][2]*game.Seat
	filled  int
	catalog *templates.Catalog
	opts    Options
	state   *game.State
	relay   Relay
	onEnd   EndFunc

	timer      *time.Timer
	generation uint64
	endPending bool
	winner     *rules.Team

	bus      *rules.EventBus
	watchers *rules.WatcherRegistry
	stats    *watchers.StatsWatcher
	turn     *watchers.TurnWatcher

	createdAt time.Time
	startedAt *time.Time
	endedAt   *time.Time

	tracer trace.Tracer
	logger *zap.Logger
}

// New creates an empty match waiting for four players. A zero game seed
// is replaced by a random one.
func New(id string, catalog *templates.Catalog, opts Options, relay Relay, onEnd EndFunc, logger *zap.Logger) *Match {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Game.Seed == 0 {
		opts.Game.Seed = rand.Uint64() | 1
	}
	m := &Match{
		ID:        id,
		catalog:   catalog,
		opts:      opts,
		relay:     relay,
		onEnd:     onEnd,
		bus:       rules.NewEventBus(),
		watchers:  rules.NewWatcherRegistry(),
		stats:     watchers.NewStatsWatcher(),
		turn:      watchers.NewTurnWatcher(),
		createdAt: time.Now(),
		tracer:    otel.Tracer(tracerName),
		logger:    logger.With(zap.String("match_id", id)),
	}
	m.watchers.AddWatcher(m.stats)
	m.watchers.AddWatcher(m.turn)
	m.bus.On(rules.EventTurnStart, func(rules.Event) {
		m.watchers.ResetWatchers(rules.WatcherScopeTurn)
	})
	m.bus.Subscribe(m.watchers.NotifyWatchers)
	return m
}

// SeatFor returns the seat filled by the n-th arrival: teams alternate,
// so arrivals 0 and 1 face each other first.
func SeatFor(n int) rules.PlayerID {
	return rules.P(rules.Team(n%2), n/2)
}

// Seat places a player in the next free seat. It returns the seat and
// whether the table is now full.
func (m *Match) Seat(name string, faction templates.Faction) (rules.PlayerID, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.status != StatusWaiting || m.filled >= 4 {
		return rules.PlayerID{}, false, ErrSeatTaken
	}
	if !faction.Playable() {
		return rules.PlayerID{}, false, fmt.Errorf("faction %q is not playable", faction)
	}
	p := SeatFor(m.filled)
	m.seats[p.Team][p.Slot] = &game.Seat{Name: name, Faction: faction}
	m.filled++
	m.logger.Info("player seated",
		zap.String("player", p.String()),
		zap.String("name", name),
		zap.String("faction", string(faction)),
	)
	return p, m.filled == 4, nil
}

// Start builds the game state and opens the first turn.
func (m *Match) Start(ctx context.Context) error {
	_, span := m.tracer.Start(ctx, "match.start", trace.WithAttributes(attribute.String("match.id", m.ID)))
	defer span.End()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.status != StatusWaiting {
		return fmt.Errorf("match %s: start in status %s", m.ID, m.status)
	}
	if m.filled < 4 {
		return fmt.Errorf("match %s: only %d of 4 seats filled", m.ID, m.filled)
	}

	var seats [2][2]game.Seat
	for _, p := range rules.AllPlayers() {
		seats[p.Team][p.Slot] = *m.seats[p.Team][p.Slot]
	}
	state, err := game.New(m.catalog, seats, m.opts.Game, m.logger)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("match %s: %w", m.ID, err)
	}
	state.SetTimer(turnTimer{m: m})
	state.OnGameEnd(m.gameEnded)
	m.state = state
	m.status = StatusRunning
	now := time.Now()
	m.startedAt = &now

	m.publish(state.StartTurn())
	m.logger.Info("match started")
	return nil
}

// Move walks a unit.
func (m *Match) Move(ctx context.Context, p rules.PlayerID, from grid.Coord, steps []grid.Coord) error {
	return m.run(ctx, "move", p, func(s *game.State) (*rules.Ledger, error) {
		return s.Move(p, from, steps), nil
	})
}

// Attack attacks target with the entity on from.
func (m *Match) Attack(ctx context.Context, p rules.PlayerID, from, target grid.Coord) error {
	return m.run(ctx, "attack", p, func(s *game.State) (*rules.Ledger, error) {
		return s.Attack(p, from, target)
	})
}

// PlayCard plays a card from p's hand.
func (m *Match) PlayCard(ctx context.Context, p rules.PlayerID, index int, binding targeting.Binding) error {
	return m.run(ctx, "play-card", p, func(s *game.State) (*rules.Ledger, error) {
		return s.PlayCard(p, index, binding)
	})
}

// UseActive triggers an active ability.
func (m *Match) UseActive(ctx context.Context, p rules.PlayerID, loc grid.Coord, index int, binding targeting.Binding) error {
	return m.run(ctx, "use-active", p, func(s *game.State) (*rules.Ledger, error) {
		return s.UseActive(p, loc, index, binding)
	})
}

// EndTurn flags p as done. The turn advances once the team agrees.
func (m *Match) EndTurn(ctx context.Context, p rules.PlayerID) error {
	return m.run(ctx, "end-turn", p, func(s *game.State) (*rules.Ledger, error) {
		s.EndTurnRequest(p)
		return rules.NewLedger(), nil
	})
}

// SetConnected records a player's connection state.
func (m *Match) SetConnected(ctx context.Context, p rules.PlayerID, connected bool) error {
	return m.run(ctx, "set-connected", p, func(s *game.State) (*rules.Ledger, error) {
		return s.SetConnected(p, connected), nil
	})
}

// Snapshot renders the board for p.
func (m *Match) Snapshot(p *rules.PlayerID) (game.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return game.Snapshot{}, ErrMatchNotStarted
	}
	return m.state.ClientSnapshot(p), nil
}

// Status returns the lifecycle stage.
func (m *Match) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Summary returns a listing view of the match.
func (m *Match) Summary() Summary {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Summary{
		ID:        m.ID,
		Status:    m.status.String(),
		Winner:    m.winner,
		CreatedAt: m.createdAt,
		StartedAt: m.startedAt,
		EndedAt:   m.endedAt,
		Stats:     m.stats.Summary(),
		ThisTurn:  m.turn.Activity(),
	}
	for _, p := range rules.AllPlayers() {
		if seat := m.seats[p.Team][p.Slot]; seat != nil {
			s.Players = append(s.Players, seat.Name)
		}
	}
	if m.state != nil {
		s.Turn = int(m.state.Turn())
		s.TurnNumber = m.state.TurnNumber()
	}
	return s
}

// finishedBefore reports whether the match ended before t.
func (m *Match) finishedBefore(t time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status == StatusFinished && m.endedAt != nil && m.endedAt.Before(t)
}

// Abort stops a running match without a winner.
func (m *Match) Abort(reason string) {
	m.mu.Lock()
	if m.status == StatusRunning {
		m.state.Abort(reason)
		m.finish(nil)
	}
	ended := m.takeEnd()
	m.mu.Unlock()
	if ended {
		m.notifyEnd()
	}
}

// run applies one operation atomically and relays its events. Invariant
// failures abort the match.
func (m *Match) run(ctx context.Context, op string, p rules.PlayerID, fn func(*game.State) (*rules.Ledger, error)) error {
	_, span := m.tracer.Start(ctx, "match."+op, trace.WithAttributes(
		attribute.String("match.id", m.ID),
		attribute.String("match.player", p.String()),
	))
	defer span.End()

	m.mu.Lock()
	err := m.runLocked(op, fn)
	ended := m.takeEnd()
	m.mu.Unlock()

	if ended {
		m.notifyEnd()
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (m *Match) runLocked(op string, fn func(*game.State) (*rules.Ledger, error)) error {
	switch m.status {
	case StatusWaiting:
		return ErrMatchNotStarted
	case StatusFinished:
		return ErrMatchEnded
	}

	l, err := fn(m.state)
	if err != nil {
		m.logger.Error("match aborted on invariant failure", zap.String("op", op), zap.Error(err))
		m.publish(l)
		m.state.Abort(err.Error())
		m.finish(nil)
		return fmt.Errorf("%s: %w", op, err)
	}
	m.advance(l)
	m.publish(l)
	return nil
}

// advance passes the turn for as long as the team to move has nobody left
// to act. With no active seat anywhere the turn stays open on its timer.
func (m *Match) advance(l *rules.Ledger) {
	for m.status == StatusRunning && m.state.TurnReady() && m.state.AnyActive() {
		l.Concat(m.state.AdvanceTurn())
	}
}

// publish relays each seat's events and feeds the log to the watchers.
func (m *Match) publish(l *rules.Ledger) {
	if l == nil || l.Empty() {
		return
	}
	m.bus.PublishBatch(l.Log())
	if m.relay == nil {
		return
	}
	for _, p := range rules.AllPlayers() {
		if events := l.For(p); len(events) > 0 {
			m.relay.Deliver(p, events)
		}
	}
}

// gameEnded is the state's game-end callback; it runs with the lock held.
func (m *Match) gameEnded(winner rules.Team) {
	m.finish(&winner)
}

func (m *Match) finish(winner *rules.Team) {
	if m.status == StatusFinished {
		return
	}
	m.status = StatusFinished
	m.winner = winner
	now := time.Now()
	m.endedAt = &now
	m.stopTimer()
	m.endPending = true
}

func (m *Match) takeEnd() bool {
	ended := m.endPending
	m.endPending = false
	return ended
}

// notifyEnd runs without the lock.
func (m *Match) notifyEnd() {
	summary := m.Summary()
	m.logger.Info("match finished",
		zap.String("status", summary.Status),
		zap.Int("turns", summary.TurnNumber),
		zap.Int("attacks", summary.Stats.Attacks),
		zap.Int("deaths", summary.Stats.Deaths),
	)
	if m.onEnd != nil {
		m.onEnd(m.ID, summary.Winner)
	}
}

// turnTimer lets the game state arm and cancel the match's turn timer.
type turnTimer struct {
	m *Match
}

// Arm schedules the end of the current turn. Each arm bumps the
// generation, so a callback from an older turn that fires late is ignored.
func (t turnTimer) Arm(turn int) {
	m := t.m
	m.stopTimer()
	gen := m.generation
	if m.opts.TurnLength <= 0 {
		return
	}
	m.timer = time.AfterFunc(m.opts.TurnLength, func() { m.expire(gen, turn) })
}

// Cancel stops the pending timer.
func (t turnTimer) Cancel() {
	t.m.stopTimer()
}

func (m *Match) stopTimer() {
	m.generation++
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

// expire force-ends the turn when the timer fires.
func (m *Match) expire(gen uint64, turn int) {
	m.mu.Lock()
	if gen != m.generation || m.status != StatusRunning {
		m.mu.Unlock()
		return
	}
	m.logger.Info("turn timed out", zap.Int("turn", turn))
	l := m.state.AdvanceTurn()
	m.advance(l)
	m.publish(l)
	ended := m.takeEnd()
	m.mu.Unlock()
	if ended {
		m.notifyEnd()
	}
}
