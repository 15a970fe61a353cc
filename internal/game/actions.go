package game

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/fourfront/fourfront-server/internal/game/effects"
	"github.com/fourfront/fourfront-server/internal/game/grid"
	"github.com/fourfront/fourfront-server/internal/game/rules"
	"github.com/fourfront/fourfront-server/internal/game/targeting"
)

// actor returns p's player when p may act right now: the game is running,
// a turn is open, p's team holds it and p is connected with a headquarters.
func (s *State) actor(p rules.PlayerID) (*Player, bool) {
	if !s.active || s.turns.Phase() != rules.PhaseTurnActive {
		return nil, false
	}
	if !p.Valid() || p.Team != s.turns.Team() {
		return nil, false
	}
	pl := s.player(p)
	if !pl.Active() {
		return nil, false
	}
	return pl, true
}

// commanded returns the entity at c if p owns it.
func (s *State) commanded(p rules.PlayerID, c grid.Coord) (*Entity, bool) {
	e, ok := s.occupant(c)
	if !ok || e.Owner != p {
		return nil, false
	}
	return e, true
}

// Move walks p's unit at from along steps.
func (s *State) Move(p rules.PlayerID, from grid.Coord, steps []grid.Coord) *rules.Ledger {
	if _, ok := s.actor(p); !ok {
		return rules.NewLedger()
	}
	e, ok := s.commanded(p, from)
	if !ok || e.Unit == nil {
		return rules.NewLedger()
	}
	return s.move(e, steps)
}

// Attack has p's entity standing on from attack target.
func (s *State) Attack(p rules.PlayerID, from, target grid.Coord) (*rules.Ledger, error) {
	if _, ok := s.actor(p); !ok {
		return rules.NewLedger(), nil
	}
	e, ok := s.commanded(p, from)
	if !ok {
		return rules.NewLedger(), nil
	}
	l, err := s.attack(e, target)
	if err != nil {
		return l, fmt.Errorf("attack from %s to %s: %w", from, target, err)
	}
	return l, nil
}

// PlayCard plays the card at index of p's hand with the given binding.
func (s *State) PlayCard(p rules.PlayerID, index int, binding targeting.Binding) (*rules.Ledger, error) {
	pl, ok := s.actor(p)
	if !ok {
		return rules.NewLedger(), nil
	}
	l, err := s.playCard(pl, index, binding)
	if err != nil {
		return l, fmt.Errorf("play card %d for %s: %w", index, p, err)
	}
	return l, nil
}

// UseActive triggers active ability index of p's entity at loc.
func (s *State) UseActive(p rules.PlayerID, loc grid.Coord, index int, binding targeting.Binding) (*rules.Ledger, error) {
	if _, ok := s.actor(p); !ok {
		return rules.NewLedger(), nil
	}
	e, ok := s.commanded(p, loc)
	if !ok {
		return rules.NewLedger(), nil
	}
	l, err := s.useActive(e, index, binding)
	if err != nil {
		return l, fmt.Errorf("use active %d at %s: %w", index, loc, err)
	}
	return l, nil
}

// SpawnUnit places a unit from the catalog for owner. It bypasses turn
// guards and card costs.
func (s *State) SpawnUnit(owner rules.PlayerID, templateID string, loc grid.Coord) (*rules.Ledger, error) {
	t, ok := s.catalog.Unit(templateID)
	if !ok {
		return rules.NewLedger(), fmt.Errorf("unknown unit template %q", templateID)
	}
	if !s.active {
		return rules.NewLedger(), nil
	}
	return s.spawnUnit(t, effects.SpawnRequest{Type: effects.SpawnUnit, ID: templateID, Loc: loc, Owner: owner}), nil
}

// SpawnBuilding places a building from the catalog for owner.
func (s *State) SpawnBuilding(owner rules.PlayerID, templateID string, loc grid.Coord) (*rules.Ledger, error) {
	t, ok := s.catalog.Building(templateID)
	if !ok {
		return rules.NewLedger(), fmt.Errorf("unknown building template %q", templateID)
	}
	if !s.active {
		return rules.NewLedger(), nil
	}
	return s.spawnBuilding(t, effects.SpawnRequest{Type: effects.SpawnBuilding, ID: templateID, Loc: loc, Owner: owner}), nil
}

// SetConnected records a connection change. A player who drops during
// their team's turn is flagged as done so the turn barrier cannot stall.
func (s *State) SetConnected(p rules.PlayerID, connected bool) *rules.Ledger {
	l := rules.NewLedger()
	pl, ok := s.Player(p)
	if !ok || pl.Connected == connected {
		return l
	}
	pl.Connected = connected
	if !connected {
		l.Add(rules.EventPlayerDisconnected, p.Pair())
		s.turns.Flag(p)
	} else {
		l.Add(rules.EventPlayerReconnected, p.Pair())
	}
	s.logger.Info("player connection changed",
		zap.String("player", p.String()),
		zap.Bool("connected", connected),
	)
	return l
}
