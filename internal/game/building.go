package game

import (
	"github.com/fourfront/fourfront-server/internal/game/grid"
	"github.com/fourfront/fourfront-server/internal/game/modifiers"
	"github.com/fourfront/fourfront-server/internal/game/rules"
	"github.com/fourfront/fourfront-server/internal/game/targeting"
)

// constructionRate is the progress each adjacent friendly unit adds per tick.
const constructionRate = 2

// constructionHealth is the health a building with maxHealth should have
// once it has buildLeft of buildTime remaining.
func constructionHealth(buildTime, buildLeft, maxHealth int) int {
	num := (buildTime - buildLeft + 1) * maxHealth
	den := buildTime + 1
	h := (num + den - 1) / den
	return max(0, min(h, maxHealth))
}

// constructionTick advances construction by constructionRate for every
// owner's unit touching a side of the footprint, capped at the remaining
// work. Health grows with progress. Completion activates the building.
func (s *State) constructionTick(e *Entity) *rules.Ledger {
	l := rules.NewLedger()
	b := e.Building
	if b == nil || b.BuildLeft <= 0 {
		return l
	}

	build := 0
	for _, c := range grid.Border(e.Loc, b.Size, s.field.Size()) {
		t, _ := s.field.Tile(c)
		if t.Kind != targeting.OccupantUnit {
			continue
		}
		if u, ok := s.entities[t.Occupant]; ok && u.Owner == e.Owner {
			build += constructionRate
		}
	}
	build = min(build, b.BuildLeft)

	before := constructionHealth(b.BuildTime, b.BuildLeft, e.MaxHealth)
	b.BuildLeft -= build
	l.Add(rules.EventBuildTick, e.Loc.Pair(), build)

	if gain := constructionHealth(b.BuildTime, b.BuildLeft, e.MaxHealth) - before; gain > 0 {
		gain = min(gain, e.MaxHealth-e.Health)
		if gain > 0 {
			e.Health += gain
			l.Add(rules.EventStatChange, e.Loc.Pair(), "health", string(modifiers.ModeChange), gain)
		}
	}

	if b.BuildLeft <= 0 {
		b.BuildLeft = 0
		l.Concat(s.activate(e))
	}
	return l
}

// activate switches a finished building on if its owner can pay the upkeep.
// It does nothing for an already active building.
func (s *State) activate(e *Entity) *rules.Ledger {
	l := rules.NewLedger()
	b := e.Building
	if b == nil || b.Active || b.BuildLeft > 0 {
		return l
	}
	purse := s.player(e.Owner).Purse
	if !purse.CanPower(b.Upkeep) {
		return l
	}
	purse.Power(b.Upkeep, b.EnergyGen)
	b.Active = true
	l.Add(rules.EventBuildingActivated, e.Loc.Pair())
	l.Add(rules.EventChangeEnergy, e.Owner.Pair(), b.EnergyGen-b.Upkeep)
	l.Add(rules.EventChangeTotalEnergy, e.Owner.Pair(), b.EnergyGen)
	return l
}

// deactivate reverses activate.
func (s *State) deactivate(e *Entity) *rules.Ledger {
	l := rules.NewLedger()
	b := e.Building
	if b == nil || !b.Active {
		return l
	}
	s.player(e.Owner).Purse.Unpower(b.Upkeep, b.EnergyGen)
	b.Active = false
	l.Add(rules.EventBuildingDeactivated, e.Loc.Pair())
	l.Add(rules.EventChangeEnergy, e.Owner.Pair(), b.Upkeep-b.EnergyGen)
	l.Add(rules.EventChangeTotalEnergy, e.Owner.Pair(), -b.EnergyGen)
	return l
}

// upkeep switches off the player's net energy consumers, newest first,
// until available energy is no longer negative.
func (s *State) upkeep(p *Player) *rules.Ledger {
	l := rules.NewLedger()
	for i := len(p.Buildings) - 1; i >= 0 && p.Purse.Deficit(); i-- {
		e, ok := s.entities[p.Buildings[i]]
		if !ok || e.Building == nil {
			continue
		}
		// Only net consumers: a generator covering its own upkeep stays on.
		if b := e.Building; b.Active && b.Upkeep > b.EnergyGen {
			l.Concat(s.deactivate(e))
		}
	}
	return l
}

// loseHeadquarters takes p out of the match and ends the game when p's
// teammate has lost theirs too.
func (s *State) loseHeadquarters(p rules.PlayerID) *rules.Ledger {
	l := rules.NewLedger()
	pl := s.player(p)
	pl.HasHQ = false
	l.Add(rules.EventHQDeath, p.Pair())
	s.turns.Flag(p)

	if !s.player(p.Teammate()).HasHQ {
		l.Concat(s.endGame(p.Team.Other()))
	}
	return l
}
