package game

import (
	"fmt"

	"github.com/fourfront/fourfront-server/internal/game/effects"
	"github.com/fourfront/fourfront-server/internal/game/grid"
	"github.com/fourfront/fourfront-server/internal/game/modifiers"
	"github.com/fourfront/fourfront-server/internal/game/rules"
	"github.com/fourfront/fourfront-server/internal/game/targeting"
)

// playCard pays for the card at index, runs its effects and discards it.
// Unaffordable cards and illegal targets are refused without events.
func (s *State) playCard(p *Player, index int, binding targeting.Binding) (*rules.Ledger, error) {
	l := rules.NewLedger()
	card, ok := p.Hand.At(index)
	if !ok {
		return l, nil
	}
	t := card.Template
	if !p.Purse.CanAfford(t.Cost) {
		return l, nil
	}
	legal, err := s.validator.CheckTargets(targeting.Subject{Owner: p.ID}, t.Targets, binding)
	if err != nil || !legal {
		return l, err
	}

	p.Purse.Spend(t.Cost)
	if t.Cost != 0 {
		l.Add(rules.EventChangeMoney, p.ID.Pair(), -t.Cost)
	}
	l.Add(rules.EventCardPlayed, p.ID.Pair(), t.ID)

	src := effects.Source{Owner: p.ID, Card: t.ID, Modifiers: card.Modifiers}
	el, err := effects.Run(s.host, src, binding, t.Effects)
	l.Concat(el)
	if err != nil {
		return l, err
	}

	for i, c := range p.Hand.Items() {
		if c == card {
			l.Concat(s.discard(p, i))
			break
		}
	}
	return l, nil
}

// effectHost applies effect results to the state.
type effectHost struct {
	s *State
}

var _ effects.Host = effectHost{}

func (h effectHost) GainMoney(p rules.PlayerID, amount int) *rules.Ledger {
	l := rules.NewLedger()
	h.s.player(p).Purse.AddMoney(amount)
	l.Add(rules.EventChangeMoney, p.Pair(), amount)
	return l
}

func (h effectHost) Heal(c grid.Coord, amount int) *rules.Ledger {
	e, ok := h.s.occupant(c)
	if !ok {
		return rules.NewLedger()
	}
	return h.s.heal(e, amount)
}

func (h effectHost) ModifyStats(c grid.Coord, stat string, amount int, mode modifiers.Mode) (*rules.Ledger, error) {
	e, ok := h.s.occupant(c)
	if !ok {
		return rules.NewLedger(), nil
	}
	return h.s.modifyStats(e, stat, amount, mode)
}

func (h effectHost) Spawn(req effects.SpawnRequest) (*rules.Ledger, error) {
	switch req.Type {
	case effects.SpawnUnit:
		t, ok := h.s.catalog.Unit(req.ID)
		if !ok {
			return rules.NewLedger(), fmt.Errorf("unknown unit template %q", req.ID)
		}
		return h.s.spawnUnit(t, req), nil
	case effects.SpawnBuilding:
		t, ok := h.s.catalog.Building(req.ID)
		if !ok {
			return rules.NewLedger(), fmt.Errorf("unknown building template %q", req.ID)
		}
		return h.s.spawnBuilding(t, req), nil
	default:
		return rules.NewLedger(), fmt.Errorf("unknown spawn type %q", req.Type)
	}
}
