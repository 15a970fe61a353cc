package game

import (
	"github.com/fourfront/fourfront-server/internal/game/rules"
)

// StartTurn opens the turn of the team whose turn it is: every entity is
// refreshed, each player of the team draws a card and the timer is armed.
// Inactive players of the team start with their end-turn flag set.
func (s *State) StartTurn() *rules.Ledger {
	l := rules.NewLedger()
	if !s.active || s.turns.Phase() == rules.PhaseTurnActive {
		return l
	}
	s.turns.Begin(func(p rules.PlayerID) bool {
		return !s.player(p).Active()
	})
	team := s.turns.Team()
	l.Add(rules.EventTurnStart, int(team), s.turns.TurnNumber())

	for _, id := range s.ordered() {
		if e, ok := s.entities[id]; ok {
			l.Concat(s.refresh(e))
		}
	}
	for slot := 0; slot < 2; slot++ {
		l.Concat(s.draw(s.player(rules.P(team, slot))))
	}

	if s.timer != nil {
		s.timer.Arm(s.turns.TurnNumber())
	}
	s.logger.Debug("turn started")
	return l
}

// EndTurnRequest flags p as done with the turn. It reports true once both
// players of the active team have flagged.
func (s *State) EndTurnRequest(p rules.PlayerID) bool {
	if !s.active {
		return false
	}
	done, ok := s.turns.Flag(p)
	return ok && done
}

// TurnReady reports whether the active turn may end: both seats flagged,
// whether by request, disconnection or loss of a headquarters.
func (s *State) TurnReady() bool {
	return s.active && s.turns.Phase() == rules.PhaseTurnActive && s.turns.BarrierMet()
}

// AnyActive reports whether any seat can still act.
func (s *State) AnyActive() bool {
	for _, p := range rules.AllPlayers() {
		if s.player(p).Active() {
			return true
		}
	}
	return false
}

// Flagged reports whether p has asked to end the current turn.
func (s *State) Flagged(p rules.PlayerID) bool {
	return s.turns.Flagged(p)
}

// EndTurn closes the active turn: the timer is cancelled, construction
// advances on every building and the turn passes to the other team. The
// caller follows up with StartTurn.
func (s *State) EndTurn() *rules.Ledger {
	l := rules.NewLedger()
	if !s.active || s.turns.Phase() != rules.PhaseTurnActive {
		return l
	}
	if s.timer != nil {
		s.timer.Cancel()
	}
	for _, id := range append([]EntityID(nil), s.buildings...) {
		if e, ok := s.entities[id]; ok {
			l.Concat(s.constructionTick(e))
		}
	}
	l.Add(rules.EventTurnEnd, int(s.turns.Team()), s.turns.TurnNumber())
	s.turns.Finish()
	return l
}

// AdvanceTurn ends the current turn and starts the next one.
func (s *State) AdvanceTurn() *rules.Ledger {
	l := s.EndTurn()
	if l.Empty() {
		return l
	}
	return l.Concat(s.StartTurn())
}

// ordered returns buildings then units, in spawn order.
func (s *State) ordered() []EntityID {
	ids := make([]EntityID, 0, len(s.buildings)+len(s.units))
	ids = append(ids, s.buildings...)
	return append(ids, s.units...)
}
