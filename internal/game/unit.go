package game

import (
	"github.com/fourfront/fourfront-server/internal/game/grid"
	"github.com/fourfront/fourfront-server/internal/game/rules"
	"github.com/fourfront/fourfront-server/internal/game/targeting"
)

// move walks the unit along steps. Each step must be edge-adjacent to the
// current tile, on the field and vacant; the walk stops at the first step
// that is not, or when the unit runs out of steps. One move is consumed
// whatever the outcome.
func (s *State) move(e *Entity, steps []grid.Coord) *rules.Ledger {
	l := rules.NewLedger()
	u := e.Unit
	if u == nil || u.Moves < 1 {
		return l
	}
	for _, step := range steps {
		if u.Steps <= 0 {
			break
		}
		if !grid.Adjacent(e.Loc, step) || !step.InBounds(s.field.Size()) || s.field.Occupied(step) {
			break
		}
		from := e.Loc
		s.field.Leave(from, 1)
		s.field.Occupy(e.ID, targeting.OccupantUnit, step, 1)
		e.Loc = step
		u.Steps--
		l.Add(rules.EventMove, from.Pair(), step.Pair())
	}
	u.Moves--
	return l
}
