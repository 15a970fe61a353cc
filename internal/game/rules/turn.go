package rules

import (
	"fmt"
)

// Phase is the coarse state of a match.
type Phase int

const (
	PhaseSetup Phase = iota
	PhaseTurnActive
	PhaseTurnEnding
	PhaseEnded
)

var phaseNames = map[Phase]string{
	PhaseSetup:      "SETUP",
	PhaseTurnActive: "TURN_ACTIVE",
	PhaseTurnEnding: "TURN_ENDING",
	PhaseEnded:      "ENDED",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

// TurnManager tracks whose turn it is and the end-turn barrier of the
// active team. Both players of the active team must flag before the turn
// may end.
type TurnManager struct {
	phase  Phase
	team   Team
	number int
	flags  [2]bool
}

// NewTurnManager creates a manager in setup; first moves on the first Begin.
func NewTurnManager(first Team) *TurnManager {
	return &TurnManager{
		phase: PhaseSetup,
		team:  first,
	}
}

// Phase returns the current phase.
func (tm *TurnManager) Phase() Phase {
	return tm.phase
}

// Team returns the team whose turn it is.
func (tm *TurnManager) Team() Team {
	return tm.team
}

// TurnNumber returns the 1-based turn counter; 0 before the first turn.
func (tm *TurnManager) TurnNumber() int {
	return tm.number
}

// Begin opens a turn for the current team. Seats for which autoFlag
// returns true start flagged.
func (tm *TurnManager) Begin(autoFlag func(PlayerID) bool) {
	if tm.phase == PhaseEnded {
		return
	}
	tm.phase = PhaseTurnActive
	tm.number++
	for slot := range tm.flags {
		tm.flags[slot] = autoFlag != nil && autoFlag(P(tm.team, slot))
	}
}

// Flag records p's end-turn request. ok is false when p may not flag now;
// done reports whether both seats of the active team have flagged.
func (tm *TurnManager) Flag(p PlayerID) (done, ok bool) {
	if tm.phase != PhaseTurnActive || !p.Valid() || p.Team != tm.team {
		return false, false
	}
	tm.flags[p.Slot] = true
	return tm.BarrierMet(), true
}

// Flagged reports whether p has requested the end of the turn.
func (tm *TurnManager) Flagged(p PlayerID) bool {
	return p.Valid() && p.Team == tm.team && tm.flags[p.Slot]
}

// BarrierMet reports whether every seat of the active team has flagged.
func (tm *TurnManager) BarrierMet() bool {
	return tm.flags[0] && tm.flags[1]
}

// Finish closes the active turn and hands the next one to the other team.
// The new turn starts on the following Begin.
func (tm *TurnManager) Finish() {
	if tm.phase != PhaseTurnActive {
		return
	}
	tm.phase = PhaseTurnEnding
	tm.team = tm.team.Other()
	tm.flags = [2]bool{}
}

// End moves the manager to its terminal phase.
func (tm *TurnManager) End() {
	tm.phase = PhaseEnded
}
