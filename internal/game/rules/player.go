package rules

import (
	"encoding/json"
	"fmt"
)

// Team identifies one of the two sides.
type Team int

const (
	TeamRed Team = iota
	TeamBlue
)

// Other returns the opposing team.
func (t Team) Other() Team {
	return 1 - t
}

func (t Team) String() string {
	switch t {
	case TeamRed:
		return "RED"
	case TeamBlue:
		return "BLUE"
	default:
		return fmt.Sprintf("TEAM_%d", int(t))
	}
}

// Valid reports whether t is one of the two teams.
func (t Team) Valid() bool {
	return t == TeamRed || t == TeamBlue
}

// PlayerID addresses a seat as (team, slot).
type PlayerID struct {
	Team Team
	Slot int
}

// P is shorthand for PlayerID{Team: team, Slot: slot}.
func P(team Team, slot int) PlayerID {
	return PlayerID{Team: team, Slot: slot}
}

// AllPlayers lists the four seats in ledger order.
func AllPlayers() []PlayerID {
	return []PlayerID{P(TeamRed, 0), P(TeamRed, 1), P(TeamBlue, 0), P(TeamBlue, 1)}
}

// Valid reports whether the seat exists.
func (p PlayerID) Valid() bool {
	return p.Team.Valid() && (p.Slot == 0 || p.Slot == 1)
}

// Teammate returns the other seat on the same team.
func (p PlayerID) Teammate() PlayerID {
	return PlayerID{Team: p.Team, Slot: 1 - p.Slot}
}

// Allied reports whether p and o play for the same team.
func (p PlayerID) Allied(o PlayerID) bool {
	return p.Team == o.Team
}

// Pair returns the seat in its wire form.
func (p PlayerID) Pair() [2]int {
	return [2]int{int(p.Team), p.Slot}
}

func (p PlayerID) String() string {
	return fmt.Sprintf("%s/%d", p.Team, p.Slot)
}

// MarshalJSON encodes the seat as [team,slot].
func (p PlayerID) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Pair())
}

// UnmarshalJSON decodes a seat from [team,slot].
func (p *PlayerID) UnmarshalJSON(data []byte) error {
	var pair [2]int
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("player must be [team,slot]: %w", err)
	}
	p.Team, p.Slot = Team(pair[0]), pair[1]
	return nil
}
