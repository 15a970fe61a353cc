// Package watchers holds ledger observers that derive match statistics.
package watchers

import (
	"github.com/fourfront/fourfront-server/internal/game/rules"
)

// Summary is a read-only copy of the accumulated statistics.
type Summary struct {
	Attacks     int            `json:"attacks"`
	DamageDealt int            `json:"damage_dealt"`
	Deaths      int            `json:"deaths"`
	Spawns      int            `json:"spawns"`
	CardsPlayed map[string]int `json:"cards_played"`
	HQsLost     [2]int         `json:"hqs_lost"`
	Winner      *rules.Team    `json:"winner,omitempty"`
}

// StatsWatcher tallies combat and card activity for a whole match.
// Its condition is met once the game has ended.
type StatsWatcher struct {
	*rules.BaseWatcher
	attacks     int
	damage      int
	deaths      int
	spawns      int
	cardsPlayed map[rules.PlayerID]int
	hqsLost     [2]int
	winner      *rules.Team
}

// NewStatsWatcher creates a new stats watcher.
func NewStatsWatcher() *StatsWatcher {
	w := &StatsWatcher{
		BaseWatcher: rules.NewBaseWatcher(rules.WatcherScopeGame),
		cardsPlayed: make(map[rules.PlayerID]int),
	}
	w.SetKey("StatsWatcher")
	return w
}

// Watch implements the Watcher interface.
func (w *StatsWatcher) Watch(event rules.Event) {
	switch event.Name {
	case rules.EventAttack:
		w.attacks++
	case rules.EventTookDamage:
		if len(event.Params) > 1 {
			if n, ok := event.Params[1].(int); ok {
				w.damage += n
			}
		}
	case rules.EventDeath:
		w.deaths++
	case rules.EventSpawnUnit, rules.EventSpawnBuild:
		w.spawns++
	case rules.EventCardPlayed:
		if p, ok := seat(event); ok {
			w.cardsPlayed[p]++
		}
	case rules.EventHQDeath:
		if p, ok := seat(event); ok {
			w.hqsLost[p.Team]++
		}
	case rules.EventGameEnd:
		if len(event.Params) > 0 {
			if n, ok := event.Params[0].(int); ok {
				team := rules.Team(n)
				w.winner = &team
			}
		}
		w.SetCondition(true)
	}
}

// Reset clears the watcher's state.
func (w *StatsWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.attacks, w.damage, w.deaths, w.spawns = 0, 0, 0, 0
	w.cardsPlayed = make(map[rules.PlayerID]int)
	w.hqsLost = [2]int{}
	w.winner = nil
}

// CardsPlayed returns how many cards p has played.
func (w *StatsWatcher) CardsPlayed(p rules.PlayerID) int {
	return w.cardsPlayed[p]
}

// Summary returns a snapshot of the statistics.
func (w *StatsWatcher) Summary() Summary {
	s := Summary{
		Attacks:     w.attacks,
		DamageDealt: w.damage,
		Deaths:      w.deaths,
		Spawns:      w.spawns,
		CardsPlayed: make(map[string]int, len(w.cardsPlayed)),
		HQsLost:     w.hqsLost,
	}
	for p, n := range w.cardsPlayed {
		s.CardsPlayed[p.String()] = n
	}
	if w.winner != nil {
		team := *w.winner
		s.Winner = &team
	}
	return s
}

// seat reads a [team,slot] pair from the first parameter.
func seat(event rules.Event) (rules.PlayerID, bool) {
	if len(event.Params) == 0 {
		return rules.PlayerID{}, false
	}
	pair, ok := event.Params[0].([2]int)
	if !ok {
		return rules.PlayerID{}, false
	}
	p := rules.P(rules.Team(pair[0]), pair[1])
	return p, p.Valid()
}
