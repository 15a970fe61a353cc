package watchers

import (
	"github.com/fourfront/fourfront-server/internal/game/rules"
)

// TurnActivity counts what happened in the current turn.
type TurnActivity struct {
	Moves   int `json:"moves"`
	Attacks int `json:"attacks"`
	Cards   int `json:"cards"`
	Spawns  int `json:"spawns"`
}

// TurnWatcher tallies actions of the running turn. It is turn-scoped, so
// the match resets it on every turn start; its condition is met once
// anything happened.
type TurnWatcher struct {
	*rules.BaseWatcher
	activity TurnActivity
}

func NewTurnWatcher() *TurnWatcher {
	w := &TurnWatcher{BaseWatcher: rules.NewBaseWatcher(rules.WatcherScopeTurn)}
	w.SetKey("TurnWatcher")
	return w
}

func (w *TurnWatcher) Watch(event rules.Event) {
	switch event.Name {
	case rules.EventMove:
		w.activity.Moves++
	case rules.EventAttack:
		w.activity.Attacks++
	case rules.EventCardPlayed:
		w.activity.Cards++
	case rules.EventSpawnUnit, rules.EventSpawnBuild:
		w.activity.Spawns++
	default:
		return
	}
	w.SetCondition(true)
}

func (w *TurnWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.activity = TurnActivity{}
}

// Activity returns the tallies so far.
func (w *TurnWatcher) Activity() TurnActivity {
	return w.activity
}
