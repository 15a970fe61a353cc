package watchers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fourfront/fourfront-server/internal/game/rules"
)

func TestStatsWatcherTallies(t *testing.T) {
	w := NewStatsWatcher()
	registry := rules.NewWatcherRegistry()
	registry.AddWatcher(w)

	red := rules.P(rules.TeamRed, 1)
	for _, evt := range []rules.Event{
		rules.NewEvent(rules.EventAttack, [2]int{0, 0}, [2]int{1, 0}),
		rules.NewEvent(rules.EventTookDamage, [2]int{1, 0}, 7),
		rules.NewEvent(rules.EventTookDamage, [2]int{1, 1}, 3),
		rules.NewEvent(rules.EventDeath, [2]int{1, 0}),
		rules.NewEvent(rules.EventCardPlayed, red.Pair(), "soldier"),
		rules.NewEvent(rules.EventSpawnUnit, map[string]any{}),
		rules.NewEvent(rules.EventHQDeath, rules.P(rules.TeamBlue, 0).Pair()),
	} {
		registry.NotifyWatchers(evt)
	}

	require.False(t, w.ConditionMet())
	registry.NotifyWatchers(rules.NewEvent(rules.EventGameEnd, int(rules.TeamRed)))
	require.True(t, w.ConditionMet())

	s := w.Summary()
	assert.Equal(t, 1, s.Attacks)
	assert.Equal(t, 10, s.DamageDealt)
	assert.Equal(t, 1, s.Deaths)
	assert.Equal(t, 1, s.Spawns)
	assert.Equal(t, 1, w.CardsPlayed(red))
	assert.Equal(t, [2]int{0, 1}, s.HQsLost)
	require.NotNil(t, s.Winner)
	assert.Equal(t, rules.TeamRed, *s.Winner)

	w.Reset()
	assert.Equal(t, 0, w.Summary().Attacks)
	assert.Nil(t, w.Summary().Winner)
}

func TestTurnWatcherResetsEachTurn(t *testing.T) {
	w := NewTurnWatcher()
	registry := rules.NewWatcherRegistry()
	registry.AddWatcher(w)
	bus := rules.NewEventBus()
	bus.On(rules.EventTurnStart, func(rules.Event) {
		registry.ResetWatchers(rules.WatcherScopeTurn)
	})
	bus.Subscribe(registry.NotifyWatchers)

	bus.Publish(rules.NewEvent(rules.EventTurnStart, 0, 1))
	assert.False(t, w.ConditionMet())
	bus.PublishBatch([]rules.Event{
		rules.NewEvent(rules.EventMove, [2]int{1, 1}, [2]int{1, 2}),
		rules.NewEvent(rules.EventAttack, [2]int{1, 2}, [2]int{1, 3}),
		rules.NewEvent(rules.EventTookDamage, [2]int{1, 3}, 4),
	})
	assert.True(t, w.ConditionMet())
	assert.Equal(t, TurnActivity{Moves: 1, Attacks: 1}, w.Activity())

	bus.Publish(rules.NewEvent(rules.EventTurnStart, 1, 2))
	assert.False(t, w.ConditionMet())
	assert.Equal(t, TurnActivity{}, w.Activity())
}
