package rules

import (
	"sync"
)

// EventType names a state change reported to clients.
type EventType string

const (
	// Turn flow
	EventTurnStart EventType = "turn-start"
	EventTurnEnd   EventType = "turn-end"
	EventGameEnd   EventType = "game-end"

	// Combat
	EventAttack      EventType = "attack"
	EventTookDamage  EventType = "took-damage"
	EventDeath       EventType = "death"
	EventHeal        EventType = "heal"
	EventStatChange  EventType = "stat-change"
	EventAbilityUse  EventType = "ability-use"
	EventMove        EventType = "move"
	EventSpawnUnit   EventType = "spawn-unit"
	EventSpawnBuild  EventType = "spawn-building"
	EventHQDeath     EventType = "hq-death"
	EventModifierSet EventType = "modifier-change"

	// Buildings and economy
	EventBuildTick           EventType = "build-tick"
	EventBuildingActivated   EventType = "building-activated"
	EventBuildingDeactivated EventType = "building-deactivated"
	EventChangeMoney         EventType = "change-money"
	EventChangeEnergy        EventType = "change-energy"
	EventChangeTotalEnergy   EventType = "change-tot-energy"

	// Cards
	EventCardDraw   EventType = "card-draw"
	EventDiscard    EventType = "discard"
	EventCardPlayed EventType = "card-played"

	// Seats
	EventPlayerDisconnected EventType = "player-disconnected"
	EventPlayerReconnected  EventType = "player-reconnected"
)

// Event is a named state change with positional parameters.
// Params hold wire-ready values: ints, strings, [2]int pairs and view structs.
type Event struct {
	Name   EventType `json:"event"`
	Params []any     `json:"params"`
}

// NewEvent creates an event, copying params.
func NewEvent(name EventType, params ...any) Event {
	p := make([]any, len(params))
	copy(p, params)
	return Event{Name: name, Params: p}
}

// Listener reacts to a published event.
type Listener func(Event)

// EventBus fans events out to listeners synchronously. Listeners bound to
// an event name run before the catch-all listeners, in subscription order.
type EventBus struct {
	mu     sync.RWMutex
	all    []Listener
	byName map[EventType][]Listener
}

// NewEventBus creates an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{byName: make(map[EventType][]Listener)}
}

// Subscribe registers a listener for every event.
func (bus *EventBus) Subscribe(listener Listener) {
	if listener == nil {
		return
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.all = append(bus.all, listener)
}

// On registers a listener for events named name.
func (bus *EventBus) On(name EventType, listener Listener) {
	if listener == nil {
		return
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.byName[name] = append(bus.byName[name], listener)
}

// Publish delivers the event to the matching listeners.
func (bus *EventBus) Publish(event Event) {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	for _, listener := range bus.byName[event.Name] {
		listener(event)
	}
	for _, listener := range bus.all {
		listener(event)
	}
}

// PublishBatch publishes events in order.
func (bus *EventBus) PublishBatch(events []Event) {
	for _, event := range events {
		bus.Publish(event)
	}
}
