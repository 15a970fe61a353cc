package rules

// Ledger accumulates the events produced by one engine operation.
//
// Each seat gets its own ordered list, which may hold a redacted variant of
// an event. The log keeps every event once, with full parameters, in the
// order it was added.
type Ledger struct {
	events [2][2][]Event
	log    []Event
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Add broadcasts an event to every seat.
func (l *Ledger) Add(name EventType, params ...any) {
	evt := NewEvent(name, params...)
	for _, p := range AllPlayers() {
		l.events[p.Team][p.Slot] = append(l.events[p.Team][p.Slot], evt)
	}
	l.log = append(l.log, evt)
}

// AddFor delivers an event only to the listed seats.
func (l *Ledger) AddFor(recipients []PlayerID, name EventType, params ...any) {
	evt := NewEvent(name, params...)
	for _, p := range recipients {
		if !p.Valid() {
			continue
		}
		l.events[p.Team][p.Slot] = append(l.events[p.Team][p.Slot], evt)
	}
	l.log = append(l.log, evt)
}

// AddFiltered delivers full params to seats for which sees returns true and
// filtered params to everyone else.
func (l *Ledger) AddFiltered(name EventType, full, filtered []any, sees func(PlayerID) bool) {
	fullEvt := NewEvent(name, full...)
	filteredEvt := NewEvent(name, filtered...)
	for _, p := range AllPlayers() {
		evt := filteredEvt
		if sees(p) {
			evt = fullEvt
		}
		l.events[p.Team][p.Slot] = append(l.events[p.Team][p.Slot], evt)
	}
	l.log = append(l.log, fullEvt)
}

// Concat appends other's events after l's, per seat and in the log.
// A nil other is ignored. Returns l for chaining.
func (l *Ledger) Concat(other *Ledger) *Ledger {
	if other == nil || other == l {
		return l
	}
	for _, p := range AllPlayers() {
		l.events[p.Team][p.Slot] = append(l.events[p.Team][p.Slot], other.events[p.Team][p.Slot]...)
	}
	l.log = append(l.log, other.log...)
	return l
}

// For returns the events addressed to p.
func (l *Ledger) For(p PlayerID) []Event {
	if !p.Valid() {
		return nil
	}
	return l.events[p.Team][p.Slot]
}

// Log returns every event in insertion order with full parameters.
func (l *Ledger) Log() []Event {
	return l.log
}

// Empty reports whether no event was recorded.
func (l *Ledger) Empty() bool {
	return len(l.log) == 0
}

// Names lists the logged event names, mostly useful in tests.
func (l *Ledger) Names() []EventType {
	names := make([]EventType, len(l.log))
	for i, evt := range l.log {
		names[i] = evt.Name
	}
	return names
}
