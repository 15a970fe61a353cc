// Package game is the authoritative simulation of a four-player match:
// field, entities, economy, cards and the turn cycle.
//
// A State is not safe for concurrent use; callers serialize operations.
// Every operation returns a rules.Ledger of per-seat events. Illegal
// intents yield an empty ledger; a non-nil error reports a broken internal
// invariant and the state should be abandoned.
package game

import (
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/fourfront/fourfront-server/internal/game/economy"
	"github.com/fourfront/fourfront-server/internal/game/effects"
	"github.com/fourfront/fourfront-server/internal/game/grid"
	"github.com/fourfront/fourfront-server/internal/game/rules"
	"github.com/fourfront/fourfront-server/internal/game/targeting"
	"github.com/fourfront/fourfront-server/internal/game/templates"
)

// Options configures a new state.
type Options struct {
	FieldSize      int
	HandLimit      int
	OpeningHand    int
	StartingMoney  int
	StartingEnergy int
	DeckCopies     int
	FirstTeam      rules.Team
	Seed           uint64
}

// DefaultOptions returns the standard rules.
func DefaultOptions() Options {
	return Options{
		FieldSize:     50,
		HandLimit:     10,
		OpeningHand:   5,
		StartingMoney: 10,
		DeckCopies:    2,
		FirstTeam:     rules.TeamRed,
		Seed:          1,
	}
}

// Seat describes a player taking a seat.
type Seat struct {
	Name    string
	Faction templates.Faction
}

// TurnTimer schedules the automatic end of a turn.
type TurnTimer interface {
	Arm(turn int)
	Cancel()
}

// GameEndFunc is called once, when a team wins.
type GameEndFunc func(winner rules.Team)

// State is the full match state.
type State struct {
	opts    Options
	catalog *templates.Catalog
	logger  *zap.Logger

	field   *Field
	players [2][2]*Player

	entities  map[EntityID]*Entity
	nextID    EntityID
	buildings []EntityID
	units     []EntityID

	turns     *rules.TurnManager
	timer     TurnTimer
	onGameEnd GameEndFunc
	active    bool
	winner    *rules.Team

	rng       *rand.Rand
	validator *targeting.TargetValidator
	host      effectHost
}

// New sets up a match: headquarters placed, decks shuffled and opening
// hands dealt. The first turn starts with StartTurn.
func New(catalog *templates.Catalog, seats [2][2]Seat, opts Options, logger *zap.Logger) (*State, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	hq, ok := catalog.Headquarters()
	if !ok {
		return nil, fmt.Errorf("catalog has no %s building", templates.HeadquartersName)
	}
	if opts.FieldSize < 2*hq.Size+3 {
		return nil, fmt.Errorf("field size %d too small for %dx%d headquarters", opts.FieldSize, hq.Size, hq.Size)
	}
	if opts.HandLimit < 1 {
		return nil, fmt.Errorf("hand limit must be positive")
	}

	s := &State{
		opts:     opts,
		catalog:  catalog,
		logger:   logger,
		field:    NewField(opts.FieldSize),
		entities: make(map[EntityID]*Entity),
		turns:    rules.NewTurnManager(opts.FirstTeam),
		active:   true,
		rng:      economy.NewRand(opts.Seed),
	}
	s.validator = targeting.NewTargetValidator(s)
	s.host = effectHost{s: s}

	for _, id := range rules.AllPlayers() {
		seat := seats[id.Team][id.Slot]
		if !seat.Faction.Playable() {
			return nil, fmt.Errorf("seat %s: faction %q is not playable", id, seat.Faction)
		}
		p := &Player{
			ID:        id,
			Name:      seat.Name,
			Faction:   seat.Faction,
			Purse:     economy.NewPurse(opts.StartingMoney, opts.StartingEnergy),
			Hand:      economy.NewHand[*Card](opts.HandLimit),
			Deck:      economy.NewDeck[*Card](s.rng),
			Connected: true,
			HasHQ:     true,
		}
		for _, t := range catalog.DeckFor(seat.Faction) {
			p.Deck.Add(opts.DeckCopies, func() *Card { return newCard(t) })
		}
		p.Deck.Shuffle()
		s.players[id.Team][id.Slot] = p
	}

	for _, id := range rules.AllPlayers() {
		anchor := s.headquartersAnchor(id, hq.Size)
		if l := s.spawnBuilding(hq, effects.SpawnRequest{Owner: id, Loc: anchor}); l.Empty() {
			return nil, fmt.Errorf("could not place headquarters for %s at %s", id, anchor)
		}
		p := s.player(id)
		for i := 0; i < opts.OpeningHand; i++ {
			s.draw(p)
		}
	}

	logger.Debug("game state created",
		zap.Int("field_size", opts.FieldSize),
		zap.String("first_team", opts.FirstTeam.String()),
	)
	return s, nil
}

// headquartersAnchor places red on the left edge and blue on the right,
// slot 0 at the top and slot 1 at the bottom.
func (s *State) headquartersAnchor(p rules.PlayerID, size int) grid.Coord {
	far := s.opts.FieldSize - 1 - size
	x, y := 1, 1
	if p.Team == rules.TeamBlue {
		x = far
	}
	if p.Slot == 1 {
		y = far
	}
	return grid.C(x, y)
}

// SetTimer installs the turn timer. StartTurn arms it, EndTurn cancels it.
func (s *State) SetTimer(t TurnTimer) {
	s.timer = t
}

// OnGameEnd registers the callback invoked when a team wins.
func (s *State) OnGameEnd(fn GameEndFunc) {
	s.onGameEnd = fn
}

// Active reports whether the game is still running.
func (s *State) Active() bool {
	return s.active
}

// Winner returns the winning team once the game has ended with one.
func (s *State) Winner() (rules.Team, bool) {
	if s.winner == nil {
		return 0, false
	}
	return *s.winner, true
}

// Turn returns the team whose turn it is.
func (s *State) Turn() rules.Team {
	return s.turns.Team()
}

// TurnNumber returns the 1-based turn counter.
func (s *State) TurnNumber() int {
	return s.turns.TurnNumber()
}

// Phase returns the turn phase.
func (s *State) Phase() rules.Phase {
	return s.turns.Phase()
}

// Player returns the seat's player.
func (s *State) Player(p rules.PlayerID) (*Player, bool) {
	if !p.Valid() {
		return nil, false
	}
	return s.players[p.Team][p.Slot], true
}

// Entity returns the entity with id.
func (s *State) Entity(id EntityID) (*Entity, bool) {
	e, ok := s.entities[id]
	return e, ok
}

// EntityAt returns whatever stands on c.
func (s *State) EntityAt(c grid.Coord) (*Entity, bool) {
	return s.occupant(c)
}

// Field exposes the board for read access.
func (s *State) Field() *Field {
	return s.field
}

// FieldSize implements targeting.Board.
func (s *State) FieldSize() int {
	return s.field.Size()
}

// OccupantAt implements targeting.Board.
func (s *State) OccupantAt(c grid.Coord) targeting.Occupant {
	e, ok := s.occupant(c)
	if !ok {
		return targeting.Occupant{}
	}
	return targeting.Occupant{Kind: e.Kind(), Owner: e.Owner}
}

// HandSize implements targeting.Board.
func (s *State) HandSize(p rules.PlayerID) int {
	pl, ok := s.Player(p)
	if !ok {
		return 0
	}
	return pl.Hand.Len()
}

func (s *State) player(p rules.PlayerID) *Player {
	return s.players[p.Team][p.Slot]
}

func (s *State) occupant(c grid.Coord) (*Entity, bool) {
	t, ok := s.field.Tile(c)
	if !ok || t.Occupant == 0 {
		return nil, false
	}
	e, ok := s.entities[t.Occupant]
	return e, ok
}

func (s *State) entity(id EntityID) (*Entity, error) {
	e, ok := s.entities[id]
	if !ok {
		return nil, fmt.Errorf("tile references missing entity %d", id)
	}
	return e, nil
}

// register gives e an id and adds it to the arena, its owner and the field.
func (s *State) register(e *Entity) {
	s.nextID++
	e.ID = s.nextID
	s.entities[e.ID] = e
	owner := s.player(e.Owner)
	if e.Building != nil {
		s.buildings = append(s.buildings, e.ID)
		owner.Buildings = append(owner.Buildings, e.ID)
	} else {
		s.units = append(s.units, e.ID)
		owner.Units = append(owner.Units, e.ID)
	}
	s.field.Occupy(e.ID, e.Kind(), e.Loc, e.Size())
}

// unregister is the inverse of register. A missing entry is an invariant
// violation.
func (s *State) unregister(e *Entity) error {
	if _, ok := s.entities[e.ID]; !ok {
		return fmt.Errorf("entity %d (%s) is not registered", e.ID, e.Name)
	}
	owner := s.player(e.Owner)
	var inGlobal, inOwner bool
	if e.Building != nil {
		s.buildings, inGlobal = removeID(s.buildings, e.ID)
		owner.Buildings, inOwner = removeID(owner.Buildings, e.ID)
	} else {
		s.units, inGlobal = removeID(s.units, e.ID)
		owner.Units, inOwner = removeID(owner.Units, e.ID)
	}
	delete(s.entities, e.ID)
	s.field.Leave(e.Loc, e.Size())
	if !inGlobal || !inOwner {
		return fmt.Errorf("entity %d (%s) missing from tracking lists", e.ID, e.Name)
	}
	return nil
}

func (s *State) spawnUnit(t *templates.Unit, req effects.SpawnRequest) *rules.Ledger {
	l := rules.NewLedger()
	if !req.Owner.Valid() || !s.field.VerifyPlacement(req.Loc, 1) {
		return l
	}
	e := newEntity(t.Stats, req.Owner, req.Loc, req)
	e.Health = e.MaxHealth
	e.Unit = &UnitExt{Speed: t.Speed}
	s.register(e)
	l.Add(rules.EventSpawnUnit, unitView(e))
	return l
}

func (s *State) spawnBuilding(t *templates.Building, req effects.SpawnRequest) *rules.Ledger {
	l := rules.NewLedger()
	if !req.Owner.Valid() || !s.field.VerifyPlacement(req.Loc, t.Size) {
		return l
	}
	e := newEntity(t.Stats, req.Owner, req.Loc, req)
	e.Building = &BuildingExt{
		Size:      t.Size,
		Upkeep:    t.Upkeep,
		MoneyGen:  t.MoneyGen,
		EnergyGen: t.EnergyGen,
		BuildTime: t.BuildTime,
		BuildLeft: t.BuildTime,
		HQ:        t.IsHeadquarters(),
	}
	e.Health = constructionHealth(t.BuildTime, t.BuildTime, e.MaxHealth)
	s.register(e)
	l.Add(rules.EventSpawnBuild, buildingView(e))
	l.Concat(s.activate(e))
	return l
}

// endGame declares winner and stops the match.
func (s *State) endGame(winner rules.Team) *rules.Ledger {
	l := rules.NewLedger()
	if !s.active {
		return l
	}
	l.Add(rules.EventGameEnd, int(winner))
	s.stop()
	s.winner = &winner
	s.logger.Info("game ended", zap.String("winner", winner.String()), zap.Int("turn", s.turns.TurnNumber()))
	if s.onGameEnd != nil {
		s.onGameEnd(winner)
	}
	return l
}

// Abort stops the match without a winner.
func (s *State) Abort(reason string) {
	if !s.active {
		return
	}
	s.logger.Warn("game aborted", zap.String("reason", reason))
	s.stop()
}

func (s *State) stop() {
	s.active = false
	s.turns.End()
	if s.timer != nil {
		s.timer.Cancel()
	}
}
