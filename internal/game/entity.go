package game

import (
	"fmt"

	"github.com/fourfront/fourfront-server/internal/game/effects"
	"github.com/fourfront/fourfront-server/internal/game/grid"
	"github.com/fourfront/fourfront-server/internal/game/modifiers"
	"github.com/fourfront/fourfront-server/internal/game/rules"
	"github.com/fourfront/fourfront-server/internal/game/targeting"
	"github.com/fourfront/fourfront-server/internal/game/templates"
)

// EntityID is a stable handle into the state's entity arena. 0 is never used.
type EntityID uint32

// Entity is a unit or a building on the field. The shared core lives here;
// exactly one of Unit and Building is set.
type Entity struct {
	ID       EntityID
	Template string
	Name     string
	Owner    rules.PlayerID
	// Loc is the anchor: the upper-left tile of the footprint.
	Loc grid.Coord

	MaxHealth int
	Health    int
	Damage    int
	Splash    int
	Range     int

	Attributes []string
	Actives    []templates.Ability
	ActiveUses []int
	Attacks    int
	Modifiers  *modifiers.Bag

	Unit     *UnitExt
	Building *BuildingExt
}

// UnitExt carries movement state.
type UnitExt struct {
	Speed int
	Moves int
	Steps int
}

// BuildingExt carries construction and economy state.
type BuildingExt struct {
	Size      int
	Upkeep    int
	MoneyGen  int
	EnergyGen int
	BuildTime int
	BuildLeft int
	Active    bool
	HQ        bool
}

// Size is the side of the entity's square footprint.
func (e *Entity) Size() int {
	if e.Building != nil {
		return e.Building.Size
	}
	return 1
}

// Kind is the occupant kind the entity leaves on its tiles.
func (e *Entity) Kind() targeting.OccupantKind {
	if e.Building != nil {
		return targeting.OccupantBuilding
	}
	return targeting.OccupantUnit
}

// Footprint lists the tiles the entity covers.
func (e *Entity) Footprint() []grid.Coord {
	return grid.Footprint(e.Loc, e.Size())
}

func newEntity(stats templates.Stats, owner rules.PlayerID, loc grid.Coord, bonus effects.SpawnRequest) *Entity {
	return &Entity{
		Template:   stats.ID,
		Name:       stats.Name,
		Owner:      owner,
		Loc:        loc,
		MaxHealth:  stats.MaxHealth + bonus.BonusHealth,
		Damage:     stats.Damage + bonus.BonusDamage,
		Splash:     stats.Splash,
		Range:      stats.Range,
		Attributes: append([]string(nil), stats.Attributes...),
		Actives:    templates.CloneActives(stats.Actives),
		ActiveUses: make([]int, len(stats.Actives)),
		Modifiers:  modifiers.New(nil),
	}
}

// refresh restores per-turn allowances. Inactive buildings get none.
func (s *State) refresh(e *Entity) *rules.Ledger {
	l := rules.NewLedger()
	if b := e.Building; b != nil {
		if !b.Active {
			e.Attacks = 0
			for i := range e.ActiveUses {
				e.ActiveUses[i] = 0
			}
			return l
		}
		if b.MoneyGen != 0 {
			s.player(e.Owner).Purse.AddMoney(b.MoneyGen)
			l.Add(rules.EventChangeMoney, e.Owner.Pair(), b.MoneyGen)
		}
	}
	e.Attacks = 0
	if e.Damage > 0 {
		e.Attacks = 1
	}
	for i, a := range e.Actives {
		e.ActiveUses[i] = a.Uses
	}
	if u := e.Unit; u != nil {
		u.Steps = u.Speed
		u.Moves = 1
	}
	return l
}

// attack strikes target and everything within splash of it, friends
// included. Each entity is hit at most once.
func (s *State) attack(e *Entity, target grid.Coord) (*rules.Ledger, error) {
	l := rules.NewLedger()
	if e.Attacks < 1 || e.Damage <= 0 {
		return l, nil
	}
	tile, ok := s.field.Tile(target)
	if !ok || target == e.Loc || tile.Occupant == e.ID {
		return l, nil
	}
	if !grid.WithinDist(e.Loc, target, e.Range) {
		return l, nil
	}
	if !s.field.SightIgnoring(e.Loc, target, e.ID) {
		return l, nil
	}
	if e.Splash <= 0 && tile.Occupant == 0 {
		return l, nil
	}

	l.Add(rules.EventAttack, e.Loc.Pair(), target.Pair())
	n := s.field.Size()
	hit := make(map[EntityID]bool)
	for _, c := range grid.WithinRadiusInBounds(target, e.Splash, 0, 0, n-1, n-1) {
		t, _ := s.field.Tile(c)
		if t.Occupant == 0 || hit[t.Occupant] {
			continue
		}
		hit[t.Occupant] = true
		victim, err := s.entity(t.Occupant)
		if err != nil {
			return l, err
		}
		dl, err := s.takeDamage(victim, e.Damage)
		l.Concat(dl)
		if err != nil {
			return l, err
		}
	}
	e.Attacks--
	return l, nil
}

func (s *State) takeDamage(e *Entity, damage int) (*rules.Ledger, error) {
	l := rules.NewLedger()
	e.Health -= damage
	l.Add(rules.EventTookDamage, e.Loc.Pair(), damage)
	if e.Health <= 0 {
		dl, err := s.die(e)
		l.Concat(dl)
		return l, err
	}
	return l, nil
}

// die removes the entity from the field and every collection. Buildings
// are switched off first; losing a headquarters may end the game.
func (s *State) die(e *Entity) (*rules.Ledger, error) {
	l := rules.NewLedger()
	if err := s.unregister(e); err != nil {
		return l, err
	}
	if e.Building != nil {
		owner := s.player(e.Owner)
		l.Concat(s.deactivate(e))
		l.Concat(s.upkeep(owner))
	}
	l.Add(rules.EventDeath, e.Loc.Pair())
	if e.Building != nil && e.Building.HQ {
		l.Concat(s.loseHeadquarters(e.Owner))
	}
	return l, nil
}

func (s *State) heal(e *Entity, amount int) *rules.Ledger {
	l := rules.NewLedger()
	healed := min(amount, e.MaxHealth-e.Health)
	if healed < 0 {
		healed = 0
	}
	e.Health += healed
	l.Add(rules.EventHeal, e.Loc.Pair(), healed)
	l.Add(rules.EventStatChange, e.Loc.Pair(), "health", string(modifiers.ModeChange), healed)
	return l
}

// Stats that modify-stats may change.
const (
	StatMaxHealth = "maxHealth"
	StatDamage    = "damage"
	StatSplash    = "splash"
	StatRange     = "range"
	StatSpeed     = "speed"
)

func (s *State) modifyStats(e *Entity, stat string, amount int, mode modifiers.Mode) (*rules.Ledger, error) {
	l := rules.NewLedger()
	var field *int
	switch stat {
	case StatMaxHealth:
		field = &e.MaxHealth
	case StatDamage:
		field = &e.Damage
	case StatSplash:
		field = &e.Splash
	case StatRange:
		field = &e.Range
	case StatSpeed:
		if e.Unit == nil {
			return l, nil
		}
		field = &e.Unit.Speed
	default:
		return l, fmt.Errorf("stat %q cannot be modified", stat)
	}

	*field = mode.Apply(*field, amount)
	if stat != StatMaxHealth && *field < 0 {
		*field = 0
	}
	l.Add(rules.EventStatChange, e.Loc.Pair(), stat, string(mode), amount)

	if e.Health > e.MaxHealth {
		e.Health = e.MaxHealth
		l.Add(rules.EventStatChange, e.Loc.Pair(), "health", string(modifiers.ModeSet), e.Health)
	}
	if e.Health <= 0 {
		dl, err := s.die(e)
		l.Concat(dl)
		return l, err
	}
	return l, nil
}

func (s *State) useActive(e *Entity, index int, binding targeting.Binding) (*rules.Ledger, error) {
	l := rules.NewLedger()
	if index < 0 || index >= len(e.Actives) || e.ActiveUses[index] < 1 {
		return l, nil
	}
	ability := e.Actives[index]
	loc := e.Loc
	ok, err := s.validator.CheckTargets(targeting.Subject{Owner: e.Owner, Loc: &loc}, ability.Targets, binding)
	if err != nil || !ok {
		return l, err
	}

	e.ActiveUses[index]--
	l.Add(rules.EventAbilityUse, loc.Pair(), index)
	src := effects.Source{Owner: e.Owner, Loc: &loc, Modifiers: e.Modifiers}
	el, err := effects.Run(s.host, src, binding, ability.Effects)
	l.Concat(el)
	return l, err
}
