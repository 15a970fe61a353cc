// Package templates loads the immutable unit, building and card catalog.
package templates

import (
	"sort"

	"github.com/fourfront/fourfront-server/internal/game/effects"
	"github.com/fourfront/fourfront-server/internal/game/targeting"
	"github.com/fourfront/fourfront-server/internal/game/values"
)

// Faction groups cards and entities.
type Faction string

const (
	FactionT       Faction = "T"
	FactionM       Faction = "M"
	FactionS       Faction = "S"
	FactionA       Faction = "A"
	FactionNeutral Faction = "N"
)

// Playable reports whether a player may pick f.
func (f Faction) Playable() bool {
	switch f {
	case FactionT, FactionM, FactionS, FactionA:
		return true
	}
	return false
}

func (f Faction) valid() bool {
	return f.Playable() || f == FactionNeutral
}

// CardType distinguishes unit, building and other cards.
type CardType string

const (
	CardUnit     CardType = "U"
	CardBuilding CardType = "B"
	CardOther    CardType = "O"
)

// HeadquartersName identifies the building whose loss eliminates a player.
const HeadquartersName = "Headquarters"

// Ability is an active ability: targets to bind, effects to run, and how
// many times per turn it may be used.
type Ability struct {
	Name        string
	Description string
	Uses        int
	Targets     []targeting.Target
	Effects     []effects.Effect
}

// Stats are the fields shared by units and buildings.
type Stats struct {
	ID          string
	Name        string
	Faction     Faction
	Description string
	MaxHealth   int
	Damage      int
	Splash      int
	Range       int
	Attributes  []string
	Passives    []string
	Actives     []Ability
}

// Unit is a unit template.
type Unit struct {
	Stats
	Speed int
}

// Building is a building template.
type Building struct {
	Stats
	Size      int
	Upkeep    int
	MoneyGen  int
	EnergyGen int
	BuildTime int
}

// IsHeadquarters reports whether the building is a headquarters.
func (b *Building) IsHeadquarters() bool {
	return b.Name == HeadquartersName
}

// Card is a card template.
type Card struct {
	ID          string
	Name        string
	Faction     Faction
	Type        CardType
	Description string
	Cost        int
	Targets     []targeting.Target
	Effects     []effects.Effect
	// Modifiers seeds every instance's modifier bag.
	Modifiers map[string]any
}

// Catalog is the loaded set of templates. It is shared between matches and
// must not be modified.
type Catalog struct {
	Units     map[string]*Unit
	Buildings map[string]*Building
	Cards     map[string]*Card
}

// Unit looks up a unit template.
func (c *Catalog) Unit(id string) (*Unit, bool) {
	u, ok := c.Units[id]
	return u, ok
}

// Building looks up a building template.
func (c *Catalog) Building(id string) (*Building, bool) {
	b, ok := c.Buildings[id]
	return b, ok
}

// Headquarters returns the headquarters template.
func (c *Catalog) Headquarters() (*Building, bool) {
	for _, id := range sortedKeys(c.Buildings) {
		if b := c.Buildings[id]; b.IsHeadquarters() {
			return b, true
		}
	}
	return nil, false
}

// DeckFor lists the cards available to a faction (its own and neutral),
// ordered by id.
func (c *Catalog) DeckFor(f Faction) []*Card {
	var out []*Card
	for _, id := range sortedKeys(c.Cards) {
		card := c.Cards[id]
		if card.Faction == f || card.Faction == FactionNeutral {
			out = append(out, card)
		}
	}
	return out
}

// CloneActives deep-copies abilities so per-entity edits stay local.
func CloneActives(in []Ability) []Ability {
	out := make([]Ability, len(in))
	for i, a := range in {
		out[i] = a
		out[i].Targets = append([]targeting.Target(nil), a.Targets...)
		out[i].Effects = make([]effects.Effect, len(a.Effects))
		for j, e := range a.Effects {
			out[i].Effects[j] = effects.Effect{Kind: e.Kind, Params: values.CopyMap(e.Params)}
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
