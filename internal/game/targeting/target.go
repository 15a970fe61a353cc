package targeting

import (
	"fmt"
	"strings"

	"github.com/fourfront/fourfront-server/internal/game/grid"
	"github.com/fourfront/fourfront-server/internal/game/rules"
	"github.com/fourfront/fourfront-server/internal/game/values"
)

// TargetType is the kind of value a target slot accepts.
type TargetType string

const (
	// TargetTypeTile is any in-bounds coordinate.
	TargetTypeTile TargetType = "tile"
	// TargetTypeUnit is a coordinate occupied by a unit.
	TargetTypeUnit TargetType = "unit"
	// TargetTypeBuilding is a coordinate occupied by a building.
	TargetTypeBuilding TargetType = "building"
	// TargetTypePlayer is a [team,slot] seat.
	TargetTypePlayer TargetType = "player"
	// TargetTypeCard is a {player, index} reference into a hand.
	TargetTypeCard TargetType = "card"
)

// Property names a predicate a bound target must satisfy.
type Property string

const (
	// PropBuildable: a footprint of the given size fits, is vacant and touches one of the owner's units.
	PropBuildable Property = "buildable"
	// PropEmpty: the tile is unoccupied.
	PropEmpty Property = "empty"
	// PropSpawnable: the tile is unoccupied and touches one of the owner's buildings.
	PropSpawnable Property = "spawnable"
	// PropOwner: the target belongs to self, an ally or an enemy.
	PropOwner Property = "owner"
	// PropWithinRadius: the target lies within n tiles of the acting entity.
	PropWithinRadius Property = "withinRadius"
)

// Owner relations accepted by PropOwner.
const (
	OwnerSelf   = "self"
	OwnerAllied = "allied"
	OwnerEnemy  = "enemy"
)

// Target declares one named slot of a card or ability.
type Target struct {
	// Name is the binding key, conventionally "$name".
	Name string `json:"name"`
	// Type is the kind of value the slot accepts.
	Type TargetType `json:"type"`
	// Properties maps predicate names to their arguments.
	Properties map[string]any `json:"properties"`
}

// Binding maps target names to the values a client chose.
type Binding map[string]any

// CardRef points at a card in a player's hand.
type CardRef struct {
	Player rules.PlayerID `json:"player"`
	Index  int            `json:"index"`
}

// Validate checks that the declaration uses known types and well-formed
// property arguments.
func (t Target) Validate() error {
	if !strings.HasPrefix(t.Name, "$") || len(t.Name) < 2 {
		return fmt.Errorf("target name %q must start with $", t.Name)
	}
	switch t.Type {
	case TargetTypeTile, TargetTypeUnit, TargetTypeBuilding, TargetTypePlayer, TargetTypeCard:
	default:
		return fmt.Errorf("target %s: unknown type %q", t.Name, t.Type)
	}
	for name, arg := range t.Properties {
		if err := validateProperty(Property(name), arg); err != nil {
			return fmt.Errorf("target %s: %w", t.Name, err)
		}
	}
	return nil
}

func validateProperty(p Property, arg any) error {
	switch p {
	case PropBuildable:
		if _, ok := sizeArg(arg); !ok {
			return fmt.Errorf("buildable needs a positive size, got %v", arg)
		}
	case PropEmpty, PropSpawnable:
		if _, ok := arg.(bool); !ok {
			return fmt.Errorf("%s needs a boolean, got %v", p, arg)
		}
	case PropOwner:
		switch arg {
		case OwnerSelf, OwnerAllied, OwnerEnemy:
		default:
			return fmt.Errorf("owner must be self, allied or enemy, got %v", arg)
		}
	case PropWithinRadius:
		if n, ok := values.Int(arg); !ok || n < 0 {
			return fmt.Errorf("withinRadius needs a non-negative integer, got %v", arg)
		}
	default:
		return fmt.Errorf("unknown property %q", p)
	}
	return nil
}

// sizeArg reads a buildable argument; true means a 1x1 footprint.
func sizeArg(arg any) (int, bool) {
	if b, ok := arg.(bool); ok {
		return 1, b
	}
	n, ok := values.Int(arg)
	return n, ok && n > 0
}

// Card reads a card reference from {"player": [t,s], "index": n}.
func Card(v any) (CardRef, bool) {
	switch c := v.(type) {
	case CardRef:
		return c, true
	case map[string]any:
		p, ok := values.Player(c["player"])
		if !ok {
			return CardRef{}, false
		}
		i, ok := values.Int(c["index"])
		if !ok {
			return CardRef{}, false
		}
		return CardRef{Player: p, Index: i}, true
	}
	return CardRef{}, false
}

// coordOf extracts the coordinate of tile-like targets.
func coordOf(kind TargetType, v any) (grid.Coord, bool) {
	switch kind {
	case TargetTypeTile, TargetTypeUnit, TargetTypeBuilding:
		return values.Coord(v)
	}
	return grid.Coord{}, false
}
