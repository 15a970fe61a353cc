package targeting

import (
	"fmt"

	"github.com/fourfront/fourfront-server/internal/game/grid"
	"github.com/fourfront/fourfront-server/internal/game/rules"
	"github.com/fourfront/fourfront-server/internal/game/values"
)

// OccupantKind tells what stands on a tile.
type OccupantKind int

const (
	OccupantNone OccupantKind = iota
	OccupantUnit
	OccupantBuilding
)

// Occupant describes the entity standing on a tile.
type Occupant struct {
	Kind  OccupantKind
	Owner rules.PlayerID
}

// Board provides access to game state needed for target validation.
type Board interface {
	// FieldSize is the side length of the square field.
	FieldSize() int
	// OccupantAt reports the occupant of an in-bounds tile.
	OccupantAt(c grid.Coord) Occupant
	// HandSize returns how many cards p holds.
	HandSize(p rules.PlayerID) int
}

// Subject is the card holder or entity whose targets are being checked.
type Subject struct {
	Owner rules.PlayerID
	// Loc is set for entity abilities and nil for cards.
	Loc *grid.Coord
}

// TargetValidator validates that selected targets are legal.
type TargetValidator struct {
	board Board
}

// NewTargetValidator creates a new target validator.
func NewTargetValidator(board Board) *TargetValidator {
	return &TargetValidator{board: board}
}

// CheckTargets reports whether every declared target is bound to a legal
// value. An error means the declaration itself is malformed.
func (tv *TargetValidator) CheckTargets(subject Subject, reqs []Target, binding Binding) (bool, error) {
	if tv == nil || tv.board == nil {
		return false, fmt.Errorf("target validator not initialized")
	}
	for _, req := range reqs {
		value, ok := binding[req.Name]
		if !ok {
			return false, nil
		}
		legal, err := tv.validateTarget(req, value)
		if err != nil || !legal {
			return false, err
		}
		legal, err = tv.validateProperties(subject, req, value)
		if err != nil || !legal {
			return false, err
		}
	}
	return true, nil
}

func (tv *TargetValidator) validateTarget(req Target, value any) (bool, error) {
	size := tv.board.FieldSize()
	switch req.Type {
	case TargetTypeTile:
		c, ok := values.Coord(value)
		return ok && c.InBounds(size), nil
	case TargetTypeUnit, TargetTypeBuilding:
		c, ok := values.Coord(value)
		if !ok || !c.InBounds(size) {
			return false, nil
		}
		want := OccupantUnit
		if req.Type == TargetTypeBuilding {
			want = OccupantBuilding
		}
		return tv.board.OccupantAt(c).Kind == want, nil
	case TargetTypePlayer:
		p, ok := values.Player(value)
		return ok && p.Valid(), nil
	case TargetTypeCard:
		ref, ok := Card(value)
		if !ok || !ref.Player.Valid() {
			return false, nil
		}
		return ref.Index >= 0 && ref.Index < tv.board.HandSize(ref.Player), nil
	default:
		return false, fmt.Errorf("unknown target type %q", req.Type)
	}
}

func (tv *TargetValidator) validateProperties(subject Subject, req Target, value any) (bool, error) {
	for name, arg := range req.Properties {
		var legal bool
		switch Property(name) {
		case PropBuildable:
			size, ok := sizeArg(arg)
			if !ok {
				return false, fmt.Errorf("buildable needs a positive size, got %v", arg)
			}
			c, ok := coordOf(req.Type, value)
			legal = ok && tv.buildable(subject.Owner, c, size)
		case PropEmpty:
			c, ok := coordOf(req.Type, value)
			legal = ok && tv.board.OccupantAt(c).Kind == OccupantNone
		case PropSpawnable:
			c, ok := coordOf(req.Type, value)
			legal = ok && tv.spawnable(subject.Owner, c)
		case PropOwner:
			legal = tv.ownerMatches(subject.Owner, req.Type, value, arg)
		case PropWithinRadius:
			n, ok := values.Int(arg)
			if !ok {
				return false, fmt.Errorf("withinRadius needs an integer, got %v", arg)
			}
			c, ok := coordOf(req.Type, value)
			legal = ok && subject.Loc != nil && grid.WithinDist(*subject.Loc, c, n)
		default:
			return false, fmt.Errorf("unknown property %q", name)
		}
		if !legal {
			return false, nil
		}
	}
	return true, nil
}

// buildable: the footprint fits, is vacant and borders one of owner's units.
func (tv *TargetValidator) buildable(owner rules.PlayerID, anchor grid.Coord, size int) bool {
	n := tv.board.FieldSize()
	if anchor.X < 0 || anchor.Y < 0 || anchor.X+size > n || anchor.Y+size > n {
		return false
	}
	for _, c := range grid.Footprint(anchor, size) {
		if tv.board.OccupantAt(c).Kind != OccupantNone {
			return false
		}
	}
	return tv.borders(owner, anchor, size, OccupantUnit)
}

// spawnable: the tile is vacant and borders one of owner's buildings.
func (tv *TargetValidator) spawnable(owner rules.PlayerID, c grid.Coord) bool {
	if !c.InBounds(tv.board.FieldSize()) || tv.board.OccupantAt(c).Kind != OccupantNone {
		return false
	}
	return tv.borders(owner, c, 1, OccupantBuilding)
}

func (tv *TargetValidator) borders(owner rules.PlayerID, anchor grid.Coord, size int, kind OccupantKind) bool {
	for _, c := range grid.Border(anchor, size, tv.board.FieldSize()) {
		occ := tv.board.OccupantAt(c)
		if occ.Kind == kind && occ.Owner == owner {
			return true
		}
	}
	return false
}

func (tv *TargetValidator) ownerMatches(owner rules.PlayerID, kind TargetType, value, relation any) bool {
	var target rules.PlayerID
	switch kind {
	case TargetTypePlayer:
		p, ok := values.Player(value)
		if !ok {
			return false
		}
		target = p
	case TargetTypeCard:
		ref, ok := Card(value)
		if !ok {
			return false
		}
		target = ref.Player
	default:
		c, ok := coordOf(kind, value)
		if !ok {
			return false
		}
		occ := tv.board.OccupantAt(c)
		if occ.Kind == OccupantNone {
			return false
		}
		target = occ.Owner
	}
	switch relation {
	case OwnerSelf:
		return target == owner
	case OwnerAllied:
		return target.Allied(owner)
	case OwnerEnemy:
		return !target.Allied(owner)
	}
	return false
}
