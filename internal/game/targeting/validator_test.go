package targeting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fourfront/fourfront-server/internal/game/grid"
	"github.com/fourfront/fourfront-server/internal/game/rules"
)

type fakeBoard struct {
	size      int
	occupants map[grid.Coord]Occupant
	hands     map[rules.PlayerID]int
}

func (b *fakeBoard) FieldSize() int                   { return b.size }
func (b *fakeBoard) OccupantAt(c grid.Coord) Occupant { return b.occupants[c] }
func (b *fakeBoard) HandSize(p rules.PlayerID) int    { return b.hands[p] }
func (b *fakeBoard) put(c grid.Coord, k OccupantKind, p rules.PlayerID) {
	b.occupants[c] = Occupant{Kind: k, Owner: p}
}

var (
	red0  = rules.P(rules.TeamRed, 0)
	red1  = rules.P(rules.TeamRed, 1)
	blue0 = rules.P(rules.TeamBlue, 0)
)

func newBoard() *fakeBoard {
	return &fakeBoard{
		size:      10,
		occupants: map[grid.Coord]Occupant{},
		hands:     map[rules.PlayerID]int{red0: 3},
	}
}

func check(t *testing.T, b Board, subject Subject, req Target, value any) bool {
	t.Helper()
	ok, err := NewTargetValidator(b).CheckTargets(subject, []Target{req}, Binding{req.Name: value})
	require.NoError(t, err)
	return ok
}

func TestTileAndOccupantTypes(t *testing.T) {
	b := newBoard()
	b.put(grid.C(2, 2), OccupantUnit, blue0)
	b.put(grid.C(5, 5), OccupantBuilding, red0)
	me := Subject{Owner: red0}

	tile := Target{Name: "$loc", Type: TargetTypeTile}
	assert.True(t, check(t, b, me, tile, []any{0.0, 9.0}))
	assert.False(t, check(t, b, me, tile, []any{10.0, 0.0}))
	assert.False(t, check(t, b, me, tile, "nowhere"))

	unit := Target{Name: "$u", Type: TargetTypeUnit}
	assert.True(t, check(t, b, me, unit, []any{2.0, 2.0}))
	assert.False(t, check(t, b, me, unit, []any{5.0, 5.0}))

	building := Target{Name: "$b", Type: TargetTypeBuilding}
	assert.True(t, check(t, b, me, building, []any{5.0, 5.0}))
}

func TestPlayerAndCardTypes(t *testing.T) {
	b := newBoard()
	me := Subject{Owner: red0}

	player := Target{Name: "$p", Type: TargetTypePlayer}
	assert.True(t, check(t, b, me, player, []any{1.0, 1.0}))
	assert.False(t, check(t, b, me, player, []any{2.0, 0.0}))

	card := Target{Name: "$c", Type: TargetTypeCard}
	assert.True(t, check(t, b, me, card, map[string]any{"player": []any{0.0, 0.0}, "index": 2.0}))
	assert.False(t, check(t, b, me, card, map[string]any{"player": []any{0.0, 0.0}, "index": 3.0}))
	assert.False(t, check(t, b, me, card, map[string]any{"index": 0.0}))
}

func TestMissingBindingFails(t *testing.T) {
	ok, err := NewTargetValidator(newBoard()).CheckTargets(Subject{Owner: red0},
		[]Target{{Name: "$loc", Type: TargetTypeTile}}, Binding{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBuildableRequiresOwnUnitAdjacent(t *testing.T) {
	b := newBoard()
	me := Subject{Owner: red0}
	req := Target{Name: "$loc", Type: TargetTypeTile, Properties: map[string]any{"buildable": 2.0}}

	// no unit nearby
	assert.False(t, check(t, b, me, req, []any{3.0, 3.0}))

	// teammate's unit does not count
	b.put(grid.C(3, 5), OccupantUnit, red1)
	assert.False(t, check(t, b, me, req, []any{3.0, 3.0}))

	// own unit below the 2x2 footprint
	b.put(grid.C(4, 5), OccupantUnit, red0)
	assert.True(t, check(t, b, me, req, []any{3.0, 3.0}))

	// footprint leaving the field
	b.put(grid.C(9, 7), OccupantUnit, red0)
	assert.False(t, check(t, b, me, req, []any{9.0, 8.0}))

	// occupied footprint
	b.put(grid.C(4, 4), OccupantBuilding, blue0)
	assert.False(t, check(t, b, me, req, []any{3.0, 3.0}))
}

func TestSpawnableAndEmpty(t *testing.T) {
	b := newBoard()
	me := Subject{Owner: red0}
	b.put(grid.C(1, 1), OccupantBuilding, red0)

	spawn := Target{Name: "$loc", Type: TargetTypeTile, Properties: map[string]any{"spawnable": true}}
	assert.True(t, check(t, b, me, spawn, []any{1.0, 2.0}))
	assert.False(t, check(t, b, me, spawn, []any{2.0, 2.0}), "diagonal does not count")
	assert.False(t, check(t, b, me, spawn, []any{1.0, 1.0}), "occupied")

	empty := Target{Name: "$loc", Type: TargetTypeTile, Properties: map[string]any{"empty": true}}
	assert.True(t, check(t, b, me, empty, []any{4.0, 4.0}))
	assert.False(t, check(t, b, me, empty, []any{1.0, 1.0}))
}

func TestOwnerProperty(t *testing.T) {
	b := newBoard()
	b.put(grid.C(2, 2), OccupantUnit, red1)
	b.put(grid.C(3, 3), OccupantUnit, blue0)
	me := Subject{Owner: red0}

	allied := Target{Name: "$u", Type: TargetTypeUnit, Properties: map[string]any{"owner": "allied"}}
	assert.True(t, check(t, b, me, allied, []any{2.0, 2.0}))
	assert.False(t, check(t, b, me, allied, []any{3.0, 3.0}))

	enemy := Target{Name: "$u", Type: TargetTypeUnit, Properties: map[string]any{"owner": "enemy"}}
	assert.True(t, check(t, b, me, enemy, []any{3.0, 3.0}))

	self := Target{Name: "$p", Type: TargetTypePlayer, Properties: map[string]any{"owner": "self"}}
	assert.True(t, check(t, b, me, self, []any{0.0, 0.0}))
	assert.False(t, check(t, b, me, self, []any{0.0, 1.0}))
}

func TestWithinRadiusUsesSubjectLocation(t *testing.T) {
	b := newBoard()
	loc := grid.C(0, 0)
	req := Target{Name: "$loc", Type: TargetTypeTile, Properties: map[string]any{"withinRadius": 5.0}}

	assert.True(t, check(t, b, Subject{Owner: red0, Loc: &loc}, req, []any{3.0, 4.0}))
	assert.False(t, check(t, b, Subject{Owner: red0, Loc: &loc}, req, []any{4.0, 4.0}))
	assert.False(t, check(t, b, Subject{Owner: red0}, req, []any{0.0, 0.0}), "cards have no location")
}

func TestUnknownPropertyIsAnError(t *testing.T) {
	req := Target{Name: "$loc", Type: TargetTypeTile, Properties: map[string]any{"flying": true}}
	_, err := NewTargetValidator(newBoard()).CheckTargets(Subject{Owner: red0}, []Target{req}, Binding{"$loc": []any{0.0, 0.0}})
	assert.Error(t, err)
	assert.Error(t, req.Validate())
}

func TestTargetValidate(t *testing.T) {
	assert.NoError(t, Target{Name: "$loc", Type: TargetTypeTile, Properties: map[string]any{"buildable": 3.0}}.Validate())
	assert.Error(t, Target{Name: "loc", Type: TargetTypeTile}.Validate())
	assert.Error(t, Target{Name: "$x", Type: "creature"}.Validate())
	assert.Error(t, Target{Name: "$x", Type: TargetTypeUnit, Properties: map[string]any{"owner": "neutral"}}.Validate())
	assert.Error(t, Target{Name: "$x", Type: TargetTypeTile, Properties: map[string]any{"buildable": 0.0}}.Validate())
}
