package game

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/fourfront/fourfront-server/internal/game/economy"
	"github.com/fourfront/fourfront-server/internal/game/effects"
	"github.com/fourfront/fourfront-server/internal/game/grid"
	"github.com/fourfront/fourfront-server/internal/game/rules"
	"github.com/fourfront/fourfront-server/internal/game/templates"
)

var (
	red0  = rules.P(rules.TeamRed, 0)
	red1  = rules.P(rules.TeamRed, 1)
	blue0 = rules.P(rules.TeamBlue, 0)
	blue1 = rules.P(rules.TeamBlue, 1)
)

// testHarness wraps a small match built from the builtin catalog.
// Headquarters sit at (1,1), (1,16), (16,1) and (16,16).
type testHarness struct {
	t       *testing.T
	state   *State
	catalog *templates.Catalog
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()
	catalog, err := templates.LoadBuiltin()
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.FieldSize = 20
	opts.Seed = 42
	seats := [2][2]Seat{
		{{Name: "ada", Faction: templates.FactionT}, {Name: "bo", Faction: templates.FactionM}},
		{{Name: "cy", Faction: templates.FactionS}, {Name: "di", Faction: templates.FactionA}},
	}
	s, err := New(catalog, seats, opts, zaptest.NewLogger(t))
	require.NoError(t, err)
	return &testHarness{t: t, state: s, catalog: catalog}
}

func (h *testHarness) unit(owner rules.PlayerID, id string, c grid.Coord) *Entity {
	h.t.Helper()
	l, err := h.state.SpawnUnit(owner, id, c)
	require.NoError(h.t, err)
	require.False(h.t, l.Empty(), "spawn %s at %s", id, c)
	e, ok := h.state.EntityAt(c)
	require.True(h.t, ok)
	return e
}

func (h *testHarness) building(owner rules.PlayerID, id string, c grid.Coord) *Entity {
	h.t.Helper()
	l, err := h.state.SpawnBuilding(owner, id, c)
	require.NoError(h.t, err)
	require.False(h.t, l.Empty(), "spawn %s at %s", id, c)
	e, ok := h.state.EntityAt(c)
	require.True(h.t, ok)
	return e
}

// custom spawns a building from an ad-hoc template.
func (h *testHarness) custom(owner rules.PlayerID, t *templates.Building, c grid.Coord) (*Entity, *rules.Ledger) {
	h.t.Helper()
	l := h.state.spawnBuilding(t, effects.SpawnRequest{Owner: owner, Loc: c})
	require.False(h.t, l.Empty())
	e, ok := h.state.EntityAt(c)
	require.True(h.t, ok)
	return e, l
}

func (h *testHarness) player(p rules.PlayerID) *Player {
	h.t.Helper()
	pl, ok := h.state.Player(p)
	require.True(h.t, ok)
	return pl
}

// giveCard replaces p's hand with the named cards.
func (h *testHarness) giveCard(p rules.PlayerID, ids ...string) []*Card {
	h.t.Helper()
	pl := h.player(p)
	pl.Hand = economy.NewHand[*Card](10)
	var cards []*Card
	for _, id := range ids {
		t, ok := h.catalog.Cards[id]
		require.True(h.t, ok, "card %s", id)
		c := newCard(t)
		require.True(h.t, pl.Hand.Add(c))
		cards = append(cards, c)
	}
	return cards
}

func testBuilding(id string, size, upkeep, energyGen int) *templates.Building {
	return &templates.Building{
		Stats:     templates.Stats{ID: id, Name: id, Faction: templates.FactionNeutral, MaxHealth: 40},
		Size:      size,
		Upkeep:    upkeep,
		EnergyGen: energyGen,
	}
}

// checkOccupancy verifies that tiles and the entity arena agree.
func (h *testHarness) checkOccupancy() {
	h.t.Helper()
	s := h.state
	covered := make(map[grid.Coord]EntityID)
	for _, id := range s.ordered() {
		e, ok := s.entities[id]
		require.True(h.t, ok, "listed entity %d missing", id)
		for _, c := range e.Footprint() {
			covered[c] = id
		}
	}
	require.Len(h.t, s.entities, len(s.buildings)+len(s.units))
	n := s.field.Size()
	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			c := grid.C(x, y)
			tile, _ := s.field.Tile(c)
			require.Equal(h.t, covered[c], tile.Occupant, "tile %s", c)
		}
	}
}
