package effects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fourfront/fourfront-server/internal/game/grid"
	"github.com/fourfront/fourfront-server/internal/game/modifiers"
	"github.com/fourfront/fourfront-server/internal/game/rules"
	"github.com/fourfront/fourfront-server/internal/game/targeting"
)

type recordingHost struct {
	gains  map[rules.PlayerID]int
	heals  map[grid.Coord]int
	stats  []ModifyStatsParams
	spawns []SpawnRequest
}

func newRecordingHost() *recordingHost {
	return &recordingHost{gains: map[rules.PlayerID]int{}, heals: map[grid.Coord]int{}}
}

func (h *recordingHost) GainMoney(p rules.PlayerID, amount int) *rules.Ledger {
	h.gains[p] += amount
	l := rules.NewLedger()
	l.Add(rules.EventChangeMoney, p.Pair(), amount)
	return l
}

func (h *recordingHost) Heal(c grid.Coord, amount int) *rules.Ledger {
	h.heals[c] += amount
	l := rules.NewLedger()
	l.Add(rules.EventHeal, c.Pair(), amount)
	return l
}

func (h *recordingHost) ModifyStats(c grid.Coord, stat string, amount int, mode modifiers.Mode) (*rules.Ledger, error) {
	h.stats = append(h.stats, ModifyStatsParams{Target: c, Stat: stat, Amount: amount, Type: mode})
	return rules.NewLedger(), nil
}

func (h *recordingHost) Spawn(req SpawnRequest) (*rules.Ledger, error) {
	h.spawns = append(h.spawns, req)
	l := rules.NewLedger()
	l.Add(rules.EventSpawnUnit, req.ID)
	return l, nil
}

var owner = rules.P(rules.TeamBlue, 1)

func mustEffect(t *testing.T, m map[string]any) Effect {
	t.Helper()
	e, err := FromMap(m)
	require.NoError(t, err)
	return e
}

func TestReplaceVars(t *testing.T) {
	loc := grid.C(4, 5)
	src := Source{Owner: owner, Loc: &loc}
	params := map[string]any{
		"target": "$loc",
		"who":    "#selfPlayer",
		"from":   "#selfLoc",
		"nested": map[string]any{"list": []any{"$loc", "plain"}},
	}
	out, err := ReplaceVars(params, targeting.Binding{"$loc": []any{1.0, 2.0}}, src)
	require.NoError(t, err)

	assert.Equal(t, []any{1.0, 2.0}, out["target"])
	assert.Equal(t, [2]int{1, 1}, out["who"])
	assert.Equal(t, [2]int{4, 5}, out["from"])
	assert.Equal(t, []any{[]any{1.0, 2.0}, "plain"}, out["nested"].(map[string]any)["list"])
	assert.Equal(t, "$loc", params["target"], "input must not be mutated")
}

func TestReplaceVarsFailsLoudly(t *testing.T) {
	cardSrc := Source{Owner: owner, Card: "medkit"}

	_, err := ReplaceVars(map[string]any{"a": "#selfLoc"}, nil, cardSrc)
	assert.Error(t, err)

	_, err = ReplaceVars(map[string]any{"a": "#selfCard"}, nil, Source{Owner: owner})
	assert.Error(t, err)

	_, err = ReplaceVars(map[string]any{"a": "#selfThing"}, nil, cardSrc)
	assert.Error(t, err)

	_, err = ReplaceVars(map[string]any{"a": "$missing"}, targeting.Binding{}, cardSrc)
	assert.Error(t, err)

	out, err := ReplaceVars(map[string]any{"a": "#selfCard"}, nil, cardSrc)
	require.NoError(t, err)
	assert.Equal(t, "medkit", out["a"])
}

func TestRunDispatchesInOrder(t *testing.T) {
	host := newRecordingHost()
	bag := modifiers.New(map[string]any{"heal": 2, "spawn": map[string]any{"health": 5}})
	src := Source{Owner: owner, Card: "combo", Modifiers: bag}

	list := []Effect{
		mustEffect(t, map[string]any{"effect": "gain", "target": "#selfPlayer", "quantity": 3.0}),
		mustEffect(t, map[string]any{"effect": "heal", "target": "$loc", "amount": 4.0}),
		mustEffect(t, map[string]any{"effect": "spawn", "type": "U", "id": "soldier", "loc": "$loc"}),
		mustEffect(t, map[string]any{"effect": "modify-stats", "target": "$loc", "stat": "damage", "amount": 2.0, "type": "change"}),
	}
	ledger, err := Run(host, src, targeting.Binding{"$loc": []any{3.0, 3.0}}, list)
	require.NoError(t, err)

	assert.Equal(t, 3, host.gains[owner])
	assert.Equal(t, 6, host.heals[grid.C(3, 3)], "heal modifier is added")
	require.Len(t, host.spawns, 1)
	assert.Equal(t, SpawnRequest{Type: SpawnUnit, ID: "soldier", Loc: grid.C(3, 3), Owner: owner, BonusHealth: 5}, host.spawns[0])
	require.Len(t, host.stats, 1)
	assert.Equal(t, modifiers.ModeChange, host.stats[0].Type)

	assert.Equal(t, []rules.EventType{rules.EventChangeMoney, rules.EventHeal, rules.EventSpawnUnit}, ledger.Names())
}

func TestModifyModifierUpdatesSource(t *testing.T) {
	bag := modifiers.New(nil)
	src := Source{Owner: owner, Card: "growth", Modifiers: bag}
	e := mustEffect(t, map[string]any{
		"effect":       "modify-modifier",
		"modification": map[string]any{"spawn": map[string]any{"damage": 1.0}},
		"type":         "change",
	})

	for i := 0; i < 2; i++ {
		ledger, err := Run(newRecordingHost(), src, nil, []Effect{e})
		require.NoError(t, err)
		assert.Len(t, ledger.For(owner), 1)
		assert.Empty(t, ledger.For(owner.Teammate()), "modifier changes are private")
	}
	assert.Equal(t, 2, bag.Int("spawn", "damage"))
}

func TestUnknownEffectKind(t *testing.T) {
	_, err := FromMap(map[string]any{"effect": "teleport"})
	assert.Error(t, err)

	_, err = Run(newRecordingHost(), Source{Owner: owner}, nil, []Effect{{Kind: "teleport", Params: map[string]any{}}})
	assert.Error(t, err)
}

func TestBadParamsReturnPartialLedger(t *testing.T) {
	list := []Effect{
		mustEffect(t, map[string]any{"effect": "gain", "target": "#selfPlayer", "quantity": 1.0}),
		mustEffect(t, map[string]any{"effect": "heal", "target": "somewhere", "amount": 1.0}),
	}
	ledger, err := Run(newRecordingHost(), Source{Owner: owner, Card: "x"}, nil, list)
	assert.Error(t, err)
	assert.Equal(t, []rules.EventType{rules.EventChangeMoney}, ledger.Names())
}

func TestValidate(t *testing.T) {
	e := mustEffect(t, map[string]any{"effect": "heal", "target": "$unit", "amount": 1.0})
	assert.NoError(t, e.Validate(map[string]bool{"$unit": true}))
	assert.Error(t, e.Validate(map[string]bool{}))

	missing := mustEffect(t, map[string]any{"effect": "spawn", "type": "U"})
	assert.Error(t, missing.Validate(nil))
}
