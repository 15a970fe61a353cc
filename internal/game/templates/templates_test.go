package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fourfront/fourfront-server/internal/game/effects"
	"github.com/fourfront/fourfront-server/internal/game/targeting"
)

func TestApplyDefaultsIsPure(t *testing.T) {
	item := map[string]any{
		"name":    "Medic",
		"actives": []any{map[string]any{"effects": []any{}}},
	}
	defaults := map[string]any{
		"damage":    0,
		"modifiers": map[string]any{"spawn": map[string]any{}},
		"actives":   []any{map[string]any{"uses": 1}},
		"passives":  []any{},
	}

	out, err := ApplyDefaults(item, defaults)
	require.NoError(t, err)

	assert.Equal(t, 0, out["damage"])
	assert.Equal(t, map[string]any{"spawn": map[string]any{}}, out["modifiers"])
	assert.Equal(t, []any{}, out["passives"])
	assert.Equal(t, 1, out["actives"].([]any)[0].(map[string]any)["uses"])

	_, touched := item["actives"].([]any)[0].(map[string]any)["uses"]
	assert.False(t, touched, "input must not be modified")
	assert.NotContains(t, item, "damage")
}

func TestApplyDefaultsKeepsPresentValues(t *testing.T) {
	out, err := ApplyDefaults(map[string]any{"splash": 2.0}, map[string]any{"splash": 0})
	require.NoError(t, err)
	assert.Equal(t, 2.0, out["splash"])
}

func TestApplyDefaultsMalformed(t *testing.T) {
	_, err := ApplyDefaults(map[string]any{"actives": "none"}, map[string]any{"actives": []any{}})
	assert.Error(t, err)

	_, err = ApplyDefaults(map[string]any{}, map[string]any{"x": []any{1, 2}})
	assert.Error(t, err)

	_, err = ApplyDefaults(map[string]any{"modifiers": 3.0}, map[string]any{"modifiers": map[string]any{}})
	assert.Error(t, err)
}

func TestLoadBuiltin(t *testing.T) {
	cat, err := LoadBuiltin()
	require.NoError(t, err)

	hq, ok := cat.Headquarters()
	require.True(t, ok)
	assert.Equal(t, "headquarters", hq.ID)
	assert.True(t, hq.IsHeadquarters())
	assert.Equal(t, 0, hq.BuildTime)

	soldier, ok := cat.Unit("soldier")
	require.True(t, ok)
	assert.Equal(t, 0, soldier.Splash, "defaults fill missing stats")
	assert.Equal(t, FactionNeutral, soldier.Faction)
	assert.Empty(t, soldier.Actives)

	medic, ok := cat.Unit("medic")
	require.True(t, ok)
	require.Len(t, medic.Actives, 1)
	assert.Equal(t, 2, medic.Actives[0].Uses)
	assert.Equal(t, effects.KindHeal, medic.Actives[0].Effects[0].Kind)
}

func TestSpawnCardDefaults(t *testing.T) {
	cat, err := LoadBuiltin()
	require.NoError(t, err)

	card := cat.Cards["generator"]
	require.NotNil(t, card)
	assert.Equal(t, "Generator", card.Name)
	assert.Equal(t, CardBuilding, card.Type)
	require.Len(t, card.Targets, 1)
	assert.Equal(t, "$loc", card.Targets[0].Name)
	assert.Equal(t, targeting.TargetTypeTile, card.Targets[0].Type)
	assert.Equal(t, 2, card.Targets[0].Properties["buildable"])
	require.Len(t, card.Effects, 1)
	assert.Equal(t, effects.KindSpawn, card.Effects[0].Kind)
	assert.Equal(t, "generator", card.Effects[0].Params["id"])
	assert.Equal(t, "$loc", card.Effects[0].Params["loc"])
	assert.NotNil(t, card.Modifiers)

	unitCard := cat.Cards["medic"]
	assert.Equal(t, FactionM, unitCard.Faction, "faction comes from the unit")
	assert.Equal(t, true, unitCard.Targets[0].Properties["spawnable"])
}

func TestDeckForFaction(t *testing.T) {
	cat, err := LoadBuiltin()
	require.NoError(t, err)

	for _, card := range cat.DeckFor(FactionT) {
		assert.Contains(t, []Faction{FactionT, FactionNeutral}, card.Faction, card.ID)
	}
	ids := map[string]bool{}
	for _, card := range cat.DeckFor(FactionT) {
		ids[card.ID] = true
	}
	assert.True(t, ids["overclock"])
	assert.False(t, ids["sabotage"])
}

func TestParseRejectsBadData(t *testing.T) {
	units := []byte(`{"soldier": {"name": "Soldier", "maxHealth": 10}}`)
	buildings := []byte(`{"headquarters": {"name": "Headquarters", "maxHealth": 100, "size": 3}}`)

	cases := map[string]string{
		"unknown effect": `{"x": {"name": "X", "cardType": "O", "effects": [{"effect": "teleport"}]}}`,
		"undeclared var": `{"x": {"name": "X", "cardType": "O", "effects": [{"effect": "heal", "target": "$unit", "amount": 1}]}}`,
		"missing unit":   `{"tank": {"cardType": "U", "cost": 3}}`,
		"bad faction":    `{"x": {"name": "X", "cardType": "O", "faction": "Q"}}`,
		"unknown field":  `{"x": {"name": "X", "cardType": "O", "costt": 1}}`,
		"bad spawn":      `{"x": {"name": "X", "cardType": "O", "targets": [{"name": "$loc", "type": "tile"}], "effects": [{"effect": "spawn", "type": "U", "id": "tank", "loc": "$loc"}]}}`,
		"bad property":   `{"x": {"name": "X", "cardType": "O", "targets": [{"name": "$loc", "type": "tile", "properties": {"flying": true}}]}}`,
	}
	for name, cards := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(units, buildings, []byte(cards))
			assert.Error(t, err)
		})
	}

	_, err := Parse(units, buildings, []byte(`{"soldier": {"cardType": "U", "cost": 3}}`))
	assert.NoError(t, err)
}

func TestCloneActivesIsDeep(t *testing.T) {
	cat, err := LoadBuiltin()
	require.NoError(t, err)
	medic, _ := cat.Unit("medic")

	clone := CloneActives(medic.Actives)
	clone[0].Effects[0].Params["amount"] = 99
	clone[0].Uses = 7

	assert.Equal(t, 2, medic.Actives[0].Uses)
	assert.NotEqual(t, 99, medic.Actives[0].Effects[0].Params["amount"])
}
