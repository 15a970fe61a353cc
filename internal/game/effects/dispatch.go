package effects

import (
	"fmt"
	"strings"

	"github.com/fourfront/fourfront-server/internal/game/grid"
	"github.com/fourfront/fourfront-server/internal/game/modifiers"
	"github.com/fourfront/fourfront-server/internal/game/rules"
	"github.com/fourfront/fourfront-server/internal/game/targeting"
	"github.com/fourfront/fourfront-server/internal/game/values"
)

// Host applies resolved effects to the game. Operations that find nothing
// to act on return an empty ledger.
type Host interface {
	GainMoney(p rules.PlayerID, amount int) *rules.Ledger
	Heal(c grid.Coord, amount int) *rules.Ledger
	ModifyStats(c grid.Coord, stat string, amount int, mode modifiers.Mode) (*rules.Ledger, error)
	Spawn(req SpawnRequest) (*rules.Ledger, error)
}

// Run applies effects in order and returns their combined events. On error
// the events of the effects already applied are returned with it.
func Run(host Host, src Source, binding targeting.Binding, list []Effect) (*rules.Ledger, error) {
	ledger := rules.NewLedger()
	for i, e := range list {
		l, err := apply(host, src, binding, e)
		ledger.Concat(l)
		if err != nil {
			return ledger, fmt.Errorf("effect %d (%s): %w", i, e.Kind, err)
		}
	}
	return ledger, nil
}

func apply(host Host, src Source, binding targeting.Binding, e Effect) (*rules.Ledger, error) {
	params, err := ReplaceVars(e.Params, binding, src)
	if err != nil {
		return nil, err
	}

	switch e.Kind {
	case KindGain:
		var p GainParams
		if err := values.Decode(params, &p); err != nil {
			return nil, err
		}
		if p.Type != "" && p.Type != "money" {
			return nil, fmt.Errorf("cannot gain %q", p.Type)
		}
		if !p.Target.Valid() {
			return rules.NewLedger(), nil
		}
		return host.GainMoney(p.Target, p.Quantity), nil

	case KindHeal:
		var p HealParams
		if err := values.Decode(params, &p); err != nil {
			return nil, err
		}
		return host.Heal(p.Target, p.Amount+bonus(src, "heal")), nil

	case KindModifyStats:
		var p ModifyStatsParams
		if err := values.Decode(params, &p); err != nil {
			return nil, err
		}
		if !p.Type.Valid() {
			return nil, fmt.Errorf("unknown mode %q", p.Type)
		}
		return host.ModifyStats(p.Target, p.Stat, p.Amount, p.Type)

	case KindModifyModifier:
		var p ModifyModifierParams
		if err := values.Decode(params, &p); err != nil {
			return nil, err
		}
		if src.Modifiers == nil {
			return nil, fmt.Errorf("source has no modifiers")
		}
		path, value, err := src.Modifiers.Apply(p.Modification, p.Type)
		if err != nil {
			return nil, err
		}
		l := rules.NewLedger()
		l.AddFor([]rules.PlayerID{src.Owner}, rules.EventModifierSet, strings.Join(path, "."), value)
		return l, nil

	case KindSpawn:
		var p SpawnParams
		if err := values.Decode(params, &p); err != nil {
			return nil, err
		}
		if p.Type != SpawnUnit && p.Type != SpawnBuilding {
			return nil, fmt.Errorf("unknown spawn type %q", p.Type)
		}
		return host.Spawn(SpawnRequest{
			Type:        p.Type,
			ID:          p.ID,
			Loc:         p.Loc,
			Owner:       src.Owner,
			BonusDamage: bonus(src, "spawn", "damage"),
			BonusHealth: bonus(src, "spawn", "health"),
		})

	default:
		return nil, fmt.Errorf("unknown effect %q", e.Kind)
	}
}

func bonus(src Source, path ...string) int {
	if src.Modifiers == nil {
		return 0
	}
	return src.Modifiers.Int(path...)
}
