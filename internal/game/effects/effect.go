// Package effects interprets the declarative effect lists carried by cards
// and active abilities.
package effects

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fourfront/fourfront-server/internal/game/grid"
	"github.com/fourfront/fourfront-server/internal/game/modifiers"
	"github.com/fourfront/fourfront-server/internal/game/rules"
	"github.com/fourfront/fourfront-server/internal/game/values"
)

// Kind names an effect. The set is closed; Run rejects anything else.
type Kind string

const (
	KindGain           Kind = "gain"
	KindHeal           Kind = "heal"
	KindModifyStats    Kind = "modify-stats"
	KindModifyModifier Kind = "modify-modifier"
	KindSpawn          Kind = "spawn"
)

// required lists the parameters each kind must declare.
var required = map[Kind][]string{
	KindGain:           {"target", "quantity"},
	KindHeal:           {"target", "amount"},
	KindModifyStats:    {"target", "stat", "amount", "type"},
	KindModifyModifier: {"modification", "type"},
	KindSpawn:          {"type", "id", "loc"},
}

// Valid reports whether k is a known effect kind.
func (k Kind) Valid() bool {
	_, ok := required[k]
	return ok
}

// SpawnType selects what a spawn effect creates.
type SpawnType string

const (
	SpawnUnit     SpawnType = "U"
	SpawnBuilding SpawnType = "B"
)

// Effect is one declared effect: its kind plus raw parameters that may
// reference target variables ("$loc") or the source ("#selfLoc").
type Effect struct {
	Kind   Kind
	Params map[string]any
}

// FromMap builds an effect from its record form {"effect": kind, ...params}.
func FromMap(m map[string]any) (Effect, error) {
	name, ok := m["effect"].(string)
	if !ok {
		return Effect{}, fmt.Errorf("effect record has no effect name: %v", m)
	}
	params := make(map[string]any, len(m))
	for k, v := range m {
		if k == "effect" {
			continue
		}
		params[k] = values.DeepCopy(v)
	}
	e := Effect{Kind: Kind(name), Params: params}
	if !e.Kind.Valid() {
		return Effect{}, fmt.Errorf("unknown effect %q", name)
	}
	return e, nil
}

// Validate checks required parameters and that every "$var" reference is
// among declared target names.
func (e Effect) Validate(declared map[string]bool) error {
	keys, ok := required[e.Kind]
	if !ok {
		return fmt.Errorf("unknown effect %q", e.Kind)
	}
	for _, k := range keys {
		if _, ok := e.Params[k]; !ok {
			return fmt.Errorf("effect %s: missing parameter %q", e.Kind, k)
		}
	}
	var missing []string
	walkStrings(e.Params, func(s string) {
		if strings.HasPrefix(s, "$") && !declared[s] {
			missing = append(missing, s)
		}
	})
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("effect %s: undeclared targets %v", e.Kind, missing)
	}
	return nil
}

func walkStrings(v any, fn func(string)) {
	switch t := v.(type) {
	case string:
		fn(t)
	case map[string]any:
		for _, val := range t {
			walkStrings(val, fn)
		}
	case []any:
		for _, val := range t {
			walkStrings(val, fn)
		}
	}
}

// GainParams: give a player resources.
type GainParams struct {
	Target   rules.PlayerID `json:"target"`
	Quantity int            `json:"quantity"`
	Type     string         `json:"type"`
}

// HealParams: restore health to whatever stands on Target.
type HealParams struct {
	Target grid.Coord `json:"target"`
	Amount int        `json:"amount"`
}

// ModifyStatsParams: change a numeric stat of whatever stands on Target.
type ModifyStatsParams struct {
	Target grid.Coord     `json:"target"`
	Stat   string         `json:"stat"`
	Amount int            `json:"amount"`
	Type   modifiers.Mode `json:"type"`
}

// ModifyModifierParams: adjust the source's own modifier bag.
type ModifyModifierParams struct {
	Modification map[string]any `json:"modification"`
	Type         modifiers.Mode `json:"type"`
}

// SpawnParams: create a unit or building from a template.
type SpawnParams struct {
	Type SpawnType  `json:"type"`
	ID   string     `json:"id"`
	Loc  grid.Coord `json:"loc"`
}

// SpawnRequest is what the host receives for a spawn effect, with the
// source's spawn modifiers already folded in.
type SpawnRequest struct {
	Type        SpawnType
	ID          string
	Loc         grid.Coord
	Owner       rules.PlayerID
	BonusDamage int
	BonusHealth int
}
