package templates

import (
	"fmt"

	"github.com/fourfront/fourfront-server/internal/game/values"
)

// ApplyDefaults returns a copy of item with missing keys filled from defaults.
//
// Object defaults are applied recursively, creating the object when absent.
// Array defaults hold at most one element: a missing array becomes empty,
// and an object element is applied to every element of a present array.
// Scalars are copied only when the key is absent. The inputs are not modified.
func ApplyDefaults(item, defaults map[string]any) (map[string]any, error) {
	out := values.CopyMap(item)
	for key, def := range defaults {
		current, present := out[key]
		switch d := def.(type) {
		case map[string]any:
			obj := map[string]any{}
			if present {
				m, ok := current.(map[string]any)
				if !ok {
					return nil, fmt.Errorf("%s: expected object, got %T", key, current)
				}
				obj = m
			}
			filled, err := ApplyDefaults(obj, d)
			if err != nil {
				return nil, fmt.Errorf("%s.%w", key, err)
			}
			out[key] = filled

		case []any:
			if len(d) > 1 {
				return nil, fmt.Errorf("%s: array default must have at most one element", key)
			}
			if !present {
				out[key] = []any{}
				continue
			}
			arr, ok := current.([]any)
			if !ok {
				return nil, fmt.Errorf("%s: expected array, got %T", key, current)
			}
			if len(d) == 0 {
				continue
			}
			elemDefault, ok := d[0].(map[string]any)
			if !ok {
				continue
			}
			filled := make([]any, len(arr))
			for i, elem := range arr {
				m, ok := elem.(map[string]any)
				if !ok {
					return nil, fmt.Errorf("%s[%d]: expected object, got %T", key, i, elem)
				}
				f, err := ApplyDefaults(m, elemDefault)
				if err != nil {
					return nil, fmt.Errorf("%s[%d].%w", key, i, err)
				}
				filled[i] = f
			}
			out[key] = filled

		default:
			if !present {
				out[key] = values.DeepCopy(def)
			}
		}
	}
	return out, nil
}

var abilityDefaults = map[string]any{
	"name":        "",
	"description": "",
	"uses":        1,
	"targets":     []any{targetDefaults},
	"effects":     []any{},
}

var targetDefaults = map[string]any{
	"properties": map[string]any{},
}

var unitDefaults = map[string]any{
	"faction":     string(FactionNeutral),
	"description": "",
	"damage":      0,
	"splash":      0,
	"range":       0,
	"speed":       0,
	"attributes":  []any{},
	"passives":    []any{},
	"actives":     []any{abilityDefaults},
}

var buildingDefaults = map[string]any{
	"faction":     string(FactionNeutral),
	"description": "",
	"damage":      0,
	"splash":      0,
	"range":       0,
	"size":        1,
	"upkeep":      0,
	"moneyGen":    0,
	"energyGen":   0,
	"buildTime":   0,
	"attributes":  []any{},
	"passives":    []any{},
	"actives":     []any{abilityDefaults},
}

var cardDefaults = map[string]any{
	"faction":     string(FactionNeutral),
	"description": "",
	"cost":        0,
	"targets":     []any{targetDefaults},
	"effects":     []any{},
	"modifiers":   map[string]any{},
}
