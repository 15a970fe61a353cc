// Package values converts loosely typed data decoded from JSON or msgpack
// into the engine's typed values.
package values

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"

	"github.com/go-viper/mapstructure/v2"

	"github.com/fourfront/fourfront-server/internal/game/grid"
	"github.com/fourfront/fourfront-server/internal/game/rules"
)

// Int converts any integral number to int. Floats must have no fraction.
func Int(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		if n > math.MaxInt32 {
			return 0, false
		}
		return int(n), true
	case float32:
		return floatInt(float64(n))
	case float64:
		return floatInt(n)
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	default:
		return 0, false
	}
}

func floatInt(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// pair reads a two-element list of integers.
func pair(v any) (int, int, bool) {
	switch p := v.(type) {
	case [2]int:
		return p[0], p[1], true
	case []int:
		if len(p) == 2 {
			return p[0], p[1], true
		}
	case []any:
		if len(p) == 2 {
			a, ok1 := Int(p[0])
			b, ok2 := Int(p[1])
			return a, b, ok1 && ok2
		}
	}
	return 0, 0, false
}

// Coord reads a coordinate from [x,y] or a grid.Coord.
func Coord(v any) (grid.Coord, bool) {
	switch c := v.(type) {
	case grid.Coord:
		return c, true
	case *grid.Coord:
		if c == nil {
			return grid.Coord{}, false
		}
		return *c, true
	}
	x, y, ok := pair(v)
	return grid.C(x, y), ok
}

// Player reads a seat from [team,slot] or a rules.PlayerID. The seat is
// not checked for validity.
func Player(v any) (rules.PlayerID, bool) {
	if p, ok := v.(rules.PlayerID); ok {
		return p, true
	}
	team, slot, ok := pair(v)
	return rules.P(rules.Team(team), slot), ok
}

// DeepCopy copies maps and slices recursively. Other values are returned as is.
func DeepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = DeepCopy(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = DeepCopy(val)
		}
		return out
	default:
		return v
	}
}

// CopyMap is DeepCopy for a map; a nil map yields an empty one.
func CopyMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return DeepCopy(m).(map[string]any)
}

var (
	coordType  = reflect.TypeOf(grid.Coord{})
	playerType = reflect.TypeOf(rules.PlayerID{})
)

// DecodeHook converts [x,y] lists into grid.Coord and [team,slot] lists into
// rules.PlayerID during mapstructure decoding.
func DecodeHook() mapstructure.DecodeHookFuncType {
	return func(from, to reflect.Type, data any) (any, error) {
		switch to {
		case coordType:
			if from == coordType {
				return data, nil
			}
			c, ok := Coord(data)
			if !ok {
				return nil, fmt.Errorf("expected [x,y], got %v", data)
			}
			return c, nil
		case playerType:
			if from == playerType {
				return data, nil
			}
			p, ok := Player(data)
			if !ok {
				return nil, fmt.Errorf("expected [team,slot], got %v", data)
			}
			return p, nil
		}
		return data, nil
	}
}

// Decode maps loosely typed input onto out, a pointer to a struct.
// Numbers are weakly typed so JSON floats fill int fields; unknown keys are errors.
func Decode(input any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       DecodeHook(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
		TagName:          "json",
	})
	if err != nil {
		return fmt.Errorf("build decoder: %w", err)
	}
	if err := dec.Decode(input); err != nil {
		return err
	}
	return nil
}
