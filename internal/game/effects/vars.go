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

// Self references resolvable inside effect parameters.
const (
	SelfCard   = "#selfCard"
	SelfLoc    = "#selfLoc"
	SelfPlayer = "#selfPlayer"
)

// Source is the card or entity whose effects are running.
type Source struct {
	Owner rules.PlayerID
	// Card is the card id when a card is played, empty for abilities.
	Card string
	// Loc is the entity anchor for abilities, nil for cards.
	Loc       *grid.Coord
	Modifiers *modifiers.Bag
}

// ReplaceVars returns a copy of params with "$name" strings replaced by the
// bound target values and "#self..." strings replaced by the source.
// Unknown references are errors.
func ReplaceVars(params map[string]any, binding targeting.Binding, src Source) (map[string]any, error) {
	out, err := replace(params, binding, src)
	if err != nil {
		return nil, err
	}
	return out.(map[string]any), nil
}

func replace(v any, binding targeting.Binding, src Source) (any, error) {
	switch t := v.(type) {
	case string:
		return resolve(t, binding, src)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			r, err := replace(val, binding, src)
			if err != nil {
				return nil, err
			}
			out[k] = r
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			r, err := replace(val, binding, src)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	default:
		return v, nil
	}
}

func resolve(s string, binding targeting.Binding, src Source) (any, error) {
	switch {
	case strings.HasPrefix(s, "$"):
		val, ok := binding[s]
		if !ok {
			return nil, fmt.Errorf("unbound target %s", s)
		}
		return values.DeepCopy(val), nil
	case s == SelfCard:
		if src.Card == "" {
			return nil, fmt.Errorf("%s used outside a card", s)
		}
		return src.Card, nil
	case s == SelfLoc:
		if src.Loc == nil {
			return nil, fmt.Errorf("%s used outside an entity", s)
		}
		return src.Loc.Pair(), nil
	case s == SelfPlayer:
		return src.Owner.Pair(), nil
	case strings.HasPrefix(s, "#"):
		return nil, fmt.Errorf("unknown self reference %s", s)
	default:
		return s, nil
	}
}
