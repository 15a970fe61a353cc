// Package modifiers holds the nested, mutable bonus bags carried by cards
// and entities (for example spawn.health or heal).
package modifiers

import (
	"fmt"

	"github.com/fourfront/fourfront-server/internal/game/values"
)

// Mode selects how a numeric value is applied.
type Mode string

const (
	ModeSet    Mode = "set"
	ModeChange Mode = "change"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeSet || m == ModeChange
}

// Apply combines current with amount under m.
func (m Mode) Apply(current, amount int) int {
	if m == ModeSet {
		return amount
	}
	return current + amount
}

// Bag is a tree of named numeric modifiers.
type Bag struct {
	root map[string]any
}

// New creates a bag from initial data, copied deeply.
func New(initial map[string]any) *Bag {
	return &Bag{root: values.CopyMap(initial)}
}

// Int returns the number stored at path, or 0 when absent or not numeric.
func (b *Bag) Int(path ...string) int {
	var cur any = b.root
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return 0
		}
		cur = m[key]
	}
	n, _ := values.Int(cur)
	return n
}

// Map returns a deep copy of the bag's contents.
func (b *Bag) Map() map[string]any {
	return values.CopyMap(b.root)
}

// Apply walks modification, a chain of single-key objects ending in a
// number, and sets or adds that number at the matching path. Missing
// keys are created. Returns the path and resulting value.
func (b *Bag) Apply(modification map[string]any, mode Mode) ([]string, int, error) {
	if !mode.Valid() {
		return nil, 0, fmt.Errorf("unknown modifier mode %q", mode)
	}
	node := b.root
	var path []string
	var cur any = modification
	for {
		m, ok := cur.(map[string]any)
		if !ok || len(m) != 1 {
			return nil, 0, fmt.Errorf("modification at %v must be a single-key object", path)
		}
		var key string
		var next any
		for k, v := range m {
			key, next = k, v
		}
		path = append(path, key)

		if child, ok := next.(map[string]any); ok {
			sub, ok := node[key].(map[string]any)
			if !ok {
				sub = map[string]any{}
				node[key] = sub
			}
			node = sub
			cur = child
			continue
		}

		amount, ok := values.Int(next)
		if !ok {
			return nil, 0, fmt.Errorf("modification %v must end in an integer, got %v", path, next)
		}
		current, _ := values.Int(node[key])
		result := mode.Apply(current, amount)
		node[key] = result
		return path, result, nil
	}
}
