package economy

import (
	"math/rand/v2"
)

// Deck is an ordered draw pile. Draws favour the top: each position is
// twice as likely as the next, except the last two which share the tail.
type Deck[T any] struct {
	items []T
	rng   *rand.Rand
}

// NewRand returns a deterministic generator for decks.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewDeck creates an empty deck drawing with rng.
func NewDeck[T any](rng *rand.Rand) *Deck[T] {
	return &Deck[T]{rng: rng}
}

// Add appends qty items produced by newItem to the bottom of the deck.
func (d *Deck[T]) Add(qty int, newItem func() T) {
	for i := 0; i < qty; i++ {
		d.items = append(d.items, newItem())
	}
}

// Return puts an item back at the bottom of the deck.
func (d *Deck[T]) Return(item T) {
	d.items = append(d.items, item)
}

// Shuffle randomizes the order (Fisher–Yates).
func (d *Deck[T]) Shuffle() {
	for i := len(d.items) - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		d.items[i], d.items[j] = d.items[j], d.items[i]
	}
}

// Draw removes and returns an item using the weighted position choice.
func (d *Deck[T]) Draw() (T, bool) {
	var zero T
	if len(d.items) == 0 {
		return zero, false
	}
	i := pickIndex(d.rng.Float64(), len(d.items))
	item := d.items[i]
	d.items = append(d.items[:i], d.items[i+1:]...)
	return item, true
}

// Size returns the number of items left.
func (d *Deck[T]) Size() int {
	return len(d.items)
}

// pickIndex maps a uniform choice in [0,1) onto a deck position.
func pickIndex(choice float64, size int) int {
	i := 0
	for choice < 0.5 && i < size-1 {
		choice *= 2
		i++
	}
	return i
}
