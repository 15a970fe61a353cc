package economy

// Hand is a bounded, ordered list of items.
type Hand[T any] struct {
	items []T
	limit int
}

// NewHand creates an empty hand holding at most limit items.
func NewHand[T any](limit int) *Hand[T] {
	return &Hand[T]{limit: limit}
}

// Add appends item; returns false when the hand is full.
func (h *Hand[T]) Add(item T) bool {
	if len(h.items) >= h.limit {
		return false
	}
	h.items = append(h.items, item)
	return true
}

// At returns the item at index.
func (h *Hand[T]) At(index int) (T, bool) {
	var zero T
	if index < 0 || index >= len(h.items) {
		return zero, false
	}
	return h.items[index], true
}

// Remove takes the item at index out of the hand.
func (h *Hand[T]) Remove(index int) (T, bool) {
	item, ok := h.At(index)
	if !ok {
		return item, false
	}
	h.items = append(h.items[:index], h.items[index+1:]...)
	return item, true
}

// Len returns the number of held items.
func (h *Hand[T]) Len() int {
	return len(h.items)
}

// Full reports whether the hand is at its limit.
func (h *Hand[T]) Full() bool {
	return len(h.items) >= h.limit
}

// Items returns a copy of the held items in order.
func (h *Hand[T]) Items() []T {
	out := make([]T, len(h.items))
	copy(out, h.items)
	return out
}
