// Package grid provides coordinates and distance helpers for the square battlefield.
package grid

import (
	"encoding/json"
	"fmt"
)

// Coord is a tile position. X grows to the right, Y grows downward.
type Coord struct {
	X int
	Y int
}

// C is shorthand for Coord{X: x, Y: y}.
func C(x, y int) Coord {
	return Coord{X: x, Y: y}
}

// Pair returns the coordinate in its wire form.
func (c Coord) Pair() [2]int {
	return [2]int{c.X, c.Y}
}

// Add returns c translated by (dx, dy).
func (c Coord) Add(dx, dy int) Coord {
	return Coord{X: c.X + dx, Y: c.Y + dy}
}

// String returns the coordinate as "x,y".
func (c Coord) String() string {
	return fmt.Sprintf("%d,%d", c.X, c.Y)
}

// InBounds reports whether c lies on a size x size field.
func (c Coord) InBounds(size int) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < size && c.Y < size
}

// MarshalJSON encodes the coordinate as [x,y].
func (c Coord) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Pair())
}

// UnmarshalJSON decodes a coordinate from [x,y].
func (c *Coord) UnmarshalJSON(data []byte) error {
	var pair [2]int
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("coordinate must be [x,y]: %w", err)
	}
	c.X, c.Y = pair[0], pair[1]
	return nil
}

// WithinDist reports whether b is at most r away from a.
// Compares squared integers so results are exact.
func WithinDist(a, b Coord, r int) bool {
	if r < 0 {
		return false
	}
	dx := a.X - b.X
	dy := a.Y - b.Y
	return dx*dx+dy*dy <= r*r
}

// Manhattan returns |dx| + |dy|.
func Manhattan(a, b Coord) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

// Adjacent reports whether a and b share an edge.
func Adjacent(a, b Coord) bool {
	return Manhattan(a, b) == 1
}

// WithinRadiusInBounds returns every tile within Euclidean distance r of
// center inside the inclusive rectangle [minX,maxX] x [minY,maxY], ordered
// by column then row.
func WithinRadiusInBounds(center Coord, r, minX, minY, maxX, maxY int) []Coord {
	if r < 0 {
		return nil
	}
	var out []Coord
	x0, x1 := max(center.X-r, minX), min(center.X+r, maxX)
	y0, y1 := max(center.Y-r, minY), min(center.Y+r, maxY)
	for x := x0; x <= x1; x++ {
		for y := y0; y <= y1; y++ {
			c := Coord{X: x, Y: y}
			if WithinDist(center, c, r) {
				out = append(out, c)
			}
		}
	}
	return out
}

// Footprint returns the size x size block anchored at its upper-left corner.
func Footprint(anchor Coord, size int) []Coord {
	out := make([]Coord, 0, size*size)
	for x := anchor.X; x < anchor.X+size; x++ {
		for y := anchor.Y; y < anchor.Y+size; y++ {
			out = append(out, Coord{X: x, Y: y})
		}
	}
	return out
}

// Border returns the tiles orthogonally adjacent to a size x size footprint,
// one per side position, clipped to a fieldSize x fieldSize board.
// Corner-diagonal tiles are not included.
func Border(anchor Coord, size, fieldSize int) []Coord {
	out := make([]Coord, 0, 4*size)
	for i := 0; i < size; i++ {
		for _, c := range [4]Coord{
			{X: anchor.X + i, Y: anchor.Y - 1},
			{X: anchor.X + i, Y: anchor.Y + size},
			{X: anchor.X - 1, Y: anchor.Y + i},
			{X: anchor.X + size, Y: anchor.Y + i},
		} {
			if c.InBounds(fieldSize) {
				out = append(out, c)
			}
		}
	}
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
