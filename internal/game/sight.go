package game

import (
	"github.com/fourfront/fourfront-server/internal/game/grid"
)

// Sight reports whether a straight line between the centres of from and
// to is clear. See SightIgnoring.
func (f *Field) Sight(from, to grid.Coord) bool {
	return f.SightIgnoring(from, to, 0)
}

// SightIgnoring walks the cells crossed by the segment joining the centres
// of from and to. Any occupied cell on the way blocks, except the two
// endpoints and cells held by ignore. When the segment passes exactly
// through a grid corner, it is blocked only if both cells sharing that
// corner beside the path are occupied.
//
// Crossing order uses integer arithmetic: the k-th vertical gridline is
// crossed at t = (2k+1) / (2|dx|), the j-th horizontal one at
// t = (2j+1) / (2|dy|).
func (f *Field) SightIgnoring(from, to grid.Coord, ignore EntityID) bool {
	dx, dy := to.X-from.X, to.Y-from.Y
	sx, sy := sign(dx), sign(dy)
	nx, ny := dx*sx, dy*sy

	blocks := func(c grid.Coord) bool {
		if c == from || c == to {
			return false
		}
		t, ok := f.Tile(c)
		return ok && t.Occupant != 0 && t.Occupant != ignore
	}

	cur := from
	i, j := 0, 0
	for i < nx || j < ny {
		var order int
		switch {
		case i >= nx:
			order = 1
		case j >= ny:
			order = -1
		default:
			order = compare((2*i+1)*ny, (2*j+1)*nx)
		}

		switch order {
		case -1:
			cur = cur.Add(sx, 0)
			i++
		case 1:
			cur = cur.Add(0, sy)
			j++
		default:
			if blocks(cur.Add(sx, 0)) && blocks(cur.Add(0, sy)) {
				return false
			}
			cur = cur.Add(sx, sy)
			i++
			j++
		}
		if blocks(cur) {
			return false
		}
	}
	return true
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}

func compare(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
