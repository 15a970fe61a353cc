package game

import (
	"github.com/fourfront/fourfront-server/internal/game/grid"
	"github.com/fourfront/fourfront-server/internal/game/targeting"
)

// Tile is one cell of the field. Occupant 0 means empty.
type Tile struct {
	Occupant EntityID
	Kind     targeting.OccupantKind
}

// Field is the square board, indexed [x][y].
type Field struct {
	size  int
	tiles [][]Tile
}

// NewField creates an empty size x size field.
func NewField(size int) *Field {
	tiles := make([][]Tile, size)
	for x := range tiles {
		tiles[x] = make([]Tile, size)
	}
	return &Field{size: size, tiles: tiles}
}

// Size returns the side length.
func (f *Field) Size() int {
	return f.size
}

// Tile returns the tile at c.
func (f *Field) Tile(c grid.Coord) (Tile, bool) {
	if !c.InBounds(f.size) {
		return Tile{}, false
	}
	return f.tiles[c.X][c.Y], true
}

// Occupied reports whether an in-bounds tile holds an entity.
func (f *Field) Occupied(c grid.Coord) bool {
	t, ok := f.Tile(c)
	return ok && t.Occupant != 0
}

// VerifyPlacement reports whether a size x size footprint anchored at c
// lies on the field and is entirely vacant.
func (f *Field) VerifyPlacement(anchor grid.Coord, size int) bool {
	if size < 1 || anchor.X < 0 || anchor.Y < 0 || anchor.X+size > f.size || anchor.Y+size > f.size {
		return false
	}
	for _, c := range grid.Footprint(anchor, size) {
		if f.tiles[c.X][c.Y].Occupant != 0 {
			return false
		}
	}
	return true
}

// Occupy marks the footprint as held by id. Callers verify placement first.
func (f *Field) Occupy(id EntityID, kind targeting.OccupantKind, anchor grid.Coord, size int) {
	for _, c := range grid.Footprint(anchor, size) {
		if c.InBounds(f.size) {
			f.tiles[c.X][c.Y] = Tile{Occupant: id, Kind: kind}
		}
	}
}

// Leave clears the footprint.
func (f *Field) Leave(anchor grid.Coord, size int) {
	for _, c := range grid.Footprint(anchor, size) {
		if c.InBounds(f.size) {
			f.tiles[c.X][c.Y] = Tile{}
		}
	}
}
