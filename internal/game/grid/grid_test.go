package grid

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithinDist(t *testing.T) {
	assert.True(t, WithinDist(C(2, 2), C(2, 2), 0))
	assert.False(t, WithinDist(C(2, 2), C(2, 2), -1))
	assert.True(t, WithinDist(C(0, 0), C(3, 4), 5))
	assert.False(t, WithinDist(C(0, 0), C(3, 4), 4))
}

func TestWithinRadiusInBoundsClipsToField(t *testing.T) {
	tiles := WithinRadiusInBounds(C(0, 0), 1, 0, 0, 4, 4)
	assert.ElementsMatch(t, []Coord{C(0, 0), C(0, 1), C(1, 0)}, tiles)

	all := WithinRadiusInBounds(C(5, 5), 1, 0, 0, 9, 9)
	assert.Equal(t, []Coord{C(4, 5), C(5, 4), C(5, 5), C(5, 6), C(6, 5)}, all)

	assert.Empty(t, WithinRadiusInBounds(C(0, 0), -1, 0, 0, 4, 4))
	assert.Equal(t, []Coord{C(2, 2)}, WithinRadiusInBounds(C(2, 2), 0, 0, 0, 4, 4))
}

func TestBorderAndFootprint(t *testing.T) {
	assert.Len(t, Footprint(C(1, 1), 2), 4)

	// 2x2 at (1,1) on a 5x5 board: 8 border tiles, none clipped
	assert.Len(t, Border(C(1, 1), 2, 5), 8)

	// clipped at the top-left corner
	border := Border(C(0, 0), 1, 5)
	assert.ElementsMatch(t, []Coord{C(0, 1), C(1, 0)}, border)
}

func TestCoordJSON(t *testing.T) {
	data, err := json.Marshal(C(3, 7))
	require.NoError(t, err)
	assert.JSONEq(t, `[3,7]`, string(data))

	var c Coord
	require.NoError(t, json.Unmarshal([]byte(`[4,9]`), &c))
	assert.Equal(t, C(4, 9), c)

	assert.Error(t, json.Unmarshal([]byte(`{"x":1}`), &c))
}

func TestAdjacent(t *testing.T) {
	assert.True(t, Adjacent(C(1, 1), C(1, 2)))
	assert.False(t, Adjacent(C(1, 1), C(2, 2)))
	assert.False(t, Adjacent(C(1, 1), C(1, 1)))
}
