package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fourfront/fourfront-server/internal/game/grid"
	"github.com/fourfront/fourfront-server/internal/game/rules"
)

func TestClientSnapshotRedactsHands(t *testing.T) {
	h := newTestHarness(t)
	s := h.state
	s.StartTurn()

	viewer := red0
	snap := s.ClientSnapshot(&viewer)
	assert.Len(t, snap.Players[0][0].Hand, 6)
	assert.Equal(t, 6, snap.Players[0][0].HandSize)
	for _, p := range rules.AllPlayers() {
		if p == red0 {
			continue
		}
		assert.Nil(t, snap.Players[p.Team][p.Slot].Hand, "hand of %s leaked", p)
	}
	assert.Equal(t, 6, snap.Players[0][1].HandSize)
	assert.Equal(t, 5, snap.Players[1][0].HandSize)
	assert.Len(t, snap.Buildings, 4)
	assert.Equal(t, "TURN_ACTIVE", snap.Phase)
	assert.Nil(t, snap.Winner)

	spectator := s.ClientSnapshot(nil)
	for _, p := range rules.AllPlayers() {
		assert.Nil(t, spectator.Players[p.Team][p.Slot].Hand)
	}

	raw, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"checksum"`)
}

func TestChecksumCoversPublicState(t *testing.T) {
	h := newTestHarness(t)
	s := h.state

	a, b := red0, blue1
	first := s.ClientSnapshot(&a)
	require.NotEmpty(t, first.Checksum)
	assert.Equal(t, first.Checksum, s.ClientSnapshot(&b).Checksum, "same board for every seat")
	assert.Equal(t, first.Checksum, s.ClientSnapshot(nil).Checksum)

	h.unit(red0, "soldier", grid.C(8, 8))
	assert.NotEqual(t, first.Checksum, s.ClientSnapshot(&a).Checksum)
}

func TestChecksumIsDeterministic(t *testing.T) {
	h := newTestHarness(t)
	snap := h.state.snapshot(nil)
	sums := make(map[string]bool)
	for i := 0; i < 10; i++ {
		sum, err := Checksum(snap)
		require.NoError(t, err)
		sums[sum] = true
	}
	assert.Len(t, sums, 1)
}
