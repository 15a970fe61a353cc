package server

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fourfront/fourfront-server/internal/match"
)

func (ts *testServer) get(path string, into any) int {
	ts.t.Helper()
	resp, err := http.Get(ts.http.URL + path)
	require.NoError(ts.t, err)
	defer resp.Body.Close()
	if into != nil {
		require.NoError(ts.t, json.NewDecoder(resp.Body).Decode(into))
	}
	return resp.StatusCode
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	var body map[string]any
	require.Equal(t, http.StatusOK, ts.get("/healthz", &body))
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 0, body["matches"])
}

func TestMatchEndpoints(t *testing.T) {
	ts := newTestServer(t)

	var errBody map[string]string
	assert.Equal(t, http.StatusNotFound, ts.get("/matches/nope", &errBody))
	assert.Equal(t, match.ErrMatchNotFound.Error(), errBody["error"])

	_, joined := ts.join("ada")

	var list []match.Summary
	require.Equal(t, http.StatusOK, ts.get("/matches", &list))
	require.Len(t, list, 1)
	assert.Equal(t, joined.Match, list[0].ID)
	assert.Equal(t, "WAITING", list[0].Status)

	var summary match.Summary
	require.Equal(t, http.StatusOK, ts.get("/matches/"+joined.Match, &summary))
	assert.Equal(t, []string{"ada"}, summary.Players)

	assert.Equal(t, http.StatusConflict, ts.get("/matches/"+joined.Match+"/snapshot", nil))

	req, err := http.NewRequest(http.MethodDelete, ts.http.URL+"/matches/"+joined.Match, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, http.StatusNotFound, ts.get("/matches/"+joined.Match, nil))
}
