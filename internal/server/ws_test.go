package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap/zaptest"

	"github.com/fourfront/fourfront-server/internal/config"
	"github.com/fourfront/fourfront-server/internal/game"
	"github.com/fourfront/fourfront-server/internal/game/rules"
	"github.com/fourfront/fourfront-server/internal/game/templates"
	"github.com/fourfront/fourfront-server/internal/match"
)

type testServer struct {
	t       *testing.T
	hub     *Hub
	manager *match.Manager
	http    *httptest.Server
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	catalog, err := templates.LoadBuiltin()
	require.NoError(t, err)

	logger := zaptest.NewLogger(t)
	opts := game.DefaultOptions()
	opts.FieldSize = 20
	manager := match.NewManager(catalog, match.Options{Game: opts, TurnLength: time.Hour}, nil, nil, logger)
	hub := NewHub(manager, config.HTTPConfig{
		MaxMessageSize: 64 * 1024,
		WriteTimeout:   time.Second,
		PingInterval:   time.Minute,
		SendBuffer:     64,
	}, 24, logger)
	manager.SetRouter(hub)

	srv := httptest.NewServer(NewRouter(hub, manager, logger))
	t.Cleanup(srv.Close)
	return &testServer{t: t, hub: hub, manager: manager, http: srv}
}

func (ts *testServer) wsURL(query url.Values) string {
	return "ws" + strings.TrimPrefix(ts.http.URL, "http") + "/ws?" + query.Encode()
}

type frame struct {
	Event  string            `json:"event"`
	Params []json.RawMessage `json:"params"`
}

type client struct {
	t    *testing.T
	conn *websocket.Conn
}

func (ts *testServer) dial(query url.Values) *client {
	ts.t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(ts.wsURL(query), nil)
	require.NoError(ts.t, err)
	ts.t.Cleanup(func() { conn.Close() })
	return &client{t: ts.t, conn: conn}
}

// join connects a player and waits for the seat assignment.
func (ts *testServer) join(name string) (*client, JoinedParams) {
	ts.t.Helper()
	c := ts.dial(url.Values{"name": {name}, "faction": {"T"}})
	f := c.expect("joined")
	var joined JoinedParams
	require.NoError(ts.t, json.Unmarshal(f.Params[0], &joined))
	return c, joined
}

func (c *client) send(in Intent) {
	c.t.Helper()
	require.NoError(c.t, c.conn.WriteJSON(in))
}

// expect reads frames until one named event arrives.
func (c *client) expect(event string) frame {
	c.t.Helper()
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var f frame
		require.NoError(c.t, c.conn.ReadJSON(&f), "waiting for %s", event)
		if f.Event == event {
			return f
		}
	}
}

func TestFourPlayersStartAMatch(t *testing.T) {
	ts := newTestServer(t)

	red0, j0 := ts.join("ada")
	_, j1 := ts.join("bo")
	red1, j2 := ts.join("cy")
	blue1, j3 := ts.join("di")

	assert.Equal(t, [2]int{0, 0}, j0.Seat)
	assert.Equal(t, [2]int{1, 0}, j1.Seat)
	assert.Equal(t, [2]int{0, 1}, j2.Seat)
	assert.Equal(t, [2]int{1, 1}, j3.Seat)
	assert.Equal(t, j0.Match, j3.Match)
	assert.NotEqual(t, j0.Session, j1.Session)

	// The last arrival attaches after the start and catches up by snapshot.
	snapFrame := blue1.expect("snapshot")
	var snap game.Snapshot
	require.NoError(t, json.Unmarshal(snapFrame.Params[0], &snap))
	assert.True(t, snap.Active)
	assert.NotEmpty(t, snap.Players[1][1].Hand)

	start := red0.expect("turn-start")
	assert.JSONEq(t, "0", string(start.Params[0]))

	red0.send(Intent{Type: IntentEndTurn})
	red1.send(Intent{Type: IntentEndTurn})

	next := blue1.expect("turn-start")
	assert.JSONEq(t, "1", string(next.Params[0]))
	assert.JSONEq(t, "2", string(next.Params[1]))
}

func TestBadIntentGetsErrorFrame(t *testing.T) {
	ts := newTestServer(t)
	c, _ := ts.join("ada")

	c.send(Intent{Type: "teleport"})
	f := c.expect("error")
	assert.Contains(t, string(f.Params[0]), ErrUnknownIntent.Error())

	require.NoError(t, c.conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	c.expect("error")
}

func TestIntentBeforeStart(t *testing.T) {
	ts := newTestServer(t)
	c, _ := ts.join("ada")

	c.send(Intent{Type: IntentEndTurn})
	f := c.expect("error")
	assert.Contains(t, string(f.Params[0]), match.ErrMatchNotStarted.Error())
}

func TestRejectsBadHandshake(t *testing.T) {
	ts := newTestServer(t)

	for _, q := range []url.Values{
		{"name": {""}, "faction": {"T"}},
		{"name": {strings.Repeat("x", 25)}, "faction": {"T"}},
		{"name": {"ada"}, "faction": {"N"}},
		{"name": {"ada"}, "faction": {"T"}, "codec": {"xml"}},
	} {
		_, resp, err := websocket.DefaultDialer.Dial(ts.wsURL(q), nil)
		require.Error(t, err, q.Encode())
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q.Encode())
		resp.Body.Close()
	}
	assert.Equal(t, 0, ts.manager.ActiveCount())
}

func TestMsgpackSession(t *testing.T) {
	ts := newTestServer(t)
	c := ts.dial(url.Values{"name": {"ada"}, "faction": {"M"}, "codec": {"msgpack"}})

	require.NoError(t, c.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	kind, data, err := c.conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.BinaryMessage, kind)

	var f map[string]any
	require.NoError(t, msgpack.Unmarshal(data, &f))
	assert.Equal(t, "joined", f["event"])
}

func TestDisconnectAndResume(t *testing.T) {
	ts := newTestServer(t)

	red0, j0 := ts.join("ada")
	ts.join("bo")
	red1, _ := ts.join("cy")
	ts.join("di")
	red1.expect("turn-start")

	require.NoError(t, red0.conn.Close())
	f := red1.expect("player-disconnected")
	assert.JSONEq(t, "[0,0]", string(f.Params[0]))

	require.Eventually(t, func() bool {
		ts.hub.mu.RLock()
		defer ts.hub.mu.RUnlock()
		_, ok := ts.hub.parked[j0.Session]
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	back := ts.dial(url.Values{"resume": {j0.Session}})
	joined := back.expect("joined")
	var again JoinedParams
	require.NoError(t, json.Unmarshal(joined.Params[0], &again))
	assert.Equal(t, j0.Seat, again.Seat)

	snapFrame := back.expect("snapshot")
	var snap game.Snapshot
	require.NoError(t, json.Unmarshal(snapFrame.Params[0], &snap))
	assert.NotEmpty(t, snap.Players[rules.TeamRed][0].Hand)

	red1.expect("player-reconnected")
}

func TestDroppedMatchForgetsSessions(t *testing.T) {
	ts := newTestServer(t)

	red0, j0 := ts.join("ada")
	ts.join("bo")
	red1, j2 := ts.join("cy")
	ts.join("di")
	red1.expect("turn-start")

	require.NoError(t, red0.conn.Close())
	red1.expect("player-disconnected")
	require.Eventually(t, func() bool {
		ts.hub.mu.RLock()
		defer ts.hub.mu.RUnlock()
		_, ok := ts.hub.parked[j0.Session]
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, ts.manager.Remove(j0.Match))

	ts.hub.mu.RLock()
	assert.Empty(t, ts.hub.parked)
	assert.Zero(t, len(ts.hub.bySeat))
	ts.hub.mu.RUnlock()
	assert.Equal(t, 0, ts.hub.SessionCount())

	// The live session is closed and stays unparked.
	require.NoError(t, red1.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		if _, _, err := red1.conn.ReadMessage(); err != nil {
			break
		}
	}
	ts.hub.mu.RLock()
	_, parked := ts.hub.parked[j2.Session]
	ts.hub.mu.RUnlock()
	assert.False(t, parked)

	back := ts.dial(url.Values{"resume": {j0.Session}})
	f := back.expect("error")
	assert.Contains(t, string(f.Params[0]), "unknown session")
}
