package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/fourfront/fourfront-server/internal/config"
	"github.com/fourfront/fourfront-server/internal/game/rules"
	"github.com/fourfront/fourfront-server/internal/game/targeting"
	"github.com/fourfront/fourfront-server/internal/game/templates"
	"github.com/fourfront/fourfront-server/internal/match"
)

type seatKey struct {
	match string
	seat  rules.PlayerID
}

// Hub owns the websocket sessions and routes match events to them. It
// implements match.Router.
type Hub struct {
	mu     sync.RWMutex
	bySeat map[seatKey]*session
	// parked remembers the seat of a closed session so it can resume.
	parked map[string]seatKey

	manager  *match.Manager
	cfg      config.HTTPConfig
	maxName  int
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewHub creates a hub. Call manager.SetRouter(hub) before serving.
func NewHub(manager *match.Manager, cfg config.HTTPConfig, maxName int, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	h := &Hub{
		bySeat:  make(map[seatKey]*session),
		parked:  make(map[string]seatKey),
		manager: manager,
		cfg:     cfg,
		maxName: maxName,
		logger:  logger,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	if len(h.cfg.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	for _, allowed := range h.cfg.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

// Route implements match.Router. It runs under the match lock, so it only
// queues frames; a session that cannot keep up is dropped.
func (h *Hub) Route(matchID string, p rules.PlayerID, events []rules.Event) {
	h.mu.RLock()
	s, ok := h.bySeat[seatKey{match: matchID, seat: p}]
	h.mu.RUnlock()
	if !ok {
		return
	}
	for _, evt := range events {
		if !s.enqueue(evt) {
			h.logger.Warn("session send buffer full, closing",
				zap.String("session_id", s.id),
				zap.String("match_id", matchID),
			)
			s.close()
			return
		}
	}
}

// Forget implements match.Router. The match is gone: its live sessions are
// closed and its parked sessions can no longer resume.
func (h *Hub) Forget(matchID string) {
	var live []*session
	h.mu.Lock()
	for key, s := range h.bySeat {
		if key.match == matchID {
			delete(h.bySeat, key)
			live = append(live, s)
		}
	}
	for id, key := range h.parked {
		if key.match == matchID {
			delete(h.parked, id)
		}
	}
	h.mu.Unlock()

	for _, s := range live {
		s.close()
	}
	if len(live) > 0 {
		h.logger.Info("closed sessions of dropped match",
			zap.String("match_id", matchID),
			zap.Int("sessions", len(live)),
		)
	}
}

// SessionCount returns the number of live connections.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.bySeat)
}

// ServeWS upgrades the request and seats the player. Query parameters:
// name and faction for a new seat, or resume with a previous session ID;
// codec selects json (default) or msgpack frames.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	codec, err := CodecFor(q.Get("codec"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resume := q.Get("resume")
	name := q.Get("name")
	faction := templates.Faction(q.Get("faction"))
	if resume == "" {
		if !IsValidName(name, h.maxName) {
			http.Error(w, "invalid name", http.StatusBadRequest)
			return
		}
		if !faction.Playable() {
			http.Error(w, "invalid faction", http.StatusBadRequest)
			return
		}
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	s := newSession(conn, codec, h.cfg.SendBuffer)
	ctx := context.Background()
	if resume != "" {
		err = h.resume(ctx, s, resume)
	} else {
		err = h.join(ctx, s, name, faction)
	}
	if err != nil {
		h.logger.Warn("session rejected", zap.Error(err))
		s.enqueue(errorFrame(err))
		s.close()
		go s.writePump(h.cfg)
		return
	}

	go s.writePump(h.cfg)
	go h.readPump(s)
}

func (h *Hub) join(ctx context.Context, s *session, name string, faction templates.Faction) error {
	s.id = uuid.NewString()
	m, seat, err := h.manager.Join(ctx, name, faction)
	if err != nil {
		return err
	}
	h.attach(s, m, seat)
	h.logger.Info("player joined",
		zap.String("session_id", s.id),
		zap.String("match_id", m.ID),
		zap.String("seat", seat.String()),
		zap.String("name", name),
		zap.String("codec", s.codec.Name()),
	)
	return nil
}

func (h *Hub) resume(ctx context.Context, s *session, id string) error {
	h.mu.Lock()
	key, ok := h.parked[id]
	if ok {
		delete(h.parked, id)
	}
	h.mu.Unlock()
	if !ok {
		return errors.New("unknown session")
	}

	m, err := h.manager.Get(key.match)
	if err != nil {
		return err
	}
	s.id = id
	h.attach(s, m, key.seat)
	err = m.SetConnected(ctx, key.seat, true)
	if err != nil && !errors.Is(err, match.ErrMatchNotStarted) && !errors.Is(err, match.ErrMatchEnded) {
		return err
	}
	h.logger.Info("player resumed",
		zap.String("session_id", id),
		zap.String("match_id", m.ID),
		zap.String("seat", key.seat.String()),
	)
	return nil
}

// attach registers s for its seat and greets it. The snapshot covers
// anything routed before the registration.
func (h *Hub) attach(s *session, m *match.Match, seat rules.PlayerID) {
	s.match, s.seat = m, seat
	key := seatKey{match: m.ID, seat: seat}

	h.mu.Lock()
	if old, ok := h.bySeat[key]; ok {
		old.close()
	}
	h.bySeat[key] = s
	h.mu.Unlock()

	s.enqueue(rules.NewEvent(FrameJoined, JoinedParams{Session: s.id, Match: m.ID, Seat: seat.Pair()}))
	h.sendSnapshot(s)
}

func (h *Hub) detach(s *session) {
	key := seatKey{match: s.match.ID, seat: s.seat}
	h.mu.Lock()
	current := h.bySeat[key] == s
	if current {
		delete(h.bySeat, key)
		h.parked[s.id] = key
	}
	h.mu.Unlock()
	if !current {
		return
	}

	err := s.match.SetConnected(context.Background(), s.seat, false)
	if err != nil && !errors.Is(err, match.ErrMatchNotStarted) && !errors.Is(err, match.ErrMatchEnded) {
		h.logger.Error("failed to mark player disconnected", zap.String("session_id", s.id), zap.Error(err))
	}
	h.logger.Info("player left",
		zap.String("session_id", s.id),
		zap.String("match_id", s.match.ID),
		zap.String("seat", s.seat.String()),
	)
}

func (h *Hub) sendSnapshot(s *session) {
	seat := s.seat
	snap, err := s.match.Snapshot(&seat)
	if err != nil {
		// Not started yet: the first turn-start will follow.
		return
	}
	s.enqueue(rules.NewEvent(FrameSnapshot, snap))
}

// readPump decodes intents until the connection fails.
func (h *Hub) readPump(s *session) {
	defer func() {
		h.detach(s)
		s.close()
	}()

	s.conn.SetReadLimit(h.cfg.MaxMessageSize)
	deadline := func() error {
		return s.conn.SetReadDeadline(time.Now().Add(2 * h.cfg.PingInterval))
	}
	_ = deadline()
	s.conn.SetPongHandler(func(string) error { return deadline() })

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read failed", zap.String("session_id", s.id), zap.Error(err))
			}
			return
		}

		var in Intent
		if err := s.codec.Decode(data, &in); err != nil {
			s.enqueue(errorFrame(err))
			continue
		}
		if err := h.dispatch(context.Background(), s, in); err != nil {
			h.logger.Debug("intent failed",
				zap.String("session_id", s.id),
				zap.String("intent", string(in.Type)),
				zap.Error(err),
			)
			s.enqueue(errorFrame(err))
		}
	}
}

func (h *Hub) dispatch(ctx context.Context, s *session, in Intent) error {
	m, p := s.match, s.seat
	switch in.Type {
	case IntentMove:
		return m.Move(ctx, p, in.from(), in.steps())
	case IntentAttack:
		return m.Attack(ctx, p, in.from(), in.to())
	case IntentPlayCard:
		return m.PlayCard(ctx, p, in.Index, targeting.Binding(in.Targets))
	case IntentUseActive:
		return m.UseActive(ctx, p, in.from(), in.Index, targeting.Binding(in.Targets))
	case IntentEndTurn:
		return m.EndTurn(ctx, p)
	case IntentSnapshot:
		h.sendSnapshot(s)
		return nil
	default:
		return ErrUnknownIntent
	}
}

func errorFrame(err error) rules.Event {
	return rules.NewEvent(FrameError, err.Error())
}

// session is one websocket connection bound to a seat.
type session struct {
	id    string
	conn  *websocket.Conn
	codec Codec
	match *match.Match
	seat  rules.PlayerID

	send      chan rules.Event
	done      chan struct{}
	closeOnce sync.Once
}

func newSession(conn *websocket.Conn, codec Codec, buffer int) *session {
	if buffer <= 0 {
		buffer = 256
	}
	return &session{
		conn:  conn,
		codec: codec,
		send:  make(chan rules.Event, buffer),
		done:  make(chan struct{}),
	}
}

// enqueue queues a frame without blocking. It reports false when the
// buffer is full.
func (s *session) enqueue(evt rules.Event) bool {
	select {
	case <-s.done:
		return true
	default:
	}
	select {
	case s.send <- evt:
		return true
	default:
		return false
	}
}

func (s *session) close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// writePump flushes queued frames and pings the peer. It owns all writes
// to the connection.
func (s *session) writePump(cfg config.HTTPConfig) {
	ticker := time.NewTicker(cfg.PingInterval)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	write := func(evt rules.Event) error {
		data, err := s.codec.Encode(evt)
		if err != nil {
			return err
		}
		_ = s.conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
		return s.conn.WriteMessage(s.codec.MessageType(), data)
	}

	for {
		select {
		case evt := <-s.send:
			if err := write(evt); err != nil {
				s.close()
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.close()
				return
			}
		case <-s.done:
			// Flush what is already queued, then say goodbye.
			for {
				select {
				case evt := <-s.send:
					if write(evt) != nil {
						return
					}
				default:
					_ = s.conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
						time.Now().Add(cfg.WriteTimeout))
					return
				}
			}
		}
	}
}
