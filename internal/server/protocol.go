package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/fourfront/fourfront-server/internal/game/grid"
	"github.com/fourfront/fourfront-server/internal/game/rules"
)

// IntentType names a client request.
type IntentType string

const (
	IntentMove      IntentType = "move"
	IntentAttack    IntentType = "attack"
	IntentPlayCard  IntentType = "play-card"
	IntentUseActive IntentType = "use-active"
	IntentEndTurn   IntentType = "end-turn"
	IntentSnapshot  IntentType = "snapshot"
)

// Frames the server sends besides game events.
const (
	FrameJoined   rules.EventType = "joined"
	FrameSnapshot rules.EventType = "snapshot"
	FrameError    rules.EventType = "error"
)

// ErrUnknownIntent is returned for intents with an unrecognized type.
var ErrUnknownIntent = errors.New("unknown intent")

// Intent is one client request. Which fields matter depends on Type:
// move uses From and Steps, attack From and To, play-card Index and
// Targets, use-active From, Index and Targets.
type Intent struct {
	Type    IntentType     `json:"type"`
	From    [2]int         `json:"from"`
	To      [2]int         `json:"to"`
	Steps   [][2]int       `json:"steps,omitempty"`
	Index   int            `json:"index"`
	Targets map[string]any `json:"targets,omitempty"`
}

func (in Intent) from() grid.Coord { return grid.C(in.From[0], in.From[1]) }

func (in Intent) to() grid.Coord { return grid.C(in.To[0], in.To[1]) }

func (in Intent) steps() []grid.Coord {
	out := make([]grid.Coord, len(in.Steps))
	for i, s := range in.Steps {
		out[i] = grid.C(s[0], s[1])
	}
	return out
}

// JoinedParams is the payload of the joined frame.
type JoinedParams struct {
	Session string `json:"session"`
	Match   string `json:"match"`
	Seat    [2]int `json:"seat"`
}

// Codec encodes frames for one connection.
type Codec interface {
	Name() string
	// MessageType is the websocket frame type the codec writes.
	MessageType() int
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
}

// CodecFor returns the codec registered under name; the empty name selects JSON.
func CodecFor(name string) (Codec, error) {
	switch name {
	case "", "json":
		return jsonCodec{}, nil
	case "msgpack":
		return msgpackCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}
}

type jsonCodec struct{}

func (jsonCodec) Name() string     { return "json" }
func (jsonCodec) MessageType() int { return websocket.TextMessage }

func (jsonCodec) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Decode(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// msgpackCodec reuses the json struct tags so both codecs share field names.
type msgpackCodec struct{}

func (msgpackCodec) Name() string     { return "msgpack" }
func (msgpackCodec) MessageType() int { return websocket.BinaryMessage }

func (msgpackCodec) Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	enc.UseCompactInts(true)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (msgpackCodec) Decode(data []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	return dec.Decode(v)
}
