package game

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Checksum computes a deterministic digest of a snapshot. The snapshot is
// normalized through its JSON form into a protobuf Struct, whose
// deterministic encoding sorts map keys, and the encoding is hashed.
func Checksum(snap Snapshot) (string, error) {
	snap.Checksum = ""
	raw, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return "", fmt.Errorf("normalize snapshot: %w", err)
	}
	st, err := structpb.NewStruct(generic)
	if err != nil {
		return "", fmt.Errorf("convert snapshot: %w", err)
	}
	data, err := proto.MarshalOptions{Deterministic: true}.Marshal(st)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
