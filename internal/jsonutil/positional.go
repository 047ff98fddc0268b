// Package jsonutil holds small helpers shared by the positional-tuple JSON
// decoders in internal/yomitan. Go's encoding/json has no built-in notion of
// decoding a JSON array into a struct by position, so each shard schema
// implements its own UnmarshalJSON against a []json.RawMessage obtained here.
package jsonutil

import (
	"encoding/json"
	"fmt"
)

// DecodeTuple decodes data as a JSON array and requires it have exactly n
// elements, returning them as raw messages for per-field decoding.
func DecodeTuple(data []byte, n int) ([]json.RawMessage, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode tuple: %w", err)
	}
	if len(raw) != n {
		return nil, fmt.Errorf("decode tuple: expected %d elements, got %d", n, len(raw))
	}
	return raw, nil
}

// EncodeTuple marshals its arguments positionally into a JSON array.
func EncodeTuple(parts ...any) ([]byte, error) {
	return json.Marshal(parts)
}
