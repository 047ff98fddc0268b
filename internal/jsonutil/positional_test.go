package jsonutil

import (
	"encoding/json"
	"testing"
)

func TestDecodeTupleExactArity(t *testing.T) {
	raw, err := DecodeTuple([]byte(`["a","b",3]`), 3)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(raw) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(raw))
	}
	var s string
	if err := json.Unmarshal(raw[0], &s); err != nil || s != "a" {
		t.Fatalf("expected first element %q, got %q (err %v)", "a", s, err)
	}
}

func TestDecodeTupleWrongArity(t *testing.T) {
	if _, err := DecodeTuple([]byte(`["a","b"]`), 3); err == nil {
		t.Fatalf("expected error for tuple shorter than n")
	}
	if _, err := DecodeTuple([]byte(`["a","b","c","d"]`), 3); err == nil {
		t.Fatalf("expected error for tuple longer than n")
	}
}

func TestDecodeTupleNotAnArray(t *testing.T) {
	if _, err := DecodeTuple([]byte(`{"a":1}`), 1); err == nil {
		t.Fatalf("expected error decoding an object as a tuple")
	}
}

func TestEncodeTupleRoundTrip(t *testing.T) {
	data, err := EncodeTuple("x", 1, []string{"y", "z"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	raw, err := DecodeTuple(data, 3)
	if err != nil {
		t.Fatalf("decode encoded tuple: %v", err)
	}
	var s string
	if err := json.Unmarshal(raw[0], &s); err != nil || s != "x" {
		t.Fatalf("expected %q, got %q", "x", s)
	}
}
