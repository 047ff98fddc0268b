package yomitan

import (
	"encoding/json"
	"testing"
)

func TestTagEntryRoundTrip(t *testing.T) {
	raw := `["common","popular tag",-5,"used for everyday words",10]`
	var e TagEntry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if e.Name != "common" || e.Category != "popular tag" {
		t.Fatalf("unexpected name/category: %+v", e)
	}
	if e.SortingOrder != -5 {
		t.Fatalf("expected sorting order -5, got %v", e.SortingOrder)
	}
	if e.PopularityScore != 10 {
		t.Fatalf("expected popularity score 10, got %v", e.PopularityScore)
	}

	data, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got TagEntry
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal round trip: %v", err)
	}
	if got != e {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, e)
	}
}

func TestTagEntryWrongArity(t *testing.T) {
	raw := `["common"]`
	var e TagEntry
	if err := json.Unmarshal([]byte(raw), &e); err == nil {
		t.Fatalf("expected error for short tuple")
	}
}
