package yomitan

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestKanjiEntryUnmarshal(t *testing.T) {
	raw := `["犬","ケン","いぬ","jouyou",["dog"],{"grade":"1","strokes":"8"}]`
	var e KanjiEntry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if e.Kanji != "犬" || e.Onyomi != "ケン" || e.Kunyomi != "いぬ" {
		t.Fatalf("unexpected readings: %+v", e)
	}
	if len(e.Tags) != 1 || e.Tags[0] != "jouyou" {
		t.Fatalf("unexpected tags: %v", e.Tags)
	}
	if !reflect.DeepEqual(e.Meanings, []string{"dog"}) {
		t.Fatalf("unexpected meanings: %v", e.Meanings)
	}
	if e.Stats["grade"] != "1" || e.Stats["strokes"] != "8" {
		t.Fatalf("unexpected stats: %v", e.Stats)
	}
}

func TestKanjiEntryNullTags(t *testing.T) {
	raw := `["猫","ビョウ","ねこ",null,["cat"],{}]`
	var e KanjiEntry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if e.Tags != nil {
		t.Fatalf("expected nil tags, got %v", e.Tags)
	}
}

func TestKanjiEntryRoundTrip(t *testing.T) {
	e := KanjiEntry{
		Kanji: "魚", Onyomi: "ギョ", Kunyomi: "さかな",
		Tags: TagList{"common"}, Meanings: []string{"fish"},
		Stats: map[string]string{"grade": "2"},
	}
	data, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got KanjiEntry
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal round trip: %v", err)
	}
	if !reflect.DeepEqual(got, e) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, e)
	}
}
