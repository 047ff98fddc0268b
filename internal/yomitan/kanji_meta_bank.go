package yomitan

import (
	"encoding/json"
	"fmt"

	"github.com/jreader/yomitanctl/internal/jsonutil"
)

// KanjiMetaEntry is one row of a kanji_meta_bank shard: a character with a
// kind (always "freq" in practice, but the payload shares the same untagged
// SimpleNumber/SimpleString/Detailed shapes as TermMetaEntry's freq payload)
// and its frequency data. Decoded from a 3-element array.
type KanjiMetaEntry struct {
	Character string
	Kind      string
	Data      FrequencyData
}

// UnmarshalJSON decodes the 3-element positional array.
func (e *KanjiMetaEntry) UnmarshalJSON(data []byte) error {
	raw, err := jsonutil.DecodeTuple(data, 3)
	if err != nil {
		return fmt.Errorf("kanji meta entry: %w", err)
	}
	var out KanjiMetaEntry
	if err := json.Unmarshal(raw[0], &out.Character); err != nil {
		return fmt.Errorf("kanji meta entry: character: %w", err)
	}
	if err := json.Unmarshal(raw[1], &out.Kind); err != nil {
		return fmt.Errorf("kanji meta entry: kind: %w", err)
	}
	if err := json.Unmarshal(raw[2], &out.Data); err != nil {
		return fmt.Errorf("kanji meta entry: data: %w", err)
	}
	*e = out
	return nil
}

// MarshalJSON re-encodes the entry as its 3-element positional array.
func (e KanjiMetaEntry) MarshalJSON() ([]byte, error) {
	return jsonutil.EncodeTuple(e.Character, e.Kind, e.Data)
}
