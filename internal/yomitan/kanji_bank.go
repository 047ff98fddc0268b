package yomitan

import (
	"encoding/json"
	"fmt"

	"github.com/jreader/yomitanctl/internal/jsonutil"
)

// KanjiEntry is one row of a kanji_bank shard: a single character with its
// readings, an opaque tag string, a meaning list, and a free-form stats map
// (e.g. stroke count, grade, frequency). Decoded from a 6-element array.
type KanjiEntry struct {
	Kanji    string
	Onyomi   string
	Kunyomi  string
	Tags     TagList
	Meanings []string
	Stats    map[string]string
}

// UnmarshalJSON decodes the 6-element positional array.
func (e *KanjiEntry) UnmarshalJSON(data []byte) error {
	raw, err := jsonutil.DecodeTuple(data, 6)
	if err != nil {
		return fmt.Errorf("kanji entry: %w", err)
	}
	var out KanjiEntry
	if err := json.Unmarshal(raw[0], &out.Kanji); err != nil {
		return fmt.Errorf("kanji entry: kanji: %w", err)
	}
	if err := json.Unmarshal(raw[1], &out.Onyomi); err != nil {
		return fmt.Errorf("kanji entry: onyomi: %w", err)
	}
	if err := json.Unmarshal(raw[2], &out.Kunyomi); err != nil {
		return fmt.Errorf("kanji entry: kunyomi: %w", err)
	}
	if err := json.Unmarshal(raw[3], &out.Tags); err != nil {
		return fmt.Errorf("kanji entry: tags: %w", err)
	}
	if err := json.Unmarshal(raw[4], &out.Meanings); err != nil {
		return fmt.Errorf("kanji entry: meanings: %w", err)
	}
	if err := json.Unmarshal(raw[5], &out.Stats); err != nil {
		return fmt.Errorf("kanji entry: stats: %w", err)
	}
	*e = out
	return nil
}

// MarshalJSON re-encodes the entry as its 6-element positional array.
func (e KanjiEntry) MarshalJSON() ([]byte, error) {
	return jsonutil.EncodeTuple(e.Kanji, e.Onyomi, e.Kunyomi, e.Tags, e.Meanings, e.Stats)
}
