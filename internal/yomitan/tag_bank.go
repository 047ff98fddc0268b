package yomitan

import (
	"encoding/json"
	"fmt"

	"github.com/jreader/yomitanctl/internal/jsonutil"
)

// TagEntry is one row of a tag_bank shard: a named tag with its display
// category, sort order, free-form notes and popularity score. Decoded from
// a 5-element JSON array even though the fields are named, because the
// source format has no struct-tag equivalent for positional decoding.
type TagEntry struct {
	Name            string
	Category        string
	SortingOrder    float64
	Notes           string
	PopularityScore float64
}

// UnmarshalJSON decodes the 5-element positional array.
func (e *TagEntry) UnmarshalJSON(data []byte) error {
	raw, err := jsonutil.DecodeTuple(data, 5)
	if err != nil {
		return fmt.Errorf("tag entry: %w", err)
	}
	var out TagEntry
	if err := json.Unmarshal(raw[0], &out.Name); err != nil {
		return fmt.Errorf("tag entry: name: %w", err)
	}
	if err := json.Unmarshal(raw[1], &out.Category); err != nil {
		return fmt.Errorf("tag entry: category: %w", err)
	}
	if err := json.Unmarshal(raw[2], &out.SortingOrder); err != nil {
		return fmt.Errorf("tag entry: sortingOrder: %w", err)
	}
	if err := json.Unmarshal(raw[3], &out.Notes); err != nil {
		return fmt.Errorf("tag entry: notes: %w", err)
	}
	if err := json.Unmarshal(raw[4], &out.PopularityScore); err != nil {
		return fmt.Errorf("tag entry: popularityScore: %w", err)
	}
	*e = out
	return nil
}

// MarshalJSON re-encodes the entry as its 5-element positional array.
func (e TagEntry) MarshalJSON() ([]byte, error) {
	return jsonutil.EncodeTuple(e.Name, e.Category, e.SortingOrder, e.Notes, e.PopularityScore)
}
