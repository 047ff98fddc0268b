package yomitan

import (
	"encoding/json"
	"fmt"

	"github.com/jreader/yomitanctl/internal/jsonutil"
)

// TermEntry is one row of a term_bank shard: headword, reading, tags,
// an opaque rule-identifier string, a score, an ordered definition list, a
// sequence number, and term tags. Decoded from an 8-element JSON array.
type TermEntry struct {
	Text            string
	Reading         string
	Tags            TagList
	RuleIdentifiers string
	Score           float64
	Definitions     []Definition
	SequenceNumber  int64
	TermTags        TagList
}

// UnmarshalJSON decodes the 8-element positional array.
func (e *TermEntry) UnmarshalJSON(data []byte) error {
	raw, err := jsonutil.DecodeTuple(data, 8)
	if err != nil {
		return fmt.Errorf("term entry: %w", err)
	}

	var out TermEntry
	if err := json.Unmarshal(raw[0], &out.Text); err != nil {
		return fmt.Errorf("term entry: text: %w", err)
	}
	if err := json.Unmarshal(raw[1], &out.Reading); err != nil {
		return fmt.Errorf("term entry: reading: %w", err)
	}
	if err := json.Unmarshal(raw[2], &out.Tags); err != nil {
		return fmt.Errorf("term entry: tags: %w", err)
	}
	if err := json.Unmarshal(raw[3], &out.RuleIdentifiers); err != nil {
		return fmt.Errorf("term entry: ruleIdentifiers: %w", err)
	}
	if err := json.Unmarshal(raw[4], &out.Score); err != nil {
		return fmt.Errorf("term entry: score: %w", err)
	}
	if err := json.Unmarshal(raw[5], &out.Definitions); err != nil {
		return fmt.Errorf("term entry: definitions: %w", err)
	}
	if err := json.Unmarshal(raw[6], &out.SequenceNumber); err != nil {
		return fmt.Errorf("term entry: sequenceNumber: %w", err)
	}
	if err := json.Unmarshal(raw[7], &out.TermTags); err != nil {
		return fmt.Errorf("term entry: termTags: %w", err)
	}

	*e = out
	return nil
}

// MarshalJSON re-encodes the entry as its 8-element positional array.
func (e TermEntry) MarshalJSON() ([]byte, error) {
	return jsonutil.EncodeTuple(
		e.Text, e.Reading, e.Tags, e.RuleIdentifiers, e.Score,
		e.Definitions, e.SequenceNumber, e.TermTags,
	)
}
