package yomitan

import (
	"encoding/json"
	"strings"
)

// TagList is a whitespace-separated token list as stored in shard entries.
// JSON null decodes to a nil TagList (absent); JSON "" also decodes to nil
// (absent), matching the source format's treatment of both forms as "no
// tags" rather than an empty-but-present list. Any other string is split on
// whitespace into tokens.
type TagList []string

// UnmarshalJSON accepts null, "", or a space-separated string.
func (t *TagList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*t = nil
		return nil
	}
	*t = strings.Fields(s)
	return nil
}

// MarshalJSON re-joins the token list with single spaces, or emits null for
// an absent list.
func (t TagList) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("null"), nil
	}
	return json.Marshal(strings.Join(t, " "))
}
