package yomitan

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// FrequencyMode is the closed set of frequencyMode values.
type FrequencyMode string

const (
	FrequencyModeOccurrenceBased FrequencyMode = "occurrence-based"
	FrequencyModeRankBased       FrequencyMode = "rank-based"
)

// TagMetaInfo is one entry of a DictionaryIndex's optional tagMeta map.
type TagMetaInfo struct {
	Category *string  `json:"category,omitempty"`
	Order    *float64 `json:"order,omitempty"`
	Notes    *string  `json:"notes,omitempty"`
	Score    *float64 `json:"score,omitempty"`
}

// DictionaryIndex is the parsed index.json manifest of an archive.
type DictionaryIndex struct {
	Title          string                 `json:"title"`
	Revision       string                 `json:"revision"`
	Format         *int                   `json:"format,omitempty"`
	Sequenced      bool                   `json:"sequenced,omitempty"`
	Author         *string                `json:"author,omitempty"`
	SourceLanguage *string                `json:"sourceLanguage,omitempty"`
	TargetLanguage *string                `json:"targetLanguage,omitempty"`
	FrequencyMode  *FrequencyMode         `json:"frequencyMode,omitempty"`
	IsUpdatable    bool                   `json:"isUpdatable,omitempty"`
	IndexURL       *string                `json:"indexUrl,omitempty"`
	DownloadURL    *string                `json:"downloadUrl,omitempty"`
	TagMeta        map[string]TagMetaInfo `json:"tagMeta,omitempty"`
}

// UnmarshalJSON decodes the index, accepting the legacy "version" key as an
// alias for "format" when "format" itself is absent.
func (idx *DictionaryIndex) UnmarshalJSON(data []byte) error {
	type alias DictionaryIndex
	var wire struct {
		alias
		Version *int `json:"version,omitempty"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("decode dictionary index: %w", err)
	}
	out := DictionaryIndex(wire.alias)
	if out.Format == nil && wire.Version != nil {
		out.Format = wire.Version
	}
	*idx = out
	return nil
}

var languageCodeRE = regexp.MustCompile(`^[a-z]{2,3}$`)

// Validate checks the invariants spec.md states for a DictionaryIndex:
// format in {1,2,3}; language codes are 2-3 lowercase ASCII letters;
// isUpdatable implies both indexUrl and downloadUrl are present.
func (idx DictionaryIndex) Validate() error {
	if idx.Format != nil {
		switch *idx.Format {
		case 1, 2, 3:
		default:
			return fmt.Errorf("dictionary index: format %d out of range {1,2,3}", *idx.Format)
		}
	}
	if idx.SourceLanguage != nil && !languageCodeRE.MatchString(*idx.SourceLanguage) {
		return fmt.Errorf("dictionary index: invalid sourceLanguage %q", *idx.SourceLanguage)
	}
	if idx.TargetLanguage != nil && !languageCodeRE.MatchString(*idx.TargetLanguage) {
		return fmt.Errorf("dictionary index: invalid targetLanguage %q", *idx.TargetLanguage)
	}
	if idx.FrequencyMode != nil {
		switch *idx.FrequencyMode {
		case FrequencyModeOccurrenceBased, FrequencyModeRankBased:
		default:
			return fmt.Errorf("dictionary index: invalid frequencyMode %q", *idx.FrequencyMode)
		}
	}
	if idx.IsUpdatable {
		if idx.IndexURL == nil || *idx.IndexURL == "" {
			return fmt.Errorf("dictionary index: isUpdatable requires indexUrl")
		}
		if idx.DownloadURL == nil || *idx.DownloadURL == "" {
			return fmt.Errorf("dictionary index: isUpdatable requires downloadUrl")
		}
	}
	if idx.Title == "" {
		return fmt.Errorf("dictionary index: title must not be empty")
	}
	if idx.Revision == "" {
		return fmt.Errorf("dictionary index: revision must not be empty")
	}
	return nil
}
