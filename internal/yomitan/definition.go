package yomitan

import (
	"encoding/json"
	"fmt"
)

// DefinitionKind discriminates the untagged Definition union.
type DefinitionKind int

const (
	// DefinitionSimple is a bare definition string.
	DefinitionSimple DefinitionKind = iota
	// DefinitionStructured carries a {type, content?, attributes?} object.
	DefinitionStructured
	// DefinitionDeinflection carries a {baseForm, inflections} object.
	DefinitionDeinflection
)

// Definition is one entry of a TermEntry's definitions array: an untagged
// union disambiguated by JSON shape rather than an explicit tag field.
type Definition struct {
	Kind DefinitionKind

	// Simple
	Text string

	// Structured
	Type       string
	Content    json.RawMessage
	Attributes map[string]any

	// Deinflection
	BaseForm    string
	Inflections []string
}

type deinflectionWire struct {
	BaseForm    string   `json:"baseForm"`
	Inflections []string `json:"inflections"`
}

type structuredWire struct {
	Type       string          `json:"type"`
	Content    json.RawMessage `json:"content,omitempty"`
	Attributes map[string]any  `json:"attributes,omitempty"`
}

// UnmarshalJSON disambiguates: a JSON string is Simple; an object with both
// baseForm and inflections is Deinflection; any other object is Structured.
func (d *Definition) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*d = Definition{Kind: DefinitionSimple, Text: s}
		return nil
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("decode definition: %w", err)
	}

	_, hasBaseForm := probe["baseForm"]
	_, hasInflections := probe["inflections"]
	if hasBaseForm && hasInflections {
		var w deinflectionWire
		if err := json.Unmarshal(data, &w); err != nil {
			return fmt.Errorf("decode deinflection definition: %w", err)
		}
		*d = Definition{Kind: DefinitionDeinflection, BaseForm: w.BaseForm, Inflections: w.Inflections}
		return nil
	}

	var w structuredWire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("decode structured definition: %w", err)
	}
	*d = Definition{Kind: DefinitionStructured, Type: w.Type, Content: w.Content, Attributes: w.Attributes}
	return nil
}

// MarshalJSON re-encodes whichever variant is set.
func (d Definition) MarshalJSON() ([]byte, error) {
	switch d.Kind {
	case DefinitionSimple:
		return json.Marshal(d.Text)
	case DefinitionDeinflection:
		return json.Marshal(deinflectionWire{BaseForm: d.BaseForm, Inflections: d.Inflections})
	case DefinitionStructured:
		return json.Marshal(structuredWire{Type: d.Type, Content: d.Content, Attributes: d.Attributes})
	default:
		return nil, fmt.Errorf("unknown definition kind %d", d.Kind)
	}
}
