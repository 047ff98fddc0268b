package yomitan

import (
	"encoding/json"
	"fmt"
)

// FrequencyKind discriminates the untagged FrequencyData union.
type FrequencyKind int

const (
	// FrequencySimpleNumber is a bare numeric frequency value.
	FrequencySimpleNumber FrequencyKind = iota
	// FrequencySimpleString is a bare string frequency value (e.g. a rank label).
	FrequencySimpleString
	// FrequencyDetailed carries an object with value/displayValue/reading/frequency.
	FrequencyDetailed
)

// FrequencyData is the untagged union shared by term-meta "freq" entries and
// kanji-meta entries: a bare number, a bare string, or a detailed object.
type FrequencyData struct {
	Kind     FrequencyKind
	Number   float64
	String   string
	Detailed *DetailedFrequency
}

// DetailedFrequency is the object-shaped FrequencyData variant.
type DetailedFrequency struct {
	Value        *float64
	DisplayValue *string
	Reading      *string
	Frequency    *FreqValue
}

// FreqValue is the nested free-form value carried by DetailedFrequency.Frequency:
// itself a number, a string, or a {value, displayValue?} object.
type FreqValue struct {
	HasNumber    bool
	Number       float64
	HasString    bool
	String       string
	HasValue     bool
	Value        float64
	DisplayValue *string
}

type detailedFrequencyWire struct {
	Value        *float64        `json:"value,omitempty"`
	DisplayValue *string         `json:"displayValue,omitempty"`
	Reading      *string         `json:"reading,omitempty"`
	Frequency    json.RawMessage `json:"frequency,omitempty"`
}

// UnmarshalJSON shape-sniffs: number, then string, then object.
func (f *FrequencyData) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = FrequencyData{Kind: FrequencySimpleNumber, Number: num}
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*f = FrequencyData{Kind: FrequencySimpleString, String: str}
		return nil
	}
	var wire detailedFrequencyWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("decode frequency data: %w", err)
	}
	det := &DetailedFrequency{
		Value:        wire.Value,
		DisplayValue: wire.DisplayValue,
		Reading:      wire.Reading,
	}
	if len(wire.Frequency) > 0 && string(wire.Frequency) != "null" {
		fv, err := decodeFreqValue(wire.Frequency)
		if err != nil {
			return fmt.Errorf("decode nested frequency: %w", err)
		}
		det.Frequency = fv
	}
	*f = FrequencyData{Kind: FrequencyDetailed, Detailed: det}
	return nil
}

func decodeFreqValue(data []byte) (*FreqValue, error) {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		return &FreqValue{HasNumber: true, Number: num}, nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		return &FreqValue{HasString: true, String: str}, nil
	}
	var obj struct {
		Value        float64 `json:"value"`
		DisplayValue *string `json:"displayValue,omitempty"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	return &FreqValue{HasValue: true, Value: obj.Value, DisplayValue: obj.DisplayValue}, nil
}

// MarshalJSON re-encodes the variant that was decoded (or constructed).
func (f FrequencyData) MarshalJSON() ([]byte, error) {
	switch f.Kind {
	case FrequencySimpleNumber:
		return json.Marshal(f.Number)
	case FrequencySimpleString:
		return json.Marshal(f.String)
	case FrequencyDetailed:
		wire := detailedFrequencyWire{
			Value:        f.Detailed.Value,
			DisplayValue: f.Detailed.DisplayValue,
			Reading:      f.Detailed.Reading,
		}
		if f.Detailed.Frequency != nil {
			raw, err := f.Detailed.Frequency.MarshalJSON()
			if err != nil {
				return nil, err
			}
			wire.Frequency = raw
		}
		return json.Marshal(wire)
	default:
		return nil, fmt.Errorf("unknown frequency kind %d", f.Kind)
	}
}

// MarshalJSON re-encodes the nested free-form frequency value.
func (fv FreqValue) MarshalJSON() ([]byte, error) {
	switch {
	case fv.HasNumber:
		return json.Marshal(fv.Number)
	case fv.HasString:
		return json.Marshal(fv.String)
	case fv.HasValue:
		return json.Marshal(struct {
			Value        float64 `json:"value"`
			DisplayValue *string `json:"displayValue,omitempty"`
		}{fv.Value, fv.DisplayValue})
	default:
		return []byte("null"), nil
	}
}
