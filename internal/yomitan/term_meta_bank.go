package yomitan

import (
	"encoding/json"
	"fmt"

	"github.com/jreader/yomitanctl/internal/jsonutil"
)

// TermMetaKind is the closed set of term-meta payload kinds.
type TermMetaKind string

const (
	TermMetaFreq  TermMetaKind = "freq"
	TermMetaPitch TermMetaKind = "pitch"
	TermMetaIPA   TermMetaKind = "ipa"
)

// Pitch is one pitch-accent position entry. Unlike TermEntry.Tags, the
// pitches[].tags field is a real JSON array, not a space-separated string.
type Pitch struct {
	Position int
	Nasal    *NasalDevoice
	Devoice  *NasalDevoice
	Tags     []string
}

// NasalDevoice is the untagged union carried by pitches[].nasal and
// pitches[].devoice: the source schema documents these as either a bare
// integer or an array of integers, and real shards use the integer form.
type NasalDevoice struct {
	IsArray bool
	Number  int
	Array   []int
}

// UnmarshalJSON shape-sniffs: a bare integer, then an array of integers.
func (n *NasalDevoice) UnmarshalJSON(data []byte) error {
	var num int
	if err := json.Unmarshal(data, &num); err == nil {
		*n = NasalDevoice{Number: num}
		return nil
	}
	var arr []int
	if err := json.Unmarshal(data, &arr); err != nil {
		return fmt.Errorf("decode nasal/devoice: %w", err)
	}
	*n = NasalDevoice{IsArray: true, Array: arr}
	return nil
}

// MarshalJSON re-encodes the variant that was decoded.
func (n NasalDevoice) MarshalJSON() ([]byte, error) {
	if n.IsArray {
		return json.Marshal(n.Array)
	}
	return json.Marshal(n.Number)
}

type pitchWire struct {
	Position int           `json:"position"`
	Nasal    *NasalDevoice `json:"nasal,omitempty"`
	Devoice  *NasalDevoice `json:"devoice,omitempty"`
	Tags     []string      `json:"tags,omitempty"`
}

// PitchData is the "pitch" kind payload of a TermMetaEntry.
type PitchData struct {
	Reading string
	Pitches []Pitch
}

// IPATranscription is one IPA transcription entry.
type IPATranscription struct {
	IPA  string
	Tags []string
}

type ipaTranscriptionWire struct {
	IPA  string   `json:"ipa"`
	Tags []string `json:"tags,omitempty"`
}

// IPAData is the "ipa" kind payload of a TermMetaEntry.
type IPAData struct {
	Reading        string
	Transcriptions []IPATranscription
}

// TermMetaEntry is one row of a term_meta_bank shard. Unlike Definition or
// FrequencyData, the payload is NOT shape-sniffed: the explicit "kind"
// string field names which of Freq/Pitch/IPA the third element holds.
type TermMetaEntry struct {
	Term string
	Kind TermMetaKind

	Freq  *FrequencyData
	Pitch *PitchData
	IPA   *IPAData
}

// UnmarshalJSON decodes the 3-element positional array, dispatching the
// third element's shape on the second element's kind string.
func (e *TermMetaEntry) UnmarshalJSON(data []byte) error {
	raw, err := jsonutil.DecodeTuple(data, 3)
	if err != nil {
		return fmt.Errorf("term meta entry: %w", err)
	}

	var out TermMetaEntry
	if err := json.Unmarshal(raw[0], &out.Term); err != nil {
		return fmt.Errorf("term meta entry: term: %w", err)
	}
	var kind string
	if err := json.Unmarshal(raw[1], &kind); err != nil {
		return fmt.Errorf("term meta entry: kind: %w", err)
	}
	out.Kind = TermMetaKind(kind)

	switch out.Kind {
	case TermMetaFreq:
		var fd FrequencyData
		if err := json.Unmarshal(raw[2], &fd); err != nil {
			return fmt.Errorf("term meta entry: freq data: %w", err)
		}
		out.Freq = &fd
	case TermMetaPitch:
		var wire struct {
			Reading string      `json:"reading"`
			Pitches []pitchWire `json:"pitches"`
		}
		if err := json.Unmarshal(raw[2], &wire); err != nil {
			return fmt.Errorf("term meta entry: pitch data: %w", err)
		}
		pd := PitchData{Reading: wire.Reading}
		for _, p := range wire.Pitches {
			pd.Pitches = append(pd.Pitches, Pitch{Position: p.Position, Nasal: p.Nasal, Devoice: p.Devoice, Tags: p.Tags})
		}
		out.Pitch = &pd
	case TermMetaIPA:
		var wire struct {
			Reading        string                 `json:"reading"`
			Transcriptions []ipaTranscriptionWire `json:"transcriptions"`
		}
		if err := json.Unmarshal(raw[2], &wire); err != nil {
			return fmt.Errorf("term meta entry: ipa data: %w", err)
		}
		id := IPAData{Reading: wire.Reading}
		for _, t := range wire.Transcriptions {
			id.Transcriptions = append(id.Transcriptions, IPATranscription{IPA: t.IPA, Tags: t.Tags})
		}
		out.IPA = &id
	default:
		return fmt.Errorf("term meta entry: unknown kind %q", kind)
	}

	*e = out
	return nil
}

// MarshalJSON re-encodes the entry as its 3-element positional array.
func (e TermMetaEntry) MarshalJSON() ([]byte, error) {
	var payload any
	switch e.Kind {
	case TermMetaFreq:
		payload = e.Freq
	case TermMetaPitch:
		pitches := make([]pitchWire, 0, len(e.Pitch.Pitches))
		for _, p := range e.Pitch.Pitches {
			pitches = append(pitches, pitchWire{Position: p.Position, Nasal: p.Nasal, Devoice: p.Devoice, Tags: p.Tags})
		}
		payload = struct {
			Reading string      `json:"reading"`
			Pitches []pitchWire `json:"pitches"`
		}{e.Pitch.Reading, pitches}
	case TermMetaIPA:
		transcriptions := make([]ipaTranscriptionWire, 0, len(e.IPA.Transcriptions))
		for _, t := range e.IPA.Transcriptions {
			transcriptions = append(transcriptions, ipaTranscriptionWire{IPA: t.IPA, Tags: t.Tags})
		}
		payload = struct {
			Reading        string                 `json:"reading"`
			Transcriptions []ipaTranscriptionWire `json:"transcriptions"`
		}{e.IPA.Reading, transcriptions}
	default:
		return nil, fmt.Errorf("term meta entry: unknown kind %q", e.Kind)
	}
	return jsonutil.EncodeTuple(e.Term, string(e.Kind), payload)
}
