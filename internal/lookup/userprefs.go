package lookup

import (
	"sort"

	"github.com/jreader/yomitanctl/internal/registry"
)

// UserPreferences is the external, per-user filtering/ordering state the
// Lookup Engine depends on. Persistence of this value (a remote relational
// store exposed elsewhere as get_preferences/save_preferences) is out of
// scope; only its shape and the disabled-set contract are implemented here.
type UserPreferences struct {
	UserID string

	TermDictionaryOrder      []string
	TermDisabledDictionaries map[string]struct{}
	TermSpoilerDictionaries  map[string]struct{}

	FreqDictionaryOrder      []string
	FreqDisabledDictionaries map[string]struct{}
}

// NewUserPreferences builds a default preferences value for userID, seeding
// the term/frequency dictionary order from a registry snapshot sorted by
// identity string, with nothing disabled.
func NewUserPreferences(userID string, dicts []registry.DictionaryInfo) UserPreferences {
	var termOrder, freqOrder []string
	for _, d := range dicts {
		switch d.Type {
		case registry.Term:
			termOrder = append(termOrder, d.Identity())
		case registry.Frequency:
			freqOrder = append(freqOrder, d.Identity())
		}
	}
	sort.Strings(termOrder)
	sort.Strings(freqOrder)

	return UserPreferences{
		UserID:                   userID,
		TermDictionaryOrder:      termOrder,
		TermDisabledDictionaries: map[string]struct{}{},
		TermSpoilerDictionaries:  map[string]struct{}{},
		FreqDictionaryOrder:      freqOrder,
		FreqDisabledDictionaries: map[string]struct{}{},
	}
}

func (p UserPreferences) termDisabled(identity string) bool {
	if p.TermDisabledDictionaries == nil {
		return false
	}
	_, disabled := p.TermDisabledDictionaries[identity]
	return disabled
}

func (p UserPreferences) freqDisabled(identity string) bool {
	if p.FreqDisabledDictionaries == nil {
		return false
	}
	_, disabled := p.FreqDisabledDictionaries[identity]
	return disabled
}
