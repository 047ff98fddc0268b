// Package lookup implements the fan-out term/pitch/frequency lookup: given
// token features from the Morphology Adapter and a user's preferences, it
// queries every eligible dictionary concurrently and fuses the results.
package lookup

import (
	"context"
	"log"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jreader/yomitanctl/internal/kana"
	"github.com/jreader/yomitanctl/internal/morph"
	"github.com/jreader/yomitanctl/internal/registry"
	"github.com/jreader/yomitanctl/internal/yomitan"
)

// DictResult is the fused output of one Term dictionary's fan-out lookup.
type DictResult struct {
	Title    string
	Revision string
	Origin   string
	Entries  []yomitan.TermEntry
}

// PitchAccentEntry is one pitch-accent candidate joined for a (text, reading) pair.
type PitchAccentEntry struct {
	Reading   string
	Position  int
	MoraCount int
}

// FrequencyResult is one frequency record joined for a dictionary-form term.
type FrequencyResult struct {
	Term         string
	Reading      *string
	Value        *string
	DisplayValue *string
}

// Result is the unified output of a Lookup call.
type Result struct {
	Dict  []DictResult
	Pitch map[string]map[string][]PitchAccentEntry
	Freq  map[string][]FrequencyResult
}

// Engine runs lookups against a Registry.
type Engine struct {
	Registry *registry.Registry
	Logger   *log.Logger
}

// New returns an Engine over reg. A nil logger falls back to log.Default().
func New(reg *registry.Registry, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{Registry: reg, Logger: logger}
}

func (e *Engine) logf(format string, args ...any) {
	e.Logger.Printf(format, args...)
}

// Lookup runs the full fan-out/join algorithm over tokens for the given
// user preferences.
func (e *Engine) Lookup(ctx context.Context, tokens []morph.TokenFeature, prefs UserPreferences) (Result, error) {
	dictResults, err := e.lookupTerms(ctx, tokens, prefs)
	if err != nil {
		return Result{}, err
	}

	pairs := collectTextReadingPairs(dictResults)

	pitchMap, err := e.lookupPitch(ctx, pairs)
	if err != nil {
		return Result{}, err
	}

	freqMap, err := e.lookupFrequency(ctx, tokens, prefs)
	if err != nil {
		return Result{}, err
	}

	return Result{Dict: dictResults, Pitch: pitchMap, Freq: freqMap}, nil
}

// lookupTerms fans out across every non-disabled Term dictionary.
func (e *Engine) lookupTerms(ctx context.Context, tokens []morph.TokenFeature, prefs UserPreferences) ([]DictResult, error) {
	dicts := e.Registry.TermDictionaries()

	results := make([]*DictResult, len(dicts))
	g, _ := errgroup.WithContext(ctx)

	for i, rd := range dicts {
		i, rd := i, rd
		identity := rd.Index.Title + "#" + rd.Index.Revision
		if prefs.termDisabled(identity) {
			continue
		}
		g.Go(func() error {
			res, err := lookupOneTermDict(rd, tokens)
			if err != nil {
				// Per-dictionary failure is a miss, never fatal.
				e.logf("lookup: term dictionary %q failed: %v", rd.Index.Title, err)
				return nil
			}
			if res != nil {
				results[i] = res
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []DictResult
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, nil
}

func lookupOneTermDict(rd *registry.RegisteredDictionary, tokens []morph.TokenFeature) (*DictResult, error) {
	if rd.TermStore == nil {
		return nil, nil
	}

	var entries []yomitan.TermEntry
	for _, tok := range tokens {
		found := false
		if tok.SurfaceForm != "" {
			if rows, ok, err := rd.TermStore.Get(tok.SurfaceForm); err != nil {
				return nil, err
			} else if ok {
				entries = append(entries, rows...)
				found = true
			}
		}
		if !found && kana.IsAllKatakana(tok.SurfaceForm) {
			if rows, ok, err := rd.TermStore.Get(kana.ToHiragana(tok.SurfaceForm)); err != nil {
				return nil, err
			} else if ok {
				entries = append(entries, rows...)
			}
		}
		if tok.DictionaryForm != "" && tok.DictionaryForm != tok.SurfaceForm {
			if rows, ok, err := rd.TermStore.Get(tok.DictionaryForm); err != nil {
				return nil, err
			} else if ok {
				entries = append(entries, rows...)
			}
		}
	}

	if len(entries) == 0 {
		return nil, nil
	}

	origin := rd.Dir
	return &DictResult{
		Title:    rd.Index.Title,
		Revision: rd.Index.Revision,
		Origin:   origin,
		Entries:  entries,
	}, nil
}

type textReadingPair struct {
	text    string
	reading string // hiragana-normalized
}

func collectTextReadingPairs(results []DictResult) []textReadingPair {
	seen := make(map[textReadingPair]bool)
	var pairs []textReadingPair
	for _, r := range results {
		for _, entry := range r.Entries {
			p := textReadingPair{text: entry.Text, reading: kana.ToHiragana(entry.Reading)}
			if !seen[p] {
				seen[p] = true
				pairs = append(pairs, p)
			}
		}
	}
	return pairs
}

// lookupPitch iterates all registered pitch dictionaries (not just the
// first) and merges their results, the improved policy spec.md recommends
// over the original's index-0-only behavior; see DESIGN.md.
func (e *Engine) lookupPitch(ctx context.Context, pairs []textReadingPair) (map[string]map[string][]PitchAccentEntry, error) {
	dicts := e.Registry.PitchDictionaries()
	out := make(map[string]map[string][]PitchAccentEntry)

	for _, pair := range pairs {
		for _, rd := range dicts {
			if rd.TermMetaStore == nil {
				continue
			}
			rows, ok, err := rd.TermMetaStore.Get(pair.text)
			if err != nil {
				e.logf("lookup: pitch dictionary %q failed for %q: %v", rd.Index.Title, pair.text, err)
				continue
			}
			if !ok {
				continue
			}
			for _, row := range rows {
				if row.Kind != yomitan.TermMetaPitch || row.Pitch == nil {
					continue
				}
				if row.Term != pair.text {
					continue
				}
				hiraReading := kana.ToHiragana(row.Pitch.Reading)
				if hiraReading != pair.reading {
					continue
				}
				for _, p := range row.Pitch.Pitches {
					entry := PitchAccentEntry{Reading: hiraReading, Position: p.Position, MoraCount: kana.CountMora(hiraReading)}
					if out[pair.text] == nil {
						out[pair.text] = make(map[string][]PitchAccentEntry)
					}
					out[pair.text][pair.reading] = append(out[pair.text][pair.reading], entry)
				}
			}
		}
	}

	_ = ctx
	return out, nil
}

// lookupFrequency fans out across every non-disabled Frequency dictionary,
// joining on dictionary-form terms only.
func (e *Engine) lookupFrequency(ctx context.Context, tokens []morph.TokenFeature, prefs UserPreferences) (map[string][]FrequencyResult, error) {
	dicts := e.Registry.FrequencyDictionaries()

	terms := make(map[string]bool)
	var ordered []string
	for _, tok := range tokens {
		form := tok.DictionaryForm
		if form == "" {
			continue
		}
		if !terms[form] {
			terms[form] = true
			ordered = append(ordered, form)
		}
	}

	out := make(map[string][]FrequencyResult)
	var mu sync.Mutex
	g, _ := errgroup.WithContext(ctx)

	for _, rd := range dicts {
		rd := rd
		identity := rd.Index.Title + "#" + rd.Index.Revision
		if prefs.freqDisabled(identity) {
			continue
		}
		g.Go(func() error {
			results, err := lookupOneFreqDict(rd, ordered)
			if err != nil {
				e.logf("lookup: frequency dictionary %q failed: %v", rd.Index.Title, err)
				return nil
			}
			if len(results) == 0 {
				return nil
			}
			mu.Lock()
			out[identity] = append(out[identity], results...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func lookupOneFreqDict(rd *registry.RegisteredDictionary, terms []string) ([]FrequencyResult, error) {
	if rd.TermMetaStore == nil {
		return nil, nil
	}
	var out []FrequencyResult
	for _, term := range terms {
		rows, ok, err := rd.TermMetaStore.Get(term)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		for _, row := range rows {
			if row.Kind != yomitan.TermMetaFreq || row.Freq == nil {
				continue
			}
			out = append(out, frequencyResultFrom(row.Term, *row.Freq))
		}
	}
	return out, nil
}

func frequencyResultFrom(term string, fd yomitan.FrequencyData) FrequencyResult {
	res := FrequencyResult{Term: term}
	switch fd.Kind {
	case yomitan.FrequencySimpleNumber:
		v := strconv.FormatFloat(fd.Number, 'g', -1, 64)
		res.Value = &v
	case yomitan.FrequencySimpleString:
		res.Value = &fd.String
	case yomitan.FrequencyDetailed:
		det := fd.Detailed
		res.Reading = det.Reading
		res.DisplayValue = det.DisplayValue
		switch {
		case det.Value != nil:
			v := strconv.FormatFloat(*det.Value, 'g', -1, 64)
			res.Value = &v
		case det.Frequency != nil:
			v := freqValueString(*det.Frequency)
			res.Value = &v
		}
	}
	return res
}

func freqValueString(fv yomitan.FreqValue) string {
	switch {
	case fv.HasNumber:
		return strconv.FormatFloat(fv.Number, 'g', -1, 64)
	case fv.HasString:
		return fv.String
	case fv.HasValue:
		return strconv.FormatFloat(fv.Value, 'g', -1, 64)
	default:
		return ""
	}
}
