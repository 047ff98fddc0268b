// Package registry maintains the in-memory catalogue of dictionaries loaded
// from disk, bucketed by classified type, with hot registration after a new
// ingest.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jreader/yomitanctl/internal/jerrors"
	"github.com/jreader/yomitanctl/internal/kvstore"
	"github.com/jreader/yomitanctl/internal/yomitan"
)

// DictionaryType is the classified type of a RegisteredDictionary.
type DictionaryType int

const (
	Term DictionaryType = iota
	Pitch
	Frequency
	Kanji
)

func (t DictionaryType) String() string {
	switch t {
	case Term:
		return "Term"
	case Pitch:
		return "Pitch"
	case Frequency:
		return "Frequency"
	case Kanji:
		return "Kanji"
	default:
		return "Unknown"
	}
}

// RegisteredDictionary is a fully opened, classified dictionary. Stores for
// schemas the dictionary does not carry are nil.
type RegisteredDictionary struct {
	Dir   string
	Index yomitan.DictionaryIndex
	Type  DictionaryType

	TermStore      *kvstore.Store[yomitan.TermEntry]
	TagStore       *kvstore.Store[yomitan.TagEntry]
	TermMetaStore  *kvstore.Store[yomitan.TermMetaEntry]
	KanjiStore     *kvstore.Store[yomitan.KanjiEntry]
	KanjiMetaStore *kvstore.Store[yomitan.KanjiMetaEntry]
}

// DictionaryInfo is the flat (title, revision, classified-type) listing
// returned by DictionariesInfo.
type DictionaryInfo struct {
	Title    string
	Revision string
	Type     DictionaryType
}

// Identity returns the "{title}#{revision}" string used as the disabled-set
// key throughout the lookup engine.
func (d DictionaryInfo) Identity() string {
	return d.Title + "#" + d.Revision
}

// Registry is the reader-writer guarded catalogue of loaded dictionaries.
type Registry struct {
	mu sync.RWMutex

	term []*RegisteredDictionary
	pitch []*RegisteredDictionary
	freq  []*RegisteredDictionary
	kanji []*RegisteredDictionary
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{}
}

// openDictionaryDir opens every schema store present under dir and parses
// index.json, without classifying it.
func openDictionaryDir(dir string) (*RegisteredDictionary, error) {
	indexPath := filepath.Join(dir, "index.json")
	raw, err := os.ReadFile(indexPath)
	if err != nil {
		return nil, jerrors.New(jerrors.IO, "registry.openDictionaryDir: read index.json", err)
	}
	var idx yomitan.DictionaryIndex
	if err := json.Unmarshal(raw, &idx); err != nil {
		return nil, jerrors.New(jerrors.SchemaDecode, "registry.openDictionaryDir: decode index.json", err)
	}
	if err := idx.Validate(); err != nil {
		return nil, jerrors.New(jerrors.SchemaDecode, "registry.openDictionaryDir: validate index.json", err)
	}

	rd := &RegisteredDictionary{Dir: dir, Index: idx}

	if store, ok, err := kvstore.OpenRO[yomitan.TermEntry](dir, "term_bank_"); err != nil {
		return nil, jerrors.New(jerrors.Storage, "registry.openDictionaryDir: term store", err)
	} else if ok {
		rd.TermStore = store
	}
	if store, ok, err := kvstore.OpenRO[yomitan.TagEntry](dir, "tag_bank_"); err != nil {
		return nil, jerrors.New(jerrors.Storage, "registry.openDictionaryDir: tag store", err)
	} else if ok {
		rd.TagStore = store
	}
	if store, ok, err := kvstore.OpenRO[yomitan.TermMetaEntry](dir, "term_meta_bank_"); err != nil {
		return nil, jerrors.New(jerrors.Storage, "registry.openDictionaryDir: term meta store", err)
	} else if ok {
		rd.TermMetaStore = store
	}
	if store, ok, err := kvstore.OpenRO[yomitan.KanjiEntry](dir, "kanji_bank_"); err != nil {
		return nil, jerrors.New(jerrors.Storage, "registry.openDictionaryDir: kanji store", err)
	} else if ok {
		rd.KanjiStore = store
	}
	if store, ok, err := kvstore.OpenRO[yomitan.KanjiMetaEntry](dir, "kanji_meta_bank_"); err != nil {
		return nil, jerrors.New(jerrors.Storage, "registry.openDictionaryDir: kanji meta store", err)
	} else if ok {
		rd.KanjiMetaStore = store
	}

	return rd, nil
}

// classify applies the authoritative classification algorithm: non-empty
// kanji table (or a revision containing "kanji") wins outright; otherwise a
// non-empty term-meta table is inspected by its first row's kind; otherwise
// a non-empty term table classifies as Term; otherwise classification fails.
func classify(rd *RegisteredDictionary) (DictionaryType, error) {
	if strings.Contains(rd.Index.Revision, "kanji") {
		return Kanji, nil
	}
	if rd.KanjiStore != nil {
		if count, err := rd.KanjiStore.Count(); err != nil {
			return 0, err
		} else if count > 0 {
			return Kanji, nil
		}
	}
	if rd.TermMetaStore != nil {
		if row, ok, err := rd.TermMetaStore.GetFirstRow(); err != nil {
			return 0, err
		} else if ok && len(row) > 0 {
			switch row[0].Kind {
			case yomitan.TermMetaFreq:
				return Frequency, nil
			case yomitan.TermMetaPitch:
				return Pitch, nil
			default:
				return 0, jerrors.New(jerrors.Classify, "registry.classify", fmt.Errorf("unexpected term-meta kind %q for classification", row[0].Kind))
			}
		}
	}
	if rd.TermStore != nil {
		if count, err := rd.TermStore.Count(); err != nil {
			return 0, err
		} else if count > 0 {
			return Term, nil
		}
	}
	return 0, jerrors.New(jerrors.Classify, "registry.classify", fmt.Errorf("dictionary %q has no classifiable content", rd.Index.Title))
}

func (r *Registry) bucketFor(t DictionaryType) *[]*RegisteredDictionary {
	switch t {
	case Term:
		return &r.term
	case Pitch:
		return &r.pitch
	case Frequency:
		return &r.freq
	case Kanji:
		return &r.kanji
	default:
		return nil
	}
}

// LoadAll enumerates subdirectories of dbRoot, opens and classifies each,
// and populates the corresponding bucket. Non-directories are ignored;
// dictionaries that fail to classify are logged (via the returned error
// slice) and skipped, not fatal to the load.
func (r *Registry) LoadAll(dbRoot string) (loadErrors []error, err error) {
	entries, err := os.ReadDir(dbRoot)
	if err != nil {
		return nil, jerrors.New(jerrors.IO, "registry.LoadAll: read db root", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(dbRoot, entry.Name())
		rd, openErr := openDictionaryDir(dir)
		if openErr != nil {
			loadErrors = append(loadErrors, fmt.Errorf("load %s: %w", dir, openErr))
			continue
		}
		dictType, classifyErr := classify(rd)
		if classifyErr != nil {
			loadErrors = append(loadErrors, fmt.Errorf("classify %s: %w", dir, classifyErr))
			continue
		}
		rd.Type = dictType
		bucket := r.bucketFor(dictType)
		*bucket = append(*bucket, rd)
	}
	return loadErrors, nil
}

// Register opens and classifies dir, rejecting it if a dictionary with the
// same (title, revision) already exists in the Term bucket (the literal
// scope the registration contract defines; see DESIGN.md), then appends it
// to the classified bucket.
func (r *Registry) Register(dir string) (*RegisteredDictionary, error) {
	rd, err := openDictionaryDir(dir)
	if err != nil {
		return nil, err
	}
	dictType, err := classify(rd)
	if err != nil {
		return nil, err
	}
	rd.Type = dictType

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.term {
		if existing.Index.Title == rd.Index.Title && existing.Index.Revision == rd.Index.Revision {
			return nil, jerrors.New(jerrors.RegistryConflict, "registry.Register",
				fmt.Errorf("dictionary %q revision %q already registered", rd.Index.Title, rd.Index.Revision))
		}
	}

	bucket := r.bucketFor(dictType)
	*bucket = append(*bucket, rd)
	return rd, nil
}

// Clear empties all buckets.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.term = nil
	r.pitch = nil
	r.freq = nil
	r.kanji = nil
}

// DictionariesInfo returns a flat listing of every registered dictionary.
func (r *Registry) DictionariesInfo() []DictionaryInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []DictionaryInfo
	for _, bucket := range [][]*RegisteredDictionary{r.term, r.pitch, r.freq, r.kanji} {
		for _, rd := range bucket {
			out = append(out, DictionaryInfo{Title: rd.Index.Title, Revision: rd.Index.Revision, Type: rd.Type})
		}
	}
	return out
}

// TermDictionaries returns a snapshot of the Term bucket.
func (r *Registry) TermDictionaries() []*RegisteredDictionary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*RegisteredDictionary, len(r.term))
	copy(out, r.term)
	return out
}

// PitchDictionaries returns a snapshot of the Pitch bucket.
func (r *Registry) PitchDictionaries() []*RegisteredDictionary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*RegisteredDictionary, len(r.pitch))
	copy(out, r.pitch)
	return out
}

// FrequencyDictionaries returns a snapshot of the Frequency bucket.
func (r *Registry) FrequencyDictionaries() []*RegisteredDictionary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*RegisteredDictionary, len(r.freq))
	copy(out, r.freq)
	return out
}

// KanjiDictionaries returns a snapshot of the Kanji bucket.
func (r *Registry) KanjiDictionaries() []*RegisteredDictionary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*RegisteredDictionary, len(r.kanji))
	copy(out, r.kanji)
	return out
}
