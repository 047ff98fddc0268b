// Package morph wraps a Japanese morphological analyzer to produce, for an
// input text and cursor position, an ordered list of token-feature records
// including surface form and dictionary form, plus compound candidates
// built from adjacent noun runs and from a token whose POS is exactly "詞"
// followed by a verb.
package morph

import (
	"sort"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"

	"github.com/jreader/yomitanctl/internal/jerrors"
)

// TokenFeature is one analyzed unit produced by Analyze: a single token or a
// synthesized compound built from adjacent tokens.
type TokenFeature struct {
	SurfaceForm     string
	DictionaryForm  string
	POS             string
	SubPOS1         string
	SubPOS2         string
	SubPOS3         string
	ConjugationType string
	ConjugationForm string
	Reading         string
	Pronunciation   string
}

// Analyzer wraps a kagome tokenizer for compound-aware lookup candidate
// generation. Construction mirrors the teacher's readerer.NewAnalyzer.
type Analyzer struct {
	t *tokenizer.Tokenizer
}

// New creates a new Analyzer backed by the IPA dictionary.
func New() (*Analyzer, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, jerrors.New(jerrors.Config, "morph.New", err)
	}
	return &Analyzer{t: t}, nil
}

// Kagome IPA feature array layout (see pkg/readerer/readerer.go for the
// teacher's equivalent indexing):
//
//	[0]=POS [1-3]=SubPOS [4]=ConjType [5]=ConjForm [6]=BaseForm [7]=Reading [8]=Pronunciation
const (
	featPOS           = 0
	featSubPOS1       = 1
	featSubPOS2       = 2
	featSubPOS3       = 3
	featConjType      = 4
	featConjForm      = 5
	featBaseForm      = 6
	featReading       = 7
	featPronunciation = 8
)

func featAt(features []string, i int) string {
	if i >= len(features) {
		return ""
	}
	if features[i] == "*" {
		return ""
	}
	return features[i]
}

func toTokenFeature(tok tokenizer.Token) TokenFeature {
	features := tok.Features()
	base := featAt(features, featBaseForm)
	if base == "" {
		base = tok.Surface
	}
	return TokenFeature{
		SurfaceForm:     tok.Surface,
		DictionaryForm:  base,
		POS:             featAt(features, featPOS),
		SubPOS1:         featAt(features, featSubPOS1),
		SubPOS2:         featAt(features, featSubPOS2),
		SubPOS3:         featAt(features, featSubPOS3),
		ConjugationType: featAt(features, featConjType),
		ConjugationForm: featAt(features, featConjForm),
		Reading:         featAt(features, featReading),
		Pronunciation:   featAt(features, featPronunciation),
	}
}

const (
	posNoun  = "名詞"
	posVerb  = "動詞"
	posOther = "詞" // exact match only: no real MeCab IPA POS value is the bare string "詞"
)

func isNoun(f TokenFeature) bool { return f.POS == posNoun }
func isVerb(f TokenFeature) bool { return f.POS == posVerb }
func isParticleOrCounter(f TokenFeature) bool {
	return f.POS == posOther
}

// Analyze tokenizes text, locates the token spanning position (a rune
// offset into text), and emits the base token plus any compound candidates
// rooted at that token, sorted by descending surface-form rune length.
func (a *Analyzer) Analyze(text string, position int) ([]TokenFeature, error) {
	tokens := a.t.Tokenize(text)

	var feats []TokenFeature
	var starts []int // rune offset of each token's start, parallel to feats
	offset := 0
	for _, tok := range tokens {
		if tok.Class == tokenizer.DUMMY {
			continue
		}
		f := toTokenFeature(tok)
		starts = append(starts, offset)
		feats = append(feats, f)
		offset += len([]rune(tok.Surface))
	}

	cursor := -1
	for i, start := range starts {
		end := start + len([]rune(feats[i].SurfaceForm))
		if position >= start && position < end {
			cursor = i
			break
		}
	}
	if cursor == -1 {
		if len(feats) == 0 {
			return nil, nil
		}
		// Position past the end of the text: anchor on the last token.
		cursor = len(feats) - 1
	}

	base := feats[cursor]
	candidates := []TokenFeature{base}

	if isNoun(base) {
		surface := base.SurfaceForm
		for j := cursor + 1; j < len(feats) && isNoun(feats[j]); j++ {
			surface += feats[j].SurfaceForm
			compound := base
			compound.SurfaceForm = surface
			compound.DictionaryForm = surface
			candidates = append(candidates, compound)
		}
	} else if isParticleOrCounter(base) && cursor+1 < len(feats) && isVerb(feats[cursor+1]) {
		next := feats[cursor+1]
		compound := base
		compound.SurfaceForm = base.SurfaceForm + next.SurfaceForm
		compound.DictionaryForm = base.DictionaryForm + next.DictionaryForm
		candidates = append(candidates, compound)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return len([]rune(candidates[i].SurfaceForm)) > len([]rune(candidates[j].SurfaceForm))
	})

	return candidates, nil
}
