package morph

import "testing"

func TestAnalyzeBaseToken(t *testing.T) {
	a, err := New()
	if err != nil {
		t.Fatalf("new analyzer: %v", err)
	}
	tokens, err := a.Analyze("犬が鳴く", 0)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(tokens) == 0 {
		t.Fatal("expected at least one candidate")
	}
	if tokens[0].SurfaceForm != "犬" {
		t.Fatalf("expected the cursor token to be 犬, got %q", tokens[0].SurfaceForm)
	}
}

func TestAnalyzeNounCompoundGrowth(t *testing.T) {
	a, err := New()
	if err != nil {
		t.Fatalf("new analyzer: %v", err)
	}
	// 東京都 tokenizes as a run of nouns (東京 + 都); the cursor on the first
	// noun should also produce the grown compound candidate.
	tokens, err := a.Analyze("東京都に行く", 0)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(tokens) < 2 {
		t.Fatalf("expected a base token plus at least one grown compound, got %d candidates", len(tokens))
	}
	// Sorted descending by surface rune length, so the longest candidate leads.
	for i := 1; i < len(tokens); i++ {
		if len([]rune(tokens[i-1].SurfaceForm)) < len([]rune(tokens[i].SurfaceForm)) {
			t.Fatalf("expected candidates sorted by descending surface length, got %v then %v",
				tokens[i-1].SurfaceForm, tokens[i].SurfaceForm)
		}
	}
}

func TestAnalyzeCursorPastEndAnchorsOnLastToken(t *testing.T) {
	a, err := New()
	if err != nil {
		t.Fatalf("new analyzer: %v", err)
	}
	text := "猫"
	tokens, err := a.Analyze(text, 1000)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(tokens) == 0 {
		t.Fatal("expected a candidate anchored on the last token")
	}
	if tokens[0].SurfaceForm != "猫" {
		t.Fatalf("expected anchor on 猫, got %q", tokens[0].SurfaceForm)
	}
}

func TestAnalyzeEmptyTextReturnsNoCandidates(t *testing.T) {
	a, err := New()
	if err != nil {
		t.Fatalf("new analyzer: %v", err)
	}
	tokens, err := a.Analyze("", 0)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(tokens) != 0 {
		t.Fatalf("expected no candidates for empty text, got %d", len(tokens))
	}
}

func TestIsNounIsVerbIsParticleOrCounter(t *testing.T) {
	noun := TokenFeature{POS: "名詞"}
	verb := TokenFeature{POS: "動詞"}
	// Real MeCab IPA POS values for particles/counters (助詞, 助数詞) are
	// never the bare string "詞", so isParticleOrCounter must not match
	// them: it only matches an exact "詞" POS, which no real token carries.
	particle := TokenFeature{POS: "助詞"}
	counter := TokenFeature{POS: "助数詞"}
	bareOther := TokenFeature{POS: "詞"}

	if !isNoun(noun) || isVerb(noun) || isParticleOrCounter(noun) {
		t.Fatalf("expected %+v to classify as noun only", noun)
	}
	if !isVerb(verb) || isNoun(verb) || isParticleOrCounter(verb) {
		t.Fatalf("expected %+v to classify as verb only", verb)
	}
	if isParticleOrCounter(particle) || isNoun(particle) || isVerb(particle) {
		t.Fatalf("expected %+v to never classify as particle/counter", particle)
	}
	if isParticleOrCounter(counter) {
		t.Fatalf("expected %+v to never classify as particle/counter", counter)
	}
	if !isParticleOrCounter(bareOther) {
		t.Fatalf("expected exact POS %q to classify as particle/counter", bareOther.POS)
	}
}
