package morph

import (
	"strings"
	"testing"
)

func TestTokenizePrefersLongestCheaperMatch(t *testing.T) {
	dict := newFixtureDictionary(t)
	w := NewWorker(dict)

	toks, err := w.Tokenize("東京都に住む", DefaultTokenizeOptions())
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if len(toks) == 0 {
		t.Fatal("expected at least one token")
	}
	// 東京都 costs -500, cheaper than 東京 (-200) + 都 (100) = -100, so
	// the lattice should prefer the single longer word.
	if toks[0].Surface != "東京都" {
		t.Errorf("first token = %q, want 東京都", toks[0].Surface)
	}
	if toks[0].EndChar-toks[0].StartChar != 3 {
		t.Errorf("first token spans %d chars, want 3", toks[0].EndChar-toks[0].StartChar)
	}
}

func TestTokenizeFallsBackToUnknownWord(t *testing.T) {
	dict := newFixtureDictionary(t)
	w := NewWorker(dict)

	toks, err := w.Tokenize("!!!", DefaultTokenizeOptions())
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if len(toks) == 0 {
		t.Fatal("expected unknown-word tokens for unmapped characters")
	}
	for _, tok := range toks {
		if tok.Surface == "" {
			t.Errorf("unknown-word token has empty surface: %+v", tok)
		}
	}
	total := 0
	for _, tok := range toks {
		total += tok.EndChar - tok.StartChar
	}
	if total != 3 {
		t.Errorf("tokens cover %d characters, want 3", total)
	}
}

func TestTokenizeIgnoreSpaceSkipsWhitespace(t *testing.T) {
	dict := newFixtureDictionary(t)
	w := NewWorker(dict)

	opts := DefaultTokenizeOptions()
	opts.IgnoreSpace = true
	toks, err := w.Tokenize("都 都", opts)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	for _, tok := range toks {
		if strings.Contains(tok.Surface, " ") {
			t.Errorf("ignore-space tokenization produced a token containing a space: %+v", tok)
		}
	}
	var surfaces []string
	for _, tok := range toks {
		surfaces = append(surfaces, tok.Surface)
	}
	if len(surfaces) != 2 || surfaces[0] != "都" || surfaces[1] != "都" {
		t.Errorf("surfaces = %v, want [都 都]", surfaces)
	}
}

func TestTokenizeTrailingSpaceIgnored(t *testing.T) {
	dict := newFixtureDictionary(t)
	w := NewWorker(dict)

	opts := DefaultTokenizeOptions()
	opts.IgnoreSpace = true
	toks, err := w.Tokenize("都 ", opts)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if len(toks) != 1 || toks[0].Surface != "都" {
		t.Errorf("got %+v, want a single 都 token", toks)
	}
}

func TestTokenizeRejectsOversizedInput(t *testing.T) {
	dict := newFixtureDictionary(t)
	w := NewWorker(dict)

	huge := strings.Repeat("都", MaxSentenceChars+1)
	_, err := w.Tokenize(huge, DefaultTokenizeOptions())
	if err == nil {
		t.Fatal("expected an error for input exceeding MaxSentenceChars")
	}
	if _, ok := err.(*InputTooLongError); !ok {
		t.Errorf("error type = %T, want *InputTooLongError", err)
	}
}

func TestTokenizeEmptyInput(t *testing.T) {
	dict := newFixtureDictionary(t)
	w := NewWorker(dict)
	toks, err := w.Tokenize("", DefaultTokenizeOptions())
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if len(toks) != 0 {
		t.Errorf("expected no tokens for empty input, got %+v", toks)
	}
}

func TestTokenFieldsSplitsFeature(t *testing.T) {
	dict := newFixtureDictionary(t)
	w := NewWorker(dict)
	toks, err := w.Tokenize("都", DefaultTokenizeOptions())
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if len(toks) != 1 {
		t.Fatalf("got %d tokens, want 1", len(toks))
	}
	fields := toks[0].Fields()
	want := []string{"名詞", "一般", "都"}
	if len(fields) != len(want) {
		t.Fatalf("Fields() = %v, want %v", fields, want)
	}
	for i := range want {
		if fields[i] != want[i] {
			t.Errorf("Fields()[%d] = %q, want %q", i, fields[i], want[i])
		}
	}
}

func TestTokenizeAllPreservesOrder(t *testing.T) {
	dict := newFixtureDictionary(t)
	texts := []string{"東京都に住む", "京都", "都", "kampersanda"}

	results, errs := TokenizeAll(dict, texts, DefaultTokenizeOptions())
	if len(results) != len(texts) {
		t.Fatalf("got %d results, want %d", len(results), len(texts))
	}
	for i, err := range errs {
		if err != nil {
			t.Fatalf("result %d errored: %v", i, err)
		}
	}
	if results[1][0].Surface != "京都" {
		t.Errorf("result[1][0].Surface = %q, want 京都", results[1][0].Surface)
	}
	if results[3][0].Surface != "kampersanda" {
		t.Errorf("result[3][0].Surface = %q, want kampersanda", results[3][0].Surface)
	}
}

func TestWorkerResetClearsState(t *testing.T) {
	dict := newFixtureDictionary(t)
	w := NewWorker(dict)
	if _, err := w.Tokenize("東京都", DefaultTokenizeOptions()); err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	w.Reset()
	toks, err := w.Tokenize("都", DefaultTokenizeOptions())
	if err != nil {
		t.Fatalf("Tokenize after Reset: %v", err)
	}
	if len(toks) != 1 || toks[0].Surface != "都" {
		t.Errorf("got %+v after reset and retokenize, want a single 都 token", toks)
	}
}
