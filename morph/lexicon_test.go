package morph

import (
	"strings"
	"testing"
)

func TestParseLexiconCSV(t *testing.T) {
	lx, err := ParseLexiconCSV(strings.NewReader(fixtureLexCSV), LexSystem)
	if err != nil {
		t.Fatalf("ParseLexiconCSV: %v", err)
	}
	if lx.NumWords() != 5 {
		t.Fatalf("NumWords() = %d, want 5", lx.NumWords())
	}
	if got := lx.Param(1).WordCost; got != -500 {
		t.Errorf("word 1 (東京都) cost = %d, want -500", got)
	}
	if got := lx.Feature(0); got != "名詞,固有名詞,地名,東京" {
		t.Errorf("word 0 feature = %q", got)
	}

	matches := lx.Lookup([]rune("東京都に住む"))
	if len(matches) != 2 {
		t.Fatalf("Lookup = %+v, want 2 matches", matches)
	}
	if matches[0].WordIdx.LexType != LexSystem {
		t.Errorf("match lex type = %v, want LexSystem", matches[0].WordIdx.LexType)
	}
}

func TestParseLexiconCSVRejectsShortRows(t *testing.T) {
	if _, err := ParseLexiconCSV(strings.NewReader("都,1,1\n"), LexSystem); err == nil {
		t.Error("expected error for a row with fewer than 4 fields")
	}
}

func TestParseLexiconCSVRejectsBadIntegers(t *testing.T) {
	if _, err := ParseLexiconCSV(strings.NewReader("都,x,1,100\n"), LexSystem); err == nil {
		t.Error("expected error for a non-numeric left_id")
	}
}

func TestLexiconMaxIDs(t *testing.T) {
	lx, err := ParseLexiconCSV(strings.NewReader(fixtureLexCSV), LexSystem)
	if err != nil {
		t.Fatalf("ParseLexiconCSV: %v", err)
	}
	if lx.MaxLeftID() != 3 || lx.MaxRightID() != 3 {
		t.Errorf("MaxLeftID/MaxRightID = %d/%d, want 3/3", lx.MaxLeftID(), lx.MaxRightID())
	}
}
