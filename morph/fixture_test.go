package morph

import (
	"strings"
	"testing"
)

// The fixture below mirrors the bundled example dictionary: a handful
// of kanji place names with overlapping prefixes (東京 inside 東京都),
// a standalone noun (都), a romanized proper noun (kampersanda) to
// exercise the ALPHA category, and a SPACE category for ignore-space
// tests. Connection costs are all zero, so the best path is decided
// purely by word cost, the same way a sparse or untrained matrix
// degenerates to "prefer the cheapest word" in the real system.

const fixtureLexCSV = `東京,1,1,-200,名詞,固有名詞,地名,東京
東京都,1,1,-500,名詞,固有名詞,地名,東京都
京都,1,1,-300,名詞,固有名詞,地名,京都
都,2,2,100,名詞,一般,都
kampersanda,3,3,500,名詞,固有名詞,人名,kampersanda
`

const fixtureCharDef = `DEFAULT 1 1 2
SPACE 0 1 0
KANJI 1 1 2
ALPHA 1 1 4

0x0020 SPACE
0x0009 SPACE
0x4E00..0x9FFF KANJI
0x3005..0x3006 KANJI
0x0041..0x005A ALPHA
0x0061..0x007A ALPHA
`

const fixtureUnkDef = `KANJI,5,5,800,名詞,一般,*,*
DEFAULT,5,5,3000,名詞,一般,*,*
ALPHA,5,5,1000,名詞,一般,*,*
SPACE,5,5,3000,記号,空白,*,*
`

const fixtureNumConnIDs = 6

func mustParseFixtureCharProp(t *testing.T) *CharProperty {
	t.Helper()
	cp, err := ParseCharDef(strings.NewReader(fixtureCharDef))
	if err != nil {
		t.Fatalf("ParseCharDef: %v", err)
	}
	return cp
}

func newFixtureDictionary(t *testing.T) *Dictionary {
	t.Helper()
	charProp := mustParseFixtureCharProp(t)

	sysLex, err := ParseLexiconCSV(strings.NewReader(fixtureLexCSV), LexSystem)
	if err != nil {
		t.Fatalf("ParseLexiconCSV: %v", err)
	}
	unk, err := ParseUnkDefCSV(strings.NewReader(fixtureUnkDef), charProp)
	if err != nil {
		t.Fatalf("ParseUnkDefCSV: %v", err)
	}

	costs := make([]int16, fixtureNumConnIDs*fixtureNumConnIDs)
	conn, err := NewConnector(fixtureNumConnIDs, fixtureNumConnIDs, costs)
	if err != nil {
		t.Fatalf("NewConnector: %v", err)
	}

	dict, err := NewDictionary(sysLex, nil, conn, charProp, unk)
	if err != nil {
		t.Fatalf("NewDictionary: %v", err)
	}
	return dict
}
