package morph

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
)

// LexType identifies which table a WordIdx resolves through.
type LexType int

const (
	LexSystem LexType = iota
	LexUser
	LexUnknown
)

// WordParam is the per-word (left-id, right-id, cost) triple. Costs
// may be negative; smaller is better.
type WordParam struct {
	LeftID   uint16
	RightID  uint16
	WordCost int16
}

// WordIdx fully identifies a word for feature lookup: which table
// (System, User, or Unknown) and which row within it.
type WordIdx struct {
	LexType LexType
	WordID  uint32
}

// LexMatch is one lexicon hit projected from a word-map posting
// through the parallel WordParam array.
type LexMatch struct {
	WordIdx WordIdx
	Param   WordParam
	EndChar int
}

// Lexicon bundles a WordMap (surface -> word ids) with the parallel
// WordParam and feature arrays, tagged with the lex-type it should
// stamp onto matches.
type Lexicon struct {
	lexType  LexType
	wordMap  *WordMap
	params   []WordParam
	features []string
}

// ParseLexiconCSV reads a lex.csv-shaped stream: surface, left_id,
// right_id, word_cost, and a verbatim trailing feature payload
// (possibly containing commas inside RFC 4180 quoted fields, which
// encoding/csv already handles). Empty surfaces are skipped. A row
// with fewer than 4 total fields, or whose left_id/right_id/word_cost
// fields fail to parse as integers, is a hard error.
func ParseLexiconCSV(r io.Reader, lexType LexType) (*Lexicon, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var surfaces []string
	var params []WordParam
	var features []string

	lineNo := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		lineNo++
		if err != nil {
			return nil, &FormatError{Line: lineNo, Msg: "csv: " + err.Error()}
		}
		if len(record) < 4 {
			return nil, &FormatError{Line: lineNo, Msg: "expected at least 4 fields (surface, left_id, right_id, word_cost)"}
		}
		surface := record[0]
		if surface == "" {
			// An empty surface can never match anything; silently drop
			// the row rather than growing the word map with a dead entry.
			continue
		}
		left, err := strconv.ParseUint(record[1], 10, 16)
		if err != nil {
			return nil, &FormatError{Line: lineNo, Msg: "invalid left_id: " + err.Error()}
		}
		right, err := strconv.ParseUint(record[2], 10, 16)
		if err != nil {
			return nil, &FormatError{Line: lineNo, Msg: "invalid right_id: " + err.Error()}
		}
		cost, err := strconv.ParseInt(record[3], 10, 16)
		if err != nil {
			return nil, &FormatError{Line: lineNo, Msg: "invalid word_cost: " + err.Error()}
		}
		feature := ""
		if len(record) >= 5 {
			feature = strings.Join(record[4:], ",")
		}

		surfaces = append(surfaces, surface)
		params = append(params, WordParam{LeftID: uint16(left), RightID: uint16(right), WordCost: int16(cost)})
		features = append(features, feature)
	}

	wordMap, err := BuildWordMap(surfaces)
	if err != nil {
		return nil, err
	}
	return &Lexicon{lexType: lexType, wordMap: wordMap, params: params, features: features}, nil
}

// NewLexicon assembles a Lexicon directly from parallel arrays,
// letting callers (tests, or the unknown-word builder's sibling CSV
// path) bypass CSV parsing.
func NewLexicon(lexType LexType, surfaceByID []string, params []WordParam, features []string) (*Lexicon, error) {
	if len(surfaceByID) != len(params) || len(params) != len(features) {
		return nil, &ArgumentError{Msg: "lexicon: surfaces, params, and features must be the same length"}
	}
	wordMap, err := BuildWordMap(surfaceByID)
	if err != nil {
		return nil, err
	}
	return &Lexicon{
		lexType:  lexType,
		wordMap:  wordMap,
		params:   append([]WordParam(nil), params...),
		features: append([]string(nil), features...),
	}, nil
}

// NumWords returns the number of word ids in this lexicon.
func (lx *Lexicon) NumWords() int { return len(lx.params) }

// Feature returns the feature string for a word id.
func (lx *Lexicon) Feature(wordID uint32) string { return lx.features[wordID] }

// Param returns the WordParam for a word id.
func (lx *Lexicon) Param(wordID uint32) WordParam { return lx.params[wordID] }

// Lookup projects every common-prefix word-map hit through params,
// stamped with this lexicon's lex-type.
func (lx *Lexicon) Lookup(chars []rune) []LexMatch {
	hits := lx.wordMap.CommonPrefixSearch(chars)
	if len(hits) == 0 {
		return nil
	}
	matches := make([]LexMatch, len(hits))
	for i, h := range hits {
		matches[i] = LexMatch{
			WordIdx: WordIdx{LexType: lx.lexType, WordID: h.WordID},
			Param:   lx.params[h.WordID],
			EndChar: h.EndChar,
		}
	}
	return matches
}

// RemapIDs rewrites every word's LeftID/RightID in place through
// mapLeft/mapRight, used by Dictionary.DoMapping to keep lexicon
// entries consistent with a remapped Connector.
func (lx *Lexicon) RemapIDs(mapLeft, mapRight func(uint16) uint16) {
	for i, p := range lx.params {
		lx.params[i] = WordParam{LeftID: mapLeft(p.LeftID), RightID: mapRight(p.RightID), WordCost: p.WordCost}
	}
}

// MaxLeftID and MaxRightID return the largest left/right id used by
// any word in this lexicon, for construction-time validation against
// a Connector's declared dimensions.
func (lx *Lexicon) MaxLeftID() int {
	max := -1
	for _, p := range lx.params {
		if int(p.LeftID) > max {
			max = int(p.LeftID)
		}
	}
	return max
}

func (lx *Lexicon) MaxRightID() int {
	max := -1
	for _, p := range lx.params {
		if int(p.RightID) > max {
			max = int(p.RightID)
		}
	}
	return max
}
