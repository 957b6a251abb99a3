package morph

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"
	"strings"
)

// UnkEntry is one unknown-word generation rule: a
// (cate_id, left_id, right_id, word_cost, feature) tuple.
type UnkEntry struct {
	CateID   uint16
	LeftID   uint16
	RightID  uint16
	WordCost int16
	Feature  string
}

// UnkHandler generates unknown-word candidates from the character
// property table. Entries are grouped by cate_id via a prefix-sum
// offsets array so entries for category c occupy
// entries[offsets[c]:offsets[c+1]].
type UnkHandler struct {
	entries []UnkEntry
	offsets []int
}

// ParseUnkDefCSV reads an unk.def stream: same CSV shape as lex.csv,
// but field 1 is a category NAME resolved against charProp. An
// unknown category name is a hard error.
func ParseUnkDefCSV(r io.Reader, charProp *CharProperty) (*UnkHandler, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	type raw struct {
		cateID   int
		left     uint16
		right    uint16
		cost     int16
		feature  string
	}
	var rows []raw

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
			return nil, &FormatError{Line: lineNo, Msg: "expected at least 4 fields (category, left_id, right_id, word_cost)"}
		}
		cateID, ok := charProp.CategoryID(record[0])
		if !ok {
			return nil, &ArgumentError{Msg: "unk.def line " + strconv.Itoa(lineNo) + ": undefined category " + record[0]}
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
		rows = append(rows, raw{cateID: cateID, left: uint16(left), right: uint16(right), cost: int16(cost), feature: feature})
	}

	// Stable sort by category id, preserving original relative order
	// within a category, since entries are grouped contiguously by
	// category afterward.
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].cateID < rows[j].cateID })

	numCats := charProp.NumCategories()
	offsets := make([]int, numCats+1)
	entries := make([]UnkEntry, len(rows))
	for i, rw := range rows {
		entries[i] = UnkEntry{CateID: uint16(rw.cateID), LeftID: rw.left, RightID: rw.right, WordCost: rw.cost, Feature: rw.feature}
		offsets[rw.cateID+1]++
	}
	for i := 1; i <= numCats; i++ {
		offsets[i] += offsets[i-1]
	}

	return &UnkHandler{entries: entries, offsets: offsets}, nil
}

// UnkEdge is one generated unknown-word candidate.
type UnkEdge struct {
	StartChar, EndChar int
	WordIdx            WordIdx
	Param              WordParam
}

// Entry returns the UnkEntry backing a generated edge's WordIdx.
func (u *UnkHandler) Entry(id uint32) UnkEntry { return u.entries[id] }

// MaxLeftID and MaxRightID return the largest left/right id used by
// any unknown-word rule, for construction-time validation against a
// Connector's declared dimensions. They return -1 if there are no
// entries.
func (u *UnkHandler) MaxLeftID() int {
	max := -1
	for _, e := range u.entries {
		if int(e.LeftID) > max {
			max = int(e.LeftID)
		}
	}
	return max
}

func (u *UnkHandler) MaxRightID() int {
	max := -1
	for _, e := range u.entries {
		if int(e.RightID) > max {
			max = int(e.RightID)
		}
	}
	return max
}

// RemapIDs rewrites every entry's LeftID/RightID in place, used by
// Dictionary.DoMapping to keep unknown-word rules consistent with a
// remapped Connector.
func (u *UnkHandler) RemapIDs(mapLeft, mapRight func(uint16) uint16) {
	for i, e := range u.entries {
		u.entries[i].LeftID = mapLeft(e.LeftID)
		u.entries[i].RightID = mapRight(e.RightID)
	}
}

// Generate produces the unknown-word edges starting at character
// position pos:
//
//  1. if a lexicon word already matched here and the position's
//     category forbids invocation, emit nothing;
//  2. if the category groups, and the groupable run fits under
//     maxGroupingLen (negative means unlimited), emit one edge
//     spanning the whole run;
//  3. for each length 1..min(category length, groupable run), skip
//     length g whenever the category groups, including when
//     maxGroupingLen kept step 2 from emitting that span; for a
//     category that does not group every length up to the bound is
//     emitted, including length g;
//  4. if nothing was emitted, force one edge of length 1 so the
//     tokenizer always makes progress.
func (u *UnkHandler) Generate(pos int, hasMatched bool, maxGroupingLen int, sent *Sentence) []UnkEdge {
	ci := sent.cinfos[pos]
	if hasMatched && !ci.Invoke {
		return nil
	}
	g := sent.groupable[pos]
	numChars := sent.NumChars()

	lo, hi := u.offsets[ci.BaseID], u.offsets[ci.BaseID+1]
	var edges []UnkEdge
	emit := func(end int) {
		for i := lo; i < hi; i++ {
			e := u.entries[i]
			edges = append(edges, UnkEdge{
				StartChar: pos,
				EndChar:   end,
				WordIdx:   WordIdx{LexType: LexUnknown, WordID: uint32(i)},
				Param:     WordParam{LeftID: e.LeftID, RightID: e.RightID, WordCost: e.WordCost},
			})
		}
	}

	emittedAny := false
	if ci.Group && (maxGroupingLen < 0 || g-1 <= maxGroupingLen) {
		emit(pos + g)
		emittedAny = true
	}

	upper := int(ci.Length)
	if g < upper {
		upper = g
	}
	for i := 1; i <= upper; i++ {
		if ci.Group && i == g {
			continue
		}
		if pos+i > numChars {
			continue
		}
		emit(pos + i)
		emittedAny = true
	}

	if !emittedAny {
		emit(pos + 1)
	}
	return edges
}
