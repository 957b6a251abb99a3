package morph

import (
	"encoding/binary"
	"sort"
)

// WordMap bundles a Trie with a posting store into a
// surface -> (word-id, end-char) common-prefix iterator.
//
// Postings are packed as a length byte N-1 followed by N
// little-endian uint32 word ids, concatenated into one byte blob. The
// trie's payload for a surface is the byte offset of its posting
// entry inside that blob, so the on-disk and in-memory shapes are
// identical and the serializer can copy the blob verbatim.
type WordMap struct {
	trie     *Trie
	postings []byte
}

// WordMapHit is one common-prefix match: a word id and the character
// offset at which it ends.
type WordMapHit struct {
	WordID  uint32
	EndChar int
}

// BuildWordMap groups (surface, word id) pairs by surface, preserving
// the order word ids were supplied in within a surface's posting list,
// and builds the backing trie over surfaces in byte order. A surface
// with zero or more than 256 ids is a hard error.
func BuildWordMap(surfaceByID []string) (*WordMap, error) {
	groups := make(map[string][]uint32)
	order := make([]string, 0)
	for id, surface := range surfaceByID {
		if surface == "" {
			continue
		}
		if _, ok := groups[surface]; !ok {
			order = append(order, surface)
		}
		groups[surface] = append(groups[surface], uint32(id))
	}

	keys := make([][]byte, 0, len(order))
	values := make([]uint32, 0, len(order))
	var postings []byte

	sortedOrder := append([]string(nil), order...)
	sort.Strings(sortedOrder)

	for _, surface := range sortedOrder {
		ids := groups[surface]
		if len(ids) == 0 || len(ids) > 256 {
			return nil, &ArgumentError{Msg: "word map: surface " + surface + " has an invalid posting length"}
		}
		offset := uint32(len(postings))
		postings = append(postings, byte(len(ids)-1))
		var buf [4]byte
		for _, id := range ids {
			binary.LittleEndian.PutUint32(buf[:], id)
			postings = append(postings, buf[:]...)
		}
		keys = append(keys, []byte(surface))
		values = append(values, offset)
	}

	trie, err := BuildTrie(keys, values)
	if err != nil {
		return nil, err
	}
	return &WordMap{trie: trie, postings: postings}, nil
}

// CommonPrefixSearch expands every trie hit into its posting list,
// yielding hits in increasing end-char order and, within an end-char,
// in the posting's build-time (insertion) order.
func (m *WordMap) CommonPrefixSearch(chars []rune) []WordMapHit {
	var hits []WordMapHit
	for _, tm := range m.trie.CommonPrefixSearch(chars) {
		p := int(tm.Value)
		n := int(m.postings[p]) + 1
		p++
		for i := 0; i < n; i++ {
			id := binary.LittleEndian.Uint32(m.postings[p : p+4])
			hits = append(hits, WordMapHit{WordID: id, EndChar: tm.EndChar})
			p += 4
		}
	}
	return hits
}
