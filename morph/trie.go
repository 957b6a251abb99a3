package morph

import (
	"unicode/utf8"
)

// terminalLabel is the virtual byte transition appended to every key to
// mark "end of key" inside the byte-keyed double array. 0x00 never
// appears inside a valid UTF-8 encoding of a non-NUL codepoint, and
// lexicon surfaces containing a literal NUL byte are rejected at build
// time, so the label can never collide with a real continuation byte.
const terminalLabel = 0

// Trie is a double-array trie keyed on the UTF-8 bytes of its input
// keys, with transitions addressed as base[node]+label, and an extra
// terminal transition on label 0 used to record a match at a node
// without requiring it to be a dead end. Matching walks full runes at
// a time and only reports a hit once a whole rune's bytes have been
// consumed, so the external contract operates on character offsets
// even though the array is built byte by byte.
type Trie struct {
	base  []int32
	check []int32
	value []uint32
}

// TrieMatch is one common-prefix hit: value is the payload stored at
// build time, EndChar is the number of input characters consumed.
type TrieMatch struct {
	Value   uint32
	EndChar int
}

const trieUnused int32 = -1

func newTrie(capacity int) *Trie {
	if capacity < 1 {
		capacity = 1
	}
	t := &Trie{
		base:  make([]int32, capacity),
		check: make([]int32, capacity),
		value: make([]uint32, capacity),
	}
	for i := range t.check {
		t.check[i] = trieUnused
	}
	return t
}

func (t *Trie) grow(n int) {
	if n <= len(t.check) {
		return
	}
	newCheck := make([]int32, n)
	copy(newCheck, t.check)
	for i := len(t.check); i < n; i++ {
		newCheck[i] = trieUnused
	}
	newBase := make([]int32, n)
	copy(newBase, t.base)
	newValue := make([]uint32, n)
	copy(newValue, t.value)
	t.base, t.check, t.value = newBase, newCheck, newValue
}

// BuildTrie constructs a double-array trie from sorted, unique byte
// keys and their associated values. Keys must already be in
// byte-lexicographic order and must not repeat; both are enforced by
// the word-map builder before this is called, and violations are
// reported as *ArgumentError here too so Trie is safe to build
// directly in tests.
func BuildTrie(keys [][]byte, values []uint32) (*Trie, error) {
	if len(keys) != len(values) {
		return nil, &ArgumentError{Msg: "BuildTrie: keys and values length mismatch"}
	}
	for i := 1; i < len(keys); i++ {
		if string(keys[i-1]) >= string(keys[i]) {
			if string(keys[i-1]) == string(keys[i]) {
				return nil, &ArgumentError{Msg: "BuildTrie: duplicate key " + string(keys[i])}
			}
			return nil, &ArgumentError{Msg: "BuildTrie: keys must be sorted in byte order"}
		}
	}
	for _, k := range keys {
		for _, b := range k {
			if b == terminalLabel {
				return nil, &ArgumentError{Msg: "BuildTrie: key contains a NUL byte"}
			}
		}
	}

	t := newTrie(256)
	t.base[0] = 1
	t.check[0] = 0

	type span struct {
		node  int32
		lo, hi int
		depth int
	}
	queue := []span{{0, 0, len(keys), 0}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		// Collect the distinct labels branching from this node at this
		// depth: byte value of keys[i][depth], or terminalLabel if the
		// key ends exactly at depth.
		var children []trieChild
		i := cur.lo
		if i < cur.hi && len(keys[i]) == cur.depth {
			children = append(children, trieChild{terminalLabel, i, i + 1})
			i++
		}
		for i < cur.hi {
			label := keys[i][cur.depth]
			j := i + 1
			for j < cur.hi && len(keys[j]) > cur.depth && keys[j][cur.depth] == label {
				j++
			}
			children = append(children, trieChild{label, i, j})
			i = j
		}

		base := t.findBase(children, int32(cur.node))
		t.base[cur.node] = base

		for _, c := range children {
			childIdx := base + int32(c.label)
			t.grow(int(childIdx) + 1)
			t.check[childIdx] = cur.node
			if c.label == terminalLabel {
				t.value[childIdx] = values[c.lo]
				continue
			}
			queue = append(queue, span{childIdx, c.lo, c.hi, cur.depth + 1})
		}
	}

	return t, nil
}

type trieChild struct {
	label  byte
	lo, hi int
}

func (t *Trie) findBase(children []trieChild, node int32) int32 {
	if len(children) == 0 {
		return 1
	}
	candidate := int32(1)
	for {
		ok := true
		for _, c := range children {
			idx := candidate + int32(c.label)
			if idx < 0 {
				ok = false
				break
			}
			if int(idx) < len(t.check) && t.check[idx] != trieUnused {
				ok = false
				break
			}
		}
		if ok {
			return candidate
		}
		candidate++
	}
}

// CommonPrefixSearch yields every key that matches a prefix of chars,
// shortest match first, as (value, end-char-index) pairs.
func (t *Trie) CommonPrefixSearch(chars []rune) []TrieMatch {
	var matches []TrieMatch
	node := int32(0)
	var buf [utf8.UTFMax]byte
	for ci, r := range chars {
		n := utf8.EncodeRune(buf[:], r)
		ok := true
		for _, b := range buf[:n] {
			base := t.base[node]
			child := base + int32(b)
			if child < 0 || int(child) >= len(t.check) || t.check[child] != node {
				ok = false
				break
			}
			node = child
		}
		if !ok {
			break
		}
		base := t.base[node]
		term := base + terminalLabel
		if int(term) < len(t.check) && t.check[term] == node {
			matches = append(matches, TrieMatch{Value: t.value[term], EndChar: ci + 1})
		}
	}
	return matches
}
