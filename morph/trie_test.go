package morph

import "testing"

func TestTrieCommonPrefixSearch(t *testing.T) {
	keys := [][]byte{}
	values := []uint32{}
	add := func(k string, v uint32) {
		keys = append(keys, []byte(k))
		values = append(values, v)
	}
	// Byte order: "kampersanda" < "京都" < "東京" < "東京都" < "都" per
	// their UTF-8 encodings (lead bytes E4, E6, E9); BuildTrie requires
	// sorted input.
	add("kampersanda", 1)
	add("京都", 2)
	add("東京", 4)
	add("東京都", 5)
	add("都", 3)

	trie, err := BuildTrie(keys, values)
	if err != nil {
		t.Fatalf("BuildTrie: %v", err)
	}

	matches := trie.CommonPrefixSearch([]rune("東京都に住む"))
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d: %+v", len(matches), matches)
	}
	if matches[0].Value != 4 || matches[0].EndChar != 2 {
		t.Errorf("first match = %+v, want {4 2} (東京)", matches[0])
	}
	if matches[1].Value != 5 || matches[1].EndChar != 3 {
		t.Errorf("second match = %+v, want {5 3} (東京都)", matches[1])
	}

	if got := trie.CommonPrefixSearch([]rune("京都府")); len(got) != 1 || got[0].Value != 2 {
		t.Errorf("京都府 prefix search = %+v, want one match on 京都", got)
	}

	if got := trie.CommonPrefixSearch([]rune("存在しない")); len(got) != 0 {
		t.Errorf("expected no matches, got %+v", got)
	}
}

func TestBuildTrieRejectsUnsortedOrDuplicateKeys(t *testing.T) {
	if _, err := BuildTrie([][]byte{[]byte("b"), []byte("a")}, []uint32{1, 2}); err == nil {
		t.Error("expected error for unsorted keys")
	}
	if _, err := BuildTrie([][]byte{[]byte("a"), []byte("a")}, []uint32{1, 2}); err == nil {
		t.Error("expected error for duplicate keys")
	}
}

func TestTrieEmptyInput(t *testing.T) {
	trie, err := BuildTrie([][]byte{[]byte("a")}, []uint32{1})
	if err != nil {
		t.Fatalf("BuildTrie: %v", err)
	}
	if got := trie.CommonPrefixSearch(nil); len(got) != 0 {
		t.Errorf("expected no matches on empty input, got %+v", got)
	}
}
