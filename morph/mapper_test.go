package morph

import "testing"

func TestConnIdCounterIgnoresOutOfRangeAndBOS(t *testing.T) {
	c := NewConnIdCounter(3, 3)
	c.Add(bosLeftID, 0) // BOS left id must not panic or count
	c.Add(0, 1)
	c.Add(1, 1)
	c.Add(1, 1)
	c.Add(5, 5) // out of range, ignored

	leftProbs := c.ComputeLeftProbs()
	for _, p := range leftProbs {
		if p.ID == 0 {
			t.Fatalf("id 0 must never appear in the probability surface, got %+v", leftProbs)
		}
	}
	rightProbs := c.ComputeRightProbs()
	if len(rightProbs) != 2 {
		t.Fatalf("right probs = %+v, want exactly ids 1 and 2 (id 0 excluded)", rightProbs)
	}
	// id 1 has 3 of the 3 total observations among non-zero ids, so it
	// must sort first with probability 1.
	if rightProbs[0].ID != 1 || rightProbs[0].Prob != 1 {
		t.Errorf("right probs = %+v, want id 1 first with probability 1", rightProbs)
	}
}

func TestBuildConnIdMapperRoundTrip(t *testing.T) {
	c := NewConnIdCounter(4, 4)
	c.Add(0, 0)
	c.Add(2, 2)
	c.Add(2, 2)
	c.Add(2, 2)
	c.Add(3, 1)

	mapper := BuildConnIdMapper(c)
	for old := uint16(0); old < 4; old++ {
		newID := mapper.Left(old)
		if mapper.InverseLeft(newID) != old {
			t.Errorf("InverseLeft(Left(%d)) = %d, want %d", old, mapper.InverseLeft(newID), old)
		}
	}
	if mapper.Left(0) != 0 {
		t.Errorf("id 0 must map to slot 0, got %d", mapper.Left(0))
	}
	// id 2 is the most frequent non-zero left id, so it should land in
	// slot 1.
	if mapper.Left(2) != 1 {
		t.Errorf("most frequent left id should map to slot 1, got %d", mapper.Left(2))
	}
}

func TestRemapConnectorPreservesCosts(t *testing.T) {
	conn, err := NewConnector(3, 3, []int16{
		0, 1, 2,
		3, 4, 5,
		6, 7, 8,
	})
	if err != nil {
		t.Fatalf("NewConnector: %v", err)
	}
	c := NewConnIdCounter(3, 3)
	c.Add(0, 0)
	c.Add(2, 1)
	c.Add(2, 1)

	mapper := BuildConnIdMapper(c)
	remapped, err := mapper.RemapConnector(conn)
	if err != nil {
		t.Fatalf("RemapConnector: %v", err)
	}
	for left := uint16(0); left < 3; left++ {
		for right := uint16(0); right < 3; right++ {
			want := conn.Cost(right, left)
			got := remapped.Cost(mapper.Right(right), mapper.Left(left))
			if got != want {
				t.Errorf("Cost(%d,%d) after remap = %d, want %d", right, left, got, want)
			}
		}
	}
}

func TestDictionaryDoMappingPreservesTokenization(t *testing.T) {
	dict := newFixtureDictionary(t)
	w := NewWorker(dict)

	before, err := w.Tokenize("東京都に住む", DefaultTokenizeOptions())
	if err != nil {
		t.Fatalf("Tokenize before mapping: %v", err)
	}
	wantSurfaces := make([]string, len(before))
	for i, tok := range before {
		wantSurfaces[i] = tok.Surface
	}

	counter := NewConnIdCounter(dict.Conn.NumLeft(), dict.Conn.NumRight())
	w.CountBestPath(counter)
	mapper := BuildConnIdMapper(counter)
	if err := dict.DoMapping(mapper); err != nil {
		t.Fatalf("DoMapping: %v", err)
	}

	w2 := NewWorker(dict)
	after, err := w2.Tokenize("東京都に住む", DefaultTokenizeOptions())
	if err != nil {
		t.Fatalf("Tokenize after mapping: %v", err)
	}
	if len(after) != len(wantSurfaces) {
		t.Fatalf("after mapping got %d tokens, want %d", len(after), len(wantSurfaces))
	}
	for i, tok := range after {
		if tok.Surface != wantSurfaces[i] {
			t.Errorf("token %d surface = %q, want %q", i, tok.Surface, wantSurfaces[i])
		}
	}
}
