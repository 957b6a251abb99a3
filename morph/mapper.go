package morph

import "sort"

// ConnIdCounter accumulates usage frequency for each (left, right)
// connection id observed along realized best paths. Counting is
// best-path-only: callers feed it via Worker.CountBestPath after each
// Tokenize call, not per lattice edge.
type ConnIdCounter struct {
	left  []uint32
	right []uint32
}

// NewConnIdCounter allocates a counter sized to a Connector's declared
// dimensions.
func NewConnIdCounter(numLeft, numRight int) *ConnIdCounter {
	return &ConnIdCounter{left: make([]uint32, numLeft), right: make([]uint32, numRight)}
}

// Add records one occurrence of a (left, right) connection. leftID
// may be the BOS sentinel (bosLeftID); such observations are ignored
// since BOS is not a real connection id.
func (c *ConnIdCounter) Add(leftID, rightID int) {
	if leftID >= 0 && leftID < len(c.left) {
		c.left[leftID]++
	}
	if rightID >= 0 && rightID < len(c.right) {
		c.right[rightID]++
	}
}

// IDProb pairs a non-reserved connection id with its observed usage
// probability (its share of all observed occurrences of ids other
// than 0), sorted by descending probability.
type IDProb struct {
	ID   uint16
	Prob float64
}

// ComputeLeftProbs and ComputeRightProbs return every connection id
// other than the reserved id 0 (BOS/EOS, never remapped) together
// with its observed usage probability, sorted by descending
// probability and then ascending id for determinism.
func (c *ConnIdCounter) ComputeLeftProbs() []IDProb  { return computeProbs(c.left) }
func (c *ConnIdCounter) ComputeRightProbs() []IDProb { return computeProbs(c.right) }

func computeProbs(counts []uint32) []IDProb {
	var total uint64
	for _, n := range counts[1:] {
		total += uint64(n)
	}
	out := make([]IDProb, 0, len(counts)-1)
	for id := 1; id < len(counts); id++ {
		var p float64
		if total > 0 {
			p = float64(counts[id]) / float64(total)
		}
		out = append(out, IDProb{ID: uint16(id), Prob: p})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Prob != out[j].Prob {
			return out[i].Prob > out[j].Prob
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// rankedID pairs a connection id with its raw observed count, used
// only to build a remapping permutation (where id 0 must stay pinned
// first, unlike the public probability surface above).
type rankedID struct {
	id    uint16
	count uint32
}

// rankByFrequency orders every id (including the reserved id 0, which
// always sorts first) by descending observed frequency, ties broken
// by ascending id for determinism.
func rankByFrequency(counts []uint32) []rankedID {
	out := make([]rankedID, len(counts))
	for i, n := range counts {
		out[i] = rankedID{id: uint16(i), count: n}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].id == 0 {
			return true
		}
		if out[j].id == 0 {
			return false
		}
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].id < out[j].id
	})
	return out
}

// ConnIdMapper is a bidirectional permutation of left and right
// connection ids, built from a ConnIdCounter's frequency order, so
// that applying it to a Connector groups frequently used ids together
// for better cache locality without changing any word's connectivity.
type ConnIdMapper struct {
	leftOldToNew  []uint16
	leftNewToOld  []uint16
	rightOldToNew []uint16
	rightNewToOld []uint16
}

// BuildConnIdMapper derives a mapper from a counter's observed
// frequencies: the most-used id (other than the reserved id 0) maps to
// slot 1, and so on.
func BuildConnIdMapper(c *ConnIdCounter) *ConnIdMapper {
	leftOrder := rankByFrequency(c.left)
	rightOrder := rankByFrequency(c.right)
	return &ConnIdMapper{
		leftOldToNew:  permutationFromOrder(leftOrder),
		leftNewToOld:  invertPermutation(permutationFromOrder(leftOrder)),
		rightOldToNew: permutationFromOrder(rightOrder),
		rightNewToOld: invertPermutation(permutationFromOrder(rightOrder)),
	}
}

func permutationFromOrder(order []rankedID) []uint16 {
	oldToNew := make([]uint16, len(order))
	for newID, p := range order {
		oldToNew[p.id] = uint16(newID)
	}
	return oldToNew
}

func invertPermutation(oldToNew []uint16) []uint16 {
	newToOld := make([]uint16, len(oldToNew))
	for old, n := range oldToNew {
		newToOld[n] = uint16(old)
	}
	return newToOld
}

// Left maps an old left id to its new id.
func (m *ConnIdMapper) Left(oldID uint16) uint16 { return m.leftOldToNew[oldID] }

// Right maps an old right id to its new id.
func (m *ConnIdMapper) Right(oldID uint16) uint16 { return m.rightOldToNew[oldID] }

// InverseLeft and InverseRight map a new id back to its original id;
// they are the inverses of Left and Right.
func (m *ConnIdMapper) InverseLeft(newID uint16) uint16  { return m.leftNewToOld[newID] }
func (m *ConnIdMapper) InverseRight(newID uint16) uint16 { return m.rightNewToOld[newID] }

// RemapConnector produces a new Connector with rows/columns permuted
// according to m, such that Cost(m.Right(r), m.Left(l)) under the
// result equals Cost(r, l) under conn.
func (m *ConnIdMapper) RemapConnector(conn *Connector) (*Connector, error) {
	numLeft, numRight := conn.NumLeft(), conn.NumRight()
	costs := make([]int16, numLeft*numRight)
	for oldLeft := 0; oldLeft < numLeft; oldLeft++ {
		newLeft := m.Left(uint16(oldLeft))
		for oldRight := 0; oldRight < numRight; oldRight++ {
			newRight := m.Right(uint16(oldRight))
			costs[int(newLeft)*numRight+int(newRight)] = int16(conn.Cost(uint16(oldRight), uint16(oldLeft)))
		}
	}
	return NewConnector(numLeft, numRight, costs)
}
