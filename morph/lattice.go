package morph

import "math"

// bosLeftID marks the synthetic BOS node with a left_id of -1, which
// otherwise never occurs since real WordParam left ids are unsigned.
const bosLeftID = -1

// Node is one lattice element: word identity, the character offsets
// its edge spans, its connection ids, and the Viterbi
// best-predecessor bookkeeping (index into the predecessor bucket,
// and cumulative best cost). StartNode and StartWord usually coincide
// (both name the character offset the edge starts at), but diverge
// when ignore-space tokenization links a node back across a skipped
// whitespace run: StartNode is the Viterbi predecessor bucket,
// StartWord is the actual surface-start character.
type Node struct {
	WordIdx   WordIdx
	StartNode int
	StartWord int
	LeftID    int
	RightID   int
	BestPrev  int
	MinCost   int32
}

// Lattice is the per-end-character bucket of candidate Node records
// built during tokenization, plus a dedicated EOS slot. ends[pos]
// holds every node whose edge ends at character index pos; each
// position owns its own slice so inserts into other positions can
// never reorder or split it.
type Lattice struct {
	ends [][]Node
	eos  Node
}

// Reset clears the lattice for a sentence of n characters, reusing the
// backing storage (and each position's backing array) where possible,
// and seeds position 0 with BOS.
func (lt *Lattice) Reset(n int) {
	if cap(lt.ends) < n+1 {
		grown := make([][]Node, n+1)
		copy(grown, lt.ends)
		lt.ends = grown
	} else {
		lt.ends = lt.ends[:n+1]
	}
	for i := range lt.ends {
		lt.ends[i] = lt.ends[i][:0]
	}
	lt.eos = Node{}

	lt.pushNode(0, Node{
		WordIdx:   WordIdx{},
		StartNode: 0,
		StartWord: 0,
		LeftID:    bosLeftID,
		RightID:   0,
		BestPrev:  -1,
		MinCost:   0,
	})
}

func (lt *Lattice) pushNode(bucket int, n Node) {
	lt.ends[bucket] = append(lt.ends[bucket], n)
}

func (lt *Lattice) bucket(pos int) []Node {
	return lt.ends[pos]
}

// HasPreviousNode reports whether any candidate word ends at
// character index pos, i.e. whether pos is usable as a predecessor
// bucket for a new edge.
func (lt *Lattice) HasPreviousNode(pos int) bool { return len(lt.ends[pos]) > 0 }

// InsertNode finds the best predecessor among the nodes ending at
// startNode, using MeCab-compatible tie-breaking (<=, so a later
// candidate of equal cost wins), and pushes a new Node into the bucket
// ending at endWord. If startNode's bucket is empty the call is a
// no-op; callers gate insertion on HasPreviousNode.
func (lt *Lattice) InsertNode(startNode, startWord, endWord int, wordIdx WordIdx, param WordParam, conn *Connector) {
	preds := lt.bucket(startNode)
	if len(preds) == 0 {
		return
	}
	bestIdx := -1
	var bestCost int32
	for i, p := range preds {
		c := p.MinCost + conn.Cost(uint16(p.RightID), param.LeftID)
		if bestIdx == -1 || c <= bestCost {
			bestCost = c
			bestIdx = i
		}
	}
	node := Node{
		WordIdx:   wordIdx,
		StartNode: startNode,
		StartWord: startWord,
		LeftID:    int(param.LeftID),
		RightID:   int(param.RightID),
		BestPrev:  bestIdx,
		MinCost:   bestCost + int32(param.WordCost),
	}
	lt.pushNode(endWord, node)
}

// InsertEOS inserts the terminal node, scoring predecessors against
// connection id 0 on the left (EOS's reserved left-context id) the
// same way InsertNode does for a real word.
func (lt *Lattice) InsertEOS(startNode int, conn *Connector) {
	preds := lt.bucket(startNode)
	bestIdx := -1
	var bestCost int32 = math.MaxInt32
	for i, p := range preds {
		c := p.MinCost + conn.Cost(uint16(p.RightID), 0)
		if bestIdx == -1 || c <= bestCost {
			bestCost = c
			bestIdx = i
		}
	}
	lt.eos = Node{
		StartNode: startNode,
		LeftID:    0,
		RightID:   -1,
		BestPrev:  bestIdx,
		MinCost:   bestCost,
	}
}

// BacktraceNode pairs a Node with the character offset it ends at.
type BacktraceNode struct {
	EndChar int
	Node    Node
}

// Backtrace walks predecessor links from EOS back to (but not
// including) BOS, identified by its sentinel LeftID of -1, returning
// nodes in end-to-start order. Each step strictly decreases the
// bucket position, so it terminates in at most NumChars+1 steps.
func (lt *Lattice) Backtrace() []BacktraceNode {
	var out []BacktraceNode
	pos := lt.eos.StartNode
	idx := lt.eos.BestPrev
	for idx >= 0 {
		n := lt.bucket(pos)[idx]
		if n.LeftID == bosLeftID {
			break
		}
		out = append(out, BacktraceNode{EndChar: pos, Node: n})
		pos = n.StartNode
		idx = n.BestPrev
	}
	return out
}

// EOSCost returns the total cost of the best path, i.e. the min-cost
// recorded at the EOS node.
func (lt *Lattice) EOSCost() int32 { return lt.eos.MinCost }
