package morph

import (
	"fmt"
	"runtime"
	"sync"
)

// MaxSentenceChars bounds a single Tokenize call: a lattice bucket is
// allocated per character, and a bound keeps a pathological input
// from growing it unbounded.
const MaxSentenceChars = 1 << 16

// Token is one morpheme of a tokenized sentence.
type Token struct {
	Surface            string
	StartChar, EndChar int
	StartByte, EndByte int
	Feature            string
	TotalCost          int32
}

// Fields splits Feature on comma. Feature itself is opaque to the
// core; this is a convenience for callers that know their dictionary's
// feature schema.
func (t Token) Fields() []string { return splitComma(t.Feature) }

func splitComma(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == ',' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

// TokenizeOptions controls a single Tokenize call.
type TokenizeOptions struct {
	// MaxGroupingLen caps how long an unknown-word "group" run may be;
	// negative means unlimited, which is also the default.
	MaxGroupingLen int
	// IgnoreSpace, when true, makes runs of the SPACE category
	// transparent to the lattice: a word immediately following a space
	// run connects directly back to the node before it, and trailing
	// space is dropped rather than forced into an unknown-word token.
	IgnoreSpace bool
}

// DefaultTokenizeOptions returns the default unknown-word grouping
// policy: unlimited grouping length, space not treated specially.
func DefaultTokenizeOptions() TokenizeOptions { return TokenizeOptions{MaxGroupingLen: -1} }

// Worker is the per-goroutine owner of the scratch state a Tokenize
// call needs: a Sentence, a Lattice, and a reusable token slice. A
// Dictionary is immutable once built, so many Workers may share one
// concurrently; a Worker itself is not safe for concurrent use.
type Worker struct {
	dict     *Dictionary
	sentence *Sentence
	lattice  Lattice
	tokens   []Token
}

// NewWorker returns a Worker bound to dict.
func NewWorker(dict *Dictionary) *Worker {
	return &Worker{dict: dict, sentence: NewSentence()}
}

// Reset discards any buffered state from the previous call, without
// releasing the underlying arrays.
func (w *Worker) Reset() {
	w.sentence.SetSentence("")
	w.tokens = w.tokens[:0]
}

// Tokenize runs lattice construction and Viterbi search over text and
// returns its best-path tokens in left-to-right order. The returned
// slice is owned by w and invalidated by the next Tokenize call.
func (w *Worker) Tokenize(text string, opts TokenizeOptions) ([]Token, error) {
	w.sentence.SetSentence(text)
	w.sentence.Compile(w.dict.CharProp)
	n := w.sentence.NumChars()
	if n > MaxSentenceChars {
		return nil, &InputTooLongError{NumChars: n, Max: MaxSentenceChars}
	}

	w.lattice.Reset(n)
	dict := w.dict

	startWord := 0
	startNode := 0
	for startWord < n {
		if !w.lattice.HasPreviousNode(startNode) {
			startWord++
			startNode = startWord
			continue
		}

		if opts.IgnoreSpace && dict.isSpace(w.sentence.CharInfoAt(startNode)) {
			startWord += w.sentence.GroupableAt(startNode)
			if startWord >= n {
				break
			}
		}

		hasMatched := false

		if dict.UserLex != nil {
			for _, m := range dict.UserLex.Lookup(w.sentence.Chars()[startWord:]) {
				w.lattice.InsertNode(startNode, startWord, startWord+m.EndChar, m.WordIdx, m.Param, dict.Conn)
				hasMatched = true
			}
		}
		if dict.SystemLex != nil {
			for _, m := range dict.SystemLex.Lookup(w.sentence.Chars()[startWord:]) {
				w.lattice.InsertNode(startNode, startWord, startWord+m.EndChar, m.WordIdx, m.Param, dict.Conn)
				hasMatched = true
			}
		}

		for _, e := range dict.Unk.Generate(startWord, hasMatched, opts.MaxGroupingLen, w.sentence) {
			w.lattice.InsertNode(startNode, e.StartChar, e.EndChar, e.WordIdx, e.Param, dict.Conn)
		}

		startWord++
		startNode = startWord
	}

	w.lattice.InsertEOS(startNode, dict.Conn)

	path := w.lattice.Backtrace()
	w.tokens = w.tokens[:0]
	for i := len(path) - 1; i >= 0; i-- {
		bn := path[i]
		node := bn.Node
		startChar := node.StartWord
		endChar := bn.EndChar
		startByte := w.sentence.ByteOffset(startChar)
		endByte := w.sentence.ByteOffset(endChar)
		w.tokens = append(w.tokens, Token{
			Surface:   w.sentence.Input()[startByte:endByte],
			StartChar: startChar,
			EndChar:   endChar,
			StartByte: startByte,
			EndByte:   endByte,
			Feature:   dict.Feature(node.WordIdx),
			TotalCost: node.MinCost,
		})
	}

	return w.tokens, nil
}

// CountBestPath feeds the connection ids realized along the most
// recent Tokenize call's best path into c, ignoring lattice edges that
// lost out to a cheaper alternative.
func (w *Worker) CountBestPath(c *ConnIdCounter) {
	path := w.lattice.Backtrace()
	for _, bn := range path {
		c.Add(bn.Node.LeftID, bn.Node.RightID)
	}
}

// TokenizeAll fans sentences out across runtime.NumCPU() Workers and
// returns results in input order.
func TokenizeAll(dict *Dictionary, texts []string, opts TokenizeOptions) ([][]Token, []error) {
	results := make([][]Token, len(texts))
	errs := make([]error, len(texts))

	numWorkers := runtime.NumCPU()
	if numWorkers > len(texts) {
		numWorkers = len(texts)
	}
	if numWorkers < 1 {
		return results, errs
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go func() {
			defer wg.Done()
			w := NewWorker(dict)
			for idx := range jobs {
				toks, err := w.Tokenize(texts[idx], opts)
				if err != nil {
					errs[idx] = fmt.Errorf("tokenize sentence %d: %w", idx, err)
					continue
				}
				out := make([]Token, len(toks))
				copy(out, toks)
				results[idx] = out
			}
		}()
	}
	for i := range texts {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results, errs
}
