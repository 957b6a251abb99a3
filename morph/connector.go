package morph

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// Connector is the dense, row-major bigram connection-cost matrix:
// cost(right, left) at row left_id, column right_id, stride numRight.
// Connection id 0 is reserved for BOS/EOS on both sides.
type Connector struct {
	numLeft, numRight int
	costs             []int16
}

// NewConnector builds a Connector from a flat, row-major (by left id)
// cost array. Used by tests and by the remapper, which produces a
// re-indexed copy of an existing matrix.
func NewConnector(numLeft, numRight int, costs []int16) (*Connector, error) {
	if len(costs) != numLeft*numRight {
		return nil, &ArgumentError{Msg: "connector: cost array length does not match numLeft*numRight"}
	}
	return &Connector{numLeft: numLeft, numRight: numRight, costs: costs}, nil
}

// ParseMatrixDef reads a matrix.def stream: first line "num_right
// num_left", then one "right_id left_id cost" triple per line.
func ParseMatrixDef(r io.Reader) (*Connector, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNo := 0
	var numRight, numLeft int
	haveDims := false
	var costs []int16

	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if !haveDims {
			if len(fields) != 2 {
				return nil, &FormatError{Line: lineNo, Msg: "expected 'num_right num_left'"}
			}
			nr, err := strconv.Atoi(fields[0])
			if err != nil {
				return nil, &FormatError{Line: lineNo, Msg: "invalid num_right: " + err.Error()}
			}
			nl, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, &FormatError{Line: lineNo, Msg: "invalid num_left: " + err.Error()}
			}
			numRight, numLeft = nr, nl
			costs = make([]int16, numLeft*numRight)
			haveDims = true
			continue
		}
		if len(fields) != 3 {
			return nil, &FormatError{Line: lineNo, Msg: "expected 'right_id left_id cost'"}
		}
		right, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, &FormatError{Line: lineNo, Msg: "invalid right_id: " + err.Error()}
		}
		left, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, &FormatError{Line: lineNo, Msg: "invalid left_id: " + err.Error()}
		}
		cost, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, &FormatError{Line: lineNo, Msg: "invalid cost: " + err.Error()}
		}
		if right < 0 || right >= numRight || left < 0 || left >= numLeft {
			return nil, &FormatError{Line: lineNo, Msg: "right_id/left_id out of declared range"}
		}
		if cost < -32768 || cost > 32767 {
			return nil, &FormatError{Line: lineNo, Msg: "cost does not fit in i16"}
		}
		costs[left*numRight+right] = int16(cost)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if !haveDims {
		return nil, &FormatError{Line: 0, Msg: "empty matrix.def"}
	}
	return &Connector{numLeft: numLeft, numRight: numRight, costs: costs}, nil
}

// NumLeft and NumRight report the matrix's declared dimensions.
func (c *Connector) NumLeft() int  { return c.numLeft }
func (c *Connector) NumRight() int { return c.numRight }

// Cost returns the connection cost between a left word's right-id and
// a right word's left-id, widened to i32.
func (c *Connector) Cost(rightID, leftID uint16) int32 {
	return int32(c.costs[int(leftID)*c.numRight+int(rightID)])
}
