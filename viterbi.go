package hmmlib

import (
	"fmt"

	"github.com/jhellinckx/hmmlib/internal/logmath"
)

// Decode returns the Viterbi path of seq as state names together with
// its log score. A sequence with no legal path yields an empty path and
// a -Inf score, not an error.
func (m *Model) Decode(seq []string) ([]string, float64, error) {
	c, err := m.raw()
	if err != nil {
		return nil, 0, err
	}
	path, score, err := c.viterbi(seq)
	if err != nil {
		return nil, 0, err
	}
	names := make([]string, len(path))
	for i, idx := range path {
		names[i] = c.names[idx]
	}
	return names, score, nil
}

// tbNode is one link of a best-path chain. Nodes are shared between
// columns: many current-column nodes may point at the same predecessor.
type tbNode struct {
	prev  *tbNode
	state int
}

// traceback keeps the two live columns of best-path links. A
// current-column link targets the previous column when the transition
// crossed an emission and the current column when it stayed within the
// silent chain of one step. Advancing to the next symbol is the final
// operation of each step.
type traceback struct {
	previous []*tbNode
	current  []*tbNode
}

func newTraceback(n int) *traceback {
	return &traceback{previous: make([]*tbNode, n), current: make([]*tbNode, n)}
}

func (tb *traceback) nextColumn() {
	tb.previous = tb.current
	tb.current = make([]*tbNode, len(tb.previous))
}

// trace walks the chain ending at the given node, returning the visited
// states in path order.
func (tb *traceback) trace(node *tbNode) []int {
	var reversed []int
	for ; node != nil; node = node.prev {
		reversed = append(reversed, node.state)
	}
	path := make([]int, len(reversed))
	for i := range reversed {
		path[i] = reversed[len(reversed)-1-i]
	}
	return path
}

// viterbi runs the max-product recurrence and returns the best path as
// dense state indices with its log score.
func (c *compiledHMM) viterbi(seq []string) ([]int, float64, error) {
	if len(seq) == 0 {
		return nil, 0, fmt.Errorf("hmm: viterbi: %w", ErrEmptySequence)
	}
	n := c.numStates()
	tb := newTraceback(n)

	// Step 0: silent chains reachable from begin before any emission.
	delta := make([]float64, n)
	for i := range n {
		delta[i] = logmath.NegInf
	}
	for i := c.silentIdx; i < n; i++ {
		best := c.piBegin[i]
		var bestPrev *tbNode
		for j := c.silentIdx; j < i; j++ {
			if cand := delta[j] + c.A[j][i]; cand > best {
				best = cand
				bestPrev = tb.current[j]
			}
		}
		delta[i] = best
		if best != logmath.NegInf {
			tb.current[i] = &tbNode{state: i, prev: bestPrev}
		}
	}
	tb.nextColumn()

	// Step 1: first emission from begin or from a step-0 silent chain.
	next := make([]float64, n)
	for i := range c.silentIdx {
		best := c.piBegin[i]
		var bestPrev *tbNode
		for j := c.silentIdx; j < n; j++ {
			if cand := delta[j] + c.A[j][i]; cand > best {
				best = cand
				bestPrev = tb.previous[j]
			}
		}
		next[i] = best + c.logB(i, seq[0])
		if next[i] != logmath.NegInf {
			tb.current[i] = &tbNode{state: i, prev: bestPrev}
		}
	}
	c.viterbiSilentPass(next, tb)
	delta = next
	tb.nextColumn()

	// Steps 2..T.
	for t := 1; t < len(seq); t++ {
		next = make([]float64, n)
		for i := range c.silentIdx {
			best := logmath.NegInf
			var bestPrev *tbNode
			for j := range n {
				if cand := delta[j] + c.A[j][i]; cand > best {
					best = cand
					bestPrev = tb.previous[j]
				}
			}
			next[i] = best + c.logB(i, seq[t])
			if next[i] != logmath.NegInf {
				tb.current[i] = &tbNode{state: i, prev: bestPrev}
			}
		}
		c.viterbiSilentPass(next, tb)
		delta = next
		tb.nextColumn()
	}

	// Termination: the last column now lives in previous.
	bestState := -1
	bestScore := logmath.NegInf
	if c.isFinite {
		for i := range n {
			if score := delta[i] + c.piEnd[i]; score > bestScore {
				bestScore = score
				bestState = i
			}
		}
	} else {
		for i := range c.silentIdx {
			if delta[i] > bestScore {
				bestScore = delta[i]
				bestState = i
			}
		}
	}
	if bestState < 0 || bestScore == logmath.NegInf {
		return nil, logmath.NegInf, nil
	}
	return tb.trace(tb.previous[bestState]), bestScore, nil
}

// viterbiSilentPass fills the silent tail of one step, linking silent
// nodes to their predecessor within the current column.
func (c *compiledHMM) viterbiSilentPass(delta []float64, tb *traceback) {
	for i := c.silentIdx; i < len(delta); i++ {
		best := logmath.NegInf
		var bestPrev *tbNode
		for j := range i {
			if cand := delta[j] + c.A[j][i]; cand > best {
				best = cand
				bestPrev = tb.current[j]
			}
		}
		delta[i] = best
		if best != logmath.NegInf {
			tb.current[i] = &tbNode{state: i, prev: bestPrev}
		}
	}
}
