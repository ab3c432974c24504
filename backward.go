package hmmlib

import (
	"fmt"

	"github.com/jhellinckx/hmmlib/internal/logmath"
)

// Backward runs the backward algorithm and returns the log backward
// variables at step tMin (1 when tMin <= 0): beta[i] =
// log P(O_{t+1}..O_T | state at step t = i).
func (m *Model) Backward(seq []string, tMin int) ([]float64, error) {
	c, err := m.raw()
	if err != nil {
		return nil, err
	}
	return c.backward(seq, tMin)
}

// backwardInit computes the termination row at step T. For finite
// models a silent state may still chain through later silent states
// before reaching end, hence the reverse-topological sweep; emitting
// states then pick up both their direct end transition and the silent
// continuations. Non-finite models terminate in emitting states only.
func (c *compiledHMM) backwardInit() []float64 {
	n := c.numStates()
	beta := make([]float64, n)
	if !c.isFinite {
		for i := range n {
			if c.isSilentState(i) {
				beta[i] = logmath.NegInf
			} else {
				beta[i] = 0
			}
		}
		return beta
	}
	for i := n - 1; i >= c.silentIdx; i-- {
		sum := c.piEnd[i]
		for j := i + 1; j < n; j++ {
			sum = logmath.SumLogProb(sum, c.A[i][j]+beta[j])
		}
		beta[i] = sum
	}
	for i := range c.silentIdx {
		sum := c.piEnd[i]
		for j := c.silentIdx; j < n; j++ {
			sum = logmath.SumLogProb(sum, c.A[i][j]+beta[j])
		}
		beta[i] = sum
	}
	return beta
}

// backwardStep moves one symbol back: beta at step t from beta at step
// t+1, where nextSymbol is O_{t+1}. Three passes: silent states toward
// the next step's emitting states, silent states toward later silent
// states of the current step (reverse topological), then emitting
// states combining both.
func (c *compiledHMM) backwardStep(next []float64, nextSymbol string) []float64 {
	n := c.numStates()
	beta := make([]float64, n)
	for i := n - 1; i >= c.silentIdx; i-- {
		sum := logmath.NegInf
		for j := range c.silentIdx {
			sum = logmath.SumLogProb(sum, c.A[i][j]+c.logB(j, nextSymbol)+next[j])
		}
		for j := i + 1; j < n; j++ {
			sum = logmath.SumLogProb(sum, c.A[i][j]+beta[j])
		}
		beta[i] = sum
	}
	for i := range c.silentIdx {
		sum := logmath.NegInf
		for j := range c.silentIdx {
			sum = logmath.SumLogProb(sum, c.A[i][j]+c.logB(j, nextSymbol)+next[j])
		}
		for j := c.silentIdx; j < n; j++ {
			sum = logmath.SumLogProb(sum, c.A[i][j]+beta[j])
		}
		beta[i] = sum
	}
	return beta
}

// backwardStep0 computes the pre-emission silent row: the probability
// of the whole sequence given a silent state reached from begin before
// the first emission. Emitting entries stay at -Inf.
func (c *compiledHMM) backwardStep0(beta1 []float64, firstSymbol string) []float64 {
	n := c.numStates()
	beta0 := make([]float64, n)
	for i := range c.silentIdx {
		beta0[i] = logmath.NegInf
	}
	for i := n - 1; i >= c.silentIdx; i-- {
		sum := logmath.NegInf
		for j := range c.silentIdx {
			sum = logmath.SumLogProb(sum, c.A[i][j]+c.logB(j, firstSymbol)+beta1[j])
		}
		for j := i + 1; j < n; j++ {
			sum = logmath.SumLogProb(sum, c.A[i][j]+beta0[j])
		}
		beta0[i] = sum
	}
	return beta0
}

func (c *compiledHMM) backward(seq []string, tMin int) ([]float64, error) {
	if len(seq) == 0 {
		return nil, fmt.Errorf("hmm: backward: %w", ErrEmptySequence)
	}
	if tMin <= 0 {
		tMin = 1
	}
	beta := c.backwardInit()
	for t := len(seq) - 1; t >= tMin; t-- {
		beta = c.backwardStep(beta, seq[t])
	}
	return beta, nil
}

// backwardTables returns all backward rows: row t for t >= 1 holds the
// variables at step t, row 0 the pre-emission silent row.
func (c *compiledHMM) backwardTables(seq []string) ([][]float64, error) {
	if len(seq) == 0 {
		return nil, fmt.Errorf("hmm: backward: %w", ErrEmptySequence)
	}
	rows := make([][]float64, len(seq)+1)
	rows[len(seq)] = c.backwardInit()
	for t := len(seq) - 1; t >= 1; t-- {
		rows[t] = c.backwardStep(rows[t+1], seq[t])
	}
	rows[0] = c.backwardStep0(rows[1], seq[0])
	return rows, nil
}

// backwardTerminate integrates the begin transitions and the first
// emission, producing the same log-likelihood as forwardTerminate.
func (c *compiledHMM) backwardTerminate(beta1, beta0 []float64, firstSymbol string) float64 {
	sum := logmath.NegInf
	for i := range c.silentIdx {
		sum = logmath.SumLogProb(sum, c.piBegin[i]+c.logB(i, firstSymbol)+beta1[i])
	}
	for i := c.silentIdx; i < c.numStates(); i++ {
		sum = logmath.SumLogProb(sum, c.piBegin[i]+beta0[i])
	}
	return sum
}

func (c *compiledHMM) backwardLogLikelihood(seq []string) (float64, error) {
	beta1, err := c.backward(seq, 1)
	if err != nil {
		return 0, err
	}
	beta0 := c.backwardStep0(beta1, seq[0])
	return c.backwardTerminate(beta1, beta0, seq[0]), nil
}
