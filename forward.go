package hmmlib

import (
	"fmt"
	"math"

	"github.com/jhellinckx/hmmlib/internal/logmath"
)

// Forward runs the forward algorithm and returns the log forward
// variables at step tMax (the full sequence length when tMax <= 0):
// alpha[i] = log P(O_1..O_t, state at step t = i). A sequence with no
// legal path yields an all -Inf vector, not an error.
func (m *Model) Forward(seq []string, tMax int) ([]float64, error) {
	c, err := m.raw()
	if err != nil {
		return nil, err
	}
	return c.forward(seq, tMax)
}

// LogLikelihood returns log P(seq | model), computed with the forward
// algorithm when doForward is set and with the backward algorithm
// otherwise. Both directions agree up to floating-point error.
func (m *Model) LogLikelihood(seq []string, doForward bool) (float64, error) {
	c, err := m.raw()
	if err != nil {
		return 0, err
	}
	if doForward {
		alpha, err := c.forward(seq, 0)
		if err != nil {
			return 0, err
		}
		return c.forwardTerminate(alpha), nil
	}
	return c.backwardLogLikelihood(seq)
}

// LogLikelihoodBatch returns the summed log-likelihood over seqs.
func (m *Model) LogLikelihoodBatch(seqs [][]string, doForward bool) (float64, error) {
	total := 0.0
	for _, seq := range seqs {
		ll, err := m.LogLikelihood(seq, doForward)
		if err != nil {
			return 0, err
		}
		total += ll
	}
	return total, nil
}

// Likelihood returns P(seq | model) in linear space.
func (m *Model) Likelihood(seq []string, doForward bool) (float64, error) {
	ll, err := m.LogLikelihood(seq, doForward)
	if err != nil {
		return 0, err
	}
	return math.Exp(ll), nil
}

// forwardStep0 computes the pre-emission silent pass: the probability
// of reaching each silent state from begin through silent chains before
// the first symbol. Emitting entries stay at -Inf.
func (c *compiledHMM) forwardStep0() []float64 {
	n := c.numStates()
	alpha0 := make([]float64, n)
	for i := range n {
		alpha0[i] = logmath.NegInf
	}
	for i := c.silentIdx; i < n; i++ {
		sum := c.piBegin[i]
		for j := c.silentIdx; j < i; j++ {
			sum = logmath.SumLogProb(sum, alpha0[j]+c.A[j][i])
		}
		alpha0[i] = sum
	}
	return alpha0
}

// forwardInit consumes the first symbol: emitting states combine the
// begin transition with the step-0 silent chains, then the silent
// states of step 1 are filled in topological order.
func (c *compiledHMM) forwardInit(alpha0 []float64, symbol string) []float64 {
	n := c.numStates()
	alpha := make([]float64, n)
	for i := range c.silentIdx {
		sum := c.piBegin[i]
		for j := c.silentIdx; j < n; j++ {
			sum = logmath.SumLogProb(sum, alpha0[j]+c.A[j][i])
		}
		alpha[i] = sum + c.logB(i, symbol)
	}
	c.forwardSilentPass(alpha)
	return alpha
}

// forwardStep consumes one more symbol.
func (c *compiledHMM) forwardStep(prev []float64, symbol string) []float64 {
	n := c.numStates()
	alpha := make([]float64, n)
	for i := range c.silentIdx {
		sum := logmath.NegInf
		for j := range n {
			sum = logmath.SumLogProb(sum, prev[j]+c.A[j][i])
		}
		alpha[i] = sum + c.logB(i, symbol)
	}
	c.forwardSilentPass(alpha)
	return alpha
}

// forwardSilentPass fills the silent tail of one step: silent states
// receive mass from every dense predecessor within the same step, which
// the topological ordering makes a single in-order sweep.
func (c *compiledHMM) forwardSilentPass(alpha []float64) {
	for i := c.silentIdx; i < len(alpha); i++ {
		sum := logmath.NegInf
		for j := range i {
			sum = logmath.SumLogProb(sum, alpha[j]+c.A[j][i])
		}
		alpha[i] = sum
	}
}

func (c *compiledHMM) forward(seq []string, tMax int) ([]float64, error) {
	if len(seq) == 0 {
		return nil, fmt.Errorf("hmm: forward: %w", ErrEmptySequence)
	}
	steps := len(seq)
	if tMax > 0 && tMax < steps {
		steps = tMax
	}
	alpha := c.forwardInit(c.forwardStep0(), seq[0])
	for t := 1; t < steps; t++ {
		alpha = c.forwardStep(alpha, seq[t])
	}
	return alpha, nil
}

// forwardTables returns all forward rows: row 0 is the pre-emission
// silent pass, row t the variables after t consumed symbols.
func (c *compiledHMM) forwardTables(seq []string) ([][]float64, error) {
	if len(seq) == 0 {
		return nil, fmt.Errorf("hmm: forward: %w", ErrEmptySequence)
	}
	rows := make([][]float64, len(seq)+1)
	rows[0] = c.forwardStep0()
	rows[1] = c.forwardInit(rows[0], seq[0])
	for t := 2; t <= len(seq); t++ {
		rows[t] = c.forwardStep(rows[t-1], seq[t-1])
	}
	return rows, nil
}

// forwardTerminate folds the last forward row into the sequence
// log-likelihood. Non-finite models cannot end in a silent state, so
// their silent tail is excluded from the sum.
func (c *compiledHMM) forwardTerminate(alpha []float64) float64 {
	sum := logmath.NegInf
	if c.isFinite {
		for i, a := range alpha {
			sum = logmath.SumLogProb(sum, a+c.piEnd[i])
		}
		return sum
	}
	for i := range c.silentIdx {
		sum = logmath.SumLogProb(sum, alpha[i])
	}
	return sum
}
