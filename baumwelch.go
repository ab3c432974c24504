package hmmlib

import (
	"math"

	"github.com/jhellinckx/hmmlib/internal/logmath"
)

// accumulateBaumWelch adds the expected free-parameter usage counts of
// seq to the batch totals. Per-sequence expectations are summed over
// time in log space and converted to linear counts before joining the
// batch. An impossible sequence contributes nothing.
//
// Row conventions: alpha[0] and beta[0] are the pre-emission silent
// rows, alpha[t]/beta[t] for t >= 1 the variables after t consumed
// symbols, so seq[t] is the symbol emitted between steps t and t+1.
func (c *compiledHMM) accumulateBaumWelch(seq []string, totals *counts) error {
	alpha, err := c.forwardTables(seq)
	if err != nil {
		return err
	}
	beta, err := c.backwardTables(seq)
	if err != nil {
		return err
	}
	T := len(seq)
	ll := c.forwardTerminate(alpha[T])
	if ll == logmath.NegInf {
		return nil
	}

	// Expected begin-transition use: the begin edge into j itself, not
	// the total occupancy of j at step 1, which would also absorb
	// arrivals through silent chains.
	for p, j := range c.freeBegin {
		var term float64
		if c.isSilentState(j) {
			term = c.piBegin[j] + beta[0][j]
		} else {
			term = c.piBegin[j] + c.logB(j, seq[0]) + beta[1][j]
		}
		totals.begin[p] += math.Exp(term - ll)
	}

	// Expected transition use: crossing an emission for emitting
	// targets, staying within a step for silent targets.
	for p, tr := range c.freeTrans {
		i, j := tr[0], tr[1]
		sum := logmath.NegInf
		if c.isSilentState(j) {
			for t := 0; t <= T; t++ {
				sum = logmath.SumLogProb(sum, alpha[t][i]+c.A[i][j]+beta[t][j])
			}
		} else {
			for t := 0; t < T; t++ {
				sum = logmath.SumLogProb(sum, alpha[t][i]+c.A[i][j]+c.logB(j, seq[t])+beta[t+1][j])
			}
		}
		totals.trans[p] += math.Exp(sum - ll)
	}

	for p, i := range c.freeEnd {
		totals.end[p] += math.Exp(alpha[T][i] + c.piEnd[i] - ll)
	}

	// Expected emission use: occupancy of state i at the steps whose
	// consumed symbol matches.
	for p, ep := range c.freeEmit {
		sum := logmath.NegInf
		for t := 1; t <= T; t++ {
			if seq[t-1] == ep.symbol {
				sum = logmath.SumLogProb(sum, alpha[t][ep.state]+beta[t][ep.state])
			}
		}
		totals.emit[p] += math.Exp(sum - ll)
	}
	return nil
}
