package hmmlib

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/floats"
)

// TrainAlgorithm selects the parameter-estimation algorithm.
type TrainAlgorithm int

const (
	// TrainBaumWelch re-estimates from expected counts computed with
	// the forward and backward variables.
	TrainBaumWelch TrainAlgorithm = iota
	// TrainViterbi re-estimates from the counts observed along the
	// Viterbi path of each sequence.
	TrainViterbi
)

func (a TrainAlgorithm) String() string {
	switch a {
	case TrainViterbi:
		return "viterbi"
	default:
		return "baum-welch"
	}
}

// ParseTrainAlgorithm parses the persisted algorithm selector.
func ParseTrainAlgorithm(s string) (TrainAlgorithm, error) {
	switch s {
	case "viterbi":
		return TrainViterbi, nil
	case "baum-welch":
		return TrainBaumWelch, nil
	}
	return TrainBaumWelch, fmt.Errorf("hmm: unknown training algorithm %q", s)
}

// TrainConfig holds the training hyperparameters. The zero value is not
// useful; start from DefaultTrainConfig.
type TrainConfig struct {
	Algorithm     TrainAlgorithm
	Pseudocount   float64 // Laplace smoothing on transition counts
	Threshold     float64 // convergence bound on the log-likelihood delta
	MinIterations int
	MaxIterations int
}

// DefaultTrainConfig returns the defaults used by the CLI.
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		Algorithm:     TrainBaumWelch,
		Pseudocount:   0,
		Threshold:     1e-9,
		MinIterations: 2,
		MaxIterations: 500,
	}
}

// counts accumulates (expected) usage counts of the free parameters,
// indexed by the positions of the compiled free-parameter vectors.
type counts struct {
	begin []float64
	trans []float64
	end   []float64
	emit  []float64
}

func newCounts(c *compiledHMM) *counts {
	return &counts{
		begin: make([]float64, len(c.freeBegin)),
		trans: make([]float64, len(c.freeTrans)),
		end:   make([]float64, len(c.freeEnd)),
		emit:  make([]float64, len(c.freeEmit)),
	}
}

// paramIndex inverts the free-parameter vectors for constant-time count
// lookups while walking Viterbi paths.
type paramIndex struct {
	begin map[int]int
	trans map[[2]int]int
	end   map[int]int
	emit  map[emitParam]int
}

func newParamIndex(c *compiledHMM) *paramIndex {
	pi := &paramIndex{
		begin: make(map[int]int, len(c.freeBegin)),
		trans: make(map[[2]int]int, len(c.freeTrans)),
		end:   make(map[int]int, len(c.freeEnd)),
		emit:  make(map[emitParam]int, len(c.freeEmit)),
	}
	for p, j := range c.freeBegin {
		pi.begin[j] = p
	}
	for p, tr := range c.freeTrans {
		pi.trans[tr] = p
	}
	for p, i := range c.freeEnd {
		pi.end[i] = p
	}
	for p, ep := range c.freeEmit {
		pi.emit[ep] = p
	}
	return pi
}

// Train runs the selected batch trainer over seqs until convergence or
// the iteration bound, commits the converged parameters back into the
// authoring graph, and returns the log-likelihood improvement
// (final minus initial, summed over the batch). The compiled form stays
// valid and reflects the trained parameters.
func (m *Model) Train(seqs [][]string, cfg TrainConfig) (float64, error) {
	c, err := m.raw()
	if err != nil {
		return 0, err
	}
	if len(seqs) == 0 {
		return 0, fmt.Errorf("hmm: train: %w", ErrEmptySequence)
	}
	for _, seq := range seqs {
		if len(seq) == 0 {
			return 0, fmt.Errorf("hmm: train: %w", ErrEmptySequence)
		}
	}
	if cfg.MaxIterations <= 0 {
		return 0, errors.New("hmm: train: MaxIterations must be positive")
	}

	pidx := newParamIndex(c)
	initial, err := m.LogLikelihoodBatch(seqs, true)
	if err != nil {
		return 0, err
	}
	slog.Debug("training started", "algorithm", cfg.Algorithm.String(), "sequences", len(seqs), "loglik", initial)

	prev := initial
	for iter := 1; ; iter++ {
		totals := newCounts(c)
		for _, seq := range seqs {
			switch cfg.Algorithm {
			case TrainViterbi:
				err = c.accumulateViterbi(seq, pidx, totals)
			default:
				err = c.accumulateBaumWelch(seq, totals)
			}
			if err != nil {
				return 0, err
			}
		}
		c.reestimate(totals, cfg.Pseudocount)

		next, err := m.LogLikelihoodBatch(seqs, true)
		if err != nil {
			return 0, err
		}
		delta := next - prev
		slog.Debug("training iteration", "algorithm", cfg.Algorithm.String(), "iteration", iter, "loglik", next, "delta", delta)
		prev = next
		if iter > cfg.MaxIterations {
			break
		}
		if iter > cfg.MinIterations && delta <= cfg.Threshold {
			break
		}
	}

	m.writeBack(c)
	m.algorithm = cfg.Algorithm
	slog.Debug("training finished", "improvement", prev-initial)
	return prev - initial, nil
}

// reestimate rewrites the free parameters of the compiled form from the
// accumulated counts. Transition-type parameters of one source state
// normalize together over that state's free mass, with the pseudocount
// added per parameter; emissions normalize per state without smoothing.
// A source whose counts are all zero (and pseudocount zero) keeps its
// previous parameters.
func (c *compiledHMM) reestimate(t *counts, pseudocount float64) {
	if len(c.freeBegin) > 0 {
		total := floats.Sum(t.begin) + pseudocount*float64(len(t.begin))
		if total > 0 {
			for p, j := range c.freeBegin {
				c.piBegin[j] = math.Log((t.begin[p] + pseudocount) / total)
			}
		}
	}

	// Per-source normalization mass: free body transitions plus the
	// free end transition of the same state.
	rowTotals := make(map[int]float64)
	for p, tr := range c.freeTrans {
		rowTotals[tr[0]] += t.trans[p] + pseudocount
	}
	for p, i := range c.freeEnd {
		rowTotals[i] += t.end[p] + pseudocount
	}
	for p, tr := range c.freeTrans {
		if total := rowTotals[tr[0]]; total > 0 {
			c.A[tr[0]][tr[1]] = math.Log((t.trans[p] + pseudocount) / total)
		}
	}
	for p, i := range c.freeEnd {
		if total := rowTotals[i]; total > 0 {
			c.piEnd[i] = math.Log((t.end[p] + pseudocount) / total)
		}
	}

	emitTotals := make(map[int]float64)
	for p, ep := range c.freeEmit {
		emitTotals[ep.state] += t.emit[p]
	}
	for p, ep := range c.freeEmit {
		if total := emitTotals[ep.state]; total > 0 {
			c.B[ep.state].Set(ep.symbol, math.Log(t.emit[p]/total))
		}
	}
}

// writeBack copies the trained free parameters from the compiled form
// into the authoring graph as linear probabilities, so recompiling
// reproduces the trained model.
func (m *Model) writeBack(c *compiledHMM) {
	begin := m.begin
	end := m.end
	for _, j := range c.freeBegin {
		to, _ := m.g.Vertex(c.names[j])
		m.g.SetWeight(begin, to, math.Exp(c.piBegin[j]))
	}
	for _, tr := range c.freeTrans {
		from, _ := m.g.Vertex(c.names[tr[0]])
		to, _ := m.g.Vertex(c.names[tr[1]])
		m.g.SetWeight(from, to, math.Exp(c.A[tr[0]][tr[1]]))
	}
	for _, i := range c.freeEnd {
		from, _ := m.g.Vertex(c.names[i])
		m.g.SetWeight(from, end, math.Exp(c.piEnd[i]))
	}
	for _, ep := range c.freeEmit {
		s, _ := m.g.Vertex(c.names[ep.state])
		if s == nil || s.dist == nil {
			continue
		}
		s.dist.ToLinear()
		s.dist.Set(ep.symbol, math.Exp(c.logB(ep.state, ep.symbol)))
	}
}
