package hmmlib

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/jhellinckx/hmmlib/graph"
	"github.com/jhellinckx/hmmlib/internal/logmath"
)

// emitParam identifies one free emission parameter: a dense state index
// and a symbol of its distribution.
type emitParam struct {
	state  int
	symbol string
}

// compiledHMM is the dense log-space snapshot produced by Compile and
// consumed by every inference and training routine. Emitting states
// occupy dense indices [0, silentIdx), silent interior states occupy
// [silentIdx, N) in topological order of the silent subgraph.
type compiledHMM struct {
	names     []string
	index     map[string]int
	silentIdx int
	A         [][]float64
	B         []*DiscreteDistribution
	piBegin   []float64
	piEnd     []float64
	isFinite  bool
	alphabet  []string
	freeBegin []int
	freeEnd   []int
	freeTrans [][2]int
	freeEmit  []emitParam
}

// Compile snapshots the authoring graph into the dense form used by
// Forward, Backward, Decode and Train. With normalize set, each state's
// outgoing mass (end transition included) and the begin transitions are
// rescaled to sum to one. The snapshot is built into temporaries and
// committed only on success; a failed compile leaves any previous
// snapshot untouched.
func (m *Model) Compile(normalize bool) error {
	c, err := m.compile(normalize)
	if err != nil {
		return err
	}
	m.compiled = c
	return nil
}

func (m *Model) compile(normalize bool) (*compiledHMM, error) {
	begin, err := m.Begin()
	if err != nil {
		return nil, err
	}
	end, err := m.End()
	if err != nil {
		return nil, err
	}
	if !begin.IsSilent() || !end.IsSilent() {
		return nil, fmt.Errorf("hmm: begin and end states must be silent: %w", ErrCompile)
	}
	if in, err := m.g.InEdges(begin); err != nil || len(in) > 0 {
		return nil, fmt.Errorf("hmm: begin state cannot have predecessors: %w", ErrCompile)
	}
	if out, err := m.g.OutEdges(end); err != nil || len(out) > 0 {
		return nil, fmt.Errorf("hmm: end state cannot have successors: %w", ErrCompile)
	}

	// Partition the interior states; emitting states keep graph order.
	var emitting, silent []*State
	for _, s := range m.g.Vertices() {
		if s.Equal(begin) || s.Equal(end) {
			continue
		}
		if s.IsSilent() {
			silent = append(silent, s)
		} else {
			emitting = append(emitting, s)
		}
	}

	// The silent chain must be a DAG; its states take the tail index
	// range in topological order.
	sub := m.g.Subgraph(silent)
	if err := sub.TopologicalSort(); err != nil {
		return nil, fmt.Errorf("hmm: cycle between silent states: %w", ErrCompile)
	}
	silent = sub.Vertices()

	n := len(emitting) + len(silent)
	c := &compiledHMM{
		names:     make([]string, n),
		index:     make(map[string]int, n),
		silentIdx: len(emitting),
		A:         make([][]float64, n),
		B:         make([]*DiscreteDistribution, n),
		piBegin:   make([]float64, n),
		piEnd:     make([]float64, n),
	}
	for i, s := range append(append([]*State(nil), emitting...), silent...) {
		c.names[i] = s.Name()
		c.index[s.Name()] = i
		c.A[i] = make([]float64, n)
		for j := range n {
			c.A[i][j] = logmath.NegInf
		}
		c.piBegin[i] = logmath.NegInf
		c.piEnd[i] = logmath.NegInf
	}

	// Begin transitions.
	beginEdges, _ := m.g.OutEdges(begin)
	if err := fillRow(beginEdges, end, c, -1, normalize); err != nil {
		return nil, err
	}

	// Body transitions and end transitions, one row per interior state.
	for _, s := range append(append([]*State(nil), emitting...), silent...) {
		edges, _ := m.g.OutEdges(s)
		if err := fillRow(edges, end, c, c.index[s.Name()], normalize); err != nil {
			return nil, err
		}
	}

	// The model is finite iff some state can reach the end state.
	for i := range n {
		if math.Exp(c.piEnd[i]) > 0 {
			c.isFinite = true
			break
		}
	}

	// Emission distributions: log-normalized clones, nil for silent.
	symbolSet := make(map[string]bool)
	for _, s := range emitting {
		dist, err := s.Distribution()
		if err != nil {
			return nil, err
		}
		b := dist.Clone()
		b.LogNormalize()
		c.B[c.index[s.Name()]] = b
		for _, symbol := range b.Symbols() {
			symbolSet[symbol] = true
		}
	}
	for symbol := range symbolSet {
		c.alphabet = append(c.alphabet, symbol)
	}
	sort.Strings(c.alphabet)

	c.collectFreeParams(m, begin, end, emitting, silent)
	return c, nil
}

// fillRow converts the outgoing edges of one state (row < 0 for the
// begin state) into log probabilities, normalizing over the row's total
// mass when requested. Edges to the end state land in piEnd.
func fillRow(edges []graph.Edge[*State], end *State, c *compiledHMM, row int, normalize bool) error {
	weights := make([]float64, len(edges))
	for i, e := range edges {
		weights[i] = e.Weight
	}
	sum := floats.Sum(weights)
	if sum <= 0 {
		if row < 0 {
			return fmt.Errorf("hmm: no begin transition: %w", ErrCompile)
		}
		return fmt.Errorf("hmm: no transition from %s: %w", c.names[row], ErrCompile)
	}
	logSum := math.Log(sum)
	for _, e := range edges {
		logProb := math.Log(e.Weight)
		if normalize && sum != 1.0 {
			logProb -= logSum
		}
		switch {
		case e.To.Equal(end):
			if row < 0 {
				return fmt.Errorf("hmm: begin state cannot transition to the end state: %w", ErrCompile)
			}
			c.piEnd[row] = logProb
		case row < 0:
			c.piBegin[c.index[e.To.Name()]] = logProb
		default:
			c.A[row][c.index[e.To.Name()]] = logProb
		}
	}
	return nil
}

// collectFreeParams derives the free-parameter index vectors from the
// free flags of the begin state and the interior states.
func (c *compiledHMM) collectFreeParams(m *Model, begin, end *State, emitting, silent []*State) {
	if begin.FreeTransition() {
		edges, _ := m.g.OutEdges(begin)
		for _, e := range edges {
			c.freeBegin = append(c.freeBegin, c.index[e.To.Name()])
		}
		sort.Ints(c.freeBegin)
	}
	for _, s := range append(append([]*State(nil), emitting...), silent...) {
		i := c.index[s.Name()]
		if s.FreeTransition() {
			edges, _ := m.g.OutEdges(s)
			var targets []int
			hasEnd := false
			for _, e := range edges {
				if e.To.Equal(end) {
					hasEnd = true
					continue
				}
				targets = append(targets, c.index[e.To.Name()])
			}
			sort.Ints(targets)
			for _, j := range targets {
				c.freeTrans = append(c.freeTrans, [2]int{i, j})
			}
			if hasEnd {
				c.freeEnd = append(c.freeEnd, i)
			}
		}
	}
	sort.Slice(c.freeTrans, func(a, b int) bool {
		if c.freeTrans[a][0] != c.freeTrans[b][0] {
			return c.freeTrans[a][0] < c.freeTrans[b][0]
		}
		return c.freeTrans[a][1] < c.freeTrans[b][1]
	})
	sort.Ints(c.freeEnd)
	for i := range c.silentIdx {
		s, _ := m.g.Vertex(c.names[i])
		if s.FreeEmission() {
			for _, symbol := range c.B[i].Symbols() {
				c.freeEmit = append(c.freeEmit, emitParam{state: i, symbol: symbol})
			}
		}
	}
}

// numStates returns the number of interior states.
func (c *compiledHMM) numStates() int { return len(c.names) }

// isSilentState reports whether dense index i is a silent state.
func (c *compiledHMM) isSilentState(i int) bool { return i >= c.silentIdx }

// logB returns the log emission probability of symbol from state i
// without materializing missing symbols.
func (c *compiledHMM) logB(i int, symbol string) float64 {
	return c.B[i].prob(symbol)
}

// String renders the dense matrices, mostly useful while debugging
// model topologies.
func (c *compiledHMM) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "states: %v (first silent index %d, finite %v)\n", c.names, c.silentIdx, c.isFinite)
	fmt.Fprintf(&sb, "pi_begin: %v\n", expSlice(c.piBegin))
	fmt.Fprintf(&sb, "pi_end: %v\n", expSlice(c.piEnd))
	sb.WriteString("A:\n")
	for _, row := range c.A {
		fmt.Fprintf(&sb, "  %v\n", expSlice(row))
	}
	return sb.String()
}

func expSlice(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = math.Exp(x)
	}
	return out
}
