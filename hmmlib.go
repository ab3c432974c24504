// Package hmmlib builds, evaluates, decodes and trains discrete-emission
// hidden Markov models that may contain silent states.
//
// A model is authored as a labeled directed graph of states with
// transition probabilities on the edges, then compiled into a dense
// log-space form consumed by the inference and training algorithms:
//
//	m := hmmlib.NewModel("casino")
//	fair := hmmlib.NewEmittingState("fair", hmmlib.NewDiscreteDistributionFrom(map[string]float64{"H": 0.5, "T": 0.5}))
//	m.AddState(fair)
//	m.BeginTransition("fair", 1)
//	m.AddTransition("fair", "fair", 1)
//	m.Compile(true)
//	path, score, _ := m.Decode([]string{"H", "T", "H"})
//
// Silent states (states without an emission distribution) model
// insertions and deletions in profile HMMs; the engines route
// probability mass through chains of silent states between emissions.
package hmmlib

import (
	"fmt"

	"github.com/jhellinckx/hmmlib/graph"
)

// Prefixes of the begin and end state names generated by NewModel.
const (
	BeginStatePrefix = "begin_"
	EndStatePrefix   = "end_"
)

// Model is a hidden Markov model in authoring form: a graph of states
// plus designated silent begin and end states. Structural mutations
// invalidate the compiled form; Compile must be called again before
// inference or training.
type Model struct {
	name      string
	g         *graph.Digraph[string, *State]
	begin     *State
	end       *State
	compiled  *compiledHMM
	algorithm TrainAlgorithm
}

// NewModel returns an empty model with silent begin and end states
// named after the model.
func NewModel(name string) *Model {
	return NewModelWithStates(name, NewState(BeginStatePrefix+name), NewState(EndStatePrefix+name))
}

// NewModelWithStates returns an empty model anchored on the given begin
// and end states. Both must be silent; Compile enforces this.
func NewModelWithStates(name string, begin, end *State) *Model {
	m := &Model{
		name:      name,
		g:         graph.New(func(s *State) string { return s.Name() }),
		begin:     begin,
		end:       end,
		algorithm: TrainBaumWelch,
	}
	m.g.AddVertex(begin)
	m.g.AddVertex(end)
	return m
}

// Name returns the model name.
func (m *Model) Name() string { return m.name }

// SetName renames the model. The begin and end states keep their names.
func (m *Model) SetName(name string) { m.name = name }

// Algorithm returns the training algorithm selected for the model.
func (m *Model) Algorithm() TrainAlgorithm { return m.algorithm }

// SetAlgorithm selects the training algorithm persisted with the model.
func (m *Model) SetAlgorithm(a TrainAlgorithm) { m.algorithm = a }

// NumStates returns the number of states, begin and end included.
func (m *Model) NumStates() int { return m.g.NumVertices() }

// NumTransitions returns the number of transitions.
func (m *Model) NumTransitions() int { return m.g.NumEdges() }

// Begin returns the begin state. Fails with ErrNoBeginState when it has
// been removed.
func (m *Model) Begin() (*State, error) {
	if m.begin == nil {
		return nil, fmt.Errorf("hmm: %w", ErrNoBeginState)
	}
	return m.begin, nil
}

// End returns the end state. Fails with ErrNoEndState when it has been
// removed.
func (m *Model) End() (*State, error) {
	if m.end == nil {
		return nil, fmt.Errorf("hmm: %w", ErrNoEndState)
	}
	return m.end, nil
}

// HasState reports whether a state with the given name is in the model.
func (m *Model) HasState(name string) bool {
	_, ok := m.g.Vertex(name)
	return ok
}

// GetState returns the state with the given name.
func (m *Model) GetState(name string) (*State, error) {
	s, ok := m.g.Vertex(name)
	if !ok {
		return nil, fmt.Errorf("hmm: %s: %w", name, ErrStateNotFound)
	}
	return s, nil
}

// States returns the states in insertion order, begin and end included.
func (m *Model) States() []*State { return m.g.Vertices() }

// AddState inserts s into the model. Fails with ErrStateExists when a
// state with the same name is already present.
func (m *Model) AddState(s *State) error {
	if err := m.g.AddVertex(s); err != nil {
		return fmt.Errorf("hmm: %s: %w", s.Name(), ErrStateExists)
	}
	m.invalidate()
	return nil
}

// RemoveState deletes the named state and every transition incident to
// it. Removing the begin or end state leaves the model without that
// anchor until a new one is set through a fresh model.
func (m *Model) RemoveState(name string) error {
	s, ok := m.g.Vertex(name)
	if !ok {
		return fmt.Errorf("hmm: %s: %w", name, ErrStateNotFound)
	}
	if m.begin != nil && m.begin.Name() == name {
		m.begin = nil
	}
	if m.end != nil && m.end.Name() == name {
		m.end = nil
	}
	if err := m.g.RemoveVertex(s); err != nil {
		return fmt.Errorf("hmm: %s: %w", name, ErrStateNotFound)
	}
	m.invalidate()
	return nil
}

// HasTransition reports whether the transition from -> to exists.
func (m *Model) HasTransition(from, to string) bool {
	f, ok1 := m.g.Vertex(from)
	t, ok2 := m.g.Vertex(to)
	return ok1 && ok2 && m.g.HasEdge(f, t)
}

// AddTransition inserts the transition from -> to with the given
// probability weight. Transitions out of the end state, into the begin
// state, or with negative weight fail with ErrTransitionLogic.
func (m *Model) AddTransition(from, to string, weight float64) error {
	if m.end != nil && from == m.end.Name() {
		return fmt.Errorf("hmm: %s -> %s: transition from an end state: %w", from, to, ErrTransitionLogic)
	}
	if m.begin != nil && to == m.begin.Name() {
		return fmt.Errorf("hmm: %s -> %s: transition to a begin state: %w", from, to, ErrTransitionLogic)
	}
	if weight < 0 {
		return fmt.Errorf("hmm: %s -> %s: negative probability: %w", from, to, ErrTransitionLogic)
	}
	f, ok := m.g.Vertex(from)
	if !ok {
		return fmt.Errorf("hmm: %s: %w", from, ErrStateNotFound)
	}
	t, ok := m.g.Vertex(to)
	if !ok {
		return fmt.Errorf("hmm: %s: %w", to, ErrStateNotFound)
	}
	if err := m.g.AddEdge(f, t, weight); err != nil {
		return fmt.Errorf("hmm: %s -> %s: %w", from, to, ErrTransitionExists)
	}
	m.invalidate()
	return nil
}

// BeginTransition sets the initial probability of the named state by
// adding a transition from the begin state.
func (m *Model) BeginTransition(to string, weight float64) error {
	begin, err := m.Begin()
	if err != nil {
		return err
	}
	return m.AddTransition(begin.Name(), to, weight)
}

// EndTransition adds a transition from the named state to the end
// state, making the model finite.
func (m *Model) EndTransition(from string, weight float64) error {
	end, err := m.End()
	if err != nil {
		return err
	}
	return m.AddTransition(from, end.Name(), weight)
}

// RemoveTransition deletes the transition from -> to.
func (m *Model) RemoveTransition(from, to string) error {
	f, ok := m.g.Vertex(from)
	if !ok {
		return fmt.Errorf("hmm: %s: %w", from, ErrStateNotFound)
	}
	t, ok := m.g.Vertex(to)
	if !ok {
		return fmt.Errorf("hmm: %s: %w", to, ErrStateNotFound)
	}
	if err := m.g.RemoveEdge(f, t); err != nil {
		return fmt.Errorf("hmm: %s -> %s: %w", from, to, ErrTransitionNotFound)
	}
	m.invalidate()
	return nil
}

// GetTransition returns the weight of the transition from -> to.
func (m *Model) GetTransition(from, to string) (float64, error) {
	f, ok := m.g.Vertex(from)
	if !ok {
		return 0, fmt.Errorf("hmm: %s: %w", from, ErrStateNotFound)
	}
	t, ok := m.g.Vertex(to)
	if !ok {
		return 0, fmt.Errorf("hmm: %s: %w", to, ErrStateNotFound)
	}
	w, err := m.g.Weight(f, t)
	if err != nil {
		return 0, fmt.Errorf("hmm: %s -> %s: %w", from, to, ErrTransitionNotFound)
	}
	return w, nil
}

// SetTransition updates the weight of the existing transition from -> to.
func (m *Model) SetTransition(from, to string, weight float64) error {
	if weight < 0 {
		return fmt.Errorf("hmm: %s -> %s: negative probability: %w", from, to, ErrTransitionLogic)
	}
	f, ok := m.g.Vertex(from)
	if !ok {
		return fmt.Errorf("hmm: %s: %w", from, ErrStateNotFound)
	}
	t, ok := m.g.Vertex(to)
	if !ok {
		return fmt.Errorf("hmm: %s: %w", to, ErrStateNotFound)
	}
	if err := m.g.SetWeight(f, t, weight); err != nil {
		return fmt.Errorf("hmm: %s -> %s: %w", from, to, ErrTransitionNotFound)
	}
	m.invalidate()
	return nil
}

// Alphabet returns the union of emission symbols across the emitting
// states of the compiled model.
func (m *Model) Alphabet() ([]string, error) {
	c, err := m.raw()
	if err != nil {
		return nil, err
	}
	return append([]string(nil), c.alphabet...), nil
}

// invalidate drops the compiled snapshot after a structural mutation.
func (m *Model) invalidate() { m.compiled = nil }

// raw returns the compiled snapshot, failing when the model has not
// been compiled since its last mutation.
func (m *Model) raw() (*compiledHMM, error) {
	if m.compiled == nil {
		return nil, fmt.Errorf("hmm: %w", ErrNotCompiled)
	}
	return m.compiled, nil
}
