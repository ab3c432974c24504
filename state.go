package hmmlib

import "fmt"

// Free-parameter defaults for newly created states.
const (
	DefaultFreeTransition = true
	DefaultFreeEmission   = true
)

// State is a named HMM state. A state without a distribution, or whose
// distribution has zero mass, is silent. Identity is the name alone:
// two states are the same state iff their names are equal, and the name
// must not change once the state belongs to a model.
type State struct {
	name           string
	dist           *DiscreteDistribution
	freeTransition bool
	freeEmission   bool
}

// NewState returns a silent state.
func NewState(name string) *State {
	return &State{
		name:           name,
		freeTransition: DefaultFreeTransition,
		freeEmission:   DefaultFreeEmission,
	}
}

// NewEmittingState returns a state owning a copy of dist.
func NewEmittingState(name string, dist *DiscreteDistribution) *State {
	s := NewState(name)
	if dist != nil {
		s.dist = dist.Clone()
	}
	return s
}

// Name returns the state name.
func (s *State) Name() string { return s.name }

// IsSilent reports whether the state emits no symbol.
func (s *State) IsSilent() bool {
	return s.dist == nil || s.dist.Empty()
}

// Distribution returns the emission distribution. Fails with
// ErrStateHasNoDistribution for states created without one.
func (s *State) Distribution() (*DiscreteDistribution, error) {
	if s.dist == nil {
		return nil, fmt.Errorf("hmm: %s: %w", s.name, ErrStateHasNoDistribution)
	}
	return s.dist, nil
}

// FreeTransition reports whether the outgoing transitions of the state
// are re-estimated by training.
func (s *State) FreeTransition() bool { return s.freeTransition }

// SetFreeTransition marks the outgoing transitions as free or fixed.
func (s *State) SetFreeTransition(free bool) { s.freeTransition = free }

// FreeEmission reports whether the emission distribution is
// re-estimated by training.
func (s *State) FreeEmission() bool { return s.freeEmission }

// SetFreeEmission marks the emission distribution as free or fixed.
func (s *State) SetFreeEmission(free bool) { s.freeEmission = free }

// Equal reports whether both states carry the same name.
func (s *State) Equal(other *State) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.name == other.name
}

func (s *State) String() string { return s.name }
