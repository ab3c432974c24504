package hmmlib

import (
	"errors"
	"testing"
)

func TestStateSilent(t *testing.T) {
	s := NewState("state")
	if !s.IsSilent() {
		t.Error("state without distribution should be silent")
	}
	if _, err := s.Distribution(); !errors.Is(err, ErrStateHasNoDistribution) {
		t.Errorf("Distribution error = %v, want ErrStateHasNoDistribution", err)
	}

	empty := NewEmittingState("state", NewDiscreteDistribution())
	if !empty.IsSilent() {
		t.Error("state with empty distribution should be silent")
	}

	zero := NewEmittingState("state", NewDiscreteDistributionFrom(map[string]float64{"A": 0, "B": 0}))
	if !zero.IsSilent() {
		t.Error("state with zero-mass distribution should be silent")
	}

	emitting := NewEmittingState("state", NewDiscreteDistributionFrom(map[string]float64{"C": 0.4}))
	if emitting.IsSilent() {
		t.Error("state with positive mass should not be silent")
	}
}

func TestStateOwnsDistributionCopy(t *testing.T) {
	dist := NewDiscreteDistributionFrom(map[string]float64{"A": 0.5})
	s := NewEmittingState("s", dist)
	dist.Set("A", 0.9)
	own, err := s.Distribution()
	if err != nil {
		t.Fatal(err)
	}
	if own.Get("A") != 0.5 {
		t.Error("state should own a copy of the distribution")
	}
}

func TestStateEqualityByName(t *testing.T) {
	s1 := NewState("state")
	s2 := NewEmittingState("state", NewDiscreteDistributionFrom(map[string]float64{"A": 1}))
	if !s1.Equal(s2) {
		t.Error("states with equal names are equal regardless of distribution")
	}
	s3 := NewState("other")
	if s1.Equal(s3) {
		t.Error("states with different names are not equal")
	}
}

func TestStateFreeFlags(t *testing.T) {
	s := NewState("s")
	if !s.FreeTransition() || !s.FreeEmission() {
		t.Error("free flags should default to true")
	}
	s.SetFreeTransition(false)
	s.SetFreeEmission(false)
	if s.FreeTransition() || s.FreeEmission() {
		t.Error("free flags should be settable")
	}
}
