package hmmlib

import (
	"errors"
	"testing"
)

func TestModelBeginEnd(t *testing.T) {
	m := NewModel("m")
	begin, err := m.Begin()
	if err != nil {
		t.Fatal(err)
	}
	if begin.Name() != "begin_m" {
		t.Errorf("begin name = %s", begin.Name())
	}
	end, err := m.End()
	if err != nil {
		t.Fatal(err)
	}
	if end.Name() != "end_m" {
		t.Errorf("end name = %s", end.Name())
	}
	if !m.HasState("begin_m") || !m.HasState("end_m") {
		t.Error("begin and end states should be in the model")
	}

	if err := m.RemoveState("begin_m"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Begin(); !errors.Is(err, ErrNoBeginState) {
		t.Errorf("Begin after removal = %v, want ErrNoBeginState", err)
	}
}

func TestModelAddRemoveState(t *testing.T) {
	m := NewModel("m")
	s := NewState("s")
	if m.HasState("s") {
		t.Error("s not added yet")
	}
	if err := m.AddState(s); err != nil {
		t.Fatal(err)
	}
	if !m.HasState("s") {
		t.Error("s should be present")
	}
	if err := m.AddState(NewState("s")); !errors.Is(err, ErrStateExists) {
		t.Errorf("duplicate AddState = %v, want ErrStateExists", err)
	}
	got, err := m.GetState("s")
	if err != nil || !got.Equal(s) {
		t.Errorf("GetState = %v, %v", got, err)
	}
	if err := m.RemoveState("s"); err != nil {
		t.Fatal(err)
	}
	if err := m.RemoveState("s"); !errors.Is(err, ErrStateNotFound) {
		t.Errorf("RemoveState = %v, want ErrStateNotFound", err)
	}
}

func TestModelAddRemoveTransition(t *testing.T) {
	m := NewModel("m")
	m.AddState(NewState("s1"))
	if err := m.AddTransition("s1", "s2", 0.3); !errors.Is(err, ErrStateNotFound) {
		t.Errorf("AddTransition to missing state = %v, want ErrStateNotFound", err)
	}
	m.AddState(NewState("s2"))
	if err := m.AddTransition("s1", "s2", 0.3); err != nil {
		t.Fatal(err)
	}
	if !m.HasTransition("s1", "s2") || m.HasTransition("s2", "s1") {
		t.Error("transition direction wrong")
	}
	if err := m.AddTransition("s1", "s2", 0.3); !errors.Is(err, ErrTransitionExists) {
		t.Errorf("duplicate AddTransition = %v, want ErrTransitionExists", err)
	}
	w, err := m.GetTransition("s1", "s2")
	if err != nil || w != 0.3 {
		t.Errorf("GetTransition = %v, %v", w, err)
	}
	if err := m.SetTransition("s1", "s2", 0.6); err != nil {
		t.Fatal(err)
	}
	w, _ = m.GetTransition("s1", "s2")
	if w != 0.6 {
		t.Errorf("weight after SetTransition = %v", w)
	}
	if err := m.RemoveTransition("s1", "s2"); err != nil {
		t.Fatal(err)
	}
	if err := m.RemoveTransition("s1", "s2"); !errors.Is(err, ErrTransitionNotFound) {
		t.Errorf("RemoveTransition = %v, want ErrTransitionNotFound", err)
	}

	// Removing a state removes its transitions.
	m.AddTransition("s1", "s2", 0.3)
	m.RemoveState("s1")
	if m.HasTransition("s1", "s2") {
		t.Error("transitions of a removed state should be gone")
	}
}

func TestModelTransitionLogic(t *testing.T) {
	m := NewModel("m")
	m.AddState(NewState("s"))
	if err := m.AddTransition("end_m", "s", 0.5); !errors.Is(err, ErrTransitionLogic) {
		t.Errorf("transition from end = %v, want ErrTransitionLogic", err)
	}
	if err := m.AddTransition("s", "begin_m", 0.5); !errors.Is(err, ErrTransitionLogic) {
		t.Errorf("transition to begin = %v, want ErrTransitionLogic", err)
	}
	if err := m.AddTransition("s", "s", -0.1); !errors.Is(err, ErrTransitionLogic) {
		t.Errorf("negative weight = %v, want ErrTransitionLogic", err)
	}
}

func TestModelBeginEndTransitionSugar(t *testing.T) {
	m := NewModel("m")
	m.AddState(NewState("s1"))
	m.AddState(NewState("s2"))
	if err := m.BeginTransition("s1", 0.4); err != nil {
		t.Fatal(err)
	}
	if !m.HasTransition("begin_m", "s1") {
		t.Error("BeginTransition should add an edge from begin")
	}
	if err := m.EndTransition("s2", 0.5); err != nil {
		t.Fatal(err)
	}
	if !m.HasTransition("s2", "end_m") {
		t.Error("EndTransition should add an edge to end")
	}
}

func TestModelCounters(t *testing.T) {
	m := NewModel("m")
	if m.NumStates() != 2 {
		t.Errorf("NumStates = %d, want 2", m.NumStates())
	}
	m.AddState(NewState("s"))
	m.BeginTransition("s", 1)
	if m.NumStates() != 3 || m.NumTransitions() != 1 {
		t.Errorf("NumStates = %d, NumTransitions = %d", m.NumStates(), m.NumTransitions())
	}
}

func TestModelNotCompiled(t *testing.T) {
	m := NewModel("m")
	dist := NewDiscreteDistributionFrom(map[string]float64{"a": 1})
	m.AddState(NewEmittingState("s", dist))
	m.BeginTransition("s", 1)
	m.AddTransition("s", "s", 1)

	if _, err := m.Forward([]string{"a"}, 0); !errors.Is(err, ErrNotCompiled) {
		t.Errorf("Forward before Compile = %v, want ErrNotCompiled", err)
	}
	if err := m.Compile(true); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Forward([]string{"a"}, 0); err != nil {
		t.Errorf("Forward after Compile = %v", err)
	}

	// A structural mutation invalidates the compiled form.
	m.SetTransition("s", "s", 0.5)
	if _, err := m.Forward([]string{"a"}, 0); !errors.Is(err, ErrNotCompiled) {
		t.Errorf("Forward after mutation = %v, want ErrNotCompiled", err)
	}
}
