package hmmlib

import (
	"os"
	"path/filepath"
	"testing"
)

// savedModel builds a model mixing emitting, fixed-emission and silent
// states, with begin and end transitions.
func savedModel() *Model {
	m := NewModel("profile")
	match := NewEmittingState("M1", NewDiscreteDistributionFrom(map[string]float64{"A": 0.7, "C": 0.3}))
	insert := NewEmittingState("I1", NewDiscreteDistributionFrom(map[string]float64{"A": 0.25, "C": 0.25, "G": 0.25, "T": 0.25}))
	insert.SetFreeEmission(false)
	insert.SetFreeTransition(false)
	del := NewState("D1")
	m.AddState(match)
	m.AddState(insert)
	m.AddState(del)
	m.BeginTransition("M1", 0.8)
	m.BeginTransition("D1", 0.2)
	m.AddTransition("M1", "I1", 0.4)
	m.AddTransition("I1", "I1", 0.3)
	m.AddTransition("D1", "I1", 1)
	m.EndTransition("M1", 0.6)
	m.EndTransition("I1", 0.7)
	m.SetAlgorithm(TrainViterbi)
	return m
}

func TestSaveLoadRoundTrip(t *testing.T) {
	m := savedModel()
	dir := t.TempDir()
	if err := m.Save(filepath.Join(dir, "profile"), "hmm"); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(filepath.Join(dir, "profile"), "hmm")
	if err != nil {
		t.Fatal(err)
	}

	if loaded.Name() != m.Name() {
		t.Errorf("name = %q, want %q", loaded.Name(), m.Name())
	}
	if loaded.Algorithm() != TrainViterbi {
		t.Errorf("algorithm = %v, want viterbi", loaded.Algorithm())
	}
	if loaded.NumStates() != m.NumStates() || loaded.NumTransitions() != m.NumTransitions() {
		t.Errorf("counts = %d states, %d transitions; want %d, %d",
			loaded.NumStates(), loaded.NumTransitions(), m.NumStates(), m.NumTransitions())
	}

	begin, err := loaded.Begin()
	if err != nil || begin.Name() != "begin_profile" {
		t.Errorf("begin = %v, %v", begin, err)
	}
	end, err := loaded.End()
	if err != nil || end.Name() != "end_profile" {
		t.Errorf("end = %v, %v", end, err)
	}

	for _, orig := range m.States() {
		got, err := loaded.GetState(orig.Name())
		if err != nil {
			t.Fatalf("state %s missing after load", orig.Name())
		}
		if got.FreeTransition() != orig.FreeTransition() || got.FreeEmission() != orig.FreeEmission() {
			t.Errorf("state %s free flags differ", orig.Name())
		}
		if got.IsSilent() != orig.IsSilent() {
			t.Errorf("state %s silence differs", orig.Name())
		}
		if !orig.IsSilent() {
			origDist, _ := orig.Distribution()
			gotDist, _ := got.Distribution()
			if !origDist.Equal(gotDist) {
				t.Errorf("state %s distribution differs: %v vs %v", orig.Name(), origDist.probs, gotDist.probs)
			}
		}
	}

	for _, from := range m.States() {
		for _, to := range m.States() {
			if !m.HasTransition(from.Name(), to.Name()) {
				if loaded.HasTransition(from.Name(), to.Name()) {
					t.Errorf("extra transition %s -> %s", from.Name(), to.Name())
				}
				continue
			}
			w, _ := m.GetTransition(from.Name(), to.Name())
			got, err := loaded.GetTransition(from.Name(), to.Name())
			if err != nil || got != w {
				t.Errorf("transition %s -> %s = %v, want %v", from.Name(), to.Name(), got, w)
			}
		}
	}
}

func TestSaveLoadSaveBitStable(t *testing.T) {
	m := savedModel()
	dir := t.TempDir()
	first := filepath.Join(dir, "first.hmm")
	second := filepath.Join(dir, "second.hmm")
	if err := m.Save(first, ""); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(first, "")
	if err != nil {
		t.Fatal(err)
	}
	if err := loaded.Save(second, ""); err != nil {
		t.Fatal(err)
	}

	a, err := os.ReadFile(first)
	if err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(second)
	if err != nil {
		t.Fatal(err)
	}
	if string(a) != string(b) {
		t.Errorf("save/load/save not bit-stable:\n%s\nvs\n%s", a, b)
	}
}

func TestLoadedModelCompiles(t *testing.T) {
	m := savedModel()
	dir := t.TempDir()
	path := filepath.Join(dir, "model.hmm")
	if err := m.Save(path, ""); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path, "")
	if err != nil {
		t.Fatal(err)
	}
	if err := loaded.Compile(true); err != nil {
		t.Fatal(err)
	}
	if err := m.Compile(true); err != nil {
		t.Fatal(err)
	}
	ll1, err := m.LogLikelihood([]string{"A", "C"}, true)
	if err != nil {
		t.Fatal(err)
	}
	ll2, err := loaded.LogLikelihood([]string{"A", "C"}, true)
	if err != nil {
		t.Fatal(err)
	}
	if diff := ll1 - ll2; diff > 1e-12 || diff < -1e-12 {
		t.Errorf("likelihood differs after round trip: %v vs %v", ll1, ll2)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope"), "hmm"); err == nil {
		t.Error("loading a missing file should fail")
	}
}
