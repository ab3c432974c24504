package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Train.Algorithm != "baum-welch" {
		t.Errorf("Algorithm = %q, want baum-welch", cfg.Train.Algorithm)
	}
	if cfg.Train.MaxIterations != 500 {
		t.Errorf("MaxIterations = %d, want 500", cfg.Train.MaxIterations)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	content := `train:
  algorithm: viterbi
  pseudocount: 1.5
  max_iterations: 50
data:
  sequence_file: seqs.txt
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Train.Algorithm != "viterbi" {
		t.Errorf("Algorithm = %q, want viterbi", cfg.Train.Algorithm)
	}
	if cfg.Train.Pseudocount != 1.5 {
		t.Errorf("Pseudocount = %v, want 1.5", cfg.Train.Pseudocount)
	}
	if cfg.Train.MaxIterations != 50 {
		t.Errorf("MaxIterations = %d, want 50", cfg.Train.MaxIterations)
	}
	// Unset fields keep their defaults.
	if cfg.Train.MinIterations != 2 {
		t.Errorf("MinIterations = %d, want default 2", cfg.Train.MinIterations)
	}
	if cfg.Data.SequenceFile != "seqs.txt" {
		t.Errorf("SequenceFile = %q", cfg.Data.SequenceFile)
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault("")
	if err != nil || cfg.Train.Algorithm != "baum-welch" {
		t.Errorf("empty path should yield defaults, got %v, %v", cfg, err)
	}
	cfg, err = LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil || cfg.Train.MaxIterations != 500 {
		t.Errorf("missing file should yield defaults, got %v, %v", cfg, err)
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("train: ["), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("malformed YAML should fail")
	}
}
