package botdetect

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"solana-wallet-profiler/internal/domain"
)

func writeModel(t *testing.T, m LogisticModel) string {
	t.Helper()
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal model: %v", err)
	}
	path := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write model: %v", err)
	}
	return path
}

func zeroModel() LogisticModel {
	n := len(domain.FeatureNames)
	return LogisticModel{
		Names:   domain.FeatureNames,
		Weights: make([]float64, n),
		Means:   make([]float64, n),
		Stds:    ones(n),
	}
}

func ones(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = 1
	}
	return s
}

func TestLoadModel_RoundTrip(t *testing.T) {
	m := zeroModel()
	m.Intercept = 2

	loaded, err := LoadModel(writeModel(t, m))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fv, err := BuildVector(ExtractFeatures(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	score, err := loaded.Score(fv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := 1 / (1 + math.Exp(-2.0))
	if math.Abs(score-want) > 1e-12 {
		t.Errorf("expected sigmoid(2)=%v, got %v", want, score)
	}
}

func TestLoadModel_RejectsShiftedFeatureOrder(t *testing.T) {
	m := zeroModel()
	m.Names = append([]string{}, domain.FeatureNames...)
	m.Names[0], m.Names[1] = m.Names[1], m.Names[0]

	if _, err := LoadModel(writeModel(t, m)); err == nil {
		t.Error("expected error for shifted feature order")
	}
}

func TestLoadModel_RejectsLengthMismatch(t *testing.T) {
	m := zeroModel()
	m.Weights = m.Weights[:5]

	if _, err := LoadModel(writeModel(t, m)); err == nil {
		t.Error("expected error for weight length mismatch")
	}
}

func TestLoadModel_MissingFile(t *testing.T) {
	if _, err := LoadModel(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("expected error for missing model file")
	}
}

func TestScore_ZeroStdTreatedAsUnit(t *testing.T) {
	m := zeroModel()
	m.Weights[0] = 1
	m.Stds[0] = 0 // degenerate training column

	fv, err := BuildVector(ExtractFeatures(makeWindow(2)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	score, err := m.Score(fv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.IsNaN(score) || math.IsInf(score, 0) {
		t.Errorf("score must stay finite with zero std, got %v", score)
	}
}
