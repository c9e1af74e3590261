package botdetect

import (
	"fmt"
	"math"
	"testing"

	"solana-wallet-profiler/internal/domain"
)

func TestShannonEntropy(t *testing.T) {
	// Five identical signatures: one outcome, zero bits.
	if e := shannonEntropy([]string{"a", "a", "a", "a", "a"}); e != 0 {
		t.Errorf("expected 0 entropy for identical values, got %v", e)
	}

	// Four distinct signatures: uniform over 4 outcomes, 2 bits.
	if e := shannonEntropy([]string{"a", "b", "c", "d"}); math.Abs(e-2.0) > 1e-12 {
		t.Errorf("expected 2.0 bits for 4 distinct values, got %v", e)
	}

	if e := shannonEntropy(nil); e != 0 {
		t.Errorf("expected 0 entropy for empty input, got %v", e)
	}
}

func TestPopulationStd(t *testing.T) {
	// Population std of {2, 4}: mean 3, variance ((−1)²+1²)/2 = 1.
	if s := populationStd([]float64{2, 4}); s != 1 {
		t.Errorf("expected population std 1, got %v", s)
	}
	if s := populationStd([]float64{5}); s != 0 {
		t.Errorf("expected 0 for single element, got %v", s)
	}
}

func TestExtractFeatures_EmptyWindow(t *testing.T) {
	features := ExtractFeatures(nil)
	for _, name := range domain.FeatureNames {
		v, ok := features[name]
		if !ok {
			t.Errorf("feature %s missing for empty window", name)
			continue
		}
		if v != 0 {
			t.Errorf("feature %s should be 0 for empty window, got %v", name, v)
		}
	}
}

func TestExtractFeatures_SingleTransaction(t *testing.T) {
	tx := &domain.RawTransaction{
		Signature:    "sig1",
		Slot:         1000,
		BlockTime:    1700000000,
		Fee:          5000,
		Instructions: []domain.Instruction{{ProgramID: "p1"}, {ProgramID: "p2"}},
		AccountKeys:  []string{"acct1", SystemProgram},
	}

	features := ExtractFeatures([]*domain.RawTransaction{tx})

	for _, name := range domain.FeatureNames {
		v, ok := features[name]
		if !ok {
			t.Fatalf("feature %s missing", name)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("feature %s is not finite: %v", name, v)
		}
	}

	if features["total_transactions"] != 1 {
		t.Errorf("expected total_transactions 1, got %v", features["total_transactions"])
	}
	if features["avg_fee"] != 5000 {
		t.Errorf("expected avg_fee 5000, got %v", features["avg_fee"])
	}
	if features["avg_instructions_per_tx"] != 2 {
		t.Errorf("expected avg_instructions_per_tx 2, got %v", features["avg_instructions_per_tx"])
	}
	if features["system_program_interaction_ratio"] != 1 {
		t.Errorf("expected ratio 1, got %v", features["system_program_interaction_ratio"])
	}
	if features["unique_accounts_count"] != 2 {
		t.Errorf("expected 2 unique accounts, got %v", features["unique_accounts_count"])
	}
	// Single transaction: no inter-transaction statistics.
	if features["avg_time_between_tx"] != 0 || features["time_variance"] != 0 {
		t.Error("expected zero time statistics for single transaction")
	}
}

func TestExtractFeatures_AccountDiversity(t *testing.T) {
	txs := []*domain.RawTransaction{
		{Signature: "s1", BlockTime: 1700000200, AccountKeys: []string{"a", "b"}},
		{Signature: "s2", BlockTime: 1700000100, AccountKeys: []string{"a", "c"}},
		{Signature: "s3", BlockTime: 1700000000, AccountKeys: []string{"a", "d"}},
	}

	features := ExtractFeatures(txs)

	// 4 unique accounts over 6 occurrences.
	want := 4.0 / 6.0
	if math.Abs(features["account_diversity_score"]-want) > 1e-12 {
		t.Errorf("expected diversity %v, got %v", want, features["account_diversity_score"])
	}

	// Account "a" appears in all three with 100s gaps.
	if features["avg_time_between_account_tx"] != 100 {
		t.Errorf("expected avg account interval 100, got %v", features["avg_time_between_account_tx"])
	}
}

func TestExtractFeatures_SignedTimeDeltas(t *testing.T) {
	// Fetch order is newest first, so consecutive block-time deltas are
	// negative and the mean must stay negative.
	txs := []*domain.RawTransaction{
		{Signature: "s1", BlockTime: 1700000300},
		{Signature: "s2", BlockTime: 1700000200},
		{Signature: "s3", BlockTime: 1700000000},
	}

	features := ExtractFeatures(txs)

	if features["avg_time_between_tx"] != -150 {
		t.Errorf("expected avg_time_between_tx -150, got %v", features["avg_time_between_tx"])
	}
}

func TestExtractFeatures_EntropyCoversAllSignatures(t *testing.T) {
	// Multi-signed transactions contribute every signature to the multiset.
	txs := []*domain.RawTransaction{
		{Signature: "a", Signatures: []string{"a", "b"}, BlockTime: 1700000100},
		{Signature: "c", Signatures: []string{"c", "d"}, BlockTime: 1700000000},
	}

	features := ExtractFeatures(txs)

	// Four distinct signatures, uniform: 2 bits.
	if math.Abs(features["signature_entropy"]-2.0) > 1e-12 {
		t.Errorf("expected entropy 2.0 over flattened signatures, got %v", features["signature_entropy"])
	}

	// Without the list the single signature field is used.
	bare := ExtractFeatures([]*domain.RawTransaction{
		{Signature: "a", BlockTime: 1700000100},
		{Signature: "b", BlockTime: 1700000000},
	})
	if math.Abs(bare["signature_entropy"]-1.0) > 1e-12 {
		t.Errorf("expected entropy 1.0 over bare signatures, got %v", bare["signature_entropy"])
	}
}

func TestBuildVector_FailsOnMissingFeature(t *testing.T) {
	features := ExtractFeatures(nil)
	delete(features, "signature_entropy")

	if _, err := BuildVector(features); err == nil {
		t.Error("expected error for missing feature")
	}
}

func TestBuildVector_CanonicalOrder(t *testing.T) {
	features := make(map[string]float64, len(domain.FeatureNames))
	for i, name := range domain.FeatureNames {
		features[name] = float64(i)
	}

	fv, err := BuildVector(features)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, v := range fv.Values {
		if v != float64(i) {
			t.Errorf("position %d: expected %d, got %v", i, i, v)
		}
	}
}

func makeWindow(n int) []*domain.RawTransaction {
	txs := make([]*domain.RawTransaction, n)
	for i := range txs {
		txs[i] = &domain.RawTransaction{
			Signature: fmt.Sprintf("sig%d", i),
			Slot:      int64(1000 + i),
			BlockTime: int64(1700000000 - i*60),
			Fee:       5000,
		}
	}
	return txs
}

// constClassifier always returns the same score.
type constClassifier struct{ score float64 }

func (c constClassifier) Score(_ domain.FeatureVector) (float64, error) { return c.score, nil }

func TestPipeline_EarlyStop(t *testing.T) {
	p := NewPipeline(constClassifier{score: 0.96}, 0.75, 3, nil)

	for i, tx := range makeWindow(3) {
		halted, err := p.Add(tx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if i < 2 && halted {
			t.Fatalf("halted before early-detection count at tx %d", i)
		}
		if i == 2 && !halted {
			t.Fatal("expected halt at early-detection count")
		}
	}

	if p.State() != StateEarlyStopped {
		t.Errorf("expected EarlyStopped, got %v", p.State())
	}
	prob, err := p.Finish()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prob != 0.96 {
		t.Errorf("expected early score preserved, got %v", prob)
	}
}

func TestPipeline_CompletesBelowThreshold(t *testing.T) {
	p := NewPipeline(constClassifier{score: 0.4}, 0.75, 3, nil)

	for _, tx := range makeWindow(5) {
		halted, err := p.Add(tx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if halted {
			t.Fatal("must not halt below threshold")
		}
	}

	prob, err := p.Finish()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prob != 0.4 {
		t.Errorf("expected 0.4, got %v", prob)
	}
	if p.State() != StateCompleted {
		t.Errorf("expected Completed, got %v", p.State())
	}
}

func TestPipeline_EmptyWindowScoresZero(t *testing.T) {
	// A wallet with no transactions carries no behavioral signal; the
	// classifier must not be consulted on an empty window.
	p := NewPipeline(constClassifier{score: 0.9}, 0.75, 3, nil)

	prob, err := p.Finish()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prob != 0 {
		t.Errorf("expected probability 0 for empty window, got %v", prob)
	}
	if p.State() != StateCompleted {
		t.Errorf("expected Completed, got %v", p.State())
	}
}

func TestPipeline_DegradedModeWithoutClassifier(t *testing.T) {
	p := NewPipeline(nil, 0.75, 3, nil)

	for _, tx := range makeWindow(5) {
		halted, err := p.Add(tx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if halted {
			t.Fatal("degraded mode must never trigger early detection")
		}
	}

	prob, err := p.Finish()
	if err != nil {
		t.Fatalf("degraded mode is not an error: %v", err)
	}
	if prob != 0 {
		t.Errorf("expected probability 0 in degraded mode, got %v", prob)
	}
}
