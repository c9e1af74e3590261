// Package botdetect extracts behavioral features from a wallet's transaction
// window and scores the bot probability with a trained classifier.
package botdetect

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"solana-wallet-profiler/internal/domain"
)

// ErrMissingFeature is returned when the extracted feature map does not cover
// the full canonical feature list.
var ErrMissingFeature = errors.New("missing feature")

// SystemProgram is the well-known system program identifier used for the
// interaction-ratio feature.
const SystemProgram = "11111111111111111111111111111111"

// ExtractFeatures computes the behavioral feature map over a transaction
// window. Transactions are expected in fetch order (newest first), matching
// how the classifier was trained. Statistics over an empty or single-element
// window default to 0.
func ExtractFeatures(txs []*domain.RawTransaction) map[string]float64 {
	features := map[string]float64{
		"total_transactions": float64(len(txs)),
	}

	fees := make([]float64, 0, len(txs))
	times := make([]float64, 0, len(txs))
	slots := make([]float64, 0, len(txs))
	instructionCounts := make([]float64, 0, len(txs))
	signatures := make([]string, 0, len(txs))
	accountTimes := make(map[string][]float64)
	totalAccountOccurrences := 0
	systemProgramTxs := 0

	for _, tx := range txs {
		fees = append(fees, float64(tx.Fee))
		times = append(times, float64(tx.BlockTime))
		slots = append(slots, float64(tx.Slot))
		instructionCounts = append(instructionCounts, float64(len(tx.Instructions)))
		if len(tx.Signatures) > 0 {
			signatures = append(signatures, tx.Signatures...)
		} else {
			signatures = append(signatures, tx.Signature)
		}

		touchesSystem := false
		for _, account := range tx.AccountKeys {
			accountTimes[account] = append(accountTimes[account], float64(tx.BlockTime))
			totalAccountOccurrences++
			if account == SystemProgram {
				touchesSystem = true
			}
		}
		if touchesSystem {
			systemProgramTxs++
		}
	}

	features["avg_fee"] = mean(fees)
	features["std_fee"] = populationStd(fees)

	deltas := interDeltas(times)
	features["avg_time_between_tx"] = mean(deltas)
	features["time_variance"] = populationStd(deltas)

	features["avg_time_between_account_tx"] = avgAccountInterval(accountTimes)
	features["unique_accounts_count"] = float64(len(accountTimes))
	if totalAccountOccurrences > 0 {
		features["account_diversity_score"] = float64(len(accountTimes)) / float64(totalAccountOccurrences)
	} else {
		features["account_diversity_score"] = 0
	}

	features["avg_instructions_per_tx"] = mean(instructionCounts)
	features["instruction_complexity_score"] = populationStd(instructionCounts)

	if len(txs) > 0 {
		features["system_program_interaction_ratio"] = float64(systemProgramTxs) / float64(len(txs))
	} else {
		features["system_program_interaction_ratio"] = 0
	}

	features["signature_entropy"] = shannonEntropy(signatures)
	features["slot_variation"] = populationStd(slots)

	return features
}

// BuildVector orders a feature map by the canonical feature list. All
// canonical names must be present.
func BuildVector(features map[string]float64) (domain.FeatureVector, error) {
	values := make([]float64, len(domain.FeatureNames))
	for i, name := range domain.FeatureNames {
		v, ok := features[name]
		if !ok {
			return domain.FeatureVector{}, fmt.Errorf("%w: %s", ErrMissingFeature, name)
		}
		values[i] = v
	}
	return domain.FeatureVector{Names: domain.FeatureNames, Values: values}, nil
}

// avgAccountInterval is the mean over all accounts appearing in at least two
// transactions of that account's own mean inter-transaction time.
func avgAccountInterval(accountTimes map[string][]float64) float64 {
	var perAccountMeans []float64
	for _, times := range accountTimes {
		if len(times) < 2 {
			continue
		}
		sorted := make([]float64, len(times))
		copy(sorted, times)
		sort.Float64s(sorted)
		perAccountMeans = append(perAccountMeans, mean(interDeltas(sorted)))
	}
	return mean(perAccountMeans)
}

// interDeltas returns the signed pairwise gaps between consecutive values.
// Over a newest-first window the time deltas are negative; the classifier was
// trained on that convention, so the sign is preserved.
func interDeltas(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	deltas := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		deltas = append(deltas, values[i]-values[i-1])
	}
	return deltas
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// populationStd is the population standard deviation (divisor n, not n-1).
func populationStd(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var sum float64
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

// shannonEntropy computes base-2 Shannon entropy over the multiset of values.
func shannonEntropy(values []string) float64 {
	if len(values) == 0 {
		return 0
	}
	counts := make(map[string]int, len(values))
	for _, v := range values {
		counts[v]++
	}
	n := float64(len(values))
	var entropy float64
	for _, c := range counts {
		p := float64(c) / n
		entropy -= p * math.Log2(p)
	}
	return entropy
}
