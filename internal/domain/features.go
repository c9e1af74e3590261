package domain

// FeatureNames is the canonical feature order consumed by the classifier.
// The trained model was fitted against exactly this list; extraction fails
// hard if any name is missing rather than silently feeding a shifted vector.
var FeatureNames = []string{
	"total_transactions",
	"avg_fee",
	"std_fee",
	"avg_time_between_tx",
	"time_variance",
	"avg_time_between_account_tx",
	"unique_accounts_count",
	"account_diversity_score",
	"avg_instructions_per_tx",
	"instruction_complexity_score",
	"system_program_interaction_ratio",
	"signature_entropy",
	"slot_variation",
}

// FeatureVector is a fixed-order numeric summary of a transaction window.
// Values are ordered exactly as FeatureNames.
type FeatureVector struct {
	Names  []string
	Values []float64
}

// Get returns the value for a feature name, or (0, false) if absent.
func (fv FeatureVector) Get(name string) (float64, bool) {
	for i, n := range fv.Names {
		if n == name {
			return fv.Values[i], true
		}
	}
	return 0, false
}
