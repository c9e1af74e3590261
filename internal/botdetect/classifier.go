package botdetect

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"solana-wallet-profiler/internal/domain"
)

// Classifier scores a feature vector as a bot probability in [0,1].
type Classifier interface {
	Score(fv domain.FeatureVector) (float64, error)
}

// LogisticModel is a logistic-regression classifier loaded from a JSON model
// file exported at training time. Inputs are standardized with the training
// means and deviations before scoring.
type LogisticModel struct {
	Names     []string  `json:"features"`
	Weights   []float64 `json:"weights"`
	Intercept float64   `json:"intercept"`
	Means     []float64 `json:"feature_means"`
	Stds      []float64 `json:"feature_stds"`
}

var _ Classifier = (*LogisticModel)(nil)

// LoadModel reads and validates a model file. Any error leaves the caller in
// degraded mode (no classifier) rather than failing the run.
func LoadModel(path string) (*LogisticModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model %s: %w", path, err)
	}

	var m LogisticModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode model %s: %w", path, err)
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("model %s: %w", path, err)
	}
	return &m, nil
}

func (m *LogisticModel) validate() error {
	n := len(domain.FeatureNames)
	if len(m.Names) != n {
		return fmt.Errorf("expected %d features, model has %d", n, len(m.Names))
	}
	for i, name := range domain.FeatureNames {
		if m.Names[i] != name {
			return fmt.Errorf("feature %d: expected %s, model has %s", i, name, m.Names[i])
		}
	}
	if len(m.Weights) != n || len(m.Means) != n || len(m.Stds) != n {
		return fmt.Errorf("weights/means/stds must all have length %d", n)
	}
	return nil
}

// Score computes sigmoid(intercept + w · standardize(x)).
func (m *LogisticModel) Score(fv domain.FeatureVector) (float64, error) {
	if len(fv.Values) != len(m.Weights) {
		return 0, fmt.Errorf("feature vector has %d values, model expects %d", len(fv.Values), len(m.Weights))
	}

	z := m.Intercept
	for i, v := range fv.Values {
		std := m.Stds[i]
		if std <= 0 {
			std = 1
		}
		z += m.Weights[i] * ((v - m.Means[i]) / std)
	}
	return 1 / (1 + math.Exp(-z)), nil
}
