package model

import (
	"encoding/json"
	"fmt"
	"math"

	"NewsVerdict/internal/domain"
	"NewsVerdict/internal/ports"
)

// LinearModel is a fitted binary linear classifier (LinearSVC,
// PassiveAggressiveClassifier, ...). It predicts classes[1] when the
// decision function is positive.
type LinearModel struct {
	coef      []float64
	intercept float64
}

// LogisticRegression is a LinearModel whose decision function is calibrated
// through the logistic function.
type LogisticRegression struct {
	LinearModel
}

var (
	_ ports.Classifier           = (*LinearModel)(nil)
	_ ports.Classifier           = (*LogisticRegression)(nil)
	_ ports.ProbabilityEstimator = (*LogisticRegression)(nil)
)

type linearArtifact struct {
	header
	Classes   []int       `json:"classes"`
	Coef      [][]float64 `json:"coef"`
	Intercept []float64   `json:"intercept"`
}

// DecodeLinear builds a decision-function-only linear classifier.
func DecodeLinear(raw []byte) (ports.Classifier, error) {
	m, err := decodeLinearModel(raw)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// DecodeLogisticRegression builds a linear classifier with probabilities.
func DecodeLogisticRegression(raw []byte) (ports.Classifier, error) {
	m, err := decodeLinearModel(raw)
	if err != nil {
		return nil, err
	}
	return &LogisticRegression{LinearModel: *m}, nil
}

func decodeLinearModel(raw []byte) (*LinearModel, error) {
	var art linearArtifact
	if err := json.Unmarshal(raw, &art); err != nil {
		return nil, fmt.Errorf("decode linear model: %w", err)
	}

	if err := checkBinaryClasses(art.Classes); err != nil {
		return nil, err
	}
	if len(art.Coef) != 1 || len(art.Coef[0]) == 0 {
		return nil, fmt.Errorf("binary linear model needs exactly one non-empty coef row, got %d", len(art.Coef))
	}
	if len(art.Intercept) != 1 {
		return nil, fmt.Errorf("binary linear model needs one intercept, got %d", len(art.Intercept))
	}

	return &LinearModel{coef: art.Coef[0], intercept: art.Intercept[0]}, nil
}

// InputDimension is the number of coefficients.
func (m *LinearModel) InputDimension() int {
	return len(m.coef)
}

// DecisionFunction returns w·x + b.
func (m *LinearModel) DecisionFunction(x domain.FeatureVector) (float64, error) {
	if x.Dim != len(m.coef) {
		return 0, fmt.Errorf("%w: got %d features, model expects %d", domain.ErrFeatureMismatch, x.Dim, len(m.coef))
	}

	score := m.intercept
	for i, idx := range x.Indices {
		if idx < 0 || idx >= len(m.coef) {
			return 0, fmt.Errorf("%w: feature index %d out of range", domain.ErrFeatureMismatch, idx)
		}
		score += m.coef[idx] * x.Values[i]
	}
	return score, nil
}

// Predict returns 1 when the decision function is positive, else 0.
func (m *LinearModel) Predict(x domain.FeatureVector) (int, error) {
	score, err := m.DecisionFunction(x)
	if err != nil {
		return 0, err
	}
	if score > 0 {
		return 1, nil
	}
	return 0, nil
}

// PredictProba returns [P(fake), P(real)].
func (m *LogisticRegression) PredictProba(x domain.FeatureVector) ([]float64, error) {
	score, err := m.DecisionFunction(x)
	if err != nil {
		return nil, err
	}
	p := sigmoid(score)
	return []float64{1 - p, p}, nil
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

func checkBinaryClasses(classes []int) error {
	if len(classes) == 0 {
		return nil
	}
	if len(classes) != 2 || classes[0] != 0 || classes[1] != 1 {
		return fmt.Errorf("classes must be [0 1], got %v", classes)
	}
	return nil
}
