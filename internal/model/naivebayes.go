package model

import (
	"encoding/json"
	"fmt"
	"math"

	"NewsVerdict/internal/domain"
	"NewsVerdict/internal/ports"
)

// MultinomialNB is a fitted two-class multinomial naive Bayes model.
type MultinomialNB struct {
	classLogPrior  [2]float64
	featureLogProb [2][]float64
}

var (
	_ ports.Classifier           = (*MultinomialNB)(nil)
	_ ports.ProbabilityEstimator = (*MultinomialNB)(nil)
)

type naiveBayesArtifact struct {
	header
	Classes        []int       `json:"classes"`
	ClassLogPrior  []float64   `json:"class_log_prior"`
	FeatureLogProb [][]float64 `json:"feature_log_prob"`
}

// DecodeMultinomialNB builds a naive Bayes classifier.
func DecodeMultinomialNB(raw []byte) (ports.Classifier, error) {
	var art naiveBayesArtifact
	if err := json.Unmarshal(raw, &art); err != nil {
		return nil, fmt.Errorf("decode naive bayes: %w", err)
	}

	if err := checkBinaryClasses(art.Classes); err != nil {
		return nil, err
	}
	if len(art.ClassLogPrior) != 2 || len(art.FeatureLogProb) != 2 {
		return nil, fmt.Errorf("naive bayes needs two class priors and two feature rows")
	}
	if len(art.FeatureLogProb[0]) == 0 || len(art.FeatureLogProb[0]) != len(art.FeatureLogProb[1]) {
		return nil, fmt.Errorf("feature_log_prob rows must be non-empty and equally long")
	}

	nb := &MultinomialNB{}
	copy(nb.classLogPrior[:], art.ClassLogPrior)
	nb.featureLogProb[0] = art.FeatureLogProb[0]
	nb.featureLogProb[1] = art.FeatureLogProb[1]
	return nb, nil
}

// InputDimension is the number of features per class row.
func (nb *MultinomialNB) InputDimension() int {
	return len(nb.featureLogProb[0])
}

func (nb *MultinomialNB) jointLogLikelihood(x domain.FeatureVector) ([2]float64, error) {
	var jll [2]float64
	if x.Dim != nb.InputDimension() {
		return jll, fmt.Errorf("%w: got %d features, model expects %d", domain.ErrFeatureMismatch, x.Dim, nb.InputDimension())
	}

	for c := range jll {
		jll[c] = nb.classLogPrior[c]
		for i, idx := range x.Indices {
			if idx < 0 || idx >= x.Dim {
				return jll, fmt.Errorf("%w: feature index %d out of range", domain.ErrFeatureMismatch, idx)
			}
			jll[c] += x.Values[i] * nb.featureLogProb[c][idx]
		}
	}
	return jll, nil
}

// Predict returns the class with the highest joint log-likelihood; ties go to 0.
func (nb *MultinomialNB) Predict(x domain.FeatureVector) (int, error) {
	jll, err := nb.jointLogLikelihood(x)
	if err != nil {
		return 0, err
	}
	if jll[1] > jll[0] {
		return 1, nil
	}
	return 0, nil
}

// PredictProba normalizes the joint log-likelihood with log-sum-exp.
func (nb *MultinomialNB) PredictProba(x domain.FeatureVector) ([]float64, error) {
	jll, err := nb.jointLogLikelihood(x)
	if err != nil {
		return nil, err
	}

	hi := math.Max(jll[0], jll[1])
	logSum := hi + math.Log(math.Exp(jll[0]-hi)+math.Exp(jll[1]-hi))
	return []float64{math.Exp(jll[0] - logSum), math.Exp(jll[1] - logSum)}, nil
}
