package model

import (
	"errors"
	"math"
	"strings"
	"testing"

	"NewsVerdict/internal/domain"
	"NewsVerdict/internal/ports"
)

func TestLogisticRegression(t *testing.T) {
	t.Parallel()

	c, err := DecodeLogisticRegression([]byte(`{"kind":"logistic_regression","classes":[0,1],"coef":[[1,-1]],"intercept":[0]}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if c.InputDimension() != 2 {
		t.Fatalf("unexpected input dimension %d", c.InputDimension())
	}

	x := domain.FeatureVector{Dim: 2, Indices: []int{0}, Values: []float64{1}}
	label, err := c.Predict(x)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if label != 1 {
		t.Fatalf("expected label 1, got %d", label)
	}

	pe, ok := c.(ports.ProbabilityEstimator)
	if !ok {
		t.Fatalf("logistic regression must estimate probabilities")
	}
	proba, err := pe.PredictProba(x)
	if err != nil {
		t.Fatalf("PredictProba: %v", err)
	}
	want := 1 / (1 + math.Exp(-1))
	if math.Abs(proba[1]-want) > 1e-12 || math.Abs(proba[0]+proba[1]-1) > 1e-12 {
		t.Fatalf("unexpected proba %v", proba)
	}

	neg := domain.FeatureVector{Dim: 2, Indices: []int{1}, Values: []float64{800}}
	proba, err = pe.PredictProba(neg)
	if err != nil {
		t.Fatalf("PredictProba: %v", err)
	}
	if proba[0] != 1 || math.IsNaN(proba[1]) {
		t.Fatalf("expected saturated fake probability, got %v", proba)
	}
}

func TestLinearSVCHasNoProbabilities(t *testing.T) {
	t.Parallel()

	c, err := DecodeLinear([]byte(`{"kind":"linear_svc","coef":[[0.5,0.5]],"intercept":[-1]}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := c.(ports.ProbabilityEstimator); ok {
		t.Fatalf("linear svc must not expose probabilities")
	}

	label, err := c.Predict(domain.FeatureVector{Dim: 2, Indices: []int{0, 1}, Values: []float64{1, 1}})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if label != 0 {
		t.Fatalf("zero decision must predict 0, got %d", label)
	}
}

func TestLinearDimensionMismatch(t *testing.T) {
	t.Parallel()

	c, err := DecodeLinear([]byte(`{"kind":"linear_svc","coef":[[1,1,1]],"intercept":[0]}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	_, err = c.Predict(domain.FeatureVector{Dim: 2})
	if !errors.Is(err, domain.ErrFeatureMismatch) {
		t.Fatalf("expected ErrFeatureMismatch, got %v", err)
	}
}

func TestMultinomialNB(t *testing.T) {
	t.Parallel()

	raw := []byte(`{
	  "kind": "multinomial_nb",
	  "classes": [0, 1],
	  "class_log_prior": [-0.6931471805599453, -0.6931471805599453],
	  "feature_log_prob": [[-0.2231435513142097, -1.6094379124341003],
	                       [-1.6094379124341003, -0.2231435513142097]]
	}`)

	c, err := DecodeMultinomialNB(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	x := domain.FeatureVector{Dim: 2, Indices: []int{0}, Values: []float64{1}}
	label, err := c.Predict(x)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if label != 0 {
		t.Fatalf("expected label 0, got %d", label)
	}

	proba, err := c.(ports.ProbabilityEstimator).PredictProba(x)
	if err != nil {
		t.Fatalf("PredictProba: %v", err)
	}
	if math.Abs(proba[0]-0.8) > 1e-9 || math.Abs(proba[1]-0.2) > 1e-9 {
		t.Fatalf("unexpected proba %v", proba)
	}
}

func TestDecodeClassifierRejectsInvalid(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"classes order":  `{"kind":"logistic_regression","classes":[1,0],"coef":[[1]],"intercept":[0]}`,
		"multiclass":     `{"kind":"logistic_regression","classes":[0,1,2],"coef":[[1]],"intercept":[0]}`,
		"two coef rows":  `{"kind":"logistic_regression","coef":[[1],[2]],"intercept":[0]}`,
		"no intercept":   `{"kind":"logistic_regression","coef":[[1]]}`,
		"empty coef row": `{"kind":"logistic_regression","coef":[[]],"intercept":[0]}`,
	}
	for name, raw := range cases {
		if _, err := DecodeLogisticRegression([]byte(raw)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}

	if _, err := DecodeMultinomialNB([]byte(`{"kind":"multinomial_nb","class_log_prior":[0,0],"feature_log_prob":[[1],[1,2]]}`)); err == nil {
		t.Fatalf("expected error for ragged feature_log_prob")
	}
}

func TestRegistryCapabilities(t *testing.T) {
	t.Parallel()

	reg := DefaultRegistry()
	classifierRaw := []byte(`{"kind":"logistic_regression","coef":[[1]],"intercept":[0]}`)
	vectorizerRaw := []byte(`{"kind":"tfidf","vocabulary":{"aa":0}}`)

	if _, _, err := reg.DecodeVectorizer(classifierRaw); err == nil || !strings.Contains(err.Error(), "lacks transform capability") {
		t.Fatalf("expected missing transform capability, got %v", err)
	}
	if _, _, err := reg.DecodeClassifier(vectorizerRaw); err == nil || !strings.Contains(err.Error(), "lacks predict capability") {
		t.Fatalf("expected missing predict capability, got %v", err)
	}

	v, kind, err := reg.DecodeVectorizer(vectorizerRaw)
	if err != nil || kind != KindTFIDF || v.Dimension() != 1 {
		t.Fatalf("unexpected decode result: %v %s %v", v, kind, err)
	}

	if _, _, err := reg.DecodeClassifier([]byte(`{"kind":"random_forest"}`)); err == nil {
		t.Fatalf("expected unknown kind error")
	}
	if _, _, err := reg.DecodeClassifier([]byte(`{"kind":"linear_svc","version":2}`)); err == nil {
		t.Fatalf("expected unsupported version error")
	}
	if _, _, err := reg.DecodeClassifier([]byte(`{"coef":[[1]]}`)); err == nil {
		t.Fatalf("expected missing kind error")
	}
}

func TestEmptyRegistry(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	if _, _, err := reg.DecodeVectorizer([]byte(`{"kind":"tfidf","vocabulary":{"aa":0}}`)); err == nil {
		t.Fatalf("empty registry must not decode")
	}

	reg.RegisterVectorizer(KindTFIDF, DecodeTFIDF)
	if _, _, err := reg.DecodeVectorizer([]byte(`{"kind":"tfidf","vocabulary":{"aa":0}}`)); err != nil {
		t.Fatalf("registered kind failed: %v", err)
	}
}
