package inference

import (
	"errors"
	"testing"

	"NewsVerdict/internal/domain"
	"NewsVerdict/internal/model"
	"NewsVerdict/internal/ports"
)

type stubVectorizer struct {
	dim int
}

func (s *stubVectorizer) Transform(text string) (domain.FeatureVector, error) {
	return domain.FeatureVector{Dim: s.dim, Indices: []int{0}, Values: []float64{float64(len(text))}}, nil
}

func (s *stubVectorizer) Dimension() int { return s.dim }

type stubClassifier struct {
	dim   int
	label int
}

func (s stubClassifier) Predict(domain.FeatureVector) (int, error) { return s.label, nil }
func (s stubClassifier) InputDimension() int                       { return s.dim }

type stubProbClassifier struct {
	stubClassifier
	proba []float64
}

func (s stubProbClassifier) PredictProba(domain.FeatureVector) ([]float64, error) {
	return s.proba, nil
}

func newEngine(t *testing.T, v *stubVectorizer, c ports.Classifier) *Engine {
	t.Helper()
	e, err := NewEngine(v, c)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func TestClassifyRealWithConfidence(t *testing.T) {
	t.Parallel()

	e := newEngine(t, &stubVectorizer{dim: 4}, stubProbClassifier{
		stubClassifier: stubClassifier{dim: 4, label: 1},
		proba:          []float64{0.1, 0.9},
	})

	res, err := e.Classify("Scientists publish peer-reviewed study.")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if res.Label != domain.LabelReal || res.Label.String() != "real" {
		t.Fatalf("expected real, got %v", res.Label)
	}
	if res.Confidence == nil || *res.Confidence != 0.9 {
		t.Fatalf("expected confidence 0.9, got %v", res.Confidence)
	}
}

func TestClassifyFakeWithConfidence(t *testing.T) {
	t.Parallel()

	e := newEngine(t, &stubVectorizer{dim: 4}, stubProbClassifier{
		stubClassifier: stubClassifier{dim: 4, label: 0},
		proba:          []float64{0.73, 0.27},
	})

	res, err := e.Classify("You won't believe this miracle cure!")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if res.Label != domain.LabelFake || res.Label.String() != "fake" {
		t.Fatalf("expected fake, got %v", res.Label)
	}
	if res.Confidence == nil || *res.Confidence != 0.73 {
		t.Fatalf("expected confidence 0.73, got %v", res.Confidence)
	}
}

func TestClassifyWithoutProbabilities(t *testing.T) {
	t.Parallel()

	e := newEngine(t, &stubVectorizer{dim: 2}, stubClassifier{dim: 2, label: 1})

	res, err := e.Classify("text")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if res.Confidence != nil {
		t.Fatalf("expected absent confidence, got %v", *res.Confidence)
	}
	if res.Label != domain.LabelReal {
		t.Fatalf("unexpected label %v", res.Label)
	}
}

func TestClassifyDimensionMismatch(t *testing.T) {
	t.Parallel()

	e := newEngine(t, &stubVectorizer{dim: 3}, stubClassifier{dim: 5, label: 1})

	_, err := e.Classify("text")
	var inferenceErr *domain.InferenceError
	if !errors.As(err, &inferenceErr) {
		t.Fatalf("expected InferenceError, got %v", err)
	}
	if !errors.Is(err, domain.ErrFeatureMismatch) {
		t.Fatalf("expected ErrFeatureMismatch, got %v", err)
	}
}

func TestClassifyRejectsUnknownClass(t *testing.T) {
	t.Parallel()

	e := newEngine(t, &stubVectorizer{dim: 1}, stubClassifier{dim: 1, label: 7})

	_, err := e.Classify("text")
	var inferenceErr *domain.InferenceError
	if !errors.As(err, &inferenceErr) {
		t.Fatalf("expected InferenceError, got %v", err)
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	t.Parallel()

	vec, err := model.DecodeTFIDF([]byte(`{"kind":"tfidf","vocabulary":{"miracle":0,"cure":1,"study":2},"idf":[1.5,1.2,1.1]}`))
	if err != nil {
		t.Fatalf("decode vectorizer: %v", err)
	}
	clf, err := model.DecodeLogisticRegression([]byte(`{"kind":"logistic_regression","coef":[[-2.0,-1.0,3.0]],"intercept":[0.1]}`))
	if err != nil {
		t.Fatalf("decode classifier: %v", err)
	}

	e, err := NewEngine(vec, clf)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	text := "Miracle cure discovered, says no study."
	first, err := e.Classify(text)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	for i := 0; i < 50; i++ {
		next, err := e.Classify(text)
		if err != nil {
			t.Fatalf("Classify: %v", err)
		}
		if next.Label != first.Label || *next.Confidence != *first.Confidence {
			t.Fatalf("classification changed: %+v vs %+v", first, next)
		}
	}
}

func TestNewEngineRequiresHandles(t *testing.T) {
	t.Parallel()

	if _, err := NewEngine(nil, stubClassifier{}); err == nil {
		t.Fatalf("expected error for missing vectorizer")
	}
	if _, err := NewEngine(&stubVectorizer{}, nil); err == nil {
		t.Fatalf("expected error for missing classifier")
	}
}
