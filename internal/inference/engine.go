package inference

import (
	"errors"
	"fmt"

	"NewsVerdict/internal/domain"
	"NewsVerdict/internal/ports"
)

// Engine runs raw text through a loaded vectorizer/classifier pair. It holds
// only read-only handles and is safe for concurrent use.
type Engine struct {
	vectorizer ports.Vectorizer
	classifier ports.Classifier
}

var _ ports.TextClassifier = (*Engine)(nil)

// NewEngine requires both handles.
func NewEngine(vectorizer ports.Vectorizer, classifier ports.Classifier) (*Engine, error) {
	if vectorizer == nil || classifier == nil {
		return nil, errors.New("inference engine needs a vectorizer and a classifier")
	}
	return &Engine{vectorizer: vectorizer, classifier: classifier}, nil
}

// Classify encodes text, predicts its label and, when the classifier can
// estimate probabilities, the probability of the predicted label.
// Callers reject blank text before calling.
func (e *Engine) Classify(text string) (domain.PredictionResult, error) {
	x, err := e.vectorizer.Transform(text)
	if err != nil {
		return domain.PredictionResult{}, &domain.InferenceError{Stage: "transform", Err: err}
	}

	if want := e.classifier.InputDimension(); x.Dim != want {
		return domain.PredictionResult{}, &domain.InferenceError{
			Stage: "predict",
			Err:   fmt.Errorf("%w: vectorizer produced %d features, classifier expects %d", domain.ErrFeatureMismatch, x.Dim, want),
		}
	}

	class, err := e.classifier.Predict(x)
	if err != nil {
		return domain.PredictionResult{}, &domain.InferenceError{Stage: "predict", Err: err}
	}

	label, err := domain.LabelFromClass(class)
	if err != nil {
		return domain.PredictionResult{}, &domain.InferenceError{Stage: "predict", Err: err}
	}

	result := domain.PredictionResult{Label: label}

	estimator, ok := e.classifier.(ports.ProbabilityEstimator)
	if !ok {
		return result, nil
	}

	proba, err := estimator.PredictProba(x)
	if err != nil {
		return domain.PredictionResult{}, &domain.InferenceError{Stage: "predict_proba", Err: err}
	}
	if len(proba) != 2 {
		return domain.PredictionResult{}, &domain.InferenceError{
			Stage: "predict_proba",
			Err:   fmt.Errorf("expected 2 class probabilities, got %d", len(proba)),
		}
	}

	confidence := proba[label]
	result.Confidence = &confidence
	return result, nil
}
