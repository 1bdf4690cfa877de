package ports

import (
	"context"
	"io"
	"time"

	"NewsVerdict/internal/domain"
)

// Vectorizer turns raw article text into a fixed-dimension feature vector.
type Vectorizer interface {
	Transform(text string) (domain.FeatureVector, error)
	Dimension() int
}

// Classifier maps a feature vector to a class (0 = fake, 1 = real).
type Classifier interface {
	Predict(x domain.FeatureVector) (int, error)
	InputDimension() int
}

// ProbabilityEstimator is implemented by classifiers that expose calibrated
// class probabilities. The distribution is indexed by class.
type ProbabilityEstimator interface {
	PredictProba(x domain.FeatureVector) ([]float64, error)
}

// TextClassifier runs the full raw-text-to-label inference.
type TextClassifier interface {
	Classify(text string) (domain.PredictionResult, error)
}

// ArtifactSource opens serialized artifacts by location.
type ArtifactSource interface {
	Open(ctx context.Context, location string) (io.ReadCloser, error)
}

// ResultCache memoizes predictions keyed by artifact fingerprint and text.
type ResultCache interface {
	Get(ctx context.Context, key string) (domain.PredictionResult, bool, error)
	Set(ctx context.Context, key string, result domain.PredictionResult) error
}

// VerdictRepository keeps a history of issued verdicts.
type VerdictRepository interface {
	Save(ctx context.Context, verdict domain.Verdict) error
	Recent(ctx context.Context, limit int) ([]domain.Verdict, error)
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// LanguageDetector guesses the ISO 639-1 language of a text.
type LanguageDetector interface {
	Detect(text string) (string, bool)
}

// Scheduler controls when background jobs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
