package domain

import (
	"fmt"
	"strings"
	"time"
)

// Label is the binary verdict produced by a classifier.
type Label int

const (
	LabelFake Label = 0
	LabelReal Label = 1
)

// LabelFromClass validates a raw classifier output.
func LabelFromClass(class int) (Label, error) {
	switch Label(class) {
	case LabelFake, LabelReal:
		return Label(class), nil
	default:
		return 0, fmt.Errorf("unexpected class %d, want 0 or 1", class)
	}
}

// String returns "real" or "fake".
func (l Label) String() string {
	if l == LabelReal {
		return "real"
	}
	return "fake"
}

// MarshalText encodes the label as its display name.
func (l Label) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText accepts "real" and "fake" in any case.
func (l *Label) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "real":
		*l = LabelReal
	case "fake":
		*l = LabelFake
	default:
		return fmt.Errorf("unknown label %q", string(text))
	}
	return nil
}

// FeatureVector is a sparse numeric encoding of an article.
// Indices are ascending and unique; Dim is the vocabulary size.
type FeatureVector struct {
	Dim     int
	Indices []int
	Values  []float64
}

// PredictionResult is the outcome of one inference call.
// Confidence is nil when the classifier cannot estimate probabilities.
type PredictionResult struct {
	Label      Label    `json:"label"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// CredibilityFactor is one weighted term of the reliability score.
type CredibilityFactor struct {
	Name   string  `json:"name"`
	Value  float64 `json:"value"`
	Weight float64 `json:"weight"`
}

// Report is everything a presentation layer needs to render a verdict.
type Report struct {
	ID               string              `json:"id,omitempty"`
	Label            Label               `json:"label"`
	Confidence       *float64            `json:"confidence,omitempty"`
	WordCount        int                 `json:"wordCount"`
	SentenceCount    int                 `json:"sentenceCount"`
	ReliabilityScore float64             `json:"reliabilityScore"`
	Factors          []CredibilityFactor `json:"factors,omitempty"`
	Language         string              `json:"language,omitempty"`
	Cached           bool                `json:"cached"`
	CreatedAt        time.Time           `json:"createdAt"`
}

// Verdict is a Report snapshot kept in the history store.
type Verdict struct {
	ID               string    `json:"id"`
	TextHash         string    `json:"-"`
	Excerpt          string    `json:"excerpt"`
	Label            Label     `json:"label"`
	Confidence       *float64  `json:"confidence,omitempty"`
	WordCount        int       `json:"wordCount"`
	SentenceCount    int       `json:"sentenceCount"`
	ReliabilityScore float64   `json:"reliabilityScore"`
	Language         string    `json:"language,omitempty"`
	Fingerprint      string    `json:"fingerprint"`
	CreatedAt        time.Time `json:"createdAt"`
}

// ModelInfo describes a loaded vectorizer/classifier pair.
type ModelInfo struct {
	VectorizerKind   string `json:"vectorizerKind"`
	ClassifierKind   string `json:"classifierKind"`
	Features         int    `json:"features"`
	HasProbabilities bool   `json:"hasProbabilities"`
	Fingerprint      string `json:"fingerprint"`
	Vectorizer       string `json:"vectorizer"`
	Model            string `json:"model"`
}
