package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned before inference when the article is blank.
	ErrEmptyInput = errors.New("please enter a news article to get a prediction")
	// ErrFeatureMismatch marks a vectorizer/classifier feature-space disagreement.
	ErrFeatureMismatch = errors.New("feature dimension mismatch")
	// ErrHistoryDisabled is returned when no verdict repository is configured.
	ErrHistoryDisabled = errors.New("verdict history is disabled")
)

// ArtifactLoadError reports a vectorizer or classifier that could not be loaded.
type ArtifactLoadError struct {
	Role string
	Path string
	Err  error
}

func (e *ArtifactLoadError) Error() string {
	return fmt.Sprintf("load %s artifact %s: %v", e.Role, e.Path, e.Err)
}

func (e *ArtifactLoadError) Unwrap() error { return e.Err }

// InferenceError reports a failed classification of otherwise valid input.
type InferenceError struct {
	Stage string
	Err   error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference %s: %v", e.Stage, e.Err)
}

func (e *InferenceError) Unwrap() error { return e.Err }
