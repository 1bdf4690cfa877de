package model

import (
	"encoding/json"
	"fmt"

	"NewsVerdict/internal/ports"
)

// Kinds shipped with DefaultRegistry.
const (
	KindTFIDF              = "tfidf"
	KindCount              = "count"
	KindLogisticRegression = "logistic_regression"
	KindLinearSVC          = "linear_svc"
	KindPassiveAggressive  = "passive_aggressive"
	KindMultinomialNB      = "multinomial_nb"
)

const supportedVersion = 1

// header is shared by every exported artifact.
type header struct {
	Kind    string `json:"kind"`
	Version int    `json:"version"`
}

// VectorizerDecoder builds a vectorizer from an artifact payload.
type VectorizerDecoder func(raw []byte) (ports.Vectorizer, error)

// ClassifierDecoder builds a classifier from an artifact payload.
type ClassifierDecoder func(raw []byte) (ports.Classifier, error)

// Registry maps artifact kinds to their decoders.
type Registry struct {
	vectorizers map[string]VectorizerDecoder
	classifiers map[string]ClassifierDecoder
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		vectorizers: map[string]VectorizerDecoder{},
		classifiers: map[string]ClassifierDecoder{},
	}
}

// DefaultRegistry knows every built-in kind.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.RegisterVectorizer(KindTFIDF, DecodeTFIDF)
	r.RegisterVectorizer(KindCount, DecodeCount)
	r.RegisterClassifier(KindLogisticRegression, DecodeLogisticRegression)
	r.RegisterClassifier(KindLinearSVC, DecodeLinear)
	r.RegisterClassifier(KindPassiveAggressive, DecodeLinear)
	r.RegisterClassifier(KindMultinomialNB, DecodeMultinomialNB)
	return r
}

// RegisterVectorizer adds or replaces a vectorizer decoder.
func (r *Registry) RegisterVectorizer(kind string, dec VectorizerDecoder) {
	if r.vectorizers == nil {
		r.vectorizers = map[string]VectorizerDecoder{}
	}
	r.vectorizers[kind] = dec
}

// RegisterClassifier adds or replaces a classifier decoder.
func (r *Registry) RegisterClassifier(kind string, dec ClassifierDecoder) {
	if r.classifiers == nil {
		r.classifiers = map[string]ClassifierDecoder{}
	}
	r.classifiers[kind] = dec
}

// DecodeVectorizer reads the artifact kind and dispatches to its decoder.
func (r *Registry) DecodeVectorizer(raw []byte) (ports.Vectorizer, string, error) {
	h, err := readHeader(raw)
	if err != nil {
		return nil, "", err
	}

	dec, ok := r.vectorizers[h.Kind]
	if !ok {
		if _, isClassifier := r.classifiers[h.Kind]; isClassifier {
			return nil, h.Kind, fmt.Errorf("kind %s is a classifier and lacks transform capability", h.Kind)
		}
		return nil, h.Kind, fmt.Errorf("vectorizer kind %q is not registered", h.Kind)
	}

	v, err := dec(raw)
	if err != nil {
		return nil, h.Kind, err
	}
	return v, h.Kind, nil
}

// DecodeClassifier reads the artifact kind and dispatches to its decoder.
func (r *Registry) DecodeClassifier(raw []byte) (ports.Classifier, string, error) {
	h, err := readHeader(raw)
	if err != nil {
		return nil, "", err
	}

	dec, ok := r.classifiers[h.Kind]
	if !ok {
		if _, isVectorizer := r.vectorizers[h.Kind]; isVectorizer {
			return nil, h.Kind, fmt.Errorf("kind %s is a vectorizer and lacks predict capability", h.Kind)
		}
		return nil, h.Kind, fmt.Errorf("classifier kind %q is not registered", h.Kind)
	}

	c, err := dec(raw)
	if err != nil {
		return nil, h.Kind, err
	}
	return c, h.Kind, nil
}

func readHeader(raw []byte) (header, error) {
	var h header
	if err := json.Unmarshal(raw, &h); err != nil {
		return h, fmt.Errorf("decode artifact header: %w", err)
	}
	if h.Kind == "" {
		return h, fmt.Errorf("artifact has no kind")
	}
	if h.Version > supportedVersion {
		return h, fmt.Errorf("artifact version %d is newer than supported %d", h.Version, supportedVersion)
	}
	return h, nil
}
