package model

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"NewsVerdict/internal/domain"
	"NewsVerdict/internal/ports"
)

// TFIDF reproduces the transform of a fitted scikit-learn TfidfVectorizer
// (or CountVectorizer when idf weighting and normalization are off).
type TFIDF struct {
	vocabulary map[string]int
	idf        []float64
	lowercase  bool
	binary     bool
	sublinear  bool
	norm       string
	minN       int
	maxN       int
	stopWords  map[string]struct{}
	accents    func(string) string
	tokenize   tokenizer
}

var _ ports.Vectorizer = (*TFIDF)(nil)

type vectorizerArtifact struct {
	header
	Lowercase    *bool           `json:"lowercase"`
	StripAccents string          `json:"strip_accents"`
	TokenPattern string          `json:"token_pattern"`
	NgramRange   []int           `json:"ngram_range"`
	StopWords    []string        `json:"stop_words"`
	Vocabulary   map[string]int  `json:"vocabulary"`
	IDF          []float64       `json:"idf"`
	Norm         json.RawMessage `json:"norm"`
	SublinearTF  bool            `json:"sublinear_tf"`
	Binary       bool            `json:"binary"`
}

// DecodeTFIDF builds a TF-IDF vectorizer; norm defaults to l2.
func DecodeTFIDF(raw []byte) (ports.Vectorizer, error) {
	return decodeVectorizer(raw, "l2", true)
}

// DecodeCount builds a raw term-count vectorizer; norm defaults to none.
func DecodeCount(raw []byte) (ports.Vectorizer, error) {
	return decodeVectorizer(raw, "", false)
}

func decodeVectorizer(raw []byte, defaultNorm string, useIDF bool) (*TFIDF, error) {
	var art vectorizerArtifact
	if err := json.Unmarshal(raw, &art); err != nil {
		return nil, fmt.Errorf("decode vectorizer: %w", err)
	}

	if len(art.Vocabulary) == 0 {
		return nil, fmt.Errorf("vectorizer vocabulary is empty")
	}

	dim := len(art.Vocabulary)
	seen := make([]bool, dim)
	for term, idx := range art.Vocabulary {
		if idx < 0 || idx >= dim {
			return nil, fmt.Errorf("term %q has index %d outside [0,%d)", term, idx, dim)
		}
		if seen[idx] {
			return nil, fmt.Errorf("index %d assigned to more than one term", idx)
		}
		seen[idx] = true
	}

	v := &TFIDF{
		vocabulary: art.Vocabulary,
		lowercase:  true,
		binary:     art.Binary,
		sublinear:  art.SublinearTF,
		norm:       defaultNorm,
		minN:       1,
		maxN:       1,
	}

	if art.Lowercase != nil {
		v.lowercase = *art.Lowercase
	}

	if useIDF && len(art.IDF) > 0 {
		if len(art.IDF) != dim {
			return nil, fmt.Errorf("idf has %d weights for %d terms", len(art.IDF), dim)
		}
		v.idf = art.IDF
	}

	// An explicit null norm disables normalization.
	if len(art.Norm) > 0 {
		var norm *string
		if err := json.Unmarshal(art.Norm, &norm); err != nil {
			return nil, fmt.Errorf("decode norm: %w", err)
		}
		v.norm = ""
		if norm != nil {
			v.norm = strings.ToLower(*norm)
		}
	}
	switch v.norm {
	case "", "l1", "l2":
	default:
		return nil, fmt.Errorf("unsupported norm %q", v.norm)
	}

	if len(art.NgramRange) > 0 {
		if len(art.NgramRange) != 2 {
			return nil, fmt.Errorf("ngram_range must have two bounds, got %v", art.NgramRange)
		}
		v.minN, v.maxN = art.NgramRange[0], art.NgramRange[1]
		if v.minN < 1 || v.maxN < v.minN {
			return nil, fmt.Errorf("invalid ngram_range %v", art.NgramRange)
		}
	}

	if len(art.StopWords) > 0 {
		v.stopWords = make(map[string]struct{}, len(art.StopWords))
		for _, w := range art.StopWords {
			v.stopWords[w] = struct{}{}
		}
	}

	var err error
	if v.accents, err = accentStripper(art.StripAccents); err != nil {
		return nil, err
	}
	if v.tokenize, err = newTokenizer(art.TokenPattern); err != nil {
		return nil, err
	}

	return v, nil
}

// Dimension is the vocabulary size.
func (v *TFIDF) Dimension() int {
	return len(v.vocabulary)
}

// Transform encodes a single document.
func (v *TFIDF) Transform(text string) (domain.FeatureVector, error) {
	doc := text
	if v.lowercase {
		doc = strings.ToLower(doc)
	}
	if v.accents != nil {
		doc = v.accents(doc)
	}

	counts := make(map[int]float64)
	for _, term := range wordNgrams(v.tokenize(doc), v.stopWords, v.minN, v.maxN) {
		if idx, ok := v.vocabulary[term]; ok {
			counts[idx]++
		}
	}

	vec := domain.FeatureVector{
		Dim:     v.Dimension(),
		Indices: make([]int, 0, len(counts)),
		Values:  make([]float64, 0, len(counts)),
	}
	for idx := range counts {
		vec.Indices = append(vec.Indices, idx)
	}
	sort.Ints(vec.Indices)

	for _, idx := range vec.Indices {
		tf := counts[idx]
		if v.binary {
			tf = 1
		}
		if v.sublinear {
			tf = math.Log(tf) + 1
		}
		if v.idf != nil {
			tf *= v.idf[idx]
		}
		vec.Values = append(vec.Values, tf)
	}

	normalize(vec.Values, v.norm)
	return vec, nil
}

func normalize(values []float64, norm string) {
	var total float64
	switch norm {
	case "l2":
		for _, x := range values {
			total += x * x
		}
		total = math.Sqrt(total)
	case "l1":
		for _, x := range values {
			total += math.Abs(x)
		}
	default:
		return
	}

	if total == 0 {
		return
	}
	for i := range values {
		values[i] /= total
	}
}
