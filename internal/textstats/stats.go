// Package textstats computes display statistics from raw article text. None
// of them depend on the classifier.
package textstats

import (
	"regexp"
	"strings"

	"NewsVerdict/internal/domain"
)

const (
	lengthCap = 500

	lengthWeight    = 0.2
	citationsWeight = 0.3

	sourceReputation       = 0.7
	sourceReputationWeight = 0.2
	writingStyle           = 0.8
	writingStyleWeight     = 0.3
)

var (
	sentenceBreak = regexp.MustCompile(`[.!?]+`)
	citationExpr  = regexp.MustCompile(`\[\d+\]|\(\d{4}\)`)
)

// WordCount counts whitespace-delimited tokens.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// SentenceCount splits on runs of '.', '!' and '?' and counts the fragments
// that are not blank. A trailing terminator does not add a sentence.
func SentenceCount(text string) int {
	n := 0
	for _, fragment := range sentenceBreak.Split(text, -1) {
		if strings.TrimSpace(fragment) != "" {
			n++
		}
	}
	return n
}

// HasCitations reports a "[12]" or "(1999)" style reference.
func HasCitations(text string) bool {
	return citationExpr.MatchString(text)
}

// Factors returns the weighted terms of the reliability score in order.
func Factors(text string) []domain.CredibilityFactor {
	words := WordCount(text)
	if words > lengthCap {
		words = lengthCap
	}

	citations := 0.0
	if HasCitations(text) {
		citations = 1
	}

	return []domain.CredibilityFactor{
		{Name: "length", Value: float64(words) / lengthCap, Weight: lengthWeight},
		{Name: "citations", Value: citations, Weight: citationsWeight},
		{Name: "source_reputation", Value: sourceReputation, Weight: sourceReputationWeight},
		{Name: "writing_style", Value: writingStyle, Weight: writingStyleWeight},
	}
}

// ReliabilityScore is the weighted sum of Factors clamped to [0,1]. It is a
// fixed display heuristic, not a learned signal.
func ReliabilityScore(text string) float64 {
	return score(Factors(text))
}

func score(factors []domain.CredibilityFactor) float64 {
	var total float64
	for _, f := range factors {
		total += f.Value * f.Weight
	}
	return min(max(total, 0), 1)
}

// Summary bundles every statistic for a report.
type Summary struct {
	WordCount        int
	SentenceCount    int
	ReliabilityScore float64
	Factors          []domain.CredibilityFactor
}

// Summarize computes all statistics in one pass over the factors.
func Summarize(text string) Summary {
	factors := Factors(text)
	return Summary{
		WordCount:        WordCount(text),
		SentenceCount:    SentenceCount(text),
		ReliabilityScore: score(factors),
		Factors:          factors,
	}
}
