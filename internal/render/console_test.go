package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"NewsVerdict/internal/domain"
)

func TestSentence(t *testing.T) {
	t.Parallel()

	if got := Sentence(domain.LabelReal); got != "The news article is Real." {
		t.Fatalf("unexpected sentence %q", got)
	}
	if got := Sentence(domain.LabelFake); got != "The news article is Fake." {
		t.Fatalf("unexpected sentence %q", got)
	}
}

func TestBar(t *testing.T) {
	t.Parallel()

	cases := map[float64]int{0: 0, 0.5: 10, 1: 20, 1.7: 20, -0.3: 0}
	for value, filled := range cases {
		got := bar(value)
		if strings.Count(got, "█") != filled || strings.Count(got, "░") != barWidth-filled {
			t.Fatalf("bar(%v) = %q", value, got)
		}
	}
}

func TestReport(t *testing.T) {
	t.Parallel()

	conf := 0.73
	var buf bytes.Buffer
	err := NewConsole(&buf).Report(domain.Report{
		ID:               "abc",
		Label:            domain.LabelFake,
		Confidence:       &conf,
		WordCount:        120,
		SentenceCount:    6,
		ReliabilityScore: 0.42,
		Factors:          []domain.CredibilityFactor{{Name: "citations", Value: 0, Weight: 0.3}},
		Language:         "en",
		Cached:           true,
	})
	if err != nil {
		t.Fatalf("Report: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"The news article is Fake.", "73.0%", "Words       120", "Sentences   6", "0.42", "citations", "Language    en", "cached", "id abc"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output misses %q:\n%s", want, out)
		}
	}
}

func TestReportWithoutConfidence(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := NewConsole(&buf).Report(domain.Report{Label: domain.LabelReal}); err != nil {
		t.Fatalf("Report: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "The news article is Real.") || !strings.Contains(out, "not available") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if strings.Contains(out, "%") {
		t.Fatalf("no percentage expected without confidence:\n%s", out)
	}
}

func TestHistory(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	c := NewConsole(&buf)
	if err := c.History(nil); err != nil {
		t.Fatalf("History: %v", err)
	}
	if !strings.Contains(buf.String(), "No verdicts") {
		t.Fatalf("unexpected empty history output %q", buf.String())
	}

	buf.Reset()
	conf := 0.9
	err := c.History([]domain.Verdict{
		{Label: domain.LabelReal, Confidence: &conf, Excerpt: "Budget approved", CreatedAt: time.Now()},
		{Label: domain.LabelFake, Excerpt: "Moon is cheese", CreatedAt: time.Now()},
	})
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 || !strings.Contains(lines[0], "90%") || !strings.Contains(lines[1], "n/a") {
		t.Fatalf("unexpected history output:\n%s", buf.String())
	}
}

func TestModel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := NewConsole(&buf).Model(domain.ModelInfo{VectorizerKind: "tfidf", ClassifierKind: "linear_svc", Features: 5000})
	if err != nil {
		t.Fatalf("Model: %v", err)
	}
	if !strings.Contains(buf.String(), "linear_svc") || !strings.Contains(buf.String(), "Probabilities  no") {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
}
