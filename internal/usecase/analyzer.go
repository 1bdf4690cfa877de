package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"NewsVerdict/internal/domain"
	"NewsVerdict/internal/ports"
	"NewsVerdict/internal/textstats"
)

const excerptRunes = 160

// KeyFunc derives a cache key for a text under the loaded artifacts.
type KeyFunc func(text string) string

// AnalyzerDeps wires the inference engine with the optional driven adapters.
type AnalyzerDeps struct {
	Classifier  ports.TextClassifier
	Cache       ports.ResultCache
	CacheKey    KeyFunc
	Repository  ports.VerdictRepository
	Language    ports.LanguageDetector
	Fingerprint string
	Logger      *slog.Logger
	Now         func() time.Time
}

// Analyzer turns raw article text into a Report.
type Analyzer struct {
	classifier  ports.TextClassifier
	cache       ports.ResultCache
	cacheKey    KeyFunc
	repository  ports.VerdictRepository
	language    ports.LanguageDetector
	fingerprint string
	logger      *slog.Logger
	now         func() time.Time
}

// NewAnalyzer constructs the use case. Classifier is required.
func NewAnalyzer(deps AnalyzerDeps) *Analyzer {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	cache := deps.Cache
	if deps.CacheKey == nil {
		cache = nil
	}

	return &Analyzer{
		classifier:  deps.Classifier,
		cache:       cache,
		cacheKey:    deps.CacheKey,
		repository:  deps.Repository,
		language:    deps.Language,
		fingerprint: deps.Fingerprint,
		logger:      logger,
		now:         now,
	}
}

// Analyze validates the text, classifies it and assembles the report.
// Blank text fails with domain.ErrEmptyInput without touching the model.
func (a *Analyzer) Analyze(ctx context.Context, text string) (domain.Report, error) {
	if strings.TrimSpace(text) == "" {
		return domain.Report{}, domain.ErrEmptyInput
	}

	prediction, cached, err := a.predict(ctx, text)
	if err != nil {
		return domain.Report{}, err
	}

	summary := textstats.Summarize(text)
	report := domain.Report{
		ID:               uuid.NewString(),
		Label:            prediction.Label,
		Confidence:       prediction.Confidence,
		WordCount:        summary.WordCount,
		SentenceCount:    summary.SentenceCount,
		ReliabilityScore: summary.ReliabilityScore,
		Factors:          summary.Factors,
		Cached:           cached,
		CreatedAt:        a.now().UTC(),
	}

	if a.language != nil {
		if code, ok := a.language.Detect(text); ok {
			report.Language = code
		}
	}

	a.logger.Debug("article classified",
		"id", report.ID,
		"label", report.Label.String(),
		"cached", cached,
		"words", report.WordCount)

	if a.repository != nil {
		if err := a.repository.Save(ctx, a.verdict(text, report)); err != nil {
			a.logger.Warn("save verdict failed", "id", report.ID, "error", err)
		}
	}

	return report, nil
}

// Recent lists the newest verdicts from the history store.
func (a *Analyzer) Recent(ctx context.Context, limit int) ([]domain.Verdict, error) {
	if a.repository == nil {
		return nil, domain.ErrHistoryDisabled
	}
	verdicts, err := a.repository.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("load recent verdicts: %w", err)
	}
	return verdicts, nil
}

// HistoryEnabled reports whether verdicts are persisted.
func (a *Analyzer) HistoryEnabled() bool {
	return a.repository != nil
}

func (a *Analyzer) predict(ctx context.Context, text string) (domain.PredictionResult, bool, error) {
	var key string
	if a.cache != nil {
		key = a.cacheKey(text)
		hit, ok, err := a.cache.Get(ctx, key)
		switch {
		case err != nil:
			a.logger.Warn("cache lookup failed", "error", err)
		case ok:
			return hit, true, nil
		}
	}

	prediction, err := a.classifier.Classify(text)
	if err != nil {
		return domain.PredictionResult{}, false, err
	}

	if a.cache != nil {
		if err := a.cache.Set(ctx, key, prediction); err != nil {
			a.logger.Warn("cache store failed", "error", err)
		}
	}

	return prediction, false, nil
}

func (a *Analyzer) verdict(text string, report domain.Report) domain.Verdict {
	sum := sha256.Sum256([]byte(text))
	return domain.Verdict{
		ID:               report.ID,
		TextHash:         hex.EncodeToString(sum[:]),
		Excerpt:          excerpt(text),
		Label:            report.Label,
		Confidence:       report.Confidence,
		WordCount:        report.WordCount,
		SentenceCount:    report.SentenceCount,
		ReliabilityScore: report.ReliabilityScore,
		Language:         report.Language,
		Fingerprint:      a.fingerprint,
		CreatedAt:        report.CreatedAt,
	}
}

// excerpt collapses whitespace and truncates to excerptRunes runes.
func excerpt(text string) string {
	collapsed := strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(collapsed) <= excerptRunes {
		return collapsed
	}
	runes := []rune(collapsed)
	return string(runes[:excerptRunes]) + "…"
}
