package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"NewsVerdict/internal/domain"
)

type stubClassifier struct {
	mu     sync.Mutex
	calls  int
	result domain.PredictionResult
	err    error
}

func (s *stubClassifier) Classify(string) (domain.PredictionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.result, s.err
}

type memCache struct {
	items  map[string]domain.PredictionResult
	getErr error
	setErr error
}

func (m *memCache) Get(_ context.Context, key string) (domain.PredictionResult, bool, error) {
	if m.getErr != nil {
		return domain.PredictionResult{}, false, m.getErr
	}
	r, ok := m.items[key]
	return r, ok, nil
}

func (m *memCache) Set(_ context.Context, key string, r domain.PredictionResult) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.items[key] = r
	return nil
}

type memRepo struct {
	saved   []domain.Verdict
	cutoffs []time.Time
	saveErr error
}

func (m *memRepo) Save(_ context.Context, v domain.Verdict) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, v)
	return nil
}

func (m *memRepo) Recent(_ context.Context, limit int) ([]domain.Verdict, error) {
	if limit > len(m.saved) {
		limit = len(m.saved)
	}
	return m.saved[:limit], nil
}

func (m *memRepo) PruneBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.cutoffs = append(m.cutoffs, cutoff)
	return 3, nil
}

type fixedLanguage string

func (f fixedLanguage) Detect(string) (string, bool) { return string(f), f != "" }

func confidence(v float64) *float64 { return &v }

var fixedNow = time.Date(2026, time.October, 19, 8, 0, 0, 0, time.UTC)

func TestAnalyzeRejectsBlankInput(t *testing.T) {
	t.Parallel()

	clf := &stubClassifier{}
	a := NewAnalyzer(AnalyzerDeps{Classifier: clf})

	for _, text := range []string{"", "   \n\t "} {
		if _, err := a.Analyze(context.Background(), text); !errors.Is(err, domain.ErrEmptyInput) {
			t.Fatalf("expected ErrEmptyInput for %q, got %v", text, err)
		}
	}
	if clf.calls != 0 {
		t.Fatalf("classifier must not run on blank input")
	}
}

func TestAnalyzeBuildsReport(t *testing.T) {
	t.Parallel()

	clf := &stubClassifier{result: domain.PredictionResult{Label: domain.LabelReal, Confidence: confidence(0.9)}}
	repo := &memRepo{}
	a := NewAnalyzer(AnalyzerDeps{
		Classifier:  clf,
		Repository:  repo,
		Language:    fixedLanguage("en"),
		Fingerprint: "abc123",
		Now:         func() time.Time { return fixedNow },
	})

	text := "Officials confirmed the figures. The report cites data (2021)."
	report, err := a.Analyze(context.Background(), text)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if report.Label != domain.LabelReal || report.Confidence == nil || *report.Confidence != 0.9 {
		t.Fatalf("unexpected prediction in report: %+v", report)
	}
	if report.WordCount != 9 || report.SentenceCount != 2 {
		t.Fatalf("unexpected counts: words=%d sentences=%d", report.WordCount, report.SentenceCount)
	}
	if report.Language != "en" || report.Cached || report.ID == "" || !report.CreatedAt.Equal(fixedNow) {
		t.Fatalf("unexpected report metadata: %+v", report)
	}
	if len(report.Factors) != 4 {
		t.Fatalf("expected 4 factors, got %d", len(report.Factors))
	}

	if len(repo.saved) != 1 {
		t.Fatalf("expected one saved verdict, got %d", len(repo.saved))
	}
	v := repo.saved[0]
	if v.ID != report.ID || v.Fingerprint != "abc123" || v.Excerpt != text || len(v.TextHash) != 64 {
		t.Fatalf("unexpected verdict: %+v", v)
	}
}

func TestAnalyzePropagatesInferenceError(t *testing.T) {
	t.Parallel()

	infErr := &domain.InferenceError{Stage: "predict", Err: domain.ErrFeatureMismatch}
	repo := &memRepo{}
	a := NewAnalyzer(AnalyzerDeps{Classifier: &stubClassifier{err: infErr}, Repository: repo})

	_, err := a.Analyze(context.Background(), "Some article text.")
	var target *domain.InferenceError
	if !errors.As(err, &target) || !errors.Is(err, domain.ErrFeatureMismatch) {
		t.Fatalf("expected inference error, got %v", err)
	}
	if len(repo.saved) != 0 {
		t.Fatalf("failed inference must not be persisted")
	}
}

func TestAnalyzeUsesCache(t *testing.T) {
	t.Parallel()

	clf := &stubClassifier{result: domain.PredictionResult{Label: domain.LabelFake}}
	cache := &memCache{items: map[string]domain.PredictionResult{}}
	a := NewAnalyzer(AnalyzerDeps{
		Classifier: clf,
		Cache:      cache,
		CacheKey:   func(text string) string { return "k:" + text },
	})

	first, err := a.Analyze(context.Background(), "Aliens built the pyramids!")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	second, err := a.Analyze(context.Background(), "Aliens built the pyramids!")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if first.Cached || !second.Cached {
		t.Fatalf("expected miss then hit, got %v then %v", first.Cached, second.Cached)
	}
	if clf.calls != 1 {
		t.Fatalf("expected one classifier call, got %d", clf.calls)
	}
	if second.Label != domain.LabelFake || second.Confidence != nil {
		t.Fatalf("cached prediction altered: %+v", second)
	}
}

func TestAnalyzeBypassesFailingAdapters(t *testing.T) {
	t.Parallel()

	clf := &stubClassifier{result: domain.PredictionResult{Label: domain.LabelReal}}
	a := NewAnalyzer(AnalyzerDeps{
		Classifier: clf,
		Cache:      &memCache{getErr: errors.New("redis down"), setErr: errors.New("redis down")},
		CacheKey:   func(text string) string { return text },
		Repository: &memRepo{saveErr: errors.New("disk full")},
	})

	report, err := a.Analyze(context.Background(), "Markets closed higher today.")
	if err != nil {
		t.Fatalf("adapter failures must not fail the analysis: %v", err)
	}
	if report.Label != domain.LabelReal || clf.calls != 1 {
		t.Fatalf("unexpected result %+v (calls=%d)", report, clf.calls)
	}
}

func TestRecentWithoutHistory(t *testing.T) {
	t.Parallel()

	a := NewAnalyzer(AnalyzerDeps{Classifier: &stubClassifier{}})
	if a.HistoryEnabled() {
		t.Fatalf("history must be disabled without a repository")
	}
	if _, err := a.Recent(context.Background(), 5); !errors.Is(err, domain.ErrHistoryDisabled) {
		t.Fatalf("expected ErrHistoryDisabled, got %v", err)
	}
}

func TestExcerpt(t *testing.T) {
	t.Parallel()

	if got := excerpt("  short\n\ntext  "); got != "short text" {
		t.Fatalf("unexpected excerpt %q", got)
	}

	long := strings.Repeat("é", excerptRunes+10)
	got := excerpt(long)
	if !strings.HasSuffix(got, "…") || len([]rune(got)) != excerptRunes+1 {
		t.Fatalf("unexpected truncation: %d runes", len([]rune(got)))
	}
}

type stubScheduler struct {
	job     func(time.Time)
	stopped bool
}

func (s *stubScheduler) Start(_ context.Context, job func(time.Time)) error {
	s.job = job
	return nil
}

func (s *stubScheduler) Stop(context.Context) error {
	s.stopped = true
	return nil
}

func TestRetention(t *testing.T) {
	t.Parallel()

	driver := &stubScheduler{}
	repo := &memRepo{}
	r := NewRetention(driver, repo, 24*time.Hour, nil)

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if driver.job == nil {
		t.Fatalf("prune job was not registered")
	}

	driver.job(fixedNow)
	if len(repo.cutoffs) != 1 || !repo.cutoffs[0].Equal(fixedNow.Add(-24*time.Hour)) {
		t.Fatalf("unexpected cutoffs %v", repo.cutoffs)
	}

	n, err := r.PruneOnce(context.Background(), fixedNow)
	if err != nil || n != 3 {
		t.Fatalf("PruneOnce = %d, %v", n, err)
	}

	if err := r.Stop(context.Background()); err != nil || !driver.stopped {
		t.Fatalf("Stop: %v (stopped=%v)", err, driver.stopped)
	}
}

func TestRetentionDisabled(t *testing.T) {
	t.Parallel()

	driver := &stubScheduler{}
	r := NewRetention(driver, nil, time.Hour, nil)
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if driver.job != nil {
		t.Fatalf("no job without a repository")
	}
}
