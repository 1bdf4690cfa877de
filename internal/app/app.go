package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"NewsVerdict/internal/artifact"
	"NewsVerdict/internal/config"
	"NewsVerdict/internal/domain"
	"NewsVerdict/internal/inference"
	"NewsVerdict/internal/infrastructure/cache"
	"NewsVerdict/internal/infrastructure/httpapi"
	"NewsVerdict/internal/infrastructure/language"
	"NewsVerdict/internal/infrastructure/scheduler"
	"NewsVerdict/internal/infrastructure/storage"
	"NewsVerdict/internal/logging"
	"NewsVerdict/internal/model"
	"NewsVerdict/internal/ports"
	"NewsVerdict/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg    config.Config
	logger *slog.Logger
	loader *artifact.Loader

	openCache func(context.Context, config.CacheConfig) (closableCache, error)

	mu       sync.Mutex
	analyzer *usecase.Analyzer
	repo     *storage.VerdictRepository
	cache    closableCache
}

type closableCache interface {
	ports.ResultCache
	Close() error
}

func openRedisCache(ctx context.Context, cfg config.CacheConfig) (closableCache, error) {
	return cache.NewRedisCache(ctx, cfg)
}

// New builds the application. Artifacts are not read until first use.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	source := storage.NewRouterSource(storage.NewFileSource(cfg.Artifacts.BaseDir))
	if isS3(cfg.Artifacts.Vectorizer) || isS3(cfg.Artifacts.Model) {
		s3Source, err := storage.NewS3Source(ctx, cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("init s3 artifact source: %w", err)
		}
		source.Handle("s3", s3Source)
	}

	loader := artifact.NewLoader(
		source,
		model.DefaultRegistry(),
		cfg.Artifacts.Vectorizer,
		cfg.Artifacts.Model,
		baseLogger.With("component", "artifacts"),
	)

	return &Application{cfg: cfg, logger: baseLogger, loader: loader, openCache: openRedisCache}, nil
}

// Bundle returns the loaded artifact pair, loading it on first call.
func (a *Application) Bundle(ctx context.Context) (*artifact.Bundle, error) {
	return a.loader.Load(ctx)
}

// Analyzer returns the classification use case with every configured adapter.
func (a *Application) Analyzer(ctx context.Context) (*usecase.Analyzer, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.analyzer != nil {
		return a.analyzer, nil
	}

	bundle, err := a.Bundle(ctx)
	if err != nil {
		return nil, err
	}

	engine, err := inference.NewEngine(bundle.Vectorizer, bundle.Classifier)
	if err != nil {
		return nil, fmt.Errorf("build inference engine: %w", err)
	}

	deps := usecase.AnalyzerDeps{
		Classifier:  engine,
		Fingerprint: bundle.Fingerprint,
		Logger:      a.logger.With("component", "analyzer"),
	}

	if a.cfg.History.Enabled() {
		repo, err := a.historyLocked(ctx)
		if err != nil {
			return nil, err
		}
		deps.Repository = repo
	}

	if a.cfg.Language.Enabled {
		detector, err := language.NewLinguaDetector(a.cfg.Language.Languages)
		if err != nil {
			return nil, fmt.Errorf("init language detector: %w", err)
		}
		deps.Language = detector
	}

	// The cache connects last so a failed build never leaves a client behind.
	if a.cfg.Cache.Enabled() {
		rc, err := a.openCache(ctx, a.cfg.Cache)
		if err != nil {
			a.logger.Warn("prediction cache disabled", "error", err)
		} else {
			a.cache = rc
			prefix, fingerprint := a.cfg.Cache.Prefix, bundle.Fingerprint
			deps.Cache = rc
			deps.CacheKey = func(text string) string {
				return cache.Key(prefix, fingerprint, text)
			}
		}
	}

	a.analyzer = usecase.NewAnalyzer(deps)
	return a.analyzer, nil
}

// History opens the verdict repository without loading any model.
func (a *Application) History(ctx context.Context) (ports.VerdictRepository, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.historyLocked(ctx)
}

func (a *Application) historyLocked(ctx context.Context) (*storage.VerdictRepository, error) {
	if !a.cfg.History.Enabled() {
		return nil, domain.ErrHistoryDisabled
	}
	if a.repo != nil {
		return a.repo, nil
	}

	repo, err := storage.OpenVerdictRepository(ctx, a.cfg.History.Driver, a.cfg.History.DSN)
	if err != nil {
		return nil, fmt.Errorf("open verdict history: %w", err)
	}
	a.repo = repo
	return repo, nil
}

// Run loads the artifacts and serves the HTTP API until ctx is cancelled.
// It refuses to start when the artifacts cannot be loaded.
func (a *Application) Run(ctx context.Context) error {
	bundle, err := a.Bundle(ctx)
	if err != nil {
		return fmt.Errorf("refusing to serve: %w", err)
	}

	analyzer, err := a.Analyzer(ctx)
	if err != nil {
		return err
	}

	if a.repo != nil {
		retention := usecase.NewRetention(
			scheduler.NewIntervalScheduler(a.cfg.History.PruneInterval),
			a.repo,
			a.cfg.History.Retention,
			a.logger.With("component", "retention"),
		)
		if err := retention.Start(ctx); err != nil {
			return fmt.Errorf("start retention: %w", err)
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := retention.Stop(stopCtx); err != nil {
				a.logger.Warn("stop retention", "error", err)
			}
		}()
	}

	if !strings.EqualFold(a.cfg.Logging.Level, "debug") {
		gin.SetMode(gin.ReleaseMode)
	}

	router := httpapi.NewRouter(analyzer, bundle.Info(), httpapi.Options{
		MaxBodyBytes: a.cfg.Server.MaxBodyBytes,
		Logger:       a.logger.With("component", "http"),
	})

	srv := &http.Server{
		Addr:         a.cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", "addr", a.cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	a.logger.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}

// Close releases adapter connections.
func (a *Application) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var errs []error
	if a.cache != nil {
		errs = append(errs, a.cache.Close())
		a.cache = nil
	}
	if a.repo != nil {
		errs = append(errs, a.repo.Close())
		a.repo = nil
	}
	a.analyzer = nil
	return errors.Join(errs...)
}

func isS3(location string) bool {
	return strings.HasPrefix(strings.ToLower(location), "s3://")
}
