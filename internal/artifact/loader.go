package artifact

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"NewsVerdict/internal/domain"
	"NewsVerdict/internal/model"
	"NewsVerdict/internal/ports"
)

const (
	RoleVectorizer = "vectorizer"
	RoleClassifier = "classifier"
)

// Bundle holds a matched vectorizer/classifier pair. It is immutable and safe
// for concurrent use.
type Bundle struct {
	Vectorizer     ports.Vectorizer
	Classifier     ports.Classifier
	VectorizerKind string
	ClassifierKind string
	VectorizerPath string
	ModelPath      string
	Fingerprint    string
}

// Dimension is the shared feature-space size.
func (b *Bundle) Dimension() int {
	return b.Vectorizer.Dimension()
}

// HasProbabilities reports whether confidences will be available.
func (b *Bundle) HasProbabilities() bool {
	_, ok := b.Classifier.(ports.ProbabilityEstimator)
	return ok
}

// Info summarizes the bundle for presentation layers.
func (b *Bundle) Info() domain.ModelInfo {
	return domain.ModelInfo{
		VectorizerKind:   b.VectorizerKind,
		ClassifierKind:   b.ClassifierKind,
		Features:         b.Dimension(),
		HasProbabilities: b.HasProbabilities(),
		Fingerprint:      b.Fingerprint,
		Vectorizer:       b.VectorizerPath,
		Model:            b.ModelPath,
	}
}

// Load reads, decodes and cross-checks both artifacts. Every failure is an
// *domain.ArtifactLoadError and no partial bundle is returned.
func Load(ctx context.Context, source ports.ArtifactSource, registry *model.Registry, vectorizerPath, modelPath string) (*Bundle, error) {
	if registry == nil {
		registry = model.DefaultRegistry()
	}

	var (
		vecRaw, modelRaw []byte
		bundle           = &Bundle{VectorizerPath: vectorizerPath, ModelPath: modelPath}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		raw, err := readArtifact(gctx, source, vectorizerPath)
		if err != nil {
			return &domain.ArtifactLoadError{Role: RoleVectorizer, Path: vectorizerPath, Err: err}
		}
		v, kind, err := registry.DecodeVectorizer(raw)
		if err != nil {
			return &domain.ArtifactLoadError{Role: RoleVectorizer, Path: vectorizerPath, Err: err}
		}
		vecRaw, bundle.Vectorizer, bundle.VectorizerKind = raw, v, kind
		return nil
	})
	g.Go(func() error {
		raw, err := readArtifact(gctx, source, modelPath)
		if err != nil {
			return &domain.ArtifactLoadError{Role: RoleClassifier, Path: modelPath, Err: err}
		}
		c, kind, err := registry.DecodeClassifier(raw)
		if err != nil {
			return &domain.ArtifactLoadError{Role: RoleClassifier, Path: modelPath, Err: err}
		}
		modelRaw, bundle.Classifier, bundle.ClassifierKind = raw, c, kind
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if got, want := bundle.Vectorizer.Dimension(), bundle.Classifier.InputDimension(); got != want {
		return nil, &domain.ArtifactLoadError{
			Role: RoleClassifier,
			Path: modelPath,
			Err:  fmt.Errorf("%w: vectorizer produces %d features, classifier expects %d", domain.ErrFeatureMismatch, got, want),
		}
	}

	bundle.Fingerprint = fingerprint(vecRaw, modelRaw)
	return bundle, nil
}

func readArtifact(ctx context.Context, source ports.ArtifactSource, location string) ([]byte, error) {
	if location == "" {
		return nil, fmt.Errorf("artifact location is empty")
	}

	rc, err := source.Open(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	return decompress(raw)
}

// decompress unwraps gzip payloads, detected by their magic bytes.
func decompress(raw []byte) ([]byte, error) {
	if len(raw) < 2 || raw[0] != 0x1f || raw[1] != 0x8b {
		return raw, nil
	}

	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("gzip header: %w", err)
	}
	defer zr.Close()

	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("gunzip: %w", err)
	}
	return out, nil
}

func fingerprint(parts ...[]byte) string {
	h := sha256.New()
	for _, p := range parts {
		sum := sha256.Sum256(p)
		h.Write(sum[:])
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// Loader is the process-wide load-once barrier for a single artifact pair.
// Every call to Load returns the same bundle or the same error.
type Loader struct {
	source         ports.ArtifactSource
	registry       *model.Registry
	vectorizerPath string
	modelPath      string
	logger         *slog.Logger

	once   sync.Once
	bundle *Bundle
	err    error
}

// NewLoader binds artifact locations to a source and kind registry.
func NewLoader(source ports.ArtifactSource, registry *model.Registry, vectorizerPath, modelPath string, logger *slog.Logger) *Loader {
	return &Loader{
		source:         source,
		registry:       registry,
		vectorizerPath: vectorizerPath,
		modelPath:      modelPath,
		logger:         logger,
	}
}

// Load deserializes the artifacts on first use and caches the outcome.
func (l *Loader) Load(ctx context.Context) (*Bundle, error) {
	l.once.Do(func() {
		l.bundle, l.err = Load(ctx, l.source, l.registry, l.vectorizerPath, l.modelPath)
		if l.logger == nil {
			return
		}
		if l.err != nil {
			l.logger.Error("artifact load failed", "error", l.err)
			return
		}
		l.logger.Info("artifacts loaded",
			"vectorizer", l.bundle.VectorizerKind,
			"classifier", l.bundle.ClassifierKind,
			"features", l.bundle.Dimension(),
			"probabilities", l.bundle.HasProbabilities(),
			"fingerprint", l.bundle.Fingerprint)
	})
	return l.bundle, l.err
}
