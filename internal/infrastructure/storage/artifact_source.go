package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"NewsVerdict/internal/ports"
)

// FileSource opens artifacts from the local filesystem. Relative locations
// resolve against baseDir when it is set.
type FileSource struct {
	baseDir string
}

var _ ports.ArtifactSource = (*FileSource)(nil)

// NewFileSource builds a filesystem source.
func NewFileSource(baseDir string) *FileSource {
	return &FileSource{baseDir: baseDir}
}

// Open returns the file at location.
func (s *FileSource) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := strings.TrimPrefix(location, "file://")
	if s.baseDir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(s.baseDir, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// RouterSource dispatches locations by URI scheme; locations without a
// registered scheme go to the fallback.
type RouterSource struct {
	schemes  map[string]ports.ArtifactSource
	fallback ports.ArtifactSource
}

var _ ports.ArtifactSource = (*RouterSource)(nil)

// NewRouterSource builds a router with the given fallback source.
func NewRouterSource(fallback ports.ArtifactSource) *RouterSource {
	return &RouterSource{schemes: map[string]ports.ArtifactSource{}, fallback: fallback}
}

// Handle registers a source for scheme (e.g. "s3").
func (r *RouterSource) Handle(scheme string, source ports.ArtifactSource) {
	r.schemes[strings.ToLower(scheme)] = source
}

// Open resolves the scheme of location and delegates.
func (r *RouterSource) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	if scheme, _, ok := strings.Cut(location, "://"); ok {
		if source, found := r.schemes[strings.ToLower(scheme)]; found {
			return source.Open(ctx, location)
		}
		if strings.ToLower(scheme) != "file" {
			return nil, fmt.Errorf("no artifact source for scheme %s", scheme)
		}
	}

	if r.fallback == nil {
		return nil, fmt.Errorf("no artifact source for %s", location)
	}
	return r.fallback.Open(ctx, location)
}
