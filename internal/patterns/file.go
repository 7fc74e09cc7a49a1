package patterns

import (
	"context"
	"encoding/json"
	"os"
	"sync"

	"github.com/opensource-finance/fraudshield/internal/domain"
)

// FileProvider loads the pattern catalog from a JSON file on first use.
// The file holds an array of domain.Pattern objects. Load failures make the
// provider unhealthy and matching returns empty results rather than errors,
// so a bad catalog degrades to "no patterns" instead of failing assessments.
type FileProvider struct {
	path string

	once    sync.Once
	catalog []domain.Pattern
	loadErr error
}

// NewFileProvider creates a provider backed by the JSON catalog at path.
// The file is not read until the first match or health check.
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

func (p *FileProvider) load() {
	p.once.Do(func() {
		data, err := os.ReadFile(p.path)
		if err != nil {
			p.loadErr = err
			return
		}
		p.loadErr = json.Unmarshal(data, &p.catalog)
	})
}

// FindMatchingPatterns matches the fired factors against the file catalog.
func (p *FileProvider) FindMatchingPatterns(ctx context.Context, factors []domain.FactorCode, txCtx domain.PatternContext) ([]domain.PatternMatch, error) {
	p.load()
	if p.loadErr != nil {
		return []domain.PatternMatch{}, nil
	}
	return matchCatalog(p.catalog, factors, txCtx), nil
}

// HealthCheck reports whether the catalog file loaded and is non-empty.
func (p *FileProvider) HealthCheck(ctx context.Context) bool {
	p.load()
	return p.loadErr == nil && len(p.catalog) > 0
}
