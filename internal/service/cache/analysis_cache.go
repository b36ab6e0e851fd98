package cache

import (
	"context"
	"encoding/json"
	"time"

	"ChainSight/internal/domain/models"
	domrepo "ChainSight/internal/domain/repository"
)

// AnalysisCache adapts a BytesCache to the repository.AnalysisCache
// interface, storing analyses as JSON. Cache failures degrade to misses;
// a flaky Redis must never fail an analysis request.
type AnalysisCache struct {
	inner BytesCache
}

func NewAnalysisCache(inner BytesCache) *AnalysisCache {
	return &AnalysisCache{inner: inner}
}

var _ domrepo.AnalysisCache = (*AnalysisCache)(nil)

func (c *AnalysisCache) Get(ctx context.Context, key string) (*models.Analysis, bool) {
	b, ok, err := c.inner.GetBytes(key)
	if err != nil || !ok {
		return nil, false
	}
	var analysis models.Analysis
	if err := json.Unmarshal(b, &analysis); err != nil {
		return nil, false
	}
	return &analysis, true
}

func (c *AnalysisCache) Set(ctx context.Context, key string, analysis *models.Analysis, ttl time.Duration) {
	b, err := json.Marshal(analysis)
	if err != nil {
		return
	}
	_ = c.inner.SetBytes(key, b, ttl)
}
