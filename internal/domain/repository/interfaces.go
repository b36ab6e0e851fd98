package repository

import (
	"context"
	"time"

	"ChainSight/internal/domain/models"
)

// SnapshotStore persists historical day snapshots for backtesting.
// QueryRange returns snapshots in ascending date order.
type SnapshotStore interface {
	Init(ctx context.Context) error // ensure tables, health checks
	Store(ctx context.Context, snap *models.DaySnapshot) error
	StoreBatch(ctx context.Context, snaps []*models.DaySnapshot) error
	QueryRange(ctx context.Context, symbol string, from, to time.Time, limit int) ([]models.DaySnapshot, error)
	Health(ctx context.Context) error // ping
	Close() error
}

// SignalPublisher pushes completed analyses to downstream consumers.
type SignalPublisher interface {
	Publish(ctx context.Context, symbol string, analysis *models.Analysis) error
	Close() error
}

// AnalysisCache holds recent analyses keyed by symbol and expiry so repeat
// requests inside the market-data refresh window skip the fetch.
type AnalysisCache interface {
	Get(ctx context.Context, key string) (*models.Analysis, bool)
	Set(ctx context.Context, key string, analysis *models.Analysis, ttl time.Duration)
}

// Metrics abstracts the counters the pipeline records.
type Metrics interface {
	RecordAnalysis(symbol string, bias string)
	RecordScore(symbol string, score float64)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
