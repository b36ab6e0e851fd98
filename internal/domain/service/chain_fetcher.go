package service

import (
	"context"

	"ChainSight/internal/domain/models"
)

// ChainFetcher pulls a raw option chain for a symbol from the exchange.
type ChainFetcher interface {
	FetchChain(ctx context.Context, symbol string) (*models.RawOptionChain, error)
}
