package usecase

import (
	"context"
	"fmt"
	"time"

	"ChainSight/internal/domain/models"
	domrepo "ChainSight/internal/domain/repository"
	"ChainSight/internal/services/backtest"
	"ChainSight/pkg/logger"
	"ChainSight/pkg/util"
)

// Backtester replays stored or caller-supplied history through the analyzer.
type Backtester struct {
	engine  *backtest.Engine
	store   domrepo.SnapshotStore
	metrics domrepo.Metrics
	log     *logger.Logger
}

func NewBacktester(analyzer *Analyzer, store domrepo.SnapshotStore, metrics domrepo.Metrics, log *logger.Logger) *Backtester {
	return &Backtester{
		engine:  backtest.NewEngine(analyzer, log),
		store:   store,
		metrics: metrics,
		log:     log,
	}
}

// Run resolves the snapshot series and replays it. Inline snapshots win
// over the store; with neither the request is unanswerable.
func (b *Backtester) Run(ctx context.Context, req models.BacktestRequest) (*models.BacktestResult, error) {
	start := time.Now()

	snaps := req.Snapshots
	if len(snaps) == 0 {
		if b.store == nil {
			return nil, fmt.Errorf("backtest %s: no snapshots supplied and no snapshot store configured", req.Symbol)
		}
		from, ok := util.ParseTime(req.From)
		if !ok {
			return nil, fmt.Errorf("backtest %s: unparseable from date %q", req.Symbol, req.From)
		}
		to, ok := util.ParseTime(req.To)
		if !ok {
			return nil, fmt.Errorf("backtest %s: unparseable to date %q", req.Symbol, req.To)
		}
		var err error
		snaps, err = b.store.QueryRange(ctx, req.Symbol, from, to, 0)
		if err != nil {
			if b.metrics != nil {
				b.metrics.RecordError("snapshot_query")
			}
			return nil, fmt.Errorf("backtest %s: load snapshots: %w", req.Symbol, err)
		}
	}
	if len(snaps) == 0 {
		return nil, fmt.Errorf("backtest %s: no snapshots in range %s..%s", req.Symbol, req.From, req.To)
	}

	params := backtest.DefaultParams()
	params.InitialCapital = req.InitialCapital
	params.StopLossPct = req.StopLossPct
	params.TargetPct = req.TargetPct
	params.CapitalFraction = req.CapitalFraction
	params.Quantity = req.Quantity

	result, err := b.engine.Run(snaps, params)

	if b.metrics != nil {
		b.metrics.RecordLatency("backtest", time.Since(start).Seconds())
	}
	if b.log != nil && result != nil {
		b.log.Info("backtest finished",
			logger.String("symbol", req.Symbol),
			logger.Int("days", len(snaps)),
			logger.Int("trades", len(result.Trades)),
			logger.Int("skipped", len(result.Skipped)),
			logger.Any("total_return", result.TotalReturn))
	}
	return result, err
}
