// Package backtest replays the analysis pipeline over historical day
// snapshots with an explicit capital ledger. The replay is a plain fold in
// day order; determinism comes from never consulting anything but the
// snapshots and the params.
package backtest

import (
	"fmt"
	"math"

	"ChainSight/internal/domain/models"
	"ChainSight/pkg/logger"
)

// Pipeline is the slice of the analyzer the backtester needs: features in,
// full analysis out. The live usecase satisfies it.
type Pipeline interface {
	Analyze(fs *models.FeatureSet, blockWeeklyExpiry bool) (*models.Analysis, error)
}

// Params configure one backtest run.
type Params struct {
	InitialCapital float64
	// StopLossPct exits the trade once the premium has lost this fraction.
	StopLossPct float64
	// TargetPct exits the trade once the premium has gained this fraction.
	TargetPct float64
	// CapitalFraction sizes each trade as a fraction of current capital
	// when Quantity is zero.
	CapitalFraction float64
	// Quantity, when positive, sizes each trade as a fixed number of units
	// at the entry premium instead of a capital fraction.
	Quantity float64
	// MaxOpenTrades is validated but fixed: the replay holds at most one
	// position, opened and closed within the same day.
	MaxOpenTrades int
	// BlockWeeklyExpiry is forwarded to the pipeline's safety layer.
	BlockWeeklyExpiry bool
}

func DefaultParams() Params {
	return Params{
		InitialCapital:    100000,
		StopLossPct:       0.3,
		TargetPct:         0.5,
		CapitalFraction:   1.0,
		MaxOpenTrades:     1,
		BlockWeeklyExpiry: true,
	}
}

func (p Params) validate() error {
	if p.InitialCapital <= 0 {
		return &models.InvalidThresholdError{Name: "initial_capital", Value: p.InitialCapital}
	}
	if p.StopLossPct <= 0 || p.StopLossPct > 1 {
		return &models.InvalidThresholdError{Name: "stop_loss_pct", Value: p.StopLossPct}
	}
	if p.TargetPct <= 0 {
		return &models.InvalidThresholdError{Name: "target_pct", Value: p.TargetPct}
	}
	if p.Quantity < 0 {
		return &models.InvalidThresholdError{Name: "quantity", Value: p.Quantity}
	}
	if p.Quantity == 0 && (p.CapitalFraction <= 0 || p.CapitalFraction > 1) {
		return &models.InvalidThresholdError{Name: "capital_fraction", Value: p.CapitalFraction}
	}
	if p.MaxOpenTrades != 1 {
		return &models.InvalidThresholdError{Name: "max_open_trades", Value: float64(p.MaxOpenTrades)}
	}
	return nil
}

// Engine replays snapshots through a pipeline.
type Engine struct {
	pipeline Pipeline
	log      *logger.Logger
}

func NewEngine(pipeline Pipeline, log *logger.Logger) *Engine {
	return &Engine{pipeline: pipeline, log: log}
}

// Run folds over the snapshots in the order given. Each day either produces
// a trade, a skip with a reason, or halts the run. A pipeline error stops
// the replay immediately and tags the partial result with the failed day;
// the days already replayed stay in the result untouched.
func (e *Engine) Run(snapshots []models.DaySnapshot, params Params) (*models.BacktestResult, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	result := &models.BacktestResult{
		InitialCapital: params.InitialCapital,
		FinalCapital:   params.InitialCapital,
		FailedDay:      -1,
	}
	capital := params.InitialCapital

	for day, snap := range snapshots {
		analysis, err := e.pipeline.Analyze(&snap.Features, params.BlockWeeklyExpiry)
		if err != nil {
			result.FailedDay = day
			e.finalize(result, capital)
			return result, fmt.Errorf("backtest day %d (%s): %w", day, snap.Date, err)
		}

		if analysis.Recommendation == models.RecommendNoTrade {
			result.Skipped = append(result.Skipped, models.SkippedDay{
				Day:    day,
				Reason: skipReason(analysis),
			})
		} else if entry, close := premiumsFor(analysis.Recommendation, snap.Premiums); entry <= 0 {
			result.Skipped = append(result.Skipped, models.SkippedDay{
				Day:    day,
				Reason: fmt.Sprintf("no %s premium quoted", analysis.Recommendation),
			})
		} else {
			trade := e.executeTrade(day, snap, analysis.Recommendation, entry, close, capital, params)
			capital = trade.CapitalAfter
			result.Trades = append(result.Trades, trade)

			if e.log != nil {
				e.log.Debug("backtest trade closed",
					logger.Int("day", day),
					logger.String("direction", string(trade.Direction)),
					logger.String("exit_reason", string(trade.ExitReason)),
					logger.Any("return", trade.Return))
			}
		}

		// Skipped days hold flat; the curve covers every replayed day.
		result.EquityCurve = append(result.EquityCurve, models.EquityPoint{
			Day:     day,
			Date:    snap.Date,
			Capital: capital,
		})
	}

	e.finalize(result, capital)
	return result, nil
}

// executeTrade opens at the entry premium and closes at stop, target, or
// end of day. Stop loss is checked before target: with only open and close
// premiums per day, the pessimistic ordering is assumed.
func (e *Engine) executeTrade(day int, snap models.DaySnapshot, direction models.Recommendation, entry, close, capital float64, params Params) models.BacktestTrade {
	raw := (close - entry) / entry

	exitPrice := close
	exitReason := models.ExitEndOfDay
	switch {
	case raw <= -params.StopLossPct:
		exitPrice = entry * (1 - params.StopLossPct)
		exitReason = models.ExitStopLoss
	case raw >= params.TargetPct:
		exitPrice = entry * (1 + params.TargetPct)
		exitReason = models.ExitTarget
	}
	ret := (exitPrice - entry) / entry

	notional := params.CapitalFraction * capital
	if params.Quantity > 0 {
		notional = params.Quantity * entry
	}

	return models.BacktestTrade{
		Day:           day,
		Date:          snap.Date,
		Direction:     direction,
		EntryPrice:    entry,
		StopLoss:      entry * (1 - params.StopLossPct),
		Target:        entry * (1 + params.TargetPct),
		ExitPrice:     exitPrice,
		ExitReason:    exitReason,
		Return:        ret,
		CapitalBefore: capital,
		CapitalAfter:  capital + notional*ret,
	}
}

// finalize computes the aggregates from the replayed ledger.
func (e *Engine) finalize(result *models.BacktestResult, capital float64) {
	result.FinalCapital = capital
	result.TotalReturn = (capital - result.InitialCapital) / result.InitialCapital

	wins, losses := 0, 0
	var winSum, lossSum float64
	peak := result.InitialCapital
	maxDD := 0.0
	for _, trade := range result.Trades {
		pnl := trade.CapitalAfter - trade.CapitalBefore
		if trade.Return > 0 {
			wins++
			winSum += pnl
		} else {
			losses++
			lossSum += pnl
		}
		if trade.CapitalAfter > peak {
			peak = trade.CapitalAfter
		}
		if dd := (peak - trade.CapitalAfter) / peak; dd > maxDD {
			maxDD = dd
		}
	}
	if len(result.Trades) > 0 {
		result.WinRate = float64(wins) / float64(len(result.Trades))
	}
	if wins > 0 && losses > 0 && lossSum != 0 {
		avgWin := winSum / float64(wins)
		avgLoss := lossSum / float64(losses)
		result.ProfitFactor = math.Abs(avgWin / avgLoss)
	}
	result.MaxDrawdown = maxDD
}

func premiumsFor(direction models.Recommendation, p models.OptionPremiums) (entry, close float64) {
	if direction == models.RecommendCall {
		return p.CallEntry, p.CallClose
	}
	return p.PutEntry, p.PutClose
}

func skipReason(analysis *models.Analysis) string {
	for _, w := range analysis.Warnings {
		if w.Severity == models.SeverityBlocking {
			return w.Message
		}
	}
	return fmt.Sprintf("no directional edge (%s)", analysis.ScoreCategory)
}
