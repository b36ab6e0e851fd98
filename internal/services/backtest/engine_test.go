package backtest

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"ChainSight/internal/domain/models"
)

// stubPipeline returns a scripted analysis per call, keyed by day order.
type stubPipeline struct {
	analyses []*models.Analysis
	errs     []error
	calls    int
}

func (s *stubPipeline) Analyze(fs *models.FeatureSet, blockWeeklyExpiry bool) (*models.Analysis, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	return s.analyses[i], nil
}

func callAnalysis() *models.Analysis {
	return &models.Analysis{
		Bias:           models.BiasBullish,
		Recommendation: models.RecommendCall,
		ScoreCategory:  models.CategoryBullish,
	}
}

func noTradeAnalysis() *models.Analysis {
	return &models.Analysis{
		Bias:           models.BiasNoTrade,
		Recommendation: models.RecommendNoTrade,
		ScoreCategory:  models.CategorySideways,
	}
}

func snapshot(day int, callEntry, callClose float64) models.DaySnapshot {
	return models.DaySnapshot{
		Date:   time.Date(2025, 1, day, 0, 0, 0, 0, time.UTC),
		Symbol: "NIFTY",
		Premiums: models.OptionPremiums{
			CallEntry: callEntry,
			CallClose: callClose,
			PutEntry:  100,
			PutClose:  100,
		},
	}
}

func TestRunCompoundsCapital(t *testing.T) {
	// Day one hits the target for +50%, day two closes at end of day -20%.
	pipeline := &stubPipeline{analyses: []*models.Analysis{callAnalysis(), callAnalysis()}}
	engine := NewEngine(pipeline, nil)

	snaps := []models.DaySnapshot{
		snapshot(1, 100, 160),
		snapshot(2, 100, 80),
	}
	result, err := engine.Run(snaps, DefaultParams())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(result.Trades) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(result.Trades))
	}
	if result.Trades[0].ExitReason != models.ExitTarget {
		t.Fatalf("day 1 should hit target, got %s", result.Trades[0].ExitReason)
	}
	if result.Trades[1].ExitReason != models.ExitEndOfDay {
		t.Fatalf("day 2 should close at end of day, got %s", result.Trades[1].ExitReason)
	}
	want := 100000 * 1.5 * 0.8
	if math.Abs(result.FinalCapital-want) > 1e-9 {
		t.Fatalf("expected final capital %v, got %v", want, result.FinalCapital)
	}
	if math.Abs(result.TotalReturn-0.2) > 1e-9 {
		t.Fatalf("expected total return 0.2, got %v", result.TotalReturn)
	}
	if math.Abs(result.WinRate-0.5) > 1e-9 {
		t.Fatalf("expected win rate 0.5, got %v", result.WinRate)
	}
}

func TestRunCapitalDeltaMatchesTradeReturn(t *testing.T) {
	pipeline := &stubPipeline{analyses: []*models.Analysis{callAnalysis()}}
	engine := NewEngine(pipeline, nil)

	params := DefaultParams()
	params.Quantity = 50

	result, err := engine.Run([]models.DaySnapshot{snapshot(1, 120, 132)}, params)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	trade := result.Trades[0]
	wantDelta := params.Quantity * trade.EntryPrice * trade.Return
	if got := trade.CapitalAfter - trade.CapitalBefore; math.Abs(got-wantDelta) > 1e-9 {
		t.Fatalf("capital delta %v does not match quantity*entry*return %v", got, wantDelta)
	}
}

func TestRunStopLossExit(t *testing.T) {
	pipeline := &stubPipeline{analyses: []*models.Analysis{callAnalysis()}}
	engine := NewEngine(pipeline, nil)

	result, err := engine.Run([]models.DaySnapshot{snapshot(1, 100, 50)}, DefaultParams())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	trade := result.Trades[0]
	if trade.ExitReason != models.ExitStopLoss {
		t.Fatalf("expected stop loss exit, got %s", trade.ExitReason)
	}
	if math.Abs(trade.ExitPrice-70) > 1e-9 {
		t.Fatalf("stop exit should fill at the stop price 70, got %v", trade.ExitPrice)
	}
	if math.Abs(trade.Return+0.3) > 1e-9 {
		t.Fatalf("stop loss return should be -0.3, got %v", trade.Return)
	}
}

func TestRunSkipsNoTradeDays(t *testing.T) {
	pipeline := &stubPipeline{analyses: []*models.Analysis{noTradeAnalysis(), callAnalysis(), noTradeAnalysis()}}
	engine := NewEngine(pipeline, nil)

	snaps := []models.DaySnapshot{
		snapshot(1, 100, 110),
		snapshot(2, 100, 110),
		snapshot(3, 100, 110),
	}
	result, err := engine.Run(snaps, DefaultParams())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(result.Trades) != 1 || len(result.Skipped) != 2 {
		t.Fatalf("expected 1 trade and 2 skips, got %d/%d", len(result.Trades), len(result.Skipped))
	}
	if len(result.Trades)+len(result.Skipped) != len(snaps) {
		t.Fatalf("every day must be a trade or a skip")
	}
	if result.Skipped[0].Day != 0 || result.Skipped[1].Day != 2 {
		t.Fatalf("skip days recorded wrong: %+v", result.Skipped)
	}
	if result.Skipped[0].Reason == "" {
		t.Fatalf("skips must carry a reason")
	}
}

func TestRunHaltsOnPipelineError(t *testing.T) {
	dayErr := &models.MissingFeatureError{Rule: "pcr", Feature: "pcr"}
	pipeline := &stubPipeline{
		analyses: []*models.Analysis{callAnalysis(), nil, callAnalysis()},
		errs:     []error{nil, dayErr, nil},
	}
	engine := NewEngine(pipeline, nil)

	snaps := []models.DaySnapshot{
		snapshot(1, 100, 160),
		snapshot(2, 100, 160),
		snapshot(3, 100, 160),
	}
	result, err := engine.Run(snaps, DefaultParams())
	if err == nil {
		t.Fatalf("expected error from failed day")
	}
	var missing *models.MissingFeatureError
	if !errors.As(err, &missing) {
		t.Fatalf("cause should unwrap to MissingFeatureError, got %v", err)
	}
	if result == nil {
		t.Fatalf("partial result must be returned")
	}
	if result.FailedDay != 1 {
		t.Fatalf("expected failed day 1, got %d", result.FailedDay)
	}
	if len(result.Trades) != 1 {
		t.Fatalf("day before the failure must survive in the result")
	}
	if pipeline.calls != 2 {
		t.Fatalf("replay must halt at the failed day, made %d calls", pipeline.calls)
	}
}

func TestRunDeterministic(t *testing.T) {
	snaps := []models.DaySnapshot{
		snapshot(1, 100, 160),
		snapshot(2, 100, 80),
		snapshot(3, 100, 104),
	}
	run := func() *models.BacktestResult {
		pipeline := &stubPipeline{analyses: []*models.Analysis{callAnalysis(), callAnalysis(), noTradeAnalysis()}}
		result, err := NewEngine(pipeline, nil).Run(snaps, DefaultParams())
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		return result
	}
	if a, b := run(), run(); !reflect.DeepEqual(a, b) {
		t.Fatalf("identical inputs produced different results")
	}
}

func TestRunMaxDrawdown(t *testing.T) {
	// Up to 150000, down to 105000: drawdown (150000-105000)/150000 = 0.3.
	pipeline := &stubPipeline{analyses: []*models.Analysis{callAnalysis(), callAnalysis()}}
	engine := NewEngine(pipeline, nil)

	snaps := []models.DaySnapshot{
		snapshot(1, 100, 160),
		snapshot(2, 100, 70),
	}
	result, err := engine.Run(snaps, DefaultParams())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if math.Abs(result.MaxDrawdown-0.3) > 1e-9 {
		t.Fatalf("expected max drawdown 0.3, got %v", result.MaxDrawdown)
	}
}

func TestRunEquityCurveAndProfitFactor(t *testing.T) {
	// Target +50%, skip, end-of-day -20%: two closed trades, one flat day.
	pipeline := &stubPipeline{analyses: []*models.Analysis{callAnalysis(), noTradeAnalysis(), callAnalysis()}}
	engine := NewEngine(pipeline, nil)

	snaps := []models.DaySnapshot{
		snapshot(1, 100, 160),
		snapshot(2, 100, 110),
		snapshot(3, 100, 80),
	}
	result, err := engine.Run(snaps, DefaultParams())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(result.EquityCurve) != len(snaps) {
		t.Fatalf("equity curve must cover every day, got %d points", len(result.EquityCurve))
	}
	wantEquity := []float64{150000, 150000, 120000}
	for i, want := range wantEquity {
		p := result.EquityCurve[i]
		if p.Day != i || !p.Date.Equal(snaps[i].Date) {
			t.Fatalf("point %d: wrong day/date %+v", i, p)
		}
		if math.Abs(p.Capital-want) > 1e-9 {
			t.Fatalf("point %d: expected capital %v, got %v", i, want, p.Capital)
		}
	}
	// Avg win 50000, avg loss -30000.
	if math.Abs(result.ProfitFactor-50000.0/30000.0) > 1e-9 {
		t.Fatalf("expected profit factor %v, got %v", 50000.0/30000.0, result.ProfitFactor)
	}

	// All winners: the ratio is undefined and reported as zero.
	pipeline = &stubPipeline{analyses: []*models.Analysis{callAnalysis()}}
	result, err = NewEngine(pipeline, nil).Run([]models.DaySnapshot{snapshot(1, 100, 160)}, DefaultParams())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.ProfitFactor != 0 {
		t.Fatalf("profit factor with no losers should be 0, got %v", result.ProfitFactor)
	}
}

func TestRunRejectsBadParams(t *testing.T) {
	engine := NewEngine(&stubPipeline{}, nil)
	bad := []Params{
		{InitialCapital: 0, StopLossPct: 0.3, TargetPct: 0.5, CapitalFraction: 1, MaxOpenTrades: 1},
		{InitialCapital: 1, StopLossPct: 0, TargetPct: 0.5, CapitalFraction: 1, MaxOpenTrades: 1},
		{InitialCapital: 1, StopLossPct: 0.3, TargetPct: 0.5, CapitalFraction: 1, MaxOpenTrades: 2},
		{InitialCapital: 1, StopLossPct: 0.3, TargetPct: 0.5, CapitalFraction: 0, MaxOpenTrades: 1},
	}
	for i, params := range bad {
		var thErr *models.InvalidThresholdError
		if _, err := engine.Run(nil, params); !errors.As(err, &thErr) {
			t.Fatalf("case %d: expected InvalidThresholdError, got %v", i, err)
		}
	}
}
