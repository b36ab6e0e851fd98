package usecase

import (
	"context"
	"fmt"
	"time"

	"ChainSight/internal/domain/models"
	domrepo "ChainSight/internal/domain/repository"
	domsvc "ChainSight/internal/domain/service"
	"ChainSight/internal/services/chain"
	"ChainSight/internal/services/explain"
	"ChainSight/internal/services/features"
	"ChainSight/internal/services/rules"
	"ChainSight/internal/services/safety"
	"ChainSight/internal/services/scoring"
	"ChainSight/pkg/logger"
)

// Analyzer runs the full pipeline: rule evaluation, scoring, safety checks
// and explanation, assembled into one Analysis. The safety layer runs
// independently of scoring; a blocking warning overrides the recommendation
// only here, at assembly.
type Analyzer struct {
	evaluator *rules.Evaluator
	engine    *scoring.Engine
	explainer *explain.Explainer

	thresholds safety.Thresholds

	fetcher   domsvc.ChainFetcher
	cache     domrepo.AnalysisCache
	publisher domrepo.SignalPublisher
	metrics   domrepo.Metrics
	log       *logger.Logger

	cacheTTL time.Duration
	now      func() time.Time
}

type AnalyzerOption func(*Analyzer)

// WithChainFetcher wires the live exchange fetcher. Without it, Analyze
// still works on caller-supplied feature sets; AnalyzeSymbol does not.
func WithChainFetcher(fetcher domsvc.ChainFetcher) AnalyzerOption {
	return func(a *Analyzer) { a.fetcher = fetcher }
}

func WithCache(cache domrepo.AnalysisCache, ttl time.Duration) AnalyzerOption {
	return func(a *Analyzer) {
		a.cache = cache
		a.cacheTTL = ttl
	}
}

func WithPublisher(publisher domrepo.SignalPublisher) AnalyzerOption {
	return func(a *Analyzer) { a.publisher = publisher }
}

func WithMetrics(metrics domrepo.Metrics) AnalyzerOption {
	return func(a *Analyzer) { a.metrics = metrics }
}

// WithClock overrides the wall clock, used by tests and replays.
func WithClock(now func() time.Time) AnalyzerOption {
	return func(a *Analyzer) { a.now = now }
}

// NewAnalyzer validates the weight config and safety thresholds up front so
// a misconfigured service refuses to start instead of mis-scoring trades.
func NewAnalyzer(weights models.WeightConfig, thresholds safety.Thresholds, log *logger.Logger, opts ...AnalyzerOption) (*Analyzer, error) {
	registry := rules.NewRegistry()
	engine, err := scoring.NewEngine(weights, registry.Names())
	if err != nil {
		return nil, err
	}
	// Construct once to surface bad thresholds at startup; per-request
	// checkers are rebuilt with the caller's blocking preference.
	if _, err := safety.NewChecker(thresholds); err != nil {
		return nil, err
	}
	sources := make([]explain.TagSource, 0, len(registry.Rules()))
	for _, r := range registry.Rules() {
		sources = append(sources, r)
	}
	explainer, err := explain.NewExplainer(sources)
	if err != nil {
		return nil, err
	}

	a := &Analyzer{
		evaluator:  rules.NewEvaluator(registry, log),
		engine:     engine,
		explainer:  explainer,
		thresholds: thresholds,
		log:        log,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Analyze runs the pipeline over a ready feature set.
func (a *Analyzer) Analyze(fs *models.FeatureSet, blockWeeklyExpiry bool) (*models.Analysis, error) {
	start := time.Now()

	if err := fs.Validate(); err != nil {
		a.recordError("feature_validation")
		return nil, err
	}

	results, err := a.evaluator.Evaluate(fs)
	if err != nil {
		a.recordError("rule_evaluation")
		return nil, err
	}

	scored := a.engine.Score(results)

	if naive := rules.NaiveBias(results); a.log != nil && naive != models.BiasSideways && biasOf(scored.Category) != naive {
		a.log.Debug("weighted score disagrees with raw rule consensus",
			logger.String("symbol", fs.Symbol),
			logger.String("naive", string(naive)),
			logger.String("category", string(scored.Category)))
	}

	checker, err := safety.NewChecker(a.thresholds, safety.WithWeeklyExpiryBlocking(blockWeeklyExpiry))
	if err != nil {
		return nil, err
	}
	report := checker.Check(fs, targetStrike(fs, scored.Category))

	eval := assemble(scored, results, report)
	explanation := a.explainer.Explain(eval, report.Warnings)

	analysis := &models.Analysis{
		Bias:           eval.Bias,
		Score:          scored.Score,
		ScoreCategory:  scored.Category,
		Recommendation: eval.Recommendation,
		Confidence:     eval.Confidence,
		RiskLevel:      eval.RiskLevel,
		Explanation:    &explanation,
		Warnings:       report.Warnings,
		RuleResults:    results,
	}

	if a.metrics != nil {
		a.metrics.RecordAnalysis(fs.Symbol, string(analysis.Bias))
		a.metrics.RecordScore(fs.Symbol, analysis.Score)
		a.metrics.RecordLatency("analyze", time.Since(start).Seconds())
	}
	return analysis, nil
}

// AnalyzeSymbol fetches the live chain, extracts features and analyzes
// them. Results are cached per symbol and expiry.
func (a *Analyzer) AnalyzeSymbol(ctx context.Context, req models.AnalyzeRequest) (*models.Analysis, error) {
	if req.Features != nil {
		return a.Analyze(req.Features, req.Blocking())
	}
	if a.fetcher == nil {
		return nil, fmt.Errorf("analyze %s: no chain fetcher configured and no features supplied", req.Symbol)
	}

	key := cacheKey(req)
	if a.cache != nil {
		if cached, ok := a.cache.Get(ctx, key); ok {
			if a.log != nil {
				a.log.Debug("analysis cache hit", logger.String("symbol", req.Symbol))
			}
			return cached, nil
		}
	}

	raw, err := a.fetcher.FetchChain(ctx, req.Symbol)
	if err != nil {
		a.recordError("chain_fetch")
		return nil, fmt.Errorf("fetch chain %s: %w", req.Symbol, err)
	}

	snap, err := chain.Convert(req.Symbol, raw, req.Expiry, a.now())
	if err != nil {
		a.recordError("chain_convert")
		return nil, err
	}

	prevSpot := prevUnderlying(raw)
	fs, err := features.Extract(snap.Symbol, snap.Rows, snap.Spot, snap.Spot-prevSpot, snap.ExpiryType, snap.DaysToExpiry)
	if err != nil {
		a.recordError("feature_extract")
		return nil, err
	}

	analysis, err := a.Analyze(fs, req.Blocking())
	if err != nil {
		return nil, err
	}

	if a.cache != nil {
		a.cache.Set(ctx, key, analysis, a.cacheTTL)
	}
	if a.publisher != nil {
		if err := a.publisher.Publish(ctx, req.Symbol, analysis); err != nil {
			a.recordError("signal_publish")
			if a.log != nil {
				a.log.Warn("signal publish failed", logger.String("symbol", req.Symbol), logger.Error(err))
			}
		}
	}
	return analysis, nil
}

// assemble derives the final verdict. Score category sets bias and the
// directional recommendation; a blocking warning forces No-Trade and High
// risk without touching the score or the rule results.
func assemble(scored models.ScoreResult, results []models.RuleResult, report models.SafetyReport) *models.Evaluation {
	eval := &models.Evaluation{
		Confidence:  scored.Confidence,
		RuleResults: results,
	}

	eval.Bias = biasOf(scored.Category)
	switch eval.Bias {
	case models.BiasBullish:
		eval.Recommendation = models.RecommendCall
	case models.BiasBearish:
		eval.Recommendation = models.RecommendPut
	default:
		eval.Recommendation = models.RecommendNoTrade
	}

	eval.RiskLevel = riskLevel(scored, report)

	if report.HasBlocking {
		eval.Bias = models.BiasNoTrade
		eval.Recommendation = models.RecommendNoTrade
		eval.RiskLevel = models.RiskHigh
	}
	return eval
}

// biasOf maps a score category to its directional bias.
func biasOf(category models.ScoreCategory) models.MarketBias {
	switch category {
	case models.CategoryStrongBullish, models.CategoryBullish:
		return models.BiasBullish
	case models.CategoryStrongBearish, models.CategoryBearish:
		return models.BiasBearish
	default:
		return models.BiasSideways
	}
}

// riskLevel grades the setup from rule agreement and the warning load.
func riskLevel(scored models.ScoreResult, report models.SafetyReport) models.RiskLevel {
	warnings := 0
	for _, w := range report.Warnings {
		if w.Severity == models.SeverityWarning || w.Severity == models.SeverityBlocking {
			warnings++
		}
	}
	switch {
	case report.HasBlocking || warnings >= 2:
		return models.RiskHigh
	case warnings == 1 || scored.Confidence < 0.5:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

// targetStrike is the strike a directional trade would buy: the ATM strike
// when present. Neutral categories have no target.
func targetStrike(fs *models.FeatureSet, category models.ScoreCategory) float64 {
	if category == models.CategorySideways || fs.ATMStrike == nil {
		return 0
	}
	return *fs.ATMStrike
}

// prevUnderlying estimates yesterday's close from the quoted underlying
// values. NSE does not ship it directly; absent a better source the spot
// change degrades to zero and the build-up read leans on OI deltas alone.
func prevUnderlying(raw *models.RawOptionChain) float64 {
	return raw.Records.UnderlyingValue
}

func (a *Analyzer) recordError(kind string) {
	if a.metrics != nil {
		a.metrics.RecordError(kind)
	}
}

func cacheKey(req models.AnalyzeRequest) string {
	block := "block"
	if !req.Blocking() {
		block = "noblock"
	}
	return fmt.Sprintf("analysis:%s:%s:%s", req.Symbol, req.Expiry, block)
}
