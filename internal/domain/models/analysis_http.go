package models

// Requests for analysis HTTP endpoints. Defined in domain for consistency and reuse.

type AnalyzeRequest struct {
	Symbol            string      `query:"symbol" json:"symbol" validate:"required"`
	Expiry            string      `query:"expiry" json:"expiry"`
	BlockWeeklyExpiry *bool       `query:"block_weekly_expiry" json:"block_weekly_expiry"`
	Features          *FeatureSet `json:"features"`
}

// Blocking reports whether weekly-expiry warnings should block the trade.
// Absent means the default: block.
func (r AnalyzeRequest) Blocking() bool {
	if r.BlockWeeklyExpiry == nil {
		return true
	}
	return *r.BlockWeeklyExpiry
}

type BacktestRequest struct {
	Symbol          string        `query:"symbol" json:"symbol" validate:"required"`
	From            string        `query:"from" json:"from" validate:"required_without=Snapshots"`
	To              string        `query:"to" json:"to" validate:"required_without=Snapshots"`
	InitialCapital  float64       `json:"initial_capital" default:"100000" validate:"gt=0"`
	StopLossPct     float64       `json:"stop_loss_pct" default:"0.3" validate:"gt=0,lte=1"`
	TargetPct       float64       `json:"target_pct" default:"0.5" validate:"gt=0"`
	CapitalFraction float64       `json:"capital_fraction" default:"1.0" validate:"gt=0,lte=1"`
	Quantity        float64       `json:"quantity" validate:"gte=0"`
	Snapshots       []DaySnapshot `json:"snapshots"`
}

type HistoryRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	From   string `query:"from" json:"from" validate:"required"`
	To     string `query:"to" json:"to" validate:"required"`
	Limit  int    `query:"limit" json:"limit" default:"365" validate:"gte=1,lte=5000"`
}
