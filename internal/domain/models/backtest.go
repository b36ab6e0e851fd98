package models

import "time"

// OptionPremiums carries the tradable ATM premiums of one historical day:
// entry (analysis time) and end-of-day close, per side. The simulator checks
// stop-loss and target against the day's terminal move and falls back to the
// end-of-day price.
type OptionPremiums struct {
	CallEntry float64 `json:"call_entry"`
	CallClose float64 `json:"call_close"`
	PutEntry  float64 `json:"put_entry"`
	PutClose  float64 `json:"put_close"`
}

// DaySnapshot is one day of backtest history: the features the pipeline sees
// plus the premiums the simulated trade settles against.
type DaySnapshot struct {
	Date     time.Time      `json:"date"`
	Symbol   string         `json:"symbol"`
	Features FeatureSet     `json:"features"`
	Premiums OptionPremiums `json:"premiums"`
}

// ExitReason records how a simulated trade closed.
type ExitReason string

const (
	ExitStopLoss ExitReason = "StopLoss"
	ExitTarget   ExitReason = "Target"
	ExitEndOfDay ExitReason = "EndOfDay"
)

// BacktestTrade is one opened-and-closed intraday position. Trades never span
// days: whatever is not stopped or targeted settles at end of day.
type BacktestTrade struct {
	Day           int            `json:"day"`
	Date          time.Time      `json:"date"`
	Direction     Recommendation `json:"direction"`
	EntryPrice    float64        `json:"entry_price"`
	StopLoss      float64        `json:"stop_loss"` // absolute premium level
	Target        float64        `json:"target"`    // absolute premium level
	ExitPrice     float64        `json:"exit_price"`
	ExitReason    ExitReason     `json:"exit_reason"`
	Return        float64        `json:"return"` // realized fraction of entry
	CapitalBefore float64        `json:"capital_before"`
	CapitalAfter  float64        `json:"capital_after"`
}

// SkippedDay records a day the simulator refused to trade and why.
type SkippedDay struct {
	Day    int    `json:"day"`
	Reason string `json:"reason"`
}

// EquityPoint is the capital level after one replayed day, traded or not.
type EquityPoint struct {
	Day     int       `json:"day"`
	Date    time.Time `json:"date"`
	Capital float64   `json:"capital"`
}

// BacktestResult is the complete replay outcome. Immutable once the replay
// finishes. FailedDay is -1 unless the replay halted on a per-day evaluation
// error, in which case it is the index of the failing day and the trade list
// holds everything accumulated before it.
type BacktestResult struct {
	Trades         []BacktestTrade `json:"trades"`
	Skipped        []SkippedDay    `json:"skipped"`
	EquityCurve    []EquityPoint   `json:"equity_curve"`
	WinRate        float64         `json:"win_rate"`
	ProfitFactor   float64         `json:"profit_factor"`
	TotalReturn    float64         `json:"total_return"`
	MaxDrawdown    float64         `json:"max_drawdown"`
	InitialCapital float64         `json:"initial_capital"`
	FinalCapital   float64         `json:"final_capital"`
	FailedDay      int             `json:"failed_day"`
}
