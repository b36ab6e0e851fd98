package models

// Severity ranks a safety warning.
type Severity string

const (
	SeverityBlocking Severity = "blocking"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Warning codes emitted by the safety checks.
const (
	WarnWeeklyExpiry = "WEEKLY_EXPIRY"
	WarnVeryLowIV    = "VERY_LOW_IV"
	WarnLowIV        = "LOW_IV"
	WarnFarOTM       = "FAR_OTM"
	WarnCapitalRisk  = "CAPITAL_RISK"
)

// Warning is one safety finding.
type Warning struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
}

// SafetyReport is the ordered output of the safety layer.
type SafetyReport struct {
	Warnings    []Warning `json:"warnings"`
	HasBlocking bool      `json:"has_blocking"`
}

// Blocking returns the first blocking warning, if any.
func (r *SafetyReport) Blocking() *Warning {
	for i := range r.Warnings {
		if r.Warnings[i].Severity == SeverityBlocking {
			return &r.Warnings[i]
		}
	}
	return nil
}
