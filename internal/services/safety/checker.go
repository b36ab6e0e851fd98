package safety

import (
	"fmt"
	"math"

	"ChainSight/internal/domain/models"
)

// Thresholds configure the safety checks. Zero values are invalid; callers
// wanting defaults use DefaultThresholds.
type Thresholds struct {
	// WeeklyExpiryDays is the days-to-expiry window inside which a weekly
	// contract is flagged for rapid theta decay.
	WeeklyExpiryDays int `yaml:"weekly_expiry_days"`
	// VeryLowIV is the IV level below which premiums are too thin to pay
	// for the trade.
	VeryLowIV float64 `yaml:"very_low_iv"`
	// LowIV is the caution level above VeryLowIV.
	LowIV float64 `yaml:"low_iv"`
	// FarOTMPct flags recommendations whose target strike sits further
	// than this fraction from spot.
	FarOTMPct float64 `yaml:"far_otm_pct"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		WeeklyExpiryDays: 7,
		VeryLowIV:        10,
		LowIV:            15,
		FarOTMPct:        0.05,
	}
}

// Checker runs the safety checks independently of the scoring pipeline.
// It inspects the same feature set and flags conditions that make an
// otherwise attractive setup dangerous to trade.
type Checker struct {
	thresholds Thresholds

	// blockWeeklyExpiry escalates the weekly-expiry warning to blocking.
	blockWeeklyExpiry bool
}

type Option func(*Checker)

// WithWeeklyExpiryBlocking controls whether an imminent weekly expiry
// blocks the trade or only warns. Blocking is the default posture.
func WithWeeklyExpiryBlocking(block bool) Option {
	return func(c *Checker) { c.blockWeeklyExpiry = block }
}

// NewChecker validates thresholds up front. A nonsensical threshold is a
// deployment mistake and must fail loudly, not soften into a default.
func NewChecker(thresholds Thresholds, opts ...Option) (*Checker, error) {
	if thresholds.WeeklyExpiryDays <= 0 {
		return nil, &models.InvalidThresholdError{Name: "weekly_expiry_days", Value: float64(thresholds.WeeklyExpiryDays)}
	}
	if thresholds.VeryLowIV <= 0 || math.IsNaN(thresholds.VeryLowIV) {
		return nil, &models.InvalidThresholdError{Name: "very_low_iv", Value: thresholds.VeryLowIV}
	}
	if thresholds.LowIV <= thresholds.VeryLowIV {
		return nil, &models.InvalidThresholdError{Name: "low_iv", Value: thresholds.LowIV}
	}
	if thresholds.FarOTMPct <= 0 || thresholds.FarOTMPct >= 1 {
		return nil, &models.InvalidThresholdError{Name: "far_otm_pct", Value: thresholds.FarOTMPct}
	}

	c := &Checker{thresholds: thresholds, blockWeeklyExpiry: true}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Check runs every safety check in a fixed order and returns the full
// report. targetStrike is the strike the recommendation would trade; pass 0
// when there is no directional recommendation.
func (c *Checker) Check(fs *models.FeatureSet, targetStrike float64) models.SafetyReport {
	report := models.SafetyReport{}

	c.checkWeeklyExpiry(fs, &report)
	c.checkIV(fs, &report)
	c.checkFarOTM(fs, targetStrike, &report)
	c.checkCapitalRisk(&report)

	for _, w := range report.Warnings {
		if w.Severity == models.SeverityBlocking {
			report.HasBlocking = true
			break
		}
	}
	return report
}

func (c *Checker) checkWeeklyExpiry(fs *models.FeatureSet, report *models.SafetyReport) {
	if fs.ExpiryType != models.ExpiryWeekly || fs.DaysToExpiry == nil {
		return
	}
	days := *fs.DaysToExpiry
	if days > c.thresholds.WeeklyExpiryDays {
		return
	}
	severity := models.SeverityWarning
	if c.blockWeeklyExpiry {
		severity = models.SeverityBlocking
	}
	report.Warnings = append(report.Warnings, models.Warning{
		Severity: severity,
		Code:     models.WarnWeeklyExpiry,
		Message:  fmt.Sprintf("Weekly contract expires in %d day(s); theta decay will erode the premium fast", days),
	})
}

func (c *Checker) checkIV(fs *models.FeatureSet, report *models.SafetyReport) {
	if fs.IV == nil {
		return
	}
	iv := *fs.IV
	switch {
	case iv < c.thresholds.VeryLowIV:
		report.Warnings = append(report.Warnings, models.Warning{
			Severity: models.SeverityBlocking,
			Code:     models.WarnVeryLowIV,
			Message:  fmt.Sprintf("Implied volatility %.1f is below %.1f; premiums are too cheap for the move to pay", iv, c.thresholds.VeryLowIV),
		})
	case iv < c.thresholds.LowIV:
		report.Warnings = append(report.Warnings, models.Warning{
			Severity: models.SeverityWarning,
			Code:     models.WarnLowIV,
			Message:  fmt.Sprintf("Implied volatility %.1f is below %.1f; expect muted option moves", iv, c.thresholds.LowIV),
		})
	}
}

func (c *Checker) checkFarOTM(fs *models.FeatureSet, targetStrike float64, report *models.SafetyReport) {
	if targetStrike <= 0 || fs.Spot == nil || *fs.Spot <= 0 {
		return
	}
	distance := math.Abs(targetStrike-*fs.Spot) / *fs.Spot
	if distance <= c.thresholds.FarOTMPct {
		return
	}
	report.Warnings = append(report.Warnings, models.Warning{
		Severity: models.SeverityWarning,
		Code:     models.WarnFarOTM,
		Message:  fmt.Sprintf("Strike %.0f sits %.1f%% from spot %.0f; far OTM options mostly expire worthless", targetStrike, distance*100, *fs.Spot),
	})
}

func (c *Checker) checkCapitalRisk(report *models.SafetyReport) {
	report.Warnings = append(report.Warnings, models.Warning{
		Severity: models.SeverityInfo,
		Code:     models.WarnCapitalRisk,
		Message:  "Option buying can lose the entire premium; size positions accordingly",
	})
}
