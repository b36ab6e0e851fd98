package safety

import (
	"errors"
	"testing"

	"ChainSight/internal/domain/models"
)

func baseFeatures() *models.FeatureSet {
	return &models.FeatureSet{
		Symbol:       "NIFTY",
		Spot:         models.Float64Ptr(22450),
		IV:           models.Float64Ptr(18),
		ExpiryType:   models.ExpiryMonthly,
		DaysToExpiry: models.IntPtr(14),
	}
}

func findWarning(report models.SafetyReport, code string) *models.Warning {
	for i := range report.Warnings {
		if report.Warnings[i].Code == code {
			return &report.Warnings[i]
		}
	}
	return nil
}

func TestWeeklyExpiryBlocksByDefault(t *testing.T) {
	checker, err := NewChecker(DefaultThresholds())
	if err != nil {
		t.Fatalf("new checker: %v", err)
	}
	fs := baseFeatures()
	fs.ExpiryType = models.ExpiryWeekly
	fs.DaysToExpiry = models.IntPtr(2)

	report := checker.Check(fs, 0)
	w := findWarning(report, models.WarnWeeklyExpiry)
	if w == nil {
		t.Fatalf("expected weekly expiry warning")
	}
	if w.Severity != models.SeverityBlocking {
		t.Fatalf("expected blocking, got %s", w.Severity)
	}
	if !report.HasBlocking {
		t.Fatalf("report should flag blocking")
	}
}

func TestWeeklyExpiryDowngradesWhenUnblocked(t *testing.T) {
	checker, err := NewChecker(DefaultThresholds(), WithWeeklyExpiryBlocking(false))
	if err != nil {
		t.Fatalf("new checker: %v", err)
	}
	fs := baseFeatures()
	fs.ExpiryType = models.ExpiryWeekly
	fs.DaysToExpiry = models.IntPtr(2)

	report := checker.Check(fs, 0)
	w := findWarning(report, models.WarnWeeklyExpiry)
	if w == nil {
		t.Fatalf("expected weekly expiry warning")
	}
	if w.Severity != models.SeverityWarning {
		t.Fatalf("expected warning severity, got %s", w.Severity)
	}
	if report.HasBlocking {
		t.Fatalf("report should not block")
	}
}

func TestMonthlyExpiryNotFlagged(t *testing.T) {
	checker, _ := NewChecker(DefaultThresholds())
	fs := baseFeatures()
	fs.DaysToExpiry = models.IntPtr(2)

	if w := findWarning(checker.Check(fs, 0), models.WarnWeeklyExpiry); w != nil {
		t.Fatalf("monthly contract should not trigger the weekly check")
	}
}

func TestIVTiers(t *testing.T) {
	checker, _ := NewChecker(DefaultThresholds())

	fs := baseFeatures()
	fs.IV = models.Float64Ptr(8)
	report := checker.Check(fs, 0)
	w := findWarning(report, models.WarnVeryLowIV)
	if w == nil || w.Severity != models.SeverityBlocking {
		t.Fatalf("IV 8 should block, got %+v", w)
	}

	fs.IV = models.Float64Ptr(12)
	report = checker.Check(fs, 0)
	w = findWarning(report, models.WarnLowIV)
	if w == nil || w.Severity != models.SeverityWarning {
		t.Fatalf("IV 12 should warn, got %+v", w)
	}
	if report.HasBlocking {
		t.Fatalf("IV 12 should not block")
	}

	fs.IV = models.Float64Ptr(20)
	report = checker.Check(fs, 0)
	if findWarning(report, models.WarnLowIV) != nil || findWarning(report, models.WarnVeryLowIV) != nil {
		t.Fatalf("IV 20 should pass the IV checks")
	}
}

func TestFarOTMWarning(t *testing.T) {
	checker, _ := NewChecker(DefaultThresholds())
	fs := baseFeatures()

	report := checker.Check(fs, 24000)
	if w := findWarning(report, models.WarnFarOTM); w == nil || w.Severity != models.SeverityWarning {
		t.Fatalf("strike 6.9%% away should warn, got %+v", w)
	}

	report = checker.Check(fs, 22500)
	if findWarning(report, models.WarnFarOTM) != nil {
		t.Fatalf("near-ATM strike should not warn")
	}

	report = checker.Check(fs, 0)
	if findWarning(report, models.WarnFarOTM) != nil {
		t.Fatalf("no target strike means no far OTM check")
	}
}

func TestCapitalRiskAlwaysPresent(t *testing.T) {
	checker, _ := NewChecker(DefaultThresholds())
	report := checker.Check(baseFeatures(), 0)
	w := findWarning(report, models.WarnCapitalRisk)
	if w == nil || w.Severity != models.SeverityInfo {
		t.Fatalf("capital risk disclaimer missing, got %+v", w)
	}
}

func TestWarningMonotonicity(t *testing.T) {
	// Adding a risky condition never removes warnings already present.
	checker, _ := NewChecker(DefaultThresholds())
	fs := baseFeatures()
	before := checker.Check(fs, 0)

	fs.IV = models.Float64Ptr(12)
	fs.ExpiryType = models.ExpiryWeekly
	fs.DaysToExpiry = models.IntPtr(1)
	after := checker.Check(fs, 24000)

	if len(after.Warnings) <= len(before.Warnings) {
		t.Fatalf("riskier input should produce more warnings: %d vs %d", len(after.Warnings), len(before.Warnings))
	}
	for _, w := range before.Warnings {
		if findWarning(after, w.Code) == nil {
			t.Fatalf("warning %s disappeared on riskier input", w.Code)
		}
	}
}

func TestInvalidThresholds(t *testing.T) {
	cases := []Thresholds{
		{WeeklyExpiryDays: 0, VeryLowIV: 10, LowIV: 15, FarOTMPct: 0.05},
		{WeeklyExpiryDays: 7, VeryLowIV: -1, LowIV: 15, FarOTMPct: 0.05},
		{WeeklyExpiryDays: 7, VeryLowIV: 15, LowIV: 10, FarOTMPct: 0.05},
		{WeeklyExpiryDays: 7, VeryLowIV: 10, LowIV: 15, FarOTMPct: 1.5},
	}
	for i, th := range cases {
		_, err := NewChecker(th)
		var thErr *models.InvalidThresholdError
		if !errors.As(err, &thErr) {
			t.Fatalf("case %d: expected InvalidThresholdError, got %v", i, err)
		}
	}
}
