package chain

import (
	"testing"
	"time"

	"ChainSight/internal/domain/models"
)

func rawChain() *models.RawOptionChain {
	quote := func(strike, oi, oiChange, iv, ltp float64) *models.RawOptionQuote {
		return &models.RawOptionQuote{
			StrikePrice:          strike,
			OpenInterest:         oi,
			ChangeInOpenInterest: oiChange,
			ImpliedVolatility:    iv,
			LastPrice:            ltp,
		}
	}
	return &models.RawOptionChain{
		Records: models.RawChainRecords{
			ExpiryDates:     []string{"20-Mar-2025", "27-Mar-2025"},
			UnderlyingValue: 22450,
			Data: []models.RawChainRecord{
				{StrikePrice: 22500, ExpiryDate: "27-Mar-2025", CE: quote(22500, 1200, 100, 16, 120), PE: quote(22500, 1500, 120, 18, 140)},
				{StrikePrice: 22400, ExpiryDate: "27-Mar-2025", CE: quote(22400, 800, 20, 16.5, 160), PE: quote(22400, 3100, 450, 18.5, 95)},
				{StrikePrice: 22400, ExpiryDate: "20-Mar-2025", CE: quote(22400, 999, 1, 20, 150)},
			},
		},
	}
}

var testNow = time.Date(2025, 3, 18, 10, 0, 0, 0, time.UTC)

func TestConvertSelectsExpiry(t *testing.T) {
	snap, err := Convert("NIFTY", rawChain(), "27-Mar-2025", testNow)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if len(snap.Rows) != 2 {
		t.Fatalf("expected 2 strikes, got %d", len(snap.Rows))
	}
	if snap.Rows[0].Strike != 22400 || snap.Rows[1].Strike != 22500 {
		t.Fatalf("rows must be strike-ascending: %+v", snap.Rows)
	}
	if snap.Rows[0].PutOI != 3100 || snap.Rows[0].CallOI != 800 {
		t.Fatalf("sides not merged: %+v", snap.Rows[0])
	}
	if snap.Spot != 22450 {
		t.Fatalf("spot not carried, got %v", snap.Spot)
	}
	if snap.ExpiryType != models.ExpiryMonthly {
		t.Fatalf("27-Mar-2025 is the last Thursday, expected monthly, got %s", snap.ExpiryType)
	}
	if snap.DaysToExpiry != 9 {
		t.Fatalf("expected 9 days to expiry, got %d", snap.DaysToExpiry)
	}
}

func TestConvertDefaultsToNearestExpiry(t *testing.T) {
	snap, err := Convert("NIFTY", rawChain(), "", testNow)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if !snap.Expiry.Equal(time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected nearest expiry 20-Mar-2025, got %v", snap.Expiry)
	}
	if snap.ExpiryType != models.ExpiryWeekly {
		t.Fatalf("mid-month Thursday should be weekly, got %s", snap.ExpiryType)
	}
}

func TestConvertUnknownExpiry(t *testing.T) {
	if _, err := Convert("NIFTY", rawChain(), "03-Apr-2025", testNow); err == nil {
		t.Fatalf("expected error for expiry with no records")
	}
}

func TestValidateRejectsBadPayloads(t *testing.T) {
	if err := Validate(nil); err == nil {
		t.Fatalf("nil payload must fail")
	}

	raw := rawChain()
	raw.Records.UnderlyingValue = 0
	if err := Validate(raw); err == nil {
		t.Fatalf("zero underlying must fail")
	}

	raw = rawChain()
	raw.Records.Data[0].CE = nil
	raw.Records.Data[0].PE = nil
	if err := Validate(raw); err == nil {
		t.Fatalf("record with no sides must fail")
	}

	raw = rawChain()
	raw.Records.Data[1].PE.OpenInterest = -5
	if err := Validate(raw); err == nil {
		t.Fatalf("negative OI must fail")
	}

	raw = rawChain()
	raw.Records.Data = nil
	if err := Validate(raw); err == nil {
		t.Fatalf("empty data must fail")
	}
}
