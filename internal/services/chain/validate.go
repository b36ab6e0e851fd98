package chain

import (
	"fmt"

	"ChainSight/internal/domain/models"
)

// Validate rejects structurally unusable payloads before any conversion.
// It checks presence, a positive underlying, and sane per-record values;
// it does not second-guess market data that is merely surprising.
func Validate(raw *models.RawOptionChain) error {
	if raw == nil {
		return fmt.Errorf("chain: nil payload")
	}
	if len(raw.Records.Data) == 0 {
		return fmt.Errorf("chain: payload carries no records")
	}
	if len(raw.Records.ExpiryDates) == 0 {
		return fmt.Errorf("chain: payload lists no expiries")
	}
	if raw.Records.UnderlyingValue <= 0 {
		return fmt.Errorf("chain: non-positive underlying value %v", raw.Records.UnderlyingValue)
	}
	for i, rec := range raw.Records.Data {
		if rec.StrikePrice <= 0 {
			return fmt.Errorf("chain: record %d has non-positive strike %v", i, rec.StrikePrice)
		}
		if rec.ExpiryDate == "" {
			return fmt.Errorf("chain: record %d (strike %v) has no expiry", i, rec.StrikePrice)
		}
		if rec.CE == nil && rec.PE == nil {
			return fmt.Errorf("chain: record %d (strike %v) has neither side quoted", i, rec.StrikePrice)
		}
		if rec.CE != nil && rec.CE.OpenInterest < 0 {
			return fmt.Errorf("chain: record %d (strike %v) has negative call OI", i, rec.StrikePrice)
		}
		if rec.PE != nil && rec.PE.OpenInterest < 0 {
			return fmt.Errorf("chain: record %d (strike %v) has negative put OI", i, rec.StrikePrice)
		}
	}
	return nil
}
