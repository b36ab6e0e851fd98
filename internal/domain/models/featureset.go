package models

import "fmt"

// OIBuildup classifies the aggregate open-interest change pattern of a chain.
type OIBuildup string

const (
	BuildupLong      OIBuildup = "Long"      // fresh longs: price up with OI rising
	BuildupShort     OIBuildup = "Short"     // fresh shorts: price down with OI rising
	BuildupUnwinding OIBuildup = "Unwinding" // positions closing: OI falling
	BuildupMixed     OIBuildup = "Mixed"     // no consistent pattern
	BuildupUnknown   OIBuildup = "Unknown"   // OI change data unavailable
)

// ExpiryType distinguishes weekly from monthly option series.
type ExpiryType string

const (
	ExpiryWeekly  ExpiryType = "weekly"
	ExpiryMonthly ExpiryType = "monthly"
)

// StrikeOI holds open interest for one strike, both sides, plus that
// strike's own put/call ratio. PCR is nil when the strike carries no call OI.
type StrikeOI struct {
	Strike float64  `json:"strike"`
	CallOI float64  `json:"call_oi"`
	PutOI  float64  `json:"put_oi"`
	PCR    *float64 `json:"pcr,omitempty"`
}

// FeatureSet is the pre-computed indicator bundle derived from one option-chain
// snapshot. It is the sole input contract of the signal pipeline: produced
// externally (or by the features extractor), treated as immutable afterwards.
// Optional metrics are pointers; nil means the upstream snapshot did not carry
// enough data to compute them.
type FeatureSet struct {
	Symbol          string     `json:"symbol"`
	Spot            *float64   `json:"spot"`
	ATMStrike       *float64   `json:"atm_strike"`
	Strikes         []StrikeOI `json:"strikes"` // ascending, unique
	PCR             *float64   `json:"pcr"`
	OIBuildup       OIBuildup  `json:"oi_buildup"`
	Support         *float64   `json:"support"`
	Resistance      *float64   `json:"resistance"`
	MaxCallOIStrike *float64   `json:"max_call_oi_strike"`
	MaxPutOIStrike  *float64   `json:"max_put_oi_strike"`
	IV              *float64   `json:"iv"`      // chain-average IV, percent
	ATMIV           *float64   `json:"atm_iv"`  // IV at the ATM strike, percent
	DaysToExpiry    *int       `json:"days_to_expiry"`
	ExpiryType      ExpiryType `json:"expiry_type"`
}

// Validate enforces the structural invariants of a feature set: strikes are
// ascending and unique, and the ATM strike (when present) exists in the chain.
func (fs *FeatureSet) Validate() error {
	for i := 1; i < len(fs.Strikes); i++ {
		if fs.Strikes[i].Strike <= fs.Strikes[i-1].Strike {
			return fmt.Errorf("strikes must be ascending and unique: %.2f after %.2f",
				fs.Strikes[i].Strike, fs.Strikes[i-1].Strike)
		}
	}
	if fs.ATMStrike != nil && len(fs.Strikes) > 0 {
		for _, s := range fs.Strikes {
			if s.Strike == *fs.ATMStrike {
				return nil
			}
		}
		return fmt.Errorf("atm strike %.2f not present in chain", *fs.ATMStrike)
	}
	return nil
}

// Float64Ptr is a convenience constructor for optional feature fields.
func Float64Ptr(v float64) *float64 { return &v }

// IntPtr is a convenience constructor for optional feature fields.
func IntPtr(v int) *int { return &v }
