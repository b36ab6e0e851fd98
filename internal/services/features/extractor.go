package features

import (
	"math"

	"ChainSight/internal/domain/models"
)

// ATMStrike returns the chain strike closest to spot. Ties go to the lower
// strike so the result is stable. Returns 0 when the chain is empty.
func ATMStrike(rows []models.ChainRow, spot float64) float64 {
	best := 0.0
	bestDist := math.MaxFloat64
	for _, row := range rows {
		dist := math.Abs(row.Strike - spot)
		if dist < bestDist {
			best = row.Strike
			bestDist = dist
		}
	}
	return best
}

// PCR computes the put/call open-interest ratio over the whole chain.
// Returns 0, false when the chain carries no call OI.
func PCR(rows []models.ChainRow) (float64, bool) {
	var putOI, callOI float64
	for _, row := range rows {
		putOI += row.PutOI
		callOI += row.CallOI
	}
	if callOI <= 0 {
		return 0, false
	}
	return putOI / callOI, true
}

// MaxOIStrikes returns the strikes holding the largest call and put open
// interest. The first strike wins on ties.
func MaxOIStrikes(rows []models.ChainRow) (maxCall, maxPut float64) {
	var bestCallOI, bestPutOI float64
	for _, row := range rows {
		if row.CallOI > bestCallOI {
			bestCallOI = row.CallOI
			maxCall = row.Strike
		}
		if row.PutOI > bestPutOI {
			bestPutOI = row.PutOI
			maxPut = row.Strike
		}
	}
	return maxCall, maxPut
}

// SupportResistance locates the OI walls on the correct side of the market:
// support is the strike below spot holding the most put OI, resistance the
// strike above spot holding the most call OI. A wall on the wrong side of
// spot is not a level. Sides without any OI return 0.
func SupportResistance(rows []models.ChainRow, spot float64) (support, resistance float64) {
	var bestPutOI, bestCallOI float64
	for _, row := range rows {
		if row.Strike < spot && row.PutOI > bestPutOI {
			bestPutOI = row.PutOI
			support = row.Strike
		}
		if row.Strike > spot && row.CallOI > bestCallOI {
			bestCallOI = row.CallOI
			resistance = row.Strike
		}
	}
	return support, resistance
}

// ATMIV averages the call and put implied volatility at the ATM strike,
// using whichever sides carry a quote. Returns 0, false when neither does.
func ATMIV(rows []models.ChainRow, atm float64) (float64, bool) {
	for _, row := range rows {
		if row.Strike != atm {
			continue
		}
		switch {
		case row.CallIV > 0 && row.PutIV > 0:
			return (row.CallIV + row.PutIV) / 2, true
		case row.CallIV > 0:
			return row.CallIV, true
		case row.PutIV > 0:
			return row.PutIV, true
		}
		return 0, false
	}
	return 0, false
}

// ClassifyBuildup reads the net OI change on both sides against the spot
// direction. Rising put OI with steady or rising price reads as long
// support building; rising call OI with falling price as shorts pressing.
func ClassifyBuildup(rows []models.ChainRow, spotChange float64) models.OIBuildup {
	var callDelta, putDelta float64
	for _, row := range rows {
		callDelta += row.CallOIChange
		putDelta += row.PutOIChange
	}
	switch {
	case putDelta > 0 && spotChange >= 0:
		return models.BuildupLong
	case callDelta > 0 && spotChange < 0:
		return models.BuildupShort
	case callDelta < 0 && putDelta < 0:
		return models.BuildupUnwinding
	default:
		return models.BuildupMixed
	}
}

// Extract builds the full feature set from a validated chain. Support and
// resistance come from the OI walls on their own side of spot. spotChange
// is today's underlying move, used only for the build-up classification.
func Extract(symbol string, rows []models.ChainRow, spot, spotChange float64, expiryType models.ExpiryType, daysToExpiry int) (*models.FeatureSet, error) {
	fs := &models.FeatureSet{
		Symbol:       symbol,
		Spot:         models.Float64Ptr(spot),
		ExpiryType:   expiryType,
		DaysToExpiry: models.IntPtr(daysToExpiry),
		OIBuildup:    ClassifyBuildup(rows, spotChange),
	}

	atm := ATMStrike(rows, spot)
	if atm > 0 {
		fs.ATMStrike = models.Float64Ptr(atm)
	}
	if pcr, ok := PCR(rows); ok {
		fs.PCR = models.Float64Ptr(pcr)
	}
	maxCall, maxPut := MaxOIStrikes(rows)
	if maxCall > 0 {
		fs.MaxCallOIStrike = models.Float64Ptr(maxCall)
	}
	if maxPut > 0 {
		fs.MaxPutOIStrike = models.Float64Ptr(maxPut)
	}
	support, resistance := SupportResistance(rows, spot)
	if support > 0 {
		fs.Support = models.Float64Ptr(support)
	}
	if resistance > 0 {
		fs.Resistance = models.Float64Ptr(resistance)
	}
	if iv, ok := ATMIV(rows, atm); ok {
		fs.IV = models.Float64Ptr(iv)
		fs.ATMIV = models.Float64Ptr(iv)
	}

	fs.Strikes = make([]models.StrikeOI, 0, len(rows))
	for _, row := range rows {
		s := models.StrikeOI{
			Strike: row.Strike,
			CallOI: row.CallOI,
			PutOI:  row.PutOI,
		}
		if row.CallOI > 0 {
			s.PCR = models.Float64Ptr(row.PutOI / row.CallOI)
		}
		fs.Strikes = append(fs.Strikes, s)
	}

	if err := fs.Validate(); err != nil {
		return nil, err
	}
	return fs, nil
}
