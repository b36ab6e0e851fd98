// Package chain validates raw NSE option-chain payloads and converts them
// into the tabular form the feature extractor consumes.
package chain

import (
	"fmt"
	"sort"
	"time"

	"ChainSight/internal/domain/models"
	"ChainSight/pkg/util"
)

// Snapshot is one expiry's worth of chain data plus the metadata the
// pipeline needs downstream.
type Snapshot struct {
	Symbol       string
	Expiry       time.Time
	ExpiryType   models.ExpiryType
	DaysToExpiry int
	Spot         float64
	Rows         []models.ChainRow
}

// Convert extracts one expiry from the raw payload. An empty expiry picks
// the nearest listed one. Rows come out in ascending strike order with the
// CE/PE sides merged per strike.
func Convert(symbol string, raw *models.RawOptionChain, expiry string, now time.Time) (*Snapshot, error) {
	if err := Validate(raw); err != nil {
		return nil, err
	}

	target := expiry
	if target == "" {
		target = nearestExpiry(raw.Records.ExpiryDates, now)
	}
	expiryDate, ok := util.ParseNSEDate(target)
	if !ok {
		return nil, fmt.Errorf("chain: unparseable expiry %q", target)
	}

	byStrike := map[float64]*models.ChainRow{}
	for _, rec := range raw.Records.Data {
		if rec.ExpiryDate != target {
			continue
		}
		row, ok := byStrike[rec.StrikePrice]
		if !ok {
			row = &models.ChainRow{Strike: rec.StrikePrice}
			byStrike[rec.StrikePrice] = row
		}
		if rec.CE != nil {
			row.CallOI = rec.CE.OpenInterest
			row.CallOIChange = rec.CE.ChangeInOpenInterest
			row.CallIV = rec.CE.ImpliedVolatility
			row.CallLTP = rec.CE.LastPrice
		}
		if rec.PE != nil {
			row.PutOI = rec.PE.OpenInterest
			row.PutOIChange = rec.PE.ChangeInOpenInterest
			row.PutIV = rec.PE.ImpliedVolatility
			row.PutLTP = rec.PE.LastPrice
		}
	}
	if len(byStrike) == 0 {
		return nil, fmt.Errorf("chain: no records for expiry %q", target)
	}

	rows := make([]models.ChainRow, 0, len(byStrike))
	for _, row := range byStrike {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Strike < rows[j].Strike })

	expiryType := models.ExpiryWeekly
	if util.IsMonthlyExpiry(expiryDate) {
		expiryType = models.ExpiryMonthly
	}

	return &Snapshot{
		Symbol:       symbol,
		Expiry:       expiryDate,
		ExpiryType:   expiryType,
		DaysToExpiry: util.DaysUntil(now, expiryDate),
		Spot:         raw.Records.UnderlyingValue,
		Rows:         rows,
	}, nil
}

// nearestExpiry picks the earliest expiry on or after now, falling back to
// the first listed when all are stale.
func nearestExpiry(expiries []string, now time.Time) string {
	best := ""
	var bestDate time.Time
	for _, s := range expiries {
		d, ok := util.ParseNSEDate(s)
		if !ok || util.DaysUntil(now, d) < 0 {
			continue
		}
		if best == "" || d.Before(bestDate) {
			best = s
			bestDate = d
		}
	}
	if best == "" && len(expiries) > 0 {
		return expiries[0]
	}
	return best
}
