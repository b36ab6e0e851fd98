package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ChainSight/internal/domain/models"
	domrepo "ChainSight/internal/domain/repository"
	pkgch "ChainSight/pkg/clickhouse"
	applogger "ChainSight/pkg/logger"
)

const snapshotTable = "option_day_snapshots"

// snapshotSchema is applied on Init, idempotent.
var snapshotSchema = []string{
	fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			date        Date,
			symbol      LowCardinality(String),
			features    String,
			call_entry  Float64,
			call_close  Float64,
			put_entry   Float64,
			put_close   Float64,
			inserted_at DateTime DEFAULT now()
		)
		ENGINE = ReplacingMergeTree(inserted_at)
		ORDER BY (symbol, date)
	`, snapshotTable),
}

// CHSnapshotStore implements SnapshotStore backed by ClickHouse. Features
// are stored as a JSON column: the pipeline consumes the whole set and
// never filters on individual indicators server-side.
type CHSnapshotStore struct {
	client *pkgch.Client
	db     *sql.DB
	l      *applogger.Logger
}

func NewCHSnapshotStore(ch *pkgch.Client, l *applogger.Logger) *CHSnapshotStore {
	return &CHSnapshotStore{client: ch, db: ch.DB(), l: l}
}

var _ domrepo.SnapshotStore = (*CHSnapshotStore)(nil)

func (s *CHSnapshotStore) Init(ctx context.Context) error {
	return s.client.InitSchema(ctx, snapshotSchema)
}

func (s *CHSnapshotStore) Store(ctx context.Context, snap *models.DaySnapshot) error {
	return s.StoreBatch(ctx, []*models.DaySnapshot{snap})
}

func (s *CHSnapshotStore) StoreBatch(ctx context.Context, snaps []*models.DaySnapshot) error {
	if len(snaps) == 0 {
		return nil
	}

	values := make([]string, 0, len(snaps))
	args := make([]interface{}, 0, len(snaps)*7)
	for _, snap := range snaps {
		if snap == nil || snap.Symbol == "" {
			continue
		}
		features, err := json.Marshal(snap.Features)
		if err != nil {
			return fmt.Errorf("marshal features for %s %s: %w", snap.Symbol, snap.Date.Format("2006-01-02"), err)
		}
		values = append(values, "(?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			snap.Date,
			snap.Symbol,
			string(features),
			snap.Premiums.CallEntry,
			snap.Premiums.CallClose,
			snap.Premiums.PutEntry,
			snap.Premiums.PutClose,
		)
	}
	if len(values) == 0 {
		return nil
	}

	q := fmt.Sprintf(
		"INSERT INTO %s (date, symbol, features, call_entry, call_close, put_entry, put_close) VALUES %s",
		snapshotTable, strings.Join(values, ","),
	)
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		if s.l != nil {
			s.l.Error("clickhouse snapshot insert error",
				applogger.Int("rows", len(values)),
				applogger.Error(err))
		}
		return fmt.Errorf("store snapshots: %w", err)
	}
	return nil
}

func (s *CHSnapshotStore) QueryRange(ctx context.Context, symbol string, from, to time.Time, limit int) ([]models.DaySnapshot, error) {
	start := time.Now()

	q := fmt.Sprintf(`
		SELECT date, symbol, features, call_entry, call_close, put_entry, put_close
		FROM %s FINAL
		WHERE symbol = ? AND date >= ? AND date <= ?
		ORDER BY date ASC
	`, snapshotTable)
	args := []interface{}{symbol, from, to}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse snapshot query error",
				applogger.String("symbol", symbol),
				applogger.Error(err))
		}
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	out := make([]models.DaySnapshot, 0, 256)
	for rows.Next() {
		var snap models.DaySnapshot
		var features string
		if err := rows.Scan(&snap.Date, &snap.Symbol, &features,
			&snap.Premiums.CallEntry, &snap.Premiums.CallClose,
			&snap.Premiums.PutEntry, &snap.Premiums.PutClose); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		if err := json.Unmarshal([]byte(features), &snap.Features); err != nil {
			return nil, fmt.Errorf("decode features for %s %s: %w", snap.Symbol, snap.Date.Format("2006-01-02"), err)
		}
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	if s.l != nil {
		s.l.Info("clickhouse snapshot range ok",
			applogger.String("symbol", symbol),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration", time.Since(start)))
	}
	return out, nil
}

func (s *CHSnapshotStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *CHSnapshotStore) Close() error {
	return nil // pool owned by pkg client
}
