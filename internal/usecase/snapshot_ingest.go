package usecase

import (
	"context"
	"encoding/json"
	"time"

	"ChainSight/internal/domain/models"
	domrepo "ChainSight/internal/domain/repository"
	pkgkafka "ChainSight/pkg/kafka"
)

// SnapshotIngestHandler consumes day-snapshot messages from Kafka and
// writes them to the snapshot store. External collectors publish one
// message per symbol per trading day after the close.
type SnapshotIngestHandler struct {
	topic   string
	store   domrepo.SnapshotStore
	metrics domrepo.Metrics
}

func NewSnapshotIngestHandler(topic string, store domrepo.SnapshotStore, metrics domrepo.Metrics) *SnapshotIngestHandler {
	return &SnapshotIngestHandler{topic: topic, store: store, metrics: metrics}
}

func (h *SnapshotIngestHandler) Topic() string { return h.topic }

func (h *SnapshotIngestHandler) Handle(ctx context.Context, b []byte) error {
	var snap models.DaySnapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if err := snap.Features.Validate(); err != nil {
		h.metrics.RecordError("consumer_validate")
		return err
	}

	start := time.Now()
	err := h.store.Store(ctx, &snap)
	h.metrics.RecordLatency("snapshot_insert", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	return nil
}

var _ pkgkafka.MessageHandler = (*SnapshotIngestHandler)(nil)
