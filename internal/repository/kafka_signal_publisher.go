package repository

import (
	"context"
	"time"

	"ChainSight/internal/domain/models"
	domrepo "ChainSight/internal/domain/repository"
	pkgkafka "ChainSight/pkg/kafka"
)

// KafkaSignalPublisher pushes completed analyses onto a signals topic,
// keyed by symbol so one symbol's signals stay ordered per partition.
type KafkaSignalPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaSignalPublisher(producer *pkgkafka.Producer, topic string) *KafkaSignalPublisher {
	return &KafkaSignalPublisher{producer: producer, topic: topic}
}

var _ domrepo.SignalPublisher = (*KafkaSignalPublisher)(nil)

func (p *KafkaSignalPublisher) Publish(ctx context.Context, symbol string, analysis *models.Analysis) error {
	return p.producer.Publish(ctx, p.topic, []byte(symbol), map[string]interface{}{
		"symbol":   symbol,
		"at":       time.Now().UTC().Format(time.RFC3339),
		"analysis": analysis,
	})
}

func (p *KafkaSignalPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// MultiPublisher fans one Publish out to several sinks; the first error
// wins but every sink is attempted.
type MultiPublisher struct {
	sinks []domrepo.SignalPublisher
}

func NewMultiPublisher(sinks ...domrepo.SignalPublisher) *MultiPublisher {
	return &MultiPublisher{sinks: sinks}
}

var _ domrepo.SignalPublisher = (*MultiPublisher)(nil)

func (m *MultiPublisher) Publish(ctx context.Context, symbol string, analysis *models.Analysis) error {
	var first error
	for _, sink := range m.sinks {
		if err := sink.Publish(ctx, symbol, analysis); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m *MultiPublisher) Close() error {
	var first error
	for _, sink := range m.sinks {
		if err := sink.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
