package kafka

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// ConsumerHook defines lifecycle hooks around message handling.
// Hooks can mutate context, message, and payload.
// Returning a non-nil error from BeforeHandle will skip handler execution
// and trigger error processing (OnError, DLQ, and offset commit).
type ConsumerHook interface {
	BeforeHandle(ctx context.Context, topic string, km kafka.Message, data []byte) (context.Context, kafka.Message, []byte, error)
	AfterHandle(ctx context.Context, topic string, km kafka.Message, data []byte, err error)
	OnError(ctx context.Context, topic string, km kafka.Message, data []byte, err error)
}

// NoopHook is a default hook that does nothing and is fully panic-safe.
type NoopHook struct{}

func (NoopHook) BeforeHandle(ctx context.Context, topic string, km kafka.Message, data []byte) (context.Context, kafka.Message, []byte, error) {
	return ctx, km, data, nil
}

func (NoopHook) AfterHandle(ctx context.Context, topic string, km kafka.Message, data []byte, err error) {
}

func (NoopHook) OnError(ctx context.Context, topic string, km kafka.Message, data []byte, err error) {
}
