// Package notify delivers user-facing notifications to the outbound
// messaging topic. Downstream consumers fan out to email and SMS; this
// package only guarantees the record reaches the broker.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"trustplane/internal/trust/ports"
)

// KafkaSink produces one JSON record per notification, keyed by user id so a
// user's notifications stay ordered within a partition.
type KafkaSink struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

type KafkaOption func(*KafkaSink)

func WithLogger(logger *slog.Logger) KafkaOption {
	return func(s *KafkaSink) {
		s.logger = logger
	}
}

func NewKafkaSink(brokers []string, topic string, opts ...KafkaOption) (*KafkaSink, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic is required")
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	sink := &KafkaSink{
		client: client,
		topic:  topic,
	}
	for _, opt := range opts {
		opt(sink)
	}
	return sink, nil
}

func (s *KafkaSink) Notify(ctx context.Context, n ports.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(n.UserID.String()),
		Value: payload,
	}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce notification: %w", err)
	}

	if s.logger != nil {
		s.logger.DebugContext(ctx, "notification produced", "kind", n.Kind, "user_id", n.UserID)
	}
	return nil
}

// Close flushes buffered records and releases the client.
func (s *KafkaSink) Close() {
	s.client.Close()
}
