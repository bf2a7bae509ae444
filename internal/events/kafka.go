package events

import (
	"context"
	"encoding/json"
	"fmt"

	"certreg/internal/platform/kafka/producer"
)

// kafkaProducer is the subset of the platform producer the sink needs.
type kafkaProducer interface {
	Produce(ctx context.Context, msg *producer.Message) error
}

// KafkaSink publishes notifications to a kafka topic. Messages are keyed by
// issuer identity so one issuer's notifications stay ordered within a
// partition.
type KafkaSink struct {
	producer kafkaProducer
	topic    string
}

func NewKafkaSink(p kafkaProducer, topic string) *KafkaSink {
	return &KafkaSink{producer: p, topic: topic}
}

func (s *KafkaSink) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	return s.producer.Produce(ctx, &producer.Message{
		Topic: s.topic,
		Key:   []byte(event.Issuer),
		Value: payload,
		Headers: map[string]string{
			"type":       string(event.Type),
			"request_id": event.RequestID,
		},
	})
}
