//go:build integration

package events_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"certreg/internal/events"
	"certreg/internal/platform/config"
	"certreg/internal/platform/kafka/producer"
	"certreg/pkg/testutil/containers"
)

func TestKafkaSinkPublishesNotifications(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	kafka := containers.GetManager().GetKafka(t)
	const topic = "certreg.notifications.test"

	p, err := producer.New(config.KafkaConfig{
		Brokers:         kafka.Brokers,
		Topic:           topic,
		Retries:         3,
		DeliveryTimeout: 10 * time.Second,
	}, slog.Default())
	require.NoError(t, err)
	defer p.Close()

	sink := events.NewKafkaSink(p, topic)
	event := events.CertificateIssued(0, "alice", "Distributed Systems", "university-a")
	event.Timestamp = time.Now().UTC()
	event.RequestID = "req-1"

	require.NoError(t, sink.Publish(context.Background(), event))

	consumer, err := kafka.NewConsumer(topic)
	require.NoError(t, err)
	defer consumer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fetches := consumer.PollFetches(ctx)
	require.NoError(t, fetches.Err())

	records := fetches.Records()
	require.Len(t, records, 1)
	require.Equal(t, "university-a", string(records[0].Key))

	var got events.Event
	require.NoError(t, json.Unmarshal(records[0].Value, &got))
	require.Equal(t, events.TypeCertificateIssued, got.Type)
	require.Equal(t, event.Recipient, got.Recipient)
	require.Equal(t, event.Course, got.Course)
	require.Equal(t, "req-1", got.RequestID)
}
