//go:build integration

package broker

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"

	"structnotify/internal/config"
	"structnotify/internal/logger"
)

func setupKafka(t *testing.T) []string {
	t.Helper()
	ctx := context.Background()

	if os.Getenv("TESTCONTAINERS_RYUK_DISABLED") == "" {
		os.Setenv("TESTCONTAINERS_RYUK_DISABLED", "true")
	}

	container, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0",
		kafkamodule.WithClusterID("test-cluster"),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		container.Terminate(ctx)
	})

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafka.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

func TestKafkaProducerPublish(t *testing.T) {
	brokers := setupKafka(t)
	topic := "predicate-config-updates"
	createTopic(t, brokers[0], topic)

	producer := NewKafkaProducer(config.KafkaConfig{Brokers: brokers}, logger.NopLogger())
	t.Cleanup(func() {
		producer.Close()
	})

	event := ConfigEvent{
		ID:        "evt-1",
		Type:      EventTypeCreated,
		Entity:    "predicate",
		EntityID:  "pred-42",
		Timestamp: time.Now().UTC(),
		Payload:   map[string]interface{}{"schema": "tasks"},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, producer.Publish(ctx, topic, event))

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		Topic:       topic,
		StartOffset: kafka.FirstOffset,
	})
	t.Cleanup(func() {
		reader.Close()
	})

	msg, err := reader.ReadMessage(ctx)
	require.NoError(t, err)

	assert.Equal(t, "pred-42", string(msg.Key))

	var got ConfigEvent
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, EventTypeCreated, got.Type)
	assert.Equal(t, "predicate", got.Entity)
	assert.Equal(t, "pred-42", got.EntityID)
	assert.Equal(t, "tasks", got.Payload["schema"])
}
