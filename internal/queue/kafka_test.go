package queue

import (
	"context"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKafkaQueue_Defaults(t *testing.T) {
	q, err := newKafkaQueue(KafkaConfig{Brokers: []string{"localhost:9092"}})
	require.NoError(t, err)
	defer func() { _ = q.Close() }()

	assert.Equal(t, "fitlog-ingest", q.config.GroupID)
	assert.Equal(t, 100, q.config.BatchSize)
	assert.Equal(t, 10*time.Millisecond, q.config.BatchTimeout)
	assert.Equal(t, int(kafka.RequireOne), q.config.RequiredAcks)
	assert.Equal(t, 3, q.config.CommitRetries)
	assert.True(t, q.writer.AllowAutoTopicCreation)
}

func TestNewKafkaQueue_NoBrokers(t *testing.T) {
	_, err := newKafkaQueue(KafkaConfig{})
	assert.Error(t, err)
}

func TestKafkaTopicName(t *testing.T) {
	assert.Equal(t, "fitlog-logs-water", topicName(LogSubject("water")))

	msg := kafkaMessage(LogSubject("food"), []byte("x"))
	assert.Equal(t, "fitlog-logs-food", msg.Topic)
	assert.Equal(t, []byte("x"), msg.Value)
}

func TestKafkaQueue_PublishUnreachableBroker(t *testing.T) {
	q, err := newKafkaQueue(KafkaConfig{Brokers: []string{"127.0.0.1:1"}, MaxRetries: 1})
	require.NoError(t, err)
	defer func() { _ = q.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	assert.Error(t, q.Publish(ctx, LogSubject("water"), []byte("x")))

	n, err := q.PublishBatch(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestKafkaQueue_Subscriptions(t *testing.T) {
	q, err := newKafkaQueue(KafkaConfig{Brokers: []string{"127.0.0.1:1"}})
	require.NoError(t, err)

	handler := func(context.Context, Message) error { return nil }
	require.NoError(t, q.Subscribe(LogSubject("water"), handler))
	assert.Error(t, q.Subscribe(LogSubject("water"), handler))
	require.NoError(t, q.Unsubscribe(LogSubject("water")))
	assert.Error(t, q.Unsubscribe(LogSubject("water")))
	_ = q.Close()
}
