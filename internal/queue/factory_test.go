package queue

import (
	"testing"

	"github.com/fitlogapp/fitlog/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQueue(t *testing.T) {
	q, err := NewQueue(config.QueueConfig{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryQueue{}, q)
	require.NoError(t, q.Close())

	q, err = NewQueue(config.QueueConfig{Type: "MEMORY"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryQueue{}, q)
	require.NoError(t, q.Close())

	_, err = NewQueue(config.QueueConfig{Type: "rabbitmq"})
	assert.Error(t, err)
}

func TestNewQueue_NATS(t *testing.T) {
	url := setupTestNATS(t)

	q, err := NewQueue(config.QueueConfig{Type: "nats", URL: url})
	require.NoError(t, err)
	assert.IsType(t, &NATSQueue{}, q)
	require.NoError(t, q.Close())
}

func TestNewQueue_KafkaBrokersFromURL(t *testing.T) {
	q, err := NewQueue(config.QueueConfig{Type: "kafka", URL: "k1:9092,k2:9092"})
	require.NoError(t, err)
	defer func() { _ = q.Close() }()

	kq, ok := q.(*KafkaQueue)
	require.True(t, ok)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, kq.config.Brokers)
	assert.Equal(t, "fitlog-ingest", kq.config.GroupID)
}
