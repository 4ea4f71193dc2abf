package queue

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisQueue(t *testing.T) *RedisQueue {
	t.Helper()
	url := os.Getenv("REDIS_URL")
	if url == "" {
		url = "redis://localhost:6379"
	}

	q, err := newRedisQueue(RedisConfig{
		URL:    url,
		Stream: fmt.Sprintf("fitlog-test-%d", time.Now().UnixNano()),
		Group:  "test-group",
	})
	if err != nil {
		t.Skip("Redis not available, skipping test")
	}
	t.Cleanup(func() {
		keys, _ := q.client.Keys(context.Background(), q.config.Stream+":*").Result()
		if len(keys) > 0 {
			q.client.Del(context.Background(), keys...)
		}
		_ = q.Close()
	})
	return q
}

func TestRedisQueue_PublishSubscribe(t *testing.T) {
	q := newTestRedisQueue(t)
	subject := LogSubject("water")

	received := make(chan Message, 2)
	require.NoError(t, q.Subscribe(subject, func(_ context.Context, msg Message) error {
		received <- msg
		return nil
	}))

	n, err := q.PublishBatch(context.Background(), []Message{
		{Subject: subject, Data: []byte("a")},
		{Subject: subject, Data: []byte("b")},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	for _, want := range []string{"a", "b"} {
		select {
		case msg := <-received:
			assert.Equal(t, want, string(msg.Data))
			assert.Equal(t, subject, msg.Subject)
		case <-time.After(10 * time.Second):
			t.Fatal("message not delivered")
		}
	}
}

func TestNewRedisQueue_Defaults(t *testing.T) {
	q := newTestRedisQueue(t)
	assert.Equal(t, "test-group", q.config.Group)
	assert.NotEmpty(t, q.config.Consumer)
}
