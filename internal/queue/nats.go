package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSConfig represents NATS JetStream connection settings
type NATSConfig struct {
	URL      string
	Username string
	Password string
	Name     string // Connection name shown in server monitoring (default: "fitlog")
}

// NATSQueue implements Queue using NATS JetStream.
// Every subject gets its own file-backed stream, created on first use.
type NATSQueue struct {
	conn          *nats.Conn
	js            nats.JetStreamContext
	subscriptions map[string]*nats.Subscription
	streams       map[string]bool
	mu            sync.Mutex
}

func newNATSQueue(cfg NATSConfig) (*NATSQueue, error) {
	if cfg.Name == "" {
		cfg.Name = "fitlog"
	}

	opts := []nats.Option{
		nats.Name(cfg.Name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
	}
	if cfg.Username != "" {
		opts = append(opts, nats.UserInfo(cfg.Username, cfg.Password))
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	q, err := newNATSQueueWithConn(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return q, nil
}

// newNATSQueueWithConn wraps an existing connection
func newNATSQueueWithConn(conn *nats.Conn) (*NATSQueue, error) {
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	return &NATSQueue{
		conn:          conn,
		js:            js,
		subscriptions: make(map[string]*nats.Subscription),
		streams:       make(map[string]bool),
	}, nil
}

// ensureStream creates the stream backing subject if it does not exist.
// Callers must hold q.mu.
func (q *NATSQueue) ensureStream(subject string) error {
	if q.streams[subject] {
		return nil
	}

	name := streamName(subject)
	_, err := q.js.StreamInfo(name)
	if errors.Is(err, nats.ErrStreamNotFound) {
		_, err = q.js.AddStream(&nats.StreamConfig{
			Name:     name,
			Subjects: []string{subject},
			Storage:  nats.FileStorage,
			MaxAge:   7 * 24 * time.Hour,
		})
	}
	if err != nil {
		return fmt.Errorf("failed to prepare stream for subject %s: %w", subject, err)
	}

	q.streams[subject] = true
	return nil
}

// Publish publishes a message and waits for the JetStream ack
func (q *NATSQueue) Publish(ctx context.Context, subject string, data []byte) error {
	q.mu.Lock()
	err := q.ensureStream(subject)
	q.mu.Unlock()
	if err != nil {
		return err
	}

	if _, err := q.js.Publish(subject, data, nats.Context(ctx)); err != nil {
		return fmt.Errorf("failed to publish to subject %s: %w", subject, err)
	}
	return nil
}

// PublishBatch publishes all messages asynchronously and waits for their acks
func (q *NATSQueue) PublishBatch(ctx context.Context, messages []Message) (int, error) {
	if len(messages) == 0 {
		return 0, nil
	}

	q.mu.Lock()
	for _, msg := range messages {
		if err := q.ensureStream(msg.Subject); err != nil {
			q.mu.Unlock()
			return 0, err
		}
	}
	q.mu.Unlock()

	futures := make([]nats.PubAckFuture, 0, len(messages))
	for _, msg := range messages {
		future, err := q.js.PublishAsync(msg.Subject, msg.Data)
		if err != nil {
			continue
		}
		futures = append(futures, future)
	}

	select {
	case <-q.js.PublishAsyncComplete():
	case <-ctx.Done():
		return 0, fmt.Errorf("timeout waiting for batch publish: %w", ctx.Err())
	}

	acked := 0
	var lastErr error
	for _, future := range futures {
		select {
		case <-future.Ok():
			acked++
		case err := <-future.Err():
			lastErr = err
		}
	}

	if acked == 0 && lastErr != nil {
		return 0, fmt.Errorf("failed to publish batch: %w", lastErr)
	}
	return acked, nil
}

// Subscribe attaches a durable, manually acked consumer to subject.
// Failed messages are NAKed and redelivered up to three times.
func (q *NATSQueue) Subscribe(subject string, handler MessageHandler) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, exists := q.subscriptions[subject]; exists {
		return fmt.Errorf("already subscribed to subject: %s", subject)
	}

	if err := q.ensureStream(subject); err != nil {
		return err
	}

	sub, err := q.js.Subscribe(subject, func(msg *nats.Msg) {
		if err := handler(context.Background(), Message{Subject: msg.Subject, Data: msg.Data}); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("fitlog-"+sanitizeName(subject)),
		nats.ManualAck(),
		nats.MaxAckPending(100),
		nats.AckWait(30*time.Second),
		nats.MaxDeliver(3),
		nats.DeliverAll(),
	)
	if err != nil {
		return fmt.Errorf("failed to subscribe to subject %s: %w", subject, err)
	}

	q.subscriptions[subject] = sub
	return nil
}

// Unsubscribe detaches from subject. The durable consumer is kept on the
// server so a later Subscribe resumes where it stopped.
func (q *NATSQueue) Unsubscribe(subject string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	sub, exists := q.subscriptions[subject]
	if !exists {
		return fmt.Errorf("not subscribed to subject: %s", subject)
	}

	if err := sub.Drain(); err != nil {
		return fmt.Errorf("failed to unsubscribe from subject %s: %w", subject, err)
	}

	delete(q.subscriptions, subject)
	return nil
}

// Close drains all subscriptions and closes the connection
func (q *NATSQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for subject, sub := range q.subscriptions {
		_ = sub.Drain()
		delete(q.subscriptions, subject)
	}

	q.conn.Close()
	return nil
}

func streamName(subject string) string {
	return "FITLOG_" + sanitizeName(subject)
}

// sanitizeName maps subject characters to ones allowed in stream and
// consumer names (A-Z, a-z, 0-9, dash, underscore)
func sanitizeName(subject string) string {
	out := []byte(subject)
	for i, c := range out {
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			out[i] = '_'
		}
	}
	return string(out)
}
