// Package queue carries ingested log records from the HTTP edge to the
// ingest consumer over NATS JetStream, Redis Streams, Kafka or an
// in-process channel.
package queue

import (
	"context"
	"strings"
)

// SubjectPrefix prefixes every log ingestion subject
const SubjectPrefix = "fitlog.logs."

// LogSubject returns the subject records of kind are published on
func LogSubject(kind string) string {
	return SubjectPrefix + kind
}

// KindOf returns the record kind of a log subject
func KindOf(subject string) (string, bool) {
	kind, ok := strings.CutPrefix(subject, SubjectPrefix)
	return kind, ok && kind != ""
}

// Message is one delivered queue message
type Message struct {
	Subject string
	Data    []byte
}

// Publisher publishes messages to a queue
type Publisher interface {
	// Publish publishes a message to a subject/topic
	Publish(ctx context.Context, subject string, data []byte) error

	// PublishBatch publishes multiple messages and returns how many were accepted
	PublishBatch(ctx context.Context, messages []Message) (int, error)

	// Close closes the connection
	Close() error
}

// Subscriber subscribes to messages from a queue
type Subscriber interface {
	// Subscribe subscribes to a subject/topic with a handler
	Subscribe(subject string, handler MessageHandler) error

	// Unsubscribe unsubscribes from a subject/topic
	Unsubscribe(subject string) error

	// Close closes the connection
	Close() error
}

// MessageHandler handles incoming messages. Returning an error leaves the
// message unacknowledged so backends with redelivery try again.
type MessageHandler func(ctx context.Context, msg Message) error

// Queue combines Publisher and Subscriber interfaces
type Queue interface {
	Publisher
	Subscriber
}
