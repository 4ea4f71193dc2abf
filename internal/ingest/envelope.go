// Package ingest consumes log records from the queue and writes them to the
// store.
package ingest

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fitlogapp/fitlog/internal/records"
)

// Envelope is the queue message wrapping one submitted record
type Envelope struct {
	Kind       records.Kind    `json:"kind"`
	UserID     string          `json:"userId"`
	Record     json.RawMessage `json:"record"`
	ReceivedAt time.Time       `json:"receivedAt"`
}

// NewEnvelope wraps a record for publishing
func NewEnvelope(l records.Log, receivedAt time.Time) (Envelope, error) {
	data, err := records.Encode(l)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		Kind:       l.Kind(),
		UserID:     l.Owner(),
		Record:     data,
		ReceivedAt: receivedAt,
	}, nil
}

// Marshal encodes the envelope for the queue
func (e Envelope) Marshal() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to encode envelope: %w", err)
	}
	return data, nil
}

// DecodeEnvelope parses a queue message
func DecodeEnvelope(data []byte) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return Envelope{}, fmt.Errorf("failed to decode envelope: %w", err)
	}
	if _, err := records.ParseKind(string(e.Kind)); err != nil {
		return Envelope{}, err
	}
	if len(e.Record) == 0 {
		return Envelope{}, fmt.Errorf("envelope has no record")
	}
	return e, nil
}

// Log decodes the wrapped record. The envelope user id is authoritative.
func (e Envelope) Log() (records.Log, error) {
	l, err := records.Decode(e.Kind, e.Record)
	if err != nil {
		return nil, err
	}
	l.SetOwner(e.UserID)
	return l, nil
}
