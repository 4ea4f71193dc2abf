package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fitlogapp/fitlog/internal/cache"
	"github.com/fitlogapp/fitlog/internal/logging"
	"github.com/fitlogapp/fitlog/internal/metrics"
	"github.com/fitlogapp/fitlog/internal/queue"
	"github.com/fitlogapp/fitlog/internal/records"
	"github.com/fitlogapp/fitlog/internal/store"
	"github.com/google/uuid"
)

// Consumer validates queued records and stores them
type Consumer struct {
	store    store.Store
	cache    cache.Cache
	metrics  *metrics.Manager
	logger   *logging.Logger
	location *time.Location
	subjects []string
	sub      queue.Subscriber
}

// NewConsumer creates a consumer. loc is the zone date-only timestamps are
// read in.
func NewConsumer(st store.Store, c cache.Cache, m *metrics.Manager, logger *logging.Logger, loc *time.Location) *Consumer {
	if c == nil {
		c = cache.Nop{}
	}
	return &Consumer{
		store:    st,
		cache:    c,
		metrics:  m,
		logger:   logger,
		location: loc,
	}
}

// Start subscribes to the subject of every record kind
func (c *Consumer) Start(sub queue.Subscriber) error {
	for _, kind := range records.Kinds {
		subject := queue.LogSubject(string(kind))
		if err := sub.Subscribe(subject, c.Handle); err != nil {
			c.stopSubjects(sub)
			return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
		}
		c.subjects = append(c.subjects, subject)
	}
	c.sub = sub
	c.logger.Info("Ingest consumer started", "subjects", c.subjects)
	return nil
}

// Stop unsubscribes from all subjects
func (c *Consumer) Stop() {
	if c.sub == nil {
		return
	}
	c.stopSubjects(c.sub)
	c.sub = nil
}

func (c *Consumer) stopSubjects(sub queue.Subscriber) {
	for _, subject := range c.subjects {
		if err := sub.Unsubscribe(subject); err != nil {
			c.logger.Warn("Failed to unsubscribe", "subject", subject, "error", err)
		}
	}
	c.subjects = nil
}

// Handle processes one queue message. Malformed or invalid records are
// dropped (nil error); store failures return an error so the message is
// redelivered.
func (c *Consumer) Handle(ctx context.Context, msg queue.Message) error {
	env, err := DecodeEnvelope(msg.Data)
	if err != nil {
		kind, _ := queue.KindOf(msg.Subject)
		c.reject(kind, "Dropping undecodable message", "subject", msg.Subject, "error", err)
		return nil
	}

	l, err := env.Log()
	if err != nil {
		c.reject(string(env.Kind), "Dropping undecodable record", "user_id", env.UserID, "error", err)
		return nil
	}
	if l.LogID() == "" {
		l.SetID(uuid.NewString())
	}

	if err := l.Validate(c.location); err != nil {
		c.reject(string(env.Kind), "Dropping invalid record", "user_id", env.UserID, "id", l.LogID(), "error", err)
		return nil
	}

	entry, err := store.NewEntry(l, c.location)
	if err != nil {
		c.reject(string(env.Kind), "Dropping unstorable record", "user_id", env.UserID, "id", l.LogID(), "error", err)
		return nil
	}

	if err := c.store.Put(ctx, entry); err != nil {
		c.metrics.Ingested(string(env.Kind), metrics.OutcomeFailed)
		c.logger.Error("Failed to store record",
			"kind", env.Kind,
			"user_id", env.UserID,
			"id", entry.ID,
			"error", err,
		)
		return err
	}

	if err := c.cache.InvalidateUser(ctx, env.UserID); err != nil && !errors.Is(err, context.Canceled) {
		c.logger.Warn("Failed to invalidate analytics cache", "user_id", env.UserID, "error", err)
	}

	c.metrics.Ingested(string(env.Kind), metrics.OutcomeStored)
	c.logger.Debug("Stored record",
		"kind", env.Kind,
		"user_id", env.UserID,
		"id", entry.ID,
		"lag_ms", time.Since(env.ReceivedAt).Milliseconds(),
	)
	return nil
}

func (c *Consumer) reject(kind, msg string, fields ...interface{}) {
	if kind == "" {
		kind = "unknown"
	}
	c.metrics.Ingested(kind, metrics.OutcomeInvalid)
	c.logger.Warn(msg, fields...)
}
