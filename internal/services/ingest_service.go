package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/fitlogapp/fitlog/internal/ingest"
	"github.com/fitlogapp/fitlog/internal/metrics"
	"github.com/fitlogapp/fitlog/internal/models"
	"github.com/fitlogapp/fitlog/internal/queue"
	"github.com/fitlogapp/fitlog/internal/records"
	"github.com/fitlogapp/fitlog/internal/store"
	"github.com/fitlogapp/fitlog/internal/utils"
	"github.com/google/uuid"
)

// MaxIngestBatch bounds the records accepted by one ingest call
const MaxIngestBatch = 500

// Ingest validates submitted records and publishes them to the ingest queue.
// Either every record is accepted or none is. Records without an id get one.
func (s *AnalyticsService) Ingest(ctx context.Context, kindName, userID string, raw []json.RawMessage) (*models.IngestResponse, error) {
	kind, err := records.ParseKind(kindName)
	if err != nil {
		return nil, NewServiceErrorWithDetails(CodeInvalidRequest, "Unknown record kind",
			map[string]interface{}{"kind": kindName})
	}
	if len(raw) == 0 {
		return nil, NewServiceError(CodeInvalidRequest, "At least one record is required")
	}
	if len(raw) > MaxIngestBatch {
		return nil, NewServiceErrorWithDetails(CodeInvalidRequest, "Too many records",
			map[string]interface{}{"max": MaxIngestBatch, "received": len(raw)})
	}

	receivedAt := s.now().UTC()
	subject := queue.LogSubject(string(kind))
	messages := make([]queue.Message, 0, len(raw))
	ids := make([]string, 0, len(raw))

	for i, data := range raw {
		l, err := records.Decode(kind, data)
		if err != nil {
			return nil, NewServiceErrorWithDetails(CodeInvalidRequest, "Invalid record",
				map[string]interface{}{"index": i, "error": err.Error()})
		}
		l.SetOwner(userID)
		if err := l.Validate(s.loc); err != nil {
			details := map[string]interface{}{"index": i, "error": err.Error()}
			var verr *records.ValidationError
			if errors.As(err, &verr) {
				details["field"] = verr.Field
			}
			return nil, NewServiceErrorWithDetails(CodeInvalidRequest, "Invalid record", details)
		}
		if l.LogID() == "" {
			l.SetID(uuid.NewString())
		}

		env, err := ingest.NewEnvelope(l, receivedAt)
		if err != nil {
			return nil, NewServiceErrorWithDetails(CodeIngestFailed, "Failed to encode record",
				map[string]interface{}{"index": i, "error": err.Error()})
		}
		payload, err := env.Marshal()
		if err != nil {
			return nil, NewServiceErrorWithDetails(CodeIngestFailed, "Failed to encode record",
				map[string]interface{}{"index": i, "error": err.Error()})
		}

		messages = append(messages, queue.Message{Subject: subject, Data: payload})
		ids = append(ids, l.LogID())
	}

	pubCtx, cancel := context.WithTimeout(ctx, utils.IngestPublishTimeout)
	defer cancel()

	accepted := 0
	if len(messages) == 1 {
		err = s.publisher.Publish(pubCtx, subject, messages[0].Data)
		if err == nil {
			accepted = 1
		}
	} else {
		accepted, err = s.publisher.PublishBatch(pubCtx, messages)
	}

	for i := 0; i < accepted; i++ {
		s.metrics.Ingested(string(kind), metrics.OutcomeAccepted)
	}

	if err != nil {
		s.logger.Error("Failed to publish records",
			"kind", kind,
			"user_id", userID,
			"accepted", accepted,
			"total", len(messages),
			"error", err,
		)
		return nil, NewServiceErrorWithDetails(CodeIngestFailed, "Failed to queue records",
			map[string]interface{}{"accepted": accepted, "total": len(messages), "error": err.Error()})
	}

	s.logger.Debug("Records queued",
		"kind", kind,
		"user_id", userID,
		"count", accepted,
	)

	return &models.IngestResponse{
		Accepted: accepted,
		IDs:      ids,
	}, nil
}

// DeleteEntries removes records by id and drops the user's cached analytics
func (s *AnalyticsService) DeleteEntries(ctx context.Context, kindName, userID string, req *models.DeleteEntriesRequest) (*models.DeleteResponse, error) {
	kind, err := records.ParseKind(kindName)
	if err != nil {
		return nil, NewServiceErrorWithDetails(CodeInvalidRequest, "Unknown record kind",
			map[string]interface{}{"kind": kindName})
	}

	deleted, err := s.store.Delete(ctx, kind, userID, req.IDs)
	if err != nil {
		s.logger.Error("Failed to delete records",
			"kind", kind,
			"user_id", userID,
			"error", err,
		)
		return nil, NewServiceErrorWithDetails(CodeDeleteFailed, "Failed to delete records",
			map[string]interface{}{"error": err.Error()})
	}

	if deleted > 0 {
		if err := s.cache.InvalidateUser(ctx, userID); err != nil {
			s.logger.Warn("Failed to invalidate analytics cache", "user_id", userID, "error", err)
		}
	}

	s.logger.Info("Records deleted",
		"kind", kind,
		"user_id", userID,
		"requested", len(req.IDs),
		"deleted", deleted,
	)

	return &models.DeleteResponse{
		Requested: len(req.IDs),
		Deleted:   deleted,
	}, nil
}

// GetEntry returns one stored record
func (s *AnalyticsService) GetEntry(ctx context.Context, kindName, userID, id string) (*models.EntryView, error) {
	kind, err := records.ParseKind(kindName)
	if err != nil {
		return nil, NewServiceErrorWithDetails(CodeInvalidRequest, "Unknown record kind",
			map[string]interface{}{"kind": kindName})
	}

	e, err := s.store.Get(ctx, kind, userID, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, NewServiceErrorWithDetails(CodeNotFound, "Record not found",
			map[string]interface{}{"kind": kind, "id": id})
	}
	if err != nil {
		return nil, NewServiceErrorWithDetails(CodeFetchFailed, "Failed to fetch record",
			map[string]interface{}{"error": err.Error()})
	}

	v := s.entryView(e)
	return &v, nil
}

// ListEntries pages through the raw records of one kind, newest first
func (s *AnalyticsService) ListEntries(ctx context.Context, kindName string, req *models.ListRequest) (*models.HistoryPage[models.EntryView], error) {
	kind, err := records.ParseKind(kindName)
	if err != nil {
		return nil, NewServiceErrorWithDetails(CodeInvalidRequest, "Unknown record kind",
			map[string]interface{}{"kind": kindName})
	}

	page, err := s.store.List(ctx, store.Query{
		Kind:     kind,
		UserID:   req.UserID,
		From:     req.FromParsed,
		To:       req.ToParsed,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		return nil, NewServiceErrorWithDetails(CodeFetchFailed, "Failed to fetch records",
			map[string]interface{}{"error": err.Error()})
	}

	views := make([]models.EntryView, 0, len(page.Entries))
	for _, e := range page.Entries {
		views = append(views, s.entryView(e))
	}
	hp := historyPage(views, page)
	return &hp, nil
}

func (s *AnalyticsService) entryView(e store.Entry) models.EntryView {
	return models.EntryView{
		Kind:   e.Kind,
		ID:     e.ID,
		Time:   e.Time.In(s.loc).Format(time.RFC3339),
		Record: json.RawMessage(e.Data),
	}
}
