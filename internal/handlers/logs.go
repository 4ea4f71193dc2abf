package handlers

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/fitlogapp/fitlog/internal/logging"
	"github.com/fitlogapp/fitlog/internal/models"
	"github.com/gofiber/fiber/v2"
)

var errEmptyBody = errors.New("request body is empty")

// decodeRecords accepts a single JSON object or an array of objects
func decodeRecords(body []byte) ([]json.RawMessage, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, errEmptyBody
	}

	if body[0] == '[' {
		var list []json.RawMessage
		if err := json.Unmarshal(body, &list); err != nil {
			return nil, err
		}
		return list, nil
	}

	var single json.RawMessage
	if err := json.Unmarshal(body, &single); err != nil {
		return nil, err
	}
	return []json.RawMessage{single}, nil
}

// IngestLogs accepts one record or a batch for asynchronous storage
// POST /v1/users/:user_id/logs/:kind
func (h *Handler) IngestLogs(c *fiber.Ctx) error {
	raw, err := decodeRecords(c.Body())
	if err != nil {
		return invalidJSON(c, err)
	}

	resp, err := h.analytics.Ingest(c.UserContext(), c.Params("kind"), c.Params("user_id"), raw)
	if err != nil {
		return h.serviceError(c, err)
	}
	resp.RequestID = logging.RequestID(c.UserContext())

	return c.Status(fiber.StatusAccepted).JSON(resp)
}

// DeleteLogs deletes records by id
// DELETE /v1/users/:user_id/logs/:kind  body {"ids": [...]}
func (h *Handler) DeleteLogs(c *fiber.Ctx) error {
	var req models.DeleteEntriesRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c, err)
	}
	if err := req.Validate(); err != nil {
		return invalidRequest(c, err)
	}

	resp, err := h.analytics.DeleteEntries(c.UserContext(), c.Params("kind"), c.Params("user_id"), &req)
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(resp)
}

// ListLogs pages through stored records, newest first
// GET /v1/users/:user_id/logs/:kind?from=&to=&page=&page_size=
func (h *Handler) ListLogs(c *fiber.Ctx) error {
	var req models.ListRequest
	if err := c.QueryParser(&req); err != nil {
		return invalidRequest(c, fiber.NewError(fiber.StatusBadRequest, "invalid query parameters: "+err.Error()))
	}
	req.UserID = c.Params("user_id")
	if err := req.Validate(h.analytics.Location()); err != nil {
		return invalidRequest(c, err)
	}

	resp, err := h.analytics.ListEntries(c.UserContext(), c.Params("kind"), &req)
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(resp)
}

// GetLog returns one stored record
// GET /v1/users/:user_id/logs/:kind/:id
func (h *Handler) GetLog(c *fiber.Ctx) error {
	resp, err := h.analytics.GetEntry(c.UserContext(), c.Params("kind"), c.Params("user_id"), c.Params("id"))
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(resp)
}
