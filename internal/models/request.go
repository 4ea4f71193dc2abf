package models

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/fitlogapp/fitlog/internal/aggregation"
	"github.com/fitlogapp/fitlog/internal/utils"
	"github.com/gofiber/fiber/v2"
)

const dateLayout = "2006-01-02"

// AnalyticsRequest is the query of one analytics screen
type AnalyticsRequest struct {
	UserID      string `query:"-"`
	Granularity string `query:"granularity"` // day, week, month (default from config)
	Metric      string `query:"metric"`      // workouts only (default caloriesBurned)
	From        string `query:"from"`        // ISO-8601 date/time or epoch
	To          string `query:"to"`          // date-only values include the whole day
	Page        int    `query:"page"`
	PageSize    int    `query:"page_size"`
	Width       int    `query:"width"` // screen width in dp, picks the chart point cap

	GranularityParsed aggregation.Granularity `query:"-"`
	FromParsed        time.Time               `query:"-"`
	ToParsed          time.Time               `query:"-"`
}

// Validate checks the query and fills the parsed fields. Timestamps without
// an offset are read in loc.
func (r *AnalyticsRequest) Validate(loc *time.Location) error {
	if strings.TrimSpace(r.UserID) == "" {
		return &fiber.Error{
			Code:    fiber.StatusBadRequest,
			Message: "user_id is required",
		}
	}

	if r.Granularity != "" {
		g, err := aggregation.ParseGranularity(r.Granularity)
		if err != nil {
			return &fiber.Error{
				Code:    fiber.StatusBadRequest,
				Message: "granularity must be one of: day, week, month",
			}
		}
		r.GranularityParsed = g
	}

	from, to, err := parseRange(r.From, r.To, loc)
	if err != nil {
		return err
	}
	r.FromParsed, r.ToParsed = from, to

	if r.Page < 0 {
		return &fiber.Error{
			Code:    fiber.StatusBadRequest,
			Message: "page must not be negative",
		}
	}
	if r.Page == 0 {
		r.Page = 1
	}

	if r.PageSize < 0 || r.PageSize > utils.MaxPageSize {
		return &fiber.Error{
			Code:    fiber.StatusBadRequest,
			Message: "page_size must be between 1 and 200",
		}
	}
	if r.PageSize == 0 {
		r.PageSize = utils.DefaultPageSize
	}

	if r.Width < 0 {
		return &fiber.Error{
			Code:    fiber.StatusBadRequest,
			Message: "width must not be negative",
		}
	}

	return nil
}

// parseRange parses an optional [from, to] range. A date-only "to" is
// extended to the last instant of that day.
func parseRange(fromRaw, toRaw string, loc *time.Location) (time.Time, time.Time, error) {
	var from, to time.Time

	if fromRaw != "" {
		t, ok := aggregation.ParseTimestamp(fromRaw, loc)
		if !ok {
			return from, to, &fiber.Error{
				Code:    fiber.StatusBadRequest,
				Message: "from must be an ISO-8601 date/time or epoch",
			}
		}
		from = t
	}

	if toRaw != "" {
		t, ok := aggregation.ParseTimestamp(toRaw, loc)
		if !ok {
			return from, to, &fiber.Error{
				Code:    fiber.StatusBadRequest,
				Message: "to must be an ISO-8601 date/time or epoch",
			}
		}
		if isDateOnly(toRaw) {
			t = t.AddDate(0, 0, 1).Add(-time.Millisecond)
		}
		to = t
	}

	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return from, to, &fiber.Error{
			Code:    fiber.StatusBadRequest,
			Message: "to must not be before from",
		}
	}

	return from, to, nil
}

func isDateOnly(s string) bool {
	_, err := time.Parse(dateLayout, strings.TrimSpace(s))
	return err == nil
}

// FoodDiaryRequest selects the food diary of one day
type FoodDiaryRequest struct {
	UserID string `query:"-"`
	Date   string `query:"date"` // YYYY-MM-DD, default today

	DateKey string    `query:"-"`
	Start   time.Time `query:"-"`
	End     time.Time `query:"-"`
}

// Validate parses the diary day in loc; an empty date means today
func (r *FoodDiaryRequest) Validate(loc *time.Location, now time.Time) error {
	if strings.TrimSpace(r.UserID) == "" {
		return &fiber.Error{
			Code:    fiber.StatusBadRequest,
			Message: "user_id is required",
		}
	}

	var day time.Time
	if r.Date == "" {
		local := now.In(loc)
		day = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	} else {
		t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(r.Date), loc)
		if err != nil {
			return &fiber.Error{
				Code:    fiber.StatusBadRequest,
				Message: "date must be in YYYY-MM-DD format",
			}
		}
		day = t
	}

	r.DateKey = day.Format(dateLayout)
	r.Start = day
	r.End = day.AddDate(0, 0, 1).Add(-time.Millisecond)
	return nil
}

// ListRequest pages through the raw records of one kind
type ListRequest struct {
	UserID   string `query:"-"`
	Kind     string `query:"-"`
	From     string `query:"from"`
	To       string `query:"to"`
	Page     int    `query:"page"`
	PageSize int    `query:"page_size"`

	FromParsed time.Time `query:"-"`
	ToParsed   time.Time `query:"-"`
}

// Validate checks paging and range
func (r *ListRequest) Validate(loc *time.Location) error {
	ar := AnalyticsRequest{
		UserID:   r.UserID,
		From:     r.From,
		To:       r.To,
		Page:     r.Page,
		PageSize: r.PageSize,
	}
	if err := ar.Validate(loc); err != nil {
		return err
	}
	r.FromParsed, r.ToParsed = ar.FromParsed, ar.ToParsed
	r.Page, r.PageSize = ar.Page, ar.PageSize
	return nil
}

// AggregateRequest aggregates records supplied inline
type AggregateRequest struct {
	Records        []aggregation.Record `json:"records"`
	TimestampField string               `json:"timestampField"`
	SumFields      []string             `json:"sumFields"`
	Granularity    string               `json:"granularity"`
	SeriesField    string               `json:"seriesField"` // default: first sum field
	Timezone       string               `json:"timezone"`    // default: service timezone
	MaxPoints      int                  `json:"maxPoints"`   // 0: derive from width, or keep all
	Width          int                  `json:"width"`

	GranularityParsed aggregation.Granularity `json:"-"`
}

// MaxAggregateRecords bounds the inline record list
const MaxAggregateRecords = 50000

// MaxMeasurement bounds the magnitude of every summed value so that totals
// over MaxAggregateRecords records stay finite
const MaxMeasurement = 1e12

// Validate checks the ad hoc aggregation request
func (r *AggregateRequest) Validate() error {
	if strings.TrimSpace(r.TimestampField) == "" {
		return &fiber.Error{
			Code:    fiber.StatusBadRequest,
			Message: "timestampField is required",
		}
	}

	if len(r.Records) > MaxAggregateRecords {
		return &fiber.Error{
			Code:    fiber.StatusRequestEntityTooLarge,
			Message: "too many records (max 50000)",
		}
	}

	g, err := aggregation.ParseGranularity(r.Granularity)
	if err != nil {
		return &fiber.Error{
			Code:    fiber.StatusBadRequest,
			Message: "granularity must be one of: day, week, month",
		}
	}
	r.GranularityParsed = g

	if len(r.SumFields) == 0 && r.SeriesField != aggregation.CountField {
		return &fiber.Error{
			Code:    fiber.StatusBadRequest,
			Message: "sumFields must name at least one field",
		}
	}
	for _, f := range r.SumFields {
		if strings.TrimSpace(f) == "" || f == aggregation.CountField {
			return &fiber.Error{
				Code:    fiber.StatusBadRequest,
				Message: "sumFields must not be empty or 'count'",
			}
		}
	}

	if r.SeriesField == "" {
		r.SeriesField = r.SumFields[0]
	}
	if r.SeriesField != aggregation.CountField && !contains(r.SumFields, r.SeriesField) {
		return &fiber.Error{
			Code:    fiber.StatusBadRequest,
			Message: "seriesField must be one of sumFields or 'count'",
		}
	}

	if r.MaxPoints < 0 || r.Width < 0 {
		return &fiber.Error{
			Code:    fiber.StatusBadRequest,
			Message: "maxPoints and width must not be negative",
		}
	}

	for i, rec := range r.Records {
		for _, f := range r.SumFields {
			if math.Abs(aggregation.Number(rec[f])) > MaxMeasurement {
				return &fiber.Error{
					Code:    fiber.StatusBadRequest,
					Message: fmt.Sprintf("records[%d].%s must be between -1e12 and 1e12", i, f),
				}
			}
		}
	}

	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// DeleteEntriesRequest lists the record ids to delete
type DeleteEntriesRequest struct {
	IDs []string `json:"ids"`
}

// MaxDeleteIDs bounds one delete request
const MaxDeleteIDs = 500

// Validate requires between 1 and MaxDeleteIDs non-empty ids
func (r *DeleteEntriesRequest) Validate() error {
	if len(r.IDs) == 0 {
		return &fiber.Error{
			Code:    fiber.StatusBadRequest,
			Message: "ids must contain at least one id",
		}
	}
	if len(r.IDs) > MaxDeleteIDs {
		return &fiber.Error{
			Code:    fiber.StatusBadRequest,
			Message: "ids must contain at most 500 ids",
		}
	}
	for _, id := range r.IDs {
		if strings.TrimSpace(id) == "" {
			return &fiber.Error{
				Code:    fiber.StatusBadRequest,
				Message: "ids must not contain empty values",
			}
		}
	}
	return nil
}
