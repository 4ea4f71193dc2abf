package aggregation

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	dayKeyLayout   = "2006-01-02"
	monthKeyLayout = "2006-01"
	dayLabelLayout = "02/01"
)

// BucketKey returns the canonical bucket key of a raw timestamp.
// The timestamp is converted into loc before the calendar fields are read,
// so a record logged at 23:30 UTC lands on the next local day for UTC+7.
//
//	day   -> 2025-07-20
//	week  -> 2025-W29 (ISO week year and week, Monday start)
//	month -> 2025-07
//
// It returns false when the timestamp is unparseable or g is unknown.
func BucketKey(ts interface{}, g Granularity, loc *time.Location) (string, bool) {
	t, ok := ParseTimestamp(ts, loc)
	if !ok {
		return "", false
	}
	return KeyForTime(t.In(location(loc)), g)
}

// KeyForTime returns the bucket key for t using t's own location
func KeyForTime(t time.Time, g Granularity) (string, bool) {
	switch g {
	case GranularityDay:
		return t.Format(dayKeyLayout), true
	case GranularityWeek:
		year, week := t.ISOWeek()
		return weekKey(year, week), true
	case GranularityMonth:
		return t.Format(monthKeyLayout), true
	default:
		return "", false
	}
}

func weekKey(year, week int) string {
	return fmt.Sprintf("%d-W%02d", year, week)
}

// ParseWeekKey splits a week key into ISO year and week.
// Both padded ("2025-W07") and unpadded ("2025-W7") weeks are accepted.
func ParseWeekKey(key string) (year, week int, ok bool) {
	yearPart, weekPart, found := strings.Cut(key, "-W")
	if !found {
		return 0, 0, false
	}
	year, err := strconv.Atoi(yearPart)
	if err != nil {
		return 0, 0, false
	}
	week, err = strconv.Atoi(weekPart)
	if err != nil || week < 1 {
		return 0, 0, false
	}
	return year, week, true
}

// ISOWeekStart returns midnight of the Monday starting ISO week `week` of
// ISO year `year`. Week 1 is the week containing January 4th.
func ISOWeekStart(year, week int, loc *time.Location) (time.Time, error) {
	if week < 1 || week > 53 {
		return time.Time{}, fmt.Errorf("week %d out of range 1..53", week)
	}

	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, location(loc))
	sinceMonday := (int(jan4.Weekday()) + 6) % 7
	monday := jan4.AddDate(0, 0, -sinceMonday+(week-1)*7)

	// Week 53 only exists in long ISO years
	if y, w := monday.ISOWeek(); y != year || w != week {
		return time.Time{}, fmt.Errorf("ISO year %d has no week %d", year, week)
	}
	return monday, nil
}

// BucketLabel returns the human-readable label of a bucket key.
//
//	day   -> 20/07
//	week  -> 14/07 - 20/07 (Monday - Sunday), or W{week}/{year} when the
//	         week cannot be reconstructed
//	month -> 07/2025
//
// A key that does not match its granularity is returned unchanged.
func BucketLabel(key string, g Granularity) string {
	switch g {
	case GranularityDay:
		t, err := time.Parse(dayKeyLayout, key)
		if err != nil {
			return key
		}
		return t.Format(dayLabelLayout)

	case GranularityWeek:
		year, week, ok := ParseWeekKey(key)
		if !ok {
			return key
		}
		monday, err := ISOWeekStart(year, week, time.UTC)
		if err != nil {
			return fmt.Sprintf("W%d/%d", week, year)
		}
		sunday := monday.AddDate(0, 0, 6)
		return monday.Format(dayLabelLayout) + " - " + sunday.Format(dayLabelLayout)

	case GranularityMonth:
		t, err := time.Parse(monthKeyLayout, key)
		if err != nil {
			return key
		}
		return t.Format("01/2006")

	default:
		return key
	}
}

// BucketStart returns the local start instant of a bucket key
func BucketStart(key string, g Granularity, loc *time.Location) (time.Time, bool) {
	loc = location(loc)
	switch g {
	case GranularityDay:
		t, err := time.ParseInLocation(dayKeyLayout, key, loc)
		return t, err == nil
	case GranularityWeek:
		year, week, ok := ParseWeekKey(key)
		if !ok {
			return time.Time{}, false
		}
		t, err := ISOWeekStart(year, week, loc)
		return t, err == nil
	case GranularityMonth:
		t, err := time.ParseInLocation(monthKeyLayout, key, loc)
		return t, err == nil
	}
	return time.Time{}, false
}
