package main

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/fitlogapp/fitlog/internal/aggregation"
)

// report is the JSON output of one run
type report struct {
	Granularity aggregation.Granularity           `json:"granularity"`
	Timezone    string                            `json:"timezone"`
	Records     int                               `json:"records"`
	Skipped     int                               `json:"skipped"`
	Buckets     []bucketRow                       `json:"buckets"`
	Series      aggregation.Series                `json:"series"`
	Chart       aggregation.ChartData             `json:"chart"`
	Stats       map[string]aggregation.FieldStats `json:"stats"`
}

type bucketRow struct {
	Key   string             `json:"key"`
	Label string             `json:"label"`
	Count int                `json:"count"`
	Sums  map[string]float64 `json:"sums"`
}

func run(records []aggregation.Record, tsField string, sumFields []string, series string,
	g aggregation.Granularity, loc *time.Location, maxPoints int,
) report {
	ex := aggregation.MapExtractor(tsField)
	bs := aggregation.Group(records, ex, g, loc, sumFields)
	s := aggregation.Limit(aggregation.ToSeries(bs, series), maxPoints)

	rows := make([]bucketRow, 0, len(bs))
	for _, b := range bs.Sorted() {
		rows = append(rows, bucketRow{
			Key:   b.Key,
			Label: b.Label,
			Count: b.Count,
			Sums:  b.Sums,
		})
	}

	return report{
		Granularity: g,
		Timezone:    loc.String(),
		Records:     len(records),
		Skipped:     len(records) - bs.RecordCount(),
		Buckets:     rows,
		Series:      s,
		Chart:       s.ChartData(),
		Stats:       aggregation.Summarize(bs.Records(), ex, sumFields),
	}
}

func writeJSON(w io.Writer, r report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// writeCSV writes one row per bucket: key, label, count and every sum field
func writeCSV(w io.Writer, r report, sumFields []string) error {
	cw := csv.NewWriter(w)

	header := append([]string{"key", "label", "count"}, sumFields...)
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, b := range r.Buckets {
		row := []string{b.Key, b.Label, strconv.Itoa(b.Count)}
		for _, f := range sumFields {
			row = append(row, strconv.FormatFloat(b.Sums[f], 'f', -1, 64))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
