package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/fitlogapp/fitlog/internal/aggregation"
	"github.com/fitlogapp/fitlog/internal/config"
	"github.com/fitlogapp/fitlog/internal/utils"
)

func main() {
	input := flag.String("input", "-", "JSON file with an array of records (- for stdin)")
	output := flag.String("output", "-", "Output file (- for stdout)")
	format := flag.String("format", "json", "Output format (json, csv)")
	tsField := flag.String("timestamp-field", "", "Record field holding the timestamp (required)")
	sumFlag := flag.String("sum", "", "Comma-separated numeric fields to sum per bucket")
	granularity := flag.String("granularity", "day", "Bucket granularity (day, week, month)")
	seriesField := flag.String("series", "", "Field charted as the series (default: first -sum field, or count)")
	timezone := flag.String("timezone", utils.DefaultTimezone, "IANA zone or ±HH:MM offset buckets are computed in")
	maxPoints := flag.Int("max-points", 0, "Keep only the most recent N series points (0 keeps all)")
	width := flag.Int("width", 0, "Screen width in dp; derives -max-points when set")

	flag.Parse()

	if *tsField == "" {
		log.Fatal("Error: -timestamp-field is required")
	}

	g, err := aggregation.ParseGranularity(*granularity)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	loc, err := config.ParseLocation(*timezone)
	if err != nil {
		log.Fatalf("Error: invalid timezone '%s': %v", *timezone, err)
	}

	sumFields := splitFields(*sumFlag)
	series := *seriesField
	if series == "" {
		series = aggregation.CountField
		if len(sumFields) > 0 {
			series = sumFields[0]
		}
	}

	limit := *maxPoints
	if limit == 0 && *width > 0 {
		limit = aggregation.MaxPointsForWidth(*width, utils.NarrowScreenWidth)
	}

	records, err := readRecords(*input)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	r := run(records, *tsField, sumFields, series, g, loc, limit)

	out := os.Stdout
	if *output != "-" {
		f, err := os.Create(*output)
		if err != nil {
			log.Fatalf("Error: failed to create output file: %v", err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	switch *format {
	case "json":
		err = writeJSON(out, r)
	case "csv":
		err = writeCSV(out, r, sumFields)
	default:
		log.Fatalf("Error: unknown format '%s' (supported: json, csv)", *format)
	}
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	fmt.Fprintf(os.Stderr, "Aggregated %d records into %d buckets (%d skipped)\n", r.Records, len(r.Buckets), r.Skipped)
}

func splitFields(s string) []string {
	var fields []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

func readRecords(path string) ([]aggregation.Record, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open input: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	dec := json.NewDecoder(r)
	dec.UseNumber()

	var records []aggregation.Record
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}
	return records, nil
}
