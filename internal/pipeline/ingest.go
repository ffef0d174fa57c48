package pipeline

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"go-data-dashboard/internal/model"
	"go-data-dashboard/pkg/utils"
)

// ------------------- Ingestion -------------------

// openSource opens a local file or fetches an http(s) URL
func openSource(ctx context.Context, client *http.Client, pathOrURL string) (io.ReadCloser, error) {
	if strings.HasPrefix(pathOrURL, "http://") || strings.HasPrefix(pathOrURL, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pathOrURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to build CSV request: %w", err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to GET CSV: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("failed to GET CSV: %s returned %s", pathOrURL, resp.Status)
		}
		return resp.Body, nil
	}
	file, err := os.Open(pathOrURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	return file, nil
}

// IngestCSV reads a whole CSV source into a Table. Cells are parsed with
// utils.ParseValue, so empty cells become nil. Malformed lines are skipped
// and counted.
func IngestCSV(ctx context.Context, log *zap.Logger, client *http.Client, name, pathOrURL string, sep rune) (*model.Table, int, error) {
	log.Info("➡️ Starting ingestion", zap.String("dataset", name), zap.String("source", pathOrURL))

	rc, err := openSource(ctx, client, pathOrURL)
	if err != nil {
		return nil, 0, err
	}
	defer rc.Close()

	table, skipped, err := ReadCSV(ctx, rc, sep)
	if err != nil {
		return nil, skipped, err
	}
	table.Name = name

	log.Info("📄 CSV ingestion done",
		zap.String("dataset", name),
		zap.Int("records", len(table.Rows)),
		zap.Int("skipped", skipped),
	)
	return table, skipped, nil
}

// ReadCSV parses CSV from r. The first line is the header.
func ReadCSV(ctx context.Context, r io.Reader, sep rune) (*model.Table, int, error) {
	csvReader := csv.NewReader(r)
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1
	if sep != 0 {
		csvReader.Comma = sep
	}

	headers, err := csvReader.Read()
	if err != nil {
		if err == io.EOF {
			return &model.Table{}, 0, nil
		}
		return nil, 0, fmt.Errorf("failed to read CSV header: %w", err)
	}

	table := &model.Table{Columns: make([]string, len(headers))}
	for i, h := range headers {
		// Clean header names: trim whitespace, BOM and quotes
		cleanHeader := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		cleanHeader = strings.ReplaceAll(cleanHeader, `"`, "")
		if cleanHeader == "" {
			cleanHeader = fmt.Sprintf("Unnamed: %d", i)
		}
		table.Columns[i] = cleanHeader
	}

	skipped := 0
	for line := 2; ; line++ {
		if line%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, skipped, err
			}
		}
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			skipped++
			continue
		}

		recMap := make(model.GenericRecord, len(table.Columns))
		for i, h := range table.Columns {
			if i < len(record) {
				recMap[h] = utils.ParseValue(record[i])
			} else {
				recMap[h] = nil
			}
		}
		table.Rows = append(table.Rows, recMap)
	}
	return table, skipped, nil
}

// ToRawRecords converts the rows of a time-series dataset into RawRecords.
// Every configured metric column (or, when none are configured, every
// numeric column other than the key columns) becomes a value; empty cells
// stay null. Rows without a series key or a parsable date are rejected.
func ToRawRecords(table *model.Table, ds model.Dataset) ([]model.RawRecord, []error) {
	metrics := metricColumns(table, ds)
	records := make([]model.RawRecord, 0, len(table.Rows))
	var errs []error

	for i, row := range table.Rows {
		key := utils.Stringify(row[ds.SeriesColumn])
		if key == "" {
			errs = append(errs, fmt.Errorf("row %d: empty %s", i+1, ds.SeriesColumn))
			continue
		}
		d, err := parseDateCell(row[ds.DateColumn])
		if err != nil {
			errs = append(errs, fmt.Errorf("row %d: %w", i+1, err))
			continue
		}
		values := make(map[string]float64, len(metrics))
		for _, m := range metrics {
			if f, ok := utils.ToFloat(row[m]); ok {
				values[m] = f
			}
		}
		rec := model.RawRecord{SeriesKey: key, Date: d, Values: values}
		if ds.GroupColumn != "" {
			rec.Group = utils.Stringify(row[ds.GroupColumn])
		}
		records = append(records, rec)
	}
	return records, errs
}

func metricColumns(table *model.Table, ds model.Dataset) []string {
	if len(ds.Metrics) > 0 {
		cols := make([]string, 0, len(ds.Metrics))
		for _, c := range table.Columns {
			if _, ok := ds.Metrics[c]; ok {
				cols = append(cols, c)
			}
		}
		return cols
	}
	skip := map[string]bool{ds.SeriesColumn: true, ds.DateColumn: true, ds.GroupColumn: true}
	var cols []string
	for _, c := range table.Columns {
		if skip[c] {
			continue
		}
		for _, row := range table.Rows {
			if row[c] == nil {
				continue
			}
			if _, ok := row[c].(string); !ok {
				cols = append(cols, c)
			}
			break
		}
	}
	return cols
}

func parseDateCell(v interface{}) (time.Time, error) {
	switch val := v.(type) {
	case time.Time:
		return utils.BeginDay(val), nil
	case string:
		return utils.ParseDate(val)
	case nil:
		return time.Time{}, fmt.Errorf("empty date")
	default:
		return time.Time{}, fmt.Errorf("invalid date %v", val)
	}
}
