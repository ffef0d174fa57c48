package pipeline

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"
	"go.uber.org/zap"

	"go-data-dashboard/internal/metrics"
	"go-data-dashboard/internal/model"
	"go-data-dashboard/internal/store"
	"go-data-dashboard/pkg/utils"
)

// Exporter writes aggregated rows to files and to the sqlite export store
type Exporter struct {
	log     *zap.Logger
	store   *store.Store         // nil disables database exports
	outputs *utils.OutputManager // nil keeps relative file paths as given
	metrics *metrics.Metrics
}

func NewExporter(log *zap.Logger, st *store.Store, outputs *utils.OutputManager, m *metrics.Metrics) *Exporter {
	return &Exporter{log: log, store: st, outputs: outputs, metrics: m}
}

// ExportRows exports rows to every target in exp. Without any target the
// rows go to a default CSV file. Every export shares one job ID.
func (e *Exporter) ExportRows(ctx context.Context, dataset string, rows []model.AggregatedRow, exp model.Export) []model.ExportResult {
	jobID := uuid.NewString()
	e.log.Info("💾 Starting export",
		zap.String("job_id", jobID),
		zap.String("dataset", dataset),
		zap.Int("records", len(rows)),
	)

	var results []model.ExportResult
	if exp.File == "" && !exp.DB {
		exp.File = fmt.Sprintf("%s_%s.csv", dataset, time.Now().Format("2006-01-02_15-04-05"))
	}
	if exp.File != "" {
		results = append(results, e.exportToFile(ctx, jobID, dataset, rows, exp.File))
	}
	if exp.DB {
		results = append(results, e.exportToDatabase(ctx, jobID, dataset, rows))
	}
	return results
}

func (e *Exporter) resolvePath(jobID, file string) (string, error) {
	if e.outputs == nil || filepath.IsAbs(file) {
		if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
		return file, nil
	}
	return e.outputs.GetOutputFilePath(jobID, file)
}

// exportToFile writes rows as CSV, JSON or parquet depending on the extension
func (e *Exporter) exportToFile(ctx context.Context, jobID, dataset string, rows []model.AggregatedRow, file string) model.ExportResult {
	result := model.ExportResult{ID: jobID, Type: "file", Path: file, Timestamp: time.Now()}

	path, err := e.resolvePath(jobID, file)
	if err == nil {
		result.Path = path
		switch utils.GetFileType(path) {
		case "json":
			err = writeJSON(path, jobID, dataset, rows)
		case "parquet":
			err = parquet.WriteFile(path, rows)
		case "csv":
			err = writeCSV(path, rows)
		default:
			err = fmt.Errorf("unsupported export format %q", filepath.Ext(path))
		}
	}
	if err == nil {
		err = ctx.Err()
	}

	e.finish(dataset, &result, len(rows), err)
	if e.store != nil {
		if serr := e.store.SaveExport(ctx, dataset, result, nil); serr != nil {
			e.log.Warn("⚠️ Failed to record export", zap.String("job_id", jobID), zap.Error(serr))
		}
	}
	return result
}

// exportToDatabase saves rows to the export tables
func (e *Exporter) exportToDatabase(ctx context.Context, jobID, dataset string, rows []model.AggregatedRow) model.ExportResult {
	result := model.ExportResult{ID: jobID, Type: "database", Timestamp: time.Now()}
	if e.store == nil {
		e.finish(dataset, &result, 0, fmt.Errorf("no export database configured"))
		return result
	}
	result.Path = e.store.Path()
	// IDs are unique per row in the exports table
	result.ID = jobID + "-db"
	result.RecordCount = len(rows)
	result.Success = true

	err := e.store.SaveExport(ctx, dataset, result, rows)
	e.finish(dataset, &result, len(rows), err)
	return result
}

func (e *Exporter) finish(dataset string, result *model.ExportResult, n int, err error) {
	result.Success = err == nil
	if err != nil {
		result.RecordCount = 0
		result.Error = err.Error()
		e.log.Error("❌ Export failed",
			zap.String("dataset", dataset),
			zap.String("type", result.Type),
			zap.String("path", result.Path),
			zap.Error(err),
		)
	} else {
		result.RecordCount = n
		e.log.Info("✅ Export successful",
			zap.String("dataset", dataset),
			zap.String("type", result.Type),
			zap.String("path", result.Path),
			zap.Int("records", n),
		)
	}
	e.metrics.ObserveExport(result.Type, result.Success)
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return utils.Stringify(*v)
}

// writeCSV writes one line per row; null values are empty cells
func writeCSV(path string, rows []model.AggregatedRow) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"period_start", "series_key", "value", "derivative"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range rows {
		row := []string{
			r.PeriodStart.Format(utils.DateLayout),
			r.SeriesKey,
			formatFloat(r.Value),
			formatFloat(r.Derivative),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return file.Close()
}

// writeJSON writes rows with export metadata
func writeJSON(path, jobID, dataset string, rows []model.AggregatedRow) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	exportData := map[string]interface{}{
		"export_info": map[string]interface{}{
			"job_id":       jobID,
			"dataset":      dataset,
			"exported_at":  time.Now().UTC(),
			"record_count": len(rows),
			"export_type":  "aggregated_rows",
		},
		"data": rows,
	}
	if err := encoder.Encode(exportData); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return file.Close()
}
