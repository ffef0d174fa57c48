package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"go-data-dashboard/internal/chart"
	"go-data-dashboard/internal/model"
	"go-data-dashboard/internal/pipeline"
)

// AggregateResponse is the JSON form of an aggregation
type AggregateResponse struct {
	Dataset string                   `json:"dataset"`
	Request model.AggregationRequest `json:"request"`
	Rows    []model.AggregatedRow    `json:"rows"`
	Last    []model.AggregatedRow    `json:"last"` // final row of every series
}

// aggregate resolves the dataset, reads the request and runs the aggregation
func (h *Handler) aggregate(r *http.Request) (string, model.AggregationRequest, []model.AggregatedRow, error) {
	name := datasetName(r)
	loaded, err := h.catalog.TimeSeries(r.Context(), name)
	if err != nil {
		return name, model.AggregationRequest{}, nil, err
	}
	req, err := aggregationRequest(r, loaded)
	if err != nil {
		return name, req, nil, err
	}
	rows, err := h.catalog.Aggregate(r.Context(), name, req)
	return name, req, rows, err
}

// Aggregate resamples a time-series dataset
// @Summary Aggregate a time series
// @Description Filter a time-series dataset to a date range and series, resample it to day, week or month and reduce every period by metric kind
// @Tags timeseries
// @Produce json
// @Param name path string true "Dataset name"
// @Param metric query string true "Metric column, e.g. new_cases"
// @Param series query []string false "Series keys (repeatable or comma separated)" collectionFormat(multi)
// @Param start query string false "First date (YYYY-MM-DD), default 29 days before end"
// @Param end query string false "Last date (YYYY-MM-DD), default last date in the data"
// @Param granularity query string false "day, week or month" default(day)
// @Param kind query string false "cumulative or flow, inferred from the metric name when omitted"
// @Param peaks query bool false "Add the positive first difference of every series"
// @Success 200 {object} AggregateResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /timeseries/{name}/aggregate [get]
func (h *Handler) Aggregate(w http.ResponseWriter, r *http.Request) {
	name, req, rows, err := h.aggregate(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AggregateResponse{
		Dataset: name,
		Request: req,
		Rows:    rows,
		Last:    pipeline.LastPoints(rows),
	})
}

// Chart renders an aggregation as a line chart
// @Summary Chart a time series
// @Description Same parameters as aggregate. Draws one line per series, a dashed overlay when peaks are requested and a label at the end of every series
// @Tags timeseries
// @Produce png
// @Produce image/svg+xml
// @Param name path string true "Dataset name"
// @Param metric query string true "Metric column"
// @Param series query []string false "Series keys" collectionFormat(multi)
// @Param start query string false "First date (YYYY-MM-DD)"
// @Param end query string false "Last date (YYYY-MM-DD)"
// @Param granularity query string false "day, week or month" default(day)
// @Param kind query string false "cumulative or flow"
// @Param peaks query bool false "Overlay peak detection"
// @Param format query string false "png or svg" default(png)
// @Param width query int false "Image width in pixels"
// @Param height query int false "Image height in pixels"
// @Success 200 {file} binary
// @Success 204 "No data in range"
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /timeseries/{name}/chart [get]
func (h *Handler) Chart(w http.ResponseWriter, r *http.Request) {
	_, req, rows, err := h.aggregate(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	title := fmt.Sprintf("%s by %s, %s to %s", req.Metric, req.Granularity,
		req.Start.Format("2006-01-02"), req.End.Format("2006-01-02"))
	opts, err := chartOptions(r, title, req.Metric)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeChart(w, r, opts, func(out io.Writer) error {
		return chart.Line(out, opts, rows)
	})
}

// Matrix pivots one metric into a date x series matrix
// @Summary Pivot a time series
// @Description Date x series matrix of one metric, optionally limited to a group (e.g. continent), series and date range
// @Tags timeseries
// @Produce json
// @Param name path string true "Dataset name"
// @Param metric query string true "Metric column"
// @Param group query string false "Only series of this group"
// @Param series query []string false "Series keys" collectionFormat(multi)
// @Param start query string false "First date (YYYY-MM-DD)"
// @Param end query string false "Last date (YYYY-MM-DD)"
// @Success 200 {object} model.Matrix
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /timeseries/{name}/matrix [get]
func (h *Handler) Matrix(w http.ResponseWriter, r *http.Request) {
	loaded, err := h.catalog.TimeSeries(r.Context(), datasetName(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	metric := r.URL.Query().Get("metric")
	if metric == "" {
		h.fail(w, r, badRequest("metric is required"))
		return
	}
	start, hasStart, err := dateParam(r, "start")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	end, hasEnd, err := dateParam(r, "end")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if hasStart && hasEnd && start.After(end) {
		h.fail(w, r, &pipeline.InvalidRangeError{Start: start, End: end})
		return
	}

	records := loaded.Records
	if group := r.URL.Query().Get("group"); group != "" {
		records = pipeline.FilterGroup(records, group)
	}
	keys := map[string]bool{}
	for _, k := range listParam(r, "series") {
		keys[k] = true
	}
	filtered := make([]model.RawRecord, 0, len(records))
	for _, rec := range records {
		if len(keys) > 0 && !keys[rec.SeriesKey] {
			continue
		}
		if (hasStart && rec.Date.Before(start)) || (hasEnd && rec.Date.After(end)) {
			continue
		}
		filtered = append(filtered, rec)
	}
	writeJSON(w, http.StatusOK, pipeline.Pivot(filtered, metric))
}

// ExportRequest is the body of an export call
type ExportRequest struct {
	File string `json:"file,omitempty" example:"covid_weekly.parquet"`
	DB   bool   `json:"db,omitempty"`
}

// ExportResponse lists the outcome of every export target
type ExportResponse struct {
	Rows    int                  `json:"rows"`
	Results []model.ExportResult `json:"results"`
	Links   map[string]string    `json:"links,omitempty"` // download URL per export ID
}

// Export aggregates and writes the rows to files and/or the export database
// @Summary Export an aggregation
// @Description Aggregates with the same query parameters as aggregate and writes the rows to a .csv, .json or .parquet file and/or the sqlite export tables
// @Tags timeseries
// @Accept json
// @Produce json
// @Param name path string true "Dataset name"
// @Param metric query string true "Metric column"
// @Param series query []string false "Series keys" collectionFormat(multi)
// @Param start query string false "First date (YYYY-MM-DD)"
// @Param end query string false "Last date (YYYY-MM-DD)"
// @Param granularity query string false "day, week or month"
// @Param kind query string false "cumulative or flow"
// @Param peaks query bool false "Include derivatives"
// @Param export body ExportRequest false "Export targets"
// @Success 200 {object} ExportResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ExportResponse
// @Router /timeseries/{name}/export [post]
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	var body ExportRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			h.fail(w, r, badRequest("invalid JSON payload: %v", err))
			return
		}
	}
	// API exports stay inside the export directory
	if body.File != "" && filepath.Base(body.File) != body.File {
		h.fail(w, r, badRequest("file: want a bare file name, got %q", body.File))
		return
	}
	name, _, rows, err := h.aggregate(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	results := h.exporter.ExportRows(r.Context(), name, rows, model.Export{File: body.File, DB: body.DB})
	resp := ExportResponse{Rows: len(rows), Results: results}
	code := http.StatusOK
	for _, res := range results {
		if !res.Success {
			code = http.StatusInternalServerError
			continue
		}
		if res.Type == "file" && h.outputs != nil && strings.HasPrefix(res.Path, h.outputs.BaseOutputDir) {
			if resp.Links == nil {
				resp.Links = map[string]string{}
			}
			resp.Links[res.ID] = h.outputs.GetDownloadURL(res.ID, res.Path)
		}
	}
	writeJSON(w, code, resp)
}

// SeriesResponse lists what a time-series dataset can be queried for
type SeriesResponse struct {
	Dataset string     `json:"dataset"`
	Scope   string     `json:"scope"`
	Group   string     `json:"group,omitempty"`
	Series  []string   `json:"series"`
	Metrics []string   `json:"metrics"`
	First   *time.Time `json:"first,omitempty"`
	Last    *time.Time `json:"last,omitempty"`
}

// Series lists series keys, metrics and the date span of a dataset
// @Summary List series of a time-series dataset
// @Description scope=group lists keys that are groups themselves (continents), scope=member the others (countries); group limits members to one group
// @Tags datasets
// @Produce json
// @Param name path string true "Dataset name"
// @Param scope query string false "all, group or member" default(all)
// @Param group query string false "Only series of this group"
// @Success 200 {object} SeriesResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /datasets/{name}/series [get]
func (h *Handler) Series(w http.ResponseWriter, r *http.Request) {
	name := datasetName(r)
	loaded, err := h.catalog.TimeSeries(r.Context(), name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	scope := r.URL.Query().Get("scope")
	switch scope {
	case "":
		scope = pipeline.ScopeAll
	case pipeline.ScopeAll, pipeline.ScopeGroups, pipeline.ScopeMember:
	default:
		h.fail(w, r, badRequest("scope: want all, group or member, got %q", scope))
		return
	}
	group := r.URL.Query().Get("group")

	resp := SeriesResponse{
		Dataset: name,
		Scope:   scope,
		Group:   group,
		Series:  pipeline.SeriesKeys(loaded.Records, loaded.Dataset, scope, group),
		Metrics: pipeline.Metrics(loaded.Records),
	}
	if resp.Series == nil {
		resp.Series = []string{}
	}
	if first, last, ok := pipeline.DateBounds(loaded.Records); ok {
		resp.First, resp.Last = &first, &last
	}
	writeJSON(w, http.StatusOK, resp)
}
