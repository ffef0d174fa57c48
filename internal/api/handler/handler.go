package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"go-data-dashboard/internal/chart"
	"go-data-dashboard/internal/model"
	"go-data-dashboard/internal/pipeline"
	"go-data-dashboard/internal/store"
	"go-data-dashboard/pkg/router"
	"go-data-dashboard/pkg/utils"
)

// DefaultWindow is the date range served when a request names none: the
// last 30 days of data.
const DefaultWindow = 30

// Handler serves the dashboard API
type Handler struct {
	log      *zap.Logger
	catalog  *pipeline.Catalog
	exporter *pipeline.Exporter
	store    *store.Store         // optional
	outputs  *utils.OutputManager // optional
}

func New(log *zap.Logger, catalog *pipeline.Catalog, exporter *pipeline.Exporter, st *store.Store, outputs *utils.OutputManager) *Handler {
	return &Handler{log: log, catalog: catalog, exporter: exporter, store: st, outputs: outputs}
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

// badRequestError marks malformed query parameters
type badRequestError struct{ msg string }

func (e *badRequestError) Error() string { return e.msg }

func badRequest(format string, args ...interface{}) error {
	return &badRequestError{msg: fmt.Sprintf(format, args...)}
}

func statusFor(err error) int {
	var bad *badRequestError
	switch {
	case errors.As(err, &bad),
		errors.Is(err, pipeline.ErrInvalidRange),
		errors.Is(err, pipeline.ErrUnknownMetricKind),
		errors.Is(err, pipeline.ErrUnknownGranularity),
		errors.Is(err, pipeline.ErrColumnNotFound),
		errors.Is(err, pipeline.ErrWrongDatasetKind):
		return http.StatusBadRequest
	case errors.Is(err, pipeline.ErrDatasetNotFound),
		errors.Is(err, store.ErrExportNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		h.log.Error("❌ Request failed", zap.String("path", r.URL.Path), zap.Error(err))
	} else {
		h.log.Debug("⚠️ Request rejected", zap.String("path", r.URL.Path), zap.Error(err))
	}
	writeJSON(w, code, ErrorResponse{Error: err.Error()})
}

// ------------------- Query parameters -------------------

// listParam reads a repeatable parameter whose values may also be comma lists
func listParam(r *http.Request, name string) []string {
	var out []string
	for _, v := range r.URL.Query()[name] {
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func dateParam(r *http.Request, name string) (time.Time, bool, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return time.Time{}, false, nil
	}
	t, err := utils.ParseDate(v)
	if err != nil {
		return time.Time{}, false, badRequest("%s: %v", name, err)
	}
	return t, true, nil
}

func boolParam(r *http.Request, name string) (bool, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, badRequest("%s: want a boolean, got %q", name, v)
	}
	return b, nil
}

func floatParam(r *http.Request, name string) (float64, bool, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false, badRequest("%s: want a number, got %q", name, v)
	}
	return f, true, nil
}

func intParam(r *http.Request, name string, fallback int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, badRequest("%s: want an integer, got %q", name, v)
	}
	return n, nil
}

// aggregationRequest builds the aggregator request from query parameters.
func aggregationRequest(r *http.Request, loaded *pipeline.Loaded) (model.AggregationRequest, error) {
	q := r.URL.Query()
	req := model.AggregationRequest{
		SeriesKeys:  listParam(r, "series"),
		Granularity: model.Day,
		Metric:      strings.TrimSpace(q.Get("metric")),
	}
	if req.Metric == "" {
		return req, badRequest("metric is required")
	}

	var ok bool
	if g := q.Get("granularity"); g != "" {
		if req.Granularity, ok = model.ParseGranularity(g); !ok {
			return req, &pipeline.UnknownGranularityError{Raw: g}
		}
	}
	if k := q.Get("kind"); k != "" {
		if req.MetricKind, ok = model.ParseMetricKind(k); !ok {
			return req, &pipeline.UnknownMetricKindError{Raw: k}
		}
	} else {
		req.MetricKind = loaded.Dataset.MetricKind(req.Metric)
	}

	var err error
	if req.PeakDetection, err = boolParam(r, "peaks"); err != nil {
		return req, err
	}

	start, hasStart, err := dateParam(r, "start")
	if err != nil {
		return req, err
	}
	end, hasEnd, err := dateParam(r, "end")
	if err != nil {
		return req, err
	}
	if !hasEnd {
		if _, last, ok := pipeline.DateBounds(loaded.Records); ok {
			end = last
		} else {
			end = utils.BeginDay(time.Now().UTC())
		}
	}
	if !hasStart {
		start = end.AddDate(0, 0, -(DefaultWindow - 1))
	}
	req.Start, req.End = start, end
	return req, nil
}

// chartOptions reads format, width and height
func chartOptions(r *http.Request, title, yName string) (chart.Options, error) {
	format, err := chart.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		return chart.Options{}, badRequest("%v", err)
	}
	width, err := intParam(r, "width", 0)
	if err != nil {
		return chart.Options{}, err
	}
	height, err := intParam(r, "height", 0)
	if err != nil {
		return chart.Options{}, err
	}
	return chart.Options{Title: title, YName: yName, Width: width, Height: height, Format: format}, nil
}

// writeChart renders into a buffer first so a failed render can still
// answer with a JSON error. No data gives 204.
func (h *Handler) writeChart(w http.ResponseWriter, r *http.Request, opts chart.Options, render func(io.Writer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		if errors.Is(err, chart.ErrNoData) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.fail(w, r, fmt.Errorf("render chart: %w", err))
		return
	}
	w.Header().Set("Content-Type", opts.Format.ContentType())
	w.Write(buf.Bytes())
}

// Healthz reports liveness
// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Router /healthz [get]
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func datasetName(r *http.Request) string {
	return router.URLParam(r, "name")
}
