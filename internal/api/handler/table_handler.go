package handler

import (
	"fmt"
	"io"
	"net/http"

	"go-data-dashboard/internal/chart"
	"go-data-dashboard/internal/model"
	"go-data-dashboard/internal/pipeline"
)

// MeltResponse is a long-format view of (part of) a table
type MeltResponse struct {
	Dataset string          `json:"dataset"`
	ID      string          `json:"id"`
	Rows    []model.MeltRow `json:"rows"`
}

// melt filters a table to column == value (when given) and melts it on id
func (h *Handler) melt(r *http.Request) (*MeltResponse, error) {
	name := datasetName(r)
	loaded, err := h.catalog.Table(r.Context(), name)
	if err != nil {
		return nil, err
	}
	q := r.URL.Query()
	table := loaded.Table
	if column := q.Get("column"); column != "" {
		if table, err = pipeline.FilterEquals(table, column, q.Get("value")); err != nil {
			return nil, err
		}
	}
	id := q.Get("id")
	if id == "" {
		id = "name"
	}
	rows, err := pipeline.Melt(table, id)
	if err != nil {
		return nil, err
	}
	return &MeltResponse{Dataset: name, ID: id, Rows: rows}, nil
}

// Melt unpivots a table into (id, variable, value) rows
// @Summary Melt a table
// @Description Unpivots every column but the id column, e.g. the nutrients of one cereal
// @Tags tables
// @Produce json
// @Param name path string true "Dataset name"
// @Param id query string false "Id column" default(name)
// @Param column query string false "Filter column"
// @Param value query string false "Keep rows whose filter column equals this value"
// @Success 200 {object} MeltResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /tables/{name}/melt [get]
func (h *Handler) Melt(w http.ResponseWriter, r *http.Request) {
	resp, err := h.melt(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// MeltChart draws the numeric melted values as bars
// @Summary Chart a melted table
// @Tags tables
// @Produce png
// @Produce image/svg+xml
// @Param name path string true "Dataset name"
// @Param id query string false "Id column" default(name)
// @Param column query string false "Filter column"
// @Param value query string false "Filter value"
// @Param format query string false "png or svg" default(png)
// @Success 200 {file} binary
// @Success 204 "Nothing numeric to plot"
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /tables/{name}/melt/chart [get]
func (h *Handler) MeltChart(w http.ResponseWriter, r *http.Request) {
	resp, err := h.melt(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	title := resp.Dataset
	if v := r.URL.Query().Get("value"); v != "" {
		title = v
	}
	opts, err := chartOptions(r, title, "")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeChart(w, r, opts, func(out io.Writer) error {
		return chart.Bars(out, opts, chart.MeltBars(resp.Rows))
	})
}

// CountsResponse is the value counts of one column
type CountsResponse struct {
	Dataset string           `json:"dataset"`
	Column  string           `json:"column"`
	Rows    int              `json:"rows"` // rows left after filtering
	Counts  []model.CountRow `json:"counts"`
}

// counts applies the optional membership and range filters, then counts
func (h *Handler) counts(r *http.Request) (*CountsResponse, error) {
	name := datasetName(r)
	loaded, err := h.catalog.Table(r.Context(), name)
	if err != nil {
		return nil, err
	}
	q := r.URL.Query()
	column := q.Get("column")
	if column == "" {
		return nil, badRequest("column is required")
	}

	table := loaded.Table
	if fc := q.Get("filter_column"); fc != "" {
		if table, err = pipeline.FilterIn(table, fc, listParam(r, "in")); err != nil {
			return nil, err
		}
	}
	if rc := q.Get("range_column"); rc != "" {
		min, hasMin, err := floatParam(r, "min")
		if err != nil {
			return nil, err
		}
		max, hasMax, err := floatParam(r, "max")
		if err != nil {
			return nil, err
		}
		if !hasMin || !hasMax {
			lo, hi, ok := pipeline.NumericRange(table, rc)
			if !ok {
				return nil, badRequest("range_column %q has no numeric values", rc)
			}
			if !hasMin {
				min = lo
			}
			if !hasMax {
				max = hi
			}
		}
		if min > max {
			return nil, badRequest("min %v is above max %v", min, max)
		}
		if table, err = pipeline.FilterRange(table, rc, min, max); err != nil {
			return nil, err
		}
	}

	counts, err := pipeline.ValueCounts(table, column)
	if err != nil {
		return nil, err
	}
	if counts == nil {
		counts = []model.CountRow{}
	}
	return &CountsResponse{Dataset: name, Column: column, Rows: len(table.Rows), Counts: counts}, nil
}

// Counts counts rows per value of a column
// @Summary Value counts of a table column
// @Description Optionally keeps rows whose filter_column is one of in, and rows whose range_column lies in [min, max], before counting
// @Tags tables
// @Produce json
// @Param name path string true "Dataset name"
// @Param column query string true "Column to count"
// @Param filter_column query string false "Membership filter column"
// @Param in query []string false "Accepted values of filter_column" collectionFormat(multi)
// @Param range_column query string false "Numeric range filter column"
// @Param min query number false "Range minimum, default the column minimum"
// @Param max query number false "Range maximum, default the column maximum"
// @Success 200 {object} CountsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /tables/{name}/counts [get]
func (h *Handler) Counts(w http.ResponseWriter, r *http.Request) {
	resp, err := h.counts(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// CountsChart draws value counts as bars, most frequent first
// @Summary Chart value counts
// @Tags tables
// @Produce png
// @Produce image/svg+xml
// @Param name path string true "Dataset name"
// @Param column query string true "Column to count"
// @Param filter_column query string false "Membership filter column"
// @Param in query []string false "Accepted values of filter_column" collectionFormat(multi)
// @Param range_column query string false "Numeric range filter column"
// @Param min query number false "Range minimum"
// @Param max query number false "Range maximum"
// @Param limit query int false "Most frequent values to draw" default(20)
// @Param format query string false "png or svg" default(png)
// @Success 200 {file} binary
// @Success 204 "No rows left after filtering"
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /tables/{name}/counts/chart [get]
func (h *Handler) CountsChart(w http.ResponseWriter, r *http.Request) {
	resp, err := h.counts(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	limit, err := intParam(r, "limit", 20)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	opts, err := chartOptions(r, fmt.Sprintf("%s by %s", resp.Dataset, resp.Column), "count")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeChart(w, r, opts, func(out io.Writer) error {
		return chart.Bars(out, opts, chart.CountBars(resp.Counts, limit))
	})
}

// UniqueResponse lists the distinct values of a column
type UniqueResponse struct {
	Dataset string   `json:"dataset"`
	Column  string   `json:"column"`
	Values  []string `json:"values"`
}

// Unique lists the distinct values of a column, e.g. for a select box
// @Summary Distinct values of a table column
// @Tags tables
// @Produce json
// @Param name path string true "Dataset name"
// @Param column query string true "Column"
// @Success 200 {object} UniqueResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /tables/{name}/unique [get]
func (h *Handler) Unique(w http.ResponseWriter, r *http.Request) {
	name := datasetName(r)
	loaded, err := h.catalog.Table(r.Context(), name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	column := r.URL.Query().Get("column")
	if column == "" {
		h.fail(w, r, badRequest("column is required"))
		return
	}
	values, err := pipeline.Unique(loaded.Table, column)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if values == nil {
		values = []string{}
	}
	writeJSON(w, http.StatusOK, UniqueResponse{Dataset: name, Column: column, Values: values})
}
