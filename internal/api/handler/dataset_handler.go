package handler

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"go-data-dashboard/internal/model"
	"go-data-dashboard/internal/store"
	"go-data-dashboard/pkg/router"
	"go-data-dashboard/pkg/utils"
)

// ListDatasets lists the configured datasets and their load state
// @Summary List datasets
// @Tags datasets
// @Produce json
// @Success 200 {array} pipeline.Status
// @Router /datasets [get]
func (h *Handler) ListDatasets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.Statuses())
}

// DatasetResponse describes one loaded dataset
type DatasetResponse struct {
	Dataset  model.Dataset     `json:"dataset"`
	Columns  []string          `json:"columns"`
	Rows     int               `json:"rows"`
	Rejected int               `json:"rejected"`
	Load     model.LoadMetrics `json:"load"`
}

// GetDataset loads a dataset if needed and describes it
// @Summary Get a dataset
// @Tags datasets
// @Produce json
// @Param name path string true "Dataset name"
// @Success 200 {object} DatasetResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /datasets/{name} [get]
func (h *Handler) GetDataset(w http.ResponseWriter, r *http.Request) {
	loaded, err := h.catalog.Get(r.Context(), datasetName(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DatasetResponse{
		Dataset:  loaded.Dataset,
		Columns:  loaded.Table.Columns,
		Rows:     len(loaded.Table.Rows),
		Rejected: loaded.Rejected,
		Load:     loaded.Metrics,
	})
}

// BustCache drops every cached load and aggregation
// @Summary Bust the cache
// @Description The next request reloads its dataset from the source
// @Tags system
// @Success 204 "Cache cleared"
// @Router /cache/bust [post]
func (h *Handler) BustCache(w http.ResponseWriter, r *http.Request) {
	h.catalog.Bust()
	w.WriteHeader(http.StatusNoContent)
}

// EvictDataset drops the cached load of one dataset
// @Summary Evict a dataset from the cache
// @Tags datasets
// @Param name path string true "Dataset name"
// @Success 204 "Dataset evicted"
// @Failure 404 {object} ErrorResponse
// @Router /datasets/{name}/cache [delete]
func (h *Handler) EvictDataset(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Evict(datasetName(r)); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListExports lists past exports, newest first
// @Summary List exports
// @Tags exports
// @Produce json
// @Success 200 {array} store.ExportRecord
// @Failure 500 {object} ErrorResponse
// @Router /exports [get]
func (h *Handler) ListExports(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeJSON(w, http.StatusOK, []store.ExportRecord{})
		return
	}
	exports, err := h.store.ListExports(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if exports == nil {
		exports = []store.ExportRecord{}
	}
	writeJSON(w, http.StatusOK, exports)
}

// GetExportRows returns the rows saved by a database export
// @Summary Rows of a database export
// @Tags exports
// @Produce json
// @Param id path string true "Export ID"
// @Success 200 {array} model.AggregatedRow
// @Failure 404 {object} ErrorResponse
// @Router /exports/{id}/rows [get]
func (h *Handler) GetExportRows(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		h.fail(w, r, store.ErrExportNotFound)
		return
	}
	rows, err := h.store.GetExportRows(r.Context(), router.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// DownloadExport serves a file written by a file export
// @Summary Download an exported file
// @Tags exports
// @Produce octet-stream
// @Param id path string true "Export ID"
// @Param file path string true "File name"
// @Success 200 {file} binary
// @Failure 404 {object} ErrorResponse
// @Router /exports/{id}/{file} [get]
func (h *Handler) DownloadExport(w http.ResponseWriter, r *http.Request) {
	if h.outputs == nil {
		h.fail(w, r, store.ErrExportNotFound)
		return
	}
	jobID := filepath.Base(router.URLParam(r, "id"))
	fileName := filepath.Base(router.URLParam(r, "file"))
	path := filepath.Join(h.outputs.BaseOutputDir, jobID, fileName)

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			err = store.ErrExportNotFound
		}
		h.fail(w, r, err)
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if info.IsDir() {
		h.fail(w, r, store.ErrExportNotFound)
		return
	}

	h.log.Debug("📤 Serving export", zap.String("job_id", jobID), zap.String("file", fileName))
	w.Header().Set("Content-Type", utils.ContentType(utils.GetFileType(fileName)))
	w.Header().Set("Content-Disposition", "attachment; filename=\""+fileName+"\"")
	http.ServeContent(w, r, fileName, info.ModTime(), f)
}
