package api

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"go-data-dashboard/internal/api/handler"
	_ "go-data-dashboard/internal/docs"
	"go-data-dashboard/internal/metrics"
	"go-data-dashboard/pkg/router"
)

// RegisterRoutes mounts the dashboard API, the prometheus endpoint and the
// swagger UI. m may be nil, which leaves /metrics unmounted.
func RegisterRoutes(r *router.Router, h *handler.Handler, m *metrics.Metrics) {
	r.GET("/healthz", h.Healthz)

	r.GET("/api/v1/datasets", h.ListDatasets)
	r.GET("/api/v1/datasets/{name}", h.GetDataset)
	r.GET("/api/v1/datasets/{name}/series", h.Series)
	r.DELETE("/api/v1/datasets/{name}/cache", h.EvictDataset)

	r.GET("/api/v1/timeseries/{name}/aggregate", h.Aggregate)
	r.GET("/api/v1/timeseries/{name}/chart", h.Chart)
	r.GET("/api/v1/timeseries/{name}/matrix", h.Matrix)
	r.POST("/api/v1/timeseries/{name}/export", h.Export)

	r.GET("/api/v1/tables/{name}/melt", h.Melt)
	r.GET("/api/v1/tables/{name}/melt/chart", h.MeltChart)
	r.GET("/api/v1/tables/{name}/counts", h.Counts)
	r.GET("/api/v1/tables/{name}/counts/chart", h.CountsChart)
	r.GET("/api/v1/tables/{name}/unique", h.Unique)

	r.POST("/api/v1/cache/bust", h.BustCache)

	r.GET("/api/v1/exports", h.ListExports)
	// More specific route first
	r.GET("/api/v1/exports/{id}/rows", h.GetExportRows)
	r.GET("/api/v1/exports/{id}/{file}", h.DownloadExport)

	if m != nil {
		r.Handle("/metrics", m.Handler())
	}
	r.Handle("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	r.GET("/swagger", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/swagger/index.html", http.StatusMovedPermanently)
	})
}
