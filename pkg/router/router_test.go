package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRouting(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := New(zap.New(core), false)
	r.GET("/api/v1/datasets/{name}", func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(URLParam(req, "name")))
	})
	r.POST("/api/v1/cache/bust", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Handle("/static/*", http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	tests := []struct {
		method, path string
		code         int
		body         string
	}{
		{http.MethodGet, "/api/v1/datasets/covid", http.StatusOK, "covid"},
		{http.MethodPost, "/api/v1/cache/bust", http.StatusNoContent, ""},
		{http.MethodGet, "/api/v1/cache/bust", http.StatusMethodNotAllowed, "{\"error\":\"Method Not Allowed\"}\n"},
		{http.MethodGet, "/nope", http.StatusNotFound, "{\"error\":\"Not Found\"}\n"},
		{http.MethodGet, "/static/a/b.css", http.StatusTeapot, ""},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
		require.Equal(t, tt.code, rec.Code, tt.path)
		require.Equal(t, tt.body, rec.Body.String(), tt.path)
	}

	require.Equal(t, len(tests), logs.Len())
	entry := logs.All()[0]
	require.Equal(t, "GET /api/v1/datasets/covid 200 ", entry.Message[:len("GET /api/v1/datasets/covid 200 ")])
	require.Equal(t, int64(http.StatusOK), entry.ContextMap()["status"])

	require.True(t, r.Routes()["GET:/api/v1/datasets/{name}"])
	require.True(t, r.Routes()["*:/static/*"])
}

func TestColors(t *testing.T) {
	require.Equal(t, colorGreen, statusColor(204))
	require.Equal(t, colorYellow, statusColor(404))
	require.Equal(t, colorRed, statusColor(500))
	require.Equal(t, colorBlue, methodColor(http.MethodPost))
}
